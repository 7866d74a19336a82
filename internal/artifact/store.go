package artifact

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/Sadana31/movieAPI/internal/catalog"
)

const schema = `
CREATE TABLE manifest (
	build_id   TEXT NOT NULL,
	item_count INTEGER NOT NULL,
	created_at TIMESTAMP NOT NULL
);
CREATE TABLE items (
	row_idx           INTEGER PRIMARY KEY,
	tmdb_id           INTEGER NOT NULL,
	original_title    TEXT NOT NULL,
	director          TEXT,
	cast_names        TEXT NOT NULL,
	genres            TEXT NOT NULL,
	keywords          TEXT NOT NULL,
	runtime           INTEGER,
	original_language TEXT NOT NULL,
	vote_average      REAL,
	vote_count        INTEGER,
	soup              TEXT NOT NULL
);
CREATE TABLE title_index (
	title   TEXT PRIMARY KEY,
	row_idx INTEGER NOT NULL
);
`

// DB represents a database connection interface.
type DB interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// openCatalog opens a catalog database. Read-only handles refuse writes.
func openCatalog(path string, readOnly bool) (*sql.DB, error) {
	dsn := path
	if readOnly {
		dsn = fmt.Sprintf("file:%s?mode=ro", path)
	}
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open catalog db: %w", err)
	}
	db.SetMaxOpenConns(1)
	return db, nil
}

// writeCatalog creates the schema and stores the manifest, items and index in one transaction.
func writeCatalog(ctx context.Context, db *sql.DB, set *Set) (err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if _, err = tx.ExecContext(ctx,
		`INSERT INTO manifest (build_id, item_count, created_at) VALUES (?, ?, ?)`,
		set.Manifest.BuildID.String(), set.Manifest.ItemCount, set.Manifest.CreatedAt,
	); err != nil {
		return fmt.Errorf("insert manifest: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO items (row_idx, tmdb_id, original_title, director, cast_names, genres,
			keywords, runtime, original_language, vote_average, vote_count, soup)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for row, it := range set.Catalog {
		castJSON, genresJSON, keywordsJSON, mErr := marshalLists(it)
		if mErr != nil {
			return fmt.Errorf("item %d: %w", row, mErr)
		}
		if _, err = stmt.ExecContext(ctx,
			row, it.ID, it.OriginalTitle, it.Director, castJSON, genresJSON,
			keywordsJSON, it.Runtime, it.OriginalLanguage, it.VoteAverage, it.VoteCount, it.Soup,
		); err != nil {
			return fmt.Errorf("insert item %d: %w", row, err)
		}
	}

	for title, row := range set.Index {
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO title_index (title, row_idx) VALUES (?, ?)`, title, row,
		); err != nil {
			return fmt.Errorf("insert index %q: %w", title, err)
		}
	}

	return tx.Commit()
}

func marshalLists(it catalog.Item) (string, string, string, error) {
	var out [3]string
	for i, list := range [][]string{it.Cast, it.Genres, it.Keywords} {
		if list == nil {
			list = []string{}
		}
		b, err := json.Marshal(list)
		if err != nil {
			return "", "", "", err
		}
		out[i] = string(b)
	}
	return out[0], out[1], out[2], nil
}

// readManifest loads the single manifest row.
func readManifest(ctx context.Context, db DB) (Manifest, error) {
	var (
		m       Manifest
		buildID string
	)
	err := db.QueryRowContext(ctx,
		`SELECT build_id, item_count, created_at FROM manifest`,
	).Scan(&buildID, &m.ItemCount, &m.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Manifest{}, fmt.Errorf("%w: catalog has no manifest", ErrArtifactMismatch)
	}
	if err != nil {
		return Manifest{}, fmt.Errorf("read manifest: %w", err)
	}
	if m.BuildID, err = uuid.Parse(buildID); err != nil {
		return Manifest{}, fmt.Errorf("%w: manifest build id: %v", ErrArtifactMismatch, err)
	}
	m.CreatedAt = m.CreatedAt.UTC()
	return m, nil
}

// readItems loads every item ordered by row, checking that rows are 0..N-1.
func readItems(ctx context.Context, db DB) (catalog.Catalog, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT row_idx, tmdb_id, original_title, director, cast_names, genres,
			keywords, runtime, original_language, vote_average, vote_count, soup
		FROM items ORDER BY row_idx
	`)
	if err != nil {
		return nil, fmt.Errorf("query items: %w", err)
	}
	defer rows.Close()

	items := catalog.Catalog{}
	for rows.Next() {
		var (
			rowIdx                     int
			it                         catalog.Item
			director                   sql.NullString
			castJSON, genres, keywords string
			runtime, voteCount         sql.NullInt64
			voteAverage                sql.NullFloat64
		)
		if err := rows.Scan(&rowIdx, &it.ID, &it.OriginalTitle, &director, &castJSON, &genres,
			&keywords, &runtime, &it.OriginalLanguage, &voteAverage, &voteCount, &it.Soup,
		); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		if rowIdx != len(items) {
			return nil, fmt.Errorf("%w: item rows are not contiguous at %d (found %d)",
				ErrArtifactMismatch, len(items), rowIdx)
		}
		if err := unmarshalLists(&it, castJSON, genres, keywords); err != nil {
			return nil, fmt.Errorf("%w: item %d: %v", ErrArtifactMismatch, rowIdx, err)
		}
		if director.Valid {
			it.Director = &director.String
		}
		if runtime.Valid {
			v := int(runtime.Int64)
			it.Runtime = &v
		}
		if voteAverage.Valid {
			it.VoteAverage = &voteAverage.Float64
		}
		if voteCount.Valid {
			v := int(voteCount.Int64)
			it.VoteCount = &v
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func unmarshalLists(it *catalog.Item, castJSON, genres, keywords string) error {
	if err := json.Unmarshal([]byte(castJSON), &it.Cast); err != nil {
		return fmt.Errorf("cast: %w", err)
	}
	if err := json.Unmarshal([]byte(genres), &it.Genres); err != nil {
		return fmt.Errorf("genres: %w", err)
	}
	if err := json.Unmarshal([]byte(keywords), &it.Keywords); err != nil {
		return fmt.Errorf("keywords: %w", err)
	}
	for _, list := range []*[]string{&it.Cast, &it.Genres, &it.Keywords} {
		if len(*list) == 0 {
			*list = nil
		}
	}
	return nil
}

// readIndex loads the title index.
func readIndex(ctx context.Context, db DB) (map[string]int, error) {
	rows, err := db.QueryContext(ctx, `SELECT title, row_idx FROM title_index`)
	if err != nil {
		return nil, fmt.Errorf("query title index: %w", err)
	}
	defer rows.Close()

	idx := make(map[string]int)
	for rows.Next() {
		var (
			title string
			row   int
		)
		if err := rows.Scan(&title, &row); err != nil {
			return nil, fmt.Errorf("scan title index: %w", err)
		}
		idx[title] = row
	}
	return idx, rows.Err()
}
