package artifact

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/Sadana31/movieAPI/internal/observability"
)

// Fetcher downloads missing artifact files.
type Fetcher struct {
	Client *http.Client
	Logger *observability.Logger
	// Progress, when set, wraps each download. size is -1 when unknown.
	Progress func(name string, size int64) io.Writer
}

// NewFetcher creates a fetcher with a bounded client timeout.
func NewFetcher(logger *observability.Logger, timeout time.Duration) *Fetcher {
	if logger == nil {
		logger = observability.NopLogger()
	}
	return &Fetcher{
		Client: &http.Client{Timeout: timeout},
		Logger: logger,
	}
}

// FetchResult reports what happened to one file.
type FetchResult struct {
	Name    string `json:"name"`
	Path    string `json:"path"`
	Skipped bool   `json:"skipped"`
	Bytes   int64  `json:"bytes"`
}

// FetchAll downloads every file in urls (name -> URL) into dir. Files that
// already exist are left alone.
func (f *Fetcher) FetchAll(ctx context.Context, dir string, urls map[string]string) ([]FetchResult, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create artifact dir: %w", err)
	}

	var results []FetchResult
	for _, name := range []string{CatalogFile, MatrixFile} {
		url, ok := urls[name]
		if !ok || url == "" {
			continue
		}
		res, err := f.Fetch(ctx, name, url, filepath.Join(dir, name))
		if err != nil {
			return results, err
		}
		results = append(results, res)
	}
	return results, nil
}

// Fetch downloads url into dest unless dest already exists.
func (f *Fetcher) Fetch(ctx context.Context, name, url, dest string) (FetchResult, error) {
	res := FetchResult{Name: name, Path: dest}
	if _, err := os.Stat(dest); err == nil {
		res.Skipped = true
		f.Logger.Info().Str("file", name).Msg("artifact present, skipping download")
		return res, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return res, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return res, fmt.Errorf("build request for %s: %w", name, err)
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return res, fmt.Errorf("download %s: %w", name, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return res, fmt.Errorf("download %s: unexpected status %s", name, resp.Status)
	}

	tmp := dest + ".part"
	out, err := os.Create(tmp)
	if err != nil {
		return res, err
	}

	var w io.Writer = out
	if f.Progress != nil {
		w = io.MultiWriter(out, f.Progress(name, resp.ContentLength))
	}
	n, err := io.Copy(w, resp.Body)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(tmp)
		return res, fmt.Errorf("download %s: %w", name, err)
	}
	if err := os.Rename(tmp, dest); err != nil {
		return res, err
	}

	res.Bytes = n
	f.Logger.Info().Str("file", name).Int("bytes", int(n)).Msg("artifact downloaded")
	return res, nil
}
