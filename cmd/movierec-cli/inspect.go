package main

import (
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Sadana31/movieAPI/internal/artifact"
	"github.com/Sadana31/movieAPI/internal/catalog"
	"github.com/Sadana31/movieAPI/internal/recommend"
)

// inspectReport is the --json output of inspect.
type inspectReport struct {
	Manifest        artifact.Manifest `json:"manifest"`
	Dir             string            `json:"dir"`
	IndexedTitles   int               `json:"indexed_titles"`
	DuplicateTitles int               `json:"duplicate_titles"`
	MissingDirector int               `json:"missing_director"`
	MissingRuntime  int               `json:"missing_runtime"`
	MissingRating   int               `json:"missing_rating"`
	Head            []catalog.Item    `json:"head,omitempty"`
}

func summarize(set *artifact.Set, index recommend.TitleIndex, dir string, head int) inspectReport {
	r := inspectReport{
		Manifest:        set.Manifest,
		Dir:             dir,
		IndexedTitles:   len(index),
		DuplicateTitles: len(set.Catalog) - len(index),
	}
	for _, it := range set.Catalog {
		if it.Director == nil {
			r.MissingDirector++
		}
		if it.Runtime == nil {
			r.MissingRuntime++
		}
		if it.VoteAverage == nil || it.VoteCount == nil {
			r.MissingRating++
		}
	}
	if head > len(set.Catalog) {
		head = len(set.Catalog)
	}
	if head > 0 {
		r.Head = set.Catalog[:head]
	}
	return r
}

// newInspectCmd creates the inspect subcommand.
func newInspectCmd() *cobra.Command {
	var (
		dir  string
		head int
	)

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Verify a local artifact set and summarize its catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ui := newUI(cmd)
			defer ui.Close()

			if !cmd.Flags().Changed("dir") {
				dir = cfg.Artifacts.Dir
			}

			stop := ui.Spinner("Loading artifacts from " + dir)
			set, err := artifact.Load(cmd.Context(), logger, dir)
			stop()
			if err != nil {
				return err
			}

			// The engine adopts the stored index only if it serves the catalog.
			e, err := recommend.New(logger, set.Catalog, set.Matrix, recommend.Config{Index: set.Index})
			if err != nil {
				return err
			}

			report := summarize(set, e.Index(), dir, head)
			if outputJSON {
				return writeJSON(cmd.OutOrStdout(), report)
			}

			ui.Success("Artifact set is consistent")
			ui.Table([]string{"Property", "Value"}, [][]string{
				{"build id", report.Manifest.BuildID.String()},
				{"created", report.Manifest.CreatedAt.Format(time.RFC3339)},
				{"items", strconv.Itoa(report.Manifest.ItemCount)},
				{"indexed titles", strconv.Itoa(report.IndexedTitles)},
				{"duplicate titles", strconv.Itoa(report.DuplicateTitles)},
				{"missing director", strconv.Itoa(report.MissingDirector)},
				{"missing runtime", strconv.Itoa(report.MissingRuntime)},
				{"missing rating", strconv.Itoa(report.MissingRating)},
			}, []columnAlignment{alignLeft, alignRight})

			if len(report.Head) > 0 {
				rows := make([][]string, len(report.Head))
				for i, it := range report.Head {
					director := "-"
					if it.Director != nil {
						director = *it.Director
					}
					rows[i] = []string{
						strconv.Itoa(i), it.OriginalTitle, director,
						strings.Join(it.Genres, ", "), optInt(it.Runtime), optFloat(it.VoteAverage),
					}
				}
				ui.Table([]string{"Row", "Title", "Director", "Genres", "Runtime", "Rating"}, rows,
					[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignRight, alignRight})
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&dir, "dir", "d", "", "artifact directory (default from config)")
	cmd.Flags().IntVar(&head, "head", 0, "also list the first N catalog rows")
	return cmd
}
