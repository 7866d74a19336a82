package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/vbauerster/mpb/v8"

	"github.com/Sadana31/movieAPI/internal/artifact"
	"github.com/Sadana31/movieAPI/internal/similarity"
)

// buildSummary is the --json output of build.
type buildSummary struct {
	BuildID         string  `json:"build_id"`
	Dir             string  `json:"dir"`
	Items           int     `json:"items"`
	MovieRows       int     `json:"movie_rows"`
	MissingCredits  int     `json:"missing_credits"`
	MalformedFields int     `json:"malformed_fields"`
	Vocabulary      int     `json:"vocabulary"`
	LoadSeconds     float64 `json:"load_seconds"`
	MatrixSeconds   float64 `json:"matrix_seconds"`
}

// newBuildCmd creates the build subcommand.
func newBuildCmd() *cobra.Command {
	var (
		moviesPath  string
		creditsPath string
		outDir      string
		workers     int
	)

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build the catalog and similarity matrix from the TMDB CSVs",
		Long: `Build joins the TMDB movies and credits CSVs, derives each title's feature
soup and computes the full pairwise cosine similarity matrix. The catalog and
matrix are written together under one build id so the API can refuse a mixed
set.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ui := newUI(cmd)
			defer ui.Close()

			if !cmd.Flags().Changed("movies") {
				moviesPath = cfg.Build.MoviesPath
			}
			if !cmd.Flags().Changed("credits") {
				creditsPath = cfg.Build.CreditsPath
			}
			if !cmd.Flags().Changed("out") {
				outDir = cfg.Artifacts.Dir
			}
			if !cmd.Flags().Changed("workers") {
				workers = cfg.Build.Workers
			}

			ui.Step("Loading %s and %s", moviesPath, creditsPath)

			var bar *mpb.Bar
			opts := similarity.BuildOptions{
				Workers: workers,
				OnStart: func(rows int) {
					bar = ui.ProgressBar("similarity", int64(rows))
				},
				OnRow: func() {
					if bar != nil {
						bar.Increment()
					}
				},
			}

			set, report, err := artifact.Build(cmd.Context(), logger, artifact.BuildInput{
				MoviesPath:  moviesPath,
				CreditsPath: creditsPath,
			}, opts)
			if bar != nil {
				bar.Abort(false)
			}
			if err != nil {
				return err
			}
			ui.Close()

			stop := ui.Spinner("Writing artifacts to " + outDir)
			err = artifact.Save(cmd.Context(), logger, outDir, set)
			stop()
			if err != nil {
				return err
			}

			summary := buildSummary{
				BuildID:         set.Manifest.BuildID.String(),
				Dir:             outDir,
				Items:           set.Manifest.ItemCount,
				MovieRows:       report.Load.MovieRows,
				MissingCredits:  report.Load.MissingCredits,
				MalformedFields: report.Load.MalformedFields,
				Vocabulary:      report.VocabularySize,
				LoadSeconds:     report.LoadDuration.Seconds(),
				MatrixSeconds:   report.MatrixDuration.Seconds(),
			}
			if outputJSON {
				return writeJSON(cmd.OutOrStdout(), summary)
			}

			ui.Success("Built %d items (build %s)", summary.Items, summary.BuildID)
			if summary.MissingCredits > 0 {
				ui.Warning("%d movies had no credits row and were dropped", summary.MissingCredits)
			}
			if summary.MalformedFields > 0 {
				ui.Warning("%d list fields were malformed and read as empty", summary.MalformedFields)
			}
			ui.Table([]string{"Stage", "Result", "Duration"}, [][]string{
				{"load", fmt.Sprintf("%d items from %d rows", summary.Items, summary.MovieRows), report.LoadDuration.Round(time.Millisecond).String()},
				{"matrix", fmt.Sprintf("%d terms", summary.Vocabulary), report.MatrixDuration.Round(time.Millisecond).String()},
			}, []columnAlignment{alignLeft, alignLeft, alignRight})
			return nil
		},
	}

	cmd.Flags().StringVar(&moviesPath, "movies", "", "path to tmdb_5000_movies.csv (default from config)")
	cmd.Flags().StringVar(&creditsPath, "credits", "", "path to tmdb_5000_credits.csv (default from config)")
	cmd.Flags().StringVarP(&outDir, "out", "o", "", "artifact output directory (default from config)")
	cmd.Flags().IntVar(&workers, "workers", 0, "matrix workers (0 = GOMAXPROCS)")
	return cmd
}
