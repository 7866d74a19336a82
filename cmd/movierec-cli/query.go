package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Sadana31/movieAPI/internal/recommend"
)

// newSearchCmd creates the search subcommand.
func newSearchCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "search QUERY",
		Short: "Fuzzy-search catalog titles",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ui := newUI(cmd)
			defer ui.Close()

			if !cmd.Flags().Changed("limit") {
				limit = cfg.Search.DefaultLimit
			}

			b, err := openBackend(cmd.Context(), ui)
			if err != nil {
				return err
			}
			res, err := b.Search(cmd.Context(), strings.Join(args, " "), limit)
			if err != nil {
				return err
			}

			if outputJSON {
				return writeJSON(cmd.OutOrStdout(), res)
			}
			if len(res.Results) == 0 {
				ui.Warning("No titles match %q", res.Query)
				return nil
			}
			rows := make([][]string, len(res.Results))
			for i, h := range res.Results {
				rows[i] = []string{strconv.Itoa(i + 1), h.Title, fmt.Sprintf("%.1f", h.Score)}
			}
			ui.Table([]string{"#", "Title", "Score"}, rows, []columnAlignment{alignRight, alignLeft, alignRight})
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", recommend.DefaultSearchLimit, "maximum number of matches")
	return cmd
}

// newRecommendCmd creates the recommend subcommand.
func newRecommendCmd() *cobra.Command {
	var (
		topK      int
		minRating float64
		minVotes  int
	)

	cmd := &cobra.Command{
		Use:   "recommend TITLE",
		Short: "Recommend titles similar to TITLE",
		Long: `Recommend resolves TITLE against the catalog, correcting typos when the
best fuzzy match is close enough, and lists the most similar titles that pass
the rating and vote thresholds.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ui := newUI(cmd)
			defer ui.Close()

			req := recommend.RecommendRequest{
				Title: strings.Join(args, " "),
				TopK:  cfg.Recommend.TopK,
				Thresholds: recommend.Thresholds{
					MinRating: cfg.Recommend.MinRating,
					MinVotes:  cfg.Recommend.MinVotes,
				},
			}
			if cmd.Flags().Changed("top-k") {
				req.TopK = topK
			}
			if cmd.Flags().Changed("min-rating") {
				req.MinRating = minRating
			}
			if cmd.Flags().Changed("min-votes") {
				req.MinVotes = minVotes
			}

			b, err := openBackend(cmd.Context(), ui)
			if err != nil {
				return err
			}
			res, err := b.Recommend(cmd.Context(), req)
			var resErr *recommend.ResolutionError
			if errors.As(err, &resErr) {
				if outputJSON {
					_ = writeJSON(cmd.OutOrStdout(), notFoundBody(resErr))
				} else if resErr.HasGuess {
					ui.Error("Movie not found: %q", strings.TrimSpace(req.Title))
					ui.Info("Closest title is %q (score %.1f). %s.", resErr.BestGuess, resErr.Score, recommend.SearchHint)
				} else {
					ui.Error("Movie not found: %q", strings.TrimSpace(req.Title))
				}
				return err
			}
			if err != nil {
				return err
			}

			if outputJSON {
				return writeJSON(cmd.OutOrStdout(), res)
			}
			if res.Corrected {
				ui.Warning("Showing results for %q (match score %.1f)", res.ResolvedTitle, res.MatchScore)
			} else {
				ui.Success("Found %q", res.ResolvedTitle)
			}
			if len(res.Recommendations) == 0 {
				ui.Warning("No similar titles pass rating >= %.1f and votes >= %d",
					res.Filters.MinRating, res.Filters.MinVotes)
				return nil
			}
			rows := make([][]string, len(res.Recommendations))
			for i, r := range res.Recommendations {
				rows[i] = []string{
					strconv.Itoa(i + 1),
					r.Title,
					fmt.Sprintf("%.1f", r.Rating),
					strconv.Itoa(r.Votes),
					fmt.Sprintf("%.3f", r.Similarity),
				}
			}
			ui.Table([]string{"#", "Title", "Rating", "Votes", "Similarity"}, rows,
				[]columnAlignment{alignRight, alignLeft, alignRight, alignRight, alignRight})
			return nil
		},
	}

	cmd.Flags().IntVarP(&topK, "top-k", "k", recommend.DefaultTopK, "number of recommendations")
	cmd.Flags().Float64Var(&minRating, "min-rating", recommend.DefaultMinRating, "minimum vote average")
	cmd.Flags().IntVar(&minVotes, "min-votes", recommend.DefaultMinVotes, "minimum vote count")
	return cmd
}

func notFoundBody(err *recommend.ResolutionError) map[string]interface{} {
	body := map[string]interface{}{"error": "Movie not found"}
	if err.HasGuess {
		body["hint"] = recommend.SearchHint
		body["best_guess"] = err.BestGuess
		body["match_score"] = err.Score
	}
	return body
}

// newFilterCmd creates the filter subcommand.
func newFilterCmd() *cobra.Command {
	var (
		runtime  int
		director string
		cast     string
		language string
		genre    string
		limit    int
	)

	cmd := &cobra.Command{
		Use:   "filter",
		Short: "List catalog titles matching every given attribute",
		Example: `  movierec filter --director "James Cameron"
  movierec filter --runtime 120 --genre drama --language en`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ui := newUI(cmd)
			defer ui.Close()

			q := recommend.FilterQuery{Limit: cfg.Filter.DefaultLimit}
			if cmd.Flags().Changed("limit") {
				q.Limit = limit
			}
			if cmd.Flags().Changed("runtime") {
				q.Runtime = &runtime
			}
			if cmd.Flags().Changed("director") {
				q.Director = &director
			}
			if cmd.Flags().Changed("cast") {
				q.Cast = &cast
			}
			if cmd.Flags().Changed("language") {
				q.Language = &language
			}
			if cmd.Flags().Changed("genre") {
				q.Genre = &genre
			}

			b, err := openBackend(cmd.Context(), ui)
			if err != nil {
				return err
			}
			res, err := b.Filter(cmd.Context(), q)
			if err != nil {
				return err
			}

			if outputJSON {
				return writeJSON(cmd.OutOrStdout(), res)
			}
			if res.Count == 0 {
				ui.Warning("No titles match the filters")
				return nil
			}
			rows := make([][]string, len(res.Results))
			for i, r := range res.Results {
				rows[i] = []string{r.Title, optFloat(r.Rating), optInt(r.Votes), optInt(r.Runtime)}
			}
			ui.Table([]string{"Title", "Rating", "Votes", "Runtime"}, rows,
				[]columnAlignment{alignLeft, alignRight, alignRight, alignRight})
			ui.Info("%d titles", res.Count)
			return nil
		},
	}

	cmd.Flags().IntVar(&runtime, "runtime", 0, "runtime in minutes, matched within the configured window")
	cmd.Flags().StringVar(&director, "director", "", "director name")
	cmd.Flags().StringVar(&cast, "cast", "", "cast member name or part of one")
	cmd.Flags().StringVar(&language, "language", "", "original language code, e.g. en")
	cmd.Flags().StringVar(&genre, "genre", "", "genre name or part of one")
	cmd.Flags().IntVarP(&limit, "limit", "n", recommend.DefaultFilterLimit, "maximum number of titles")
	return cmd
}

func optFloat(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.1f", *v)
}

func optInt(v *int) string {
	if v == nil {
		return "-"
	}
	return strconv.Itoa(*v)
}
