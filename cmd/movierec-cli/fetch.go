package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Sadana31/movieAPI/internal/artifact"
)

// newFetchCmd creates the fetch subcommand.
func newFetchCmd() *cobra.Command {
	var (
		outDir     string
		catalogURL string
		matrixURL  string
		verify     bool
	)

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Download prebuilt artifacts that are missing locally",
		Long: `Fetch downloads the catalog database and similarity matrix from the
configured URLs (artifacts.urls, CATALOG_URL, SIMILARITY_URL). Files already
present are left alone. With --verify the downloaded set is loaded and checked
for consistency.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ui := newUI(cmd)
			defer ui.Close()

			if !cmd.Flags().Changed("out") {
				outDir = cfg.Artifacts.Dir
			}
			urls := map[string]string{}
			for name, u := range cfg.Artifacts.URLs {
				urls[name] = u
			}
			if catalogURL != "" {
				urls[artifact.CatalogFile] = catalogURL
			}
			if matrixURL != "" {
				urls[artifact.MatrixFile] = matrixURL
			}
			if len(urls) == 0 {
				return fmt.Errorf("no artifact URLs configured (set --catalog-url/--matrix-url or artifacts.urls)")
			}

			fetcher := artifact.NewFetcher(logger, cfg.Artifacts.FetchTimeout)
			fetcher.Progress = ui.DownloadWriter

			results, err := fetcher.FetchAll(cmd.Context(), outDir, urls)
			if err != nil {
				return err
			}

			if verify {
				stop := ui.Spinner("Verifying artifact set")
				set, err := artifact.Load(cmd.Context(), logger, outDir)
				stop()
				if err != nil {
					return err
				}
				ui.Success("Verified build %s with %d items", set.Manifest.BuildID, set.Manifest.ItemCount)
			}

			if outputJSON {
				return writeJSON(cmd.OutOrStdout(), results)
			}
			rows := make([][]string, len(results))
			for i, r := range results {
				status := "downloaded"
				if r.Skipped {
					status = "present"
				}
				rows[i] = []string{r.Name, status, fmt.Sprintf("%d", r.Bytes), r.Path}
			}
			ui.Table([]string{"File", "Status", "Bytes", "Path"}, rows,
				[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft})
			return nil
		},
	}

	cmd.Flags().StringVarP(&outDir, "out", "o", "", "artifact directory (default from config)")
	cmd.Flags().StringVar(&catalogURL, "catalog-url", "", "catalog database URL")
	cmd.Flags().StringVar(&matrixURL, "matrix-url", "", "similarity matrix URL")
	cmd.Flags().BoolVar(&verify, "verify", false, "load and check the set after downloading")
	return cmd
}
