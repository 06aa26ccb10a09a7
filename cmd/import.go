package main

import (
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/gravgor/landmark-cli/internal/importer"
	"github.com/gravgor/landmark-cli/internal/seed"
	"github.com/gravgor/landmark-cli/pkg/landmarkapi"
	"github.com/gravgor/landmark-cli/pkg/unsplash"
)

var importSeedPath string

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import landmark photos from Unsplash into the content API",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := cfg.Validate("import"); err != nil {
			return err
		}

		records, err := seed.LoadRecords(importSeedPath)
		if err != nil {
			return eris.Wrap(err, "load seed records")
		}

		unsplashClient := unsplash.NewClient(cfg.Unsplash.AccessKey,
			unsplash.WithBaseURL(cfg.Unsplash.BaseURL))
		apiClient := landmarkapi.NewClient(cfg.API.Key, cfg.API.BearerToken,
			landmarkapi.WithBaseURL(cfg.API.BaseURL))

		results := importer.New(cfg.Importer, unsplashClient, apiClient).Run(ctx, records)

		renderImportResults(os.Stdout, results)
		return nil
	},
}

func renderImportResults(w io.Writer, results []importer.Result) {
	if len(results) == 0 {
		return
	}
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Landmark", "Found", "Downloaded", "Uploaded", "Status"})
	for _, r := range results {
		t.AppendRow(table.Row{r.Name, r.Found, r.Downloaded, r.Uploaded, r.Status})
	}
	t.SetStyle(table.StyleRounded)
	t.Render()
}

func init() {
	importCmd.Flags().StringVar(&importSeedPath, "seed", "", "landmark seed file: json, yaml or xlsx (built-in sample when empty)")
	rootCmd.AddCommand(importCmd)
}
