package main

import (
	"io"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/gravgor/landmark-cli/internal/aggregator"
	"github.com/gravgor/landmark-cli/internal/classify"
	"github.com/gravgor/landmark-cli/internal/enrich"
	"github.com/gravgor/landmark-cli/internal/imaging"
	"github.com/gravgor/landmark-cli/internal/seed"
	"github.com/gravgor/landmark-cli/pkg/anthropic"
	"github.com/gravgor/landmark-cli/pkg/geocode"
	"github.com/gravgor/landmark-cli/pkg/places"
	"github.com/gravgor/landmark-cli/pkg/tripadvisor"
	"github.com/gravgor/landmark-cli/pkg/wikipedia"
)

var (
	aggregateSeedPath string
	aggregateWorkers  int
)

var aggregateCmd = &cobra.Command{
	Use:   "aggregate [landmark ...]",
	Short: "Merge Wikipedia, Google Places and TripAdvisor data into the store",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if aggregateWorkers > 0 {
			cfg.Aggregator.Workers = aggregateWorkers
		}
		if err := cfg.Validate("aggregate"); err != nil {
			return err
		}

		names := args
		if len(names) == 0 {
			var err error
			names, err = seed.LoadNames(aggregateSeedPath)
			if err != nil {
				return eris.Wrap(err, "load landmark names")
			}
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "migrate store")
		}

		processor, err := imaging.NewProcessor(cfg.Aggregator.ImageDir, nil)
		if err != nil {
			return err
		}

		trip, err := tripadvisor.New(
			tripadvisor.WithBaseURL(cfg.TripAdvisor.BaseURL),
			tripadvisor.WithTimeout(time.Duration(cfg.TripAdvisor.TimeoutSecs)*time.Second),
		)
		if err != nil {
			return eris.Wrap(err, "init review scraper")
		}

		agg := aggregator.New(cfg.Aggregator, st,
			wikipedia.NewClient(wikipedia.WithBaseURL(cfg.Wikipedia.BaseURL)),
			places.NewClient(cfg.Google.APIKey, places.WithBaseURL(cfg.Google.BaseURL)),
			trip,
			geocode.NewClient(
				geocode.WithBaseURL(cfg.Geocode.BaseURL),
				geocode.WithUserAgent(cfg.Geocode.UserAgent),
				geocode.WithCacheTTL(time.Duration(cfg.Geocode.CacheTTLMins)*time.Minute),
			),
			initClassifier(),
			enrich.NewEnricher(cfg.Aggregator.RelatedRadiusKM),
			processor,
		)

		results, err := agg.Run(ctx, names)
		if err != nil {
			return err
		}

		renderAggregateResults(os.Stdout, results)
		return nil
	},
}

// initClassifier picks the model-backed classifier when enabled, the
// keyword matcher otherwise. The keyword matcher doubles as fallback.
func initClassifier() classify.Classifier {
	keyword := classify.NewKeywordClassifier()
	if !cfg.Anthropic.Enabled || cfg.Anthropic.Key == "" {
		return keyword
	}
	return classify.NewModelClassifier(anthropic.NewClient(cfg.Anthropic.Key), cfg.Anthropic.Model, keyword)
}

func renderAggregateResults(w io.Writer, results []aggregator.Result) {
	if len(results) == 0 {
		return
	}
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Landmark", "Status", "Category", "Sources"})
	for _, r := range results {
		var category, sources string
		if r.Landmark != nil {
			category = r.Landmark.Category
			names := make([]string, 0, len(r.Landmark.DataSources))
			for name, hit := range r.Landmark.DataSources {
				if hit {
					names = append(names, name)
				}
			}
			sort.Strings(names)
			sources = strings.Join(names, ", ")
		}
		t.AppendRow(table.Row{r.Name, r.Status, category, sources})
	}
	t.SetStyle(table.StyleRounded)
	t.Render()
}

func init() {
	aggregateCmd.Flags().StringVar(&aggregateSeedPath, "seed", "", "landmark name file: json, yaml or xlsx (built-in list when empty)")
	aggregateCmd.Flags().IntVar(&aggregateWorkers, "workers", 0, "concurrent landmark workers (default from config)")
	rootCmd.AddCommand(aggregateCmd)
}
