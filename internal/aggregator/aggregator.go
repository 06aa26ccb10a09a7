// Package aggregator runs the multi-source landmark pipeline: fetch
// from each provider, merge, classify, validate, persist, enrich.
package aggregator

import (
	"context"
	"encoding/json"
	"os"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/gravgor/landmark-cli/internal/classify"
	"github.com/gravgor/landmark-cli/internal/config"
	"github.com/gravgor/landmark-cli/internal/enrich"
	"github.com/gravgor/landmark-cli/internal/imaging"
	"github.com/gravgor/landmark-cli/internal/model"
	"github.com/gravgor/landmark-cli/internal/store"
	"github.com/gravgor/landmark-cli/pkg/geocode"
	"github.com/gravgor/landmark-cli/pkg/places"
	"github.com/gravgor/landmark-cli/pkg/tripadvisor"
	"github.com/gravgor/landmark-cli/pkg/wikipedia"
)

const defaultWorkers = 4

// Outcome of one landmark's run through the pipeline.
const (
	StatusSaved      = "saved"
	StatusNoData     = "no data"
	StatusInvalid    = "invalid"
	StatusSaveFailed = "save failed"
)

// Result is the per-landmark outcome. Landmark is set whenever a merged
// record was produced, even if the database save failed.
type Result struct {
	Name       string            `json:"name"`
	Status     string            `json:"status"`
	Landmark   *model.Landmark   `json:"landmark,omitempty"`
	Enrichment *model.Enrichment `json:"enrichment,omitempty"`
}

// backupRecord is one entry in the end-of-run JSON backup, keeping the
// detail blob alongside rather than nested in the landmark.
type backupRecord struct {
	Landmark   model.Landmark        `json:"landmark"`
	Detail     *model.LandmarkDetail `json:"landmark_detail,omitempty"`
	Enrichment *model.Enrichment     `json:"enrichment,omitempty"`
}

// Aggregator wires the providers, classifier and store into one
// pipeline.
type Aggregator struct {
	store      store.Store
	wiki       wikipedia.Client
	places     places.Client
	trip       tripadvisor.Scraper
	geo        geocode.Client
	classifier classify.Classifier
	enricher   *enrich.Enricher
	processor  *imaging.Processor
	workers    int
	backupPath string
}

// New creates an Aggregator with all dependencies.
func New(
	cfg config.AggregatorConfig,
	st store.Store,
	wikiClient wikipedia.Client,
	placesClient places.Client,
	tripScraper tripadvisor.Scraper,
	geoClient geocode.Client,
	classifier classify.Classifier,
	enricher *enrich.Enricher,
	processor *imaging.Processor,
) *Aggregator {
	workers := cfg.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}
	return &Aggregator{
		store:      st,
		wiki:       wikiClient,
		places:     placesClient,
		trip:       tripScraper,
		geo:        geoClient,
		classifier: classifier,
		enricher:   enricher,
		processor:  processor,
		workers:    workers,
		backupPath: cfg.OutputFile,
	}
}

// Run drains the name list through a bounded worker pool, each worker
// running the full single-landmark pipeline in isolation. One worker's
// failure never stops the batch. Results arrive in completion order;
// merged records are mirrored to the JSON backup file at the end.
func (a *Aggregator) Run(ctx context.Context, names []string) ([]Result, error) {
	if len(names) == 0 {
		zap.L().Info("no landmarks to process")
		return nil, nil
	}

	zap.L().Info("processing landmarks",
		zap.Int("landmarks", len(names)),
		zap.Int("workers", a.workers),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.workers)

	var mu sync.Mutex
	results := make([]Result, 0, len(names))

	for _, name := range names {
		g.Go(func() error {
			r := a.processLandmark(gctx, name)
			mu.Lock()
			results = append(results, r)
			mu.Unlock()
			return nil // don't abort batch on individual failure
		})
	}

	if err := g.Wait(); err != nil {
		return nil, eris.Wrap(err, "aggregator: run")
	}

	a.enrichResults(results)
	a.writeBackup(results)

	var processed int
	for _, r := range results {
		if r.Landmark != nil {
			processed++
		}
	}
	zap.L().Info("aggregation complete",
		zap.Int("processed", processed),
		zap.Int("failed", len(names)-processed),
	)

	return results, nil
}

// processLandmark runs the full pipeline for one name. A record needs
// at least the encyclopedia or the places provider; the review site
// alone is not enough to build one.
func (a *Aggregator) processLandmark(ctx context.Context, name string) Result {
	log := zap.L().With(zap.String("landmark", name))

	wiki := a.FetchWikipedia(ctx, name)
	google := a.FetchPlaces(ctx, name)
	trip := a.FetchTripAdvisor(ctx, name)

	if wiki == nil && google == nil {
		log.Error("no data found")
		return Result{Name: name, Status: StatusNoData}
	}

	lm := a.Combine(ctx, name, wiki, google, trip)

	if err := ValidateLandmark(lm); err != nil {
		log.Error("merged record failed validation", zap.Error(err))
		return Result{Name: name, Status: StatusInvalid}
	}

	a.processImages(ctx, lm)

	lm.ValidationStatus = true
	lm.LastUpdated = time.Now().UTC()

	saved, err := a.store.UpsertLandmark(ctx, lm)
	if err != nil {
		log.Error("database save failed", zap.Error(err))
		return Result{Name: name, Status: StatusSaveFailed, Landmark: lm}
	}

	log.Info("landmark saved", zap.String("id", saved.ID), zap.String("category", saved.Category))
	return Result{Name: name, Status: StatusSaved, Landmark: saved}
}

// processImages downloads each merged image URL through the processor
// and swaps in the local path. A failed download keeps the original URL.
func (a *Aggregator) processImages(ctx context.Context, lm *model.Landmark) {
	if a.processor == nil || len(lm.ImagePaths) == 0 {
		return
	}
	processed := make([]string, 0, len(lm.ImagePaths))
	for _, imageURL := range lm.ImagePaths {
		path, err := a.processor.ProcessImage(ctx, imageURL, lm.Name)
		if err != nil {
			zap.L().Warn("image processing failed",
				zap.String("landmark", lm.Name),
				zap.String("url", imageURL),
				zap.Error(err),
			)
			processed = append(processed, imageURL)
			continue
		}
		processed = append(processed, path)
	}
	lm.ImagePaths = processed
}

// enrichResults annotates each merged record using the full collected
// list, so relationship finding sees every landmark from the run.
func (a *Aggregator) enrichResults(results []Result) {
	if a.enricher == nil {
		return
	}
	all := make([]model.Landmark, 0, len(results))
	for _, r := range results {
		if r.Landmark != nil {
			all = append(all, *r.Landmark)
		}
	}
	for i := range results {
		if results[i].Landmark == nil {
			continue
		}
		enrichment := a.enricher.Enrich(*results[i].Landmark, all)
		results[i].Enrichment = &enrichment
	}
}

// writeBackup mirrors every merged record to a JSON file, preserving
// the run's output even when individual database saves failed.
func (a *Aggregator) writeBackup(results []Result) {
	if a.backupPath == "" {
		return
	}
	records := make([]backupRecord, 0, len(results))
	for _, r := range results {
		if r.Landmark == nil {
			continue
		}
		lm := *r.Landmark
		detail := lm.Detail
		lm.Detail = nil
		records = append(records, backupRecord{
			Landmark:   lm,
			Detail:     detail,
			Enrichment: r.Enrichment,
		})
	}

	data, err := json.MarshalIndent(records, "", "    ")
	if err != nil {
		zap.L().Warn("backup marshal failed", zap.Error(err))
		return
	}
	if err := os.WriteFile(a.backupPath, data, 0o644); err != nil {
		zap.L().Warn("backup write failed", zap.String("path", a.backupPath), zap.Error(err))
		return
	}
	zap.L().Info("backup written", zap.String("path", a.backupPath), zap.Int("records", len(records)))
}
