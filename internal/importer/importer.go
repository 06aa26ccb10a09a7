// Package importer runs the photo import pipeline: search for images,
// download them, upload the batch, create the landmark record.
package importer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"go.uber.org/zap"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/gravgor/landmark-cli/internal/config"
	"github.com/gravgor/landmark-cli/internal/model"
	"github.com/gravgor/landmark-cli/pkg/landmarkapi"
	"github.com/gravgor/landmark-cli/pkg/unsplash"
)

const defaultImageCount = 5

// Outcome of one record's run through the pipeline.
const (
	StatusCreated      = "created"
	StatusSkipped      = "skipped"
	StatusCreateFailed = "create failed"
)

// Result is the per-record outcome.
type Result struct {
	Name       string
	Status     string
	Found      int
	Downloaded int
	Uploaded   int
}

// Importer wires the image search and content API clients together.
type Importer struct {
	unsplash   unsplash.Client
	api        landmarkapi.Client
	tempDir    string
	imageCount int
}

// New creates an Importer. An empty temp dir selects the system default.
func New(cfg config.ImporterConfig, unsplashClient unsplash.Client, apiClient landmarkapi.Client) *Importer {
	imageCount := cfg.ImageCount
	if imageCount <= 0 {
		imageCount = defaultImageCount
	}
	tempDir := cfg.TempDir
	if tempDir == "" {
		tempDir = os.TempDir()
	}
	return &Importer{
		unsplash:   unsplashClient,
		api:        apiClient,
		tempDir:    tempDir,
		imageCount: imageCount,
	}
}

// Run drives each record through find, download, upload and create in
// sequence, then removes the downloaded files. Individual failures
// degrade that record's outcome, never the batch.
func (im *Importer) Run(ctx context.Context, records []model.ImportRecord) []Result {
	if len(records) == 0 {
		zap.L().Info("no landmarks to import")
		return nil
	}

	zap.L().Info("importing landmarks", zap.Int("landmarks", len(records)))

	results := make([]Result, 0, len(records))
	for _, rec := range records {
		results = append(results, im.processRecord(ctx, rec))
	}

	var created int
	for _, r := range results {
		if r.Status == StatusCreated {
			created++
		}
	}
	zap.L().Info("import complete",
		zap.Int("created", created),
		zap.Int("skipped", len(results)-created),
	)
	return results
}

func (im *Importer) processRecord(ctx context.Context, rec model.ImportRecord) Result {
	log := zap.L().With(zap.String("landmark", rec.Landmark.Name))
	r := Result{Name: rec.Landmark.Name}

	urls := im.FindImages(ctx, rec.Landmark.Name, im.imageCount)
	r.Found = len(urls)
	if len(urls) == 0 {
		log.Warn("no images found, skipping upload")
		_ = im.CreateLandmark(ctx, rec, nil)
		r.Status = StatusSkipped
		return r
	}

	paths := make([]string, 0, len(urls))
	for i, u := range urls {
		if path := im.DownloadImage(ctx, u, rec.Landmark.Name, i); path != "" {
			paths = append(paths, path)
		}
	}
	r.Downloaded = len(paths)
	defer im.cleanup(paths)

	uploaded := im.UploadImages(ctx, paths)
	r.Uploaded = len(uploaded)

	if err := im.CreateLandmark(ctx, rec, uploaded); err != nil {
		r.Status = StatusCreateFailed
	} else if len(uploaded) == 0 {
		r.Status = StatusSkipped
	} else {
		r.Status = StatusCreated
	}
	return r
}

// FindImages queries the image search API and returns up to count image
// URLs in provider relevance order. Failures degrade to an empty list.
func (im *Importer) FindImages(ctx context.Context, name string, count int) []string {
	if count <= 0 {
		count = defaultImageCount
	}
	resp, err := im.unsplash.SearchPhotos(ctx, name, count)
	if err != nil {
		zap.L().Warn("image search failed", zap.String("landmark", name), zap.Error(err))
		return nil
	}
	urls := make([]string, 0, len(resp.Results))
	for _, photo := range resp.Results {
		if photo.URLs.Regular != "" {
			urls = append(urls, photo.URLs.Regular)
		}
	}
	return urls
}

// DownloadImage fetches one photo into the temp directory as
// <sanitized-name>_<index>.jpg and returns the absolute path, or ""
// when the download failed.
func (im *Importer) DownloadImage(ctx context.Context, photoURL, name string, index int) string {
	path := filepath.Join(im.tempDir, fmt.Sprintf("%s_%d.jpg", sanitizeName(name), index))
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}

	f, err := os.Create(path)
	if err != nil {
		zap.L().Error("failed to create image file", zap.String("path", path), zap.Error(err))
		return ""
	}

	_, err = im.unsplash.Download(ctx, photoURL, f)
	f.Close() //nolint:errcheck
	if err != nil {
		zap.L().Error("failed to download image", zap.String("url", photoURL), zap.Error(err))
		os.Remove(path) //nolint:errcheck
		return ""
	}

	zap.L().Info("image downloaded", zap.String("path", path))
	return path
}

// UploadImages filters out missing files and sends the rest as one
// multipart batch. Failures degrade to an empty list.
func (im *Importer) UploadImages(ctx context.Context, paths []string) []string {
	existing := make([]string, 0, len(paths))
	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			zap.L().Error("file not found, skipping", zap.String("path", path))
			continue
		}
		existing = append(existing, path)
	}
	if len(existing) == 0 {
		zap.L().Error("no valid files to upload")
		return nil
	}

	zap.L().Info("uploading images", zap.Int("files", len(existing)))
	urls, err := im.api.UploadImages(ctx, existing)
	if err != nil {
		zap.L().Error("image upload failed", zap.Error(err))
		return nil
	}
	zap.L().Info("images uploaded", zap.Int("urls", len(urls)))
	return urls
}

// CreateLandmark posts the creation payload. An empty imageURLs list
// skips the request entirely: a landmark is never created without
// hosted images.
func (im *Importer) CreateLandmark(ctx context.Context, rec model.ImportRecord, imageURLs []string) error {
	if len(imageURLs) == 0 {
		zap.L().Warn("no images available, skipping creation",
			zap.String("landmark", rec.Landmark.Name))
		return nil
	}

	err := im.api.CreateLandmark(ctx, landmarkapi.CreateRequest{
		Landmark:       rec.Landmark,
		LandmarkDetail: rec.Detail,
		ImageURLs:      imageURLs,
	})
	if err != nil {
		zap.L().Error("landmark creation failed",
			zap.String("landmark", rec.Landmark.Name),
			zap.Error(err),
		)
		return err
	}

	zap.L().Info("landmark created",
		zap.String("landmark", rec.Landmark.Name),
		zap.Int("images", len(imageURLs)),
	)
	return nil
}

// cleanup removes downloaded temp files, best effort.
func (im *Importer) cleanup(paths []string) {
	for _, path := range paths {
		if err := os.Remove(path); err != nil {
			zap.L().Error("failed to remove temp file", zap.String("path", path), zap.Error(err))
			continue
		}
		zap.L().Debug("removed temp file", zap.String("path", path))
	}
}

// Filenames keep letters intact by folding diacritics rather than
// dropping them.
var nameFolder = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

func sanitizeName(name string) string {
	folded, _, err := transform.String(nameFolder, name)
	if err != nil {
		folded = name
	}
	return strings.ReplaceAll(folded, " ", "_")
}
