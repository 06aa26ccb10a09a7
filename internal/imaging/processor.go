// Package imaging downloads landmark photos and normalizes them to
// web-friendly JPEGs.
package imaging

import (
	"bytes"
	"context"
	"crypto/md5" //nolint:gosec
	"encoding/hex"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/image/draw"
)

const (
	maxDimension = 1200
	jpegQuality  = 85
)

var unsafeNameChars = regexp.MustCompile(`[^a-zA-Z0-9]`)

// Processor stores processed images under a single directory. Filenames
// are derived from the landmark name plus a hash of the source URL, so
// reprocessing the same URL overwrites rather than duplicates.
type Processor struct {
	dir    string
	client *http.Client
}

// NewProcessor creates the target directory if needed. A nil client gets
// a 30-second-timeout default.
func NewProcessor(dir string, client *http.Client) (*Processor, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, eris.Wrapf(err, "imaging: create dir %s", dir)
	}
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Processor{dir: dir, client: client}, nil
}

// Dir returns the directory processed images are written to.
func (p *Processor) Dir() string {
	return p.dir
}

// ProcessImage downloads an image, downscales it to fit within
// 1200x1200 when larger, and saves it as a quality-85 JPEG. Returns the
// path of the written file.
func (p *Processor) ProcessImage(ctx context.Context, imageURL, landmarkName string) (string, error) {
	body, err := p.fetch(ctx, imageURL)
	if err != nil {
		return "", err
	}

	img, format, err := image.Decode(bytes.NewReader(body))
	if err != nil {
		return "", eris.Wrapf(err, "imaging: decode %s", imageURL)
	}

	img = fitWithin(img, maxDimension)

	path := filepath.Join(p.dir, p.filename(imageURL, landmarkName))
	out, err := os.Create(path)
	if err != nil {
		return "", eris.Wrapf(err, "imaging: create %s", path)
	}
	defer out.Close() //nolint:errcheck

	if err := jpeg.Encode(out, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return "", eris.Wrapf(err, "imaging: encode %s", path)
	}

	zap.L().Debug("image processed",
		zap.String("url", imageURL),
		zap.String("path", path),
		zap.String("source_format", format),
	)
	return path, nil
}

// fetch reads the full response body of one GET.
func (p *Processor) fetch(ctx context.Context, imageURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, eris.Wrapf(err, "imaging: build request for %s", imageURL)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, eris.Wrapf(err, "imaging: download %s", imageURL)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("imaging: unexpected status %d downloading %s", resp.StatusCode, imageURL)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrapf(err, "imaging: read body of %s", imageURL)
	}
	return body, nil
}

// ProcessUpload normalizes an already-uploaded image the same way
// ProcessImage normalizes a downloaded one. The filename hashes the
// file content, so uploading identical bytes twice overwrites.
func (p *Processor) ProcessUpload(r io.Reader, name string) (string, error) {
	body, err := io.ReadAll(r)
	if err != nil {
		return "", eris.Wrapf(err, "imaging: read upload %s", name)
	}

	img, format, err := image.Decode(bytes.NewReader(body))
	if err != nil {
		return "", eris.Wrapf(err, "imaging: decode upload %s", name)
	}

	img = fitWithin(img, maxDimension)

	base := strings.TrimSuffix(name, filepath.Ext(name))
	sum := md5.Sum(body) //nolint:gosec
	hash := hex.EncodeToString(sum[:])
	safeName := unsafeNameChars.ReplaceAllString(base, "_")
	path := filepath.Join(p.dir, fmt.Sprintf("%s_%s.jpg", safeName, hash[:8]))

	out, err := os.Create(path)
	if err != nil {
		return "", eris.Wrapf(err, "imaging: create %s", path)
	}
	defer out.Close() //nolint:errcheck

	if err := jpeg.Encode(out, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return "", eris.Wrapf(err, "imaging: encode %s", path)
	}

	zap.L().Debug("upload processed",
		zap.String("name", name),
		zap.String("path", path),
		zap.String("source_format", format),
	)
	return path, nil
}

// filename builds "<safe_name>_<md5[:8]>.jpg" where every character
// outside [a-zA-Z0-9] becomes an underscore.
func (p *Processor) filename(imageURL, landmarkName string) string {
	sum := md5.Sum([]byte(imageURL)) //nolint:gosec
	hash := hex.EncodeToString(sum[:])
	safeName := unsafeNameChars.ReplaceAllString(landmarkName, "_")
	return fmt.Sprintf("%s_%s.jpg", safeName, hash[:8])
}

// fitWithin downscales preserving aspect ratio; smaller images pass
// through untouched.
func fitWithin(img image.Image, max int) image.Image {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= max && h <= max {
		return img
	}

	scale := float64(max) / float64(w)
	if h > w {
		scale = float64(max) / float64(h)
	}
	newW := int(float64(w) * scale)
	newH := int(float64(h) * scale)
	if newW < 1 {
		newW = 1
	}
	if newH < 1 {
		newH = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst
}
