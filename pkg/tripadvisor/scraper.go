// Package tripadvisor scrapes attraction pages for opening hours,
// ticket prices and recent reviews. TripAdvisor has no public API for
// this data, so the scraper goes through the HTML search flow.
package tripadvisor

import (
	"bytes"
	"context"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"github.com/rotisserie/eris"
)

const (
	defaultBaseURL = "https://www.tripadvisor.com"
	chromeUA       = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36"

	// maxReviews caps how many reviews are pulled from a page.
	maxReviews = 5
)

var (
	attractionPathRe = regexp.MustCompile(`/Attraction_Review[^'"\s]*`)
	bubbleRe         = regexp.MustCompile(`bubble_(\d{2})`)
)

// Scraper looks up attractions by name.
type Scraper interface {
	Attraction(ctx context.Context, name string) (*Attraction, error)
}

// Attraction holds the scraped fields for one attraction page.
type Attraction struct {
	Name         string
	URL          string
	OpeningHours map[string]string
	TicketPrices map[string]string
	Reviews      []Review
}

// Review is a single visitor review.
type Review struct {
	Text   string
	Rating float64
	Date   string
}

// Option configures the scraper.
type Option func(*scraper)

// WithBaseURL overrides the default site URL.
func WithBaseURL(url string) Option {
	return func(s *scraper) {
		s.baseURL = url
	}
}

// WithTimeout overrides the default request timeout.
func WithTimeout(d time.Duration) Option {
	return func(s *scraper) {
		s.timeout = d
	}
}

type scraper struct {
	baseURL string
	timeout time.Duration
	http    *resty.Client
}

// New creates a Scraper. The underlying client carries a cookie jar,
// a browser user agent and the Cloudflare bypass transport, and only
// follows redirects within the site's domain.
func New(opts ...Option) (Scraper, error) {
	s := &scraper{
		baseURL: defaultBaseURL,
		timeout: 30 * time.Second,
	}
	for _, o := range opts {
		o(s)
	}

	base, err := url.Parse(s.baseURL)
	if err != nil {
		return nil, eris.Wrapf(err, "tripadvisor: parse base url %s", s.baseURL)
	}

	client := resty.New()
	client.SetBaseURL(s.baseURL)
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, eris.Wrap(err, "tripadvisor: cookie jar")
	}
	client.SetCookieJar(jar)
	client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)
	client.SetHeader("user-agent", chromeUA)
	client.SetRedirectPolicy(resty.DomainCheckRedirectPolicy(base.Hostname()))
	client.SetTimeout(s.timeout)

	s.http = client
	return s, nil
}

// Attraction searches for the name and scrapes the first result's page.
func (s *scraper) Attraction(ctx context.Context, name string) (*Attraction, error) {
	doc, err := s.fetch(ctx, "/Search?q="+url.QueryEscape(name))
	if err != nil {
		return nil, eris.Wrapf(err, "tripadvisor: search %q", name)
	}

	path := firstResultPath(doc)
	if path == "" {
		return nil, eris.Errorf("tripadvisor: no search results for %q", name)
	}

	page, err := s.fetch(ctx, path)
	if err != nil {
		return nil, eris.Wrapf(err, "tripadvisor: attraction page %s", path)
	}

	return &Attraction{
		Name:         strings.TrimSpace(page.Find("h1").First().Text()),
		URL:          s.baseURL + path,
		OpeningHours: parseLabeledPairs(page, ".hours_text"),
		TicketPrices: parseLabeledPairs(page, ".price_text"),
		Reviews:      parseReviews(page),
	}, nil
}

func (s *scraper) fetch(ctx context.Context, path string) (*goquery.Document, error) {
	res, err := s.http.R().SetContext(ctx).Get(path)
	if err != nil {
		return nil, eris.Wrap(err, "fetch")
	}
	if res.StatusCode() != http.StatusOK {
		return nil, eris.Errorf("unexpected status %d", res.StatusCode())
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
	if err != nil {
		return nil, eris.Wrap(err, "parse html")
	}
	return doc, nil
}

// firstResultPath extracts the attraction link from the first search
// result. Depending on page variant the link lives on the title
// element, an inner anchor, or an onclick handler.
func firstResultPath(doc *goquery.Document) string {
	result := doc.Find(".result-title").First()
	if result.Length() == 0 {
		return ""
	}
	if href, ok := result.Attr("href"); ok && href != "" {
		return href
	}
	if href, ok := result.Find("a").First().Attr("href"); ok && href != "" {
		return href
	}
	if onclick, ok := result.Attr("onclick"); ok {
		if m := attractionPathRe.FindString(onclick); m != "" {
			return m
		}
	}
	return ""
}

// parseLabeledPairs reads "Label: value" rows into a map. Rows without
// a separator are skipped.
func parseLabeledPairs(doc *goquery.Document, selector string) map[string]string {
	out := map[string]string{}
	doc.Find(selector).Each(func(_ int, sel *goquery.Selection) {
		parts := strings.SplitN(strings.TrimSpace(sel.Text()), ":", 2)
		if len(parts) != 2 {
			return
		}
		label := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		if label != "" && value != "" {
			out[label] = value
		}
	})
	if len(out) == 0 {
		return nil
	}
	return out
}

func parseReviews(doc *goquery.Document) []Review {
	var reviews []Review
	doc.Find(".review-container").EachWithBreak(func(i int, sel *goquery.Selection) bool {
		if i >= maxReviews {
			return false
		}
		r := Review{
			Text:   strings.TrimSpace(sel.Find(".review-text").First().Text()),
			Rating: parseRating(sel.Find(".rating-circle").First()),
			Date:   strings.TrimSpace(sel.Find(".review-date").First().Text()),
		}
		if r.Text != "" {
			reviews = append(reviews, r)
		}
		return true
	})
	return reviews
}

// parseRating reads a review score either from the element text or
// from a bubble_NN class on rendered pages (bubble_45 means 4.5).
func parseRating(sel *goquery.Selection) float64 {
	if txt := strings.TrimSpace(sel.Text()); txt != "" {
		if v, err := strconv.ParseFloat(txt, 64); err == nil {
			return v
		}
	}
	if class, ok := sel.Attr("class"); ok {
		if m := bubbleRe.FindStringSubmatch(class); m != nil {
			if v, err := strconv.ParseFloat(m[1], 64); err == nil {
				return v / 10
			}
		}
	}
	return 0
}
