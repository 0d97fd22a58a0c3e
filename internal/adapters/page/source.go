package page

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"
	"github.com/rs/zerolog/log"

	"award_cpp/internal/adapters/observability"
	"award_cpp/internal/domain"
)

// DefaultSelectors are tried in order; the first one that matches anything wins.
var DefaultSelectors = []string{
	"[data-testid='flight-card']",
	".flight-card, .flight-option",
	".flight-result",
	".trip-option",
	"[data-testid*='flight']",
	"[class*='flight']",
}

// minTextLen drops navigation crumbs and labels that can never describe a flight.
const minTextLen = 20

const userAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 14_7_6) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/18.4 Safari/605.1.15"

// Source scrapes a rendered results page into text observations.
type Source struct {
	resultsURL string
	selectors  []string
	timeout    time.Duration
}

func New(resultsURL string, selectors []string) *Source {
	if len(selectors) == 0 {
		selectors = DefaultSelectors
	}
	return &Source{resultsURL: resultsURL, selectors: selectors, timeout: 30 * time.Second}
}

func (s *Source) Name() string { return "page" }

// SearchURL builds the one-way results URL for req; award adds the redeem-miles switch.
func (s *Source) SearchURL(req domain.SearchRequest, award bool) string {
	q := url.Values{}
	q.Set("origin", req.Origin)
	q.Set("destination", req.Destination)
	q.Set("departDate", req.Date)
	q.Set("adults", strconv.Itoa(max(req.Passengers, 1)))
	q.Set("cabinClass", req.CabinClass)
	if award {
		q.Set("redeemMiles", "true")
	}
	sep := "?"
	if strings.Contains(s.resultsURL, "?") {
		sep = "&"
	}
	return s.resultsURL + sep + q.Encode()
}

func (s *Source) Search(ctx context.Context, req domain.SearchRequest, award bool) ([]domain.Observation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	target := s.SearchURL(req, award)
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var (
		doc    *goquery.Selection
		err    error
		status int
	)
	collector := colly.NewCollector()
	collector.UserAgent = userAgent
	collector.SetRequestTimeout(s.timeout)
	collector.WithTransport(ctxTransport{ctx: ctx, next: http.DefaultTransport})

	collector.OnRequest(func(r *colly.Request) {
		if ctx.Err() != nil {
			r.Abort()
		}
	})
	collector.OnResponse(func(r *colly.Response) {
		status = r.StatusCode
	})
	collector.OnHTML("html", func(e *colly.HTMLElement) {
		doc = e.DOM
	})
	collector.OnError(func(r *colly.Response, e error) {
		status = r.StatusCode
		if r.StatusCode == http.StatusNotFound {
			err = fmt.Errorf("page %s: %w", target, domain.ErrNotFound)
			return
		}
		err = fmt.Errorf("page %s: %d: %w", target, r.StatusCode, e)
	})

	start := time.Now()
	if verr := collector.Visit(target); verr != nil && err == nil {
		err = verr
	}
	observability.ObserveExternal("page", "results", status, time.Since(start))
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, nil
	}
	return s.extract(doc, award), nil
}

func (s *Source) extract(doc *goquery.Selection, award bool) []domain.Observation {
	for _, sel := range s.selectors {
		found := doc.Find(sel)
		if found.Length() == 0 {
			continue
		}
		out := make([]domain.Observation, 0, found.Length())
		found.Each(func(_ int, el *goquery.Selection) {
			if text := collapse(el.Text()); len(text) > minTextLen {
				out = append(out, domain.TextObservation(text))
			}
		})
		log.Debug().
			Str("selector", sel).
			Int("elements", found.Length()).
			Int("kept", len(out)).
			Bool("award", award).
			Msg("results page matched")
		return out
	}
	return nil
}

// ctxTransport binds every collector request to the search context, which also carries
// the fetch deadline.
type ctxTransport struct {
	ctx  context.Context
	next http.RoundTripper
}

func (t ctxTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	return t.next.RoundTrip(r.WithContext(t.ctx))
}

func collapse(s string) string { return strings.Join(strings.Fields(s), " ") }
