// internal/adapters/aa/client.go
package aa

import (
	"bytes"
	"context"
	crand "crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"award_cpp/internal/adapters/observability"
	"award_cpp/internal/domain"
)

type Client struct {
	base string
	hc   *http.Client
	rl   *rate.Limiter
}

func New(base string, rps int) (*Client, error) {
	if base == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	if rps <= 0 {
		rps = 2
	}
	return &Client{
		base: strings.TrimRight(base, "/"),
		hc:   &http.Client{Timeout: 30 * time.Second},
		rl:   rate.NewLimiter(rate.Limit(rps), rps),
	}, nil
}

func (c *Client) Name() string { return "api" }

// ---- Public API (tries the weekly search first, falls back to older variants) ----

var searchPaths = []string{
	"/booking/api/search/weekly", // preferred
	"/booking/api/search",
	"/api/search/flights",
	"/booking/api/flights/search", // legacy
}

// Search posts a one-way search and returns every flight element of the response as a record
// observation.
func (c *Client) Search(ctx context.Context, req domain.SearchRequest, award bool) ([]domain.Observation, error) {
	candidates := make([]string, len(searchPaths))
	for i, p := range searchPaths {
		candidates[i] = c.base + p
	}
	var body any
	if err := c.postFirst(ctx, candidates, searchPayload(req, award), &body); err != nil {
		return nil, err
	}
	return flightRecords(body), nil
}

type payload struct {
	Metadata      payloadMeta  `json:"metadata"`
	Passengers    []paxCount   `json:"passengers"`
	RequestHeader clientHeader `json:"requestHeader"`
	Slices        []slice      `json:"slices"`
	TripOptions   tripOptions  `json:"tripOptions"`
	LoyaltyInfo   any          `json:"loyaltyInfo"`
	Version       string       `json:"version"`
	QueryParams   queryParams  `json:"queryParams"`
}

type payloadMeta struct {
	SelectedProducts []string          `json:"selectedProducts"`
	TripType         string            `json:"tripType"`
	UDO              map[string]string `json:"udo"`
}

type paxCount struct {
	Type  string `json:"type"`
	Count int    `json:"count"`
}

type clientHeader struct {
	ClientID string `json:"clientId"`
}

type slice struct {
	AllCarriers               bool   `json:"allCarriers"`
	Cabin                     string `json:"cabin"`
	DepartureDate             string `json:"departureDate"`
	Destination               string `json:"destination"`
	DestinationNearbyAirports bool   `json:"destinationNearbyAirports"`
	MaxStops                  *int   `json:"maxStops"`
	Origin                    string `json:"origin"`
	OriginNearbyAirports      bool   `json:"originNearbyAirports"`
}

type tripOptions struct {
	CorporateBooking bool    `json:"corporateBooking"`
	FareType         string  `json:"fareType"`
	Locale           string  `json:"locale"`
	PointOfSale      *string `json:"pointOfSale"`
	SearchType       string  `json:"searchType"`
}

type queryParams struct {
	SliceIndex  int    `json:"sliceIndex"`
	SessionID   string `json:"sessionId"`
	SolutionSet string `json:"solutionSet"`
	SolutionID  string `json:"solutionId"`
	Sort        string `json:"sort"`
}

func searchPayload(req domain.SearchRequest, award bool) payload {
	searchType := "Revenue"
	if award {
		searchType = "Award"
	}
	pax := req.Passengers
	if pax <= 0 {
		pax = 1
	}
	return payload{
		Metadata: payloadMeta{
			SelectedProducts: []string{},
			TripType:         "OneWay",
			UDO:              map[string]string{"search_method": "Lowest"},
		},
		Passengers:    []paxCount{{Type: "adult", Count: pax}},
		RequestHeader: clientHeader{ClientID: "AAcom"},
		Slices: []slice{{
			AllCarriers:   true,
			DepartureDate: req.Date,
			Destination:   strings.ToUpper(req.Destination),
			Origin:        strings.ToUpper(req.Origin),
		}},
		TripOptions: tripOptions{
			FareType:   "Lowest",
			Locale:     "en_US",
			SearchType: searchType,
		},
		Version:     "cfr",
		QueryParams: queryParams{Sort: "CARRIER"},
	}
}

// flightRecords finds the flights array wherever the response keeps it. Non-object elements
// are skipped.
func flightRecords(body any) []domain.Observation {
	var list []any
	switch v := body.(type) {
	case []any:
		list = v
	case map[string]any:
		for _, k := range []string{"flights", "results", "data"} {
			if arr, ok := v[k].([]any); ok && len(arr) > 0 {
				list = arr
				break
			}
		}
		if list == nil {
			if days, ok := v["days"].([]any); ok {
				for _, d := range days {
					if dm, ok := d.(map[string]any); ok {
						if arr, ok := dm["flights"].([]any); ok {
							list = append(list, arr...)
						}
					}
				}
			}
		}
	}

	out := make([]domain.Observation, 0, len(list))
	for _, el := range list {
		if m, ok := el.(map[string]any); ok {
			out = append(out, domain.RecordObservation(m))
		}
	}
	return out
}

// ---- Internals ----

var (
	ErrNotFound     = fmt.Errorf("aa: %w", domain.ErrNotFound)
	ErrUnauthorized = errors.New("aa: unauthorized")
	ErrForbidden    = errors.New("aa: forbidden")
)

func (c *Client) postFirst(ctx context.Context, urls []string, body any, out any) error {
	var last error
	for _, u := range urls {
		if err := c.post(ctx, u, body, out); err != nil {
			if errors.Is(err, ErrNotFound) {
				last = err
				continue // try next pattern
			}
			return err // non-404: stop early
		}
		return nil // success
	}
	if last != nil {
		return last
	}
	return errors.New("no candidate URL succeeded")
}

// post performs a JSON POST with client-side rate limiting, retries, and JSON decode into out.
// Retries on 429 and transient 5xx, honoring Retry-After when provided.
func (c *Client) post(ctx context.Context, url string, body any, out any) error {
	if err := c.rl.Wait(ctx); err != nil {
		return err
	}
	raw, err := json.Marshal(body)
	if err != nil {
		return err
	}

	start := time.Now()
	status := 0
	endpoint := strings.TrimPrefix(url, c.base)
	defer func() { observability.ObserveExternal("aa", endpoint, status, time.Since(start)) }()

	var lastErr error
	for i := 0; i < 4; i++ {
		// build a fresh request each attempt
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(raw))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json, text/plain, */*")
		req.Header.Set("User-Agent", "award-cpp/1.0")

		resp, err := c.hc.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			lastErr = err
			if i < 3 && sleepCtx(ctx, backoff(i)) {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return lastErr
		}
		status = resp.StatusCode

		switch resp.StatusCode {
		case http.StatusOK, http.StatusCreated, http.StatusAccepted:
			err := json.NewDecoder(resp.Body).Decode(out)
			resp.Body.Close()
			if err != nil {
				return fmt.Errorf("decode %s: %w", url, err)
			}
			return nil

		case http.StatusNoContent:
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			return nil

		case http.StatusNotFound:
			resp.Body.Close()
			return ErrNotFound

		case http.StatusUnauthorized:
			resp.Body.Close()
			return ErrUnauthorized

		case http.StatusForbidden:
			resp.Body.Close()
			return ErrForbidden

		case http.StatusTooManyRequests, http.StatusInternalServerError,
			http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			// Prefer server-provided Retry-After; otherwise exponential backoff.
			wait := retryAfter(resp)
			resp.Body.Close()
			if wait == 0 {
				wait = backoff(i)
			}
			lastErr = fmt.Errorf("remote %d", resp.StatusCode)
			if i < 3 && sleepCtx(ctx, wait) {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return lastErr

		default:
			b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			resp.Body.Close()
			return fmt.Errorf("bad status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
		}
	}

	return lastErr
}

// sleepCtx waits for d or returns early if ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// retryAfter parses Retry-After header (seconds or HTTP-date). Returns 0 if absent/invalid.
func retryAfter(resp *http.Response) time.Duration {
	h := resp.Header.Get("Retry-After")
	if h == "" {
		return 0
	}
	if secs, err := strconv.Atoi(strings.TrimSpace(h)); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(h); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}

// backoff doubles from 250ms per attempt with up to +50% jitter.
func backoff(i int) time.Duration {
	base := time.Duration(1<<i) * 250 * time.Millisecond
	var b [1]byte
	if _, err := crand.Read(b[:]); err != nil {
		return base
	}
	f := float64(b[0]) / 255.0
	return base + time.Duration(0.5*f*float64(base))
}
