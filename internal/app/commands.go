package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"award_cpp/internal/adapters/observability"
	"award_cpp/internal/domain"
)

type SearchService struct {
	source   domain.ObservationSource
	norm     *Normalizer
	repo     domain.ReportRepository // optional: CLI runs keep nothing
	cache    domain.Cache            // optional
	cacheTTL time.Duration
}

func NewSearchService(src domain.ObservationSource, n *Normalizer, r domain.ReportRepository, c domain.Cache, ttl time.Duration) *SearchService {
	return &SearchService{source: src, norm: n, repo: r, cache: c, cacheTTL: ttl}
}

// Run performs the cash and award searches for req, values every award quote and returns the
// report together with its stored id (0 without a repository). Source failures only shorten
// the lists; the error return is for invalid input, cancellation and storage.
func (s *SearchService) Run(ctx context.Context, req domain.SearchRequest) (int64, domain.Report, error) {
	req, err := ValidateSearch(req)
	if err != nil {
		return 0, domain.Report{}, err
	}

	var cashObs, awardObs []domain.Observation
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		obs, err := s.search(gctx, req, false)
		cashObs = obs
		return err
	})
	g.Go(func() error {
		obs, err := s.search(gctx, req, true)
		awardObs = obs
		return err
	})
	if err := g.Wait(); err != nil {
		return 0, domain.Report{}, err
	}

	cash, cashDropped := s.norm.NormalizeAll(cashObs, false)
	award, awardDropped := s.norm.NormalizeAll(awardObs, true)
	observability.ObserveObservations(observability.SearchKind(false), len(cash), cashDropped)
	observability.ObserveObservations(observability.SearchKind(true), len(award), awardDropped)

	flights, matched := matchAndScore(award, cash)
	observability.ObserveMatches(matched, len(flights)-matched)
	rep := domain.NewReport(req, flights)

	log.Info().
		Str("origin", req.Origin).
		Str("destination", req.Destination).
		Str("date", req.Date).
		Int("cash", len(cash)).
		Int("award", len(award)).
		Int("matched", matched).
		Msg("search valued")

	if s.repo == nil {
		return 0, rep, nil
	}
	id, err := s.repo.SaveReport(ctx, rep)
	if err != nil {
		return 0, domain.Report{}, fmt.Errorf("save report: %w", err)
	}
	if s.cache != nil {
		_ = s.cache.Set(ctx, reportKey(id), rep, int(s.cacheTTL.Seconds()))
	}
	return id, rep, nil
}

// Score values already collected observations without touching any source or store.
func (s *SearchService) Score(awardObs, cashObs []domain.Observation) []domain.FlightQuote {
	cash, _ := s.norm.NormalizeAll(cashObs, false)
	award, _ := s.norm.NormalizeAll(awardObs, true)
	return MatchAndScore(award, cash)
}

// search runs one side of the pair. A failing or empty source is recorded and yields nothing;
// only cancellation is returned.
func (s *SearchService) search(ctx context.Context, req domain.SearchRequest, award bool) ([]domain.Observation, error) {
	kind := observability.SearchKind(award)
	obs, err := s.source.Search(ctx, req, award)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		reason := "error"
		if errors.Is(err, domain.ErrNotFound) {
			reason = "not found"
		}
		observability.ObserveSourceError(s.source.Name(), kind, err)
		log.Warn().Err(err).Str("source", s.source.Name()).Str("search", kind).Msg("search failed")
		s.logMiss(ctx, req, kind, reason)
		return nil, nil
	}
	if len(obs) == 0 {
		log.Warn().Str("source", s.source.Name()).Str("search", kind).Msg("search returned no observations")
		s.logMiss(ctx, req, kind, "empty")
	}
	return obs, nil
}

func (s *SearchService) logMiss(ctx context.Context, req domain.SearchRequest, kind, reason string) {
	if s.repo == nil {
		return
	}
	if err := s.repo.LogMiss(ctx, req, kind, s.source.Name(), reason); err != nil {
		log.Error().Err(err).Str("search", kind).Msg("log miss failed")
	}
}

// ValidateSearch canonicalizes a request: upper-case 3-letter airport codes, ISO date,
// 1..9 passengers (0 means 1) and a lower-case cabin defaulting to economy.
func ValidateSearch(req domain.SearchRequest) (domain.SearchRequest, error) {
	req.Origin = strings.ToUpper(strings.TrimSpace(req.Origin))
	req.Destination = strings.ToUpper(strings.TrimSpace(req.Destination))
	req.Date = strings.TrimSpace(req.Date)
	req.CabinClass = strings.ToLower(strings.TrimSpace(req.CabinClass))

	if !isAirportCode(req.Origin) {
		return req, fmt.Errorf("%w: origin %q must be a 3-letter airport code", domain.ErrInvalidSearch, req.Origin)
	}
	if !isAirportCode(req.Destination) {
		return req, fmt.Errorf("%w: destination %q must be a 3-letter airport code", domain.ErrInvalidSearch, req.Destination)
	}
	if _, err := time.Parse("2006-01-02", req.Date); err != nil {
		return req, fmt.Errorf("%w: date %q must be YYYY-MM-DD", domain.ErrInvalidSearch, req.Date)
	}
	if req.Passengers == 0 {
		req.Passengers = 1
	}
	if req.Passengers < 1 || req.Passengers > 9 {
		return req, fmt.Errorf("%w: passengers must be between 1 and 9", domain.ErrInvalidSearch)
	}
	if req.CabinClass == "" {
		req.CabinClass = "economy"
	}
	return req, nil
}

func isAirportCode(s string) bool {
	if len(s) != 3 {
		return false
	}
	for _, r := range s {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}

func reportKey(id int64) string { return fmt.Sprintf("report:%d", id) }
