package app

import (
	"context"
	"time"

	"award_cpp/internal/domain"
)

type QueryService struct {
	repo     domain.ReportRepository
	cache    domain.Cache
	cacheTTL time.Duration
}

func NewQueryService(r domain.ReportRepository, c domain.Cache, ttl time.Duration) *QueryService {
	return &QueryService{repo: r, cache: c, cacheTTL: ttl}
}

func (s *QueryService) GetReport(ctx context.Context, id int64) (domain.Report, error) {
	key := reportKey(id)
	var rep domain.Report
	if s.cache != nil {
		if ok, _ := s.cache.Get(ctx, key, &rep); ok {
			return rep, nil
		}
	}
	rep, err := s.repo.GetReport(ctx, id)
	if err != nil {
		return domain.Report{}, err
	}
	// copy flights to avoid aliasing the repo's backing array
	rep = domain.NewReport(rep.SearchMetadata, append([]domain.FlightQuote(nil), rep.Flights...))
	if s.cache != nil {
		_ = s.cache.Set(ctx, key, rep, int(s.cacheTTL.Seconds()))
	}
	return rep, nil
}

func (s *QueryService) ListRuns(ctx context.Context, limit int) ([]domain.RunView, error) {
	switch {
	case limit <= 0:
		limit = 50
	case limit > 200:
		limit = 200
	}
	return s.repo.ListRuns(ctx, limit)
}
