package domain

import (
	"context"
	"time"
)

// ObservationSource yields raw observations for one search. award selects the award
// (points) search instead of the cash search.
type ObservationSource interface {
	Name() string
	Search(ctx context.Context, req SearchRequest, award bool) ([]Observation, error)
}

type ReportRepository interface {
	// Write paths
	SaveReport(ctx context.Context, r Report) (int64, error)
	LogMiss(ctx context.Context, req SearchRequest, kind, source, reason string) error

	// Read paths
	GetReport(ctx context.Context, id int64) (Report, error)
	ListRuns(ctx context.Context, limit int) ([]RunView, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}

// Read models
type RunView struct {
	ID           int64         `json:"id"`
	Search       SearchRequest `json:"search_metadata"`
	TotalResults int           `json:"total_results"`
	CreatedAt    time.Time     `json:"created_at"`
}
