package app

import (
	"context"

	"github.com/rs/zerolog/log"

	"award_cpp/internal/domain"
)

// FallbackSource tries each source in order and returns the first non-empty result.
type FallbackSource struct {
	sources []domain.ObservationSource
}

func NewFallbackSource(srcs ...domain.ObservationSource) *FallbackSource {
	return &FallbackSource{sources: srcs}
}

func (f *FallbackSource) Name() string { return "fallback" }

func (f *FallbackSource) Search(ctx context.Context, req domain.SearchRequest, award bool) ([]domain.Observation, error) {
	var last error
	for _, s := range f.sources {
		obs, err := s.Search(ctx, req, award)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			log.Warn().Err(err).Str("source", s.Name()).Bool("award", award).Msg("source failed, trying next")
			last = err
			continue
		}
		if len(obs) > 0 {
			log.Debug().Str("source", s.Name()).Int("observations", len(obs)).Bool("award", award).Msg("source answered")
			return obs, nil
		}
		log.Info().Str("source", s.Name()).Bool("award", award).Msg("source returned nothing, trying next")
	}
	return nil, last
}
