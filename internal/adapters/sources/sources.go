package sources

import (
	"fmt"

	"award_cpp/internal/adapters/aa"
	"award_cpp/internal/adapters/page"
	"award_cpp/internal/adapters/replay"
	"award_cpp/internal/app"
	"award_cpp/internal/domain"
	"award_cpp/internal/shared"
)

// New builds the observation source for mode: api, page, replay, or auto (api, then page,
// then replay).
func New(mode string, cfg shared.Config) (domain.ObservationSource, error) {
	switch mode {
	case "api":
		api, err := aa.New(cfg.AABase, cfg.SourceRPS)
		if err != nil {
			return nil, err
		}
		return api, nil
	case "page":
		return page.New(cfg.ResultsURL, cfg.Selectors), nil
	case "replay":
		return replay.New(cfg.ReplayDir), nil
	case "auto", "":
		api, err := aa.New(cfg.AABase, cfg.SourceRPS)
		if err != nil {
			return nil, err
		}
		return app.NewFallbackSource(api, page.New(cfg.ResultsURL, cfg.Selectors), replay.New(cfg.ReplayDir)), nil
	default:
		return nil, fmt.Errorf("unknown source mode %q", mode)
	}
}
