package replay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"award_cpp/internal/domain"
)

// Source serves recorded observations from <dir>/<ORIGIN>_<DEST>_<DATE>.json.
type Source struct {
	dir string
}

func New(dir string) *Source { return &Source{dir: dir} }

func (s *Source) Name() string { return "replay" }

// Path is the fixture file consulted for req.
func (s *Source) Path(req domain.SearchRequest) string {
	return filepath.Join(s.dir, fmt.Sprintf("%s_%s_%s.json", req.Origin, req.Destination, req.Date))
}

func (s *Source) Search(ctx context.Context, req domain.SearchRequest, award bool) ([]domain.Observation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r, err := Load(s.Path(req))
	if err != nil {
		return nil, err
	}
	if award {
		return r.Award, nil
	}
	return r.Cash, nil
}

// Load reads one replay file. A missing file is domain.ErrNotFound.
func Load(path string) (domain.Replay, error) {
	var r domain.Replay
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return r, fmt.Errorf("replay %s: %w", filepath.Base(path), domain.ErrNotFound)
	}
	if err != nil {
		return r, err
	}
	if err := json.Unmarshal(b, &r); err != nil {
		return r, fmt.Errorf("replay %s: %w", filepath.Base(path), err)
	}
	return r, nil
}

// Save writes r where Search will find it for req.
func (s *Source) Save(req domain.SearchRequest, r domain.Replay) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return err
	}
	b, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.Path(req), b, 0o644)
}
