package cmd

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"award_cpp/internal/adapters/replay"
	"award_cpp/internal/app"
	"award_cpp/internal/domain"
)

func TestParseRoutes(t *testing.T) {
	reqs, err := parseRoutes([]string{"LAX-JFK", " sfo-bos "}, "2025-12-20", "economy")
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if len(reqs) != 2 || reqs[1].Origin != "sfo" || reqs[1].Destination != "bos" || reqs[1].Date != "2025-12-20" {
		t.Fatalf("unexpected requests: %+v", reqs)
	}
	if _, err := parseRoutes([]string{"LAXJFK"}, "2025-12-20", "economy"); err == nil {
		t.Fatalf("expected error for malformed route")
	}
}

func TestRunBatch(t *testing.T) {
	fixtures := t.TempDir()
	out := t.TempDir()
	src := replay.New(fixtures)
	err := src.Save(domain.SearchRequest{Origin: "LAX", Destination: "JFK", Date: "2025-12-15"}, domain.Replay{
		Award: []domain.Observation{domain.TextObservation("Flight AA123 8:00 AM 12,500 miles")},
		Cash:  []domain.Observation{domain.TextObservation("Flight AA123 8:00 AM $289.00")},
	})
	if err != nil {
		t.Fatalf("save fixture: %v", err)
	}

	svc := app.NewSearchService(src, app.NewNormalizer("AA", 5.60), nil, nil, 0)
	reqs := []domain.SearchRequest{
		{Origin: "lax", Destination: "jfk", Date: "2025-12-15"},
		{Origin: "SFO", Destination: "BOS", Date: "2025-12-15"}, // no fixture: empty report
		{Origin: "SFO", Destination: "BOS", Date: "bad"},
	}
	results := runBatch(context.Background(), svc, reqs, 2, out)
	if len(results) != 3 {
		t.Fatalf("len = %d", len(results))
	}
	if results[0].err != nil || results[0].n != 1 || results[0].a.Average != 2.27 {
		t.Fatalf("unexpected LAX-JFK result: %+v", results[0])
	}
	if results[1].err != nil || results[1].n != 0 {
		t.Fatalf("unexpected SFO-BOS result: %+v", results[1])
	}
	if results[2].err == nil {
		t.Fatalf("invalid date must fail")
	}
	for _, name := range []string{"LAX_JFK_2025-12-15.json", "LAX_JFK_2025-12-15.txt", "SFO_BOS_2025-12-15.json"} {
		if _, err := os.Stat(filepath.Join(out, name)); err != nil {
			t.Fatalf("missing %s: %v", name, err)
		}
	}
}
