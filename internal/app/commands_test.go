package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"award_cpp/internal/app"
	"award_cpp/internal/domain"
)

var lax = domain.SearchRequest{Origin: "lax", Destination: " jfk", Date: "2025-12-15"}

func pairSource() *stubSource {
	return &stubSource{
		name: "fixture",
		award: []domain.Observation{
			domain.TextObservation("Flight AA123 8:00 AM - 4:35 PM 12,500 miles + $5.60"),
			domain.TextObservation("Skip to main content"),
			domain.RecordObservation(map[string]any{
				"flightNumber":  "AA456",
				"departureTime": "2025-12-15T14:15:00",
				"awardPricing":  map[string]any{"miles": 10000, "taxes": 5.60},
			}),
		},
		cash: []domain.Observation{
			domain.TextObservation("Flight AA123 8:00 AM - 4:35 PM $289.00"),
			domain.RecordObservation(map[string]any{
				"flightNumber":  "AA456",
				"departureTime": "14:15",
				"cashPricing":   map[string]any{"totalPrice": 189.00},
			}),
		},
	}
}

func TestSearchService_Run(t *testing.T) {
	repo := &fakeRepo{}
	cache := &fakeCache{}
	svc := app.NewSearchService(pairSource(), app.NewNormalizer("AA", 5.60), repo, cache, time.Minute)

	id, rep, err := svc.Run(context.Background(), lax)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if id != 1 {
		t.Fatalf("id = %d, want 1", id)
	}
	want := domain.SearchRequest{Origin: "LAX", Destination: "JFK", Date: "2025-12-15", Passengers: 1, CabinClass: "economy"}
	if rep.SearchMetadata != want {
		t.Fatalf("metadata = %+v, want %+v", rep.SearchMetadata, want)
	}
	if rep.TotalResults != 2 || len(rep.Flights) != 2 {
		t.Fatalf("unexpected flights: %+v", rep.Flights)
	}
	if rep.Flights[0].FlightNumber != "AA123" || rep.Flights[0].CPP != 2.27 {
		t.Fatalf("flight 0 = %+v", rep.Flights[0])
	}
	if rep.Flights[1].FlightNumber != "AA456" || rep.Flights[1].CPP != 1.83 {
		t.Fatalf("flight 1 = %+v", rep.Flights[1])
	}
	if _, ok := cache.store["report:1"]; !ok {
		t.Fatalf("report was not cached")
	}
	if len(repo.misses) != 0 {
		t.Fatalf("unexpected misses: %+v", repo.misses)
	}
}

func TestSearchService_SourceFailureRecordsMiss(t *testing.T) {
	src := &stubSource{name: "api", err: domain.ErrNotFound}
	repo := &fakeRepo{}
	svc := app.NewSearchService(src, app.NewNormalizer("", 5.60), repo, nil, time.Minute)

	_, rep, err := svc.Run(context.Background(), lax)
	if err != nil {
		t.Fatalf("source failures must not fail the run: %v", err)
	}
	if rep.TotalResults != 0 || rep.Flights == nil {
		t.Fatalf("expected an empty, non-nil flight list: %+v", rep)
	}
	if len(repo.misses) != 2 {
		t.Fatalf("misses = %+v, want one per search", repo.misses)
	}
	for _, m := range repo.misses {
		if m.reason != "not found" || m.source != "api" {
			t.Fatalf("unexpected miss: %+v", m)
		}
	}
}

func TestSearchService_EmptyAwardSide(t *testing.T) {
	src := pairSource()
	src.award = nil
	repo := &fakeRepo{}
	svc := app.NewSearchService(src, app.NewNormalizer("AA", 5.60), repo, nil, time.Minute)

	_, rep, err := svc.Run(context.Background(), lax)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if rep.TotalResults != 0 {
		t.Fatalf("cash-only results must not be reported: %+v", rep.Flights)
	}
	if len(repo.misses) != 1 || repo.misses[0].kind != "award" || repo.misses[0].reason != "empty" {
		t.Fatalf("unexpected misses: %+v", repo.misses)
	}
}

func TestSearchService_InvalidRequest(t *testing.T) {
	svc := app.NewSearchService(pairSource(), app.NewNormalizer("AA", 5.60), nil, nil, 0)
	bad := []domain.SearchRequest{
		{Origin: "LA", Destination: "JFK", Date: "2025-12-15"},
		{Origin: "LAX", Destination: "J1K", Date: "2025-12-15"},
		{Origin: "LAX", Destination: "JFK", Date: "12/15/2025"},
		{Origin: "LAX", Destination: "JFK", Date: "2025-12-15", Passengers: 10},
	}
	for _, req := range bad {
		if _, _, err := svc.Run(context.Background(), req); !errors.Is(err, domain.ErrInvalidSearch) {
			t.Fatalf("%+v: expected ErrInvalidSearch, got %v", req, err)
		}
	}
}

func TestSearchService_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	svc := app.NewSearchService(pairSource(), app.NewNormalizer("AA", 5.60), &fakeRepo{}, nil, 0)
	if _, _, err := svc.Run(ctx, lax); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestSearchService_SaveError(t *testing.T) {
	boom := errors.New("db down")
	svc := app.NewSearchService(pairSource(), app.NewNormalizer("AA", 5.60), &fakeRepo{saveErr: boom}, nil, 0)
	if _, _, err := svc.Run(context.Background(), lax); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped save error, got %v", err)
	}
}

func TestSearchService_WithoutRepo(t *testing.T) {
	svc := app.NewSearchService(pairSource(), app.NewNormalizer("AA", 5.60), nil, nil, 0)
	id, rep, err := svc.Run(context.Background(), lax)
	if err != nil || id != 0 || rep.TotalResults != 2 {
		t.Fatalf("id=%d total=%d err=%v", id, rep.TotalResults, err)
	}
}

func TestSearchService_Score(t *testing.T) {
	src := pairSource()
	svc := app.NewSearchService(nil, app.NewNormalizer("AA", 5.60), nil, nil, 0)
	got := svc.Score(src.award, src.cash)
	if len(got) != 2 || got[0].CPP != 2.27 || got[1].CPP != 1.83 {
		t.Fatalf("unexpected scores: %+v", got)
	}
}
