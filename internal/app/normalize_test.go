package app_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"award_cpp/internal/app"
	"award_cpp/internal/domain"
)

func newNormalizer() *app.Normalizer { return app.NewNormalizer("AA", 5.60) }

func TestNormalizeText_AwardCard(t *testing.T) {
	n := newNormalizer()
	got, ok := n.NormalizeText("AA 123 Departs 8:00 AM Arrives 4:30 PM 12,500 miles + $5.60 taxes", 0, true)
	if !ok {
		t.Fatalf("expected a quote")
	}
	want := domain.FlightQuote{
		FlightNumber:   "AA123",
		DepartureTime:  "08:00",
		ArrivalTime:    "16:30",
		PointsRequired: 12500,
		CashPriceUSD:   5.60, // first $ amount wins, even on an award card
		TaxesFeesUSD:   5.60,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("quote mismatch (-want +got):\n%s", diff)
	}
}

func TestNormalizeText_CashCard(t *testing.T) {
	n := newNormalizer()
	got, ok := n.NormalizeText("Flight AA456 2:15 PM - 10:40 PM Main Cabin $1,189.00 Taxes and fees: $12.40", 3, false)
	if !ok {
		t.Fatalf("expected a quote")
	}
	want := domain.FlightQuote{
		FlightNumber:  "AA456",
		DepartureTime: "14:15",
		ArrivalTime:   "22:40",
		CashPriceUSD:  1189.00,
		TaxesFeesUSD:  12.40,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("quote mismatch (-want +got):\n%s", diff)
	}
}

func TestNormalizeText_FirstCandidateWins(t *testing.T) {
	n := newNormalizer()
	got, _ := n.NormalizeText("UA 901 or AA 100 at 06:00 then 07:00 then 08:00 for 9,000 points or 7,500 miles", 0, true)
	if got.FlightNumber != "UA901" || got.DepartureTime != "06:00" || got.ArrivalTime != "07:00" || got.PointsRequired != 9000 {
		t.Fatalf("unexpected quote: %+v", got)
	}
	if got.CPP != 0 {
		t.Fatalf("cpp must start at 0, got %v", got.CPP)
	}
}

func TestNormalizeText_BothPricesKeepsZeroCPP(t *testing.T) {
	n := newNormalizer()
	got, ok := n.NormalizeText("AA123 $289.00 or 12,500 points", 0, true)
	if !ok || got.CashPriceUSD != 289 || got.PointsRequired != 12500 || got.CPP != 0 {
		t.Fatalf("unexpected quote: %+v ok=%v", got, ok)
	}
}

func TestNormalizeText_DefaultFilling(t *testing.T) {
	n := newNormalizer()
	for i := 0; i < 12; i++ {
		got, ok := n.NormalizeText("flight details unavailable", i, i%2 == 0)
		if !ok {
			t.Fatalf("index %d: keyword text must not be discarded", i)
		}
		want := domain.FlightQuote{
			FlightNumber:  []string{"AA001", "AA002", "AA003", "AA004", "AA005", "AA006", "AA007", "AA008", "AA009", "AA010", "AA011", "AA012"}[i],
			DepartureTime: "N/A",
			ArrivalTime:   "N/A",
			TaxesFeesUSD:  5.60,
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Fatalf("index %d (-want +got):\n%s", i, diff)
		}
	}
}

func TestNormalizeText_Discard(t *testing.T) {
	n := newNormalizer()
	for _, text := range []string{"", "Sign in to your account", "Accept all cookies", "Skip to main content 2025"} {
		for i := 0; i < 5; i++ {
			if q, ok := n.NormalizeText(text, i, true); ok {
				t.Fatalf("%q at %d: expected discard, got %+v", text, i, q)
			}
		}
	}
}

func TestNormalizeText_SignalWithoutKeywordIsKept(t *testing.T) {
	n := newNormalizer()
	if _, ok := n.NormalizeText("Only $99.00 today", 0, false); !ok {
		t.Fatalf("a price is enough signal")
	}
	if _, ok := n.NormalizeText("DL 1234", 0, false); !ok {
		t.Fatalf("a flight number is enough signal")
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	n := newNormalizer()
	obs := []domain.Observation{
		domain.TextObservation("AA 123 Departs 8:00 AM Arrives 4:30 PM 12,500 miles"),
		domain.TextObservation("nothing useful"),
		domain.RecordObservation(map[string]any{"flightNumber": "AA77", "departureTime": "09:10"}),
	}
	for i, o := range obs {
		a, okA := n.Normalize(o, i, true)
		b, okB := n.Normalize(o, i, true)
		if okA != okB || a != b {
			t.Fatalf("observation %d: %+v/%v vs %+v/%v", i, a, okA, b, okB)
		}
	}
}

func TestNormalizeRecord_Award(t *testing.T) {
	n := newNormalizer()
	rec := map[string]any{
		"flightNumber":  "aa 100",
		"departureTime": "2025-12-15T08:00:00",
		"arrivalTime":   "2025-12-15T16:30:00",
		"awardPricing":  map[string]any{"miles": 12500, "taxes": 5.6},
	}
	got := n.NormalizeRecord(rec, 0, true)
	want := domain.FlightQuote{
		FlightNumber:   "AA100",
		DepartureTime:  "08:00",
		ArrivalTime:    "16:30",
		PointsRequired: 12500,
		TaxesFeesUSD:   5.6,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("quote mismatch (-want +got):\n%s", diff)
	}
}

func TestNormalizeRecord_FallbackKeysAndCoercion(t *testing.T) {
	n := newNormalizer()
	rec := map[string]any{
		"flight_number": "",
		"number":        2451.0,
		"depTime":       "7:05 PM",
		"pricing":       map[string]any{"miles": "bogus", "points": "15,000", "fees": "$11.20"},
	}
	got := n.NormalizeRecord(rec, 4, true)
	want := domain.FlightQuote{
		FlightNumber:   "AA2451",
		DepartureTime:  "19:05",
		ArrivalTime:    "N/A",
		PointsRequired: 15000,
		TaxesFeesUSD:   11.20,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("quote mismatch (-want +got):\n%s", diff)
	}
}

func TestNormalizeRecord_Cash(t *testing.T) {
	n := newNormalizer()
	rec := map[string]any{
		"id":           "AA100",
		"departure":    "08:00",
		"awardPricing": map[string]any{"miles": 99999},
		"cashPricing":  map[string]any{"totalPrice": "abc", "price": 289},
	}
	got := n.NormalizeRecord(rec, 0, false)
	if got.FlightNumber != "AA100" || got.DepartureTime != "08:00" || got.CashPriceUSD != 289 || got.PointsRequired != 0 || got.TaxesFeesUSD != 5.60 {
		t.Fatalf("unexpected quote: %+v", got)
	}
}

func TestNormalizeRecord_PricingSkipsNonObjects(t *testing.T) {
	n := newNormalizer()
	got := n.NormalizeRecord(map[string]any{"awardPricing": "n/a", "pricing": map[string]any{"miles": 9000}}, 0, true)
	if got.PointsRequired != 9000 {
		t.Fatalf("expected points from generic pricing, got %+v", got)
	}
}

func TestNormalizeRecord_EmptyAlwaysSucceeds(t *testing.T) {
	n := newNormalizer()
	got, ok := n.Normalize(domain.RecordObservation(map[string]any{}), 6, false)
	want := domain.FlightQuote{FlightNumber: "AA007", DepartureTime: "N/A", ArrivalTime: "N/A", TaxesFeesUSD: 5.60}
	if !ok {
		t.Fatalf("records are never discarded")
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("quote mismatch (-want +got):\n%s", diff)
	}
}

func TestNormalizeRecord_DecodedJSON(t *testing.T) {
	var obs []domain.Observation
	raw := `[{"flightNumber":"AA 2","departureTime":"06:05","cashPricing":{"totalFare":"$119.20","taxesAndFees":"14.30"}}, "Sign in"]`
	if err := json.Unmarshal([]byte(raw), &obs); err != nil {
		t.Fatalf("decode: %v", err)
	}
	quotes, discarded := newNormalizer().NormalizeAll(obs, false)
	if discarded != 1 || len(quotes) != 1 {
		t.Fatalf("expected 1 quote and 1 discard, got %d/%d", len(quotes), discarded)
	}
	if q := quotes[0]; q.FlightNumber != "AA2" || q.CashPriceUSD != 119.20 || q.TaxesFeesUSD != 14.30 {
		t.Fatalf("unexpected quote: %+v", q)
	}
}

func TestNormalizeAll_IndexCountsDiscarded(t *testing.T) {
	obs := []domain.Observation{
		domain.TextObservation("cookie banner"),
		domain.TextObservation("award seat available"),
	}
	quotes, discarded := newNormalizer().NormalizeAll(obs, true)
	if discarded != 1 || len(quotes) != 1 || quotes[0].FlightNumber != "AA002" {
		t.Fatalf("unexpected result: %+v discarded=%d", quotes, discarded)
	}
}

func TestNewNormalizer_CarrierPrefix(t *testing.T) {
	q, _ := app.NewNormalizer("ua", 0).NormalizeText("flight", 0, false)
	if q.FlightNumber != "UA001" || q.TaxesFeesUSD != 0 {
		t.Fatalf("unexpected quote: %+v", q)
	}
}

func TestNormalizeRecord_LongIDFitsColumn(t *testing.T) {
	n := newNormalizer()
	got := n.NormalizeRecord(map[string]any{"id": "3f9a1c2e-7b41-4c0d-9e52-1a2b3c4d5e6f"}, 0, false)
	if got.FlightNumber != "3F9A1C2E7B414C0D9E521A2B3C4D5E6F" {
		t.Fatalf("flight_number=%q", got.FlightNumber)
	}

	long := strings.Repeat("x", 100)
	got = n.NormalizeRecord(map[string]any{"id": long}, 0, false)
	if len(got.FlightNumber) != domain.MaxFlightNumberLen {
		t.Fatalf("len=%d want %d", len(got.FlightNumber), domain.MaxFlightNumberLen)
	}
	got = n.NormalizeRecord(map[string]any{"id": strings.Repeat("7", 100)}, 0, false)
	if len(got.FlightNumber) != domain.MaxFlightNumberLen || !strings.HasPrefix(got.FlightNumber, "AA") {
		t.Fatalf("prefixed digits not capped: %q", got.FlightNumber)
	}
}

func TestNormalizeRecord_CarrierCodeIsNotAFlightNumber(t *testing.T) {
	got := newNormalizer().NormalizeRecord(map[string]any{"carrierCode": "AA"}, 2, false)
	if got.FlightNumber != "AA003" {
		t.Fatalf("flight_number=%q want placeholder AA003", got.FlightNumber)
	}
}

func TestNormalizeText_CurrencyCodeIsNotAFlight(t *testing.T) {
	n := newNormalizer()
	got, ok := n.NormalizeText("Main Cabin price USD 289.00 nonstop, 8:00 AM", 1, false)
	if !ok {
		t.Fatalf("expected a quote")
	}
	if got.FlightNumber != "AA002" {
		t.Fatalf("flight_number=%q want placeholder", got.FlightNumber)
	}

	got, _ = n.NormalizeText("USD 289.00 on AA 123 departing 8:00 AM", 0, false)
	if got.FlightNumber != "AA123" {
		t.Fatalf("flight_number=%q want AA123", got.FlightNumber)
	}
}
