package report_test

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"award_cpp/internal/adapters/report"
	"award_cpp/internal/domain"
)

func sample() domain.Report {
	return domain.NewReport(
		domain.SearchRequest{Origin: "LAX", Destination: "JFK", Date: "2025-12-15", Passengers: 1, CabinClass: "economy"},
		[]domain.FlightQuote{
			{FlightNumber: "AA123", DepartureTime: "08:00", ArrivalTime: "16:35", PointsRequired: 12500, CashPriceUSD: 289, TaxesFeesUSD: 5.6, CPP: 2.27},
			{FlightNumber: "AA456", DepartureTime: "14:15", ArrivalTime: "N/A", PointsRequired: 10000, CashPriceUSD: 189, TaxesFeesUSD: 5.6, CPP: 1.83},
		},
	)
}

func TestWriteJSON_Shape(t *testing.T) {
	var buf bytes.Buffer
	if err := report.WriteJSON(&buf, sample()); err != nil {
		t.Fatalf("err: %v", err)
	}
	out := buf.String()
	if !strings.HasPrefix(out, "{\n  \"search_metadata\": {\n    \"origin\": \"LAX\"") {
		t.Fatalf("unexpected layout:\n%s", out)
	}

	var generic map[string]any
	if err := json.Unmarshal(buf.Bytes(), &generic); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	for _, k := range []string{"search_metadata", "flights", "total_results"} {
		if _, ok := generic[k]; !ok {
			t.Fatalf("missing key %q", k)
		}
	}
	f := generic["flights"].([]any)[0].(map[string]any)
	for _, k := range []string{"flight_number", "departure_time", "arrival_time", "points_required", "cash_price_usd", "taxes_fees_usd", "cpp"} {
		if _, ok := f[k]; !ok {
			t.Fatalf("flight missing key %q", k)
		}
	}
	if f["cpp"].(float64) != 2.27 {
		t.Fatalf("cpp = %v", f["cpp"])
	}
}

func TestWriteJSON_EmptyFlights(t *testing.T) {
	var buf bytes.Buffer
	_ = report.WriteJSON(&buf, domain.NewReport(domain.SearchRequest{}, nil))
	if !strings.Contains(buf.String(), "\"flights\": []") {
		t.Fatalf("empty flights must encode as []:\n%s", buf.String())
	}
}

func TestWriteSummary(t *testing.T) {
	a := domain.Analysis{Priced: 2, Average: 2.05, Best: 2.27, Worst: 1.83, Threshold: 1.5, UsePoints: true, Recommendation: "use points"}
	var buf bytes.Buffer
	if err := report.WriteSummary(&buf, sample(), a); err != nil {
		t.Fatalf("err: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"LAX -> JFK on 2025-12-15", "AA123", "12,500", "$289.00", "2.27¢", "Average CPP: 2.05¢", "use points"} {
		if !strings.Contains(out, want) {
			t.Fatalf("summary missing %q:\n%s", want, out)
		}
	}

	buf.Reset()
	_ = report.WriteSummary(&buf, domain.NewReport(domain.SearchRequest{}, nil), domain.Analysis{})
	if !strings.Contains(buf.String(), "No flight could be valued.") {
		t.Fatalf("unexpected empty summary:\n%s", buf.String())
	}
}

func TestSave(t *testing.T) {
	base := filepath.Join(t.TempDir(), "out", "LAX_JFK")
	jp, tp, err := report.Save(base, sample(), domain.Analysis{})
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	for _, p := range []string{jp, tp} {
		if st, err := os.Stat(p); err != nil || st.Size() == 0 {
			t.Fatalf("%s not written: %v", p, err)
		}
	}
}
