package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"award_cpp/internal/domain"
)

// WriteJSON renders the report in its external shape, 2-space indented.
func WriteJSON(w io.Writer, r domain.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// WriteSummary renders the human-readable report: search header, one row per flight and the
// CPP analysis.
func WriteSummary(w io.Writer, r domain.Report, a domain.Analysis) error {
	m := r.SearchMetadata
	var b strings.Builder
	fmt.Fprintf(&b, "Award vs cash: %s -> %s on %s\n", m.Origin, m.Destination, m.Date)
	fmt.Fprintf(&b, "Passengers: %d, cabin: %s\n", m.Passengers, m.CabinClass)
	fmt.Fprintf(&b, "Total results: %d\n\n", r.TotalResults)

	t := table.NewWriter()
	t.SetOutputMirror(&b)
	t.AppendHeader(table.Row{"Flight", "Departure", "Arrival", "Points", "Cash", "Taxes/Fees", "CPP"})
	for _, f := range r.Flights {
		t.AppendRow(table.Row{
			f.FlightNumber,
			f.DepartureTime,
			f.ArrivalTime,
			points(f.PointsRequired),
			fmt.Sprintf("$%.2f", f.CashPriceUSD),
			fmt.Sprintf("$%.2f", f.TaxesFeesUSD),
			fmt.Sprintf("%.2f¢", f.CPP),
		})
	}
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 4, Align: text.AlignRight},
		{Number: 5, Align: text.AlignRight},
		{Number: 6, Align: text.AlignRight},
		{Number: 7, Align: text.AlignRight},
	})
	t.SetStyle(table.StyleRounded)
	t.Render()

	b.WriteString("\nCPP analysis\n")
	if a.Priced == 0 {
		b.WriteString("No flight could be valued.\n")
	} else {
		fmt.Fprintf(&b, "Valued flights: %d\n", a.Priced)
		fmt.Fprintf(&b, "Average CPP: %.2f¢\n", a.Average)
		fmt.Fprintf(&b, "Best CPP: %.2f¢\n", a.Best)
		fmt.Fprintf(&b, "Worst CPP: %.2f¢\n", a.Worst)
		rel := "below"
		if a.UsePoints {
			rel = "at or above"
		}
		fmt.Fprintf(&b, "Recommendation: %s (average is %s the %.2f¢ threshold)\n", a.Recommendation, rel, a.Threshold)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// Save writes <base>.json and <base>.txt and returns both paths.
func Save(base string, r domain.Report, a domain.Analysis) (string, string, error) {
	if dir := filepath.Dir(base); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", "", err
		}
	}
	jsonPath, txtPath := base+".json", base+".txt"
	if err := writeFile(jsonPath, func(w io.Writer) error { return WriteJSON(w, r) }); err != nil {
		return "", "", fmt.Errorf("write %s: %w", jsonPath, err)
	}
	if err := writeFile(txtPath, func(w io.Writer) error { return WriteSummary(w, r, a) }); err != nil {
		return "", "", fmt.Errorf("write %s: %w", txtPath, err)
	}
	return jsonPath, txtPath, nil
}

func writeFile(path string, render func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := render(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func points(p int) string {
	if p <= 0 {
		return "N/A"
	}
	s := fmt.Sprintf("%d", p)
	for i := len(s) - 3; i > 0; i -= 3 {
		s = s[:i] + "," + s[i:]
	}
	return s
}
