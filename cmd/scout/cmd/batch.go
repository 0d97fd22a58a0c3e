package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/semaphore"

	"award_cpp/internal/adapters/report"
	"award_cpp/internal/app"
	"award_cpp/internal/domain"
)

var (
	batchRoutes  []string
	batchDate    string
	batchCabin   string
	batchWorkers int
	batchOut     string
)

func init() {
	f := batchCmd.Flags()
	f.StringSliceVar(&batchRoutes, "routes", nil, "comma-separated ORIGIN-DEST pairs, e.g. LAX-JFK,SFO-BOS")
	f.StringVar(&batchDate, "date", "2025-12-15", "departure date (YYYY-MM-DD)")
	f.StringVar(&batchCabin, "cabin", "economy", "cabin class")
	f.IntVar(&batchWorkers, "workers", cfg.Workers, "concurrent searches")
	f.StringVar(&batchOut, "output-dir", cfg.OutputDir, "directory for per-route reports")
	_ = batchCmd.MarkFlagRequired("routes")
	rootCmd.AddCommand(batchCmd)
}

type routeResult struct {
	req domain.SearchRequest
	a   domain.Analysis
	n   int
	err error
}

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Searches several routes concurrently and prints a comparison table.",
	RunE: func(cmd *cobra.Command, args []string) error {
		reqs, err := parseRoutes(batchRoutes, batchDate, batchCabin)
		if err != nil {
			return err
		}
		svc, err := newSearchService()
		if err != nil {
			return err
		}
		results := runBatch(cmd.Context(), svc, reqs, batchWorkers, batchOut)

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"Route", "Flights", "Valued", "Avg CPP", "Recommendation"})
		failed := 0
		for _, r := range results {
			route := r.req.Origin + "-" + r.req.Destination
			if r.err != nil {
				failed++
				t.AppendRow(table.Row{route, "-", "-", "-", "error: " + r.err.Error()})
				continue
			}
			t.AppendRow(table.Row{route, r.n, r.a.Priced, fmt.Sprintf("%.2f¢", r.a.Average), r.a.Recommendation})
		}
		t.SetStyle(table.StyleRounded)
		t.Render()
		if failed > 0 {
			return fmt.Errorf("%d of %d routes failed", failed, len(results))
		}
		return nil
	},
}

func parseRoutes(routes []string, date, cabin string) ([]domain.SearchRequest, error) {
	out := make([]domain.SearchRequest, 0, len(routes))
	for _, r := range routes {
		from, to, ok := strings.Cut(strings.TrimSpace(r), "-")
		if !ok {
			return nil, fmt.Errorf("route %q must look like LAX-JFK", r)
		}
		out = append(out, domain.SearchRequest{Origin: from, Destination: to, Date: date, Passengers: 1, CabinClass: cabin})
	}
	return out, nil
}

// runBatch searches every route with at most workers in flight; results keep input order.
func runBatch(ctx context.Context, svc *app.SearchService, reqs []domain.SearchRequest, workers int, dir string) []routeResult {
	if workers <= 0 {
		workers = 1
	}
	results := make([]routeResult, len(reqs))
	sem := semaphore.NewWeighted(int64(workers))
	var wg sync.WaitGroup

	for i, req := range reqs {
		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, 1); err != nil {
			results[i] = routeResult{req: req, err: err}
			continue
		}
		wg.Add(1)
		go func(i int, req domain.SearchRequest) {
			defer wg.Done()
			defer sem.Release(1)

			_, rep, err := svc.Run(ctx, req)
			if err != nil {
				log.Warn().Err(err).Str("origin", req.Origin).Str("destination", req.Destination).Msg("route failed")
				results[i] = routeResult{req: req, err: err}
				return
			}
			a := app.Analyze(rep, cfg.Threshold)
			if _, _, err := report.Save(reportBase(dir, rep.SearchMetadata), rep, a); err != nil {
				results[i] = routeResult{req: rep.SearchMetadata, err: err}
				return
			}
			results[i] = routeResult{req: rep.SearchMetadata, a: a, n: rep.TotalResults}
		}(i, req)
	}
	wg.Wait()
	return results
}
