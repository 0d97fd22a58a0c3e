package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"award_cpp/internal/adapters/report"
	"award_cpp/internal/adapters/sources"
	"award_cpp/internal/app"
	"award_cpp/internal/domain"
)

var (
	searchReq domain.SearchRequest
	output    string
)

func init() {
	f := searchCmd.Flags()
	f.StringVar(&searchReq.Origin, "origin", "LAX", "origin airport code")
	f.StringVar(&searchReq.Destination, "destination", "JFK", "destination airport code")
	f.StringVar(&searchReq.Date, "date", "2025-12-15", "departure date (YYYY-MM-DD)")
	f.IntVar(&searchReq.Passengers, "passengers", 1, "number of passengers (1-9)")
	f.StringVar(&searchReq.CabinClass, "cabin", "economy", "cabin class")
	f.StringVarP(&output, "output", "o", "", "output base path for <output>.json and <output>.txt (default <output-dir>/<ORIGIN>_<DEST>_<DATE>, - for stdout)")
	rootCmd.AddCommand(searchCmd)
}

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Searches one route and writes the CPP report.",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newSearchService()
		if err != nil {
			return err
		}
		_, rep, err := svc.Run(cmd.Context(), searchReq)
		if err != nil {
			return err
		}
		a := app.Analyze(rep, cfg.Threshold)

		switch output {
		case "-":
			if err := report.WriteJSON(os.Stdout, rep); err != nil {
				return err
			}
			return report.WriteSummary(os.Stderr, rep, a)
		case "":
			output = reportBase(cfg.OutputDir, rep.SearchMetadata)
		}
		jp, tp, err := report.Save(output, rep, a)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "wrote %s and %s\n", jp, tp)
		return nil
	},
}

func newSearchService() (*app.SearchService, error) {
	src, err := sources.New(sourceMode, cfg)
	if err != nil {
		return nil, err
	}
	return app.NewSearchService(src, app.NewNormalizer(cfg.Carrier, cfg.DefaultTax), nil, nil, 0), nil
}

// reportBase names the output files of one route inside dir.
func reportBase(dir string, req domain.SearchRequest) string {
	return filepath.Join(dir, fmt.Sprintf("%s_%s_%s", req.Origin, req.Destination, req.Date))
}
