package app

import "award_cpp/internal/domain"

const (
	RecommendPoints = "use points"
	RecommendCash   = "pay cash"
)

// Analyze aggregates CPP over flights that actually got a positive valuation.
func Analyze(r domain.Report, threshold float64) domain.Analysis {
	a := domain.Analysis{Threshold: threshold, Recommendation: RecommendCash}
	var sum float64
	for _, f := range r.Flights {
		if f.CPP <= 0 {
			continue
		}
		if a.Priced == 0 || f.CPP > a.Best {
			a.Best = f.CPP
		}
		if a.Priced == 0 || f.CPP < a.Worst {
			a.Worst = f.CPP
		}
		sum += f.CPP
		a.Priced++
	}
	if a.Priced == 0 {
		return a
	}
	a.Average = round2(sum / float64(a.Priced))
	if a.Average >= threshold {
		a.UsePoints = true
		a.Recommendation = RecommendPoints
	}
	return a
}
