package app

import (
	"github.com/rs/zerolog/log"

	"award_cpp/internal/domain"
)

// CPP is the cents-per-point value of redeeming points instead of paying cash. Negative values
// are kept: they mean the cash fare is cheaper than the award's own taxes and fees.
func CPP(cashUSD, taxesUSD float64, points int) float64 {
	if points <= 0 {
		return 0
	}
	return round2((cashUSD - taxesUSD) / float64(points) * 100)
}

// MatchAndScore pairs every award quote with the first cash quote sharing its
// (flight_number, departure_time) and returns new quotes carrying the cash price and CPP.
// Output order and length follow award; a cash quote may serve several award quotes.
func MatchAndScore(award, cash []domain.FlightQuote) []domain.FlightQuote {
	out, _ := matchAndScore(award, cash)
	return out
}

func matchAndScore(award, cash []domain.FlightQuote) ([]domain.FlightQuote, int) {
	out := make([]domain.FlightQuote, 0, len(award))
	matched := 0
	for _, a := range award {
		c, ok := firstMatch(a.Key(), cash)
		if !ok {
			a.CPP = 0
			log.Warn().
				Str("flight", a.FlightNumber).
				Str("departure", a.DepartureTime).
				Msg("no cash quote for award flight")
			out = append(out, a)
			continue
		}
		a.CashPriceUSD = c.CashPriceUSD
		a.CPP = CPP(c.CashPriceUSD, a.TaxesFeesUSD, a.PointsRequired)
		matched++
		out = append(out, a)
	}
	return out, matched
}

func firstMatch(k domain.MatchKey, cash []domain.FlightQuote) (domain.FlightQuote, bool) {
	for _, c := range cash {
		if c.Key() == k {
			return c, true
		}
	}
	return domain.FlightQuote{}, false
}
