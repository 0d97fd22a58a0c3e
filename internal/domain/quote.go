package domain

import "errors"

var (
	ErrNotFound      = errors.New("not found")
	ErrInvalidSearch = errors.New("invalid search")
)

// NotAvailable marks a time that could not be observed.
const NotAvailable = "N/A"

// MaxFlightNumberLen bounds flight numbers taken from API ids; flight_quotes.flight_number matches it.
const MaxFlightNumberLen = 64

type FlightQuote struct {
	FlightNumber   string  `json:"flight_number"`
	DepartureTime  string  `json:"departure_time"` // HH:MM (24h) or N/A
	ArrivalTime    string  `json:"arrival_time"`
	PointsRequired int     `json:"points_required"`
	CashPriceUSD   float64 `json:"cash_price_usd"`
	TaxesFeesUSD   float64 `json:"taxes_fees_usd"`
	CPP            float64 `json:"cpp"`
}

// MatchKey is the (flight_number, departure_time) pair used to pair award and cash quotes.
type MatchKey struct {
	FlightNumber  string
	DepartureTime string
}

func (q FlightQuote) Key() MatchKey {
	return MatchKey{FlightNumber: q.FlightNumber, DepartureTime: q.DepartureTime}
}

type SearchRequest struct {
	Origin      string `json:"origin"`
	Destination string `json:"destination"`
	Date        string `json:"date"`
	Passengers  int    `json:"passengers"`
	CabinClass  string `json:"cabin_class"`
}

// Report is the persisted shape consumed by downstream readers; field names are fixed.
type Report struct {
	SearchMetadata SearchRequest `json:"search_metadata"`
	Flights        []FlightQuote `json:"flights"`
	TotalResults   int           `json:"total_results"`
}

func NewReport(req SearchRequest, flights []FlightQuote) Report {
	if flights == nil {
		flights = []FlightQuote{}
	}
	return Report{SearchMetadata: req, Flights: flights, TotalResults: len(flights)}
}

// Analysis summarizes the CPP values of a report.
type Analysis struct {
	Priced         int
	Average        float64
	Best           float64
	Worst          float64
	Threshold      float64
	UsePoints      bool
	Recommendation string
}
