package app

import (
	"regexp"
	"strings"

	"award_cpp/internal/domain"
)

// Normalizer turns raw observations into FlightQuotes. It holds configuration only and is
// safe for concurrent use.
type Normalizer struct {
	carrier      string
	defaultTaxes float64
}

func NewNormalizer(carrier string, defaultTaxes float64) *Normalizer {
	if carrier == "" {
		carrier = "AA"
	}
	return &Normalizer{carrier: strings.ToUpper(carrier), defaultTaxes: defaultTaxes}
}

// Normalize dispatches on the observation shape. The bool is false only for text that carries
// no flight signal at all.
func (n *Normalizer) Normalize(obs domain.Observation, index int, award bool) (domain.FlightQuote, bool) {
	if obs.IsRecord() {
		return n.NormalizeRecord(obs.Record, index, award), true
	}
	return n.NormalizeText(obs.Text, index, award)
}

// NormalizeAll normalizes in order; index is the observation's position, discarded ones included.
func (n *Normalizer) NormalizeAll(obs []domain.Observation, award bool) ([]domain.FlightQuote, int) {
	out := make([]domain.FlightQuote, 0, len(obs))
	discarded := 0
	for i, o := range obs {
		q, ok := n.Normalize(o, i, award)
		if !ok {
			discarded++
			continue
		}
		out = append(out, q)
	}
	return out, discarded
}

/********** free text **********/

type textField int

const (
	fieldFlightNumber textField = iota
	fieldCash
	fieldPoints
	fieldTaxes
	fieldCount
)

type textExtract struct {
	flightNumber string
	cash         float64
	points       int
	taxes        float64
	seen         [fieldCount]bool
}

// textRule captures one way of finding a field; the first match that apply accepts wins.
type textRule struct {
	field textField
	re    *regexp.Regexp
	apply func(m []string, x *textExtract) bool
}

var textRules = []textRule{
	{
		field: fieldFlightNumber,
		re:    regexp.MustCompile(`\b([A-Z]{2,3})\s*-?\s*(\d{3,4})\b`),
		apply: func(m []string, x *textExtract) bool {
			if currencyCodes[m[1]] {
				return false // "USD 289.00"
			}
			x.flightNumber = canonicalFlightNumber(m[1] + m[2])
			return true
		},
	},
	{
		field: fieldCash,
		re:    regexp.MustCompile(`\$\s?(` + amount + `)`),
		apply: func(m []string, x *textExtract) bool {
			f, ok := parseAmount(m[1])
			x.cash = round2(f)
			return ok
		},
	},
	{
		field: fieldPoints,
		re:    regexp.MustCompile(`(?i)(\d{1,3}(?:,\d{3})+|\d+)\s*(?:points|miles)\b`),
		apply: func(m []string, x *textExtract) bool {
			p, ok := parseCount(m[1])
			x.points = p
			return ok
		},
	},
	// "Taxes & fees: $5.60"
	{
		field: fieldTaxes,
		re:    regexp.MustCompile(`(?i)\b(?:taxes|tax|fees|fee)\b[\s:]*(?:USD\s*)?\$?\s?(` + amount + `)`),
		apply: applyTaxes,
	},
	// "+ $5.60 taxes"
	{
		field: fieldTaxes,
		re:    regexp.MustCompile(`(?i)\$\s?(` + amount + `)\s*(?:in\s+)?(?:taxes|tax|fees|fee)\b`),
		apply: applyTaxes,
	},
}

var currencyCodes = map[string]bool{"USD": true, "EUR": true, "GBP": true, "CAD": true, "MXN": true, "JPY": true, "AUD": true}

func applyTaxes(m []string, x *textExtract) bool {
	f, ok := parseAmount(m[1])
	x.taxes = round2(f)
	return ok
}

var domainKeywords = []string{"flight", "depart", "arrive", "price", "points", "miles", "award"}

func hasDomainKeyword(text string) bool {
	low := strings.ToLower(text)
	for _, kw := range domainKeywords {
		if strings.Contains(low, kw) {
			return true
		}
	}
	return false
}

// NormalizeText extracts a quote from a scraped text block. award is accepted for symmetry
// with NormalizeRecord; text extraction keeps whatever pricing it finds.
func (n *Normalizer) NormalizeText(text string, index int, award bool) (domain.FlightQuote, bool) {
	var x textExtract
	for _, r := range textRules {
		if x.seen[r.field] {
			continue
		}
		for _, m := range r.re.FindAllStringSubmatch(text, -1) {
			if r.apply(m, &x) {
				x.seen[r.field] = true
				break
			}
		}
	}

	if !x.seen[fieldFlightNumber] && x.points == 0 && x.cash == 0 && !hasDomainKeyword(text) {
		return domain.FlightQuote{}, false
	}

	q := domain.FlightQuote{
		FlightNumber:   x.flightNumber,
		DepartureTime:  domain.NotAvailable,
		ArrivalTime:    domain.NotAvailable,
		PointsRequired: x.points,
		CashPriceUSD:   x.cash,
		TaxesFeesUSD:   n.defaultTaxes,
	}
	if q.FlightNumber == "" {
		q.FlightNumber = placeholderFlightNumber(n.carrier, index)
	}
	if x.seen[fieldTaxes] {
		q.TaxesFeesUSD = x.taxes
	}
	clocks := findClocks(text)
	if len(clocks) > 0 {
		q.DepartureTime = clocks[0]
	}
	if len(clocks) > 1 {
		q.ArrivalTime = clocks[1]
	}
	return q, true
}

/********** API records **********/

// quoteAliases lists candidate keys per logical field in priority order. Dot paths reach into
// nested objects.
var quoteAliases = map[string][]string{
	"flight_number":  {"flightNumber", "flight_number", "number", "flightId", "id"},
	"departure_time": {"departureTime", "departure_time", "departure", "depTime", "depart", "departureDateTime", "departure.time"},
	"arrival_time":   {"arrivalTime", "arrival_time", "arrival", "arrTime", "arrive", "arrivalDateTime", "arrival.time"},
	"award_pricing":  {"awardPricing", "award_pricing", "milesPricing", "pricing", "fare"},
	"cash_pricing":   {"cashPricing", "cash_pricing", "revenuePricing", "pricing", "fare"},
	"points":         {"miles", "points", "awardMiles", "totalMiles", "requiredMiles", "awardPoints"},
	"cash_price":     {"totalPrice", "total_price", "basePrice", "price", "fare", "totalFare"},
	"taxes":          {"taxes", "fees", "taxesAndFees", "totalFees", "governmentFees"},
}

// lookupAny: safe nested lookup with dot paths on maps.
func lookupAny(m map[string]any, path string) any {
	cur := any(m)
	for _, part := range strings.Split(path, ".") {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		v, ok := obj[part]
		if !ok {
			return nil
		}
		cur = v
	}
	return cur
}

// firstString: first candidate holding a non-empty scalar.
func firstString(m map[string]any, key string) (string, bool) {
	for _, p := range quoteAliases[key] {
		if s, ok := stringValue(lookupAny(m, p)); ok {
			return s, true
		}
	}
	return "", false
}

// firstMap: first candidate holding an object.
func firstMap(m map[string]any, key string) map[string]any {
	for _, p := range quoteAliases[key] {
		if obj, ok := lookupAny(m, p).(map[string]any); ok {
			return obj
		}
	}
	return nil
}

// firstPositive: first candidate that coerces to a number > 0; zero counts as empty.
func firstPositive(m map[string]any, key string) (float64, bool) {
	for _, p := range quoteAliases[key] {
		if f, ok := floatValue(lookupAny(m, p)); ok && f > 0 {
			return f, true
		}
	}
	return 0, false
}

// NormalizeRecord maps one element of an API flights array. It always yields a quote.
func (n *Normalizer) NormalizeRecord(rec map[string]any, index int, award bool) domain.FlightQuote {
	q := domain.FlightQuote{
		FlightNumber:  placeholderFlightNumber(n.carrier, index),
		DepartureTime: domain.NotAvailable,
		ArrivalTime:   domain.NotAvailable,
		TaxesFeesUSD:  n.defaultTaxes,
	}
	if rec == nil {
		return q
	}

	if s, ok := firstString(rec, "flight_number"); ok {
		fn := canonicalFlightNumber(s)
		if isDigits(fn) {
			fn = canonicalFlightNumber(n.carrier + fn)
		}
		q.FlightNumber = fn
	}
	if s, ok := firstString(rec, "departure_time"); ok {
		q.DepartureTime = defaultClock(clockOf(s))
	}
	if s, ok := firstString(rec, "arrival_time"); ok {
		q.ArrivalTime = defaultClock(clockOf(s))
	}

	pricingKey, priceKey := "cash_pricing", "cash_price"
	if award {
		pricingKey, priceKey = "award_pricing", "points"
	}
	pricing := firstMap(rec, pricingKey)
	if pricing == nil {
		return q
	}
	if f, ok := firstPositive(pricing, priceKey); ok {
		if award {
			q.PointsRequired = int(f)
		} else {
			q.CashPriceUSD = round2(f)
		}
	}
	if f, ok := firstPositive(pricing, "taxes"); ok {
		q.TaxesFeesUSD = round2(f)
	}
	return q
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
