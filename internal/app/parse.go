package app

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"award_cpp/internal/domain"
)

/********** shared value parsing (text rules and API records both go through here) **********/

// amount matches 289, 289.00, 1,289.50 (thousands separators optional).
const amount = `\d{1,3}(?:,\d{3})+(?:\.\d{1,2})?|\d+(?:\.\d{1,2})?`

var (
	clockRe     = regexp.MustCompile(`\b(\d{1,2}):([0-5]\d)(?:\s*([AaPp])\.?[Mm]\b\.?)?`)
	isoPrefixRe = regexp.MustCompile(`^\s*\d{4}-\d{2}-\d{2}[T ]`)
	numberJunk  = strings.NewReplacer(",", "", "$", "", "USD", "", "usd", "", " ", "")
)

// clock converts hour/minute/meridiem captures into 24h HH:MM.
func clock(h, m, meridiem string) (string, bool) {
	hour, err := strconv.Atoi(h)
	if err != nil {
		return "", false
	}
	switch strings.ToUpper(meridiem) {
	case "":
		if hour > 23 {
			return "", false
		}
	case "A":
		if hour < 1 || hour > 12 {
			return "", false
		}
		if hour == 12 {
			hour = 0
		}
	case "P":
		if hour < 1 || hour > 12 {
			return "", false
		}
		if hour != 12 {
			hour += 12
		}
	}
	return fmt.Sprintf("%02d:%s", hour, m), true
}

// findClocks returns every valid time in s, in order of appearance.
func findClocks(s string) []string {
	var out []string
	for _, m := range clockRe.FindAllStringSubmatch(s, -1) {
		if c, ok := clock(m[1], m[2], m[3]); ok {
			out = append(out, c)
		}
	}
	return out
}

// clockOf extracts the time of day from a free-form or ISO-8601 value, "" when none.
func clockOf(s string) string {
	s = isoPrefixRe.ReplaceAllString(s, "")
	if cs := findClocks(s); len(cs) > 0 {
		return cs[0]
	}
	return ""
}

func parseAmount(s string) (float64, bool) {
	f, err := strconv.ParseFloat(numberJunk.Replace(strings.TrimSpace(s)), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func parseCount(s string) (int, bool) {
	f, ok := parseAmount(s)
	if !ok {
		return 0, false
	}
	return int(f), true
}

func round2(f float64) float64 { return math.Round(f*100) / 100 }

// canonicalFlightNumber upper-cases and strips whitespace and dashes: "aa 123" -> "AA123".
// The result is cut to domain.MaxFlightNumberLen runes.
func canonicalFlightNumber(s string) string {
	var b strings.Builder
	n := 0
	for _, r := range strings.ToUpper(s) {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '-' {
			continue
		}
		if n == domain.MaxFlightNumberLen {
			break
		}
		b.WriteRune(r)
		n++
	}
	return b.String()
}

func placeholderFlightNumber(carrier string, index int) string {
	return fmt.Sprintf("%s%03d", carrier, index+1)
}

/********** flexible coercion for API-shaped values **********/

// floatValue: float64/int/json.Number/string like "$1,289.00"; anything else is "not found".
func floatValue(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case string:
		if strings.TrimSpace(t) == "" {
			return 0, false
		}
		return parseAmount(t)
	}
	return 0, false
}

func stringValue(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		s := strings.TrimSpace(t)
		return s, s != ""
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case int:
		return strconv.Itoa(t), true
	case int64:
		return strconv.FormatInt(t, 10), true
	case json.Number:
		return t.String(), true
	}
	return "", false
}

func defaultClock(s string) string {
	if s == "" {
		return domain.NotAvailable
	}
	return s
}
