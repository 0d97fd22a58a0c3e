package shared

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv      string
	HTTPAddr    string
	MetricsAddr string
	MySQLDSN    string
	RedisAddr   string
	RedisDB     int
	RedisPass   string
	AABase      string
	ResultsURL  string
	Selectors   []string
	SourceRPS   int
	SourceMode  string // api|page|replay|auto
	ReplayDir   string
	OutputDir   string
	Workers     int
	CacheTTL    time.Duration
	DefaultTax  float64
	Carrier     string
	Threshold   float64
}

func Load() Config {
	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
			log.Warn().Str("key", k).Msg("ignoring non-integer value")
		}
		return def
	}
	atof := func(k string, def float64) float64 {
		if v := os.Getenv(k); v != "" {
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				return f
			}
			log.Warn().Str("key", k).Msg("ignoring non-numeric value")
		}
		return def
	}
	c := Config{
		AppEnv:      env("APP_ENV", "prod"),
		HTTPAddr:    env("HTTP_ADDR", ":8080"),
		MetricsAddr: env("METRICS_ADDR", ":9100"),
		MySQLDSN:    env("MYSQL_DSN", "root:root@tcp(localhost:3306)/award_cpp?parseTime=true&charset=utf8mb4,utf8&loc=UTC"),
		RedisAddr:   env("REDIS_ADDR", "localhost:6379"),
		RedisPass:   env("REDIS_PASSWORD", ""),
		RedisDB:     atoi("REDIS_DB", 0),
		AABase:      env("AA_BASE_URL", "https://www.aa.com"),
		ResultsURL:  env("AA_RESULTS_URL", "https://www.aa.com/booking/find-flights/oneway"),
		Selectors:   list(env("PAGE_SELECTORS", "")),
		SourceRPS:   atoi("SOURCE_RPS", 2),
		SourceMode:  strings.ToLower(env("SOURCE_MODE", "auto")),
		ReplayDir:   env("REPLAY_DIR", "testdata/replay"),
		OutputDir:   env("OUTPUT_DIR", "."),
		Workers:     atoi("SEARCH_WORKERS", 4),
		CacheTTL:    time.Duration(atoi("CACHE_TTL_SECONDS", 900)) * time.Second,
		DefaultTax:  atof("TAXES_FEES_DEFAULT", 5.60),
		Carrier:     strings.ToUpper(env("CARRIER_CODE", "AA")),
		Threshold:   atof("CPP_THRESHOLD", 1.5),
	}
	switch c.SourceMode {
	case "api", "page", "replay", "auto":
	default:
		log.Warn().Str("mode", c.SourceMode).Msg("unknown SOURCE_MODE, using auto")
		c.SourceMode = "auto"
	}
	return c
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

// list splits a ';'-separated value; CSS selectors may themselves contain commas.
func list(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ";") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
