package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// VerdictCacheTTL enforces retention for confirmed registry identities.
var VerdictCacheTTL = 5 * time.Minute

// Nubarium holds credentials and the three service base URLs for the
// Nubarium provider.
type Nubarium struct {
	Username string
	Password string
	OCRURL   string
	INEURL   string
	CURPURL  string
}

// Verificamex holds the bearer token and base URL for the Verificamex
// provider.
type Verificamex struct {
	BaseURL string
	Token   string
}

// ValidaCurp holds the API token and base URL for the ValidaCurp provider.
type ValidaCurp struct {
	BaseURL string
	Token   string
}

// Redis captures connection settings for the verdict cache.
type Redis struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Server captures everything main needs to wire the service.
type Server struct {
	Addr            string
	ProviderTimeout time.Duration

	// Circuit-breaker tuning for provider chains.
	BreakerThreshold int
	BreakerCooldown  time.Duration

	Nubarium    Nubarium
	Verificamex Verificamex
	ValidaCurp  ValidaCurp
	Redis       Redis

	// Chain orders, first entry tried first. Empty means the built-in
	// default for that capability.
	CURPChain []string
	INEChain  []string
	OCRChain  []string
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	addr := os.Getenv("CREDVAL_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	timeout := 45 * time.Second
	if raw := os.Getenv("PROVIDER_TIMEOUT"); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil && d > 0 {
			timeout = d
		}
	}

	breakerThreshold := 5
	if raw := os.Getenv("BREAKER_THRESHOLD"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			breakerThreshold = n
		}
	}
	breakerCooldown := time.Minute
	if raw := os.Getenv("BREAKER_COOLDOWN"); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil && d > 0 {
			breakerCooldown = d
		}
	}

	return Server{
		Addr:             addr,
		ProviderTimeout:  timeout,
		BreakerThreshold: breakerThreshold,
		BreakerCooldown:  breakerCooldown,
		Nubarium: Nubarium{
			Username: os.Getenv("NUBARIUM_USERNAME"),
			Password: os.Getenv("NUBARIUM_PASSWORD"),
			OCRURL:   envOr("NUBARIUM_OCR_URL", "https://ocr.nubarium.com"),
			INEURL:   envOr("NUBARIUM_INE_URL", "https://ine.nubarium.com"),
			CURPURL:  envOr("NUBARIUM_CURP_URL", "https://curp.nubarium.com"),
		},
		Verificamex: Verificamex{
			BaseURL: envOr("VERIFICAMEX_BASE_URL", "https://api.verificamex.com"),
			Token:   os.Getenv("VERIFICAMEX_TOKEN"),
		},
		ValidaCurp: ValidaCurp{
			BaseURL: envOr("VALIDACURP_BASE_URL", "https://api.valida-curp.com.mx"),
			Token:   os.Getenv("VALIDACURP_TOKEN"),
		},
		Redis: Redis{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		CURPChain: splitChain(os.Getenv("CURP_CHAIN")),
		INEChain:  splitChain(os.Getenv("INE_CHAIN")),
		OCRChain:  splitChain(os.Getenv("OCR_CHAIN")),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitChain(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, strings.ToLower(p))
		}
	}
	return out
}
