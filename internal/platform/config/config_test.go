package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFromEnvDefaults(t *testing.T) {
	cfg := FromEnv()

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, 45*time.Second, cfg.ProviderTimeout)
	assert.Equal(t, "https://ocr.nubarium.com", cfg.Nubarium.OCRURL)
	assert.Equal(t, "https://api.verificamex.com", cfg.Verificamex.BaseURL)
	assert.Nil(t, cfg.CURPChain)
	assert.Nil(t, cfg.INEChain)
	assert.Equal(t, 5, cfg.BreakerThreshold)
	assert.Equal(t, time.Minute, cfg.BreakerCooldown)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("CREDVAL_ADDR", ":9999")
	t.Setenv("PROVIDER_TIMEOUT", "10s")
	t.Setenv("NUBARIUM_USERNAME", "user")
	t.Setenv("NUBARIUM_OCR_URL", "http://localhost:1234")
	t.Setenv("CURP_CHAIN", "Verificamex, validacurp ,")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("BREAKER_THRESHOLD", "2")
	t.Setenv("BREAKER_COOLDOWN", "30s")

	cfg := FromEnv()

	assert.Equal(t, ":9999", cfg.Addr)
	assert.Equal(t, 10*time.Second, cfg.ProviderTimeout)
	assert.Equal(t, "user", cfg.Nubarium.Username)
	assert.Equal(t, "http://localhost:1234", cfg.Nubarium.OCRURL)
	// chain entries are trimmed and lowercased, empties dropped
	assert.Equal(t, []string{"verificamex", "validacurp"}, cfg.CURPChain)
	assert.Equal(t, "redis://localhost:6379/0", cfg.Redis.URL)
	assert.Equal(t, 2, cfg.BreakerThreshold)
	assert.Equal(t, 30*time.Second, cfg.BreakerCooldown)
}

func TestFromEnvBadTimeoutFallsBack(t *testing.T) {
	t.Setenv("PROVIDER_TIMEOUT", "soon")
	cfg := FromEnv()
	assert.Equal(t, 45*time.Second, cfg.ProviderTimeout)
}
