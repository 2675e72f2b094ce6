package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"time"

	"credval/internal/platform/config"
	"credval/internal/platform/httpserver"
	"credval/internal/platform/logger"
	"credval/internal/platform/metrics"
	platformredis "credval/internal/platform/redis"
	httptransport "credval/internal/transport/http"
	"credval/internal/validation"
	"credval/internal/validation/cache"
	"credval/internal/validation/chain"
	"credval/internal/validation/providers"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal/validation.
func main() {
	cfg := config.FromEnv()
	log := logger.New()
	m := metrics.New()

	nubarium := providers.NewNubarium(providers.NubariumConfig{
		Username: cfg.Nubarium.Username,
		Password: cfg.Nubarium.Password,
		OCRURL:   cfg.Nubarium.OCRURL,
		INEURL:   cfg.Nubarium.INEURL,
		CURPURL:  cfg.Nubarium.CURPURL,
	}, providers.WithLogger(log), providers.WithTimeout(cfg.ProviderTimeout))

	verificamex := providers.NewVerificamex(providers.VerificamexConfig{
		BaseURL: cfg.Verificamex.BaseURL,
		Token:   cfg.Verificamex.Token,
	}, providers.WithLogger(log), providers.WithTimeout(cfg.ProviderTimeout))

	validacurp := providers.NewValidaCurp(providers.ValidaCurpConfig{
		BaseURL: cfg.ValidaCurp.BaseURL,
		Token:   cfg.ValidaCurp.Token,
	}, providers.WithLogger(log), providers.WithTimeout(cfg.ProviderTimeout))

	dialCtx, dialCancel := context.WithTimeout(context.Background(), 10*time.Second)
	redisClient, err := platformredis.New(dialCtx, cfg.Redis)
	dialCancel()
	if err != nil {
		log.Error("redis connection failed, continuing without cache", "error", err)
	}

	var verdicts *cache.VerdictCache
	var health httptransport.HealthChecker
	if redisClient != nil {
		verdicts = cache.New(redisClient.Client, config.VerdictCacheTTL, log)
		health = redisClient
		defer redisClient.Close()
	}

	service := validation.NewService(nubarium, verificamex, validacurp,
		validation.WithLogger(log),
		validation.WithMetrics(m),
		validation.WithVerdictCache(verdicts),
		validation.WithBreakers(chain.NewBreakerSet(cfg.BreakerThreshold, cfg.BreakerCooldown)),
		validation.WithChainOrders(cfg.CURPChain, cfg.INEChain, cfg.OCRChain),
	)

	handler := httptransport.New(service, health, log)
	router := httptransport.NewRouter(handler)

	srv := httpserver.New(cfg.Addr, router)

	log.Info("starting credval", "addr", cfg.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
}
