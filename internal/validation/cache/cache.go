// Package cache keeps successful CURP verdicts in redis for a bounded TTL so
// repeated validations of the same code skip the provider chain entirely.
// Only registry-confirmed identities are cached; failures always re-run the
// chain because transient provider state should not stick.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"credval/internal/validation/models"
	"credval/pkg/domain"
)

// DefaultTTL bounds how long a confirmed identity may be served without
// re-verification.
const DefaultTTL = 5 * time.Minute

type cached struct {
	Identity models.PersonIdentity `json:"identity"`
	Provider string                `json:"provider"`
	CachedAt time.Time             `json:"cached_at"`
}

// VerdictCache stores confirmed identities keyed by CURP. A nil client
// disables caching; every method degrades to a miss.
type VerdictCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// New builds a cache over the given client. TTL <= 0 falls back to
// DefaultTTL.
func New(client *redis.Client, ttl time.Duration, logger *slog.Logger) *VerdictCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &VerdictCache{client: client, ttl: ttl, logger: logger}
}

func key(curp domain.CURP) string {
	return fmt.Sprintf("credval:curp:%s", curp)
}

// Find returns the cached identity and its originating provider, or ok=false
// on a miss. Cache faults are downgraded to misses; a broken cache must
// never fail a validation.
func (c *VerdictCache) Find(ctx context.Context, curp domain.CURP) (*models.PersonIdentity, string, bool) {
	if c == nil || c.client == nil {
		return nil, "", false
	}

	raw, err := c.client.Get(ctx, key(curp)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) && c.logger != nil {
			c.logger.Warn("verdict cache read failed", "error", err)
		}
		return nil, "", false
	}

	var entry cached
	if err := json.Unmarshal(raw, &entry); err != nil {
		if c.logger != nil {
			c.logger.Warn("verdict cache entry corrupt, dropping", "error", err)
		}
		c.client.Del(ctx, key(curp))
		return nil, "", false
	}
	return &entry.Identity, entry.Provider, true
}

// Save stores a confirmed identity. Best effort: failures are logged and
// swallowed.
func (c *VerdictCache) Save(ctx context.Context, identity *models.PersonIdentity, provider string) {
	if c == nil || c.client == nil || identity == nil || identity.CURP == "" {
		return
	}

	entry := cached{
		Identity: *identity,
		Provider: provider,
		CachedAt: time.Now().UTC(),
	}
	raw, err := json.Marshal(entry)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, key(identity.CURP), raw, c.ttl).Err(); err != nil && c.logger != nil {
		c.logger.Warn("verdict cache write failed", "error", err)
	}
}
