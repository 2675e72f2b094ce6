package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"credval/internal/validation/models"
	"credval/pkg/domain"
)

func TestDisabledCacheDegradesToMisses(t *testing.T) {
	ctx := context.Background()

	t.Run("nil cache", func(t *testing.T) {
		var c *VerdictCache
		_, _, hit := c.Find(ctx, domain.CURP("GOAP780710HVZNRD06"))
		assert.False(t, hit)
		c.Save(ctx, &models.PersonIdentity{CURP: "GOAP780710HVZNRD06"}, "nubarium")
	})

	t.Run("nil client", func(t *testing.T) {
		c := New(nil, time.Minute, nil)
		_, _, hit := c.Find(ctx, domain.CURP("GOAP780710HVZNRD06"))
		assert.False(t, hit)
		c.Save(ctx, &models.PersonIdentity{CURP: "GOAP780710HVZNRD06"}, "nubarium")
	})
}

func TestNewAppliesDefaultTTL(t *testing.T) {
	c := New(nil, 0, nil)
	assert.Equal(t, DefaultTTL, c.ttl)
}
