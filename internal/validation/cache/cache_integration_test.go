//go:build integration

package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"credval/internal/validation/models"
	"credval/pkg/domain"
	"credval/pkg/testutil/containers"
)

func testIdentity(t *testing.T) *models.PersonIdentity {
	t.Helper()
	curp, err := domain.ParseCURP("GOAP780710HVZNRD06")
	require.NoError(t, err)
	return &models.PersonIdentity{
		GivenNames:   "PEDRO",
		FirstSurname: "GOMEZ",
		Sex:          domain.SexMale,
		BirthDate:    "1978-07-10",
		StateCode:    "VZ",
		CURP:         curp,
	}
}

func TestVerdictCacheRoundTrip(t *testing.T) {
	rc := containers.NewRedisContainer(t)
	ctx := context.Background()
	require.NoError(t, rc.FlushAll(ctx))

	c := New(rc.Client, time.Minute, nil)
	identity := testIdentity(t)

	_, _, hit := c.Find(ctx, identity.CURP)
	assert.False(t, hit, "empty cache must miss")

	c.Save(ctx, identity, "nubarium")

	got, provider, hit := c.Find(ctx, identity.CURP)
	require.True(t, hit)
	assert.Equal(t, "nubarium", provider)
	assert.Equal(t, identity.GivenNames, got.GivenNames)
	assert.Equal(t, identity.CURP, got.CURP)
}

func TestVerdictCacheTTLExpiry(t *testing.T) {
	rc := containers.NewRedisContainer(t)
	ctx := context.Background()
	require.NoError(t, rc.FlushAll(ctx))

	c := New(rc.Client, time.Second, nil)
	identity := testIdentity(t)
	c.Save(ctx, identity, "nubarium")

	_, _, hit := c.Find(ctx, identity.CURP)
	require.True(t, hit)

	time.Sleep(1200 * time.Millisecond)

	_, _, hit = c.Find(ctx, identity.CURP)
	assert.False(t, hit, "entry must expire with its TTL")
}

func TestVerdictCacheCorruptEntryIsDropped(t *testing.T) {
	rc := containers.NewRedisContainer(t)
	ctx := context.Background()
	require.NoError(t, rc.FlushAll(ctx))

	identity := testIdentity(t)
	key := "credval:curp:" + string(identity.CURP)
	require.NoError(t, rc.Client.Set(ctx, key, "{not json", time.Minute).Err())

	c := New(rc.Client, time.Minute, nil)
	_, _, hit := c.Find(ctx, identity.CURP)
	assert.False(t, hit)

	// the corrupt entry was evicted, not left to fail every lookup
	exists, err := rc.Client.Exists(ctx, key).Result()
	require.NoError(t, err)
	assert.Zero(t, exists)
}
