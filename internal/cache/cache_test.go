package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/awb-extractor/constants"
	"github.com/joseph-ayodele/awb-extractor/internal/entity"
)

func newTestCache(t *testing.T, ttl time.Duration) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c, err := Dial(context.Background(), mr.Addr(), "", 0, ttl, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func TestRedisCache_RoundTripAndMiss(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestCache(t, time.Hour)

	_, ok, err := c.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	rec := entity.NewAWBRecord(constants.PlatformTikTok)
	rec.ID = entity.RecordID("fp1")
	rec.ShipDate = "2025-10-24"
	rec.OrderID = "576461413038785752"
	entry := Entry{Record: rec, Defaulted: []constants.Field{constants.FieldSeller}}
	require.NoError(t, c.Set(ctx, "fp1", entry))

	got, ok, err := c.Get(ctx, "fp1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, entry, got)
}

func TestRedisCache_TTL(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestCache(t, time.Minute)

	require.NoError(t, c.Set(ctx, "fp", Entry{Record: entity.NewAWBRecord(constants.PlatformShopee)}))
	assert.Equal(t, time.Minute, mr.TTL(keyPrefix+"fp"))

	mr.FastForward(2 * time.Minute)
	_, ok, err := c.Get(ctx, "fp")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisCache_CorruptEntryIsMiss(t *testing.T) {
	c, mr := newTestCache(t, 0)
	require.NoError(t, mr.Set(keyPrefix+"bad", "{not json"))

	_, ok, err := c.Get(context.Background(), "bad")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDial_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := Dial(ctx, addr, "", 0, 0, nil)
	assert.Error(t, err)
}
