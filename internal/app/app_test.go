package app

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/awb-extractor/internal/cache"
	"github.com/joseph-ayodele/awb-extractor/internal/common"
	"github.com/joseph-ayodele/awb-extractor/internal/pipeline"
)

const label = "TikTok Shop\nMYPM123456789\nShip Date: 2025-10-24 14:30\nReceiver: Ali Bin Abu\nCOD: 25.50"

func testConfig() *common.Config {
	return &common.Config{
		Database:   common.DatabaseConfig{Driver: "sqlite", DSN: ":memory:"},
		Extraction: common.ExtractionConfig{Timezone: "UTC", OrderYearPrefixes: []string{"25"}},
		Cache:      common.CacheConfig{TTL: time.Hour},
		Export:     common.ExportConfig{SheetName: "Labels"},
	}
}

func TestNew_InMemoryStore(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig()
	cfg.Database = common.DatabaseConfig{Driver: "postgres", DSN: "postgres://unused"}

	a, err := New(ctx, cfg, nil, Options{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	require.NotNil(t, a.Repo)
	require.NotNil(t, a.Export)
	assert.IsType(t, cache.Noop{}, a.Cache)

	out, err := a.Processor.Process(ctx, pipeline.Document{Source: "t", Text: label}, true)
	require.NoError(t, err)
	assert.True(t, out.Persisted)

	stored, err := a.Repo.Get(ctx, out.Result.Record.ID)
	require.NoError(t, err)
	assert.Equal(t, "25.50 MYR", stored.CODAmount)
}

func TestNew_NoStoreWithCache(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	cfg := testConfig()
	cfg.Cache.Addr = mr.Addr()

	a, err := New(ctx, cfg, nil, Options{NoStore: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	assert.Nil(t, a.Repo)
	assert.Nil(t, a.Export)
	assert.False(t, a.Processor.HasRepository())

	_, err = a.Processor.Process(ctx, pipeline.Document{Text: label}, false)
	require.NoError(t, err)
	out, err := a.Processor.Process(ctx, pipeline.Document{Text: label}, false)
	require.NoError(t, err)
	assert.True(t, out.Cached)
}

func TestNew_UnreachableCacheIsSkipped(t *testing.T) {
	cfg := testConfig()
	cfg.Cache.Addr = "127.0.0.1:1"

	a, err := New(context.Background(), cfg, nil, Options{NoStore: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	assert.IsType(t, cache.Noop{}, a.Cache)
}

func TestNew_BadDriver(t *testing.T) {
	cfg := testConfig()
	cfg.Database.Driver = "oracle"
	_, err := New(context.Background(), cfg, nil, Options{})
	require.Error(t, err)
}
