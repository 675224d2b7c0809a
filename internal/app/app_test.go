package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oshokin/audio-pipeline/internal/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()

	cfg := config.Default()
	cfg.AcoustIDAPIKey = "test-key"
	cfg.UsePersistentCache = false

	return cfg
}

func TestNew_WiresWithoutOptionalSources(t *testing.T) {
	t.Parallel()

	a, err := New(testConfig(t), nil, nil)
	require.NoError(t, err)
	require.NotNil(t, a)
	require.NotNil(t, a.orchestrator)

	assert.NoError(t, a.Close())
}

func TestNew_WiresGeniusAndSpotifyWhenEnabled(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	cfg.FetchLyrics = true
	cfg.UseGenius = true
	cfg.GeniusAccessToken = "token"
	cfg.UseSpotify = true
	cfg.SpotifyClientID = "id"
	cfg.SpotifyClientSecret = "secret"

	a, err := New(cfg, nil, nil)
	require.NoError(t, err)
	require.NotNil(t, a.orchestrator)

	assert.NoError(t, a.Close())
}

func TestApp_CacheStatsAndClear(t *testing.T) {
	t.Parallel()

	a, err := New(testConfig(t), nil, nil)
	require.NoError(t, err)

	defer func() { assert.NoError(t, a.Close()) }()

	stats, err := a.CacheStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, stats.TotalEntries)
	assert.False(t, stats.IsPersistent)

	require.NoError(t, a.ClearCache(context.Background()))
}

func TestApp_ProcessEmptyPathsReturnsEmptyResults(t *testing.T) {
	t.Parallel()

	a, err := New(testConfig(t), nil, nil)
	require.NoError(t, err)

	defer func() { assert.NoError(t, a.Close()) }()

	results := a.Process(context.Background(), nil)
	assert.Empty(t, results)
}
