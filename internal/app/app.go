// Package app wires every collaborator the orchestrator depends on —
// rate limiters, caches, the fingerprint engine, the metadata/album-art/
// lyrics cascades, and the tag writer — from a loaded Config. This is the
// one place in the module that constructs concrete implementations; every
// other package only depends on the interfaces it needs.
package app

import (
	"context"
	"time"

	"github.com/oshokin/audio-pipeline/internal/albumart"
	"github.com/oshokin/audio-pipeline/internal/cache"
	"github.com/oshokin/audio-pipeline/internal/config"
	"github.com/oshokin/audio-pipeline/internal/fingerprint"
	"github.com/oshokin/audio-pipeline/internal/lyrics"
	"github.com/oshokin/audio-pipeline/internal/metadata"
	"github.com/oshokin/audio-pipeline/internal/model"
	"github.com/oshokin/audio-pipeline/internal/orchestrator"
	"github.com/oshokin/audio-pipeline/internal/ratelimit"
	"github.com/oshokin/audio-pipeline/internal/tagwriter"
	transporthttp "github.com/oshokin/audio-pipeline/internal/transport/http"
)

// Interval limiter parameters, one dedicated limiter per upstream source.
const (
	acoustIDInterval             = 334 * time.Millisecond
	musicBrainzMetadataInterval  = 1100 * time.Millisecond
	musicBrainzArtSearchInterval = 1100 * time.Millisecond
	itunesInterval               = 2000 * time.Millisecond
	spotifyInterval              = 334 * time.Millisecond
	deezerInterval               = 300 * time.Millisecond
	audioDBInterval              = 500 * time.Millisecond
	geniusInterval               = 2000 * time.Millisecond
)

// App holds every long-lived collaborator for one process lifetime: the
// loaded configuration, the cache backend, and the orchestrator built on
// top of it. Construct one with New, run batches with Process, and
// release resources with Close when the process is done.
type App struct {
	cfg *config.Config

	store   cache.Store
	statsFn func() (cache.Stats, error)

	orchestrator *orchestrator.Orchestrator
}

// New builds an App from cfg: one HTTP client, eight dedicated rate
// limiters (§4.1), the cache backend selected by AppSettings.UsePersistentCache,
// the fingerprint engine, the metadata/album-art/lyrics cascades, and the
// tag writer, all handed to a fresh orchestrator.
func New(cfg *config.Config, onProgress orchestrator.OnProgress, onFileComplete orchestrator.OnFileComplete) (*App, error) {
	store, statsFn, err := cache.NewCaches(cfg.UsePersistentCache, cfg.CacheDBPath)
	if err != nil {
		return nil, err
	}

	httpTimeout := time.Duration(cfg.HTTPTimeoutSeconds) * time.Second
	httpClient := transporthttp.NewClient(httpTimeout)

	acoustIDLimiter := ratelimit.NewIntervalLimiter(acoustIDInterval)
	musicBrainzMetadataLimiter := ratelimit.NewIntervalLimiter(musicBrainzMetadataInterval)
	musicBrainzArtSearchLimiter := ratelimit.NewIntervalLimiter(musicBrainzArtSearchInterval)
	itunesLimiter := ratelimit.NewIntervalLimiter(itunesInterval)
	spotifyLimiter := ratelimit.NewIntervalLimiter(spotifyInterval)
	deezerLimiter := ratelimit.NewIntervalLimiter(deezerInterval)
	audioDBLimiter := ratelimit.NewIntervalLimiter(audioDBInterval)
	geniusLimiter := ratelimit.NewIntervalLimiter(geniusInterval)

	acoustIDClient := fingerprint.NewAcoustIDClient(httpClient, cfg.AcoustIDAPIKey)
	fingerprintEngine := fingerprint.NewEngine(
		cfg.FpcalcPath,
		time.Duration(cfg.FpcalcTimeoutSeconds)*time.Second,
		cfg.MinFingerprintScore,
		cfg.RetryAttempts,
		acoustIDLimiter,
		acoustIDClient,
		store,
	)

	musicBrainzClient := metadata.NewMusicBrainzClient(httpClient, musicBrainzMetadataLimiter, store)

	var spotifyClient *metadata.SpotifyClient
	if cfg.UseSpotify {
		spotifyClient = metadata.NewSpotifyClient(httpClient, spotifyLimiter, cfg.SpotifyClientID, cfg.SpotifyClientSecret)
	}

	itunesClient := metadata.NewITunesClient(httpClient, itunesLimiter)
	metadataCascade := metadata.NewCascade(musicBrainzClient, spotifyClient, itunesClient)

	albumArtCascade := albumart.NewCascade(httpClient, musicBrainzArtSearchLimiter, deezerLimiter, audioDBLimiter)

	var lyricsCascade *lyrics.Cascade

	if cfg.FetchLyrics {
		lrclibClient := lyrics.NewLRCLIBClient(httpClient)
		chartLyricsClient := lyrics.NewChartLyricsClient(httpClient)

		var geniusClient *lyrics.GeniusClient
		if cfg.UseGenius {
			geniusClient = lyrics.NewGeniusClient(httpClient, geniusLimiter, cfg.GeniusAccessToken)
		}

		lyricsCascade = lyrics.NewCascade(lrclibClient, chartLyricsClient, geniusClient, store)
	}

	tagWriter := tagwriter.NewWriter()

	o := orchestrator.New(cfg.AppSettings, orchestrator.Dependencies{
		FingerprintEngine:  fingerprintEngine,
		MetadataCascade:    metadataCascade,
		AlbumArtCascade:    albumArtCascade,
		LyricsCascade:      lyricsCascade,
		TagWriter:          tagWriter,
		UsePersistentCache: cfg.UsePersistentCache,
	}, onProgress, onFileComplete)

	return &App{
		cfg:          cfg,
		store:        store,
		statsFn:      statsFn,
		orchestrator: o,
	}, nil
}

// Process runs the batch over paths and returns one ProcessingResult per
// input path, in input order.
func (a *App) Process(ctx context.Context, paths []string) []model.ProcessingResult {
	return a.orchestrator.Process(ctx, paths)
}

// Cancel requests cancellation of the in-flight batch, if any. Already
// dispatched files finish; queued files are reported as skipped.
func (a *App) Cancel() {
	a.orchestrator.Cancel()
}

// CacheStats reports current entry counts per logical cache, per §6a's
// getCacheStats() surface.
func (a *App) CacheStats(_ context.Context) (cache.Stats, error) {
	return a.statsFn()
}

// ClearCache drops every entry in all three logical caches.
func (a *App) ClearCache(ctx context.Context) error {
	for _, table := range []cache.Table{cache.TableFingerprints, cache.TableMetadata, cache.TableLyrics} {
		if err := a.store.Clear(ctx, table); err != nil {
			return err
		}
	}

	return nil
}

// Close releases the cache backend's handle. Rate limiters need no
// explicit teardown: Acquire already selects on ctx.Done, so cancelling
// the batch context unblocks every pending waiter at once.
func (a *App) Close() error {
	return a.store.Close()
}
