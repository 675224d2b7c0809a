// Package lyrics implements the LRCLIB -> ChartLyrics -> Genius fallback
// cascade, post-processing and caching
// both positive and negative results.
package lyrics

import (
	"context"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/oshokin/audio-pipeline/internal/cache"
	"github.com/oshokin/audio-pipeline/internal/logger"
	"github.com/oshokin/audio-pipeline/internal/utils"
)

// Cascade runs the lyrics fallback cascade, deduplicated per normalised
// (artist, title) key.
type Cascade struct {
	lrclib      *LRCLIBClient
	chartLyrics *ChartLyricsClient
	genius      *GeniusClient // nil when disabled or missing a token

	cache *cache.Typed[string]
	group singleflight.Group
	mu    sync.Mutex
}

// NewCascade builds a Cascade. genius may be nil.
func NewCascade(lrclib *LRCLIBClient, chartLyrics *ChartLyricsClient, genius *GeniusClient, store cache.Store) *Cascade {
	return &Cascade{
		lrclib:      lrclib,
		chartLyrics: chartLyrics,
		genius:      genius,
		cache:       cache.NewTyped[string](store, cache.TableLyrics),
	}
}

// Resolve returns cleaned lyrics for (artist, title), or "" if every
// source came up empty. Never returns an error: a ChartLyrics or Genius
// failure is logged at WARN and treated as a miss, and an LRCLIB failure
// is treated as a miss without logging.
func (c *Cascade) Resolve(ctx context.Context, artist, title string) string {
	artist = strings.TrimSpace(artist)
	title = strings.TrimSpace(title)

	if artist == "" || title == "" {
		return ""
	}

	key := utils.NormalizeArtistTitleKey(artist, title)

	if cached, found, err := c.cache.Get(ctx, key); err == nil && found {
		return cached
	}

	value, _, _ := c.group.Do(key, func() (any, error) {
		lyrics := c.run(ctx, artist, title)

		if err := c.cache.Put(ctx, key, lyrics); err != nil {
			logger.Warnf(ctx, "failed to cache lyrics for %q: %v", key, err)
		}

		return lyrics, nil
	})

	result, _ := value.(string)

	return result
}

func (c *Cascade) run(ctx context.Context, artist, title string) string {
	if raw := c.lrclib.GetExact(ctx, artist, title); raw != "" {
		return Clean(raw)
	}

	if raw := c.lrclib.Search(ctx, artist, title); raw != "" {
		return Clean(raw)
	}

	if c.chartLyrics != nil {
		if raw, err := c.chartLyrics.Search(ctx, artist, title); err != nil {
			logger.Warnf(ctx, "chartlyrics lookup failed: %v", err)
		} else if raw != "" {
			return Clean(raw)
		}
	}

	if c.genius != nil {
		raw, err := c.genius.Search(ctx, artist, title)
		if err != nil {
			logger.Warnf(ctx, "genius lookup failed: %v", err)
			return ""
		}

		if raw != "" {
			return Clean(raw)
		}
	}

	return ""
}
