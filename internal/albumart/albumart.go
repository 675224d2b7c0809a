// Package albumart implements the five-step cover-art fallback cascade
// deduplicated per (artist, album-or-title)
// key so concurrent workers asking for the same art share one in-flight
// fetch.
package albumart

import (
	"context"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/oshokin/audio-pipeline/internal/model"
	"github.com/oshokin/audio-pipeline/internal/ratelimit"
)

// Request is the cascade's input for one file.
type Request struct {
	Artist     string
	Title      string
	Album      string
	ReleaseID  string // from MusicBrainz, if known
	ArtworkURL string // from the metadata cascade (iTunes/Spotify), if known
}

// Cascade runs the cover-art fallback steps and deduplicates concurrent
// requests for the same (artist, album-or-title) key.
type Cascade struct {
	httpClient     *http.Client
	mbLimiter      ratelimit.Limiter // MusicBrainz art-search instance, separate from the metadata cascade's
	deezerLimiter  ratelimit.Limiter
	audioDBLimiter ratelimit.Limiter
	group          singleflight.Group
	mu             sync.Mutex
	results        map[string]*model.AlbumArt
}

// NewCascade builds a Cascade. Each limiter is a dedicated instance per
// §4.1's table (MusicBrainz art search 1100ms, Deezer 300ms, TheAudioDB
// 500ms) — distinct from any limiter the metadata cascade holds for the
// same services.
func NewCascade(httpClient *http.Client, mbLimiter, deezerLimiter, audioDBLimiter ratelimit.Limiter) *Cascade {
	return &Cascade{
		httpClient:     httpClient,
		mbLimiter:      mbLimiter,
		deezerLimiter:  deezerLimiter,
		audioDBLimiter: audioDBLimiter,
		results:        make(map[string]*model.AlbumArt),
	}
}

// Key builds the cascade's dedup key: lower(artist) + ":" + lower(album or title).
func Key(artist, albumOrTitle string) string {
	return strings.ToLower(strings.TrimSpace(artist)) + ":" + strings.ToLower(strings.TrimSpace(albumOrTitle))
}

// Resolve runs the cascade for req, or awaits an in-flight/previously
// completed result for the same key. Album art is best-effort: any
// failure along the way produces a nil result, never an error.
func (c *Cascade) Resolve(ctx context.Context, req *Request) *model.AlbumArt {
	albumOrTitle := req.Album
	if albumOrTitle == "" {
		albumOrTitle = req.Title
	}

	key := Key(req.Artist, albumOrTitle)

	c.mu.Lock()
	if art, ok := c.results[key]; ok {
		c.mu.Unlock()
		return art
	}
	c.mu.Unlock()

	value, _, _ := c.group.Do(key, func() (any, error) {
		art := c.run(ctx, req)

		c.mu.Lock()
		c.results[key] = art
		c.mu.Unlock()

		return art, nil
	})

	art, _ := value.(*model.AlbumArt)

	return art
}

func (c *Cascade) run(ctx context.Context, req *Request) *model.AlbumArt {
	if req.ReleaseID != "" {
		if art := c.coverArtArchive(ctx, req.ReleaseID); art != nil {
			return art
		}
	}

	if req.Artist != "" && req.Title != "" {
		if art := c.deezer(ctx, req.Artist, req.Title, req.Album); art != nil {
			return art
		}
	}

	if req.Artist != "" && req.Album != "" {
		if art := c.theAudioDB(ctx, req.Artist, req.Album); art != nil {
			return art
		}
	}

	if req.ReleaseID == "" && req.Artist != "" && req.Album != "" {
		if releaseID := c.findReleaseID(ctx, req.Artist, req.Album); releaseID != "" {
			if art := c.coverArtArchive(ctx, releaseID); art != nil {
				return art
			}
		}
	}

	if req.ArtworkURL != "" {
		if art := c.fetchWithRetry(ctx, req.ArtworkURL); art != nil {
			return art
		}
	}

	return nil
}

// fetchWithRetry wraps a single image download in a one-shot retry after a
// 500ms delay. Only image downloads go through it; the Deezer, TheAudioDB
// and MusicBrainz search requests are made once, without a retry.
func (c *Cascade) fetchWithRetry(ctx context.Context, url string) *model.AlbumArt {
	art := c.fetchOnce(ctx, url)
	if art != nil {
		return art
	}

	select {
	case <-time.After(500 * time.Millisecond):
	case <-ctx.Done():
		return nil
	}

	return c.fetchOnce(ctx, url)
}

func (c *Cascade) fetchOnce(ctx context.Context, url string) *model.AlbumArt {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil
	}
	defer resp.Body.Close() //nolint:errcheck // Read-only response body.

	if resp.StatusCode != http.StatusOK {
		return nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil || len(body) == 0 {
		return nil
	}

	mimeType := resp.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = "image/jpeg"
	}

	return &model.AlbumArt{Bytes: body, MimeType: mimeType}
}
