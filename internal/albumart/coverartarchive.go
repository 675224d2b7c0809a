package albumart

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/oshokin/audio-pipeline/internal/model"
)

const (
	coverArtArchiveURL = "https://coverartarchive.org/release"
	mbSearchURL         = "https://musicbrainz.org/ws/2/release"
)

// coverArtArchive fetches the release's front-cover image, following
// redirects (the default http.Client behaviour already does this).
func (c *Cascade) coverArtArchive(ctx context.Context, releaseID string) *model.AlbumArt {
	return c.fetchWithRetry(ctx, fmt.Sprintf("%s/%s/front", coverArtArchiveURL, releaseID))
}

type mbReleaseSearchResponse struct {
	Releases []struct {
		ID           string `json:"id"`
		Score        int    `json:"score"`
		Status       string `json:"status"`
		ReleaseGroup struct {
			PrimaryType string `json:"primary-type"`
		} `json:"release-group"`
	} `json:"releases"`
}

// findReleaseID searches the MusicBrainz release index for a release
// matching artist+album, accepting only score >= 80 and preferring
// Official+Album, then Official+any, then any, per §4.5 step 4.
func (c *Cascade) findReleaseID(ctx context.Context, artist, album string) string {
	if err := c.mbLimiter.Acquire(ctx); err != nil {
		return ""
	}

	query := fmt.Sprintf(`artist:"%s" AND release:"%s"`, artist, album)

	reqURL := mbSearchURL + "?" + url.Values{
		"query": {query},
		"fmt":   {"json"},
	}.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return ""
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return ""
	}
	defer resp.Body.Close() //nolint:errcheck // Read-only response body.

	if resp.StatusCode != http.StatusOK {
		return ""
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return ""
	}

	var parsed mbReleaseSearchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return ""
	}

	var (
		officialAlbum string
		official      string
		any           string
	)

	for _, r := range parsed.Releases {
		if r.Score < 80 {
			continue
		}

		if any == "" {
			any = r.ID
		}

		if r.Status == "Official" {
			if official == "" {
				official = r.ID
			}

			if r.ReleaseGroup.PrimaryType == "Album" && officialAlbum == "" {
				officialAlbum = r.ID
			}
		}
	}

	switch {
	case officialAlbum != "":
		return officialAlbum
	case official != "":
		return official
	default:
		return any
	}
}
