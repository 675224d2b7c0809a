package albumart

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"

	"github.com/oshokin/audio-pipeline/internal/model"
)

const theAudioDBSearchURL = "https://www.theaudiodb.com/api/v1/json/2/searchalbum.php"

type theAudioDBResponse struct {
	Album []struct {
		ThumbURL string `json:"strAlbumThumb"`
	} `json:"album"`
}

// theAudioDB downloads the thumbnail of the first searchalbum.php result.
func (c *Cascade) theAudioDB(ctx context.Context, artist, album string) *model.AlbumArt {
	if err := c.audioDBLimiter.Acquire(ctx); err != nil {
		return nil
	}

	reqURL := theAudioDBSearchURL + "?" + url.Values{
		"s": {artist},
		"a": {album},
	}.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
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
	if err != nil {
		return nil
	}

	var parsed theAudioDBResponse
	if err := json.Unmarshal(body, &parsed); err != nil || len(parsed.Album) == 0 {
		return nil
	}

	thumb := parsed.Album[0].ThumbURL
	if thumb == "" {
		return nil
	}

	return c.fetchWithRetry(ctx, thumb)
}
