package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/oshokin/audio-pipeline/internal/errs"
	"github.com/oshokin/audio-pipeline/internal/model"
	"github.com/oshokin/audio-pipeline/internal/ratelimit"
)

const itunesSearchURL = "https://itunes.apple.com/search"

type itunesSearchResponse struct {
	Results []itunesResult `json:"results"`
}

type itunesResult struct {
	TrackName    string `json:"trackName"`
	ArtistName   string `json:"artistName"`
	CollectionName string `json:"collectionName"`
	ReleaseDate  string `json:"releaseDate"`
	ArtworkURL100 string `json:"artworkUrl100"`
	PrimaryGenreName string `json:"primaryGenreName"`
}

// ITunesClient is the cascade's last-resort metadata source.
type ITunesClient struct {
	httpClient *http.Client
	limiter    ratelimit.Limiter
}

// NewITunesClient builds an ITunesClient.
func NewITunesClient(httpClient *http.Client, limiter ratelimit.Limiter) *ITunesClient {
	return &ITunesClient{httpClient: httpClient, limiter: limiter}
}

// Search issues `/search?term=...&entity=song&media=music&limit=5` and
// prefers an exact case-insensitive title match among the hits, otherwise
// the first hit.
func (c *ITunesClient) Search(ctx context.Context, title, artist string) (*model.CanonicalMetadata, error) {
	if err := c.limiter.Acquire(ctx); err != nil {
		return nil, err
	}

	term := strings.TrimSpace(artist + " " + title)

	reqURL := itunesSearchURL + "?" + url.Values{
		"term":   {term},
		"entity": {"song"},
		"media":  {"music"},
		"limit":  {"5"},
	}.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &errs.APIError{Service: "itunes", Cause: err}
	}
	defer resp.Body.Close() //nolint:errcheck // Read-only response body.

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &errs.APIError{Service: "itunes", StatusCode: resp.StatusCode, Cause: err}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &errs.APIError{Service: "itunes", StatusCode: resp.StatusCode, Cause: fmt.Errorf("%s", string(body))}
	}

	var parsed itunesSearchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, &errs.APIError{Service: "itunes", StatusCode: resp.StatusCode, Cause: err}
	}

	if len(parsed.Results) == 0 {
		return nil, nil
	}

	chosen := parsed.Results[0]

	for _, r := range parsed.Results {
		if strings.EqualFold(strings.TrimSpace(r.TrackName), strings.TrimSpace(title)) {
			chosen = r
			break
		}
	}

	var genres []string
	if chosen.PrimaryGenreName != "" {
		genres = []string{chosen.PrimaryGenreName}
	}

	return &model.CanonicalMetadata{
		Title:      chosen.TrackName,
		Artist:     chosen.ArtistName,
		Album:      chosen.CollectionName,
		Year:       parseYearPrefix(chosen.ReleaseDate),
		Genres:     genres,
		ArtworkURL: upscaleArtworkURL(chosen.ArtworkURL100),
	}, nil
}

// upscaleArtworkURL rewrites iTunes's default 100x100 artwork URL to the
// 600x600 variant, per §4.4 step 3.
func upscaleArtworkURL(artworkURL string) string {
	if artworkURL == "" {
		return ""
	}

	return strings.Replace(artworkURL, "100x100bb", "600x600bb", 1)
}

// LooksLikeLegitimateSearchTerm reports whether title is usable as a
// search term: at least 2 characters and not a download-site domain
// pattern (bare "word.tld" shape).
func LooksLikeLegitimateSearchTerm(title string) bool {
	title = strings.TrimSpace(title)
	if len(title) < 2 {
		return false
	}

	return !looksLikeDomain(title)
}

func looksLikeDomain(s string) bool {
	s = strings.ToLower(s)

	for _, tld := range []string{".com", ".net", ".org", ".info", ".ru", ".su"} {
		if strings.HasSuffix(s, tld) {
			return true
		}
	}

	return false
}

// FilenameSearchTerm strips a leading "domain.tld - " prefix from a
// filename-derived title, per §4.4's "legitimate search terms" fallback.
func FilenameSearchTerm(filenameTitle string) string {
	if idx := strings.Index(filenameTitle, " - "); idx > 0 {
		prefix := filenameTitle[:idx]
		if looksLikeDomain(prefix) {
			return strings.TrimSpace(filenameTitle[idx+3:])
		}
	}

	return filenameTitle
}
