package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/oshokin/audio-pipeline/internal/errs"
	"github.com/oshokin/audio-pipeline/internal/model"
	"github.com/oshokin/audio-pipeline/internal/ratelimit"
)

const (
	spotifyTokenURL  = "https://accounts.spotify.com/api/token"
	spotifySearchURL = "https://api.spotify.com/v1/search"

	// tokenExpiryMargin refreshes the token a little before its reported
	// expiry, to avoid racing a request against an already-dead token.
	tokenExpiryMargin = 30 * time.Second
)

// SpotifyClient implements the client-credentials flow and a (title,
// artist) track search, mapping the first hit to CanonicalMetadata.
type SpotifyClient struct {
	httpClient   *http.Client
	limiter      ratelimit.Limiter
	clientID     string
	clientSecret string

	mu          sync.Mutex
	accessToken string
	expiresAt   time.Time
}

// NewSpotifyClient builds a SpotifyClient. Returns nil when credentials are
// incomplete, matching §4.4's "if enabled and credentials present" gate.
func NewSpotifyClient(httpClient *http.Client, limiter ratelimit.Limiter, clientID, clientSecret string) *SpotifyClient {
	if clientID == "" || clientSecret == "" {
		return nil
	}

	return &SpotifyClient{httpClient: httpClient, limiter: limiter, clientID: clientID, clientSecret: clientSecret}
}

// token returns a valid access token, refreshing it if expired. Guarded by
// a mutex so only one refresh is ever in flight, matching the "exactly one
// refresh in flight" requirement shared with the singleflight dedup
// elsewhere in this port.
func (c *SpotifyClient) token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.accessToken != "" && time.Now().Before(c.expiresAt) {
		return c.accessToken, nil
	}

	form := url.Values{"grant_type": {"client_credentials"}}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, spotifyTokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(c.clientID, c.clientSecret)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &errs.APIError{Service: "spotify-token", Cause: err}
	}
	defer resp.Body.Close() //nolint:errcheck // Read-only response body.

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &errs.APIError{Service: "spotify-token", StatusCode: resp.StatusCode, Cause: err}
	}

	if resp.StatusCode != http.StatusOK {
		return "", &errs.APIError{Service: "spotify-token", StatusCode: resp.StatusCode, Cause: fmt.Errorf("%s", string(body))}
	}

	var parsed struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}

	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", &errs.APIError{Service: "spotify-token", StatusCode: resp.StatusCode, Cause: err}
	}

	c.accessToken = parsed.AccessToken
	c.expiresAt = time.Now().Add(time.Duration(parsed.ExpiresIn)*time.Second - tokenExpiryMargin)

	return c.accessToken, nil
}

type spotifySearchResponse struct {
	Tracks struct {
		Items []struct {
			Name    string `json:"name"`
			Artists []struct {
				Name string `json:"name"`
			} `json:"artists"`
			Album struct {
				Name   string `json:"name"`
				Images []struct {
					URL    string `json:"url"`
					Width  int    `json:"width"`
					Height int    `json:"height"`
				} `json:"images"`
				ReleaseDate string `json:"release_date"`
			} `json:"album"`
		} `json:"items"`
	} `json:"tracks"`
}

// Search issues a (title, artist) track search and maps the first result
// to CanonicalMetadata, capturing the largest artwork URL for the
// album-art cascade.
func (c *SpotifyClient) Search(ctx context.Context, title, artist string) (*model.CanonicalMetadata, error) {
	token, err := c.token(ctx)
	if err != nil {
		return nil, err
	}

	if err := c.limiter.Acquire(ctx); err != nil {
		return nil, err
	}

	query := fmt.Sprintf("track:%s artist:%s", title, artist)

	reqURL := spotifySearchURL + "?" + url.Values{
		"q":     {query},
		"type":  {"track"},
		"limit": {"1"},
	}.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &errs.APIError{Service: "spotify", Cause: err}
	}
	defer resp.Body.Close() //nolint:errcheck // Read-only response body.

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &errs.APIError{Service: "spotify", StatusCode: resp.StatusCode, Cause: err}
	}

	if resp.StatusCode == http.StatusUnauthorized {
		// Drop the rejected token so the next call fetches a fresh one.
		c.mu.Lock()
		c.accessToken = ""
		c.mu.Unlock()
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &errs.APIError{Service: "spotify", StatusCode: resp.StatusCode, Cause: fmt.Errorf("%s", string(body))}
	}

	var parsed spotifySearchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, &errs.APIError{Service: "spotify", StatusCode: resp.StatusCode, Cause: err}
	}

	if len(parsed.Tracks.Items) == 0 {
		return nil, nil
	}

	item := parsed.Tracks.Items[0]

	artists := make([]string, 0, len(item.Artists))
	for _, a := range item.Artists {
		artists = append(artists, a.Name)
	}

	var primaryArtist string

	var featured []string

	if len(artists) > 0 {
		primaryArtist = artists[0]
		featured = artists[1:]
	}

	return &model.CanonicalMetadata{
		Title:           item.Name,
		Artist:          primaryArtist,
		FeaturedArtists: featured,
		Album:           item.Album.Name,
		Year:            parseYearPrefix(item.Album.ReleaseDate),
		ArtworkURL:      largestImage(item.Album.Images),
	}, nil
}

func largestImage(images []struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}) string {
	var (
		best     string
		bestArea int
	)

	for _, img := range images {
		area := img.Width * img.Height
		if area > bestArea {
			bestArea = area
			best = img.URL
		}
	}

	return best
}
