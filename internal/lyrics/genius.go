package lyrics

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/oshokin/audio-pipeline/internal/errs"
	"github.com/oshokin/audio-pipeline/internal/ratelimit"
)

const (
	geniusSearchURL = "https://api.genius.com/search"
)

// retryableLimiter is implemented by limiters that can be pushed forward on
// a 429, currently only *ratelimit.IntervalLimiter.
type retryableLimiter interface {
	HandleRetryAfter(seconds float64)
}

type geniusSearchResponse struct {
	Response struct {
		Hits []struct {
			Result struct {
				URL           string `json:"url"`
				Title         string `json:"title"`
				PrimaryArtist struct {
					Name string `json:"name"`
				} `json:"primary_artist"`
			} `json:"result"`
		} `json:"hits"`
	} `json:"response"`
}

// GeniusClient is the cascade's last-resort lyrics source: it searches
// Genius for a matching song, then scrapes the lyrics off its page, since
// Genius has no public lyrics-body API.
type GeniusClient struct {
	httpClient  *http.Client
	accessToken string
	limiter     ratelimit.Limiter
}

// NewGeniusClient builds a GeniusClient. Returns nil if accessToken is
// empty, since Genius is an optional fallback source.
func NewGeniusClient(httpClient *http.Client, limiter ratelimit.Limiter, accessToken string) *GeniusClient {
	if accessToken == "" {
		return nil
	}

	return &GeniusClient{httpClient: httpClient, accessToken: accessToken, limiter: limiter}
}

// Search finds the first matching song on Genius and scrapes its lyrics.
func (c *GeniusClient) Search(ctx context.Context, artist, title string) (string, error) {
	songURL, err := c.findSongURL(ctx, artist, title)
	if err != nil {
		return "", err
	}

	if songURL == "" {
		return "", nil
	}

	return c.scrapeLyrics(ctx, songURL)
}

func (c *GeniusClient) findSongURL(ctx context.Context, artist, title string) (string, error) {
	if err := c.limiter.Acquire(ctx); err != nil {
		return "", err
	}

	reqURL := geniusSearchURL + "?" + url.Values{"q": {artist + " " + title}}.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return "", err
	}

	req.Header.Set("Authorization", "Bearer "+c.accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &errs.APIError{Service: "genius", Cause: err}
	}
	defer resp.Body.Close() //nolint:errcheck // Read-only response body.

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized:
		return "", &errs.APIError{Service: "genius", StatusCode: resp.StatusCode, Cause: errUnauthorized}
	case http.StatusTooManyRequests:
		if rl, ok := c.limiter.(retryableLimiter); ok {
			rl.HandleRetryAfter(parseGeniusRetryAfter(resp.Header.Get("Retry-After")))
		}

		return "", &errs.APIError{Service: "genius", StatusCode: resp.StatusCode}
	default:
		return "", &errs.APIError{Service: "genius", StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	var parsed geniusSearchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", err
	}

	for _, hit := range parsed.Response.Hits {
		if containsFold(hit.Result.PrimaryArtist.Name, artist) {
			return hit.Result.URL, nil
		}
	}

	if len(parsed.Response.Hits) > 0 {
		return parsed.Response.Hits[0].Result.URL, nil
	}

	return "", nil
}

func (c *GeniusClient) scrapeLyrics(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &errs.APIError{Service: "genius", Cause: err}
	}
	defer resp.Body.Close() //nolint:errcheck // Read-only response body.

	if resp.StatusCode != http.StatusOK {
		return "", &errs.APIError{Service: "genius", StatusCode: resp.StatusCode}
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", err
	}

	var b strings.Builder

	doc.Find("div[data-lyrics-container]").Each(func(_ int, s *goquery.Selection) {
		s.Find("br").ReplaceWithHtml("\n")
		b.WriteString(s.Text())
		b.WriteString("\n")
	})

	return b.String(), nil
}

func parseGeniusRetryAfter(header string) float64 {
	if header == "" {
		return 1
	}

	if seconds, err := strconv.ParseFloat(header, 64); err == nil && seconds > 0 {
		return seconds
	}

	return 1
}

var errUnauthorized = &geniusAuthError{}

type geniusAuthError struct{}

func (e *geniusAuthError) Error() string { return "invalid or expired genius access token" }
