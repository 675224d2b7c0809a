package lyrics

import (
	"context"
	"encoding/xml"
	"io"
	"net/http"
	"net/url"

	"github.com/oshokin/audio-pipeline/internal/errs"
)

const chartLyricsSearchURL = "http://api.chartlyrics.com/apiv1.asmx/SearchLyricDirect"

type chartLyricsResult struct {
	XMLName xml.Name `xml:"GetLyricResult"`
	Lyric   string   `xml:"Lyric"`
}

// ChartLyricsClient is the cascade's third-choice lyrics source, used when
// LRCLIB yields nothing.
type ChartLyricsClient struct {
	httpClient *http.Client
}

// NewChartLyricsClient builds a ChartLyricsClient.
func NewChartLyricsClient(httpClient *http.Client) *ChartLyricsClient {
	return &ChartLyricsClient{httpClient: httpClient}
}

// Search calls SearchLyricDirect and returns the raw lyric text, if any.
func (c *ChartLyricsClient) Search(ctx context.Context, artist, title string) (string, error) {
	reqURL := chartLyricsSearchURL + "?" + url.Values{
		"artist": {artist},
		"song":   {title},
	}.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return "", err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &errs.APIError{Service: "chartlyrics", Cause: err}
	}
	defer resp.Body.Close() //nolint:errcheck // Read-only response body.

	if resp.StatusCode != http.StatusOK {
		return "", &errs.APIError{Service: "chartlyrics", StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	var parsed chartLyricsResult
	if err := xml.Unmarshal(body, &parsed); err != nil {
		return "", nil //nolint:nilerr // A malformed/empty SOAP body is treated as "no lyrics", not an error.
	}

	return parsed.Lyric, nil
}
