package fingerprint

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"

	"github.com/oshokin/audio-pipeline/internal/errs"
	"github.com/oshokin/audio-pipeline/internal/model"
)

const acoustIDLookupURL = "https://api.acoustid.org/v2/lookup"

// RetryAfterError wraps an APIError for a 429 response, carrying the
// Retry-After hint so the caller's limiter can push its next slot forward.
type RetryAfterError struct {
	*errs.APIError
	Seconds float64
}

func parseRetryAfter(header string) float64 {
	if header == "" {
		return 1
	}

	if seconds, err := strconv.ParseFloat(header, 64); err == nil && seconds > 0 {
		return seconds
	}

	return 1
}

// acoustIDResponse mirrors the subset of AcoustID's /v2/lookup response
// this client needs.
type acoustIDResponse struct {
	Status string `json:"status"`
	Error  *struct {
		Message string `json:"message"`
	} `json:"error"`
	Results []struct {
		Score      float64 `json:"score"`
		Recordings []struct {
			ID string `json:"id"`
		} `json:"recordings"`
	} `json:"results"`
}

// AcoustIDClient looks up fingerprint/duration pairs against the AcoustID
// API.
type AcoustIDClient struct {
	httpClient *http.Client
	apiKey     string
}

// NewAcoustIDClient builds a client using the given *http.Client (already
// carrying the decorator chain) and API key.
func NewAcoustIDClient(httpClient *http.Client, apiKey string) *AcoustIDClient {
	return &AcoustIDClient{httpClient: httpClient, apiKey: apiKey}
}

// Lookup queries AcoustID for recording candidates matching the given
// fingerprint token and track duration, filters by minScore, and sorts
// descending by score (equal scores preserve API order, per the
// §4.3 step 4).
func (c *AcoustIDClient) Lookup(ctx context.Context, fingerprintToken string, durationSeconds float64, minScore float64) ([]model.FingerprintResult, error) {
	query := url.Values{
		"client":      {c.apiKey},
		"meta":        {"recordings"},
		"duration":    {strconv.Itoa(int(durationSeconds))},
		"fingerprint": {fingerprintToken},
	}

	reqURL := acoustIDLookupURL + "?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &errs.APIError{Service: "acoustid", StatusCode: 0, Cause: err}
	}
	defer resp.Body.Close() //nolint:errcheck // Read-only response body.

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &errs.APIError{Service: "acoustid", StatusCode: resp.StatusCode, Cause: err}
	}

	if resp.StatusCode != http.StatusOK {
		apiErr := &errs.APIError{Service: "acoustid", StatusCode: resp.StatusCode, Cause: fmt.Errorf("%s", string(body))}

		if resp.StatusCode == http.StatusTooManyRequests {
			return nil, &RetryAfterError{APIError: apiErr, Seconds: parseRetryAfter(resp.Header.Get("Retry-After"))}
		}

		return nil, apiErr
	}

	var parsed acoustIDResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, &errs.APIError{Service: "acoustid", StatusCode: resp.StatusCode, Cause: err}
	}

	if parsed.Status != "ok" {
		msg := "unknown error"
		if parsed.Error != nil {
			msg = parsed.Error.Message
		}

		// An invalid API key is surfaced untreated so the caller can
		// re-prompt; Engine.lookupWithRetry does not retry this 4xx.
		return nil, &errs.APIError{Service: "acoustid", StatusCode: resp.StatusCode, Cause: fmt.Errorf("%s", msg)}
	}

	results := make([]model.FingerprintResult, 0, len(parsed.Results))

	for _, r := range parsed.Results {
		if r.Score < minScore {
			continue
		}

		ids := make([]string, 0, len(r.Recordings))
		for _, rec := range r.Recordings {
			ids = append(ids, rec.ID)
		}

		results = append(results, model.FingerprintResult{RecordingIDs: ids, Score: r.Score})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	return results, nil
}
