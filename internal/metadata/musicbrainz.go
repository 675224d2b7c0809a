// Package metadata implements the MusicBrainz → Spotify → iTunes metadata
// cascade: the first source to return a
// non-empty CanonicalMetadata wins.
package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/oshokin/audio-pipeline/internal/cache"
	"github.com/oshokin/audio-pipeline/internal/errs"
	"github.com/oshokin/audio-pipeline/internal/model"
	"github.com/oshokin/audio-pipeline/internal/ratelimit"
)

const musicBrainzLookupURL = "https://musicbrainz.org/ws/2/recording/"

type mbRecordingResponse struct {
	Title    string      `json:"title"`
	Releases []mbRelease `json:"releases"`
	Tags     []mbTag     `json:"tags"`
}

type mbRelease struct {
	Status       string     `json:"status"`
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Date         string     `json:"date"`
	ReleaseGroup mbRelGroup `json:"release-group"`
	ArtistCredit []mbArtist `json:"artist-credit"`
}

type mbRelGroup struct {
	PrimaryType string `json:"primary-type"`
}

type mbArtist struct {
	Name        string `json:"name"`
	JoinPhrase  string `json:"joinphrase"`
}

type mbTag struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// MusicBrainzClient queries the MusicBrainz recording lookup endpoint.
type MusicBrainzClient struct {
	httpClient *http.Client
	limiter    ratelimit.Limiter
	cache      *cache.Typed[*model.CanonicalMetadata]
}

// NewMusicBrainzClient builds a MusicBrainzClient.
func NewMusicBrainzClient(httpClient *http.Client, limiter ratelimit.Limiter, store cache.Store) *MusicBrainzClient {
	return &MusicBrainzClient{
		httpClient: httpClient,
		limiter:    limiter,
		cache:      cache.NewTyped[*model.CanonicalMetadata](store, cache.TableMetadata),
	}
}

// LookupRecordings tries each recordingID in order, returning the first
// non-empty mapped CanonicalMetadata (cached per recordingID).
func (c *MusicBrainzClient) LookupRecordings(ctx context.Context, recordingIDs []string, genreVoteThreshold int) (*model.CanonicalMetadata, error) {
	for _, id := range recordingIDs {
		if cached, found, err := c.cache.Get(ctx, id); err != nil {
			return nil, err
		} else if found {
			if cached != nil {
				return cached, nil
			}

			continue
		}

		meta, err := c.lookupOne(ctx, id, genreVoteThreshold)
		if err != nil {
			return nil, err
		}

		if err := c.cache.Put(ctx, id, meta); err != nil {
			return nil, err
		}

		if meta != nil {
			return meta, nil
		}
	}

	return nil, nil
}

func (c *MusicBrainzClient) lookupOne(ctx context.Context, recordingID string, genreVoteThreshold int) (*model.CanonicalMetadata, error) {
	if err := c.limiter.Acquire(ctx); err != nil {
		return nil, err
	}

	reqURL := musicBrainzLookupURL + recordingID + "?fmt=json&inc=releases+release-groups+artist-credits+tags"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &errs.APIError{Service: "musicbrainz", Cause: err}
	}
	defer resp.Body.Close() //nolint:errcheck // Read-only response body.

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &errs.APIError{Service: "musicbrainz", StatusCode: resp.StatusCode, Cause: err}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &errs.APIError{Service: "musicbrainz", StatusCode: resp.StatusCode, Cause: fmt.Errorf("%s", string(body))}
	}

	var parsed mbRecordingResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, &errs.APIError{Service: "musicbrainz", StatusCode: resp.StatusCode, Cause: err}
	}

	release, ok := bestRelease(parsed.Releases)
	if !ok {
		return nil, nil
	}

	artist, featured := splitArtistCredit(release.ArtistCredit)

	return &model.CanonicalMetadata{
		RecordingID:     recordingID,
		ReleaseID:       release.ID,
		Title:           parsed.Title,
		Album:           release.Title,
		Artist:          artist,
		FeaturedArtists: featured,
		Year:            parseYearPrefix(release.Date),
		Genres:          extractGenres(parsed.Tags, genreVoteThreshold),
	}, nil
}

// bestRelease picks (status=Official > other) then (release-group
// primary-type=Album > EP/Single > other) then (earliest dated release).
func bestRelease(releases []mbRelease) (mbRelease, bool) {
	if len(releases) == 0 {
		return mbRelease{}, false
	}

	ranked := make([]mbRelease, len(releases))
	copy(ranked, releases)

	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]

		if (a.Status == "Official") != (b.Status == "Official") {
			return a.Status == "Official"
		}

		if releaseTypeRank(a.ReleaseGroup.PrimaryType) != releaseTypeRank(b.ReleaseGroup.PrimaryType) {
			return releaseTypeRank(a.ReleaseGroup.PrimaryType) < releaseTypeRank(b.ReleaseGroup.PrimaryType)
		}

		return a.Date < b.Date
	})

	return ranked[0], true
}

func releaseTypeRank(primaryType string) int {
	switch primaryType {
	case "Album":
		return 0
	case "EP", "Single":
		return 1
	default:
		return 2
	}
}

// splitArtistCredit joins the artist-credit list into a primary artist plus
// a list of featured artists, using joinphrases containing "feat" to mark
// the transition into featured-artist territory.
func splitArtistCredit(credits []mbArtist) (string, []string) {
	if len(credits) == 0 {
		return "", nil
	}

	var (
		primary  strings.Builder
		featured []string
		inFeat   bool
	)

	for i, c := range credits {
		if inFeat {
			featured = append(featured, c.Name)
		} else {
			primary.WriteString(c.Name)
		}

		joinPhrase := strings.ToLower(c.JoinPhrase)
		if strings.Contains(joinPhrase, "feat") {
			inFeat = true
		} else if !inFeat && i < len(credits)-1 {
			primary.WriteString(c.JoinPhrase)
		}
	}

	return primary.String(), featured
}

func parseYearPrefix(date string) int {
	if len(date) < 4 {
		return 0
	}

	year, err := strconv.Atoi(date[:4])
	if err != nil {
		return 0
	}

	return year
}

// extractGenres keeps tags with vote count >= threshold, sorted by count
// descending, each word capitalised.
func extractGenres(tags []mbTag, threshold int) []string {
	if threshold <= 0 {
		threshold = 1
	}

	filtered := make([]mbTag, 0, len(tags))

	for _, t := range tags {
		if t.Count >= threshold {
			filtered = append(filtered, t)
		}
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].Count > filtered[j].Count
	})

	genres := make([]string, 0, len(filtered))
	for _, t := range filtered {
		genres = append(genres, capitalizeWords(t.Name))
	}

	return genres
}

func capitalizeWords(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		if w == "" {
			continue
		}

		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}

	return strings.Join(words, " ")
}
