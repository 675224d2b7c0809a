package metadata

import (
	"context"

	"github.com/oshokin/audio-pipeline/internal/logger"
	"github.com/oshokin/audio-pipeline/internal/model"
)

const defaultGenreVoteThreshold = 1

// Cascade runs the MusicBrainz -> Spotify -> iTunes resolution order. A nil
// *SpotifyClient is treated as "Spotify disabled", matching §4.4's gate.
type Cascade struct {
	musicBrainz *MusicBrainzClient
	spotify     *SpotifyClient
	itunes      *ITunesClient
}

// NewCascade builds a Cascade. spotify may be nil.
func NewCascade(musicBrainz *MusicBrainzClient, spotify *SpotifyClient, itunes *ITunesClient) *Cascade {
	return &Cascade{musicBrainz: musicBrainz, spotify: spotify, itunes: itunes}
}

// Resolve runs the cascade for one file: recordingIDs from the fingerprint
// step (may be empty), plus the best-known (title, artist) to search with
// if MusicBrainz comes up empty.
func (c *Cascade) Resolve(ctx context.Context, recordingIDs []string, title, artist string) (*model.CanonicalMetadata, error) {
	if len(recordingIDs) > 0 {
		meta, err := c.musicBrainz.LookupRecordings(ctx, recordingIDs, defaultGenreVoteThreshold)
		if err != nil {
			return nil, err
		}

		if meta != nil {
			return meta, nil
		}
	}

	if c.spotify != nil {
		meta, err := c.spotify.Search(ctx, title, artist)
		if err != nil {
			logger.Warnf(ctx, "spotify metadata search failed: %v", err)
		} else if meta != nil {
			return meta, nil
		}
	}

	searchTitle := title
	if !LooksLikeLegitimateSearchTerm(searchTitle) {
		return nil, nil
	}

	meta, err := c.itunes.Search(ctx, searchTitle, artist)
	if err != nil {
		logger.Warnf(ctx, "itunes metadata search failed: %v", err)
		return nil, nil
	}

	return meta, nil
}
