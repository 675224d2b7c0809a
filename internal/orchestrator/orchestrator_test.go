package orchestrator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/oshokin/audio-pipeline/internal/model"
)

func TestClampConcurrency(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 1, clampConcurrency(0))
	assert.Equal(t, 1, clampConcurrency(-5))
	assert.Equal(t, 5, clampConcurrency(5))
	assert.Equal(t, 10, clampConcurrency(25))
}

func TestFillCancelledGaps(t *testing.T) {
	t.Parallel()

	o := &Orchestrator{}
	paths := []string{"a.mp3", "b.mp3", "c.mp3"}
	results := make([]model.ProcessingResult, 3)
	results[1] = model.ProcessingResult{OriginalPath: "b.mp3", Status: model.StatusCompleted}

	o.fillCancelledGaps(paths, results)

	assert.Equal(t, model.StatusSkipped, results[0].Status)
	assert.Equal(t, "Processing cancelled", results[0].Error)
	assert.Equal(t, model.StatusCompleted, results[1].Status)
	assert.Equal(t, model.StatusSkipped, results[2].Status)
}

func TestEstimateRemaining_ZeroProcessed(t *testing.T) {
	t.Parallel()

	o := &Orchestrator{startedAt: time.Now()}

	_, ok := o.estimateRemaining(10)
	assert.False(t, ok)
}

func TestEstimateRemaining_ComputesFromElapsed(t *testing.T) {
	t.Parallel()

	o := &Orchestrator{
		startedAt: time.Now().Add(-10 * time.Second),
		processed: 5,
	}

	eta, ok := o.estimateRemaining(10)
	assert.True(t, ok)
	assert.InDelta(t, 10, eta, 2)
}

func TestCorrectedRecord_FoldsFeaturedArtists(t *testing.T) {
	t.Parallel()

	canonical := &model.CanonicalMetadata{
		Artist:          "Daft Punk",
		FeaturedArtists: []string{"Pharrell Williams"},
		Title:           "Get Lucky",
	}

	record := correctedRecord(canonical)

	assert.Equal(t, "Daft Punk feat. Pharrell Williams", record.Artist)
	assert.Equal(t, "Get Lucky", record.Title)
	assert.Equal(t, "Daft Punk", canonical.Artist, "original record must not be mutated")
}

func TestCorrectedRecord_NoFeaturedArtists(t *testing.T) {
	t.Parallel()

	canonical := &model.CanonicalMetadata{Artist: "Radiohead", Title: "Karma Police"}

	record := correctedRecord(canonical)

	assert.Equal(t, "Radiohead", record.Artist)
}

func TestFallbackMetadataFromTags(t *testing.T) {
	t.Parallel()

	assert.Nil(t, fallbackMetadataFromTags(&model.AudioFileMetadata{}))

	meta := &model.AudioFileMetadata{Artist: "Artist", Title: "Title", Album: "Album", Year: 2020}
	canonical := fallbackMetadataFromTags(meta)

	assert.NotNil(t, canonical)
	assert.Equal(t, "Artist", canonical.Artist)
	assert.Equal(t, "Title", canonical.Title)
	assert.Equal(t, 2020, canonical.Year)
}
