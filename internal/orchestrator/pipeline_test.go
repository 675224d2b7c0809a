package orchestrator

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oshokin/audio-pipeline/internal/model"
	"github.com/oshokin/audio-pipeline/internal/tagwriter"
)

type stubWriter struct {
	result *tagwriter.Result
	err    error
}

func (s *stubWriter) Write(_ context.Context, _ *tagwriter.WriteRequest) (*tagwriter.Result, error) {
	return s.result, s.err
}

func TestProcessFile_MissingFileFailsAtReading(t *testing.T) {
	t.Parallel()

	o := New(model.AppSettings{}, Dependencies{TagWriter: &stubWriter{}}, nil, nil)

	result := o.processFile(context.Background(), filepath.Join(t.TempDir(), "missing.mp3"))

	assert.Equal(t, model.StatusError, result.Status)
	assert.Equal(t, model.StepReading, result.FailedStep)
}

func TestProcessFile_NoArtistOrTitleIsSkipped(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "untagged.mp3")
	writeMinimalMP3(t, path)

	o := New(model.AppSettings{}, Dependencies{TagWriter: &stubWriter{}}, nil, nil)

	result := o.processFile(context.Background(), path)

	assert.Equal(t, model.StatusSkipped, result.Status)
	assert.Equal(t, noMetadataFoundReason, result.Error)
}

func TestRunMetadataResolution_FallsBackToFileTags(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "tagged.mp3")
	writeMinimalMP3(t, path)

	writer := &stubWriter{result: &tagwriter.Result{NewPath: filepath.Join(dir, "renamed.mp3")}}
	o := New(model.AppSettings{}, Dependencies{TagWriter: writer}, nil, nil)

	// processFile reads real tags off disk; a bare MP3 frame has none, so
	// the fallback-from-tags path below is exercised via runMetadataResolution
	// directly instead of forcing tag content into the fixture file.
	canonical, err := o.runMetadataResolution(context.Background(), &model.AudioFileMetadata{
		FilePath: path,
		Artist:   "Artist",
		Title:    "Title",
	}, nil)
	require.NoError(t, err)
	require.NotNil(t, canonical)
	assert.Equal(t, "Artist", canonical.Artist)
}

func TestCheckIntegrity_PassesWhenNoSizeRecorded(t *testing.T) {
	t.Parallel()

	o := &Orchestrator{settings: model.AppSettings{IntegrityCheckMinRatio: 0.5}}

	err := o.checkIntegrity("nonexistent", &tagwriter.Result{}, 0)
	assert.NoError(t, err)
}

func TestCheckIntegrity_FailsWhenFileShrank(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "shrunk.mp3")
	writeMinimalMP3(t, path)

	o := &Orchestrator{settings: model.AppSettings{IntegrityCheckMinRatio: 100}}

	err := o.checkIntegrity(path, &tagwriter.Result{}, 1_000_000)
	assert.Error(t, err)
}

// writeMinimalMP3 writes an MP3 frame header padded to 256 bytes, so
// reader.Read's tag.ReadFrom call can read its 11-byte header probe and
// seek to the 128-byte ID3v1 trailer, and returns ErrNoTagsFound rather
// than a short-read error.
func writeMinimalMP3(t *testing.T, path string) {
	t.Helper()

	data := make([]byte, 256)
	copy(data, []byte{0xFF, 0xFB, 0x90, 0x00})

	require.NoError(t, os.WriteFile(path, data, 0o600))
}
