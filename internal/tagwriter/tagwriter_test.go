package tagwriter

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oshokin/audio-pipeline/internal/model"
)

func TestRenderTemplate(t *testing.T) {
	t.Parallel()

	meta := &model.CanonicalMetadata{Artist: "Artist", Title: "Title", Album: "Album", Year: 1999}

	got := renderTemplate("{artist} - {title} ({year})", meta)
	assert.Equal(t, "Artist - Title (1999)", got)
}

func TestRenderTemplate_MissingYear(t *testing.T) {
	t.Parallel()

	meta := &model.CanonicalMetadata{Artist: "Artist", Title: "Title"}

	got := renderTemplate("{artist} - {title}", meta)
	assert.Equal(t, "Artist - Title", got)
}

func TestWrite_UnsupportedExtension(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "track.wav")
	require.NoError(t, os.WriteFile(path, []byte("fake"), 0o644))

	w := NewWriter()

	_, err := w.Write(context.Background(), &WriteRequest{FilePath: path})
	assert.Error(t, err)
}

func TestWrite_EmptyPath(t *testing.T) {
	t.Parallel()

	w := NewWriter()

	_, err := w.Write(context.Background(), &WriteRequest{FilePath: ""})
	assert.Error(t, err)
}

func TestRename_MovesFileToTemplateName(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "track.wav")
	require.NoError(t, os.WriteFile(path, []byte("fake"), 0o644))

	w := &WriterImpl{}

	_, err := w.rename(context.Background(), &WriteRequest{
		FilePath:       path,
		Metadata:       &model.CanonicalMetadata{Artist: "A", Title: "T"},
		NamingTemplate: "{artist} - {title}",
	})
	require.NoError(t, err)

	_, statErr := os.Stat(filepath.Join(dir, "A - T.wav"))
	assert.NoError(t, statErr)
}

func TestRename_AvoidsCollision(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "track.wav")
	require.NoError(t, os.WriteFile(path, []byte("fake"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "A - T.wav"), []byte("existing"), 0o644))

	w := &WriterImpl{}

	newPath, err := w.rename(context.Background(), &WriteRequest{
		FilePath:       path,
		Metadata:       &model.CanonicalMetadata{Artist: "A", Title: "T"},
		NamingTemplate: "{artist} - {title}",
	})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "A - T (1).wav"), newPath)
}
