package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oshokin/audio-pipeline/internal/config"
)

func newTestFlagSet() *pflag.FlagSet {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.IntP("concurrency", "j", 0, "")
	flags.StringP("output", "o", "", "")
	flags.StringP("naming-template", "n", "", "")
	flags.BoolP("lyrics", "l", false, "")
	flags.Bool("overwrite-existing-tags", false, "")

	return flags
}

func TestBindFlagsToConfig_NoFlagsKeepsDefaults(t *testing.T) {
	t.Parallel()

	flags := newTestFlagSet()
	cfg := config.Default()
	cfg.AcoustIDAPIKey = "key"

	require.NoError(t, bindFlagsToConfig(flags, cfg))
	assert.Equal(t, 5, cfg.Concurrency)
	assert.False(t, cfg.FetchLyrics)
}

func TestBindFlagsToConfig_OverridesChangedFlags(t *testing.T) {
	t.Parallel()

	flags := newTestFlagSet()
	require.NoError(t, flags.Set("concurrency", "3"))
	require.NoError(t, flags.Set("output", "/tmp/out"))
	require.NoError(t, flags.Set("lyrics", "true"))

	cfg := config.Default()
	cfg.AcoustIDAPIKey = "key"

	require.NoError(t, bindFlagsToConfig(flags, cfg))
	assert.Equal(t, 3, cfg.Concurrency)
	assert.Equal(t, "/tmp/out", cfg.OutputFolder)
	assert.True(t, cfg.FetchLyrics)
}

func TestBindFlagsToConfig_ConcurrencyClampedByValidation(t *testing.T) {
	t.Parallel()

	flags := newTestFlagSet()
	require.NoError(t, flags.Set("concurrency", "99"))

	cfg := config.Default()
	cfg.AcoustIDAPIKey = "key"

	require.NoError(t, bindFlagsToConfig(flags, cfg))
	assert.Equal(t, 10, cfg.Concurrency)
}

func TestExpandAudioPaths_SingleFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "song.mp3")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o600))

	files, err := expandAudioPaths([]string{path})
	require.NoError(t, err)
	assert.Equal(t, []string{path}, files)
}

func TestExpandAudioPaths_DirectoryFiltersByExtension(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.mp3"), []byte("x"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.flac"), []byte("x"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o600))

	files, err := expandAudioPaths([]string{dir})
	require.NoError(t, err)
	assert.Len(t, files, 2)
}

func TestExpandAudioPaths_MissingPathErrors(t *testing.T) {
	t.Parallel()

	_, err := expandAudioPaths([]string{filepath.Join(t.TempDir(), "missing.mp3")})
	assert.Error(t, err)
}
