package reader

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatForExtension(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path    string
		want    string
		wantOK  bool
	}{
		{path: "track.mp3", want: "mp3", wantOK: true},
		{path: "track.FLAC", want: "flac", wantOK: true},
		{path: "track.m4a", want: "m4a", wantOK: true},
		{path: "track.wav", want: "wav", wantOK: true},
		{path: "track.txt", wantOK: false},
	}

	for _, tt := range tests {
		format, ok := FormatForExtension(tt.path)
		assert.Equal(t, tt.wantOK, ok, tt.path)

		if tt.wantOK {
			assert.Equal(t, tt.want, string(format), tt.path)
		}
	}
}

func TestSplitGenres(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"Rock"}, splitGenres("Rock"))
	assert.Equal(t, []string{"Rock", "Pop"}, splitGenres("Rock; Pop"))
	assert.Equal(t, []string{"Rock", "Pop"}, splitGenres("Rock/Pop"))
	assert.Nil(t, splitGenres(""))
}

func TestRead_UnsupportedExtension(t *testing.T) {
	t.Parallel()

	_, err := Read("track.xyz")
	assert.Error(t, err)
}

func TestRead_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := Read("/nonexistent/path/track.mp3")
	assert.Error(t, err)
}
