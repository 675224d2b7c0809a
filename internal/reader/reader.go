// Package reader populates AudioFileMetadata from an on-disk audio file,
// before any network calls are made. Metadata it produces is never mutated
// afterwards; the pipeline treats it as the "original" snapshot.
package reader

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dhowden/tag"

	"github.com/oshokin/audio-pipeline/internal/errs"
	"github.com/oshokin/audio-pipeline/internal/model"
)

// extensionFormats maps a lowercased file extension to the AudioFormat the
// rest of the pipeline reasons about.
var extensionFormats = map[string]model.AudioFormat{
	".mp3":  model.FormatMP3,
	".flac": model.FormatFLAC,
	".m4a":  model.FormatM4A,
	".wav":  model.FormatWAV,
	".ogg":  model.FormatOGG,
	".wma":  model.FormatWMA,
}

// FormatForExtension returns the AudioFormat for path's extension, and
// false if the extension is not one this pipeline recognises.
func FormatForExtension(path string) (model.AudioFormat, bool) {
	f, ok := extensionFormats[strings.ToLower(filepath.Ext(path))]
	return f, ok
}

// Read opens path and extracts its existing tags plus file-level facts
// (size). wav/ogg/wma files are read the same way as mp3/flac/m4a — only
// the tag *writer* treats them differently (read-only in this port).
func Read(path string) (*model.AudioFileMetadata, error) {
	format, ok := FormatForExtension(path)
	if !ok {
		return nil, &errs.FileReadError{FilePath: path, Cause: fmt.Errorf("unsupported extension %q", filepath.Ext(path))}
	}

	f, err := os.Open(path) //nolint:gosec // Path comes from the caller's own file walk.
	if err != nil {
		return nil, &errs.FileReadError{FilePath: path, Cause: err}
	}
	defer f.Close() //nolint:errcheck // Read-only handle; nothing to flush.

	info, err := f.Stat()
	if err != nil {
		return nil, &errs.FileReadError{FilePath: path, Cause: err}
	}

	meta := &model.AudioFileMetadata{
		FilePath: path,
		Format:   format,
		FileSize: info.Size(),
	}

	tags, err := tag.ReadFrom(f)
	if err != nil {
		// A file with no readable tags is still a valid input: the
		// metadata cascade has nothing to skip on, but fingerprinting
		// and renaming still work from the fingerprint match alone.
		if err == tag.ErrNoTagsFound {
			return meta, nil
		}

		return nil, &errs.FileReadError{FilePath: path, Cause: err}
	}

	meta.Title = tags.Title()
	meta.Artist = tags.Artist()
	meta.Album = tags.Album()
	meta.AlbumArtist = tags.AlbumArtist()

	if year := tags.Year(); year > 0 {
		meta.Year = year
	}

	if genre := tags.Genre(); genre != "" {
		meta.Genre = splitGenres(genre)
	}

	track, _ := tags.Track()
	meta.TrackNumber = track

	disc, _ := tags.Disc()
	meta.DiscNumber = disc

	return meta, nil
}

// splitGenres splits a tag frame that may pack multiple genres into one
// "; "-or-"/"-separated string, the common convention id3v2 writers use.
func splitGenres(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	var sep string

	switch {
	case strings.Contains(raw, ";"):
		sep = ";"
	case strings.Contains(raw, "/"):
		sep = "/"
	default:
		return []string{raw}
	}

	parts := strings.Split(raw, sep)
	genres := make([]string, 0, len(parts))

	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			genres = append(genres, p)
		}
	}

	return genres
}
