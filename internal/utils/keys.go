package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"strings"
)

const oneMiB = 1 << 20

// NormalizeArtistTitleKey builds the lyrics cache key
// lower(trim(a)) + "|" + lower(trim(b)).
func NormalizeArtistTitleKey(a, b string) string {
	return strings.ToLower(strings.TrimSpace(a)) + "|" + strings.ToLower(strings.TrimSpace(b))
}

// NormalizeAlbumArtKey builds the album-art cascade dedup key: lower(artist)
// + ":" + lower(album-or-title).
func NormalizeAlbumArtKey(artist, albumOrTitle string) string {
	return strings.ToLower(strings.TrimSpace(artist)) + ":" + strings.ToLower(strings.TrimSpace(albumOrTitle))
}

// FileContentHash computes SHA-256 over the first 1 MiB concatenated with
// the last 1 MiB of the file at path, the persistent fingerprint-cache key
// Files smaller than 2 MiB are hashed in full
// (the two windows overlap in that case, which is harmless: the hash is
// still a stable identity for the bytes actually read).
func FileContentHash(path string) (string, error) {
	f, err := os.Open(path) //nolint:gosec // Path is supplied by the caller's own file list.
	if err != nil {
		return "", err
	}
	defer f.Close() //nolint:errcheck // Read-only handle; nothing to flush.

	info, err := f.Stat()
	if err != nil {
		return "", err
	}

	h := sha256.New()

	size := info.Size()
	headLen := min(size, oneMiB)

	if _, err := io.CopyN(h, f, headLen); err != nil && err != io.EOF {
		return "", err
	}

	if size > oneMiB {
		tailLen := min(size, oneMiB)

		if _, err := f.Seek(-tailLen, io.SeekEnd); err != nil {
			return "", err
		}

		if _, err := io.CopyN(h, f, tailLen); err != nil && err != io.EOF {
			return "", err
		}
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}
