package lyrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClean_StripsURLsAndNoiseLines(t *testing.T) {
	t.Parallel()

	raw := "Verse one\r\nLyrics provided by LyricFind\nhttps://example.com/track\n\n\n\nVerse two  \n***\n"

	got := Clean(raw)

	assert.Equal(t, "Verse one\n\nVerse two", got)
}

func TestClean_CollapsesBlankLines(t *testing.T) {
	t.Parallel()

	raw := "A\n\n\n\n\nB"

	assert.Equal(t, "A\n\nB", Clean(raw))
}

func TestClean_TrimsWhitespace(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "hello", Clean("  \n\n  hello  \n\n  "))
}

func TestContainsFold(t *testing.T) {
	t.Parallel()

	assert.True(t, containsFold("Pink Floyd", "floyd"))
	assert.True(t, containsFold("THE BEATLES", "beatles"))
	assert.False(t, containsFold("Pink Floyd", "Zeppelin"))
}
