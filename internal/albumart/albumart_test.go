package albumart

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKey_NormalisesCase(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "pink floyd:the wall", Key("Pink Floyd", "The Wall"))
	assert.Equal(t, "pink floyd:the wall", Key("  Pink Floyd  ", "  The Wall  "))
}

func TestFuzzyMatch(t *testing.T) {
	t.Parallel()

	assert.True(t, fuzzyMatch("Pink Floyd", "pink-floyd"))
	assert.True(t, fuzzyMatch("The Beatles", "Beatles"))
	assert.False(t, fuzzyMatch("Pink Floyd", "Led Zeppelin"))
	assert.False(t, fuzzyMatch("", "Beatles"))
}

func TestBestDeezerCover_PrefersXLThenBigThenSmall(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "xl", bestDeezerCover("xl", "big", "small", "fallback"))
	assert.Equal(t, "big", bestDeezerCover("", "big", "small", "fallback"))
	assert.Equal(t, "small", bestDeezerCover("", "", "small", "fallback"))
	assert.Equal(t, "fallback", bestDeezerCover("", "", "", "fallback"))
}
