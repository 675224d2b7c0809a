package metadata

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBestRelease_PrefersOfficialThenAlbumThenEarliest(t *testing.T) {
	t.Parallel()

	releases := []mbRelease{
		{Status: "Pseudo-Release", Date: "2000-01-01", ReleaseGroup: mbRelGroup{PrimaryType: "Album"}},
		{Status: "Official", Date: "2005-01-01", ReleaseGroup: mbRelGroup{PrimaryType: "Single"}},
		{Status: "Official", Date: "2001-01-01", ReleaseGroup: mbRelGroup{PrimaryType: "Album"}},
		{Status: "Official", Date: "1999-01-01", ReleaseGroup: mbRelGroup{PrimaryType: "Album"}},
	}

	best, ok := bestRelease(releases)
	assert.True(t, ok)
	assert.Equal(t, "1999-01-01", best.Date)
}

func TestSplitArtistCredit_MarksFeaturedArtists(t *testing.T) {
	t.Parallel()

	credits := []mbArtist{
		{Name: "Main Artist", JoinPhrase: " feat. "},
		{Name: "Guest One", JoinPhrase: " & "},
		{Name: "Guest Two", JoinPhrase: ""},
	}

	primary, featured := splitArtistCredit(credits)
	assert.Equal(t, "Main Artist", primary)
	assert.Equal(t, []string{"Guest One", "Guest Two"}, featured)
}

func TestParseYearPrefix(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 1999, parseYearPrefix("1999-03-04"))
	assert.Equal(t, 0, parseYearPrefix(""))
	assert.Equal(t, 0, parseYearPrefix("xx"))
}

func TestExtractGenres_FiltersAndSortsByCount(t *testing.T) {
	t.Parallel()

	tags := []mbTag{
		{Name: "rock", Count: 3},
		{Name: "ignored", Count: 0},
		{Name: "indie pop", Count: 5},
	}

	genres := extractGenres(tags, 1)
	assert.Equal(t, []string{"Indie Pop", "Rock"}, genres)
}

func TestUpscaleArtworkURL(t *testing.T) {
	t.Parallel()

	assert.Equal(t,
		"https://example.com/art/600x600bb.jpg",
		upscaleArtworkURL("https://example.com/art/100x100bb.jpg"),
	)
	assert.Equal(t, "", upscaleArtworkURL(""))
}

func TestLooksLikeLegitimateSearchTerm(t *testing.T) {
	t.Parallel()

	assert.True(t, LooksLikeLegitimateSearchTerm("Some Song"))
	assert.False(t, LooksLikeLegitimateSearchTerm("a"))
	assert.False(t, LooksLikeLegitimateSearchTerm("musicsite.com"))
}

func TestFilenameSearchTerm_StripsDomainPrefix(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Real Song Title", FilenameSearchTerm("musicsite.com - Real Song Title"))
	assert.Equal(t, "Already Clean Title", FilenameSearchTerm("Already Clean Title"))
}
