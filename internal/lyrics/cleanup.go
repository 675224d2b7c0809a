package lyrics

import (
	"regexp"
	"strings"
)

var (
	urlPattern      = regexp.MustCompile(`https?://\S+`)
	noisePattern    = regexp.MustCompile(`(?i)^\s*((lyrics provided by|paroles fournies par|copyright).*|advertisement|\*+|-{3,})\s*$`)
	multiBlankLines = regexp.MustCompile(`\n{3,}`)
)

// Clean normalises lyrics text fetched from any cascade source: CRLF/CR
// line endings, stray tracking URLs, boilerplate attribution lines, and
// runs of blank lines are all removed before the text is cached or
// embedded in a tag.
func Clean(raw string) string {
	text := strings.ReplaceAll(raw, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = urlPattern.ReplaceAllString(text, "")

	lines := strings.Split(text, "\n")
	kept := make([]string, 0, len(lines))

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if noisePattern.MatchString(trimmed) {
			continue
		}

		kept = append(kept, trimmed)
	}

	text = strings.Join(kept, "\n")
	text = multiBlankLines.ReplaceAllString(text, "\n\n")

	return strings.TrimSpace(text)
}
