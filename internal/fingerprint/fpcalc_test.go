package fingerprint

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRunFpcalc_MissingBinary(t *testing.T) {
	t.Parallel()

	_, _, err := runFpcalc(context.Background(), "fpcalc-does-not-exist-anywhere", "track.flac")
	assert.Error(t, err)
}

func TestParseRetryAfter(t *testing.T) {
	t.Parallel()

	assert.Equal(t, float64(1), parseRetryAfter(""))
	assert.Equal(t, float64(1), parseRetryAfter("not-a-number"))
	assert.Equal(t, float64(5), parseRetryAfter("5"))
}
