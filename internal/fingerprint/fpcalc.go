// Package fingerprint computes acoustic fingerprints via the external
// fpcalc binary and resolves them to AcoustID recording candidates.
package fingerprint

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os/exec"

	"github.com/oshokin/audio-pipeline/internal/errs"
)

// fpcalcOutput is the shape of `fpcalc -json path`'s stdout.
type fpcalcOutput struct {
	Duration    float64 `json:"duration"`
	Fingerprint string  `json:"fingerprint"`
}

// runFpcalc invokes the fpcalc binary at fpcalcPath against filePath and
// parses its JSON output. A missing binary is reported as a distinct error
// surfacing an install hint.
func runFpcalc(ctx context.Context, fpcalcPath, filePath string) (duration float64, token string, err error) {
	cmd := exec.CommandContext(ctx, fpcalcPath, filePath, "-json")

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()
	if runErr != nil {
		if errors.Is(runErr, exec.ErrNotFound) || errors.Is(runErr, fs.ErrNotExist) {
			return 0, "", &errs.FingerprintError{
				FilePath: filePath,
				Reason:   fmt.Sprintf("fpcalc binary not found at %q; install chromaprint's fpcalc and add it to PATH", fpcalcPath),
				Cause:    runErr,
			}
		}

		return 0, "", &errs.FingerprintError{
			FilePath: filePath,
			Reason:   "fpcalc exited with an error: " + stderr.String(),
			Cause:    runErr,
		}
	}

	if stdout.Len() == 0 {
		return 0, "", &errs.FingerprintError{FilePath: filePath, Reason: "fpcalc produced empty output"}
	}

	var out fpcalcOutput
	if err := json.Unmarshal(stdout.Bytes(), &out); err != nil {
		return 0, "", &errs.FingerprintError{FilePath: filePath, Reason: "failed to parse fpcalc output", Cause: err}
	}

	if out.Fingerprint == "" {
		return 0, "", &errs.FingerprintError{FilePath: filePath, Reason: "fpcalc returned an empty fingerprint"}
	}

	return out.Duration, out.Fingerprint, nil
}
