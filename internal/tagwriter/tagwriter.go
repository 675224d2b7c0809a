// Package tagwriter is the narrow collaborator the orchestrator calls to
// rewrite an audio file's in-band tags and, when possible, rename it from a
// naming template. It never reaches into FLAC/MP3/M4A internals from
// outside this package.
package tagwriter

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/oshokin/audio-pipeline/internal/constants"
	"github.com/oshokin/audio-pipeline/internal/errs"
	"github.com/oshokin/audio-pipeline/internal/logger"
	"github.com/oshokin/audio-pipeline/internal/model"
	"github.com/oshokin/audio-pipeline/internal/utils"
)

// WriteRequest is the input to Write: the file to rewrite, the resolved
// metadata to write, and the write/rename options the orchestrator derived
// from AppSettings.
type WriteRequest struct {
	FilePath string
	Metadata *model.CanonicalMetadata
	Lyrics   string
	Art      *model.AlbumArt

	OverwriteAll   bool
	OutputDir      string
	NamingTemplate string
}

// Result is the outcome of one Write call.
type Result struct {
	// NewPath is set only when the file was renamed (artist and title both
	// present); otherwise the caller keeps FilePath.
	NewPath string
}

// Writer rewrites tags on an audio file and, when the naming contract is
// satisfied, renames it.
type Writer interface {
	Write(ctx context.Context, req *WriteRequest) (*Result, error)
}

// WriterImpl is the default Writer, dispatching by file extension.
type WriterImpl struct{}

// NewWriter returns the default tag writer.
func NewWriter() Writer {
	return &WriterImpl{}
}

// Write rewrites req.FilePath's tags, then renames it when both artist and
// title are present in req.Metadata.
func (w *WriterImpl) Write(ctx context.Context, req *WriteRequest) (*Result, error) {
	if req.FilePath == "" {
		return nil, &errs.WriteError{FilePath: req.FilePath, Reason: "empty file path"}
	}

	ext := strings.ToLower(filepath.Ext(req.FilePath))

	var writeErr error

	switch ext {
	case constants.ExtensionFLAC:
		writeErr = w.writeFLAC(req)
	case constants.ExtensionMP3:
		writeErr = w.writeMP3(ctx, req)
	case constants.ExtensionM4A:
		writeErr = w.writeM4A(req)
	case constants.ExtensionWAV, constants.ExtensionOGG, constants.ExtensionWMA:
		writeErr = fmt.Errorf("writing tags to %s files is not supported", ext)
	default:
		writeErr = fmt.Errorf("unrecognised audio extension %q", ext)
	}

	if writeErr != nil {
		return nil, &errs.WriteError{FilePath: req.FilePath, Reason: "codec write failed", Cause: writeErr}
	}

	if req.Metadata == nil || req.Metadata.Artist == "" || req.Metadata.Title == "" {
		return &Result{}, nil
	}

	newPath, err := w.rename(ctx, req)
	if err != nil {
		return nil, &errs.WriteError{FilePath: req.FilePath, Reason: "rename failed", Cause: err}
	}

	return &Result{NewPath: newPath}, nil
}

// rename computes the template-derived destination path, sanitised and
// collision-suffixed, and moves the file there.
func (w *WriterImpl) rename(ctx context.Context, req *WriteRequest) (string, error) {
	name := renderTemplate(req.NamingTemplate, req.Metadata)
	name = utils.SanitizeFilename(name)

	dir := req.OutputDir
	if dir == "" {
		dir = filepath.Dir(req.FilePath)
	}

	ext := filepath.Ext(req.FilePath)
	candidate := filepath.Join(dir, utils.SetFileExtension(name, ext, false))

	for suffix := 1; ; suffix++ {
		if candidate == req.FilePath {
			return candidate, nil
		}

		exists, err := utils.IsFileExist(candidate)
		if err != nil {
			return "", err
		}

		if !exists {
			break
		}

		candidate = filepath.Join(dir, utils.SetFileExtension(fmt.Sprintf("%s (%d)", name, suffix), ext, false))
	}

	if err := os.MkdirAll(dir, constants.DefaultFolderPermissions); err != nil {
		return "", err
	}

	if err := os.Rename(req.FilePath, candidate); err != nil {
		return "", err
	}

	logger.Infof(ctx, "renamed %s to %s", req.FilePath, candidate)

	return candidate, nil
}

// renderTemplate substitutes {artist}, {title}, {album}, {year} in
// template with meta's fields. Missing optional fields substitute "".
func renderTemplate(template string, meta *model.CanonicalMetadata) string {
	year := ""
	if meta.Year > 0 {
		year = strconv.Itoa(meta.Year)
	}

	replacer := strings.NewReplacer(
		"{artist}", meta.Artist,
		"{title}", meta.Title,
		"{album}", meta.Album,
		"{year}", year,
	)

	return replacer.Replace(template)
}
