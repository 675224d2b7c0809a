package orchestrator

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/oshokin/audio-pipeline/internal/albumart"
	"github.com/oshokin/audio-pipeline/internal/errs"
	"github.com/oshokin/audio-pipeline/internal/logger"
	"github.com/oshokin/audio-pipeline/internal/model"
	"github.com/oshokin/audio-pipeline/internal/reader"
	"github.com/oshokin/audio-pipeline/internal/tagwriter"
	"github.com/oshokin/audio-pipeline/internal/utils"
)

const noMetadataFoundReason = "No metadata found in MusicBrainz or iTunes"

// processFile runs the §4.8 per-file state machine over one path. It never
// panics and always returns a terminal ProcessingResult (completed,
// skipped, or error).
func (o *Orchestrator) processFile(ctx context.Context, path string) model.ProcessingResult {
	result := model.ProcessingResult{OriginalPath: path}

	original, err := reader.Read(path)
	if err != nil {
		return o.failAt(result, model.StepReading, err)
	}

	result.OriginalMetadata = original

	fingerprints, err := o.runFingerprinting(ctx, original)
	if err != nil {
		return o.failAt(result, model.StepFingerprinting, err)
	}

	canonical, err := o.runMetadataResolution(ctx, original, fingerprints)
	if err != nil {
		return o.failAt(result, model.StepFetchingMetadata, err)
	}

	if canonical == nil {
		logFileSkip(ctx, path, noMetadataFoundReason)

		result.Status = model.StatusSkipped
		result.Error = noMetadataFoundReason
		result.FailedStep = model.StepFetchingMetadata

		return result
	}

	result.CorrectedMetadata = canonical

	art := o.runAlbumArt(ctx, canonical)
	lyricsText := o.runLyrics(ctx, canonical)

	writeResult, err := o.writeTags(ctx, path, original, canonical, art, lyricsText)
	if err != nil {
		return o.failAt(result, model.StepWritingTags, err)
	}

	result.NewPath = writeResult.NewPath
	result.Status = model.StatusCompleted

	return result
}

func (o *Orchestrator) failAt(result model.ProcessingResult, step model.PipelineStep, err error) model.ProcessingResult {
	result.Status = model.StatusError
	result.FailedStep = step
	result.Error = err.Error()

	return result
}

func (o *Orchestrator) runFingerprinting(ctx context.Context, meta *model.AudioFileMetadata) ([]model.FingerprintResult, error) {
	if o.fingerprintEngine == nil {
		return nil, nil
	}

	cacheKey := meta.FilePath

	if o.usePersistentCache {
		hash, hashErr := utils.FileContentHash(meta.FilePath)
		if hashErr != nil {
			return nil, &errs.FingerprintError{FilePath: meta.FilePath, Reason: "hash failed", Cause: hashErr}
		}

		cacheKey = hash
	}

	results, err := o.fingerprintEngine.Fingerprint(ctx, meta.FilePath, cacheKey)
	if err != nil {
		var fpErr *errs.FingerprintError
		if errors.As(err, &fpErr) {
			return nil, fpErr
		}

		return nil, &errs.FingerprintError{FilePath: meta.FilePath, Reason: "lookup failed", Cause: err}
	}

	return results, nil
}

func (o *Orchestrator) runMetadataResolution(
	ctx context.Context,
	original *model.AudioFileMetadata,
	fingerprints []model.FingerprintResult,
) (*model.CanonicalMetadata, error) {
	if o.metadataCascade == nil {
		return fallbackMetadataFromTags(original), nil
	}

	recordingIDs := make([]string, 0, len(fingerprints))
	for _, fp := range fingerprints {
		recordingIDs = append(recordingIDs, fp.RecordingIDs...)
	}

	title, artist := original.Title, original.Artist
	if title == "" {
		base := filepath.Base(original.FilePath)
		title = strings.TrimSuffix(base, filepath.Ext(base))
	}

	canonical, err := o.metadataCascade.Resolve(ctx, recordingIDs, title, artist)
	if err != nil {
		return nil, err
	}

	if canonical == nil {
		return nil, nil
	}

	if len(canonical.Genres) == 0 {
		canonical.Genres = original.Genre
	}

	return canonical, nil
}

// fallbackMetadataFromTags is used when no metadata cascade was wired:
// the file's own tags
// become the "corrected" record verbatim, so tag-writing/renaming still
// runs.
func fallbackMetadataFromTags(original *model.AudioFileMetadata) *model.CanonicalMetadata {
	if original.Artist == "" || original.Title == "" {
		return nil
	}

	return &model.CanonicalMetadata{
		Title:  original.Title,
		Artist: original.Artist,
		Album:  original.Album,
		Year:   original.Year,
		Genres: original.Genre,
	}
}

func (o *Orchestrator) runAlbumArt(ctx context.Context, canonical *model.CanonicalMetadata) *model.AlbumArt {
	if o.albumArtCascade == nil {
		return nil
	}

	return o.albumArtCascade.Resolve(ctx, &albumart.Request{
		Artist:     canonical.Artist,
		Title:      canonical.Title,
		Album:      canonical.Album,
		ReleaseID:  canonical.ReleaseID,
		ArtworkURL: canonical.ArtworkURL,
	})
}

func (o *Orchestrator) runLyrics(ctx context.Context, canonical *model.CanonicalMetadata) string {
	if !o.settings.FetchLyrics || o.lyricsCascade == nil {
		return ""
	}

	return o.lyricsCascade.Resolve(ctx, canonical.Artist, canonical.Title)
}

func (o *Orchestrator) writeTags(
	ctx context.Context,
	path string,
	original *model.AudioFileMetadata,
	canonical *model.CanonicalMetadata,
	art *model.AlbumArt,
	lyricsText string,
) (*tagwriter.Result, error) {
	sizeBefore := original.FileSize

	req := &tagwriter.WriteRequest{
		FilePath:       path,
		Metadata:       correctedRecord(canonical),
		Lyrics:         lyricsText,
		Art:            art,
		OverwriteAll:   o.settings.OverwriteExistingTags,
		OutputDir:      o.settings.OutputFolder,
		NamingTemplate: o.settings.NamingTemplate,
	}

	result, err := o.tagWriter.Write(ctx, req)
	if err != nil {
		return nil, err
	}

	return result, o.checkIntegrity(path, result, sizeBefore)
}

// checkIntegrity implements §4.8's post-write check: size_after must be at
// least integrityCheckMinRatio * size_before.
func (o *Orchestrator) checkIntegrity(originalPath string, result *tagwriter.Result, sizeBefore int64) error {
	if sizeBefore <= 0 || o.settings.IntegrityCheckMinRatio <= 0 {
		return nil
	}

	finalPath := originalPath
	if result.NewPath != "" {
		finalPath = result.NewPath
	}

	info, err := os.Stat(finalPath)
	if err != nil {
		return &errs.WriteError{FilePath: finalPath, Reason: "integrity check: file missing after write", Cause: err}
	}

	minSize := float64(sizeBefore) * o.settings.IntegrityCheckMinRatio
	if float64(info.Size()) < minSize {
		return &errs.WriteError{FilePath: finalPath, Reason: "integrity check failed: file shrank unexpectedly"}
	}

	return nil
}

// correctedRecord builds the record fed to the tag writer per §4.8: artist
// folds in featured artists as "primary feat. a, b", other fields pass
// through.
func correctedRecord(canonical *model.CanonicalMetadata) *model.CanonicalMetadata {
	record := *canonical

	if len(canonical.FeaturedArtists) > 0 {
		record.Artist = canonical.Artist + " feat. " + strings.Join(canonical.FeaturedArtists, ", ")
	}

	return &record
}

func logFileSkip(ctx context.Context, path, reason string) {
	logger.Infof(ctx, "skipping %s: %s", path, reason)
}
