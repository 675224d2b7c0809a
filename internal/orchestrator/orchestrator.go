// Package orchestrator implements the Batch Processor: it owns the worker
// pool, the shared limiters/caches
// handed to it by internal/app, per-file progress, cancellation, and
// delegates each file to the per-file pipeline in pipeline.go.
package orchestrator

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/oshokin/audio-pipeline/internal/albumart"
	"github.com/oshokin/audio-pipeline/internal/fingerprint"
	"github.com/oshokin/audio-pipeline/internal/lyrics"
	"github.com/oshokin/audio-pipeline/internal/metadata"
	"github.com/oshokin/audio-pipeline/internal/model"
	"github.com/oshokin/audio-pipeline/internal/tagwriter"
)

const (
	minConcurrency = 1
	maxConcurrency = 10
)

// OnProgress is invoked from a worker goroutine every time batch-wide
// counters change. Implementations must not block.
type OnProgress func(model.ProgressSnapshot)

// OnFileComplete is invoked from a worker goroutine once per finished file.
type OnFileComplete func(model.ProcessingResult)

// Orchestrator runs the per-file pipeline over a batch of paths with a
// bounded worker pool: a fixed number of workers, each pulling the next
// path index from a shared atomic counter and running the sequential,
// single-item pipeline on it.
type Orchestrator struct {
	settings           model.AppSettings
	usePersistentCache bool

	fingerprintEngine *fingerprint.Engine
	metadataCascade   *metadata.Cascade
	albumArtCascade   *albumart.Cascade
	lyricsCascade     *lyrics.Cascade
	tagWriter         tagwriter.Writer

	onProgress     OnProgress
	onFileComplete OnFileComplete

	mu           sync.Mutex
	currentFiles map[int]string
	processed    int
	succeeded    int
	failed       int
	skipped      int
	cancelled    atomic.Bool
	startedAt    time.Time
}

// Dependencies groups the collaborators the orchestrator drives. All fields
// except AlbumArtCascade/LyricsCascade/FingerprintEngine/MetadataCascade are
// required; those four may be nil to disable the corresponding step
// (fingerprinting disabled entirely skips straight to filename-derived
// metadata, lyrics disabled per settings.FetchLyrics).
type Dependencies struct {
	FingerprintEngine *fingerprint.Engine
	MetadataCascade   *metadata.Cascade
	AlbumArtCascade   *albumart.Cascade
	LyricsCascade     *lyrics.Cascade
	TagWriter         tagwriter.Writer

	// UsePersistentCache selects the fingerprint cache key: a content hash
	// when the cache survives across runs (sqlite), the bare file path when
	// it doesn't (in-memory, where path-stability within the run is enough).
	UsePersistentCache bool
}

// New builds an Orchestrator. Concurrency is clamped to [1, 10].
func New(
	settings model.AppSettings,
	deps Dependencies,
	onProgress OnProgress,
	onFileComplete OnFileComplete,
) *Orchestrator {
	settings.Concurrency = clampConcurrency(settings.Concurrency)

	return &Orchestrator{
		settings:           settings,
		usePersistentCache: deps.UsePersistentCache,
		fingerprintEngine:  deps.FingerprintEngine,
		metadataCascade:    deps.MetadataCascade,
		albumArtCascade:    deps.AlbumArtCascade,
		lyricsCascade:      deps.LyricsCascade,
		tagWriter:          deps.TagWriter,
		onProgress:         onProgress,
		onFileComplete:     onFileComplete,
		currentFiles:      make(map[int]string),
	}
}

func clampConcurrency(n int) int {
	if n < minConcurrency {
		return minConcurrency
	}

	if n > maxConcurrency {
		return maxConcurrency
	}

	return n
}

// Cancel requests cooperative cancellation: in-flight files run to
// completion, but no new file is dispatched.
func (o *Orchestrator) Cancel() {
	o.cancelled.Store(true)
}

// Process runs the batch over paths and returns one ProcessingResult per
// input path, in input order, regardless of completion order.
func (o *Orchestrator) Process(ctx context.Context, paths []string) []model.ProcessingResult {
	o.startedAt = time.Now()

	results := make([]model.ProcessingResult, len(paths))

	var nextIndex atomic.Int64

	o.emitProgress(len(paths))

	workerCount := o.settings.Concurrency
	if workerCount > len(paths) {
		workerCount = len(paths)
	}

	var waitGroup sync.WaitGroup

	for range workerCount {
		waitGroup.Add(1)

		go func() {
			defer waitGroup.Done()
			o.runWorker(ctx, paths, results, &nextIndex)
		}()
	}

	waitGroup.Wait()

	o.fillCancelledGaps(paths, results)
	o.emitProgress(len(paths))

	return results
}

func (o *Orchestrator) runWorker(
	ctx context.Context,
	paths []string,
	results []model.ProcessingResult,
	nextIndex *atomic.Int64,
) {
	for {
		if o.cancelled.Load() || ctx.Err() != nil {
			return
		}

		index := int(nextIndex.Add(1)) - 1
		if index >= len(paths) {
			return
		}

		path := paths[index]

		o.markInFlight(index, path)

		result := o.processFile(ctx, path)
		results[index] = result

		o.clearInFlight(index)
		o.recordOutcome(result.Status)
		o.fireFileComplete(result)
		o.emitProgress(len(paths))
	}
}

func (o *Orchestrator) markInFlight(index int, path string) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.currentFiles[index] = path
}

func (o *Orchestrator) clearInFlight(index int) {
	o.mu.Lock()
	defer o.mu.Unlock()

	delete(o.currentFiles, index)
}

func (o *Orchestrator) recordOutcome(status model.ProcessingStatus) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.processed++

	switch status {
	case model.StatusCompleted:
		o.succeeded++
	case model.StatusSkipped:
		o.skipped++
	case model.StatusError:
		o.failed++
	}
}

func (o *Orchestrator) fireFileComplete(result model.ProcessingResult) {
	if o.onFileComplete != nil {
		o.onFileComplete(result)
	}
}

func (o *Orchestrator) fillCancelledGaps(paths []string, results []model.ProcessingResult) {
	for i, path := range paths {
		if results[i].OriginalPath != "" {
			continue
		}

		results[i] = model.ProcessingResult{
			OriginalPath: path,
			Status:       model.StatusSkipped,
			Error:        "Processing cancelled",
		}
	}
}

func (o *Orchestrator) emitProgress(total int) {
	if o.onProgress == nil {
		return
	}

	o.onProgress(o.snapshot(total))
}

func (o *Orchestrator) snapshot(total int) model.ProgressSnapshot {
	o.mu.Lock()
	defer o.mu.Unlock()

	snap := model.ProgressSnapshot{
		TotalFiles:     total,
		ProcessedFiles: o.processed,
		SuccessCount:   o.succeeded,
		ErrorCount:     o.failed,
		SkippedCount:   o.skipped,
		CurrentFile:    o.firstCurrentFileLocked(),
	}

	if eta, ok := o.estimateRemaining(total); ok {
		snap.EstimatedTimeRemainingSeconds = &eta
	}

	return snap
}

func (o *Orchestrator) firstCurrentFileLocked() string {
	for _, path := range o.currentFiles {
		return path
	}

	return ""
}

// estimateRemaining implements §4.7's ETA formula: elapsed / processed *
// remaining, rounded to whole seconds. Returns false while processed == 0.
func (o *Orchestrator) estimateRemaining(total int) (int64, bool) {
	if o.processed == 0 {
		return 0, false
	}

	elapsed := time.Since(o.startedAt)
	remaining := total - o.processed

	perFile := elapsed / time.Duration(o.processed)
	eta := perFile * time.Duration(remaining)

	return int64(eta.Round(time.Second).Seconds()), true
}
