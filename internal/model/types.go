package model

import "time"

// AudioFormat enumerates the audio container/codec families the reader can
// identify and the tag writer may or may not be able to rewrite.
type AudioFormat string

const (
	FormatMP3  AudioFormat = "mp3"
	FormatFLAC AudioFormat = "flac"
	FormatM4A  AudioFormat = "m4a"
	FormatWAV  AudioFormat = "wav"
	FormatOGG  AudioFormat = "ogg"
	FormatWMA  AudioFormat = "wma"
)

// AudioFileMetadata is what was read from the file on disk, before any
// network calls. Immutable once produced.
type AudioFileMetadata struct {
	FilePath     string
	Format       AudioFormat
	FileSize     int64
	Duration     time.Duration
	Title        string
	Artist       string
	Album        string
	Year         int
	Genre        []string
	TrackNumber  int
	DiscNumber   int
	AlbumArtist  string
	Lyrics       string
}

// FingerprintResult is a single AcoustID match candidate.
type FingerprintResult struct {
	RecordingIDs []string
	Score        float64
}

// CanonicalMetadata is the post-resolution, source-agnostic metadata record
// consumed by the tag writer.
type CanonicalMetadata struct {
	RecordingID      string
	ReleaseID        string
	Title            string
	Artist           string
	FeaturedArtists  []string
	Album            string
	Year             int
	Genres           []string

	// ArtworkURL, when set by the metadata cascade (iTunes/Spotify), feeds
	// the album-art cascade's "generic URL" fallback step.
	ArtworkURL string
}

// AlbumArt is a downloaded cover image.
type AlbumArt struct {
	Bytes    []byte
	MimeType string
}

// ProcessingStatus is the terminal outcome of one file's pipeline run.
type ProcessingStatus string

const (
	StatusCompleted ProcessingStatus = "completed"
	StatusSkipped   ProcessingStatus = "skipped"
	StatusError     ProcessingStatus = "error"
)

// PipelineStep names a step of the per-file state machine (§4.8).
type PipelineStep string

const (
	StepReading           PipelineStep = "reading"
	StepFingerprinting    PipelineStep = "fingerprinting"
	StepFetchingMetadata  PipelineStep = "fetching_metadata"
	StepFetchingAlbumArt  PipelineStep = "fetching_album_art"
	StepFetchingLyrics    PipelineStep = "fetching_lyrics"
	StepWritingTags       PipelineStep = "writing_tags"
)

// ProcessingResult is the outcome of one file's pipeline run.
type ProcessingResult struct {
	OriginalPath       string
	NewPath            string
	Status             ProcessingStatus
	Error              string
	FailedStep         PipelineStep
	OriginalMetadata   *AudioFileMetadata
	CorrectedMetadata  *CanonicalMetadata
}

// ProgressSnapshot is emitted to the GUI/CLI collaborator as the batch runs.
type ProgressSnapshot struct {
	TotalFiles                  int
	ProcessedFiles              int
	SuccessCount                int
	ErrorCount                  int
	SkippedCount                int
	CurrentFile                 string
	EstimatedTimeRemainingSeconds *int64
}

// AppSettings is the set of options the orchestrator honors.
type AppSettings struct {
	Concurrency            int
	FetchLyrics            bool
	OverwriteExistingTags  bool
	OutputFolder           string
	NamingTemplate         string
	UsePersistentCache     bool
	AcoustIDAPIKey         string
	UseSpotify             bool
	SpotifyClientID        string
	SpotifyClientSecret    string
	UseGenius              bool
	GeniusAccessToken      string

	LogLevel               string
	HTTPTimeoutSeconds     int
	FpcalcTimeoutSeconds   int
	FpcalcPath             string
	MinFingerprintScore    float64
	RetryAttempts          int
	IntegrityCheckMinRatio float64
}
