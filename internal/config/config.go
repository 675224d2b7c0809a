// Package config loads, validates, and persists the application's
// AppSettings, following a load-then-validate-then-derive three-way split.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"

	"github.com/oshokin/audio-pipeline/internal/constants"
	"github.com/oshokin/audio-pipeline/internal/logger"
	"github.com/oshokin/audio-pipeline/internal/model"
)

// Config is the process-level configuration: AppSettings plus the
// filesystem locations the GUI collaborator never sees.
type Config struct {
	model.AppSettings

	ConfigPath  string
	LogDir      string
	CacheDBPath string

	// ParsedLogLevel is derived from AppSettings.LogLevel at validation time.
	ParsedLogLevel zapcore.Level
}

const (
	// DefaultConfigFilename is the settings file name, joined to the
	// platform config dir.
	DefaultConfigFilename = "settings.json"

	// EnvPrefix is the environment-variable prefix viper overlays onto the
	// settings file, e.g. AUDIO_PIPELINE_CONCURRENCY.
	EnvPrefix = "AUDIO_PIPELINE"

	// DefaultMaxLogLength caps how much of a dumped HTTP request/response
	// body the debug transport logger prints.
	DefaultMaxLogLength = 1 * 1024 * 1024

	minConcurrency = 1
	maxConcurrency = 10

	defaultConcurrency            = 5
	defaultNamingTemplate         = "{artist} - {title}"
	defaultLogLevel               = "info"
	defaultHTTPTimeoutSeconds     = 15
	defaultFpcalcTimeoutSeconds   = 30
	defaultFpcalcPath             = "fpcalc"
	defaultMinFingerprintScore    = 0.5
	defaultRetryAttempts          = 3
	defaultIntegrityCheckMinRatio = 0.5
)

// Static error definitions for better error handling.
var (
	ErrMissingAcoustIDKey      = errors.New("acoustIdApiKey cannot be empty")
	ErrInvalidNamingTemplate   = errors.New("namingTemplate must contain {artist} or {title}")
	ErrUnknownLogLevel         = errors.New("unknown log level")
	ErrSpotifyCredsIncomplete  = errors.New("useSpotify requires both spotifyClientId and spotifyClientSecret")
	ErrGeniusTokenMissing      = errors.New("useGenius requires geniusAccessToken")
	ErrInvalidMinScore         = errors.New("minFingerprintScore must be in [0,1]")
	ErrInvalidRetryAttempts    = errors.New("retryAttempts must be positive")
	ErrInvalidIntegrityRatio   = errors.New("integrityCheckMinRatio must be in (0,1]")
)

// Default returns a Config populated with every default value, before any
// file/env/flag overlay is applied.
func Default() *Config {
	return &Config{
		AppSettings: model.AppSettings{
			Concurrency:            defaultConcurrency,
			FetchLyrics:            false,
			OverwriteExistingTags:  false,
			OutputFolder:           "",
			NamingTemplate:         defaultNamingTemplate,
			UsePersistentCache:     true,
			LogLevel:               defaultLogLevel,
			HTTPTimeoutSeconds:     defaultHTTPTimeoutSeconds,
			FpcalcTimeoutSeconds:   defaultFpcalcTimeoutSeconds,
			FpcalcPath:             defaultFpcalcPath,
			MinFingerprintScore:    defaultMinFingerprintScore,
			RetryAttempts:          defaultRetryAttempts,
			IntegrityCheckMinRatio: defaultIntegrityCheckMinRatio,
		},
	}
}

// LoadConfig loads settings.json (from the platform-default path if
// configFilename is empty), overlaid by AUDIO_PIPELINE_* environment
// variables, and validates the result.
func LoadConfig(configFilename string) (*Config, error) {
	cfg := Default()

	if configFilename == "" {
		configDir, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("resolve config dir: %w", err)
		}

		configFilename = filepath.Join(configDir, constants.AppDirName, DefaultConfigFilename)
	}

	cfg.ConfigPath = configFilename

	v := viper.New()
	v.SetConfigFile(configFilename)
	v.SetConfigType("json")
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if !errors.As(err, new(viper.ConfigFileNotFoundError)) && !os.IsNotExist(err) {
			return nil, fmt.Errorf("read settings file: %w", err)
		}
		// Missing settings file: fall through with the defaults.
	} else if err := v.Unmarshal(&cfg.AppSettings); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	dataDir, err := os.UserCacheDir()
	if err != nil {
		return nil, fmt.Errorf("resolve data dir: %w", err)
	}

	cfg.LogDir = filepath.Join(dataDir, constants.AppDirName, "logs")
	cfg.CacheDBPath = filepath.Join(dataDir, constants.AppDirName, "cache.db")

	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ValidateConfig checks the settings for validity, clamps out-of-range
// values instead of failing where clamping is the right boundary behaviour
// (concurrency), replaces an empty naming template or fpcalc path and a
// non-positive retry count or timeout with its default, and derives
// ParsedLogLevel. Every other bad field fails fast with the first error.
func ValidateConfig(cfg *Config) error {
	cfg.Concurrency = clampConcurrency(cfg.Concurrency)

	parsedLevel, ok := logger.ParseLogLevel(cfg.LogLevel)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownLogLevel, cfg.LogLevel)
	}

	cfg.ParsedLogLevel = parsedLevel

	if cfg.NamingTemplate == "" {
		cfg.NamingTemplate = defaultNamingTemplate
	} else if !containsPlaceholder(cfg.NamingTemplate) {
		return ErrInvalidNamingTemplate
	}

	if cfg.AcoustIDAPIKey == "" {
		return ErrMissingAcoustIDKey
	}

	if cfg.UseSpotify && (cfg.SpotifyClientID == "" || cfg.SpotifyClientSecret == "") {
		return ErrSpotifyCredsIncomplete
	}

	if cfg.UseGenius && cfg.GeniusAccessToken == "" {
		return ErrGeniusTokenMissing
	}

	if cfg.MinFingerprintScore < 0 || cfg.MinFingerprintScore > 1 {
		return ErrInvalidMinScore
	}

	if cfg.RetryAttempts <= 0 {
		cfg.RetryAttempts = defaultRetryAttempts
	}

	if cfg.IntegrityCheckMinRatio <= 0 || cfg.IntegrityCheckMinRatio > 1 {
		return ErrInvalidIntegrityRatio
	}

	if cfg.HTTPTimeoutSeconds <= 0 {
		cfg.HTTPTimeoutSeconds = defaultHTTPTimeoutSeconds
	}

	if cfg.FpcalcTimeoutSeconds <= 0 {
		cfg.FpcalcTimeoutSeconds = defaultFpcalcTimeoutSeconds
	}

	if cfg.FpcalcPath == "" {
		cfg.FpcalcPath = defaultFpcalcPath
	}

	return nil
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

func containsPlaceholder(template string) bool {
	return strings.Contains(template, "{artist}") || strings.Contains(template, "{title}")
}

// SaveConfig writes cfg back to its ConfigPath as JSON, creating parent
// directories as needed. settings.json has no preserve-unknown-fields
// requirement, so this is a plain marshal-and-write.
func SaveConfig(cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(cfg.ConfigPath), constants.DefaultFolderPermissions); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg.AppSettings, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	if err := os.WriteFile(cfg.ConfigPath, data, constants.DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings file: %w", err)
	}

	return nil
}
