package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/oshokin/audio-pipeline/internal/app"
	"github.com/oshokin/audio-pipeline/internal/config"
	"github.com/oshokin/audio-pipeline/internal/constants"
	"github.com/oshokin/audio-pipeline/internal/logger"
	"github.com/oshokin/audio-pipeline/internal/model"
	"github.com/oshokin/audio-pipeline/internal/version"
)

var audioExtensions = map[string]bool{
	constants.ExtensionMP3:  true,
	constants.ExtensionFLAC: true,
	constants.ExtensionM4A:  true,
	constants.ExtensionWAV:  true,
	constants.ExtensionOGG:  true,
	constants.ExtensionWMA:  true,
}

var (
	// configFilenameFromFlag stores the config filename provided via command-line flag.
	//
	//nolint:gochecknoglobals // It is required for configuration initialization before the application starts.
	configFilenameFromFlag string

	// appConfig stores the application configuration loaded from file and flags.
	//
	//nolint:gochecknoglobals,lll // It is initialized once during the application's startup and shared across the command execution logic.
	appConfig *config.Config

	// rootCmd is the main Cobra command for the application.
	//
	//nolint:gochecknoglobals,lll // Cobra command requires a global definition for proper command-line parsing and execution.
	rootCmd = &cobra.Command{
		Use:   "audio-pipeline [flags] {paths}",
		Short: "Fingerprint, tag, and rename a batch of local audio files.",
		Long: `audio-pipeline identifies each given audio file via acoustic fingerprinting,
resolves canonical metadata, album art, and (optionally) lyrics from a cascade of
external catalogues, rewrites the file's tags, and renames it from a template.

Arguments may be individual audio files or directories, which are scanned
recursively for files with a supported extension.`,
		Args:             cobra.MinimumNArgs(1),
		PersistentPreRun: initConfig,
		RunE: func(cmd *cobra.Command, paths []string) error {
			return runProcess(cmd.Context(), paths)
		},
	}
)

// Execute executes the root command.
func Execute() {
	signals := []os.Signal{syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM}
	ctx, stop := signal.NotifyContext(context.Background(), signals...)

	defer func() {
		_ = logger.Logger().Sync() //nolint:errcheck // No need to check the error here, application will exit anyway.
	}()

	defer stop()

	go func() {
		defer stop()

		err := rootCmd.ExecuteContext(ctx)
		cobra.CheckErr(err)
	}()

	<-ctx.Done()
}

//nolint:gochecknoinits // Cobra requires the init function to set up flags before the command is executed.
func init() {
	version.AttachCobraVersionCommand(rootCmd)
	attachCacheCommand(rootCmd)

	rootCmd.PersistentFlags().StringVarP(
		&configFilenameFromFlag,
		"config",
		"c",
		"",
		fmt.Sprintf("path to the configuration file (default is '%s')",
			config.DefaultConfigFilename))

	rootCmdFlags := rootCmd.Flags()

	rootCmdFlags.IntP(
		"concurrency",
		"j",
		0,
		"number of files to process in parallel (1-10).")

	rootCmdFlags.StringP(
		"output",
		"o",
		"",
		"directory to write processed files to (defaults to each file's own directory).")

	rootCmdFlags.StringP(
		"naming-template",
		"n",
		"",
		"rename template, e.g. '{artist} - {title}'.")

	rootCmdFlags.BoolP(
		"lyrics",
		"l",
		false,
		"fetch and embed lyrics.")

	rootCmdFlags.Bool(
		"overwrite-existing-tags",
		false,
		"overwrite tag fields that already have a value.")
}

func initConfig(cmd *cobra.Command, _ []string) {
	var err error

	appConfig, err = config.LoadConfig(configFilenameFromFlag)
	if err != nil {
		logger.Fatalf(cmd.Context(), "Failed to load configuration: %v", err)
	}

	// Bind flags to config before validation.
	if err = bindFlagsToConfig(cmd.Flags(), appConfig); err != nil {
		logger.Fatalf(cmd.Context(), "Failed to parse flags: %v", err)
	}

	logger.SetLevel(appConfig.ParsedLogLevel)
}

func bindFlagsToConfig(flags *pflag.FlagSet, cfg *config.Config) error {
	var err error

	if flag := flags.Lookup("concurrency"); flag != nil && flag.Changed {
		cfg.Concurrency, err = flags.GetInt("concurrency")
		if err != nil {
			return fmt.Errorf("failed to get concurrency value: %w", err)
		}
	}

	if flag := flags.Lookup("output"); flag != nil && flag.Changed {
		cfg.OutputFolder, err = flags.GetString("output")
		if err != nil {
			return fmt.Errorf("failed to get output value: %w", err)
		}
	}

	if flag := flags.Lookup("naming-template"); flag != nil && flag.Changed {
		cfg.NamingTemplate, err = flags.GetString("naming-template")
		if err != nil {
			return fmt.Errorf("failed to get naming-template value: %w", err)
		}
	}

	if flag := flags.Lookup("lyrics"); flag != nil && flag.Changed {
		cfg.FetchLyrics, err = flags.GetBool("lyrics")
		if err != nil {
			return fmt.Errorf("failed to get lyrics value: %w", err)
		}
	}

	if flag := flags.Lookup("overwrite-existing-tags"); flag != nil && flag.Changed {
		cfg.OverwriteExistingTags, err = flags.GetBool("overwrite-existing-tags")
		if err != nil {
			return fmt.Errorf("failed to get overwrite-existing-tags value: %w", err)
		}
	}

	return config.ValidateConfig(cfg)
}

// runProcess expands paths into audio files, runs the batch through an
// app.App, and renders progress/per-file/summary output to the terminal —
// the one and only consumer of the orchestrator's callback surface.
func runProcess(ctx context.Context, paths []string) error {
	files, err := expandAudioPaths(paths)
	if err != nil {
		return err
	}

	if len(files) == 0 {
		fmt.Println("No audio files found.")
		return nil
	}

	bar := progressbar.Default(int64(len(files)), "Processing")

	onProgress := func(snapshot model.ProgressSnapshot) {
		bar.Set(snapshot.ProcessedFiles) //nolint:errcheck // Best-effort terminal rendering.
	}

	onFileComplete := func(result model.ProcessingResult) {
		printFileResult(result)
	}

	a, err := app.New(appConfig, onProgress, onFileComplete)
	if err != nil {
		return fmt.Errorf("initialize application: %w", err)
	}
	defer func() {
		if closeErr := a.Close(); closeErr != nil {
			logger.Warnf(ctx, "Failed to close cache: %v", closeErr)
		}
	}()

	go func() {
		<-ctx.Done()
		a.Cancel()
	}()

	results := a.Process(ctx, files)

	bar.Finish() //nolint:errcheck // Best-effort terminal rendering.
	printSummary(results)

	return nil
}

func printFileResult(result model.ProcessingResult) {
	name := filepath.Base(result.OriginalPath)

	switch result.Status {
	case model.StatusCompleted:
		if result.NewPath != "" {
			fmt.Printf("completed: %s -> %s\n", name, filepath.Base(result.NewPath))
		} else {
			fmt.Printf("completed: %s\n", name)
		}
	case model.StatusSkipped:
		fmt.Printf("skipped: %s (%s)\n", name, result.Error)
	case model.StatusError:
		fmt.Printf("error: %s at %s: %s\n", name, result.FailedStep, result.Error)
	}
}

func printSummary(results []model.ProcessingResult) {
	var completed, skipped, failed int

	for _, result := range results {
		switch result.Status {
		case model.StatusCompleted:
			completed++
		case model.StatusSkipped:
			skipped++
		case model.StatusError:
			failed++
		}
	}

	fmt.Printf("\n%s processed: %d completed, %d skipped, %d failed.\n",
		humanize.Comma(int64(len(results))), completed, skipped, failed)
}

// expandAudioPaths resolves the CLI arguments into a flat list of audio
// file paths, walking directories recursively and filtering by extension.
func expandAudioPaths(paths []string) ([]string, error) {
	var files []string

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("stat %q: %w", path, err)
		}

		if !info.IsDir() {
			files = append(files, path)
			continue
		}

		walkErr := filepath.Walk(path, func(p string, fi os.FileInfo, err error) error {
			if err != nil {
				return err
			}

			if fi.IsDir() {
				return nil
			}

			if audioExtensions[strings.ToLower(filepath.Ext(p))] {
				files = append(files, p)
			}

			return nil
		})
		if walkErr != nil {
			return nil, fmt.Errorf("walk %q: %w", path, walkErr)
		}
	}

	return files, nil
}
