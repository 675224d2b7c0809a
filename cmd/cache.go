package cmd

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/oshokin/audio-pipeline/internal/app"
	"github.com/oshokin/audio-pipeline/internal/logger"
)

// attachCacheCommand adds "cache stats" and "cache clear" to root, mirroring
// the §6a IPC surface's getCacheStats()/clearCache() pair.
func attachCacheCommand(root *cobra.Command) {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or clear the fingerprint/metadata/lyrics cache.",
	}

	cacheCmd.AddCommand(&cobra.Command{
		Use:   "stats",
		Short: "Print cache entry counts and size.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCacheStats(cmd)
		},
	})

	cacheCmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Remove every cached entry.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCacheClear(cmd)
		},
	})

	root.AddCommand(cacheCmd)
}

func runCacheStats(cmd *cobra.Command) error {
	a, err := app.New(appConfig, nil, nil)
	if err != nil {
		return fmt.Errorf("initialize application: %w", err)
	}
	defer func() {
		if closeErr := a.Close(); closeErr != nil {
			logger.Warnf(cmd.Context(), "Failed to close cache: %v", closeErr)
		}
	}()

	stats, err := a.CacheStats(cmd.Context())
	if err != nil {
		return fmt.Errorf("read cache stats: %w", err)
	}

	backend := "in-memory"
	if stats.IsPersistent {
		backend = "persistent (sqlite)"
	}

	fmt.Printf("backend: %s\n", backend)
	fmt.Printf("fingerprints: %d\n", stats.Fingerprints)
	fmt.Printf("metadata: %d\n", stats.Metadata)
	fmt.Printf("lyrics: %d\n", stats.Lyrics)
	fmt.Printf("total entries: %d\n", stats.TotalEntries)

	if stats.SizeBytes > 0 {
		fmt.Printf("size on disk: %s\n", humanize.Bytes(uint64(stats.SizeBytes))) //nolint:gosec // SizeBytes is never negative.
	}

	return nil
}

func runCacheClear(cmd *cobra.Command) error {
	a, err := app.New(appConfig, nil, nil)
	if err != nil {
		return fmt.Errorf("initialize application: %w", err)
	}
	defer func() {
		if closeErr := a.Close(); closeErr != nil {
			logger.Warnf(cmd.Context(), "Failed to close cache: %v", closeErr)
		}
	}()

	if err := a.ClearCache(cmd.Context()); err != nil {
		return fmt.Errorf("clear cache: %w", err)
	}

	fmt.Println("Cache cleared.")

	return nil
}
