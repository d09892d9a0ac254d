package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/geopulse/coherence/internal/cli"
)

func statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show the stored sentiment distribution",
		RunE:  runStats,
	}
}

func runStats(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			slog.Error("Failed to close database", "error", closeErr)
		}
	}()

	dist, err := store.GetSentimentDistribution(ctx)
	if err != nil {
		return fmt.Errorf("failed to load sentiment distribution: %w", err)
	}

	fmt.Print(cli.RenderDistribution(dist))
	return nil
}
