package main

import (
	"fmt"
	"log/slog"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/geopulse/coherence/internal/cli"
)

func corroborateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "corroborate <article-id>",
		Short: "Find corroborating articles for one stored article",
		Long: `Run a standalone corroboration lookup: score the article against the
recent article pool and print the matches. Pure lookup; stored corroboration
edges are not touched.

Examples:
  coherence corroborate 42
  coherence corroborate 42 --threshold 0.5 --top 20`,
		Args: cobra.ExactArgs(1),
		RunE: runCorroborate,
	}

	cmd.Flags().Float64P("threshold", "t", 0.65, "Minimum similarity to report")
	cmd.Flags().IntP("top", "n", 10, "Maximum matches to report")
	cmd.Flags().IntP("days", "d", 14, "Recency window in days for the candidate pool")

	_ = viper.BindPFlag("corroborate.threshold", cmd.Flags().Lookup("threshold"))
	_ = viper.BindPFlag("corroborate.top", cmd.Flags().Lookup("top"))
	_ = viper.BindPFlag("corroborate.days", cmd.Flags().Lookup("days"))

	return cmd
}

func runCorroborate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid article id %q: %w", args[0], err)
	}

	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			slog.Error("Failed to close database", "error", closeErr)
		}
	}()

	article, err := store.GetArticle(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to load article %d: %w", id, err)
	}

	since := sinceWindow(viper.GetInt("corroborate.days"))
	candidates, err := store.GetRecentArticles(ctx, since, 0)
	if err != nil {
		return fmt.Errorf("failed to load candidate pool: %w", err)
	}

	pipeline := initEngine(store, nil)
	matches := pipeline.FindCorroborations(article, candidates,
		viper.GetFloat64("corroborate.threshold"), viper.GetInt("corroborate.top"))

	if len(matches) == 0 {
		fmt.Println(cli.SubtleStyle.Render("No corroborating articles found."))
		return nil
	}

	fmt.Println(cli.TitleStyle.Render(fmt.Sprintf("Corroborations for article %d", id)))
	for _, m := range matches {
		fmt.Printf("  %6d  %.4f  %s\n", m.ArticleID, m.Similarity, m.Title)
	}

	return nil
}
