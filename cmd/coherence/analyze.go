package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/geopulse/coherence/internal/cli"
	"github.com/geopulse/coherence/internal/common"
	"github.com/geopulse/coherence/internal/service"
)

func analyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Run the sentiment-coherence pipeline over stored articles",
		Long: `Run the full batch pipeline: initial sentiment classification,
similarity clustering with harmonization, bayesian refinement, persistence.

Examples:
  coherence analyze                 # Analyze articles from the last 7 days
  coherence analyze --days 30       # Widen the window to 30 days
  coherence analyze --limit 200     # Cap the batch size
  coherence analyze --timeout 10m   # Stop launching new work after 10 minutes`,
		RunE: runAnalyze,
	}

	cmd.Flags().IntP("days", "d", 7, "Recency window in days for batch selection")
	cmd.Flags().IntP("limit", "l", 0, "Maximum articles per batch (0 = no cap)")
	cmd.Flags().Duration("timeout", 0, "Deadline for the run (0 = none); partial completion is reported, not failed")

	_ = viper.BindPFlag("pipeline.days", cmd.Flags().Lookup("days"))
	_ = viper.BindPFlag("pipeline.limit", cmd.Flags().Lookup("limit"))
	_ = viper.BindPFlag("pipeline.timeout", cmd.Flags().Lookup("timeout"))

	return cmd
}

func runAnalyze(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	if timeout := viper.GetDuration("pipeline.timeout"); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
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

	classifier, err := initClassifier()
	if err != nil {
		return fmt.Errorf("failed to create classifier: %w", err)
	}

	since := sinceWindow(viper.GetInt("pipeline.days"))
	articles, err := store.GetRecentArticles(ctx, since, viper.GetInt("pipeline.limit"))
	if err != nil {
		return fmt.Errorf("failed to load articles: %w", err)
	}

	if len(articles) == 0 {
		return common.NewUserError(
			fmt.Sprintf("no articles found since %s; run 'coherence ingest' first or widen --days", since.Format("2006-01-02")),
			common.ErrNoArticles)
	}

	slog.Info("Loaded article batch", "count", len(articles), "since", since.Format("2006-01-02"))

	bar := progressbar.NewOptions(len(articles),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("Analyzing articles..."),
		progressbar.OptionOnCompletion(func() {
			_, _ = fmt.Fprintln(os.Stderr)
		}),
	)

	pipeline := initEngine(store, progressClassifier{inner: classifier, bar: bar})
	report := pipeline.AnalyzeBatchWithCoherence(ctx, articles)
	_ = bar.Finish()

	fmt.Print(cli.RenderReport(report))
	return nil
}

// progressClassifier ticks the progress bar as phase-1 classifications land.
type progressClassifier struct {
	inner service.Classifier
	bar   *progressbar.ProgressBar
}

func (p progressClassifier) Analyze(ctx context.Context, title, content string) (*service.ClassifierResult, error) {
	result, err := p.inner.Analyze(ctx, title, content)
	_ = p.bar.Add(1)
	return result, err
}
