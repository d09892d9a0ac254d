package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/geopulse/coherence/internal/model"
)

func ingestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingest <file.json>",
		Short: "Load articles from a JSON file into the store",
		Long: `Load a JSON array of articles into the database. Existing article ids
are left untouched. The upstream feed connectors live outside this tool; this
is the hand-off point for their output.

Expected shape:
  [{"id": 1, "title": "...", "content": "...", "pub_date": "2026-08-30T12:00:00Z",
    "feed_url": "https://...", "themes": [{"id": "energy", "confidence": 0.8}]}]`,
		Args: cobra.ExactArgs(1),
		RunE: runIngest,
	}

	return cmd
}

// ingestArticle is the JSON wire shape accepted by the ingest command.
type ingestArticle struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	PubDate string `json:"pub_date"`
	FeedURL string `json:"feed_url"`
	Themes  []struct {
		ID         string  `json:"id"`
		Confidence float64 `json:"confidence"`
	} `json:"themes"`
	ID int64 `json:"id"`
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", args[0], err)
	}

	var raw []ingestArticle
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("failed to parse %s: %w", args[0], err)
	}

	articles := make([]model.Article, 0, len(raw))
	for _, r := range raw {
		article := model.Article{
			ID:      r.ID,
			Title:   r.Title,
			Content: r.Content,
			FeedURL: r.FeedURL,
		}
		if r.PubDate != "" {
			pubDate, parseErr := time.Parse(time.RFC3339, r.PubDate)
			if parseErr != nil {
				slog.Warn("Unparseable pub_date, ingesting without it",
					"article_id", r.ID,
					"pub_date", r.PubDate)
			} else {
				article.PubDate = pubDate
			}
		}
		for _, th := range r.Themes {
			article.Themes = append(article.Themes, model.Theme{ID: th.ID, Confidence: th.Confidence})
		}
		article.Sentiment.SetScore(0)
		articles = append(articles, article)
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

	if err := store.SaveArticles(ctx, articles); err != nil {
		return fmt.Errorf("failed to save articles: %w", err)
	}

	slog.Info("Ingest complete", "articles", len(articles))
	return nil
}
