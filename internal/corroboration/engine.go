// Package corroboration finds same-story articles for a seed article by
// similarity scoring against a candidate pool.
package corroboration

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/geopulse/coherence/internal/model"
	"github.com/geopulse/coherence/internal/service"
	"github.com/geopulse/coherence/internal/similarity"
)

// Default lookup parameters.
const (
	DefaultThreshold = 0.65
	DefaultTopN      = 10
)

// Engine scores a seed article against candidates and keeps the best matches.
type Engine struct {
	scorer *similarity.Scorer
}

// NewEngine creates a corroboration engine over the given scorer.
func NewEngine(scorer *similarity.Scorer) *Engine {
	return &Engine{scorer: scorer}
}

// Find returns candidates whose similarity to article meets threshold,
// ordered by similarity descending (ties keep candidate input order) and
// truncated to topN. The article itself is excluded by ID even at threshold
// zero. An empty candidate pool yields an empty result. Pure: no store access.
func (e *Engine) Find(article *model.Article, candidates []model.Article, threshold float64, topN int) []model.Corroboration {
	if topN <= 0 {
		topN = DefaultTopN
	}

	results := make([]model.Corroboration, 0, len(candidates))
	now := time.Now()

	for i := range candidates {
		candidate := &candidates[i]
		if candidate.ID == article.ID {
			continue
		}

		score := e.scorer.Score(article, candidate)
		if score < threshold {
			continue
		}

		results = append(results, model.Corroboration{
			ArticleID:  candidate.ID,
			Similarity: score,
			Title:      candidate.Title,
			FeedURL:    candidate.FeedURL,
			FoundAt:    now,
		})
	}

	// Stable keeps candidate input order for equal scores.
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Similarity > results[j].Similarity
	})

	if len(results) > topN {
		results = results[:topN]
	}

	return results
}

// FindAndPersist runs Find and replaces the article's stored edge set with
// the result. The replace is delete-then-insert inside one transaction, so
// concurrent runs for the same article serialize at the store.
func (e *Engine) FindAndPersist(ctx context.Context, store service.Storage, article *model.Article, candidates []model.Article, threshold float64, topN int) ([]model.Corroboration, error) {
	found := e.Find(article, candidates, threshold, topN)

	edges := make([]model.CorroborationEdge, len(found))
	for i, c := range found {
		edges[i] = model.CorroborationEdge{
			ArticleID:        article.ID,
			SimilarArticleID: c.ArticleID,
			Similarity:       c.Similarity,
			CreatedAt:        c.FoundAt,
		}
	}

	if err := store.ReplaceCorroborations(ctx, article.ID, edges); err != nil {
		return found, fmt.Errorf("failed to persist corroborations for article %d: %w", article.ID, err)
	}

	slog.Debug("Persisted corroboration edges",
		"article_id", article.ID,
		"edges", len(edges))

	return found, nil
}
