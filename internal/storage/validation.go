package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/geopulse/coherence/internal/model"
)

// validateContext ensures the context is usable before touching the database.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return fmt.Errorf("context cannot be nil")
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}
	return nil
}

// validateString ensures a required string parameter is non-empty.
func validateString(value, name string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s cannot be empty", name)
	}
	return nil
}

// validateID ensures an article id is positive.
func validateID(id int64, name string) error {
	if id <= 0 {
		return fmt.Errorf("%s must be positive, got %d", name, id)
	}
	return nil
}

// validateArticles checks a batch of articles before insertion.
func validateArticles(articles []model.Article) error {
	if articles == nil {
		return fmt.Errorf("articles cannot be nil")
	}
	for i, a := range articles {
		if a.ID <= 0 {
			return fmt.Errorf("article %d: id must be positive, got %d", i, a.ID)
		}
		if strings.TrimSpace(a.Title) == "" {
			return fmt.Errorf("article %d: title cannot be empty", i)
		}
	}
	return nil
}

// validateEdges checks corroboration edges before insertion.
func validateEdges(articleID int64, edges []model.CorroborationEdge) error {
	for i, e := range edges {
		if e.ArticleID != articleID {
			return fmt.Errorf("edge %d: article id %d does not match %d", i, e.ArticleID, articleID)
		}
		if e.SimilarArticleID == articleID {
			return fmt.Errorf("edge %d: self-referential corroboration", i)
		}
		if e.Similarity < 0 || e.Similarity > 1 {
			return fmt.Errorf("edge %d: similarity %f out of range", i, e.Similarity)
		}
	}
	return nil
}
