// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/geopulse/coherence/internal/model"
)

// ArticleFilter defines filtering options for article queries.
type ArticleFilter struct {
	Since *time.Time
	Until *time.Time
	Limit int
}

// Storage defines the contract for our persistence layer.
type Storage interface {
	// Article operations
	SaveArticles(ctx context.Context, articles []model.Article) error
	GetArticle(ctx context.Context, id int64) (*model.Article, error)
	GetArticles(ctx context.Context, filter ArticleFilter) ([]model.Article, error)
	GetArticlesByID(ctx context.Context, ids []int64) ([]model.Article, error)
	GetRecentArticles(ctx context.Context, since time.Time, limit int) ([]model.Article, error)

	// Sentiment operations
	UpdateSentiment(ctx context.Context, articleID int64, sentiment model.Sentiment) error
	GetSentimentDistribution(ctx context.Context) (*model.SentimentDistribution, error)

	// Corroboration edge operations. ReplaceCorroborations is
	// delete-then-insert for one article's full edge set and must be atomic:
	// a reader never observes a partially replaced set.
	ReplaceCorroborations(ctx context.Context, articleID int64, edges []model.CorroborationEdge) error
	GetCorroborations(ctx context.Context, articleID int64, minSimilarity float64, limit int) ([]model.CorroborationEdge, error)

	// Database management
	Migrate(ctx context.Context) error
	Close() error
}

// ClassifierResult is one sentiment classification from the external model.
type ClassifierResult struct {
	Type       model.SentimentType
	Model      string
	Score      float64
	Confidence float64
}

// Classifier is the external black-box sentiment classifier consumed by
// phase 1 of the pipeline.
type Classifier interface {
	Analyze(ctx context.Context, title, content string) (*ClassifierResult, error)
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
