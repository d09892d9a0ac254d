package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/geopulse/coherence/internal/common"
	"github.com/geopulse/coherence/internal/model"
	"github.com/geopulse/coherence/internal/service"
)

// SaveArticles inserts articles, ignoring ids that already exist.
func (s *SQLiteStorage) SaveArticles(ctx context.Context, articles []model.Article) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateArticles(articles); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO articles (
			id, title, content, pub_date, feed_url, themes,
			sentiment_score, sentiment_type, sentiment_confidence
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, article := range articles {
		themesJSON := ""
		if len(article.Themes) > 0 {
			themesBytes, marshalErr := json.Marshal(article.Themes)
			if marshalErr == nil {
				themesJSON = string(themesBytes)
			}
		}

		var pubDate any
		if !article.PubDate.IsZero() {
			pubDate = article.PubDate
		}

		if _, err := stmt.ExecContext(ctx,
			article.ID,
			article.Title,
			article.Content,
			pubDate,
			article.FeedURL,
			themesJSON,
			article.Sentiment.Score,
			string(article.Sentiment.Type),
			article.Sentiment.Confidence,
		); err != nil {
			return fmt.Errorf("failed to insert article %d: %w", article.ID, err)
		}
	}

	return tx.Commit()
}

const articleColumns = `
	id, title, content, pub_date, feed_url, themes,
	sentiment_score, sentiment_type, sentiment_confidence, sentiment_model,
	initial_analysis, harmonized, cluster_size, original_score,
	deviation_reduced, bayesian_confidence, evidence_count, analyzed_at
`

// GetArticle fetches one article by id.
func (s *SQLiteStorage) GetArticle(ctx context.Context, id int64) (*model.Article, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateID(id, "id"); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx,
		`SELECT `+articleColumns+` FROM articles WHERE id = ?`, id)

	article, err := scanArticle(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("article %d: %w", id, common.ErrNotFound)
		}
		return nil, err
	}
	return article, nil
}

// GetArticles fetches articles matching the filter, newest first.
func (s *SQLiteStorage) GetArticles(ctx context.Context, filter service.ArticleFilter) ([]model.Article, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	query := `SELECT ` + articleColumns + ` FROM articles`
	var conditions []string
	var args []any

	if filter.Since != nil {
		conditions = append(conditions, "pub_date >= ?")
		args = append(args, *filter.Since)
	}
	if filter.Until != nil {
		conditions = append(conditions, "pub_date <= ?")
		args = append(args, *filter.Until)
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY pub_date DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	return s.queryArticles(ctx, query, args...)
}

// GetArticlesByID fetches the given ids; missing ids are silently skipped.
func (s *SQLiteStorage) GetArticlesByID(ctx context.Context, ids []int64) ([]model.Article, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []model.Article{}, nil
	}

	placeholders := strings.Repeat("?,", len(ids))
	placeholders = placeholders[:len(placeholders)-1]

	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	query := `SELECT ` + articleColumns + ` FROM articles WHERE id IN (` + placeholders + `) ORDER BY id`
	return s.queryArticles(ctx, query, args...)
}

// GetRecentArticles fetches articles published since the given time.
func (s *SQLiteStorage) GetRecentArticles(ctx context.Context, since time.Time, limit int) ([]model.Article, error) {
	filter := service.ArticleFilter{Since: &since, Limit: limit}
	return s.GetArticles(ctx, filter)
}

// UpdateSentiment replaces an article's sentiment fields. A single UPDATE,
// so each row write is atomic.
func (s *SQLiteStorage) UpdateSentiment(ctx context.Context, articleID int64, sentiment model.Sentiment) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateID(articleID, "articleID"); err != nil {
		return err
	}

	var analyzedAt any
	if !sentiment.AnalyzedAt.IsZero() {
		analyzedAt = sentiment.AnalyzedAt
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE articles SET
			sentiment_score = ?,
			sentiment_type = ?,
			sentiment_confidence = ?,
			sentiment_model = ?,
			initial_analysis = ?,
			harmonized = ?,
			cluster_size = ?,
			original_score = ?,
			deviation_reduced = ?,
			bayesian_confidence = ?,
			evidence_count = ?,
			analyzed_at = ?
		WHERE id = ?`,
		sentiment.Score,
		string(sentiment.Type),
		sentiment.Confidence,
		sentiment.Model,
		sentiment.Initial,
		sentiment.Harmonized,
		sentiment.ClusterSize,
		sentiment.OriginalScore,
		sentiment.DeviationReduced,
		sentiment.BayesianConfidence,
		sentiment.EvidenceCount,
		analyzedAt,
		articleID,
	)
	if err != nil {
		return fmt.Errorf("failed to update sentiment for article %d: %w", articleID, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("article %d: %w", articleID, common.ErrNotFound)
	}

	return nil
}

// GetSentimentDistribution aggregates stored sentiment counts.
func (s *SQLiteStorage) GetSentimentDistribution(ctx context.Context) (*model.SentimentDistribution, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	dist := &model.SentimentDistribution{
		ByType: make(map[model.SentimentType]int),
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT sentiment_type, COUNT(*),
			SUM(CASE WHEN harmonized THEN 1 ELSE 0 END),
			SUM(CASE WHEN initial_analysis THEN 1 ELSE 0 END)
		FROM articles GROUP BY sentiment_type`)
	if err != nil {
		return nil, fmt.Errorf("failed to query sentiment distribution: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var sentimentType string
		var count, harmonized, analyzed int
		if err := rows.Scan(&sentimentType, &count, &harmonized, &analyzed); err != nil {
			return nil, fmt.Errorf("failed to scan distribution row: %w", err)
		}
		dist.ByType[model.SentimentType(sentimentType)] = count
		dist.Total += count
		dist.Harmonized += harmonized
		dist.Analyzed += analyzed
	}

	return dist, rows.Err()
}

// scanner abstracts sql.Row and sql.Rows for scanArticle.
type scanner interface {
	Scan(dest ...any) error
}

func scanArticle(row scanner) (*model.Article, error) {
	var a model.Article
	var content, feedURL, themesJSON, sentimentType, sentimentModel sql.NullString
	var pubDate, analyzedAt sql.NullTime

	err := row.Scan(
		&a.ID,
		&a.Title,
		&content,
		&pubDate,
		&feedURL,
		&themesJSON,
		&a.Sentiment.Score,
		&sentimentType,
		&a.Sentiment.Confidence,
		&sentimentModel,
		&a.Sentiment.Initial,
		&a.Sentiment.Harmonized,
		&a.Sentiment.ClusterSize,
		&a.Sentiment.OriginalScore,
		&a.Sentiment.DeviationReduced,
		&a.Sentiment.BayesianConfidence,
		&a.Sentiment.EvidenceCount,
		&analyzedAt,
	)
	if err != nil {
		return nil, err
	}

	a.Content = content.String
	a.FeedURL = feedURL.String
	a.Sentiment.Type = model.SentimentType(sentimentType.String)
	a.Sentiment.Model = sentimentModel.String
	if pubDate.Valid {
		a.PubDate = pubDate.Time
	}
	if analyzedAt.Valid {
		a.Sentiment.AnalyzedAt = analyzedAt.Time
	}
	if themesJSON.String != "" {
		if err := json.Unmarshal([]byte(themesJSON.String), &a.Themes); err != nil {
			return nil, fmt.Errorf("failed to decode themes for article %d: %w", a.ID, err)
		}
	}

	return &a, nil
}

func (s *SQLiteStorage) queryArticles(ctx context.Context, query string, args ...any) ([]model.Article, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query articles: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var articles []model.Article
	for rows.Next() {
		article, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan article: %w", err)
		}
		articles = append(articles, *article)
	}

	return articles, rows.Err()
}
