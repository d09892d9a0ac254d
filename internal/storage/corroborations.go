package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/geopulse/coherence/internal/model"
)

// ReplaceCorroborations swaps an article's full corroboration edge set.
// Delete and insert run in one transaction: a reader never sees a partially
// replaced set, and concurrent replaces for the same article serialize.
func (s *SQLiteStorage) ReplaceCorroborations(ctx context.Context, articleID int64, edges []model.CorroborationEdge) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateID(articleID, "articleID"); err != nil {
		return err
	}
	if err := validateEdges(articleID, edges); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM corroborations WHERE article_id = ?`, articleID); err != nil {
		return fmt.Errorf("failed to delete corroborations for article %d: %w", articleID, err)
	}

	if len(edges) > 0 {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO corroborations (article_id, similar_article_id, similarity_score, created_at)
			VALUES (?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare statement: %w", err)
		}
		defer func() { _ = stmt.Close() }()

		for _, edge := range edges {
			createdAt := edge.CreatedAt
			if createdAt.IsZero() {
				createdAt = time.Now()
			}
			if _, err := stmt.ExecContext(ctx,
				edge.ArticleID, edge.SimilarArticleID, edge.Similarity, createdAt); err != nil {
				return fmt.Errorf("failed to insert corroboration edge: %w", err)
			}
		}
	}

	return tx.Commit()
}

// GetCorroborations reads an article's edges at or above minSimilarity,
// strongest first, capped at limit.
func (s *SQLiteStorage) GetCorroborations(ctx context.Context, articleID int64, minSimilarity float64, limit int) ([]model.CorroborationEdge, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateID(articleID, "articleID"); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT article_id, similar_article_id, similarity_score, created_at
		FROM corroborations
		WHERE article_id = ? AND similarity_score >= ?
		ORDER BY similarity_score DESC
		LIMIT ?`,
		articleID, minSimilarity, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query corroborations: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var edges []model.CorroborationEdge
	for rows.Next() {
		var edge model.CorroborationEdge
		if err := rows.Scan(&edge.ArticleID, &edge.SimilarArticleID, &edge.Similarity, &edge.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan corroboration edge: %w", err)
		}
		edges = append(edges, edge)
	}

	return edges, rows.Err()
}
