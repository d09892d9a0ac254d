package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// ExpectedSchemaVersion is the latest schema version that the application
// expects.
const ExpectedSchemaVersion = 2

// Migration represents a database schema migration.
type Migration struct {
	Up          func(*sql.Tx) error
	Description string
	Version     int
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Initial schema",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS articles (
					id INTEGER PRIMARY KEY,
					title TEXT NOT NULL,
					content TEXT,
					pub_date DATETIME,
					feed_url TEXT,
					themes TEXT,
					sentiment_score REAL DEFAULT 0,
					sentiment_type TEXT DEFAULT 'neutral_negative',
					sentiment_confidence REAL DEFAULT 0,
					sentiment_model TEXT,
					initial_analysis INTEGER DEFAULT 0,
					harmonized INTEGER DEFAULT 0,
					cluster_size INTEGER DEFAULT 1,
					original_score REAL DEFAULT 0,
					deviation_reduced REAL DEFAULT 0,
					bayesian_confidence REAL DEFAULT 0,
					evidence_count INTEGER DEFAULT 0,
					analyzed_at DATETIME,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE INDEX idx_articles_pub_date ON articles(pub_date)`,
				`CREATE INDEX idx_articles_feed_url ON articles(feed_url)`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query: %w", err)
				}
			}
			return nil
		},
	},
	{
		Version:     2,
		Description: "Corroboration edge table",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS corroborations (
					article_id INTEGER NOT NULL,
					similar_article_id INTEGER NOT NULL,
					similarity_score REAL NOT NULL,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
					PRIMARY KEY (article_id, similar_article_id),
					FOREIGN KEY (article_id) REFERENCES articles(id),
					FOREIGN KEY (similar_article_id) REFERENCES articles(id)
				)`,
				`CREATE INDEX idx_corroborations_article ON corroborations(article_id, similarity_score DESC)`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query: %w", err)
				}
			}
			return nil
		},
	},
}

// runMigrations applies all migrations above the database's current version,
// each in its own transaction.
func runMigrations(ctx context.Context, db *sql.DB) error {
	var currentVersion int
	if err := db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&currentVersion); err != nil {
		return fmt.Errorf("failed to get schema version: %w", err)
	}

	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		slog.Info("Applying migration",
			"version", migration.Version,
			"description", migration.Description)

		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("failed to begin migration transaction: %w", err)
		}

		if err := migration.Up(tx); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", migration.Version, err)
		}

		// PRAGMA does not support placeholders.
		if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", migration.Version)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to set schema version: %w", err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, err)
		}
	}

	return nil
}
