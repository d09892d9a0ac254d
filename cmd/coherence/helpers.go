package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/geopulse/coherence/internal/bayes"
	"github.com/geopulse/coherence/internal/classify"
	"github.com/geopulse/coherence/internal/config"
	"github.com/geopulse/coherence/internal/corroboration"
	"github.com/geopulse/coherence/internal/engine"
	"github.com/geopulse/coherence/internal/harmonize"
	"github.com/geopulse/coherence/internal/service"
	"github.com/geopulse/coherence/internal/similarity"
	"github.com/geopulse/coherence/internal/storage"
)

// initStorage opens the database and applies migrations.
func initStorage(ctx context.Context) (service.Storage, error) {
	dbPath := viper.GetString("database.path")
	if dbPath == "" {
		dbPath = "$HOME/.local/share/coherence/coherence.db"
	}
	dbPath = config.ExpandPath(dbPath)

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// initClassifier builds the LLM-backed sentiment classifier from config.
func initClassifier() (service.Classifier, error) {
	return classify.NewClassifier(classify.Config{
		Provider:          viper.GetString("classifier.provider"),
		APIKey:            viper.GetString("classifier.api_key"),
		BaseURL:           viper.GetString("classifier.base_url"),
		Model:             viper.GetString("classifier.model"),
		MaxRetries:        viper.GetInt("classifier.max_retries"),
		RetryDelay:        viper.GetDuration("classifier.retry_delay"),
		CacheTTL:          viper.GetDuration("classifier.cache_ttl"),
		RequestsPerMinute: viper.GetInt("classifier.requests_per_minute"),
		Temperature:       viper.GetFloat64("classifier.temperature"),
		MaxTokens:         viper.GetInt("classifier.max_tokens"),
	})
}

// initEngine wires the full pipeline with explicit dependency injection: no
// shared singletons, every component constructed here.
func initEngine(store service.Storage, classifier service.Classifier) *engine.CoherenceEngine {
	scorer := similarity.NewScorer(similarity.NewTextSimilarity(viper.GetString("similarity.backend")))
	corroborator := corroboration.NewEngine(scorer)
	harmonizer := harmonize.New(corroborator)
	fuser := bayes.NewFuser()

	cfg := engine.DefaultConfig()
	if workers := viper.GetInt("pipeline.workers"); workers > 0 {
		cfg.Workers = workers
	}
	if threshold := viper.GetFloat64("pipeline.edge_threshold"); threshold > 0 {
		cfg.EdgeThreshold = threshold
	}
	if topN := viper.GetInt("pipeline.edge_top_n"); topN > 0 {
		cfg.EdgeTopN = topN
	}

	return engine.NewWithConfig(store, classifier, corroborator, harmonizer, fuser, cfg)
}

// sinceWindow resolves the recency window for batch selection.
func sinceWindow(days int) time.Time {
	if days <= 0 {
		days = 7
	}
	return time.Now().AddDate(0, 0, -days)
}
