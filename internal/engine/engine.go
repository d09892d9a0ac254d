// Package engine implements the batch sentiment-coherence pipeline: initial
// classification, cluster harmonization, bayesian refinement, persistence.
package engine

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/geopulse/coherence/internal/bayes"
	"github.com/geopulse/coherence/internal/corroboration"
	"github.com/geopulse/coherence/internal/harmonize"
	"github.com/geopulse/coherence/internal/model"
	"github.com/geopulse/coherence/internal/service"
)

// Config holds configuration options for the coherence engine.
type Config struct {
	// Workers bounds the per-article parallelism of the classification and
	// refinement phases. Harmonization runs single-threaded between them.
	Workers int
	// EdgeThreshold and EdgeTopN shape the persisted corroboration edge set
	// and its readback during refinement.
	EdgeThreshold float64
	EdgeTopN      int
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Workers:       4,
		EdgeThreshold: corroboration.DefaultThreshold,
		EdgeTopN:      corroboration.DefaultTopN,
	}
}

// CoherenceEngine orchestrates the four pipeline phases over a batch.
type CoherenceEngine struct {
	storage      service.Storage
	classifier   service.Classifier
	corroborator *corroboration.Engine
	harmonizer   *harmonize.Harmonizer
	fuser        *bayes.Fuser
	config       Config
}

// New creates a coherence engine with the given dependencies.
func New(storage service.Storage, classifier service.Classifier, corroborator *corroboration.Engine, harmonizer *harmonize.Harmonizer, fuser *bayes.Fuser) *CoherenceEngine {
	return NewWithConfig(storage, classifier, corroborator, harmonizer, fuser, DefaultConfig())
}

// NewWithConfig creates a coherence engine with custom configuration.
func NewWithConfig(storage service.Storage, classifier service.Classifier, corroborator *corroboration.Engine, harmonizer *harmonize.Harmonizer, fuser *bayes.Fuser, config Config) *CoherenceEngine {
	if config.Workers <= 0 {
		config.Workers = 1
	}
	if config.EdgeThreshold <= 0 {
		config.EdgeThreshold = corroboration.DefaultThreshold
	}
	if config.EdgeTopN <= 0 {
		config.EdgeTopN = corroboration.DefaultTopN
	}
	return &CoherenceEngine{
		storage:      storage,
		classifier:   classifier,
		corroborator: corroborator,
		harmonizer:   harmonizer,
		fuser:        fuser,
		config:       config,
	}
}

// AnalyzeBatchWithCoherence runs the full pipeline over the batch. Every
// per-article failure degrades to a fallback and is tallied in the report;
// nothing aborts the batch. A canceled context stops new per-article work and
// the report carries the skipped count — partial completion, not failure.
func (e *CoherenceEngine) AnalyzeBatchWithCoherence(ctx context.Context, articles []model.Article) *model.CoherenceReport {
	report := &model.CoherenceReport{
		StartedAt:     time.Now(),
		TotalArticles: len(articles),
	}
	defer func() { report.FinishedAt = time.Now() }()

	if len(articles) == 0 {
		slog.Info("No articles to analyze")
		return report
	}

	slog.Info("Starting coherence pipeline",
		"articles", len(articles),
		"workers", e.config.Workers)

	// Phase 1: initial analysis. Independent per article.
	analyzed := e.analyzeInitial(ctx, articles, report)
	report.Analyzed = len(analyzed)
	if len(analyzed) == 0 {
		slog.Info("No articles survived initial analysis")
		return report
	}

	// Phase 2: corroboration edges, then harmonization. The edge lookups are
	// independent and run in parallel; harmonization needs every phase-1
	// score, so it runs strictly after the Wait barrier above and is itself
	// sequential in seed selection.
	e.persistCorroborations(ctx, analyzed)

	stats := e.harmonizer.Harmonize(analyzed)
	report.ClustersFound = stats.ClustersFound
	report.Harmonized = stats.Harmonized
	report.SentimentChanges = stats.Changes

	slog.Info("Harmonization complete",
		"clusters", stats.ClustersFound,
		"harmonized", stats.Harmonized,
		"changes", stats.Changes)

	// Phase 3: bayesian refinement. Independent per article.
	e.refineBatch(ctx, analyzed, report)

	// Phase 4: persistence. Per-row commit; one failed row never rolls back
	// the others.
	e.persistBatch(ctx, analyzed, report)

	slog.Info("Coherence pipeline complete",
		"analyzed", report.Analyzed,
		"clusters", report.ClustersFound,
		"harmonized", report.Harmonized,
		"changes", report.SentimentChanges,
		"skipped", report.Skipped,
		"errors", report.Errors)

	return report
}

// analyzeInitial runs the external classifier over the batch with a bounded
// worker pool and returns the articles that classified successfully.
func (e *CoherenceEngine) analyzeInitial(ctx context.Context, articles []model.Article, report *model.CoherenceReport) []model.Article {
	results := make([]*model.Article, len(articles))

	var mu sync.Mutex
	var g errgroup.Group
	g.SetLimit(e.config.Workers)

	for i := range articles {
		i := i
		select {
		case <-ctx.Done():
			mu.Lock()
			report.Skipped++
			mu.Unlock()
			continue
		default:
		}

		g.Go(func() error {
			article := articles[i]

			result, err := e.classifier.Analyze(ctx, article.Title, article.Content)
			if err != nil {
				slog.Error("Classifier failed, excluding article from run",
					"article_id", article.ID,
					"error", err)
				mu.Lock()
				report.Errors++
				mu.Unlock()
				return nil
			}

			article.Sentiment.SetScore(result.Score)
			article.Sentiment.Confidence = result.Confidence
			article.Sentiment.Model = result.Model
			article.Sentiment.Initial = true
			article.Sentiment.AnalyzedAt = time.Now()

			results[i] = &article
			return nil
		})
	}

	// Barrier: harmonization reads every phase-1 score.
	_ = g.Wait()

	analyzed := make([]model.Article, 0, len(articles))
	for _, a := range results {
		if a != nil {
			analyzed = append(analyzed, *a)
		}
	}
	return analyzed
}

// persistCorroborations replaces each article's stored edge set against the
// rest of the batch. Store failures degrade to missing corroboration evidence
// downstream.
func (e *CoherenceEngine) persistCorroborations(ctx context.Context, analyzed []model.Article) {
	var g errgroup.Group
	g.SetLimit(e.config.Workers)

	for i := range analyzed {
		i := i
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			article := &analyzed[i]
			if _, err := e.corroborator.FindAndPersist(ctx, e.storage, article, analyzed, e.config.EdgeThreshold, e.config.EdgeTopN); err != nil {
				slog.Warn("Failed to persist corroboration edges, refinement will run without them",
					"article_id", article.ID,
					"error", err)
			}
			return nil
		})
	}

	_ = g.Wait()
}

// refineBatch applies bayesian fusion per article with a bounded worker pool.
// Each article is independent; an article whose refinement degrades keeps its
// harmonized score.
func (e *CoherenceEngine) refineBatch(ctx context.Context, analyzed []model.Article, report *model.CoherenceReport) {
	var mu sync.Mutex
	var g errgroup.Group
	g.SetLimit(e.config.Workers)

	for i := range analyzed {
		i := i
		select {
		case <-ctx.Done():
			mu.Lock()
			report.Skipped++
			mu.Unlock()
			continue
		default:
		}

		g.Go(func() error {
			article := &analyzed[i]
			outcome, improved, changed := e.refineArticle(ctx, article)

			mu.Lock()
			switch outcome.State {
			case model.OutcomeDegraded:
				slog.Debug("Refinement degraded",
					"article_id", article.ID,
					"reason", outcome.Reason)
			case model.OutcomeFailed:
				slog.Error("Refinement failed, keeping current score",
					"article_id", article.ID,
					"reason", outcome.Reason)
				report.Errors++
			case model.OutcomeOK:
			}
			if improved {
				report.ConfidenceImproved++
			}
			if changed {
				report.SentimentChanges++
			}
			mu.Unlock()
			return nil
		})
	}

	_ = g.Wait()
}

// refineArticle fuses the article's evidence and writes the result into its
// sentiment. A missing edge set reduces the evidence, never the article; an
// article with no initial analysis cannot be refined at all and keeps its
// current score.
func (e *CoherenceEngine) refineArticle(ctx context.Context, article *model.Article) (outcome model.Outcome, improved, changed bool) {
	if !article.Sentiment.Initial {
		return model.Failed("no initial analysis to refine"), false, false
	}

	outcome = model.Ok()

	edges, err := e.storage.GetCorroborations(ctx, article.ID, e.config.EdgeThreshold, e.config.EdgeTopN)
	if err != nil {
		outcome = model.Degraded("corroboration read failed: " + err.Error())
		edges = nil
	}

	corroborations := make([]model.Corroboration, len(edges))
	for i, edge := range edges {
		corroborations[i] = model.Corroboration{
			ArticleID:  edge.SimilarArticleID,
			Similarity: edge.Similarity,
			FoundAt:    edge.CreatedAt,
		}
	}

	previousConfidence := article.Sentiment.Confidence
	previousType := article.Sentiment.Type

	result := e.fuser.FuseArticle(article, corroborations, time.Now())

	article.Sentiment.SetScore(result.Score)
	article.Sentiment.BayesianConfidence = result.Confidence
	article.Sentiment.EvidenceCount = result.EvidenceCount

	return outcome, result.Confidence > previousConfidence, article.Sentiment.Type != previousType
}

// persistBatch upserts final sentiment fields row by row.
func (e *CoherenceEngine) persistBatch(ctx context.Context, analyzed []model.Article, report *model.CoherenceReport) {
	for i := range analyzed {
		if ctx.Err() != nil {
			report.Skipped += len(analyzed) - i
			return
		}

		article := &analyzed[i]
		if err := e.storage.UpdateSentiment(ctx, article.ID, article.Sentiment); err != nil {
			slog.Error("Failed to persist sentiment",
				"article_id", article.ID,
				"error", err)
			report.Errors++
		}
	}
}

// FindCorroborations is the standalone corroboration lookup: pure, no edge
// persistence.
func (e *CoherenceEngine) FindCorroborations(article *model.Article, candidates []model.Article, threshold float64, topN int) []model.Corroboration {
	return e.corroborator.Find(article, candidates, threshold, topN)
}

// AnalyzeArticleSentiment runs the bayesian sentiment variant for one article
// against already-known corroborations.
func (e *CoherenceEngine) AnalyzeArticleSentiment(article *model.Article, corroborations []model.Corroboration) model.SentimentFusionResult {
	return e.fuser.FuseArticle(article, corroborations, time.Now())
}
