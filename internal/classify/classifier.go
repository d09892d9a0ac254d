// Package classify adapts an external LLM API into the pipeline's sentiment
// classifier interface. The model itself is a black box; this package only
// handles transport, caching, rate limiting and retries.
package classify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/geopulse/coherence/internal/common"
	"github.com/geopulse/coherence/internal/model"
	"github.com/geopulse/coherence/internal/service"
)

// Config holds configuration for the sentiment classifier.
type Config struct {
	Provider          string
	APIKey            string
	BaseURL           string
	Model             string
	MaxRetries        int
	RetryDelay        time.Duration
	CacheTTL          time.Duration
	RequestsPerMinute int
	Temperature       float64
	MaxTokens         int
}

// Client is the raw transport used by the classifier.
type Client interface {
	Analyze(ctx context.Context, title, content string) (*service.ClassifierResult, error)
}

// Classifier implements service.Classifier over an LLM API client.
type Classifier struct {
	client    Client
	cache     *resultCache
	limiter   *rate.Limiter
	retryOpts service.RetryOptions
}

// NewClassifier creates a new LLM-backed sentiment classifier.
func NewClassifier(cfg Config) (*Classifier, error) {
	var client Client
	var err error

	switch strings.ToLower(cfg.Provider) {
	case "", "openai":
		client, err = newOpenAIClient(cfg)
	default:
		return nil, fmt.Errorf("unsupported classifier provider: %s", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create classifier client: %w", err)
	}

	retryOpts := service.RetryOptions{
		MaxAttempts:  cfg.MaxRetries,
		InitialDelay: cfg.RetryDelay,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
	}
	if retryOpts.MaxAttempts == 0 {
		retryOpts.MaxAttempts = 3
	}
	if retryOpts.InitialDelay == 0 {
		retryOpts.InitialDelay = time.Second
	}

	rpm := cfg.RequestsPerMinute
	if rpm <= 0 {
		rpm = 60
	}

	return &Classifier{
		client:    client,
		cache:     newResultCache(cfg.CacheTTL),
		limiter:   rate.NewLimiter(rate.Limit(float64(rpm)/60.0), rpm),
		retryOpts: retryOpts,
	}, nil
}

// Analyze classifies one article's sentiment, serving repeats from cache.
func (c *Classifier) Analyze(ctx context.Context, title, content string) (*service.ClassifierResult, error) {
	key := cacheKey(title, content)
	if result, found := c.cache.get(key); found {
		slog.Debug("classifier cache hit", "title", title)
		return result, nil
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait: %w", err)
	}

	var result *service.ClassifierResult
	err := common.WithRetry(ctx, func() error {
		var analyzeErr error
		result, analyzeErr = c.client.Analyze(ctx, title, content)
		if analyzeErr != nil {
			return &common.RetryableError{Err: analyzeErr, Retryable: true}
		}
		return nil
	}, c.retryOpts)
	if err != nil {
		return nil, fmt.Errorf("sentiment classification failed: %w", err)
	}

	normalizeResult(result)
	c.cache.set(key, result)

	return result, nil
}

// normalizeResult clamps the model's output into contract bounds and derives
// the type from the score so the pair can never disagree.
func normalizeResult(r *service.ClassifierResult) {
	if r.Score > 1 {
		r.Score = 1
	}
	if r.Score < -1 {
		r.Score = -1
	}
	if r.Confidence > 1 {
		r.Confidence = 1
	}
	if r.Confidence < 0 {
		r.Confidence = 0
	}
	r.Type = model.TypeForScore(r.Score)
}
