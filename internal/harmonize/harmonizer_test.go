package harmonize

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geopulse/coherence/internal/corroboration"
	"github.com/geopulse/coherence/internal/model"
	"github.com/geopulse/coherence/internal/similarity"
)

func newTestHarmonizer() *Harmonizer {
	scorer := similarity.NewScorer(similarity.NewTextSimilarity("sequence"))
	return New(corroboration.NewEngine(scorer))
}

// clusterMember builds an article that clusters with any other member sharing
// the same title and content.
func clusterMember(id int64, score, confidence float64) model.Article {
	a := model.Article{
		ID:      id,
		Title:   "Ceasefire agreement signed after marathon talks",
		Content: "Negotiators announced a ceasefire agreement early Monday after a week of talks.",
		FeedURL: "https://news.example/world",
		PubDate: time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC),
		Themes:  []model.Theme{{ID: "conflict", Confidence: 0.9}},
	}
	a.Sentiment.SetScore(score)
	a.Sentiment.Confidence = confidence
	return a
}

func outlierArticle(id int64) model.Article {
	a := model.Article{
		ID:      id,
		Title:   "Wheat futures slide on record harvest outlook",
		Content: "Futures fell sharply as forecasts pointed to a record harvest across the region.",
		FeedURL: "https://other.example/markets",
		PubDate: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
		Themes:  []model.Theme{{ID: "commodities", Confidence: 0.8}},
	}
	a.Sentiment.SetScore(0.1)
	a.Sentiment.Confidence = 0.6
	return a
}

func TestHarmonizeTightClusterUntouched(t *testing.T) {
	h := newTestHarmonizer()

	articles := []model.Article{
		clusterMember(1, 0.50, 0.8),
		clusterMember(2, 0.52, 0.8),
		clusterMember(3, 0.48, 0.8),
	}

	stats := h.Harmonize(articles)

	assert.Equal(t, 1, stats.ClustersFound)
	assert.Zero(t, stats.Harmonized, "agreeing cluster needs no adjustment")
	assert.Zero(t, stats.Changes)
	for i, want := range []float64{0.50, 0.52, 0.48} {
		assert.InDelta(t, want, articles[i].Sentiment.Score, 1e-9)
		assert.False(t, articles[i].Sentiment.Harmonized)
	}
}

func TestHarmonizeReducesSpread(t *testing.T) {
	h := newTestHarmonizer()

	articles := []model.Article{
		clusterMember(1, 0.9, 0.9),
		clusterMember(2, 0.85, 0.9),
		clusterMember(3, -0.8, 0.9),
	}
	before := spread(articles)

	stats := h.Harmonize(articles)

	require.Equal(t, 1, stats.ClustersFound)
	assert.Equal(t, 3, stats.Harmonized)
	assert.Less(t, spread(articles), before, "blending toward consensus must shrink the spread")

	for i := range articles {
		assert.True(t, articles[i].Sentiment.Harmonized)
		assert.Equal(t, 3, articles[i].Sentiment.ClusterSize)
		assert.Equal(t, model.TypeForScore(articles[i].Sentiment.Score), articles[i].Sentiment.Type)
	}

	// The dissenter moved toward the positive consensus.
	assert.Greater(t, articles[2].Sentiment.Score, -0.8)
	assert.InDelta(t, -0.8, articles[2].Sentiment.OriginalScore, 1e-9)
}

func TestHarmonizeConfidentMajorityWins(t *testing.T) {
	h := newTestHarmonizer()

	// Two confident positives outweigh one unconfident negative in the
	// confidence-weighted median pool.
	articles := []model.Article{
		clusterMember(1, 0.8, 0.9),
		clusterMember(2, 0.8, 0.9),
		clusterMember(3, -0.9, 0.2),
	}

	stats := h.Harmonize(articles)

	require.Equal(t, 3, stats.Harmonized)
	assert.Greater(t, articles[2].Sentiment.Score, 0.0,
		"low-confidence dissenter crosses to the consensus side")
	assert.GreaterOrEqual(t, stats.Changes, 1)
}

func TestHarmonizeConvergesTowardWeightedMedian(t *testing.T) {
	h := newTestHarmonizer()

	articles := []model.Article{
		clusterMember(1, 0.9, 0.9),
		clusterMember(2, -0.9, 0.9),
		clusterMember(3, 0.1, 0.9),
	}
	for i := range articles {
		articles[i].Title = "Central bank raises rates"
	}

	stats := h.Harmonize(articles)
	require.Equal(t, 3, stats.Harmonized)

	// Equal confidences make the weighted median the middle score, 0.1; each
	// member lands at 0.6*median + 0.4*own.
	assert.InDelta(t, 0.42, articles[0].Sentiment.Score, 1e-9)
	assert.InDelta(t, -0.30, articles[1].Sentiment.Score, 1e-9)
	assert.InDelta(t, 0.10, articles[2].Sentiment.Score, 1e-9)
}

func TestHarmonizeIsolatedArticle(t *testing.T) {
	h := newTestHarmonizer()

	articles := []model.Article{
		clusterMember(1, 0.9, 0.9),
		outlierArticle(2),
	}

	stats := h.Harmonize(articles)

	assert.Zero(t, stats.ClustersFound, "singletons never form a cluster")
	assert.Zero(t, stats.Harmonized)
	assert.InDelta(t, 0.9, articles[0].Sentiment.Score, 1e-9)
	assert.InDelta(t, 0.1, articles[1].Sentiment.Score, 1e-9)
}

func TestHarmonizeEmptyBatch(t *testing.T) {
	h := newTestHarmonizer()

	stats := h.Harmonize(nil)
	assert.Zero(t, stats.ClustersFound)
	assert.Zero(t, stats.Harmonized)
}

func TestHarmonizeForcesNeutralOnLowConfidence(t *testing.T) {
	h := newTestHarmonizer()

	// Polarized scores with no confidence behind them: the blended confidence
	// lands below the strong-label bar and both members get neutral types.
	articles := []model.Article{
		clusterMember(1, 0.9, 0.0),
		clusterMember(2, -0.9, 0.0),
	}

	stats := h.Harmonize(articles)

	require.Equal(t, 2, stats.Harmonized)
	for i := range articles {
		typ := articles[i].Sentiment.Type
		assert.Contains(t,
			[]model.SentimentType{model.SentimentNeutralPositive, model.SentimentNeutralNegative},
			typ)
	}
}

func TestHarmonizeFirstSeedWins(t *testing.T) {
	h := newTestHarmonizer()

	articles := []model.Article{
		clusterMember(1, 0.9, 0.9),
		clusterMember(2, 0.85, 0.9),
		clusterMember(3, -0.8, 0.9),
	}

	stats := h.Harmonize(articles)

	// All three fold into the first seed's cluster; no second cluster forms
	// from the already-visited members.
	assert.Equal(t, 1, stats.ClustersFound)
	for i := range articles {
		assert.Equal(t, 3, articles[i].Sentiment.ClusterSize)
	}
}

func spread(articles []model.Article) float64 {
	scores := make([]float64, len(articles))
	for i := range articles {
		scores[i] = articles[i].Sentiment.Score
	}
	return stdev(scores)
}
