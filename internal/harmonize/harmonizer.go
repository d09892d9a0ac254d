// Package harmonize reconciles per-article sentiment scores against their
// similarity clusters.
package harmonize

import (
	"log/slog"
	"math"
	"sort"

	"github.com/geopulse/coherence/internal/corroboration"
	"github.com/geopulse/coherence/internal/model"
)

// Config holds harmonization parameters.
type Config struct {
	ClusterThreshold float64
	ClusterTopN      int
	MinClusterSize   int
	MaxDeviation     float64
	ConsensusWeight  float64
}

// DefaultConfig returns the default harmonization parameters.
func DefaultConfig() Config {
	return Config{
		ClusterThreshold: 0.70,
		ClusterTopN:      20,
		MinClusterSize:   2,
		MaxDeviation:     0.3,
		ConsensusWeight:  0.6,
	}
}

// Harmonizer groups articles into similarity clusters and pulls outlier
// scores toward the cluster consensus.
type Harmonizer struct {
	engine *corroboration.Engine
	config Config
}

// New creates a harmonizer with default parameters.
func New(engine *corroboration.Engine) *Harmonizer {
	return NewWithConfig(engine, DefaultConfig())
}

// NewWithConfig creates a harmonizer with custom parameters.
func NewWithConfig(engine *corroboration.Engine, config Config) *Harmonizer {
	return &Harmonizer{engine: engine, config: config}
}

// Harmonize clusters the batch and adjusts members of high-spread clusters in
// place. Cluster assignment is first-seed-wins: articles are visited in input
// order, and once assigned to a cluster an article is not reconsidered in the
// same run.
func (h *Harmonizer) Harmonize(articles []model.Article) model.HarmonizationStats {
	stats := model.HarmonizationStats{}
	visited := make(map[int64]bool, len(articles))

	index := make(map[int64]int, len(articles))
	for i := range articles {
		index[articles[i].ID] = i
	}

	for i := range articles {
		seed := &articles[i]
		if visited[seed.ID] {
			continue
		}
		visited[seed.ID] = true

		matches := h.engine.Find(seed, articles, h.config.ClusterThreshold, h.config.ClusterTopN)

		cluster := []int{i}
		for _, m := range matches {
			if visited[m.ArticleID] {
				continue
			}
			visited[m.ArticleID] = true
			cluster = append(cluster, index[m.ArticleID])
		}

		if len(cluster) < h.config.MinClusterSize {
			continue
		}
		stats.ClustersFound++

		harmonized, changes := h.harmonizeCluster(articles, cluster)
		stats.Harmonized += harmonized
		stats.Changes += changes
	}

	return stats
}

// harmonizeCluster computes the cluster consensus and, when the score spread
// exceeds the deviation ceiling, blends every member toward it.
func (h *Harmonizer) harmonizeCluster(articles []model.Article, cluster []int) (harmonized, changes int) {
	scores := make([]float64, len(cluster))
	for i, idx := range cluster {
		scores[i] = articles[idx].Sentiment.Score
	}

	spread := stdev(scores)
	if spread <= h.config.MaxDeviation {
		return 0, 0
	}

	pool := weightedPool(articles, cluster)
	consensusScore := median(pool)
	consensusConfidence := math.Max(0.5, math.Min(0.95, 1.0-2*variance(pool)))

	slog.Debug("Harmonizing cluster",
		"members", len(cluster),
		"stdev", spread,
		"consensus_score", consensusScore,
		"consensus_confidence", consensusConfidence)

	w := h.config.ConsensusWeight
	for _, idx := range cluster {
		article := &articles[idx]
		oldScore := article.Sentiment.Score
		oldType := article.Sentiment.Type

		newScore := w*consensusScore + (1-w)*oldScore
		newConfidence := w*consensusConfidence + (1-w)*article.Sentiment.Confidence

		article.Sentiment.OriginalScore = oldScore
		article.Sentiment.SetScore(newScore)
		if newConfidence < 0.4 {
			// Too little confidence to justify a strong label.
			article.Sentiment.ForceNeutral()
		}
		article.Sentiment.Confidence = newConfidence
		article.Sentiment.Harmonized = true
		article.Sentiment.ClusterSize = len(cluster)
		article.Sentiment.DeviationReduced = spread

		harmonized++
		if article.Sentiment.Type != oldType {
			changes++
		}
	}

	return harmonized, changes
}

// weightedPool replicates each member's score by round(confidence*10) copies,
// at least one, so confident members pull the median harder.
func weightedPool(articles []model.Article, cluster []int) []float64 {
	pool := make([]float64, 0, len(cluster)*10)
	for _, idx := range cluster {
		s := articles[idx].Sentiment
		copies := int(math.Round(s.Confidence * 10))
		if copies < 1 {
			copies = 1
		}
		for c := 0; c < copies; c++ {
			pool = append(pool, s.Score)
		}
	}
	return pool
}

func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

func variance(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var mean float64
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))

	var sum float64
	for _, v := range values {
		d := v - mean
		sum += d * d
	}
	return sum / float64(len(values))
}

func stdev(values []float64) float64 {
	return math.Sqrt(variance(values))
}
