// Package bayes performs sequential bayesian evidence fusion over weighted
// sentiment evidence.
package bayes

import (
	"log/slog"
	"math"
	"time"

	"github.com/geopulse/coherence/internal/model"
)

// Fusion constants.
const (
	neutralPrior  = 0.5
	minLikelihood = 0.01
	maxLikelihood = 0.99
	minStepConf   = 0.1
	maxConfidence = 0.95

	// Three-way classification cutoffs for the sentiment-article variant,
	// applied to the final [-1,1] score.
	classifyPositive = 0.1
	classifyNegative = -0.1
)

// Fuser applies the sequential update rule. Stateless; safe for concurrent use.
type Fuser struct{}

// NewFuser creates a fuser.
func NewFuser() *Fuser {
	return &Fuser{}
}

// Fuse folds the evidence list into a posterior, starting from the neutral
// prior. The update is not commutative, so the caller-supplied order is part
// of the contract: initial, corroboration, temporal, thematic.
func (f *Fuser) Fuse(evidences []model.Evidence) model.FusionResult {
	if len(evidences) == 0 {
		return model.FusionResult{Posterior: neutralPrior, Confidence: 0, EvidenceCount: 0}
	}

	posterior := neutralPrior
	var confidenceSum float64

	for _, ev := range evidences {
		var stepConfidence float64
		posterior, stepConfidence = update(posterior, ev.Value, ev.Confidence)
		confidenceSum += stepConfidence * ev.Confidence

		slog.Debug("Applied evidence",
			"kind", ev.Kind.String(),
			"value", ev.Value,
			"weight", ev.Confidence,
			"posterior", posterior)
	}

	confidence := confidenceSum / float64(len(evidences))
	if confidence > maxConfidence {
		confidence = maxConfidence
	}

	return model.FusionResult{
		Posterior:     posterior,
		Confidence:    confidence,
		EvidenceCount: len(evidences),
	}
}

// update performs one bayesian step: the likelihood pulls the prior toward
// itself, attenuated by the evidence weight.
func update(prior, likelihood, weight float64) (posterior, confidence float64) {
	p := clamp(prior)
	l := clamp(likelihood)

	numerator := l * p
	denominator := l*p + (1-l)*(1-p)

	bayesPosterior := p
	if denominator != 0 {
		bayesPosterior = numerator / denominator
	}

	posterior = p + (bayesPosterior-p)*clamp(weight)

	confidence = math.Abs(posterior-p) * weight
	if confidence < minStepConf {
		confidence = minStepConf
	}
	if confidence > maxConfidence {
		confidence = maxConfidence
	}

	return posterior, confidence
}

func clamp(x float64) float64 {
	return math.Max(minLikelihood, math.Min(maxLikelihood, x))
}

// FuseArticle is the sentiment-article variant: it builds the canonical
// evidence list from the article's current state and its corroborations,
// fuses, and maps the posterior back to the [-1,1] score domain.
//
// Evidence construction:
//   - initial: the article's current score normalized to [0,1], weighted by
//     its classifier confidence.
//   - corroboration: reinforces the current score; weight scales with mean
//     similarity and evidence volume. Absent when no corroborations exist.
//   - temporal: reinforces the current score with a freshness weight decaying
//     over the article's age. Absent when the publication date is unknown.
//   - thematic: reinforces the current score, weighted by the mean theme
//     confidence. Absent when the article carries no themes.
func (f *Fuser) FuseArticle(article *model.Article, corroborations []model.Corroboration, now time.Time) model.SentimentFusionResult {
	normalized := (article.Sentiment.Score + 1) / 2

	evidences := []model.Evidence{{
		Kind:       model.EvidenceInitial,
		Value:      normalized,
		Confidence: article.Sentiment.Confidence,
	}}

	if len(corroborations) > 0 {
		evidences = append(evidences, model.Evidence{
			Kind:       model.EvidenceCorroboration,
			Value:      normalized,
			Confidence: corroborationWeight(corroborations),
		})
	}

	if !article.PubDate.IsZero() {
		evidences = append(evidences, model.Evidence{
			Kind:       model.EvidenceTemporal,
			Value:      normalized,
			Confidence: recencyWeight(now.Sub(article.PubDate)),
		})
	}

	if themeConf := article.MeanThemeConfidence(); themeConf > 0 {
		evidences = append(evidences, model.Evidence{
			Kind:       model.EvidenceThematic,
			Value:      normalized,
			Confidence: themeConf,
		})
	}

	result := f.Fuse(evidences)
	score := result.Posterior*2 - 1

	return model.SentimentFusionResult{
		Score:          score,
		Confidence:     result.Confidence,
		EvidenceCount:  result.EvidenceCount,
		Classification: classify(score),
	}
}

// corroborationWeight scales the corroboration evidence by mean similarity
// and volume: a single weak match moves the posterior far less than several
// strong ones.
func corroborationWeight(corroborations []model.Corroboration) float64 {
	var sum float64
	for _, c := range corroborations {
		sum += c.Similarity
	}
	mean := sum / float64(len(corroborations))

	volume := float64(len(corroborations)) / 5.0
	if volume > 1 {
		volume = 1
	}

	weight := mean * volume
	if weight > 0.9 {
		weight = 0.9
	}
	return weight
}

// recencyWeight decays evidence strength over article age, mirroring the
// temporal proximity steps used by similarity scoring.
func recencyWeight(age time.Duration) float64 {
	if age < 0 {
		age = 0
	}
	days := int(age.Hours() / 24)

	switch {
	case days == 0:
		return 1.0
	case days <= 1:
		return 0.9
	case days <= 3:
		return 0.7
	case days <= 7:
		return 0.5
	case days <= 14:
		return 0.3
	default:
		return 0.1
	}
}

// classify applies the coarse three-way cut used only at the fusion stage.
func classify(score float64) string {
	switch {
	case score > classifyPositive:
		return "positive"
	case score < classifyNegative:
		return "negative"
	default:
		return "neutral"
	}
}
