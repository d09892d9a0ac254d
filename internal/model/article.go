// Package model defines the core domain models used throughout the application.
package model

import (
	"time"
)

// SentimentType is the discrete sentiment category derived from a score.
type SentimentType string

// Sentiment type constants.
const (
	SentimentPositive        SentimentType = "positive"
	SentimentNeutralPositive SentimentType = "neutral_positive"
	SentimentNeutralNegative SentimentType = "neutral_negative"
	SentimentNegative        SentimentType = "negative"
)

// Score thresholds for the four-way sentiment categorization.
const (
	ThresholdPositive        = 0.25
	ThresholdNeutralPositive = 0.08
	ThresholdNeutralNegative = -0.08
)

// TypeForScore maps a raw score in [-1,1] to its sentiment type.
func TypeForScore(score float64) SentimentType {
	switch {
	case score >= ThresholdPositive:
		return SentimentPositive
	case score >= ThresholdNeutralPositive:
		return SentimentNeutralPositive
	case score >= ThresholdNeutralNegative:
		return SentimentNeutralNegative
	default:
		return SentimentNegative
	}
}

// Theme is a topic identifier attached to an article, optionally with a
// classifier-assigned confidence.
type Theme struct {
	ID         string
	Confidence float64
}

// Sentiment groups every pipeline-mutable field of an article. Score and Type
// move together: SetScore is the only writer of Type, so the two can never
// drift apart.
type Sentiment struct {
	AnalyzedAt         time.Time
	Type               SentimentType
	Model              string
	Score              float64
	Confidence         float64
	OriginalScore      float64
	DeviationReduced   float64
	BayesianConfidence float64
	ClusterSize        int
	EvidenceCount      int
	Harmonized         bool
	Initial            bool
}

// SetScore updates the score and recomputes the type from the threshold table.
func (s *Sentiment) SetScore(score float64) {
	s.Score = score
	s.Type = TypeForScore(score)
}

// ForceNeutral overrides the type to a neutral category by score sign. Used
// when a harmonized score carries too little confidence to justify a strong
// label.
func (s *Sentiment) ForceNeutral() {
	if s.Score >= 0 {
		s.Type = SentimentNeutralPositive
	} else {
		s.Type = SentimentNeutralNegative
	}
}

// Article represents a single news article from any feed.
type Article struct {
	PubDate   time.Time
	Title     string
	Content   string
	FeedURL   string
	Themes    []Theme
	Sentiment Sentiment
	ID        int64
}

// ThemeIDs returns the article's theme identifiers.
func (a *Article) ThemeIDs() []string {
	ids := make([]string, len(a.Themes))
	for i, th := range a.Themes {
		ids[i] = th.ID
	}
	return ids
}

// MeanThemeConfidence returns the average confidence across themes, or 0 if
// the article has none.
func (a *Article) MeanThemeConfidence() float64 {
	if len(a.Themes) == 0 {
		return 0
	}
	var sum float64
	for _, th := range a.Themes {
		sum += th.Confidence
	}
	return sum / float64(len(a.Themes))
}
