package similarity

import (
	"math"
	"strings"

	"github.com/geopulse/coherence/internal/model"
)

// Sub-score weights. They sum to 1; when the temporal term is not computable
// its weight is dropped and the remainder renormalized.
const (
	weightContent  = 0.50
	weightTitle    = 0.20
	weightTheme    = 0.15
	weightTemporal = 0.10
	weightSource   = 0.05
)

// contentPrefixLen bounds how much body text feeds the content sub-score.
const contentPrefixLen = 500

// Scorer computes a weighted multi-factor similarity between two articles.
// It has no side effects and never fails: missing fields degrade their
// sub-score to zero.
type Scorer struct {
	text TextSimilarity
}

// NewScorer creates a scorer over the given text-similarity backend.
func NewScorer(text TextSimilarity) *Scorer {
	return &Scorer{text: text}
}

// Score returns the combined similarity of a and b in [0,1], rounded to four
// decimal places. Symmetric: Score(a,b) == Score(b,a).
func (s *Scorer) Score(a, b *model.Article) float64 {
	var sum, totalWeight float64

	sum += weightContent * s.text.Ratio(analysisText(a), analysisText(b))
	totalWeight += weightContent

	sum += weightTitle * s.text.Ratio(normalizeText(a.Title), normalizeText(b.Title))
	totalWeight += weightTitle

	sum += weightTheme * themeJaccard(a.ThemeIDs(), b.ThemeIDs())
	totalWeight += weightTheme

	// The temporal term is excluded, weight and all, when either side has no
	// parseable date. All other terms contribute zero but keep their weight.
	if !a.PubDate.IsZero() && !b.PubDate.IsZero() {
		sum += weightTemporal * temporalProximity(a, b)
		totalWeight += weightTemporal
	}

	sum += weightSource * sourceIdentity(a.FeedURL, b.FeedURL)
	totalWeight += weightSource

	score := sum / totalWeight

	return math.Round(score*10000) / 10000
}

// analysisText builds the normalized "{title} {content prefix}" string the
// content sub-score runs on.
func analysisText(a *model.Article) string {
	content := a.Content
	if runes := []rune(content); len(runes) > contentPrefixLen {
		content = string(runes[:contentPrefixLen])
	}
	return normalizeText(a.Title + " " + content)
}

// themeJaccard is the Jaccard index over the two theme-id sets, 0 if either
// is empty.
func themeJaccard(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	setA := make(map[string]struct{}, len(a))
	for _, id := range a {
		setA[id] = struct{}{}
	}
	setB := make(map[string]struct{}, len(b))
	for _, id := range b {
		setB[id] = struct{}{}
	}

	intersection := 0
	for id := range setA {
		if _, ok := setB[id]; ok {
			intersection++
		}
	}

	union := len(setA) + len(setB) - intersection
	if union == 0 {
		return 0
	}

	return float64(intersection) / float64(union)
}

// temporalProximity is a step function of the absolute day delta between the
// two publication dates.
func temporalProximity(a, b *model.Article) float64 {
	delta := a.PubDate.Sub(b.PubDate)
	if delta < 0 {
		delta = -delta
	}
	days := int(delta.Hours() / 24)

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

// sourceIdentity is 1 when the feed URLs match case-insensitively.
func sourceIdentity(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	if strings.EqualFold(a, b) {
		return 1.0
	}
	return 0
}
