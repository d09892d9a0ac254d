package similarity

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/geopulse/coherence/internal/model"
)

func testArticle(id int64) model.Article {
	return model.Article{
		ID:      id,
		Title:   "Ceasefire agreement signed after marathon talks",
		Content: "Negotiators announced a ceasefire agreement early Monday after a week of marathon talks in the capital.",
		FeedURL: "https://news.example/world",
		PubDate: time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC),
		Themes:  []model.Theme{{ID: "conflict", Confidence: 0.9}, {ID: "diplomacy", Confidence: 0.8}},
	}
}

func TestScorerIdenticalArticles(t *testing.T) {
	scorer := NewScorer(NewTextSimilarity("sequence"))
	a := testArticle(1)
	b := testArticle(2)

	assert.InDelta(t, 1.0, scorer.Score(&a, &b), 1e-9)
}

func TestScorerSymmetry(t *testing.T) {
	scorer := NewScorer(NewTextSimilarity("sequence"))
	a := testArticle(1)
	b := testArticle(2)
	b.Title = "Markets rally as sanctions ease"
	b.Content = "Regional markets rallied on Tuesday after sanctions on key exporters were eased."
	b.FeedURL = "https://other.example/business"
	b.Themes = []model.Theme{{ID: "economy", Confidence: 0.7}}

	assert.InDelta(t, scorer.Score(&a, &b), scorer.Score(&b, &a), 1e-9)
}

func TestScorerBounds(t *testing.T) {
	scorer := NewScorer(NewTextSimilarity("sequence"))
	a := testArticle(1)
	b := model.Article{ID: 2}

	score := scorer.Score(&a, &b)
	assert.GreaterOrEqual(t, score, 0.0)
	assert.LessOrEqual(t, score, 1.0)
}

func TestScorerTemporalStep(t *testing.T) {
	scorer := NewScorer(NewTextSimilarity("sequence"))

	tests := []struct {
		name  string
		delta time.Duration
		want  float64
	}{
		{name: "within one hour", delta: time.Hour, want: 1.0},
		{name: "one day apart", delta: 25 * time.Hour, want: 0.99},
		{name: "three days apart", delta: 3 * 24 * time.Hour, want: 0.97},
		{name: "five days apart", delta: 5 * 24 * time.Hour, want: 0.95},
		{name: "ten days apart", delta: 10 * 24 * time.Hour, want: 0.93},
		{name: "a month apart", delta: 30 * 24 * time.Hour, want: 0.91},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := testArticle(1)
			b := testArticle(2)
			b.PubDate = a.PubDate.Add(tt.delta)
			assert.InDelta(t, tt.want, scorer.Score(&a, &b), 1e-9)
		})
	}
}

func TestScorerMissingDatesRenormalizes(t *testing.T) {
	scorer := NewScorer(NewTextSimilarity("sequence"))

	// Two otherwise identical articles with no parseable dates must still score
	// a perfect 1.0: the temporal weight is dropped, not zeroed.
	a := testArticle(1)
	b := testArticle(2)
	a.PubDate = time.Time{}
	assert.InDelta(t, 1.0, scorer.Score(&a, &b), 1e-9)

	b.PubDate = time.Time{}
	assert.InDelta(t, 1.0, scorer.Score(&a, &b), 1e-9)
}

func TestScorerSourceMismatch(t *testing.T) {
	scorer := NewScorer(NewTextSimilarity("sequence"))
	a := testArticle(1)
	b := testArticle(2)
	b.FeedURL = "https://rival.example/world"

	assert.InDelta(t, 0.95, scorer.Score(&a, &b), 1e-9)

	// Case difference alone is not a mismatch.
	b.FeedURL = "HTTPS://NEWS.EXAMPLE/WORLD"
	assert.InDelta(t, 1.0, scorer.Score(&a, &b), 1e-9)
}

func TestScorerEmptyThemes(t *testing.T) {
	scorer := NewScorer(NewTextSimilarity("sequence"))
	a := testArticle(1)
	b := testArticle(2)
	b.Themes = nil

	// Theme term contributes zero but keeps its weight.
	assert.InDelta(t, 0.85, scorer.Score(&a, &b), 1e-9)
}

func TestThemeJaccard(t *testing.T) {
	tests := []struct {
		name string
		a    []string
		b    []string
		want float64
	}{
		{name: "both empty", a: nil, b: nil, want: 0},
		{name: "one empty", a: []string{"x"}, b: nil, want: 0},
		{name: "identical", a: []string{"a", "b"}, b: []string{"b", "a"}, want: 1},
		{name: "half overlap", a: []string{"a", "b"}, b: []string{"b", "c"}, want: 1.0 / 3.0},
		{name: "disjoint", a: []string{"a"}, b: []string{"b"}, want: 0},
		{name: "duplicates collapse", a: []string{"a", "a"}, b: []string{"a"}, want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, themeJaccard(tt.a, tt.b), 1e-9)
		})
	}
}

func TestScorerRoundsToFourDecimals(t *testing.T) {
	scorer := NewScorer(NewTextSimilarity("sequence"))
	a := testArticle(1)
	b := testArticle(2)
	b.Title = "Ceasefire deal reached after long negotiations"
	b.Content = "A deal ending hostilities was reached after extended negotiations, officials said."

	score := scorer.Score(&a, &b)
	assert.InDelta(t, math.Round(score*10000), score*10000, 1e-9)
}
