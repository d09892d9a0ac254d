// Package similarity computes multi-factor similarity between articles.
package similarity

import (
	"strings"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
)

// TextSimilarity computes a normalized similarity in [0,1] between two
// already-normalized strings. Implementations must be symmetric.
type TextSimilarity interface {
	Ratio(a, b string) float64
}

// NewTextSimilarity returns the backend for the given name. The sequence
// backend is always available; "dice" selects the faster bigram metric.
func NewTextSimilarity(backend string) TextSimilarity {
	switch strings.ToLower(backend) {
	case "dice":
		return &diceSimilarity{metric: metrics.NewSorensenDice()}
	default:
		return &sequenceSimilarity{}
	}
}

// sequenceSimilarity is the required fallback backend: a longest common
// subsequence ratio, 2*LCS(a,b) / (len(a)+len(b)).
type sequenceSimilarity struct{}

func (s *sequenceSimilarity) Ratio(a, b string) float64 {
	if a == "" && b == "" {
		return 1.0
	}
	if a == "" || b == "" {
		return 0.0
	}
	if a == b {
		return 1.0
	}

	ra := []rune(a)
	rb := []rune(b)
	lcs := lcsLength(ra, rb)

	return 2.0 * float64(lcs) / float64(len(ra)+len(rb))
}

// lcsLength computes the longest common subsequence length with a two-row DP
// table to keep memory at O(min side).
func lcsLength(a, b []rune) int {
	if len(b) > len(a) {
		a, b = b, a
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)

	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				curr[j] = prev[j-1] + 1
			} else if prev[j] >= curr[j-1] {
				curr[j] = prev[j]
			} else {
				curr[j] = curr[j-1]
			}
		}
		prev, curr = curr, prev
	}

	return prev[len(b)]
}

// diceSimilarity is the optional faster backend, a bigram Sorensen-Dice
// coefficient.
type diceSimilarity struct {
	metric *metrics.SorensenDice
}

func (s *diceSimilarity) Ratio(a, b string) float64 {
	if a == "" && b == "" {
		return 1.0
	}
	if a == "" || b == "" {
		return 0.0
	}
	return strutil.Similarity(a, b, s.metric)
}

// normalizeText case-folds and collapses whitespace so the ratio ignores
// formatting noise.
func normalizeText(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
