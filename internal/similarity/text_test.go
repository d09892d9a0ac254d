package similarity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSequenceSimilarityRatio(t *testing.T) {
	tests := []struct {
		name string
		a    string
		b    string
		want float64
	}{
		{name: "both empty", a: "", b: "", want: 1.0},
		{name: "one empty", a: "hello", b: "", want: 0.0},
		{name: "identical", a: "ceasefire holds", b: "ceasefire holds", want: 1.0},
		{name: "disjoint", a: "abc", b: "xyz", want: 0.0},
		{name: "half overlap", a: "ab", b: "ax", want: 0.5},
	}

	s := &sequenceSimilarity{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, s.Ratio(tt.a, tt.b), 1e-9)
		})
	}
}

func TestTextSimilaritySymmetry(t *testing.T) {
	pairs := [][2]string{
		{"sanctions announced against exporters", "exporters face new sanctions"},
		{"border incident near crossing", "talks stall over border incident"},
		{"", "anything"},
	}

	for _, backend := range []string{"sequence", "dice"} {
		sim := NewTextSimilarity(backend)
		for _, p := range pairs {
			ab := sim.Ratio(p[0], p[1])
			ba := sim.Ratio(p[1], p[0])
			assert.InDelta(t, ab, ba, 1e-9, "backend %s must be symmetric", backend)
			assert.GreaterOrEqual(t, ab, 0.0)
			assert.LessOrEqual(t, ab, 1.0)
		}
	}
}

func TestNewTextSimilarityBackendSelection(t *testing.T) {
	assert.IsType(t, &diceSimilarity{}, NewTextSimilarity("dice"))
	assert.IsType(t, &diceSimilarity{}, NewTextSimilarity("DICE"))
	assert.IsType(t, &sequenceSimilarity{}, NewTextSimilarity(""))
	assert.IsType(t, &sequenceSimilarity{}, NewTextSimilarity("unknown"))
}

func TestNormalizeText(t *testing.T) {
	assert.Equal(t, "peace talks resume", normalizeText("  Peace   TALKS\tresume \n"))
	assert.Equal(t, "", normalizeText("   "))
}
