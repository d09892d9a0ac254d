package model

// EvidenceKind tags the origin of a piece of evidence. The numeric order of
// the constants is the canonical fusion order: sequential bayesian updates are
// not commutative, so callers sort evidence by kind before fusing.
type EvidenceKind int

// Evidence kinds, in canonical fusion order.
const (
	EvidenceInitial EvidenceKind = iota
	EvidenceCorroboration
	EvidenceTemporal
	EvidenceThematic
)

// String returns the kind's wire name.
func (k EvidenceKind) String() string {
	switch k {
	case EvidenceInitial:
		return "initial_analysis"
	case EvidenceCorroboration:
		return "corroboration"
	case EvidenceTemporal:
		return "temporal"
	case EvidenceThematic:
		return "thematic"
	default:
		return "unknown"
	}
}

// Evidence is a single weighted input to bayesian fusion. Value is a
// normalized sentiment-like quantity in [0,1]; Confidence in [0,1] weights how
// strongly the evidence moves the posterior.
type Evidence struct {
	Kind       EvidenceKind
	Value      float64
	Confidence float64
}

// FusionResult is the output of a bayesian fusion pass.
type FusionResult struct {
	Posterior     float64
	Confidence    float64
	EvidenceCount int
}

// SentimentFusionResult is the sentiment-article variant's output: the
// posterior mapped back to the [-1,1] score domain plus a coarse three-way
// classification used only at this stage.
type SentimentFusionResult struct {
	Classification string
	Score          float64
	Confidence     float64
	EvidenceCount  int
}
