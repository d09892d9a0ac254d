package model

// OutcomeState says how far an operation got before settling on its value.
type OutcomeState int

// Outcome states.
const (
	// OutcomeOK means the operation completed with full inputs.
	OutcomeOK OutcomeState = iota
	// OutcomeDegraded means the operation completed on reduced inputs; the
	// value is usable but was computed with less evidence than intended.
	OutcomeDegraded
	// OutcomeFailed means no usable value was produced and the caller should
	// fall back to its previous state.
	OutcomeFailed
)

// Outcome carries the soft-fail policy as an explicit value: every pipeline
// stage degrades to a fallback rather than aborting the batch, and the state
// records which path was taken.
type Outcome struct {
	Reason string
	State  OutcomeState
}

// Ok returns a clean outcome.
func Ok() Outcome {
	return Outcome{State: OutcomeOK}
}

// Degraded returns an outcome noting why inputs were reduced.
func Degraded(reason string) Outcome {
	return Outcome{State: OutcomeDegraded, Reason: reason}
}

// Failed returns a terminal outcome for one unit of work.
func Failed(reason string) Outcome {
	return Outcome{State: OutcomeFailed, Reason: reason}
}
