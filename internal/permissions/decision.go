package permissions

// Outcome is the terminal state of a permission check. Every check walks
// idle → pending → granted|denied|errored; errored is treated exactly like
// denied by all callers.
type Outcome string

const (
	OutcomeIdle    Outcome = "idle"
	OutcomePending Outcome = "pending"
	OutcomeGranted Outcome = "granted"
	OutcomeDenied  Outcome = "denied"
	OutcomeErrored Outcome = "errored"
)

// Decision is a derived, ephemeral authorization result. It is never
// persisted. Err is informational: a set Err never loosens the decision.
type Decision struct {
	Outcome Outcome
	Epoch   int64
	Err     error
}

// Allowed is true only for a granted decision. Errored and denied are
// indistinguishable to callers; denial must never be inferred from the
// absence of an error.
func (d Decision) Allowed() bool {
	return d.Outcome == OutcomeGranted
}

// Terminal reports whether the check finished, so UIs never spin forever.
func (d Decision) Terminal() bool {
	switch d.Outcome {
	case OutcomeGranted, OutcomeDenied, OutcomeErrored:
		return true
	}
	return false
}

// StaleFor reports whether the decision was computed under an older
// impersonation epoch than the current one and must be discarded.
func (d Decision) StaleFor(currentEpoch int64) bool {
	return d.Epoch != currentEpoch
}

func granted(epoch int64) Decision {
	return Decision{Outcome: OutcomeGranted, Epoch: epoch}
}

func denied(epoch int64) Decision {
	return Decision{Outcome: OutcomeDenied, Epoch: epoch}
}

func errored(epoch int64, err error) Decision {
	return Decision{Outcome: OutcomeErrored, Epoch: epoch, Err: err}
}
