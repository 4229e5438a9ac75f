package diigo

import (
	"math"
	"time"
)

// Disposition classifies one attempt's outcome for the retry machine.
type Disposition int

const (
	// DispositionSuccess ends the operation with a payload.
	DispositionSuccess Disposition = iota
	// DispositionRetry marks a transient failure (400, 503, timeout).
	DispositionRetry
	// DispositionTerminal ends the operation with a typed error.
	DispositionTerminal
)

// Classify maps an HTTP status to its retry disposition. Timeouts are
// classified by the caller (they produce no status); any non-timeout
// transport fault is terminal.
func Classify(status int) Disposition {
	switch status {
	case 200:
		return DispositionSuccess
	case 400, 503:
		return DispositionRetry
	default:
		return DispositionTerminal
	}
}

// State is the retry machine's control state.
type State int

const (
	// StateAttempting means another attempt may be issued.
	StateAttempting State = iota
	// StateSucceeded means the last attempt produced a payload.
	StateSucceeded
	// StateFailedTerminal means the last attempt failed permanently.
	StateFailedTerminal
	// StateFailedExhausted means transient failures used up the budget.
	StateFailedExhausted
)

// Machine drives the bounded-retry control flow without performing any
// I/O itself: the client feeds it dispositions and asks for backoff
// durations, which keeps the termination logic testable in isolation.
type Machine struct {
	maxAttempts int
	base        float64
	attempt     int
	state       State
}

// NewMachine builds a retry machine with the given attempt budget and
// backoff base.
func NewMachine(maxAttempts int, base float64) *Machine {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	if base <= 0 {
		base = 2.0
	}
	return &Machine{maxAttempts: maxAttempts, base: base}
}

// State returns the current control state.
func (m *Machine) State() State { return m.state }

// Attempt returns the zero-based index of the attempt currently allowed.
func (m *Machine) Attempt() int { return m.attempt }

// MaxAttempts returns the attempt budget.
func (m *Machine) MaxAttempts() int { return m.maxAttempts }

// Backoff returns the deterministic wait before the attempt following
// the given index: base^attempt seconds, no jitter.
func (m *Machine) Backoff(attempt int) time.Duration {
	return time.Duration(math.Pow(m.base, float64(attempt)) * float64(time.Second))
}

// Observe transitions the machine on one attempt's disposition and
// returns the new state. A retry disposition on the final attempt moves
// to StateFailedExhausted instead of allowing another attempt.
func (m *Machine) Observe(d Disposition) State {
	if m.state != StateAttempting {
		return m.state
	}
	switch d {
	case DispositionSuccess:
		m.state = StateSucceeded
	case DispositionTerminal:
		m.state = StateFailedTerminal
	case DispositionRetry:
		if m.attempt+1 >= m.maxAttempts {
			m.state = StateFailedExhausted
		} else {
			m.attempt++
		}
	}
	return m.state
}
