package advancement

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

// Phase is a step of a single advancement attempt.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseAuthorizing
	PhaseInvoking
	PhaseSucceeded
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseAuthorizing:
		return "authorizing"
	case PhaseInvoking:
		return "invoking"
	case PhaseSucceeded:
		return "succeeded"
	case PhaseFailed:
		return "failed"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// transitions has no edge back into Invoking: a retry is a new Attempt.
var transitions = map[Phase][]Phase{
	PhaseIdle:        {PhaseAuthorizing},
	PhaseAuthorizing: {PhaseInvoking, PhaseFailed},
	PhaseInvoking:    {PhaseSucceeded, PhaseFailed},
	PhaseSucceeded:   {PhaseIdle},
	PhaseFailed:      {PhaseIdle},
}

// Attempt tracks one request through the workflow. It is never reused.
type Attempt struct {
	ID        uuid.UUID
	StartedAt time.Time
	EndedAt   time.Time

	phase   Phase
	history []Phase
	clock   clockwork.Clock
}

func newAttempt(clock clockwork.Clock) *Attempt {
	return &Attempt{
		ID:        uuid.New(),
		StartedAt: clock.Now(),
		phase:     PhaseIdle,
		history:   []Phase{PhaseIdle},
		clock:     clock,
	}
}

// Phase returns the current phase.
func (a *Attempt) Phase() Phase {
	return a.phase
}

// History returns every phase visited, in order.
func (a *Attempt) History() []Phase {
	out := make([]Phase, len(a.history))
	copy(out, a.history)
	return out
}

// Duration is the time from creation to the return to Idle.
func (a *Attempt) Duration() time.Duration {
	if a.EndedAt.IsZero() {
		return a.clock.Since(a.StartedAt)
	}
	return a.EndedAt.Sub(a.StartedAt)
}

func (a *Attempt) to(next Phase) error {
	for _, allowed := range transitions[a.phase] {
		if allowed == next {
			a.phase = next
			a.history = append(a.history, next)
			if next == PhaseIdle {
				a.EndedAt = a.clock.Now()
			}
			return nil
		}
	}
	return fmt.Errorf("invalid attempt transition %s -> %s", a.phase, next)
}

// finish records the terminal phase for r and returns to Idle.
func (a *Attempt) finish(r Result) error {
	terminal := PhaseSucceeded
	if !r.Succeeded() {
		terminal = PhaseFailed
	}
	if err := a.to(terminal); err != nil {
		return err
	}
	return a.to(PhaseIdle)
}
