// Package confirm implements the timed accept/reject gate that
// precedes every room lifecycle mutation.
//
// A Session is a one-shot state machine: Pending transitions exactly
// once to Accepted, Rejected, or TimedOut, all terminal. The UI layer
// presenting the two buttons is an external collaborator; it resolves
// the session through Resolve while the initiating flow blocks in
// Await.
package confirm

import (
	"context"
	"sync"
	"time"

	"chat-relay/domain"

	"github.com/google/uuid"
)

// DefaultTimeout is how long a prompt stays actionable.
const DefaultTimeout = 30 * time.Second

type Outcome int

const (
	Pending Outcome = iota
	Accepted
	Rejected
	TimedOut
)

func (o Outcome) String() string {
	switch o {
	case Accepted:
		return "accepted"
	case Rejected:
		return "rejected"
	case TimedOut:
		return "timed_out"
	default:
		return "pending"
	}
}

// Session is one nonce-keyed confirmation. Safe for concurrent use:
// the resolving action arrives on the platform dispatch goroutine
// while the flow goroutine waits in Await.
type Session struct {
	nonce string

	mu      sync.Mutex
	outcome Outcome
	ic      domain.Interaction
	done    chan struct{}
}

func NewSession() *Session {
	return &Session{
		nonce: uuid.NewString(),
		done:  make(chan struct{}),
	}
}

// AcceptID and RejectID tag the two actions with the session nonce so
// a click can never resolve a session it was not minted for.
func (s *Session) AcceptID() string { return s.nonce + ":confirm" }
func (s *Session) RejectID() string { return s.nonce + ":cancel" }

// Resolve applies an incoming action to the session. It reports false
// when the action belongs to another session or arrives after the
// session already reached a terminal state; such actions are ignored.
// The triggering interaction is captured for follow-up use (opening a
// submission form from the same interactive context).
func (s *Session) Resolve(actionID string, ic domain.Interaction) bool {
	var out Outcome
	switch actionID {
	case s.AcceptID():
		out = Accepted
	case s.RejectID():
		out = Rejected
	default:
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.outcome != Pending {
		return false
	}
	s.outcome = out
	s.ic = ic
	close(s.done)
	return true
}

// Await blocks until the session resolves or the timeout elapses,
// whichever comes first, and returns the terminal outcome. Context
// cancellation counts as a timeout: the session has no other external
// cancel signal.
func (s *Session) Await(ctx context.Context, timeout time.Duration) Outcome {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-s.done:
	case <-timer.C:
		s.expire()
	case <-ctx.Done():
		s.expire()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.outcome
}

func (s *Session) expire() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.outcome == Pending {
		s.outcome = TimedOut
		close(s.done)
	}
}

// Interaction returns the interaction that resolved the session. Only
// meaningful after an Accepted or Rejected outcome.
func (s *Session) Interaction() domain.Interaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ic
}
