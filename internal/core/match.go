package core

import (
	"context"

	"github.com/soulmegle/sessiond/internal/domain"
)

// WaitingEntry is one connection declaring intent to be paired. It is also
// the wire shape the matching service receives, so json tags matter.
type WaitingEntry struct {
	Conn           ConnID        `json:"connectionId"`
	UserID         domain.UserID `json:"userId"`
	Email          string        `json:"email"`
	Interests      []string      `json:"interests"`
	InterestVector []float64     `json:"interestVector,omitempty"`
}

// Verdict is the matcher's decision for one pairing attempt.
type Verdict struct {
	Matched         bool
	Partner         WaitingEntry
	SharedInterests []string
}

var NoMatch = Verdict{}

// Matcher is the external matching service seen from the core: one blocking
// call, snapshot in, at most one partner out. Implementations must not be
// called with any store lock held.
type Matcher interface {
	RequestMatch(ctx context.Context, candidate WaitingEntry, others []WaitingEntry) (Verdict, error)
}
