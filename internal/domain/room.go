package domain

import "time"

type RoomID string

// Room is an ephemeral two-party relay session. Exactly two distinct members
// for its whole lifetime; it dies when either of them leaves.
type Room struct {
	ID           RoomID
	MemberA      string
	MemberB      string
	LastActivity time.Time
}

// Other returns the member that is not sid, assuming sid is one of the two.
func (r *Room) Other(sid string) string {
	if r.MemberA == sid {
		return r.MemberB
	}
	return r.MemberA
}

// Has reports whether sid is one of the two members.
func (r *Room) Has(sid string) bool {
	return r.MemberA == sid || r.MemberB == sid
}
