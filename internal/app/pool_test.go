package app

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/soulmegle/sessiond/internal/core"
	"github.com/soulmegle/sessiond/internal/domain"
)

func entry(sid core.ConnID, user string, interests ...string) core.WaitingEntry {
	if interests == nil {
		interests = []string{}
	}
	return core.WaitingEntry{
		Conn:      sid,
		UserID:    domain.UserID(user),
		Email:     user + "@example.com",
		Interests: interests,
	}
}

func TestPool_Enter_RejectsInvalidProfile(t *testing.T) {
	req := require.New(t)
	pool := NewWaitingPool()

	err := pool.Enter(core.WaitingEntry{Conn: newConn(), Interests: []string{"music"}})
	req.ErrorIs(err, core.ErrInvalidProfile)

	err = pool.Enter(core.WaitingEntry{Conn: newConn(), UserID: "alice"})
	req.ErrorIs(err, core.ErrInvalidProfile)

	req.Zero(pool.Len())
}

func TestPool_Enter_Upserts(t *testing.T) {
	req := require.New(t)
	pool := NewWaitingPool()
	sid := newConn()

	req.NoError(pool.Enter(entry(sid, "alice", "movies")))
	req.NoError(pool.Enter(entry(sid, "alice", "movies", "music")))

	// A connection appears at most once; re-entering replaces the entry.
	req.Equal(1, pool.Len())
	others := pool.OthersExcept(newConn())
	req.Len(others, 1)
	req.Equal([]string{"movies", "music"}, others[0].Interests)
}

func TestPool_OthersExcept_OmitsCaller(t *testing.T) {
	req := require.New(t)
	pool := NewWaitingPool()
	alice := newConn()
	bob := newConn()
	req.NoError(pool.Enter(entry(alice, "alice", "movies")))
	req.NoError(pool.Enter(entry(bob, "bob", "music")))

	others := pool.OthersExcept(alice)
	req.Len(others, 1)
	req.Equal(bob, others[0].Conn)

	// The snapshot is a copy: mutating the pool afterwards must not change it.
	pool.Remove(bob)
	req.Len(others, 1)
}

func TestPool_Remove_Idempotent(t *testing.T) {
	req := require.New(t)
	pool := NewWaitingPool()
	sid := newConn()
	req.NoError(pool.Enter(entry(sid, "alice", "movies")))

	pool.Remove(sid)
	pool.Remove(sid)
	req.False(pool.Contains(sid))
	req.Zero(pool.Len())
}
