package app

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/soulmegle/sessiond/internal/core"
	"github.com/soulmegle/sessiond/internal/domain"
)

// MemberState is the per-connection lifecycle state:
// Unassigned -> Waiting -> Paired -> (Unassigned).
type MemberState int

const (
	StateIdle MemberState = iota
	StateWaiting
	StatePaired
)

func (s MemberState) String() string {
	switch s {
	case StateWaiting:
		return "waiting"
	case StatePaired:
		return "paired"
	default:
		return "idle"
	}
}

// Membership is a connection's pairing status at a point in time.
type Membership struct {
	State MemberState
	Room  domain.RoomID
}

type connEntry struct {
	Session core.ClientSession
	State   MemberState
	Room    domain.RoomID
	Cancel  context.CancelFunc
}

// Registry tracks every live transport connection and its current role.
// A connection never outlives its transport; Unregister is the only way out.
type Registry struct {
	mu    sync.RWMutex
	conns map[core.ConnID]*connEntry
}

func NewRegistry() *Registry {
	return &Registry{conns: make(map[core.ConnID]*connEntry)}
}

func (r *Registry) Register(sid core.ConnID, sess core.ClientSession, cancel context.CancelFunc) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.conns[sid]; ok {
		return core.ErrDuplicateConnection
	}
	r.conns[sid] = &connEntry{Session: sess, State: StateIdle, Cancel: cancel}
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Msg("connection registered")
	return nil
}

// Unregister removes the connection, fires its cancel func so both pumps shut
// down, and returns the prior membership so the caller can cascade cleanup.
// Idempotent: a second call reports not found, since disconnect may race with
// other teardown.
func (r *Registry) Unregister(sid core.ConnID) (Membership, bool) {
	r.mu.Lock()
	e, ok := r.conns[sid]
	if !ok {
		r.mu.Unlock()
		return Membership{}, false
	}
	delete(r.conns, sid)
	r.mu.Unlock()

	if e.Cancel != nil {
		e.Cancel()
	}
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Str("state", e.State.String()).Msg("connection unregistered")
	return Membership{State: e.State, Room: e.Room}, true
}

func (r *Registry) Session(sid core.ConnID) (core.ClientSession, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e, ok := r.conns[sid]; ok {
		return e.Session, true
	}
	return nil, false
}

func (r *Registry) Membership(sid core.ConnID) (Membership, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.conns[sid]
	if !ok {
		return Membership{}, false
	}
	return Membership{State: e.State, Room: e.Room}, true
}

// RoomOf is the O(1) connection-to-room index used on every negotiation and
// disconnect event instead of scanning the room store.
func (r *Registry) RoomOf(sid core.ConnID) (domain.RoomID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.conns[sid]
	if !ok || e.Room == "" {
		return "", false
	}
	return e.Room, true
}

func (r *Registry) SetWaiting(sid core.ConnID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.conns[sid]
	if !ok {
		return core.ErrUnknownConnection
	}
	e.State = StateWaiting
	return nil
}

func (r *Registry) SetRoom(sid core.ConnID, room domain.RoomID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.conns[sid]
	if !ok {
		return core.ErrUnknownConnection
	}
	e.State = StatePaired
	e.Room = room
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Str("room", string(room)).Msg("membership set")
	return nil
}

// ClearRoom drops the room association and returns the connection to idle.
// No-op for unknown connections: room teardown races with disconnect.
func (r *Registry) ClearRoom(sid core.ConnID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.conns[sid]; ok {
		e.State = StateIdle
		e.Room = ""
	}
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}
