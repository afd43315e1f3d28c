package app

import (
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/soulmegle/sessiond/internal/core"
	"github.com/soulmegle/sessiond/internal/domain"
)

// RoomStore owns the set of active two-party rooms. Create and Dissolve are
// the only mutating operations and both serialize through the store lock, so
// pairing is never observable half done. The store lock is the outermost one:
// pool and registry locks are only ever taken underneath it, never the other
// way around.
type RoomStore struct {
	mu    sync.RWMutex
	rooms map[domain.RoomID]*domain.Room
	seq   uint64

	pool *WaitingPool
	reg  *Registry
}

func NewRoomStore(pool *WaitingPool, reg *Registry) *RoomStore {
	return &RoomStore{
		rooms: make(map[domain.RoomID]*domain.Room),
		pool:  pool,
		reg:   reg,
	}
}

// deriveRoomID stays a pure function of the two member identities, with a
// monotonic sequence mixed in so an identity reused after a reconnect can
// never resurrect an old room id.
func (s *RoomStore) deriveRoomID(a, b core.ConnID) domain.RoomID {
	s.seq++
	return domain.RoomID(fmt.Sprintf("%s-%s-%d", a, b, s.seq))
}

// Create pairs a and b: both leave the waiting pool, the room is inserted and
// both memberships are set, all under the store lock. Any validation failure
// leaves every table untouched.
func (s *RoomStore) Create(a, b core.ConnID) (domain.RoomID, error) {
	if a == b {
		return "", core.ErrSelfPairing
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, sid := range [2]core.ConnID{a, b} {
		m, ok := s.reg.Membership(sid)
		if !ok {
			return "", fmt.Errorf("%s: %w", sid, core.ErrUnknownConnection)
		}
		if m.State == StatePaired {
			return "", fmt.Errorf("%s: %w", sid, core.ErrAlreadyPaired)
		}
		if !s.pool.Contains(sid) {
			return "", fmt.Errorf("%s no longer waiting: %w", sid, core.ErrUnknownConnection)
		}
	}

	s.pool.Remove(a)
	s.pool.Remove(b)

	id := s.deriveRoomID(a, b)
	s.rooms[id] = &domain.Room{
		ID:           id,
		MemberA:      string(a),
		MemberB:      string(b),
		LastActivity: time.Now(),
	}
	// Registered state was checked above under the store lock; these cannot fail.
	_ = s.reg.SetRoom(a, id)
	_ = s.reg.SetRoom(b, id)

	log.Info().Str("module", "app.rooms").Str("room", string(id)).Str("a", string(a)).Str("b", string(b)).Msg("room created")
	return id, nil
}

// Serialized runs fn with the live room while the store lock is held, so
// everything fn does is atomic with respect to every other room mutation.
// fn must not call back into the store. Reports whether the room exists.
func (s *RoomStore) Serialized(id domain.RoomID, fn func(*domain.Room)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	room, ok := s.rooms[id]
	if !ok {
		return false
	}
	fn(room)
	return true
}

// IsMember reports whether sid is one of the room's two members.
func (s *RoomStore) IsMember(id domain.RoomID, sid core.ConnID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	room, ok := s.rooms[id]
	return ok && room.Has(string(sid))
}

func (s *RoomStore) Members(id domain.RoomID) (a, b core.ConnID, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	room, found := s.rooms[id]
	if !found {
		return "", "", false
	}
	return core.ConnID(room.MemberA), core.ConnID(room.MemberB), true
}

// Touch records activity for future idle reaping.
func (s *RoomStore) Touch(id domain.RoomID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if room, ok := s.rooms[id]; ok {
		room.LastActivity = time.Now()
	}
}

func (s *RoomStore) LastActivity(id domain.RoomID) (time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	room, ok := s.rooms[id]
	if !ok {
		return time.Time{}, false
	}
	return room.LastActivity, true
}

// Dissolve removes the room and clears both members' membership, returning
// the caller's partner. Dissolving an already-removed room reports not found:
// disconnect and explicit leave are allowed to race.
func (s *RoomStore) Dissolve(id domain.RoomID, caller core.ConnID) (core.ConnID, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	room, ok := s.rooms[id]
	if !ok {
		return "", false
	}
	delete(s.rooms, id)
	s.reg.ClearRoom(core.ConnID(room.MemberA))
	s.reg.ClearRoom(core.ConnID(room.MemberB))
	partner := core.ConnID(room.Other(string(caller)))
	log.Info().Str("module", "app.rooms").Str("room", string(id)).Str("caller", string(caller)).Msg("room dissolved")
	return partner, true
}

func (s *RoomStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rooms)
}
