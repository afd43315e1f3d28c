package app

import (
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/soulmegle/sessiond/internal/core"
)

// WaitingPool is the set of connections currently seeking a partner, keyed by
// connection identity. No ordering among entries; preference logic belongs to
// the matcher.
type WaitingPool struct {
	mu      sync.RWMutex
	entries map[core.ConnID]core.WaitingEntry
}

func NewWaitingPool() *WaitingPool {
	return &WaitingPool{entries: make(map[core.ConnID]core.WaitingEntry)}
}

// Enter upserts the entry: re-requesting pairing while already waiting just
// replaces the previous declaration.
func (p *WaitingPool) Enter(e core.WaitingEntry) error {
	if e.UserID == "" || e.Interests == nil {
		return core.ErrInvalidProfile
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.entries[e.Conn] = e
	log.Info().Str("module", "app.pool").Str("sid", string(e.Conn)).Str("user", string(e.UserID)).Msg("entered waiting pool")
	return nil
}

// OthersExcept returns a point-in-time copy of every entry except the
// caller's, so a concurrent pairing attempt never sees itself as a candidate.
func (p *WaitingPool) OthersExcept(sid core.ConnID) []core.WaitingEntry {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return lo.Values(lo.OmitByKeys(p.entries, []core.ConnID{sid}))
}

func (p *WaitingPool) Remove(sid core.ConnID) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.entries[sid]; ok {
		delete(p.entries, sid)
		log.Info().Str("module", "app.pool").Str("sid", string(sid)).Msg("left waiting pool")
	}
}

func (p *WaitingPool) Contains(sid core.ConnID) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	_, ok := p.entries[sid]
	return ok
}

func (p *WaitingPool) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.entries)
}
