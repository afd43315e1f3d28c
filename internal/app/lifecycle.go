package app

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/soulmegle/sessiond/internal/core"
	"github.com/soulmegle/sessiond/internal/domain"
)

// Lifecycle orchestrates registry, pool, rooms and matcher on connect,
// pairing, leave and disconnect. It holds no state of its own.
type Lifecycle struct {
	Registry *Registry
	Pool     *WaitingPool
	Rooms    *RoomStore
	Matcher  core.Matcher
}

// PairResult describes a freshly created room from both members' point of
// view. PartnerOfA is what A is told about B and vice versa: identity plus
// shared interests only, never the full profile.
type PairResult struct {
	RoomID     domain.RoomID
	A, B       core.ConnID
	PartnerOfA domain.PublicProfile
	PartnerOfB domain.PublicProfile
	Shared     []string
}

func (l *Lifecycle) Connect(sid core.ConnID, sess core.ClientSession, cancel context.CancelFunc) error {
	return l.Registry.Register(sid, sess, cancel)
}

// RequestPairing moves the connection into the waiting pool and attempts a
// match right away. A nil result with a nil error means "keep waiting". The
// matcher call runs on a snapshot with no store lock held; its verdict is
// applied through a fresh atomic Create that re-validates both parties.
func (l *Lifecycle) RequestPairing(ctx context.Context, sid core.ConnID, profile *domain.Profile) (*PairResult, error) {
	if err := profile.Validate(); err != nil {
		log.Warn().Err(err).Str("module", "app.lifecycle").Str("sid", string(sid)).Msg("rejected pairing request")
		return nil, core.ErrInvalidProfile
	}
	m, ok := l.Registry.Membership(sid)
	if !ok {
		return nil, core.ErrUnknownConnection
	}
	if m.State == StatePaired {
		return nil, core.ErrAlreadyPaired
	}

	if sess, found := l.Registry.Session(sid); found {
		sess.UpdateProfile(profile)
	}

	entry := core.WaitingEntry{
		Conn:           sid,
		UserID:         profile.ID,
		Email:          profile.Email,
		Interests:      profile.Interests,
		InterestVector: profile.InterestVector,
	}
	if err := l.Pool.Enter(entry); err != nil {
		return nil, err
	}
	if err := l.Registry.SetWaiting(sid); err != nil {
		l.Pool.Remove(sid)
		return nil, err
	}

	others := l.Pool.OthersExcept(sid)
	if len(others) == 0 {
		return nil, nil
	}

	verdict, err := l.Matcher.RequestMatch(ctx, entry, others)
	if err != nil {
		// The candidate stays in the pool; matchmaking is retryable by the
		// client simply asking again.
		log.Error().Err(err).Str("module", "app.lifecycle").Str("sid", string(sid)).Msg("match attempt failed")
		return nil, err
	}
	if !verdict.Matched {
		return nil, nil
	}

	return l.pairUp(sid, entry, verdict)
}

func (l *Lifecycle) pairUp(sid core.ConnID, candidate core.WaitingEntry, verdict core.Verdict) (*PairResult, error) {
	partner := verdict.Partner.Conn

	// Both participants must still be registered: the matcher verdict may
	// arrive after either side has disconnected or been paired elsewhere.
	roomID, err := l.Rooms.Create(sid, partner)
	if err != nil {
		if errors.Is(err, core.ErrSelfPairing) {
			return nil, err
		}
		log.Warn().Err(err).Str("module", "app.lifecycle").Str("sid", string(sid)).Str("partner", string(partner)).Msg("verdict discarded")
		return nil, nil
	}

	shared := verdict.SharedInterests
	if shared == nil {
		shared = lo.Intersect(candidate.Interests, verdict.Partner.Interests)
	}

	partnerProfile := domain.Profile{
		ID:        verdict.Partner.UserID,
		Email:     verdict.Partner.Email,
		Interests: verdict.Partner.Interests,
	}
	ownProfile := domain.Profile{
		ID:        candidate.UserID,
		Email:     candidate.Email,
		Interests: candidate.Interests,
	}

	return &PairResult{
		RoomID:     roomID,
		A:          sid,
		B:          partner,
		PartnerOfA: partnerProfile.Public(shared),
		PartnerOfB: ownProfile.Public(shared),
		Shared:     shared,
	}, nil
}

// CancelWaiting is the explicit Waiting -> Unassigned transition.
func (l *Lifecycle) CancelWaiting(sid core.ConnID) {
	l.Pool.Remove(sid)
	if m, ok := l.Registry.Membership(sid); ok && m.State == StateWaiting {
		l.Registry.ClearRoom(sid)
	}
}

// JoinRoom authorizes a client re-attaching to its own room and returns the
// partner so the adapter can notify both sides. Membership is established
// only through pairing; join-by-id for a foreign room is refused so a guessed
// or intercepted room id buys nothing.
func (l *Lifecycle) JoinRoom(sid core.ConnID, roomID domain.RoomID) (core.ConnID, error) {
	a, b, ok := l.Rooms.Members(roomID)
	if !ok {
		return "", core.ErrRoomNotFound
	}
	if sid != a && sid != b {
		return "", core.ErrNotRoomMember
	}
	l.Rooms.Touch(roomID)
	partner := a
	if sid == a {
		partner = b
	}
	return partner, nil
}

// LeaveRoom is the explicit Paired -> Unassigned transition. The returned
// partner is empty when the room was already gone (leave races disconnect).
func (l *Lifecycle) LeaveRoom(sid core.ConnID, roomID domain.RoomID) (core.ConnID, error) {
	a, b, ok := l.Rooms.Members(roomID)
	if !ok {
		return "", core.ErrRoomNotFound
	}
	if sid != a && sid != b {
		return "", core.ErrNotRoomMember
	}
	partner, ok := l.Rooms.Dissolve(roomID, sid)
	if !ok {
		return "", nil
	}
	log.Info().Str("module", "app.lifecycle").Str("sid", string(sid)).Str("room", string(roomID)).Msg("left room")
	return partner, nil
}

// Disconnect handles transport loss in any state: unregister, then cascade
// into pool eviction and room teardown, each a no-op if not applicable.
// Returns the abandoned partner, if there was one, so the adapter can notify.
func (l *Lifecycle) Disconnect(sid core.ConnID) (partner core.ConnID, room domain.RoomID, hadRoom bool) {
	membership, ok := l.Registry.Unregister(sid)
	if !ok {
		return "", "", false
	}
	l.Pool.Remove(sid)
	if membership.State != StatePaired {
		return "", "", false
	}
	p, dissolved := l.Rooms.Dissolve(membership.Room, sid)
	if !dissolved {
		return "", "", false
	}
	log.Info().Str("module", "app.lifecycle").Str("sid", string(sid)).Str("room", string(membership.Room)).Msg("disconnected while paired")
	return p, membership.Room, true
}
