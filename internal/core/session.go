package core

import "github.com/soulmegle/sessiond/internal/domain"

// ConnID identifies one live transport connection. Assigned on upgrade,
// never reused for the lifetime of the process.
type ConnID string

// Frame is a raw outbound payload (JSON-encoded event).
type Frame []byte

// SignalConnection abstracts for a system messaging transport.
// Owned by the adapter; the adapter must Close() it.
type SignalConnection interface {
	TrySend(Frame) error
	Close()
}

// ClientSession binds an authenticated profile and its transport endpoint.
// This is what the registry stores and the relay fans out to.
type ClientSession interface {
	Profile() *domain.Profile
	Signal() SignalConnection
	UpdateProfile(*domain.Profile) ClientSession
	UpdateSignal(SignalConnection) ClientSession
}

type clientSession struct {
	profile *domain.Profile
	signal  SignalConnection
}

func NewClientSession() ClientSession {
	return &clientSession{}
}

func (s *clientSession) Profile() *domain.Profile { return s.profile }
func (s *clientSession) Signal() SignalConnection { return s.signal }

func (s *clientSession) UpdateProfile(p *domain.Profile) ClientSession {
	s.profile = p
	return s
}

func (s *clientSession) UpdateSignal(c SignalConnection) ClientSession {
	s.signal = c
	return s
}
