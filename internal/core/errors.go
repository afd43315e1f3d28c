package core

import "errors"

// Every error here is recoverable and local to the offending request. It is
// reported back to the originating connection as an error event; nothing in
// this taxonomy may terminate the process or touch another room.
var (
	ErrDuplicateConnection  = errors.New("connection already registered")
	ErrUnknownConnection    = errors.New("unknown connection")
	ErrInvalidProfile       = errors.New("invalid profile")
	ErrSelfPairing          = errors.New("cannot pair a connection with itself")
	ErrNotRoomMember        = errors.New("not a room member")
	ErrEmptyContent         = errors.New("empty message content")
	ErrInvalidMatchResponse = errors.New("matcher returned an unknown candidate")
	ErrMatcherUnavailable   = errors.New("matching service unavailable")
	ErrAlreadyPaired        = errors.New("already paired")
	ErrRoomNotFound         = errors.New("room not found")
)
