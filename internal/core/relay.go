package core

import (
	"encoding/json"
	"time"

	"github.com/soulmegle/sessiond/internal/domain"
)

// NegotiationKind tags an opaque peer-negotiation payload. The core never
// looks inside the payload itself.
type NegotiationKind string

const (
	KindOffer     NegotiationKind = "offer"
	KindAnswer    NegotiationKind = "answer"
	KindCandidate NegotiationKind = "ice_candidate"
)

// ChatMessage is a relayed chat payload. The timestamp is stamped by the
// relay, not the sender.
type ChatMessage struct {
	RoomID    domain.RoomID `json:"roomId"`
	SenderID  ConnID        `json:"senderId"`
	Content   string        `json:"content"`
	Timestamp time.Time     `json:"timestamp"`
}

// ChatDelivery is the relay's plan for one accepted chat message: the stamped
// message plus both recipients. Chat is a shared transcript, so the sender is
// a recipient too.
type ChatDelivery struct {
	Message    ChatMessage
	Recipients [2]ConnID
}

// NegotiationDelivery is the plan for one accepted negotiation message:
// verbatim payload, partner only, never echoed to the sender.
type NegotiationDelivery struct {
	Kind    NegotiationKind
	Payload json.RawMessage
	To      ConnID
}
