package app

import (
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/soulmegle/sessiond/internal/core"
	"github.com/soulmegle/sessiond/internal/domain"
)

// Relay validates and routes traffic strictly within a room's two members.
// Acceptance runs inside the room store's critical section, so every accepted
// message is stamped, recorded and handed off in one global order. The
// signaling adapter still owns the actual transport writes.
type Relay struct {
	Rooms *RoomStore
}

// Chat accepts a chat message and hands the delivery plan to emit while the
// room is still locked: concurrent senders cannot interleave between stamping
// and the fan-out, so both members observe one consistent transcript. The
// room's last-activity is set to the message's own timestamp.
func (r *Relay) Chat(roomID domain.RoomID, sender core.ConnID, content string, emit func(core.ChatDelivery)) error {
	var err error
	found := r.Rooms.Serialized(roomID, func(room *domain.Room) {
		if !room.Has(string(sender)) {
			log.Warn().Str("module", "app.relay").Str("sid", string(sender)).Str("room", string(roomID)).Msg("chat from non-member")
			err = core.ErrNotRoomMember
			return
		}
		if content == "" {
			err = core.ErrEmptyContent
			return
		}
		msg := core.ChatMessage{
			RoomID:    roomID,
			SenderID:  sender,
			Content:   content,
			Timestamp: time.Now(),
		}
		room.LastActivity = msg.Timestamp
		log.Debug().Str("module", "app.relay").Str("room", string(roomID)).Str("from", string(sender)).Msg("chat relayed")
		emit(core.ChatDelivery{
			Message:    msg,
			Recipients: [2]core.ConnID{core.ConnID(room.MemberA), core.ConnID(room.MemberB)},
		})
	})
	if !found {
		return core.ErrRoomNotFound
	}
	return err
}

// Negotiation accepts an opaque peer-negotiation payload and plans a
// partner-only forward. Unlike chat, nothing is ever echoed to the sender:
// negotiation is directed signaling, not a shared transcript.
func (r *Relay) Negotiation(roomID domain.RoomID, sender core.ConnID, kind core.NegotiationKind, payload json.RawMessage) (core.NegotiationDelivery, error) {
	var plan core.NegotiationDelivery
	var err error
	found := r.Rooms.Serialized(roomID, func(room *domain.Room) {
		if !room.Has(string(sender)) {
			log.Warn().Str("module", "app.relay").Str("sid", string(sender)).Str("room", string(roomID)).Str("kind", string(kind)).Msg("negotiation from non-member")
			err = core.ErrNotRoomMember
			return
		}
		room.LastActivity = time.Now()
		plan = core.NegotiationDelivery{
			Kind:    kind,
			Payload: payload,
			To:      core.ConnID(room.Other(string(sender))),
		}
	})
	if !found {
		return core.NegotiationDelivery{}, core.ErrRoomNotFound
	}
	if err != nil {
		return core.NegotiationDelivery{}, err
	}
	return plan, nil
}
