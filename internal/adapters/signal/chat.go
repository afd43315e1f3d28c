package signal

import (
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/soulmegle/sessiond/internal/core"
	"github.com/soulmegle/sessiond/internal/domain"
)

type receiveMessageEvent struct {
	Type      string        `json:"type"`
	RoomID    domain.RoomID `json:"roomId"`
	Content   string        `json:"content"`
	SenderID  core.ConnID   `json:"senderId"`
	Timestamp time.Time     `json:"timestamp"`
}

func (ctl *Controller) handleSendMessage(
	sid core.ConnID,
	conn *WsSignalConn,
	data []byte,
) {
	type sendPayload struct {
		Type    string        `json:"type"`
		RoomID  domain.RoomID `json:"roomId"`
		Content string        `json:"content"`
	}
	var p sendPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad send_message payload")
		ctl.sendJSON(conn, map[string]any{"type": "error", "error": "bad_payload"})
		return
	}

	// The enqueues happen inside the relay's critical section, so concurrent
	// senders cannot hand both members differently ordered transcripts.
	err := ctl.Relay.Chat(p.RoomID, sid, p.Content, func(plan core.ChatDelivery) {
		event := receiveMessageEvent{
			Type:      "receive_message",
			RoomID:    plan.Message.RoomID,
			Content:   plan.Message.Content,
			SenderID:  plan.Message.SenderID,
			Timestamp: plan.Message.Timestamp,
		}
		for _, to := range plan.Recipients {
			ctl.sendTo(to, event)
		}
	})
	if err != nil {
		ctl.sendError(conn, err)
	}
}
