package signal

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/soulmegle/sessiond/internal/core"
)

// handleNegotiation forwards an offer, answer or ICE candidate to the
// sender's partner. The payload is an opaque blob: it leaves this process
// exactly as it arrived. The sender's room comes from the registry index, not
// from the client, so there is no room id to spoof.
func (ctl *Controller) handleNegotiation(
	sid core.ConnID,
	conn *WsSignalConn,
	kind string,
	data []byte,
) {
	type negotiationPayload struct {
		Type    string          `json:"type"`
		Payload json.RawMessage `json:"payload"`
	}
	var p negotiationPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Str("kind", kind).Msg("bad negotiation payload")
		ctl.sendJSON(conn, map[string]any{"type": "error", "error": "bad_payload"})
		return
	}

	roomID, ok := ctl.Life.Registry.RoomOf(sid)
	if !ok {
		log.Warn().Str("module", "signal").Str("sid", string(sid)).Str("kind", kind).Msg("negotiation with no active room")
		ctl.sendError(conn, core.ErrNotRoomMember)
		return
	}

	plan, err := ctl.Relay.Negotiation(roomID, sid, core.NegotiationKind(kind), p.Payload)
	if err != nil {
		ctl.sendError(conn, err)
		return
	}

	ctl.sendTo(plan.To, struct {
		Type    string          `json:"type"`
		Payload json.RawMessage `json:"payload"`
	}{string(plan.Kind), plan.Payload})
}
