package signal

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/soulmegle/sessiond/internal/core"
	"github.com/soulmegle/sessiond/internal/domain"
)

type matchFoundEvent struct {
	Type    string               `json:"type"`
	RoomID  domain.RoomID        `json:"roomId"`
	Partner domain.PublicProfile `json:"partner"`
}

func roomStatus(id domain.RoomID, status string) any {
	return struct {
		Type   string        `json:"type"`
		RoomID domain.RoomID `json:"roomId"`
		Status string        `json:"status"`
	}{"room_status", id, status}
}

func (ctl *Controller) handleJoinWaiting(
	ctx context.Context,
	sid core.ConnID,
	conn *WsSignalConn,
	data []byte,
) {
	type joinPayload struct {
		Type string         `json:"type"`
		User domain.Profile `json:"user"`
	}
	var p joinPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad join_waiting_room payload")
		ctl.sendJSON(conn, map[string]any{"type": "error", "error": "bad_payload"})
		return
	}

	if !ctl.Limiter.Allow(sid) {
		log.Warn().Str("module", "signal").Str("sid", string(sid)).Msg("pairing rate exceeded")
		ctl.sendJSON(conn, map[string]any{"type": "error", "error": "too_many_pairing_attempts"})
		return
	}

	log.Info().Str("module", "signal").Str("sid", string(sid)).Str("user", string(p.User.ID)).Msg("join waiting room")
	res, err := ctl.Life.RequestPairing(ctx, sid, &p.User)
	if err != nil {
		ctl.sendError(conn, err)
		return
	}
	if res == nil {
		// Still waiting; a later candidate's attempt may pick us up.
		return
	}

	ctl.sendJSON(conn, matchFoundEvent{Type: "match_found", RoomID: res.RoomID, Partner: res.PartnerOfA})
	ctl.sendTo(res.B, matchFoundEvent{Type: "match_found", RoomID: res.RoomID, Partner: res.PartnerOfB})
	ctl.sendJSON(conn, roomStatus(res.RoomID, "active"))
	ctl.sendTo(res.B, roomStatus(res.RoomID, "active"))
}

func (ctl *Controller) handleLeaveWaiting(sid core.ConnID, conn *WsSignalConn) {
	log.Info().Str("module", "signal").Str("sid", string(sid)).Msg("leave waiting room")
	ctl.Life.CancelWaiting(sid)
	ctl.sendJSON(conn, map[string]any{"type": "left_waiting"})
}

func (ctl *Controller) handleJoinRoom(
	sid core.ConnID,
	conn *WsSignalConn,
	data []byte,
) {
	type joinRoomPayload struct {
		Type   string        `json:"type"`
		RoomID domain.RoomID `json:"roomId"`
	}
	var p joinRoomPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad join_room payload")
		ctl.sendJSON(conn, map[string]any{"type": "error", "error": "bad_payload"})
		return
	}

	partner, err := ctl.Life.JoinRoom(sid, p.RoomID)
	if err != nil {
		log.Warn().Str("module", "signal").Str("sid", string(sid)).Str("room", string(p.RoomID)).Msg("invalid room join attempt")
		ctl.sendError(conn, err)
		return
	}
	ctl.sendJSON(conn, roomStatus(p.RoomID, "active"))
	ctl.sendTo(partner, roomStatus(p.RoomID, "active"))
}

func (ctl *Controller) handleLeaveRoom(
	sid core.ConnID,
	conn *WsSignalConn,
	data []byte,
) {
	type leaveRoomPayload struct {
		Type   string        `json:"type"`
		RoomID domain.RoomID `json:"roomId"`
	}
	var p leaveRoomPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad leave_room payload")
		ctl.sendJSON(conn, map[string]any{"type": "error", "error": "bad_payload"})
		return
	}

	partner, err := ctl.Life.LeaveRoom(sid, p.RoomID)
	if err != nil {
		log.Warn().Str("module", "signal").Str("sid", string(sid)).Str("room", string(p.RoomID)).Msg("invalid room leave attempt")
		ctl.sendError(conn, err)
		return
	}
	ctl.sendJSON(conn, roomStatus(p.RoomID, "inactive"))
	if partner != "" {
		ctl.sendTo(partner, map[string]any{"type": "partner_left"})
		ctl.sendTo(partner, roomStatus(p.RoomID, "inactive"))
	}
}
