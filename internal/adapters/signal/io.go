package signal

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/soulmegle/sessiond/internal/core"
)

func (ctl *Controller) writePump(ctx context.Context, c *WsSignalConn) {
	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "signal").Msg("writePump ctx done")
			return
		case data, ok := <-c.send:
			if !ok {
				log.Warn().Str("module", "signal").Msg("writePump channel closed")
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(ctl.Cfg.WriteTimeout)); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump set deadline")
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump write error")
				return
			}
		}
	}
}

func (ctl *Controller) readPump(ctx context.Context, sid core.ConnID, c *WsSignalConn) {
	defer func() {
		log.Info().Str("module", "signal").Str("sid", string(sid)).Msg("readPump closing")
		ctl.onDisconnect(sid)
		c.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "signal").Str("sid", string(sid)).Msg("readPump ctx done")
			return
		default:
			_, data, err := c.conn.ReadMessage()
			if err != nil {
				log.Info().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("readPump read error")
				return
			}
			ctl.handleSignal(ctx, sid, c, data)
		}
	}
}

func (ctl *Controller) handleSignal(ctx context.Context, sid core.ConnID, c *WsSignalConn, data []byte) {
	var env struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad json")
		return
	}

	switch env.Type {
	case "join_waiting_room":
		ctl.handleJoinWaiting(ctx, sid, c, data)
	case "leave_waiting_room":
		ctl.handleLeaveWaiting(sid, c)
	case "join_room":
		ctl.handleJoinRoom(sid, c, data)
	case "leave_room":
		ctl.handleLeaveRoom(sid, c, data)
	case "send_message":
		ctl.handleSendMessage(sid, c, data)
	case "offer", "answer", "ice_candidate":
		ctl.handleNegotiation(sid, c, env.Type, data)
	case "ping":
		ctl.handlePing(c)
	default:
		log.Warn().Str("module", "signal").Str("type", env.Type).Msg("unknown signal")
	}
}

func (ctl *Controller) sendJSON(c core.SignalConnection, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("sendJSON marshal")
		return
	}
	_ = c.TrySend(b)
}

// sendTo routes an event to another live connection through the registry.
// Gone or backpressured receivers are dropped silently; delivery after a
// transport drop is not guaranteed anyway.
func (ctl *Controller) sendTo(sid core.ConnID, v any) {
	sess, ok := ctl.Life.Registry.Session(sid)
	if !ok || sess.Signal() == nil {
		return
	}
	ctl.sendJSON(sess.Signal(), v)
}

func (ctl *Controller) sendError(c core.SignalConnection, err error) {
	ctl.sendJSON(c, map[string]any{
		"type":  "error",
		"error": errorCode(err),
	})
}

func errorCode(err error) string {
	switch {
	case errors.Is(err, core.ErrDuplicateConnection):
		return "duplicate_connection"
	case errors.Is(err, core.ErrUnknownConnection):
		return "unknown_connection"
	case errors.Is(err, core.ErrInvalidProfile):
		return "invalid_profile"
	case errors.Is(err, core.ErrSelfPairing):
		return "self_pairing"
	case errors.Is(err, core.ErrNotRoomMember):
		return "not_room_member"
	case errors.Is(err, core.ErrEmptyContent):
		return "empty_content"
	case errors.Is(err, core.ErrInvalidMatchResponse):
		return "invalid_match_response"
	case errors.Is(err, core.ErrMatcherUnavailable):
		return "matcher_unavailable"
	case errors.Is(err, core.ErrAlreadyPaired):
		return "already_paired"
	case errors.Is(err, core.ErrRoomNotFound):
		return "room_not_found"
	default:
		return "internal_error"
	}
}

func (ctl *Controller) onDisconnect(sid core.ConnID) {
	ctl.Limiter.Forget(sid)
	partner, roomID, hadRoom := ctl.Life.Disconnect(sid)
	if !hadRoom {
		return
	}
	ctl.sendTo(partner, map[string]any{"type": "partner_left"})
	ctl.sendTo(partner, roomStatus(roomID, "inactive"))
}
