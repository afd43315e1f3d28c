// Package signal is the websocket signaling adapter: it owns the transport,
// decodes the client protocol and forwards everything stateful to the app
// layer. All transport writes happen here and nowhere else.
package signal

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/soulmegle/sessiond/internal/app"
	"github.com/soulmegle/sessiond/internal/config"
	"github.com/soulmegle/sessiond/internal/core"
)

var ErrBackpressure = errors.New("backpressure")

type Controller struct {
	Life    *app.Lifecycle
	Relay   *app.Relay
	Limiter *PairRateLimiter
	Cfg     *config.Config
}

func NewController(life *app.Lifecycle, relay *app.Relay, cfg *config.Config) *Controller {
	return &Controller{
		Life:    life,
		Relay:   relay,
		Limiter: NewPairRateLimiter(cfg.PairingRate, cfg.PairingBurst),
		Cfg:     cfg,
	}
}

// WsSignalConn is a per-connection outbox: a buffered channel drained by the
// write pump. TrySend never blocks; a full buffer is a drop, not a stall.
type WsSignalConn struct {
	conn *websocket.Conn
	send chan core.Frame

	mu     sync.RWMutex
	closed bool
}

func (c *WsSignalConn) TrySend(f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return errors.New("connection closed")
	}
	select {
	case c.send <- f:
	default:
		return ErrBackpressure
	}
	return nil
}

func (c *WsSignalConn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	_ = c.conn.Close()
	c.mu.Unlock()
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// HandleSignal upgrades the request and registers a fresh connection. The
// connection identity is minted here, once per upgrade; it is never reused
// even for the same browser reconnecting.
func (ctl *Controller) HandleSignal(ctx context.Context, c *gin.Context) {
	sid := core.ConnID(uuid.NewString())
	log.Info().Str("module", "signal").Str("sid", string(sid)).Str("user", c.GetString("user_id")).Msg("new WS connection")

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Msg("ws upgrade")
		return
	}
	ws.SetReadLimit(ctl.Cfg.ReadLimit)

	conn := &WsSignalConn{
		conn: ws,
		send: make(chan core.Frame, ctl.Cfg.SendBuffer),
	}

	sess := core.NewClientSession().UpdateSignal(conn)
	ctx, cancel := context.WithCancel(ctx)
	if err := ctl.Life.Connect(sid, sess, cancel); err != nil {
		log.Error().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("register failed")
		cancel()
		conn.Close()
		return
	}

	go ctl.writePump(ctx, conn)
	go ctl.readPump(ctx, sid, conn)
}
