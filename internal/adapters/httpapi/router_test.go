package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/soulmegle/sessiond/internal/adapters/signal"
	"github.com/soulmegle/sessiond/internal/app"
	"github.com/soulmegle/sessiond/internal/config"
	"github.com/soulmegle/sessiond/internal/core"
)

func testConfig() *config.Config {
	return &config.Config{
		Mode:         "release",
		Port:         0,
		MatcherURL:   "http://localhost:5001",
		MatchTimeout: time.Second,
		ReadLimit:    32768,
		WriteTimeout: time.Second,
		SendBuffer:   8,
		PairingRate:  10,
		PairingBurst: time.Minute,
		Secret:       testSecret,
	}
}

func testRouter(t *testing.T) (*app.Lifecycle, http.Handler) {
	t.Helper()
	reg := app.NewRegistry()
	pool := app.NewWaitingPool()
	rooms := app.NewRoomStore(pool, reg)
	life := &app.Lifecycle{Registry: reg, Pool: pool, Rooms: rooms}
	cfg := testConfig()
	ctl := signal.NewController(life, &app.Relay{Rooms: rooms}, cfg)
	return life, SetupRouter(context.Background(), cfg, ctl, life)
}

func TestRouter_Healthz(t *testing.T) {
	req := require.New(t)
	_, r := testRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	req.Equal(http.StatusOK, w.Code)
}

func TestRouter_Stats(t *testing.T) {
	req := require.New(t)
	life, r := testRouter(t)
	require.NoError(t, life.Registry.Register(core.ConnID("c1"), core.NewClientSession(), nil))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/stats", nil))
	req.Equal(http.StatusOK, w.Code)
	req.Contains(w.Body.String(), `"connections":1`)
	req.Contains(w.Body.String(), `"waiting":0`)
	req.Contains(w.Body.String(), `"rooms":0`)
}

func TestRouter_SignalEndpointRequiresAuth(t *testing.T) {
	req := require.New(t)
	_, r := testRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/ws/signal", nil))
	req.Equal(http.StatusUnauthorized, w.Code)
}
