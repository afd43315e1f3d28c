package signal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/soulmegle/sessiond/internal/core"
)

func TestPairRateLimiter_BlocksOverLimit(t *testing.T) {
	req := require.New(t)
	rl := NewPairRateLimiter(2, time.Minute)
	sid := core.ConnID("conn-1")

	req.True(rl.Allow(sid))
	req.True(rl.Allow(sid))
	req.False(rl.Allow(sid))

	// Другие подключения не затронуты.
	req.True(rl.Allow(core.ConnID("conn-2")))
}

func TestPairRateLimiter_WindowSlides(t *testing.T) {
	req := require.New(t)
	rl := NewPairRateLimiter(1, 10*time.Millisecond)
	sid := core.ConnID("conn-1")

	req.True(rl.Allow(sid))
	req.False(rl.Allow(sid))

	time.Sleep(15 * time.Millisecond)
	req.True(rl.Allow(sid))
}

func TestPairRateLimiter_Forget(t *testing.T) {
	req := require.New(t)
	rl := NewPairRateLimiter(1, time.Minute)
	sid := core.ConnID("conn-1")

	req.True(rl.Allow(sid))
	req.False(rl.Allow(sid))

	rl.Forget(sid)
	req.True(rl.Allow(sid))
}
