package match

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/soulmegle/sessiond/internal/core"
)

func candidate() core.WaitingEntry {
	return core.WaitingEntry{
		Conn:           "conn-alice",
		UserID:         "alice",
		Email:          "alice@example.com",
		Interests:      []string{"movies", "music"},
		InterestVector: []float64{0.1, 0.9},
	}
}

func others() []core.WaitingEntry {
	return []core.WaitingEntry{{
		Conn:      "conn-bob",
		UserID:    "bob",
		Email:     "bob@example.com",
		Interests: []string{"music", "sports"},
	}}
}

func TestClient_EmptyOthers_NoRoundTrip(t *testing.T) {
	req := require.New(t)
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	verdict, err := c.RequestMatch(context.Background(), candidate(), nil)
	req.NoError(err)
	req.False(verdict.Matched)
	req.False(called)
}

func TestClient_MatchedVerdict(t *testing.T) {
	req := require.New(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req.Equal(http.MethodPost, r.Method)
		req.Equal("/api/match", r.URL.Path)

		var body struct {
			Candidate core.WaitingEntry   `json:"candidate"`
			Others    []core.WaitingEntry `json:"others"`
		}
		req.NoError(json.NewDecoder(r.Body).Decode(&body))
		req.Equal("alice", string(body.Candidate.UserID))
		req.Len(body.Others, 1)

		json.NewEncoder(w).Encode(map[string]any{
			"matchedUserId":   "bob",
			"sharedInterests": []string{"music"},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	verdict, err := c.RequestMatch(context.Background(), candidate(), others())
	req.NoError(err)
	req.True(verdict.Matched)
	req.Equal(core.ConnID("conn-bob"), verdict.Partner.Conn)
	req.Equal([]string{"music"}, verdict.SharedInterests)
}

func TestClient_NotFoundMeansNoMatch(t *testing.T) {
	req := require.New(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"No suitable match found"}`, http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	verdict, err := c.RequestMatch(context.Background(), candidate(), others())
	req.NoError(err)
	req.False(verdict.Matched)
}

func TestClient_NullVerdictMeansNoMatch(t *testing.T) {
	req := require.New(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"matchedUserId":null,"sharedInterests":[]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	verdict, err := c.RequestMatch(context.Background(), candidate(), others())
	req.NoError(err)
	req.False(verdict.Matched)
}

func TestClient_ServiceErrorIsUnavailable(t *testing.T) {
	req := require.New(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	_, err := c.RequestMatch(context.Background(), candidate(), others())
	req.ErrorIs(err, core.ErrMatcherUnavailable)
}

func TestClient_UnreachableIsUnavailable(t *testing.T) {
	req := require.New(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // nothing listening anymore

	c := NewClient(srv.URL, 100*time.Millisecond)
	_, err := c.RequestMatch(context.Background(), candidate(), others())
	req.ErrorIs(err, core.ErrMatcherUnavailable)
}

func TestClient_CrossChecksVerdictAgainstSnapshot(t *testing.T) {
	req := require.New(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// A stale or misbehaving service answers with somebody we never offered.
		w.Write([]byte(`{"matchedUserId":"mallory","sharedInterests":["music"]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	_, err := c.RequestMatch(context.Background(), candidate(), others())
	req.ErrorIs(err, core.ErrInvalidMatchResponse)
}
