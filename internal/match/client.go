// Package match talks to the external matching service. The service is
// treated as unreliable and untrusted: any transport fault degrades to "no
// match this attempt", and its verdict is cross-checked against the snapshot
// we handed it.
package match

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/soulmegle/sessiond/internal/core"
)

type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

type matchRequest struct {
	Candidate core.WaitingEntry   `json:"candidate"`
	Others    []core.WaitingEntry `json:"others"`
}

type matchResponse struct {
	MatchedUserID   string   `json:"matchedUserId"`
	SharedInterests []string `json:"sharedInterests"`
}

// RequestMatch submits the candidate plus the pool snapshot and interprets
// the verdict. An empty snapshot never leaves the process: no candidates, no
// round trip.
func (c *Client) RequestMatch(ctx context.Context, candidate core.WaitingEntry, others []core.WaitingEntry) (core.Verdict, error) {
	if len(others) == 0 {
		return core.NoMatch, nil
	}

	body, err := json.Marshal(matchRequest{Candidate: candidate, Others: others})
	if err != nil {
		return core.NoMatch, fmt.Errorf("encode match request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/match", bytes.NewReader(body))
	if err != nil {
		return core.NoMatch, fmt.Errorf("build match request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		log.Error().Err(err).Str("module", "match").Msg("matching service unreachable")
		return core.NoMatch, fmt.Errorf("%w: %v", core.ErrMatcherUnavailable, err)
	}
	defer resp.Body.Close()

	// The service answers 404 when nobody fits; that is a verdict, not a fault.
	if resp.StatusCode == http.StatusNotFound {
		return core.NoMatch, nil
	}
	if resp.StatusCode != http.StatusOK {
		log.Error().Int("status", resp.StatusCode).Str("module", "match").Msg("matching service error")
		return core.NoMatch, fmt.Errorf("%w: status %d", core.ErrMatcherUnavailable, resp.StatusCode)
	}

	var mr matchResponse
	if err := json.NewDecoder(resp.Body).Decode(&mr); err != nil {
		return core.NoMatch, fmt.Errorf("%w: %v", core.ErrMatcherUnavailable, err)
	}
	if mr.MatchedUserID == "" {
		return core.NoMatch, nil
	}

	// Cross-check: the returned identity must come from the snapshot we sent.
	// A stale or misbehaving service must not be able to pair us with a
	// connection we never offered.
	partner, found := lo.Find(others, func(e core.WaitingEntry) bool {
		return string(e.UserID) == mr.MatchedUserID
	})
	if !found {
		log.Warn().Str("module", "match").Str("matched_user", mr.MatchedUserID).Msg("verdict names a candidate outside the snapshot")
		return core.NoMatch, core.ErrInvalidMatchResponse
	}

	return core.Verdict{
		Matched:         true,
		Partner:         partner,
		SharedInterests: mr.SharedInterests,
	}, nil
}
