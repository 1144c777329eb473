// internal/api/client.go
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/nova-webgames/arena/pkg/core"
)

// ErrUnauthorized is returned when the leaderboard rejects the access token.
// Retrying with the same token will not help.
var ErrUnauthorized = errors.New("leaderboard rejected credentials")

// StatusError is a non-success reply from the leaderboard.
type StatusError struct {
	Op     string
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s returned status %d", e.Op, e.Status)
	}
	return fmt.Sprintf("%s returned status %d: %s", e.Op, e.Status, e.Body)
}

// Temporary reports whether the request may succeed if sent again later.
func (e *StatusError) Temporary() bool {
	return e.Status >= 500 || e.Status == http.StatusTooManyRequests || e.Status == http.StatusRequestTimeout
}

// ScoreSubmission is the body of a score submission.
type ScoreSubmission struct {
	SessionID  string    `json:"sessionId"`
	PlayerID   string    `json:"playerId"`
	Score      int       `json:"score"`
	Kills      int       `json:"kills"`
	Deaths     int       `json:"deaths"`
	ShotsFired int       `json:"shotsFired"`
	ShotsHit   int       `json:"shotsHit"`
	Accuracy   float64   `json:"accuracy"`
	Duration   float64   `json:"duration"`
	StartedAt  time.Time `json:"startedAt"`
	EndedAt    time.Time `json:"endedAt"`
}

// NewScoreSubmission flattens a match result for the wire.
func NewScoreSubmission(m core.MatchResult) ScoreSubmission {
	return ScoreSubmission{
		SessionID:  m.SessionID,
		PlayerID:   m.PlayerID,
		Score:      m.Score,
		Kills:      m.Kills,
		Deaths:     m.Deaths,
		ShotsFired: m.ShotsFired,
		ShotsHit:   m.ShotsHit,
		Accuracy:   m.Accuracy(),
		Duration:   m.Duration,
		StartedAt:  m.StartedAt.UTC(),
		EndedAt:    m.EndedAt.UTC(),
	}
}

// LeaderboardEntry is one row of the public leaderboard.
type LeaderboardEntry struct {
	Rank     int    `json:"rank"`
	PlayerID string `json:"playerId"`
	Score    int    `json:"score"`
}

// Client handles communication with the leaderboard service.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a new API client. A non-positive timeout uses 30s.
func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Healthcheck checks if the leaderboard service is reachable.
func (c *Client) Healthcheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/healthcheck", nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("healthcheck request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &StatusError{Op: "healthcheck", Status: resp.StatusCode}
	}
	return nil
}

// SubmitScore posts a finished match with token as bearer credentials.
func (c *Client) SubmitScore(ctx context.Context, result core.MatchResult, token string) error {
	body, err := json.Marshal(NewScoreSubmission(result))
	if err != nil {
		return fmt.Errorf("failed to encode submission: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/scores", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("score submission failed: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusCreated:
		return nil
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("score submission: %w", ErrUnauthorized)
	default:
		return &StatusError{Op: "score submission", Status: resp.StatusCode, Body: readSnippet(resp.Body)}
	}
}

// Leaderboard fetches the top limit entries.
func (c *Client) Leaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	u := c.baseURL + "/api/v1/scores/top"
	if len(q) > 0 {
		u += "?" + q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("leaderboard request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{Op: "leaderboard", Status: resp.StatusCode, Body: readSnippet(resp.Body)}
	}

	var entries []LeaderboardEntry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return nil, fmt.Errorf("failed to decode leaderboard: %w", err)
	}
	return entries, nil
}

func readSnippet(r io.Reader) string {
	b, _ := io.ReadAll(io.LimitReader(r, 256))
	return strings.TrimSpace(string(b))
}

// IsTemporary reports whether err is worth retrying later. Transport errors
// and 5xx replies are; rejected credentials and other 4xx replies are not.
func IsTemporary(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrUnauthorized) {
		return false
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.Temporary()
	}
	return true
}
