// Package tba is a thin client for The Blue Alliance v3 REST API, the
// match-history source the rebuild pipeline consumes.
package tba

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/Silverfoe/trueskill-public/internal/domain/model"
)

// Defaults for the client; all tunable via options.
const (
	defaultBaseURL    = "https://www.thebluealliance.com/api/v3"
	defaultTimeout    = 15 * time.Second
	defaultMaxRetries = 3
	defaultRetryDelay = 1 * time.Second
)

// Client talks to The Blue Alliance. Safe for concurrent use.
type Client struct {
	baseURL    string
	authKey    string
	httpClient *http.Client
	maxRetries int
	retryDelay time.Duration
}

// Option applies a configuration option to the Client.
type Option func(*Client)

// WithBaseURL overrides the API root, mainly for tests.
func WithBaseURL(url string) Option {
	return func(c *Client) {
		if url != "" {
			c.baseURL = url
		}
	}
}

// WithAuthKey sets the X-TBA-Auth-Key credential.
func WithAuthKey(key string) Option {
	return func(c *Client) {
		c.authKey = key
	}
}

// WithHTTPClient swaps the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithMaxRetries bounds retry attempts for transient failures.
func WithMaxRetries(n int) Option {
	return func(c *Client) {
		if n >= 0 {
			c.maxRetries = n
		}
	}
}

// WithRetryDelay sets the base backoff delay; attempts back off
// exponentially from it.
func WithRetryDelay(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.retryDelay = d
		}
	}
}

// New creates a Blue Alliance client.
func New(opts ...Option) *Client {
	c := &Client{
		baseURL:    defaultBaseURL,
		maxRetries: defaultMaxRetries,
		retryDelay: defaultRetryDelay,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
			Transport: &http.Transport{
				MaxIdleConns:        32,
				MaxIdleConnsPerHost: 8,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// wire shapes for the /simple endpoints.
type wireEvent struct {
	Key string `json:"key"`
}

type wireAlliance struct {
	TeamKeys []string `json:"team_keys"`
	Score    *int     `json:"score"`
}

type wireMatch struct {
	Alliances struct {
		Red  wireAlliance `json:"red"`
		Blue wireAlliance `json:"blue"`
	} `json:"alliances"`
	ActualTime    int64 `json:"actual_time"`
	PredictedTime int64 `json:"predicted_time"`
	Time          int64 `json:"time"`
}

// ListEvents returns every event key for a season, in the order the API
// reports them.
func (c *Client) ListEvents(ctx context.Context, year int) ([]string, error) {
	body, err := c.get(ctx, "/events/"+strconv.Itoa(year)+"/simple")
	if err != nil {
		return nil, err
	}
	var events []wireEvent
	if err := json.Unmarshal(body, &events); err != nil {
		return nil, fmt.Errorf("%w: events for %d: %v", ErrMalformed, year, err)
	}
	keys := make([]string, 0, len(events))
	for _, ev := range events {
		if ev.Key != "" {
			keys = append(keys, ev.Key)
		}
	}
	return keys, nil
}

// ListMatches returns every match of an event. Matches whose scores have
// not been reported yet carry Played=false; TBA uses -1 (or null) as the
// unscored sentinel.
func (c *Client) ListMatches(ctx context.Context, eventKey string) ([]model.Match, error) {
	body, err := c.get(ctx, "/event/"+eventKey+"/matches/simple")
	if err != nil {
		return nil, err
	}
	var wire []wireMatch
	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, fmt.Errorf("%w: matches for %s: %v", ErrMalformed, eventKey, err)
	}
	matches := make([]model.Match, 0, len(wire))
	for _, m := range wire {
		red, blue := m.Alliances.Red, m.Alliances.Blue
		if len(red.TeamKeys) == 0 || len(blue.TeamKeys) == 0 {
			continue
		}
		mm := model.Match{
			Red:  red.TeamKeys,
			Blue: blue.TeamKeys,
			Time: matchTime(m),
		}
		if red.Score != nil && blue.Score != nil && *red.Score >= 0 && *blue.Score >= 0 {
			mm.Played = true
			mm.RedScore = *red.Score
			mm.BlueScore = *blue.Score
		}
		matches = append(matches, mm)
	}
	return matches, nil
}

// matchTime prefers the actually-played timestamp, falling back to the
// scheduled one so unfinished events still sort sensibly.
func matchTime(m wireMatch) int64 {
	if m.ActualTime > 0 {
		return m.ActualTime
	}
	if m.PredictedTime > 0 {
		return m.PredictedTime
	}
	return m.Time
}

// get performs one GET with bounded exponential-backoff retries. Auth
// failures are not retried; they surface as ErrUnauthorized so callers
// can distinguish a bad key from a flaky network.
func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	url := c.baseURL + path

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := c.retryDelay * time.Duration(1<<uint(attempt-1))
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("%w: %v", ErrUnavailable, ctx.Err())
			case <-time.After(backoff):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("%w: build request: %v", ErrUnavailable, err)
		}
		req.Header.Set("X-TBA-Auth-Key", c.authKey)
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("%w: %s: %v", ErrUnavailable, url, err)
			continue
		}
		body, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
			return nil, fmt.Errorf("%w: status %d from %s", ErrUnauthorized, resp.StatusCode, url)
		case resp.StatusCode >= 500:
			lastErr = fmt.Errorf("%w: status %d from %s", ErrUnavailable, resp.StatusCode, url)
			continue
		case resp.StatusCode != http.StatusOK:
			return nil, fmt.Errorf("%w: status %d from %s", ErrUnavailable, resp.StatusCode, url)
		case readErr != nil:
			lastErr = fmt.Errorf("%w: read %s: %v", ErrUnavailable, url, readErr)
			continue
		}
		return body, nil
	}
	return nil, lastErr
}
