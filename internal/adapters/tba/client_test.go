package tba

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(url string) *Client {
	return New(
		WithBaseURL(url),
		WithAuthKey("test-key"),
		WithMaxRetries(1),
		WithRetryDelay(time.Millisecond),
	)
}

func TestListEvents(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/events/2024/simple", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("X-TBA-Auth-Key"))
		w.Write([]byte(`[{"key":"2024casj"},{"key":"2024txho"},{"key":""}]`))
	}))
	defer srv.Close()

	keys, err := newTestClient(srv.URL).ListEvents(context.Background(), 2024)
	require.NoError(t, err)
	assert.Equal(t, []string{"2024casj", "2024txho"}, keys)
}

func TestListMatches(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/event/2024casj/matches/simple", r.URL.Path)
		w.Write([]byte(`[
			{"alliances":{"red":{"team_keys":["frc254","frc1678"],"score":98},
			              "blue":{"team_keys":["frc118","frc2056"],"score":76}},
			 "actual_time":1711990000,"time":1711980000},
			{"alliances":{"red":{"team_keys":["frc33"],"score":-1},
			              "blue":{"team_keys":["frc148"],"score":-1}},
			 "time":1712000000},
			{"alliances":{"red":{"team_keys":["frc973"],"score":null},
			              "blue":{"team_keys":["frc1323"]}},
			 "predicted_time":1712005000}
		]`))
	}))
	defer srv.Close()

	matches, err := newTestClient(srv.URL).ListMatches(context.Background(), "2024casj")
	require.NoError(t, err)
	require.Len(t, matches, 3)

	played := matches[0]
	assert.True(t, played.Played)
	assert.Equal(t, 98, played.RedScore)
	assert.Equal(t, 76, played.BlueScore)
	assert.Equal(t, int64(1711990000), played.Time, "actual_time wins over scheduled time")

	assert.False(t, matches[1].Played, "negative score marks an unplayed match")
	assert.Equal(t, int64(1712000000), matches[1].Time)

	assert.False(t, matches[2].Played, "missing score marks an unplayed match")
	assert.Equal(t, int64(1712005000), matches[2].Time, "predicted_time used when not yet played")
}

func TestAuthFailureIsDistinguishable(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).ListEvents(context.Background(), 2024)
	require.ErrorIs(t, err, ErrUnauthorized)
	assert.Equal(t, int32(1), calls.Load(), "auth failures are not retried")
}

func TestServerErrorsAreRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).ListEvents(context.Background(), 2024)
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestExhaustedRetriesSurfaceUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).ListEvents(context.Background(), 2024)
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"not":"a list"}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).ListMatches(context.Background(), "2024casj")
	require.ErrorIs(t, err, ErrMalformed)
}
