package providers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/weather-notifier/internal/weather"
)

func TestFetchBodyRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	cfg := defaultHTTPConfig(srv.Client())
	cfg.Backoff = BackoffConfig{MaxRetries: 2, InitialInterval: time.Millisecond, MaxInterval: 5 * time.Millisecond}

	body, err := fetchBody(context.Background(), cfg, newCircuitBreaker("test", time.Minute), srv.URL)
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, string(body))
	assert.Equal(t, int32(3), calls.Load())
}

func TestFetchBodyDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	cfg := defaultHTTPConfig(srv.Client())
	cfg.Backoff = BackoffConfig{MaxRetries: 3, InitialInterval: time.Millisecond}

	_, err := fetchBody(context.Background(), cfg, newCircuitBreaker("test", time.Minute), srv.URL)

	var statusErr *weather.HTTPStatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)
	assert.Equal(t, "Not Found", statusErr.Status)
	assert.Equal(t, int32(1), calls.Load())
}

func TestFetchBodyStopsOnCancel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	cfg := defaultHTTPConfig(srv.Client())
	cfg.Backoff = BackoffConfig{MaxRetries: 5, InitialInterval: time.Hour}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := fetchBody(ctx, cfg, newCircuitBreaker("test", time.Minute), srv.URL)
	assert.Equal(t, "transport", weather.ErrorKind(err))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestWithQueryKeepsExistingParams(t *testing.T) {
	got, err := withQuery("http://x/onecall?lat=1", map[string][]string{"appid": {"k"}})
	require.NoError(t, err)
	assert.Equal(t, "http://x/onecall?appid=k&lat=1", got)
}

func TestFetchBodyRejectsOversizeResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"properties": {"periods": [1, 2, 3]}}`))
	}))
	defer srv.Close()

	cfg := defaultHTTPConfig(srv.Client())
	cfg.Backoff = BackoffConfig{MaxRetries: 2, InitialInterval: time.Millisecond}
	cfg.MaxBodyBytes = 16

	_, err := fetchBody(context.Background(), cfg, newCircuitBreaker("test", time.Minute), srv.URL)

	require.ErrorIs(t, err, errResponseTooLarge)
	assert.Equal(t, "other", weather.ErrorKind(err))

	cfg.MaxBodyBytes = 64
	body, err := fetchBody(context.Background(), cfg, newCircuitBreaker("test", time.Minute), srv.URL)
	require.NoError(t, err)
	assert.Contains(t, string(body), "periods")
}
