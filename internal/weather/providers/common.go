package providers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-notifier/internal/weather"
)

// BackoffConfig controls exponential backoff behaviour.
type BackoffConfig struct {
	MaxRetries      int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// HTTPClientConfig bundles HTTP client and resilience settings.
type HTTPClientConfig struct {
	Client  *http.Client
	Backoff BackoffConfig

	// Header is sent with every request.
	Header http.Header

	// SecretQuery is appended to every request URL but kept out of errors
	// and logs.
	SecretQuery url.Values

	// BreakerTimeout is how long an open circuit breaker waits before
	// letting a trial request through.
	BreakerTimeout time.Duration

	// MaxBodyBytes bounds the response body; larger answers fail.
	MaxBodyBytes int64
}

// Option customizes a provider's HTTP settings.
type Option func(*HTTPClientConfig)

// WithBackoff overrides the default retry policy.
func WithBackoff(b BackoffConfig) Option {
	return func(c *HTTPClientConfig) { c.Backoff = b }
}

// WithBreakerTimeout overrides how long an open breaker stays open.
func WithBreakerTimeout(d time.Duration) Option {
	return func(c *HTTPClientConfig) { c.BreakerTimeout = d }
}

const defaultMaxBodyBytes = 16 << 20

var (
	errNoHTTPClient  = errors.New("http client not configured")
	errInvalidConfig = errors.New("invalid backoff configuration")

	errResponseTooLarge = errors.New("response too large")
)

func defaultHTTPConfig(client *http.Client) HTTPClientConfig {
	return HTTPClientConfig{
		Client: client,
		Backoff: BackoffConfig{
			MaxRetries:      2,
			InitialInterval: 500 * time.Millisecond,
			MaxInterval:     5 * time.Second,
		},
		Header:         make(http.Header),
		BreakerTimeout: 2 * time.Minute,
		MaxBodyBytes:   defaultMaxBodyBytes,
	}
}

// newCircuitBreaker builds the breaker guarding one request chain. Chains
// never share a breaker.
func newCircuitBreaker(name string, timeout time.Duration) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     timeout,
	})
}

// fetchBody GETs rawURL with retries, exponential backoff and a circuit
// breaker, and returns the response body of the first 2xx answer. Transport
// failures, 429 and 5xx are retried; any other status fails immediately.
func fetchBody(
	ctx context.Context,
	cfg HTTPClientConfig,
	cb *gobreaker.CircuitBreaker,
	rawURL string,
) ([]byte, error) {
	if cfg.Client == nil {
		return nil, errNoHTTPClient
	}
	if cfg.Backoff.MaxRetries < 0 || cfg.Backoff.InitialInterval <= 0 {
		return nil, errInvalidConfig
	}

	target, err := withQuery(rawURL, cfg.SecretQuery)
	if err != nil {
		return nil, err
	}

	var attempt int
	for {
		if ctx.Err() != nil {
			return nil, &weather.TransportError{URL: rawURL, Err: ctx.Err()}
		}

		result, err := cb.Execute(func() (interface{}, error) {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
			if err != nil {
				return nil, err
			}
			for k, vs := range cfg.Header {
				for _, v := range vs {
					req.Header.Add(k, v)
				}
			}

			resp, err := cfg.Client.Do(req)
			if err != nil {
				return nil, &weather.TransportError{URL: rawURL, Err: scrub(err, target, rawURL)}
			}
			defer resp.Body.Close()

			limit := cfg.MaxBodyBytes
			if limit <= 0 {
				limit = defaultMaxBodyBytes
			}
			body, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
			if err != nil {
				return nil, &weather.TransportError{URL: rawURL, Err: err}
			}
			if int64(len(body)) > limit {
				return nil, fmt.Errorf("GET %s: %w (limit %d bytes)", rawURL, errResponseTooLarge, limit)
			}
			if resp.StatusCode < 200 || resp.StatusCode >= 300 {
				return nil, &weather.HTTPStatusError{
					URL:        rawURL,
					StatusCode: resp.StatusCode,
					Status:     statusText(resp),
				}
			}
			return body, nil
		})

		if err == nil {
			body, ok := result.([]byte)
			if !ok {
				return nil, fmt.Errorf("unexpected result type from circuit breaker")
			}
			return body, nil
		}

		// If circuit is open, propagate immediately.
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, &weather.TransportError{URL: rawURL, Err: err}
		}

		if !retryable(err) || attempt >= cfg.Backoff.MaxRetries {
			return nil, err
		}

		// Backoff with exponential delay.
		delay := cfg.Backoff.InitialInterval * time.Duration(math.Pow(2, float64(attempt)))
		if delay > cfg.Backoff.MaxInterval && cfg.Backoff.MaxInterval > 0 {
			delay = cfg.Backoff.MaxInterval
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, &weather.TransportError{URL: rawURL, Err: ctx.Err()}
		case <-timer.C:
			// continue to next attempt
		}

		attempt++
	}
}

func retryable(err error) bool {
	var statusErr *weather.HTTPStatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode == http.StatusTooManyRequests || statusErr.StatusCode >= 500
	}
	var transportErr *weather.TransportError
	if errors.As(err, &transportErr) {
		return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
	}
	return false
}

func withQuery(rawURL string, extra url.Values) (string, error) {
	if len(extra) == 0 {
		return rawURL, nil
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	q := u.Query()
	for k, vs := range extra {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// scrub removes the secret-bearing URL from errors produced by net/http.
func scrub(err error, target, display string) error {
	if target == display {
		return err
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return fmt.Errorf("%s: %w", urlErr.Op, urlErr.Err)
	}
	return errors.New(strings.ReplaceAll(err.Error(), target, display))
}

// statusText returns the reason phrase the server sent, falling back to the
// standard one.
func statusText(resp *http.Response) string {
	text := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if text == "" {
		text = http.StatusText(resp.StatusCode)
	}
	return text
}
