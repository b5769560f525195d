package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/i474232898/gmet/internal/weather"
)

// HTTPClientConfig bundles the HTTP client and the outbound limits shared
// by the providers.
type HTTPClientConfig struct {
	Client  *http.Client
	Limiter *rate.Limiter
}

var (
	errRateLimited  = errors.New("rate limited")
	errServerError  = errors.New("server error")
	errUnexpected   = errors.New("unexpected status code")
	errNoHTTPClient = errors.New("http client not configured")
)

// NewHTTPClientConfig builds a client whose calls time out after timeout,
// limited to rps requests per second with the given burst.
func NewHTTPClientConfig(timeout time.Duration, rps float64, burst int) HTTPClientConfig {
	return HTTPClientConfig{
		Client:  &http.Client{Timeout: timeout},
		Limiter: rate.NewLimiter(rate.Limit(rps), burst),
	}
}

func newCircuitBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})
}

// doRequest executes one request through the circuit breaker. There are no
// retries: every failure, including an open circuit or an expired context,
// is reported as weather.ErrRemoteUnavailable.
func doRequest(
	ctx context.Context,
	cfg HTTPClientConfig,
	cb *gobreaker.CircuitBreaker,
	buildRequest func() (*http.Request, error),
) (*http.Response, error) {
	if cfg.Client == nil {
		return nil, fmt.Errorf("%w: %s: %v", weather.ErrRemoteUnavailable, cb.Name(), errNoHTTPClient)
	}

	if cfg.Limiter != nil {
		if err := cfg.Limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: rate limit wait: %v", weather.ErrRemoteUnavailable, err)
		}
	}

	req, err := buildRequest()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: build request: %v", weather.ErrRemoteUnavailable, cb.Name(), err)
	}

	// Ensure the request obeys context cancellation.
	req = req.WithContext(ctx)

	result, err := cb.Execute(func() (interface{}, error) {
		resp, execErr := cfg.Client.Do(req)
		if execErr != nil {
			return nil, execErr
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			resp.Body.Close()
			return nil, errRateLimited
		}
		if resp.StatusCode >= 500 {
			resp.Body.Close()
			return nil, errServerError
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			resp.Body.Close()
			return nil, fmt.Errorf("%w: %d", errUnexpected, resp.StatusCode)
		}

		return resp, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", weather.ErrRemoteUnavailable, cb.Name(), err)
	}

	resp, ok := result.(*http.Response)
	if !ok {
		return nil, fmt.Errorf("unexpected result type from circuit breaker")
	}
	return resp, nil
}

// getJSON issues a GET on url and decodes the JSON body into out.
func getJSON(ctx context.Context, cfg HTTPClientConfig, cb *gobreaker.CircuitBreaker, url string, out any) error {
	resp, err := doRequest(ctx, cfg, cb, func() (*http.Request, error) {
		req, err := http.NewRequest(http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		return req, nil
	})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %s: decode response: %v", weather.ErrRemoteUnavailable, cb.Name(), err)
	}
	return nil
}

// number decodes a JSON number or a numeric string. The forecast provider
// sends both depending on the field and the day.
type number float64

func (n *number) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*n = 0
		return nil
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return fmt.Errorf("invalid number %s: %w", b, err)
	}
	*n = number(f)
	return nil
}
