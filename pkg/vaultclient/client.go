package vaultclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/cuemby/rotator-helper/pkg/log"
	"github.com/cuemby/rotator-helper/pkg/rotatorerr"
)

const requestTimeout = 30 * time.Second

var backoffSchedule = []time.Duration{
	2 * time.Second,
	4 * time.Second,
	6 * time.Second,
	8 * time.Second,
	10 * time.Second,
}

// Client is an HTTP client for a Vaultwarden-compatible vault. It is safe
// for concurrent use by multiple goroutines: the underlying *http.Client
// requires no locking, and the bearer token is guarded by a mutex since
// login (a single write) races against concurrent per-secret reads during
// a rotation run.
type Client struct {
	httpClient *http.Client
	baseURL    string
	debugAPI   bool

	mu    sync.RWMutex
	token string
}

// New constructs a Client against baseURL (e.g. "https://vault.example.org").
func New(baseURL string, debugAPI bool) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: requestTimeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		debugAPI:   debugAPI,
	}
}

func (c *Client) setToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

func (c *Client) authHeader() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return "Bearer " + c.token
}

// serverErrorRetryDelay is the single backoff applied before retrying a
// non-429 5xx response. 429s instead walk backoffSchedule.
const serverErrorRetryDelay = 2 * time.Second

// doJSON issues an HTTP request with an optional JSON body, applies the
// bearer token, retries on 429 with the fixed backoff schedule, retries
// any other 5xx exactly once, reports 404 as a Resolution error, and
// unmarshals a successful JSON response into out (if out is non-nil).
func (c *Client) doJSON(ctx context.Context, method, path string, body any, out any) error {
	var encoded []byte
	if body != nil {
		var err error
		encoded, err = json.Marshal(body)
		if err != nil {
			return rotatorerr.New(rotatorerr.Transport, "vaultclient: marshal request body", err)
		}
	}

	serverErrRetried := false
	var delay time.Duration
	for attempt := 0; ; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		var bodyReader io.Reader
		if encoded != nil {
			bodyReader = bytes.NewReader(encoded)
		}

		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
		if err != nil {
			return rotatorerr.New(rotatorerr.Transport, "vaultclient: build request", err)
		}
		if encoded != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		req.Header.Set("Authorization", c.authHeader())

		if c.debugAPI {
			log.WithComponent("vaultclient").Debug().Str("method", method).Str("path", path).Msg("request")
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return rotatorerr.New(rotatorerr.Transport, fmt.Sprintf("vaultclient: %s %s", method, path), err)
		}

		respBody, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			return rotatorerr.New(rotatorerr.Transport, "vaultclient: read response body", readErr)
		}

		if resp.StatusCode == http.StatusTooManyRequests && attempt < len(backoffSchedule) {
			delay = backoffSchedule[attempt]
			continue
		}

		if resp.StatusCode >= 500 && resp.StatusCode < 600 && !serverErrRetried {
			serverErrRetried = true
			delay = serverErrorRetryDelay
			continue
		}

		if resp.StatusCode == http.StatusUnauthorized {
			return rotatorerr.New(rotatorerr.Auth, fmt.Sprintf("vaultclient: %s %s", method, path),
				fmt.Errorf("401 unauthorized: %s", string(respBody)))
		}

		if resp.StatusCode == http.StatusNotFound {
			return rotatorerr.New(rotatorerr.Resolution, fmt.Sprintf("vaultclient: %s %s", method, path),
				fmt.Errorf("404 not found: %s", string(respBody)))
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return rotatorerr.New(rotatorerr.Transport, fmt.Sprintf("vaultclient: %s %s", method, path),
				fmt.Errorf("status %d: %s", resp.StatusCode, string(respBody)))
		}

		if out != nil && len(respBody) > 0 {
			if err := json.Unmarshal(respBody, out); err != nil {
				return rotatorerr.New(rotatorerr.Transport, "vaultclient: decode response", err)
			}
		}
		return nil
	}
}

// doJSONStatus is like doJSON but returns the raw status code instead of
// translating non-2xx into an error, so callers (ListMembers) can special
// case 404.
func (c *Client) doJSONStatus(ctx context.Context, method, path string, out any) (int, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return 0, rotatorerr.New(rotatorerr.Transport, "vaultclient: build request", err)
	}
	req.Header.Set("Authorization", c.authHeader())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, rotatorerr.New(rotatorerr.Transport, fmt.Sprintf("vaultclient: %s %s", method, path), err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, rotatorerr.New(rotatorerr.Transport, "vaultclient: read response body", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp.StatusCode, nil
	}
	if out != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return resp.StatusCode, rotatorerr.New(rotatorerr.Transport, "vaultclient: decode response", err)
		}
	}
	return resp.StatusCode, nil
}

func formEncode(values map[string]string) string {
	v := url.Values{}
	for k, val := range values {
		v.Set(k, val)
	}
	return v.Encode()
}
