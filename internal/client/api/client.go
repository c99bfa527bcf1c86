// Package api is the HTTP client the CLI uses to talk to the projectmanager
// server. It holds the session token pair and rotates it when the server
// rejects an expired access token.
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
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/projectmanager/internal/common"
)

var (
	// ErrUnavailable wraps transport failures: the server could not be reached.
	ErrUnavailable = errors.New("server unavailable")
	// ErrNotLoggedIn is returned by protected calls made without a session.
	ErrNotLoggedIn = errors.New("not logged in")
)

// Client is safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client

	mu           sync.Mutex
	accessToken  string
	refreshToken string
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *Client) tokens() (access, refresh string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.accessToken, c.refreshToken
}

func (c *Client) setTokens(access, refresh string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.accessToken, c.refreshToken = access, refresh
}

// LoggedIn reports whether the client holds a session.
func (c *Client) LoggedIn() bool {
	_, refresh := c.tokens()
	return refresh != ""
}

type request struct {
	method  string
	path    string
	query   url.Values
	body    any
	auth    bool
	payload []byte
}

func (c *Client) send(ctx context.Context, r *request, access string) (*http.Response, error) {
	var body io.Reader
	if r.payload != nil {
		body = bytes.NewReader(r.payload)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, c.baseURL+r.path, body)
	if err != nil {
		return nil, err
	}
	if len(r.query) > 0 {
		req.URL.RawQuery = r.query.Encode()
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if access != "" {
		req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+access)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return resp, nil
}

// do performs r and decodes a 2xx body into out. A protected call answered
// with 401 triggers one token rotation and one retry.
func (c *Client) do(ctx context.Context, r request, out any) error {
	if r.body != nil {
		payload, err := json.Marshal(r.body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		r.payload = payload
	}

	var access string
	if r.auth {
		access, _ = c.tokens()
		if access == "" {
			return ErrNotLoggedIn
		}
	}

	resp, err := c.send(ctx, &r, access)
	if err != nil {
		return err
	}

	if r.auth && resp.StatusCode == http.StatusUnauthorized {
		resp.Body.Close()

		if err := c.refresh(ctx); err != nil {
			return err
		}
		access, _ = c.tokens()
		resp, err = c.send(ctx, &r, access)
		if err != nil {
			return err
		}
	}
	defer resp.Body.Close()

	return decode(resp, out)
}

// refresh redeems the refresh token for a new pair. A rejected token ends the
// session.
func (c *Client) refresh(ctx context.Context) error {
	_, refresh := c.tokens()
	if refresh == "" {
		return ErrNotLoggedIn
	}

	var pair tokenPair
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/api/auth/refresh",
		body:   map[string]string{"refreshToken": refresh},
	}, &pair)
	if err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			c.setTokens("", "")
		}
		return err
	}

	c.setTokens(pair.AccessToken, pair.RefreshToken)
	return nil
}

func errorKind(status int) error {
	switch status {
	case http.StatusUnauthorized:
		return common.ErrorUnauthorized
	case http.StatusNotFound:
		return common.ErrorNotFound
	case http.StatusBadRequest:
		return common.ErrorBadRequest
	case http.StatusBadGateway:
		return common.ErrDeliveryFailure
	default:
		return common.ErrorInternal
	}
}

// decode maps non-2xx answers onto the common sentinels. On a delivery
// failure the stored resource is still decoded into out.
func decode(resp *http.Response, out any) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if out == nil {
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
		return nil
	}

	var eb errorBody
	_ = json.NewDecoder(resp.Body).Decode(&eb)

	kind := errorKind(resp.StatusCode)
	if kind == common.ErrDeliveryFailure && out != nil && len(eb.Resource) > 0 {
		_ = json.Unmarshal(eb.Resource, out)
	}
	if eb.Error == "" {
		eb.Error = http.StatusText(resp.StatusCode)
	}
	return fmt.Errorf("%w: %s", kind, eb.Error)
}

func pathf(format string, ids ...string) string {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = url.PathEscape(id)
	}
	return fmt.Sprintf(format, args...)
}
