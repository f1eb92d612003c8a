// Package client is the Go API client used by the tracking CLI. It
// handles the OTP login handshake and implements tracker.Submitter for
// the sampling loop.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/aclog/aclog-server-go/internal/model"
	"github.com/aclog/aclog-server-go/internal/tracker"
)

const requestTimeout = 10 * time.Second

type Client struct {
	baseURL    string
	httpClient *http.Client

	userID int64
	token  string
}

func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
	}
}

// Authenticated reports whether a login has completed.
func (c *Client) Authenticated() bool {
	return c.token != ""
}

func (c *Client) UserID() int64 {
	return c.userID
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

type loginResponse struct {
	Token string     `json:"token"`
	User  model.User `json:"user"`
}

// SendOTP requests a one-time code for the identifier. The code is
// delivered out of band.
func (c *Client) SendOTP(ctx context.Context, identifier string) error {
	return c.post(ctx, "/api/auth/sendOtp", map[string]string{
		"identifier": identifier,
	}, nil)
}

// Login exchanges identifier and code for a session token and
// remembers it for subsequent calls.
func (c *Client) Login(ctx context.Context, identifier, otp string) (*model.User, error) {
	var resp loginResponse
	err := c.post(ctx, "/api/auth/login", map[string]string{
		"identifier": identifier,
		"otp":        otp,
	}, &resp)
	if err != nil {
		return nil, err
	}

	c.token = resp.Token
	c.userID = resp.User.ID
	return &resp.User, nil
}

// Logout destroys the server session and forgets the token. The
// tracker must already be stopped by the caller.
func (c *Client) Logout(ctx context.Context) error {
	if err := c.post(ctx, "/api/auth/logout", struct{}{}, nil); err != nil {
		return err
	}
	c.token = ""
	c.userID = 0
	return nil
}

// Submit implements tracker.Submitter.
func (c *Client) Submit(ctx context.Context, coords tracker.Coordinates) error {
	return c.post(ctx, "/api/location", map[string]float64{
		"latitude":  coords.Latitude,
		"longitude": coords.Longitude,
	}, nil)
}

// ClockIn opens today's work log entry.
func (c *Client) ClockIn(ctx context.Context) error {
	return c.post(ctx, "/api/worklog", map[string]bool{"is_clock_in": true}, nil)
}

// ClockOut closes today's work log entry.
func (c *Client) ClockOut(ctx context.Context) error {
	return c.post(ctx, "/api/worklog", map[string]bool{"is_clock_in": false}, nil)
}

// Trace fetches the reconstructed movement path for a user and day
// range. Requires an admin session.
func (c *Client) Trace(ctx context.Context, userID int64, from, to string) (json.RawMessage, error) {
	url := fmt.Sprintf("%s/api/location/%d/trace?from=%s&to=%s", c.baseURL, userID, from, to)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	c.setAuthHeaders(req)

	var raw json.RawMessage
	if err := c.do(req, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

func (c *Client) post(ctx context.Context, path string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.setAuthHeaders(req)

	return c.do(req, out)
}

func (c *Client) setAuthHeaders(req *http.Request) {
	if c.token == "" {
		return
	}
	req.Header.Set("user-id", strconv.FormatInt(c.userID, 10))
	req.Header.Set("Authorization", "Bearer "+c.token)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp errorResponse
		if decodeErr := json.NewDecoder(resp.Body).Decode(&errResp); decodeErr == nil && errResp.Error != "" {
			return fmt.Errorf("%s (status %d)", errResp.Error, resp.StatusCode)
		}
		return fmt.Errorf("request failed with status %d", resp.StatusCode)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
