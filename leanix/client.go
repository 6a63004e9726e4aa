// Package leanix talks to the LeanIX Poll API.
package leanix

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/mbolis/poll-creator/cache"
	"github.com/mbolis/poll-creator/log"
	"github.com/mbolis/poll-creator/model"
)

const (
	tokenPath = "/services/mtm/v1/oauth2/token"
	pollsPath = "/services/poll/v2/polls"

	DefaultMaxBodySize = 4 << 20

	// access tokens are renewed this long before they expire
	tokenLeeway = 60 * time.Second
	// used when the token endpoint does not say
	defaultTokenLifetime = time.Hour
)

// ErrAuthentication is returned when the API token cannot be exchanged for
// an access token.
var ErrAuthentication = errors.New("failed to authenticate with LeanIX")

// APIError is a non-2xx answer of the Poll API.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("LeanIX API error (%d): %s", e.StatusCode, e.Body)
}

// ResponseTooLargeError is returned when a response body exceeds the limit.
type ResponseTooLargeError struct {
	Limit int64
}

func (e ResponseTooLargeError) Error() string {
	return fmt.Sprintf("response body exceeds %d bytes", e.Limit)
}

// Observer receives the outcome of each Poll API call.
type Observer interface {
	RecordUpstream(operation string, duration time.Duration, err error)
}

type nopObserver struct{}

func (nopObserver) RecordUpstream(string, time.Duration, error) {}

// Client is shared by all requests. Access tokens are cached per instance
// and API token, so concurrent requests for the same workspace share one
// token exchange.
type Client struct {
	http        *http.Client
	tokens      *cache.Cache[string]
	observer    Observer
	maxBodySize int64
}

type Option func(*Client)

func WithObserver(o Observer) Option {
	return func(c *Client) {
		if o != nil {
			c.observer = o
		}
	}
}

// WithMaxBodySize bounds the size of the responses read. Values below 1
// keep DefaultMaxBodySize.
func WithMaxBodySize(n int64) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxBodySize = n
		}
	}
}

// WithTokenCache replaces the access token cache, e.g. to control its clock.
func WithTokenCache(tokens *cache.Cache[string]) Option {
	return func(c *Client) {
		c.tokens = tokens
	}
}

func NewClient(httpClient *http.Client, opts ...Option) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	c := &Client{
		http:        httpClient,
		tokens:      cache.New[string](),
		observer:    nopObserver{},
		maxBodySize: DefaultMaxBodySize,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}

func tokenKey(creds Credentials) string {
	sum := sha256.Sum256([]byte(creds.BaseURL + "\n" + creds.APIToken))
	return hex.EncodeToString(sum[:])
}

func (c *Client) accessToken(ctx context.Context, creds Credentials) (string, error) {
	return c.tokens.GetOrLoad(ctx, tokenKey(creds), func(ctx context.Context) (string, time.Duration, error) {
		start := time.Now()
		token, lifetime, err := c.exchangeToken(ctx, creds)
		c.observer.RecordUpstream("token", time.Since(start), err)
		if err != nil {
			log.Errorf("leanix.token: %s", err)
			return "", 0, fmt.Errorf("%w: %w", ErrAuthentication, err)
		}
		ttl := lifetime - tokenLeeway
		if ttl < time.Second {
			ttl = time.Second
		}
		return token, ttl, nil
	})
}

func (c *Client) exchangeToken(ctx context.Context, creds Credentials) (string, time.Duration, error) {
	form := url.Values{"grant_type": {"client_credentials"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, creds.BaseURL+tokenPath, strings.NewReader(form.Encode()))
	if err != nil {
		return "", 0, err
	}
	req.SetBasicAuth("apitoken", creds.APIToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	body, err := c.do(req)
	if err != nil {
		return "", 0, err
	}

	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return "", 0, fmt.Errorf("decode token response: %w", err)
	}
	if tr.AccessToken == "" {
		return "", 0, errors.New("token response carries no access_token")
	}
	lifetime := defaultTokenLifetime
	if tr.ExpiresIn > 0 {
		lifetime = time.Duration(tr.ExpiresIn) * time.Second
	}
	return tr.AccessToken, lifetime, nil
}

type createResponse struct {
	Status string `json:"status"`
	Data   *struct {
		ID string `json:"id"`
	} `json:"data"`
}

// CreatePoll submits a poll and returns its id. The id is empty when the
// API accepted the poll without reporting one.
func (c *Client) CreatePoll(ctx context.Context, creds Credentials, poll *model.PollCreate) (id string, err error) {
	start := time.Now()
	defer func() { c.observer.RecordUpstream("create_poll", time.Since(start), err) }()

	payload, err := json.Marshal(poll)
	if err != nil {
		return "", fmt.Errorf("encode poll: %w", err)
	}
	log.Debugf("leanix.create_poll: %s", payload)

	req, err := c.newRequest(ctx, creds, http.MethodPost, pollsPath, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	body, err := c.do(req)
	if err != nil {
		log.Errorf("leanix.create_poll: %s", err)
		return "", err
	}

	var resp createResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("decode create poll response: %w", err)
	}
	if resp.Status == "OK" && resp.Data != nil {
		id = resp.Data.ID
	}
	return id, nil
}

// GetPoll returns the raw JSON representation of a poll.
func (c *Client) GetPoll(ctx context.Context, creds Credentials, pollID string) (poll []byte, err error) {
	start := time.Now()
	defer func() { c.observer.RecordUpstream("get_poll", time.Since(start), err) }()

	req, err := c.newRequest(ctx, creds, http.MethodGet, pollsPath+"/"+url.PathEscape(pollID), nil)
	if err != nil {
		return nil, err
	}
	body, err := c.do(req)
	if err != nil {
		log.Warnf("leanix.get_poll %s: %s", pollID, err)
		return nil, err
	}
	if !json.Valid(body) {
		return nil, errors.New("get poll: response is not JSON")
	}
	return body, nil
}

func (c *Client) newRequest(ctx context.Context, creds Credentials, method, path string, body io.Reader) (*http.Request, error) {
	token, err := c.accessToken(ctx, creds)
	if err != nil {
		return nil, err
	}

	u := creds.BaseURL + path + "?" + url.Values{"workspaceId": {creds.WorkspaceID}}.Encode()
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

// do sends req and returns the body of a 2xx response.
func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("reach LeanIX: %w", err)
	}
	defer resp.Body.Close()

	body, err := readAllWithLimit(resp.Body, c.maxBodySize)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}
	return body, nil
}

func readAllWithLimit(r io.Reader, limit int64) ([]byte, error) {
	if limit <= 0 {
		return io.ReadAll(r)
	}
	data, err := io.ReadAll(&io.LimitedReader{R: r, N: limit + 1})
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, ResponseTooLargeError{Limit: limit}
	}
	return data, nil
}
