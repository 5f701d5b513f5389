// Package remote is the HTTP client for the studydeck backend API.
//
// Every response is wrapped in an envelope {success, data, error}. Transport
// failures, non-2xx statuses and success=false all surface as
// *common.RemoteRequestError.
package remote

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
	"time"

	"github.com/dmitrijs2005/studydeck/internal/client/models"
	"github.com/dmitrijs2005/studydeck/internal/common"
)

const (
	defaultTimeout          = 10 * time.Second
	responseBodyLimit int64 = 8 << 20
)

var errBaseURLRequired = errors.New("remote api base url is required")

// API is the subset of the backend the sync engine talks to.
type API interface {
	ListLists(ctx context.Context) ([]models.List, error)
	CreateList(ctx context.Context, l *models.List) error
	UpdateList(ctx context.Context, l *models.List) error
	DeleteList(ctx context.Context, id string) error

	ListCards(ctx context.Context) ([]models.Card, error)
	CreateCard(ctx context.Context, c *models.Card) error
	UpdateCard(ctx context.Context, c *models.Card) error
	DeleteCard(ctx context.Context, id string) error

	UpdateUser(ctx context.Context, u *models.User) error
}

type Client struct {
	httpClient *http.Client
	baseURL    string
}

type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithTimeout sets the timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient = &http.Client{Timeout: d}
		}
	}
}

func NewClient(baseURL string, opts ...Option) (*Client, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if trimmed == "" {
		return nil, errBaseURLRequired
	}
	if _, err := url.Parse(trimmed); err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}

	c := &Client{
		httpClient: &http.Client{Timeout: defaultTimeout},
		baseURL:    trimmed,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c, nil
}

type tokenKey struct{}

// WithAccessToken returns a context whose requests carry token as the bearer
// credential.
func WithAccessToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

func AccessToken(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(tokenKey{}).(string)
	return token, ok && token != ""
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
}

func (c *Client) ListLists(ctx context.Context) ([]models.List, error) {
	var out []models.List
	if err := c.do(ctx, "list lists", http.MethodGet, "/lists", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateList(ctx context.Context, l *models.List) error {
	return c.do(ctx, "create list", http.MethodPost, "/lists", l, nil)
}

func (c *Client) UpdateList(ctx context.Context, l *models.List) error {
	return c.do(ctx, "update list", http.MethodPut, "/lists", l, nil)
}

func (c *Client) DeleteList(ctx context.Context, id string) error {
	return c.do(ctx, "delete list", http.MethodDelete, "/lists/"+url.PathEscape(id), nil, nil)
}

func (c *Client) ListCards(ctx context.Context) ([]models.Card, error) {
	var out []models.Card
	if err := c.do(ctx, "list cards", http.MethodGet, "/cards", nil, &out); err != nil {
		return nil, err
	}
	for i := range out {
		out[i].Normalize()
	}
	return out, nil
}

func (c *Client) CreateCard(ctx context.Context, card *models.Card) error {
	return c.do(ctx, "create card", http.MethodPost, "/cards", card, nil)
}

func (c *Client) UpdateCard(ctx context.Context, card *models.Card) error {
	return c.do(ctx, "update card", http.MethodPut, "/cards", card, nil)
}

func (c *Client) DeleteCard(ctx context.Context, id string) error {
	return c.do(ctx, "delete card", http.MethodDelete, "/cards/"+url.PathEscape(id), nil, nil)
}

func (c *Client) UpdateUser(ctx context.Context, u *models.User) error {
	return c.do(ctx, "update user", http.MethodPut, "/users/"+url.PathEscape(u.ID), u, nil)
}

// do sends body as JSON and decodes the envelope's data into out when out is
// not nil.
func (c *Client) do(ctx context.Context, op, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return &common.RemoteRequestError{Op: op, Err: fmt.Errorf("marshal request: %w", err)}
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return &common.RemoteRequestError{Op: op, Err: fmt.Errorf("build request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token, ok := AccessToken(ctx); ok {
		req.Header.Set(common.AuthorizationHeaderName, common.BearerScheme+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &common.RemoteRequestError{Op: op, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, responseBodyLimit))
	if err != nil {
		return &common.RemoteRequestError{Op: op, Status: resp.StatusCode, Err: fmt.Errorf("read response: %w", err)}
	}

	var env envelope
	decodeErr := json.Unmarshal(raw, &env)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := env.Error
		if decodeErr != nil || msg == "" {
			msg = strings.TrimSpace(string(raw))
		}
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return &common.RemoteRequestError{Op: op, Status: resp.StatusCode, Message: msg}
	}
	if decodeErr != nil {
		return &common.RemoteRequestError{Op: op, Status: resp.StatusCode, Err: fmt.Errorf("decode envelope: %w", decodeErr)}
	}
	if !env.Success {
		msg := env.Error
		if msg == "" {
			msg = "request was not successful"
		}
		return &common.RemoteRequestError{Op: op, Status: resp.StatusCode, Message: msg}
	}

	if out == nil {
		return nil
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return &common.RemoteRequestError{Op: op, Status: resp.StatusCode, Message: "response has no data"}
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return &common.RemoteRequestError{Op: op, Status: resp.StatusCode, Err: fmt.Errorf("decode data: %w", err)}
	}
	return nil
}

// IsNotFound reports whether err is a backend 404.
func IsNotFound(err error) bool {
	var re *common.RemoteRequestError
	return errors.As(err, &re) && re.Status == http.StatusNotFound
}
