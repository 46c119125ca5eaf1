// Package rest posts player actions and fetches game snapshots over HTTP.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"trio.game/internal/protocol"
)

type Config struct {
	ServerURL string
	GameID    string
	AuthToken string
	Timeout   time.Duration
	Logger    *log.Logger
	// HTTPClient overrides the default client; Timeout is ignored then.
	HTTPClient *http.Client
}

type Client struct {
	base   string
	token  string
	http   *http.Client
	log    *log.Logger
	gameID string
}

// ActionError is a rejected request.
type ActionError struct {
	Status  int
	Code    string
	Message string
}

func (e *ActionError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s (status %d)", e.Code, e.Status)
	}
	return fmt.Sprintf("%s (status %d): %s", e.Code, e.Status, e.Message)
}

// errorBody is the server's JSON error document.
type errorBody struct {
	Status  int    `json:"status"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

func New(cfg Config) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.ServerURL), "/")
	if base == "" {
		return nil, fmt.Errorf("empty server url")
	}
	if strings.TrimSpace(cfg.GameID) == "" {
		return nil, fmt.Errorf("empty game id")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: cfg.Timeout}
	}
	c := &Client{
		base:   base + "/games/" + url.PathEscape(cfg.GameID),
		token:  cfg.AuthToken,
		http:   hc,
		log:    cfg.Logger,
		gameID: cfg.GameID,
	}
	if c.log == nil {
		c.log = log.New(io.Discard, "", 0)
	}
	return c, nil
}

// Send posts one action. Rejections come back as *ActionError.
func (c *Client) Send(ctx context.Context, a protocol.Action) error {
	if err := a.Validate(); err != nil {
		return &ActionError{Code: protocol.ErrBadRequest, Message: err.Error()}
	}
	buf, err := json.Marshal(a)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/actions", bytes.NewReader(buf))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	_, err = c.do(req)
	if err != nil {
		c.log.Printf("POST %s %s: %v", c.gameID, a.Type, err)
		return err
	}
	c.log.Printf("POST %s %s ok", c.gameID, a.Type)
	return nil
}

// FetchRaw returns the snapshot document as received.
func (c *Client) FetchRaw(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	return c.do(req)
}

func (c *Client) Fetch(ctx context.Context) (protocol.Snapshot, error) {
	raw, err := c.FetchRaw(ctx)
	if err != nil {
		return protocol.Snapshot{}, err
	}
	snap, err := protocol.DecodeSnapshot(raw)
	if err != nil {
		return protocol.Snapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}
	return snap, nil
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &ActionError{Code: protocol.ErrTransport, Message: err.Error()}
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, &ActionError{Status: resp.StatusCode, Code: protocol.ErrTransport, Message: err.Error()}
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return body, nil
	}
	e := &ActionError{Status: resp.StatusCode, Code: protocol.CodeForStatus(resp.StatusCode)}
	var eb errorBody
	if json.Unmarshal(body, &eb) == nil && (eb.Message != "" || eb.Error != "") {
		e.Message = eb.Message
		if e.Message == "" {
			e.Message = eb.Error
		}
	} else {
		e.Message = strings.TrimSpace(string(body))
	}
	return nil, e
}
