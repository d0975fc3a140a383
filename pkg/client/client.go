// Package client talks to a colony-server over HTTP. Worlds run inside the
// server; the client can create and delete them and observe what happens.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/daniacca/colony/internal/census"
	"github.com/daniacca/colony/internal/colony"
)

// Client is a colony-server client. The zero value is not usable; use New.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a client for the server at baseURL (e.g. "http://localhost:8080").
func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{},
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func (c *Client) WithHTTPClient(h *http.Client) *Client {
	c.http = h
	return c
}

// CensusReport is the census of one world as the server reports it.
type CensusReport struct {
	Records []census.Record `json:"records"`
	Summary census.Summary  `json:"summary"`
}

// NotifierInfo describes one registered notifier.
type NotifierInfo struct {
	ID   string `json:"id"`
	Type string `json:"type"`
}

// Health returns nil if the server answers its health check.
func (c *Client) Health(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodGet, nil, nil, "healthz")
	return err
}

// ListWorlds returns the IDs of every hosted world, sorted.
func (c *Client) ListWorlds(ctx context.Context) ([]string, error) {
	var resp struct {
		Worlds []string `json:"worlds"`
	}
	if err := c.getJSON(ctx, &resp, "worlds"); err != nil {
		return nil, err
	}
	return resp.Worlds, nil
}

// CreateWorld seeds a new world. An empty topology lets the server pick.
func (c *Client) CreateWorld(ctx context.Context, id, topology string) error {
	var query url.Values
	if topology != "" {
		query = url.Values{"topology": {topology}}
	}
	_, err := c.do(ctx, http.MethodPost, query, nil, "worlds", id)
	return err
}

// DeleteWorld stops and removes a world.
func (c *Client) DeleteWorld(ctx context.Context, id string) error {
	_, err := c.do(ctx, http.MethodDelete, nil, nil, "worlds", id)
	return err
}

// Snapshot returns the current grid of a world.
func (c *Client) Snapshot(ctx context.Context, id string) (colony.Snapshot, error) {
	var snap colony.Snapshot
	err := c.getJSON(ctx, &snap, "worlds", id, "snapshot")
	return snap, err
}

// Grid returns the grid of a world as printable text.
func (c *Client) Grid(ctx context.Context, id string) (string, error) {
	body, err := c.do(ctx, http.MethodGet, nil, nil, "worlds", id, "grid")
	return string(body), err
}

// Census returns the sampled population history of a world.
func (c *Client) Census(ctx context.Context, id string) (CensusReport, error) {
	var report CensusReport
	err := c.getJSON(ctx, &report, "worlds", id, "census")
	return report, err
}

// ListNotifiers returns every notifier registered on the server.
func (c *Client) ListNotifiers(ctx context.Context) ([]NotifierInfo, error) {
	var resp struct {
		Notifiers []NotifierInfo `json:"notifiers"`
	}
	if err := c.getJSON(ctx, &resp, "notifiers"); err != nil {
		return nil, err
	}
	return resp.Notifiers, nil
}

// RegisterWebhook registers the webhook described by wb.
func (c *Client) RegisterWebhook(ctx context.Context, wb *WebhookBuilder) error {
	jsonData, err := json.Marshal(wb.Build())
	if err != nil {
		return fmt.Errorf("failed to marshal notifier: %w", err)
	}
	_, err = c.do(ctx, http.MethodPost, nil, jsonData, "notifiers")
	return err
}

// UnregisterNotifier removes a notifier.
func (c *Client) UnregisterNotifier(ctx context.Context, id string) error {
	_, err := c.do(ctx, http.MethodDelete, nil, nil, "notifiers", id)
	return err
}

func (c *Client) getJSON(ctx context.Context, out any, elem ...string) error {
	body, err := c.do(ctx, http.MethodGet, nil, nil, elem...)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// do sends one request and returns the body of a 2xx response.
func (c *Client) do(ctx context.Context, method string, query url.Values, payload []byte, elem ...string) ([]byte, error) {
	u, err := url.JoinPath(c.baseURL, elem...)
	if err != nil {
		return nil, fmt.Errorf("failed to build URL: %w", err)
	}
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{Code: resp.StatusCode, Body: string(bytes.TrimSpace(data))}
	}
	return data, nil
}

// StatusError is returned when the server answers with a non-2xx status.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("server returned status %d: %s", e.Code, e.Body)
}
