// Package client talks to the footprint API from the editor side.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"footprint-app/internal/apperr"
	"footprint-app/internal/pages"
)

type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// New builds a client. token may be empty for anonymous calls; hc may be nil.
func New(baseURL, token string, hc *http.Client) *Client {
	if hc == nil {
		hc = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), token: token, http: hc}
}

type errorBody struct {
	Error string      `json:"error"`
	Kind  apperr.Kind `json:"kind"`
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return apperr.Unavailable(err, "API unreachable")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return apperr.Unavailable(err, "Failed to read response")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var eb errorBody
		_ = json.Unmarshal(body, &eb)
		if eb.Error == "" {
			eb.Error = http.StatusText(resp.StatusCode)
		}
		if eb.Kind == "" {
			return fmt.Errorf("HTTP error: %d %s", resp.StatusCode, eb.Error)
		}
		return &apperr.Error{Kind: eb.Kind, Msg: eb.Error}
	}
	return json.Unmarshal(body, out)
}

// Ownership asks the server's ownership gate about slug.
func (c *Client) Ownership(ctx context.Context, slug string) (pages.Ownership, error) {
	var out pages.Ownership
	err := c.get(ctx, "/pages/"+url.PathEscape(slug)+"/ownership", &out)
	return out, err
}

// Resolve returns the serial owning slug.
func (c *Client) Resolve(ctx context.Context, slug string) (int64, error) {
	var out struct {
		Serial int64 `json:"serial"`
	}
	err := c.get(ctx, "/resolve/"+url.PathEscape(slug), &out)
	return out.Serial, err
}
