// Package client calls the HTTP tool endpoint of a running server.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

type Client struct {
	client *resty.Client
}

type toolResponse struct {
	Tool    string `json:"tool"`
	Text    string `json:"text"`
	IsError bool   `json:"is_error"`
}

// New targets a server root such as http://localhost:8080.
func New(baseURL string, timeout time.Duration) *Client {
	c := resty.New()
	c.SetBaseURL(strings.TrimRight(baseURL, "/") + "/api/v1")
	c.SetTimeout(timeout)
	c.SetHeader("Accept", "application/json")

	return &Client{client: c}
}

// CallTool returns the tool's text reply. Hints and storage failures are
// text too; an error means the server itself could not be reached or
// answered with a non-200 status.
func (c *Client) CallTool(ctx context.Context, name string, args map[string]any) (string, error) {
	if args == nil {
		args = map[string]any{}
	}

	resp, err := c.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(args).
		SetPathParam("name", name).
		Post("/tools/{name}")
	if err != nil {
		return "", fmt.Errorf("call %s: %w", name, err)
	}
	if resp.StatusCode() != 200 {
		return "", fmt.Errorf("call %s: server returned %s: %s", name, resp.Status(), strings.TrimSpace(resp.String()))
	}

	var tr toolResponse
	if err := json.Unmarshal(resp.Body(), &tr); err != nil {
		return "", fmt.Errorf("call %s: decode response: %w", name, err)
	}
	return tr.Text, nil
}
