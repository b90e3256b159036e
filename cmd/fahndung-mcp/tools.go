package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// envelope mirrors the API response model.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// client calls the fahndung API.
type client struct {
	http *resty.Client
}

func newClient(apiURL, apiKey string) *client {
	return &client{http: resty.New().
		SetBaseURL(apiURL).
		SetTimeout(30*time.Second).
		SetHeader("X-API-Key", apiKey)}
}

// do sends a request and returns the data of a successful response.
func (c *client) do(ctx context.Context, method, path string, body any) (json.RawMessage, error) {
	var env envelope
	req := c.http.R().SetContext(ctx).SetResult(&env).SetError(&env)
	if body != nil {
		req.SetBody(body)
	}
	resp, err := req.Execute(method, path)
	if err != nil {
		return nil, fmt.Errorf("API request failed: %w", err)
	}
	if !env.Success {
		if env.Error != nil {
			return nil, fmt.Errorf("[%s] %s", env.Error.Code, env.Error.Message)
		}
		return nil, fmt.Errorf("API returned status %d", resp.StatusCode())
	}
	return env.Data, nil
}

func result(data json.RawMessage, err error) (*mcp.CallToolResult, error) {
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, data, "", "  "); err != nil {
		return mcp.NewToolResultText(string(data)), nil
	}
	return mcp.NewToolResultText(buf.String()), nil
}

func handleGet(c *client, path func(mcp.CallToolRequest) string) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return result(c.do(ctx, resty.MethodGet, path(request), nil))
	}
}

func handlePost(c *client, path string) server.ToolHandlerFunc {
	return func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return result(c.do(ctx, resty.MethodPost, path, nil))
	}
}

func handleTriggerCrawl(c *client) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		kind, err := request.RequireString("kind")
		if err != nil {
			return mcp.NewToolResultError("kind is required"), nil
		}
		if kind != "persons" && kind != "news" {
			return mcp.NewToolResultError("kind must be 'persons' or 'news'"), nil
		}
		body := map[string][]string{
			"jurisdictions": request.GetStringSlice("jurisdictions", nil),
			"types":         request.GetStringSlice("types", nil),
		}
		return result(c.do(ctx, resty.MethodPost, "/api/v1/crawl/"+kind, body))
	}
}

func handleGetRun(c *client) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := request.RequireString("id")
		if err != nil {
			return mcp.NewToolResultError("id is required"), nil
		}
		return result(c.do(ctx, resty.MethodGet, "/api/v1/runs/"+url.PathEscape(id), nil))
	}
}
