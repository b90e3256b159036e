package main

import (
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

func main() {
	apiURL := os.Getenv("FAHNDUNG_API_URL")
	if apiURL == "" {
		apiURL = "http://127.0.0.1:8080"
	}
	apiKey := os.Getenv("FAHNDUNG_API_KEY")
	if apiKey == "" {
		fmt.Fprintln(os.Stderr, "FAHNDUNG_API_KEY is required")
		os.Exit(1)
	}

	s := newServer(newClient(apiURL, apiKey))
	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}
}

func newServer(c *client) *server.MCPServer {
	s := server.NewMCPServer(
		"fahndung",
		"1.0.0",
		server.WithToolCapabilities(false),
	)

	s.AddTool(mcp.NewTool("list_sources",
		mcp.WithDescription("List the police sources the crawler knows, with pagination style, ordering and retention window."),
	), handleGet(c, func(mcp.CallToolRequest) string { return "/api/v1/sources" }))

	s.AddTool(mcp.NewTool("trigger_crawl",
		mcp.WithDescription("Start a crawl session in the background. Returns the session ID; poll it with get_run."),
		mcp.WithString("kind",
			mcp.Required(),
			mcp.Description("Session kind: 'persons' (wanted and missing notices) or 'news'"),
			mcp.Enum("persons", "news"),
		),
		mcp.WithArray("jurisdictions",
			mcp.Description("Limit to these states, e.g. [\"Berlin\", \"Bayern\"]"),
		),
		mcp.WithArray("types",
			mcp.Description("Limit person crawls to 'wanted' or 'missing'"),
		),
	), handleTriggerCrawl(c))

	s.AddTool(mcp.NewTool("run_retention",
		mcp.WithDescription("Delete stored records older than their retention window (persons one year, news six months)."),
	), handlePost(c, "/api/v1/retention"))

	s.AddTool(mcp.NewTool("list_runs",
		mcp.WithDescription("List recent crawl and retention sessions, newest first."),
		mcp.WithNumber("limit", mcp.Description("Maximum number of sessions (default 20)")),
	), handleGet(c, func(req mcp.CallToolRequest) string {
		return fmt.Sprintf("/api/v1/runs?limit=%d", req.GetInt("limit", 20))
	}))

	s.AddTool(mcp.NewTool("get_run",
		mcp.WithDescription("Get the report of one session, including per-source outcomes and item failures."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Session ID returned by trigger_crawl")),
	), handleGetRun(c))

	return s
}
