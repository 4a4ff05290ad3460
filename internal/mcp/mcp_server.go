// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/mrpulse/mrpulse/internal/contract"
)

// NewMCPServer initializes and configures the mrpulse MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, client contract.PlatformClient) *server.MCPServer {
	s := server.NewMCPServer(
		"MR Pulse Analysis Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		client:  client,
	}

	// --- 1. Tool: analyze_timeline ---
	s.AddTool(mcp.NewTool("analyze_timeline",
		mcp.WithDescription("Reconstruct the full review timeline of a single merge request: events, lifecycle segments, Dev/Wait/Review/Merge phases, and summary counts."),
		mcp.WithString("project", mcp.Description("Project id or URL-encoded path, e.g. '42' or 'group/repo'."), mcp.Required()),
		mcp.WithNumber("iid", mcp.Description("The MR iid within the project."), mcp.Required()),
	), h.handleAnalyzeTimeline)

	// --- 2. Tool: analyze_batch ---
	s.AddTool(mcp.NewTool("analyze_batch",
		mcp.WithDescription("Analyze multiple merge requests in parallel and return comparison rows plus aggregate statistics (percentiles, MR types, DORA tiers)."),
		mcp.WithString("project", mcp.Description("Project id or URL-encoded path."), mcp.Required()),
		mcp.WithString("iids", mcp.Description("Comma-separated MR iids, e.g. '101,102,103'."), mcp.Required()),
		mcp.WithString("sort", mcp.Description("Sort field (iid, created_at, cycle_days, dev_days, wait_days, review_days, merge_days, commits, ai_reviews, human_comments).")),
		mcp.WithString("order", mcp.Description("Sort order (asc, desc). Defaults to 'asc'."), mcp.Enum("asc", "desc")),
		mcp.WithNumber("limit", mcp.Description("Limit the number of rows returned.")),
		mcp.WithString("author", mcp.Description("Case-insensitive author substring filter.")),
		mcp.WithString("status", mcp.Description("Exact MR state filter, e.g. 'merged' or 'opened'.")),
		mcp.WithBoolean("ai_only", mcp.Description("Keep only MRs with at least one AI review.")),
	), h.handleAnalyzeBatch)

	return s
}

// StartMCPServer starts the mrpulse MCP server.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, client contract.PlatformClient) error {
	s := NewMCPServer(baseCfg, client)
	return server.ServeStdio(s)
}
