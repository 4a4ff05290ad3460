package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/mrpulse/mrpulse/core"
	"github.com/mrpulse/mrpulse/internal/contract"
	"github.com/mrpulse/mrpulse/schema"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	client  contract.PlatformClient
}

func (h *toolHandler) handleAnalyzeTimeline(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	project := request.GetString("project", "")
	iid := request.GetInt("iid", 0)
	if project == "" || iid <= 0 {
		return mcp.NewToolResultError("project and a positive iid are required"), nil
	}

	timeline, err := core.AnalyzeMR(ctx, h.client, cfg, project, iid)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("timeline analysis failed: %v", err)), nil
	}

	jsonData, _ := json.MarshalIndent(timeline, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleAnalyzeBatch(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	project := request.GetString("project", "")

	iids, err := contract.ParseIIDList(request.GetString("iids", ""))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid iids: %v", err)), nil
	}

	sortSpec, err := contract.ParseSortSpec(request.GetString("sort", ""), request.GetString("order", ""))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid sort parameters: %v", err)), nil
	}

	var filter *schema.BatchFilter
	author := request.GetString("author", "")
	status := request.GetString("status", "")
	if author != "" || status != "" {
		filter = &schema.BatchFilter{Author: author, Status: status}
	}

	input := &schema.BatchInput{
		ProjectID: project,
		MRIIDs:    iids,
		Filter:    filter,
		Sort:      sortSpec,
		Limit:     request.GetInt("limit", 0),
	}

	result, err := core.AnalyzeBatch(ctx, h.client, cfg, input, nil)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("batch analysis failed: %v", err)), nil
	}

	if request.GetBool("ai_only", false) {
		core.FilterAIReviewedRows(result)
	}

	jsonData, _ := json.MarshalIndent(result, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}
