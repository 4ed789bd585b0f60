// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/epiforge/epitrend/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer initializes and configures the Epitrend MCP server without
// starting it. This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config) *server.MCPServer {
	s := server.NewMCPServer(
		"Epitrend Analysis Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
	}

	// --- 1. Tool: aggregate_incidence ---
	s.AddTool(mcp.NewTool("aggregate_incidence",
		mcp.WithDescription("Aggregate a linelist of case dates into a binned incidence table."),
		mcp.WithString("linelist_path", mcp.Description("Path to the linelist CSV file."), mcp.Required()),
		mcp.WithNumber("interval", mcp.Description("Bin width in days. Defaults to 7.")),
		mcp.WithString("group_column", mcp.Description("Optional CSV column to stratify counts by.")),
		mcp.WithString("from", mcp.Description("Optional start date (YYYY-MM-DD) for the aggregation range.")),
		mcp.WithString("to", mcp.Description("Optional end date (YYYY-MM-DD) for the aggregation range.")),
	), h.handleAggregateIncidence)

	// --- 2. Tool: fit_trend ---
	s.AddTool(mcp.NewTool("fit_trend",
		mcp.WithDescription("Fit a log-linear growth model to binned incidence and report the growth rate, confidence interval and doubling/halving time."),
		mcp.WithString("linelist_path", mcp.Description("Path to the linelist CSV file."), mcp.Required()),
		mcp.WithNumber("interval", mcp.Description("Bin width in days. Defaults to 7.")),
		mcp.WithString("group_column", mcp.Description("Optional CSV column to stratify counts by.")),
		mcp.WithString("group", mcp.Description("Fit only this group. Defaults to every group.")),
		mcp.WithNumber("window_start", mcp.Description("First bin index of the fit window.")),
		mcp.WithNumber("window_end", mcp.Description("Last bin index of the fit window.")),
		mcp.WithNumber("level", mcp.Description("Confidence level in (0,1). Defaults to 0.95.")),
	), h.handleFitTrend)

	// --- 3. Tool: find_split ---
	s.AddTool(mcp.NewTool("find_split",
		mcp.WithDescription("Search for the changepoint bin that best separates an epidemic into growth and decay phases."),
		mcp.WithString("linelist_path", mcp.Description("Path to the linelist CSV file."), mcp.Required()),
		mcp.WithNumber("interval", mcp.Description("Bin width in days. Defaults to 7.")),
		mcp.WithString("group_column", mcp.Description("Optional CSV column to stratify counts by.")),
		mcp.WithString("group", mcp.Description("Search only this group. Defaults to every group.")),
		mcp.WithNumber("min_window", mcp.Description("Minimum bins on each side of the split. Defaults to 2.")),
		mcp.WithNumber("level", mcp.Description("Confidence level in (0,1). Defaults to 0.95.")),
	), h.handleFindSplit)

	return s
}

// StartMCPServer starts the Epitrend MCP server on stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config) error {
	s := NewMCPServer(baseCfg)
	return server.ServeStdio(s)
}
