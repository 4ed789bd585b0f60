package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/epiforge/epitrend/core"
	"github.com/epiforge/epitrend/internal/contract"
	"github.com/epiforge/epitrend/schema"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
}

// applyCommonArgs copies the shared aggregation arguments onto a cloned config.
func (h *toolHandler) applyCommonArgs(cfg *contract.Config, request mcp.CallToolRequest) {
	cfg.LinelistPath = request.GetString("linelist_path", cfg.LinelistPath)
	if i := request.GetInt("interval", 0); i > 0 {
		cfg.IntervalDays = i
	}
	if g := request.GetString("group_column", ""); g != "" {
		cfg.GroupColumn = g
	}
}

func (h *toolHandler) handleAggregateIncidence(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	h.applyCommonArgs(cfg, request)

	if from := request.GetString("from", ""); from != "" {
		t, err := time.Parse(cfg.DateFormat, from)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid from date: %v", err)), nil
		}
		cfg.From = t
	}
	if to := request.GetString("to", ""); to != "" {
		t, err := time.Parse(cfg.DateFormat, to)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid to date: %v", err)), nil
		}
		cfg.To = t
	}

	table, err := core.GetCountsResult(cfg)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("aggregation failed: %v", err)), nil
	}

	jsonData, _ := json.MarshalIndent(table, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleFitTrend(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	h.applyCommonArgs(cfg, request)
	cfg.Group = request.GetString("group", cfg.Group)
	if l := request.GetFloat("level", 0); l > 0 && l < 1 {
		cfg.Level = l
	}

	start := request.GetInt("window_start", -1)
	end := request.GetInt("window_end", -1)
	switch {
	case start >= 0 && end >= start:
		cfg.Window = &schema.Window{Start: start, End: end}
	case start >= 0 || end >= 0:
		return mcp.NewToolResultError("window_start and window_end must be set together"), nil
	}

	models, _, err := core.GetFitResults(cfg)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("fit failed: %v", err)), nil
	}

	type fitWithTrend struct {
		Trend string `json:"trend"`
		schema.FittedModel
	}
	enriched := make([]fitWithTrend, len(models))
	for i, m := range models {
		enriched[i] = fitWithTrend{Trend: string(schema.Trend(m)), FittedModel: m}
	}

	jsonData, _ := json.MarshalIndent(enriched, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleFindSplit(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	h.applyCommonArgs(cfg, request)
	cfg.Group = request.GetString("group", cfg.Group)
	if mw := request.GetInt("min_window", 0); mw >= contract.DefaultMinWindow {
		cfg.MinWindow = mw
	}
	if l := request.GetFloat("level", 0); l > 0 && l < 1 {
		cfg.Level = l
	}

	splits, _, err := core.GetSplitResults(cfg)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("split search failed: %v", err)), nil
	}

	jsonData, _ := json.MarshalIndent(splits, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}
