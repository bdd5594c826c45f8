package mcp

import (
	"context"

	mcplib "github.com/mark3labs/mcp-go/mcp"

	"github.com/labeveryday/strands-hub-mcp/internal/objstore"
)

func (s *Server) registerMetricsTools() {
	// metrics_list — record keys under a date range.
	s.mcpServer.AddTool(
		mcplib.NewTool("metrics_list",
			mcplib.WithDescription(`List run metrics record keys, newest data grouped by date.

Records live under date folders (metrics/2026-08-24/<run_id>.json), so
date_prefix narrows the scan: "2026-08-24" is one day, "2026-08" a
month, empty means everything. When agent_id is set, each record on the
page is matched on the agent_id field inside the record — filtered
pages can come back short or even empty while further pages remain, so
keep following next_continuation_token.

EXAMPLE: date_prefix="2026-08", agent_id="billing-triage" finds that
agent's August runs.`),
			mcplib.WithReadOnlyHintAnnotation(true),
			mcplib.WithIdempotentHintAnnotation(true),
			mcplib.WithOpenWorldHintAnnotation(false),
			mcplib.WithString("date_prefix",
				mcplib.Description("Date fragment: YYYY, YYYY-MM, or YYYY-MM-DD. Empty scans all dates."),
			),
			mcplib.WithString("agent_id",
				mcplib.Description("Optional: only keys whose record belongs to this agent"),
			),
			mcplib.WithNumber("limit",
				mcplib.Description("Maximum keys per page before filtering (1-1000; default 1000)"),
				mcplib.Min(1),
				mcplib.Max(1000),
			),
			mcplib.WithString("continuation_token",
				mcplib.Description("Token from a previous page's next_continuation_token"),
			),
		),
		s.instrument("metrics_list", s.handleMetricsList),
	)

	// metrics_get — one record, verbatim.
	s.mcpServer.AddTool(
		mcplib.NewTool("metrics_get",
			mcplib.WithDescription(`Get one run's metrics record by key.

Takes a key as returned by metrics_list and returns the record document
verbatim — token counts, tool call counts, timing, and any
producer-specific fields. Keys outside the metrics prefix are rejected.`),
			mcplib.WithReadOnlyHintAnnotation(true),
			mcplib.WithIdempotentHintAnnotation(true),
			mcplib.WithOpenWorldHintAnnotation(false),
			mcplib.WithString("s3_key",
				mcplib.Description("Full record key, e.g. metrics/2026-08-24/run_123.json"),
				mcplib.Required(),
			),
		),
		s.instrument("metrics_get", s.handleMetricsGet),
	)

	// metrics_aggregate — totals over a date range.
	s.mcpServer.AddTool(
		mcplib.NewTool("metrics_aggregate",
			mcplib.WithDescription(`Aggregate run metrics over a date range.

Scans every record under date_prefix (optionally for one agent) and
returns totals: run count, input/output/total tokens, tool call counts
merged per tool, the heaviest run by tokens, and each agent's latest
run. Records that fail to parse are skipped, not fatal.

WHEN TO USE: For questions like "how many tokens did billing-triage burn
in August" or "which tools get called most" — one call instead of
fetching every record yourself.`),
			mcplib.WithReadOnlyHintAnnotation(true),
			mcplib.WithIdempotentHintAnnotation(true),
			mcplib.WithOpenWorldHintAnnotation(false),
			mcplib.WithString("date_prefix",
				mcplib.Description("Date fragment: YYYY, YYYY-MM, or YYYY-MM-DD. Empty aggregates everything."),
			),
			mcplib.WithString("agent_id",
				mcplib.Description("Optional: only aggregate this agent's runs"),
			),
		),
		s.instrument("metrics_aggregate", s.handleMetricsAggregate),
	)
}

func (s *Server) handleMetricsList(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	datePrefix := request.GetString("date_prefix", "")
	agentID := request.GetString("agent_id", "")
	page := objstore.Page{
		Limit: request.GetInt("limit", 0),
		Token: request.GetString("continuation_token", ""),
	}

	result, err := s.metrics.List(ctx, datePrefix, agentID, page)
	if err != nil {
		return s.toolError(err), nil
	}
	return jsonResult(result)
}

func (s *Server) handleMetricsGet(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	key := request.GetString("s3_key", "")
	if key == "" {
		return errorResult("s3_key is required"), nil
	}

	record, err := s.metrics.GetByKey(ctx, key)
	if err != nil {
		return s.toolError(err), nil
	}
	return jsonResult(record)
}

func (s *Server) handleMetricsAggregate(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	datePrefix := request.GetString("date_prefix", "")
	agentID := request.GetString("agent_id", "")

	totals, err := s.metrics.AggregateRange(ctx, datePrefix, agentID)
	if err != nil {
		return s.toolError(err), nil
	}
	return jsonResult(totals)
}
