package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	mcplib "github.com/mark3labs/mcp-go/mcp"

	"github.com/labeveryday/strands-hub-mcp/internal/objstore"
)

func (s *Server) registerResources() {
	// hub://registry — the full agent registry document.
	s.mcpServer.AddResource(
		mcplib.NewResource(
			"hub://registry",
			"Agent Registry",
			mcplib.WithResourceDescription("All registered agents with their registry records"),
			mcplib.WithMIMEType("application/json"),
		),
		s.handleRegistryResource,
	)

	// hub://sessions/recent — the first page of session ids.
	s.mcpServer.AddResource(
		mcplib.NewResource(
			"hub://sessions/recent",
			"Recent Sessions",
			mcplib.WithResourceDescription("First page of recorded session ids"),
			mcplib.WithMIMEType("application/json"),
		),
		s.handleRecentSessionsResource,
	)

	// hub://prompts/{agent_id}/current — an agent's live prompt text.
	s.mcpServer.AddResourceTemplate(
		mcplib.NewResourceTemplate(
			"hub://prompts/{agent_id}/current",
			"Current Prompt",
			mcplib.WithTemplateDescription("The system prompt an agent is currently running with"),
			mcplib.WithTemplateMIMEType("text/plain"),
		),
		s.handleCurrentPromptResource,
	)

	// hub://metrics/{date}/{run_id} — one run's metrics record.
	s.mcpServer.AddResourceTemplate(
		mcplib.NewResourceTemplate(
			"hub://metrics/{date}/{run_id}",
			"Run Metrics",
			mcplib.WithTemplateDescription("Metrics record for a single run"),
			mcplib.WithTemplateMIMEType("application/json"),
		),
		s.handleRunMetricsResource,
	)
}

func (s *Server) handleRegistryResource(ctx context.Context, request mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) {
	entries, err := s.registry.ListAgents(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("mcp: registry resource: %w", err)
	}

	data, err := json.MarshalIndent(map[string]any{
		"agents": entries,
		"total":  len(entries),
	}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("mcp: marshal registry: %w", err)
	}

	return []mcplib.ResourceContents{
		mcplib.TextResourceContents{
			URI:      "hub://registry",
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

func (s *Server) handleRecentSessionsResource(ctx context.Context, request mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) {
	page, err := s.sessions.ListSessions(ctx, objstore.Page{Limit: 20})
	if err != nil {
		return nil, fmt.Errorf("mcp: recent sessions resource: %w", err)
	}

	data, err := json.MarshalIndent(page, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("mcp: marshal sessions: %w", err)
	}

	return []mcplib.ResourceContents{
		mcplib.TextResourceContents{
			URI:      "hub://sessions/recent",
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

func (s *Server) handleCurrentPromptResource(ctx context.Context, request mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) {
	uri := request.Params.URI
	rest, ok := strings.CutPrefix(uri, "hub://prompts/")
	if !ok {
		return nil, fmt.Errorf("mcp: invalid prompt resource URI: %s", uri)
	}
	agentID, ok := strings.CutSuffix(rest, "/current")
	if !ok || agentID == "" {
		return nil, fmt.Errorf("mcp: invalid prompt resource URI: %s", uri)
	}

	content, err := s.prompts.GetCurrent(ctx, agentID, false)
	if err != nil {
		return nil, fmt.Errorf("mcp: current prompt resource: %w", err)
	}

	return []mcplib.ResourceContents{
		mcplib.TextResourceContents{
			URI:      uri,
			MIMEType: "text/plain",
			Text:     content,
		},
	}, nil
}

func (s *Server) handleRunMetricsResource(ctx context.Context, request mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) {
	uri := request.Params.URI
	rest, ok := strings.CutPrefix(uri, "hub://metrics/")
	if !ok {
		return nil, fmt.Errorf("mcp: invalid metrics resource URI: %s", uri)
	}
	date, runID, ok := strings.Cut(rest, "/")
	if !ok || date == "" || runID == "" {
		return nil, fmt.Errorf("mcp: invalid metrics resource URI: %s", uri)
	}

	record, err := s.metrics.Get(ctx, date, runID)
	if err != nil {
		return nil, fmt.Errorf("mcp: run metrics resource: %w", err)
	}

	return []mcplib.ResourceContents{
		mcplib.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(record),
		},
	}, nil
}
