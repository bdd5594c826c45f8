package mcp

import (
	"context"
	"encoding/json"

	mcplib "github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerRegistryTools() {
	// registry_list_agents — browse the fleet.
	s.mcpServer.AddTool(
		mcplib.NewTool("registry_list_agents",
			mcplib.WithDescription(`List every agent in the shared registry, in registry order.

WHEN TO USE: To discover which agents exist before reading their prompts,
sessions, or metrics. Records are producer-authored JSON; fields beyond the
common ones (description, tags, status, owner) vary by team.

An empty registry is a normal state for a fresh deployment, not an error.

EXAMPLE: registry_list_agents with tag="production" returns only agents
whose record carries that tag.`),
			mcplib.WithReadOnlyHintAnnotation(true),
			mcplib.WithIdempotentHintAnnotation(true),
			mcplib.WithOpenWorldHintAnnotation(false),
			mcplib.WithString("tag",
				mcplib.Description("Optional: only return agents whose tags list contains this value"),
			),
		),
		s.instrument("registry_list_agents", s.handleRegistryList),
	)

	// registry_get_agent — one agent's registry record.
	s.mcpServer.AddTool(
		mcplib.NewTool("registry_get_agent",
			mcplib.WithDescription(`Get a single agent's registry record.

WHEN TO USE: When you know the agent_id and want its full record — model,
owner, repo, status, and whatever else its team recorded. Returns the
record verbatim, including fields this hub does not interpret.`),
			mcplib.WithReadOnlyHintAnnotation(true),
			mcplib.WithIdempotentHintAnnotation(true),
			mcplib.WithOpenWorldHintAnnotation(false),
			mcplib.WithString("agent_id",
				mcplib.Description("Agent identifier as listed by registry_list_agents"),
				mcplib.Required(),
			),
		),
		s.instrument("registry_get_agent", s.handleRegistryGet),
	)

	// registry_update_metadata — constrained field update.
	s.mcpServer.AddTool(
		mcplib.NewTool("registry_update_metadata",
			mcplib.WithDescription(`Update descriptive metadata on an agent's registry record.

Only these fields can be written: description, tags, status, owner,
environment, model_id, repo_url. Anything else is rejected before any
write happens — identity and structural fields are owned by the
registration pipeline, not by agents.

Last write wins on the fields you set; every other byte of the record,
including fields this hub does not know about, is preserved. The record's
updated_at timestamp is refreshed on every successful update.

EXAMPLE: agent_id="billing-triage", metadata={"status": "paused",
"description": "paused pending prompt rework"}`),
			mcplib.WithDestructiveHintAnnotation(false),
			mcplib.WithIdempotentHintAnnotation(true),
			mcplib.WithOpenWorldHintAnnotation(false),
			mcplib.WithString("agent_id",
				mcplib.Description("Agent whose record to update; the agent must already be registered"),
				mcplib.Required(),
			),
			mcplib.WithObject("metadata",
				mcplib.Description("Fields to set. Keys outside the allowlist cause the whole update to be rejected."),
				mcplib.Required(),
			),
		),
		s.instrument("registry_update_metadata", s.handleRegistryUpdate),
	)
}

func (s *Server) handleRegistryList(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	tag := request.GetString("tag", "")

	entries, err := s.registry.ListAgents(ctx, tag)
	if err != nil {
		return s.toolError(err), nil
	}

	return jsonResult(map[string]any{
		"agents": entries,
		"total":  len(entries),
	})
}

func (s *Server) handleRegistryGet(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	agentID := request.GetString("agent_id", "")
	if agentID == "" {
		return errorResult("agent_id is required"), nil
	}

	record, err := s.registry.GetAgent(ctx, agentID)
	if err != nil {
		return s.toolError(err), nil
	}
	return jsonResult(record)
}

func (s *Server) handleRegistryUpdate(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	agentID := request.GetString("agent_id", "")
	if agentID == "" {
		return errorResult("agent_id is required"), nil
	}

	metadata, ok := request.GetArguments()["metadata"].(map[string]any)
	if !ok || len(metadata) == 0 {
		return errorResult("metadata must be a non-empty object"), nil
	}

	record, err := s.registry.UpdateMetadata(ctx, agentID, metadata)
	if err != nil {
		return s.toolError(err), nil
	}

	return jsonResult(map[string]any{
		"agent_id": agentID,
		"record":   json.RawMessage(record),
		"status":   "updated",
	})
}
