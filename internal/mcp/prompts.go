package mcp

import (
	"context"

	mcplib "github.com/mark3labs/mcp-go/mcp"

	"github.com/labeveryday/strands-hub-mcp/internal/model"
)

func (s *Server) registerPromptTools() {
	// prompts_get_current — the prompt an agent is running with right now.
	s.mcpServer.AddTool(
		mcplib.NewTool("prompts_get_current",
			mcplib.WithDescription(`Get the system prompt an agent is currently running with.

WHEN TO USE: Before proposing prompt changes, or when diagnosing agent
behavior — the current prompt is the ground truth for what the agent was
told to do. Returns the prompt text verbatim.

Reads may be served from a local cache; pass force_refresh=true when you
need to see a promotion that happened seconds ago.`),
			mcplib.WithReadOnlyHintAnnotation(true),
			mcplib.WithIdempotentHintAnnotation(true),
			mcplib.WithOpenWorldHintAnnotation(false),
			mcplib.WithString("agent_id",
				mcplib.Description("Agent whose current prompt to fetch"),
				mcplib.Required(),
			),
			mcplib.WithBoolean("force_refresh",
				mcplib.Description("Bypass the prompt cache and read straight from the store"),
				mcplib.DefaultBool(false),
			),
		),
		s.instrument("prompts_get_current", s.handlePromptsGetCurrent),
	)

	// prompts_get_version — one numbered version's text.
	s.mcpServer.AddTool(
		mcplib.NewTool("prompts_get_version",
			mcplib.WithDescription(`Get the text of one specific prompt version.

WHEN TO USE: To compare versions, review history, or recover wording from
an earlier iteration. Version numbers come from prompts_list_versions.
A version that was never created is not_found — numbers are dense
integers starting at 1, never reused.`),
			mcplib.WithReadOnlyHintAnnotation(true),
			mcplib.WithIdempotentHintAnnotation(true),
			mcplib.WithOpenWorldHintAnnotation(false),
			mcplib.WithString("agent_id",
				mcplib.Description("Agent whose prompt history to read"),
				mcplib.Required(),
			),
			mcplib.WithNumber("version",
				mcplib.Description("Version number, 1 or higher"),
				mcplib.Required(),
				mcplib.Min(1),
			),
		),
		s.instrument("prompts_get_version", s.handlePromptsGetVersion),
	)

	// prompts_list_versions — the version index.
	s.mcpServer.AddTool(
		mcplib.NewTool("prompts_list_versions",
			mcplib.WithDescription(`List every prompt version recorded for an agent, oldest first.

Returns the version index: one entry per version (number, note,
created_at) plus the currently promoted version number — null when
nothing was ever promoted. An agent with no history returns an empty
list, not an error.

WHEN TO USE: Before prompts_create_version, to see what the latest
version is; or to find the version number to pass to prompts_get_version.`),
			mcplib.WithReadOnlyHintAnnotation(true),
			mcplib.WithIdempotentHintAnnotation(true),
			mcplib.WithOpenWorldHintAnnotation(false),
			mcplib.WithString("agent_id",
				mcplib.Description("Agent whose version index to read"),
				mcplib.Required(),
			),
		),
		s.instrument("prompts_list_versions", s.handlePromptsListVersions),
	)

	// prompts_create_version — append to the version chain.
	s.mcpServer.AddTool(
		mcplib.NewTool("prompts_create_version",
			mcplib.WithDescription(`Record a new prompt version for an agent.

The new version gets the next number in the chain and is appended to the
version index. Existing versions are never modified and the agent's
current prompt is NOT switched — promotion to current is a separate,
human-driven step outside this hub.

If another writer creates a version at the same moment, one call wins and
the other returns conflict; re-read prompts_list_versions and try again.

EXAMPLE: agent_id="billing-triage", content="You are...",
note="tighten refund policy wording"`),
			mcplib.WithDestructiveHintAnnotation(false),
			mcplib.WithIdempotentHintAnnotation(false),
			mcplib.WithOpenWorldHintAnnotation(false),
			mcplib.WithString("agent_id",
				mcplib.Description("Agent to record the version for"),
				mcplib.Required(),
			),
			mcplib.WithString("content",
				mcplib.Description("Full prompt text. Must not be empty — this is the complete prompt, not a diff."),
				mcplib.Required(),
			),
			mcplib.WithString("note",
				mcplib.Description("Optional one-line summary of what changed and why"),
			),
		),
		s.instrument("prompts_create_version", s.handlePromptsCreateVersion),
	)
}

func (s *Server) handlePromptsGetCurrent(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	agentID := request.GetString("agent_id", "")
	if agentID == "" {
		return errorResult("agent_id is required"), nil
	}
	forceRefresh := request.GetBool("force_refresh", false)

	content, err := s.prompts.GetCurrent(ctx, agentID, forceRefresh)
	if err != nil {
		return s.toolError(err), nil
	}
	return textResult(content), nil
}

func (s *Server) handlePromptsGetVersion(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	agentID := request.GetString("agent_id", "")
	if agentID == "" {
		return errorResult("agent_id is required"), nil
	}
	version := request.GetInt("version", 0)
	if err := model.ValidatePromptVersion(version); err != nil {
		return errorResult(err.Error()), nil
	}

	content, err := s.prompts.GetVersion(ctx, agentID, version)
	if err != nil {
		return s.toolError(err), nil
	}
	return textResult(content), nil
}

func (s *Server) handlePromptsListVersions(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	agentID := request.GetString("agent_id", "")
	if agentID == "" {
		return errorResult("agent_id is required"), nil
	}

	index, err := s.prompts.ListVersions(ctx, agentID)
	if err != nil {
		return s.toolError(err), nil
	}
	return jsonResult(index)
}

func (s *Server) handlePromptsCreateVersion(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	agentID := request.GetString("agent_id", "")
	if agentID == "" {
		return errorResult("agent_id is required"), nil
	}
	content := request.GetString("content", "")
	note := request.GetString("note", "")

	entry, err := s.prompts.CreateVersion(ctx, agentID, content, note)
	if err != nil {
		return s.toolError(err), nil
	}

	return jsonResult(map[string]any{
		"agent_id":   agentID,
		"version":    entry.Version,
		"created_at": entry.CreatedAt,
		"status":     "created",
	})
}
