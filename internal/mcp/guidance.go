package mcp

import (
	"context"
	"fmt"

	mcplib "github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerGuidancePrompts() {
	// hub-setup — system prompt snippet explaining the hub's surface.
	s.mcpServer.AddPrompt(
		mcplib.NewPrompt("hub-setup",
			mcplib.WithPromptDescription("System prompt snippet explaining the hub's read and write surface"),
		),
		s.handleHubSetupPrompt,
	)

	// prompt-rollout — walks an agent through recording a new prompt version safely.
	s.mcpServer.AddPrompt(
		mcplib.NewPrompt("prompt-rollout",
			mcplib.WithPromptDescription("Record a new prompt version for an agent without disturbing its live prompt"),
			mcplib.WithArgument("agent_id",
				mcplib.ArgumentDescription("The agent whose prompt is being revised"),
				mcplib.RequiredArgument(),
			),
		),
		s.handlePromptRolloutPrompt,
	)

	// session-review — walks an agent through reading a transcript end to end.
	s.mcpServer.AddPrompt(
		mcplib.NewPrompt("session-review",
			mcplib.WithPromptDescription("Review a recorded session transcript end to end"),
			mcplib.WithArgument("session_id",
				mcplib.ArgumentDescription("The session to review"),
				mcplib.RequiredArgument(),
			),
		),
		s.handleSessionReviewPrompt,
	)
}

func (s *Server) handleHubSetupPrompt(ctx context.Context, request mcplib.GetPromptRequest) (*mcplib.GetPromptResult, error) {
	return &mcplib.GetPromptResult{
		Description: "Shared agent hub over the team's object store",
		Messages: []mcplib.PromptMessage{
			{
				Role: mcplib.RoleUser,
				Content: mcplib.TextContent{
					Type: "text",
					Text: `You have access to a shared hub over the team's agent bucket. It holds four
kinds of data, with different rules:

- Agent registry: who exists, what model they run, who owns them.
  Read freely; you may update descriptive metadata (description, tags,
  status, owner, environment, model_id, repo_url) and nothing else.
- System prompts: versioned per agent. Read any version; append new
  versions with prompts_create_version. Versions are never edited or
  deleted, and creating one does NOT change what the agent runs with --
  promotion is a separate human step.
- Sessions: immutable transcripts of past runs. Read-only, always.
- Run metrics: immutable per-run records. Read-only, always.

## Where to start

- hub_status tells you which bucket and prefixes this deployment serves.
- registry_list_agents is the directory of agents.
- sessions_list and metrics_list page through history; metrics_aggregate
  answers totals questions in one call.

## Ground rules

- Session and metrics data cannot be changed from here. Do not try.
- Prompt content you write must be the complete prompt, not a diff.
- If a write returns conflict, another writer got there first: re-read
  the current state and retry with fresh data.
- Fields you do not recognize in registry records, sessions, or metrics
  belong to the producing team. Pass them through untouched.`,
				},
			},
		},
	}, nil
}

func (s *Server) handlePromptRolloutPrompt(ctx context.Context, request mcplib.GetPromptRequest) (*mcplib.GetPromptResult, error) {
	agentID := request.Params.Arguments["agent_id"]
	if agentID == "" {
		return nil, fmt.Errorf("agent_id argument is required")
	}

	return &mcplib.GetPromptResult{
		Description: fmt.Sprintf("Record a new prompt version for %s", agentID),
		Messages: []mcplib.PromptMessage{
			{
				Role: mcplib.RoleUser,
				Content: mcplib.TextContent{
					Type: "text",
					Text: fmt.Sprintf(`You are revising the system prompt for agent "%s". Follow these steps:

1. READ the live prompt with prompts_get_current (agent_id="%s") so your
   revision starts from what the agent actually runs with today.

2. CHECK history with prompts_list_versions. The notes on recent versions
   tell you what was already tried; do not silently undo a recent change.

3. DRAFT the full replacement prompt. Versions are complete documents,
   not diffs -- include everything the agent needs, not just your change.

4. RECORD it with prompts_create_version (agent_id="%s", content=<full
   text>, note=<one line on what changed and why>). On conflict, someone
   else just recorded a version: re-run step 2 and reconcile before
   retrying.

5. VERIFY with prompts_list_versions that your version appended with the
   expected number.

The agent keeps running its current prompt until a human promotes your
version. Say so in your summary -- do not claim the change is live.`, agentID, agentID, agentID),
				},
			},
		},
	}, nil
}

func (s *Server) handleSessionReviewPrompt(ctx context.Context, request mcplib.GetPromptRequest) (*mcplib.GetPromptResult, error) {
	sessionID := request.Params.Arguments["session_id"]
	if sessionID == "" {
		return nil, fmt.Errorf("session_id argument is required")
	}

	return &mcplib.GetPromptResult{
		Description: fmt.Sprintf("Review session %s", sessionID),
		Messages: []mcplib.PromptMessage{
			{
				Role: mcplib.RoleUser,
				Content: mcplib.TextContent{
					Type: "text",
					Text: fmt.Sprintf(`Review session "%s" end to end:

1. sessions_get_session (session_id="%s") for the session document --
   when it ran and which agents were involved.

2. sessions_list_agents to enumerate transcript branches. Single-agent
   sessions usually have just "agent_default".

3. For each agent of interest, sessions_list_messages and then
   sessions_get_message on the keys you need. The list is already in
   conversation order; read selectively rather than fetching everything.

4. If the runtime stored extra objects the structured tools do not
   surface, sessions_get_raw reads them by key. A "raw" format in the
   response means the object was not JSON; quote it as-is.

5. For cost and tool-usage context, metrics_list with the session's date
   and the agent's id finds the matching run records.

Everything here is an immutable record. Report what happened; nothing
in a session can or should be edited.`, sessionID, sessionID),
				},
			},
		},
	}, nil
}
