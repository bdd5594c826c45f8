package mcp

import (
	"context"

	mcplib "github.com/mark3labs/mcp-go/mcp"

	"github.com/labeveryday/strands-hub-mcp/internal/keys"
	"github.com/labeveryday/strands-hub-mcp/internal/objstore"
)

func (s *Server) registerSessionTools() {
	// sessions_list — page through session ids.
	s.mcpServer.AddTool(
		mcplib.NewTool("sessions_list",
			mcplib.WithDescription(`List session ids recorded in the hub, one page at a time.

Sessions are immutable transcripts written by agent runtimes. This tool
pages over the session hierarchy; pass the returned
next_continuation_token back in to fetch the next page while
is_truncated is true.

WHEN TO USE: As the entry point into transcript review — find the
session, then drill in with sessions_get_session and
sessions_list_messages.`),
			mcplib.WithReadOnlyHintAnnotation(true),
			mcplib.WithIdempotentHintAnnotation(true),
			mcplib.WithOpenWorldHintAnnotation(false),
			mcplib.WithNumber("limit",
				mcplib.Description("Maximum session ids per page (1-1000; default 1000)"),
				mcplib.Min(1),
				mcplib.Max(1000),
			),
			mcplib.WithString("continuation_token",
				mcplib.Description("Token from a previous page's next_continuation_token"),
			),
		),
		s.instrument("sessions_list", s.handleSessionsList),
	)

	// sessions_get_session — the top-level session document.
	s.mcpServer.AddTool(
		mcplib.NewTool("sessions_get_session",
			mcplib.WithDescription(`Get a session's top-level document.

Returns the session.json written by the producing runtime, verbatim:
typically creation time, participating agents, and producer-specific
fields this hub does not interpret.`),
			mcplib.WithReadOnlyHintAnnotation(true),
			mcplib.WithIdempotentHintAnnotation(true),
			mcplib.WithOpenWorldHintAnnotation(false),
			mcplib.WithString("session_id",
				mcplib.Description("Session id as returned by sessions_list"),
				mcplib.Required(),
			),
		),
		s.instrument("sessions_get_session", s.handleSessionsGetSession),
	)

	// sessions_list_agents — which agents participated.
	s.mcpServer.AddTool(
		mcplib.NewTool("sessions_list_agents",
			mcplib.WithDescription(`List the agents that have transcript data in a session.

Multi-agent sessions store one transcript branch per agent; use the ids
returned here as the agent_id for sessions_list_messages and
sessions_get_agent. Most single-agent sessions have exactly one entry,
"agent_default".`),
			mcplib.WithReadOnlyHintAnnotation(true),
			mcplib.WithIdempotentHintAnnotation(true),
			mcplib.WithOpenWorldHintAnnotation(false),
			mcplib.WithString("session_id",
				mcplib.Description("Session to inspect"),
				mcplib.Required(),
			),
		),
		s.instrument("sessions_list_agents", s.handleSessionsListAgents),
	)

	// sessions_get_agent — one agent's per-session document.
	s.mcpServer.AddTool(
		mcplib.NewTool("sessions_get_agent",
			mcplib.WithDescription(`Get one agent's per-session state document.

Returns the agent.json the runtime wrote for that agent within the
session: model configuration, conversation manager state, and other
producer-specific fields, verbatim.`),
			mcplib.WithReadOnlyHintAnnotation(true),
			mcplib.WithIdempotentHintAnnotation(true),
			mcplib.WithOpenWorldHintAnnotation(false),
			mcplib.WithString("session_id",
				mcplib.Description("Session to inspect"),
				mcplib.Required(),
			),
			mcplib.WithString("agent_id",
				mcplib.Description("Agent within the session; defaults to agent_default"),
			),
		),
		s.instrument("sessions_get_agent", s.handleSessionsGetAgent),
	)

	// sessions_list_messages — message keys in conversation order.
	s.mcpServer.AddTool(
		mcplib.NewTool("sessions_list_messages",
			mcplib.WithDescription(`List an agent's message keys for a session, in conversation order.

Messages are numbered objects (message_0.json, message_1.json, ...);
the list is ordered by message number, not by key string, so
message_10 sorts after message_9. Pass any returned key to
sessions_get_message to read the message body.`),
			mcplib.WithReadOnlyHintAnnotation(true),
			mcplib.WithIdempotentHintAnnotation(true),
			mcplib.WithOpenWorldHintAnnotation(false),
			mcplib.WithString("session_id",
				mcplib.Description("Session to inspect"),
				mcplib.Required(),
			),
			mcplib.WithString("agent_id",
				mcplib.Description("Agent within the session; defaults to agent_default"),
			),
		),
		s.instrument("sessions_list_messages", s.handleSessionsListMessages),
	)

	// sessions_get_message — one message body.
	s.mcpServer.AddTool(
		mcplib.NewTool("sessions_get_message",
			mcplib.WithDescription(`Get a single message from a session transcript.

message_key accepts either a full key from sessions_list_messages or
just the basename (message_12.json). Returns the message document
verbatim.`),
			mcplib.WithReadOnlyHintAnnotation(true),
			mcplib.WithIdempotentHintAnnotation(true),
			mcplib.WithOpenWorldHintAnnotation(false),
			mcplib.WithString("session_id",
				mcplib.Description("Session the message belongs to"),
				mcplib.Required(),
			),
			mcplib.WithString("message_key",
				mcplib.Description("Message key or basename, e.g. message_12.json"),
				mcplib.Required(),
			),
			mcplib.WithString("agent_id",
				mcplib.Description("Agent within the session; defaults to agent_default"),
			),
		),
		s.instrument("sessions_get_message", s.handleSessionsGetMessage),
	)

	// sessions_get_raw — escape hatch for arbitrary session objects.
	s.mcpServer.AddTool(
		mcplib.NewTool("sessions_get_raw",
			mcplib.WithDescription(`Read any object under the sessions prefix, raw.

The escape hatch for producer-specific layouts the structured tools do
not cover. The response says how to interpret the payload: format
"parsed" means the body was valid JSON and is returned structured;
format "raw" means the verbatim bytes are returned as text. Non-JSON
content here is expected producer drift, not an error.

Keys outside the sessions prefix are rejected.`),
			mcplib.WithReadOnlyHintAnnotation(true),
			mcplib.WithIdempotentHintAnnotation(true),
			mcplib.WithOpenWorldHintAnnotation(false),
			mcplib.WithString("s3_key",
				mcplib.Description("Full object key under the sessions prefix"),
				mcplib.Required(),
			),
		),
		s.instrument("sessions_get_raw", s.handleSessionsGetRaw),
	)
}

func (s *Server) handleSessionsList(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	page := objstore.Page{
		Limit: request.GetInt("limit", 0),
		Token: request.GetString("continuation_token", ""),
	}

	result, err := s.sessions.ListSessions(ctx, page)
	if err != nil {
		return s.toolError(err), nil
	}
	return jsonResult(result)
}

func (s *Server) handleSessionsGetSession(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	sessionID := request.GetString("session_id", "")
	if sessionID == "" {
		return errorResult("session_id is required"), nil
	}

	doc, err := s.sessions.GetSession(ctx, sessionID)
	if err != nil {
		return s.toolError(err), nil
	}
	return jsonResult(doc)
}

func (s *Server) handleSessionsListAgents(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	sessionID := request.GetString("session_id", "")
	if sessionID == "" {
		return errorResult("session_id is required"), nil
	}

	agents, err := s.sessions.ListAgents(ctx, sessionID)
	if err != nil {
		return s.toolError(err), nil
	}
	return jsonResult(map[string]any{
		"session_id": sessionID,
		"agents":     agents,
		"total":      len(agents),
	})
}

func (s *Server) handleSessionsGetAgent(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	sessionID := request.GetString("session_id", "")
	if sessionID == "" {
		return errorResult("session_id is required"), nil
	}
	agentID := request.GetString("agent_id", defaultAgentID)

	doc, err := s.sessions.GetAgent(ctx, sessionID, agentID)
	if err != nil {
		return s.toolError(err), nil
	}
	return jsonResult(doc)
}

func (s *Server) handleSessionsListMessages(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	sessionID := request.GetString("session_id", "")
	if sessionID == "" {
		return errorResult("session_id is required"), nil
	}
	agentID := request.GetString("agent_id", defaultAgentID)

	messageKeys, err := s.sessions.ListMessages(ctx, sessionID, agentID)
	if err != nil {
		return s.toolError(err), nil
	}
	return jsonResult(map[string]any{
		"session_id": sessionID,
		"agent_id":   agentID,
		"messages":   messageKeys,
		"total":      len(messageKeys),
	})
}

func (s *Server) handleSessionsGetMessage(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	sessionID := request.GetString("session_id", "")
	if sessionID == "" {
		return errorResult("session_id is required"), nil
	}
	messageKey := request.GetString("message_key", "")
	n, ok := keys.MessageIndex(messageKey)
	if !ok {
		return errorResult("message_key must name a numbered message, e.g. message_12.json"), nil
	}
	agentID := request.GetString("agent_id", defaultAgentID)

	doc, err := s.sessions.GetMessage(ctx, sessionID, agentID, n)
	if err != nil {
		return s.toolError(err), nil
	}
	return jsonResult(doc)
}

func (s *Server) handleSessionsGetRaw(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	key := request.GetString("s3_key", "")
	if key == "" {
		return errorResult("s3_key is required"), nil
	}

	obj, err := s.sessions.GetRaw(ctx, key)
	if err != nil {
		return s.toolError(err), nil
	}
	return jsonResult(obj)
}
