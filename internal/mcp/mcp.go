// Package mcp implements the Model Context Protocol dispatcher for the hub.
//
// Every hub operation is exposed as an MCP tool; frequently-read documents
// are additionally published as MCP resources. Handlers stay thin: argument
// parsing and error translation live here, semantics live in the resource
// managers. Session and metrics tools are backed by reader types that carry
// no write methods, so a write-shaped call on those kinds cannot exist.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"go.opentelemetry.io/otel/attribute"
	otelmetric "go.opentelemetry.io/otel/metric"

	"github.com/labeveryday/strands-hub-mcp/internal/metrics"
	"github.com/labeveryday/strands-hub-mcp/internal/objstore"
	"github.com/labeveryday/strands-hub-mcp/internal/prompts"
	"github.com/labeveryday/strands-hub-mcp/internal/registry"
	"github.com/labeveryday/strands-hub-mcp/internal/sessions"
	"github.com/labeveryday/strands-hub-mcp/internal/telemetry"
)

// defaultAgentID is assumed on session tools when the caller does not name
// an agent. Single-agent transcripts store their data under this id.
const defaultAgentID = "agent_default"

var hubMeter = telemetry.Meter("strands-hub/mcp")

// StatusInfo is the sanitized deployment snapshot reported by hub_status.
// No credentials, ever.
type StatusInfo struct {
	Version        string `json:"version"`
	Bucket         string `json:"bucket"`
	Region         string `json:"region"`
	Endpoint       string `json:"endpoint,omitempty"`
	SessionsPrefix string `json:"sessions_prefix"`
	MetricsPrefix  string `json:"metrics_prefix"`
	PromptsPrefix  string `json:"prompts_prefix"`
	RegistryKey    string `json:"registry_key"`
	CacheEnabled   bool   `json:"prompt_cache_enabled"`
	Transport      string `json:"transport"`
}

// Server wires the resource managers into an MCP tool server.
type Server struct {
	mcpServer *mcpserver.MCPServer
	registry  *registry.Manager
	prompts   *prompts.Manager
	sessions  *sessions.Reader
	metrics   *metrics.Reader
	status    StatusInfo
	logger    *slog.Logger
}

// New creates and configures the MCP server with all tools, resources, and
// guidance prompts registered.
func New(reg *registry.Manager, prm *prompts.Manager, ses *sessions.Reader, met *metrics.Reader, status StatusInfo, logger *slog.Logger) *Server {
	s := &Server{
		registry: reg,
		prompts:  prm,
		sessions: ses,
		metrics:  met,
		status:   status,
		logger:   logger,
	}

	s.mcpServer = mcpserver.NewMCPServer(
		"strands-hub",
		status.Version,
		mcpserver.WithResourceCapabilities(true, true),
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithPromptCapabilities(true),
	)

	s.registerStatusTool()
	s.registerRegistryTools()
	s.registerPromptTools()
	s.registerSessionTools()
	s.registerMetricsTools()
	s.registerResources()
	s.registerGuidancePrompts()

	return s
}

// MCPServer returns the underlying mcp-go server for transport setup.
func (s *Server) MCPServer() *mcpserver.MCPServer {
	return s.mcpServer
}

func (s *Server) registerStatusTool() {
	s.mcpServer.AddTool(
		mcplib.NewTool("hub_status",
			mcplib.WithDescription(`Show which bucket and key layout this hub is serving.

WHEN TO USE: At the start of a session, or when a key returned by another
tool looks unfamiliar. The response tells you where sessions, metrics, and
prompts live so you can interpret s3_key values in other results.

Credentials are never included.`),
			mcplib.WithReadOnlyHintAnnotation(true),
			mcplib.WithIdempotentHintAnnotation(true),
			mcplib.WithOpenWorldHintAnnotation(false),
		),
		s.instrument("hub_status", s.handleStatus),
	)
}

func (s *Server) handleStatus(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	return jsonResult(s.status)
}

// instrument wraps a tool handler with the invocation counter. Instruments
// are created lazily and recording is best-effort.
func (s *Server) instrument(name string, h mcpserver.ToolHandlerFunc) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		result, err := h(ctx, request)

		outcome := "ok"
		if err != nil || (result != nil && result.IsError) {
			outcome = "error"
		}
		if counter, cerr := hubMeter.Int64Counter("mcp.tool.invocations"); cerr == nil {
			counter.Add(ctx, 1, otelmetric.WithAttributes(
				attribute.String("tool", name),
				attribute.String("outcome", outcome),
			))
		}
		return result, err
	}
}

// toolError translates a manager error into a tool error result, prefixed
// with its taxonomy category so agents can branch on the class without
// parsing the message.
func (s *Server) toolError(err error) *mcplib.CallToolResult {
	return errorResult(fmt.Sprintf("%s: %v", errorCategory(err), err))
}

func errorCategory(err error) string {
	switch {
	case errors.Is(err, objstore.ErrNotFound):
		return "not_found"
	case errors.Is(err, objstore.ErrConflict), errors.Is(err, objstore.ErrConditionFailed):
		return "conflict"
	case errors.Is(err, objstore.ErrPolicyViolation):
		return "policy_violation"
	case errors.Is(err, objstore.ErrMalformed):
		return "malformed"
	case errors.Is(err, objstore.ErrTransient):
		return "transient"
	default:
		return "internal"
	}
}

// jsonResult marshals v indented into a text tool result.
func jsonResult(v any) (*mcplib.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errorResult(fmt.Sprintf("internal: marshal result: %v", err)), nil
	}
	return textResult(string(data)), nil
}

func textResult(text string) *mcplib.CallToolResult {
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{
			mcplib.TextContent{Type: "text", Text: text},
		},
	}
}

func errorResult(msg string) *mcplib.CallToolResult {
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{
			mcplib.TextContent{Type: "text", Text: msg},
		},
		IsError: true,
	}
}
