package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mcplib "github.com/mark3labs/mcp-go/mcp"

	"github.com/labeveryday/strands-hub-mcp/internal/keys"
	"github.com/labeveryday/strands-hub-mcp/internal/metrics"
	"github.com/labeveryday/strands-hub-mcp/internal/objstore"
	"github.com/labeveryday/strands-hub-mcp/internal/promptcache"
	"github.com/labeveryday/strands-hub-mcp/internal/prompts"
	"github.com/labeveryday/strands-hub-mcp/internal/registry"
	"github.com/labeveryday/strands-hub-mcp/internal/sessions"
	"github.com/labeveryday/strands-hub-mcp/internal/testutil"
)

func newTestServer(t *testing.T) (*Server, *objstore.Memory) {
	t.Helper()
	store := objstore.NewMemory()
	scheme := keys.New("sessions", "metrics", "system_prompts", "registry.json")
	logger := testutil.TestLogger()

	srv := New(
		registry.New(store, scheme, logger),
		prompts.New(store, promptcache.Direct{Store: store}, scheme, logger),
		sessions.NewReader(store, scheme, logger),
		metrics.NewReader(store, scheme, logger),
		StatusInfo{
			Version:        "test",
			Bucket:         "hub-test",
			Region:         "us-east-1",
			SessionsPrefix: "sessions/",
			MetricsPrefix:  "metrics/",
			PromptsPrefix:  "system_prompts/",
			RegistryKey:    "registry.json",
			CacheEnabled:   false,
			Transport:      "stdio",
		},
		logger,
	)
	return srv, store
}

// callReq builds a CallToolRequest for the named tool.
func callReq(tool string, args map[string]any) mcplib.CallToolRequest {
	return mcplib.CallToolRequest{
		Params: mcplib.CallToolParams{
			Name:      tool,
			Arguments: args,
		},
	}
}

// parseToolText extracts the first TextContent text from a CallToolResult.
func parseToolText(t *testing.T, result *mcplib.CallToolResult) string {
	t.Helper()
	for _, c := range result.Content {
		if tc, ok := c.(mcplib.TextContent); ok {
			return tc.Text
		}
	}
	t.Fatal("no TextContent found in tool result")
	return ""
}

func seedRegistryDoc(t *testing.T, store *objstore.Memory) {
	t.Helper()
	doc := `{
  "billing-triage": {
    "description": "triages billing tickets",
    "model_id": "bedrock-sonnet",
    "tags": ["production", "billing"],
    "status": "active"
  },
  "doc-writer": {
    "description": "writes changelogs",
    "tags": ["internal"],
    "status": "active"
  }
}`
	require.NoError(t, store.Put(context.Background(), "registry.json", []byte(doc), nil))
}

// ---------- hub_status ----------

func TestHandleStatus(t *testing.T) {
	srv, _ := newTestServer(t)

	result, err := srv.handleStatus(context.Background(), callReq("hub_status", nil))
	require.NoError(t, err)
	require.False(t, result.IsError)

	var status StatusInfo
	require.NoError(t, json.Unmarshal([]byte(parseToolText(t, result)), &status))
	assert.Equal(t, "hub-test", status.Bucket)
	assert.Equal(t, "sessions/", status.SessionsPrefix)
	assert.Equal(t, "stdio", status.Transport)
}

// ---------- registry tools ----------

type listAgentsResp struct {
	Agents []struct {
		AgentID string          `json:"agent_id"`
		Record  json.RawMessage `json:"record"`
	} `json:"agents"`
	Total int `json:"total"`
}

func TestHandleRegistryList(t *testing.T) {
	srv, store := newTestServer(t)
	seedRegistryDoc(t, store)

	result, err := srv.handleRegistryList(context.Background(), callReq("registry_list_agents", nil))
	require.NoError(t, err)
	require.False(t, result.IsError)

	var resp listAgentsResp
	require.NoError(t, json.Unmarshal([]byte(parseToolText(t, result)), &resp))
	require.Equal(t, 2, resp.Total)
	assert.Equal(t, "billing-triage", resp.Agents[0].AgentID)
	assert.Equal(t, "doc-writer", resp.Agents[1].AgentID)
}

func TestHandleRegistryList_TagFilter(t *testing.T) {
	srv, store := newTestServer(t)
	seedRegistryDoc(t, store)

	result, err := srv.handleRegistryList(context.Background(),
		callReq("registry_list_agents", map[string]any{"tag": "billing"}))
	require.NoError(t, err)
	require.False(t, result.IsError)

	var resp listAgentsResp
	require.NoError(t, json.Unmarshal([]byte(parseToolText(t, result)), &resp))
	require.Equal(t, 1, resp.Total)
	assert.Equal(t, "billing-triage", resp.Agents[0].AgentID)
}

func TestHandleRegistryList_EmptyRegistry(t *testing.T) {
	srv, _ := newTestServer(t)

	result, err := srv.handleRegistryList(context.Background(), callReq("registry_list_agents", nil))
	require.NoError(t, err)
	require.False(t, result.IsError, "absent registry should read as empty, not error")

	var resp listAgentsResp
	require.NoError(t, json.Unmarshal([]byte(parseToolText(t, result)), &resp))
	assert.Zero(t, resp.Total)
}

func TestHandleRegistryGet(t *testing.T) {
	srv, store := newTestServer(t)
	seedRegistryDoc(t, store)

	result, err := srv.handleRegistryGet(context.Background(),
		callReq("registry_get_agent", map[string]any{"agent_id": "billing-triage"}))
	require.NoError(t, err)
	require.False(t, result.IsError)

	var record map[string]any
	require.NoError(t, json.Unmarshal([]byte(parseToolText(t, result)), &record))
	assert.Equal(t, "bedrock-sonnet", record["model_id"])
}

func TestHandleRegistryGet_NotFound(t *testing.T) {
	srv, store := newTestServer(t)
	seedRegistryDoc(t, store)

	result, err := srv.handleRegistryGet(context.Background(),
		callReq("registry_get_agent", map[string]any{"agent_id": "ghost"}))
	require.NoError(t, err, "handler returns tool errors, not go errors")
	require.True(t, result.IsError)
	assert.Contains(t, parseToolText(t, result), "not_found")
}

func TestHandleRegistryGet_MissingArg(t *testing.T) {
	srv, _ := newTestServer(t)

	result, err := srv.handleRegistryGet(context.Background(), callReq("registry_get_agent", nil))
	require.NoError(t, err)
	require.True(t, result.IsError)
	assert.Contains(t, parseToolText(t, result), "agent_id is required")
}

func TestHandleRegistryUpdate(t *testing.T) {
	srv, store := newTestServer(t)
	seedRegistryDoc(t, store)

	result, err := srv.handleRegistryUpdate(context.Background(),
		callReq("registry_update_metadata", map[string]any{
			"agent_id": "billing-triage",
			"metadata": map[string]any{"status": "paused"},
		}))
	require.NoError(t, err)
	require.False(t, result.IsError, "update failed: %s", parseToolText(t, result))

	var resp struct {
		AgentID string         `json:"agent_id"`
		Record  map[string]any `json:"record"`
		Status  string         `json:"status"`
	}
	require.NoError(t, json.Unmarshal([]byte(parseToolText(t, result)), &resp))
	assert.Equal(t, "updated", resp.Status)
	assert.Equal(t, "paused", resp.Record["status"])
	assert.NotEmpty(t, resp.Record["updated_at"])
}

func TestHandleRegistryUpdate_DisallowedField(t *testing.T) {
	srv, store := newTestServer(t)
	seedRegistryDoc(t, store)

	before, err := store.Get(context.Background(), "registry.json")
	require.NoError(t, err)

	result, herr := srv.handleRegistryUpdate(context.Background(),
		callReq("registry_update_metadata", map[string]any{
			"agent_id": "billing-triage",
			"metadata": map[string]any{"agent_id": "hijacked"},
		}))
	require.NoError(t, herr)
	require.True(t, result.IsError)
	assert.Contains(t, parseToolText(t, result), "policy_violation")

	after, err := store.Get(context.Background(), "registry.json")
	require.NoError(t, err)
	assert.Equal(t, before.Body, after.Body, "rejected update must not touch the document")
}

func TestHandleRegistryUpdate_MissingMetadata(t *testing.T) {
	srv, _ := newTestServer(t)

	result, err := srv.handleRegistryUpdate(context.Background(),
		callReq("registry_update_metadata", map[string]any{"agent_id": "billing-triage"}))
	require.NoError(t, err)
	require.True(t, result.IsError)
	assert.Contains(t, parseToolText(t, result), "metadata must be a non-empty object")
}

// ---------- error translation ----------

func TestErrorCategory(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{fmt.Errorf("wrap: %w", objstore.ErrNotFound), "not_found"},
		{fmt.Errorf("wrap: %w", objstore.ErrConflict), "conflict"},
		{fmt.Errorf("wrap: %w", objstore.ErrConditionFailed), "conflict"},
		{fmt.Errorf("wrap: %w", objstore.ErrPolicyViolation), "policy_violation"},
		{fmt.Errorf("wrap: %w", objstore.ErrMalformed), "malformed"},
		{fmt.Errorf("wrap: %w", objstore.ErrTransient), "transient"},
		{errors.New("something else"), "internal"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, errorCategory(tt.err), "for %v", tt.err)
	}
}

func TestToolErrorCarriesCategoryAndCause(t *testing.T) {
	srv, _ := newTestServer(t)

	result := srv.toolError(fmt.Errorf("prompts: version 9: %w", objstore.ErrNotFound))
	require.True(t, result.IsError)
	text := parseToolText(t, result)
	assert.Contains(t, text, "not_found:")
	assert.Contains(t, text, "version 9")
}
