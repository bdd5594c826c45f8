package mcp

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mcplib "github.com/mark3labs/mcp-go/mcp"
)

func promptReq(name string, args map[string]string) mcplib.GetPromptRequest {
	return mcplib.GetPromptRequest{
		Params: mcplib.GetPromptParams{
			Name:      name,
			Arguments: args,
		},
	}
}

func TestHubSetupPrompt(t *testing.T) {
	srv, _ := newTestServer(t)

	result, err := srv.handleHubSetupPrompt(context.Background(), promptReq("hub-setup", nil))
	require.NoError(t, err)
	require.NotNil(t, result)
	require.NotEmpty(t, result.Messages)

	msg := result.Messages[0]
	assert.Equal(t, mcplib.RoleUser, msg.Role)

	tc, ok := msg.Content.(mcplib.TextContent)
	require.True(t, ok, "message content should be TextContent")
	assert.Contains(t, tc.Text, "hub_status",
		"snippet should point at hub_status as the starting tool")
	assert.Contains(t, tc.Text, "Read-only, always",
		"snippet should state that sessions and metrics cannot be written")
	assert.Contains(t, tc.Text, "prompts_create_version")
}

func TestPromptRolloutPrompt(t *testing.T) {
	srv, _ := newTestServer(t)

	result, err := srv.handlePromptRolloutPrompt(context.Background(),
		promptReq("prompt-rollout", map[string]string{"agent_id": "billing-triage"}))
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.Contains(t, result.Description, "billing-triage")
	require.NotEmpty(t, result.Messages)

	tc, ok := result.Messages[0].Content.(mcplib.TextContent)
	require.True(t, ok, "message content should be TextContent")
	assert.Contains(t, tc.Text, "prompts_get_current",
		"rollout should start from the live prompt")
	assert.Contains(t, tc.Text, "prompts_create_version")
	assert.Contains(t, tc.Text, "until a human promotes",
		"rollout must not claim the new version goes live")
}

func TestPromptRolloutPrompt_MissingAgentID(t *testing.T) {
	srv, _ := newTestServer(t)

	_, err := srv.handlePromptRolloutPrompt(context.Background(),
		promptReq("prompt-rollout", map[string]string{}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "agent_id")
}

func TestSessionReviewPrompt(t *testing.T) {
	srv, _ := newTestServer(t)

	result, err := srv.handleSessionReviewPrompt(context.Background(),
		promptReq("session-review", map[string]string{"session_id": "sess_1"}))
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.Contains(t, result.Description, "sess_1")
	require.NotEmpty(t, result.Messages)

	tc, ok := result.Messages[0].Content.(mcplib.TextContent)
	require.True(t, ok, "message content should be TextContent")
	assert.Contains(t, tc.Text, "sessions_get_session")
	assert.Contains(t, tc.Text, "sessions_list_messages")
	assert.Contains(t, tc.Text, "immutable record")
}

func TestSessionReviewPrompt_MissingSessionID(t *testing.T) {
	srv, _ := newTestServer(t)

	_, err := srv.handleSessionReviewPrompt(context.Background(),
		promptReq("session-review", map[string]string{"session_id": ""}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "session_id")
}
