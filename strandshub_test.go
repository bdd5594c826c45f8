package strandshub_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	mcpclient "github.com/mark3labs/mcp-go/client"
	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	strandshub "github.com/labeveryday/strands-hub-mcp"
	"github.com/labeveryday/strands-hub-mcp/internal/objstore"
	"github.com/labeveryday/strands-hub-mcp/internal/testutil"
)

// clearHubEnv pins the config-sensitive variables so ambient environment
// can't leak into New.
func clearHubEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"HUB_S3_BUCKET",
		"HUB_TRANSPORT",
		"HUB_CACHE_PATH",
		"OTEL_EXPORTER_OTLP_ENDPOINT",
	} {
		t.Setenv(k, "")
	}
}

// memStore adapts the in-memory gateway to the public Store interface,
// standing in for an embedder-supplied backend.
type memStore struct {
	m *objstore.Memory
}

func (s memStore) Get(ctx context.Context, key string) (strandshub.Object, error) {
	o, err := s.m.Get(ctx, key)
	if err != nil {
		return strandshub.Object{}, err
	}
	return strandshub.Object{Key: o.Key, Body: o.Body, ETag: o.ETag}, nil
}

func (s memStore) Put(ctx context.Context, key string, body []byte, cond *strandshub.Condition) error {
	var c *objstore.Condition
	if cond != nil {
		c = &objstore.Condition{IfMatch: cond.IfMatch, IfNoneMatch: cond.IfNoneMatch}
	}
	return s.m.Put(ctx, key, body, c)
}

func (s memStore) List(ctx context.Context, prefix, delimiter string, page strandshub.Page) (strandshub.Listing, error) {
	l, err := s.m.List(ctx, prefix, delimiter, objstore.Page{Limit: page.Limit, Token: page.Token})
	if err != nil {
		return strandshub.Listing{}, err
	}
	return strandshub.Listing{
		Keys:           l.Keys,
		CommonPrefixes: l.CommonPrefixes,
		NextToken:      l.NextToken,
		Truncated:      l.Truncated,
	}, nil
}

func (s memStore) Exists(ctx context.Context, key string) (bool, error) {
	return s.m.Exists(ctx, key)
}

func TestNewWithoutBucketFails(t *testing.T) {
	clearHubEnv(t)

	_, err := strandshub.New(strandshub.WithLogger(testutil.TestLogger()))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HUB_S3_BUCKET")
}

func TestNewRejectsBadTransportOption(t *testing.T) {
	clearHubEnv(t)

	_, err := strandshub.New(
		strandshub.WithLogger(testutil.TestLogger()),
		strandshub.WithStore(memStore{m: objstore.NewMemory()}),
		strandshub.WithTransport("grpc"),
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HUB_TRANSPORT")
}

func TestStdioAppHasNoHTTPHandler(t *testing.T) {
	clearHubEnv(t)

	app, err := strandshub.New(
		strandshub.WithLogger(testutil.TestLogger()),
		strandshub.WithStore(memStore{m: objstore.NewMemory()}),
	)
	require.NoError(t, err)

	assert.Nil(t, app.Handler())
	assert.NotNil(t, app.MCPServer())
}

func TestEmbeddedAppServesOverHTTP(t *testing.T) {
	clearHubEnv(t)

	store := memStore{m: objstore.NewMemory()}
	require.NoError(t, store.Put(context.Background(), "registry.json",
		[]byte(`{"billing-triage":{"description":"triages billing tickets","status":"active"}}`), nil))

	app, err := strandshub.New(
		strandshub.WithLogger(testutil.TestLogger()),
		strandshub.WithVersion("test"),
		strandshub.WithStore(store),
		strandshub.WithTransport("http"),
		strandshub.WithHTTPAddr(":0"),
	)
	require.NoError(t, err)
	require.NotNil(t, app.Handler())

	ts := httptest.NewServer(app.Handler())
	t.Cleanup(ts.Close)

	// Health endpoint sees the injected store.
	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	c, err := mcpclient.NewStreamableHttpClient(ts.URL + "/mcp")
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	_, err = c.Initialize(context.Background(), mcplib.InitializeRequest{
		Params: mcplib.InitializeParams{
			ClientInfo: mcplib.Implementation{Name: "embed-test", Version: "1.0"},
		},
	})
	require.NoError(t, err)

	status, err := c.CallTool(context.Background(), mcplib.CallToolRequest{
		Params: mcplib.CallToolParams{Name: "hub_status"},
	})
	require.NoError(t, err)
	require.False(t, status.IsError, "hub_status failed: %v", status.Content)

	tc, ok := status.Content[0].(mcplib.TextContent)
	require.True(t, ok, "expected TextContent")
	var info map[string]any
	require.NoError(t, json.Unmarshal([]byte(tc.Text), &info))
	assert.Equal(t, "test", info["version"])
	assert.Equal(t, "http", info["transport"])

	// Tool reads flow through the store adapter.
	got, err := c.CallTool(context.Background(), mcplib.CallToolRequest{
		Params: mcplib.CallToolParams{
			Name:      "registry_get_agent",
			Arguments: map[string]any{"agent_id": "billing-triage"},
		},
	})
	require.NoError(t, err)
	require.False(t, got.IsError, "registry_get_agent failed: %v", got.Content)

	tc, ok = got.Content[0].(mcplib.TextContent)
	require.True(t, ok, "expected TextContent")
	var record map[string]any
	require.NoError(t, json.Unmarshal([]byte(tc.Text), &record))
	assert.Equal(t, "triages billing tickets", record["description"])
}
