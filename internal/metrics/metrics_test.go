package metrics

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/labeveryday/strands-hub-mcp/internal/keys"
	"github.com/labeveryday/strands-hub-mcp/internal/model"
	"github.com/labeveryday/strands-hub-mcp/internal/objstore"
	"github.com/labeveryday/strands-hub-mcp/internal/testutil"
)

func newTestReader(t *testing.T) (*Reader, *objstore.Memory) {
	t.Helper()
	store := objstore.NewMemory()
	scheme := keys.New("sessions", "metrics", "system_prompts", "registry.json")
	return NewReader(store, scheme, testutil.TestLogger()), store
}

func at(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

func seedRecord(t *testing.T, store *objstore.Memory, date string, rec model.MetricsRecord) {
	t.Helper()
	body, err := json.Marshal(rec)
	require.NoError(t, err)
	key := "metrics/" + date + "/" + rec.RunID + ".json"
	require.NoError(t, store.Put(context.Background(), key, body, nil))
}

func seedRuns(t *testing.T, store *objstore.Memory) {
	t.Helper()
	ended := at("2026-08-24T10:05:00Z")
	seedRecord(t, store, "2026-08-24", model.MetricsRecord{
		AgentID:      "planner",
		RunID:        "run_a",
		StartedAt:    at("2026-08-24T10:00:00Z"),
		EndedAt:      &ended,
		InputTokens:  100,
		OutputTokens: 40,
		ToolCalls:    3,
		ToolCallCounts: map[string]int64{
			"search": 2,
			"fetch":  1,
		},
	})
	seedRecord(t, store, "2026-08-24", model.MetricsRecord{
		AgentID:      "coder",
		RunID:        "run_b",
		StartedAt:    at("2026-08-24T11:00:00Z"),
		InputTokens:  500,
		OutputTokens: 250,
		ToolCalls:    7,
		ToolCallCounts: map[string]int64{
			"search": 1,
			"edit":   6,
		},
	})
	seedRecord(t, store, "2026-08-25", model.MetricsRecord{
		AgentID:      "planner",
		RunID:        "run_c",
		StartedAt:    at("2026-08-25T09:00:00Z"),
		InputTokens:  30,
		OutputTokens: 10,
		ToolCalls:    1,
	})
}

// ---------- listing ----------

func TestList_ScopedToDate(t *testing.T) {
	r, store := newTestReader(t)
	seedRuns(t, store)

	page, err := r.List(context.Background(), "2026-08-24", "", objstore.Page{})
	require.NoError(t, err)
	assert.Equal(t, []string{
		"metrics/2026-08-24/run_a.json",
		"metrics/2026-08-24/run_b.json",
	}, page.Keys)
	assert.False(t, page.Truncated)
}

func TestList_PartialDatePrefix(t *testing.T) {
	r, store := newTestReader(t)
	seedRuns(t, store)

	page, err := r.List(context.Background(), "2026-08", "", objstore.Page{})
	require.NoError(t, err)
	assert.Len(t, page.Keys, 3)

	page, err = r.List(context.Background(), "", "", objstore.Page{})
	require.NoError(t, err)
	assert.Len(t, page.Keys, 3)
}

func TestList_FiltersByAgentField(t *testing.T) {
	r, store := newTestReader(t)
	seedRuns(t, store)

	page, err := r.List(context.Background(), "2026-08", "planner", objstore.Page{})
	require.NoError(t, err)
	assert.Equal(t, []string{
		"metrics/2026-08-24/run_a.json",
		"metrics/2026-08-25/run_c.json",
	}, page.Keys)
}

func TestList_FilteredPageCanBeEmpty(t *testing.T) {
	r, store := newTestReader(t)
	seedRuns(t, store)

	// Page size 1 lands on run_a first, which belongs to another agent: the
	// page comes back empty but truncated, and the token still advances.
	page, err := r.List(context.Background(), "2026-08-24", "coder", objstore.Page{Limit: 1})
	require.NoError(t, err)
	assert.Empty(t, page.Keys)
	assert.True(t, page.Truncated)
	assert.NotEmpty(t, page.NextToken)
}

func TestList_Paginates(t *testing.T) {
	r, store := newTestReader(t)
	seedRuns(t, store)
	ctx := context.Background()

	var got []string
	page := objstore.Page{Limit: 1}
	for {
		p, err := r.List(ctx, "", "", page)
		require.NoError(t, err)
		got = append(got, p.Keys...)
		if !p.Truncated {
			break
		}
		page.Token = p.NextToken
	}
	assert.Equal(t, []string{
		"metrics/2026-08-24/run_a.json",
		"metrics/2026-08-24/run_b.json",
		"metrics/2026-08-25/run_c.json",
	}, got)
}

func TestList_RejectsBadDatePrefix(t *testing.T) {
	r, _ := newTestReader(t)

	_, err := r.List(context.Background(), "2026-08-24T10", "", objstore.Page{})
	assert.ErrorIs(t, err, objstore.ErrPolicyViolation)

	_, err = r.List(context.Background(), "../secrets", "", objstore.Page{})
	assert.ErrorIs(t, err, objstore.ErrPolicyViolation)
}

// ---------- single-record reads ----------

func TestGet_RoundTrip(t *testing.T) {
	r, store := newTestReader(t)
	seedRuns(t, store)

	raw, err := r.Get(context.Background(), "2026-08-24", "run_a")
	require.NoError(t, err)

	var rec model.MetricsRecord
	require.NoError(t, json.Unmarshal(raw, &rec))
	assert.Equal(t, "planner", rec.AgentID)
	assert.Equal(t, int64(100), rec.InputTokens)
}

func TestGet_NotFound(t *testing.T) {
	r, store := newTestReader(t)
	seedRuns(t, store)

	_, err := r.Get(context.Background(), "2026-08-24", "run_missing")
	assert.ErrorIs(t, err, objstore.ErrNotFound)
}

func TestGetByKey_RejectsOutsidePrefix(t *testing.T) {
	r, store := newTestReader(t)
	require.NoError(t, store.Put(context.Background(), "registry.json", []byte(`{}`), nil))

	_, err := r.GetByKey(context.Background(), "registry.json")
	assert.ErrorIs(t, err, objstore.ErrPolicyViolation)
	assert.NotErrorIs(t, err, objstore.ErrNotFound)
}

func TestGetByKey_MalformedBodyIsAnError(t *testing.T) {
	r, store := newTestReader(t)
	require.NoError(t, store.Put(context.Background(),
		"metrics/2026-08-24/run_bad.json", []byte("{truncated"), nil))

	_, err := r.GetByKey(context.Background(), "metrics/2026-08-24/run_bad.json")
	assert.ErrorIs(t, err, objstore.ErrMalformed)
}

// ---------- bulk fetch ----------

func TestFetchRecords_SkipsMalformed(t *testing.T) {
	r, store := newTestReader(t)
	seedRuns(t, store)
	require.NoError(t, store.Put(context.Background(),
		"metrics/2026-08-24/run_bad.json", []byte("{truncated"), nil))

	records, err := r.FetchRecords(context.Background(), []string{
		"metrics/2026-08-24/run_a.json",
		"metrics/2026-08-24/run_bad.json",
		"metrics/2026-08-24/run_b.json",
		"metrics/2026-08-24/run_gone.json",
	})
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "run_a", records[0].RunID)
	assert.Equal(t, "run_b", records[1].RunID)
}

func TestFetchRecords_FillsRunIDFromKey(t *testing.T) {
	r, store := newTestReader(t)
	require.NoError(t, store.Put(context.Background(),
		"metrics/2026-08-24/run_x.json", []byte(`{"agent_id":"planner","input_tokens":5}`), nil))

	records, err := r.FetchRecords(context.Background(), []string{"metrics/2026-08-24/run_x.json"})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "run_x", records[0].RunID)
	assert.Equal(t, "metrics/2026-08-24/run_x.json", records[0].Key)
}

// ---------- aggregation ----------

func TestAggregate_Empty(t *testing.T) {
	totals := Aggregate(nil)

	assert.Zero(t, totals.Runs)
	assert.Zero(t, totals.TotalTokens)
	assert.Nil(t, totals.ToolCallCounts)
	assert.Nil(t, totals.MaxTokensRun)
	assert.Nil(t, totals.LatestByAgent)
}

func TestAggregate_Totals(t *testing.T) {
	ended := at("2026-08-24T10:05:00Z")
	records := []model.MetricsRecord{
		{
			AgentID: "planner", RunID: "run_a",
			StartedAt: at("2026-08-24T10:00:00Z"), EndedAt: &ended,
			InputTokens: 100, OutputTokens: 40, ToolCalls: 3,
			ToolCallCounts: map[string]int64{"search": 2, "fetch": 1},
		},
		{
			AgentID: "coder", RunID: "run_b",
			StartedAt:   at("2026-08-24T11:00:00Z"),
			InputTokens: 500, OutputTokens: 250, ToolCalls: 7,
			ToolCallCounts: map[string]int64{"search": 1, "edit": 6},
		},
		{
			AgentID: "planner", RunID: "run_c",
			StartedAt:   at("2026-08-25T09:00:00Z"),
			InputTokens: 30, OutputTokens: 10, ToolCalls: 1,
		},
	}

	totals := Aggregate(records)

	assert.Equal(t, 3, totals.Runs)
	assert.Equal(t, int64(630), totals.InputTokens)
	assert.Equal(t, int64(300), totals.OutputTokens)
	assert.Equal(t, int64(930), totals.TotalTokens)
	assert.Equal(t, int64(11), totals.ToolCalls)
	assert.Equal(t, map[string]int64{"search": 3, "fetch": 1, "edit": 6}, totals.ToolCallCounts)

	require.NotNil(t, totals.MaxTokensRun)
	assert.Equal(t, "run_b", totals.MaxTokensRun.RunID)

	require.Len(t, totals.LatestByAgent, 2)
	assert.Equal(t, "run_c", totals.LatestByAgent["planner"].RunID)
	assert.Equal(t, "run_b", totals.LatestByAgent["coder"].RunID)
}

func TestAggregate_SkipsEmptyAgentForLatest(t *testing.T) {
	records := []model.MetricsRecord{
		{RunID: "run_anon", StartedAt: at("2026-08-24T10:00:00Z"), InputTokens: 5},
	}

	totals := Aggregate(records)

	assert.Equal(t, 1, totals.Runs)
	assert.Nil(t, totals.LatestByAgent)
	require.NotNil(t, totals.MaxTokensRun)
	assert.Equal(t, "run_anon", totals.MaxTokensRun.RunID)
}

func TestAggregateRange(t *testing.T) {
	r, store := newTestReader(t)
	seedRuns(t, store)
	ctx := context.Background()

	all, err := r.AggregateRange(ctx, "2026-08", "")
	require.NoError(t, err)
	assert.Equal(t, 3, all.Runs)
	assert.Equal(t, int64(930), all.TotalTokens)

	planner, err := r.AggregateRange(ctx, "2026-08", "planner")
	require.NoError(t, err)
	assert.Equal(t, 2, planner.Runs)
	assert.Equal(t, int64(180), planner.TotalTokens)
	assert.Equal(t, "run_c", planner.LatestByAgent["planner"].RunID)

	day, err := r.AggregateRange(ctx, "2026-08-25", "")
	require.NoError(t, err)
	assert.Equal(t, 1, day.Runs)
}
