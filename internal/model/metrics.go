package model

import "time"

// MetricsRecord is one run's metrics document, written once by the agent
// runtime at the end of a run and never mutated. Producers may add fields;
// unknown fields are ignored on read.
type MetricsRecord struct {
	AgentID        string           `json:"agent_id"`
	RunID          string           `json:"run_id"`
	StartedAt      time.Time        `json:"started_at"`
	EndedAt        *time.Time       `json:"ended_at,omitempty"`
	InputTokens    int64            `json:"input_tokens"`
	OutputTokens   int64            `json:"output_tokens"`
	ToolCalls      int64            `json:"tool_calls"`
	ToolCallCounts map[string]int64 `json:"tool_call_counts,omitempty"`
	PromptVersion  int              `json:"prompt_version,omitempty"`
	Status         string           `json:"status,omitempty"`
}

// TotalTokens returns input plus output tokens for this run.
func (r MetricsRecord) TotalTokens() int64 {
	return r.InputTokens + r.OutputTokens
}

// FinishedAt returns the best-known completion time: ended_at when the
// producer recorded one, started_at otherwise.
func (r MetricsRecord) FinishedAt() time.Time {
	if r.EndedAt != nil {
		return *r.EndedAt
	}
	return r.StartedAt
}

// MetricsPage is one page of metrics record keys from a prefix scan.
type MetricsPage struct {
	Keys      []string `json:"keys"`
	NextToken string   `json:"next_continuation_token,omitempty"`
	Truncated bool     `json:"is_truncated"`
}

// MetricsTotals is the pure aggregation over a set of metrics records.
type MetricsTotals struct {
	Runs           int                      `json:"runs"`
	InputTokens    int64                    `json:"input_tokens"`
	OutputTokens   int64                    `json:"output_tokens"`
	TotalTokens    int64                    `json:"total_tokens"`
	ToolCalls      int64                    `json:"tool_calls"`
	ToolCallCounts map[string]int64         `json:"tool_call_counts,omitempty"`
	MaxTokensRun   *MetricsRecord           `json:"max_tokens_run,omitempty"`
	LatestByAgent  map[string]MetricsRecord `json:"latest_by_agent,omitempty"`
}
