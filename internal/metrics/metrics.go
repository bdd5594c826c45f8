// Package metrics is the read-only view over per-run metrics records, plus
// a pure aggregation helper over any set of records the caller assembled.
//
// Like the session reader, the Reader type exposes no write methods;
// metrics are written once by the producing run and only ever read here.
package metrics

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/labeveryday/strands-hub-mcp/internal/keys"
	"github.com/labeveryday/strands-hub-mcp/internal/model"
	"github.com/labeveryday/strands-hub-mcp/internal/objstore"
)

// fetchConcurrency bounds parallel record fetches during filtered listing
// and bulk aggregation reads.
const fetchConcurrency = 8

// Reader lists and fetches metrics records.
type Reader struct {
	store  objstore.Gateway
	scheme keys.Scheme
	logger *slog.Logger
}

// NewReader returns a Reader over the given gateway.
func NewReader(store objstore.Gateway, scheme keys.Scheme, logger *slog.Logger) *Reader {
	return &Reader{store: store, scheme: scheme, logger: logger}
}

// List returns one page of metrics record keys, optionally narrowed by a
// date fragment ("2026-08" scans a month). When agentID is set, each record
// on the page is fetched and matched on its agent_id field, since the key
// layout does not embed the agent; the page token still advances over the
// unfiltered key stream, so filtered pages can come back short or empty
// while further pages remain.
func (r *Reader) List(ctx context.Context, datePrefix, agentID string, page objstore.Page) (model.MetricsPage, error) {
	if err := model.ValidateDatePrefix(datePrefix); err != nil {
		return model.MetricsPage{}, fmt.Errorf("metrics: %v: %w", err, objstore.ErrPolicyViolation)
	}
	if agentID != "" {
		if err := model.ValidateAgentID(agentID); err != nil {
			return model.MetricsPage{}, fmt.Errorf("metrics: %v: %w", err, objstore.ErrPolicyViolation)
		}
	}

	l, err := r.store.List(ctx, r.scheme.MetricsDatePrefix(datePrefix), "", page)
	if err != nil {
		return model.MetricsPage{}, fmt.Errorf("metrics: list: %w", err)
	}

	matched := l.Keys
	if agentID != "" {
		records, err := r.FetchRecords(ctx, l.Keys)
		if err != nil {
			return model.MetricsPage{}, err
		}
		matched = make([]string, 0, len(records))
		for _, rec := range records {
			if rec.AgentID == agentID {
				matched = append(matched, rec.Key)
			}
		}
	}

	return model.MetricsPage{
		Keys:      matched,
		NextToken: l.NextToken,
		Truncated: l.Truncated,
	}, nil
}

// Get returns the raw document of one run.
func (r *Reader) Get(ctx context.Context, date, runID string) (json.RawMessage, error) {
	if err := model.ValidateDatePrefix(date); err != nil {
		return nil, fmt.Errorf("metrics: %v: %w", err, objstore.ErrPolicyViolation)
	}
	if err := model.ValidateRunID(runID); err != nil {
		return nil, fmt.Errorf("metrics: %v: %w", err, objstore.ErrPolicyViolation)
	}
	return r.GetByKey(ctx, r.scheme.MetricsRecord(date, runID))
}

// GetByKey returns the raw document at a metrics key, as handed out by
// List. Keys outside the metrics prefix are rejected.
func (r *Reader) GetByKey(ctx context.Context, key string) (json.RawMessage, error) {
	if !r.scheme.InMetrics(key) {
		return nil, fmt.Errorf("metrics: key %s is outside the metrics prefix: %w", key, objstore.ErrPolicyViolation)
	}

	obj, err := r.store.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("metrics: get %s: %w", key, err)
	}
	if !json.Valid(obj.Body) {
		return nil, fmt.Errorf("metrics: %s: %w", key, objstore.ErrMalformed)
	}
	return obj.Body, nil
}

// AggregateRange scans every record under the date fragment, optionally
// narrowed to one agent, and folds them into totals.
func (r *Reader) AggregateRange(ctx context.Context, datePrefix, agentID string) (model.MetricsTotals, error) {
	if err := model.ValidateDatePrefix(datePrefix); err != nil {
		return model.MetricsTotals{}, fmt.Errorf("metrics: %v: %w", err, objstore.ErrPolicyViolation)
	}
	if agentID != "" {
		if err := model.ValidateAgentID(agentID); err != nil {
			return model.MetricsTotals{}, fmt.Errorf("metrics: %v: %w", err, objstore.ErrPolicyViolation)
		}
	}

	l, err := objstore.ListAll(ctx, r.store, r.scheme.MetricsDatePrefix(datePrefix), "")
	if err != nil {
		return model.MetricsTotals{}, fmt.Errorf("metrics: aggregate scan: %w", err)
	}
	fetched, err := r.FetchRecords(ctx, l.Keys)
	if err != nil {
		return model.MetricsTotals{}, err
	}

	records := make([]model.MetricsRecord, 0, len(fetched))
	for _, f := range fetched {
		if agentID != "" && f.AgentID != agentID {
			continue
		}
		records = append(records, f.MetricsRecord)
	}
	return Aggregate(records), nil
}

// FetchRecords fetches and parses the given record keys concurrently,
// preserving key order. Records that vanish mid-listing or fail to parse
// are logged and skipped so one bad object cannot poison a whole scan;
// targeted reads through Get surface those as errors instead.
func (r *Reader) FetchRecords(ctx context.Context, recordKeys []string) ([]Record, error) {
	slots := make([]*Record, len(recordKeys))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(fetchConcurrency)
	for i, key := range recordKeys {
		g.Go(func() error {
			obj, err := r.store.Get(gctx, key)
			if err != nil {
				if errors.Is(err, objstore.ErrNotFound) {
					r.logger.Warn("metrics: record vanished during scan", "key", key)
					return nil
				}
				return err
			}
			var rec model.MetricsRecord
			if err := json.Unmarshal(obj.Body, &rec); err != nil {
				r.logger.Warn("metrics: skipping unparseable record", "key", key, "error", err)
				return nil
			}
			if rec.RunID == "" {
				rec.RunID = keys.RunIDFromKey(key)
			}
			slots[i] = &Record{MetricsRecord: rec, Key: key}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("metrics: fetch records: %w", err)
	}

	records := make([]Record, 0, len(slots))
	for _, s := range slots {
		if s != nil {
			records = append(records, *s)
		}
	}
	return records, nil
}

// Record pairs a parsed metrics record with the object key it came from.
type Record struct {
	model.MetricsRecord
	Key string
}

// Aggregate folds a set of records into totals: token sums, merged
// per-tool call counts, the heaviest run by tokens, and the latest run per
// agent. Pure; zero records mean zero totals.
func Aggregate(records []model.MetricsRecord) model.MetricsTotals {
	totals := model.MetricsTotals{Runs: len(records)}

	var maxRun *model.MetricsRecord
	latest := make(map[string]model.MetricsRecord)
	for i := range records {
		rec := records[i]
		totals.InputTokens += rec.InputTokens
		totals.OutputTokens += rec.OutputTokens
		totals.ToolCalls += rec.ToolCalls

		if len(rec.ToolCallCounts) > 0 && totals.ToolCallCounts == nil {
			totals.ToolCallCounts = make(map[string]int64)
		}
		for tool, n := range rec.ToolCallCounts {
			totals.ToolCallCounts[tool] += n
		}

		if maxRun == nil || rec.TotalTokens() > maxRun.TotalTokens() {
			maxRun = &records[i]
		}
		if rec.AgentID != "" {
			if cur, ok := latest[rec.AgentID]; !ok || rec.FinishedAt().After(cur.FinishedAt()) {
				latest[rec.AgentID] = rec
			}
		}
	}

	totals.TotalTokens = totals.InputTokens + totals.OutputTokens
	totals.MaxTokensRun = maxRun
	if len(latest) > 0 {
		totals.LatestByAgent = latest
	}
	return totals
}
