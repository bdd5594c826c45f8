// Package registry manages the single agent registry document.
//
// The registry is one JSON object mapping agent id to a producer-authored
// record. The manager owns the only write path to it and enforces the
// metadata allowlist: identity and audit fields are immutable, everything
// outside the allowlist is rejected before any I/O happens. Records and the
// document itself keep their insertion order across read-modify-write
// cycles, and fields this service does not touch round-trip unparsed.
package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/labeveryday/strands-hub-mcp/internal/keys"
	"github.com/labeveryday/strands-hub-mcp/internal/model"
	"github.com/labeveryday/strands-hub-mcp/internal/objstore"
)

// updatableFields is the fixed allowlist for UpdateMetadata. agent_id,
// name, created_at, updated_at and last_run_id stay immutable through this
// surface.
var updatableFields = map[string]bool{
	"description": true,
	"tags":        true,
	"status":      true,
	"owner":       true,
	"environment": true,
	"model_id":    true,
	"repo_url":    true,
}

// document is the registry parsed with its order intact.
type document = orderedmap.OrderedMap[string, json.RawMessage]

// Manager owns reads and allowlisted writes of the registry document.
type Manager struct {
	store  objstore.Gateway
	scheme keys.Scheme
	logger *slog.Logger
}

// New returns a Manager bound to the given gateway and key scheme.
func New(store objstore.Gateway, scheme keys.Scheme, logger *slog.Logger) *Manager {
	return &Manager{store: store, scheme: scheme, logger: logger}
}

// ListAgents returns every agent entry in document order. A missing
// registry object means an empty registry, not an error. When tag is
// non-empty, only agents whose record's tags contain it are returned.
func (m *Manager) ListAgents(ctx context.Context, tag string) ([]model.RegistryEntry, error) {
	doc, err := m.load(ctx)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return []model.RegistryEntry{}, nil
	}

	entries := make([]model.RegistryEntry, 0, doc.Len())
	for pair := doc.Oldest(); pair != nil; pair = pair.Next() {
		if tag != "" {
			tagged, err := recordHasTag(pair.Value, tag)
			if err != nil {
				return nil, fmt.Errorf("registry: agent %s: %w", pair.Key, err)
			}
			if !tagged {
				continue
			}
		}
		entries = append(entries, model.RegistryEntry{AgentID: pair.Key, Record: pair.Value})
	}
	return entries, nil
}

// GetAgent returns one agent's raw record.
func (m *Manager) GetAgent(ctx context.Context, agentID string) (json.RawMessage, error) {
	if err := model.ValidateAgentID(agentID); err != nil {
		return nil, fmt.Errorf("registry: %v: %w", err, objstore.ErrPolicyViolation)
	}

	doc, err := m.load(ctx)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, fmt.Errorf("registry: agent %s: %w", agentID, objstore.ErrNotFound)
	}
	rec, ok := doc.Get(agentID)
	if !ok {
		return nil, fmt.Errorf("registry: agent %s: %w", agentID, objstore.ErrNotFound)
	}
	return rec, nil
}

// UpdateMetadata merges the given fields into one agent's record and writes
// the document back. Every key must be on the allowlist or the whole update
// is rejected before any read or write. The write is a plain last-writer-
// wins put: concurrent updates race at document granularity, which is the
// accepted trade-off for a single small document (see DESIGN.md).
func (m *Manager) UpdateMetadata(ctx context.Context, agentID string, fields map[string]any) (json.RawMessage, error) {
	if err := model.ValidateAgentID(agentID); err != nil {
		return nil, fmt.Errorf("registry: %v: %w", err, objstore.ErrPolicyViolation)
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("registry: update %s: no updatable fields given: %w", agentID, objstore.ErrPolicyViolation)
	}

	var rejected []string
	for k := range fields {
		if !updatableFields[k] {
			rejected = append(rejected, k)
		}
	}
	if len(rejected) > 0 {
		sort.Strings(rejected)
		return nil, fmt.Errorf("registry: update %s: fields not in allowlist: %s: %w",
			agentID, strings.Join(rejected, ", "), objstore.ErrPolicyViolation)
	}

	doc, err := m.load(ctx)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, fmt.Errorf("registry: agent %s: %w", agentID, objstore.ErrNotFound)
	}
	raw, ok := doc.Get(agentID)
	if !ok {
		return nil, fmt.Errorf("registry: agent %s: %w", agentID, objstore.ErrNotFound)
	}

	record := orderedmap.New[string, json.RawMessage]()
	if err := json.Unmarshal(raw, record); err != nil {
		return nil, fmt.Errorf("registry: agent %s record: %w", agentID, objstore.ErrMalformed)
	}

	// Apply in sorted order so repeated updates serialize new fields
	// deterministically.
	names := make([]string, 0, len(fields))
	for k := range fields {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, k := range names {
		v, err := json.Marshal(fields[k])
		if err != nil {
			return nil, fmt.Errorf("registry: update %s: encode field %s: %w", agentID, k, err)
		}
		record.Set(k, v)
	}
	updatedAt, err := json.Marshal(time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return nil, fmt.Errorf("registry: update %s: encode timestamp: %w", agentID, err)
	}
	record.Set("updated_at", updatedAt)

	updated, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("registry: update %s: encode record: %w", agentID, err)
	}
	doc.Set(agentID, updated)

	body, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("registry: encode document: %w", err)
	}
	if err := m.store.Put(ctx, m.scheme.Registry(), body, nil); err != nil {
		return nil, fmt.Errorf("registry: write document: %w", err)
	}

	m.logger.Info("registry: metadata updated", "agent_id", agentID, "fields", names)
	return updated, nil
}

// load fetches and parses the registry document. A nil document with a nil
// error means the registry object does not exist yet.
func (m *Manager) load(ctx context.Context) (*document, error) {
	obj, err := m.store.Get(ctx, m.scheme.Registry())
	if err != nil {
		if errors.Is(err, objstore.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("registry: read document: %w", err)
	}

	doc := orderedmap.New[string, json.RawMessage]()
	if err := json.Unmarshal(obj.Body, doc); err != nil {
		return nil, fmt.Errorf("registry: parse %s: %w", m.scheme.Registry(), objstore.ErrMalformed)
	}
	return doc, nil
}

// recordHasTag parses just enough of a record to check tag membership.
func recordHasTag(raw json.RawMessage, tag string) (bool, error) {
	var rec struct {
		Tags []string `json:"tags"`
	}
	if err := json.Unmarshal(raw, &rec); err != nil {
		return false, objstore.ErrMalformed
	}
	for _, t := range rec.Tags {
		if t == tag {
			return true, nil
		}
	}
	return false, nil
}
