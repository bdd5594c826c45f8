// Package prompts manages per-agent system prompt version chains.
//
// Versions are append-only: numbered content objects plus a versions.json
// index per agent. The index is the single source of truth for which
// versions exist; a content object without an index entry is invisible and
// is treated as leftover from a crashed writer. Version numbers are
// assigned exactly once through a conditional write on the index, so two
// concurrent creators can never both claim the same number.
//
// The "current" prompt (current.txt and the index's current field) belongs
// to the promotion flow, which is not part of this service's write surface.
// Nothing in this package ever modifies it.
package prompts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/labeveryday/strands-hub-mcp/internal/keys"
	"github.com/labeveryday/strands-hub-mcp/internal/model"
	"github.com/labeveryday/strands-hub-mcp/internal/objstore"
)

// ContentReader is the read path for prompt content objects. The cache
// decorator satisfies it; Get may serve from cache, Fetch must go to the
// store and repopulate.
type ContentReader interface {
	Get(ctx context.Context, key string) (objstore.Object, error)
	Fetch(ctx context.Context, key string) (objstore.Object, error)
}

// Manager owns the prompt version chains. Index reads and all writes go
// straight to the gateway; only content reads flow through the reader.
type Manager struct {
	store  objstore.Gateway
	reader ContentReader
	scheme keys.Scheme
	logger *slog.Logger
}

// New returns a Manager. reader handles content reads (pass a cache
// decorator or a direct adapter); store handles everything authoritative.
func New(store objstore.Gateway, reader ContentReader, scheme keys.Scheme, logger *slog.Logger) *Manager {
	return &Manager{store: store, reader: reader, scheme: scheme, logger: logger}
}

// GetCurrent returns the agent's active prompt text. forceRefresh bypasses
// the content cache for this read.
func (m *Manager) GetCurrent(ctx context.Context, agentID string, forceRefresh bool) (string, error) {
	if err := model.ValidateAgentID(agentID); err != nil {
		return "", fmt.Errorf("prompts: %v: %w", err, objstore.ErrPolicyViolation)
	}

	key := m.scheme.PromptCurrent(agentID)
	get := m.reader.Get
	if forceRefresh {
		get = m.reader.Fetch
	}
	obj, err := get(ctx, key)
	if err != nil {
		if errors.Is(err, objstore.ErrNotFound) {
			return "", fmt.Errorf("prompts: agent %s has no current prompt: %w", agentID, objstore.ErrNotFound)
		}
		return "", fmt.Errorf("prompts: get current for %s: %w", agentID, err)
	}
	return string(obj.Body), nil
}

// GetVersion returns the content of one version. The index decides
// existence: content objects the index does not list are invisible.
func (m *Manager) GetVersion(ctx context.Context, agentID string, n int) (string, error) {
	if err := model.ValidateAgentID(agentID); err != nil {
		return "", fmt.Errorf("prompts: %v: %w", err, objstore.ErrPolicyViolation)
	}
	if n < 1 {
		return "", fmt.Errorf("prompts: agent %s version %d: %w", agentID, n, objstore.ErrNotFound)
	}

	idx, _, found, err := m.loadIndex(ctx, agentID)
	if err != nil {
		return "", err
	}
	if !found || !idx.Has(n) {
		return "", fmt.Errorf("prompts: agent %s version %d: %w", agentID, n, objstore.ErrNotFound)
	}

	obj, err := m.reader.Get(ctx, m.scheme.PromptVersion(agentID, n))
	if err != nil {
		return "", fmt.Errorf("prompts: read version %d for %s: %w", n, agentID, err)
	}
	return string(obj.Body), nil
}

// ListVersions returns the agent's version index, ascending by number. An
// agent with no versions yet gets an empty index, never an error.
func (m *Manager) ListVersions(ctx context.Context, agentID string) (model.PromptIndex, error) {
	if err := model.ValidateAgentID(agentID); err != nil {
		return model.PromptIndex{}, fmt.Errorf("prompts: %v: %w", err, objstore.ErrPolicyViolation)
	}

	idx, _, found, err := m.loadIndex(ctx, agentID)
	if err != nil {
		return model.PromptIndex{}, err
	}
	if !found {
		return model.PromptIndex{Versions: []model.PromptVersionEntry{}}, nil
	}
	sort.Slice(idx.Versions, func(i, j int) bool {
		return idx.Versions[i].Version < idx.Versions[j].Version
	})
	return idx, nil
}

// CreateVersion appends a new immutable version and returns its index
// entry. The number is max existing + 1; the content object is written
// before the index entry that makes it visible, and the index write is
// conditional on the state read at the start, so a lost race surfaces as
// ErrConflict for the caller to retry with a fresh read. The current
// pointer is never touched.
func (m *Manager) CreateVersion(ctx context.Context, agentID, content, note string) (model.PromptVersionEntry, error) {
	if err := model.ValidateAgentID(agentID); err != nil {
		return model.PromptVersionEntry{}, fmt.Errorf("prompts: %v: %w", err, objstore.ErrPolicyViolation)
	}
	if content == "" {
		return model.PromptVersionEntry{}, fmt.Errorf("prompts: create version for %s: content is required: %w",
			agentID, objstore.ErrPolicyViolation)
	}

	idx, etag, found, err := m.loadIndex(ctx, agentID)
	if err != nil {
		return model.PromptVersionEntry{}, err
	}
	next := idx.NextVersion()
	entry := model.PromptVersionEntry{
		Version:   next,
		Note:      note,
		CreatedAt: time.Now().UTC(),
	}

	// Content goes in create-only: an indexed version's content must never
	// be overwritten. A condition failure here is either a live racer that
	// already claimed this number, or an orphan left by a crashed writer
	// before its index update. Only the provable orphan may be clobbered.
	contentKey := m.scheme.PromptVersion(agentID, next)
	err = m.store.Put(ctx, contentKey, []byte(content), &objstore.Condition{IfNoneMatch: true})
	if errors.Is(err, objstore.ErrConditionFailed) {
		fresh, freshTag, freshFound, ferr := m.loadIndex(ctx, agentID)
		if ferr != nil {
			return model.PromptVersionEntry{}, ferr
		}
		if fresh.Has(next) || freshTag != etag || freshFound != found {
			return model.PromptVersionEntry{}, fmt.Errorf("prompts: create version %d for %s: %w",
				next, agentID, objstore.ErrConflict)
		}
		m.logger.Warn("prompts: overwriting orphaned version content",
			"agent_id", agentID, "version", next, "key", contentKey)
		err = m.store.Put(ctx, contentKey, []byte(content), nil)
	}
	if err != nil {
		return model.PromptVersionEntry{}, fmt.Errorf("prompts: write version %d for %s: %w", next, agentID, err)
	}

	idx.Versions = append(idx.Versions, entry)
	body, err := json.MarshalIndent(idx, "", "  ")
	if err != nil {
		return model.PromptVersionEntry{}, fmt.Errorf("prompts: encode index for %s: %w", agentID, err)
	}

	cond := &objstore.Condition{IfNoneMatch: true}
	if found {
		cond = &objstore.Condition{IfMatch: etag}
	}
	if err := m.store.Put(ctx, m.scheme.PromptIndex(agentID), body, cond); err != nil {
		if errors.Is(err, objstore.ErrConditionFailed) {
			return model.PromptVersionEntry{}, fmt.Errorf("prompts: create version %d for %s: %w",
				next, agentID, objstore.ErrConflict)
		}
		return model.PromptVersionEntry{}, fmt.Errorf("prompts: update index for %s: %w", agentID, err)
	}

	m.logger.Info("prompts: version created", "agent_id", agentID, "version", next, "bytes", len(content))
	return entry, nil
}

// loadIndex reads and parses versions.json. found is false when the agent
// has no index yet; etag is the tag to condition the next index write on.
func (m *Manager) loadIndex(ctx context.Context, agentID string) (model.PromptIndex, string, bool, error) {
	obj, err := m.store.Get(ctx, m.scheme.PromptIndex(agentID))
	if err != nil {
		if errors.Is(err, objstore.ErrNotFound) {
			return model.PromptIndex{Versions: []model.PromptVersionEntry{}}, "", false, nil
		}
		return model.PromptIndex{}, "", false, fmt.Errorf("prompts: read index for %s: %w", agentID, err)
	}

	var idx model.PromptIndex
	if err := json.Unmarshal(obj.Body, &idx); err != nil {
		return model.PromptIndex{}, "", false, fmt.Errorf("prompts: parse index for %s: %w", agentID, objstore.ErrMalformed)
	}
	if idx.Versions == nil {
		idx.Versions = []model.PromptVersionEntry{}
	}
	return idx, obj.ETag, true, nil
}
