// Package sessions is the read-only view over session transcripts.
//
// Transcripts are written by the agent runtimes and never change after the
// fact; this service only traverses them. The Reader type exposes no write
// method at all, so a write against session data is unrepresentable rather
// than merely rejected at runtime.
package sessions

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"

	"github.com/labeveryday/strands-hub-mcp/internal/keys"
	"github.com/labeveryday/strands-hub-mcp/internal/model"
	"github.com/labeveryday/strands-hub-mcp/internal/objstore"
)

// Reader traverses the session → agent → message hierarchy.
type Reader struct {
	store  objstore.Gateway
	scheme keys.Scheme
	logger *slog.Logger
}

// NewReader returns a Reader over the given gateway.
func NewReader(store objstore.Gateway, scheme keys.Scheme, logger *slog.Logger) *Reader {
	return &Reader{store: store, scheme: scheme, logger: logger}
}

// ListSessions returns one page of session ids, in store order. Non-session
// objects directly under the prefix are ignored.
func (r *Reader) ListSessions(ctx context.Context, page objstore.Page) (model.SessionPage, error) {
	l, err := r.store.List(ctx, r.scheme.SessionsRoot(), "/", page)
	if err != nil {
		return model.SessionPage{}, fmt.Errorf("sessions: list: %w", err)
	}

	ids := make([]string, 0, len(l.CommonPrefixes))
	for _, cp := range l.CommonPrefixes {
		if id, ok := r.scheme.SessionIDFromPrefix(cp); ok {
			ids = append(ids, id)
		}
	}
	return model.SessionPage{
		SessionIDs: ids,
		NextToken:  l.NextToken,
		Truncated:  l.Truncated,
	}, nil
}

// GetSession returns a session's top-level document.
func (r *Reader) GetSession(ctx context.Context, sessionID string) (json.RawMessage, error) {
	if err := model.ValidateSessionID(sessionID); err != nil {
		return nil, fmt.Errorf("sessions: %v: %w", err, objstore.ErrPolicyViolation)
	}
	return r.getJSON(ctx, r.scheme.SessionDoc(sessionID))
}

// ListAgents returns the agent ids present in one session.
func (r *Reader) ListAgents(ctx context.Context, sessionID string) ([]string, error) {
	if err := model.ValidateSessionID(sessionID); err != nil {
		return nil, fmt.Errorf("sessions: %v: %w", err, objstore.ErrPolicyViolation)
	}
	if err := r.requireSession(ctx, sessionID); err != nil {
		return nil, err
	}

	l, err := objstore.ListAll(ctx, r.store, r.scheme.SessionAgentsPrefix(sessionID), "/")
	if err != nil {
		return nil, fmt.Errorf("sessions: list agents in %s: %w", sessionID, err)
	}

	ids := make([]string, 0, len(l.CommonPrefixes))
	for _, cp := range l.CommonPrefixes {
		if id, ok := r.scheme.AgentIDFromPrefix(sessionID, cp); ok {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// GetAgent returns one agent's in-session document.
func (r *Reader) GetAgent(ctx context.Context, sessionID, agentID string) (json.RawMessage, error) {
	if err := r.validatePair(sessionID, agentID); err != nil {
		return nil, err
	}
	return r.getJSON(ctx, r.scheme.SessionAgentDoc(sessionID, agentID))
}

// ListMessages returns one agent's message keys ordered by message index.
// Objects under the messages prefix that do not follow the message naming
// are not messages and are skipped.
func (r *Reader) ListMessages(ctx context.Context, sessionID, agentID string) ([]string, error) {
	if err := r.validatePair(sessionID, agentID); err != nil {
		return nil, err
	}
	if err := r.requireAgent(ctx, sessionID, agentID); err != nil {
		return nil, err
	}

	l, err := objstore.ListAll(ctx, r.store, r.scheme.SessionMessagesPrefix(sessionID, agentID), "")
	if err != nil {
		return nil, fmt.Errorf("sessions: list messages for %s/%s: %w", sessionID, agentID, err)
	}

	type ref struct {
		key   string
		index int
	}
	refs := make([]ref, 0, len(l.Keys))
	for _, k := range l.Keys {
		if n, ok := keys.MessageIndex(k); ok {
			refs = append(refs, ref{key: k, index: n})
		}
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i].index < refs[j].index })

	ordered := make([]string, len(refs))
	for i, ref := range refs {
		ordered[i] = ref.key
	}
	return ordered, nil
}

// GetMessage returns one message document by index.
func (r *Reader) GetMessage(ctx context.Context, sessionID, agentID string, n int) (json.RawMessage, error) {
	if err := r.validatePair(sessionID, agentID); err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, fmt.Errorf("sessions: message %d in %s/%s: %w", n, sessionID, agentID, objstore.ErrNotFound)
	}
	return r.getJSON(ctx, r.scheme.SessionMessage(sessionID, agentID, n))
}

// GetRaw reads any object under the sessions prefix. Payloads that parse as
// JSON come back structured; anything else comes back verbatim with the
// format flag set to raw, so producer-side drift reads instead of failing.
func (r *Reader) GetRaw(ctx context.Context, key string) (model.RawObject, error) {
	if !r.scheme.InSessions(key) {
		return model.RawObject{}, fmt.Errorf("sessions: key %s is outside the sessions prefix: %w",
			key, objstore.ErrPolicyViolation)
	}

	obj, err := r.store.Get(ctx, key)
	if err != nil {
		return model.RawObject{}, fmt.Errorf("sessions: raw read: %w", err)
	}

	if json.Valid(obj.Body) {
		return model.RawObject{Key: key, Format: model.RawFormatParsed, JSON: obj.Body}, nil
	}
	r.logger.Debug("sessions: raw fallback for non-JSON payload", "key", key, "bytes", len(obj.Body))
	return model.RawObject{Key: key, Format: model.RawFormatText, Text: string(obj.Body)}, nil
}

// getJSON fetches a document that must be JSON. Callers that can tolerate
// drift use GetRaw instead.
func (r *Reader) getJSON(ctx context.Context, key string) (json.RawMessage, error) {
	obj, err := r.store.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("sessions: get %s: %w", key, err)
	}
	if !json.Valid(obj.Body) {
		return nil, fmt.Errorf("sessions: %s: %w", key, objstore.ErrMalformed)
	}
	return obj.Body, nil
}

// requireSession turns "session directory absent" into a not-found instead
// of an empty listing.
func (r *Reader) requireSession(ctx context.Context, sessionID string) error {
	ok, err := r.store.Exists(ctx, r.scheme.SessionDoc(sessionID))
	if err != nil {
		return fmt.Errorf("sessions: check %s: %w", sessionID, err)
	}
	if !ok {
		return fmt.Errorf("sessions: session %s: %w", sessionID, objstore.ErrNotFound)
	}
	return nil
}

func (r *Reader) requireAgent(ctx context.Context, sessionID, agentID string) error {
	ok, err := r.store.Exists(ctx, r.scheme.SessionAgentDoc(sessionID, agentID))
	if err != nil {
		return fmt.Errorf("sessions: check %s/%s: %w", sessionID, agentID, err)
	}
	if !ok {
		return fmt.Errorf("sessions: agent %s in session %s: %w", agentID, sessionID, objstore.ErrNotFound)
	}
	return nil
}

func (r *Reader) validatePair(sessionID, agentID string) error {
	if err := model.ValidateSessionID(sessionID); err != nil {
		return fmt.Errorf("sessions: %v: %w", err, objstore.ErrPolicyViolation)
	}
	if err := model.ValidateAgentID(agentID); err != nil {
		return fmt.Errorf("sessions: %v: %w", err, objstore.ErrPolicyViolation)
	}
	return nil
}
