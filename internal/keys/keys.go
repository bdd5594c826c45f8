// Package keys maps logical resource identities onto object-store keys.
//
// The layout is shared with the agent runtimes that produce sessions and
// metrics, so every consumer of the bucket must build keys through this
// package rather than concatenating strings. All functions are pure; the
// Scheme only carries the configured prefixes.
//
// Layout:
//
//	registry.json
//	system_prompts/<agent_id>/current.txt
//	system_prompts/<agent_id>/v<N>.txt
//	system_prompts/<agent_id>/versions.json
//	sessions/<session_id>/session.json
//	sessions/<session_id>/agents/<agent_id>/agent.json
//	sessions/<session_id>/agents/<agent_id>/messages/message_<N>.json
//	metrics/<YYYY-MM-DD>/<run_id>.json
package keys

import (
	"fmt"
	"strconv"
	"strings"
)

// Scheme holds the normalized key prefixes for one deployment.
type Scheme struct {
	sessions string
	metrics  string
	prompts  string
	registry string
}

// New normalizes the configured prefixes (exactly one trailing slash) and
// returns a Scheme. The registry key is used verbatim.
func New(sessionsPrefix, metricsPrefix, promptsPrefix, registryKey string) Scheme {
	return Scheme{
		sessions: normalizePrefix(sessionsPrefix),
		metrics:  normalizePrefix(metricsPrefix),
		prompts:  normalizePrefix(promptsPrefix),
		registry: registryKey,
	}
}

func normalizePrefix(p string) string {
	return strings.TrimRight(p, "/") + "/"
}

// Registry returns the key of the single registry document.
func (s Scheme) Registry() string { return s.registry }

// ---------- prompts ----------

// PromptCurrent returns the key of an agent's active prompt text.
func (s Scheme) PromptCurrent(agentID string) string {
	return s.prompts + agentID + "/current.txt"
}

// PromptVersion returns the key of one immutable prompt version.
func (s Scheme) PromptVersion(agentID string, n int) string {
	return s.prompts + agentID + "/v" + strconv.Itoa(n) + ".txt"
}

// PromptIndex returns the key of an agent's version index document.
func (s Scheme) PromptIndex(agentID string) string {
	return s.prompts + agentID + "/versions.json"
}

// ---------- sessions ----------

// SessionsRoot returns the prefix under which all sessions live.
func (s Scheme) SessionsRoot() string { return s.sessions }

// SessionDoc returns the key of a session's top-level document.
func (s Scheme) SessionDoc(sessionID string) string {
	return s.sessions + sessionID + "/session.json"
}

// SessionAgentsPrefix returns the prefix holding a session's per-agent trees.
func (s Scheme) SessionAgentsPrefix(sessionID string) string {
	return s.sessions + sessionID + "/agents/"
}

// SessionAgentDoc returns the key of one agent's in-session document.
func (s Scheme) SessionAgentDoc(sessionID, agentID string) string {
	return s.SessionAgentsPrefix(sessionID) + agentID + "/agent.json"
}

// SessionMessagesPrefix returns the prefix holding one agent's messages.
func (s Scheme) SessionMessagesPrefix(sessionID, agentID string) string {
	return s.SessionAgentsPrefix(sessionID) + agentID + "/messages/"
}

// SessionMessage returns the key of one message document.
func (s Scheme) SessionMessage(sessionID, agentID string, n int) string {
	return fmt.Sprintf("%smessage_%d.json", s.SessionMessagesPrefix(sessionID, agentID), n)
}

// InSessions reports whether key lies under the sessions prefix.
func (s Scheme) InSessions(key string) bool {
	return strings.HasPrefix(key, s.sessions)
}

// SessionIDFromPrefix recovers the session id from a common prefix returned
// by a delimiter listing of SessionsRoot.
func (s Scheme) SessionIDFromPrefix(commonPrefix string) (string, bool) {
	rest, ok := strings.CutPrefix(commonPrefix, s.sessions)
	if !ok {
		return "", false
	}
	id := strings.TrimSuffix(rest, "/")
	if id == "" || strings.Contains(id, "/") {
		return "", false
	}
	return id, true
}

// AgentIDFromPrefix recovers the agent id from a common prefix returned by
// a delimiter listing of SessionAgentsPrefix.
func (s Scheme) AgentIDFromPrefix(sessionID, commonPrefix string) (string, bool) {
	rest, ok := strings.CutPrefix(commonPrefix, s.SessionAgentsPrefix(sessionID))
	if !ok {
		return "", false
	}
	id := strings.TrimSuffix(rest, "/")
	if id == "" || strings.Contains(id, "/") {
		return "", false
	}
	return id, true
}

// MessageIndex parses the numeric index out of a message key. Keys that do
// not follow the message_<N>.json shape report false.
func MessageIndex(key string) (int, bool) {
	base := key
	if i := strings.LastIndex(base, "/"); i >= 0 {
		base = base[i+1:]
	}
	rest, ok := strings.CutPrefix(base, "message_")
	if !ok {
		return 0, false
	}
	rest, ok = strings.CutSuffix(rest, ".json")
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(rest)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// ---------- metrics ----------

// MetricsRoot returns the prefix under which all metrics records live.
func (s Scheme) MetricsRoot() string { return s.metrics }

// MetricsDatePrefix narrows the metrics prefix by a date fragment. The
// fragment may be partial ("2026-08" scans a whole month).
func (s Scheme) MetricsDatePrefix(datePrefix string) string {
	return s.metrics + datePrefix
}

// MetricsRecord returns the key of one run's metrics document.
func (s Scheme) MetricsRecord(date, runID string) string {
	return s.metrics + date + "/" + runID + ".json"
}

// InMetrics reports whether key lies under the metrics prefix.
func (s Scheme) InMetrics(key string) bool {
	return strings.HasPrefix(key, s.metrics)
}

// RunIDFromKey recovers the run id from a metrics record key.
func RunIDFromKey(key string) string {
	base := key
	if i := strings.LastIndex(base, "/"); i >= 0 {
		base = base[i+1:]
	}
	return strings.TrimSuffix(base, ".json")
}
