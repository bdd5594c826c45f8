package model

import "encoding/json"

// RegistryEntry pairs an agent id with its raw registry record. Records are
// producer-authored; they pass through unparsed so fields this service does
// not know about survive round-trips.
type RegistryEntry struct {
	AgentID string          `json:"agent_id"`
	Record  json.RawMessage `json:"record"`
}
