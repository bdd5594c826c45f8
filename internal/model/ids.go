// Package model holds the resource record types and identifier validation
// shared by the managers and the tool dispatcher.
package model

import "fmt"

// ValidateAgentID checks that an agent ID conforms to the allowed format.
// Agent IDs must be 1-255 ASCII characters: alphanumeric, dots, hyphens,
// underscores, and @ signs. The charset keeps IDs safe to embed in object
// keys (no separators, no traversal).
func ValidateAgentID(id string) error {
	if len(id) == 0 {
		return fmt.Errorf("agent_id is required")
	}
	if len(id) > 255 {
		return fmt.Errorf("agent_id must be at most 255 characters")
	}
	for i := 0; i < len(id); i++ {
		c := id[i]
		if (c < 'a' || c > 'z') && (c < 'A' || c > 'Z') && (c < '0' || c > '9') &&
			c != '.' && c != '-' && c != '_' && c != '@' {
			return fmt.Errorf("agent_id contains invalid character at position %d: %q", i, c)
		}
	}
	return nil
}

// ValidateSessionID checks a session ID. Same charset rules as agent IDs:
// session IDs become one path segment of every session key.
func ValidateSessionID(id string) error {
	if len(id) == 0 {
		return fmt.Errorf("session_id is required")
	}
	if len(id) > 255 {
		return fmt.Errorf("session_id must be at most 255 characters")
	}
	for i := 0; i < len(id); i++ {
		c := id[i]
		if (c < 'a' || c > 'z') && (c < 'A' || c > 'Z') && (c < '0' || c > '9') &&
			c != '.' && c != '-' && c != '_' && c != '@' {
			return fmt.Errorf("session_id contains invalid character at position %d: %q", i, c)
		}
	}
	return nil
}

// ValidateRunID checks a metrics run ID (one path segment of a metrics key).
func ValidateRunID(id string) error {
	if len(id) == 0 {
		return fmt.Errorf("run_id is required")
	}
	if len(id) > 255 {
		return fmt.Errorf("run_id must be at most 255 characters")
	}
	for i := 0; i < len(id); i++ {
		c := id[i]
		if (c < 'a' || c > 'z') && (c < 'A' || c > 'Z') && (c < '0' || c > '9') &&
			c != '.' && c != '-' && c != '_' {
			return fmt.Errorf("run_id contains invalid character at position %d: %q", i, c)
		}
	}
	return nil
}

// ValidateDatePrefix checks a metrics date fragment. Fragments may be
// partial ("2026" or "2026-08"), so only the charset is enforced, not the
// full YYYY-MM-DD shape.
func ValidateDatePrefix(p string) error {
	if len(p) > 10 {
		return fmt.Errorf("date_prefix must be at most 10 characters (YYYY-MM-DD)")
	}
	for i := 0; i < len(p); i++ {
		c := p[i]
		if (c < '0' || c > '9') && c != '-' {
			return fmt.Errorf("date_prefix contains invalid character at position %d: %q", i, c)
		}
	}
	return nil
}

// ValidatePromptVersion checks a prompt version number. Versions are
// assigned from 1 upward, so anything below 1 can never exist.
func ValidatePromptVersion(n int) error {
	if n < 1 {
		return fmt.Errorf("version must be a positive integer, got %d", n)
	}
	return nil
}
