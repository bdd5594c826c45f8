package model_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/labeveryday/strands-hub-mcp/internal/model"
)

func TestValidateAgentID_Valid(t *testing.T) {
	valid := []string{
		"agent",
		"billing-triage",
		"agent.v2",
		"Agent_01",
		"user@example",
		"a",
		strings.Repeat("a", 255),
	}
	for _, id := range valid {
		require.NoError(t, model.ValidateAgentID(id), "expected valid: %q", id)
	}
}

func TestValidateAgentID_Invalid(t *testing.T) {
	tests := []struct {
		name string
		id   string
		want string
	}{
		{"empty", "", "agent_id is required"},
		{"too long", strings.Repeat("a", 256), "at most 255"},
		{"space", "has space", "invalid character"},
		{"slash", "path/agent", "invalid character"},
		{"unicode", "agené", "invalid character"},
		{"tab", "agent\t1", "invalid character"},
		{"newline", "agent\n1", "invalid character"},
		{"colon", "agent:1", "invalid character"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := model.ValidateAgentID(tt.id)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestValidateSessionID(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		valid := []string{
			"sess_1",
			"sess-2026-08-25",
			"S.1@host",
			strings.Repeat("s", 255),
		}
		for _, id := range valid {
			require.NoError(t, model.ValidateSessionID(id), "expected valid: %q", id)
		}
	})

	t.Run("invalid", func(t *testing.T) {
		tests := []struct {
			name string
			id   string
			want string
		}{
			{"empty", "", "session_id is required"},
			{"too long", strings.Repeat("s", 256), "at most 255"},
			{"slash", "a/b", "invalid character"},
			{"space", "a b", "invalid character"},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				err := model.ValidateSessionID(tt.id)
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.want)
			})
		}
	})
}

func TestValidateRunID(t *testing.T) {
	require.NoError(t, model.ValidateRunID("run_demo_1"))
	require.NoError(t, model.ValidateRunID("a1b2-c3.d4"))

	tests := []struct {
		name string
		id   string
		want string
	}{
		{"empty", "", "run_id is required"},
		{"too long", strings.Repeat("r", 256), "at most 255"},
		{"at sign", "run@1", "invalid character"},
		{"slash", "2026/run", "invalid character"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := model.ValidateRunID(tt.id)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestValidateDatePrefix(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		// Partial prefixes are allowed, including the empty one (scan
		// everything under the metrics root).
		for _, p := range []string{"", "2026", "2026-08", "2026-08-25"} {
			require.NoError(t, model.ValidateDatePrefix(p), "expected valid: %q", p)
		}
	})

	t.Run("invalid", func(t *testing.T) {
		tests := []struct {
			name string
			p    string
			want string
		}{
			{"too long", "2026-08-25T00", "at most 10"},
			{"letters", "2026-aug", "invalid character"},
			{"slash", "2026/08", "invalid character"},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				err := model.ValidateDatePrefix(tt.p)
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.want)
			})
		}
	})
}

func TestValidatePromptVersion(t *testing.T) {
	require.NoError(t, model.ValidatePromptVersion(1))
	require.NoError(t, model.ValidatePromptVersion(42))

	for _, n := range []int{0, -1, -42} {
		err := model.ValidatePromptVersion(n)
		require.Error(t, err, "expected error for version %d", n)
		assert.Contains(t, err.Error(), "positive integer")
	}
}
