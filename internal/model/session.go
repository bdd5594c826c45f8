package model

// SessionPage is one page of session ids from the hierarchy scan.
type SessionPage struct {
	SessionIDs []string `json:"session_ids"`
	NextToken  string   `json:"next_continuation_token,omitempty"`
	Truncated  bool     `json:"is_truncated"`
}
