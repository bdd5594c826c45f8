package model

import "time"

// PromptVersionEntry is one row of an agent's version index.
type PromptVersionEntry struct {
	Version   int       `json:"version"`
	Note      string    `json:"note,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// PromptIndex is the versions.json document: the authoritative record of
// which prompt versions exist for an agent, plus the promoted "current"
// version number. A content object without an index entry is invisible.
//
// Current is managed by the out-of-band promotion flow; version creation
// appends to Versions and never touches it. The field is always serialized
// (null when nothing was promoted yet) so the document shape is stable for
// other consumers of the bucket.
type PromptIndex struct {
	Versions []PromptVersionEntry `json:"versions"`
	Current  *int                 `json:"current"`
}

// MaxVersion returns the highest version number in the index, or 0 when
// the index is empty.
func (idx PromptIndex) MaxVersion() int {
	max := 0
	for _, v := range idx.Versions {
		if v.Version > max {
			max = v.Version
		}
	}
	return max
}

// NextVersion returns the number the next created version must take.
func (idx PromptIndex) NextVersion() int {
	return idx.MaxVersion() + 1
}

// Has reports whether version n exists in the index.
func (idx PromptIndex) Has(n int) bool {
	for _, v := range idx.Versions {
		if v.Version == n {
			return true
		}
	}
	return false
}
