package strandshub

import "github.com/labeveryday/strands-hub-mcp/internal/objstore"

// Object is a fetched object together with the store's version tag. The
// tag is opaque; it is only ever echoed back in a Condition.
type Object struct {
	Key  string
	Body []byte
	ETag string
}

// Condition constrains a Put. A nil condition means unconditional.
type Condition struct {
	// IfMatch succeeds only when the stored object's current tag equals
	// this value.
	IfMatch string
	// IfNoneMatch succeeds only when no object exists at the key
	// (create-only put).
	IfNoneMatch bool
}

// Page bounds one List call. A zero Page means the store's maximum page.
type Page struct {
	Limit int
	Token string
}

// Listing is one page of results under a prefix. When a delimiter was
// given, keys that continue past it are rolled up into CommonPrefixes.
type Listing struct {
	Keys           []string
	CommonPrefixes []string
	NextToken      string
	Truncated      bool
}

// Store implementations report failures with these sentinels; the hub
// classifies them with errors.Is. Anything else is treated as an internal
// store failure.
var (
	// ErrNotFound signals an absent key.
	ErrNotFound = objstore.ErrNotFound
	// ErrConditionFailed signals a conditional Put whose precondition did
	// not hold.
	ErrConditionFailed = objstore.ErrConditionFailed
	// ErrTransient signals a retryable backend failure.
	ErrTransient = objstore.ErrTransient
	// ErrMalformed signals stored state that does not decode.
	ErrMalformed = objstore.ErrMalformed
)
