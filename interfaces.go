package strandshub

import "context"

// Store is the object store surface behind the hub. The default is the
// built-in S3 gateway; WithStore swaps in another backend (or an in-memory
// fake in tests). Uses the package's own Object/Condition/Page/Listing
// mirrors to avoid exposing internal types to external consumers —
// New() wraps the implementation in an adapter for internal use.
//
// Implementations must be safe for concurrent use and should honour the
// sentinel errors in this package: ErrNotFound for absent keys,
// ErrConditionFailed for a conditional Put whose precondition did not
// hold, ErrTransient for retryable backend failures, and ErrMalformed for
// stored state that does not decode.
type Store interface {
	// Get fetches an object. Fails ErrNotFound when the key is absent.
	Get(ctx context.Context, key string) (Object, error)
	// Put writes an object, optionally guarded by cond.
	Put(ctx context.Context, key string, body []byte, cond *Condition) error
	// List returns one page of keys under prefix. An empty delimiter
	// disables folder roll-up.
	List(ctx context.Context, prefix, delimiter string, page Page) (Listing, error)
	// Exists reports whether an object is present without fetching it.
	Exists(ctx context.Context, key string) (bool, error)
}
