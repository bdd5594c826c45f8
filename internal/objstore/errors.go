package objstore

import "errors"

// Error taxonomy shared by the gateway and the resource managers. Callers
// classify with errors.Is; managers wrap these with operation context.
var (
	// ErrNotFound is returned when a requested object or resource does not exist.
	ErrNotFound = errors.New("objstore: not found")

	// ErrConditionFailed is returned by a conditional put whose precondition
	// did not hold: the object changed under an IfMatch tag, or already
	// exists for a create-only put.
	ErrConditionFailed = errors.New("objstore: condition failed")

	// ErrConflict is returned when a read-modify-write cycle lost a race.
	// The caller may retry after a fresh read.
	ErrConflict = errors.New("objstore: conflict")

	// ErrPolicyViolation is returned when a write is rejected by a resource's
	// mutation policy (field allowlist, append-only, read-only). Retrying
	// the same request can never succeed.
	ErrPolicyViolation = errors.New("objstore: policy violation")

	// ErrTransient is returned for store-side throttling and timeouts.
	// Safe to retry with backoff.
	ErrTransient = errors.New("objstore: transient store error")

	// ErrMalformed is returned when an object exists but does not parse as
	// the structure its key implies.
	ErrMalformed = errors.New("objstore: malformed object")
)
