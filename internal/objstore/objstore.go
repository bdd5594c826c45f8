// Package objstore provides the object store gateway for the hub.
//
// All remote I/O goes through the Gateway interface: S3 (or any
// S3-compatible store) in production, an in-process Memory store in tests
// and local development. The gateway is deliberately thin; resource
// semantics (mutation policy, key layout, document formats) live in the
// manager packages that consume it.
package objstore

import (
	"context"
	"strings"
)

// Store page-size window. The remote store rejects page sizes outside it.
const (
	minPageSize = 1
	maxPageSize = 1000
)

// Object is a fetched object together with the store's version tag.
// The tag is opaque; it is only ever echoed back in a Condition.
type Object struct {
	Key  string
	Body []byte
	ETag string
}

// Condition constrains a Put. The zero value means unconditional.
type Condition struct {
	// IfMatch succeeds only when the stored object's current tag equals
	// this value. Used for read-modify-write cycles on index documents.
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

// size returns the page size clamped into the store's window.
func (p Page) size() int32 {
	if p.Limit < minPageSize {
		return maxPageSize
	}
	if p.Limit > maxPageSize {
		return maxPageSize
	}
	return int32(p.Limit)
}

// Listing is one page of results under a prefix. When a delimiter was
// given, keys that continue past it are rolled up into CommonPrefixes,
// mirroring the remote store's folder emulation.
type Listing struct {
	Keys           []string
	CommonPrefixes []string
	NextToken      string
	Truncated      bool
}

// Gateway is the synchronous facade over the object store. Implementations
// must translate store failures into the package's error taxonomy.
type Gateway interface {
	// Get fetches an object. Fails ErrNotFound when the key is absent.
	Get(ctx context.Context, key string) (Object, error)
	// Put writes an object, optionally guarded by cond. Fails
	// ErrConditionFailed when the condition does not hold.
	Put(ctx context.Context, key string, body []byte, cond *Condition) error
	// List returns one page of keys under prefix. An empty prefix lists
	// the whole bucket; an empty delimiter disables folder roll-up.
	List(ctx context.Context, prefix, delimiter string, page Page) (Listing, error)
	// Exists reports whether an object is present without fetching it.
	Exists(ctx context.Context, key string) (bool, error)
}

// ListAll drains every page under prefix into a single Listing. Use it only
// for prefixes with bounded fan-out (one agent's messages, one session's
// agents); top-level listings should page explicitly.
func ListAll(ctx context.Context, g Gateway, prefix, delimiter string) (Listing, error) {
	var all Listing
	var page Page
	for {
		l, err := g.List(ctx, prefix, delimiter, page)
		if err != nil {
			return Listing{}, err
		}
		all.Keys = append(all.Keys, l.Keys...)
		all.CommonPrefixes = append(all.CommonPrefixes, l.CommonPrefixes...)
		if !l.Truncated || l.NextToken == "" {
			return all, nil
		}
		page.Token = l.NextToken
	}
}

// contentTypeFor picks the MIME type recorded on a put, matching what the
// producing agents write for the same keys.
func contentTypeFor(key string) string {
	switch {
	case strings.HasSuffix(key, ".json"):
		return "application/json"
	case strings.HasSuffix(key, ".txt"):
		return "text/plain; charset=utf-8"
	default:
		return "application/octet-stream"
	}
}
