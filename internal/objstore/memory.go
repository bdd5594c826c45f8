package objstore

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Memory is an in-process Gateway for tests and local development. It
// mirrors the remote store's observable behavior: lexicographic listing,
// delimiter roll-up into common prefixes, page tokens, and tag-checked
// conditional puts. Every successful put produces a fresh tag.
type Memory struct {
	mu      sync.RWMutex
	objects map[string]memObject
	seq     uint64
}

type memObject struct {
	body []byte
	etag string
}

// NewMemory returns an empty in-memory gateway.
func NewMemory() *Memory {
	return &Memory{objects: make(map[string]memObject)}
}

// Get implements Gateway.
func (m *Memory) Get(ctx context.Context, key string) (Object, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	obj, ok := m.objects[key]
	if !ok {
		return Object{}, fmt.Errorf("objstore: get %s: %w", key, ErrNotFound)
	}
	return Object{Key: key, Body: bytes.Clone(obj.body), ETag: obj.etag}, nil
}

// Put implements Gateway.
func (m *Memory) Put(ctx context.Context, key string, body []byte, cond *Condition) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if cond != nil {
		cur, exists := m.objects[key]
		if cond.IfNoneMatch && exists {
			return fmt.Errorf("objstore: put %s: %w", key, ErrConditionFailed)
		}
		if cond.IfMatch != "" && (!exists || cur.etag != cond.IfMatch) {
			return fmt.Errorf("objstore: put %s: %w", key, ErrConditionFailed)
		}
	}

	m.seq++
	m.objects[key] = memObject{
		body: bytes.Clone(body),
		etag: fmt.Sprintf("%q", fmt.Sprintf("mem-%08d", m.seq)),
	}
	return nil
}

// List implements Gateway.
func (m *Memory) List(ctx context.Context, prefix, delimiter string, page Page) (Listing, error) {
	m.mu.RLock()
	keys := make([]string, 0, len(m.objects))
	for k := range m.objects {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	m.mu.RUnlock()
	sort.Strings(keys)

	// Roll keys past the delimiter up into common prefixes. Keys and
	// common prefixes share one ordered stream, as the remote store pages
	// them together.
	type entry struct {
		name     string
		isPrefix bool
	}
	entries := make([]entry, 0, len(keys))
	lastPrefix := ""
	for _, k := range keys {
		rest := k[len(prefix):]
		if delimiter != "" {
			if i := strings.Index(rest, delimiter); i >= 0 {
				cp := prefix + rest[:i+len(delimiter)]
				if cp != lastPrefix {
					entries = append(entries, entry{name: cp, isPrefix: true})
					lastPrefix = cp
				}
				continue
			}
		}
		entries = append(entries, entry{name: k})
	}

	// A page token is the name of the last entry already returned.
	start := 0
	if page.Token != "" {
		for i, e := range entries {
			if e.name > page.Token {
				break
			}
			start = i + 1
		}
	}

	size := int(page.size())
	var l Listing
	for i := start; i < len(entries); i++ {
		if i-start == size {
			l.Truncated = true
			l.NextToken = entries[i-1].name
			break
		}
		if entries[i].isPrefix {
			l.CommonPrefixes = append(l.CommonPrefixes, entries[i].name)
		} else {
			l.Keys = append(l.Keys, entries[i].name)
		}
	}
	return l, nil
}

// Exists implements Gateway.
func (m *Memory) Exists(ctx context.Context, key string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.objects[key]
	return ok, nil
}
