// Package tokenstore persists the Zabbix session token. The default store is
// in-memory; a Redis-backed store lets multiple bridge replicas share one
// backend session instead of each holding their own login.
package tokenstore

import "sync/atomic"

// Store holds at most one session token. Implementations must be safe for
// concurrent use; the client additionally serializes login/logout/call, so a
// store never sees interleaved Put and Clear for the same session.
type Store interface {
	Get() string
	Put(token string)
	Clear()
}

// memoryStore keeps the token in process memory.
type memoryStore struct {
	v atomic.Value
}

// NewMemoryStore returns an empty in-memory Store.
func NewMemoryStore() Store {
	ms := &memoryStore{}
	ms.v.Store("")
	return ms
}

func (m *memoryStore) Get() string {
	if s, ok := m.v.Load().(string); ok {
		return s
	}
	return ""
}

func (m *memoryStore) Put(token string) { m.v.Store(token) }

func (m *memoryStore) Clear() { m.v.Store("") }
