package reconcile

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Memo is a run-scoped memo keyed by string. It is created per pipeline
// execution and discarded afterwards; there is no package-level instance.
// Concurrent loads of the same key are collapsed into one call.
type Memo[V any] struct {
	mu     sync.RWMutex
	values map[string]V
	sf     singleflight.Group
}

// NewMemo creates an empty memo.
func NewMemo[V any]() *Memo[V] {
	return &Memo[V]{values: make(map[string]V)}
}

// Get returns the memoized value for key.
func (m *Memo[V]) Get(key string) (V, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok
}

// Set stores v under key, replacing any previous value.
func (m *Memo[V]) Set(key string, v V) {
	m.mu.Lock()
	m.values[key] = v
	m.mu.Unlock()
}

// Len returns the number of memoized keys.
func (m *Memo[V]) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.values)
}

// GetOrLoad returns the memoized value for key, or calls load and memoizes its
// result. Errors are not memoized. The hit flag is true when no load was needed.
func (m *Memo[V]) GetOrLoad(ctx context.Context, key string, load func(context.Context) (V, error)) (v V, hit bool, err error) {
	if v, ok := m.Get(key); ok {
		return v, true, nil
	}

	result, err, _ := m.sf.Do(key, func() (interface{}, error) {
		// Double-check after winning the singleflight slot
		if v, ok := m.Get(key); ok {
			return v, nil
		}
		loaded, err := load(ctx)
		if err != nil {
			return nil, err
		}
		m.Set(key, loaded)
		return loaded, nil
	})
	if err != nil {
		var zero V
		return zero, false, err
	}
	return result.(V), false, nil
}
