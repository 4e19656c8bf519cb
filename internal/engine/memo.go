package engine

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// Key identifies one set of inputs. Collaborators bump a version whenever
// the matching input changes, so equal keys imply equal views.
type Key struct {
	ManagerID       string
	PoolID          string
	SnapshotVersion int64
	FillsVersion    int64
	PriceVersion    int64
}

// Memo is a bounded LRU of evaluated views. Safe for concurrent use.
type Memo struct {
	cache *lru.Cache[Key, View]
}

// NewMemo creates a memo holding at most size views. size < 1 means 1.
func NewMemo(size int) *Memo {
	if size < 1 {
		size = 1
	}
	// lru.New only fails for a non-positive size.
	cache, _ := lru.New[Key, View](size)
	return &Memo{cache: cache}
}

// Evaluate returns the cached view for key, or evaluates in and caches the
// result. The boolean reports a cache hit. Errors are not cached.
func (m *Memo) Evaluate(key Key, in Inputs) (View, bool, error) {
	if v, ok := m.cache.Get(key); ok {
		return v, true, nil
	}
	v, err := Evaluate(in)
	if err != nil {
		return View{}, false, err
	}
	m.cache.Add(key, v)
	return v, false, nil
}

// Len returns the number of cached views.
func (m *Memo) Len() int {
	return m.cache.Len()
}
