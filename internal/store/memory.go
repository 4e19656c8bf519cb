package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/marginkit/margin-engine/internal/model"
)

type accountKey struct {
	managerID string
	poolID    string
}

// MemoryStore implements Store with in-memory maps. Used for testing
// and development. Not suitable for production (no persistence).
type MemoryStore struct {
	mu           sync.RWMutex
	pools        map[string]*model.PoolParams
	snapshots    map[accountKey]*model.MarginSnapshot
	fills        map[accountKey][]model.Fill
	fillIDs      map[accountKey]map[string]struct{}
	marks        map[string]decimal.Decimal
	auxPrices    map[string]decimal.Decimal
	priceVersion int64
}

// NewMemoryStore creates a new in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		pools:     make(map[string]*model.PoolParams),
		snapshots: make(map[accountKey]*model.MarginSnapshot),
		fills:     make(map[accountKey][]model.Fill),
		fillIDs:   make(map[accountKey]map[string]struct{}),
		marks:     make(map[string]decimal.Decimal),
		auxPrices: make(map[string]decimal.Decimal),
	}
}

func (s *MemoryStore) CreatePool(_ context.Context, p *model.PoolParams) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.pools[p.PoolID]; ok {
		return fmt.Errorf("pool %s already exists", p.PoolID)
	}
	// Store a copy to avoid external mutation.
	cp := *p
	s.pools[p.PoolID] = &cp
	return nil
}

func (s *MemoryStore) GetPool(_ context.Context, poolID string) (*model.PoolParams, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.pools[poolID]
	if !ok {
		return nil, fmt.Errorf("pool %s: %w", poolID, ErrNotFound)
	}
	cp := *p
	return &cp, nil
}

func (s *MemoryStore) ListPools(_ context.Context) ([]model.PoolParams, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	pools := make([]model.PoolParams, 0, len(s.pools))
	for _, p := range s.pools {
		pools = append(pools, *p)
	}
	sort.Slice(pools, func(i, j int) bool { return pools[i].PoolID < pools[j].PoolID })
	return pools, nil
}

func (s *MemoryStore) PutSnapshot(_ context.Context, snap *model.MarginSnapshot) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := accountKey{snap.ManagerID, snap.PoolID}
	var version int64 = 1
	if prev, ok := s.snapshots[key]; ok {
		version = prev.Version + 1
	}
	cp := *snap
	cp.Version = version
	s.snapshots[key] = &cp
	return version, nil
}

func (s *MemoryStore) GetSnapshot(_ context.Context, managerID, poolID string) (*model.MarginSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap, ok := s.snapshots[accountKey{managerID, poolID}]
	if !ok {
		return nil, fmt.Errorf("snapshot %s/%s: %w", managerID, poolID, ErrNotFound)
	}
	cp := *snap
	return &cp, nil
}

func (s *MemoryStore) AppendFills(_ context.Context, managerID, poolID string, fills []model.Fill) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := accountKey{managerID, poolID}
	seen, ok := s.fillIDs[key]
	if !ok {
		seen = make(map[string]struct{})
		s.fillIDs[key] = seen
	}
	for _, f := range fills {
		if _, dup := seen[f.ID]; dup {
			continue
		}
		seen[f.ID] = struct{}{}
		s.fills[key] = append(s.fills[key], f)
	}
	sort.SliceStable(s.fills[key], func(i, j int) bool {
		return s.fills[key][i].Timestamp.Before(s.fills[key][j].Timestamp)
	})
	return int64(len(s.fills[key])), nil
}

func (s *MemoryStore) GetFills(_ context.Context, managerID, poolID string) ([]model.Fill, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored := s.fills[accountKey{managerID, poolID}]
	out := make([]model.Fill, len(stored))
	copy(out, stored)
	return out, int64(len(out)), nil
}

func (s *MemoryStore) SetMarkPrice(_ context.Context, poolID string, price decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.marks[poolID] = price
	s.priceVersion++
	return nil
}

func (s *MemoryStore) GetMarkPrice(_ context.Context, poolID string) (decimal.NullDecimal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.marks[poolID]
	return decimal.NullDecimal{Decimal: p, Valid: ok}, nil
}

func (s *MemoryStore) SetAuxPrice(_ context.Context, symbol string, price decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.auxPrices[symbol] = price
	s.priceVersion++
	return nil
}

func (s *MemoryStore) GetAuxPrice(_ context.Context, symbol string) (decimal.NullDecimal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.auxPrices[symbol]
	return decimal.NullDecimal{Decimal: p, Valid: ok}, nil
}

func (s *MemoryStore) PriceVersion(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.priceVersion, nil
}
