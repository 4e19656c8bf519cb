package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/marginkit/margin-engine/internal/model"
)

// CachedStore wraps a primary Store (PostgreSQL) with a Redis read-through
// cache. Writes go to the primary store and invalidate the cache; reads
// check Redis first then fall back to the primary. Prices always come
// from the primary so they agree with PriceVersion.
type CachedStore struct {
	primary Store
	rdb     *redis.Client
	ttl     time.Duration
}

// NewCachedStore creates a cached wrapper around a primary store.
func NewCachedStore(primary Store, rdb *redis.Client, ttl time.Duration) *CachedStore {
	return &CachedStore{
		primary: primary,
		rdb:     rdb,
		ttl:     ttl,
	}
}

// --- Write-through (write to primary, invalidate cache) ---

func (s *CachedStore) CreatePool(ctx context.Context, p *model.PoolParams) error {
	if err := s.primary.CreatePool(ctx, p); err != nil {
		return err
	}
	s.cacheJSON(ctx, poolKey(p.PoolID), p)
	return nil
}

func (s *CachedStore) PutSnapshot(ctx context.Context, m *model.MarginSnapshot) (int64, error) {
	version, err := s.primary.PutSnapshot(ctx, m)
	if err != nil {
		return 0, err
	}
	// Invalidate; the next read re-populates with the assigned version.
	s.rdb.Del(ctx, snapshotKey(m.ManagerID, m.PoolID))
	return version, nil
}

func (s *CachedStore) AppendFills(ctx context.Context, managerID, poolID string, fills []model.Fill) (int64, error) {
	version, err := s.primary.AppendFills(ctx, managerID, poolID, fills)
	if err != nil {
		return 0, err
	}
	s.rdb.Del(ctx, fillsKey(managerID, poolID))
	return version, nil
}

// --- Read-through (check cache first) ---

func (s *CachedStore) GetPool(ctx context.Context, poolID string) (*model.PoolParams, error) {
	var p model.PoolParams
	if s.readJSON(ctx, poolKey(poolID), &p) {
		return &p, nil
	}

	pp, err := s.primary.GetPool(ctx, poolID)
	if err != nil {
		return nil, err
	}
	s.cacheJSON(ctx, poolKey(poolID), pp)
	return pp, nil
}

func (s *CachedStore) GetSnapshot(ctx context.Context, managerID, poolID string) (*model.MarginSnapshot, error) {
	var m model.MarginSnapshot
	if s.readJSON(ctx, snapshotKey(managerID, poolID), &m) {
		return &m, nil
	}

	snap, err := s.primary.GetSnapshot(ctx, managerID, poolID)
	if err != nil {
		return nil, err
	}
	s.cacheJSON(ctx, snapshotKey(managerID, poolID), snap)
	return snap, nil
}

// cachedFills is the Redis payload for a fill list.
type cachedFills struct {
	Fills   []model.Fill `json:"fills"`
	Version int64        `json:"version"`
}

func (s *CachedStore) GetFills(ctx context.Context, managerID, poolID string) ([]model.Fill, int64, error) {
	var cf cachedFills
	if s.readJSON(ctx, fillsKey(managerID, poolID), &cf) {
		return cf.Fills, cf.Version, nil
	}

	fills, version, err := s.primary.GetFills(ctx, managerID, poolID)
	if err != nil {
		return nil, 0, err
	}
	s.cacheJSON(ctx, fillsKey(managerID, poolID), cachedFills{Fills: fills, Version: version})
	return fills, version, nil
}

// --- Passthrough (not cached) ---

func (s *CachedStore) ListPools(ctx context.Context) ([]model.PoolParams, error) {
	return s.primary.ListPools(ctx)
}

func (s *CachedStore) SetMarkPrice(ctx context.Context, poolID string, price decimal.Decimal) error {
	return s.primary.SetMarkPrice(ctx, poolID, price)
}

func (s *CachedStore) SetAuxPrice(ctx context.Context, symbol string, price decimal.Decimal) error {
	return s.primary.SetAuxPrice(ctx, symbol, price)
}

func (s *CachedStore) GetMarkPrice(ctx context.Context, poolID string) (decimal.NullDecimal, error) {
	return s.primary.GetMarkPrice(ctx, poolID)
}

func (s *CachedStore) GetAuxPrice(ctx context.Context, symbol string) (decimal.NullDecimal, error) {
	return s.primary.GetAuxPrice(ctx, symbol)
}

func (s *CachedStore) PriceVersion(ctx context.Context) (int64, error) {
	return s.primary.PriceVersion(ctx)
}

// --- Cache helpers ---

func (s *CachedStore) readJSON(ctx context.Context, key string, dst interface{}) bool {
	data, err := s.rdb.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	return json.Unmarshal(data, dst) == nil
}

func (s *CachedStore) cacheJSON(ctx context.Context, key string, v interface{}) {
	if data, err := json.Marshal(v); err == nil {
		s.rdb.Set(ctx, key, data, s.ttl)
	}
}

func poolKey(id string) string { return fmt.Sprintf("pool:%s", id) }
func snapshotKey(mgr, pool string) string { return fmt.Sprintf("snapshot:%s:%s", mgr, pool) }
func fillsKey(mgr, pool string) string { return fmt.Sprintf("fills:%s:%s", mgr, pool) }
