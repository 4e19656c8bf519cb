// Package store holds the inputs external collaborators push into the
// margin engine: pool parameters, margin snapshots, fills and prices.
// Derived positions are never stored. Implementations include PostgreSQL
// (source of truth), Redis (read-through cache), and in-memory (for testing).
package store

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/marginkit/margin-engine/internal/model"
)

// ErrNotFound is wrapped by lookups that find nothing.
var ErrNotFound = errors.New("store: not found")

// Store is the persistence interface. PostgreSQL is the source of truth;
// Redis provides a read-through cache layer.
type Store interface {
	// --- Pool registry ---

	// CreatePool persists a new pool.
	CreatePool(ctx context.Context, p *model.PoolParams) error

	// GetPool retrieves a pool by ID.
	GetPool(ctx context.Context, poolID string) (*model.PoolParams, error)

	// ListPools returns all pools.
	ListPools(ctx context.Context) ([]model.PoolParams, error)

	// --- Margin snapshots (latest only) ---

	// PutSnapshot replaces the latest snapshot for the snapshot's manager
	// and pool and returns the version assigned to it.
	PutSnapshot(ctx context.Context, s *model.MarginSnapshot) (int64, error)

	// GetSnapshot returns the latest snapshot.
	GetSnapshot(ctx context.Context, managerID, poolID string) (*model.MarginSnapshot, error)

	// --- Append-only fill history ---

	// AppendFills adds fills, ignoring IDs already present, and returns
	// the new fills version.
	AppendFills(ctx context.Context, managerID, poolID string, fills []model.Fill) (int64, error)

	// GetFills returns fills in timestamp order with the fills version.
	GetFills(ctx context.Context, managerID, poolID string) ([]model.Fill, int64, error)

	// --- Prices ---

	// SetMarkPrice records the latest mark price for a pool.
	SetMarkPrice(ctx context.Context, poolID string, price decimal.Decimal) error

	// GetMarkPrice returns the mark price; absent prices are not an error.
	GetMarkPrice(ctx context.Context, poolID string) (decimal.NullDecimal, error)

	// SetAuxPrice records the USD price of an auxiliary asset.
	SetAuxPrice(ctx context.Context, symbol string, price decimal.Decimal) error

	// GetAuxPrice returns the auxiliary asset price; absent is not an error.
	GetAuxPrice(ctx context.Context, symbol string) (decimal.NullDecimal, error)

	// PriceVersion increases on every price write.
	PriceVersion(ctx context.Context) (int64, error)
}
