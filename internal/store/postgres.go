package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/marginkit/margin-engine/internal/model"
)

// PostgresStore implements Store using PostgreSQL as the source of truth.
// All monetary values are stored as NUMERIC for exact decimal precision
// and round-trip through TEXT.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgreSQL-backed store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Schema is the DDL the store expects. Applied by EnsureSchema.
const Schema = `
CREATE TABLE IF NOT EXISTS pools (
	pool_id            TEXT PRIMARY KEY,
	base_symbol        TEXT NOT NULL,
	quote_symbol       TEXT NOT NULL,
	base_decimals      INT NOT NULL,
	quote_decimals     INT NOT NULL,
	max_leverage       INT NOT NULL,
	min_order_quantity NUMERIC NOT NULL,
	created_at         TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS margin_snapshots (
	manager_id          TEXT NOT NULL,
	pool_id             TEXT NOT NULL,
	version             BIGINT NOT NULL,
	taken_at            TIMESTAMPTZ NOT NULL,
	base_asset          NUMERIC NOT NULL,
	quote_asset         NUMERIC NOT NULL,
	base_debt           NUMERIC NOT NULL,
	quote_debt          NUMERIC NOT NULL,
	reward_asset        NUMERIC NOT NULL,
	base_decimals       INT NOT NULL,
	quote_decimals      INT NOT NULL,
	reward_decimals     INT NOT NULL,
	base_pyth_price     NUMERIC,
	base_pyth_decimals  INT NOT NULL,
	quote_pyth_price    NUMERIC,
	quote_pyth_decimals INT NOT NULL,
	risk_ratio          NUMERIC,
	PRIMARY KEY (manager_id, pool_id)
);

CREATE TABLE IF NOT EXISTS fills (
	id           TEXT NOT NULL,
	manager_id   TEXT NOT NULL,
	pool_id      TEXT NOT NULL,
	ts           TIMESTAMPTZ NOT NULL,
	side         TEXT NOT NULL,
	base_volume  NUMERIC NOT NULL,
	quote_volume NUMERIC NOT NULL,
	price        NUMERIC NOT NULL,
	seq          BIGSERIAL,
	PRIMARY KEY (manager_id, pool_id, id)
);
ALTER TABLE fills ADD COLUMN IF NOT EXISTS seq BIGSERIAL;
CREATE INDEX IF NOT EXISTS fills_account_ts_seq ON fills (manager_id, pool_id, ts, seq);

CREATE SEQUENCE IF NOT EXISTS price_version_seq;

CREATE TABLE IF NOT EXISTS prices (
	kind    TEXT NOT NULL,
	key     TEXT NOT NULL,
	price   NUMERIC NOT NULL,
	version BIGINT NOT NULL,
	PRIMARY KEY (kind, key)
);
`

const (
	priceKindMark = "mark"
	priceKindAux  = "aux"
)

// EnsureSchema creates missing tables.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, Schema)
	return err
}

func (s *PostgresStore) CreatePool(ctx context.Context, p *model.PoolParams) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO pools (pool_id, base_symbol, quote_symbol, base_decimals, quote_decimals,
		                    max_leverage, min_order_quantity, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7::NUMERIC, $8)`,
		p.PoolID, p.BaseSymbol, p.QuoteSymbol, p.BaseDecimals, p.QuoteDecimals,
		p.MaxLeverage, p.MinOrderQuantity.String(), p.CreatedAt,
	)
	return err
}

func (s *PostgresStore) GetPool(ctx context.Context, poolID string) (*model.PoolParams, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT pool_id, base_symbol, quote_symbol, base_decimals, quote_decimals,
		        max_leverage, min_order_quantity::TEXT, created_at
		 FROM pools WHERE pool_id = $1`, poolID)

	p, err := scanPool(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("pool %s: %w", poolID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get pool %s: %w", poolID, err)
	}
	return p, nil
}

func (s *PostgresStore) ListPools(ctx context.Context) ([]model.PoolParams, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT pool_id, base_symbol, quote_symbol, base_decimals, quote_decimals,
		        max_leverage, min_order_quantity::TEXT, created_at
		 FROM pools ORDER BY pool_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pools []model.PoolParams
	for rows.Next() {
		p, err := scanPool(rows)
		if err != nil {
			return nil, err
		}
		pools = append(pools, *p)
	}
	return pools, rows.Err()
}

func (s *PostgresStore) PutSnapshot(ctx context.Context, m *model.MarginSnapshot) (int64, error) {
	var version int64
	err := s.pool.QueryRow(ctx,
		`INSERT INTO margin_snapshots (
			manager_id, pool_id, version, taken_at,
			base_asset, quote_asset, base_debt, quote_debt, reward_asset,
			base_decimals, quote_decimals, reward_decimals,
			base_pyth_price, base_pyth_decimals, quote_pyth_price, quote_pyth_decimals,
			risk_ratio)
		 VALUES ($1, $2, 1, $3,
			$4::NUMERIC, $5::NUMERIC, $6::NUMERIC, $7::NUMERIC, $8::NUMERIC,
			$9, $10, $11,
			$12::NUMERIC, $13, $14::NUMERIC, $15,
			$16::NUMERIC)
		 ON CONFLICT (manager_id, pool_id) DO UPDATE SET
			version = margin_snapshots.version + 1,
			taken_at = EXCLUDED.taken_at,
			base_asset = EXCLUDED.base_asset,
			quote_asset = EXCLUDED.quote_asset,
			base_debt = EXCLUDED.base_debt,
			quote_debt = EXCLUDED.quote_debt,
			reward_asset = EXCLUDED.reward_asset,
			base_decimals = EXCLUDED.base_decimals,
			quote_decimals = EXCLUDED.quote_decimals,
			reward_decimals = EXCLUDED.reward_decimals,
			base_pyth_price = EXCLUDED.base_pyth_price,
			base_pyth_decimals = EXCLUDED.base_pyth_decimals,
			quote_pyth_price = EXCLUDED.quote_pyth_price,
			quote_pyth_decimals = EXCLUDED.quote_pyth_decimals,
			risk_ratio = EXCLUDED.risk_ratio
		 RETURNING version`,
		m.ManagerID, m.PoolID, m.TakenAt,
		m.BaseAsset.String(), m.QuoteAsset.String(), m.BaseDebt.String(), m.QuoteDebt.String(), m.RewardAsset.String(),
		m.BaseDecimals, m.QuoteDecimals, m.RewardDecimals,
		nullText(m.BasePythPrice), m.BasePythDecimals, nullText(m.QuotePythPrice), m.QuotePythDecimals,
		nullText(m.RiskRatio),
	).Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("put snapshot %s/%s: %w", m.ManagerID, m.PoolID, err)
	}
	return version, nil
}

func (s *PostgresStore) GetSnapshot(ctx context.Context, managerID, poolID string) (*model.MarginSnapshot, error) {
	var m model.MarginSnapshot
	var baseAsset, quoteAsset, baseDebt, quoteDebt, reward string
	var basePx, quotePx, risk *string

	err := s.pool.QueryRow(ctx,
		`SELECT manager_id, pool_id, version, taken_at,
		        base_asset::TEXT, quote_asset::TEXT, base_debt::TEXT, quote_debt::TEXT, reward_asset::TEXT,
		        base_decimals, quote_decimals, reward_decimals,
		        base_pyth_price::TEXT, base_pyth_decimals, quote_pyth_price::TEXT, quote_pyth_decimals,
		        risk_ratio::TEXT
		 FROM margin_snapshots WHERE manager_id = $1 AND pool_id = $2`, managerID, poolID).
		Scan(&m.ManagerID, &m.PoolID, &m.Version, &m.TakenAt,
			&baseAsset, &quoteAsset, &baseDebt, &quoteDebt, &reward,
			&m.BaseDecimals, &m.QuoteDecimals, &m.RewardDecimals,
			&basePx, &m.BasePythDecimals, &quotePx, &m.QuotePythDecimals,
			&risk)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("snapshot %s/%s: %w", managerID, poolID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get snapshot %s/%s: %w", managerID, poolID, err)
	}

	m.BaseAsset, _ = decimal.NewFromString(baseAsset)
	m.QuoteAsset, _ = decimal.NewFromString(quoteAsset)
	m.BaseDebt, _ = decimal.NewFromString(baseDebt)
	m.QuoteDebt, _ = decimal.NewFromString(quoteDebt)
	m.RewardAsset, _ = decimal.NewFromString(reward)
	m.BasePythPrice = parseNull(basePx)
	m.QuotePythPrice = parseNull(quotePx)
	m.RiskRatio = parseNull(risk)

	return &m, nil
}

func (s *PostgresStore) AppendFills(ctx context.Context, managerID, poolID string, fills []model.Fill) (int64, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for _, f := range fills {
		batch.Queue(
			`INSERT INTO fills (id, manager_id, pool_id, ts, side, base_volume, quote_volume, price)
			 VALUES ($1, $2, $3, $4, $5, $6::NUMERIC, $7::NUMERIC, $8::NUMERIC)
			 ON CONFLICT (manager_id, pool_id, id) DO NOTHING`,
			f.ID, managerID, poolID, f.Timestamp, string(f.Side),
			f.BaseVolume.String(), f.QuoteVolume.String(), f.Price.String(),
		)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return 0, fmt.Errorf("append fills %s/%s: %w", managerID, poolID, err)
	}

	var version int64
	if err := tx.QueryRow(ctx,
		`SELECT COUNT(*) FROM fills WHERE manager_id = $1 AND pool_id = $2`,
		managerID, poolID).Scan(&version); err != nil {
		return 0, err
	}
	return version, tx.Commit(ctx)
}

func (s *PostgresStore) GetFills(ctx context.Context, managerID, poolID string) ([]model.Fill, int64, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, ts, side, base_volume::TEXT, quote_volume::TEXT, price::TEXT
		 FROM fills WHERE manager_id = $1 AND pool_id = $2 ORDER BY ts, seq`, managerID, poolID)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	fills, err := scanFills(rows)
	if err != nil {
		return nil, 0, err
	}
	return fills, int64(len(fills)), nil
}

func (s *PostgresStore) SetMarkPrice(ctx context.Context, poolID string, price decimal.Decimal) error {
	return s.setPrice(ctx, priceKindMark, poolID, price)
}

func (s *PostgresStore) GetMarkPrice(ctx context.Context, poolID string) (decimal.NullDecimal, error) {
	return s.getPrice(ctx, priceKindMark, poolID)
}

func (s *PostgresStore) SetAuxPrice(ctx context.Context, symbol string, price decimal.Decimal) error {
	return s.setPrice(ctx, priceKindAux, symbol, price)
}

func (s *PostgresStore) GetAuxPrice(ctx context.Context, symbol string) (decimal.NullDecimal, error) {
	return s.getPrice(ctx, priceKindAux, symbol)
}

func (s *PostgresStore) PriceVersion(ctx context.Context) (int64, error) {
	var v int64
	err := s.pool.QueryRow(ctx, `SELECT COALESCE(MAX(version), 0) FROM prices`).Scan(&v)
	return v, err
}

func (s *PostgresStore) setPrice(ctx context.Context, kind, key string, price decimal.Decimal) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO prices (kind, key, price, version)
		 VALUES ($1, $2, $3::NUMERIC, nextval('price_version_seq'))
		 ON CONFLICT (kind, key) DO UPDATE SET
			price = EXCLUDED.price,
			version = EXCLUDED.version`,
		kind, key, price.String(),
	)
	return err
}

func (s *PostgresStore) getPrice(ctx context.Context, kind, key string) (decimal.NullDecimal, error) {
	var text string
	err := s.pool.QueryRow(ctx,
		`SELECT price::TEXT FROM prices WHERE kind = $1 AND key = $2`, kind, key).Scan(&text)
	if errors.Is(err, pgx.ErrNoRows) {
		return decimal.NullDecimal{}, nil
	}
	if err != nil {
		return decimal.NullDecimal{}, fmt.Errorf("get %s price %s: %w", kind, key, err)
	}
	return parseNull(&text), nil
}

// pgxRow is satisfied by pgx.Row and pgx.Rows.
type pgxRow interface {
	Scan(dest ...interface{}) error
}

func scanPool(row pgxRow) (*model.PoolParams, error) {
	var p model.PoolParams
	var minQty string
	if err := row.Scan(&p.PoolID, &p.BaseSymbol, &p.QuoteSymbol, &p.BaseDecimals, &p.QuoteDecimals,
		&p.MaxLeverage, &minQty, &p.CreatedAt); err != nil {
		return nil, err
	}
	p.MinOrderQuantity, _ = decimal.NewFromString(minQty)
	return &p, nil
}

// pgxRows reads pgx rows into Fill slices.
type pgxRows interface {
	Next() bool
	Scan(dest ...interface{}) error
	Err() error
}

func scanFills(rows pgxRows) ([]model.Fill, error) {
	var fills []model.Fill
	for rows.Next() {
		var f model.Fill
		var side, baseS, quoteS, priceS string

		if err := rows.Scan(&f.ID, &f.Timestamp, &side, &baseS, &quoteS, &priceS); err != nil {
			return nil, err
		}
		f.Side = model.OrderSide(side)
		f.BaseVolume, _ = decimal.NewFromString(baseS)
		f.QuoteVolume, _ = decimal.NewFromString(quoteS)
		f.Price, _ = decimal.NewFromString(priceS)

		fills = append(fills, f)
	}
	return fills, rows.Err()
}

func nullText(n decimal.NullDecimal) *string {
	if !n.Valid {
		return nil
	}
	s := n.Decimal.String()
	return &s
}

func parseNull(s *string) decimal.NullDecimal {
	if s == nil {
		return decimal.NullDecimal{}
	}
	v, err := decimal.NewFromString(*s)
	if err != nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: v, Valid: true}
}
