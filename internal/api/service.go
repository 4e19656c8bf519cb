// Package api provides the HTTP handlers that let collaborators push
// snapshots, fills and prices, and let traders query positions and plan
// orders, closes and repayments.
//
// All monetary values use shopspring/decimal; float64 never carries money.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/marginkit/margin-engine/internal/closeout"
	"github.com/marginkit/margin-engine/internal/engine"
	"github.com/marginkit/margin-engine/internal/ledger"
	"github.com/marginkit/margin-engine/internal/metrics"
	"github.com/marginkit/margin-engine/internal/model"
	"github.com/marginkit/margin-engine/internal/pool"
	"github.com/marginkit/margin-engine/internal/sizing"
	"github.com/marginkit/margin-engine/internal/store"
)

// Service serves the margin engine over HTTP. It holds no account state of
// its own: every answer is recomputed (or served from the memo) from what
// the store holds at request time.
type Service struct {
	store        store.Store
	memo         *engine.Memo
	defaults     pool.Defaults
	rewardSymbol string
	wsHub        *WSHub // optional WebSocket hub for position pushes
}

// NewService creates a new margin service.
// Pass nil for hub if WebSocket broadcasting is not needed.
func NewService(st store.Store, memo *engine.Memo, defaults pool.Defaults, rewardSymbol string, hub *WSHub) *Service {
	if memo == nil {
		memo = engine.NewMemo(1024)
	}
	return &Service{
		store:        st,
		memo:         memo,
		defaults:     defaults,
		rewardSymbol: strings.ToUpper(rewardSymbol),
		wsHub:        hub,
	}
}

// Routes mounts every endpoint on r. The caller picks the prefix.
func (s *Service) Routes(r chi.Router) {
	// Pool registry and collaborator price pushes.
	r.Get("/pools", s.ListPools)
	r.Post("/pools", s.CreatePool)
	r.Get("/pools/{poolID}", s.GetPool)
	r.Post("/pools/{poolID}/mark", s.SetMarkPrice)
	r.Post("/prices/{symbol}", s.SetAuxPrice)

	r.Route("/managers/{managerID}/pools/{poolID}", func(r chi.Router) {
		// Collaborator ingest.
		r.Put("/snapshot", s.PutSnapshot)
		r.Post("/fills", s.AppendFills)

		// Derived views.
		r.Get("/position", s.GetPosition)
		r.Get("/valuation", s.GetValuation)
		r.Get("/max-margin", s.GetMaxMargin)

		// Planning.
		r.Post("/order-plan", s.PlanOrder)
		r.Post("/borrow-plan", s.PlanBorrow)
		r.Post("/close-plan", s.PlanClose)
		r.Get("/repay-plan", s.PlanRepay)
	})
}

// --- Request/Response types ---

// PriceRequest is the JSON body for mark and auxiliary price pushes.
type PriceRequest struct {
	Price decimal.Decimal `json:"price"`
}

// BorrowRequest is the JSON body for POST .../borrow-plan.
type BorrowRequest struct {
	Side     model.OrderSide `json:"side"`
	Margin   decimal.Decimal `json:"margin"`
	Leverage int             `json:"leverage"`
}

// SnapshotRequest is the JSON body for PUT .../snapshot. Asset decimals
// may be omitted, in which case the pool's are used.
type SnapshotRequest struct {
	model.MarginSnapshot
	BaseDecimals  *int32 `json:"base_decimals"`
	QuoteDecimals *int32 `json:"quote_decimals"`
}

// IngestResponse reports the version an ingest produced.
type IngestResponse struct {
	ManagerID string `json:"manager_id"`
	PoolID    string `json:"pool_id"`
	Version   int64  `json:"version"`
	Accepted  int    `json:"accepted,omitempty"`
}

// MaxMarginResponse is the body of GET .../max-margin.
type MaxMarginResponse struct {
	MaxMargin decimal.Decimal     `json:"max_margin"`
	EquityUsd decimal.Decimal     `json:"equity_usd"`
	MarkPrice decimal.NullDecimal `json:"mark_price"`
}

// PositionResponse is the body of GET .../position.
type PositionResponse struct {
	ManagerID    string               `json:"manager_id"`
	PoolID       string               `json:"pool_id"`
	Position     model.Position       `json:"position"`
	Realizations []ledger.Realization `json:"realizations"`
}

// nothingToDo is the body returned when a close or repay has no work.
var nothingToDo = map[string]string{"status": "nothing-to-do"}

// --- Pool registry ---

// ListPools handles GET /api/v1/pools
func (s *Service) ListPools(w http.ResponseWriter, r *http.Request) {
	pools, err := s.store.ListPools(r.Context())
	if err != nil {
		writeError(w, "failed to list pools", http.StatusInternalServerError)
		return
	}
	if pools == nil {
		pools = []model.PoolParams{}
	}
	writeJSON(w, http.StatusOK, pools)
}

// CreatePool handles POST /api/v1/pools
func (s *Service) CreatePool(w http.ResponseWriter, r *http.Request) {
	var req model.PoolParams
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	p, err := pool.Normalize(req, s.defaults)
	if err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}
	p.CreatedAt = time.Now().UTC()

	if err := s.store.CreatePool(r.Context(), &p); err != nil {
		writeError(w, err.Error(), http.StatusConflict)
		return
	}
	metrics.Pools.Inc()

	slog.Info("pool created",
		"pool", p.PoolID,
		"max_leverage", p.MaxLeverage,
		"min_order_quantity", p.MinOrderQuantity.String(),
	)
	writeJSON(w, http.StatusCreated, p)
}

// GetPool handles GET /api/v1/pools/{poolID}
func (s *Service) GetPool(w http.ResponseWriter, r *http.Request) {
	p, err := s.pool(r.Context(), chi.URLParam(r, "poolID"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// SetMarkPrice handles POST /api/v1/pools/{poolID}/mark
func (s *Service) SetMarkPrice(w http.ResponseWriter, r *http.Request) {
	price, ok := decodePrice(w, r)
	if !ok {
		return
	}
	ctx := r.Context()
	p, err := s.pool(ctx, chi.URLParam(r, "poolID"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if err := s.store.SetMarkPrice(ctx, p.PoolID, price); err != nil {
		writeError(w, "failed to store mark price", http.StatusInternalServerError)
		return
	}
	metrics.IngestTotal.WithLabelValues("mark").Inc()
	slog.Debug("mark price updated", "pool", p.PoolID, "price", price.String())
	writeJSON(w, http.StatusOK, map[string]string{"pool_id": p.PoolID, "price": price.String()})
}

// SetAuxPrice handles POST /api/v1/prices/{symbol}
func (s *Service) SetAuxPrice(w http.ResponseWriter, r *http.Request) {
	price, ok := decodePrice(w, r)
	if !ok {
		return
	}
	symbol := strings.ToUpper(strings.TrimSpace(chi.URLParam(r, "symbol")))
	if symbol == "" {
		writeError(w, "symbol is required", http.StatusBadRequest)
		return
	}
	if err := s.store.SetAuxPrice(r.Context(), symbol, price); err != nil {
		writeError(w, "failed to store price", http.StatusInternalServerError)
		return
	}
	metrics.IngestTotal.WithLabelValues("price").Inc()
	slog.Debug("aux price updated", "symbol", symbol, "price", price.String())
	writeJSON(w, http.StatusOK, map[string]string{"symbol": symbol, "price": price.String()})
}

// --- Collaborator ingest ---

// PutSnapshot handles PUT /api/v1/managers/{managerID}/pools/{poolID}/snapshot
func (s *Service) PutSnapshot(w http.ResponseWriter, r *http.Request) {
	var req SnapshotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	managerID := chi.URLParam(r, "managerID")
	p, err := s.pool(ctx, chi.URLParam(r, "poolID"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	snap := req.MarginSnapshot
	snap.ManagerID = managerID
	snap.PoolID = p.PoolID
	if err := poolDecimals(&snap, req, p); err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := validateSnapshot(&snap); err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if snap.TakenAt.IsZero() {
		snap.TakenAt = time.Now().UTC()
	}

	version, err := s.store.PutSnapshot(ctx, &snap)
	if err != nil {
		writeError(w, "failed to store snapshot", http.StatusInternalServerError)
		return
	}
	metrics.IngestTotal.WithLabelValues("snapshot").Inc()

	slog.Info("snapshot ingested",
		"manager", managerID,
		"pool", p.PoolID,
		"version", version,
		"base_asset", snap.BaseAsset.String(),
		"base_debt", snap.BaseDebt.String(),
		"quote_asset", snap.QuoteAsset.String(),
		"quote_debt", snap.QuoteDebt.String(),
	)

	s.publish(ctx, managerID, p)
	writeJSON(w, http.StatusOK, IngestResponse{ManagerID: managerID, PoolID: p.PoolID, Version: version})
}

// AppendFills handles POST /api/v1/managers/{managerID}/pools/{poolID}/fills
// The body is a JSON array of fills. Fills without an ID get one; fills
// whose ID is already stored are ignored.
func (s *Service) AppendFills(w http.ResponseWriter, r *http.Request) {
	var fills []model.Fill
	if err := json.NewDecoder(r.Body).Decode(&fills); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if len(fills) == 0 {
		writeError(w, "at least one fill is required", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	managerID := chi.URLParam(r, "managerID")
	p, err := s.pool(ctx, chi.URLParam(r, "poolID"))
	if err != nil {
		writeStoreError(w, err)
		return
	}

	stampFills(fills, time.Now().UTC())
	// Replaying the batch on its own rejects malformed fills before they
	// reach the history.
	if _, err := ledger.Reduce(fills); err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	version, err := s.store.AppendFills(ctx, managerID, p.PoolID, fills)
	if err != nil {
		writeError(w, "failed to store fills", http.StatusInternalServerError)
		return
	}
	metrics.IngestTotal.WithLabelValues("fills").Add(float64(len(fills)))

	slog.Info("fills appended",
		"manager", managerID,
		"pool", p.PoolID,
		"received", len(fills),
		"version", version,
	)

	s.publish(ctx, managerID, p)
	writeJSON(w, http.StatusOK, IngestResponse{
		ManagerID: managerID,
		PoolID:    p.PoolID,
		Version:   version,
		Accepted:  len(fills),
	})
}

// --- Derived views ---

// GetPosition handles GET .../position
func (s *Service) GetPosition(w http.ResponseWriter, r *http.Request) {
	st, ok := s.loadState(w, r)
	if !ok {
		return
	}
	realizations := st.view.Ledger.Realizations
	if realizations == nil {
		realizations = []ledger.Realization{}
	}
	writeJSON(w, http.StatusOK, PositionResponse{
		ManagerID:    st.managerID,
		PoolID:       st.pool.PoolID,
		Position:     st.view.Position,
		Realizations: realizations,
	})
}

// GetValuation handles GET .../valuation
func (s *Service) GetValuation(w http.ResponseWriter, r *http.Request) {
	st, ok := s.loadState(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, st.view.Valuation)
}

// GetMaxMargin handles GET .../max-margin
func (s *Service) GetMaxMargin(w http.ResponseWriter, r *http.Request) {
	st, ok := s.loadState(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, MaxMarginResponse{
		MaxMargin: engine.MaxMargin(st.view.Valuation, st.in.Mark),
		EquityUsd: st.view.Valuation.EquityUsd,
		MarkPrice: st.in.Mark,
	})
}

// --- Planning ---

// PlanOrder handles POST .../order-plan
func (s *Service) PlanOrder(w http.ResponseWriter, r *http.Request) {
	var req model.OrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	st, ok := s.loadState(w, r)
	if !ok {
		return
	}

	plan, err := engine.SizeOrder(req, st.pool, st.view.Valuation, st.in.Mark)
	if err != nil {
		s.rejectPlan(w, "order", err)
		return
	}
	metrics.PlansTotal.WithLabelValues("order", "ok").Inc()

	slog.Info("order planned",
		"manager", st.managerID,
		"pool", st.pool.PoolID,
		"side", plan.Side,
		"type", plan.Type,
		"quantity", plan.Quantity.String(),
		"leverage", plan.Leverage,
		"notional", plan.Notional.String(),
	)
	writeJSON(w, http.StatusOK, plan)
}

// PlanBorrow handles POST .../borrow-plan
func (s *Service) PlanBorrow(w http.ResponseWriter, r *http.Request) {
	var req BorrowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	p, err := s.pool(ctx, chi.URLParam(r, "poolID"))
	if err != nil {
		writeStoreError(w, err)
		return
	}

	switch {
	case !req.Side.Valid():
		err = sizing.ErrInvalidSide
	case !req.Margin.IsPositive():
		err = sizing.ErrInvalidAmount
	default:
		err = sizing.CheckLeverage(req.Leverage, *p)
	}
	if err != nil {
		s.rejectPlan(w, "borrow", err)
		return
	}

	mark, err := s.store.GetMarkPrice(ctx, p.PoolID)
	if err != nil {
		writeError(w, "failed to load mark price", http.StatusInternalServerError)
		return
	}
	// A leveraged buy borrows quote, which cannot be sized without a mark.
	if req.Side == model.SideBuy && req.Leverage > 1 && !(mark.Valid && mark.Decimal.IsPositive()) {
		s.rejectPlan(w, "borrow", sizing.ErrPriceUnavailable)
		return
	}
	metrics.PlansTotal.WithLabelValues("borrow", "ok").Inc()
	writeJSON(w, http.StatusOK, engine.ComputeBorrow(req.Side, req.Margin, req.Leverage, mark))
}

// PlanClose handles POST .../close-plan
func (s *Service) PlanClose(w http.ResponseWriter, r *http.Request) {
	st, ok := s.loadState(w, r)
	if !ok {
		return
	}

	plan, err := engine.SolveClose(st.view.Position, st.in.Snapshot, st.view.Latest, st.in.Mark, st.pool)
	switch {
	case errors.Is(err, closeout.ErrNothingToDo):
		metrics.PlansTotal.WithLabelValues("close", "nothing_to_do").Inc()
		writeJSON(w, http.StatusOK, nothingToDo)
		return
	case errors.Is(err, closeout.ErrNoSnapshot):
		writeError(w, "no margin snapshot for manager", http.StatusNotFound)
		return
	case err != nil:
		writeError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	metrics.PlansTotal.WithLabelValues("close", "ok").Inc()

	slog.Info("close planned",
		"manager", st.managerID,
		"pool", st.pool.PoolID,
		"side", plan.Side,
		"quantity", plan.CloseQuantity.String(),
		"rule", plan.Rule,
		"needs_repay", plan.NeedsRepay,
	)
	writeJSON(w, http.StatusOK, plan)
}

// PlanRepay handles GET .../repay-plan
// It always reads the latest stored snapshot, never a memoized view, so
// it reflects the state after the close order settled.
func (s *Service) PlanRepay(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	managerID := chi.URLParam(r, "managerID")
	p, err := s.pool(ctx, chi.URLParam(r, "poolID"))
	if err != nil {
		writeStoreError(w, err)
		return
	}

	fresh, err := s.store.GetSnapshot(ctx, managerID, p.PoolID)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	plan, err := engine.PlanRepay(fresh)
	if errors.Is(err, closeout.ErrNothingToDo) {
		metrics.PlansTotal.WithLabelValues("repay", "nothing_to_do").Inc()
		writeJSON(w, http.StatusOK, nothingToDo)
		return
	}
	if err != nil {
		writeError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	metrics.PlansTotal.WithLabelValues("repay", "ok").Inc()
	writeJSON(w, http.StatusOK, plan)
}

// --- State loading ---

// state is everything one request needs about a manager in a pool.
type state struct {
	managerID string
	pool      model.PoolParams
	in        engine.Inputs
	view      engine.View
}

// loadState reads the pool, snapshot, fills and prices and evaluates them.
// On failure it writes the response and returns false.
func (s *Service) loadState(w http.ResponseWriter, r *http.Request) (*state, bool) {
	ctx := r.Context()
	managerID := chi.URLParam(r, "managerID")
	p, err := s.pool(ctx, chi.URLParam(r, "poolID"))
	if err != nil {
		writeStoreError(w, err)
		return nil, false
	}
	st, err := s.evaluate(ctx, managerID, p)
	if err != nil {
		slog.Error("evaluation failed", "manager", managerID, "pool", p.PoolID, "err", err)
		writeError(w, "failed to evaluate position", http.StatusInternalServerError)
		return nil, false
	}
	return st, true
}

func (s *Service) evaluate(ctx context.Context, managerID string, p *model.PoolParams) (*state, error) {
	start := time.Now()

	// Versions are read before the data they cover. A concurrent write can
	// then only pair an old key with newer data, never the reverse.
	priceVersion, err := s.store.PriceVersion(ctx)
	if err != nil {
		return nil, err
	}

	snap, err := s.store.GetSnapshot(ctx, managerID, p.PoolID)
	var snapVersion int64
	switch {
	case errors.Is(err, store.ErrNotFound):
		snap = nil
	case err != nil:
		return nil, err
	default:
		snapVersion = snap.Version
	}

	fills, fillsVersion, err := s.store.GetFills(ctx, managerID, p.PoolID)
	if err != nil {
		return nil, err
	}
	mark, err := s.store.GetMarkPrice(ctx, p.PoolID)
	if err != nil {
		return nil, err
	}
	aux, err := s.store.GetAuxPrice(ctx, s.rewardSymbol)
	if err != nil {
		return nil, err
	}

	in := engine.Inputs{
		Snapshot: snap,
		Fills:    fills,
		Mark:     mark,
		AuxPrice: aux,
	}
	key := engine.Key{
		ManagerID:       managerID,
		PoolID:          p.PoolID,
		SnapshotVersion: snapVersion,
		FillsVersion:    fillsVersion,
		PriceVersion:    priceVersion,
	}

	view, hit, err := s.memo.Evaluate(key, in)
	if err != nil {
		return nil, err
	}
	if hit {
		metrics.MemoLookups.WithLabelValues("hit").Inc()
	} else {
		metrics.MemoLookups.WithLabelValues("miss").Inc()
		metrics.RecomputeLatency.Observe(time.Since(start).Seconds())
	}

	return &state{managerID: managerID, pool: *p, in: in, view: view}, nil
}

// publish pushes the recomputed position to WebSocket clients.
func (s *Service) publish(ctx context.Context, managerID string, p *model.PoolParams) {
	if s.wsHub == nil {
		return
	}
	st, err := s.evaluate(ctx, managerID, p)
	if err != nil {
		slog.Warn("position push skipped", "manager", managerID, "pool", p.PoolID, "err", err)
		return
	}
	pos := st.view.Position
	val := st.view.Valuation
	msg := WSMessage{
		Type:          "position_updated",
		ID:            uuid.New().String(),
		ManagerID:     managerID,
		PoolID:        p.PoolID,
		Side:          string(pos.Side),
		Size:          pos.Size.String(),
		HasKnownEntry: pos.HasKnownEntry,
		RealizedPnl:   pos.RealizedPnl.String(),
		EquityUsd:     val.EquityUsd.String(),
	}
	if pos.HasKnownEntry {
		msg.EntryPrice = pos.EntryPrice.String()
		msg.UnrealizedPnl = pos.UnrealizedPnl.String()
	}
	if val.RiskRatioKnown {
		msg.RiskRatio = val.RiskRatio.String()
	}
	s.wsHub.Broadcast(msg)
}

func (s *Service) pool(ctx context.Context, poolID string) (*model.PoolParams, error) {
	key, err := pool.ParseKey(poolID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", model.ErrValidation, err)
	}
	return s.store.GetPool(ctx, key.ID)
}

// rejectPlan answers a failed plan request.
func (s *Service) rejectPlan(w http.ResponseWriter, kind string, err error) {
	if errors.Is(err, model.ErrValidation) {
		metrics.ValidationRejections.WithLabelValues(kind).Inc()
		metrics.PlansTotal.WithLabelValues(kind, "rejected").Inc()
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeError(w, err.Error(), http.StatusInternalServerError)
}

// --- Helpers ---

// stampFills assigns IDs and timestamps to fills that lack them. Missing
// timestamps step by one nanosecond so the batch order survives any store
// that sorts by time.
func stampFills(fills []model.Fill, now time.Time) {
	for i := range fills {
		if fills[i].ID == "" {
			fills[i].ID = uuid.New().String()
		}
		if fills[i].Timestamp.IsZero() {
			fills[i].Timestamp = now.Add(time.Duration(i))
		}
	}
}

// poolDecimals fills the asset decimals from the pool when the request
// omits them and rejects a snapshot whose decimals disagree with the pool.
func poolDecimals(snap *model.MarginSnapshot, req SnapshotRequest, p *model.PoolParams) error {
	snap.BaseDecimals = p.BaseDecimals
	snap.QuoteDecimals = p.QuoteDecimals
	if req.BaseDecimals != nil && *req.BaseDecimals != p.BaseDecimals {
		return fmt.Errorf("base_decimals %d does not match pool %s (%d)", *req.BaseDecimals, p.PoolID, p.BaseDecimals)
	}
	if req.QuoteDecimals != nil && *req.QuoteDecimals != p.QuoteDecimals {
		return fmt.Errorf("quote_decimals %d does not match pool %s (%d)", *req.QuoteDecimals, p.PoolID, p.QuoteDecimals)
	}
	return nil
}

// validateSnapshot rejects snapshots the engine cannot interpret.
func validateSnapshot(snap *model.MarginSnapshot) error {
	for name, v := range map[string]decimal.Decimal{
		"base_asset":   snap.BaseAsset,
		"quote_asset":  snap.QuoteAsset,
		"base_debt":    snap.BaseDebt,
		"quote_debt":   snap.QuoteDebt,
		"reward_asset": snap.RewardAsset,
	} {
		if v.IsNegative() {
			return fmt.Errorf("%s must not be negative", name)
		}
	}
	for name, dec := range map[string]int32{
		"base_decimals":   snap.BaseDecimals,
		"quote_decimals":  snap.QuoteDecimals,
		"reward_decimals": snap.RewardDecimals,
	} {
		if dec < 0 || dec > pool.MaxAssetDecimals {
			return fmt.Errorf("%s out of range: %d", name, dec)
		}
	}
	return nil
}

func decodePrice(w http.ResponseWriter, r *http.Request) (decimal.Decimal, bool) {
	var req PriceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return decimal.Zero, false
	}
	if !req.Price.IsPositive() {
		writeError(w, "price must be positive", http.StatusBadRequest)
		return decimal.Zero, false
	}
	return req.Price, true
}

// writeStoreError maps lookup failures to a status code.
func writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, model.ErrValidation):
		writeError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, store.ErrNotFound):
		writeError(w, err.Error(), http.StatusNotFound)
	default:
		writeError(w, "storage error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, message string, status int) {
	writeJSON(w, status, map[string]string{"error": message})
}
