package forecasting

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mamadbah2/farmstock/internal/config"
	"github.com/mamadbah2/farmstock/internal/domain/models"
	"github.com/mamadbah2/farmstock/internal/forecast"
)

// ErrUnsupportedHorizon indicates a horizon outside the configured choices.
var ErrUnsupportedHorizon = fmt.Errorf("%w: unsupported forecast horizon", forecast.ErrInvalidArgument)

// ErrSuggestionNotFound indicates no current suggestion matches the inventory id.
var ErrSuggestionNotFound = errors.New("no reorder suggestion for inventory item")

// InventorySource supplies the current inventory snapshot.
type InventorySource interface {
	ListInventory(ctx context.Context) ([]models.InventoryRecord, error)
}

// OrderLog records drafted purchase orders where the farmers can see them.
type OrderLog interface {
	AppendOrder(ctx context.Context, order models.PurchaseOrderDraft) error
}

// HistoryStore persists forecast runs and order drafts.
type HistoryStore interface {
	SaveForecastRun(ctx context.Context, run models.ForecastRun) error
	RecentForecastRuns(ctx context.Context, limit int64) ([]models.ForecastRun, error)
	SaveOrderDraft(ctx context.Context, draft models.PurchaseOrderDraft) error
}

// Forecaster is the behaviour exposed to handlers, commands and the scheduler.
type Forecaster interface {
	Run(ctx context.Context, horizonDays int) (*models.ForecastRun, error)
	Preview(ctx context.Context, horizonDays int) (*models.ForecastRun, error)
	Evaluate(records []models.InventoryRecord, horizonDays int) (*models.ForecastRun, error)
	LowStock(ctx context.Context) ([]models.InventoryRecord, error)
	DraftOrder(ctx context.Context, inventoryID string, horizonDays int) (*models.PurchaseOrderDraft, error)
	History(ctx context.Context, limit int64) ([]models.ForecastRun, error)
	DefaultHorizon() int
}

// Service loads inventory, runs the forecast and keeps its history.
type Service struct {
	inventory      InventorySource
	orders         OrderLog
	history        HistoryStore
	cfg            config.ForecastConfig
	logger         *zap.Logger
	now            func() time.Time
	newID          func() string
}

// NewService wires a new forecasting service. orders and history may be nil.
// An empty cfg.AllowedHorizons accepts any positive horizon.
func NewService(inventory InventorySource, orders OrderLog, history HistoryStore, cfg config.ForecastConfig, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		inventory:      inventory,
		orders:         orders,
		history:        history,
		cfg:            cfg,
		logger:         logger,
		now:            time.Now,
		newID:          uuid.NewString,
	}
}

// DefaultHorizon returns the horizon used when callers do not pick one.
func (s *Service) DefaultHorizon() int {
	return s.cfg.DefaultHorizonDays
}

// Run forecasts the current inventory and records the run in history.
// A failure to save history is logged and does not fail the run.
func (s *Service) Run(ctx context.Context, horizonDays int) (*models.ForecastRun, error) {
	run, err := s.Preview(ctx, horizonDays)
	if err != nil {
		return nil, err
	}

	if s.history != nil {
		if err := s.history.SaveForecastRun(ctx, *run); err != nil {
			s.logger.Warn("failed to save forecast run", zap.Error(err))
		}
	}

	s.logger.Info("forecast completed",
		zap.Int("horizon_days", horizonDays),
		zap.Int("records", run.Summary.RecordsEvaluated),
		zap.Int("suggestions", run.Summary.Total),
		zap.Int("high", run.Summary.High))

	return run, nil
}

// Preview forecasts the current inventory without recording the run.
func (s *Service) Preview(ctx context.Context, horizonDays int) (*models.ForecastRun, error) {
	if err := s.checkHorizon(horizonDays); err != nil {
		return nil, err
	}

	records, err := s.inventory.ListInventory(ctx)
	if err != nil {
		return nil, fmt.Errorf("load inventory: %w", err)
	}

	return s.Evaluate(records, horizonDays)
}

// Evaluate forecasts the given records without touching any store.
func (s *Service) Evaluate(records []models.InventoryRecord, horizonDays int) (*models.ForecastRun, error) {
	suggestions, err := forecast.Forecast(records, horizonDays)
	if err != nil {
		return nil, err
	}

	summary := Summarize(suggestions)
	summary.RecordsEvaluated = len(records)

	return &models.ForecastRun{
		HorizonDays: horizonDays,
		Suggestions: suggestions,
		Summary:     summary,
		CreatedAt:   s.now().UTC(),
	}, nil
}

// LowStock lists records whose stock already sits at or below their threshold.
func (s *Service) LowStock(ctx context.Context) ([]models.InventoryRecord, error) {
	records, err := s.inventory.ListInventory(ctx)
	if err != nil {
		return nil, fmt.Errorf("load inventory: %w", err)
	}

	low := make([]models.InventoryRecord, 0)
	for _, record := range records {
		if record.IsLowStock() {
			low = append(low, record)
		}
	}
	return low, nil
}

// DraftOrder prepares a purchase order for the suggestion matching inventoryID.
// The forecast is recomputed so the quantity reflects current stock.
func (s *Service) DraftOrder(ctx context.Context, inventoryID string, horizonDays int) (*models.PurchaseOrderDraft, error) {
	if err := s.checkHorizon(horizonDays); err != nil {
		return nil, err
	}

	records, err := s.inventory.ListInventory(ctx)
	if err != nil {
		return nil, fmt.Errorf("load inventory: %w", err)
	}

	suggestions, err := forecast.Forecast(records, horizonDays)
	if err != nil {
		return nil, err
	}

	var match *models.ReorderSuggestion
	for i := range suggestions {
		if suggestions[i].SourceID == inventoryID {
			match = &suggestions[i]
			break
		}
	}
	if match == nil {
		return nil, fmt.Errorf("%w: %s", ErrSuggestionNotFound, inventoryID)
	}

	draft := models.PurchaseOrderDraft{
		ID:          s.newID(),
		InventoryID: match.SourceID,
		ProductName: match.ProductName,
		FarmName:    match.FarmName,
		Supplier:    supplierFor(records, inventoryID),
		Quantity:    match.SuggestedQuantity,
		Priority:    match.Priority,
		Status:      models.OrderStatusDraft,
		CreatedAt:   s.now().UTC(),
	}

	if s.history != nil {
		if err := s.history.SaveOrderDraft(ctx, draft); err != nil {
			return nil, fmt.Errorf("save order draft: %w", err)
		}
	}

	if s.orders != nil {
		if err := s.orders.AppendOrder(ctx, draft); err != nil {
			s.logger.Warn("failed to log order draft to sheet", zap.String("order_id", draft.ID), zap.Error(err))
		}
	}

	s.logger.Info("order drafted",
		zap.String("order_id", draft.ID),
		zap.String("inventory_id", draft.InventoryID),
		zap.Int("quantity", draft.Quantity))

	return &draft, nil
}

// History returns recent forecast runs, newest first.
func (s *Service) History(ctx context.Context, limit int64) ([]models.ForecastRun, error) {
	if s.history == nil {
		return []models.ForecastRun{}, nil
	}
	if limit <= 0 {
		limit = 10
	}
	runs, err := s.history.RecentForecastRuns(ctx, limit)
	if err != nil {
		return nil, err
	}
	if runs == nil {
		runs = []models.ForecastRun{}
	}
	return runs, nil
}

// Summarize counts suggestions per priority and totals the suggested quantities.
func Summarize(suggestions []models.ReorderSuggestion) models.ForecastSummary {
	summary := models.ForecastSummary{Total: len(suggestions)}
	for _, s := range suggestions {
		switch s.Priority {
		case models.PriorityHigh:
			summary.High++
		case models.PriorityMedium:
			summary.Medium++
		case models.PriorityLow:
			summary.Low++
		}
		summary.TotalSuggestedQuantity += s.SuggestedQuantity
	}
	return summary
}

// FormatAlert renders a forecast run as a WhatsApp message.
func FormatAlert(run *models.ForecastRun) string {
	if run == nil || len(run.Suggestions) == 0 {
		days := 0
		if run != nil {
			days = run.HorizonDays
		}
		return fmt.Sprintf("Stock forecast (%d days): no reorder needed.", days)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Stock forecast (%d days): %d to reorder (%d high, %d medium).",
		run.HorizonDays, run.Summary.Total, run.Summary.High, run.Summary.Medium)

	for _, s := range run.Suggestions {
		fmt.Fprintf(&b, "\n[%s] %s @ %s: %s. Order %d (id %s)",
			strings.ToUpper(string(s.Priority)), s.ProductName, s.FarmName, s.Reasoning, s.SuggestedQuantity, s.SourceID)
	}
	return b.String()
}

func (s *Service) checkHorizon(days int) error {
	if days <= 0 {
		return fmt.Errorf("%w (got %d)", forecast.ErrInvalidHorizon, days)
	}
	if len(s.cfg.AllowedHorizons) == 0 || s.cfg.Allows(days) {
		return nil
	}
	return fmt.Errorf("%w: %d (allowed %v)", ErrUnsupportedHorizon, days, s.cfg.AllowedHorizons)
}

func supplierFor(records []models.InventoryRecord, id string) string {
	for _, r := range records {
		if r.ID == id {
			return r.SupplierName
		}
	}
	return ""
}
