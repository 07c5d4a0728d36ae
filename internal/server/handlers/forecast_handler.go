package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/farmstock/internal/domain/models"
	"github.com/mamadbah2/farmstock/internal/export"
	"github.com/mamadbah2/farmstock/internal/forecast"
	"github.com/mamadbah2/farmstock/internal/service/forecasting"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ForecastHandler exposes reorder forecasts over HTTP.
type ForecastHandler struct {
	svc    forecasting.Forecaster
	logger *zap.Logger
}

// NewForecastHandler constructs the forecast HTTP adapter.
func NewForecastHandler(svc forecasting.Forecaster, logger *zap.Logger) *ForecastHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ForecastHandler{svc: svc, logger: logger}
}

// EvaluateRequest carries a caller supplied inventory snapshot.
type EvaluateRequest struct {
	HorizonDays int                      `json:"horizon_days"`
	Records     []models.InventoryRecord `json:"records" binding:"dive"`
}

// DraftOrderRequest selects the suggestion to turn into a purchase order.
type DraftOrderRequest struct {
	InventoryID string `json:"inventory_id" binding:"required"`
	HorizonDays int    `json:"horizon_days"`
}

// Forecast runs the forecast over the stored inventory.
func (h *ForecastHandler) Forecast(c *gin.Context) {
	horizon, ok := h.horizonQuery(c)
	if !ok {
		return
	}

	run, err := h.svc.Run(c.Request.Context(), horizon)
	if err != nil {
		h.respondError(c, "forecast failed", err)
		return
	}

	c.JSON(http.StatusOK, run)
}

// Evaluate forecasts the records in the request body without persisting anything.
func (h *ForecastHandler) Evaluate(c *gin.Context) {
	var req EvaluateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid evaluate payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	run, err := h.svc.Evaluate(req.Records, req.HorizonDays)
	if err != nil {
		h.respondError(c, "evaluate failed", err)
		return
	}

	c.JSON(http.StatusOK, run)
}

// LowStock lists items at or below their alert level.
func (h *ForecastHandler) LowStock(c *gin.Context) {
	records, err := h.svc.LowStock(c.Request.Context())
	if err != nil {
		h.respondError(c, "low stock lookup failed", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": records, "count": len(records)})
}

// DraftOrder turns a current suggestion into a purchase order draft.
func (h *ForecastHandler) DraftOrder(c *gin.Context) {
	var req DraftOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid draft order payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if req.HorizonDays == 0 {
		req.HorizonDays = h.svc.DefaultHorizon()
	}

	draft, err := h.svc.DraftOrder(c.Request.Context(), req.InventoryID, req.HorizonDays)
	if err != nil {
		h.respondError(c, "draft order failed", err)
		return
	}

	c.JSON(http.StatusCreated, draft)
}

// History returns recent forecast runs.
func (h *ForecastHandler) History(c *gin.Context) {
	limit, err := strconv.ParseInt(c.DefaultQuery("limit", "10"), 10, 64)
	if err != nil || limit <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
		return
	}

	runs, err := h.svc.History(c.Request.Context(), limit)
	if err != nil {
		h.respondError(c, "history lookup failed", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"runs": runs})
}

// Export streams the forecast as an xlsx workbook. Exports are not recorded in history.
func (h *ForecastHandler) Export(c *gin.Context) {
	horizon, ok := h.horizonQuery(c)
	if !ok {
		return
	}

	run, err := h.svc.Preview(c.Request.Context(), horizon)
	if err != nil {
		h.respondError(c, "forecast export failed", err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="reorder-%dd-%s.xlsx"`, horizon, run.CreatedAt.Format("20060102")))
	c.Header("Content-Type", xlsxContentType)
	c.Status(http.StatusOK)

	if err := export.WriteForecastXLSX(c.Writer, run); err != nil {
		h.logger.Error("failed writing xlsx", zap.Error(err))
	}
}

func (h *ForecastHandler) horizonQuery(c *gin.Context) (int, bool) {
	raw := c.Query("horizon")
	if raw == "" {
		return h.svc.DefaultHorizon(), true
	}

	horizon, err := strconv.Atoi(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "horizon must be an integer number of days"})
		return 0, false
	}
	return horizon, true
}

func (h *ForecastHandler) respondError(c *gin.Context, msg string, err error) {
	switch {
	case errors.Is(err, forecast.ErrInvalidArgument):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, forecasting.ErrSuggestionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		h.logger.Error(msg, zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
	}
}
