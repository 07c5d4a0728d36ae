package router

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/mamadbah2/farmstock/internal/domain/models"
	"github.com/mamadbah2/farmstock/internal/forecast"
	"github.com/mamadbah2/farmstock/internal/server/handlers"
	"github.com/mamadbah2/farmstock/internal/service/forecasting"
)

// stubForecaster evaluates with the real forecaster so responses carry real numbers.
type stubForecaster struct {
	records    []models.InventoryRecord
	err        error
	gotHorizon int
	gotLimit   int64
	runs       int
}

func (s *stubForecaster) Run(ctx context.Context, horizon int) (*models.ForecastRun, error) {
	s.runs++
	return s.Preview(ctx, horizon)
}

func (s *stubForecaster) Preview(_ context.Context, horizon int) (*models.ForecastRun, error) {
	s.gotHorizon = horizon
	if s.err != nil {
		return nil, s.err
	}
	return s.Evaluate(s.records, horizon)
}

func (s *stubForecaster) Evaluate(records []models.InventoryRecord, horizon int) (*models.ForecastRun, error) {
	suggestions, err := forecast.Forecast(records, horizon)
	if err != nil {
		return nil, err
	}
	summary := forecasting.Summarize(suggestions)
	summary.RecordsEvaluated = len(records)
	return &models.ForecastRun{HorizonDays: horizon, Suggestions: suggestions, Summary: summary, CreatedAt: time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC)}, nil
}

func (s *stubForecaster) LowStock(context.Context) ([]models.InventoryRecord, error) {
	var low []models.InventoryRecord
	for _, r := range s.records {
		if r.IsLowStock() {
			low = append(low, r)
		}
	}
	return low, s.err
}

func (s *stubForecaster) DraftOrder(_ context.Context, id string, horizon int) (*models.PurchaseOrderDraft, error) {
	s.gotHorizon = horizon
	if s.err != nil {
		return nil, s.err
	}
	if id != "inv-1" {
		return nil, fmt.Errorf("%w: %s", forecasting.ErrSuggestionNotFound, id)
	}
	return &models.PurchaseOrderDraft{ID: "po-1", InventoryID: id, Quantity: 180, Status: models.OrderStatusDraft}, nil
}

func (s *stubForecaster) History(_ context.Context, limit int64) ([]models.ForecastRun, error) {
	s.gotLimit = limit
	return []models.ForecastRun{{HorizonDays: 30}}, s.err
}

func (s *stubForecaster) DefaultHorizon() int { return 30 }

type stubMessaging struct {
	handleErr error
	sendErr   error
	sent      []models.OutboundMessageRequest
}

func (m *stubMessaging) VerifyWebhookToken(mode, token, challenge string) (string, error) {
	if token != "tok" {
		return "", errors.New("invalid verify token")
	}
	return challenge, nil
}

func (m *stubMessaging) HandleWebhook(context.Context, models.WebhookPayload) error {
	return m.handleErr
}

func (m *stubMessaging) SendOutbound(_ context.Context, req models.OutboundMessageRequest) error {
	m.sent = append(m.sent, req)
	return m.sendErr
}

func floatPtr(v float64) *float64 { return &v }

func inventory() []models.InventoryRecord {
	return []models.InventoryRecord{
		{ID: "inv-1", FarmName: "Kindia", ProductName: "Layer mash", CurrentStock: 20, AverageMonthlyConsumption: floatPtr(150), LowStockThreshold: floatPtr(25)},
		{ID: "inv-2", FarmName: "Kindia", ProductName: "Grower", CurrentStock: 500, AverageMonthlyConsumption: floatPtr(30)},
	}
}

func newTestEngine(f *stubForecaster, m *stubMessaging) http.Handler {
	return New(handlers.NewWebhookHandler(m, nil), handlers.NewForecastHandler(f, nil), nil)
}

func do(t *testing.T, h http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(t, json.NewEncoder(&buf).Encode(b))
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	rec := do(t, newTestEngine(&stubForecaster{}, &stubMessaging{}), http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestForecast(t *testing.T) {
	f := &stubForecaster{records: inventory()}
	engine := newTestEngine(f, &stubMessaging{})

	rec := do(t, engine, http.MethodGet, "/api/forecast?horizon=14", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 14, f.gotHorizon)

	var run models.ForecastRun
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &run))
	require.Len(t, run.Suggestions, 1)
	assert.Equal(t, "inv-1", run.Suggestions[0].SourceID)
	assert.Equal(t, models.PriorityHigh, run.Suggestions[0].Priority)

	do(t, engine, http.MethodGet, "/api/forecast", nil)
	assert.Equal(t, 30, f.gotHorizon)

	rec = do(t, engine, http.MethodGet, "/api/forecast?horizon=abc", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestForecast_ErrorMapping(t *testing.T) {
	f := &stubForecaster{err: fmt.Errorf("%w: 45", forecasting.ErrUnsupportedHorizon)}
	rec := do(t, newTestEngine(f, &stubMessaging{}), http.MethodGet, "/api/forecast?horizon=45", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	f = &stubForecaster{err: errors.New("sheets quota")}
	rec = do(t, newTestEngine(f, &stubMessaging{}), http.MethodGet, "/api/forecast", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"forecast failed"}`, rec.Body.String())
}

func TestEvaluate(t *testing.T) {
	engine := newTestEngine(&stubForecaster{}, &stubMessaging{})

	body := `{"horizon_days":30,"records":[{"id":"a","farm_name":"Dubreka","product_name":"Starter","current_stock":50,"average_monthly_consumption":150,"low_stock_threshold":10}]}`
	rec := do(t, engine, http.MethodPost, "/api/forecast/evaluate", body)
	require.Equal(t, http.StatusOK, rec.Code)

	var run models.ForecastRun
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &run))
	require.Len(t, run.Suggestions, 1)
	got := run.Suggestions[0]
	assert.Equal(t, 10, got.DaysUntilEmpty)
	assert.Equal(t, 180, got.SuggestedQuantity)
	assert.Equal(t, "Warning: 10 days of stock remaining", got.Reasoning)
}

func TestEvaluate_InvalidInput(t *testing.T) {
	engine := newTestEngine(&stubForecaster{}, &stubMessaging{})

	rec := do(t, engine, http.MethodPost, "/api/forecast/evaluate", `{"horizon_days":0,"records":[]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "forecast horizon must be positive")

	rec = do(t, engine, http.MethodPost, "/api/forecast/evaluate", `{"horizon_days":30,"records":[{"id":"a","farm_name":"F","current_stock":1}]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, engine, http.MethodPost, "/api/forecast/evaluate", `{"horizon_days":30,"records":[{"id":"a","farm_name":"F","product_name":"P","current_stock":-1}]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLowStock(t *testing.T) {
	rec := do(t, newTestEngine(&stubForecaster{records: inventory()}, &stubMessaging{}), http.MethodGet, "/api/inventory/low-stock", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Items []models.InventoryRecord `json:"items"`
		Count int                      `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 1, body.Count)
	assert.Equal(t, "inv-1", body.Items[0].ID)
}

func TestDraftOrder(t *testing.T) {
	f := &stubForecaster{}
	engine := newTestEngine(f, &stubMessaging{})

	rec := do(t, engine, http.MethodPost, "/api/orders/draft", map[string]any{"inventory_id": "inv-1"})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, 30, f.gotHorizon)
	assert.Contains(t, rec.Body.String(), `"id":"po-1"`)

	rec = do(t, engine, http.MethodPost, "/api/orders/draft", map[string]any{"inventory_id": "inv-9", "horizon_days": 7})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, 7, f.gotHorizon)

	rec = do(t, engine, http.MethodPost, "/api/orders/draft", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHistory(t *testing.T) {
	f := &stubForecaster{}
	engine := newTestEngine(f, &stubMessaging{})

	rec := do(t, engine, http.MethodGet, "/api/forecast/history?limit=3", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(3), f.gotLimit)

	rec = do(t, engine, http.MethodGet, "/api/forecast/history?limit=-1", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestExport(t *testing.T) {
	f := &stubForecaster{records: inventory()}
	rec := do(t, newTestEngine(f, &stubMessaging{}), http.MethodGet, "/api/forecast/export?horizon=30", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, f.runs, "exports must not be recorded as forecast runs")
	assert.Equal(t, 30, f.gotHorizon)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "reorder-30d-20261017.xlsx")

	xf, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	defer xf.Close()

	rows, err := xf.GetRows("Reorder")
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestWebhook(t *testing.T) {
	m := &stubMessaging{}
	engine := newTestEngine(&stubForecaster{}, m)

	rec := do(t, engine, http.MethodGet, "/webhook?hub.mode=subscribe&hub.verify_token=tok&hub.challenge=99", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "99", rec.Body.String())

	rec = do(t, engine, http.MethodGet, "/webhook?hub.mode=subscribe&hub.verify_token=nope&hub.challenge=99", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = do(t, engine, http.MethodPost, "/webhook", `{"object":"whatsapp_business_account","entry":[]}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	m.handleErr = errors.New("dispatch failed")
	rec = do(t, engine, http.MethodPost, "/webhook", `{"entry":[]}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, engine, http.MethodPost, "/webhook", `not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSendMessage(t *testing.T) {
	m := &stubMessaging{}
	engine := newTestEngine(&stubForecaster{}, m)

	rec := do(t, engine, http.MethodPost, "/send-message", map[string]any{"to": "224600", "message": "hello"})
	assert.Equal(t, http.StatusAccepted, rec.Code)
	require.Len(t, m.sent, 1)

	rec = do(t, engine, http.MethodPost, "/send-message", map[string]any{"to": "224600"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	m.sendErr = errors.New("whatsapp down")
	rec = do(t, engine, http.MethodPost, "/send-message", map[string]any{"to": "224600", "message": "hello"})
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}
