package sheets

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/farmstock/internal/domain/models"
)

const dateLayout = "2006-01-02"

// Inventory sheet columns, in order.
const (
	colID = iota
	colFarm
	colProduct
	colUnit
	colSupplier
	colCurrentStock
	colThreshold
	colMonthlyConsumption
	colFeedFrequency
	colFeedFrequencyUnit
	colLastOrderDate
)

// ParseInventoryRows converts raw sheet rows into inventory records.
// Rows missing an id, a farm, a product or a readable stock figure are skipped.
// Blank optional cells stay absent instead of becoming zero.
func ParseInventoryRows(rows [][]interface{}, logger *zap.Logger) []models.InventoryRecord {
	if logger == nil {
		logger = zap.NewNop()
	}

	records := make([]models.InventoryRecord, 0, len(rows))
	for i, row := range rows {
		record, err := parseInventoryRow(row)
		if err != nil {
			logger.Debug("skip inventory row", zap.Int("row", i), zap.Error(err))
			continue
		}
		records = append(records, record)
	}
	return records
}

func parseInventoryRow(row []interface{}) (models.InventoryRecord, error) {
	id := cell(row, colID)
	farm := cell(row, colFarm)
	product := cell(row, colProduct)
	if id == "" || farm == "" || product == "" {
		return models.InventoryRecord{}, fmt.Errorf("missing id, farm or product")
	}

	stock, err := parseFloat(cell(row, colCurrentStock))
	if err != nil {
		return models.InventoryRecord{}, fmt.Errorf("current stock: %w", err)
	}
	if stock < 0 {
		return models.InventoryRecord{}, fmt.Errorf("negative current stock %v", stock)
	}

	record := models.InventoryRecord{
		ID:                id,
		FarmName:          farm,
		ProductName:       product,
		Unit:              cell(row, colUnit),
		SupplierName:      cell(row, colSupplier),
		CurrentStock:      stock,
		FeedFrequencyUnit: models.ParseFrequencyUnit(cell(row, colFeedFrequencyUnit)),
	}

	if record.LowStockThreshold, err = optionalFloat(cell(row, colThreshold)); err != nil {
		return models.InventoryRecord{}, fmt.Errorf("low stock threshold: %w", err)
	}
	if record.AverageMonthlyConsumption, err = optionalFloat(cell(row, colMonthlyConsumption)); err != nil {
		return models.InventoryRecord{}, fmt.Errorf("monthly consumption: %w", err)
	}
	if record.FeedFrequency, err = optionalInt(cell(row, colFeedFrequency)); err != nil {
		return models.InventoryRecord{}, fmt.Errorf("feed frequency: %w", err)
	}

	if raw := cell(row, colLastOrderDate); raw != "" {
		if date, err := parseDate(raw); err == nil {
			record.LastOrderDate = &date
		}
	}

	return record, nil
}

// OrderRow lays out a purchase order draft for the Orders sheet.
func OrderRow(order models.PurchaseOrderDraft) []interface{} {
	return []interface{}{
		order.CreatedAt.Format(dateLayout),
		order.ID,
		order.InventoryID,
		order.FarmName,
		order.ProductName,
		order.Supplier,
		order.Quantity,
		string(order.Status),
	}
}

func cell(row []interface{}, idx int) string {
	if idx >= len(row) || row[idx] == nil {
		return ""
	}
	return strings.TrimSpace(fmt.Sprint(row[idx]))
}

func optionalFloat(value string) (*float64, error) {
	if value == "" {
		return nil, nil
	}
	v, err := parseFloat(value)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func optionalInt(value string) (*int, error) {
	if value == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(value)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// parseFloat accepts both "12.5" and the comma decimal separator used in French locale sheets.
func parseFloat(value string) (float64, error) {
	if value == "" {
		return 0, fmt.Errorf("empty numeric value")
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(value, ",", "."), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("non-finite numeric value %q", value)
	}
	return v, nil
}

func parseDate(value string) (time.Time, error) {
	if len(value) > 10 {
		value = value[:10]
	}
	return time.Parse(dateLayout, value)
}
