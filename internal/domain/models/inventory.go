package models

import (
	"strings"
	"time"
)

// FrequencyUnit describes the period a feed frequency is counted over.
type FrequencyUnit string

const (
	FrequencyDaily   FrequencyUnit = "daily"
	FrequencyWeekly  FrequencyUnit = "weekly"
	FrequencyMonthly FrequencyUnit = "monthly"
)

// ParseFrequencyUnit normalizes free-form unit labels coming from the inventory sheet.
// Unknown values map to monthly, which is how the rate conversion treats them anyway.
func ParseFrequencyUnit(value string) FrequencyUnit {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "daily", "day", "jour":
		return FrequencyDaily
	case "weekly", "week", "semaine":
		return FrequencyWeekly
	default:
		return FrequencyMonthly
	}
}

// InventoryRecord is a product tracked at a farm. Optional figures are pointers
// so that an absent value never reads as zero.
type InventoryRecord struct {
	ID                        string        `json:"id" bson:"id" binding:"required"`
	FarmName                  string        `json:"farm_name" bson:"farm_name" binding:"required"`
	ProductName               string        `json:"product_name" bson:"product_name" binding:"required"`
	CurrentStock              float64       `json:"current_stock" bson:"current_stock" binding:"gte=0"`
	LowStockThreshold         *float64      `json:"low_stock_threshold,omitempty" bson:"low_stock_threshold,omitempty" binding:"omitempty,gte=0"`
	AverageMonthlyConsumption *float64      `json:"average_monthly_consumption,omitempty" bson:"average_monthly_consumption,omitempty" binding:"omitempty,gte=0"`
	FeedFrequency             *int          `json:"feed_frequency,omitempty" bson:"feed_frequency,omitempty" binding:"omitempty,gte=0"`
	FeedFrequencyUnit         FrequencyUnit `json:"feed_frequency_unit,omitempty" bson:"feed_frequency_unit,omitempty"`
	Unit                      string        `json:"unit,omitempty" bson:"unit,omitempty"`
	SupplierName              string        `json:"supplier_name,omitempty" bson:"supplier_name,omitempty"`
	LastOrderDate             *time.Time    `json:"last_order_date,omitempty" bson:"last_order_date,omitempty"`
}

// Threshold returns the low stock threshold, zero when absent.
func (r InventoryRecord) Threshold() float64 {
	if r.LowStockThreshold == nil {
		return 0
	}
	return *r.LowStockThreshold
}

// IsLowStock reports whether stock has already reached the threshold.
func (r InventoryRecord) IsLowStock() bool {
	return r.CurrentStock <= r.Threshold()
}
