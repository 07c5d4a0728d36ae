package models

import "time"

// ForecastSummary aggregates the suggestions of one forecast run.
type ForecastSummary struct {
	Total                  int `bson:"total" json:"total"`
	High                   int `bson:"high" json:"high"`
	Medium                 int `bson:"medium" json:"medium"`
	Low                    int `bson:"low" json:"low"`
	TotalSuggestedQuantity int `bson:"total_suggested_quantity" json:"total_suggested_quantity"`
	RecordsEvaluated       int `bson:"records_evaluated" json:"records_evaluated"`
}

// ForecastRun is a forecast result as stored in MongoDB history.
type ForecastRun struct {
	HorizonDays int                 `bson:"horizon_days" json:"horizon_days"`
	Suggestions []ReorderSuggestion `bson:"suggestions" json:"suggestions"`
	Summary     ForecastSummary     `bson:"summary" json:"summary"`
	CreatedAt   time.Time           `bson:"created_at" json:"created_at"`
}

// OrderStatus tracks a purchase order draft.
type OrderStatus string

const OrderStatusDraft OrderStatus = "draft"

// PurchaseOrderDraft is a restock order prepared from a reorder suggestion.
type PurchaseOrderDraft struct {
	ID          string      `bson:"_id" json:"id"`
	InventoryID string      `bson:"inventory_id" json:"inventory_id"`
	ProductName string      `bson:"product_name" json:"product_name"`
	FarmName    string      `bson:"farm_name" json:"farm_name"`
	Supplier    string      `bson:"supplier,omitempty" json:"supplier,omitempty"`
	Quantity    int         `bson:"quantity" json:"quantity"`
	Priority    Priority    `bson:"priority" json:"priority"`
	Status      OrderStatus `bson:"status" json:"status"`
	CreatedAt   time.Time   `bson:"created_at" json:"created_at"`
}
