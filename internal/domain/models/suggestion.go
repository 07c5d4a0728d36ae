package models

// Priority ranks how urgently a product needs restocking.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Rank orders priorities so that high sorts before medium and low.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	default:
		return 0
	}
}

// ReorderSuggestion recommends restocking one inventory record.
type ReorderSuggestion struct {
	SourceID          string   `json:"source_id" bson:"source_id"`
	ProductName       string   `json:"product_name" bson:"product_name"`
	FarmName          string   `json:"farm_name" bson:"farm_name"`
	CurrentStock      float64  `json:"current_stock" bson:"current_stock"`
	SuggestedQuantity int      `json:"suggested_quantity" bson:"suggested_quantity"`
	DaysUntilEmpty    int      `json:"days_until_empty" bson:"days_until_empty"`
	Priority          Priority `json:"priority" bson:"priority"`
	Reasoning         string   `json:"reasoning" bson:"reasoning"`
}
