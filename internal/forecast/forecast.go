// Package forecast turns an inventory snapshot into prioritized reorder suggestions.
//
// The computation is pure: it performs no I/O, keeps no state between calls and
// never mutates its input, so a single Forecast call may run from any goroutine.
package forecast

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/mamadbah2/farmstock/internal/domain/models"
)

const (
	daysPerMonth   = 30
	daysPerWeek    = 7
	reorderBuffer  = 1.2
	highPriorityAt = 7
	mediumPriority = 14

	// maxDays caps days-until-empty when stock dwarfs consumption.
	maxDays = math.MaxInt32
)

// ErrInvalidArgument marks caller contract violations.
var ErrInvalidArgument = errors.New("invalid argument")

// ErrInvalidHorizon is returned when the forecast horizon is not a positive number of days.
var ErrInvalidHorizon = fmt.Errorf("%w: forecast horizon must be positive", ErrInvalidArgument)

// DailyRate resolves the estimated units consumed per day for a record.
// The monthly average wins when it is present and positive; otherwise the feed
// frequency is converted with its unit. ok is false when neither yields a
// finite positive rate.
func DailyRate(record models.InventoryRecord) (rate float64, ok bool) {
	if monthly := record.AverageMonthlyConsumption; monthly != nil && *monthly > 0 && !math.IsInf(*monthly, 1) {
		return *record.AverageMonthlyConsumption / daysPerMonth, true
	}

	if record.FeedFrequency != nil && *record.FeedFrequency > 0 {
		freq := float64(*record.FeedFrequency)
		switch record.FeedFrequencyUnit {
		case models.FrequencyDaily:
			return freq, true
		case models.FrequencyWeekly:
			return freq / daysPerWeek, true
		default:
			return freq / daysPerMonth, true
		}
	}

	return 0, false
}

// Forecast computes reorder suggestions for the records over horizonDays.
// Records without a resolvable consumption rate are skipped. The result is
// ordered by priority, then by days until empty, keeping input order for ties.
func Forecast(records []models.InventoryRecord, horizonDays int) ([]models.ReorderSuggestion, error) {
	if horizonDays <= 0 {
		return nil, fmt.Errorf("%w (got %d)", ErrInvalidHorizon, horizonDays)
	}

	suggestions := make([]models.ReorderSuggestion, 0, len(records))
	for _, record := range records {
		suggestion, ok := evaluate(record, horizonDays)
		if !ok {
			continue
		}
		suggestions = append(suggestions, suggestion)
	}

	SortSuggestions(suggestions)
	return suggestions, nil
}

// SortSuggestions orders suggestions in place: high before medium before low,
// soonest to empty first within a priority. Equal keys keep their order.
func SortSuggestions(suggestions []models.ReorderSuggestion) {
	sort.SliceStable(suggestions, func(i, j int) bool {
		a, b := suggestions[i], suggestions[j]
		if a.Priority.Rank() != b.Priority.Rank() {
			return a.Priority.Rank() > b.Priority.Rank()
		}
		return a.DaysUntilEmpty < b.DaysUntilEmpty
	})
}

func evaluate(record models.InventoryRecord, horizonDays int) (models.ReorderSuggestion, bool) {
	rate, ok := DailyRate(record)
	if !ok || !finite(record.CurrentStock) || !finite(record.Threshold()) {
		return models.ReorderSuggestion{}, false
	}

	days := math.Floor(record.CurrentStock / rate)
	projected := record.CurrentStock - rate*float64(horizonDays)

	if days > float64(horizonDays) && projected > record.Threshold() {
		return models.ReorderSuggestion{}, false
	}

	if days > maxDays {
		days = maxDays
	}
	daysUntilEmpty := int(days)
	priority, reasoning := classify(daysUntilEmpty, horizonDays)

	return models.ReorderSuggestion{
		SourceID:          record.ID,
		ProductName:       record.ProductName,
		FarmName:          record.FarmName,
		CurrentStock:      record.CurrentStock,
		SuggestedQuantity: SuggestedQuantity(rate),
		DaysUntilEmpty:    daysUntilEmpty,
		Priority:          priority,
		Reasoning:         reasoning,
	}, true
}

// SuggestedQuantity is one month of consumption plus a 20% buffer, rounded up.
func SuggestedQuantity(dailyRate float64) int {
	return int(math.Ceil(dailyRate * daysPerMonth * reorderBuffer))
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func classify(daysUntilEmpty, horizonDays int) (models.Priority, string) {
	switch {
	case daysUntilEmpty <= highPriorityAt:
		return models.PriorityHigh, fmt.Sprintf("Critical: Only %d days of stock remaining", daysUntilEmpty)
	case daysUntilEmpty <= mediumPriority:
		return models.PriorityMedium, fmt.Sprintf("Warning: %d days of stock remaining", daysUntilEmpty)
	default:
		return models.PriorityLow, fmt.Sprintf("Low stock forecast in %d days", horizonDays)
	}
}
