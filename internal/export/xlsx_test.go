package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/mamadbah2/farmstock/internal/domain/models"
)

func TestWriteForecastXLSX(t *testing.T) {
	run := &models.ForecastRun{
		HorizonDays: 30,
		CreatedAt:   time.Date(2026, 10, 17, 7, 0, 0, 0, time.UTC),
		Suggestions: []models.ReorderSuggestion{
			{SourceID: "inv-1", FarmName: "Kindia", ProductName: "Layer mash", CurrentStock: 20, DaysUntilEmpty: 4, Priority: models.PriorityHigh, SuggestedQuantity: 180, Reasoning: "Critical: Only 4 days of stock remaining"},
			{SourceID: "inv-2", FarmName: "Coyah", ProductName: "Starter", CurrentStock: 60, DaysUntilEmpty: 12, Priority: models.PriorityMedium, SuggestedQuantity: 180, Reasoning: "Warning: 12 days of stock remaining"},
		},
		Summary: models.ForecastSummary{Total: 2, High: 1, Medium: 1, TotalSuggestedQuantity: 360, RecordsEvaluated: 4},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteForecastXLSX(&buf, run))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(suggestionsSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Inventory ID", rows[0][0])
	assert.Equal(t, []string{"inv-1", "Kindia", "Layer mash", "20", "4", "high", "180", "Critical: Only 4 days of stock remaining"}, rows[1])
	assert.Equal(t, "inv-2", rows[2][0])

	total, err := f.GetCellValue(summarySheet, "B8")
	require.NoError(t, err)
	assert.Equal(t, "360", total)
}

func TestWriteForecastXLSX_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteForecastXLSX(&buf, &models.ForecastRun{HorizonDays: 7}))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(suggestionsSheet)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
