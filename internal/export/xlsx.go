// Package export renders forecast results as spreadsheets for farm managers.
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/mamadbah2/farmstock/internal/domain/models"
)

const (
	suggestionsSheet = "Reorder"
	summarySheet     = "Summary"
)

var suggestionHeader = []interface{}{
	"Inventory ID", "Farm", "Product", "Current stock", "Days until empty", "Priority", "Suggested quantity", "Reasoning",
}

// WriteForecastXLSX writes the run's suggestions and summary as an xlsx workbook.
func WriteForecastXLSX(w io.Writer, run *models.ForecastRun) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", suggestionsSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	if err := f.SetSheetRow(suggestionsSheet, "A1", &suggestionHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, s := range run.Suggestions {
		cellRef, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{
			s.SourceID, s.FarmName, s.ProductName, s.CurrentStock,
			s.DaysUntilEmpty, string(s.Priority), s.SuggestedQuantity, s.Reasoning,
		}
		if err := f.SetSheetRow(suggestionsSheet, cellRef, &row); err != nil {
			return fmt.Errorf("write suggestion %s: %w", s.SourceID, err)
		}
	}

	if _, err := f.NewSheet(summarySheet); err != nil {
		return fmt.Errorf("create summary sheet: %w", err)
	}

	summary := [][]interface{}{
		{"Horizon (days)", run.HorizonDays},
		{"Generated at", run.CreatedAt.Format("2006-01-02 15:04")},
		{"Records evaluated", run.Summary.RecordsEvaluated},
		{"Suggestions", run.Summary.Total},
		{"High priority", run.Summary.High},
		{"Medium priority", run.Summary.Medium},
		{"Low priority", run.Summary.Low},
		{"Total suggested quantity", run.Summary.TotalSuggestedQuantity},
	}
	for i, row := range summary {
		if err := f.SetSheetRow(summarySheet, fmt.Sprintf("A%d", i+1), &row); err != nil {
			return fmt.Errorf("write summary: %w", err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
