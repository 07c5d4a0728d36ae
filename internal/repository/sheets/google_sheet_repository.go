package sheets

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/mamadbah2/farmstock/internal/config"
	"github.com/mamadbah2/farmstock/internal/domain/models"
)

const ordersWriteRange = "Orders!A:H"

// Repository exposes the inventory sheet and the purchase order log.
type Repository interface {
	ListInventory(ctx context.Context) ([]models.InventoryRecord, error)
	AppendOrder(ctx context.Context, order models.PurchaseOrderDraft) error
}

var _ Repository = (*GoogleSheetRepository)(nil)

// GoogleSheetRepository implements Repository using the official Google Sheets API.
type GoogleSheetRepository struct {
	service        *sheetsapi.Service
	spreadsheetID  string
	inventoryRange string
	logger         *zap.Logger
}

// NewGoogleSheetRepository builds a Google Sheets backed repository instance.
func NewGoogleSheetRepository(ctx context.Context, cfg config.SheetsConfig, logger *zap.Logger) (*GoogleSheetRepository, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	service, err := sheetsapi.NewService(ctx, option.WithCredentialsFile(cfg.CredentialsPath), option.WithScopes(sheetsapi.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize sheets client: %w", err)
	}

	return &GoogleSheetRepository{
		service:        service,
		spreadsheetID:  cfg.SpreadsheetID,
		inventoryRange: cfg.InventoryRange,
		logger:         logger,
	}, nil
}

// ListInventory reads the inventory sheet and decodes every usable row.
func (r *GoogleSheetRepository) ListInventory(ctx context.Context) ([]models.InventoryRecord, error) {
	rows, err := r.readRange(ctx, r.inventoryRange)
	if err != nil {
		return nil, err
	}

	records := ParseInventoryRows(rows, r.logger)
	r.logger.Debug("inventory loaded", zap.Int("rows", len(rows)), zap.Int("records", len(records)))
	return records, nil
}

// AppendOrder logs a drafted purchase order to the Orders sheet.
func (r *GoogleSheetRepository) AppendOrder(ctx context.Context, order models.PurchaseOrderDraft) error {
	return r.writeRow(ctx, ordersWriteRange, OrderRow(order))
}

func (r *GoogleSheetRepository) writeRow(ctx context.Context, sheetRange string, values []interface{}) error {
	if sheetRange == "" {
		return fmt.Errorf("sheetRange must not be empty")
	}

	payload := &sheetsapi.ValueRange{Values: [][]interface{}{values}}

	call := r.service.Spreadsheets.Values.Append(r.spreadsheetID, sheetRange, payload).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx)

	if _, err := call.Do(); err != nil {
		return fmt.Errorf("append row into range %s: %w", sheetRange, err)
	}

	r.logger.Debug("row appended to sheet", zap.String("range", sheetRange))
	return nil
}

func (r *GoogleSheetRepository) readRange(ctx context.Context, sheetRange string) ([][]interface{}, error) {
	if sheetRange == "" {
		return nil, fmt.Errorf("sheetRange must not be empty")
	}

	resp, err := r.service.Spreadsheets.Values.Get(r.spreadsheetID, sheetRange).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read range %s: %w", sheetRange, err)
	}

	return resp.Values, nil
}
