// Package sheets exports daily stock snapshots to a Google Sheet so command
// staff can follow positions without database access.
package sheets

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/mamadbah2/armory/internal/config"
	"github.com/mamadbah2/armory/internal/domain/models"
)

const snapshotRange = "Snapshots!A:H"

// SnapshotExporter appends snapshot rows to a spreadsheet.
type SnapshotExporter struct {
	service       *sheetsapi.Service
	spreadsheetID string
	logger        *zap.Logger
}

// NewSnapshotExporter builds a Google Sheets backed exporter.
func NewSnapshotExporter(ctx context.Context, cfg config.SheetsConfig, logger *zap.Logger) (*SnapshotExporter, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	service, err := sheetsapi.NewService(ctx, option.WithCredentialsFile(cfg.CredentialsPath), option.WithScopes(sheetsapi.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize sheets client: %w", err)
	}

	return &SnapshotExporter{
		service:       service,
		spreadsheetID: cfg.SpreadsheetID,
		logger:        logger,
	}, nil
}

// ExportSnapshot appends one snapshot as a spreadsheet row.
func (e *SnapshotExporter) ExportSnapshot(ctx context.Context, snap models.StockSnapshot) error {
	row := []interface{}{
		snap.Date.Format(models.DateLayout),
		snap.BaseName,
		snap.Base.Hex(),
		snap.EquipmentName,
		snap.Equipment.Hex(),
		snap.ClosingBalance,
		snap.Assigned,
		snap.Expended,
	}

	payload := &sheetsapi.ValueRange{Values: [][]interface{}{row}}

	call := e.service.Spreadsheets.Values.Append(e.spreadsheetID, snapshotRange, payload).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx)

	if _, err := call.Do(); err != nil {
		return fmt.Errorf("append snapshot row: %w", err)
	}

	e.logger.Debug("snapshot row appended",
		zap.String("base", snap.BaseName),
		zap.String("equipment", snap.EquipmentName))
	return nil
}
