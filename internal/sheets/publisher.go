package sheets

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"google.golang.org/api/sheets/v4"

	"github.com/Veraticus/calcman/internal/catalog"
	"github.com/Veraticus/calcman/internal/common"
	"github.com/Veraticus/calcman/internal/model"
	"github.com/Veraticus/calcman/internal/service"
)

// Publisher writes the catalog to a spreadsheet tab, replacing whatever the
// tab held before.
type Publisher struct {
	api    spreadsheetAPI
	logger *slog.Logger
	pages  catalog.SitemapDefaults
	config Config
}

// NewPublisher creates a publisher authenticated per config. pages supplies
// the base URL of the URL column.
func NewPublisher(ctx context.Context, config Config, pages catalog.SitemapDefaults, logger *slog.Logger) (*Publisher, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	svc, err := createSheetsService(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	return newPublisher(googleAPI{svc: svc}, config, pages, logger), nil
}

func newPublisher(api spreadsheetAPI, config Config, pages catalog.SitemapDefaults, logger *slog.Logger) *Publisher {
	return &Publisher{
		api:    api,
		config: config,
		pages:  pages,
		logger: common.OrDefault(logger),
	}
}

// Result describes a completed publish.
type Result struct {
	SpreadsheetID string
	URL           string
	Rows          int
}

// Publish clears the configured tab and writes a header plus one row per
// definition.
func (p *Publisher) Publish(ctx context.Context, defs []model.Definition, formulas model.GlobalFormulas, year int) (Result, error) {
	p.logger.Info("starting publish", "calculators", len(defs), "year", year)

	spreadsheetID, url, err := p.getOrCreateSpreadsheet(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("failed to get spreadsheet: %w", err)
	}

	sheetID, err := p.ensureSheet(ctx, spreadsheetID)
	if err != nil {
		return Result{}, err
	}

	values := PrepareRows(defs, formulas, year, p.pages)

	retryOpts := service.RetryOptions{
		MaxAttempts:  p.config.RetryAttempts,
		InitialDelay: p.config.RetryDelay,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
	}

	err = common.WithRetry(ctx, func() error {
		return p.api.Clear(ctx, spreadsheetID, p.cellRange("A:Z"))
	}, retryOpts)
	if err != nil {
		return Result{}, fmt.Errorf("failed to clear sheet: %w", err)
	}

	err = common.WithRetry(ctx, func() error {
		return p.writeData(ctx, spreadsheetID, values)
	}, retryOpts)
	if err != nil {
		return Result{}, fmt.Errorf("failed to write data: %w", err)
	}

	if p.config.EnableFormatting {
		err = common.WithRetry(ctx, func() error {
			return p.api.BatchUpdate(ctx, spreadsheetID, formatRequests(sheetID, len(values)))
		}, retryOpts)
		if err != nil {
			// Formatting is cosmetic; the data is already written.
			p.logger.Warn("failed to apply formatting", "error", err)
		}
	}

	p.logger.Info("publish completed",
		"spreadsheet_id", spreadsheetID,
		"rows_written", len(values))

	return Result{SpreadsheetID: spreadsheetID, URL: url, Rows: len(values)}, nil
}

func (p *Publisher) getOrCreateSpreadsheet(ctx context.Context) (string, string, error) {
	if p.config.SpreadsheetID != "" {
		return p.config.SpreadsheetID, spreadsheetURL(p.config.SpreadsheetID), nil
	}

	id, url, err := p.api.Create(ctx, p.config.SpreadsheetName, p.config.TimeZone, p.config.SheetName)
	if err != nil {
		return "", "", err
	}

	p.logger.Info("created new spreadsheet", "id", id, "url", url)
	return id, url, nil
}

// ensureSheet returns the id of the configured tab, adding it when missing.
func (p *Publisher) ensureSheet(ctx context.Context, spreadsheetID string) (int64, error) {
	ids, err := p.api.SheetIDs(ctx, spreadsheetID)
	if err != nil {
		return 0, err
	}
	if id, ok := ids[p.config.SheetName]; ok {
		return id, nil
	}

	id, err := p.api.AddSheet(ctx, spreadsheetID, p.config.SheetName)
	if err != nil {
		return 0, err
	}
	p.logger.Info("added sheet", "title", p.config.SheetName)
	return id, nil
}

// writeData writes values in batches to stay under request size limits.
func (p *Publisher) writeData(ctx context.Context, spreadsheetID string, values [][]any) error {
	for i := 0; i < len(values); i += p.config.BatchSize {
		end := min(i+p.config.BatchSize, len(values))
		batch := values[i:end]

		if err := p.api.Update(ctx, spreadsheetID, p.cellRange(fmt.Sprintf("A%d", i+1)), batch); err != nil {
			return fmt.Errorf("failed to write batch starting at row %d: %w", i+1, err)
		}

		p.logger.Debug("wrote batch", "start_row", i+1, "rows", len(batch))
	}
	return nil
}

func (p *Publisher) cellRange(cells string) string {
	return fmt.Sprintf("'%s'!%s", p.config.SheetName, cells)
}

func spreadsheetURL(id string) string {
	return "https://docs.google.com/spreadsheets/d/" + id
}

func formatRequests(sheetID int64, totalRows int) []*sheets.Request {
	return []*sheets.Request{
		// Header
		{
			RepeatCell: &sheets.RepeatCellRequest{
				Range: &sheets.GridRange{
					SheetId:          sheetID,
					StartRowIndex:    0,
					EndRowIndex:      1,
					StartColumnIndex: 0,
					EndColumnIndex:   int64(len(Header)),
				},
				Cell: &sheets.CellData{
					UserEnteredFormat: &sheets.CellFormat{
						TextFormat: &sheets.TextFormat{Bold: true},
					},
				},
				Fields: "userEnteredFormat.textFormat",
			},
		},
		// Bounds
		{
			RepeatCell: &sheets.RepeatCellRequest{
				Range: &sheets.GridRange{
					SheetId:          sheetID,
					StartRowIndex:    1,
					EndRowIndex:      int64(totalRows),
					StartColumnIndex: firstBoundColumn,
					EndColumnIndex:   lastBoundColumn + 1,
				},
				Cell: &sheets.CellData{
					UserEnteredFormat: &sheets.CellFormat{
						NumberFormat: &sheets.NumberFormat{
							Type:    "NUMBER",
							Pattern: "#,##0.##",
						},
					},
				},
				Fields: "userEnteredFormat.numberFormat",
			},
		},
		{
			AutoResizeDimensions: &sheets.AutoResizeDimensionsRequest{
				Dimensions: &sheets.DimensionRange{
					SheetId:    sheetID,
					Dimension:  "COLUMNS",
					StartIndex: 0,
					EndIndex:   int64(len(Header)),
				},
			},
		},
		{
			UpdateSheetProperties: &sheets.UpdateSheetPropertiesRequest{
				Properties: &sheets.SheetProperties{
					SheetId: sheetID,
					GridProperties: &sheets.GridProperties{
						FrozenRowCount: 1,
					},
				},
				Fields: "gridProperties.frozenRowCount",
			},
		},
	}
}
