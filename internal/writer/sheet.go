package writer

import (
	"fmt"
	"log/slog"
	"strings"

	"fw-transfer/internal/model"

	"github.com/xuri/excelize/v2"
)

const (
	// HeaderRow is the 1-based row holding column titles in rule sheets.
	HeaderRow = 3
	// RecordColumns is the number of columns of a FinalRuleRecord.
	RecordColumns = 10

	// Width excelize reports for columns without an explicit width.
	defaultColWidth = 9.140625
)

type SheetWriter struct {
	f      *excelize.File
	logger *slog.Logger
}

func NewSheetWriter(f *excelize.File, logger *slog.Logger) *SheetWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &SheetWriter{f: f, logger: logger}
}

// Write replaces sheet with a fresh copy of template's header row followed by
// records, and places it directly after template.
func (w *SheetWriter) Write(template, sheet string, records []model.FinalRuleRecord) error {
	if idx, err := w.f.GetSheetIndex(template); err != nil || idx == -1 {
		return fmt.Errorf("%w: %q", model.ErrMissingSheet, template)
	}

	if err := w.f.DeleteSheet(sheet); err != nil {
		return fmt.Errorf("could not remove existing sheet %q: %w", sheet, err)
	}
	if _, err := w.f.NewSheet(sheet); err != nil {
		return fmt.Errorf("could not create sheet %q: %w", sheet, err)
	}

	cols, err := w.copyHeader(template, sheet)
	if err != nil {
		return err
	}

	for i, rec := range records {
		cell, _ := excelize.CoordinatesToCellName(1, HeaderRow+1+i)
		values := rec.Values()
		if err := w.f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("could not write rule %d: %w", rec.ItemNumber, err)
		}
	}

	if err := w.copyColWidths(template, sheet, cols); err != nil {
		return err
	}
	if err := w.placeAfter(template, sheet); err != nil {
		return err
	}

	w.logger.Debug("Rule sheet written", "sheet", sheet, "template", template, "rules", len(records))
	return nil
}

// copyHeader copies values and styles of the template header row and
// returns the number of columns it covered.
func (w *SheetWriter) copyHeader(template, sheet string) (int, error) {
	rows, err := w.f.GetRows(template, excelize.Options{RawCellValue: true})
	if err != nil {
		return 0, fmt.Errorf("could not read sheet %q: %w", template, err)
	}
	cols := RecordColumns
	if len(rows) >= HeaderRow && len(rows[HeaderRow-1]) > cols {
		cols = len(rows[HeaderRow-1])
	}

	for col := 1; col <= cols; col++ {
		cell, _ := excelize.CoordinatesToCellName(col, HeaderRow)
		value, err := w.f.GetCellValue(template, cell, excelize.Options{RawCellValue: true})
		if err != nil {
			return 0, fmt.Errorf("could not read header cell %s: %w", cell, err)
		}
		if value != "" {
			if err := w.f.SetCellValue(sheet, cell, value); err != nil {
				return 0, err
			}
		}
		styleID, err := w.f.GetCellStyle(template, cell)
		if err != nil {
			return 0, fmt.Errorf("could not read style of header cell %s: %w", cell, err)
		}
		if styleID != 0 {
			if err := w.f.SetCellStyle(sheet, cell, cell, styleID); err != nil {
				return 0, err
			}
		}
	}
	return cols, nil
}

func (w *SheetWriter) copyColWidths(template, sheet string, cols int) error {
	for col := 1; col <= cols; col++ {
		name, _ := excelize.ColumnNumberToName(col)
		width, err := w.f.GetColWidth(template, name)
		if err != nil {
			return fmt.Errorf("could not read width of column %s: %w", name, err)
		}
		if width == defaultColWidth {
			continue
		}
		if err := w.f.SetColWidth(sheet, name, name, width); err != nil {
			return err
		}
	}
	return nil
}

// placeAfter moves sheet so it directly follows template.
func (w *SheetWriter) placeAfter(template, sheet string) error {
	list := w.f.GetSheetList()
	for i, name := range list {
		if !strings.EqualFold(name, template) {
			continue
		}
		if i+1 >= len(list) || strings.EqualFold(list[i+1], sheet) {
			return nil
		}
		if err := w.f.MoveSheet(sheet, list[i+1]); err != nil {
			return fmt.Errorf("could not move sheet %q after %q: %w", sheet, template, err)
		}
		return nil
	}
	return fmt.Errorf("%w: %q", model.ErrMissingSheet, template)
}
