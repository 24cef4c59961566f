package parser

import (
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"fw-transfer/internal/model"

	"github.com/xuri/excelize/v2"
)

const (
	// SourceSheet is the request sheet in the AWS communication requirements workbook.
	SourceSheet = "Internal FW"
	// AccountIDCell holds the AWS account the requested rules belong to.
	AccountIDCell = "D20"

	headerColumn = 7 // column H
	headerMarker = "Action"
)

type SourceRecords struct {
	AccountID string
	Rows      []model.RawRequirementRow
}

// ParseSourceWorkbook reads the account identifier and the rows marked as
// additions from the request sheet.
func ParseSourceWorkbook(f *excelize.File, logger *slog.Logger) (*SourceRecords, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if idx, err := f.GetSheetIndex(SourceSheet); err != nil || idx == -1 {
		return nil, fmt.Errorf("%w: %q in source workbook", model.ErrMissingSheet, SourceSheet)
	}

	rawID, err := f.GetCellValue(SourceSheet, AccountIDCell, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("could not read %s!%s: %w", SourceSheet, AccountIDCell, err)
	}
	accountID, err := parseAccountID(rawID)
	if err != nil {
		return nil, fmt.Errorf("%s!%s: %w", SourceSheet, AccountIDCell, err)
	}

	rows, err := f.GetRows(SourceSheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("could not read sheet %q: %w", SourceSheet, err)
	}
	records, err := parseRequirementRows(rows)
	if err != nil {
		return nil, err
	}

	var kept []model.RawRequirementRow
	for i, r := range records {
		if r[model.ColAction] != model.AdditionMarker {
			continue
		}
		if r.Get(model.ColSourceIP) == "" || r.Get(model.ColDestinationIP) == "" || r.Get(model.ColProtocol) == "" {
			logger.Warn("Skipping incomplete addition row", "row_offset", i+1,
				"source", r.Get(model.ColSourceIP), "destination", r.Get(model.ColDestinationIP), "protocol", r.Get(model.ColProtocol))
			continue
		}
		kept = append(kept, r)
	}
	logger.Debug("Source rows extracted", "candidates", len(records), "additions", len(kept))

	return &SourceRecords{AccountID: accountID, Rows: kept}, nil
}

// parseAccountID coerces the account cell to an integer string, dropping any
// fractional part left over from numeric formatting.
func parseAccountID(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("%w: account identifier is empty", model.ErrMalformedCell)
	}
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return strconv.FormatInt(n, 10), nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return "", fmt.Errorf("%w: account identifier %q is not a number", model.ErrMalformedCell, raw)
	}
	// int64 conversion is undefined past this bound.
	if math.Abs(v) >= math.MaxInt64 {
		return "", fmt.Errorf("%w: account identifier %q is out of range", model.ErrMalformedCell, raw)
	}
	return strconv.FormatInt(int64(math.Trunc(v)), 10), nil
}

// findHeaderRow returns the index of the first row whose column H reads "Action".
func findHeaderRow(rows [][]string) (int, error) {
	for i, row := range rows {
		if len(row) > headerColumn && row[headerColumn] == headerMarker {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w: no row has %q in column H of %q", model.ErrHeaderNotFound, headerMarker, SourceSheet)
}

// parseRequirementRows keys every row after the header by trimmed column name.
func parseRequirementRows(rows [][]string) ([]model.RawRequirementRow, error) {
	headerIdx, err := findHeaderRow(rows)
	if err != nil {
		return nil, err
	}

	colMap := make(map[string]int)
	for i, colName := range rows[headerIdx] {
		colName = strings.TrimSpace(colName)
		if colName == "" {
			continue
		}
		if _, dup := colMap[colName]; !dup {
			colMap[colName] = i
		}
	}

	records := make([]model.RawRequirementRow, 0, len(rows)-headerIdx-1)
	for _, row := range rows[headerIdx+1:] {
		record := make(model.RawRequirementRow, len(colMap))
		for colName, index := range colMap {
			if index < len(row) {
				record[colName] = row[index]
			}
		}
		records = append(records, record)
	}
	return records, nil
}
