package parser

import (
	"fmt"
	"strings"

	"fw-transfer/internal/model"

	"github.com/xuri/excelize/v2"
)

const (
	variableNameColumn = 1 // column B
	variableAddrColumn = 2 // column C
)

// ParseVariableSheet reads the IP set variables table. The first row is a
// header; a row only counts when both its name and address cells are filled.
func ParseVariableSheet(f *excelize.File, sheet string) ([]model.VariableDefinition, error) {
	if idx, err := f.GetSheetIndex(sheet); err != nil || idx == -1 {
		return nil, fmt.Errorf("%w: %q", model.ErrMissingSheet, sheet)
	}
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("could not read sheet %q: %w", sheet, err)
	}

	var defs []model.VariableDefinition
	for i, row := range rows {
		if i == 0 || len(row) <= variableAddrColumn {
			continue
		}
		name := strings.TrimSpace(row[variableNameColumn])
		addrs := row[variableAddrColumn]
		if name == "" || strings.TrimSpace(addrs) == "" {
			continue
		}
		defs = append(defs, model.VariableDefinition{Name: name, Addresses: addrs})
	}
	return defs, nil
}
