package parser

import (
	"errors"
	"testing"

	"fw-transfer/internal/model"

	"github.com/xuri/excelize/v2"
)

func TestParseVariableSheetSkipsIncompleteRows(t *testing.T) {
	const sheet = "IP set variables Prod"
	f := excelize.NewFile()
	if _, err := f.NewSheet(sheet); err != nil {
		t.Fatalf("failed to create sheet: %v", err)
	}
	rows := [][]any{
		{"No", "Variable", "IP"},
		{1, "WEB", "10.0.0.1\n10.0.0.2"},
		{2, "", "10.0.0.9"},
		{3, "DB", ""},
		{4, " APP ", "10.0.1.0/24"},
	}
	for i, row := range rows {
		row := row
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatalf("failed to write row: %v", err)
		}
	}

	defs, err := ParseVariableSheet(f, sheet)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(defs) != 2 {
		t.Fatalf("expected 2 definitions, got %#v", defs)
	}
	if defs[0].Name != "WEB" || defs[0].Addresses != "10.0.0.1\n10.0.0.2" {
		t.Fatalf("unexpected first definition %#v", defs[0])
	}
	if defs[1].Name != "APP" {
		t.Fatalf("expected trimmed variable name, got %q", defs[1].Name)
	}
}

func TestParseVariableSheetMissing(t *testing.T) {
	_, err := ParseVariableSheet(excelize.NewFile(), "IP set variables NonProd")
	if !errors.Is(err, model.ErrMissingSheet) {
		t.Fatalf("expected ErrMissingSheet, got %v", err)
	}
}
