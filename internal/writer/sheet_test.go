package writer

import (
	"errors"
	"testing"
	"time"

	"fw-transfer/internal/engine"
	"fw-transfer/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const (
	templateSheet = "Rules Prod"
	newSheet      = "Rules Prod New"
)

var ruleHeader = []any{"項目", "sid", "履歴", "Action", "Protocol", "Flow Option", "Source IP", "Destination IP", "Destination Port", "Msg Option (AWS Account ID)"}

func newTargetWorkbook(t *testing.T) (*excelize.File, int) {
	t.Helper()
	f := excelize.NewFile()
	for _, name := range []string{templateSheet, newSheet, "IP set variables Prod"} {
		_, err := f.NewSheet(name)
		require.NoError(t, err)
	}
	header := ruleHeader
	require.NoError(t, f.SetSheetRow(templateSheet, "A3", &header))
	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	require.NoError(t, err)
	require.NoError(t, f.SetCellStyle(templateSheet, "A3", "J3", style))
	require.NoError(t, f.SetColWidth(templateSheet, "G", "H", 32))
	// A previous run left rows behind.
	require.NoError(t, f.SetCellValue(newSheet, "Z99", "stale"))
	return f, style
}

func sampleRecords(t *testing.T) []model.FinalRuleRecord {
	t.Helper()
	rules, err := engine.ExpandRules([]model.RawRequirementRow{{
		model.ColProtocol:      "TCP",
		model.ColSourceIP:      "[10.0.0.1]",
		model.ColDestinationIP: "[10.1.0.1]",
		model.ColPortNumber:    "443",
	}})
	require.NoError(t, err)
	return engine.NumberRules(rules, "123456789012", time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC), nil)
}

func TestSheetWriterWritesHeaderAndRecords(t *testing.T) {
	f, style := newTargetWorkbook(t)

	err := NewSheetWriter(f, nil).Write(templateSheet, newSheet, sampleRecords(t))
	require.NoError(t, err)

	assert.Equal(t, []string{"Sheet1", templateSheet, newSheet, "IP set variables Prod"}, f.GetSheetList())

	stale, err := f.GetCellValue(newSheet, "Z99")
	require.NoError(t, err)
	assert.Empty(t, stale)

	header, err := f.GetCellValue(newSheet, "J3")
	require.NoError(t, err)
	assert.Equal(t, "Msg Option (AWS Account ID)", header)
	gotStyle, err := f.GetCellStyle(newSheet, "A3")
	require.NoError(t, err)
	assert.Equal(t, style, gotStyle)

	rows, err := f.GetRows(newSheet)
	require.NoError(t, err)
	require.Len(t, rows, 5)
	assert.Equal(t, []string{"1", "1000001", "2025/02/X追加", "alert", "tcp", "flow:to_server, established;", "[10.0.0.1]", "[10.1.0.1]", "443", `"123456789012"`}, rows[3])
	assert.Equal(t, "pass", rows[4][3])
	assert.Equal(t, "1000002", rows[4][1])

	width, err := f.GetColWidth(newSheet, "G")
	require.NoError(t, err)
	assert.Equal(t, 32.0, width)
	width, err = f.GetColWidth(newSheet, "A")
	require.NoError(t, err)
	assert.Equal(t, defaultColWidth, width)
}

func TestSheetWriterAppendsWhenTemplateIsLast(t *testing.T) {
	f := excelize.NewFile()
	_, err := f.NewSheet(templateSheet)
	require.NoError(t, err)

	require.NoError(t, NewSheetWriter(f, nil).Write(templateSheet, newSheet, sampleRecords(t)))
	assert.Equal(t, []string{"Sheet1", templateSheet, newSheet}, f.GetSheetList())
}

func TestSheetWriterRerunReplacesSheet(t *testing.T) {
	f, _ := newTargetWorkbook(t)
	w := NewSheetWriter(f, nil)
	require.NoError(t, w.Write(templateSheet, newSheet, sampleRecords(t)))
	require.NoError(t, w.Write(templateSheet, newSheet, sampleRecords(t)[:1]))

	rows, err := f.GetRows(newSheet)
	require.NoError(t, err)
	assert.Len(t, rows, 4)
	assert.Len(t, f.GetSheetList(), 4)
}

func TestSheetWriterMissingTemplate(t *testing.T) {
	err := NewSheetWriter(excelize.NewFile(), nil).Write(templateSheet, newSheet, nil)
	assert.True(t, errors.Is(err, model.ErrMissingSheet), "got %v", err)
}
