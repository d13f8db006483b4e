package sheet

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"datefilter/internal/apperr"
)

// buildWorkbook writes rows to Sheet1 of a fresh workbook.
func buildWorkbook(t *testing.T, rows [][]interface{}) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &rows[i]))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

func TestIngestExcelScenario(t *testing.T) {
	buf := buildWorkbook(t, [][]interface{}{
		{"Name", "Due"},
		{"A", "01-02-2025"},
		{"B", "15-03-2025"},
	})

	ds, err := NewIngestor(Options{}, nil).Ingest(buf, "tasks.xlsx", int64(buf.Len()))
	require.NoError(t, err)

	assert.Equal(t, 2, ds.Len())
	assert.Equal(t, []string{"Name", "Due", ExtractedDateColumn}, ds.Columns)
	assert.Equal(t, "Sheet1", ds.Sheet)
	assert.Equal(t, "tasks.xlsx", ds.FileName)
	assert.Equal(t, "01-02-2025", ds.Rows[0].Value(ExtractedDateColumn))
	assert.Equal(t, "15-03-2025", ds.Rows[1].Value(ExtractedDateColumn))
	assert.False(t, ds.LoadedAt.IsZero())
}

func TestIngestCoercesDateCells(t *testing.T) {
	buf := buildWorkbook(t, [][]interface{}{
		{"Item", "Shipped", "Qty"},
		{"Widget", time.Date(2025, time.January, 2, 14, 30, 0, 0, time.UTC), 3},
	})

	ds, err := NewIngestor(Options{}, nil).Ingest(buf, "ship.xlsx", 0)
	require.NoError(t, err)

	row := ds.Rows[0]
	assert.Equal(t, "02-01-2025", row.Value("Shipped"))
	assert.Equal(t, "3", row.Value("Qty"))
	assert.Equal(t, "02-01-2025", row.Value(ExtractedDateColumn))
}

func TestIngestCustomDateFormat(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	custom := "yyyy/mm/dd"
	style, err := f.NewStyle(&excelize.Style{CustomNumFmt: &custom})
	require.NoError(t, err)
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]interface{}{"Name", "When"}))
	require.NoError(t, f.SetCellValue("Sheet1", "A2", "C"))
	require.NoError(t, f.SetCellValue("Sheet1", "B2", 45689)) // 2025-02-01
	require.NoError(t, f.SetCellStyle("Sheet1", "B2", "B2", style))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	ds, err := NewIngestor(Options{}, nil).Ingest(buf, "custom.xlsx", 0)
	require.NoError(t, err)
	assert.Equal(t, "01-02-2025", ds.Rows[0].Value("When"))
}

func TestIngestUsesFirstSheetOnly(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]interface{}{"Name"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]interface{}{"first"}))
	_, err := f.NewSheet("Other")
	require.NoError(t, err)
	require.NoError(t, f.SetSheetRow("Other", "A1", &[]interface{}{"Ignored"}))
	require.NoError(t, f.SetSheetRow("Other", "A2", &[]interface{}{"x"}))
	require.NoError(t, f.SetSheetRow("Other", "A3", &[]interface{}{"y"}))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	ds, err := NewIngestor(Options{}, nil).Ingest(buf, "multi.xlsx", 0)
	require.NoError(t, err)
	assert.Equal(t, 1, ds.Len())
	assert.Equal(t, []string{"Name"}, ds.Columns)
	assert.Equal(t, "first", ds.Rows[0].Value("Name"))
}

func TestIngestEmptySheet(t *testing.T) {
	tests := []struct {
		name string
		rows [][]interface{}
	}{
		{"no rows", nil},
		{"header only", [][]interface{}{{"Name", "Due"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := buildWorkbook(t, tt.rows)
			ds, err := NewIngestor(Options{}, nil).Ingest(buf, "empty.xlsx", 0)
			assert.Nil(t, ds)
			assert.ErrorIs(t, err, ErrEmptySheet)
			assert.Equal(t, "The Excel file appears to be empty.", apperr.UserMessage(err))
		})
	}
}

func TestIngestDecodeError(t *testing.T) {
	ds, err := NewIngestor(Options{}, nil).Ingest(strings.NewReader("definitely not a workbook"), "broken.xlsx", 0)

	assert.Nil(t, ds)
	require.Error(t, err)
	assert.Equal(t, apperr.CodeDecodeError, apperr.GetCode(err))
	assert.True(t, strings.HasPrefix(err.Error(), "Error processing the file: "))
}

func TestIngestCSV(t *testing.T) {
	input := "\ufeffName,Due,Note\nA,01-02-2025,\n,,\nB,15-03-2025,late 02/04/2025 pm\nC\n"

	ds, err := NewIngestor(Options{}, nil).Ingest(strings.NewReader(input), "tasks.CSV", int64(len(input)))
	require.NoError(t, err)

	assert.Equal(t, 3, ds.Len(), "blank rows are skipped")
	assert.Equal(t, []string{"Name", "Due", ExtractedDateColumn}, ds.Columns)
	assert.Equal(t, "", ds.Sheet)

	c := ds.Rows[2]
	assert.Equal(t, []string{"Name"}, c.Keys(), "missing cells create no key")
	assert.Equal(t, "", c.Value("Due"))
}

func TestIngestCSVDecodeError(t *testing.T) {
	_, err := NewIngestor(Options{}, nil).Ingest(strings.NewReader("a,\"b\nc"), "bad.csv", 0)
	assert.Equal(t, apperr.CodeDecodeError, apperr.GetCode(err))
}

func TestIngestMaxRows(t *testing.T) {
	input := "Name\na\nb\nc\n"

	_, err := NewIngestor(Options{MaxRows: 2}, nil).Ingest(strings.NewReader(input), "big.csv", 0)
	assert.Equal(t, apperr.CodeInvalidInput, apperr.GetCode(err))
	assert.Contains(t, err.Error(), "Too many rows")

	ds, err := NewIngestor(Options{MaxRows: 3}, nil).Ingest(strings.NewReader(input), "big.csv", 0)
	require.NoError(t, err)
	assert.Equal(t, 3, ds.Len())
}

func TestIngestFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "list.csv")
	require.NoError(t, os.WriteFile(path, []byte("Name,When\nX,09/09/2029\n"), 0o600))

	ds, err := NewIngestor(Options{}, nil).IngestFile(path)
	require.NoError(t, err)
	assert.Equal(t, "list.csv", ds.FileName)
	assert.Equal(t, int64(23), ds.FileSize)
	assert.Equal(t, "09/09/2029", ds.Rows[0].Value(ExtractedDateColumn))

	_, err = NewIngestor(Options{}, nil).IngestFile(filepath.Join(t.TempDir(), "missing.xlsx"))
	assert.Error(t, err)
}

func TestNormalizeHeaders(t *testing.T) {
	got := normalizeHeaders([]string{" Name ", "", "Name", "Name_1", "Name", " "}, 7)

	assert.Equal(t, []string{" Name ", "Column_2", "Name", "Name_1", "Name_2", " ", "Column_7"}, got)
}
