package sheet

import (
	"bytes"
	"fmt"
	"io"
	"time"

	"github.com/extrame/xls"

	"datefilter/internal/apperr"
)

// readXLS decodes a legacy BIFF (.xls) workbook and returns the cells of
// its first sheet.
func readXLS(r io.Reader) (grid [][]string, sheetName string, err error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, "", apperr.DecodeError(err)
	}
	if err := checkCompoundFile(data); err != nil {
		return nil, "", apperr.DecodeError(err)
	}

	// the BIFF reader panics on truncated or malformed records
	defer func() {
		if p := recover(); p != nil {
			grid, sheetName, err = nil, "", apperr.DecodeError(fmt.Errorf("malformed xls: %v", p))
		}
	}()

	wb, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, "", apperr.DecodeError(err)
	}
	if wb == nil {
		return nil, "", apperr.DecodeError(fmt.Errorf("no workbook stream found"))
	}

	ws := wb.GetSheet(0)
	if ws == nil || ws.MaxRow == 0 {
		return nil, "", ErrEmptySheet
	}

	// ReadAllCells walks sheets in order; capping it at the first sheet's
	// row count keeps the other sheets out.
	grid = wb.ReadAllCells(int(ws.MaxRow) + 1)
	for _, rec := range grid {
		for j, cell := range rec {
			rec[j] = xlsCellValue(cell)
		}
	}
	return grid, ws.Name, nil
}

// xlsCellValue renders the RFC 3339 timestamps the BIFF reader produces
// for date-formatted cells as DD-MM-YYYY.
func xlsCellValue(v string) string {
	if len(v) < len("2006-01-02T15:04:05Z") {
		return v
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return v
	}
	return t.Format(DisplayDateLayout)
}
