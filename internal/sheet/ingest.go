package sheet

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"datefilter/internal/apperr"
	"datefilter/internal/logger"
)

// ErrEmptySheet is returned when the first sheet has no data rows.
var ErrEmptySheet = apperr.New(apperr.CodeEmptySheet, "The Excel file appears to be empty.")

// Options bounds what an ingestion accepts
type Options struct {
	MaxRows int // 0 = unlimited
}

// Ingestor decodes uploaded spreadsheets into Datasets
type Ingestor struct {
	opts Options
	log  *logger.Logger
	now  func() time.Time
}

// NewIngestor creates an ingestor; a nil logger discards output
func NewIngestor(opts Options, log *logger.Logger) *Ingestor {
	if log == nil {
		log = logger.Discard()
	}
	return &Ingestor{
		opts: opts,
		log:  log.WithComponent("sheet"),
		now:  time.Now,
	}
}

// Ingest decodes r as the file called name. Files ending in .csv are read
// as CSV, .xls as a legacy BIFF workbook and everything else as an Excel
// workbook. Only the first sheet of a workbook is used. The returned Dataset is new; callers install it only
// when err is nil.
func (in *Ingestor) Ingest(r io.Reader, name string, size int64) (*Dataset, error) {
	start := in.now()

	var (
		grid      [][]string
		sheetName string
		err       error
	)
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv":
		grid, err = readCSV(r)
	case ".xls":
		grid, sheetName, err = readXLS(r)
	default:
		grid, sheetName, err = readExcel(r)
	}
	if err != nil {
		in.log.Warnf("failed to decode %s: %v", name, err)
		return nil, err
	}

	ds, err := in.buildDataset(grid)
	if err != nil {
		in.log.Warnf("rejected %s: %v", name, err)
		return nil, err
	}
	ds.FileName = name
	ds.FileSize = size
	ds.Sheet = sheetName
	ds.LoadedAt = in.now()

	in.log.Infof("ingested %s (%d columns, %d rows) in %.2fms",
		name, len(ds.Columns), ds.Len(), float64(ds.LoadedAt.Sub(start).Nanoseconds())/1e6)
	return ds, nil
}

// IngestFile opens path and ingests it
func (in *Ingestor) IngestFile(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperr.Wrapf(err, "failed to open %s", path)
	}
	defer f.Close()

	var size int64
	if info, err := f.Stat(); err == nil {
		size = info.Size()
	}
	return in.Ingest(f, filepath.Base(path), size)
}

func (in *Ingestor) buildDataset(grid [][]string) (*Dataset, error) {
	if len(grid) == 0 {
		return nil, ErrEmptySheet
	}

	width := 0
	for _, rec := range grid {
		width = max(width, len(rec))
	}
	headers := normalizeHeaders(grid[0], width)

	var rows []Row
	dated := 0
	for _, rec := range grid[1:] {
		if isBlank(rec) {
			continue
		}
		row := Row{fields: make([]Field, 0, len(rec))}
		for j, cell := range rec {
			if cell == "" {
				continue
			}
			row.fields = append(row.fields, Field{Name: headers[j], Value: cell})
		}
		if annotateDate(&row) {
			dated++
		}
		rows = append(rows, row)
	}

	if len(rows) == 0 {
		return nil, ErrEmptySheet
	}
	if in.opts.MaxRows > 0 && len(rows) > in.opts.MaxRows {
		return nil, apperr.InvalidInput(fmt.Sprintf("Too many rows (> %d)", in.opts.MaxRows))
	}

	in.log.Debugf("detected dates in %d of %d rows", dated, len(rows))
	return NewDataset(rows), nil
}

func readCSV(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, apperr.DecodeError(err)
	}
	if len(rows) > 0 && len(rows[0]) > 0 {
		rows[0][0] = strings.TrimPrefix(rows[0][0], "\ufeff")
	}
	return rows, nil
}

func readExcel(r io.Reader) ([][]string, string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, "", apperr.DecodeError(err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, "", ErrEmptySheet
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, "", apperr.DecodeError(err)
	}
	raw, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, "", apperr.DecodeError(err)
	}

	date1904 := false
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		date1904 = *props.Date1904
	}

	for i := range rows {
		if i >= len(raw) {
			break
		}
		for j := range rows[i] {
			if j >= len(raw[i]) || raw[i][j] == rows[i][j] {
				continue
			}
			if date, ok := dateCellValue(f, sheet, j+1, i+1, raw[i][j], date1904); ok {
				rows[i][j] = date
			}
		}
	}
	return rows, sheet, nil
}

// dateCellValue renders a numeric cell whose style is a date format as DD-MM-YYYY.
func dateCellValue(f *excelize.File, sheet string, col, row int, raw string, date1904 bool) (string, bool) {
	serial, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return "", false
	}
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return "", false
	}
	styleID, err := f.GetCellStyle(sheet, cell)
	if err != nil || styleID == 0 {
		return "", false
	}
	style, err := f.GetStyle(styleID)
	if err != nil || !isDateFormat(style.NumFmt, style.CustomNumFmt) {
		return "", false
	}
	t, err := excelize.ExcelDateToTime(serial, date1904)
	if err != nil {
		return "", false
	}
	return t.Format(DisplayDateLayout), true
}

// normalizeHeaders keeps header text as written, names empty or missing
// cells Column_N and suffixes duplicates with _1, _2, ...
func normalizeHeaders(raw []string, width int) []string {
	headers := make([]string, width)
	used := make(map[string]bool, width)
	for i := range headers {
		h := ""
		if i < len(raw) {
			h = raw[i]
		}
		if h == "" {
			h = fmt.Sprintf("Column_%d", i+1)
		}
		name := h
		for n := 1; used[name]; n++ {
			name = fmt.Sprintf("%s_%d", h, n)
		}
		used[name] = true
		headers[i] = name
	}
	return headers
}

func isBlank(rec []string) bool {
	for _, cell := range rec {
		if cell != "" {
			return false
		}
	}
	return true
}
