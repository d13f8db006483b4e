package sheet

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"datefilter/internal/apperr"
)

// testdata/tasks.xls is a BIFF8 workbook with two sheets. "Tasks" holds
// Name/Due/Paid where A's Paid is a date-formatted number (1 Feb 2025).
func readFixture(t *testing.T, name string) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	return data
}

func TestIngestXLS(t *testing.T) {
	ds, err := NewIngestor(Options{}, nil).IngestFile(filepath.Join("testdata", "tasks.xls"))
	require.NoError(t, err)

	assert.Equal(t, "Tasks", ds.Sheet, "only the first sheet is read")
	assert.Equal(t, []string{"Name", "Due", "Paid", ExtractedDateColumn}, ds.Columns)
	require.Equal(t, 2, ds.Len())

	a := ds.Rows[0]
	assert.Equal(t, "A", a.Value("Name"))
	assert.Equal(t, "01-02-2025", a.Value("Paid"), "date cells are rendered as DD-MM-YYYY")
	assert.Equal(t, "02-01-2025", a.Value(ExtractedDateColumn))

	b := ds.Rows[1]
	assert.Equal(t, "B", b.Value("Name"))
	assert.Equal(t, "on", b.Value(ExtractedDateColumn))
}

func TestIngestXLSUppercaseExtension(t *testing.T) {
	data := readFixture(t, "tasks.xls")

	ds, err := NewIngestor(Options{}, nil).Ingest(bytes.NewReader(data), "TASKS.XLS", int64(len(data)))
	require.NoError(t, err)
	assert.Equal(t, "TASKS.XLS", ds.FileName)
	assert.Equal(t, 2, ds.Len())
}

func TestIngestXLSDecodeError(t *testing.T) {
	ds, err := NewIngestor(Options{}, nil).Ingest(bytes.NewReader([]byte("not a workbook at all")), "old.xls", 0)

	assert.Nil(t, ds)
	assert.Equal(t, apperr.CodeDecodeError, apperr.GetCode(err))
}

func TestCheckCompoundFile(t *testing.T) {
	const fatOffset = 512 + 9*512

	corrupt := func(edit func(b []byte)) []byte {
		b := bytes.Clone(readFixture(t, "tasks.xls"))
		edit(b)
		return b
	}

	require.NoError(t, checkCompoundFile(readFixture(t, "tasks.xls")))

	cases := []struct {
		name string
		data []byte
	}{
		{"truncated", readFixture(t, "tasks.xls")[:100]},
		{"bad signature", corrupt(func(b []byte) { b[0] = 0 })},
		{"cyclic chain", corrupt(func(b []byte) {
			binary.LittleEndian.PutUint32(b[fatOffset+7*4:], 0)
		})},
		{"chain into a free sector", corrupt(func(b []byte) {
			binary.LittleEndian.PutUint32(b[fatOffset+3*4:], 0xFFFFFFFF)
		})},
		{"directory outside the table", corrupt(func(b []byte) {
			binary.LittleEndian.PutUint32(b[48:], 5000)
		})},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Error(t, checkCompoundFile(tc.data))

			_, err := NewIngestor(Options{}, nil).Ingest(bytes.NewReader(tc.data), "bad.xls", 0)
			assert.Equal(t, apperr.CodeDecodeError, apperr.GetCode(err))
		})
	}
}

func TestXLSCellValue(t *testing.T) {
	assert.Equal(t, "01-02-2025", xlsCellValue("2025-02-01T00:00:00Z"))
	assert.Equal(t, "plain text", xlsCellValue("plain text"))
	assert.Equal(t, "45689", xlsCellValue("45689"))
	assert.Equal(t, "2025-02-01T00:00:00 and more", xlsCellValue("2025-02-01T00:00:00 and more"))
}
