package sources

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeWorkbook(t *testing.T, sheet string, rows [][]string) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	if sheet != "Sheet1" {
		_, err := f.NewSheet(sheet)
		require.NoError(t, err)
	}
	for i, row := range rows {
		values := make([]interface{}, len(row))
		for j, v := range row {
			values[j] = v
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &values))
	}

	path := filepath.Join(t.TempDir(), "turnips.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestXLSXSource_Rows(t *testing.T) {
	path := writeWorkbook(t, "Sheet1", [][]string{
		{"Bob", "MyIsland", "100", "90", "85"},
		{},
		{"Alice", "Elsewhere", "95"},
	})

	rows, err := (&XLSXSource{Path: path}).Rows(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Bob", "MyIsland", "100", "90", "85"}, rows[0])
	assert.Empty(t, rows[1], "blank row between weeks is preserved")
	assert.Equal(t, []string{"Alice", "Elsewhere", "95"}, rows[2])
}

func TestXLSXSource_NamedSheet(t *testing.T) {
	path := writeWorkbook(t, "Week data", [][]string{{"Carol", "Isle", "110"}})

	src := &XLSXSource{Path: path, Sheet: "Week data"}
	rows, err := src.Rows(context.Background())
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"Carol", "Isle", "110"}}, rows)
	assert.Equal(t, path+"#Week data", src.Name())

	_, err = (&XLSXSource{Path: path, Sheet: "missing"}).Rows(context.Background())
	assert.Error(t, err)
}

func TestXLSXSource_MissingFile(t *testing.T) {
	_, err := (&XLSXSource{Path: filepath.Join(t.TempDir(), "nope.xlsx")}).Rows(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open workbook")
}

func TestCSVSource_Rows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "turnips.csv")
	content := "Bob,MyIsland,100,90\n,,,\nAlice,Elsewhere,95\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	rows, err := (&CSVSource{Path: path}).Rows(context.Background())
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"Bob", "MyIsland", "100", "90"},
		{"", "", "", ""},
		{"Alice", "Elsewhere", "95"},
	}, rows)
}

func TestSources_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for _, src := range []RowSource{
		&XLSXSource{Path: "x.xlsx"},
		&CSVSource{Path: "x.csv"},
		NewStaticSource("mem", nil),
	} {
		_, err := src.Rows(ctx)
		assert.ErrorIs(t, err, context.Canceled, src.Name())
	}
}

func TestStaticSource_CopiesRows(t *testing.T) {
	rows := [][]string{{"Bob", "Isle"}}
	src := NewStaticSource("", rows)
	rows[0][0] = "changed"

	got, err := src.Rows(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bob", got[0][0])
	assert.Equal(t, "static", src.Name())
}

func TestFromPath(t *testing.T) {
	tests := []struct {
		path     string
		expected RowSource
		wantErr  bool
	}{
		{"data/week.xlsx", &XLSXSource{Path: "data/week.xlsx", Sheet: "s"}, false},
		{"data/WEEK.XLSX", &XLSXSource{Path: "data/WEEK.XLSX", Sheet: "s"}, false},
		{"data/week.csv", &CSVSource{Path: "data/week.csv"}, false},
		{"data/week.ods", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			src, err := FromPath(tt.path, "s")
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnsupportedFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, src)
		})
	}
}
