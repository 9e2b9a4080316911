package converter

import (
	"testing"

	"github.com/nconklindev/sweeper/internal/types"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func num(v float64) types.Cell { return types.Number(v) }
func txt(s string) types.Cell  { return types.Text(s) }

var missing = types.Missing()

// buildXLSX writes rows into the first sheet of a new workbook, letting
// excelize choose each cell's native type from the Go value.
func buildXLSX(t *testing.T, rows [][]any) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	for r, row := range rows {
		for c, v := range row {
			if v == nil {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue("Sheet1", cell, v))
		}
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func column(t *types.Table, name string) []types.Cell {
	i := t.Index(name)
	cells := make([]types.Cell, len(t.Rows))
	for r, row := range t.Rows {
		cells[r] = row[i]
	}
	return cells
}
