package types

import (
	"math"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"csv", FormatCSV, false},
		{"CSV", FormatCSV, false},
		{".csv", FormatCSV, false},
		{"excel", FormatExcel, false},
		{" xlsx ", FormatExcel, false},
		{".XLSX", FormatExcel, false},
		{"xls", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "CSV", FormatCSV.String())
	assert.Equal(t, "Excel", FormatExcel.String())
	assert.Equal(t, "Format(7)", Format(7).String())

	assert.Equal(t, ".csv", FormatCSV.Ext())
	assert.Equal(t, ".xlsx", FormatExcel.Ext())
	assert.Equal(t, "text/csv", FormatCSV.MediaType())
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "numeric", KindNumeric.String())
	assert.Equal(t, "text", KindText.String())
	assert.Equal(t, "other", KindOther.String())
}

func TestCell(t *testing.T) {
	var zero Cell
	assert.True(t, zero.IsMissing())
	assert.True(t, Missing().Equal(zero))

	assert.True(t, Number(0).Equal(Number(math.Copysign(0, -1))))
	assert.False(t, Number(1).Equal(Text("1")))
	assert.False(t, Text("a").Equal(Text("b")))
	assert.False(t, Boolean(true).Equal(Boolean(false)))
	assert.False(t, Number(math.NaN()).Equal(Number(math.NaN())))

	assert.Equal(t, "", Missing().String())
	assert.Equal(t, "10.5", Number(10.5).String())
	assert.Equal(t, "123456789012", Number(123456789012).String())
	assert.Equal(t, "TRUE", Boolean(true).String())
	assert.Equal(t, "FALSE", Boolean(false).String())
	assert.Equal(t, "hi", Text("hi").String())
}

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0"},
		{-2.5, "-2.5"},
		{0.0001, "0.0001"},
		{123456789012, "123456789012"},
		{0.00001, "1e-05"},
		{1e-300, "1e-300"},
		{-1e-300, "-1e-300"},
		{1e21, "1e+21"},
		{1.25e308, "1.25e+308"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			got := FormatNumber(tt.in)
			assert.Equal(t, tt.want, got)

			back, err := strconv.ParseFloat(got, 64)
			require.NoError(t, err)
			assert.Equal(t, tt.in, back)
		})
	}
}

func sample() *Table {
	return &Table{
		Columns: []Column{
			{Name: "id", Kind: KindNumeric},
			{Name: "name", Kind: KindText},
			{Name: "score", Kind: KindNumeric},
		},
		Rows: [][]Cell{
			{Number(1), Text("a"), Number(10)},
			{Number(2), Missing(), Missing()},
			{Number(3), Text("c"), Number(30)},
		},
	}
}

func TestTable(t *testing.T) {
	table := sample()

	assert.Equal(t, []string{"id", "name", "score"}, table.ColumnNames())
	assert.Equal(t, 2, table.Index("score"))
	assert.Equal(t, -1, table.Index("nope"))
	assert.Equal(t, 3, table.NumRows())
	assert.Equal(t, []string{"id", "score"}, table.NumericColumns())

	assert.Len(t, table.Head(2), 2)
	assert.Len(t, table.Head(10), 3)
	assert.Len(t, table.Head(-1), 3)
	assert.Empty(t, table.Head(0))
}

func TestTable_CloneIsIndependent(t *testing.T) {
	table := sample()
	clone := table.Clone()
	require.True(t, table.Equal(clone))

	clone.Rows[0][0] = Number(99)
	clone.Columns[1].Kind = KindOther

	assert.Equal(t, Number(1), table.Rows[0][0])
	assert.Equal(t, KindText, table.Columns[1].Kind)
	assert.False(t, table.Equal(clone))
}

func TestTable_Equal(t *testing.T) {
	a := sample()

	b := sample()
	b.Columns[2].Kind = KindOther
	assert.False(t, a.Equal(b), "kinds differ")

	c := sample()
	c.Rows = c.Rows[:2]
	assert.False(t, a.Equal(c), "row counts differ")

	d := sample()
	d.Rows[1][2] = Number(0)
	assert.False(t, a.Equal(d), "missing is not zero")
}

func TestFileInfo(t *testing.T) {
	info := &FileInfo{Name: "a.csv", Table: sample()}

	assert.Equal(t, []string{"id", "name", "score"}, info.ColumnNames())
	assert.Equal(t, 3, info.RowCount())
}
