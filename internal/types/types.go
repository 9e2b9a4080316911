package types

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

type Format int

const (
	FormatCSV Format = iota
	FormatExcel
)

func (f Format) String() string {
	switch f {
	case FormatCSV:
		return "CSV"
	case FormatExcel:
		return "Excel"
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

// Ext returns the canonical file extension, including the leading dot.
func (f Format) Ext() string {
	if f == FormatExcel {
		return ".xlsx"
	}
	return ".csv"
}

func (f Format) MediaType() string {
	if f == FormatExcel {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv"
}

// ParseFormat accepts "csv", "excel" or "xlsx" in any case.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")) {
	case "csv":
		return FormatCSV, nil
	case "excel", "xlsx":
		return FormatExcel, nil
	}
	return 0, fmt.Errorf("unknown format %q (want csv or excel)", s)
}

// Kind is the element kind declared for a column when the file is read.
type Kind int

const (
	KindNumeric Kind = iota
	KindText
	KindOther
)

func (k Kind) String() string {
	switch k {
	case KindNumeric:
		return "numeric"
	case KindText:
		return "text"
	default:
		return "other"
	}
}

type CellType int

const (
	CellMissing CellType = iota
	CellNumber
	CellText
	CellBool
)

// Cell holds one typed value. The zero Cell is missing.
type Cell struct {
	Type CellType
	Num  float64
	Str  string
	Bool bool
}

func Missing() Cell {
	return Cell{}
}

func Number(v float64) Cell {
	return Cell{Type: CellNumber, Num: v}
}

func Text(s string) Cell {
	return Cell{Type: CellText, Str: s}
}

func Boolean(b bool) Cell {
	return Cell{Type: CellBool, Bool: b}
}

func (c Cell) IsMissing() bool { return c.Type == CellMissing }

func (c Cell) Equal(o Cell) bool {
	if c.Type != o.Type {
		return false
	}
	switch c.Type {
	case CellNumber:
		return c.Num == o.Num
	case CellText:
		return c.Str == o.Str
	case CellBool:
		return c.Bool == o.Bool
	}
	return true
}

// String renders the cell for display and for CSV output. Missing cells
// render as "".
func (c Cell) String() string {
	switch c.Type {
	case CellNumber:
		return FormatNumber(c.Num)
	case CellText:
		return c.Str
	case CellBool:
		if c.Bool {
			return "TRUE"
		}
		return "FALSE"
	}
	return ""
}

// FormatNumber writes the shortest text that parses back to v. Plain
// decimals are used for magnitudes in [1e-4, 1e21); anything smaller or
// larger takes an exponent.
func FormatNumber(v float64) string {
	if abs := math.Abs(v); abs != 0 && (abs < 1e-4 || abs >= 1e21) {
		return strconv.FormatFloat(v, 'g', -1, 64)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

type Column struct {
	Name string
	Kind Kind
}

// Table is one file's rows over ordered, uniquely named columns.
// Every row has exactly len(Columns) cells.
type Table struct {
	Columns []Column
	Rows    [][]Cell
}

func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// Index returns the position of the named column, or -1.
func (t *Table) Index(name string) int {
	for i, c := range t.Columns {
		if c.Name == name {
			return i
		}
	}
	return -1
}

func (t *Table) NumRows() int { return len(t.Rows) }

// NumericColumns returns the names of numeric columns in column order.
func (t *Table) NumericColumns() []string {
	var names []string
	for _, c := range t.Columns {
		if c.Kind == KindNumeric {
			names = append(names, c.Name)
		}
	}
	return names
}

// Head returns up to n leading rows. The rows are shared with t.
func (t *Table) Head(n int) [][]Cell {
	if n < 0 || n > len(t.Rows) {
		n = len(t.Rows)
	}
	return t.Rows[:n]
}

func (t *Table) Clone() *Table {
	out := &Table{
		Columns: append([]Column(nil), t.Columns...),
		Rows:    make([][]Cell, len(t.Rows)),
	}
	for i, row := range t.Rows {
		out.Rows[i] = append([]Cell{}, row...)
	}
	return out
}

// Equal reports whether both tables have the same columns, kinds and cells
// in the same order.
func (t *Table) Equal(o *Table) bool {
	if len(t.Columns) != len(o.Columns) || len(t.Rows) != len(o.Rows) {
		return false
	}
	for i := range t.Columns {
		if t.Columns[i] != o.Columns[i] {
			return false
		}
	}
	for i := range t.Rows {
		if len(t.Rows[i]) != len(o.Rows[i]) {
			return false
		}
		for j := range t.Rows[i] {
			if !t.Rows[i][j].Equal(o.Rows[i][j]) {
				return false
			}
		}
	}
	return true
}

type CleaningChoice struct {
	RemoveDuplicates   bool
	FillMissingNumeric bool
	// FillFirst runs the mean-fill before duplicate removal.
	FillFirst bool
}

type FileInfo struct {
	Name      string
	Format    Format
	SizeBytes int64
	Table     *Table
}

func (fi *FileInfo) ColumnNames() []string { return fi.Table.ColumnNames() }
func (fi *FileInfo) RowCount() int         { return fi.Table.NumRows() }

type ConversionResult struct {
	InputFile   string
	OutputFile  string
	FileName    string
	Format      Format
	MediaType   string
	Data        []byte
	Columns     []string
	RowsWritten int
}
