package converter

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/nconklindev/sweeper/internal/types"

	"github.com/xuri/excelize/v2"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ReadTable decodes an in-memory file of the given format into a Table.
func ReadTable(format types.Format, data []byte) (*types.Table, error) {
	if len(data) == 0 {
		return nil, ErrEmptyFile
	}

	switch format {
	case types.FormatCSV:
		return readCSV(data)
	case types.FormatExcel:
		return readXLSX(data)
	default:
		return nil, &UnsupportedFormatError{Ext: format.String()}
	}
}

func readCSV(data []byte) (*types.Table, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if !utf8.Valid(data) {
		return nil, &CorruptFileError{Err: errors.New("csv is not valid UTF-8")}
	}

	reader := csv.NewReader(bytes.NewReader(data))

	header, err := reader.Read()
	if err == io.EOF {
		return nil, ErrEmptyFile
	}
	if err != nil {
		return nil, csvError(err)
	}

	columns, err := headerColumns(header)
	if err != nil {
		return nil, err
	}

	var records [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, csvError(err)
		}
		records = append(records, record)
	}

	// A column is numeric only if every present value in it parses.
	numeric := make([]bool, len(columns))
	for i := range columns {
		numeric[i] = true
		for _, record := range records {
			if record[i] == "" {
				continue
			}
			if _, ok := parseNumber(record[i]); !ok {
				numeric[i] = false
				break
			}
		}
		if numeric[i] {
			columns[i].Kind = types.KindNumeric
		} else {
			columns[i].Kind = types.KindText
		}
	}

	rows := make([][]types.Cell, len(records))
	for r, record := range records {
		row := make([]types.Cell, len(columns))
		for i, field := range record {
			switch {
			case field == "":
				row[i] = types.Missing()
			case numeric[i]:
				v, _ := parseNumber(field)
				row[i] = types.Number(v)
			default:
				row[i] = types.Text(field)
			}
		}
		rows[r] = row
	}

	return &types.Table{Columns: columns, Rows: rows}, nil
}

func csvError(err error) error {
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		return &MalformedRowError{Line: pe.Line, Err: pe.Err}
	}
	return &CorruptFileError{Err: err}
}

func readXLSX(data []byte) (*types.Table, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, &CorruptFileError{Err: err}
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, &CorruptFileError{Err: errors.New("workbook has no worksheets")}
	}

	rows, err := f.GetRows(sheetName, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, &CorruptFileError{Err: err}
	}

	headerRowIdx := firstNonEmptyRow(rows)
	if headerRowIdx == -1 {
		return nil, ErrEmptyFile
	}

	// Cells right of the header still belong to a column.
	header := rows[headerRowIdx]
	for _, values := range rows[headerRowIdx+1:] {
		for len(header) < len(values) {
			header = append(header, "")
		}
	}

	columns, err := headerColumns(header)
	if err != nil {
		return nil, err
	}

	dataRows := rows[headerRowIdx+1:]
	table := &types.Table{Columns: columns, Rows: make([][]types.Cell, len(dataRows))}

	for r, values := range dataRows {
		row := make([]types.Cell, len(columns))
		for i := range columns {
			if i >= len(values) || values[i] == "" {
				continue
			}
			cellName, err := excelize.CoordinatesToCellName(i+1, headerRowIdx+r+2)
			if err != nil {
				return nil, &CorruptFileError{Err: err}
			}
			cellType, err := f.GetCellType(sheetName, cellName)
			if err != nil {
				return nil, &CorruptFileError{Err: err}
			}
			row[i] = xlsxCell(cellType, values[i])
		}
		table.Rows[r] = row
	}

	for i := range table.Columns {
		table.Columns[i].Kind = columnKind(table.Rows, i)
	}

	return table, nil
}

// xlsxCell converts a raw worksheet value using the cell's native type.
// Numbers written without an explicit type come back as CellTypeUnset.
func xlsxCell(cellType excelize.CellType, raw string) types.Cell {
	switch cellType {
	case excelize.CellTypeSharedString, excelize.CellTypeInlineString,
		excelize.CellTypeFormula, excelize.CellTypeError:
		return types.Text(raw)
	case excelize.CellTypeBool:
		return types.Boolean(raw == "1" || strings.EqualFold(raw, "true"))
	}
	if v, ok := parseNumber(raw); ok {
		return types.Number(v)
	}
	return types.Text(raw)
}

func columnKind(rows [][]types.Cell, col int) types.Kind {
	var numbers, texts, others int
	for _, row := range rows {
		switch row[col].Type {
		case types.CellNumber:
			numbers++
		case types.CellText:
			texts++
		case types.CellBool:
			others++
		}
	}

	switch {
	case texts == 0 && others == 0:
		return types.KindNumeric
	case numbers == 0 && others == 0:
		return types.KindText
	default:
		return types.KindOther
	}
}

// headerColumns names the columns of a header record. Blank names get the
// positional placeholder "Unnamed: <index>".
func headerColumns(header []string) ([]types.Column, error) {
	columns := make([]types.Column, len(header))
	seen := make(map[string]bool, len(header))
	var dupes []string

	for i, name := range header {
		if strings.TrimSpace(name) == "" {
			name = fmt.Sprintf("Unnamed: %d", i)
		}
		if seen[name] {
			dupes = append(dupes, name)
		}
		seen[name] = true
		columns[i] = types.Column{Name: name}
	}

	if len(dupes) > 0 {
		return nil, &DuplicateColumnsError{Names: dupes}
	}
	return columns, nil
}

// parseNumber accepts finite decimal numbers, allowing surrounding spaces.
func parseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" || strings.ContainsAny(s, "xX_") {
		return 0, false
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
