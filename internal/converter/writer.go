package converter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"math"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/nconklindev/sweeper/internal/types"

	"github.com/xuri/excelize/v2"
)

const xlsxSheetName = "Sheet1"

// WriteTable encodes t in the target format, with a header row and no index
// column.
func WriteTable(t *types.Table, format types.Format) ([]byte, error) {
	if len(t.Columns) == 0 {
		return nil, ErrUnwritableTable
	}
	if err := checkEncodable(t, format); err != nil {
		return nil, err
	}

	switch format {
	case types.FormatCSV:
		return writeCSV(t)
	case types.FormatExcel:
		return writeXLSX(t)
	default:
		return nil, &UnsupportedFormatError{Ext: format.String()}
	}
}

// SuggestedFileName swaps the extension of the original file's base name
// for the target format's.
func SuggestedFileName(original string, format types.Format) string {
	base := filepath.Base(original)
	if base == "." || base == string(filepath.Separator) {
		base = "converted"
	}
	return strings.TrimSuffix(base, filepath.Ext(base)) + format.Ext()
}

// checkEncodable rejects values that would not read back as the same cell.
func checkEncodable(t *types.Table, format types.Format) error {
	if format == types.FormatExcel {
		if len(t.Columns) > excelize.MaxColumns {
			return &EncodingError{Column: t.Columns[excelize.MaxColumns].Name, Row: -1, Reason: "too many columns for a worksheet"}
		}
		if len(t.Rows)+1 > excelize.TotalRows {
			return &EncodingError{Column: t.Columns[0].Name, Row: excelize.TotalRows - 1, Reason: "too many rows for a worksheet"}
		}
	}

	for _, c := range t.Columns {
		if strings.TrimSpace(c.Name) == "" {
			return &EncodingError{Column: c.Name, Row: -1, Reason: "blank column name"}
		}
		if format == types.FormatExcel && utf8.RuneCountInString(c.Name) > excelize.TotalCellChars {
			return &EncodingError{Column: c.Name, Row: -1, Reason: "text exceeds the cell size limit"}
		}
	}

	for r, row := range t.Rows {
		for i, cell := range row {
			switch cell.Type {
			case types.CellNumber:
				if math.IsNaN(cell.Num) || math.IsInf(cell.Num, 0) {
					return &EncodingError{Column: t.Columns[i].Name, Row: r, Reason: "number is not finite"}
				}
			case types.CellText:
				if cell.Str == "" {
					return &EncodingError{Column: t.Columns[i].Name, Row: r, Reason: "empty text would read back as missing"}
				}
				if format == types.FormatExcel && utf8.RuneCountInString(cell.Str) > excelize.TotalCellChars {
					return &EncodingError{Column: t.Columns[i].Name, Row: r, Reason: "text exceeds the cell size limit"}
				}
				if format == types.FormatCSV && strings.ContainsRune(cell.Str, '\r') {
					return &EncodingError{Column: t.Columns[i].Name, Row: r, Reason: "carriage returns do not survive csv quoting"}
				}
				if format == types.FormatExcel && !xmlSafe(cell.Str) {
					return &EncodingError{Column: t.Columns[i].Name, Row: r, Reason: "text contains characters a worksheet cannot store"}
				}
			}
		}
	}

	return nil
}

// xmlSafe reports whether s holds only characters allowed in XML 1.0.
func xmlSafe(s string) bool {
	for _, r := range s {
		switch {
		case r == '\t' || r == '\n' || r == '\r':
		case r < 0x20, r == 0xFFFE, r == 0xFFFF, r == utf8.RuneError:
			return false
		}
	}
	return true
}

func writeCSV(t *types.Table) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(t.ColumnNames()); err != nil {
		return nil, err
	}

	record := make([]string, len(t.Columns))
	for _, row := range t.Rows {
		// encoding/csv writes a lone empty field as a blank line, which
		// readers skip. Quote it so the row survives.
		if len(row) == 1 && row[0].IsMissing() {
			writer.Flush()
			buf.WriteString("\"\"\n")
			continue
		}

		for i, cell := range row {
			record[i] = cell.String()
		}
		if err := writer.Write(record); err != nil {
			return nil, err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeXLSX(t *types.Table) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	for i, name := range t.ColumnNames() {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellStr(xlsxSheetName, cell, name); err != nil {
			return nil, &EncodingError{Column: name, Row: -1, Reason: err.Error()}
		}
	}

	for r, row := range t.Rows {
		for i, c := range row {
			if c.IsMissing() {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(i+1, r+2)
			if err != nil {
				return nil, err
			}

			switch c.Type {
			case types.CellNumber:
				err = f.SetCellFloat(xlsxSheetName, cell, c.Num, -1, 64)
			case types.CellText:
				err = f.SetCellStr(xlsxSheetName, cell, c.Str)
			case types.CellBool:
				err = f.SetCellBool(xlsxSheetName, cell, c.Bool)
			}
			if err != nil {
				return nil, &EncodingError{Column: t.Columns[i].Name, Row: r, Reason: err.Error()}
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
