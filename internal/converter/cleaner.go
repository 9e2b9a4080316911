package converter

import (
	"math"
	"strconv"
	"strings"

	"github.com/nconklindev/sweeper/internal/types"
)

// Clean returns a cleaned copy of t; t itself is left untouched.
//
// Duplicates are removed before the mean-fill unless choice.FillFirst is
// set, so repeated rows do not weigh on the mean. Rows that the fill makes
// identical are collapsed afterwards, which keeps Clean idempotent.
func Clean(t *types.Table, choice types.CleaningChoice) *types.Table {
	out := t.Clone()

	switch {
	case choice.RemoveDuplicates && choice.FillMissingNumeric && choice.FillFirst:
		FillMissingNumeric(out)
		RemoveDuplicates(out)
	case choice.RemoveDuplicates && choice.FillMissingNumeric:
		RemoveDuplicates(out)
		if FillMissingNumeric(out) > 0 {
			RemoveDuplicates(out)
		}
	case choice.RemoveDuplicates:
		RemoveDuplicates(out)
	case choice.FillMissingNumeric:
		FillMissingNumeric(out)
	}

	return out
}

// RemoveDuplicates drops every row whose cells all equal an earlier row's,
// keeping first occurrences in order. It returns the number of rows dropped.
func RemoveDuplicates(t *types.Table) int {
	seen := make(map[string]bool, len(t.Rows))
	kept := t.Rows[:0]

	for _, row := range t.Rows {
		key := rowKey(row)
		if seen[key] {
			continue
		}
		seen[key] = true
		kept = append(kept, row)
	}

	dropped := len(t.Rows) - len(kept)
	// Clear the tail so dropped rows can be collected.
	for i := len(kept); i < len(t.Rows); i++ {
		t.Rows[i] = nil
	}
	t.Rows = kept
	return dropped
}

// FillMissingNumeric replaces missing cells in numeric columns with the
// column's mean over present values. Columns without any present value stay
// missing. It returns the number of cells filled.
func FillMissingNumeric(t *types.Table) int {
	filled := 0

	for col, c := range t.Columns {
		if c.Kind != types.KindNumeric {
			continue
		}

		avg, ok := columnMean(t.Rows, col)
		if !ok {
			continue
		}

		mean := types.Number(avg)
		for _, row := range t.Rows {
			if row[col].IsMissing() {
				row[col] = mean
				filled++
			}
		}
	}

	return filled
}

// columnMean averages the present numbers of a column. A sum that overflows
// falls back to a scaled running mean, which stays finite for finite input.
func columnMean(rows [][]types.Cell, col int) (float64, bool) {
	var sum float64
	var count int
	for _, row := range rows {
		if row[col].Type == types.CellNumber {
			sum += row[col].Num
			count++
		}
	}
	if count == 0 {
		return 0, false
	}
	if !math.IsInf(sum, 0) {
		return sum / float64(count), true
	}

	var mean float64
	n := 0
	for _, row := range rows {
		if row[col].Type == types.CellNumber {
			n++
			mean = mean - mean/float64(n) + row[col].Num/float64(n)
		}
	}
	return mean, true
}

// rowKey encodes a row so that two rows share a key exactly when every cell
// compares equal.
func rowKey(row []types.Cell) string {
	var b strings.Builder
	for _, c := range row {
		switch c.Type {
		case types.CellMissing:
			b.WriteString("m")
		case types.CellNumber:
			v := c.Num
			if v == 0 {
				v = 0 // fold -0 into 0
			}
			b.WriteString("n")
			b.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
		case types.CellText:
			b.WriteString("s")
			b.WriteString(strconv.Quote(c.Str))
		case types.CellBool:
			b.WriteString("b")
			b.WriteString(strconv.FormatBool(c.Bool))
		}
		b.WriteByte(';')
	}
	return b.String()
}
