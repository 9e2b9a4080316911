package converter

import "github.com/nconklindev/sweeper/internal/types"

// SelectColumns returns a new table holding only the named columns, kept in
// their original order. The order of names is not significant. An unknown
// name fails with *UnknownColumnError and t is not modified.
func SelectColumns(t *types.Table, names []string) (*types.Table, error) {
	want := make(map[string]bool, len(names))
	for _, name := range names {
		if t.Index(name) == -1 {
			return nil, &UnknownColumnError{Name: name}
		}
		want[name] = true
	}

	var keep []int
	out := &types.Table{}
	for i, c := range t.Columns {
		if want[c.Name] {
			keep = append(keep, i)
			out.Columns = append(out.Columns, c)
		}
	}

	out.Rows = make([][]types.Cell, len(t.Rows))
	for r, row := range t.Rows {
		projected := make([]types.Cell, len(keep))
		for j, i := range keep {
			projected[j] = row[i]
		}
		out.Rows[r] = projected
	}

	return out, nil
}
