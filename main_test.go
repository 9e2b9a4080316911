package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/nconklindev/sweeper/internal/converter"
	"github.com/nconklindev/sweeper/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return out.String(), err
}

func TestFormatsCommand(t *testing.T) {
	out, err := execute(t, "formats")
	require.NoError(t, err)

	assert.Contains(t, out, ".csv")
	assert.Contains(t, out, ".xlsx")
	assert.Contains(t, out, "text/csv")
}

func TestConvertCommand(t *testing.T) {
	dir := t.TempDir()
	outDir := filepath.Join(dir, "converted")
	a := filepath.Join(dir, "a.csv")
	b := filepath.Join(dir, "b.csv")
	require.NoError(t, os.WriteFile(a, []byte("id,score\n1,10\n2,\n1,10\n"), 0o644))
	require.NoError(t, os.WriteFile(b, []byte("id,name\n1,x\n"), 0o644))

	out, err := execute(t, "convert", "--to", "excel", "--dedupe", "--fill", "--out", outDir, a, b)
	require.NoError(t, err)
	assert.Contains(t, out, "a.xlsx")
	assert.Contains(t, out, "b.xlsx")

	data, err := os.ReadFile(filepath.Join(outDir, "a.xlsx"))
	require.NoError(t, err)
	table, err := converter.ReadTable(types.FormatExcel, data)
	require.NoError(t, err)
	assert.Equal(t, 2, table.NumRows())
	assert.Equal(t, types.Number(10), table.Rows[1][1])
}

func TestConvertCommand_Columns(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.csv")
	require.NoError(t, os.WriteFile(in, []byte("a,b,c\n1,2,3\n"), 0o644))

	_, err := execute(t, "convert", "--columns", "c,a", in)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "in_converted.csv"))
	require.NoError(t, err)
	assert.Equal(t, "a,c\n1,3\n", string(data))
}

func TestConvertCommand_PartialFailure(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.csv")
	bad := filepath.Join(dir, "bad.csv")
	require.NoError(t, os.WriteFile(good, []byte("v\n1\n"), 0o644))
	require.NoError(t, os.WriteFile(bad, []byte("v,v\n1,2\n"), 0o644))

	out, err := execute(t, "convert", "--to", "excel", good, bad, filepath.Join(dir, "missing.csv"))
	assert.EqualError(t, err, "2 of 3 file(s) failed")
	assert.Contains(t, out, "duplicate column names")

	_, statErr := os.Stat(filepath.Join(dir, "good.xlsx"))
	assert.NoError(t, statErr)
}

func TestConvertCommand_BadTarget(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.csv")
	require.NoError(t, os.WriteFile(in, []byte("v\n1\n"), 0o644))

	_, err := execute(t, "convert", "--to", "pdf", in)
	assert.ErrorContains(t, err, "unknown format")
}

func TestInspectCommand(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "people.csv")
	require.NoError(t, os.WriteFile(in, []byte("name,age\nAda,36\nAlan,41\n"), 0o644))

	out, err := execute(t, "inspect", "--rows", "1", in)
	require.NoError(t, err)

	assert.Contains(t, out, "people.csv")
	assert.Contains(t, out, "Rows:   2")
	assert.Contains(t, out, "Numeric columns: age")
	assert.Contains(t, out, "Ada")
	assert.NotContains(t, out, "Alan")
}
