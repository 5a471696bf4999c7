package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func runCmd(t *testing.T, args ...string) string {
	t.Helper()
	legacy, skipNaN, outputPath, logPath = false, false, "", ""
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	require.NoError(t, cmd.Execute())
	return out.String()
}

func TestReplayPrintsValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sheet.csv")
	require.NoError(t, os.WriteFile(path, []byte("=B1*2,5\n=FOO(A1:B1),=SUM(A1:B1)\n"), 0644))

	out := runCmd(t, "replay", path)
	// A1 is evaluated before B1 exists and is picked up when B1 is written
	assert.Equal(t, "A1\t10\nB1\t5\nA2\tN/A\nB2\t15\n", out)
}

func TestReplayLegacyDoesNotCascade(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sheet.csv")
	require.NoError(t, os.WriteFile(path, []byte("=B1+1,=C1+1,1\n"), 0644))

	assert.Equal(t, "A1\t3\nB1\t2\nC1\t1\n", runCmd(t, "replay", path))
	assert.Equal(t, "A1\t2\nB1\t2\nC1\t1\n", runCmd(t, "replay", "--legacy", path))
}

func TestReplayWritesXLSX(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "sheet.csv")
	out := filepath.Join(dir, "values.xlsx")
	require.NoError(t, os.WriteFile(in, []byte("2,3,=A1*B1\n"), 0644))

	assert.Empty(t, runCmd(t, "replay", in, "--output", out))

	f, err := excelize.OpenFile(out)
	require.NoError(t, err)
	defer f.Close()
	v, err := f.GetCellValue(f.GetSheetName(0), "C1")
	require.NoError(t, err)
	assert.Equal(t, "6", v)
}
