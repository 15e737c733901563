package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/weiihann/seqbench/workload"
)

func execute(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()

	var out, errOut bytes.Buffer
	root := newRootCmd(&out, zap.NewNop())
	root.SetErr(&errOut)
	root.SetArgs(args)

	err = root.Execute()

	return out.String(), errOut.String(), err
}

// records splits CSV output into lines of fields.
func records(out string) [][]string {
	var rows [][]string
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		if line != "" {
			rows = append(rows, strings.Split(line, ","))
		}
	}
	return rows
}

func TestRunFlagDefaults(t *testing.T) {
	root := newRootCmd(&bytes.Buffer{}, zap.NewNop())
	cmd, _, err := root.Find([]string{"run"})
	require.NoError(t, err)

	defaults := map[string]string{
		"seed":     "0",
		"start":    "0",
		"insert":   "10000",
		"groups":   "10",
		"reps":     "1",
		"gauge":    "16",
		"tag":      "None",
		"taghead":  "Tag",
		"nohead":   "false",
		"save-mem": "false",
	}
	for name, want := range defaults {
		f := cmd.Flags().Lookup(name)
		require.NotNil(t, f, name)
		assert.Equal(t, want, f.DefValue, name)
	}
}

func TestRunShorthands(t *testing.T) {
	root := newRootCmd(&bytes.Buffer{}, zap.NewNop())
	cmd, _, err := root.Find([]string{"run"})
	require.NoError(t, err)

	shorthands := map[string]string{
		"s": "start",
		"i": "insert",
		"g": "groups",
		"r": "reps",
		"m": "multi",
		"z": "raz",
		"Z": "graz",
		"R": "mraz",
	}
	for short, name := range shorthands {
		f := cmd.Flags().ShorthandLookup(short)
		require.NotNil(t, f, short)
		assert.Equal(t, name, f.Name)
	}
}

func TestRunWritesCSV(t *testing.T) {
	out, _, err := execute(t, "run", "-z", "-i", "20", "-g", "2", "--seed", "3")
	require.NoError(t, err)

	rows := records(out)
	require.Len(t, rows, 3)
	assert.Equal(t,
		[]string{"UnixTime", "Seed", "SeqType", "SeqNum", "PriorElements", "Insertions", "Time", "Tag"},
		rows[0])

	for i, row := range rows[1:] {
		require.Len(t, row, 8)
		assert.Equal(t, "3", row[1])
		assert.Equal(t, "RAZ", row[2])
		assert.Equal(t, "0", row[3])
		assert.Equal(t, "20", row[5])
		assert.Equal(t, "None", row[7])
		assert.True(t, strings.HasPrefix(row[6], "PT"), row[6])
		assert.Equal(t, []string{"0", "20"}[i], row[4])
	}
}

func TestRunDefaultsToRAZ(t *testing.T) {
	out, _, err := execute(t, "run", "--nohead", "-i", "5", "-g", "3")
	require.NoError(t, err)

	rows := records(out)
	require.Len(t, rows, 3)
	for _, row := range rows {
		assert.Equal(t, "RAZ", row[2])
	}
}

func TestRunSelectsVariants(t *testing.T) {
	out, _, err := execute(t, "run", "--nohead", "-Z", "-R", "-i", "10", "-g", "1",
		"--tag", "ci", "--taghead", "Build")
	require.NoError(t, err)

	rows := records(out)
	require.Len(t, rows, 2)
	assert.Equal(t, "GRAZ", rows[0][2])
	assert.Equal(t, "MRAZ", rows[1][2])
	assert.Equal(t, "ci", rows[0][7])
}

func TestRunConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "workload.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
insertions: 5
groups: 3
seed: 9
variants: [graz]
`), 0o600))

	out, _, err := execute(t, "run", "--nohead", "--config", path, "-g", "1")
	require.NoError(t, err)

	rows := records(out)
	require.Len(t, rows, 1)
	assert.Equal(t, "9", rows[0][1])
	assert.Equal(t, "GRAZ", rows[0][2])
	assert.Equal(t, "5", rows[0][5])
}

func TestRunInvalidConfigWritesNothing(t *testing.T) {
	out, _, err := execute(t, "run", "-g", "-1")
	require.ErrorIs(t, err, workload.ErrInvalidConfig)
	assert.Empty(t, out)
}

func TestRunSummary(t *testing.T) {
	_, stderr, err := execute(t, "run", "--nohead", "-i", "10", "-g", "2", "--summary")
	require.NoError(t, err)
	assert.Contains(t, stderr, "## Benchmark Results")
	assert.Contains(t, stderr, "| RAZ | 2 | 20 |")
}

func TestMixWritesActions(t *testing.T) {
	out, _, err := execute(t, "mix", "--nohead", "--variant", "mraz",
		"-s", "10", "-b", "2", "--rounds", "3", "--seed", "1")
	require.NoError(t, err)

	rows := records(out)
	require.NotEmpty(t, rows)
	assert.Equal(t, "MRAZ/create", rows[0][2])
	assert.Equal(t, "10", rows[0][5])
}

func TestMixRejectsUnknownVariant(t *testing.T) {
	out, _, err := execute(t, "mix", "--variant", "vec")
	require.ErrorIs(t, err, workload.ErrInvalidConfig)
	assert.Empty(t, out)
}

func TestRunAcceptsSnakeCaseFlags(t *testing.T) {
	root := newRootCmd(&bytes.Buffer{}, zap.NewNop())
	cmd, _, err := root.Find([]string{"run"})
	require.NoError(t, err)

	f := cmd.Flags().Lookup("save_mem")
	require.NotNil(t, f)
	assert.Equal(t, "save-mem", f.Name)

	out, _, err := execute(t, "run", "--nohead", "--save_mem", "-i", "10", "-g", "2")
	require.NoError(t, err)
	assert.Len(t, records(out), 2)
}

func TestRunEmptyTag(t *testing.T) {
	out, _, err := execute(t, "run", "--nohead", "--tag", "", "-i", "10", "-g", "1")
	require.NoError(t, err)

	rows := records(out)
	require.Len(t, rows, 1)
	require.Len(t, rows[0], 8)
	assert.Equal(t, "", rows[0][7])
}
