package cli

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/constprop/internal/store"
	"github.com/roach88/constprop/internal/testutil"
)

// recordedHistory folds the test specs into a fresh database.
func recordedHistory(t *testing.T) string {
	t.Helper()
	db := filepath.Join(t.TempDir(), "history.db")
	opts := &FoldOptions{
		RootOptions:  &RootOptions{Format: "text"},
		Diagnostics:  true,
		AssertConfig: "disabled",
		Database:     db,
		RunIDs:       testutil.NewFixedRunIDs("run-add", "run-div"),
	}
	cmd, _ := outputCommand()
	require.NoError(t, runFold(context.Background(), opts, specsDir, cmd))
	return db
}

func TestHistoryList(t *testing.T) {
	db := recordedHistory(t)

	out, err := execute(t, NewHistoryCommand(&RootOptions{Format: "text"}), "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "   1  run-add  add")
	assert.Contains(t, out, "folded 1, instructions 6 -> 2, invalidated instructions")
	assert.Contains(t, out, "   2  run-div  div")

	out, err = execute(t, NewHistoryCommand(&RootOptions{Format: "text"}), "--db", db, "--function", "div")
	require.NoError(t, err)
	assert.NotContains(t, out, "run-add")
	assert.Contains(t, out, "run-div")
}

func TestHistoryListJSON(t *testing.T) {
	db := recordedHistory(t)

	out, err := execute(t, NewHistoryCommand(&RootOptions{Format: "json"}), "--db", db)
	require.NoError(t, err)

	var resp struct {
		Status string       `json:"status"`
		Data   []RunSummary `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Len(t, resp.Data, 2)
	assert.Equal(t, RunSummary{
		Seq:          1,
		ID:           "run-add",
		Function:     "add",
		Diagnostics:  true,
		AssertConfig: "disabled",
		Folded:       1,
		Before:       6,
		After:        2,
		Invalidation: "instructions",
	}, resp.Data[0])
}

func TestHistoryRun(t *testing.T) {
	db := recordedHistory(t)

	out, err := execute(t, NewHistoryCommand(&RootOptions{Format: "text"}), "--db", db, "--run", "run-div")
	require.NoError(t, err)
	assert.Contains(t, out, "run run-div (#2) of div\n")
	assert.Contains(t, out, "diagnostics: true, assert configuration: disabled\n")
	assert.Contains(t, out, `builtin "sdiv_Int8"`)
	assert.Contains(t, out, "main.swift:3:15: error: division by zero [division_by_zero]\n")
	assert.Contains(t, out, "1 error(s), 0 warning(s)\n")
}

func TestHistoryRunJSON(t *testing.T) {
	db := recordedHistory(t)

	out, err := execute(t, NewHistoryCommand(&RootOptions{Format: "json"}), "--db", db, "--run", "run-div")
	require.NoError(t, err)

	var resp struct {
		Data RunDetail `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "div", resp.Data.Run.Function)
	require.Len(t, resp.Data.Diagnostics, 1)
	assert.Equal(t, "main.swift:3:15", resp.Data.Diagnostics[0].Pos)
}

func TestHistoryEmpty(t *testing.T) {
	db := filepath.Join(t.TempDir(), "empty.db")
	st, err := store.Open(db)
	require.NoError(t, err)
	require.NoError(t, st.Close())

	out, err := execute(t, NewHistoryCommand(&RootOptions{Format: "text"}), "--db", db)
	require.NoError(t, err)
	assert.Equal(t, "No runs recorded.\n", out)
}

func TestHistoryErrors(t *testing.T) {
	db := recordedHistory(t)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"no database", []string{"--db", ""}, "--db is required"},
		{"missing database", []string{"--db", filepath.Join(t.TempDir(), "nope.db")}, "database not found"},
		{"unknown run", []string{"--db", db, "--run", "run-mul"}, "run not found: run-mul"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, NewHistoryCommand(&RootOptions{Format: "text"}), tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
			assert.Equal(t, ExitCommandError, GetExitCode(err))
		})
	}
}
