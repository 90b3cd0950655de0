package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoadScenario(t *testing.T) {
	s, err := LoadScenario(filepath.Join("testdata", "scenarios", "checked_add.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "checked_add", s.Name)
	assert.True(t, s.Config.Diagnostics)
	require.Len(t, s.Specs, 1)
	assert.Equal(t, filepath.Join("testdata", "specs", "arith.cue"), s.Specs[0])
	require.NotEmpty(t, s.Assertions)
	assert.Equal(t, AssertReturns, s.Assertions[0].Type)
}

func TestLoadScenario_Missing(t *testing.T) {
	_, err := LoadScenario("testdata/scenarios/nope.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestParseScenario_Errors(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "f.cue"), `function: f: blocks: [{label: "entry", insts: [{op: "unreachable"}]}]`)

	tests := []struct {
		name string
		yaml string
		want string
	}{
		{
			name: "unknown field",
			yaml: "name: x\ndescription: d\nspecs: [f.cue]\nassertion: []\n",
			want: "field assertion not found",
		},
		{
			name: "missing name",
			yaml: "description: d\nspecs: [f.cue]\nassertions: [{type: no_diagnostics}]\n",
			want: "name is required",
		},
		{
			name: "missing description",
			yaml: "name: x\nspecs: [f.cue]\nassertions: [{type: no_diagnostics}]\n",
			want: "description is required",
		},
		{
			name: "no specs",
			yaml: "name: x\ndescription: d\nassertions: [{type: no_diagnostics}]\n",
			want: "specs list is required",
		},
		{
			name: "spec not found",
			yaml: "name: x\ndescription: d\nspecs: [g.cue]\nassertions: [{type: no_diagnostics}]\n",
			want: "spec file not found",
		},
		{
			name: "no assertions",
			yaml: "name: x\ndescription: d\nspecs: [f.cue]\n",
			want: "assertions list is required",
		},
		{
			name: "bad assert config",
			yaml: "name: x\ndescription: d\nspecs: [f.cue]\nconfig: {assert_config: fast}\nassertions: [{type: no_diagnostics}]\n",
			want: "config.assert_config",
		},
		{
			name: "unknown assertion",
			yaml: "name: x\ndescription: d\nspecs: [f.cue]\nassertions: [{type: trace_contains}]\n",
			want: `unknown assertion type "trace_contains"`,
		},
		{
			name: "diagnostic without id",
			yaml: "name: x\ndescription: d\nspecs: [f.cue]\nassertions: [{type: diagnostic}]\n",
			want: "id is required",
		},
		{
			name: "bad severity",
			yaml: "name: x\ndescription: d\nspecs: [f.cue]\nassertions: [{type: diagnostic, id: x, severity: fatal}]\n",
			want: `unknown severity "fatal"`,
		},
		{
			name: "returns without function",
			yaml: "name: x\ndescription: d\nspecs: [f.cue]\nassertions: [{type: returns, value: '1'}]\n",
			want: "function is required for returns",
		},
		{
			name: "folded without count",
			yaml: "name: x\ndescription: d\nspecs: [f.cue]\nassertions: [{type: folded, function: f}]\n",
			want: "count is required for folded",
		},
		{
			name: "negative count",
			yaml: "name: x\ndescription: d\nspecs: [f.cue]\nassertions: [{type: diagnostic_count, count: -1}]\n",
			want: "count must be non-negative",
		},
		{
			name: "unknown op",
			yaml: "name: x\ndescription: d\nspecs: [f.cue]\nassertions: [{type: no_op, function: f, op: jump}]\n",
			want: `unknown instruction "jump"`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.yaml), dir)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestParseScenario_AbsoluteSpec(t *testing.T) {
	dir := t.TempDir()
	spec := filepath.Join(dir, "f.cue")
	writeFile(t, spec, `function: f: blocks: [{label: "entry", insts: [{op: "unreachable"}]}]`)

	s, err := ParseScenario([]byte("name: x\ndescription: d\nspecs: ["+spec+"]\nassertions: [{type: no_diagnostics}]\n"), "elsewhere")
	require.NoError(t, err)
	assert.Equal(t, spec, s.Specs[0])
}
