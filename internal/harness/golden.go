package harness

import (
	"fmt"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// Snapshot renders a result as the text stored in golden files: for each
// function, the printed IR after the pass, the fold statistics and the
// diagnostics in emission order.
func Snapshot(result *Result) []byte {
	var buf strings.Builder
	for i, f := range result.Functions {
		if i > 0 {
			buf.WriteString("\n")
		}
		buf.WriteString(f.IR)
		fmt.Fprintf(&buf, "// folded: %d, instructions: %d -> %d, invalidated: %s\n",
			f.Folded, f.Before, f.After, f.Invalidation)
		for _, d := range f.Diagnostics {
			fmt.Fprintf(&buf, "// %s [%s]\n", d, d.ID)
		}
	}
	return []byte(buf.String())
}

// RunWithGolden executes a scenario and compares its snapshot against a
// golden file stored in testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails.
// Test failure (via goldie) occurs if the snapshot doesn't match.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	AssertGolden(t, scenario.Name, result)
	return result, nil
}

// AssertGolden compares an existing result's snapshot against a golden
// file without re-running the scenario.
func AssertGolden(t *testing.T, name string, result *Result) {
	t.Helper()

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, Snapshot(result))
}
