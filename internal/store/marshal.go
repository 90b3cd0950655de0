package store

import (
	"encoding/json"
	"fmt"

	"github.com/roach88/constprop/internal/diag"
	"github.com/roach88/constprop/internal/ir"
)

// marshalArgs converts diagnostic arguments to canonical JSON TEXT.
func marshalArgs(args []string) (string, error) {
	if args == nil {
		args = []string{}
	}
	data, err := diag.MarshalCanonical(args)
	if err != nil {
		return "", fmt.Errorf("marshal args: %w", err)
	}
	return string(data), nil
}

func marshalPos(p ir.Pos) map[string]any {
	return map[string]any{"file": p.File, "line": p.Line, "col": p.Col}
}

// marshalRanges converts highlight ranges to canonical JSON TEXT.
func marshalRanges(ranges []ir.Range) (string, error) {
	arr := make([]any, len(ranges))
	for i, r := range ranges {
		arr[i] = map[string]any{
			"start": marshalPos(r.Start),
			"end":   marshalPos(r.End),
		}
	}
	data, err := diag.MarshalCanonical(arr)
	if err != nil {
		return "", fmt.Errorf("marshal ranges: %w", err)
	}
	return string(data), nil
}

func unmarshalArgs(data string) ([]string, error) {
	var args []string
	if err := json.Unmarshal([]byte(data), &args); err != nil {
		return nil, fmt.Errorf("unmarshal args: %w", err)
	}
	if len(args) == 0 {
		return nil, nil
	}
	return args, nil
}

type storedPos struct {
	File string `json:"file"`
	Line int    `json:"line"`
	Col  int    `json:"col"`
}

func (p storedPos) pos() ir.Pos { return ir.Pos{File: p.File, Line: p.Line, Col: p.Col} }

func unmarshalRanges(data string) ([]ir.Range, error) {
	var stored []struct {
		Start storedPos `json:"start"`
		End   storedPos `json:"end"`
	}
	if err := json.Unmarshal([]byte(data), &stored); err != nil {
		return nil, fmt.Errorf("unmarshal ranges: %w", err)
	}
	if len(stored) == 0 {
		return nil, nil
	}
	ranges := make([]ir.Range, len(stored))
	for i, r := range stored {
		ranges[i] = ir.Range{Start: r.Start.pos(), End: r.End.pos()}
	}
	return ranges, nil
}
