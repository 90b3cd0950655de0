package store

import (
	"github.com/roach88/constprop/internal/constprop"
)

// Run is the stored record of the pass over one function.
type Run struct {
	ID string
	// Seq is assigned by the store on first write.
	Seq          int64
	Function     string
	Diagnostics  bool
	AssertConfig string
	Folded       int
	Before       int
	After        int
	Invalidation string
	// IR is the printed function after the pass.
	IR string
}

// NewRun builds the record of res, produced under cfg, with the printed
// IR text of the transformed function.
func NewRun(id string, cfg constprop.Config, res constprop.Result, irText string) Run {
	return Run{
		ID:           id,
		Function:     res.Function,
		Diagnostics:  cfg.Diagnostics,
		AssertConfig: cfg.AssertConfig.String(),
		Folded:       res.Folded,
		Before:       res.Before,
		After:        res.After,
		Invalidation: res.Invalidation.String(),
		IR:           irText,
	}
}
