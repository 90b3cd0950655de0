package harness

import (
	"github.com/roach88/constprop/internal/diag"
)

// FunctionResult is the outcome of the pass over one function.
type FunctionResult struct {
	Name string `json:"name"`

	// IR is the printed function after the pass.
	IR string `json:"ir"`

	// Returns is the text of the literal the first return in block order
	// returns, or empty if it returns anything else.
	Returns string `json:"returns,omitempty"`

	Folded       int    `json:"folded"`
	Before       int    `json:"before"`
	After        int    `json:"after"`
	Invalidation string `json:"invalidation"`

	// Ops counts the remaining instructions by mnemonic.
	Ops map[string]int `json:"ops"`

	// Diagnostics are read back from the run history, in emission order.
	Diagnostics []diag.Diagnostic `json:"diagnostics"`
}

// Result is the outcome of a test scenario execution.
type Result struct {
	// Pass indicates overall test success.
	Pass bool `json:"pass"`

	Functions []FunctionResult `json:"functions"`

	// Errors contains assertion failure messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:      true,
		Functions: []FunctionResult{},
		Errors:    []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// Function returns the result for the named function, or nil.
func (r *Result) Function(name string) *FunctionResult {
	for i := range r.Functions {
		if r.Functions[i].Name == name {
			return &r.Functions[i]
		}
	}
	return nil
}

// Diagnostics returns the diagnostics of the named function, or of all
// functions when name is empty.
func (r *Result) Diagnostics(name string) []diag.Diagnostic {
	var out []diag.Diagnostic
	for _, f := range r.Functions {
		if name == "" || f.Name == name {
			out = append(out, f.Diagnostics...)
		}
	}
	return out
}
