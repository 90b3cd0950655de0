package engine

import "strings"

// Invalidation says which cached analyses a pass run made stale.
type Invalidation struct {
	// Branches is set when a terminator was replaced or removed.
	Branches bool
	// Calls is set when a call was added or removed.
	Calls bool
	// Instructions is set when any instruction changed.
	Instructions bool
}

// Any reports whether anything was invalidated.
func (v Invalidation) Any() bool {
	return v.Branches || v.Calls || v.Instructions
}

// Merge returns the union of v and o.
func (v Invalidation) Merge(o Invalidation) Invalidation {
	return Invalidation{
		Branches:     v.Branches || o.Branches,
		Calls:        v.Calls || o.Calls,
		Instructions: v.Instructions || o.Instructions,
	}
}

// String lists the set kinds separated by "|", or "nothing".
func (v Invalidation) String() string {
	var kinds []string
	if v.Instructions {
		kinds = append(kinds, "instructions")
	}
	if v.Calls {
		kinds = append(kinds, "calls")
	}
	if v.Branches {
		kinds = append(kinds, "branches")
	}
	if len(kinds) == 0 {
		return "nothing"
	}
	return strings.Join(kinds, "|")
}
