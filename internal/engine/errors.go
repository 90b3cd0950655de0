package engine

import (
	"errors"
	"fmt"

	"github.com/roach88/constprop/internal/ir"
)

// InternalError reports a broken invariant of the pass itself, never a
// property of the program being folded. It is raised by panic.
type InternalError struct {
	// Code identifies the error category.
	Code InternalErrorCode

	// Message is a human-readable description.
	Message string

	// Function names the function being processed.
	Function string

	// Inst identifies the offending instruction.
	Inst ir.ID
}

// InternalErrorCode categorizes internal errors.
type InternalErrorCode string

const (
	// ErrCodeUnreachableUsed indicates a conditionallyUnreachable call whose
	// result is still used after assert configuration was replaced.
	ErrCodeUnreachableUsed InternalErrorCode = "UNREACHABLE_USED"

	// ErrCodeStaleWorklist indicates an erased instruction was popped from
	// the work-list.
	ErrCodeStaleWorklist InternalErrorCode = "STALE_WORKLIST"

	// ErrCodeBadAssertConfig indicates an assert_configuration call whose
	// result is not an integer.
	ErrCodeBadAssertConfig InternalErrorCode = "BAD_ASSERT_CONFIG"

	// ErrCodeStepsExceeded indicates the work-list did not drain within the
	// configured number of steps.
	ErrCodeStepsExceeded InternalErrorCode = "STEPS_EXCEEDED"
)

// Error implements the error interface.
func (e *InternalError) Error() string {
	return fmt.Sprintf("%s: %s (function=%s, inst=%%%d)", e.Code, e.Message, e.Function, e.Inst)
}

func internalError(code InternalErrorCode, inst *ir.Instruction, format string, args ...any) *InternalError {
	name := ""
	if fn := inst.Function(); fn != nil {
		name = fn.Name
	}
	return &InternalError{
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
		Function: name,
		Inst:     inst.ID(),
	}
}

// IsInternalError reports whether err is, or wraps, an *InternalError.
func IsInternalError(err error) bool {
	var ie *InternalError
	return errors.As(err, &ie)
}
