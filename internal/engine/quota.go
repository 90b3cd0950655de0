package engine

import "github.com/roach88/constprop/internal/ir"

// stepQuota caps the number of work-list pops in one run.
//
// Every push is caused by a new instruction or a fold, so a well-behaved
// run stays far below any sensible cap; exceeding it means a collaborator
// keeps re-queueing instructions without making progress.
type stepQuota struct {
	max     int // zero means unlimited
	current int
}

// check counts one pop of inst and panics with ErrCodeStepsExceeded once
// the quota is spent.
func (q *stepQuota) check(inst *ir.Instruction) {
	q.current++
	if q.max > 0 && q.current > q.max {
		panic(internalError(ErrCodeStepsExceeded, inst,
			"work-list exceeded max steps quota: %d steps > %d limit", q.current, q.max))
	}
}
