package fold

// ErrorState says whether a fold attempt takes part in diagnostics and, if
// so, whether it has already reported one.
type ErrorState uint8

const (
	// Disabled folds silently: nothing is reported, and a fold that would
	// need a diagnostic is simply not performed.
	Disabled ErrorState = iota
	// NoError takes part in diagnostics and has reported nothing yet.
	NoError
	// ErrorRecorded takes part in diagnostics and has reported.
	ErrorRecorded
)

// Participating reports whether diagnostics may be emitted.
func (s ErrorState) Participating() bool { return s != Disabled }

// Recorded reports whether a diagnostic was emitted.
func (s ErrorState) Recorded() bool { return s == ErrorRecorded }

func (s ErrorState) String() string {
	switch s {
	case Disabled:
		return "disabled"
	case NoError:
		return "no-error"
	case ErrorRecorded:
		return "error-recorded"
	}
	return "unknown"
}

// StateFor returns the initial state of a fold attempt.
func StateFor(diagnostics bool) ErrorState {
	if diagnostics {
		return NoError
	}
	return Disabled
}
