package diag

import (
	"fmt"
	"log/slog"

	"github.com/roach88/constprop/internal/ir"
)

// Severity is how seriously a diagnostic should be taken.
type Severity uint8

const (
	Error Severity = iota
	Warning
)

func (s Severity) String() string {
	if s == Warning {
		return "warning"
	}
	return "error"
}

// ParseSeverity is the inverse of String.
func ParseSeverity(s string) (Severity, error) {
	switch s {
	case "error":
		return Error, nil
	case "warning":
		return Warning, nil
	}
	return Error, fmt.Errorf("unknown severity %q", s)
}

// Diagnostic is a Message attached to a source position, stamped with the
// order in which it was emitted.
type Diagnostic struct {
	Seq      int64
	ID       ID
	Severity Severity
	Message  string
	Args     []string
	Pos      ir.Pos
	Ranges   []ir.Range
}

// String renders d the way compilers print to a terminal:
//
//	file.swift:3:9: error: division by zero
func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s: %s", d.Pos, d.Severity, d.Message)
}

// Engine collects diagnostics for one pass run. The zero value is not
// usable; construct with NewEngine.
type Engine struct {
	clock  *Clock
	logger *slog.Logger
	diags  []Diagnostic
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock makes the engine continue numbering from an existing clock.
func WithClock(c *Clock) Option {
	return func(e *Engine) { e.clock = c }
}

func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		clock:  NewClock(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Diagnose records m at pos and returns a handle for attaching source
// ranges.
func (e *Engine) Diagnose(pos ir.Pos, m Message) *InFlight {
	d := Diagnostic{
		Seq:      e.clock.Next(),
		ID:       m.ID,
		Severity: m.Severity,
		Message:  m.Text,
		Args:     m.Args,
		Pos:      pos,
	}
	e.diags = append(e.diags, d)
	e.logger.Debug("diagnostic emitted",
		"seq", d.Seq,
		"id", string(d.ID),
		"severity", d.Severity.String(),
		"pos", pos.String())
	return &InFlight{e: e, idx: len(e.diags) - 1}
}

// Diagnostics returns everything recorded so far, in emission order.
func (e *Engine) Diagnostics() []Diagnostic {
	out := make([]Diagnostic, len(e.diags))
	copy(out, e.diags)
	return out
}

func (e *Engine) Len() int { return len(e.diags) }

// Count returns how many recorded diagnostics have severity s.
func (e *Engine) Count(s Severity) int {
	n := 0
	for _, d := range e.diags {
		if d.Severity == s {
			n++
		}
	}
	return n
}

func (e *Engine) HasErrors() bool { return e.Count(Error) > 0 }

// InFlight refers to the most recently emitted diagnostic.
type InFlight struct {
	e   *Engine
	idx int
}

// Highlight adds a source range to the diagnostic. Invalid ranges are
// dropped.
func (f *InFlight) Highlight(r ir.Range) *InFlight {
	if r.IsValid() {
		d := &f.e.diags[f.idx]
		d.Ranges = append(d.Ranges, r)
	}
	return f
}
