// Package diagnostics collects the compile-time and elaboration-time
// messages (errors, warnings) that every pass of the toolchain emits,
// in a mutex-guarded, append-only buffer.
package diagnostics

import (
	"fmt"
	"sync"

	"github.com/sarchlab/aionhdl/common"
)

// Severity classifies a Diagnostic.
type Severity uint8

const (
	SeverityWarning Severity = iota
	SeverityError
)

func (s Severity) String() string {
	if s == SeverityError {
		return "error"
	}
	return "warning"
}

// Diagnostic is one recorded message: a numeric code (E2xx for elaboration
// errors, W1xx for synthesis/lowering warnings, etc.), a human-readable
// message, and the source span it refers to.
type Diagnostic struct {
	Severity Severity
	Code     string
	Message  string
	Span     common.Span
}

// String renders a diagnostic the way a command-line driver would print
// it: "error[E209]: unknown identifier `WIDTH`".
func (d Diagnostic) String() string {
	return fmt.Sprintf("%s[%s]: %s", d.Severity, d.Code, d.Message)
}

// Sink is an append-only, concurrency-safe collector of diagnostics.
// Passes never return errors for recoverable problems; they call Emit and
// keep going (returning a poison value, e.g. nil ExprID or an all-X
// literal) so the pipeline can report every problem in one run instead of
// stopping at the first.
type Sink struct {
	mu    sync.Mutex
	items []Diagnostic
}

// NewSink creates an empty diagnostic sink.
func NewSink() *Sink {
	return &Sink{}
}

// Emit records d.
func (s *Sink) Emit(d Diagnostic) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, d)
}

// Error is a convenience wrapper for Emit(Diagnostic{Severity: SeverityError, ...}).
func (s *Sink) Error(code, message string, span common.Span) {
	s.Emit(Diagnostic{Severity: SeverityError, Code: code, Message: message, Span: span})
}

// Warn is a convenience wrapper for Emit(Diagnostic{Severity: SeverityWarning, ...}).
func (s *Sink) Warn(code, message string, span common.Span) {
	s.Emit(Diagnostic{Severity: SeverityWarning, Code: code, Message: message, Span: span})
}

// HasErrors reports whether any error-severity diagnostic was emitted.
// Warnings alone never fail a pipeline run.
func (s *Sink) HasErrors() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, d := range s.items {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}

// ErrorCount returns the number of error-severity diagnostics emitted so
// far.
func (s *Sink) ErrorCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, d := range s.items {
		if d.Severity == SeverityError {
			n++
		}
	}
	return n
}

// TakeAll returns every diagnostic emitted so far, in emission order, and
// clears the sink.
func (s *Sink) TakeAll() []Diagnostic {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.items
	s.items = nil
	return out
}
