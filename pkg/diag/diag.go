// Package diag holds the diagnostics produced by checkers during a single run.
package diag

import (
	"fmt"
	"strings"
	"sync"
)

// Severity is the outcome category of a checked file.
type Severity int

const (
	// SeverityClean marks a file with no errors or warnings.
	SeverityClean Severity = iota
	// SeverityWarning marks a file with style or lint findings.
	SeverityWarning
	// SeverityError marks a file that failed syntax or schema validation.
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityClean:
		return "clean"
	default:
		return fmt.Sprintf("severity(%d)", int(s))
	}
}

// Diagnostic is one checker outcome for one file.
type Diagnostic struct {
	File     string
	Severity Severity
	Message  string
}

// String renders the entry the way it appears in a report section.
func (d Diagnostic) String() string {
	msg := strings.TrimRight(d.Message, "\n")
	if msg == "" {
		return "-- " + d.File
	}
	return "-- " + d.File + ":\n" + msg
}

// Settings are the checker options carried on a store. Checkers read them;
// the pipeline never computes them.
type Settings struct {
	// FutureParser switches manifest validation to the alternate parser.
	FutureParser bool
	// StyleCheck enables style tools after a successful syntax check.
	StyleCheck bool
	// PuppetLintArgs are passed through to puppet-lint.
	PuppetLintArgs []string
	// RubocopArgs are passed through to rubocop.
	RubocopArgs []string
}

// Store accumulates diagnostics for one run. Appends are serialized so that
// checkers may share a store across goroutines.
type Store struct {
	Settings Settings

	mu       sync.Mutex
	errors   []Diagnostic
	warnings []Diagnostic
	clean    []Diagnostic
	ignored  []string
}

// NewStore returns an empty store carrying the given settings.
func NewStore(settings Settings) *Store {
	return &Store{Settings: settings}
}

// Add appends d to the list for its severity.
func (s *Store) Add(d Diagnostic) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch d.Severity {
	case SeverityError:
		s.errors = append(s.errors, d)
	case SeverityWarning:
		s.warnings = append(s.warnings, d)
	default:
		d.Severity = SeverityClean
		s.clean = append(s.clean, d)
	}
}

// Error records a failed file.
func (s *Store) Error(file, message string) {
	s.Add(Diagnostic{File: file, Severity: SeverityError, Message: message})
}

// Warning records a file with findings.
func (s *Store) Warning(file, message string) {
	s.Add(Diagnostic{File: file, Severity: SeverityWarning, Message: message})
}

// Clean records a file that passed every enabled check.
func (s *Store) Clean(file string) {
	s.Add(Diagnostic{File: file, Severity: SeverityClean})
}

// Ignore records a file no checker handles.
func (s *Store) Ignore(file string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ignored = append(s.ignored, "-- "+file)
}

// Merge appends every entry of other, preserving other's order.
func (s *Store) Merge(other *Store) {
	if other == nil || other == s {
		return
	}

	other.mu.Lock()
	errs := append([]Diagnostic(nil), other.errors...)
	warns := append([]Diagnostic(nil), other.warnings...)
	clean := append([]Diagnostic(nil), other.clean...)
	ignored := append([]string(nil), other.ignored...)
	other.mu.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.errors = append(s.errors, errs...)
	s.warnings = append(s.warnings, warns...)
	s.clean = append(s.clean, clean...)
	s.ignored = append(s.ignored, ignored...)
}

// Reset empties every list and keeps the settings.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errors = nil
	s.warnings = nil
	s.clean = nil
	s.ignored = nil
}

// Errors returns a copy of the error diagnostics in insertion order.
func (s *Store) Errors() []Diagnostic {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Diagnostic(nil), s.errors...)
}

// Warnings returns a copy of the warning diagnostics in insertion order.
func (s *Store) Warnings() []Diagnostic {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Diagnostic(nil), s.warnings...)
}

// CleanFiles returns a copy of the clean diagnostics in insertion order.
func (s *Store) CleanFiles() []Diagnostic {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Diagnostic(nil), s.clean...)
}

// Ignored returns the formatted ignored entries in insertion order.
func (s *Store) Ignored() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.ignored...)
}

// HasErrors reports whether any file failed.
func (s *Store) HasErrors() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.errors) > 0
}

// Len returns the total number of recorded entries, ignored included.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.errors) + len(s.warnings) + len(s.clean) + len(s.ignored)
}
