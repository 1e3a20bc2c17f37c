// Package report renders a diagnostic store as a severity-grouped report.
package report

import (
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/dkoosis/puppetcheck/pkg/diag"
	"github.com/dkoosis/puppetcheck/pkg/sarif"
)

// Section headers.
const (
	HeaderErrors   = "The following files have errors:"
	HeaderWarnings = "The following files have warnings:"
	HeaderClean    = "The following files have no errors or warnings:"
	HeaderIgnored  = "The following files have unrecognized formats and therefore were not processed:"
)

// Options controls text rendering.
type Options struct {
	// Color wraps each header in its ANSI color.
	Color bool
}

// Reporter renders the text report.
type Reporter struct {
	red, yellow, green, blue *color.Color
}

// New returns a Reporter with colors forced on or off.
func New(opts Options) *Reporter {
	r := &Reporter{
		red:    color.New(color.FgRed),
		yellow: color.New(color.FgYellow),
		green:  color.New(color.FgGreen),
		blue:   color.New(color.FgBlue),
	}
	for _, c := range []*color.Color{r.red, r.yellow, r.green, r.blue} {
		if opts.Color {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return r
}

type section struct {
	header  string
	paint   *color.Color
	entries []string
	sep     string
	lead    string
}

// Render formats the four sections in order: errors, warnings, clean,
// ignored. Empty sections are omitted.
func (r *Reporter) Render(store *diag.Store) string {
	sections := []section{
		{header: HeaderErrors, paint: r.red, entries: entries(store.Errors()), sep: "\n\n"},
		{header: HeaderWarnings, paint: r.yellow, entries: entries(store.Warnings()), sep: "\n\n", lead: "\n"},
		{header: HeaderClean, paint: r.green, entries: entries(store.CleanFiles()), sep: "\n", lead: "\n"},
		{header: HeaderIgnored, paint: r.blue, entries: store.Ignored(), sep: "\n", lead: "\n"},
	}

	var b strings.Builder
	for _, s := range sections {
		if len(s.entries) == 0 {
			continue
		}
		b.WriteString(s.lead)
		b.WriteString(s.paint.Sprint(s.header))
		b.WriteByte('\n')
		b.WriteString(strings.Join(s.entries, s.sep))
		b.WriteByte('\n')
	}
	return b.String()
}

// Write renders store to w.
func (r *Reporter) Write(w io.Writer, store *diag.Store) error {
	_, err := io.WriteString(w, r.Render(store))
	return err
}

func entries(ds []diag.Diagnostic) []string {
	out := make([]string, len(ds))
	for i, d := range ds {
		out[i] = d.String()
	}
	return out
}

// Rule IDs used in SARIF output.
const (
	ruleIDError   = "puppetcheck-error"
	ruleIDWarning = "puppetcheck-warning"
	ruleIDClean   = "puppetcheck-clean"
)

// SARIF converts store to a SARIF log. Ignored files are not results.
func SARIF(store *diag.Store, version string) *sarif.Log {
	log := sarif.NewLog("puppetcheck", version)
	for _, d := range store.Errors() {
		log.Add(ruleIDError, sarif.LevelError, message(d), d.File)
	}
	for _, d := range store.Warnings() {
		log.Add(ruleIDWarning, sarif.LevelWarning, message(d), d.File)
	}
	for _, d := range store.CleanFiles() {
		log.Add(ruleIDClean, sarif.LevelNote, message(d), d.File)
	}
	return log
}

// WriteSARIF encodes the SARIF form of store to w.
func WriteSARIF(w io.Writer, store *diag.Store, version string) error {
	return sarif.NewEncoder(w).Encode(SARIF(store, version))
}

func message(d diag.Diagnostic) string {
	if msg := strings.TrimSpace(d.Message); msg != "" {
		return msg
	}
	return d.File + " has no errors or warnings"
}
