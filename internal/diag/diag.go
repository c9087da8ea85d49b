// Package diag implements the semantic analyzer's diagnostics sink
// (spec.md §6: "a single operation the analyzer invokes with: severity,
// filename, source span, byte offset, and a formatted message"). The
// analyzer never writes to stdout/stderr directly; every diagnostic,
// from a single type mismatch to a multi-section overload-resolution
// failure, is a Report handed to a Sink.
//
// Report's shape and the ReportError/WrapReport/ToJSON accessors are
// grounded on the teacher's internal/errors/report.go
// (Schema/Code/Phase/Message/Span/Data/Fix, sorted-key JSON). ColorSink
// is grounded on cmd/ailang/main.go and internal/repl/repl.go's
// package-level fatih/color SprintFunc variables.
package diag

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/fatih/color"

	"github.com/kiln-lang/kilnc/internal/source"
)

// Severity classifies a Report per spec.md §6/§7.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
	SeveritySorry
	SeverityInfo
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeveritySorry:
		return "sorry"
	case SeverityInfo:
		return "info"
	default:
		return "unknown"
	}
}

// Fix is an optional suggested fix attached to a Report, carried
// through unused by this repo's scope (no code-action consumer exists
// here) but kept in the schema since the teacher's Report does, and a
// future driver may render it.
type Fix struct {
	Description string `json:"description"`
	Replacement string `json:"replacement,omitempty"`
}

// Report is the structured diagnostic every analyzer phase emits.
// Section, when non-empty, groups a multi-section diagnostic (spec.md
// §4.3 step 4's "Where"/"Overloads"/per-candidate-reason" sections for
// overload resolution failures) under Data["sections"] rather than a
// bespoke field, so the schema stays flat for every diagnostic kind.
type Report struct {
	Schema   string         `json:"schema"`
	Code     string         `json:"code"`
	Phase    string         `json:"phase"`
	Severity Severity       `json:"severity"`
	Filename string         `json:"filename"`
	Span     source.Span    `json:"span"`
	Offset   int            `json:"offset"`
	Message  string         `json:"message"`
	Data     map[string]any `json:"data,omitempty"`
	Fix      *Fix           `json:"fix,omitempty"`
}

const schema = "kilnc.diag/v1"

// New constructs a Report with the schema field pre-filled.
func New(code, phase string, sev Severity, filename string, span source.Span, message string) *Report {
	return &Report{
		Schema:   schema,
		Code:     code,
		Phase:    phase,
		Severity: sev,
		Filename: filename,
		Span:     span,
		Offset:   span.Start.Offset,
		Message:  message,
	}
}

// WithData attaches a structured data entry and returns the Report for chaining.
func (r *Report) WithData(key string, value any) *Report {
	if r.Data == nil {
		r.Data = map[string]any{}
	}
	r.Data[key] = value
	return r
}

// ReportError wraps a Report so it can travel through Go's error chain
// (errors.As) without losing structure, mirroring the teacher's
// ReportError/AsReport pair.
type ReportError struct {
	Rep *Report
}

func (e *ReportError) Error() string {
	if e.Rep == nil {
		return "unknown diagnostic"
	}
	return fmt.Sprintf("%s: %s", e.Rep.Code, e.Rep.Message)
}

// WrapReport wraps r as an error. Returns nil if r is nil.
func WrapReport(r *Report) error {
	if r == nil {
		return nil
	}
	return &ReportError{Rep: r}
}

// ToJSON renders r as JSON with map keys sorted, for reproducible
// golden-file comparisons.
func (r *Report) ToJSON(indent bool) (string, error) {
	var data []byte
	var err error
	if indent {
		data, err = json.MarshalIndent(sortedReport(r), "", "  ")
	} else {
		data, err = json.Marshal(sortedReport(r))
	}
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// sortedReport is a json.Marshaler-friendly projection of Report whose
// Data map serializes with deterministic key order.
func sortedReport(r *Report) map[string]any {
	out := map[string]any{
		"schema":   r.Schema,
		"code":     r.Code,
		"phase":    r.Phase,
		"severity": r.Severity.String(),
		"filename": r.Filename,
		"offset":   r.Offset,
		"message":  r.Message,
	}
	if len(r.Data) > 0 {
		keys := make([]string, 0, len(r.Data))
		for k := range r.Data {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		ordered := make(map[string]any, len(keys))
		for _, k := range keys {
			ordered[k] = r.Data[k]
		}
		out["data"] = ordered
	}
	if r.Fix != nil {
		out["fix"] = r.Fix
	}
	return out
}

// Sink is spec.md §6's diagnostics sink interface: the analyzer's only
// output channel. Every external collaborator (CLI driver, test
// harness) implements this to receive reports.
type Sink interface {
	Emit(r *Report)
}

// CollectingSink accumulates every Report it receives, in emission
// order. Used by tests (to assert on the reports an analyzer run
// produced) and by cmd/kilnc-check's --json output. Analyzer.CheckModule
// keeps checking after an error (spec.md §7), so a CollectingSink handed
// to it receives every report of the run.
type CollectingSink struct {
	Reports []*Report
}

// NewCollectingSink returns an empty CollectingSink.
func NewCollectingSink() *CollectingSink { return &CollectingSink{} }

func (s *CollectingSink) Emit(r *Report) { s.Reports = append(s.Reports, r) }

// HasErrors reports whether any collected Report is an error-level
// (non-warning, non-sorry, non-info) diagnostic.
func (s *CollectingSink) HasErrors() bool {
	for _, r := range s.Reports {
		if r.Severity == SeverityError {
			return true
		}
	}
	return false
}

// ByCode returns every collected report carrying the given code, in
// emission order.
func (s *CollectingSink) ByCode(code string) []*Report {
	var out []*Report
	for _, r := range s.Reports {
		if r.Code == code {
			out = append(out, r)
		}
	}
	return out
}

// ColorSink renders reports as human-readable lines to an io.Writer,
// colorizing the severity tag with fatih/color exactly as the teacher's
// cmd/ailang and internal/repl package-level SprintFunc variables do.
// When Color is false the same SprintFunc variables are used, built from
// color objects on which DisableColor has been called (see NewColorSink).
type ColorSink struct {
	w     io.Writer
	green func(a ...interface{}) string
	red   func(a ...interface{}) string
	yellow func(a ...interface{}) string
	cyan  func(a ...interface{}) string
	bold  func(a ...interface{}) string
	dim   func(a ...interface{}) string
}

// NewColorSink returns a ColorSink writing to w. When enableColor is
// false, ANSI escapes are suppressed regardless of the writer's
// terminal-ness (internal/config's AnalyzerOptions.Diagnostics.Color
// drives this).
func NewColorSink(w io.Writer, enableColor bool) *ColorSink {
	c := color.New(color.FgCyan)
	r := color.New(color.FgRed)
	y := color.New(color.FgYellow)
	g := color.New(color.FgGreen)
	b := color.New(color.Bold)
	d := color.New(color.Faint)
	if !enableColor {
		c.DisableColor()
		r.DisableColor()
		y.DisableColor()
		g.DisableColor()
		b.DisableColor()
		d.DisableColor()
	}
	return &ColorSink{
		w:      w,
		green:  g.SprintFunc(),
		red:    r.SprintFunc(),
		yellow: y.SprintFunc(),
		cyan:   c.SprintFunc(),
		bold:   b.SprintFunc(),
		dim:    d.SprintFunc(),
	}
}

func (s *ColorSink) tag(sev Severity) string {
	switch sev {
	case SeverityError:
		return s.red(s.bold("error"))
	case SeverityWarning:
		return s.yellow(s.bold("warning"))
	case SeveritySorry:
		return s.cyan(s.bold("sorry"))
	default:
		return s.green(s.bold("info"))
	}
}

// Emit writes one formatted line per Report, plus any Data["sections"]
// (populated by internal/overload for a failed resolution, spec.md
// §4.3 step 4) as indented follow-up lines.
func (s *ColorSink) Emit(r *Report) {
	fmt.Fprintf(s.w, "%s: %s:%s: %s [%s]\n",
		s.tag(r.Severity), r.Filename, r.Span.Start.String(), r.Message, s.dim(r.Code))
	if sections, ok := r.Data["sections"]; ok {
		if list, ok := sections.([]string); ok {
			for _, line := range list {
				fmt.Fprintf(s.w, "  %s\n", s.dim(line))
			}
		}
	}
}
