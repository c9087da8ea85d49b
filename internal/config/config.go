// Package config loads the semantic analyzer's platform and diagnostic
// options from a YAML document (spec.md §6: "pointer size, canonical
// integer width/signedness, and diagnostic verbosity are analyzer
// configuration, not source-language properties").
//
// Grounded on the teacher's internal/eval_harness/spec.go, which loads
// a BenchmarkSpec from YAML via os.ReadFile + yaml.Unmarshal and then
// validates required fields by hand; the same shape is used here for
// AnalyzerOptions.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// AnalyzerOptions configures a single analyzer run.
type AnalyzerOptions struct {
	// PointerSize is the byte size of every Pointer type (spec.md §4.1).
	PointerSize int64 `yaml:"pointer_size"`

	// IntegerSize is the byte size of the canonical `integer` primitive.
	IntegerSize int64 `yaml:"integer_size"`

	// IntegerSigned is the canonical `integer` primitive's signedness.
	IntegerSigned bool `yaml:"integer_signed"`

	// DiscardableThroughPointer is a list of struct names read from the
	// discardable_through_pointer key. The analyzer does not read it: the
	// unused-result check in internal/check is the same whatever it holds.
	DiscardableThroughPointer []string `yaml:"discardable_through_pointer"`

	// Diagnostics controls how diagnostics are rendered.
	Diagnostics DiagnosticsOptions `yaml:"diagnostics"`
}

// DiagnosticsOptions configures internal/diag's sink.
type DiagnosticsOptions struct {
	// Color enables ANSI color via fatih/color; when false, or when
	// stdout is not a terminal, internal/diag falls back to plain text
	// regardless of this setting.
	Color bool `yaml:"color"`

	// Verbosity is one of "quiet", "normal", "verbose".
	Verbosity string `yaml:"verbosity"`
}

// Default returns the analyzer's built-in configuration: an 8-byte
// pointer and canonical integer, signed, no discardable-through-pointer
// exceptions, colored normal-verbosity diagnostics.
func Default() AnalyzerOptions {
	return AnalyzerOptions{
		PointerSize:   8,
		IntegerSize:   8,
		IntegerSigned: true,
		Diagnostics: DiagnosticsOptions{
			Color:     true,
			Verbosity: "normal",
		},
	}
}

// Load reads and parses an AnalyzerOptions document from path,
// applying Default() first so a partial document only overrides the
// fields it mentions.
func Load(path string) (AnalyzerOptions, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return AnalyzerOptions{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse parses an AnalyzerOptions document from raw YAML bytes.
func Parse(data []byte) (AnalyzerOptions, error) {
	opts := Default()
	if err := yaml.Unmarshal(data, &opts); err != nil {
		return AnalyzerOptions{}, fmt.Errorf("config: parse: %w", err)
	}
	if err := opts.Validate(); err != nil {
		return AnalyzerOptions{}, err
	}
	return opts, nil
}

// Validate checks the required-field and range invariants Load/Parse
// must enforce before handing options to the rest of the analyzer.
func (o AnalyzerOptions) Validate() error {
	if o.PointerSize <= 0 {
		return fmt.Errorf("config: pointer_size must be positive, got %d", o.PointerSize)
	}
	if o.IntegerSize <= 0 || o.IntegerSize > 8 {
		return fmt.Errorf("config: integer_size must be in 1..=8 bytes, got %d", o.IntegerSize)
	}
	switch o.Diagnostics.Verbosity {
	case "", "quiet", "normal", "verbose":
	default:
		return fmt.Errorf("config: diagnostics.verbosity %q is not one of quiet, normal, verbose", o.Diagnostics.Verbosity)
	}
	return nil
}
