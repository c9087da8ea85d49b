package config

import "testing"

func TestParseOverridesOnlyMentionedFields(t *testing.T) {
	yamlDoc := []byte(`
pointer_size: 4
diagnostics:
  color: false
`)
	opts, err := Parse(yamlDoc)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if opts.PointerSize != 4 {
		t.Errorf("PointerSize = %d, want 4", opts.PointerSize)
	}
	if opts.IntegerSize != Default().IntegerSize {
		t.Errorf("IntegerSize should retain default, got %d", opts.IntegerSize)
	}
	if opts.Diagnostics.Color {
		t.Errorf("expected diagnostics.color override to false")
	}
}

func TestValidateRejectsBadPointerSize(t *testing.T) {
	opts := Default()
	opts.PointerSize = 0
	if err := opts.Validate(); err == nil {
		t.Errorf("expected error for zero pointer size")
	}
}

func TestValidateRejectsBadVerbosity(t *testing.T) {
	opts := Default()
	opts.Diagnostics.Verbosity = "loud"
	if err := opts.Validate(); err == nil {
		t.Errorf("expected error for unknown verbosity")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/path/to/config.yaml"); err == nil {
		t.Errorf("expected error for missing file")
	}
}
