package intern

import "testing"

func TestInternReturnsSameStringForRepeatedSpelling(t *testing.T) {
	table := New()
	a := table.Intern("widget")
	b := table.Intern("widget")
	if a != b {
		t.Errorf("expected identical interned strings, got %q and %q", a, b)
	}
}

func TestInternUnifiesDecomposedForm(t *testing.T) {
	table := New()
	// Two spellings of the same word: one with U+00E9 (precomposed
	// "e acute"), one with plain "e" followed by U+0301 (combining
	// acute accent). NFC normalization must unify them.
	precomposed := "caf" + "é"
	decomposed := "caf" + "e" + "́"
	if precomposed == decomposed {
		t.Fatalf("test setup invalid: the two spellings are already byte-identical")
	}

	a := table.Intern(precomposed)
	b := table.Intern(decomposed)
	if a != b {
		t.Errorf("expected NFC normalization to unify spellings, got %q vs %q", a, b)
	}
}

func TestEqualWithoutInterning(t *testing.T) {
	precomposed := "caf" + "é"
	decomposed := "caf" + "e" + "́"
	if !Equal(precomposed, decomposed) {
		t.Errorf("expected Equal to normalize both arguments")
	}
	if Equal("foo", "bar") {
		t.Errorf("expected distinct identifiers to compare unequal")
	}
}
