// Package intern provides NFC-normalized string interning for
// identifiers, so that two source spellings of the same identifier that
// differ only by Unicode normalization form compare equal and share
// storage (spec.md §3: "identifiers are compared after normalization").
//
// Normalization is grounded directly on the teacher's
// internal/lexer/normalize.go, which applies golang.org/x/text's NFC
// form to source bytes before lexing; here it is applied per-identifier
// at intern time instead of once over the whole source buffer, since
// this module has no lexer of its own to do it upstream.
package intern

import (
	"sync"

	"golang.org/x/text/unicode/norm"
)

// Table is an NFC-normalizing string interner. The zero value is not
// usable; construct with New. Safe for concurrent use (spec.md §5:
// "the analyzer must allow interning from more than one goroutine").
type Table struct {
	mu      sync.RWMutex
	strings map[string]string
}

// New returns an empty interning table.
func New() *Table {
	return &Table{strings: make(map[string]string)}
}

// Intern normalizes s to NFC and returns the canonical, shared string
// for that normalized form. Calling Intern twice with differently
// composed spellings of the same text returns identical Go strings
// (byte-for-byte, and `==`-comparable after normalization).
func (t *Table) Intern(s string) string {
	normalized := normalize(s)

	t.mu.RLock()
	if existing, ok := t.strings[normalized]; ok {
		t.mu.RUnlock()
		return existing
	}
	t.mu.RUnlock()

	t.mu.Lock()
	defer t.mu.Unlock()
	if existing, ok := t.strings[normalized]; ok {
		return existing
	}
	t.strings[normalized] = normalized
	return normalized
}

// Equal reports whether a and b denote the same identifier once both
// are normalized, without requiring either to already be interned.
func Equal(a, b string) bool {
	return normalize(a) == normalize(b)
}

func normalize(s string) string {
	if norm.NFC.IsNormalString(s) {
		return s
	}
	return norm.NFC.String(s)
}
