package display

import (
	"strings"
	"testing"

	"github.com/pixil98/go-testutil"
)

func TestWrap(t *testing.T) {
	short := "a short line"
	testutil.AssertEqual(t, "short text untouched", Wrap(short), short)

	long := strings.Repeat("word ", 40)
	for i, line := range strings.Split(Wrap(long), "\n") {
		if len(line) > DefaultWidth {
			t.Errorf("line %d exceeds width: %d", i, len(line))
		}
	}
}

func TestWrapTo(t *testing.T) {
	wrapped := WrapTo("one two three four five", 9)
	for i, line := range strings.Split(wrapped, "\n") {
		if len(line) > 9 {
			t.Errorf("line %d exceeds width: %q", i, line)
		}
	}

	// Non-positive widths fall back to the default.
	testutil.AssertEqual(t, "zero width", WrapTo("hello", 0), "hello")
}

func TestCapitalize(t *testing.T) {
	tests := map[string]struct {
		in  string
		exp string
	}{
		"lowercase":   {"hello there", "Hello there"},
		"already cap": {"Hello", "Hello"},
		"empty":       {"", ""},
		"single rune": {"x", "X"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			testutil.AssertEqual(t, "capitalized", Capitalize(tt.in), tt.exp)
		})
	}
}

func TestTitle(t *testing.T) {
	tests := map[string]struct {
		in  string
		exp string
	}{
		"two words":        {"town square", "Town Square"},
		"preserves casing": {"McGuffin", "McGuffin"},
		"empty":            {"", ""},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			testutil.AssertEqual(t, "title", Title(tt.in), tt.exp)
		})
	}
}
