package internal

import (
	"bytes"
	"strings"
	"testing"

	"github.com/pixil98/go-testutil"
)

// mockReadWriter implements io.ReadWriter for testing Prompt
type mockReadWriter struct {
	readBuf  *bytes.Buffer
	writeBuf *bytes.Buffer
}

func (m *mockReadWriter) Read(p []byte) (n int, err error) {
	return m.readBuf.Read(p)
}

func (m *mockReadWriter) Write(p []byte) (n int, err error) {
	return m.writeBuf.Write(p)
}

func newMockReadWriter(input string) *mockReadWriter {
	return &mockReadWriter{
		readBuf:  bytes.NewBufferString(input),
		writeBuf: &bytes.Buffer{},
	}
}

func notEmpty(s string) (bool, string) {
	if s == "" {
		return false, "required\n"
	}
	return true, ""
}

func TestPrompt(t *testing.T) {
	tests := map[string]struct {
		input  string
		opts   []promptOption
		exp    string
		expErr bool
	}{
		"plain read": {
			input: "bob\n",
			exp:   "bob",
		},
		"validator accepts": {
			input: "ana\n",
			opts:  []promptOption{WithValidator(notEmpty)},
			exp:   "ana",
		},
		"validator retries": {
			input: "\nana\n",
			opts:  []promptOption{WithValidator(notEmpty)},
			exp:   "ana",
		},
		"too many tries": {
			input:  "\n\n\n",
			opts:   []promptOption{WithValidator(notEmpty), WithMaxTries(2)},
			expErr: true,
		},
		"eof": {
			input:  "",
			expErr: true,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			rw := newMockReadWriter(tt.input)

			got, err := Prompt(rw, "? ", tt.opts...)
			if tt.expErr {
				if err == nil {
					t.Fatal("expected an error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %s", err)
			}

			testutil.AssertEqual(t, "input", got, tt.exp)

			if !strings.Contains(rw.writeBuf.String(), "? ") {
				t.Error("expected the prompt to be written")
			}
		})
	}
}
