package core

import (
	"errors"
	"io"
	"strings"
	"testing"
)

func TestBOMSkippingReader(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "with BOM", input: "\xEF\xBB\xBFa,b\n1,2\n", want: "a,b\n1,2\n"},
		{name: "without BOM", input: "a,b\n1,2\n", want: "a,b\n1,2\n"},
		{name: "BOM only", input: "\xEF\xBB\xBF", want: ""},
		{name: "shorter than BOM", input: "a", want: "a"},
		{name: "empty", input: "", want: ""},
		{name: "partial BOM kept", input: "\xEF\xBBx", want: "\xEF\xBBx"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := io.ReadAll(NewBOMSkippingReader(strings.NewReader(tt.input)))
			if err != nil {
				t.Fatalf("ReadAll() error = %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("ReadAll() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCountingReader(t *testing.T) {
	t.Run("counts bytes", func(t *testing.T) {
		r := NewCountingReader(strings.NewReader("hello world"), 0)
		if _, err := io.ReadAll(r); err != nil {
			t.Fatalf("ReadAll() error = %v", err)
		}
		if r.BytesRead != 11 {
			t.Errorf("BytesRead = %d, want 11", r.BytesRead)
		}
	})

	t.Run("exact limit passes", func(t *testing.T) {
		r := NewCountingReader(strings.NewReader("12345"), 5)
		got, err := io.ReadAll(r)
		if err != nil {
			t.Fatalf("ReadAll() error = %v", err)
		}
		if string(got) != "12345" {
			t.Errorf("ReadAll() = %q, want %q", got, "12345")
		}
	})

	t.Run("over limit fails", func(t *testing.T) {
		r := NewCountingReader(strings.NewReader("123456"), 5)
		_, err := io.ReadAll(r)
		if !errors.Is(err, ErrFileTooLarge) {
			t.Errorf("ReadAll() error = %v, want ErrFileTooLarge", err)
		}
	})
}

func TestWrapForStreaming(t *testing.T) {
	// The BOM is stripped before counting, so it does not use up the limit.
	r := WrapForStreaming(strings.NewReader("\xEF\xBB\xBFabc"), 3)
	got, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if string(got) != "abc" {
		t.Errorf("ReadAll() = %q, want %q", got, "abc")
	}
	if r.BytesRead != 3 {
		t.Errorf("BytesRead = %d, want 3", r.BytesRead)
	}
}

func TestSanitizeUTF8(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
		want  string
	}{
		{name: "valid", input: []byte("héllo"), want: "héllo"},
		{name: "invalid byte", input: []byte{'a', 0xFF, 'b'}, want: "a�b"},
		{name: "empty", input: nil, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sanitizeUTF8(tt.input); got != tt.want {
				t.Errorf("sanitizeUTF8() = %q, want %q", got, tt.want)
			}
		})
	}
}
