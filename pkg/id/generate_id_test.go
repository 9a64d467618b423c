package id

import (
	"encoding/hex"
	"strings"
	"testing"
)

func TestNewID32_ShapeAndUniqueness(t *testing.T) {
	const n = 200
	seen := make(map[string]struct{}, n)
	for i := 0; i < n; i++ {
		got := NewID32()
		if !Valid(got) {
			t.Fatalf("NewID32 produced %q", got)
		}
		if b, err := hex.DecodeString(got); err != nil || len(b) != 16 {
			t.Fatalf("decode %q: %d bytes, err=%v", got, len(b), err)
		}
		if _, ok := seen[got]; ok {
			t.Fatalf("duplicate id after %d iterations: %q", i, got)
		}
		seen[got] = struct{}{}
	}
}

func TestValid(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"0123456789abcdef0123456789abcdef", true},
		{strings.Repeat("f", 32), true},
		{"", false},
		{strings.Repeat("a", 31), false},
		{strings.Repeat("a", 33), false},
		{"0123456789ABCDEF0123456789abcdef", false},
		{"01234567-89ab-cdef-0123-456789abcd", false},
		{"g123456789abcdef0123456789abcdef", false},
	}
	for _, tt := range tests {
		if got := Valid(tt.in); got != tt.want {
			t.Errorf("Valid(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
