package money

import (
	"errors"
	"strings"
	"testing"
)

func TestParse(t *testing.T) {
	cases := []struct {
		in   string
		want int64
	}{
		{"15000", 15000},
		{"15.000", 15000},
		{"Rp 15.000", 15000},
		{"rp15000", 15000},
		{" 1.234.567 ", 1234567},
		{"8000", 8000},
		{"15,5", 16}, // decimal comma, rounded
		{"15,4", 15},
		{"0", 0},
		{"-500", -500},
	}
	for _, c := range cases {
		got, err := Parse(c.in)
		if err != nil {
			t.Fatalf("Parse(%q): %v", c.in, err)
		}
		if got != c.want {
			t.Fatalf("Parse(%q)=%d, want %d", c.in, got, c.want)
		}
	}
}

func TestParseMalformed(t *testing.T) {
	for _, in := range []string{"", "abc", "Rp", "12a", "--"} {
		if _, err := Parse(in); !errors.Is(err, ErrMalformed) {
			t.Fatalf("Parse(%q): expected ErrMalformed, got %v", in, err)
		}
	}
}

func TestParsePositive(t *testing.T) {
	if _, err := ParsePositive("0"); !errors.Is(err, ErrNotPositive) {
		t.Fatalf("expected ErrNotPositive for zero, got %v", err)
	}
	if _, err := ParsePositive("-100"); !errors.Is(err, ErrNotPositive) {
		t.Fatalf("expected ErrNotPositive for negative, got %v", err)
	}
	if _, err := ParsePositive("x"); !errors.Is(err, ErrMalformed) {
		t.Fatalf("expected ErrMalformed, got %v", err)
	}
	n, err := ParsePositive("Rp 8.000")
	if err != nil || n != 8000 {
		t.Fatalf("ParsePositive: got %d, %v", n, err)
	}
}

func TestFormat(t *testing.T) {
	out := Format(15000)
	if !strings.HasPrefix(out, "Rp") {
		t.Fatalf("Format(15000)=%q, expected Rp prefix", out)
	}
	if !strings.Contains(out, "15.000") {
		t.Fatalf("Format(15000)=%q, expected grouped 15.000", out)
	}
}

func TestRoundTrip(t *testing.T) {
	for _, n := range []int64{1, 9, 10, 999, 1000, 8000, 15000, 123456, 1234567, 987654321} {
		got, err := Parse(Format(n))
		if err != nil {
			t.Fatalf("round trip %d: %v", n, err)
		}
		if got != n {
			t.Fatalf("round trip %d: got %d", n, got)
		}
	}
}
