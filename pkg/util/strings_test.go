package util

import "testing"

func TestParseIntDefault(t *testing.T) {
	if got := ParseIntDefault("", 7); got != 7 {
		t.Fatalf("expected default, got %d", got)
	}
	if got := ParseIntDefault(" 30 ", 7); got != 30 {
		t.Fatalf("expected 30, got %d", got)
	}
	if got := ParseIntDefault("abc", 7); got != 7 {
		t.Fatalf("expected default on invalid input, got %d", got)
	}
}

func TestParseBoolDefault(t *testing.T) {
	cases := []struct {
		in   string
		def  bool
		want bool
	}{
		{"", true, true},
		{"true", false, true},
		{"1", false, true},
		{"yes", false, true},
		{"off", true, false},
		{"maybe", true, true},
	}
	for _, c := range cases {
		if got := ParseBoolDefault(c.in, c.def); got != c.want {
			t.Fatalf("ParseBoolDefault(%q, %v) = %v", c.in, c.def, got)
		}
	}
}

func TestSplitIDs(t *testing.T) {
	got := SplitIDs("Bitcoin, ethereum,,bitcoin , solana")
	want := []string{"bitcoin", "ethereum", "solana"}
	if len(got) != len(want) {
		t.Fatalf("unexpected ids %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("unexpected ids %v", got)
		}
	}
}
