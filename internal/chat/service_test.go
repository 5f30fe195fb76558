package chat

import (
	"strings"
	"testing"
)

func TestTitleFromText(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"cozy reading nook", "cozy reading nook"},
		{"  spaced   out  ", "spaced out"},
		{"", "New conversation"},
	}
	for _, c := range cases {
		if got := titleFromText(c.in); got != c.want {
			t.Errorf("titleFromText(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestTitleFromText_Truncates(t *testing.T) {
	long := strings.Repeat("a", 100)
	got := titleFromText(long)
	if len([]rune(got)) != 61 {
		t.Errorf("truncated title rune length = %d, want 61", len([]rune(got)))
	}
	if !strings.HasSuffix(got, "…") {
		t.Errorf("truncated title should end with ellipsis, got %q", got)
	}
}
