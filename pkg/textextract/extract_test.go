package textextract

import "testing"

func TestSnippet(t *testing.T) {
	cases := []struct {
		in   string
		max  int
		want string
	}{
		{"short text", 100, "short text"},
		{"  lots   of\n\nwhitespace  here ", 100, "lots of whitespace here"},
		{"abcdefghij", 5, "abcde…"},
		{"", 10, ""},
	}
	for _, c := range cases {
		if got := Snippet(c.in, c.max); got != c.want {
			t.Errorf("Snippet(%q, %d) = %q, want %q", c.in, c.max, got, c.want)
		}
	}
}

func TestFromPDF_InvalidData(t *testing.T) {
	if _, err := FromPDF([]byte("not a pdf")); err == nil {
		t.Fatal("expected error for non-PDF input")
	}
}
