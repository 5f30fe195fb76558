package tokenizer

import "testing"

func TestEstimate(t *testing.T) {
	if got := Estimate(""); got != 1 {
		t.Errorf("Estimate(empty) = %d, want 1", got)
	}
	if got := Estimate("one two three"); got != 4 {
		t.Errorf("Estimate(3 words) = %d, want 4", got)
	}
}

func TestCount_MoreTextMoreTokens(t *testing.T) {
	short := Count("hello", "gpt-4o-mini")
	long := Count("hello hello hello hello hello hello hello hello", "gpt-4o-mini")
	if long <= short {
		t.Errorf("Count(long) = %d should exceed Count(short) = %d", long, short)
	}
}
