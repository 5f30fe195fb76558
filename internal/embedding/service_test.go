package embedding

import (
	"testing"

	"github.com/stylemuse/shopassist/internal/models"
)

func TestProfileText(t *testing.T) {
	p := models.StyleProfile{
		Aesthetics: []string{"minimalist", "scandinavian"},
		Colors:     []string{"white"},
		Keywords:   []string{"tote bag"},
	}

	got := ProfileText(p)
	want := "aesthetics: minimalist, scandinavian; colors: white; keywords: tote bag"
	if got != want {
		t.Errorf("ProfileText = %q, want %q", got, want)
	}
}

func TestProfileText_Empty(t *testing.T) {
	if got := ProfileText(models.StyleProfile{}); got != "" {
		t.Errorf("ProfileText(empty) = %q, want empty", got)
	}
}
