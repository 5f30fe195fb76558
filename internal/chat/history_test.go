package chat

import (
	"strings"
	"testing"

	"github.com/stylemuse/shopassist/internal/models"
)

func msg(role, content string) models.Message {
	return models.Message{Role: role, Content: content}
}

func TestHistoryWindow_Empty(t *testing.T) {
	if got := HistoryWindow(nil, 1000, "gpt-4o-mini"); got != nil {
		t.Errorf("HistoryWindow(nil) = %v, want nil", got)
	}
}

func TestHistoryWindow_AllFit(t *testing.T) {
	msgs := []models.Message{
		msg(models.RoleUser, "minimalist desk setup"),
		msg(models.RoleAssistant, "Here are some picks."),
		msg(models.RoleUser, "cheaper options?"),
	}

	window := HistoryWindow(msgs, 10000, "gpt-4o-mini")
	if len(window) != 3 {
		t.Fatalf("window length = %d, want 3", len(window))
	}
	if window[0].Content != "minimalist desk setup" || window[2].Content != "cheaper options?" {
		t.Error("window should preserve chronological order")
	}
}

func TestHistoryWindow_DropsOldestFirst(t *testing.T) {
	long := strings.Repeat("vintage leather satchel with brass buckles ", 200)
	msgs := []models.Message{
		msg(models.RoleUser, long),
		msg(models.RoleAssistant, "Noted."),
		msg(models.RoleUser, "show me totes"),
	}

	window := HistoryWindow(msgs, 50, "gpt-4o-mini")
	if len(window) == 0 {
		t.Fatal("window should never be empty when messages exist")
	}
	for _, m := range window {
		if m.Content == long {
			t.Error("oversized oldest message should have been dropped")
		}
	}
	if window[len(window)-1].Content != "show me totes" {
		t.Error("newest message must survive trimming")
	}
}

func TestHistoryWindow_NewestAlwaysIncluded(t *testing.T) {
	long := strings.Repeat("word ", 500)
	msgs := []models.Message{msg(models.RoleUser, long)}

	window := HistoryWindow(msgs, 10, "gpt-4o-mini")
	if len(window) != 1 {
		t.Fatalf("window length = %d, want 1", len(window))
	}
}
