package chat

import (
	"github.com/stylemuse/shopassist/internal/llm"
	"github.com/stylemuse/shopassist/internal/models"
	"github.com/stylemuse/shopassist/pkg/tokenizer"
)

// HistoryWindow selects the most recent messages that fit within the token
// budget, preserving chronological order. msgs must be oldest first. A message
// that alone exceeds the remaining budget ends the window; the newest message
// is always included so a long turn still carries its immediate context.
func HistoryWindow(msgs []models.Message, budget int, model string) []llm.Message {
	if len(msgs) == 0 {
		return nil
	}

	start := len(msgs)
	remaining := budget
	for i := len(msgs) - 1; i >= 0; i-- {
		cost := tokenizer.Count(msgs[i].Content, model)
		if cost > remaining && start < len(msgs) {
			break
		}
		remaining -= cost
		start = i
	}

	window := make([]llm.Message, 0, len(msgs)-start)
	for _, m := range msgs[start:] {
		window = append(window, llm.Message{Role: m.Role, Content: m.Content})
	}
	return window
}
