// Package workers holds the asynq task handlers run by the worker binary.
package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/stylemuse/shopassist/internal/chat"
	"github.com/stylemuse/shopassist/internal/guide"
	"github.com/stylemuse/shopassist/internal/models"
	"github.com/stylemuse/shopassist/internal/queue"
)

// GuideWorker generates a style guide for a message: render and upload the
// main document, submit the derived-artifact jobs, then poll them to
// completion.
type GuideWorker struct {
	guides *guide.Service
	chats  *chat.Service
}

func NewGuideWorker(guides *guide.Service, chats *chat.Service) *GuideWorker {
	return &GuideWorker{guides: guides, chats: chats}
}

func (w *GuideWorker) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload queue.GuideGeneratePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	messageID, err := uuid.Parse(payload.MessageID)
	if err != nil {
		return fmt.Errorf("parse message ID: %w", err)
	}
	userID, err := uuid.Parse(payload.UserID)
	if err != nil {
		return fmt.Errorf("parse user ID: %w", err)
	}

	slog.Info("generating guide", "message_id", messageID, "user_id", userID)

	msg, err := w.chats.MessageForGuide(ctx, userID, messageID)
	if err != nil {
		return fmt.Errorf("load message: %w", err)
	}
	if msg.StyleProfile == nil {
		slog.Warn("message has no style profile, skipping guide", "message_id", messageID)
		return nil
	}

	title := payload.Title
	if title == "" {
		title = defaultTitle(*msg.StyleProfile)
	}

	g, err := w.guides.Generate(ctx, guide.GenerateInput{
		UserID:    userID,
		MessageID: messageID,
		Title:     title,
		Profile:   *msg.StyleProfile,
		Products:  msg.Products,
	})
	if err != nil {
		return fmt.Errorf("generate guide: %w", err)
	}

	if err := w.chats.AttachGuide(ctx, messageID, g.ID); err != nil {
		slog.Error("failed to link guide to message", "guide_id", g.ID, "error", err)
	}

	if err := w.guides.PollDerived(ctx, g.ID); err != nil {
		return fmt.Errorf("poll derived artifacts: %w", err)
	}

	slog.Info("guide generated", "guide_id", g.ID, "message_id", messageID)
	return nil
}

func defaultTitle(p models.StyleProfile) string {
	if len(p.Aesthetics) == 0 {
		return "Style Guide"
	}
	words := strings.Fields(p.Aesthetics[0])
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ") + " Style Guide"
}
