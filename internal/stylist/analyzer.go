// Package stylist turns free-text or image style requests into structured
// style profiles using a vision-capable LLM.
package stylist

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/stylemuse/shopassist/internal/llm"
	"github.com/stylemuse/shopassist/internal/models"
)

type Analyzer struct {
	gateway     llm.Gateway
	model       string
	visionModel string
}

func NewAnalyzer(gw llm.Gateway, model, visionModel string) *Analyzer {
	if visionModel == "" {
		visionModel = model
	}
	return &Analyzer{gateway: gw, model: model, visionModel: visionModel}
}

// Analysis is the outcome of one style-analysis call. Usage is nil when the
// LLM call itself failed and the fallback profile was used.
type Analysis struct {
	Profile models.StyleProfile
	Reply   string
	Usage   *llm.ChatResponse
}

// Request describes one analysis turn. History carries prior conversation
// messages for context; Image, if set, switches to the vision model.
type Request struct {
	Text    string
	Image   string // data: or https: URL
	History []llm.Message
}

// Analyze extracts a style profile from the request. Model failures and
// malformed output are recovered locally: the returned analysis then has an
// empty profile and a clarifying question, never an error.
func (a *Analyzer) Analyze(ctx context.Context, req Request) Analysis {
	model := a.model
	userMsg := llm.Message{Role: "user", Content: req.Text}
	if req.Image != "" {
		model = a.visionModel
		userMsg.ImageURLs = []string{req.Image}
		if userMsg.Content == "" {
			userMsg.Content = visionUserPrompt
		}
	}

	messages := make([]llm.Message, 0, len(req.History)+2)
	messages = append(messages, llm.Message{Role: "system", Content: analyzerSystemPrompt})
	messages = append(messages, req.History...)
	messages = append(messages, userMsg)

	resp, err := a.gateway.Chat(ctx, llm.ChatRequest{
		Model:       model,
		Messages:    messages,
		Temperature: 0.2,
	})
	if err != nil {
		slog.Warn("style analysis call failed", "error", err)
		return Analysis{Reply: fallbackReply}
	}

	profile, reply, err := parseProfile(resp.Content)
	if err != nil {
		slog.Warn("style analysis returned unparseable output", "error", err)
		return Analysis{Reply: fallbackReply, Usage: resp}
	}

	return Analysis{Profile: profile, Reply: reply, Usage: resp}
}

// parseProfile decodes the model's JSON answer, tolerating a surrounding
// markdown code fence.
func parseProfile(content string) (models.StyleProfile, string, error) {
	cleaned := StripFences(content)

	var out struct {
		Aesthetics []string `json:"aesthetics"`
		Colors     []string `json:"colors"`
		Textures   []string `json:"textures"`
		Mood       []string `json:"mood"`
		Keywords   []string `json:"keywords"`
		Budget     *float64 `json:"budget"`
		Reply      string   `json:"reply"`
	}
	if err := json.Unmarshal([]byte(cleaned), &out); err != nil {
		return models.StyleProfile{}, "", fmt.Errorf("parse style profile: %w", err)
	}

	profile := models.StyleProfile{
		Aesthetics: out.Aesthetics,
		Colors:     out.Colors,
		Textures:   out.Textures,
		Mood:       out.Mood,
		Keywords:   out.Keywords,
		Budget:     out.Budget,
	}
	reply := out.Reply
	if reply == "" {
		reply = fallbackReply
	}
	return profile, reply, nil
}

// StripFences removes a leading/trailing markdown code fence if present.
func StripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// DataURL encodes raw image bytes as a data: URL for vision prompts.
func DataURL(mimeType string, data []byte) string {
	if mimeType == "" {
		mimeType = "image/png"
	}
	return fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(data))
}
