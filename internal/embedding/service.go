package embedding

import (
	"context"
	"fmt"
	"strings"

	"github.com/stylemuse/shopassist/internal/llm"
	"github.com/stylemuse/shopassist/internal/models"
)

// Service produces embeddings for style profiles so past looks can be found
// by similarity.
type Service struct {
	gateway llm.Gateway
	model   string
}

func NewService(gw llm.Gateway, model string) *Service {
	if model == "" {
		model = "text-embedding-3-small"
	}
	return &Service{gateway: gw, model: model}
}

// EmbedProfile flattens the profile's attribute lists into one text and
// embeds it.
func (s *Service) EmbedProfile(ctx context.Context, profile models.StyleProfile) ([]float32, error) {
	return s.EmbedText(ctx, ProfileText(profile))
}

func (s *Service) EmbedText(ctx context.Context, text string) ([]float32, error) {
	resp, err := s.gateway.Embed(ctx, llm.EmbeddingRequest{
		Model: s.model,
		Input: []string{text},
	})
	if err != nil {
		return nil, fmt.Errorf("embed text: %w", err)
	}
	if len(resp.Embeddings) == 0 {
		return nil, fmt.Errorf("no embedding returned")
	}
	return resp.Embeddings[0], nil
}

// ProfileText renders the profile as a compact attribute sentence, which
// embeds better than raw JSON.
func ProfileText(p models.StyleProfile) string {
	var parts []string
	if len(p.Aesthetics) > 0 {
		parts = append(parts, "aesthetics: "+strings.Join(p.Aesthetics, ", "))
	}
	if len(p.Colors) > 0 {
		parts = append(parts, "colors: "+strings.Join(p.Colors, ", "))
	}
	if len(p.Textures) > 0 {
		parts = append(parts, "textures: "+strings.Join(p.Textures, ", "))
	}
	if len(p.Mood) > 0 {
		parts = append(parts, "mood: "+strings.Join(p.Mood, ", "))
	}
	if len(p.Keywords) > 0 {
		parts = append(parts, "keywords: "+strings.Join(p.Keywords, ", "))
	}
	return strings.Join(parts, "; ")
}
