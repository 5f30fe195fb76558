package stylist

import (
	"context"
	"errors"
	"testing"

	"github.com/stylemuse/shopassist/internal/llm"
)

// stubGateway returns a canned response (or error) and records the last
// request it saw.
type stubGateway struct {
	content string
	err     error
	lastReq llm.ChatRequest
}

func (s *stubGateway) Chat(_ context.Context, req llm.ChatRequest) (*llm.ChatResponse, error) {
	s.lastReq = req
	if s.err != nil {
		return nil, s.err
	}
	return &llm.ChatResponse{Content: s.content, Model: req.Model}, nil
}

func (s *stubGateway) Embed(context.Context, llm.EmbeddingRequest) (*llm.EmbeddingResponse, error) {
	return nil, errors.New("not implemented")
}

func (s *stubGateway) Provider(string) (llm.Provider, error) { return nil, errors.New("no providers") }
func (s *stubGateway) ListModels() []llm.ModelInfo           { return nil }

const validJSON = `{
	"aesthetics": ["minimalist", "scandinavian"],
	"colors": ["white", "oak"],
	"textures": ["linen"],
	"mood": ["calm"],
	"keywords": ["tote bag", "linen shirt"],
	"budget": 150,
	"reply": "Love the clean Scandinavian direction!"
}`

func TestAnalyze_ParsesProfile(t *testing.T) {
	gw := &stubGateway{content: validJSON}
	a := NewAnalyzer(gw, "gpt-4o-mini", "gpt-4o")

	res := a.Analyze(context.Background(), Request{Text: "I like clean nordic interiors"})

	if len(res.Profile.Aesthetics) != 2 || res.Profile.Aesthetics[0] != "minimalist" {
		t.Errorf("aesthetics = %v", res.Profile.Aesthetics)
	}
	if res.Profile.Budget == nil || *res.Profile.Budget != 150 {
		t.Errorf("budget = %v", res.Profile.Budget)
	}
	if res.Reply != "Love the clean Scandinavian direction!" {
		t.Errorf("reply = %q", res.Reply)
	}
	if res.Usage == nil {
		t.Error("expected usage for a successful call")
	}
	if gw.lastReq.Model != "gpt-4o-mini" {
		t.Errorf("model = %q, want text model", gw.lastReq.Model)
	}
}

func TestAnalyze_StripsCodeFences(t *testing.T) {
	gw := &stubGateway{content: "```json\n" + validJSON + "\n```"}
	a := NewAnalyzer(gw, "gpt-4o-mini", "")

	res := a.Analyze(context.Background(), Request{Text: "nordic"})
	if res.Profile.IsEmpty() {
		t.Fatal("fenced JSON should still parse")
	}
}

func TestAnalyze_MalformedOutputFallsBack(t *testing.T) {
	gw := &stubGateway{content: "Sure! Here are some thoughts about your style..."}
	a := NewAnalyzer(gw, "gpt-4o-mini", "")

	res := a.Analyze(context.Background(), Request{Text: "??"})
	if !res.Profile.IsEmpty() {
		t.Errorf("profile should be empty, got %+v", res.Profile)
	}
	if res.Reply != fallbackReply {
		t.Errorf("reply = %q, want fallback question", res.Reply)
	}
}

func TestAnalyze_GatewayErrorFallsBack(t *testing.T) {
	gw := &stubGateway{err: errors.New("rate limited")}
	a := NewAnalyzer(gw, "gpt-4o-mini", "")

	res := a.Analyze(context.Background(), Request{Text: "boho"})
	if !res.Profile.IsEmpty() || res.Reply != fallbackReply {
		t.Errorf("expected safe fallback, got %+v", res)
	}
	if res.Usage != nil {
		t.Error("no usage should be recorded for a failed call")
	}
}

func TestAnalyze_ImageUsesVisionModel(t *testing.T) {
	gw := &stubGateway{content: validJSON}
	a := NewAnalyzer(gw, "gpt-4o-mini", "gpt-4o")

	a.Analyze(context.Background(), Request{Image: "data:image/png;base64,AAAA"})

	if gw.lastReq.Model != "gpt-4o" {
		t.Errorf("model = %q, want vision model", gw.lastReq.Model)
	}
	last := gw.lastReq.Messages[len(gw.lastReq.Messages)-1]
	if len(last.ImageURLs) != 1 {
		t.Errorf("image URLs = %v", last.ImageURLs)
	}
	if last.Content == "" {
		t.Error("image-only request should get the default vision prompt")
	}
}

func TestStripFences(t *testing.T) {
	cases := map[string]string{
		"```json\n{}\n```": "{}",
		"```\n{}\n```":     "{}",
		"{}":               "{}",
		"  {} ":            "{}",
	}
	for in, want := range cases {
		if got := StripFences(in); got != want {
			t.Errorf("StripFences(%q) = %q, want %q", in, got, want)
		}
	}
}
