package match

import (
	"strings"
	"testing"

	"github.com/stylemuse/shopassist/internal/models"
)

func TestScore_Range(t *testing.T) {
	products := []models.Product{
		{Title: "Minimalist Canvas Tote Bag", Category: "bags", Price: 29.99, Rating: 4.5, IsPrime: true},
		{Title: "Vintage Leather Boots", Category: "shoes", Price: 120},
		{Title: ""},
	}
	profiles := []models.StyleProfile{
		{Aesthetics: []string{"minimalist"}, Keywords: []string{"tote bag"}},
		{Colors: []string{"black", "cream"}, Mood: []string{"cozy"}},
		{},
	}

	for _, p := range products {
		for _, pr := range profiles {
			score, _ := Score(p, pr)
			if score < 0 || score > 1 {
				t.Errorf("score %v out of [0,1] for product %q", score, p.Title)
			}
		}
	}
}

func TestScore_Deterministic(t *testing.T) {
	p := models.Product{Title: "Minimalist Canvas Tote Bag", Rating: 4.2, IsPrime: true}
	profile := models.StyleProfile{
		Aesthetics: []string{"minimalist", "scandinavian"},
		Keywords:   []string{"tote bag", "canvas"},
		Colors:     []string{"beige"},
	}

	s1, r1 := Score(p, profile)
	s2, r2 := Score(p, profile)
	if s1 != s2 {
		t.Errorf("score not deterministic: %v vs %v", s1, s2)
	}
	if strings.Join(r1, "|") != strings.Join(r2, "|") {
		t.Errorf("reasons not deterministic: %v vs %v", r1, r2)
	}
}

func TestScore_ToteBagScenario(t *testing.T) {
	p := models.Product{Title: "Minimalist Canvas Tote Bag"}
	profile := models.StyleProfile{
		Aesthetics: []string{"minimalist"},
		Keywords:   []string{"tote bag"},
	}

	score, reasons := Score(p, profile)
	// Both top-weighted groups match in full: 0.40 + 0.30.
	if score < 0.7-1e-9 {
		t.Errorf("score = %v, want >= 0.7", score)
	}
	if len(reasons) == 0 {
		t.Error("expected at least one match reason")
	}
}

func TestScore_EmptyGroupsContributeZero(t *testing.T) {
	p := models.Product{Title: "Minimalist Canvas Tote Bag"}
	score, _ := Score(p, models.StyleProfile{})
	if score != 0 {
		t.Errorf("score = %v, want 0 for empty profile", score)
	}
}

func TestScore_PartialGroupMatch(t *testing.T) {
	p := models.Product{Title: "Minimalist Tote"}
	profile := models.StyleProfile{
		Aesthetics: []string{"minimalist", "boho"}, // 1 of 2 → 0.20
	}
	score, _ := Score(p, profile)
	if score < 0.2-1e-9 || score > 0.2+1e-9 {
		t.Errorf("score = %v, want 0.2", score)
	}
}

func TestScore_BonusReasons(t *testing.T) {
	p := models.Product{Title: "Tote", Rating: 4.6, IsPrime: true}
	_, reasons := Score(p, models.StyleProfile{})

	joined := strings.Join(reasons, "|")
	if !strings.Contains(joined, "Prime") {
		t.Errorf("missing prime reason in %v", reasons)
	}
	if !strings.Contains(joined, "rated") {
		t.Errorf("missing rating reason in %v", reasons)
	}
}

func TestScore_ReasonsCapPlusBonuses(t *testing.T) {
	p := models.Product{Title: "minimalist cozy beige linen tote bag canvas", Rating: 4.8, IsPrime: true}
	profile := models.StyleProfile{
		Aesthetics: []string{"minimalist"},
		Keywords:   []string{"tote bag", "canvas", "linen"},
		Colors:     []string{"beige"},
		Mood:       []string{"cozy"},
	}
	_, reasons := Score(p, profile)
	// 3 term reasons max, plus the two bonuses.
	if len(reasons) != 5 {
		t.Errorf("reasons = %d (%v), want 5", len(reasons), reasons)
	}
}

func TestRank_TiesBrokenByAscendingPrice(t *testing.T) {
	profile := models.StyleProfile{Keywords: []string{"tote"}}
	products := []models.Product{
		{ID: "a", Title: "Tote", Price: 50},
		{ID: "b", Title: "Tote", Price: 20},
		{ID: "c", Title: "Scarf", Price: 5},
	}

	ranked := Rank(products, profile)
	if ranked[0].ID != "b" || ranked[1].ID != "a" || ranked[2].ID != "c" {
		t.Errorf("unexpected order: %s, %s, %s", ranked[0].ID, ranked[1].ID, ranked[2].ID)
	}
	if ranked[0].PriceTier != models.PriceTierBudget {
		t.Errorf("PriceTier = %q, want %q", ranked[0].PriceTier, models.PriceTierBudget)
	}
	// Input slice must keep its order and stay unenriched.
	if products[0].ID != "a" || products[0].Score != 0 {
		t.Error("Rank mutated its input")
	}
}
