// Package match scores catalog products against a style profile using a
// weighted keyword-overlap heuristic. It is deliberately simple: the heavy
// lifting (attribute extraction) happens upstream in the LLM.
package match

import (
	"fmt"
	"sort"
	"strings"

	"github.com/stylemuse/shopassist/internal/models"
)

// Weight partition across attribute groups. Must sum to 1.0 so scores stay
// in [0,1].
const (
	weightAesthetics = 0.40
	weightKeywords   = 0.30
	weightColors     = 0.15
	weightMood       = 0.15
)

const maxTermReasons = 3

// Score rates how well a product matches the profile. The result is in
// [0,1] and deterministic for identical inputs. Reasons are short
// human-readable phrases explaining the score.
func Score(p models.Product, profile models.StyleProfile) (float64, []string) {
	haystack := strings.ToLower(p.Title + " " + p.Category)

	var score float64
	var matched []string

	groups := []struct {
		terms  []string
		weight float64
		phrase func(term string) string
	}{
		{profile.Aesthetics, weightAesthetics, func(t string) string {
			return fmt.Sprintf("matches your %s aesthetic", t)
		}},
		{profile.Keywords, weightKeywords, func(t string) string {
			return fmt.Sprintf("matches %q", t)
		}},
		{profile.Colors, weightColors, func(t string) string {
			return fmt.Sprintf("comes in %s", t)
		}},
		{profile.Mood, weightMood, func(t string) string {
			return fmt.Sprintf("fits a %s mood", t)
		}},
	}

	for _, g := range groups {
		hits := 0
		for _, term := range g.terms {
			if term == "" {
				continue
			}
			if strings.Contains(haystack, strings.ToLower(term)) {
				hits++
				if len(matched) < maxTermReasons {
					matched = append(matched, g.phrase(term))
				}
			}
		}
		// Empty groups contribute zero; the floor avoids dividing by zero.
		denom := len(g.terms)
		if denom < 1 {
			denom = 1
		}
		score += g.weight * float64(hits) / float64(denom)
	}

	reasons := matched
	if p.IsPrime {
		reasons = append(reasons, "Prime shipping available")
	}
	if p.Rating >= 4.0 {
		reasons = append(reasons, fmt.Sprintf("highly rated (%.1f stars)", p.Rating))
	}

	return score, reasons
}

// Rank scores every product against the profile and returns them sorted by
// descending score, with ties broken by ascending price. The inputs are not
// mutated; enrichment is attached to the returned copies.
func Rank(products []models.Product, profile models.StyleProfile) []models.Product {
	ranked := make([]models.Product, len(products))
	for i, p := range products {
		score, reasons := Score(p, profile)
		p.Score = score
		p.MatchReasons = reasons
		p.PriceTier = models.TierForPrice(p.Price)
		ranked[i] = p
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].Price < ranked[j].Price
	})

	return ranked
}
