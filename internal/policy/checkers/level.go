package checkers

import (
	"strings"

	"content-policy-workers/internal/models"
	"content-policy-workers/internal/policy/lexicon"
	"content-policy-workers/internal/policy/textutil"
	"content-policy-workers/internal/policy/tiers"
)

const maxLevel = 10

var violenceKeys = []string{
	"violence/combat",
	"violence/injury",
	"violence/death",
	"violence/weapons",
	"violence/suffering",
	"violence/destruction",
}

var scarinessKeys = []string{
	"scariness/darkness",
	"scariness/evil_entities",
	"scariness/fear_emotion",
	"scariness/horror",
	"scariness/isolation",
	"scariness/divine_judgment",
}

// LevelChecker scores text 0-10 by summing the weight of every lexicon
// category with at least one hit and compares it with a tier maximum.
type LevelChecker struct {
	category models.Category
	name     string
	rule     string
	keys     []string
	limit    func(tiers.AgeTierPolicy) int
}

func Violence() LevelChecker {
	return LevelChecker{
		category: models.CategoryViolenceLevel,
		name:     "Violence",
		rule:     "violence/over_threshold",
		keys:     violenceKeys,
		limit:    func(p tiers.AgeTierPolicy) int { return p.MaxViolenceScore },
	}
}

func Scariness() LevelChecker {
	return LevelChecker{
		category: models.CategoryScarinessLevel,
		name:     "Scariness",
		rule:     "scariness/over_threshold",
		keys:     scarinessKeys,
		limit:    func(p tiers.AgeTierPolicy) int { return p.MaxScarinessScore },
	}
}

func (c LevelChecker) Category() models.Category {
	return c.category
}

// Score returns the 0-10 level and the labels of the categories that hit.
func (c LevelChecker) Score(lex *lexicon.Lexicon, text string) (int, []string) {
	return weightedLevel(lex, c.keys, text)
}

func (c LevelChecker) Check(doc *textutil.Document, cc *Context) (models.CheckFinding, error) {
	b := newFinding(c.category)
	if doc.Empty() {
		return b.build(), nil
	}

	level, hits := c.Score(cc.Lexicon, doc.Text)
	limit := c.limit(cc.Tier)
	if level > limit {
		over := level - limit
		b.violation(overageSeverity(over), over*cc.Deductions.OveragePerPoint, c.rule,
			"%s level %d/10 exceeds the %s limit of %d (%s)",
			c.name, level, cc.Tier.Tier, limit, strings.Join(hits, ", "))
		b.measure("level", float64(level))
		b.measure("limit", float64(limit))
	}

	return b.build(), nil
}

func overageSeverity(over int) models.Severity {
	switch {
	case over >= 4:
		return models.SeverityHigh
	case over >= 2:
		return models.SeverityMedium
	default:
		return models.SeverityLow
	}
}

// weightedLevel counts each category at most once and caps the sum at 10.
func weightedLevel(lex *lexicon.Lexicon, keys []string, text string) (int, []string) {
	level := 0
	var hits []string
	for _, key := range keys {
		cat, ok := lex.Category(key)
		if !ok || !lex.Matches(key, text) {
			continue
		}
		level += cat.Weight
		hits = append(hits, cat.Label)
	}
	if level > maxLevel {
		level = maxLevel
	}
	return level, hits
}
