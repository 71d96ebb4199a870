// Package tiers holds the per-age-tier policy table. Lookups never fall back
// to a default tier.
package tiers

import (
	"fmt"
	"regexp"
	"strings"

	"content-policy-workers/internal/models"
	"content-policy-workers/internal/policy/lexicon"
)

// AgeTierPolicy is the threshold set applied to one age tier.
type AgeTierPolicy struct {
	Tier                 models.AgeTier `yaml:"-"`
	Label                string         `yaml:"label"`
	MaxViolenceScore     int            `yaml:"max_violence_score"`
	MaxScarinessScore    int            `yaml:"max_scariness_score"`
	MaxWordsPerSentence  float64        `yaml:"max_words_per_sentence"`
	MaxSyllablesPerWord  float64        `yaml:"max_syllables_per_word"`
	WarnComplexTheology  bool           `yaml:"warn_complex_theology"`
	BannedConceptsHigh   []string       `yaml:"banned_concepts_high"`
	BannedConceptsMedium []string       `yaml:"banned_concepts_medium"`
	AllowedThemes        []string       `yaml:"allowed_themes"`

	HighConcepts   []Concept `yaml:"-"`
	MediumConcepts []Concept `yaml:"-"`
	Themes         []Concept `yaml:"-"`
}

// Concept is a compiled banned-concept or theme phrase.
type Concept struct {
	Phrase string
	re     *regexp.Regexp
}

func (c Concept) MatchString(text string) bool {
	return c.re != nil && c.re.MatchString(text)
}

func compileConcepts(tier models.AgeTier, phrases []string) ([]Concept, error) {
	out := make([]Concept, 0, len(phrases))
	for _, p := range phrases {
		re, err := lexicon.CompileLiteral(p)
		if err != nil {
			return nil, fmt.Errorf("tier %s: concept %q: %w", tier, p, err)
		}
		out = append(out, Concept{Phrase: normalizeConcept(p), re: re})
	}
	return out, nil
}

// Deductions are the score magnitudes the checkers apply for tier-relative
// violations. They live with the tier table so both move together.
type Deductions struct {
	ConceptHigh      int `yaml:"concept_high"`
	ConceptMedium    int `yaml:"concept_medium"`
	OveragePerPoint  int `yaml:"overage_per_point"`
	ReadingLevel     int `yaml:"reading_level"`
	InvalidReference int `yaml:"invalid_reference"`
	PositiveDeficit  int `yaml:"positive_deficit"`
}

// Table is immutable once loaded.
type Table struct {
	version    string
	deductions Deductions
	tiers      map[models.AgeTier]AgeTierPolicy
}

// UnknownTierError is returned for tiers outside the closed enum or missing
// from the table.
type UnknownTierError struct {
	Tier models.AgeTier
}

func (e *UnknownTierError) Error() string {
	return fmt.Sprintf("unknown age tier %q", string(e.Tier))
}

func (t *Table) Version() string {
	return t.version
}

func (t *Table) Deductions() Deductions {
	return t.deductions
}

// Lookup returns the policy for tier or *UnknownTierError.
func (t *Table) Lookup(tier models.AgeTier) (AgeTierPolicy, error) {
	p, ok := t.tiers[tier]
	if !ok {
		return AgeTierPolicy{}, &UnknownTierError{Tier: tier}
	}
	return p, nil
}

// validate checks completeness and that strictness never loosens toward
// younger tiers.
func (t *Table) validate() error {
	if strings.TrimSpace(t.version) == "" {
		return fmt.Errorf("tier table version is required")
	}

	d := t.deductions
	for name, v := range map[string]int{
		"concept_high":      d.ConceptHigh,
		"concept_medium":    d.ConceptMedium,
		"overage_per_point": d.OveragePerPoint,
		"reading_level":     d.ReadingLevel,
		"invalid_reference": d.InvalidReference,
		"positive_deficit":  d.PositiveDeficit,
	} {
		if v <= 0 {
			return fmt.Errorf("deduction %s must be positive", name)
		}
	}

	for tier := range t.tiers {
		if tier.Rank() < 0 {
			return fmt.Errorf("tier table defines unknown tier %q", tier)
		}
	}

	for _, tier := range models.AgeTiers {
		p, ok := t.tiers[tier]
		if !ok {
			return fmt.Errorf("tier table is missing tier %q", tier)
		}
		if p.MaxViolenceScore < 0 || p.MaxViolenceScore > 10 {
			return fmt.Errorf("tier %s: max_violence_score must be within 0-10", tier)
		}
		if p.MaxScarinessScore < 0 || p.MaxScarinessScore > 10 {
			return fmt.Errorf("tier %s: max_scariness_score must be within 0-10", tier)
		}
		if p.MaxWordsPerSentence <= 0 || p.MaxSyllablesPerWord <= 0 {
			return fmt.Errorf("tier %s: reading maxima must be positive", tier)
		}
	}

	for i := 1; i < len(models.AgeTiers); i++ {
		younger := t.tiers[models.AgeTiers[i-1]]
		older := t.tiers[models.AgeTiers[i]]
		if err := stricter(younger, older); err != nil {
			return err
		}
	}
	return nil
}

func stricter(younger, older AgeTierPolicy) error {
	switch {
	case younger.MaxViolenceScore > older.MaxViolenceScore:
		return fmt.Errorf("tier %s allows more violence than %s", younger.Tier, older.Tier)
	case younger.MaxScarinessScore > older.MaxScarinessScore:
		return fmt.Errorf("tier %s allows more scariness than %s", younger.Tier, older.Tier)
	case younger.MaxWordsPerSentence > older.MaxWordsPerSentence:
		return fmt.Errorf("tier %s allows longer sentences than %s", younger.Tier, older.Tier)
	case younger.MaxSyllablesPerWord > older.MaxSyllablesPerWord:
		return fmt.Errorf("tier %s allows more complex words than %s", younger.Tier, older.Tier)
	case older.WarnComplexTheology && !younger.WarnComplexTheology:
		return fmt.Errorf("tier %s warns on complex theology but %s does not", older.Tier, younger.Tier)
	}

	high := conceptSet(younger.BannedConceptsHigh)
	for _, c := range older.BannedConceptsHigh {
		if !high[normalizeConcept(c)] {
			return fmt.Errorf("concept %q is high for %s but not for %s", c, older.Tier, younger.Tier)
		}
	}

	atLeastMedium := conceptSet(younger.BannedConceptsHigh, younger.BannedConceptsMedium)
	for _, c := range older.BannedConceptsMedium {
		if !atLeastMedium[normalizeConcept(c)] {
			return fmt.Errorf("concept %q is banned for %s but not for %s", c, older.Tier, younger.Tier)
		}
	}
	return nil
}

func conceptSet(lists ...[]string) map[string]bool {
	set := make(map[string]bool)
	for _, list := range lists {
		for _, c := range list {
			set[normalizeConcept(c)] = true
		}
	}
	return set
}

func normalizeConcept(c string) string {
	return strings.ToLower(strings.Join(strings.Fields(c), " "))
}
