package checkers

import (
	"strings"

	"content-policy-workers/internal/models"
	"content-policy-workers/internal/policy/textutil"
)

const keyComplexTheology = "age/complex_theology"

// AgeAppropriateness applies the tier's banned-concept lists. A concept listed
// as both high and medium is only reported as high.
type AgeAppropriateness struct{}

func (AgeAppropriateness) Category() models.Category {
	return models.CategoryAgeAppropriateness
}

func (AgeAppropriateness) Check(doc *textutil.Document, cc *Context) (models.CheckFinding, error) {
	b := newFinding(models.CategoryAgeAppropriateness)
	if doc.Empty() {
		return b.build(), nil
	}

	tier := cc.Tier
	reported := make(map[string]bool)
	for _, c := range tier.HighConcepts {
		if reported[c.Phrase] || !c.MatchString(doc.Text) {
			continue
		}
		reported[c.Phrase] = true
		b.violation(models.SeverityHigh, cc.Deductions.ConceptHigh, "age/high_concept",
			"%q is not appropriate for the %s tier", c.Phrase, tier.Tier)
	}
	for _, c := range tier.MediumConcepts {
		if reported[c.Phrase] || !c.MatchString(doc.Text) {
			continue
		}
		reported[c.Phrase] = true
		b.violation(models.SeverityMedium, cc.Deductions.ConceptMedium, "age/medium_concept",
			"%q needs careful handling for the %s tier", c.Phrase, tier.Tier)
	}

	if tier.WarnComplexTheology {
		var terms []string
		for _, t := range cc.Lexicon.Matched(keyComplexTheology, doc.Text) {
			terms = append(terms, t.Pattern)
		}
		if len(terms) > 0 {
			b.warning(keyComplexTheology, "Complex theological vocabulary for the %s tier: %s",
				tier.Tier, strings.Join(terms, ", "))
		}
	}

	var themes []string
	for _, c := range tier.Themes {
		if c.MatchString(doc.Text) {
			themes = append(themes, c.Phrase)
		}
	}
	if len(themes) > 0 {
		b.note("Age-appropriate themes present: %s.", strings.Join(themes, ", "))
	}

	return b.build(), nil
}
