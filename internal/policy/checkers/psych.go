package checkers

import (
	"strings"

	"content-policy-workers/internal/models"
	"content-policy-workers/internal/policy/textutil"
)

var psychRiskKeys = []string{
	"psych/abandonment",
	"psych/worthlessness",
	"psych/unforgivable_guilt",
	"psych/surveillance",
}

var protectiveKeys = []string{
	"protective/love",
	"protective/forgiveness",
	"protective/support",
	"protective/hope",
	"protective/safety",
}

// PsychologicalSafety reports protective factors as notes only; they never
// offset a deduction.
type PsychologicalSafety struct{}

func (PsychologicalSafety) Category() models.Category {
	return models.CategoryPsychologicalSafety
}

func (PsychologicalSafety) Check(doc *textutil.Document, cc *Context) (models.CheckFinding, error) {
	b := newFinding(models.CategoryPsychologicalSafety)
	if doc.Empty() {
		return b.build(), nil
	}

	lex := cc.Lexicon
	for _, key := range psychRiskKeys {
		cat, ok := lex.Category(key)
		if !ok {
			continue
		}
		if phrase, found := lex.FirstMatch(key, doc.Text); found {
			b.violation(cat.Severity, cat.Weight, key,
				"Psychological safety risk: %s (%q)", cat.Label, phrase)
		}
	}

	var factors []string
	for _, key := range protectiveKeys {
		if lex.Matches(key, doc.Text) {
			factors = append(factors, label(lex, key))
		}
	}
	if len(factors) > 0 {
		b.note("Protective factors present: %s.", strings.Join(factors, ", "))
	}

	return b.build(), nil
}
