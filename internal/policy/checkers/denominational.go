package checkers

import (
	"strings"

	"content-policy-workers/internal/models"
	"content-policy-workers/internal/policy/textutil"
)

var denominationalKeys = []string{
	"denominational/exclusivity",
	"denominational/mandated_practice",
}

// Denominational stacks one deduction per distinct phrase found.
type Denominational struct{}

func (Denominational) Category() models.Category {
	return models.CategoryDenominationalNeutrality
}

func (Denominational) Check(doc *textutil.Document, cc *Context) (models.CheckFinding, error) {
	b := newFinding(models.CategoryDenominationalNeutrality)
	if doc.Empty() {
		return b.build(), nil
	}

	seen := make(map[string]bool)
	for _, key := range denominationalKeys {
		cat, ok := cc.Lexicon.Category(key)
		if !ok {
			continue
		}
		for _, term := range cat.Terms {
			phrase := term.Find(doc.Text)
			if phrase == "" {
				continue
			}
			norm := strings.ToLower(strings.Join(strings.Fields(phrase), " "))
			if seen[norm] {
				continue
			}
			seen[norm] = true
			b.violation(term.Severity, term.Weight, key,
				"Denominational concern: %s (%q)", cat.Label, phrase)
		}
	}

	return b.build(), nil
}
