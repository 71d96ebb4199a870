package checkers

import (
	"content-policy-workers/internal/models"
	"content-policy-workers/internal/policy/textutil"
)

var inappropriateKeys = []string{
	"inappropriate/sexual",
	"inappropriate/discrimination",
	"inappropriate/substances",
	"inappropriate/gambling",
}

type Inappropriate struct{}

func (Inappropriate) Category() models.Category {
	return models.CategoryInappropriateContent
}

func (Inappropriate) Check(doc *textutil.Document, cc *Context) (models.CheckFinding, error) {
	b := newFinding(models.CategoryInappropriateContent)
	if doc.Empty() {
		return b.build(), nil
	}

	for _, key := range inappropriateKeys {
		cat, ok := cc.Lexicon.Category(key)
		if !ok {
			continue
		}
		if phrase, found := cc.Lexicon.FirstMatch(key, doc.Text); found {
			b.violation(cat.Severity, cat.Weight, key,
				"Inappropriate content: %s (%q)", cat.Label, phrase)
		}
	}

	return b.build(), nil
}
