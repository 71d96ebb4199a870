package checkers

import (
	"strings"

	"content-policy-workers/internal/models"
	"content-policy-workers/internal/policy/textutil"
)

var positiveKeys = []string{
	"positive/love",
	"positive/hope",
	"positive/kindness",
	"positive/forgiveness",
	"positive/helping",
	"positive/courage",
	"positive/gratitude",
	"positive/faith",
}

var negativeKeys = []string{
	"negative/hate",
	"negative/hopelessness",
	"negative/worthlessness",
	"negative/revenge",
}

type PositiveMessaging struct{}

func (PositiveMessaging) Category() models.Category {
	return models.CategoryPositiveMessaging
}

func (PositiveMessaging) Check(doc *textutil.Document, cc *Context) (models.CheckFinding, error) {
	b := newFinding(models.CategoryPositiveMessaging)
	if doc.Empty() {
		return b.build(), nil
	}

	lex := cc.Lexicon
	level, themes := weightedLevel(lex, positiveKeys, doc.Text)
	if level < cc.PositiveFloor {
		b.violation(models.SeverityMedium, cc.Deductions.PositiveDeficit, "positive/deficit",
			"Content lacks sufficient positive messaging (level %d/10, minimum %d)", level, cc.PositiveFloor)
		b.measure("level", float64(level))
		if len(themes) > 0 {
			b.note("Positive themes present: %s.", strings.Join(themes, ", "))
		}
	}

	for _, key := range negativeKeys {
		if phrase, found := lex.FirstMatch(key, doc.Text); found {
			b.warning(key, "Negative theme: %s (%q)", label(lex, key), phrase)
		}
	}

	return b.build(), nil
}
