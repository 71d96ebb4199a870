package checkers

import (
	"content-policy-workers/internal/models"
	"content-policy-workers/internal/policy/textutil"
)

const (
	keySalvationVocabulary = "doctrinal/salvation_vocabulary"
	keyChristReference     = "doctrinal/christ_reference"
)

var doctrinalKeys = []string{
	"doctrinal/works_based_salvation",
	"doctrinal/universalism",
	"doctrinal/prosperity_gospel",
	"doctrinal/replacement_theology",
	"doctrinal/trinity_denial",
	"doctrinal/mythologized_christ",
}

// Doctrinal deducts once per violated doctrinal category no matter how many
// of its phrases occur, and flags salvation language that never names Christ.
type Doctrinal struct{}

func (Doctrinal) Category() models.Category {
	return models.CategoryDoctrinalSoundness
}

func (Doctrinal) Check(doc *textutil.Document, cc *Context) (models.CheckFinding, error) {
	b := newFinding(models.CategoryDoctrinalSoundness)
	if doc.Empty() {
		return b.build(), nil
	}

	lex := cc.Lexicon
	for _, key := range doctrinalKeys {
		cat, ok := lex.Category(key)
		if !ok {
			continue
		}
		if phrase, found := lex.FirstMatch(key, doc.Text); found {
			b.violation(cat.Severity, cat.Weight, key,
				"Doctrinal concern: %s detected (%q)", cat.Label, phrase)
		}
	}

	if vocab, found := lex.FirstMatch(keySalvationVocabulary, doc.Text); found && !lex.Matches(keyChristReference, doc.Text) {
		if cat, ok := lex.Category(keyChristReference); ok {
			b.violation(cat.Severity, cat.Weight, keyChristReference,
				"Content uses salvation language (%q) but lacks clear reference to Christ", vocab)
		}
	}

	return b.build(), nil
}
