// Package checkers implements the independent content checks. Each checker
// owns one finding category, reads only its Context and the shared Document,
// and never calls another checker.
package checkers

import (
	"fmt"

	"content-policy-workers/internal/models"
	"content-policy-workers/internal/policy/lexicon"
	"content-policy-workers/internal/policy/textutil"
	"content-policy-workers/internal/policy/tiers"
)

// Context is the read-only policy view for one evaluation.
type Context struct {
	Submission    *models.ContentSubmission
	Tier          tiers.AgeTierPolicy
	Deductions    tiers.Deductions
	Lexicon       *lexicon.Lexicon
	PositiveFloor int
}

type Checker interface {
	Category() models.Category
	Check(doc *textutil.Document, cc *Context) (models.CheckFinding, error)
}

// Default returns the registered checkers in reporting order.
func Default() []Checker {
	return []Checker{
		Doctrinal{},
		Scripture{},
		Denominational{},
		AgeAppropriateness{},
		Violence(),
		Scariness(),
		PsychologicalSafety{},
		Inappropriate{},
		ReadingLevel{},
		PositiveMessaging{},
	}
}

// RequiredLexiconKeys lists every lexicon category the default checkers read.
func RequiredLexiconKeys() []string {
	keys := []string{
		keySalvationVocabulary,
		keyChristReference,
		keyComplexTheology,
	}
	keys = append(keys, doctrinalKeys...)
	keys = append(keys, denominationalKeys...)
	keys = append(keys, violenceKeys...)
	keys = append(keys, scarinessKeys...)
	keys = append(keys, psychRiskKeys...)
	keys = append(keys, protectiveKeys...)
	keys = append(keys, inappropriateKeys...)
	keys = append(keys, positiveKeys...)
	keys = append(keys, negativeKeys...)
	return keys
}

// findingBuilder accumulates messages for one category. Deductions are given
// as positive magnitudes and stored as a negative ScoreDelta.
type findingBuilder struct {
	f models.CheckFinding
}

func newFinding(category models.Category) *findingBuilder {
	return &findingBuilder{f: models.CheckFinding{
		Category: category,
		Severity: models.SeverityNone,
	}}
}

func (b *findingBuilder) violation(severity models.Severity, deduction int, rule, format string, args ...interface{}) {
	b.f.Severity = models.MaxSeverity(b.f.Severity, severity)
	b.f.ScoreDelta -= deduction
	b.f.Messages = append(b.f.Messages, models.FindingMessage{
		Text:      fmt.Sprintf(format, args...),
		Violation: true,
		Rule:      rule,
	})
}

func (b *findingBuilder) warning(rule, format string, args ...interface{}) {
	b.f.Severity = models.MaxSeverity(b.f.Severity, models.SeverityLow)
	b.f.Messages = append(b.f.Messages, models.FindingMessage{
		Text: fmt.Sprintf(format, args...),
		Rule: rule,
	})
}

func (b *findingBuilder) note(format string, args ...interface{}) {
	b.f.Notes = append(b.f.Notes, fmt.Sprintf(format, args...))
}

func (b *findingBuilder) measure(name string, value float64) {
	if b.f.Measure == nil {
		b.f.Measure = make(map[string]float64)
	}
	b.f.Measure[name] = value
}

// build returns the finding, or an empty one when nothing was recorded.
func (b *findingBuilder) build() models.CheckFinding {
	if len(b.f.Messages) == 0 && len(b.f.Notes) == 0 && b.f.ScoreDelta == 0 {
		return models.CheckFinding{Category: b.f.Category, Severity: models.SeverityNone}
	}
	return b.f
}

func label(lex *lexicon.Lexicon, key string) string {
	if c, ok := lex.Category(key); ok {
		return c.Label
	}
	return key
}
