package checkers

import (
	"math"

	"content-policy-workers/internal/models"
	"content-policy-workers/internal/policy/textutil"
)

// ReadingLevel compares every sentence's length and word complexity with
// the tier maxima. Each metric exceeded by at least one sentence is one
// violation, so adding sentences can never clear an existing one. Document
// averages are kept as measurements.
type ReadingLevel struct{}

func (ReadingLevel) Category() models.Category {
	return models.CategoryReadingLevel
}

func (ReadingLevel) Check(doc *textutil.Document, cc *Context) (models.CheckFinding, error) {
	b := newFinding(models.CategoryReadingLevel)
	if doc.Empty() {
		return b.build(), nil
	}
	stats := doc.SentenceStats()
	if len(stats) == 0 {
		return b.build(), nil
	}

	tier := cc.Tier
	longSentences, denseSentences := 0, 0
	longest, densest := 0, 0.0
	for _, st := range stats {
		if float64(st.Words) > tier.MaxWordsPerSentence {
			longSentences++
		}
		if round2(st.SyllablesPerWord) > tier.MaxSyllablesPerWord {
			denseSentences++
		}
		if st.Words > longest {
			longest = st.Words
		}
		if st.SyllablesPerWord > densest {
			densest = st.SyllablesPerWord
		}
	}

	if longSentences > 0 {
		b.violation(models.SeverityLow, cc.Deductions.ReadingLevel, "reading/sentence_length",
			"%d of %d sentences exceed the %s limit of %.0f words (longest %d)",
			longSentences, len(stats), tier.Tier, tier.MaxWordsPerSentence, longest)
	}
	if denseSentences > 0 {
		b.violation(models.SeverityLow, cc.Deductions.ReadingLevel, "reading/word_complexity",
			"%d of %d sentences exceed the %s word complexity limit of %.2f syllables (highest %.2f)",
			denseSentences, len(stats), tier.Tier, tier.MaxSyllablesPerWord, round2(densest))
	}
	if len(b.f.Messages) > 0 {
		b.measure("wordsPerSentence", round2(doc.WordsPerSentence()))
		b.measure("syllablesPerWord", round2(doc.SyllablesPerWord()))
		b.measure("longestSentence", float64(longest))
	}

	return b.build(), nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
