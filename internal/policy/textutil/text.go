// Package textutil prepares submission text for the checkers.
package textutil

import (
	"fmt"
	"sort"
	"strings"
	"unicode"
)

var quoteReplacer = strings.NewReplacer(
	"‘", "'",
	"’", "'",
	"“", `"`,
	"”", `"`,
	"–", "-",
	"—", " - ",
)

// Document is the pre-split view of one submission's text, shared read-only
// by every checker in an evaluation.
type Document struct {
	Raw       string
	Text      string
	Sentences []string
	Words     []string
}

func NewDocument(raw string) *Document {
	text := quoteReplacer.Replace(raw)
	return &Document{
		Raw:       raw,
		Text:      text,
		Sentences: SplitSentences(text),
		Words:     Words(text),
	}
}

// Empty reports whether the document has nothing to scan.
func (d *Document) Empty() bool {
	return d == nil || strings.TrimSpace(d.Text) == ""
}

// WordsPerSentence is the average sentence length, 0 when there are no
// sentences.
func (d *Document) WordsPerSentence() float64 {
	if len(d.Sentences) == 0 {
		return 0
	}
	return float64(len(d.Words)) / float64(len(d.Sentences))
}

// SyllablesPerWord is the average syllable count, 0 when there are no words.
func (d *Document) SyllablesPerWord() float64 {
	if len(d.Words) == 0 {
		return 0
	}
	total := 0
	for _, w := range d.Words {
		total += CountSyllables(w)
	}
	return float64(total) / float64(len(d.Words))
}

// SentenceStats measures one sentence.
type SentenceStats struct {
	Words            int
	SyllablesPerWord float64
}

// SentenceStats returns per-sentence measurements in document order.
func (d *Document) SentenceStats() []SentenceStats {
	out := make([]SentenceStats, 0, len(d.Sentences))
	for _, s := range d.Sentences {
		words := Words(s)
		if len(words) == 0 {
			continue
		}
		total := 0
		for _, w := range words {
			total += CountSyllables(w)
		}
		out = append(out, SentenceStats{
			Words:            len(words),
			SyllablesPerWord: float64(total) / float64(len(words)),
		})
	}
	return out
}

// SplitSentences splits on '.', '!' and '?' and drops empty segments.
func SplitSentences(text string) []string {
	parts := strings.FieldsFunc(text, func(r rune) bool {
		return r == '.' || r == '!' || r == '?'
	})
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if len(Words(p)) > 0 {
			out = append(out, strings.TrimSpace(p))
		}
	}
	return out
}

// Words returns whitespace-separated tokens with surrounding punctuation
// removed. Tokens without a letter are dropped.
func Words(text string) []string {
	var out []string
	for _, f := range strings.Fields(text) {
		w := strings.TrimFunc(f, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})
		if strings.IndexFunc(w, unicode.IsLetter) >= 0 {
			out = append(out, w)
		}
	}
	return out
}

// CountSyllables counts vowel groups (a, e, i, o, u, y), subtracts one for a
// trailing silent "e" and never returns less than one.
func CountSyllables(word string) int {
	w := strings.ToLower(word)
	count := 0
	inVowel := false
	last := rune(0)
	for _, r := range w {
		if !unicode.IsLetter(r) {
			continue
		}
		vowel := strings.ContainsRune("aeiouy", r)
		if vowel && !inVowel {
			count++
		}
		inVowel = vowel
		last = r
	}
	if last == 'e' {
		count--
	}
	if count < 1 {
		count = 1
	}
	return count
}

// Flatten renders nested structured content (maps, slices, strings) into
// newline-separated text. Map keys are visited in sorted order so the result
// is deterministic; non-text scalars are skipped.
func Flatten(content interface{}) string {
	var parts []string
	flatten(content, &parts)
	return strings.Join(parts, "\n")
}

func flatten(v interface{}, parts *[]string) {
	switch val := v.(type) {
	case nil:
	case string:
		if s := strings.TrimSpace(val); s != "" {
			*parts = append(*parts, s)
		}
	case []string:
		for _, s := range val {
			flatten(s, parts)
		}
	case []interface{}:
		for _, item := range val {
			flatten(item, parts)
		}
	case map[string]interface{}:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			flatten(val[k], parts)
		}
	case map[string]string:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			flatten(val[k], parts)
		}
	case fmt.Stringer:
		flatten(val.String(), parts)
	}
}
