// Package lexicon holds the versioned tables of weighted patterns the content
// checkers match against submissions.
package lexicon

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"content-policy-workers/internal/models"
)

// Term is one compiled pattern of a category. Weight and Severity default to
// the owning category's values unless the pattern overrides them.
type Term struct {
	Pattern  string
	IsRegex  bool
	Weight   int
	Severity models.Severity
	re       *regexp.Regexp
}

// MatchString reports whether the term occurs in text (case-insensitive).
func (t Term) MatchString(text string) bool {
	return t.re != nil && t.re.MatchString(text)
}

// Find returns the first occurrence of the term in text, or "".
func (t Term) Find(text string) string {
	if t.re == nil {
		return ""
	}
	return t.re.FindString(text)
}

type Category struct {
	Key      string
	Label    string
	Weight   int
	Severity models.Severity
	Terms    []Term
}

// Lexicon is immutable once compiled and safe for concurrent use.
type Lexicon struct {
	version      string
	categories   map[string]*Category
	keys         []string
	translations map[string]bool
}

func (l *Lexicon) Version() string {
	return l.version
}

// Category returns the compiled category for key.
func (l *Lexicon) Category(key string) (*Category, bool) {
	c, ok := l.categories[key]
	return c, ok
}

// Terms returns the ordered terms of a category, or nil when the key is unknown.
func (l *Lexicon) Terms(key string) []Term {
	if c, ok := l.categories[key]; ok {
		return c.Terms
	}
	return nil
}

// Keys returns the sorted category keys under prefix ("violence/" etc).
func (l *Lexicon) Keys(prefix string) []string {
	var out []string
	for _, k := range l.keys {
		if strings.HasPrefix(k, prefix) {
			out = append(out, k)
		}
	}
	return out
}

// Matched returns the terms of key that occur in text, in lexicon order.
func (l *Lexicon) Matched(key, text string) []Term {
	var out []Term
	for _, t := range l.Terms(key) {
		if t.MatchString(text) {
			out = append(out, t)
		}
	}
	return out
}

// Matches reports whether any term of key occurs in text.
func (l *Lexicon) Matches(key, text string) bool {
	for _, t := range l.Terms(key) {
		if t.MatchString(text) {
			return true
		}
	}
	return false
}

// FirstMatch returns the first matched fragment of any term of key.
func (l *Lexicon) FirstMatch(key, text string) (string, bool) {
	for _, t := range l.Terms(key) {
		if m := t.Find(text); m != "" {
			return m, true
		}
	}
	return "", false
}

// ApprovedTranslation reports whether code is an approved Bible translation.
func (l *Lexicon) ApprovedTranslation(code string) bool {
	return l.translations[strings.ToUpper(strings.TrimSpace(code))]
}

// Require fails when any of keys is missing from the lexicon.
func (l *Lexicon) Require(keys ...string) error {
	var missing []string
	for _, k := range keys {
		if _, ok := l.categories[k]; !ok {
			missing = append(missing, k)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("lexicon %s is missing categories: %s", l.version, strings.Join(missing, ", "))
	}
	return nil
}

// CompileLiteral turns a literal phrase into a case-insensitive matcher that
// respects word boundaries and tolerates any run of whitespace between words.
func CompileLiteral(literal string) (*regexp.Regexp, error) {
	lit := strings.ToLower(strings.Join(strings.Fields(literal), " "))
	if lit == "" {
		return nil, fmt.Errorf("empty literal pattern")
	}
	expr := strings.ReplaceAll(regexp.QuoteMeta(lit), " ", `\s+`)
	if isWordByte(lit[0]) {
		expr = `\b` + expr
	}
	if isWordByte(lit[len(lit)-1]) {
		expr += `\b`
	}
	return regexp.Compile(`(?i)` + expr)
}

func compileRegex(expr string) (*regexp.Regexp, error) {
	return regexp.Compile(`(?i)` + expr)
}

func isWordByte(b byte) bool {
	return b == '_' || ('0' <= b && b <= '9') || ('a' <= b && b <= 'z') || ('A' <= b && b <= 'Z')
}

func compile(doc *document) (*Lexicon, error) {
	if strings.TrimSpace(doc.Version) == "" {
		return nil, fmt.Errorf("lexicon version is required")
	}

	lex := &Lexicon{
		version:      doc.Version,
		categories:   make(map[string]*Category, len(doc.Categories)),
		translations: make(map[string]bool, len(doc.ApprovedTranslations)),
	}

	for _, code := range doc.ApprovedTranslations {
		lex.translations[strings.ToUpper(strings.TrimSpace(code))] = true
	}

	for key, spec := range doc.Categories {
		severity := spec.Severity
		if severity == "" {
			severity = models.SeverityNone
		}
		if !severity.Valid() {
			return nil, fmt.Errorf("category %s: unknown severity %q", key, spec.Severity)
		}
		if spec.Weight < 0 {
			return nil, fmt.Errorf("category %s: weight must be non-negative", key)
		}
		if len(spec.Patterns) == 0 {
			return nil, fmt.Errorf("category %s: at least one pattern is required", key)
		}

		label := spec.Label
		if label == "" {
			label = key
		}
		cat := &Category{
			Key:      key,
			Label:    label,
			Weight:   spec.Weight,
			Severity: severity,
			Terms:    make([]Term, 0, len(spec.Patterns)),
		}

		for i, p := range spec.Patterns {
			term, err := p.compile(cat)
			if err != nil {
				return nil, fmt.Errorf("category %s pattern %d: %w", key, i, err)
			}
			cat.Terms = append(cat.Terms, term)
		}

		lex.categories[key] = cat
		lex.keys = append(lex.keys, key)
	}

	sort.Strings(lex.keys)
	return lex, nil
}
