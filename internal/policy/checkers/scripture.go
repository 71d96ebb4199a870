package checkers

import (
	"fmt"
	"regexp"
	"strings"

	"content-policy-workers/internal/models"
	"content-policy-workers/internal/policy/textutil"
)

var versesPattern = regexp.MustCompile(`^\d+([,-]\d+)*$`)

var canonicalBooks = []string{
	"Genesis", "Exodus", "Leviticus", "Numbers", "Deuteronomy",
	"Joshua", "Judges", "Ruth", "1 Samuel", "2 Samuel",
	"1 Kings", "2 Kings", "1 Chronicles", "2 Chronicles", "Ezra",
	"Nehemiah", "Esther", "Job", "Psalms", "Proverbs",
	"Ecclesiastes", "Song of Solomon", "Isaiah", "Jeremiah", "Lamentations",
	"Ezekiel", "Daniel", "Hosea", "Joel", "Amos",
	"Obadiah", "Jonah", "Micah", "Nahum", "Habakkuk",
	"Zephaniah", "Haggai", "Zechariah", "Malachi",
	"Matthew", "Mark", "Luke", "John", "Acts",
	"Romans", "1 Corinthians", "2 Corinthians", "Galatians", "Ephesians",
	"Philippians", "Colossians", "1 Thessalonians", "2 Thessalonians", "1 Timothy",
	"2 Timothy", "Titus", "Philemon", "Hebrews", "James",
	"1 Peter", "2 Peter", "1 John", "2 John", "3 John",
	"Jude", "Revelation",
}

var bookAliases = map[string]string{
	"psalm":         "psalms",
	"song of songs": "song of solomon",
	"revelations":   "revelation",
}

var canonIndex = func() map[string]bool {
	idx := make(map[string]bool, len(canonicalBooks))
	for _, b := range canonicalBooks {
		idx[normalizeBook(b)] = true
	}
	return idx
}()

func normalizeBook(name string) string {
	n := strings.ToLower(strings.Join(strings.Fields(name), " "))
	if alias, ok := bookAliases[n]; ok {
		return alias
	}
	return n
}

// CanonicalBook reports whether name is one of the 66 canonical books.
func CanonicalBook(name string) bool {
	return canonIndex[normalizeBook(name)]
}

// ValidVerses reports whether spec follows digit+([,-]digit+)*.
func ValidVerses(spec string) bool {
	return versesPattern.MatchString(strings.TrimSpace(spec))
}

// Scripture validates supplied references. It runs even for empty text since
// references are checked independently of the prose.
type Scripture struct{}

func (Scripture) Category() models.Category {
	return models.CategoryScriptureAccuracy
}

func (Scripture) Check(_ *textutil.Document, cc *Context) (models.CheckFinding, error) {
	b := newFinding(models.CategoryScriptureAccuracy)
	if cc.Submission == nil || len(cc.Submission.ScriptureReferences) == 0 {
		return b.build(), nil
	}

	deduction := cc.Deductions.InvalidReference
	var accepted []string
	for _, ref := range cc.Submission.ScriptureReferences {
		name := formatReference(ref)
		valid := true

		if !cc.Lexicon.ApprovedTranslation(ref.Translation) {
			b.violation(models.SeverityHigh, deduction, "scripture/translation",
				"%s: translation %q is not an approved translation", name, ref.Translation)
			valid = false
		}
		if !CanonicalBook(ref.Book) {
			b.violation(models.SeverityHigh, deduction, "scripture/book",
				"%s: %q is not a canonical book of the Bible", name, ref.Book)
			valid = false
		}
		if ref.Chapter <= 0 {
			b.violation(models.SeverityHigh, deduction, "scripture/chapter",
				"%s: chapter must be greater than zero", name)
			valid = false
		}
		if !ValidVerses(ref.Verses) {
			b.violation(models.SeverityHigh, deduction, "scripture/verses",
				"%s: verse specification %q is malformed", name, ref.Verses)
			valid = false
		}

		if valid {
			accepted = append(accepted, name)
		}
	}

	if len(accepted) > 0 {
		b.note("Verified references: %s.", strings.Join(accepted, "; "))
	}
	b.measure("references", float64(len(cc.Submission.ScriptureReferences)))
	b.measure("accepted", float64(len(accepted)))

	return b.build(), nil
}

func formatReference(ref models.ScriptureReference) string {
	s := fmt.Sprintf("%s %d:%s", strings.TrimSpace(ref.Book), ref.Chapter, strings.TrimSpace(ref.Verses))
	if t := strings.TrimSpace(ref.Translation); t != "" {
		s += " (" + strings.ToUpper(t) + ")"
	}
	return s
}
