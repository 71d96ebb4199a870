package checkers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"content-policy-workers/internal/models"
	"content-policy-workers/internal/policy/lexicon"
	"content-policy-workers/internal/policy/textutil"
	"content-policy-workers/internal/policy/tiers"
)

func newContext(t *testing.T, tier models.AgeTier, refs ...models.ScriptureReference) *Context {
	t.Helper()

	lex, err := lexicon.Default()
	require.NoError(t, err)
	table, err := tiers.Default()
	require.NoError(t, err)
	p, err := table.Lookup(tier)
	require.NoError(t, err)

	return &Context{
		Submission:    &models.ContentSubmission{TargetAgeTier: tier, ScriptureReferences: refs},
		Tier:          p,
		Deductions:    table.Deductions(),
		Lexicon:       lex,
		PositiveFloor: 7,
	}
}

func check(t *testing.T, c Checker, text string, cc *Context) models.CheckFinding {
	t.Helper()
	f, err := c.Check(textutil.NewDocument(text), cc)
	require.NoError(t, err)
	assert.Equal(t, c.Category(), f.Category)
	assert.LessOrEqual(t, f.ScoreDelta, 0)
	return f
}

func violations(f models.CheckFinding) []string {
	var out []string
	for _, m := range f.Messages {
		if m.Violation {
			out = append(out, m.Text)
		}
	}
	return out
}

func TestDefault_RegistryOrderAndCategories(t *testing.T) {
	registry := Default()
	require.Len(t, registry, 10)

	seen := make(map[models.Category]bool)
	for _, c := range registry {
		assert.False(t, seen[c.Category()], "duplicate category %s", c.Category())
		seen[c.Category()] = true
	}
	assert.Equal(t, models.CategoryDoctrinalSoundness, registry[0].Category())
	assert.Equal(t, models.CategoryPositiveMessaging, registry[9].Category())
}

func TestRequiredLexiconKeys_PresentInDefault(t *testing.T) {
	lex, err := lexicon.Default()
	require.NoError(t, err)
	assert.NoError(t, lex.Require(RequiredLexiconKeys()...))
}

func TestAllCheckers_EmptyTextIsVacuous(t *testing.T) {
	for _, tier := range models.AgeTiers {
		cc := newContext(t, tier)
		for _, c := range Default() {
			f := check(t, c, "", cc)
			assert.True(t, f.Empty(), "%s/%s", tier, c.Category())
			assert.Equal(t, models.SeverityNone, f.Severity)
		}
	}
}

func TestDoctrinal(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		wantDelta int
		wantSev   models.Severity
		wantRules []string
	}{
		{
			name:      "works-based salvation without Christ",
			text:      "You must work your way to heaven through good works-based salvation.",
			wantDelta: -60,
			wantSev:   models.SeverityCritical,
			wantRules: []string{"doctrinal/works_based_salvation", keyChristReference},
		},
		{
			name:      "repeated category deducts once",
			text:      "Jesus taught it. Works-based salvation is real. Earn your salvation. Work your way to heaven.",
			wantDelta: -40,
			wantSev:   models.SeverityCritical,
			wantRules: []string{"doctrinal/works_based_salvation"},
		},
		{
			name:      "two categories",
			text:      "Jesus is just a good teacher and all religions lead to God.",
			wantDelta: -80,
			wantSev:   models.SeverityCritical,
			wantRules: []string{"doctrinal/universalism", "doctrinal/trinity_denial"},
		},
		{
			name:      "salvation vocabulary without Christ",
			text:      "Have faith and you will go to heaven.",
			wantDelta: -20,
			wantSev:   models.SeverityHigh,
			wantRules: []string{keyChristReference},
		},
		{
			name:      "orthodox",
			text:      "God loved the world and gave His only Son, Jesus Christ, so that whoever believes has eternal life.",
			wantDelta: 0,
			wantSev:   models.SeverityNone,
		},
		{
			name:      "no salvation language",
			text:      "The children planted a garden together.",
			wantDelta: 0,
			wantSev:   models.SeverityNone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := check(t, Doctrinal{}, tt.text, newContext(t, models.AgeTierAdult))
			assert.Equal(t, tt.wantDelta, f.ScoreDelta)
			assert.Equal(t, tt.wantSev, f.Severity)

			var rules []string
			for _, m := range f.Messages {
				rules = append(rules, m.Rule)
			}
			assert.Equal(t, tt.wantRules, rules)
		})
	}
}

func TestDoctrinal_MessageNamesCategory(t *testing.T) {
	f := check(t, Doctrinal{}, "You must work your way to heaven through good works-based salvation.",
		newContext(t, models.AgeTierAdult))

	msgs := violations(f)
	require.Len(t, msgs, 2)
	assert.Contains(t, msgs[0], "works-based salvation")
	assert.Contains(t, msgs[1], "lacks clear reference to Christ")
}

func TestScripture(t *testing.T) {
	tests := []struct {
		name      string
		ref       models.ScriptureReference
		wantRules []string
	}{
		{"valid", models.ScriptureReference{Book: "John", Chapter: 3, Verses: "16", Translation: "ESV"}, nil},
		{"valid ranges", models.ScriptureReference{Book: "1 corinthians", Chapter: 13, Verses: "4-7,13", Translation: "niv"}, nil},
		{"alias", models.ScriptureReference{Book: "Psalm", Chapter: 23, Verses: "1", Translation: "KJV"}, nil},
		{"unknown book", models.ScriptureReference{Book: "Hezekiah", Chapter: 1, Verses: "1", Translation: "ESV"}, []string{"scripture/book"}},
		{"bad translation", models.ScriptureReference{Book: "John", Chapter: 1, Verses: "1", Translation: "XYZ"}, []string{"scripture/translation"}},
		{"zero chapter", models.ScriptureReference{Book: "John", Chapter: 0, Verses: "1", Translation: "ESV"}, []string{"scripture/chapter"}},
		{"bad verses", models.ScriptureReference{Book: "John", Chapter: 3, Verses: "16-", Translation: "ESV"}, []string{"scripture/verses"}},
		{
			"everything wrong",
			models.ScriptureReference{Book: "Hezekiah", Chapter: -1, Verses: "a", Translation: "XYZ"},
			[]string{"scripture/translation", "scripture/book", "scripture/chapter", "scripture/verses"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := check(t, Scripture{}, "", newContext(t, models.AgeTierAdult, tt.ref))

			var rules []string
			for _, m := range f.Messages {
				assert.True(t, m.Violation)
				rules = append(rules, m.Rule)
			}
			assert.Equal(t, tt.wantRules, rules)

			if len(tt.wantRules) == 0 {
				assert.Equal(t, models.SeverityNone, f.Severity)
				assert.Zero(t, f.ScoreDelta)
				require.Len(t, f.Notes, 1)
				assert.Contains(t, f.Notes[0], "Verified references")
				return
			}
			assert.Equal(t, models.SeverityHigh, f.Severity)
			assert.Equal(t, -15*len(tt.wantRules), f.ScoreDelta)
			assert.True(t, f.HasViolations())
		})
	}
}

func TestScripture_NoReferences(t *testing.T) {
	f := check(t, Scripture{}, "Some prose.", newContext(t, models.AgeTierAdult))
	assert.True(t, f.Empty())
}

func TestValidVerses(t *testing.T) {
	for spec, want := range map[string]bool{
		"16":        true,
		"3,5-7,10":  true,
		" 1-3 ":     true,
		"":          false,
		"1,":        false,
		"1--2":      false,
		"1:2":       false,
		"one":       false,
		"1, 2":      false,
		"12-14,16a": false,
	} {
		assert.Equal(t, want, ValidVerses(spec), spec)
	}
}

func TestCanonicalBook(t *testing.T) {
	assert.Len(t, canonicalBooks, 66)
	assert.True(t, CanonicalBook("genesis"))
	assert.True(t, CanonicalBook("Song of Songs"))
	assert.True(t, CanonicalBook("  3   John "))
	assert.False(t, CanonicalBook("Hezekiah"))
	assert.False(t, CanonicalBook("Tobit"))
}

func TestDenominational_StacksPerDistinctPhrase(t *testing.T) {
	cc := newContext(t, models.AgeTierAdult)

	one := check(t, Denominational{}, "Ours is the only true church.", cc)
	assert.Equal(t, -10, one.ScoreDelta)
	assert.Equal(t, models.SeverityMedium, one.Severity)

	repeated := check(t, Denominational{}, "The only true church. Yes, the only true church.", cc)
	assert.Equal(t, -10, repeated.ScoreDelta)

	two := check(t, Denominational{}, "Ours is the only true church, and all babies must be baptized.", cc)
	assert.Equal(t, -20, two.ScoreDelta)
	assert.Len(t, two.Messages, 2)

	clean := check(t, Denominational{}, "Christians worship in many churches.", cc)
	assert.True(t, clean.Empty())
}

func TestAgeAppropriateness(t *testing.T) {
	text := "The soldiers tortured the prisoner before the execution. The orphan wept."

	early := check(t, AgeAppropriateness{}, text, newContext(t, models.AgeTierEarlyChildhood))
	assert.Equal(t, models.SeverityHigh, early.Severity)
	// tortured + execution high, orphan medium
	assert.Equal(t, -50, early.ScoreDelta)

	elementary := check(t, AgeAppropriateness{}, text, newContext(t, models.AgeTierElementary))
	// tortured high, execution medium
	assert.Equal(t, -30, elementary.ScoreDelta)

	middle := check(t, AgeAppropriateness{}, text, newContext(t, models.AgeTierMiddleSchool))
	assert.Equal(t, -10, middle.ScoreDelta)
	assert.Equal(t, models.SeverityMedium, middle.Severity)

	adult := check(t, AgeAppropriateness{}, text, newContext(t, models.AgeTierAdult))
	assert.True(t, adult.Empty())
}

func TestAgeAppropriateness_ComplexTheologyWarnsYoungTiersOnly(t *testing.T) {
	text := "Sanctification follows justification."

	young := check(t, AgeAppropriateness{}, text, newContext(t, models.AgeTierElementary))
	require.Len(t, young.Messages, 1)
	assert.False(t, young.Messages[0].Violation)
	assert.Contains(t, young.Messages[0].Text, "justification")
	assert.Contains(t, young.Messages[0].Text, "sanctification")
	assert.Zero(t, young.ScoreDelta)
	assert.Equal(t, models.SeverityLow, young.Severity)

	older := check(t, AgeAppropriateness{}, text, newContext(t, models.AgeTierHighSchool))
	assert.True(t, older.Empty())
}

func TestAgeAppropriateness_ThemesAreNotes(t *testing.T) {
	f := check(t, AgeAppropriateness{}, "A story about friendship and sharing.", newContext(t, models.AgeTierEarlyChildhood))
	assert.Zero(t, f.ScoreDelta)
	assert.Empty(t, f.Messages)
	require.Len(t, f.Notes, 1)
	assert.Contains(t, f.Notes[0], "friendship, sharing")
}

func TestViolence(t *testing.T) {
	text := "The soldiers fought a terrible battle with swords and spears. Many were killed and the city was destroyed."

	lex, err := lexicon.Default()
	require.NoError(t, err)
	level, hits := Violence().Score(lex, text)
	// combat 2 + death 3 + weapons 2 + destruction 1
	assert.Equal(t, 8, level)
	assert.Equal(t, []string{"combat", "death", "weapons", "destruction"}, hits)

	early := check(t, Violence(), text, newContext(t, models.AgeTierEarlyChildhood))
	assert.Equal(t, -30, early.ScoreDelta)
	assert.Equal(t, models.SeverityHigh, early.Severity)
	assert.Equal(t, 8.0, early.Measure["level"])

	middle := check(t, Violence(), text, newContext(t, models.AgeTierMiddleSchool))
	assert.Equal(t, -10, middle.ScoreDelta)
	assert.Equal(t, models.SeverityMedium, middle.Severity)

	high := check(t, Violence(), text, newContext(t, models.AgeTierHighSchool))
	assert.True(t, high.Empty())

	adult := check(t, Violence(), text, newContext(t, models.AgeTierAdult))
	assert.True(t, adult.Empty())
}

func TestViolence_CategoryCountedOnce(t *testing.T) {
	lex, err := lexicon.Default()
	require.NoError(t, err)

	once, _ := Violence().Score(lex, "They fought.")
	many, _ := Violence().Score(lex, "They fought and fought, battle after battle, attack after attack.")
	assert.Equal(t, once, many)
	assert.Equal(t, 2, many)
}

func TestLevel_Capped(t *testing.T) {
	lex, err := lexicon.Default()
	require.NoError(t, err)

	text := "In the dark, a demon appeared. They were terrified by the nightmare, alone in hell."
	level, _ := Scariness().Score(lex, text)
	assert.Equal(t, 10, level)
}

func TestScariness(t *testing.T) {
	text := "A ghost moved through the darkness and the children were afraid."

	early := check(t, Scariness(), text, newContext(t, models.AgeTierEarlyChildhood))
	// evil entities 3 + darkness 1 + fear 2 = 6, limit 2
	assert.Equal(t, -20, early.ScoreDelta)
	assert.Equal(t, models.SeverityHigh, early.Severity)

	middle := check(t, Scariness(), text, newContext(t, models.AgeTierMiddleSchool))
	assert.True(t, middle.Empty())
}

func TestOverageSeverity(t *testing.T) {
	assert.Equal(t, models.SeverityLow, overageSeverity(1))
	assert.Equal(t, models.SeverityMedium, overageSeverity(2))
	assert.Equal(t, models.SeverityMedium, overageSeverity(3))
	assert.Equal(t, models.SeverityHigh, overageSeverity(4))
}

func TestPsychologicalSafety(t *testing.T) {
	cc := newContext(t, models.AgeTierElementary)

	risky := check(t, PsychologicalSafety{}, "If you lie, God will never forgive you and nobody loves you.", cc)
	assert.Equal(t, -30, risky.ScoreDelta)
	assert.Equal(t, models.SeverityHigh, risky.Severity)
	assert.Len(t, violations(risky), 2)

	protective := check(t, PsychologicalSafety{}, "God loves you and will always forgive you. You are safe with your family.", cc)
	assert.Zero(t, protective.ScoreDelta)
	assert.Empty(t, protective.Messages)
	require.Len(t, protective.Notes, 1)
	assert.Equal(t, "Protective factors present: love, forgiveness, support, safety.", protective.Notes[0])
}

func TestPsychologicalSafety_ProtectiveFactorsDoNotOffset(t *testing.T) {
	cc := newContext(t, models.AgeTierElementary)

	bare := check(t, PsychologicalSafety{}, "You are worthless.", cc)
	withLove := check(t, PsychologicalSafety{}, "You are worthless. But love, hope and forgiveness are here.", cc)
	assert.Equal(t, bare.ScoreDelta, withLove.ScoreDelta)
	assert.NotEmpty(t, withLove.Notes)
}

func TestInappropriate(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		wantDelta int
		wantSev   models.Severity
	}{
		{"sexual", "The picture showed a naked man.", -50, models.SeverityCritical},
		{"discrimination", "Those people are animals.", -50, models.SeverityCritical},
		{"substances", "He was drunk at the party.", -15, models.SeverityMedium},
		{"gambling", "They went to the casino.", -15, models.SeverityMedium},
		{"combined", "They went gambling while drunk.", -30, models.SeverityMedium},
		{"clean", "Jesus turned water into wine.", 0, models.SeverityNone},
	}

	cc := newContext(t, models.AgeTierAdult)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := check(t, Inappropriate{}, tt.text, cc)
			assert.Equal(t, tt.wantDelta, f.ScoreDelta)
			assert.Equal(t, tt.wantSev, f.Severity)
		})
	}
}

func TestReadingLevel(t *testing.T) {
	long := "The very old man walked slowly down the long dusty road toward the small quiet village near the river."

	early := check(t, ReadingLevel{}, long, newContext(t, models.AgeTierEarlyChildhood))
	require.Len(t, early.Messages, 1)
	assert.Equal(t, "reading/sentence_length", early.Messages[0].Rule)
	assert.Equal(t, -5, early.ScoreDelta)
	assert.Equal(t, models.SeverityLow, early.Severity)
	assert.Equal(t, 19.0, early.Measure["wordsPerSentence"])
	assert.Contains(t, early.Messages[0].Text, "1 of 1 sentences exceed the early_childhood limit of 10 words (longest 19)")

	adult := check(t, ReadingLevel{}, long, newContext(t, models.AgeTierAdult))
	assert.True(t, adult.Empty())

	dense := check(t, ReadingLevel{}, "Unquestionably revolutionary understanding.", newContext(t, models.AgeTierEarlyChildhood))
	require.Len(t, dense.Messages, 1)
	assert.Equal(t, "reading/word_complexity", dense.Messages[0].Rule)
}

func TestReadingLevel_ShortSentencesDoNotOffsetLongOnes(t *testing.T) {
	cc := newContext(t, models.AgeTierElementary)
	base := "The happy family remembered wonderful stories about many soldiers with swords in a battle on a sunny morning."

	before := check(t, ReadingLevel{}, base, cc)
	require.Len(t, before.Messages, 2)

	after := check(t, ReadingLevel{}, base+" We suffer a lot. It was sad.", cc)
	require.Len(t, after.Messages, 2)
	assert.Equal(t, before.ScoreDelta, after.ScoreDelta)
	assert.Equal(t, "reading/sentence_length", after.Messages[0].Rule)
	assert.Equal(t, "reading/word_complexity", after.Messages[1].Rule)
	assert.Contains(t, after.Messages[0].Text, "1 of 3 sentences")
	assert.Less(t, after.Measure["wordsPerSentence"], 15.0)
}

func TestPositiveMessaging(t *testing.T) {
	cc := newContext(t, models.AgeTierAdult)

	rich := check(t, PositiveMessaging{}, "God loved the world and gave His only Son, Jesus Christ, so that whoever believes has eternal life.", cc)
	assert.True(t, rich.Empty())

	poor := check(t, PositiveMessaging{}, "The man walked to town.", cc)
	assert.Equal(t, -10, poor.ScoreDelta)
	assert.Equal(t, models.SeverityMedium, poor.Severity)
	assert.Contains(t, violations(poor)[0], "lacks sufficient positive messaging")

	negative := check(t, PositiveMessaging{}, "Love and hope and kindness and courage won, but he wanted revenge.", cc)
	assert.Zero(t, negative.ScoreDelta)
	require.Len(t, negative.Messages, 1)
	assert.False(t, negative.Messages[0].Violation)
	assert.Equal(t, "negative/revenge", negative.Messages[0].Rule)
}

func TestPositiveMessaging_FloorIsConfigurable(t *testing.T) {
	cc := newContext(t, models.AgeTierAdult)
	cc.PositiveFloor = 0

	f := check(t, PositiveMessaging{}, "The man walked to town.", cc)
	assert.True(t, f.Empty())
}

func TestFindingBuilder(t *testing.T) {
	b := newFinding(models.CategoryReadingLevel)
	assert.True(t, b.build().Empty())

	b.measure("x", 1)
	assert.True(t, b.build().Empty(), "measure alone is not worth recording")

	b.warning("r", "warn %d", 1)
	b.violation(models.SeverityMedium, 5, "r2", "bad")
	b.violation(models.SeverityLow, 3, "r3", "minor")
	f := b.build()
	assert.Equal(t, -8, f.ScoreDelta)
	assert.Equal(t, models.SeverityMedium, f.Severity)
	assert.Len(t, f.Messages, 3)
	assert.Equal(t, "warn 1", f.Messages[0].Text)
}
