package models

// AgeTier is the closed set of audiences a submission can target.
type AgeTier string

const (
	AgeTierEarlyChildhood AgeTier = "early_childhood"
	AgeTierElementary     AgeTier = "elementary"
	AgeTierMiddleSchool   AgeTier = "middle_school"
	AgeTierHighSchool     AgeTier = "high_school"
	AgeTierAdult          AgeTier = "adult"
)

// AgeTiers lists every tier from youngest to oldest.
var AgeTiers = []AgeTier{
	AgeTierEarlyChildhood,
	AgeTierElementary,
	AgeTierMiddleSchool,
	AgeTierHighSchool,
	AgeTierAdult,
}

// Rank returns the position of the tier in AgeTiers, or -1 when unknown.
func (t AgeTier) Rank() int {
	for i, tier := range AgeTiers {
		if tier == t {
			return i
		}
	}
	return -1
}

// Valid reports whether t is one of AgeTiers.
func (t AgeTier) Valid() bool {
	return t.Rank() >= 0
}

// TierForAge maps a submitter's age in whole years to the youngest tier that
// covers it.
func TierForAge(age int) (AgeTier, bool) {
	switch {
	case age < 0:
		return "", false
	case age <= 5:
		return AgeTierEarlyChildhood, true
	case age <= 10:
		return AgeTierElementary, true
	case age <= 13:
		return AgeTierMiddleSchool, true
	case age <= 17:
		return AgeTierHighSchool, true
	default:
		return AgeTierAdult, true
	}
}

type ContentType string

const (
	ContentTypeStory    ContentType = "story"
	ContentTypeQuiz     ContentType = "quiz"
	ContentTypePrayer   ContentType = "prayer"
	ContentTypeDevotion ContentType = "devotion"
)

// Valid reports whether the content type is known. An empty type is accepted
// and treated as a story.
func (c ContentType) Valid() bool {
	switch c {
	case "", ContentTypeStory, ContentTypeQuiz, ContentTypePrayer, ContentTypeDevotion:
		return true
	}
	return false
}

type ScriptureReference struct {
	Book        string `json:"book"`
	Chapter     int    `json:"chapter"`
	Verses      string `json:"verses"`
	Translation string `json:"translation"`
}

// ContentSubmission is the unit under review. Content holds structured
// payloads (quest scenes, quiz questions) and is flattened into Text before
// scanning when Text is empty.
type ContentSubmission struct {
	ContentID           string               `json:"contentId,omitempty"`
	ReviewType          string               `json:"reviewType,omitempty"`
	Text                string               `json:"text"`
	Content             interface{}          `json:"content,omitempty"`
	TargetAgeTier       AgeTier              `json:"targetAgeTier"`
	ContentType         ContentType          `json:"contentType,omitempty"`
	ScriptureReferences []ScriptureReference `json:"scriptureReferences,omitempty"`
}
