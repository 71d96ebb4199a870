package models

import "time"

type Severity string

const (
	SeverityNone     Severity = "none"
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

var severityRank = map[Severity]int{
	SeverityNone:     0,
	SeverityLow:      1,
	SeverityMedium:   2,
	SeverityHigh:     3,
	SeverityCritical: 4,
}

// Rank orders severities; unknown values rank as none.
func (s Severity) Rank() int {
	return severityRank[s]
}

func (s Severity) Valid() bool {
	_, ok := severityRank[s]
	return ok
}

// MaxSeverity returns the more severe of a and b.
func MaxSeverity(a, b Severity) Severity {
	if b.Rank() > a.Rank() {
		return b
	}
	if a == "" {
		return SeverityNone
	}
	return a
}

// Category identifies the dimension that produced a finding. Each checker owns
// exactly one category.
type Category string

const (
	CategoryInputValidation          Category = "input_validation"
	CategoryDoctrinalSoundness       Category = "doctrinal_soundness"
	CategoryScriptureAccuracy        Category = "scripture_accuracy"
	CategoryDenominationalNeutrality Category = "denominational_neutrality"
	CategoryAgeAppropriateness       Category = "age_appropriateness"
	CategoryViolenceLevel            Category = "violence_level"
	CategoryScarinessLevel           Category = "scariness_level"
	CategoryPsychologicalSafety      Category = "psychological_safety"
	CategoryInappropriateContent     Category = "inappropriate_content"
	CategoryReadingLevel             Category = "reading_level"
	CategoryPositiveMessaging        Category = "positive_messaging"
)

type Status string

const (
	StatusApproved      Status = "approved"
	StatusNeedsRevision Status = "needs_revision"
	StatusRejected      Status = "rejected"
)

// FindingMessage is one line of checker output. Violation messages feed
// flaggedIssues and recommendations; the rest are warnings.
type FindingMessage struct {
	Text      string `json:"text"`
	Violation bool   `json:"violation"`
	Rule      string `json:"rule,omitempty"`
}

type CheckFinding struct {
	Category   Category         `json:"category"`
	Severity   Severity         `json:"severity"`
	ScoreDelta int              `json:"scoreDelta"`
	Messages   []FindingMessage `json:"messages,omitempty"`
	// Notes are informational only and never affect the score.
	Notes []string `json:"notes,omitempty"`
	// Measure carries the checker's raw measurement (violence 0-10, words per
	// sentence, ...) when it has one.
	Measure map[string]float64 `json:"measure,omitempty"`
}

// Empty reports whether the finding carries nothing worth recording.
func (f CheckFinding) Empty() bool {
	return len(f.Messages) == 0 && len(f.Notes) == 0 && f.ScoreDelta == 0
}

func (f CheckFinding) HasViolations() bool {
	for _, m := range f.Messages {
		if m.Violation {
			return true
		}
	}
	return false
}

type FeedbackEntry struct {
	Category Category `json:"category"`
	Severity Severity `json:"severity"`
	Summary  string   `json:"summary"`
}

// PolicyDecision is the immutable verdict for one evaluation.
type PolicyDecision struct {
	ID                   string          `json:"id"`
	ContentID            string          `json:"contentId,omitempty"`
	ReviewType           string          `json:"reviewType,omitempty"`
	TargetAgeTier        AgeTier         `json:"targetAgeTier,omitempty"`
	Status               Status          `json:"status"`
	Score                int             `json:"score"`
	Summary              string          `json:"summary"`
	FlaggedIssues        []string        `json:"flaggedIssues"`
	Warnings             []string        `json:"warnings"`
	Feedback             []FeedbackEntry `json:"feedback"`
	Recommendations      []string        `json:"recommendations"`
	Findings             []CheckFinding  `json:"findings"`
	ScriptureAccurate    bool            `json:"scriptureAccurate"`
	LexiconVersion       string          `json:"lexiconVersion,omitempty"`
	TierTableVersion     string          `json:"tierTableVersion,omitempty"`
	ProcessingDurationMs int64           `json:"processingDurationMs"`
	EvaluatedAt          time.Time       `json:"evaluatedAt"`
}
