package feedback

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"content-policy-workers/internal/models"
)

func sampleFindings() []models.CheckFinding {
	return []models.CheckFinding{
		{
			Category:   models.CategoryDoctrinalSoundness,
			Severity:   models.SeverityCritical,
			ScoreDelta: -60,
			Messages: []models.FindingMessage{
				{Text: "works-based salvation", Violation: true, Rule: "doctrinal/works_based_salvation"},
				{Text: "lacks Christ", Violation: true, Rule: "doctrinal/christ_reference"},
			},
		},
		{
			Category: models.CategoryPsychologicalSafety,
			Severity: models.SeverityNone,
			Notes:    []string{"Protective factors present: love."},
		},
		{
			Category:   models.CategoryPositiveMessaging,
			Severity:   models.SeverityMedium,
			ScoreDelta: -10,
			Messages: []models.FindingMessage{
				{Text: "lacks positive", Violation: true, Rule: "positive/deficit"},
				{Text: "Negative theme: revenge", Rule: "negative/revenge"},
			},
		},
	}
}

func TestSynthesize_OneEntryPerFinding(t *testing.T) {
	res := Synthesize(sampleFindings(), 30, models.StatusRejected)

	require.Len(t, res.Feedback, 3)
	assert.Equal(t, models.CategoryDoctrinalSoundness, res.Feedback[0].Category)
	assert.Equal(t, "Doctrinal soundness has critical problems that block publication (2 issues, 0 warnings).", res.Feedback[0].Summary)
	assert.Equal(t, "Psychological safety meets the policy. Protective factors present: love.", res.Feedback[1].Summary)
	assert.Equal(t, "Positive messaging has problems that should be revised (1 issue, 1 warning).", res.Feedback[2].Summary)

	assert.Equal(t, "Rejected with a score of 30/100. 3 policy issues found.", res.Summary)
}

func TestSynthesize_OneRecommendationPerViolation(t *testing.T) {
	res := Synthesize(sampleFindings(), 30, models.StatusRejected)

	assert.Equal(t, []string{
		"Review salvation messaging to align with grace-through-faith teaching (Ephesians 2:8-9).",
		"Make clear that salvation comes through Jesus Christ when using salvation language.",
		"Strengthen positive themes such as love, hope, kindness or faith.",
	}, res.Recommendations)
}

func TestSynthesize_Deterministic(t *testing.T) {
	a := Synthesize(sampleFindings(), 30, models.StatusRejected)
	b := Synthesize(sampleFindings(), 30, models.StatusRejected)
	assert.Equal(t, a, b)
}

func TestSynthesize_NoFindings(t *testing.T) {
	res := Synthesize(nil, 100, models.StatusApproved)
	assert.Empty(t, res.Feedback)
	assert.NotNil(t, res.Recommendations)
	assert.Empty(t, res.Recommendations)
	assert.Equal(t, "Approved with a score of 100/100. No policy issues found.", res.Summary)
}

func TestSynthesize_DuplicateViolationsKeepOneRecommendationEach(t *testing.T) {
	findings := []models.CheckFinding{{
		Category: models.CategoryAgeAppropriateness,
		Severity: models.SeverityHigh,
		Messages: []models.FindingMessage{
			{Text: "a", Violation: true, Rule: "age/high_concept"},
			{Text: "b", Violation: true, Rule: "age/high_concept"},
		},
	}}
	res := Synthesize(findings, 60, models.StatusNeedsRevision)
	assert.Len(t, res.Recommendations, 2)
	assert.Equal(t, res.Recommendations[0], res.Recommendations[1])
}

func TestRecommendation_Fallbacks(t *testing.T) {
	assert.Equal(t, "Reduce violent content.", Recommendation(models.CategoryViolenceLevel, "unknown/rule"))
	assert.Equal(t, "Review the flagged content.", Recommendation("unknown", "unknown/rule"))
	assert.Equal(t, "Remove sexual content.", Recommendation(models.CategoryInappropriateContent, "inappropriate/sexual"))
}

func TestCategoryLabel(t *testing.T) {
	assert.Equal(t, "Reading level", CategoryLabel(models.CategoryReadingLevel))
	assert.Equal(t, "custom", CategoryLabel("custom"))
}
