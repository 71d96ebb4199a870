// Package feedback renders findings into reviewer-facing prose. Output is a
// pure function of its input.
package feedback

import (
	"fmt"
	"strings"

	"content-policy-workers/internal/models"
)

type Result struct {
	Summary         string
	Feedback        []models.FeedbackEntry
	Recommendations []string
}

var categoryLabels = map[models.Category]string{
	models.CategoryInputValidation:          "Submission",
	models.CategoryDoctrinalSoundness:       "Doctrinal soundness",
	models.CategoryScriptureAccuracy:        "Scripture accuracy",
	models.CategoryDenominationalNeutrality: "Denominational neutrality",
	models.CategoryAgeAppropriateness:       "Age appropriateness",
	models.CategoryViolenceLevel:            "Violence level",
	models.CategoryScarinessLevel:           "Scariness level",
	models.CategoryPsychologicalSafety:      "Psychological safety",
	models.CategoryInappropriateContent:     "Content appropriateness",
	models.CategoryReadingLevel:             "Reading level",
	models.CategoryPositiveMessaging:        "Positive messaging",
}

var severityPhrases = map[models.Severity]string{
	models.SeverityCritical: "has critical problems that block publication",
	models.SeverityHigh:     "has serious problems that must be fixed",
	models.SeverityMedium:   "has problems that should be revised",
	models.SeverityLow:      "has minor concerns worth a second look",
	models.SeverityNone:     "meets the policy",
}

var statusPhrases = map[models.Status]string{
	models.StatusApproved:      "Approved",
	models.StatusNeedsRevision: "Needs revision",
	models.StatusRejected:      "Rejected",
}

// ruleRecommendations are keyed by FindingMessage.Rule.
var ruleRecommendations = map[string]string{
	"doctrinal/works_based_salvation":  "Review salvation messaging to align with grace-through-faith teaching (Ephesians 2:8-9).",
	"doctrinal/universalism":           "Present Jesus as the way to the Father rather than treating all religions as equivalent (John 14:6).",
	"doctrinal/prosperity_gospel":      "Remove promises of wealth or health in exchange for faith or giving.",
	"doctrinal/replacement_theology":   "Avoid claims that God has rejected Israel; keep the focus on the story being told.",
	"doctrinal/trinity_denial":         "Align descriptions of God with the historic teaching of the Trinity.",
	"doctrinal/mythologized_christ":    "Present Jesus and the resurrection as historical, not as myth or legend.",
	"doctrinal/christ_reference":       "Make clear that salvation comes through Jesus Christ when using salvation language.",
	"scripture/translation":            "Cite the passage from an approved Bible translation.",
	"scripture/book":                   "Correct the book name to one of the 66 books of the Bible.",
	"scripture/chapter":                "Correct the chapter number of the reference.",
	"scripture/verses":                 "Write the verses as numbers, ranges or comma lists (for example 3,5-7).",
	"denominational/exclusivity":       "Remove claims that a single church or denomination is the only true one.",
	"denominational/mandated_practice": "Present denomination-specific practices as one tradition rather than a universal requirement.",
	"age/high_concept":                 "Remove content that is not suitable for this age group.",
	"age/medium_concept":               "Soften or give gentle context to mature themes for this age group.",
	"violence/over_threshold":          "Reduce violent detail so it fits the audience age.",
	"scariness/over_threshold":         "Tone down frightening imagery and add reassurance.",
	"psych/abandonment":                "Reassure readers that God never abandons them.",
	"psych/worthlessness":              "Affirm every reader's worth as someone made and loved by God.",
	"psych/unforgivable_guilt":         "Emphasize that forgiveness is available to everyone who asks.",
	"psych/surveillance":               "Describe God's attention as loving care rather than surveillance or punishment.",
	"inappropriate/sexual":             "Remove sexual content.",
	"inappropriate/discrimination":     "Remove discriminatory language.",
	"inappropriate/substances":         "Remove references to alcohol, tobacco or drugs.",
	"inappropriate/gambling":           "Remove references to gambling.",
	"reading/sentence_length":          "Shorten sentences for the target reading level.",
	"reading/word_complexity":          "Use simpler words for the target reading level.",
	"positive/deficit":                 "Strengthen positive themes such as love, hope, kindness or faith.",
	"checker/failure":                  "Resubmit the content; an internal check could not complete.",
	"input/invalid":                    "Correct the submission details and resubmit.",
}

var categoryRecommendations = map[models.Category]string{
	models.CategoryInputValidation:          "Correct the submission details and resubmit.",
	models.CategoryDoctrinalSoundness:       "Review the theological content for doctrinal accuracy.",
	models.CategoryScriptureAccuracy:        "Verify every scripture reference.",
	models.CategoryDenominationalNeutrality: "Keep the content neutral across Christian traditions.",
	models.CategoryAgeAppropriateness:       "Adjust the content for the target age group.",
	models.CategoryViolenceLevel:            "Reduce violent content.",
	models.CategoryScarinessLevel:           "Reduce frightening content.",
	models.CategoryPsychologicalSafety:      "Revise language that could harm a reader's sense of safety or worth.",
	models.CategoryInappropriateContent:     "Remove inappropriate content.",
	models.CategoryReadingLevel:             "Simplify the language for the target reading level.",
	models.CategoryPositiveMessaging:        "Strengthen the positive message of the content.",
}

// Synthesize builds one feedback entry per finding and exactly one
// recommendation per violation message, in finding order.
func Synthesize(findings []models.CheckFinding, score int, status models.Status) Result {
	res := Result{
		Summary:         summary(findings, score, status),
		Feedback:        make([]models.FeedbackEntry, 0, len(findings)),
		Recommendations: make([]string, 0),
	}

	for _, f := range findings {
		res.Feedback = append(res.Feedback, entry(f))
		for _, m := range f.Messages {
			if m.Violation {
				res.Recommendations = append(res.Recommendations, Recommendation(f.Category, m.Rule))
			}
		}
	}
	return res
}

// Recommendation returns the template for rule, falling back to the
// category template.
func Recommendation(category models.Category, rule string) string {
	if r, ok := ruleRecommendations[rule]; ok {
		return r
	}
	if r, ok := categoryRecommendations[category]; ok {
		return r
	}
	return "Review the flagged content."
}

func CategoryLabel(category models.Category) string {
	if l, ok := categoryLabels[category]; ok {
		return l
	}
	return string(category)
}

func entry(f models.CheckFinding) models.FeedbackEntry {
	violations, warnings := 0, 0
	for _, m := range f.Messages {
		if m.Violation {
			violations++
		} else {
			warnings++
		}
	}

	phrase, ok := severityPhrases[f.Severity]
	if !ok {
		phrase = severityPhrases[models.SeverityNone]
	}

	var sb strings.Builder
	sb.WriteString(CategoryLabel(f.Category))
	sb.WriteString(" ")
	sb.WriteString(phrase)
	if violations > 0 || warnings > 0 {
		fmt.Fprintf(&sb, " (%s, %s)", plural(violations, "issue"), plural(warnings, "warning"))
	}
	sb.WriteString(".")
	for _, n := range f.Notes {
		sb.WriteString(" ")
		sb.WriteString(n)
	}

	return models.FeedbackEntry{
		Category: f.Category,
		Severity: f.Severity,
		Summary:  sb.String(),
	}
}

func summary(findings []models.CheckFinding, score int, status models.Status) string {
	violations := 0
	for _, f := range findings {
		for _, m := range f.Messages {
			if m.Violation {
				violations++
			}
		}
	}

	label, ok := statusPhrases[status]
	if !ok {
		label = string(status)
	}
	if violations == 0 {
		return fmt.Sprintf("%s with a score of %d/100. No policy issues found.", label, score)
	}
	return fmt.Sprintf("%s with a score of %d/100. %s found.", label, score, plural(violations, "policy issue"))
}

func plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
