// internal/workers/content-review/index-policy-decision/models.go
package indexpolicydecision

import (
	"time"

	"content-policy-workers/internal/models"
)

type Input struct {
	PolicyDecision *models.PolicyDecision `json:"policyDecision"`
}

type Output struct {
	DecisionID string `json:"decisionId"`
	Indexed    bool   `json:"indexed"`
	Index      string `json:"index"`
	Result     string `json:"indexResult"`
}

// Document is the search view of a decision. Findings are reduced to the
// categories and rules moderators filter on.
type Document struct {
	DecisionID        string    `json:"decisionId"`
	ContentID         string    `json:"contentId"`
	ReviewType        string    `json:"reviewType,omitempty"`
	TargetAgeTier     string    `json:"targetAgeTier,omitempty"`
	Status            string    `json:"status"`
	Score             int       `json:"score"`
	ScriptureAccurate bool      `json:"scriptureAccurate"`
	Categories        []string  `json:"categories"`
	Rules             []string  `json:"rules"`
	FlaggedIssues     []string  `json:"flaggedIssues"`
	Warnings          []string  `json:"warnings"`
	Summary           string    `json:"summary"`
	LexiconVersion    string    `json:"lexiconVersion,omitempty"`
	TierTableVersion  string    `json:"tierTableVersion,omitempty"`
	EvaluatedAt       time.Time `json:"evaluatedAt"`
}

func NewDocument(d *models.PolicyDecision) *Document {
	doc := &Document{
		DecisionID:        d.ID,
		ContentID:         d.ContentID,
		ReviewType:        d.ReviewType,
		TargetAgeTier:     string(d.TargetAgeTier),
		Status:            string(d.Status),
		Score:             d.Score,
		ScriptureAccurate: d.ScriptureAccurate,
		Categories:        []string{},
		Rules:             []string{},
		FlaggedIssues:     d.FlaggedIssues,
		Warnings:          d.Warnings,
		Summary:           d.Summary,
		LexiconVersion:    d.LexiconVersion,
		TierTableVersion:  d.TierTableVersion,
		EvaluatedAt:       d.EvaluatedAt,
	}

	seenRule := make(map[string]bool)
	for _, f := range d.Findings {
		doc.Categories = append(doc.Categories, string(f.Category))
		for _, m := range f.Messages {
			if m.Rule != "" && !seenRule[m.Rule] {
				seenRule[m.Rule] = true
				doc.Rules = append(doc.Rules, m.Rule)
			}
		}
	}
	if doc.FlaggedIssues == nil {
		doc.FlaggedIssues = []string{}
	}
	if doc.Warnings == nil {
		doc.Warnings = []string{}
	}
	return doc
}
