// internal/workers/content-review/notify-review-outcome/models.go
package notifyreviewoutcome

import "content-policy-workers/internal/models"

type Input struct {
	PolicyDecision *models.PolicyDecision `json:"policyDecision"`
	SubmitterEmail string                 `json:"submitterEmail,omitempty"`
	SubmitterName  string                 `json:"submitterName,omitempty"`
}

type Output struct {
	EmailSent           bool   `json:"emailSent"`
	EmailMessageID      string `json:"emailMessageId,omitempty"`
	ModerationPublished bool   `json:"moderationPublished"`
	ModerationMessageID string `json:"moderationMessageId,omitempty"`
}

// moderationEvent is the SNS payload for a rejected decision.
type moderationEvent struct {
	DecisionID    string         `json:"decisionId"`
	ContentID     string         `json:"contentId"`
	ReviewType    string         `json:"reviewType,omitempty"`
	TargetAgeTier models.AgeTier `json:"targetAgeTier"`
	Score         int            `json:"score"`
	Summary       string         `json:"summary"`
	FlaggedIssues []string       `json:"flaggedIssues"`
}
