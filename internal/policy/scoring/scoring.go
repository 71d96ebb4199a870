// Package scoring turns checker findings into a 0-100 score and a status.
package scoring

import (
	"fmt"

	"content-policy-workers/internal/models"
)

const (
	BaselineScore = 100
	MinScore      = 0

	DefaultApprovedCutoff = 85
	DefaultRevisionCutoff = 60
)

// Aggregate adds every signed delta to the baseline and clamps the result.
// There is no per-category cap.
func Aggregate(findings []models.CheckFinding) int {
	score := BaselineScore
	for _, f := range findings {
		score += f.ScoreDelta
	}
	return clamp(score)
}

func clamp(score int) int {
	if score < MinScore {
		return MinScore
	}
	if score > BaselineScore {
		return BaselineScore
	}
	return score
}

// Thresholds are the status cutoffs. A score equal to a cutoff belongs to
// the better status.
type Thresholds struct {
	ApprovedCutoff int `json:"approvedCutoff" mapstructure:"approved_cutoff"`
	RevisionCutoff int `json:"revisionCutoff" mapstructure:"revision_cutoff"`
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		ApprovedCutoff: DefaultApprovedCutoff,
		RevisionCutoff: DefaultRevisionCutoff,
	}
}

// Validate requires 0 < revision <= approved <= 100 so a zero score can
// never be anything but rejected.
func (t Thresholds) Validate() error {
	if t.RevisionCutoff <= MinScore {
		return fmt.Errorf("revision cutoff must be greater than %d, got %d", MinScore, t.RevisionCutoff)
	}
	if t.ApprovedCutoff > BaselineScore {
		return fmt.Errorf("approved cutoff must be at most %d, got %d", BaselineScore, t.ApprovedCutoff)
	}
	if t.RevisionCutoff > t.ApprovedCutoff {
		return fmt.Errorf("revision cutoff %d exceeds approved cutoff %d", t.RevisionCutoff, t.ApprovedCutoff)
	}
	return nil
}

func (t Thresholds) Classify(score int) models.Status {
	switch {
	case score >= t.ApprovedCutoff:
		return models.StatusApproved
	case score >= t.RevisionCutoff:
		return models.StatusNeedsRevision
	default:
		return models.StatusRejected
	}
}
