// internal/workers/content-review/persist-policy-decision/models.go
package persistpolicydecision

import (
	"time"

	"content-policy-workers/internal/models"
)

type Input struct {
	PolicyDecision *models.PolicyDecision `json:"policyDecision"`
}

type Output struct {
	DecisionID  string    `json:"decisionId"`
	Persisted   bool      `json:"persisted"`
	Duplicate   bool      `json:"duplicate"`
	AuditID     string    `json:"auditId,omitempty"`
	PersistedAt time.Time `json:"persistedAt"`
}

// auditDetails is stored in audit_log.details.
type auditDetails struct {
	ContentID  string        `json:"contentId"`
	ReviewType string        `json:"reviewType"`
	Status     models.Status `json:"status"`
	Score      int           `json:"score"`
}
