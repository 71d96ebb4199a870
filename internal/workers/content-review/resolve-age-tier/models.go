// internal/workers/content-review/resolve-age-tier/models.go
package resolveagetier

import "content-policy-workers/internal/models"

type Input struct {
	UserID           string `json:"userId"`
	ContentID        string `json:"contentId,omitempty"`
	RequestedAgeTier string `json:"requestedAgeTier,omitempty"`
}

// Output names the tier the content will be reviewed against and where it
// came from.
type Output struct {
	TargetAgeTier models.AgeTier `json:"targetAgeTier"`
	TierSource    string         `json:"tierSource"`
}

const (
	SourceRequested = "requested"
	SourceOverride  = "override"
	SourceProfile   = "profile"
	SourceBirthDate = "birth_date"
	SourceCache     = "cache"
)

// Profile is the submitter_profiles row. Dates are ISO yyyy-mm-dd.
type Profile struct {
	UserID       string
	BirthDate    string
	AgeTier      string
	TierOverride string
}
