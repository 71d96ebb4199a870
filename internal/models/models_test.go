package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTierForAge(t *testing.T) {
	tests := []struct {
		age    int
		want   AgeTier
		wantOK bool
	}{
		{-1, "", false},
		{0, AgeTierEarlyChildhood, true},
		{5, AgeTierEarlyChildhood, true},
		{6, AgeTierElementary, true},
		{10, AgeTierElementary, true},
		{11, AgeTierMiddleSchool, true},
		{13, AgeTierMiddleSchool, true},
		{14, AgeTierHighSchool, true},
		{17, AgeTierHighSchool, true},
		{18, AgeTierAdult, true},
		{90, AgeTierAdult, true},
	}

	for _, tt := range tests {
		got, ok := TierForAge(tt.age)
		assert.Equal(t, tt.wantOK, ok, "age %d", tt.age)
		assert.Equal(t, tt.want, got, "age %d", tt.age)
	}
}

func TestAgeTier_RankAndValid(t *testing.T) {
	for i, tier := range AgeTiers {
		assert.Equal(t, i, tier.Rank())
		assert.True(t, tier.Valid())
	}
	assert.Equal(t, -1, AgeTier("toddler").Rank())
	assert.False(t, AgeTier("").Valid())
}

func TestContentType_Valid(t *testing.T) {
	for _, c := range []ContentType{"", ContentTypeStory, ContentTypeQuiz, ContentTypePrayer, ContentTypeDevotion} {
		assert.True(t, c.Valid(), string(c))
	}
	assert.False(t, ContentType("poem").Valid())
}

func TestMaxSeverity(t *testing.T) {
	assert.Equal(t, SeverityHigh, MaxSeverity(SeverityLow, SeverityHigh))
	assert.Equal(t, SeverityHigh, MaxSeverity(SeverityHigh, SeverityMedium))
	assert.Equal(t, SeverityCritical, MaxSeverity(SeverityCritical, SeverityCritical))
	assert.Equal(t, SeverityNone, MaxSeverity("", ""))
	assert.Equal(t, SeverityLow, MaxSeverity("", SeverityLow))
	assert.False(t, Severity("extreme").Valid())
	assert.Equal(t, 0, Severity("extreme").Rank())
}

func TestCheckFinding_EmptyAndViolations(t *testing.T) {
	assert.True(t, CheckFinding{Category: CategoryReadingLevel}.Empty())
	assert.False(t, CheckFinding{Notes: []string{"note"}}.Empty())

	f := CheckFinding{Messages: []FindingMessage{{Text: "warning only"}}}
	assert.False(t, f.Empty())
	assert.False(t, f.HasViolations())

	f.Messages = append(f.Messages, FindingMessage{Text: "bad", Violation: true})
	assert.True(t, f.HasViolations())
}
