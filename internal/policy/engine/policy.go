package engine

import (
	"fmt"

	"content-policy-workers/internal/policy/checkers"
	"content-policy-workers/internal/policy/lexicon"
	"content-policy-workers/internal/policy/scoring"
	"content-policy-workers/internal/policy/tiers"
)

const DefaultPositiveFloor = 7

// Policy is one immutable snapshot of everything an evaluation reads.
type Policy struct {
	Lexicon       *lexicon.Lexicon
	Tiers         *tiers.Table
	Thresholds    scoring.Thresholds
	PositiveFloor int
}

func (p *Policy) Validate() error {
	if p.Lexicon == nil {
		return fmt.Errorf("policy has no lexicon")
	}
	if p.Tiers == nil {
		return fmt.Errorf("policy has no tier table")
	}
	if err := p.Lexicon.Require(checkers.RequiredLexiconKeys()...); err != nil {
		return err
	}
	if err := p.Thresholds.Validate(); err != nil {
		return err
	}
	if p.PositiveFloor < 0 || p.PositiveFloor > 10 {
		return fmt.Errorf("positive floor must be within 0-10, got %d", p.PositiveFloor)
	}
	return nil
}

// Source hands out the current policy snapshot.
type Source interface {
	Current() *Policy
}

type staticSource struct {
	policy *Policy
}

func (s staticSource) Current() *Policy {
	return s.policy
}

// Static returns a Source that always yields p.
func Static(p *Policy) Source {
	return staticSource{policy: p}
}

// DefaultPolicy builds a snapshot from the embedded lexicon and tier table
// with default thresholds.
func DefaultPolicy() (*Policy, error) {
	lex, err := lexicon.Default()
	if err != nil {
		return nil, err
	}
	table, err := tiers.Default()
	if err != nil {
		return nil, err
	}
	p := &Policy{
		Lexicon:       lex,
		Tiers:         table,
		Thresholds:    scoring.DefaultThresholds(),
		PositiveFloor: DefaultPositiveFloor,
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}
