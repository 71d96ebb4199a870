package tiers

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"content-policy-workers/internal/models"
)

//go:embed default_tiers.yaml
var defaultTiers []byte

type document struct {
	Version    string                           `yaml:"version"`
	Deductions Deductions                       `yaml:"deductions"`
	Tiers      map[models.AgeTier]AgeTierPolicy `yaml:"tiers"`
}

// Parse builds and validates a tier table from YAML.
func Parse(data []byte) (*Table, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse tier table: %w", err)
	}

	table := &Table{
		version:    doc.Version,
		deductions: doc.Deductions,
		tiers:      make(map[models.AgeTier]AgeTierPolicy, len(doc.Tiers)),
	}

	for tier, p := range doc.Tiers {
		p.Tier = tier

		var err error
		if p.HighConcepts, err = compileConcepts(tier, p.BannedConceptsHigh); err != nil {
			return nil, err
		}
		if p.MediumConcepts, err = compileConcepts(tier, p.BannedConceptsMedium); err != nil {
			return nil, err
		}
		if p.Themes, err = compileConcepts(tier, p.AllowedThemes); err != nil {
			return nil, err
		}
		table.tiers[tier] = p
	}

	if err := table.validate(); err != nil {
		return nil, fmt.Errorf("invalid tier table: %w", err)
	}
	return table, nil
}

func LoadFile(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read tier table %s: %w", path, err)
	}
	return Parse(data)
}

// Load returns the table at path, or the embedded default when path is empty.
func Load(path string) (*Table, error) {
	if path == "" {
		return Default()
	}
	return LoadFile(path)
}

func Default() (*Table, error) {
	return Parse(defaultTiers)
}

// DefaultBytes returns a copy of the embedded tier table source.
func DefaultBytes() []byte {
	out := make([]byte, len(defaultTiers))
	copy(out, defaultTiers)
	return out
}
