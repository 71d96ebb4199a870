package lexicon

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"content-policy-workers/internal/models"
)

//go:embed default_lexicon.yaml
var defaultLexicon []byte

type document struct {
	Version              string                  `yaml:"version"`
	ApprovedTranslations []string                `yaml:"approved_translations"`
	Categories           map[string]categorySpec `yaml:"categories"`
}

type categorySpec struct {
	Label    string          `yaml:"label"`
	Severity models.Severity `yaml:"severity"`
	Weight   int             `yaml:"weight"`
	Patterns []patternSpec   `yaml:"patterns"`
}

// patternSpec accepts either a bare string (literal phrase) or a mapping with
// one of literal/regex and optional weight/severity overrides.
type patternSpec struct {
	Literal  string          `yaml:"literal"`
	Regex    string          `yaml:"regex"`
	Weight   *int            `yaml:"weight"`
	Severity models.Severity `yaml:"severity"`
}

func (p *patternSpec) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		p.Literal = node.Value
		return nil
	}
	type plain patternSpec
	var raw plain
	if err := node.Decode(&raw); err != nil {
		return err
	}
	*p = patternSpec(raw)
	return nil
}

func (p patternSpec) compile(cat *Category) (Term, error) {
	term := Term{Weight: cat.Weight, Severity: cat.Severity}
	if p.Weight != nil {
		if *p.Weight < 0 {
			return Term{}, fmt.Errorf("weight must be non-negative")
		}
		term.Weight = *p.Weight
	}
	if p.Severity != "" {
		if !p.Severity.Valid() {
			return Term{}, fmt.Errorf("unknown severity %q", p.Severity)
		}
		term.Severity = p.Severity
	}

	var err error
	switch {
	case p.Literal != "" && p.Regex != "":
		return Term{}, fmt.Errorf("pattern sets both literal and regex")
	case p.Regex != "":
		term.Pattern = p.Regex
		term.IsRegex = true
		term.re, err = compileRegex(p.Regex)
	default:
		term.Pattern = p.Literal
		term.re, err = CompileLiteral(p.Literal)
	}
	if err != nil {
		return Term{}, err
	}
	return term, nil
}

// Parse compiles a lexicon from YAML. Any invalid pattern fails the whole load.
func Parse(data []byte) (*Lexicon, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse lexicon: %w", err)
	}
	lex, err := compile(&doc)
	if err != nil {
		return nil, fmt.Errorf("invalid lexicon: %w", err)
	}
	return lex, nil
}

// LoadFile reads and compiles the lexicon at path.
func LoadFile(path string) (*Lexicon, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read lexicon %s: %w", path, err)
	}
	return Parse(data)
}

// Load returns the lexicon at path, or the embedded default when path is empty.
func Load(path string) (*Lexicon, error) {
	if path == "" {
		return Default()
	}
	return LoadFile(path)
}

// Default compiles the embedded lexicon.
func Default() (*Lexicon, error) {
	return Parse(defaultLexicon)
}

// DefaultBytes returns a copy of the embedded lexicon source.
func DefaultBytes() []byte {
	out := make([]byte, len(defaultLexicon))
	copy(out, defaultLexicon)
	return out
}
