package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// TextRule is one partner-specific post-processing step applied to mission descriptions
type TextRule struct {
	StripAfter       string       `yaml:"strip_after"`
	Replace          *ReplaceRule `yaml:"replace"`
	CollapseNewlines bool         `yaml:"collapse_newlines"`
	Trim             bool         `yaml:"trim"`
}

type ReplaceRule struct {
	Pattern string `yaml:"pattern"`
	With    string `yaml:"with"`
}

// TextRules maps a publisher id to its ordered rules
type TextRules struct {
	Publishers map[string][]TextRule `yaml:"publishers"`
}

// For returns the rules of a publisher, or nil
func (r *TextRules) For(publisherID string) []TextRule {
	if r == nil {
		return nil
	}
	return r.Publishers[publisherID]
}

// LoadTextRules reads the YAML rules file. An empty path yields no rules.
func LoadTextRules(path string) (*TextRules, error) {
	if path == "" {
		return &TextRules{}, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read text rules %s: %w", path, err)
	}
	return ParseTextRules(raw)
}

// ParseTextRules decodes rules from YAML
func ParseTextRules(raw []byte) (*TextRules, error) {
	var rules TextRules
	if err := yaml.Unmarshal(raw, &rules); err != nil {
		return nil, fmt.Errorf("invalid text rules: %w", err)
	}
	if rules.Publishers == nil {
		rules.Publishers = map[string][]TextRule{}
	}
	return &rules, nil
}
