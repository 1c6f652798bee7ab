package services

import (
	"testing"

	"civic-engagement/missionhub/internal/config"
)

func TestApplyTextRules(t *testing.T) {
	rules := []config.TextRule{
		{StripAfter: "Pour postuler"},
		{Replace: &config.ReplaceRule{Pattern: `\s*Réf\. \d+`, With: ""}},
		{CollapseNewlines: true, Trim: true},
	}

	got := ApplyTextRules("  Aider les aînés Réf. 1234\n\n\nle samedi\nPour postuler: appelez", rules)

	want := "Aider les aînés\nle samedi"
	if got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}

func TestApplyTextRules_InvalidPatternSkipped(t *testing.T) {
	rules := []config.TextRule{
		{Replace: &config.ReplaceRule{Pattern: `([`, With: "x"}},
		{Trim: true},
	}

	if got := ApplyTextRules(" texte ", rules); got != "texte" {
		t.Errorf("Expected invalid rule to be skipped, got %q", got)
	}
}

func TestApplyTextRules_NoRules(t *testing.T) {
	if got := ApplyTextRules(" inchangé ", nil); got != " inchangé " {
		t.Errorf("Expected text unchanged, got %q", got)
	}
}
