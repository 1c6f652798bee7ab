package services

import (
	"regexp"
	"strings"
	"sync"

	"civic-engagement/missionhub/internal/config"
	"civic-engagement/missionhub/internal/logging"
)

var (
	newlineRunPattern = regexp.MustCompile(`\n{2,}`)

	compiledRules sync.Map // pattern -> *regexp.Regexp, nil for invalid patterns
)

func compileRulePattern(pattern string) *regexp.Regexp {
	if cached, ok := compiledRules.Load(pattern); ok {
		re, _ := cached.(*regexp.Regexp)
		return re
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		logging.Warn("[TextRules] Invalid replace pattern, rule skipped", "pattern", pattern, "error", err)
		re = nil
	}
	compiledRules.Store(pattern, re)
	return re
}

// ApplyTextRules runs a publisher's post-processing rules over a description, in order
func ApplyTextRules(text string, rules []config.TextRule) string {
	for _, rule := range rules {
		if rule.StripAfter != "" {
			if i := strings.Index(text, rule.StripAfter); i >= 0 {
				text = text[:i]
			}
		}
		if rule.Replace != nil && rule.Replace.Pattern != "" {
			if re := compileRulePattern(rule.Replace.Pattern); re != nil {
				text = re.ReplaceAllString(text, rule.Replace.With)
			}
		}
		if rule.CollapseNewlines {
			text = newlineRunPattern.ReplaceAllString(text, "\n")
		}
		if rule.Trim {
			text = strings.TrimSpace(text)
		}
	}
	return text
}
