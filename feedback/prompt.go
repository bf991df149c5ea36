package feedback

import (
	"strings"

	"github.com/poiesic/scout/core"
)

const adjustmentHeader = "\nIMPORTANT OPTIMIZATION RULES BASED ON USER FEEDBACK:\n"

// emphasisRules pairs each tag with the instruction it adds, in emission order.
var emphasisRules = []struct {
	tag  string
	rule string
}{
	{"salary", "Strongly prioritize salary match."},
	{"skills", "Strongly emphasize required skills and certifications."},
	{"distance", "Prioritize candidates closer to company location."},
	{"certification", "Ensure required certifications are strictly matched."},
	{"education", "Pay attention to education level requirements."},
}

// PromptAdjustment renders down-vote tag statistics as prompt instructions.
// Every tag seen in any group contributes its rule once. Returns "" when
// no rule applies.
func PromptAdjustment(stats []core.TagCount) string {
	seen := make(map[string]bool)
	for _, s := range stats {
		if s.Count <= 0 {
			continue
		}
		for _, tag := range s.Tags {
			seen[tag] = true
		}
	}

	var rules []string
	for _, r := range emphasisRules {
		if seen[r.tag] {
			rules = append(rules, r.rule)
		}
	}
	if len(rules) == 0 {
		return ""
	}
	return adjustmentHeader + strings.Join(rules, "\n")
}
