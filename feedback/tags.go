package feedback

import "strings"

// tagRule maps a set of reason keywords to one tag.
type tagRule struct {
	tag      string
	keywords []string
}

// vocabulary is scanned in order; tag order in results follows it.
var vocabulary = []tagRule{
	{tag: "salary", keywords: []string{"salary"}},
	{tag: "skills", keywords: []string{"skill", "experience"}},
	{tag: "distance", keywords: []string{"distance", "location"}},
	{tag: "certification", keywords: []string{"certificate", "iso"}},
	{tag: "education", keywords: []string{"education"}},
}

// AutoTags derives tags from a free-text reason by case-insensitive
// substring match. Each tag appears at most once.
func AutoTags(reason string) []string {
	reason = strings.ToLower(reason)
	tags := []string{}
	for _, rule := range vocabulary {
		for _, kw := range rule.keywords {
			if strings.Contains(reason, kw) {
				tags = append(tags, rule.tag)
				break
			}
		}
	}
	return tags
}
