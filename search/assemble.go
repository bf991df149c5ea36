package search

import "github.com/poiesic/scout/core"

// Assemble builds response entries from ranked hits and their aligned
// explanations. Order is preserved; missing explanations become "".
func Assemble(hits []core.Hit, explanations []string) []core.RankedResult {
	results := make([]core.RankedResult, len(hits))
	for i, hit := range hits {
		c := hit.Candidate
		c.Normalize()
		var explanation string
		if i < len(explanations) {
			explanation = explanations[i]
		}
		results[i] = core.RankedResult{
			Candidate:   c,
			MatchScore:  core.Round2(hit.Score),
			Explanation: explanation,
		}
	}
	return results
}
