package search

import "strings"

// AlignExplanations maps a generated "**Name**\ntext" listing onto names.
//
// Blocks are matched by exact, trimmed name. Each block is used once, so a
// name listed twice takes successive blocks. Names without a block get "".
func AlignExplanations(text string, names []string) []string {
	aligned := make([]string, len(names))
	if text == "" {
		return aligned
	}

	type block struct {
		name string
		body string
		used bool
	}
	parts := strings.Split(text, "**")
	blocks := make([]block, 0, len(parts)/2)
	for i := 1; i < len(parts); i += 2 {
		b := block{name: strings.TrimSpace(parts[i])}
		if i+1 < len(parts) {
			b.body = strings.TrimSpace(parts[i+1])
		}
		blocks = append(blocks, b)
	}

	for i, name := range names {
		for j := range blocks {
			if !blocks[j].used && blocks[j].name == name {
				aligned[i] = blocks[j].body
				blocks[j].used = true
				break
			}
		}
	}
	return aligned
}
