package search

import "github.com/poiesic/scout/core"

// SearchMonitor provides hooks to observe the search process.
// Implement this interface to track intermediate steps and results during search.
type SearchMonitor interface {
	Start(req core.SearchRequest)
	AfterStandardLookup(std core.Standard)
	AfterEnrichment(query string)
	AfterBroadPass(hits []core.Hit)
	AfterFeedbackWeights(weights core.WeightMap)
	AfterNarrowPass(hits []core.Hit)
	AfterExplanation(explanation Explanation)
	Finish(resp *core.SearchResponse)
}

// noopMonitor is a no-op implementation of SearchMonitor
type noopMonitor struct{}

var _ SearchMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ core.SearchRequest)            {}
func (n *noopMonitor) AfterStandardLookup(_ core.Standard)   {}
func (n *noopMonitor) AfterEnrichment(_ string)              {}
func (n *noopMonitor) AfterBroadPass(_ []core.Hit)           {}
func (n *noopMonitor) AfterFeedbackWeights(_ core.WeightMap) {}
func (n *noopMonitor) AfterNarrowPass(_ []core.Hit)          {}
func (n *noopMonitor) AfterExplanation(_ Explanation)        {}
func (n *noopMonitor) Finish(_ *core.SearchResponse)         {}
