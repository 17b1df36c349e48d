// Package trade plans and settles the inter-settlement trade network: a
// minimum-cost backbone connecting every reachable settlement, extra
// partner routes each settlement scouts for itself, per-route risk scored
// against the live world, and the daily ledger effects of both.
package trade

import (
	"sync/atomic"

	"github.com/talgya/tradewinds/internal/world"
)

// Link is one trade connection as seen from one of its endpoints. Path
// runs from that endpoint to the partner, both settlement tiles included.
type Link struct {
	Partner world.SettlementID
	Value   float64
	Risk    float64
	Path    []*world.Tile
}

// Graph maps every settlement to its outgoing links. Backbone links
// appear under both endpoints with mirrored paths.
type Graph map[world.SettlementID][]Link

// TotalLinks counts the link entries across all settlements. A backbone
// connection counts once per endpoint.
func (g Graph) TotalLinks() int {
	n := 0
	for _, links := range g {
		n += len(links)
	}
	return n
}

// Store publishes the active trade graph. Synthesis swaps in whole
// graphs, so readers on other goroutines always see a complete network,
// never a half-built one.
type Store struct {
	current atomic.Pointer[Graph]
}

// Current returns the latest published graph, or nil before the first
// synthesis.
func (s *Store) Current() *Graph {
	return s.current.Load()
}

// Replace publishes g as the active graph.
func (s *Store) Replace(g *Graph) {
	s.current.Store(g)
}
