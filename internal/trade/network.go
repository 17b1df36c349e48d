package trade

import (
	"math"
	"sort"

	"github.com/talgya/tradewinds/internal/world"
)

// TradeValue scores the mutual worth of a pairing: each side's full
// exports that the other wants, scaled up by how much wealth and supply
// the two can put behind the exchange.
func TradeValue(a, b *Profile) float64 {
	var base float64
	for c, qty := range a.Exports {
		if _, wants := b.Imports[c]; wants {
			base += qty
		}
	}
	for c, qty := range b.Exports {
		if _, wants := a.Imports[c]; wants {
			base += qty
		}
	}
	if base <= 0 {
		return 0
	}
	wealthMod := (a.Wealth + b.Wealth) / 200
	supplyMod := (a.Supplies + b.Supplies) / 200
	return base * (0.5 + wealthMod + supplyMod)
}

// pairKey identifies an unordered settlement pair, low ID first.
type pairKey struct {
	a, b world.SettlementID
}

// orderedPair normalizes a pair and reports whether it was flipped.
func orderedPair(a, b world.SettlementID) (pairKey, bool) {
	if a <= b {
		return pairKey{a, b}, false
	}
	return pairKey{b, a}, true
}

type cachedRoute struct {
	path []*world.Tile
	cost float64
}

// Synthesize rebuilds the whole trade network from live settlement state.
// A Kruskal backbone over the cheapest pairwise routes keeps every
// reachable settlement connected; the partner routes each settlement
// scouts for itself come on top. Settlement tags are rewritten from the
// result. With fewer than two settlements the graph is empty.
func Synthesize(g *world.Grid, ix *world.Index, params Params) *Graph {
	profiles := CollectProfiles(ix)
	graph := make(Graph)
	if len(profiles) <= 1 {
		return &graph
	}

	ids := sortedIDs(profiles)

	// One A* run per unordered pair, reused for backbone and partner
	// edges alike. Pairs the planner cannot route in budget stay
	// disconnected this cycle.
	routes := make(map[pairKey]cachedRoute)
	for i := 0; i < len(ids); i++ {
		for j := i + 1; j < len(ids); j++ {
			path := FindRoute(g, profiles[ids[i]].Tile, profiles[ids[j]].Tile, params.MaxExpansions)
			if path == nil {
				continue
			}
			routes[pairKey{ids[i], ids[j]}] = cachedRoute{path: path, cost: pathCost(path)}
		}
	}

	// Kruskal over the cached routes, cheapest first.
	slot := make(map[world.SettlementID]int, len(ids))
	for i, sid := range ids {
		slot[sid] = i
	}
	parent := make([]int, len(ids))
	for i := range parent {
		parent[i] = i
	}
	find := func(x int) int {
		for parent[x] != x {
			parent[x] = parent[parent[x]]
			x = parent[x]
		}
		return x
	}
	union := func(a, b int) bool {
		ra, rb := find(a), find(b)
		if ra == rb {
			return false
		}
		parent[rb] = ra
		return true
	}

	type edge struct {
		cost float64
		a, b world.SettlementID
	}
	edges := make([]edge, 0, len(routes))
	for k, r := range routes {
		edges = append(edges, edge{cost: r.cost, a: k.a, b: k.b})
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].cost != edges[j].cost {
			return edges[i].cost < edges[j].cost
		}
		if edges[i].a != edges[j].a {
			return edges[i].a < edges[j].a
		}
		return edges[i].b < edges[j].b
	})

	for _, e := range edges {
		if !union(slot[e.a], slot[e.b]) {
			continue
		}
		r := routes[pairKey{e.a, e.b}]
		risk := EvaluateRouteRisk(r.path)
		value := TradeValue(profiles[e.a], profiles[e.b])
		graph[e.a] = append(graph[e.a], Link{Partner: e.b, Value: value, Risk: risk, Path: r.path})
		graph[e.b] = append(graph[e.b], Link{Partner: e.a, Value: value, Risk: risk, Path: reversed(r.path)})
	}

	// Scouted partner routes, skipping pairs the backbone already carries
	// over the same path.
	partners := FindPartners(ix, profiles, params)
	for _, sid := range ids {
		for _, oid := range partners[sid] {
			value := TradeValue(profiles[sid], profiles[oid])
			if value <= 0 {
				continue
			}
			key, flipped := orderedPair(sid, oid)
			r, ok := routes[key]
			if !ok {
				continue
			}
			path := r.path
			if flipped {
				path = reversed(r.path)
			}
			if hasLink(graph[sid], oid, path) {
				continue
			}
			graph[sid] = append(graph[sid], Link{
				Partner: oid,
				Value:   value,
				Risk:    EvaluateRouteRisk(path),
				Path:    path,
			})
		}
	}

	TagSettlements(ix, profiles, graph)
	return &graph
}

// TagSettlements rewrites the derived settlement tags from the profiles
// and the freshly built network: prosperity tiers, supply crises, hub
// status, and bandit infestation where a poor settlement racks up enough
// danger signals.
func TagSettlements(ix *world.Index, profiles map[world.SettlementID]*Profile, graph Graph) {
	derived := []string{
		"prosperous", "struggling", "supplies_deficit",
		"trade_hub", "bandit_settlement", "bandit_infested_settlement",
	}

	ids := sortedIDs(profiles)
	for _, sid := range ids {
		p := profiles[sid]
		t := p.Tile
		for _, tag := range derived {
			t.RemoveTag(tag)
		}
		if p.Prosperity > 200 {
			t.AddTag("prosperous")
		} else if p.Prosperity < 40 {
			t.AddTag("struggling")
		}
		if p.Supplies < float64(p.Population)*0.5 {
			t.AddTag("supplies_deficit")
		}
		if len(graph[sid]) >= 3 {
			t.AddTag("trade_hub")
		}
	}

	for _, sid := range ids {
		p := profiles[sid]
		t := p.Tile
		signals := 0

		links := graph[sid]
		var riskSum float64
		for _, l := range links {
			riskSum += l.Risk
		}
		if riskSum/math.Max(1, float64(len(links))) > 2.0 {
			signals++
		}

		if rel := t.Relations(); rel != nil {
			for _, r := range rel.Table {
				if r.Valence < -0.5 && r.Security < -0.5 {
					signals++
					break
				}
			}
		}

		wild := 0
		for _, nb := range ix.TilesWithinRadius(t.X, t.Y, 3) {
			switch nb.Terrain {
			case world.TerrainSettlement, world.TerrainCoastal, world.TerrainPlains, world.TerrainRiverside:
			default:
				wild++
			}
		}
		if wild > 5 {
			signals++
		}

		if p.Prosperity < 50 && signals >= 2 {
			t.AddTag("bandit_infested_settlement")
		}
	}
}

func sortedIDs(profiles map[world.SettlementID]*Profile) []world.SettlementID {
	ids := make([]world.SettlementID, 0, len(profiles))
	for sid := range profiles {
		ids = append(ids, sid)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func hasLink(links []Link, partner world.SettlementID, path []*world.Tile) bool {
	for _, l := range links {
		if l.Partner == partner && samePath(l.Path, path) {
			return true
		}
	}
	return false
}

func samePath(a, b []*world.Tile) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func reversed(path []*world.Tile) []*world.Tile {
	out := make([]*world.Tile, len(path))
	for i, t := range path {
		out[len(path)-1-i] = t
	}
	return out
}
