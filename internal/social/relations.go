// Package social maintains the stance tables settlements keep about each
// other and drifts them with trade outcomes.
package social

import (
	"math"

	"github.com/talgya/tradewinds/internal/trade"
	"github.com/talgya/tradewinds/internal/world"
)

// SeedRelations attaches a stance table to every settlement. First
// impressions come from shared archetypes: alike settlements start warm.
func SeedRelations(ix *world.Index) {
	tiles := ix.WithSystem(world.SystemEconomy)
	for _, t := range tiles {
		if t.Relations() == nil {
			t.Attach(&world.Relations{Table: make(map[world.SettlementID]*world.Relation)})
		}
	}
	for _, a := range tiles {
		ea := a.Economy()
		for _, b := range tiles {
			eb := b.Economy()
			if ea.ID == eb.ID {
				continue
			}
			shared := sharedTypes(ea.Types, eb.Types)
			a.Relations().Table[eb.ID] = &world.Relation{
				Valence: math.Min(1.0, 0.1*float64(shared)),
			}
		}
	}
}

func sharedTypes(a, b []string) int {
	set := make(map[string]struct{}, len(a))
	for _, t := range a {
		set[t] = struct{}{}
	}
	n := 0
	for _, t := range b {
		if _, ok := set[t]; ok {
			n++
		}
	}
	return n
}

// DriftTick folds one weekly observation per active trade link into the
// stance tables: trading feels good and safe, risky routes sour it, and a
// starving partner makes the link feel precarious.
func DriftTick(ix *world.Index, graph trade.Graph) {
	byID := make(map[world.SettlementID]*world.Tile)
	tiles := ix.WithSystem(world.SystemEconomy)
	for _, t := range tiles {
		byID[t.Economy().ID] = t
	}

	for _, t := range tiles {
		e := t.Economy()
		rel := t.Relations()
		if rel == nil {
			continue
		}
		for _, link := range graph[e.ID] {
			valence, security := 0.5, 0.4
			if link.Risk > 2 {
				valence -= 0.3
			}
			if partner, ok := byID[link.Partner]; ok && partner.HasTag("supplies_deficit") {
				security -= 0.2
			}
			rel.Observe(link.Partner, valence, security)
		}
	}
}
