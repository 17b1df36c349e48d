package trade

import (
	"math"
	"sort"

	"github.com/talgya/tradewinds/internal/world"
)

// FindPartners scores nearby complementary settlements for each profile
// and keeps the best few. Surplus meeting shortfall drives the score,
// distance discounts it, warm relations raise it and anxious leadership
// penalizes the long hauls.
func FindPartners(ix *world.Index, profiles map[world.SettlementID]*Profile, params Params) map[world.SettlementID][]world.SettlementID {
	partners := make(map[world.SettlementID][]world.SettlementID, len(profiles))
	maxDistance := math.Max(1, float64(params.SearchRadius)*0.75)

	for sid, prof := range profiles {
		tile := prof.Tile

		anxiety := 0.5
		if p := tile.Personality(); p != nil {
			anxiety = p.Trait(world.TraitAnxiety)
		}
		rel := tile.Relations()

		type scored struct {
			score float64
			id    world.SettlementID
		}
		var candidates []scored
		for _, ot := range ix.TilesWithinRadius(tile.X, tile.Y, params.SearchRadius) {
			oecon := ot.Economy()
			if oecon == nil || oecon.ID == sid {
				continue
			}
			other, ok := profiles[oecon.ID]
			if !ok {
				continue
			}
			dist := math.Hypot(float64(ot.X-tile.X), float64(ot.Y-tile.Y))
			if dist == 0 {
				continue
			}

			complement := matchValue(prof.Exports, other.Imports) + matchValue(other.Exports, prof.Imports)
			if complement == 0 {
				continue
			}

			affinity := 1.0
			if rel != nil {
				affinity = 1.0 + 0.5*rel.Get(oecon.ID).Valence
			}
			caution := 1.0 + anxiety*dist/maxDistance

			candidates = append(candidates, scored{
				score: complement * affinity / (dist * caution),
				id:    oecon.ID,
			})
		}

		sort.Slice(candidates, func(i, j int) bool {
			if candidates[i].score != candidates[j].score {
				return candidates[i].score > candidates[j].score
			}
			return candidates[i].id < candidates[j].id
		})
		if len(candidates) > params.MaxPartners {
			candidates = candidates[:params.MaxPartners]
		}
		picks := make([]world.SettlementID, len(candidates))
		for i, c := range candidates {
			picks[i] = c.id
		}
		partners[sid] = picks
	}
	return partners
}

// matchValue sums how much of the exports can cover matching imports.
func matchValue(exports, imports map[world.Commodity]float64) float64 {
	var total float64
	for c, qty := range exports {
		if want, ok := imports[c]; ok {
			total += math.Min(qty, want)
		}
	}
	return total
}
