// Package events runs timed tile events: local booms, raids, droughts and
// ecological swings that perturb the economies and food webs around them.
package events

import (
	"math"
	"math/rand"
	"sort"

	"github.com/talgya/tradewinds/internal/world"
)

// EffectKind selects which branch of an Effect is meaningful.
type EffectKind uint8

const (
	EffectWealthMul EffectKind = iota
	EffectSupplyDelta
	EffectPopMul
	EffectCommodityShock
	EffectEcoMul
	EffectEcoReset
)

// Effect is one per-tick consequence of an active event. Fields other
// than the ones its Kind reads are ignored: Factor serves the wealth and
// population multipliers, Delta the supply changes, Shocks the commodity
// shocks, and Prod/Herb/Carn the food-web multipliers (1 = untouched).
type Effect struct {
	Kind   EffectKind
	Factor float64
	Delta  float64
	Shocks map[world.Category]float64
	Prod   float64
	Herb   float64
	Carn   float64
}

// Definition describes an event type: how long it runs, the tags it pins
// on the tile while active, and the effects applied each tick.
type Definition struct {
	Name     string
	Duration int
	Tags     []string
	Effects  []Effect
}

// Library is the catalogue of event types keyed by name.
var Library = map[string]Definition{
	"market_boom": {
		Name: "market_boom", Duration: 6,
		Effects: []Effect{
			{Kind: EffectWealthMul, Factor: 1.05},
			{Kind: EffectCommodityShock, Shocks: map[world.Category]float64{
				world.CategoryTrade:  0.05,
				world.CategoryLuxury: 0.03,
			}},
		},
	},
	"common_raid": {
		Name: "common_raid", Duration: 3,
		Effects: []Effect{{Kind: EffectSupplyDelta, Delta: -5}},
	},
	"festival": {
		Name: "festival", Duration: 4,
		Effects: []Effect{
			{Kind: EffectWealthMul, Factor: 1.02},
			{Kind: EffectPopMul, Factor: 1.001},
		},
	},
	"drought": {
		Name: "drought", Duration: 8,
		Tags: []string{"water_crisis"},
		Effects: []Effect{
			{Kind: EffectSupplyDelta, Delta: -3},
			{Kind: EffectWealthMul, Factor: 0.97},
			{Kind: EffectCommodityShock, Shocks: map[world.Category]float64{
				world.CategoryFood:     -0.2,
				world.CategoryMaterial: -0.05,
			}},
		},
	},
	"trade_mission": {
		Name: "trade_mission", Duration: 5,
		Effects: []Effect{
			{Kind: EffectWealthMul, Factor: 1.1},
			{Kind: EffectSupplyDelta, Delta: 2},
		},
	},
	"forest_bloom": {
		Name: "forest_bloom", Duration: 4,
		Tags: []string{"blooming"},
		Effects: []Effect{{Kind: EffectEcoMul, Prod: 1.2, Herb: 1.05, Carn: 1}},
	},
	"predator_surge": {
		Name: "predator_surge", Duration: 3,
		Tags: []string{"predator_surge"},
		Effects: []Effect{{Kind: EffectEcoMul, Prod: 1, Herb: 0.9, Carn: 1.3}},
	},
	"ecological_collapse": {
		Name: "ecological_collapse", Duration: 5,
		Effects: []Effect{{Kind: EffectEcoReset}},
	},
	"bandit_settlement": {
		Name: "bandit_settlement", Duration: 12,
		Tags: []string{"bandit_settlement"},
	},
}

// Fired records an event trigger for journaling.
type Fired struct {
	X, Y int
	Name string
}

// Trigger starts the named event on a tile, resetting its timer if it is
// already running, and pins the event's tags plus the event name itself.
// Unknown names are ignored.
func Trigger(t *world.Tile, name string) bool {
	def, ok := Library[name]
	if !ok {
		return false
	}
	ae := t.Events()
	if ae == nil {
		ae = &world.ActiveEvents{Timers: make(map[string]*world.EventTimer)}
		t.Attach(ae)
	}
	ae.Timers[name] = &world.EventTimer{Remaining: def.Duration, Duration: def.Duration}
	t.AddTag(name)
	for _, tag := range def.Tags {
		t.AddTag(tag)
	}
	return true
}

// TickAll applies every active event once and retires the ones whose time
// is up, clearing their tags. Events on a tile apply in name order so a
// reset and a multiplier always compose the same way.
func TickAll(ix *world.Index) {
	for _, t := range ix.WithSystem(world.SystemEvents) {
		ae := t.Events()
		names := make([]string, 0, len(ae.Timers))
		for name := range ae.Timers {
			names = append(names, name)
		}
		sort.Strings(names)

		var expired []string
		for _, name := range names {
			if def, ok := Library[name]; ok {
				for _, ef := range def.Effects {
					applyEffect(t, ef)
				}
			}
			tm := ae.Timers[name]
			tm.Remaining--
			if tm.Remaining <= 0 {
				expired = append(expired, name)
			}
		}
		for _, name := range expired {
			delete(ae.Timers, name)
			t.RemoveTag(name)
			for _, tag := range Library[name].Tags {
				t.RemoveTag(tag)
			}
		}
		if len(ae.Timers) == 0 {
			t.Detach(world.SystemEvents)
		}
	}
}

func applyEffect(t *world.Tile, ef Effect) {
	econ := t.Economy()
	switch ef.Kind {
	case EffectWealthMul:
		if econ != nil {
			econ.Wealth *= ef.Factor
		}
	case EffectSupplyDelta:
		if econ != nil {
			econ.Supplies = math.Max(0, econ.Supplies+ef.Delta)
		}
	case EffectPopMul:
		if econ != nil {
			econ.Population = int(float64(econ.Population) * ef.Factor)
		}
	case EffectCommodityShock:
		if econ != nil {
			for c, qty := range econ.Stock {
				if delta, ok := ef.Shocks[world.CategoryOf(c)]; ok {
					econ.Stock[c] = math.Max(0, qty+delta)
				}
			}
		}
	case EffectEcoMul:
		if eco := t.Eco(); eco != nil {
			eco.Producers *= ef.Prod
			eco.Herbivores *= ef.Herb
			eco.Carnivores *= ef.Carn
		}
	case EffectEcoReset:
		t.Attach(&world.Eco{Producers: 100, Herbivores: 10, Carnivores: 2})
	}
}

// SpawnBandits seeds bandit camps in the wilds around struggling
// settlements, at most one new camp per settlement per call.
func SpawnBandits(ix *world.Index, rng *rand.Rand) []Fired {
	var fired []Fired
	for _, s := range ix.WithTag("struggling") {
		if s.Economy() == nil {
			continue
		}
		for _, t := range ix.TilesWithinRadius(s.X, s.Y, 3) {
			if t.Terrain == world.TerrainSettlement || t.Terrain == world.TerrainDeepWater {
				continue
			}
			if ae := t.Events(); ae != nil && ae.Active("bandit_settlement") {
				continue
			}
			if rng.Float64() < 0.02 {
				Trigger(t, "bandit_settlement")
				fired = append(fired, Fired{X: t.X, Y: t.Y, Name: "bandit_settlement"})
				break
			}
		}
	}
	return fired
}
