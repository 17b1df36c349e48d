package trade

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/tradewinds/internal/world"
)

func flatGrid(w, h int) *world.Grid {
	g := world.NewGrid(w, h)
	g.ForEach(func(t *world.Tile) {
		t.SetTerrain(world.TerrainPlains)
		t.MovementCost = 1
	})
	return g
}

func settle(g *world.Grid, x, y int, id world.SettlementID, pop int, stock map[world.Commodity]float64) *world.Tile {
	t := g.At(x, y)
	t.SetTerrain(world.TerrainSettlement)
	if stock == nil {
		stock = make(map[world.Commodity]float64)
	}
	t.Attach(&world.Economy{
		ID:            id,
		Name:          fmt.Sprintf("town_%d", id),
		Population:    pop,
		Supplies:      100,
		Wealth:        50,
		Prosperity:    120,
		PurchasePower: 1,
		PriceIndex:    1,
		Stock:         stock,
	})
	return t
}

func TestCollectProfilesDemand(t *testing.T) {
	g := flatGrid(4, 4)
	settle(g, 1, 1, 7, 100, map[world.Commodity]float64{
		world.CommodityGrain:  0.5,
		world.CommodityFish:   5,
		world.CommodityTimber: 2,
	})
	ix := world.NewIndex(g)

	profiles := CollectProfiles(ix)
	require.Len(t, profiles, 1)
	p := profiles[7]

	assert.Equal(t, map[world.Commodity]float64{
		world.CommodityFish:   5,
		world.CommodityTimber: 2,
	}, p.Exports, "only stock above one unit exports")

	assert.InDelta(t, 1.5, p.Imports[world.CommodityGrain], 1e-9)
	assert.InDelta(t, 1.5, p.Imports[world.CommodityMeat], 1e-9)
	assert.InDelta(t, 0.3, p.Imports[world.CommodityStone], 1e-9)
	assert.InDelta(t, 0.2, p.Imports[world.CommodityIron], 1e-9)
	assert.NotContains(t, p.Imports, world.CommodityFish, "covered demand is not imported")
	assert.NotContains(t, p.Imports, world.CommodityTimber)
}

func TestTradeValue(t *testing.T) {
	a := &Profile{
		Exports: map[world.Commodity]float64{world.CommodityFish: 5},
		Imports: map[world.Commodity]float64{world.CommodityGrain: 1.8},
		Wealth:  50, Supplies: 100,
	}
	b := &Profile{
		Exports: map[world.Commodity]float64{world.CommodityGrain: 3},
		Imports: map[world.Commodity]float64{world.CommodityFish: 1},
		Wealth:  50, Supplies: 100,
	}
	// base 5+3 scaled by 0.5 + 100/200 + 200/200
	assert.InDelta(t, 16.0, TradeValue(a, b), 1e-9)

	none := &Profile{
		Exports: map[world.Commodity]float64{},
		Imports: map[world.Commodity]float64{},
	}
	assert.Zero(t, TradeValue(a, none), "no overlap, no value")
}

func TestFindPartnersScoring(t *testing.T) {
	g := flatGrid(12, 3)
	a := settle(g, 0, 1, 1, 100, nil)
	settle(g, 5, 1, 2, 100, map[world.Commodity]float64{world.CommodityGrain: 10})
	settle(g, 9, 1, 3, 100, map[world.Commodity]float64{world.CommodityGrain: 10})
	settle(g, 11, 1, 4, 100, nil)
	ix := world.NewIndex(g)

	profiles := CollectProfiles(ix)
	partners := FindPartners(ix, profiles, DefaultParams())

	assert.Equal(t, []world.SettlementID{2, 3}, partners[1], "closer supplier wins")
	assert.NotContains(t, partners[1], world.SettlementID(4), "no complement, no partner")

	// Strong dislike for 2 and warmth for 3 flips the ranking.
	a.Attach(&world.Relations{Table: map[world.SettlementID]*world.Relation{
		2: {Valence: -1},
		3: {Valence: 1},
	}})
	partners = FindPartners(ix, profiles, DefaultParams())
	assert.Equal(t, []world.SettlementID{3, 2}, partners[1])
}

func TestSynthesizeTwoSettlementExchange(t *testing.T) {
	g := flatGrid(12, 3)
	ta := settle(g, 1, 1, 1, 100, map[world.Commodity]float64{
		world.CommodityFish:  6,
		world.CommodityGrain: 0.2,
	})
	tb := settle(g, 10, 1, 2, 100, map[world.Commodity]float64{
		world.CommodityGrain: 8,
	})
	ix := world.NewIndex(g)

	graph := *Synthesize(g, ix, DefaultParams())
	require.Len(t, graph[1], 1, "the scouted partner route duplicates the backbone and is dropped")
	require.Len(t, graph[2], 1)

	ab, ba := graph[1][0], graph[2][0]
	assert.Equal(t, world.SettlementID(2), ab.Partner)
	assert.Equal(t, world.SettlementID(1), ba.Partner)

	// base 6+8 scaled by 0.5 + 100/200 + 200/200
	assert.InDelta(t, 28.0, ab.Value, 1e-9)
	assert.InDelta(t, ab.Value, ba.Value, 1e-12)
	assert.Zero(t, ab.Risk, "bare plains carry no hazards")

	assert.Same(t, ta, ab.Path[0])
	assert.Same(t, tb, ab.Path[len(ab.Path)-1])
	assert.Same(t, tb, ba.Path[0], "the mirror link walks the other way")
	assert.Same(t, ta, ba.Path[len(ba.Path)-1])
	assert.Equal(t, len(ab.Path), len(ba.Path))
	assert.Equal(t, 2, graph.TotalLinks())
}

func TestSynthesizeBackboneConnectsAll(t *testing.T) {
	g := flatGrid(20, 3)
	for i := 0; i < 5; i++ {
		settle(g, i*4, 1, world.SettlementID(i+1), 50, nil)
	}
	ix := world.NewIndex(g)

	graph := *Synthesize(g, ix, DefaultParams())

	// Nobody has anything to sell, so every link is pure backbone.
	for sid, links := range graph {
		for _, l := range links {
			assert.Zero(t, l.Value, "link %d -> %d", sid, l.Partner)
			assert.NotEmpty(t, l.Path)
		}
	}

	seen := map[world.SettlementID]bool{1: true}
	frontier := []world.SettlementID{1}
	for len(frontier) > 0 {
		cur := frontier[0]
		frontier = frontier[1:]
		for _, l := range graph[cur] {
			if !seen[l.Partner] {
				seen[l.Partner] = true
				frontier = append(frontier, l.Partner)
			}
		}
	}
	assert.Len(t, seen, 5, "backbone reaches every settlement")
}

func TestSynthesizeDegenerateWorlds(t *testing.T) {
	g := flatGrid(6, 6)
	ix := world.NewIndex(g)
	assert.Empty(t, *Synthesize(g, ix, DefaultParams()), "no settlements")

	settle(g, 2, 2, 1, 80, nil)
	assert.Empty(t, *Synthesize(g, ix, DefaultParams()), "one settlement has no one to trade with")

	// An exhausted path budget leaves settlements unlinked.
	settle(g, 4, 4, 2, 80, nil)
	p := DefaultParams()
	p.MaxExpansions = 0
	assert.Empty(t, *Synthesize(g, ix, p))
}

func TestTagSettlements(t *testing.T) {
	g := flatGrid(20, 9)
	rich := settle(g, 2, 4, 1, 100, nil)
	poor := settle(g, 8, 4, 2, 100, nil)
	hub := settle(g, 14, 4, 3, 100, nil)
	ix := world.NewIndex(g)

	profiles := CollectProfiles(ix)
	profiles[1].Prosperity = 300
	profiles[2].Prosperity = 20
	profiles[2].Supplies = 10
	poor.AddTag("prosperous") // stale tag from a previous cycle

	graph := Graph{3: {{Partner: 1}, {Partner: 2}, {Partner: 1}}}
	TagSettlements(ix, profiles, graph)

	assert.True(t, rich.HasTag("prosperous"))
	assert.False(t, rich.HasTag("struggling"))
	assert.True(t, poor.HasTag("struggling"))
	assert.False(t, poor.HasTag("prosperous"), "stale tags are cleared")
	assert.True(t, poor.HasTag("supplies_deficit"), "stores below half a head each")
	assert.True(t, hub.HasTag("trade_hub"))
	assert.False(t, rich.HasTag("trade_hub"))
}

func TestTagSettlementsBanditGating(t *testing.T) {
	g := flatGrid(9, 9)
	g.ForEach(func(tl *world.Tile) { tl.SetTerrain(world.TerrainForest) })
	town := settle(g, 4, 4, 1, 100, nil)
	ix := world.NewIndex(g)

	profiles := CollectProfiles(ix)
	profiles[1].Prosperity = 30

	risky := Graph{1: {{Partner: 9, Risk: 5}}}
	TagSettlements(ix, profiles, risky)
	assert.True(t, town.HasTag("bandit_infested_settlement"),
		"poor plus risky routes plus deep wilderness crosses the bar")

	// Prosperity above the bar shrugs the same signals off.
	profiles[1].Prosperity = 80
	TagSettlements(ix, profiles, risky)
	assert.False(t, town.HasTag("bandit_infested_settlement"))

	// A single signal is not enough.
	profiles[1].Prosperity = 30
	calm := Graph{1: {{Partner: 9, Risk: 0.5}}}
	TagSettlements(ix, profiles, calm)
	assert.False(t, town.HasTag("bandit_infested_settlement"))
}

func TestApplyEffectsArithmetic(t *testing.T) {
	g := flatGrid(6, 3)
	town := settle(g, 1, 1, 1, 100, nil)
	econ := town.Economy()
	econ.PurchasePower = 4
	ix := world.NewIndex(g)

	var s Store
	ApplyEffects(ix, &s)
	assert.Equal(t, 50.0, econ.Wealth, "no published graph, no effects")
	ApplyEffects(ix, nil)
	assert.Equal(t, 50.0, econ.Wealth)

	graph := Graph{1: {{Partner: 2, Value: 32, Risk: 3}}}
	s.Replace(&graph)
	ApplyEffects(ix, &s)

	gain := math.Pow(32, 0.7)
	assert.InDelta(t, 50+gain*0.04-1.5*0.02, econ.Wealth, 1e-9)
	assert.InDelta(t, 100+gain*0.02-1.5*0.015, econ.Supplies, 1e-9)
}

func TestApplyEffectsClampsAtZero(t *testing.T) {
	g := flatGrid(4, 3)
	town := settle(g, 1, 1, 1, 100, nil)
	econ := town.Economy()
	econ.Wealth = 0.01
	econ.Supplies = 0.01
	ix := world.NewIndex(g)

	graph := Graph{
		1: {{Partner: 2, Risk: 50}},
		9: {{Partner: 1, Value: 10}}, // settlement long gone, skipped
	}
	var s Store
	s.Replace(&graph)
	ApplyEffects(ix, &s)

	assert.Zero(t, econ.Wealth)
	assert.Zero(t, econ.Supplies)
}

func TestStorePublishes(t *testing.T) {
	var s Store
	assert.Nil(t, s.Current())

	g1 := Graph{}
	s.Replace(&g1)
	assert.Same(t, &g1, s.Current())
}
