package social

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/tradewinds/internal/trade"
	"github.com/talgya/tradewinds/internal/world"
)

func town(g *world.Grid, x, y int, id world.SettlementID, types ...string) *world.Tile {
	t := g.At(x, y)
	t.SetTerrain(world.TerrainSettlement)
	t.Attach(&world.Economy{
		ID:         id,
		Name:       "t",
		Types:      types,
		Population: 50,
		Stock:      map[world.Commodity]float64{},
	})
	return t
}

func TestSeedRelationsSharedTypesStartWarm(t *testing.T) {
	g := world.NewGrid(8, 3)
	a := town(g, 1, 1, 1, "agrarian", "river_trade")
	b := town(g, 4, 1, 2, "agrarian", "river_trade")
	c := town(g, 6, 1, 3, "militaristic")
	ix := world.NewIndex(g)

	SeedRelations(ix)

	require.NotNil(t, a.Relations())
	assert.InDelta(t, 0.2, a.Relations().Get(2).Valence, 1e-9, "two shared archetypes")
	assert.Zero(t, a.Relations().Get(3).Valence)
	assert.InDelta(t, 0.2, b.Relations().Get(1).Valence, 1e-9)
	assert.Zero(t, c.Relations().Get(1).Valence)
}

func TestDriftTickObservations(t *testing.T) {
	g := world.NewGrid(10, 3)
	a := town(g, 1, 1, 1)
	b := town(g, 8, 1, 2)
	ix := world.NewIndex(g)
	SeedRelations(ix)

	b.AddTag("supplies_deficit")
	graph := trade.Graph{
		1: {{Partner: 2, Value: 5, Risk: 3}},
		2: {{Partner: 1, Value: 5, Risk: 0.4}},
	}
	DriftTick(ix, graph)

	// A walked a risky route to a starving partner.
	relA := a.Relations().Get(2)
	assert.InDelta(t, 0.1*0.2, relA.Valence, 1e-9)
	assert.InDelta(t, 0.1*0.2, relA.Security, 1e-9)

	// B's route back is calm and A is fine for supplies.
	relB := b.Relations().Get(1)
	assert.InDelta(t, 0.1*0.5, relB.Valence, 1e-9)
	assert.InDelta(t, 0.1*0.4, relB.Security, 1e-9)
}
