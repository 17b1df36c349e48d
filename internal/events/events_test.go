package events

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/tradewinds/internal/world"
)

func townTile(t *testing.T) (*world.Index, *world.Tile) {
	t.Helper()
	g := world.NewGrid(3, 3)
	tile := g.At(1, 1)
	tile.SetTerrain(world.TerrainPlains)
	tile.SetTerrain(world.TerrainSettlement)
	ix := world.NewIndex(g)
	tile.Attach(&world.Economy{
		ID: 1, Name: "t", Population: 100, Supplies: 50, Wealth: 100, PriceIndex: 1,
		Stock: map[world.Commodity]float64{
			world.CommodityGrain: 1.0,
			world.CommoditySalt:  2.0,
		},
	})
	return ix, tile
}

func TestTriggerUnknownEvent(t *testing.T) {
	_, tile := townTile(t)
	assert.False(t, Trigger(tile, "volcano"))
	assert.Nil(t, tile.Events())
}

func TestTriggerSetsTimerAndTags(t *testing.T) {
	_, tile := townTile(t)
	require.True(t, Trigger(tile, "drought"))

	ae := tile.Events()
	require.NotNil(t, ae)
	require.True(t, ae.Active("drought"))
	assert.Equal(t, 8, ae.Timers["drought"].Remaining)
	assert.True(t, tile.HasTag("water_crisis"))
	assert.True(t, tile.HasTag("drought"), "event name doubles as a tile tag")

	// Retriggering resets the countdown.
	ae.Timers["drought"].Remaining = 1
	Trigger(tile, "drought")
	assert.Equal(t, 8, ae.Timers["drought"].Remaining)
}

func TestTickAllAppliesAndExpires(t *testing.T) {
	ix, tile := townTile(t)
	require.True(t, Trigger(tile, "market_boom"))

	wealth := tile.Economy().Wealth
	salt := tile.Economy().Stock[world.CommoditySalt]

	TickAll(ix)
	assert.InDelta(t, wealth*1.05, tile.Economy().Wealth, 1e-9)
	assert.InDelta(t, salt+0.05, tile.Economy().Stock[world.CommoditySalt], 1e-9)
	// Grain is food, not trade, so the boom leaves it alone.
	assert.InDelta(t, 1.0, tile.Economy().Stock[world.CommodityGrain], 1e-9)
	assert.Equal(t, 5, tile.Events().Timers["market_boom"].Remaining)

	for i := 0; i < 5; i++ {
		TickAll(ix)
	}
	assert.Nil(t, tile.Events(), "expired events detach the record")
	assert.Empty(t, ix.WithSystem(world.SystemEvents))
}

func TestTickAllDroughtShocksFloorAtZero(t *testing.T) {
	ix, tile := townTile(t)
	require.True(t, Trigger(tile, "drought"))

	for i := 0; i < 8; i++ {
		TickAll(ix)
	}
	assert.Equal(t, 0.0, tile.Economy().Stock[world.CommodityGrain],
		"food shock drains grain to zero, never below")
	assert.False(t, tile.HasTag("water_crisis"), "expiry clears the tag")
	assert.False(t, tile.HasTag("drought"))
	assert.GreaterOrEqual(t, tile.Economy().Supplies, 0.0)
}

func TestTickAllEcoEventsOnWilderness(t *testing.T) {
	g := world.NewGrid(3, 3)
	tile := g.At(0, 0)
	tile.SetTerrain(world.TerrainForest)
	ix := world.NewIndex(g)
	tile.Attach(&world.Eco{Producers: 800, Herbivores: 20, Carnivores: 4})

	require.True(t, Trigger(tile, "forest_bloom"))
	TickAll(ix)

	e := tile.Eco()
	assert.InDelta(t, 960, e.Producers, 1e-9)
	assert.InDelta(t, 21, e.Herbivores, 1e-9)
	assert.InDelta(t, 4, e.Carnivores, 1e-9)
}

func TestEcoResetReplacesPopulations(t *testing.T) {
	g := world.NewGrid(3, 3)
	tile := g.At(0, 0)
	tile.SetTerrain(world.TerrainForest)
	ix := world.NewIndex(g)
	tile.Attach(&world.Eco{Producers: 790, Herbivores: 1, Carnivores: 9})

	require.True(t, Trigger(tile, "ecological_collapse"))
	TickAll(ix)

	e := tile.Eco()
	assert.Equal(t, 100.0, e.Producers)
	assert.Equal(t, 10.0, e.Herbivores)
	assert.Equal(t, 2.0, e.Carnivores)
}

func TestSpawnBanditsTargetsWilds(t *testing.T) {
	g := world.NewGrid(9, 9)
	town := g.At(4, 4)
	town.SetTerrain(world.TerrainPlains)
	town.SetTerrain(world.TerrainSettlement)
	g.ForEach(func(tile *world.Tile) {
		if tile != town {
			tile.SetTerrain(world.TerrainForest)
		}
	})
	ix := world.NewIndex(g)
	town.Attach(&world.Economy{ID: 1, Name: "t", Population: 50})
	town.AddTag("struggling")

	rng := rand.New(rand.NewSource(2))
	var fired []Fired
	for i := 0; i < 500 && len(fired) == 0; i++ {
		fired = SpawnBandits(ix, rng)
	}
	require.Len(t, fired, 1, "at most one camp per settlement per call")

	camp := g.At(fired[0].X, fired[0].Y)
	assert.NotEqual(t, world.TerrainSettlement, camp.Terrain)
	assert.True(t, camp.HasTag("bandit_settlement"))
	assert.LessOrEqual(t, maxAbsDelta(fired[0].X, fired[0].Y, 4, 4), 3)
}

func maxAbsDelta(x, y, cx, cy int) int {
	dx, dy := x-cx, y-cy
	if dx < 0 {
		dx = -dx
	}
	if dy < 0 {
		dy = -dy
	}
	if dx > dy {
		return dx
	}
	return dy
}
