package engine

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/tradewinds/internal/social"
	"github.com/talgya/tradewinds/internal/trade"
	"github.com/talgya/tradewinds/internal/weather"
	"github.com/talgya/tradewinds/internal/world"
)

func TestSimTime(t *testing.T) {
	assert.Equal(t, "Day 1, 0:00 Year 1", SimTime(0))
	assert.Equal(t, "Day 1, 1:30 Year 1", SimTime(90))
	assert.Equal(t, "Day 1, 23:59 Year 1", SimTime(1439))
	assert.Equal(t, "Day 2, 0:00 Year 1", SimTime(TicksPerSimDay))
	assert.Equal(t, "Day 1, 0:00 Year 2", SimTime(365*TicksPerSimDay))
}

func TestStepCadence(t *testing.T) {
	e := NewEngine()

	var ticks, hours, days, weeks int
	e.OnTick = func(uint64) { ticks++ }
	e.OnHour = func(uint64) { hours++ }
	e.OnDay = func(uint64) { days++ }
	e.OnWeek = func(uint64) { weeks++ }

	for i := 0; i < TicksPerSimWeek; i++ {
		e.step()
	}

	assert.Equal(t, TicksPerSimWeek, ticks)
	assert.Equal(t, 168, hours)
	assert.Equal(t, 7, days)
	assert.Equal(t, 1, weeks)
	assert.Equal(t, uint64(TicksPerSimWeek), e.Tick)
}

func testWorld(t *testing.T) (*world.Grid, *world.Index) {
	t.Helper()
	g := world.NewGrid(10, 6)
	g.ForEach(func(tile *world.Tile) {
		tile.SetTerrain(world.TerrainPlains)
		tile.MovementCost = 1
	})

	place := func(x, y int, id world.SettlementID, stock map[world.Commodity]float64) {
		tile := g.At(x, y)
		tile.SetTerrain(world.TerrainSettlement)
		tile.Attach(&world.Economy{
			ID:            id,
			Name:          fmt.Sprintf("town_%d", id),
			Types:         []string{"farming_village"},
			Population:    100,
			Supplies:      200,
			Wealth:        80,
			Prosperity:    100,
			PurchasePower: 2,
			PriceIndex:    1,
			Stock:         stock,
		})
	}
	place(1, 2, 1, map[world.Commodity]float64{
		world.CommodityGrain: 9, world.CommodityMeat: 4,
	})
	place(7, 2, 2, map[world.Commodity]float64{
		world.CommodityFish: 8, world.CommodityTimber: 6,
	})

	ix := world.NewIndex(g)
	social.SeedRelations(ix)
	return g, ix
}

func TestTickWeekPublishesNetwork(t *testing.T) {
	g, ix := testWorld(t)
	sim := NewSimulation(g, ix, weather.NewModel(1), rand.New(rand.NewSource(1)))

	require.Nil(t, sim.Store.Current())
	sim.TickWeek(TicksPerSimWeek)

	graph := sim.Store.Current()
	require.NotNil(t, graph)
	assert.Equal(t, 2, graph.TotalLinks(), "two towns link to each other")

	for _, links := range *graph {
		for _, l := range links {
			assert.Greater(t, l.Value, 0.0, "complementary stocks trade at value")
			assert.NotEmpty(t, l.Path)
		}
	}
}

func TestTickDayRunsWithoutSinks(t *testing.T) {
	g, ix := testWorld(t)
	sim := NewSimulation(g, ix, weather.NewModel(1), rand.New(rand.NewSource(1)))
	sim.TickWeek(TicksPerSimWeek)

	sim.TickHour(TicksPerSimHour)
	sim.TickDay(TicksPerSimDay)
	sim.TickDay(2 * TicksPerSimDay) // even day, ecology branch included

	for _, tile := range ix.WithSystem(world.SystemEconomy) {
		econ := tile.Economy()
		assert.GreaterOrEqual(t, econ.Wealth, 0.0)
		assert.GreaterOrEqual(t, econ.Supplies, 0.0)
	}
}

func TestTickMinuteTracksCounter(t *testing.T) {
	g, ix := testWorld(t)
	sim := NewSimulation(g, ix, weather.NewModel(1), rand.New(rand.NewSource(1)))

	sim.TickMinute(17)
	assert.Equal(t, uint64(17), sim.CurrentTick())
}

func TestTradeRowsOrdering(t *testing.T) {
	a := world.NewTile(0, 0)
	b := world.NewTile(1, 0)
	graph := trade.Graph{
		2: {{Partner: 1, Value: 5, Risk: 1, Path: []*world.Tile{b, a}}},
		1: {
			{Partner: 3, Value: 2, Risk: 0.5, Path: []*world.Tile{a}},
			{Partner: 2, Value: 5, Risk: 1, Path: []*world.Tile{a, b}},
		},
	}

	rows := tradeRows(10080, &graph)
	require.Len(t, rows, 3)
	assert.Equal(t, world.SettlementID(1), rows[0].Settlement)
	assert.Equal(t, world.SettlementID(2), rows[0].Partner)
	assert.Equal(t, world.SettlementID(1), rows[1].Settlement)
	assert.Equal(t, world.SettlementID(3), rows[1].Partner)
	assert.Equal(t, world.SettlementID(2), rows[2].Settlement)
	assert.Equal(t, 2, rows[0].Hops)
	assert.Equal(t, uint64(10080), rows[0].Tick)
}
