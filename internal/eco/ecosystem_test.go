package eco

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/tradewinds/internal/world"
)

func TestSeedRespectsBiomeAndTerrain(t *testing.T) {
	g := world.NewGrid(4, 1)

	forest := g.At(0, 0)
	forest.SetTerrain(world.TerrainForest)
	forest.Biome = world.BiomeForest

	water := g.At(1, 0)
	water.Biome = world.BiomeForest // stays deep water terrain

	town := g.At(2, 0)
	town.SetTerrain(world.TerrainSettlement)
	town.Biome = world.BiomeForest

	barren := g.At(3, 0)
	barren.SetTerrain(world.TerrainPlains)
	barren.Biome = world.BiomeGrassland

	ix := world.NewIndex(g)
	n := Seed(ix, rand.New(rand.NewSource(5)))

	assert.Equal(t, 1, n)
	require.NotNil(t, forest.Eco())
	require.NotNil(t, forest.EcoRisk())
	assert.Nil(t, water.Eco())
	assert.Nil(t, town.Eco())
	assert.Nil(t, barren.Eco())

	e := forest.Eco()
	assert.InDelta(t, 660, e.Producers, 660*0.2+1e-9)
	assert.InDelta(t, 12.5, e.Herbivores, 12.5*0.2+1e-9)
	assert.InDelta(t, 5.5, e.Carnivores, 5.5*0.2+1e-9)
}

func ecoTile(prod, herb, carn float64) (*world.Index, *world.Tile) {
	g := world.NewGrid(3, 3)
	t := g.At(1, 1)
	t.SetTerrain(world.TerrainForest)
	t.Biome = world.BiomeForest
	ix := world.NewIndex(g)
	t.Attach(&world.Eco{Producers: prod, Herbivores: herb, Carnivores: carn})
	t.Attach(&world.EcoRisk{})
	return ix, t
}

func TestSimulateTickStaysNonNegative(t *testing.T) {
	ix, tile := ecoTile(660, 12, 5)
	rng := rand.New(rand.NewSource(11))
	for day := 0; day < 400; day += 2 {
		SimulateTick(ix, day, rng)
		e := tile.Eco()
		assert.GreaterOrEqual(t, e.Producers, 0.0)
		assert.GreaterOrEqual(t, e.Herbivores, 0.0)
		assert.GreaterOrEqual(t, e.Carnivores, 0.0)
	}
}

func TestSimulateTickRiskComponents(t *testing.T) {
	// Predators vastly outnumber prey on a barren tile.
	ix, tile := ecoTile(0, 1, 10)
	SimulateTick(ix, 0, rand.New(rand.NewSource(1)))

	risk := tile.EcoRisk().Value
	// 0.5*carn/herb dominates; producers near zero add the full 0.3.
	assert.Greater(t, risk, 1.0)

	// A storm adds a flat bump on an otherwise identical tile.
	ixStorm, tileStorm := ecoTile(0, 1, 10)
	tileStorm.Attach(&world.Weather{State: world.WeatherStorm, Intensity: 0.9})
	SimulateTick(ixStorm, 0, rand.New(rand.NewSource(1)))
	// Same rng stream, but weather skews the dynamics, so compare loosely.
	assert.Greater(t, tileStorm.EcoRisk().Value, risk-0.5)
}

func TestCheckEventsTriggers(t *testing.T) {
	ix, tile := ecoTile(800, 50, 5)
	fired := CheckEvents(ix)
	require.Len(t, fired, 1)
	assert.Equal(t, "forest_bloom", fired[0].Name)
	assert.True(t, tile.HasTag("blooming"))

	// The blooming tag gates retriggering.
	assert.Empty(t, CheckEvents(ix))
}

func TestCheckEventsPredatorAndCollapse(t *testing.T) {
	ix, tile := ecoTile(720, 2, 9)
	fired := CheckEvents(ix)

	names := make([]string, 0, len(fired))
	for _, f := range fired {
		names = append(names, f.Name)
	}
	assert.Contains(t, names, "predator_surge")
	assert.Contains(t, names, "ecological_collapse")
	assert.True(t, tile.HasTag("predator_surge"))
}
