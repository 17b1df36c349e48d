// Package eco runs the three-level food web that wilderness tiles carry
// and derives the hazard score trade routes care about.
package eco

import (
	"math"
	"math/rand"

	"github.com/talgya/tradewinds/internal/world"
)

// carryingCapacity caps producer biomass on a single tile.
const carryingCapacity = 800.0

// biomeBaselines holds mean seed populations per biome as
// {producers, herbivores, carnivores}. Biomes absent here stay barren.
var biomeBaselines = map[world.Biome][3]float64{
	world.BiomeForest:     {660, 12.5, 5.5},
	world.BiomeRainforest: {660, 12.5, 5.5},
	world.BiomeSavanna:    {450, 10, 0.8},
	world.BiomeTundra:     {150, 6, 1},
	world.BiomePermafrost: {300, 5, 4},
	world.BiomeDesert:     {210, 0, 8},
	world.BiomeScrubland:  {210, 0, 8},
	world.BiomeWetland:    {360, 17, 3},
}

// Seed populates wilderness tiles whose biome supports life. Returns the
// number of tiles seeded.
func Seed(ix *world.Index, rng *rand.Rand) int {
	count := 0
	ix.Grid().ForEach(func(t *world.Tile) {
		if t.Terrain == world.TerrainDeepWater || t.Terrain == world.TerrainSettlement {
			return
		}
		base, ok := biomeBaselines[t.Biome]
		if !ok {
			return
		}
		jitter := func() float64 { return 0.8 + rng.Float64()*0.4 }
		t.Attach(&world.Eco{
			Producers:  base[0] * jitter(),
			Herbivores: base[1] * jitter(),
			Carnivores: base[2] * jitter(),
		})
		t.Attach(&world.EcoRisk{})
		count++
	})
	return count
}

func seasonalFactor(c world.Climate, day int) float64 {
	phase := float64(day%365) / 365.0
	switch c {
	case world.ClimateTropical:
		return 1 + 0.25*math.Sin(2*math.Pi*phase)
	case world.ClimatePolar:
		return 1 + 0.25*math.Sin(math.Pi*phase)
	default:
		return 1 + 0.25*math.Sin(4*math.Pi*phase)
	}
}

// SimulateTick advances every ecosystem by one step of the food web and
// refreshes the tile's hazard score.
func SimulateTick(ix *world.Index, day int, rng *rand.Rand) {
	for _, t := range ix.WithSystem(world.SystemEco) {
		e := t.Eco()

		growth, mortality := 1.0, 1.0
		switch t.Climate {
		case world.ClimateTropical:
			growth, mortality = 1.2, 0.9
		case world.ClimatePolar:
			growth, mortality = 0.6, 1.3
		}

		storm := false
		if w := t.Weather(); w != nil {
			switch w.State {
			case world.WeatherRain:
				growth *= 1.15
				mortality *= 0.9
			case world.WeatherStorm:
				growth *= 0.85
				mortality *= 1.2
				storm = true
			case world.WeatherDrought:
				growth *= 0.6
				mortality *= 1.3
			}
		}

		hum, fert := 0.5, 0.5
		if h := t.Humidity(); h != nil {
			hum = h.Current
		}
		if s := t.Soil(); s != nil {
			fert = s.Fertility
		}
		growth *= (0.7 + 0.3*hum) * (0.6 + 0.4*fert)

		season := seasonalFactor(t.Climate, day)
		prod, herb, carn := e.Producers, e.Herbivores, e.Carnivores

		dProd := 0.05*growth*season*prod*(1-prod/carryingCapacity) - 0.01*herb*mortality
		dHerb := 0.02*prod*growth*season - 0.03*carn*mortality - 0.008*herb*mortality
		dCarn := 0.015*herb*growth - 0.02*carn*mortality

		noise := func(pop float64) float64 { return (rng.Float64()*0.03 - 0.015) * pop }
		e.Producers = math.Max(0, prod+dProd+noise(prod))
		e.Herbivores = math.Max(0, herb+dHerb+noise(herb))
		e.Carnivores = math.Max(0, carn+dCarn+noise(carn))

		risk := 0.5*e.Carnivores/math.Max(e.Herbivores, 1) + 0.3*(1-e.Producers/carryingCapacity)
		if storm {
			risk += 0.2
		}
		if er := t.EcoRisk(); er != nil {
			er.Value = risk
		} else {
			t.Attach(&world.EcoRisk{Value: risk})
		}
	}
}
