package world

import (
	"math"
	"math/rand"

	opensimplex "github.com/ojrac/opensimplex-go"
)

// GenConfig controls world generation.
type GenConfig struct {
	Width             int
	Height            int
	Seed              int64
	Continents        int
	NoiseScale        float64
	SettlementChance  float64
	SettlementMinDist int
}

// DefaultGenConfig returns the generation parameters used by the stock
// simulator.
func DefaultGenConfig() GenConfig {
	return GenConfig{
		Width:             100,
		Height:            100,
		Seed:              42,
		Continents:        10,
		NoiseScale:        15.0,
		SettlementChance:  0.3,
		SettlementMinDist: 10,
	}
}

const (
	drylandSpots     = 3
	oasisChance      = 0.05
	oasisMaxCluster  = 2
	settlementDenMul = 2.0
)

var climateHumidityBase = map[Climate]float64{
	ClimateTropical:  0.8,
	ClimateTemperate: 0.5,
	ClimatePolar:     0.3,
}

var terrainHumidityMod = map[Terrain]float64{
	TerrainDryland:  0.6,
	TerrainOasis:    1.1,
	TerrainMountain: 0.8,
	TerrainWetlands: 1.2,
	TerrainCoastal:  1.1,
}

// Generate builds a complete world from cfg: terrain shaped by layered
// noise and continent masks, climate bands, humidity, biomes, soil and
// settlement sites. The same config always yields the same world.
func Generate(cfg GenConfig) *Grid {
	rng := rand.New(rand.NewSource(cfg.Seed))
	elevN := opensimplex.NewNormalized(cfg.Seed)
	climN := opensimplex.NewNormalized(cfg.Seed + 1)
	tempN := opensimplex.NewNormalized(cfg.Seed + 2)
	rainN := opensimplex.NewNormalized(cfg.Seed + 3)
	densN := opensimplex.NewNormalized(cfg.Seed + 4)

	g := NewGrid(cfg.Width, cfg.Height)
	shapeTerrain(g, cfg, rng, elevN)
	classifySpecials(g)
	assignClimate(g, cfg, climN)
	addDrylands(g, cfg, rng)
	addOases(g, cfg, rng)
	attachHumidity(g)
	deriveBiomesAndSoil(g, cfg, rng, tempN, rainN)
	placeSettlements(g, cfg, rng, densN)
	return g
}

func octaveNoise(n opensimplex.Noise, x, y float64, octaves int) float64 {
	total, freq, amp, norm := 0.0, 1.0, 1.0, 0.0
	for i := 0; i < octaves; i++ {
		total += n.Eval2(x*freq, y*freq) * amp
		norm += amp
		freq *= 2
		amp *= 0.5
	}
	return total / norm
}

func shapeTerrain(g *Grid, cfg GenConfig, rng *rand.Rand, elevN opensimplex.Noise) {
	type continent struct {
		x, y   float64
		radius float64
	}
	centers := make([]continent, cfg.Continents)
	for i := range centers {
		centers[i] = continent{
			x:      float64(rng.Intn(cfg.Width)),
			y:      float64(rng.Intn(cfg.Height)),
			radius: (0.3 + rng.Float64()*0.3) * float64(cfg.Width),
		}
	}

	g.ForEach(func(t *Tile) {
		n := octaveNoise(elevN, float64(t.X)/cfg.NoiseScale, float64(t.Y)/cfg.NoiseScale, 3)*2 - 1
		influence := 0.0
		for _, c := range centers {
			d := math.Hypot(float64(t.X)-c.x, float64(t.Y)-c.y)
			if v := 1 - d/c.radius; v > influence {
				influence = v
			}
		}
		t.Elevation = n*0.5 + influence - 0.3

		switch {
		case t.Elevation > 0.7:
			t.Terrain, t.MovementCost = TerrainMountain, 4
		case t.Elevation > 0.6:
			t.Terrain, t.MovementCost = TerrainRiverside, 3
		case t.Elevation > 0.4:
			t.Terrain, t.MovementCost = TerrainForest, 2
		case t.Elevation > 0.1:
			t.Terrain, t.MovementCost = TerrainPlains, 1
		default:
			t.Terrain, t.MovementCost = TerrainDeepWater, 4
		}
		t.Origin = t.Terrain
	})
}

// classifySpecials promotes shoreline into coastal and river margins into
// wetlands, and tags open water.
func classifySpecials(g *Grid) {
	var buf []*Tile
	g.ForEach(func(t *Tile) {
		buf = g.Neighbors8(t.X, t.Y, buf[:0])
		switch t.Terrain {
		case TerrainPlains, TerrainForest, TerrainMountain:
			for _, n := range buf {
				if n.Terrain == TerrainDeepWater {
					t.Terrain, t.Origin, t.MovementCost = TerrainCoastal, TerrainCoastal, 1
					break
				}
			}
		case TerrainRiverside:
			for _, n := range buf {
				if n.Terrain == TerrainForest || n.Terrain == TerrainPlains {
					t.Terrain, t.Origin, t.MovementCost = TerrainWetlands, TerrainWetlands, 2
					break
				}
			}
		case TerrainDeepWater:
			t.AddTag("ocean")
		}
	})
}

func assignClimate(g *Grid, cfg GenConfig, climN opensimplex.Noise) {
	g.ForEach(func(t *Tile) {
		lat := float64(t.Y) / float64(cfg.Height-1)
		latMod := lat + (climN.Eval2(float64(t.X)/cfg.NoiseScale, float64(t.Y)/cfg.NoiseScale)*2-1)*0.05
		switch {
		case latMod < 0.2 || latMod > 0.8:
			t.Climate = ClimatePolar
		case latMod < 0.4 || latMod > 0.6:
			t.Climate = ClimateTemperate
		default:
			t.Climate = ClimateTropical
		}
	})
}

// addDrylands carves a few arid clusters into tropical lowland.
func addDrylands(g *Grid, cfg GenConfig, rng *rand.Rand) {
	for i := 0; i < drylandSpots; i++ {
		cx := rng.Intn(cfg.Width)
		cy := rng.Intn(cfg.Height)
		radius := 2 + rng.Intn(3)
		for y := cy - radius; y <= cy+radius; y++ {
			for x := cx - radius; x <= cx+radius; x++ {
				t := g.At(x, y)
				if t == nil {
					continue
				}
				dist := math.Hypot(float64(x-cx), float64(y-cy))
				if dist >= float64(radius)+(rng.Float64()*1.6-0.8) {
					continue
				}
				if (t.Terrain == TerrainPlains || t.Terrain == TerrainForest) && t.Climate == ClimateTropical {
					t.Terrain, t.Origin, t.MovementCost = TerrainDryland, TerrainDryland, 1
				}
			}
		}
	}
}

// addOases seeds small moist pockets deep inside dryland clusters.
func addOases(g *Grid, cfg GenConfig, rng *rand.Rand) {
	coords := make([][2]int, 0, cfg.Width*cfg.Height)
	for y := 0; y < cfg.Height; y++ {
		for x := 0; x < cfg.Width; x++ {
			coords = append(coords, [2]int{x, y})
		}
	}
	rng.Shuffle(len(coords), func(i, j int) { coords[i], coords[j] = coords[j], coords[i] })

	var buf []*Tile
	for _, c := range coords {
		x, y := c[0], c[1]
		t := g.At(x, y)
		if t.Terrain != TerrainDryland {
			continue
		}
		buf = g.Neighbors8(x, y, buf[:0])
		if len(buf) < 3 {
			continue
		}
		allDry := true
		for _, n := range buf {
			if n.Terrain != TerrainDryland {
				allDry = false
				break
			}
		}
		if !allDry {
			continue
		}
		if rng.Float64() >= oasisChance {
			continue
		}
		cluster := 1 + rng.Intn(oasisMaxCluster)
		for dy := -cluster; dy <= cluster; dy++ {
			for dx := -cluster; dx <= cluster; dx++ {
				n := g.At(x+dx, y+dy)
				if n == nil {
					continue
				}
				if math.Hypot(float64(dx), float64(dy)) > float64(cluster) {
					continue
				}
				if rng.Float64() > 0.2 && n.Terrain == TerrainDryland {
					n.Terrain, n.Origin, n.MovementCost = TerrainOasis, TerrainOasis, 1
				}
			}
		}
	}
}

func attachHumidity(g *Grid) {
	g.ForEach(func(t *Tile) {
		base := climateHumidityBase[t.Climate]
		if mod, ok := terrainHumidityMod[t.Terrain]; ok {
			base *= mod
		}
		base = clamp01(base)
		t.Attach(&Humidity{Base: base, Current: base})
	})
}

// Biome lookup by temperature band (rows, coldest first) and rainfall
// band (cols, driest first).
var biomeTable = [6][6]Biome{
	{BiomeGlacier, BiomePermafrost, BiomeTundra, BiomeTundra, BiomeAlpine, BiomeAlpine},
	{BiomeColdSteppe, BiomeTundra, BiomeTundra, BiomeBorealForest, BiomeMontaneForest, BiomeMontaneForest},
	{BiomeSteppe, BiomeGrassland, BiomeForest, BiomeWetland, BiomeMontaneForest, BiomeRainforest},
	{BiomeScrubland, BiomeGrassland, BiomeForest, BiomeForest, BiomeRainforest, BiomeRainforest},
	{BiomeDesert, BiomeSemiArid, BiomeSavanna, BiomeSavanna, BiomeRainforest, BiomeMangrove},
	{BiomeDesert, BiomeSemiArid, BiomeSavanna, BiomeSavanna, BiomeRainforest, BiomeMangrove},
}

func tempBand(t float64) int {
	switch {
	case t < -10:
		return 0
	case t < 0:
		return 1
	case t < 10:
		return 2
	case t < 20:
		return 3
	case t < 30:
		return 4
	default:
		return 5
	}
}

func rainBand(r float64) int {
	switch {
	case r < 0.6:
		return 0
	case r < 1.5:
		return 1
	case r < 3:
		return 2
	case r < 6:
		return 3
	case r < 10:
		return 4
	default:
		return 5
	}
}

var biomeFertility = map[Biome]float64{
	BiomeRainforest: 0.8,
	BiomeWetland:    0.8,
	BiomeSavanna:    0.8,
	BiomeGrassland:  0.7,
	BiomeForest:     0.7,
	BiomeSemiArid:   0.4,
	BiomeScrubland:  0.4,
	BiomeSteppe:     0.4,
	BiomeDesert:     0.1,
	BiomeGlacier:    0.1,
	BiomePermafrost: 0.1,
}

func deriveBiomesAndSoil(g *Grid, cfg GenConfig, rng *rand.Rand, tempN, rainN opensimplex.Noise) {
	g.ForEach(func(t *Tile) {
		lat := float64(t.Y) / float64(cfg.Height-1)
		latFrac := math.Abs(lat-0.5) * 2
		temp := 28*(1-latFrac) - 12*latFrac
		temp += (tempN.Eval2(float64(t.X)/cfg.NoiseScale, float64(t.Y)/cfg.NoiseScale)*2 - 1) * 3
		temp -= 12 * clamp01(t.Elevation)

		baseRain := 3.0
		switch t.Climate {
		case ClimateTropical:
			baseRain = 6
		case ClimatePolar:
			baseRain = 1
		}
		hum := t.Humidity().Current
		rainNoise := rainN.Eval2(float64(t.X)/cfg.NoiseScale, float64(t.Y)/cfg.NoiseScale)
		rain := math.Max(0, baseRain*(0.4+1.6*hum)+rainNoise*1.5)

		biome := biomeTable[tempBand(temp)][rainBand(rain)]
		switch {
		case t.Elevation > 0.8:
			switch {
			case temp < 0:
				biome = BiomeGlacier
			case temp < 10:
				biome = BiomeAlpine
			default:
				biome = BiomeMontaneForest
			}
		case rain < 0.5:
			if temp > 10 {
				biome = BiomeDesert
			} else {
				biome = BiomeColdSteppe
			}
		case rain < 1.5 && (biome == BiomeGrassland || biome == BiomeSavanna):
			if temp > 15 {
				biome = BiomeSemiArid
			} else {
				biome = BiomeSteppe
			}
		case temp > 20 && rain > 5:
			biome = BiomeRainforest
		}
		if t.Terrain == TerrainCoastal && rain > 4 {
			biome = BiomeMangrove
		}
		if t.Terrain == TerrainWetlands {
			biome = BiomeWetland
		}
		t.Biome = biome

		base, ok := biomeFertility[biome]
		if !ok {
			base = 0.5
		}
		rainFactor := math.Min(1, rain/5)
		elevFactor := 1 - math.Max(0, t.Elevation-0.5)
		fert := base*0.5 + 0.5*rainFactor*elevFactor + (rng.Float64()*0.1 - 0.05)
		t.Attach(&Soil{Fertility: clamp01(fert)})
	})
}

func placeSettlements(g *Grid, cfg GenConfig, rng *rand.Rand, densN opensimplex.Noise) {
	coords := make([][2]int, 0, cfg.Width*cfg.Height)
	for y := 0; y < cfg.Height; y++ {
		for x := 0; x < cfg.Width; x++ {
			coords = append(coords, [2]int{x, y})
		}
	}
	rng.Shuffle(len(coords), func(i, j int) { coords[i], coords[j] = coords[j], coords[i] })

	var placed [][2]int
	for _, c := range coords {
		x, y := c[0], c[1]
		t := g.At(x, y)
		switch t.Terrain {
		case TerrainOasis, TerrainDeepWater, TerrainMountain:
			continue
		}
		density := densN.Eval2(float64(x)/cfg.NoiseScale, float64(y)/cfg.NoiseScale)
		if rng.Float64() > cfg.SettlementChance*density*settlementDenMul {
			continue
		}
		tooClose := false
		for _, p := range placed {
			if absInt(x-p[0])+absInt(y-p[1]) < cfg.SettlementMinDist {
				tooClose = true
				break
			}
		}
		if tooClose {
			continue
		}
		t.SetTerrain(TerrainSettlement)
		t.MovementCost = 1
		t.AddTag("settlement")
		placed = append(placed, c)
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
