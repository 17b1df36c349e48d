package world

// Terrain is the physical surface class of a tile.
type Terrain uint8

const (
	TerrainDeepWater Terrain = iota
	TerrainPlains
	TerrainForest
	TerrainRiverside
	TerrainWetlands
	TerrainMountain
	TerrainCoastal
	TerrainDryland
	TerrainOasis
	TerrainSettlement
)

var terrainNames = [...]string{
	TerrainDeepWater:  "deep_water",
	TerrainPlains:     "plains",
	TerrainForest:     "forest",
	TerrainRiverside:  "riverside",
	TerrainWetlands:   "wetlands",
	TerrainMountain:   "mountain",
	TerrainCoastal:    "coastal",
	TerrainDryland:    "dryland",
	TerrainOasis:      "oasis",
	TerrainSettlement: "settlement",
}

func (t Terrain) String() string {
	if int(t) < len(terrainNames) {
		return terrainNames[t]
	}
	return "unknown"
}

// Climate is the latitude band a tile falls in.
type Climate uint8

const (
	ClimateTemperate Climate = iota
	ClimateTropical
	ClimatePolar
)

func (c Climate) String() string {
	switch c {
	case ClimateTropical:
		return "tropical"
	case ClimatePolar:
		return "polar"
	default:
		return "temperate"
	}
}

// SeasonsPerYear is how many seasons a climate band cycles through.
func (c Climate) SeasonsPerYear() int {
	switch c {
	case ClimateTropical:
		return 2
	case ClimatePolar:
		return 1
	default:
		return 4
	}
}

// Season names the phase of the year for a climate band given a day count.
func (c Climate) Season(day int) string {
	spy := c.SeasonsPerYear()
	seasonLen := 365 / spy
	idx := (day % 365) / seasonLen
	switch c {
	case ClimateTropical:
		names := [...]string{"wet", "dry"}
		return names[idx%2]
	case ClimatePolar:
		return "polar"
	default:
		names := [...]string{"spring", "summer", "autumn", "winter"}
		return names[idx%4]
	}
}

// Biome is the ecological classification derived from climate, temperature
// and rainfall.
type Biome uint8

const (
	BiomeNone Biome = iota
	BiomeGlacier
	BiomePermafrost
	BiomeTundra
	BiomeAlpine
	BiomeColdSteppe
	BiomeBorealForest
	BiomeMontaneForest
	BiomeSteppe
	BiomeGrassland
	BiomeForest
	BiomeWetland
	BiomeRainforest
	BiomeScrubland
	BiomeSemiArid
	BiomeDesert
	BiomeSavanna
	BiomeMangrove
)

var biomeNames = [...]string{
	BiomeNone:          "none",
	BiomeGlacier:       "glacier",
	BiomePermafrost:    "permafrost",
	BiomeTundra:        "tundra",
	BiomeAlpine:        "alpine",
	BiomeColdSteppe:    "cold_steppe",
	BiomeBorealForest:  "boreal_forest",
	BiomeMontaneForest: "montane_forest",
	BiomeSteppe:        "steppe",
	BiomeGrassland:     "grassland",
	BiomeForest:        "forest",
	BiomeWetland:       "wetland",
	BiomeRainforest:    "rainforest",
	BiomeScrubland:     "scrubland",
	BiomeSemiArid:      "semi_arid",
	BiomeDesert:        "desert",
	BiomeSavanna:       "savanna",
	BiomeMangrove:      "mangrove",
}

func (b Biome) String() string {
	if int(b) < len(biomeNames) {
		return biomeNames[b]
	}
	return "unknown"
}

// WeatherState is the current local weather on a tile.
type WeatherState uint8

const (
	WeatherClear WeatherState = iota
	WeatherRain
	WeatherStorm
	WeatherDrought
)

func (w WeatherState) String() string {
	switch w {
	case WeatherRain:
		return "rain"
	case WeatherStorm:
		return "storm"
	case WeatherDrought:
		return "drought"
	default:
		return "clear_weather"
	}
}
