package trade

import (
	"math"

	"github.com/talgya/tradewinds/internal/world"
)

// EvaluateRouteRisk scores the hazard of walking a path against the
// current state of its tiles: biome danger, weather, humidity extremes,
// soil, predator pressure, the ecosystem risk score and active events.
// The total never goes below zero.
func EvaluateRouteRisk(path []*world.Tile) float64 {
	risk := 0.0
	for _, t := range path {
		switch t.Biome {
		case world.BiomeForest, world.BiomeRainforest:
			risk += 0.5
		case world.BiomeDesert, world.BiomeSemiArid, world.BiomeScrubland, world.BiomeColdSteppe:
			risk += 0.4
		case world.BiomeWetland, world.BiomeMangrove:
			risk += 0.6
		case world.BiomeSavanna:
			risk += 0.2
		case world.BiomeAlpine, world.BiomeMontaneForest:
			risk += 0.7
		}

		if w := t.Weather(); w != nil {
			switch w.State {
			case world.WeatherStorm:
				risk += 0.7
			case world.WeatherRain:
				risk += 0.2
			case world.WeatherDrought:
				risk += 0.3
			}
		}

		humidity := 0.5
		if h := t.Humidity(); h != nil {
			humidity = h.Current
		}
		if humidity < 0.2 {
			risk += 0.3
		}
		if humidity > 0.85 {
			risk += 0.4
		}

		fertility := 0.5
		if s := t.Soil(); s != nil {
			fertility = s.Fertility
		}
		if fertility < 0.25 {
			risk += 0.3
		} else if fertility > 0.7 {
			risk -= 0.2
		}

		if eco := t.Eco(); eco != nil {
			ratio := eco.Carnivores / math.Max(eco.Herbivores, 1)
			if ratio > 1.0 {
				risk += ratio * 0.6
			}
		}

		if er := t.EcoRisk(); er != nil {
			risk += er.Value
		}

		if t.HasTag("forest_bloom") {
			risk -= 0.4
		}
		if t.HasTag("predator_surge") {
			risk += 1.2
		}
		if t.HasTag("ecological_collapse") {
			risk += 1.5
		}
		if t.HasTag("bandit_settlement") {
			risk += 1.0
		}
	}
	return math.Max(risk, 0)
}

// RefreshRisks re-scores every published link against the live state of
// its path tiles and swaps the updated graph in. Run it before
// ApplyEffects so the day's weather and events price into the ledger.
func (s *Store) RefreshRisks() {
	old := s.Current()
	if old == nil {
		return
	}
	next := make(Graph, len(*old))
	for sid, links := range *old {
		updated := make([]Link, len(links))
		for i, l := range links {
			l.Risk = EvaluateRouteRisk(l.Path)
			updated[i] = l
		}
		next[sid] = updated
	}
	s.Replace(&next)
}
