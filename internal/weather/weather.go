// Package weather rolls local weather across the map with slow-moving
// noise and keeps tile humidity breathing around its baseline.
package weather

import (
	"math"

	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/talgya/tradewinds/internal/world"
)

// Model drives weather from a 3D noise field; the third axis is time, so
// fronts drift across the map instead of flickering in place.
type Model struct {
	noise opensimplex.Noise
	scale float64
	speed float64
}

// NewModel returns a weather model seeded independently of terrain noise.
func NewModel(seed int64) *Model {
	return &Model{
		noise: opensimplex.NewNormalized(seed),
		scale: 12.0,
		speed: 0.03,
	}
}

func climateBands(c world.Climate) (base, variance float64) {
	switch c {
	case world.ClimateTropical:
		return 0.6, 0.4
	case world.ClimatePolar:
		return 0.4, 0.2
	default:
		return 0.5, 0.3
	}
}

func classify(intensity float64, terrain world.Terrain) world.WeatherState {
	switch {
	case intensity > 0.85:
		return world.WeatherStorm
	case intensity > 0.6:
		return world.WeatherRain
	case intensity < 0.25:
		switch terrain {
		case world.TerrainPlains, world.TerrainForest, world.TerrainMountain, world.TerrainWetlands:
			return world.WeatherDrought
		}
	}
	return world.WeatherClear
}

// Step advances weather by one hour on every tile, then lets humidity
// chase the new conditions.
func (m *Model) Step(ix *world.Index, hour int) {
	day := hour / 24
	phase := float64(day%365) / 365.0
	tAxis := float64(hour) * m.speed

	ix.Grid().ForEach(func(t *world.Tile) {
		base, variance := climateBands(t.Climate)

		w := t.Weather()
		if w == nil {
			w = &world.Weather{State: world.WeatherClear, Intensity: base}
			t.Attach(w)
		}

		raw := m.noise.Eval3(float64(t.X)/m.scale, float64(t.Y)/m.scale, tAxis)
		next := clamp01(base + (raw-0.5)*2*variance)
		intensity := 0.8*w.Intensity + 0.2*next
		state := classify(intensity, t.Terrain)

		if state != w.State {
			t.RemoveTag(w.State.String())
			t.AddTag(state.String())
		} else if !t.HasTag(state.String()) {
			t.AddTag(state.String())
		}
		w.Intensity = intensity
		w.State = state

		if h := t.Humidity(); h != nil {
			switch state {
			case world.WeatherRain:
				h.Current += 0.03
			case world.WeatherStorm:
				h.Current += 0.07
			case world.WeatherDrought:
				h.Current -= 0.06
			}
			h.Current += math.Sin(2*math.Pi*phase) * 0.01
			if t.HasTag("ocean") || t.Terrain == world.TerrainRiverside || t.Terrain == world.TerrainWetlands {
				h.Current += 0.02
			}
			h.Current += 0.05 * (h.Base - h.Current)
			h.Current = clamp01(h.Current)
		}
	})
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
