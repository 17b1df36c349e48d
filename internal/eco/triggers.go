package eco

import (
	"math"

	"github.com/talgya/tradewinds/internal/events"
	"github.com/talgya/tradewinds/internal/world"
)

// CheckEvents scans every ecosystem for runaway states and triggers the
// matching tile events: overgrowth blooms, predator surges when the
// hunter-prey ratio tips, and a collapse when herbivores vanish under an
// overgrown canopy. Returns what fired, for journaling.
func CheckEvents(ix *world.Index) []events.Fired {
	var fired []events.Fired
	record := func(t *world.Tile, name string) {
		if events.Trigger(t, name) {
			fired = append(fired, events.Fired{X: t.X, Y: t.Y, Name: name})
		}
	}

	for _, t := range ix.WithSystem(world.SystemEco) {
		e := t.Eco()
		if e.Producers > 750 && !t.HasTag("blooming") {
			record(t, "forest_bloom")
		}
		if e.Carnivores/math.Max(e.Herbivores, 1) > 1.5 {
			record(t, "predator_surge")
		}
		if e.Herbivores < 5 && e.Producers > 700 {
			record(t, "ecological_collapse")
		}
	}
	return fired
}
