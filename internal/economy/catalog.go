// Package economy seeds settlements onto the map and runs their daily
// production, consumption and stock dynamics.
package economy

import "github.com/talgya/tradewinds/internal/world"

// catalog maps a tile's founding terrain to the commodities it yields.
// Values are worth-per-unit-weight, so light valuable goods rank high.
var catalog = map[world.Terrain]map[world.Commodity]float64{
	world.TerrainPlains: {
		world.CommodityGrain:  1.0,
		world.CommodityHerbs:  1.0,
		world.CommodityMeat:   1.25,
		world.CommodityTimber: 0.67,
	},
	world.TerrainForest: {
		world.CommodityHerbs:  1.0,
		world.CommodityMeat:   1.25,
		world.CommodityTimber: 0.67,
		world.CommodityFurs:   0.75,
	},
	world.TerrainMountain: {
		world.CommodityHerbs:  1.0,
		world.CommodityMeat:   1.25,
		world.CommodityTimber: 0.67,
		world.CommodityStone:  0.4,
		world.CommodityIron:   0.67,
		world.CommodityFurs:   0.75,
	},
	world.TerrainRiverside: {
		world.CommodityFish:  1.5,
		world.CommodityHerbs: 1.0,
		world.CommodityMeat:  1.25,
		world.CommodityClay:  0.67,
		world.CommodityReeds: 0.67,
	},
	world.TerrainWetlands: {
		world.CommodityHerbs: 1.0,
		world.CommodityMeat:  1.25,
		world.CommodityClay:  0.67,
		world.CommodityReeds: 0.67,
	},
	world.TerrainCoastal: {
		world.CommodityFish: 1.5,
		world.CommoditySalt: 1.5,
	},
	world.TerrainDeepWater: {
		world.CommodityFish: 1.5,
	},
	world.TerrainDryland: {
		world.CommoditySpices: 10.0,
		world.CommodityHerbs:  1.0,
	},
	world.TerrainOasis: {
		world.CommoditySpices: 10.0,
		world.CommodityHerbs:  1.0,
	},
}

// YieldsFor returns the commodity yields of the terrain a settlement was
// founded on. The returned map is shared; callers must not mutate it.
func YieldsFor(t *world.Tile) map[world.Commodity]float64 {
	terrain := t.Terrain
	if terrain == world.TerrainSettlement {
		terrain = t.Origin
	}
	return catalog[terrain]
}
