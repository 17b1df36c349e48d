package trade

import "github.com/talgya/tradewinds/internal/world"

// Profile is the trade-planning snapshot of one settlement: what it can
// sell, what it is short of, and the ledger behind both.
type Profile struct {
	Tile        *world.Tile
	Exports     map[world.Commodity]float64
	Imports     map[world.Commodity]float64
	Population  int
	Wealth      float64
	Supplies    float64
	Production  float64
	Consumption float64
	Prosperity  float64
}

// baseDemand is the per-head demand that defines import shortfalls.
var baseDemand = []struct {
	commodity world.Commodity
	perHead   float64
}{
	{world.CommodityGrain, 0.02},
	{world.CommodityMeat, 0.015},
	{world.CommodityFish, 0.01},
	{world.CommodityTimber, 0.005},
	{world.CommodityStone, 0.003},
	{world.CommodityIron, 0.002},
}

// CollectProfiles snapshots every settlement in the index. A commodity is
// exportable above one unit in stock; it is imported when the settlement
// holds less than half of what its population demands.
func CollectProfiles(ix *world.Index) map[world.SettlementID]*Profile {
	profiles := make(map[world.SettlementID]*Profile)
	for _, t := range ix.WithSystem(world.SystemEconomy) {
		econ := t.Economy()

		exports := make(map[world.Commodity]float64)
		for c, qty := range econ.Stock {
			if qty > 1.0 {
				exports[c] = qty
			}
		}

		imports := make(map[world.Commodity]float64)
		for _, d := range baseDemand {
			demand := float64(econ.Population) * d.perHead
			have := econ.Stock[d.commodity]
			if have < demand*0.5 {
				imports[d.commodity] = demand - have
			}
		}

		profiles[econ.ID] = &Profile{
			Tile:        t,
			Exports:     exports,
			Imports:     imports,
			Population:  econ.Population,
			Wealth:      econ.Wealth,
			Supplies:    econ.Supplies,
			Production:  econ.Production,
			Consumption: econ.Consumption,
			Prosperity:  econ.Prosperity,
		}
	}
	return profiles
}
