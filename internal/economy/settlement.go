package economy

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/talgya/tradewinds/internal/world"
)

// Settlement archetype names.
const (
	TypeAgrarian     = "agrarian"
	TypeLogging      = "logging"
	TypeMining       = "mining"
	TypeLuxuryGoods  = "luxury_goods"
	TypeTradeFocused = "trade_focused"
	TypeRiverTrade   = "river_trade"
	TypeMaritime     = "maritime_trade"
	TypeMilitaristic = "militaristic"
	TypeDefensive    = "defensive"
	TypeIndustrial   = "industrial"
	TypeMonopolistic = "monopolistic"
)

// typeCategories lists the commodity categories an archetype boosts.
var typeCategories = map[string][]world.Category{
	TypeAgrarian:     {world.CategoryFood},
	TypeLogging:      {world.CategoryMaterial},
	TypeMining:       {world.CategoryMaterial, world.CategoryTrade},
	TypeLuxuryGoods:  {world.CategoryLuxury, world.CategoryTrade},
	TypeRiverTrade:   {world.CategoryFood, world.CategoryTrade},
	TypeMaritime:     {world.CategoryFood, world.CategoryTrade},
	TypeMilitaristic: {world.CategoryMaterial},
	TypeIndustrial:   {world.CategoryMaterial},
}

// Seed founds an economy on every settlement tile. IDs are assigned
// sequentially in (y, x) scan order so identical worlds seed identically.
// Returns the number of settlements founded.
func Seed(ix *world.Index, rng *rand.Rand) int {
	var next world.SettlementID
	for _, t := range ix.WithTerrain(world.TerrainSettlement) {
		next++
		stock := make(map[world.Commodity]float64)
		yields := YieldsFor(t)
		for _, c := range world.Commodities() {
			if y, ok := yields[c]; ok {
				stock[c] = y * (0.5 + rng.Float64())
			}
		}

		econ := &world.Economy{
			ID:          next,
			Name:        fmt.Sprintf("Settlement_%d_%d", t.X, t.Y),
			Population:  80 + rng.Intn(221),
			Supplies:    80 + rng.Float64()*70,
			Wealth:      50 + rng.Float64()*70,
			PriceIndex:  1.0,
			Production:  6 + rng.Float64()*4,
			Consumption: 5 + rng.Float64()*3,
			Stock:       stock,
		}
		econ.Prosperity = econ.Supplies + econ.Wealth - 0.2*float64(econ.Population)
		econ.PurchasePower = 0.1 * econ.Prosperity
		econ.Types = assignTypes(t, stock)
		t.Attach(econ)

		t.Attach(&world.Personality{Traits: map[string]float64{
			world.TraitDominance:     0.3 + rng.Float64()*0.4,
			world.TraitAgreeableness: 0.3 + rng.Float64()*0.4,
			world.TraitAnxiety:       0.2 + rng.Float64()*0.6,
			world.TraitNovelty:       0.3 + rng.Float64()*0.4,
			world.TraitSelfWorth:     0.3 + rng.Float64()*0.4,
		}})
	}
	return int(next)
}

func assignTypes(t *world.Tile, stock map[world.Commodity]float64) []string {
	has := func(c world.Commodity) bool {
		_, ok := stock[c]
		return ok
	}
	hasFood := false
	for c := range stock {
		if world.CategoryOf(c) == world.CategoryFood {
			hasFood = true
			break
		}
	}

	var types []string
	if hasFood && t.Climate != world.ClimatePolar {
		types = append(types, TypeAgrarian)
	}
	if has(world.CommodityTimber) {
		types = append(types, TypeLogging)
	}
	if has(world.CommodityStone) || has(world.CommodityIron) {
		types = append(types, TypeMining)
	}
	if has(world.CommoditySpices) || has(world.CommodityFurs) {
		types = append(types, TypeLuxuryGoods)
	}
	if t.HasTag("trade_hub") || t.Climate == world.ClimateTemperate {
		types = append(types, TypeTradeFocused)
	}
	if t.Origin == world.TerrainRiverside {
		types = append(types, TypeRiverTrade)
	}
	if t.Origin == world.TerrainCoastal {
		types = append(types, TypeMaritime)
	}
	if has(world.CommodityIron) {
		types = append(types, TypeMilitaristic)
	}
	if t.HasTag("border_conflict") ||
		t.Biome == world.BiomeTundra || t.Biome == world.BiomeAlpine || t.Biome == world.BiomeMontaneForest {
		types = append(types, TypeDefensive)
	}
	if has(world.CommodityClay) {
		types = append(types, TypeIndustrial)
	}
	if len(stock) == 1 {
		types = append(types, TypeMonopolistic)
	}
	return types
}

// SimulateTick advances every settlement economy by one day: weather-gated
// production, stress-driven consumption, stock drift, archetype boosts and
// slow population pressure.
func SimulateTick(ix *world.Index) {
	for _, tile := range ix.WithSystem(world.SystemEconomy) {
		e := tile.Economy()

		weatherMod := 1.0
		if w := tile.Weather(); w != nil {
			switch w.State {
			case world.WeatherRain:
				weatherMod = 1.1
			case world.WeatherStorm:
				weatherMod = 0.9
			case world.WeatherDrought:
				weatherMod = 0.6
			}
		}

		pop := float64(e.Population)
		prod := pop * 0.08 * logistic(weatherMod, 1.0, 4.0)
		stress := math.Tanh(1.5 * (1 - e.Supplies/math.Max(pop, 1)))
		cons := pop * 0.07 * (1 + 0.1*stress)
		delta := prod - cons

		e.Supplies = math.Max(0, e.Supplies+sigmoidLite(delta, 5))
		if delta > 0 {
			e.Wealth += math.Pow(delta, 0.7)
		}

		supplyRatio := e.Supplies / math.Max(1, pop)
		pressure := 0.5*sigmoidLite(supplyRatio-1, 0.3) + 0.5*sigmoidLite(e.Wealth/100-0.5, 0.3)
		// Centered so balanced settlements hold steady instead of decaying
		// toward the population floor.
		growth := 1.0 + 0.1*(logistic(pressure, 0.5, 4.0)-0.5)
		e.Population = int(math.Max(10, pop*growth))

		drift := math.Tanh(delta * 0.001)
		for c, qty := range e.Stock {
			e.Stock[c] = math.Max(0, qty+drift)
		}
		e.Wealth += applyTypeBoosts(e)
		if e.Wealth < 0 {
			e.Wealth = 0
		}

		e.PurchasePower = 0.7*e.PurchasePower + 0.3*(math.Sqrt(e.Wealth)+math.Sqrt(float64(e.Population)))
		e.PriceIndex = 1.0 + sigmoidLite(cons-prod, 10)*0.5
		e.Production = prod
		e.Consumption = cons
		e.Prosperity = e.Supplies + e.Wealth - 0.2*float64(e.Population)
	}
}

// applyTypeBoosts compounds archetype bonuses into the stock map and
// returns the resulting wealth gain, diminished so hoards do not run away.
func applyTypeBoosts(e *world.Economy) float64 {
	if len(e.Stock) == 0 {
		return 0
	}
	for _, stype := range e.Types {
		switch stype {
		case TypeTradeFocused:
			for c := range e.Stock {
				e.Stock[c] *= 1.03
			}
		case TypeMonopolistic:
			for c := range e.Stock {
				e.Stock[c] *= 1.12
			}
		default:
			cats := typeCategories[stype]
			if len(cats) == 0 {
				continue
			}
			for c := range e.Stock {
				for _, cat := range cats {
					if world.CategoryOf(c) == cat {
						e.Stock[c] *= 1.06
						break
					}
				}
			}
		}
	}
	total := 0.0
	for _, v := range e.Stock {
		total += v
	}
	return math.Pow(total, 0.65)
}

// Perturb nudges a few random settlements so identical neighbours drift
// apart over time.
func Perturb(ix *world.Index, rng *rand.Rand) {
	tiles := ix.WithSystem(world.SystemEconomy)
	if len(tiles) == 0 {
		return
	}
	n := 3
	if len(tiles) < n {
		n = len(tiles)
	}
	for _, i := range rng.Perm(len(tiles))[:n] {
		e := tiles[i].Economy()
		if rng.Float64() < 0.5 {
			e.Supplies = math.Max(0, e.Supplies+rng.Float64()*4-1)
		}
		if rng.Float64() < 0.5 {
			e.Wealth = math.Max(0, e.Wealth+rng.Float64()*3-1)
		}
		if rng.Float64() < 0.3 {
			var present []world.Commodity
			for _, c := range world.Commodities() {
				if _, ok := e.Stock[c]; ok {
					present = append(present, c)
				}
			}
			if len(present) > 0 {
				e.Stock[present[rng.Intn(len(present))]] += 0.5
			}
		}
	}
}

func sigmoidLite(x, t float64) float64 {
	return x / (math.Abs(x) + t)
}

func logistic(x, mid, k float64) float64 {
	return 1 / (1 + math.Exp(-k*(x-mid)))
}
