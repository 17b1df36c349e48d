package trade

import (
	"math"

	"github.com/talgya/tradewinds/internal/world"
)

// ApplyEffects settles the day's trade into each settlement ledger. Link
// value earns wealth and supplies with diminishing returns and cheap
// prices buying more; route risk bleeds both, softened by the
// settlement's purchase power. Ledgers never go negative. Without a
// published graph this is a no-op.
func ApplyEffects(ix *world.Index, s *Store) {
	if s == nil {
		return
	}
	gp := s.Current()
	if gp == nil {
		return
	}

	byID := settlementsByID(ix)
	for sid, links := range *gp {
		t := byID[sid]
		if t == nil {
			continue
		}
		econ := t.Economy()
		if econ == nil {
			continue
		}

		var totalValue, totalRisk float64
		for _, l := range links {
			totalValue += l.Value
			totalRisk += l.Risk
		}

		gain := math.Pow(totalValue, 0.7)
		price := econ.PriceIndex
		if price <= 0 {
			price = 1
		}
		econ.Wealth += gain * 0.04 / price
		econ.Supplies += gain * 0.02 / price

		mitigation := math.Sqrt(math.Max(1, econ.PurchasePower))
		riskEffect := totalRisk / mitigation
		econ.Wealth = math.Max(0, econ.Wealth-riskEffect*0.02)
		econ.Supplies = math.Max(0, econ.Supplies-riskEffect*0.015)
	}
}

func settlementsByID(ix *world.Index) map[world.SettlementID]*world.Tile {
	out := make(map[world.SettlementID]*world.Tile)
	for _, t := range ix.WithSystem(world.SystemEconomy) {
		out[t.Economy().ID] = t
	}
	return out
}
