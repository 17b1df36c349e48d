package world

// Commodity identifies a tradeable good.
type Commodity uint8

const (
	CommodityGrain Commodity = iota
	CommodityMeat
	CommodityFish
	CommodityTimber
	CommodityStone
	CommodityIron
	CommodityHerbs
	CommodityFurs
	CommoditySalt
	CommoditySpices
	CommodityClay
	CommodityReeds
	commodityCount
)

var commodityNames = [...]string{
	CommodityGrain:  "grain",
	CommodityMeat:   "meat",
	CommodityFish:   "fish",
	CommodityTimber: "timber",
	CommodityStone:  "stone",
	CommodityIron:   "iron",
	CommodityHerbs:  "herbs",
	CommodityFurs:   "furs",
	CommoditySalt:   "salt",
	CommoditySpices: "spices",
	CommodityClay:   "clay",
	CommodityReeds:  "reeds",
}

func (c Commodity) String() string {
	if int(c) < len(commodityNames) {
		return commodityNames[c]
	}
	return "unknown"
}

// Commodities lists every commodity in declaration order.
func Commodities() []Commodity {
	out := make([]Commodity, commodityCount)
	for i := range out {
		out[i] = Commodity(i)
	}
	return out
}

// Category groups commodities for settlement-type bonuses and event shocks.
type Category uint8

const (
	CategoryFood Category = iota
	CategoryMaterial
	CategoryTrade
	CategoryLuxury
)

func (c Category) String() string {
	switch c {
	case CategoryMaterial:
		return "material"
	case CategoryTrade:
		return "trade"
	case CategoryLuxury:
		return "luxury"
	default:
		return "food"
	}
}

var commodityCategories = [...]Category{
	CommodityGrain:  CategoryFood,
	CommodityMeat:   CategoryFood,
	CommodityFish:   CategoryFood,
	CommodityHerbs:  CategoryFood,
	CommodityTimber: CategoryMaterial,
	CommodityStone:  CategoryMaterial,
	CommodityIron:   CategoryMaterial,
	CommodityClay:   CategoryMaterial,
	CommodityReeds:  CategoryMaterial,
	CommoditySalt:   CategoryTrade,
	CommoditySpices: CategoryTrade,
	CommodityFurs:   CategoryLuxury,
}

// CategoryOf returns the trade category a commodity belongs to.
func CategoryOf(c Commodity) Category {
	if int(c) < len(commodityCategories) {
		return commodityCategories[c]
	}
	return CategoryFood
}
