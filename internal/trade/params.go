package trade

// Params bounds the partner search and the route planner.
type Params struct {
	// SearchRadius is the Chebyshev window, in tiles, a settlement scans
	// for trade partners.
	SearchRadius int
	// MaxPartners caps how many scouted partners a settlement keeps.
	MaxPartners int
	// MaxExpansions caps how many nodes one pathfinding run may pop
	// before giving up on the pair.
	MaxExpansions int
}

// DefaultParams returns the tuning used when no override is configured.
func DefaultParams() Params {
	return Params{
		SearchRadius:  60,
		MaxPartners:   3,
		MaxExpansions: 4096,
	}
}
