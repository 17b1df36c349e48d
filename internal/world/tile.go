package world

import "sort"

// defaultMovementCost is assumed for tiles whose cost was never assigned.
const defaultMovementCost = 1.5

// Tile is one cell of the world grid. Subsystem records hang off the
// systems array keyed by SystemKind; mutations are reflected into the
// bound Index when one is attached.
type Tile struct {
	X, Y         int
	Elevation    float64
	Terrain      Terrain
	Origin       Terrain
	Biome        Biome
	Climate      Climate
	MovementCost float64

	tags    map[string]struct{}
	systems [systemKindCount]System
	index   *Index
}

// NewTile returns a bare water tile at (x, y).
func NewTile(x, y int) *Tile {
	return &Tile{X: x, Y: y, tags: make(map[string]struct{})}
}

// CostOrDefault returns the movement cost, substituting a default for
// tiles that were never assigned one.
func (t *Tile) CostOrDefault() float64 {
	if t.MovementCost <= 0 {
		return defaultMovementCost
	}
	return t.MovementCost
}

// SetTerrain reclassifies the tile. Origin keeps the last non-settlement
// terrain so resource yields survive settlement placement.
func (t *Tile) SetTerrain(next Terrain) {
	prev := t.Terrain
	t.Terrain = next
	if next != TerrainSettlement {
		t.Origin = next
	}
	if t.index != nil && prev != next {
		t.index.terrainChanged(t, prev)
	}
}

// Attach installs a subsystem record, replacing any record of the same kind.
func (t *Tile) Attach(sys System) {
	kind := sys.Kind()
	t.systems[kind] = sys
	if t.index != nil {
		t.index.registerSystem(t, kind)
	}
}

// Detach removes the subsystem record of the given kind, if present.
func (t *Tile) Detach(kind SystemKind) {
	if t.systems[kind] == nil {
		return
	}
	t.systems[kind] = nil
	if t.index != nil {
		t.index.unregisterSystem(t, kind)
	}
}

// Has reports whether a subsystem record of the given kind is attached.
func (t *Tile) Has(kind SystemKind) bool {
	return t.systems[kind] != nil
}

// System returns the attached record of the given kind, or nil.
func (t *Tile) System(kind SystemKind) System {
	return t.systems[kind]
}

// Economy returns the attached settlement economy, or nil.
func (t *Tile) Economy() *Economy {
	if s := t.systems[SystemEconomy]; s != nil {
		return s.(*Economy)
	}
	return nil
}

// Weather returns the attached weather record, or nil.
func (t *Tile) Weather() *Weather {
	if s := t.systems[SystemWeather]; s != nil {
		return s.(*Weather)
	}
	return nil
}

// Humidity returns the attached humidity record, or nil.
func (t *Tile) Humidity() *Humidity {
	if s := t.systems[SystemHumidity]; s != nil {
		return s.(*Humidity)
	}
	return nil
}

// Soil returns the attached soil record, or nil.
func (t *Tile) Soil() *Soil {
	if s := t.systems[SystemSoil]; s != nil {
		return s.(*Soil)
	}
	return nil
}

// Eco returns the attached ecosystem record, or nil.
func (t *Tile) Eco() *Eco {
	if s := t.systems[SystemEco]; s != nil {
		return s.(*Eco)
	}
	return nil
}

// EcoRisk returns the attached ecosystem risk record, or nil.
func (t *Tile) EcoRisk() *EcoRisk {
	if s := t.systems[SystemEcoRisk]; s != nil {
		return s.(*EcoRisk)
	}
	return nil
}

// Relations returns the attached relations table, or nil.
func (t *Tile) Relations() *Relations {
	if s := t.systems[SystemRelations]; s != nil {
		return s.(*Relations)
	}
	return nil
}

// Personality returns the attached personality record, or nil.
func (t *Tile) Personality() *Personality {
	if s := t.systems[SystemPersonality]; s != nil {
		return s.(*Personality)
	}
	return nil
}

// Events returns the attached active-events record, or nil.
func (t *Tile) Events() *ActiveEvents {
	if s := t.systems[SystemEvents]; s != nil {
		return s.(*ActiveEvents)
	}
	return nil
}

// HasTag reports whether the tile carries the tag.
func (t *Tile) HasTag(tag string) bool {
	_, ok := t.tags[tag]
	return ok
}

// AddTag attaches a tag. Adding an existing tag is a no-op.
func (t *Tile) AddTag(tag string) {
	if _, ok := t.tags[tag]; ok {
		return
	}
	t.tags[tag] = struct{}{}
	if t.index != nil {
		t.index.registerTag(t, tag)
	}
}

// RemoveTag detaches a tag. Removing an absent tag is a no-op.
func (t *Tile) RemoveTag(tag string) {
	if _, ok := t.tags[tag]; !ok {
		return
	}
	delete(t.tags, tag)
	if t.index != nil {
		t.index.unregisterTag(t, tag)
	}
}

// Tags returns the tile's tags sorted alphabetically.
func (t *Tile) Tags() []string {
	out := make([]string, 0, len(t.tags))
	for tag := range t.tags {
		out = append(out, tag)
	}
	sort.Strings(out)
	return out
}
