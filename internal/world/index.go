package world

import "sort"

// Index maintains reverse lookups from system kind, terrain and tag to
// tiles. Tile mutations made through the Tile API keep it current; bulk
// edits made behind its back need a Rebuild.
type Index struct {
	grid      *Grid
	bySystem  [systemKindCount]map[*Tile]struct{}
	byTerrain map[Terrain]map[*Tile]struct{}
	byTag     map[string]map[*Tile]struct{}
}

// NewIndex builds an index over g and binds every tile to it so later
// mutations are tracked.
func NewIndex(g *Grid) *Index {
	ix := &Index{grid: g}
	g.ForEach(func(t *Tile) { t.index = ix })
	ix.Rebuild()
	return ix
}

// Grid returns the indexed grid.
func (ix *Index) Grid() *Grid { return ix.grid }

// Rebuild discards all lookup state and rescans the grid.
func (ix *Index) Rebuild() {
	for i := range ix.bySystem {
		ix.bySystem[i] = make(map[*Tile]struct{})
	}
	ix.byTerrain = make(map[Terrain]map[*Tile]struct{})
	ix.byTag = make(map[string]map[*Tile]struct{})

	ix.grid.ForEach(func(t *Tile) {
		for kind := SystemKind(0); kind < systemKindCount; kind++ {
			if t.systems[kind] != nil {
				ix.bySystem[kind][t] = struct{}{}
			}
		}
		ix.addTerrain(t, t.Terrain)
		for tag := range t.tags {
			ix.addTag(t, tag)
		}
	})
}

func (ix *Index) registerSystem(t *Tile, kind SystemKind) {
	ix.bySystem[kind][t] = struct{}{}
}

func (ix *Index) unregisterSystem(t *Tile, kind SystemKind) {
	delete(ix.bySystem[kind], t)
}

func (ix *Index) addTerrain(t *Tile, terrain Terrain) {
	set, ok := ix.byTerrain[terrain]
	if !ok {
		set = make(map[*Tile]struct{})
		ix.byTerrain[terrain] = set
	}
	set[t] = struct{}{}
}

func (ix *Index) terrainChanged(t *Tile, prev Terrain) {
	if set, ok := ix.byTerrain[prev]; ok {
		delete(set, t)
	}
	ix.addTerrain(t, t.Terrain)
}

func (ix *Index) registerTag(t *Tile, tag string) {
	ix.addTag(t, tag)
}

func (ix *Index) addTag(t *Tile, tag string) {
	set, ok := ix.byTag[tag]
	if !ok {
		set = make(map[*Tile]struct{})
		ix.byTag[tag] = set
	}
	set[t] = struct{}{}
}

func (ix *Index) unregisterTag(t *Tile, tag string) {
	if set, ok := ix.byTag[tag]; ok {
		delete(set, t)
	}
}

// WithSystem returns every tile carrying the given subsystem, ordered by
// (y, x) so callers iterate deterministically.
func (ix *Index) WithSystem(kind SystemKind) []*Tile {
	return sortedTiles(ix.bySystem[kind])
}

// WithTerrain returns every tile of the given terrain, ordered by (y, x).
func (ix *Index) WithTerrain(terrain Terrain) []*Tile {
	return sortedTiles(ix.byTerrain[terrain])
}

// WithTag returns every tile carrying the tag, ordered by (y, x).
func (ix *Index) WithTag(tag string) []*Tile {
	return sortedTiles(ix.byTag[tag])
}

// TilesWithinRadius returns the tiles within Chebyshev distance r of
// (x, y), excluding the center itself, clipped to the grid.
func (ix *Index) TilesWithinRadius(x, y, r int) []*Tile {
	if r < 0 {
		return nil
	}
	out := make([]*Tile, 0, (2*r+1)*(2*r+1)-1)
	for ny := y - r; ny <= y+r; ny++ {
		for nx := x - r; nx <= x+r; nx++ {
			if nx == x && ny == y {
				continue
			}
			if t := ix.grid.At(nx, ny); t != nil {
				out = append(out, t)
			}
		}
	}
	return out
}

// NearestWithSystem returns the tile carrying the subsystem closest to
// (x, y) by straight-line distance, ties broken by (y, x). When the index
// has no entry for the kind it falls back to an expanding ring scan out
// to maxRadius. Returns nil when nothing is found.
func (ix *Index) NearestWithSystem(kind SystemKind, x, y, maxRadius int) *Tile {
	if set := ix.bySystem[kind]; len(set) > 0 {
		var best *Tile
		bestD := 0
		for t := range set {
			dx, dy := t.X-x, t.Y-y
			d := dx*dx + dy*dy
			if best == nil || d < bestD ||
				(d == bestD && (t.Y < best.Y || (t.Y == best.Y && t.X < best.X))) {
				best, bestD = t, d
			}
		}
		return best
	}
	for r := 0; r <= maxRadius; r++ {
		for ny := y - r; ny <= y+r; ny++ {
			for nx := x - r; nx <= x+r; nx++ {
				if maxAbs(nx-x, ny-y) != r {
					continue
				}
				if t := ix.grid.At(nx, ny); t != nil && t.Has(kind) {
					return t
				}
			}
		}
	}
	return nil
}

func maxAbs(a, b int) int {
	if a < 0 {
		a = -a
	}
	if b < 0 {
		b = -b
	}
	if a > b {
		return a
	}
	return b
}

func sortedTiles(set map[*Tile]struct{}) []*Tile {
	out := make([]*Tile, 0, len(set))
	for t := range set {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Y != out[j].Y {
			return out[i].Y < out[j].Y
		}
		return out[i].X < out[j].X
	})
	return out
}
