package world

// Grid is the rectangular tile map, stored row-major.
type Grid struct {
	Width  int
	Height int
	tiles  []*Tile
}

// NewGrid allocates a w by h grid of bare tiles.
func NewGrid(w, h int) *Grid {
	g := &Grid{Width: w, Height: h, tiles: make([]*Tile, w*h)}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			g.tiles[y*w+x] = NewTile(x, y)
		}
	}
	return g
}

// At returns the tile at (x, y), or nil outside the grid.
func (g *Grid) At(x, y int) *Tile {
	if x < 0 || y < 0 || x >= g.Width || y >= g.Height {
		return nil
	}
	return g.tiles[y*g.Width+x]
}

// ForEach visits every tile in row-major order.
func (g *Grid) ForEach(fn func(*Tile)) {
	for _, t := range g.tiles {
		fn(t)
	}
}

// Neighbors8 appends the up-to-eight tiles adjacent to (x, y) onto buf in
// row-major window order and returns the extended slice.
func (g *Grid) Neighbors8(x, y int, buf []*Tile) []*Tile {
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			if n := g.At(x+dx, y+dy); n != nil {
				buf = append(buf, n)
			}
		}
	}
	return buf
}
