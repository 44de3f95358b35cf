package world

// IsTile tests occupancy of every base cell shifted by every offset.
// In ModeAll it holds when all probed cells are empty, in ModeAny when at
// least one probed cell is occupied.
func (g *Grid) IsTile(bases, offsets []Cell, mode Mode) bool {
	for _, base := range bases {
		for _, offset := range offsets {
			_, occupied := g.cells[base.Add(offset)]
			if mode == ModeAll && occupied {
				return false
			}
			if mode == ModeAny && occupied {
				return true
			}
		}
	}
	return mode == ModeAll
}

// IsPhysicsTile tests the probed cells for solid tiles. In ModeAll every
// probed cell must hold a physics kind; in ModeAny one probed cell holding a
// physics kind or a portal marker suffices.
func (g *Grid) IsPhysicsTile(bases, offsets []Cell, mode Mode) bool {
	for _, base := range bases {
		for _, offset := range offsets {
			tile, occupied := g.cells[base.Add(offset)]
			switch mode {
			case ModeAll:
				if !occupied || !tile.Kind.IsPhysics() {
					return false
				}
			case ModeAny:
				if occupied && (tile.Kind.IsPhysics() || tile.Kind == KindSpawnersPortal) {
					return true
				}
			}
		}
	}
	return mode == ModeAll
}

// SolidAt returns the tile covering a pixel when it is solid.
func (g *Grid) SolidAt(pos Point) (TileCell, bool) {
	tile, ok := g.cells[g.CellAt(pos)]
	if !ok || !tile.Kind.IsPhysics() {
		return TileCell{}, false
	}
	return tile, true
}

// NeighboursOf returns the occupied cells in the square of the given radius
// (1 or 2) centred on cell, including cell itself, ordered by row.
func (g *Grid) NeighboursOf(cell Cell, radius int) []TileCell {
	if radius < 1 {
		radius = 1
	}
	if radius > 2 {
		radius = 2
	}
	tiles := make([]TileCell, 0, (2*radius+1)*(2*radius+1))
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			if tile, ok := g.cells[Cell{X: cell.X + dx, Y: cell.Y + dy}]; ok {
				tiles = append(tiles, tile)
			}
		}
	}
	return tiles
}
