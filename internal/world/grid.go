package world

import (
	"fmt"
	"image"
	"math"
	"sort"
)

// DefaultTileSize is the edge length of a tile in pixels.
const DefaultTileSize = 16

// Grid is a sparse tile map plus the off-grid items drawn over it.
type Grid struct {
	TileSize int
	MapSize  int
	Offgrid  []OffGridItem

	cells map[Cell]TileCell
}

func NewGrid(tileSize, mapSize int) *Grid {
	if tileSize <= 0 {
		tileSize = DefaultTileSize
	}
	return &Grid{
		TileSize: tileSize,
		MapSize:  mapSize,
		cells:    make(map[Cell]TileCell),
	}
}

func (g *Grid) Get(cell Cell) (TileCell, bool) {
	tile, ok := g.cells[cell]
	return tile, ok
}

// Set stores tile at cell. The tile must carry its own coordinate.
func (g *Grid) Set(cell Cell, tile TileCell) {
	if tile.Cell != cell {
		panic(fmt.Sprintf("world: tile for %v stored at %v", tile.Cell, cell))
	}
	g.cells[cell] = tile
}

func (g *Grid) Remove(cell Cell) {
	delete(g.cells, cell)
}

func (g *Grid) Len() int {
	return len(g.cells)
}

// Cells returns every tile ordered by row, then column.
func (g *Grid) Cells() []TileCell {
	tiles := make([]TileCell, 0, len(g.cells))
	for _, tile := range g.cells {
		tiles = append(tiles, tile)
	}
	sortTiles(tiles)
	return tiles
}

func (g *Grid) AddOffgrid(item OffGridItem) {
	g.Offgrid = append(g.Offgrid, item)
}

// RemoveOffgridAt drops the first off-grid item whose sprite rectangle
// contains pos. Sprites are assumed to cover one tile.
func (g *Grid) RemoveOffgridAt(pos Point) bool {
	size := float64(g.TileSize)
	for i, item := range g.Offgrid {
		if pos.X >= item.Pos.X && pos.X < item.Pos.X+size &&
			pos.Y >= item.Pos.Y && pos.Y < item.Pos.Y+size {
			g.Offgrid = append(g.Offgrid[:i], g.Offgrid[i+1:]...)
			return true
		}
	}
	return false
}

// ForEachVisible calls fn for every tile whose top-left pixel lies inside
// view. Iteration order is unspecified; returning false stops it.
func (g *Grid) ForEachVisible(view image.Rectangle, fn func(TileCell) bool) {
	ts := g.TileSize
	minX := floorDiv(view.Min.X, ts)
	minY := floorDiv(view.Min.Y, ts)
	maxX := floorDiv(view.Max.X-1, ts)
	maxY := floorDiv(view.Max.Y-1, ts)
	area := (maxX - minX + 1) * (maxY - minY + 1)

	if area > 0 && area < len(g.cells) {
		for y := minY; y <= maxY; y++ {
			for x := minX; x <= maxX; x++ {
				tile, ok := g.cells[Cell{X: x, Y: y}]
				if !ok || !image.Pt(x*ts, y*ts).In(view) {
					continue
				}
				if !fn(tile) {
					return
				}
			}
		}
		return
	}
	for cell, tile := range g.cells {
		if !image.Pt(cell.X*ts, cell.Y*ts).In(view) {
			continue
		}
		if !fn(tile) {
			return
		}
	}
}

// CellAt returns the cell covering a pixel.
func (g *Grid) CellAt(pos Point) Cell {
	size := float64(g.TileSize)
	return Cell{X: int(math.Floor(pos.X / size)), Y: int(math.Floor(pos.Y / size))}
}

// Clone returns a deep copy of the grid.
func (g *Grid) Clone() *Grid {
	dup := NewGrid(g.TileSize, g.MapSize)
	for cell, tile := range g.cells {
		dup.cells[cell] = tile
	}
	dup.Offgrid = append([]OffGridItem(nil), g.Offgrid...)
	return dup
}

// Bounds returns the inclusive cell extent of the occupied tiles.
func (g *Grid) Bounds() (Cell, Cell, bool) {
	if len(g.cells) == 0 {
		return Cell{}, Cell{}, false
	}
	first := true
	var lo, hi Cell
	for cell := range g.cells {
		if first {
			lo, hi = cell, cell
			first = false
			continue
		}
		lo.X = min(lo.X, cell.X)
		lo.Y = min(lo.Y, cell.Y)
		hi.X = max(hi.X, cell.X)
		hi.Y = max(hi.Y, cell.Y)
	}
	return lo, hi, true
}

// CountKind returns how many tiles and off-grid items have the given kind and variant.
func (g *Grid) CountKind(kind TileKind, variant uint8) int {
	n := 0
	for _, tile := range g.cells {
		if tile.Kind == kind && tile.Variant == variant {
			n++
		}
	}
	for _, item := range g.Offgrid {
		if item.Kind == kind && item.Variant == variant {
			n++
		}
	}
	return n
}

func sortTiles(tiles []TileCell) {
	sort.Slice(tiles, func(i, j int) bool {
		if tiles[i].Cell.Y == tiles[j].Cell.Y {
			return tiles[i].Cell.X < tiles[j].Cell.X
		}
		return tiles[i].Cell.Y < tiles[j].Cell.Y
	})
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
