package terrain

import (
	"math"
	"math/rand"

	"hilberthotel/internal/world"
)

const (
	// Buffer is the solid padding around the carved interior.
	Buffer = 18

	minFloorSize   = 10
	corridorMinLen = 5
)

// CarveParams are the parameters derived from a floor kind and size.
type CarveParams struct {
	Size        int
	MapSize     int
	VertexNum   int
	RoomCount   int
	RoomSize    int
	CorridorMin int
	CorridorMax int
}

// NewCarveParams derives carving parameters. Aussie floors are half as large
// again and get twice the rooms, room length and vertices.
func NewCarveParams(kind world.TileKind, size int) CarveParams {
	size = max(size, minFloorSize)
	if kind == world.KindAussie {
		size = size * 3 / 2
	}
	p := CarveParams{
		Size:        size,
		MapSize:     size + 2*Buffer,
		VertexNum:   size / 2,
		RoomCount:   int(math.Pow(float64(size)/5, 1.3)),
		RoomSize:    size,
		CorridorMin: corridorMinLen,
		CorridorMax: size / 2,
	}
	if kind == world.KindAussie {
		p.RoomCount *= 2
		p.RoomSize *= 2
		p.VertexNum *= 2
	}
	return p
}

func (p CarveParams) interior(c world.Cell) bool {
	lo, hi := Buffer, p.MapSize-Buffer
	return c.X >= lo && c.X < hi && c.Y >= lo && c.Y < hi
}

// RawMap is the dense occupancy matrix built while carving. Every cell starts
// solid.
type RawMap struct {
	Size  int
	cells []bool
}

func newRawMap(size int) *RawMap {
	cells := make([]bool, size*size)
	for i := range cells {
		cells[i] = true
	}
	return &RawMap{Size: size, cells: cells}
}

// Solid reports whether the cell is still solid. Cells outside the map are solid.
func (m *RawMap) Solid(c world.Cell) bool {
	if c.X < 0 || c.Y < 0 || c.X >= m.Size || c.Y >= m.Size {
		return true
	}
	return m.cells[c.Y*m.Size+c.X]
}

func (m *RawMap) carve(c world.Cell) {
	m.cells[c.Y*m.Size+c.X] = false
}

// Carved lists the carved cells by row.
func (m *RawMap) Carved() []world.Cell {
	var out []world.Cell
	for y := 0; y < m.Size; y++ {
		for x := 0; x < m.Size; x++ {
			if !m.cells[y*m.Size+x] {
				out = append(out, world.Cell{X: x, Y: y})
			}
		}
	}
	return out
}

// Emit writes every solid cell into grid as a tile of the given kind.
func (m *RawMap) Emit(grid *world.Grid, kind world.TileKind) {
	for y := 0; y < m.Size; y++ {
		for x := 0; x < m.Size; x++ {
			if !m.cells[y*m.Size+x] {
				continue
			}
			cell := world.Cell{X: x, Y: y}
			grid.Set(cell, world.TileCell{Kind: kind, Variant: 1, Cell: cell})
		}
	}
}

// Carve digs a connected cave out of a solid square: straight corridors link
// a growing set of vertices, then random walks widen them into rooms. Only
// auto-tile kinds can be carved.
func Carve(kind world.TileKind, size int, rng *rand.Rand) (*RawMap, CarveParams, error) {
	if !kind.IsAutoTile() {
		return nil, CarveParams{}, &world.UnknownFloorKindError{Name: string(kind)}
	}
	p := NewCarveParams(kind, size)
	raw := newRawMap(p.MapSize)

	rooms := carveCorridors(raw, p, rng)
	carveRooms(raw, p, rng, rooms)
	return raw, p, nil
}

func carveCorridors(raw *RawMap, p CarveParams, rng *rand.Rand) []world.Cell {
	rooms := make([]world.Cell, 0, p.VertexNum)
	for i := 0; i < p.VertexNum; i++ {
		for {
			length := p.CorridorMin + rng.Intn(p.CorridorMax-p.CorridorMin+1)
			var origin world.Cell
			if len(rooms) == 0 {
				origin = world.Cell{X: Buffer + rng.Intn(p.Size), Y: Buffer + rng.Intn(p.Size)}
			} else {
				origin = rooms[rng.Intn(len(rooms))]
			}
			step := randomStep(rng)
			target := world.Cell{X: origin.X + step.X*length, Y: origin.Y + step.Y*length}
			if !p.interior(target) {
				continue
			}
			rooms = append(rooms, target)
			for c, n := origin, 0; n <= length; n++ {
				raw.carve(c)
				c = c.Add(step)
			}
			break
		}
	}
	return rooms
}

func carveRooms(raw *RawMap, p CarveParams, rng *rand.Rand, rooms []world.Cell) {
	if len(rooms) == 0 {
		return
	}
	for i := 0; i < p.RoomCount; i++ {
		pos := rooms[rng.Intn(len(rooms))]
		for s := 0; s < p.RoomSize; s++ {
			if next := pos.Add(randomStep(rng)); p.interior(next) {
				pos = next
			}
			raw.carve(pos)
		}
	}
}

// randomStep picks an axis, then a sign.
func randomStep(rng *rand.Rand) world.Cell {
	axis := rng.Intn(2)
	sign := rng.Intn(2)*2 - 1
	if axis == 0 {
		return world.Cell{X: sign}
	}
	return world.Cell{Y: sign}
}
