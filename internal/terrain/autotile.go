package terrain

import (
	"math/rand"

	"hilberthotel/internal/world"
)

// Neighbour bits of the auto-tile mask.
const (
	maskLeft uint8 = 1 << iota
	maskRight
	maskUp
	maskDown
)

const (
	variantFill         = 5
	windowsFrom         = 10
	decoratedFrom       = 13
	windowsChance       = 0.01
	spaceChance         = 0.1
	spookyChance        = 0.005
	ceilingHangerMarker = 24
)

// autotilePatterns maps neighbour masks to variants. Some masks are listed
// twice; the first listing is the one that applies.
var autotilePatterns = []struct {
	mask    uint8
	variant uint8
}{
	{maskRight, 0},
	{maskRight | maskDown, 0},
	{maskDown, 1},
	{maskLeft | maskRight, 1},
	{maskLeft | maskRight | maskDown, 1},
	{maskLeft, 2},
	{maskLeft | maskDown, 2},
	{maskLeft | maskUp | maskDown, 3},
	{maskLeft | maskUp, 4},
	{maskUp, 5},
	{maskUp | maskDown, 5},
	{maskLeft | maskRight | maskUp | maskDown, 5},
	{maskLeft | maskRight | maskUp, 5},
	{maskRight | maskUp, 6},
	{maskRight | maskUp | maskDown, 7},
	{maskUp | maskDown, 8},
	{maskUp, 8},
	{maskDown, 9},
	{0, 9},
}

var autotileTable = buildAutotileTable()

func buildAutotileTable() [16]uint8 {
	var (
		table [16]uint8
		seen  [16]bool
	)
	for _, p := range autotilePatterns {
		if seen[p.mask] {
			continue
		}
		table[p.mask] = p.variant
		seen[p.mask] = true
	}
	return table
}

// crackedProbes are checked in order; the last empty one picks the variant.
var crackedProbes = [4]world.Cell{{X: 0, Y: 1}, {X: 0, Y: -1}, {X: 1, Y: 0}, {X: -1, Y: 0}}

// AutotileOptions configures the random substitutions of the auto-tiler.
type AutotileOptions struct {
	Windows  bool
	Variants map[world.TileKind]int
}

// Autotile resolves the variant of every tile from its four neighbours. Only
// variants change; tiles are neither added nor removed. Fill tiles may be
// swapped for a rare decorated variant, and spooky ones then also drop a
// ceiling hanger marker into the off-grid list.
func Autotile(grid *world.Grid, rng *rand.Rand, opts AutotileOptions) {
	ts := float64(grid.TileSize)
	for _, tile := range grid.Cells() {
		switch {
		case tile.Kind == world.KindRubiks:
			tile.Variant = uint8(rng.Intn(6))
		case tile.Kind == world.KindCracked:
			tile.Variant = crackedVariant(grid, tile.Cell)
		case tile.Kind.IsAutoTile():
			tile.Variant = autotileTable[neighbourMask(grid, tile.Cell)]
			if tile.Variant == variantFill {
				tile.Variant = substitute(grid, rng, opts, tile, ts)
			}
		default:
			continue
		}
		grid.Set(tile.Cell, tile)
	}
}

// AutotileVariant is the deterministic variant an auto-tile kind receives at
// cell, before any substitution.
func AutotileVariant(grid *world.Grid, cell world.Cell) uint8 {
	return autotileTable[neighbourMask(grid, cell)]
}

func neighbourMask(grid *world.Grid, cell world.Cell) uint8 {
	var mask uint8
	probe := func(dx, dy int, bit uint8) {
		if n, ok := grid.Get(world.Cell{X: cell.X + dx, Y: cell.Y + dy}); ok && n.Kind.IsAutoTile() {
			mask |= bit
		}
	}
	probe(-1, 0, maskLeft)
	probe(1, 0, maskRight)
	probe(0, -1, maskUp)
	probe(0, 1, maskDown)
	return mask
}

func crackedVariant(grid *world.Grid, cell world.Cell) uint8 {
	variant := uint8(4)
	for i, d := range crackedProbes {
		if _, ok := grid.Get(cell.Add(d)); !ok {
			variant = uint8(i)
		}
	}
	return variant
}

func substitute(grid *world.Grid, rng *rand.Rand, opts AutotileOptions, tile world.TileCell, ts float64) uint8 {
	variant := tile.Variant
	n := opts.Variants[tile.Kind]
	if opts.Windows && n > windowsFrom && rng.Float64() < windowsChance {
		variant = uint8(windowsFrom + rng.Intn(n-windowsFrom))
	}
	switch tile.Kind {
	case world.KindSpace:
		if n > decoratedFrom && rng.Float64() < spaceChance {
			variant = uint8(decoratedFrom + rng.Intn(n-decoratedFrom))
		}
	case world.KindSpooky:
		if n > decoratedFrom && rng.Float64() < spookyChance {
			variant = uint8(decoratedFrom + rng.Intn(n-decoratedFrom))
			grid.AddOffgrid(world.OffGridItem{
				Kind:    world.KindSpawners,
				Variant: ceilingHangerMarker,
				Pos:     world.Point{X: float64(tile.Cell.X) * ts, Y: float64(tile.Cell.Y) * ts},
			})
		}
	}
	return variant
}
