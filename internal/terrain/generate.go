package terrain

import (
	"log"
	"math/rand"

	"hilberthotel/internal/world"
)

// Generate carves, auto-tiles and populates a floor of the given kind. The
// rng is consumed in that order, so a seeded source reproduces the floor.
// When a mandatory marker could not be placed the populated grid is still
// returned together with a *GenerationFailedError.
func Generate(kind world.TileKind, size, quota int, ctx *Context, rng *rand.Rand) (*world.Grid, PlacementReport, error) {
	floor := ctx.floorName(kind)

	raw, params, err := Carve(kind, size, rng)
	if err != nil {
		return nil, PlacementReport{}, err
	}
	grid := world.NewGrid(ctx.tileSize(), params.MapSize)
	raw.Emit(grid, kind)
	log.Printf("floor %s generation: carved %dx%d (%d vertices, %d rooms)", floor, params.MapSize, params.MapSize, params.VertexNum, params.RoomCount)

	Autotile(grid, rng, AutotileOptions{Windows: ctx.Windows, Variants: ctx.Variants})
	log.Printf("floor %s generation: auto-tiled %d tiles", floor, grid.Len())

	report := Populate(grid, ctx, rng, kind, params.Size, quota)
	log.Printf("floor %s generation: placed %d enemies, %d decorations, %d glowworms in %d attempts",
		floor, report.Enemies, report.Decorations, report.Glowworms, report.Attempts)

	if missing := report.Missing(); len(missing) > 0 {
		return grid, report, &GenerationFailedError{Floor: floor, Missing: missing}
	}
	return grid, report, nil
}
