package terrain

import (
	"math"
	"math/rand"

	"hilberthotel/internal/config"
	"hilberthotel/internal/progress"
	"hilberthotel/internal/world"
)

const (
	defaultAttemptCap = 5000

	markerPlayer         = 0
	markerPortal         = 0
	markerInfinitePortal = 5
	markerGlowworm       = 5
)

var (
	originOffset = []world.Cell{{X: 0, Y: 0}}
	belowOffset  = []world.Cell{{X: 0, Y: 1}}
)

// npcGate describes when a narrative character's spawner may appear.
type npcGate struct {
	Name    string
	Floor   string // empty matches every floor
	Counter string
	Above   int
	Variant uint8
}

var npcGates = []npcGate{
	{Name: "Noether", Floor: progress.FloorNormal, Counter: progress.FloorNormal, Above: 7, Variant: 6},
	{Name: "Curie", Floor: progress.FloorNormal, Counter: progress.FloorNormal, Above: 10, Variant: 7},
	{Name: "Planck", Floor: progress.FloorNormal, Counter: progress.FloorNormal, Above: 13, Variant: 8},
	{Name: "Lorenz", Floor: progress.FloorNormal, Counter: progress.FloorNormal, Above: 17, Variant: 11},
	{Name: "Franklin", Floor: progress.FloorSpooky, Counter: progress.FloorSpooky, Above: 10, Variant: 14},
	{Name: "Rubik", Floor: progress.FloorRubiks, Counter: progress.FloorRubiks, Above: 1, Variant: 16},
	{Name: "Melatos", Floor: progress.FloorAussie, Counter: progress.FloorAussie, Above: 5, Variant: 21},
	{Name: "Cantor", Counter: progress.FloorInfinite, Above: 3, Variant: 17},
}

// eligibleNPC returns the first character whose gate is open on floor.
func eligibleNPC(state *progress.State, floor string) (npcGate, bool) {
	for _, gate := range npcGates {
		if gate.Floor != "" && gate.Floor != floor {
			continue
		}
		if state.HasMet(gate.Name) || state.Floor(gate.Counter) <= gate.Above {
			continue
		}
		return gate, true
	}
	return npcGate{}, false
}

// NPCVariant returns the spawner variant of a narrative character.
func NPCVariant(name string) (uint8, bool) {
	for _, gate := range npcGates {
		if gate.Name == name {
			return gate.Variant, true
		}
	}
	return 0, false
}

// PlacementReport summarises a populator run.
type PlacementReport struct {
	Player           bool   `json:"player"`
	Portal           bool   `json:"portal"`
	InfinitePortal   bool   `json:"infinitePortal"`
	InfiniteRequired bool   `json:"infiniteRequired"`
	NPC              string `json:"npc,omitempty"`
	Enemies          int    `json:"enemies"`
	Attempts         int    `json:"attempts"`
	Decorations      int    `json:"decorations"`
	Glowworms        int    `json:"glowworms"`
}

// Missing lists the mandatory markers that were not placed.
func (r PlacementReport) Missing() []Mandatory {
	var missing []Mandatory
	if !r.Player {
		missing = append(missing, MandatoryPlayer)
	}
	if !r.Portal {
		missing = append(missing, MandatoryPortal)
	}
	if r.InfiniteRequired && !r.InfinitePortal {
		missing = append(missing, MandatoryInfinitePortal)
	}
	return missing
}

// interior samples cells away from the solid padding of a generated map.
type interior struct {
	lo   int
	span int
}

func interiorOf(grid *world.Grid) interior {
	span := grid.MapSize - 2*Buffer
	if span <= 0 {
		return interior{lo: 0, span: grid.MapSize}
	}
	return interior{lo: Buffer, span: span}
}

func (in interior) sample(rng *rand.Rand) world.Cell {
	return world.Cell{X: in.lo + rng.Intn(in.span), Y: in.lo + rng.Intn(in.span)}
}

// Populate places the spawn markers, decorations and ambient spawns of a
// carved and auto-tiled floor. It never fails; callers inspect
// PlacementReport.Missing.
func Populate(grid *world.Grid, ctx *Context, rng *rand.Rand, kind world.TileKind, size, quota int) PlacementReport {
	report := PlacementReport{InfiniteRequired: ctx.progress().Infinite}
	in := interiorOf(grid)
	if in.span <= 0 {
		return report
	}

	placeMarkers(grid, ctx, rng, in, kind, quota, &report)
	report.Decorations = decorate(grid, ctx, rng, in, kind, size)
	report.Glowworms = placeGlowworms(grid, ctx, rng, in)
	return report
}

func placeMarkers(grid *world.Grid, ctx *Context, rng *rand.Rand, in interior, kind world.TileKind, quota int, report *PlacementReport) {
	npc, npcOpen := eligibleNPC(ctx.progress(), ctx.floorName(kind))
	enemies := ctx.Enemies[kind]
	if len(enemies.Variants) == 0 {
		quota = 0
	}

	// Markers stop once the mandatories and the enemy quota are in, so with a
	// zero quota an open NPC gate only gets the attempts that find nothing.
	done := func() bool {
		return report.Player && report.Portal &&
			(!report.InfiniteRequired || report.InfinitePortal) &&
			report.Enemies >= quota
	}

	limit := ctx.attemptCap()
	for report.Attempts < limit && !done() {
		report.Attempts++
		cell := in.sample(rng)
		base := []world.Cell{cell}
		if !grid.IsTile(base, originOffset, world.ModeAll) || !grid.IsPhysicsTile(base, belowOffset, world.ModeAny) {
			continue
		}

		tile := world.TileCell{Kind: world.KindSpawners, Cell: cell}
		switch {
		case !report.Player:
			tile.Variant = markerPlayer
			report.Player = true
		case !report.Portal:
			tile.Kind, tile.Variant = world.KindSpawnersPortal, markerPortal
			report.Portal = true
		case report.InfiniteRequired && !report.InfinitePortal:
			tile.Kind, tile.Variant = world.KindSpawnersPortal, markerInfinitePortal
			report.InfinitePortal = true
		case npcOpen && report.NPC == "":
			tile.Variant = npc.Variant
			report.NPC = npc.Name
		default:
			idx := weightedIndex(rng, enemies.Weights)
			if idx < 0 || idx >= len(enemies.Variants) {
				continue
			}
			tile.Variant = uint8(enemies.Variants[idx])
			report.Enemies++
		}
		grid.Set(cell, tile)
	}
}

func decorate(grid *world.Grid, ctx *Context, rng *rand.Rand, in interior, kind world.TileKind, size int) int {
	spec, ok := ctx.Floors[kind]
	if !ok || len(spec.Decorations) == 0 {
		return 0
	}
	budget := int(math.Ceil(float64(size) / 5 * spec.DecorationMod))
	weights := make([]float64, len(spec.Decorations))
	for i, rule := range spec.Decorations {
		weights[i] = rule.Weight
	}

	ts := float64(ctx.tileSize())
	placed := 0
	for attempts, limit := 0, ctx.attemptCap(); attempts < limit && placed < budget; attempts++ {
		cell := in.sample(rng)
		idx := weightedIndex(rng, weights)
		if idx < 0 {
			break
		}
		rule := spec.Decorations[idx]
		base := []world.Cell{cell}
		if grid.IsPhysicsTile(base, config.Cells(rule.EmptyOffsets), world.ModeAny) {
			continue
		}
		if !grid.IsPhysicsTile(base, config.Cells(rule.Support), rule.SupportMode) {
			continue
		}
		jx := jitter(rng, rule.JitterX)
		jy := jitter(rng, rule.JitterY)
		grid.AddOffgrid(world.OffGridItem{
			Kind:    rule.Kind,
			Variant: uint8(rule.Variants[rng.Intn(len(rule.Variants))]),
			Pos:     world.Point{X: float64(cell.X)*ts + float64(jx), Y: float64(cell.Y)*ts + float64(jy)},
		})
		placed++
	}
	return placed
}

func placeGlowworms(grid *world.Grid, ctx *Context, rng *rand.Rand, in interior) int {
	ts := float64(ctx.tileSize())
	placed := 0
	for attempts, limit := 0, ctx.attemptCap(); attempts < limit && placed < ctx.GlowwormCap; attempts++ {
		cell := in.sample(rng)
		if _, occupied := grid.Get(cell); occupied {
			continue
		}
		grid.AddOffgrid(world.OffGridItem{
			Kind:    world.KindSpawners,
			Variant: markerGlowworm,
			Pos: world.Point{
				X: (float64(cell.X) + rng.Float64()) * ts,
				Y: (float64(cell.Y) + rng.Float64()) * ts,
			},
		})
		placed++
	}
	return placed
}

// weightedIndex draws an index with probability proportional to its weight,
// or -1 when no weight is positive.
func weightedIndex(rng *rand.Rand, weights []float64) int {
	total := 0.0
	for _, w := range weights {
		if w > 0 {
			total += w
		}
	}
	if total <= 0 {
		return -1
	}
	r := rng.Float64() * total
	last := -1
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		last = i
		if r < w {
			return i
		}
		r -= w
	}
	return last
}

func jitter(rng *rand.Rand, bounds config.Pair) int {
	lo, hi := bounds.Bounds()
	if hi <= lo {
		return lo
	}
	return lo + rng.Intn(hi-lo+1)
}
