package terrain

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"hilberthotel/internal/config"
	"hilberthotel/internal/progress"
	"hilberthotel/internal/world"
)

func testContext(floors map[string]int, met ...string) *Context {
	state := progress.New()
	for k, v := range floors {
		state.Floors[k] = v
	}
	for _, name := range met {
		state.Met.Put(name)
	}
	return NewContext(config.Default(), state)
}

func TestEligibleNPC(t *testing.T) {
	tests := []struct {
		name   string
		floor  string
		floors map[string]int
		met    []string
		want   string
	}{
		{name: "below threshold", floor: "normal", floors: map[string]int{"normal": 7}},
		{name: "noether", floor: "normal", floors: map[string]int{"normal": 8}, want: "Noether"},
		{name: "noether already met", floor: "normal", floors: map[string]int{"normal": 11}, met: []string{"Noether"}, want: "Curie"},
		{name: "wrong floor", floor: "spooky", floors: map[string]int{"normal": 20}},
		{name: "franklin", floor: "spooky", floors: map[string]int{"spooky": 11}, want: "Franklin"},
		{name: "rubik", floor: "rubiks", floors: map[string]int{"rubiks": 2}, want: "Rubik"},
		{name: "melatos", floor: "aussie", floors: map[string]int{"aussie": 6}, want: "Melatos"},
		{name: "cantor anywhere", floor: "grass", floors: map[string]int{"infinite": 4}, want: "Cantor"},
		{
			name:   "everyone on normal met",
			floor:  "normal",
			floors: map[string]int{"normal": 30, "infinite": 4},
			met:    []string{"Noether", "Curie", "Planck", "Lorenz"},
			want:   "Cantor",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := testContext(tt.floors, tt.met...)
			gate, ok := eligibleNPC(ctx.Progress, tt.floor)
			if tt.want == "" {
				if ok {
					t.Fatalf("expected no NPC, got %s", gate.Name)
				}
				return
			}
			if !ok || gate.Name != tt.want {
				t.Fatalf("got %q (%v), want %s", gate.Name, ok, tt.want)
			}
		})
	}
}

func TestNPCVariant(t *testing.T) {
	if v, ok := NPCVariant("Lorenz"); !ok || v != 11 {
		t.Fatalf("Lorenz variant %d (%v)", v, ok)
	}
	if _, ok := NPCVariant("Euler"); ok {
		t.Fatalf("unexpected variant for unknown character")
	}
}

func generated(t *testing.T, ctx *Context, kind world.TileKind, size int, seed int64) (*world.Grid, CarveParams) {
	t.Helper()
	rng := rand.New(rand.NewSource(seed))
	raw, params, err := Carve(kind, size, rng)
	if err != nil {
		t.Fatalf("carve: %v", err)
	}
	grid := world.NewGrid(world.DefaultTileSize, params.MapSize)
	raw.Emit(grid, kind)
	Autotile(grid, rng, AutotileOptions{Variants: ctx.Variants})
	return grid, params
}

func TestPopulatePlacesMandatoriesOnce(t *testing.T) {
	ctx := testContext(map[string]int{"normal": 3})
	for seed := int64(1); seed <= 5; seed++ {
		grid, params := generated(t, ctx, world.KindNormal, 15, seed)
		report := Populate(grid, ctx, rand.New(rand.NewSource(seed)), world.KindNormal, params.Size, 3)

		if missing := report.Missing(); len(missing) != 0 {
			t.Fatalf("seed %d: missing %v", seed, missing)
		}
		if n := grid.CountKind(world.KindSpawners, markerPlayer); n != 1 {
			t.Fatalf("seed %d: %d player spawns", seed, n)
		}
		if n := grid.CountKind(world.KindSpawnersPortal, markerPortal); n != 1 {
			t.Fatalf("seed %d: %d exit portals", seed, n)
		}
		if n := grid.CountKind(world.KindSpawnersPortal, markerInfinitePortal); n != 0 {
			t.Fatalf("seed %d: infinite portal outside infinite mode", seed)
		}
		if report.Enemies < 3 {
			t.Fatalf("seed %d: placed %d enemies, want 3", seed, report.Enemies)
		}
	}
}

func TestPopulateMarkersStandOnSupport(t *testing.T) {
	ctx := testContext(map[string]int{"normal": 5})
	grid, params := generated(t, ctx, world.KindNormal, 20, 8)
	Populate(grid, ctx, rand.New(rand.NewSource(8)), world.KindNormal, params.Size, 5)

	for _, tile := range grid.Cells() {
		if tile.Kind != world.KindSpawners && tile.Kind != world.KindSpawnersPortal {
			continue
		}
		if tile.Cell.X < Buffer || tile.Cell.X >= params.MapSize-Buffer || tile.Cell.Y < Buffer || tile.Cell.Y >= params.MapSize-Buffer {
			t.Fatalf("marker %+v outside interior", tile)
		}
		if !grid.IsPhysicsTile([]world.Cell{tile.Cell}, belowOffset, world.ModeAny) {
			t.Fatalf("marker %+v floats", tile)
		}
	}
}

func TestPopulateInfiniteMode(t *testing.T) {
	ctx := testContext(map[string]int{"infinite": 2})
	ctx.Progress.Infinite = true
	grid, params := generated(t, ctx, world.KindGrass, 15, 4)
	report := Populate(grid, ctx, rand.New(rand.NewSource(4)), world.KindGrass, params.Size, 2)

	if !report.InfiniteRequired || !report.InfinitePortal {
		t.Fatalf("unexpected report %+v", report)
	}
	if n := grid.CountKind(world.KindSpawnersPortal, markerInfinitePortal); n != 1 {
		t.Fatalf("%d infinite portals", n)
	}
}

func TestPopulatePlacesOneNPC(t *testing.T) {
	ctx := testContext(map[string]int{"normal": 20, "infinite": 5})
	grid, params := generated(t, ctx, world.KindNormal, 20, 2)
	report := Populate(grid, ctx, rand.New(rand.NewSource(2)), world.KindNormal, params.Size, 4)

	if report.NPC != "Noether" {
		t.Fatalf("placed NPC %q, want Noether", report.NPC)
	}
	placed := 0
	for _, gate := range npcGates {
		placed += grid.CountKind(world.KindSpawners, gate.Variant)
	}
	if placed != 1 {
		t.Fatalf("%d NPC spawners placed", placed)
	}
}

func TestPopulateEmptyEnemyTableStopsAfterMandatories(t *testing.T) {
	ctx := testContext(map[string]int{"normal": 20})
	ctx.Enemies = map[world.TileKind]config.EnemyTable{}
	grid, params := generated(t, ctx, world.KindNormal, 20, 2)
	report := Populate(grid, ctx, rand.New(rand.NewSource(2)), world.KindNormal, params.Size, 4)

	if !report.Player || !report.Portal {
		t.Fatalf("mandatories missing: %+v", report)
	}
	if report.Enemies != 0 || report.NPC != "" {
		t.Fatalf("expected only mandatory markers, got %+v", report)
	}
}

func TestPopulateWithoutSupportReportsMissing(t *testing.T) {
	ctx := testContext(nil)
	grid := world.NewGrid(world.DefaultTileSize, 46)
	report := Populate(grid, ctx, rand.New(rand.NewSource(1)), world.KindNormal, 10, 1)

	if report.Attempts != defaultAttemptCap {
		t.Fatalf("attempts %d, want %d", report.Attempts, defaultAttemptCap)
	}
	missing := report.Missing()
	if len(missing) != 2 || missing[0] != MandatoryPlayer || missing[1] != MandatoryPortal {
		t.Fatalf("unexpected missing %v", missing)
	}
	if len(grid.Offgrid) != report.Glowworms || report.Glowworms != ctx.GlowwormCap {
		t.Fatalf("expected %d glowworms, report %+v", ctx.GlowwormCap, report)
	}
}

func TestGenerateFailsWhenAttemptsRunOut(t *testing.T) {
	ctx := testContext(map[string]int{"normal": 1})
	ctx.AttemptCap = 1
	grid, report, err := Generate(world.KindNormal, 10, 1, ctx, rand.New(rand.NewSource(42)))

	var failed *GenerationFailedError
	if !errors.As(err, &failed) {
		t.Fatalf("expected GenerationFailedError, got %v", err)
	}
	if grid == nil {
		t.Fatalf("expected the partial grid to be returned")
	}
	if len(failed.Missing) == 0 || failed.Missing[len(failed.Missing)-1] != MandatoryPortal {
		t.Fatalf("unexpected missing %v", failed.Missing)
	}
	if report.Portal {
		t.Fatalf("portal placed within a single attempt")
	}
}

func TestDecorateRespectsGeometry(t *testing.T) {
	ctx := testContext(nil)
	ctx.Floors = map[world.TileKind]config.FloorSpec{
		world.KindStone: {
			DecorationMod: 1,
			Decorations: []config.DecorationRule{{
				Kind:         world.KindDecor,
				Variants:     []int{6, 7},
				Weight:       1,
				EmptyOffsets: []config.Pair{{0, 0}},
				SupportMode:  world.ModeAll,
				Support:      []config.Pair{{0, 1}},
			}},
		},
	}

	grid := world.NewGrid(world.DefaultTileSize, 46)
	for x := Buffer; x < 46-Buffer; x++ {
		c := world.Cell{X: x, Y: 27}
		grid.Set(c, world.TileCell{Kind: world.KindStone, Variant: 1, Cell: c})
	}

	placed := decorate(grid, ctx, rand.New(rand.NewSource(1)), interiorOf(grid), world.KindStone, 50)
	if placed != 10 {
		t.Fatalf("placed %d decorations, want 10", placed)
	}
	for _, item := range grid.Offgrid {
		if item.Kind != world.KindDecor || (item.Variant != 6 && item.Variant != 7) {
			t.Fatalf("unexpected item %+v", item)
		}
		if item.Pos.Y != 26*16 {
			t.Fatalf("decoration %+v not resting on the floor row", item)
		}
	}
}

func TestDecorateNeedsEveryEmptyOffsetClear(t *testing.T) {
	ctx := testContext(nil)
	ctx.Floors = map[world.TileKind]config.FloorSpec{
		world.KindStone: {
			DecorationMod: 1,
			Decorations: []config.DecorationRule{{
				Kind:         world.KindDecor,
				Variants:     []int{6},
				Weight:       1,
				EmptyOffsets: []config.Pair{{0, 0}, {0, -1}},
				SupportMode:  world.ModeAll,
				Support:      []config.Pair{{0, 1}},
				JitterX:      config.Pair{-3, 3},
			}},
		},
	}

	// Floor at y=27 and a ceiling at y=25 leave a one cell gap at y=26.
	grid := world.NewGrid(world.DefaultTileSize, 46)
	for x := Buffer; x < 46-Buffer; x++ {
		for _, y := range []int{25, 27} {
			c := world.Cell{X: x, Y: y}
			grid.Set(c, world.TileCell{Kind: world.KindStone, Variant: 1, Cell: c})
		}
	}

	placed := decorate(grid, ctx, rand.New(rand.NewSource(3)), interiorOf(grid), world.KindStone, 500)
	if placed != 100 {
		t.Fatalf("placed %d decorations, want 100", placed)
	}
	seen := make(map[int]bool)
	for _, item := range grid.Offgrid {
		if item.Pos.Y != 24*16 {
			t.Fatalf("decoration %+v placed outside the row above the ceiling", item)
		}
		x := int(math.Round(item.Pos.X / 16))
		jx := int(item.Pos.X) - x*16
		if jx < -3 || jx > 3 {
			t.Fatalf("decoration %+v jittered by %d", item, jx)
		}
		seen[jx] = true
	}
	if !seen[-3] || !seen[3] {
		t.Fatalf("jitter range bounds never drawn: %v", seen)
	}
}

func TestWeightedIndex(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	if idx := weightedIndex(rng, []float64{0, 0}); idx != -1 {
		t.Fatalf("zero weights picked %d", idx)
	}
	for i := 0; i < 100; i++ {
		if idx := weightedIndex(rng, []float64{0, 2, 0}); idx != 1 {
			t.Fatalf("picked %d, want 1", idx)
		}
	}
	counts := make([]int, 2)
	for i := 0; i < 10000; i++ {
		counts[weightedIndex(rng, []float64{0.9, 0.1})]++
	}
	if counts[0] < 8500 || counts[0] > 9500 {
		t.Fatalf("unexpected distribution %v", counts)
	}
}
