// Package level turns a floor name into a playable map: procedurally
// generated floors for the hotel's floor kinds, hand-authored maps for
// lobbies, the editor and every tenth floor's boss.
package level

import (
	"fmt"
	"log"
	"math"
	"math/rand"
	"time"

	"hilberthotel/internal/config"
	"hilberthotel/internal/progress"
	"hilberthotel/internal/terrain"
	"hilberthotel/internal/world"
)

const (
	bossInterval     = 10
	infiniteSizeStep = 5
	bossSuffix       = "_boss"
)

// floorNames are the names that produce generated floors.
var floorNames = map[string]bool{
	progress.FloorNormal:   true,
	progress.FloorGrass:    true,
	progress.FloorStone:    true,
	progress.FloorSpooky:   true,
	progress.FloorRubiks:   true,
	progress.FloorAussie:   true,
	progress.FloorSpace:    true,
	progress.FloorInfinite: true,
}

// IsFloorName reports whether name selects a generated floor kind.
func IsFloorName(name string) bool {
	return floorNames[name]
}

// Options override the values derived from the progression counters. Zero
// values keep the derived ones.
type Options struct {
	Size    int
	Quota   int
	Seed    int64
	Windows *bool
}

// Result is a loaded floor.
type Result struct {
	Name      string
	Map       string // authored map name, empty for generated floors
	Kind      world.TileKind
	Generated bool
	Seed      int64
	Size      int
	Quota     int
	Report    terrain.PlacementReport
	Grid      *world.Grid
}

// Pipeline loads floors by name. It is safe for concurrent use; every
// generated floor gets its own grid and random source.
type Pipeline struct {
	cfg    *config.Config
	store  world.MapStore
	logger *log.Logger
}

func New(cfg *config.Config, store world.MapStore, logger *log.Logger) *Pipeline {
	if cfg == nil {
		cfg = config.Default()
	}
	if store == nil {
		store = world.NewMemoryMapStore()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Pipeline{cfg: cfg, store: store, logger: logger}
}

// Maps lists the authored maps available to Load.
func (p *Pipeline) Maps() ([]string, error) {
	return p.store.Names()
}

// FloorBudget derives the floor size and enemy quota from the progression
// counter of a floor kind.
func FloorBudget(name string, counter int) (size, quota int) {
	q := max(counter, 1)
	size = int(5*math.Log(float64(q*q)) + 13 + float64(q)/4)
	quota = counter
	if name == progress.FloorInfinite {
		quota *= 2
		size += infiniteSizeStep
	}
	return size, quota
}

// Load resolves name against the progression snapshot. Floor kinds are
// generated unless their counter is a multiple of ten, in which case the
// authored "<name>_boss" map is loaded; any other name loads the authored map
// of that name.
func (p *Pipeline) Load(name string, state *progress.State, opts Options) (*Result, error) {
	if state == nil {
		state = progress.New()
	}
	if !IsFloorName(name) {
		return p.loadAuthored(name, name)
	}

	counter := state.Floor(name)
	if name == progress.FloorInfinite {
		counter++
	}
	if counter%bossInterval == 0 {
		return p.loadAuthored(name, name+bossSuffix)
	}
	return p.generate(name, counter, state, opts)
}

func (p *Pipeline) loadAuthored(name, mapName string) (*Result, error) {
	grid, err := p.store.LoadMap(mapName)
	if err != nil {
		return nil, fmt.Errorf("floor %s: %w", name, err)
	}
	p.logger.Printf("floor %s: loaded authored map %s (%d tiles)", name, mapName, grid.Len())
	return &Result{Name: name, Map: mapName, Grid: grid}, nil
}

func (p *Pipeline) generate(name string, counter int, state *progress.State, opts Options) (*Result, error) {
	size, quota := FloorBudget(name, counter)
	if opts.Size > 0 {
		size = opts.Size
	}
	if opts.Quota > 0 {
		quota = opts.Quota
	}
	seed := opts.Seed
	if seed == 0 {
		seed = p.cfg.Generation.Seed
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	kind := world.TileKind(name)
	if name == progress.FloorInfinite {
		kind = world.AutoTileKinds[rng.Intn(len(world.AutoTileKinds))]
	}

	ctx := terrain.NewContext(p.cfg, state).ForFloor(name)
	if opts.Windows != nil {
		ctx.Windows = *opts.Windows
	}

	start := time.Now()
	grid, report, err := terrain.Generate(kind, size, quota, ctx, rng)
	if err != nil {
		return nil, fmt.Errorf("load floor %s: %w", name, err)
	}
	p.logger.Printf("floor %s: generated %s floor size %d quota %d seed %d in %s",
		name, kind, size, quota, seed, time.Since(start).Round(time.Millisecond))

	return &Result{
		Name:      name,
		Kind:      kind,
		Generated: true,
		Seed:      seed,
		Size:      size,
		Quota:     quota,
		Report:    report,
		Grid:      grid,
	}, nil
}
