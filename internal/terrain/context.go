package terrain

import (
	"hilberthotel/internal/config"
	"hilberthotel/internal/progress"
	"hilberthotel/internal/world"
)

// Context is the read-only input shared by the generation passes. Nothing in
// this package writes to it.
type Context struct {
	Progress *progress.State
	// Floor names the floor being generated and drives NPC gating. Empty
	// means the carved kind.
	Floor       string
	Floors      map[world.TileKind]config.FloorSpec
	Enemies     map[world.TileKind]config.EnemyTable
	Variants    map[world.TileKind]int
	TileSize    int
	AttemptCap  int
	GlowwormCap int
	Windows     bool
}

// NewContext binds a progression snapshot to the configured tables. A nil
// state is treated as a fresh game.
func NewContext(cfg *config.Config, state *progress.State) *Context {
	if cfg == nil {
		cfg = config.Default()
	}
	if state == nil {
		state = progress.New()
	}
	return &Context{
		Progress:    state,
		Floors:      cfg.Floors,
		Enemies:     cfg.Enemies,
		Variants:    cfg.Tiles,
		TileSize:    cfg.Generation.TileSize,
		AttemptCap:  cfg.Generation.AttemptCap,
		GlowwormCap: cfg.Generation.GlowwormCap,
		Windows:     cfg.Generation.Windows,
	}
}

// ForFloor returns a copy of the context generating the named floor.
func (c *Context) ForFloor(name string) *Context {
	clone := *c
	clone.Floor = name
	return &clone
}

func (c *Context) floorName(kind world.TileKind) string {
	if c.Floor != "" {
		return c.Floor
	}
	return string(kind)
}

func (c *Context) attemptCap() int {
	if c.AttemptCap <= 0 {
		return defaultAttemptCap
	}
	return c.AttemptCap
}

func (c *Context) tileSize() int {
	if c.TileSize <= 0 {
		return world.DefaultTileSize
	}
	return c.TileSize
}

func (c *Context) progress() *progress.State {
	if c.Progress == nil {
		return progress.New()
	}
	return c.Progress
}
