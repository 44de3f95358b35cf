package config

import (
	"time"

	"hilberthotel/internal/world"
)

// Default returns the built-in tables so that the pipeline can run without
// any configuration file.
func Default() *Config {
	return &Config{
		Generation: GenerationConfig{
			TileSize:    world.DefaultTileSize,
			AttemptCap:  5000,
			GlowwormCap: 15,
			Windows:     true,
		},
		Tiles:   DefaultTiles(),
		Floors:  DefaultFloors(),
		Enemies: DefaultEnemies(),
		Server: ServerConfig{
			ListenAddress:   ":28090",
			WriteTimeout:    Duration(5 * time.Second),
			MaxMessageBytes: 1 << 16,
			SendBuffer:      16,
		},
	}
}

// DefaultTiles returns the sprite variant count of every kind.
func DefaultTiles() map[world.TileKind]int {
	return map[world.TileKind]int{
		world.KindGrass:          10,
		world.KindStone:          12,
		world.KindNormal:         13,
		world.KindSpooky:         16,
		world.KindRubiks:         6,
		world.KindAussie:         12,
		world.KindSpace:          16,
		world.KindCracked:        5,
		world.KindDecor:          12,
		world.KindPotplants:      6,
		world.KindLargeDecor:     6,
		world.KindSpawners:       25,
		world.KindSpawnersPortal: 6,
	}
}

// DefaultEnemies returns the enemy spawner tables per floor kind.
func DefaultEnemies() map[world.TileKind]EnemyTable {
	return map[world.TileKind]EnemyTable{
		world.KindNormal: {Variants: []int{1, 2, 3}, Weights: []float64{0.6, 0.3, 0.1}},
		world.KindGrass:  {Variants: []int{1, 2, 4}, Weights: []float64{0.5, 0.3, 0.2}},
		world.KindStone:  {Variants: []int{3, 4}, Weights: []float64{0.5, 0.5}},
		world.KindSpooky: {Variants: []int{9, 10, 12}, Weights: []float64{0.5, 0.3, 0.2}},
		world.KindRubiks: {Variants: []int{15, 18}, Weights: []float64{0.7, 0.3}},
		world.KindAussie: {Variants: []int{19, 20, 22}, Weights: []float64{0.4, 0.4, 0.2}},
		world.KindSpace:  {Variants: []int{13, 23}, Weights: []float64{0.6, 0.4}},
	}
}

var (
	onFloor    = []Pair{{0, 1}}
	onCeiling  = []Pair{{0, -1}}
	singleCell = []Pair{{0, 0}}
	wideCell   = []Pair{{0, 0}, {1, 0}, {0, -1}, {1, -1}}
	wideFloor  = []Pair{{0, 1}, {1, 1}}
)

func floorDecor(variants []int, weight float64) DecorationRule {
	return DecorationRule{
		Kind:         world.KindDecor,
		Variants:     variants,
		Weight:       weight,
		EmptyOffsets: singleCell,
		SupportMode:  world.ModeAny,
		Support:      onFloor,
		JitterX:      Pair{-3, 3},
		JitterY:      Pair{0, 0},
	}
}

func ceilingDecor(variants []int, weight float64) DecorationRule {
	return DecorationRule{
		Kind:         world.KindDecor,
		Variants:     variants,
		Weight:       weight,
		EmptyOffsets: singleCell,
		SupportMode:  world.ModeAny,
		Support:      onCeiling,
		JitterX:      Pair{-4, 4},
		JitterY:      Pair{0, 0},
	}
}

func potplants(weight float64) DecorationRule {
	return DecorationRule{
		Kind:         world.KindPotplants,
		Variants:     []int{0, 1, 2, 3, 4, 5},
		Weight:       weight,
		EmptyOffsets: singleCell,
		SupportMode:  world.ModeAll,
		Support:      onFloor,
		JitterX:      Pair{-2, 2},
		JitterY:      Pair{0, 0},
	}
}

func largeDecor(variants []int, weight float64) DecorationRule {
	return DecorationRule{
		Kind:         world.KindLargeDecor,
		Variants:     variants,
		Weight:       weight,
		EmptyOffsets: wideCell,
		SupportMode:  world.ModeAll,
		Support:      wideFloor,
		JitterX:      Pair{0, 0},
		JitterY:      Pair{0, 0},
	}
}

// DefaultFloors returns the decoration rules per floor kind.
func DefaultFloors() map[world.TileKind]FloorSpec {
	return map[world.TileKind]FloorSpec{
		world.KindNormal: {
			DecorationMod: 1.0,
			Decorations: []DecorationRule{
				floorDecor([]int{0, 1, 2, 3}, 3),
				ceilingDecor([]int{8, 9}, 1),
				potplants(2),
				largeDecor([]int{0, 1}, 1),
			},
		},
		world.KindGrass: {
			DecorationMod: 1.5,
			Decorations: []DecorationRule{
				floorDecor([]int{4, 5}, 4),
				potplants(1),
			},
		},
		world.KindStone: {
			DecorationMod: 0.5,
			Decorations: []DecorationRule{
				floorDecor([]int{6, 7}, 1),
			},
		},
		world.KindSpooky: {
			DecorationMod: 1.2,
			Decorations: []DecorationRule{
				floorDecor([]int{6, 7}, 2),
				ceilingDecor([]int{10, 11}, 3),
				largeDecor([]int{2, 3}, 1),
			},
		},
		world.KindRubiks: {
			DecorationMod: 0.8,
			Decorations: []DecorationRule{
				floorDecor([]int{0, 1}, 1),
			},
		},
		world.KindAussie: {
			DecorationMod: 1.0,
			Decorations: []DecorationRule{
				floorDecor([]int{2, 3, 4}, 2),
				largeDecor([]int{4, 5}, 1),
			},
		},
		world.KindSpace: {
			DecorationMod: 0.7,
			Decorations: []DecorationRule{
				ceilingDecor([]int{8, 9, 10}, 1),
				floorDecor([]int{0, 1}, 1),
			},
		},
	}
}
