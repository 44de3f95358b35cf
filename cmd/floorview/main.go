package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/gdamore/tcell/v2"

	"hilberthotel/internal/config"
	"hilberthotel/internal/level"
	"hilberthotel/internal/progress"
	"hilberthotel/internal/world"
)

func main() {
	var (
		cfgPath      string
		progressPath string
		mapPath      string
		floor        string
		seed         int64
	)
	flag.StringVar(&cfgPath, "config", "", "path to generation configuration (JSON or YAML)")
	flag.StringVar(&progressPath, "progress", "", "path to a progression snapshot (JSON or YAML)")
	flag.StringVar(&mapPath, "map", "", "authored map file to view instead of generating a floor")
	flag.StringVar(&floor, "floor", "normal", "floor kind or authored map name")
	flag.Int64Var(&seed, "seed", 0, "random seed, 0 picks one")
	flag.Parse()

	grid, title, err := loadGrid(cfgPath, progressPath, mapPath, floor, seed)
	if err != nil {
		log.Fatalf("load floor: %v", err)
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		log.Fatalf("create screen: %v", err)
	}
	if err := screen.Init(); err != nil {
		log.Fatalf("initialise screen: %v", err)
	}
	defer screen.Fini()

	newViewer(screen, grid, title).run()
}

func loadGrid(cfgPath, progressPath, mapPath, floor string, seed int64) (*world.Grid, string, error) {
	if mapPath != "" {
		f, err := os.Open(mapPath)
		if err != nil {
			return nil, "", err
		}
		defer f.Close()
		grid, err := world.DecodeMap(f)
		if err != nil {
			return nil, "", err
		}
		return grid, mapPath, nil
	}

	cfg, err := config.Resolve(cfgPath)
	if err != nil {
		return nil, "", err
	}
	state, err := progress.Load(progressPath)
	if err != nil {
		return nil, "", err
	}
	store, err := world.OpenMapStore(cfg.Maps.Store)
	if err != nil {
		return nil, "", err
	}
	defer store.Close()

	res, err := level.New(cfg, store, nil).Load(floor, state, level.Options{Seed: seed})
	if err != nil {
		return nil, "", err
	}
	title := res.Name
	if res.Generated {
		title = fmt.Sprintf("%s (%s) seed %d", res.Name, res.Kind, res.Seed)
	}
	return res.Grid, title, nil
}
