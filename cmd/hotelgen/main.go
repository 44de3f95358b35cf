package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"hilberthotel/internal/config"
	"hilberthotel/internal/level"
	"hilberthotel/internal/progress"
	"hilberthotel/internal/terrain"
	"hilberthotel/internal/world"
)

func main() {
	var (
		cfgPath      string
		progressPath string
		floor        string
		size         int
		quota        int
		seed         int64
		noWindows    bool
		storeAt      string
		outDir       string
		saveAs       string
		preview      bool
	)
	flag.StringVar(&cfgPath, "config", "", "path to generation configuration (JSON or YAML)")
	flag.StringVar(&progressPath, "progress", "", "path to a progression snapshot (JSON or YAML)")
	flag.StringVar(&floor, "floor", "normal", "floor kind or authored map name")
	flag.IntVar(&size, "size", 0, "floor size, 0 derives it from the floor counter")
	flag.IntVar(&quota, "quota", 0, "enemy quota, 0 derives it from the floor counter")
	flag.Int64Var(&seed, "seed", 0, "random seed, 0 picks one")
	flag.BoolVar(&noWindows, "no-windows", false, "disable window substitutions")
	flag.StringVar(&storeAt, "maps", "", "authored map store: directory or postgres:// URL, defaults to maps.store")
	flag.StringVar(&outDir, "out", "floors", "directory the floor is written to")
	flag.StringVar(&saveAs, "name", "", "saved map name, defaults to <floor>-<seed>")
	flag.BoolVar(&preview, "preview", true, "also write a PNG preview")
	flag.Parse()

	cfg, err := config.Resolve(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	state, err := progress.Load(progressPath)
	if err != nil {
		log.Fatalf("load progress: %v", err)
	}
	if storeAt == "" {
		storeAt = cfg.Maps.Store
	}
	maps, err := world.OpenMapStore(storeAt)
	if err != nil {
		log.Fatalf("open map store: %v", err)
	}
	defer maps.Close()

	opts := level.Options{Size: size, Quota: quota, Seed: seed}
	if noWindows {
		windows := false
		opts.Windows = &windows
	}

	res, err := level.New(cfg, maps, nil).Load(floor, state, opts)
	if err != nil {
		var failed *terrain.GenerationFailedError
		if errors.As(err, &failed) {
			log.Fatalf("generation failed, retry with a larger -size or another -seed: %v", err)
		}
		log.Fatalf("load floor: %v", err)
	}

	if saveAs == "" {
		saveAs = res.Name
		if res.Generated {
			saveAs = fmt.Sprintf("%s-%d", res.Name, res.Seed)
		}
	}
	out, err := world.NewDiskMapStore(outDir)
	if err != nil {
		log.Fatalf("open output directory: %v", err)
	}
	if err := out.SaveMap(saveAs, res.Grid); err != nil {
		log.Fatalf("save floor: %v", err)
	}
	fmt.Fprintf(os.Stdout, "floor %s written to %s/%s.json\n", res.Name, outDir, saveAs)

	if preview {
		path, err := world.SavePreview(res.Grid, outDir, saveAs)
		if err != nil {
			log.Fatalf("write preview: %v", err)
		}
		fmt.Fprintf(os.Stdout, "preview written to %s\n", path)
	}

	if res.Generated {
		r := res.Report
		fmt.Fprintf(os.Stdout, "kind %s size %d quota %d seed %d\n", res.Kind, res.Size, res.Quota, res.Seed)
		fmt.Fprintf(os.Stdout, "enemies %d decorations %d glowworms %d attempts %d", r.Enemies, r.Decorations, r.Glowworms, r.Attempts)
		if r.NPC != "" {
			fmt.Fprintf(os.Stdout, " npc %s", r.NPC)
		}
		fmt.Fprintln(os.Stdout)
	}
}
