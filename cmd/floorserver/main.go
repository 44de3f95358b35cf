package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hilberthotel/internal/config"
	"hilberthotel/internal/level"
	"hilberthotel/internal/network"
	"hilberthotel/internal/world"
)

func main() {
	var (
		cfgPath string
		listen  string
	)
	flag.StringVar(&cfgPath, "config", "", "path to floor server configuration file")
	flag.StringVar(&listen, "listen", "", "listen address, overrides server.listenAddress")
	flag.Parse()

	cfg, err := config.Resolve(cfgPath)
	if err != nil {
		if cfgPath == "" || !errors.Is(err, os.ErrNotExist) {
			log.Fatalf("load config: %v", err)
		}
		if err := config.WriteFile(cfgPath, config.Default()); err != nil {
			log.Fatalf("write default config: %v", err)
		}
		log.Printf("no configuration found, default configuration written to %s", cfgPath)
		if cfg, err = config.Load(cfgPath); err != nil {
			log.Fatalf("load config: %v", err)
		}
	}
	if listen != "" {
		cfg.Server.ListenAddress = listen
	}

	store, err := world.OpenMapStore(cfg.Maps.Store)
	if err != nil {
		log.Fatalf("open map store: %v", err)
	}
	defer store.Close()

	logger := log.New(log.Writer(), "floorserver ", log.LstdFlags|log.Lmicroseconds)
	pipeline := level.New(cfg, store, logger)
	srv := network.NewServer(pipeline, cfg.Server, logger)

	ctx, cancel := signalContext()
	defer cancel()

	if err := srv.Run(ctx, cfg.Server.ListenAddress); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("server exited with error: %v", err)
	}
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		defer signal.Stop(signals)
		select {
		case <-signals:
			cancel()
		case <-ctx.Done():
		}

		// Ensure the process terminates if shutdown stalls.
		time.AfterFunc(10*time.Second, func() {
			log.Printf("forced shutdown after timeout")
			os.Exit(1)
		})
	}()

	return ctx, cancel
}
