package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gdamore/tcell/v2"

	"github.com/daniacca/colony/internal/config"
	"github.com/daniacca/colony/internal/logging"
	"github.com/daniacca/colony/internal/render"
)

func main() {
	cfg, err := loadCommandConfig(os.Args[1:], os.Getenv)
	if err != nil {
		fmt.Fprintf(os.Stderr, "colony: %v\n", err)
		os.Exit(1)
	}

	if cfg.DumpConfig != "" {
		if err := cfg.Settings.WriteYAML(cfg.DumpConfig); err != nil {
			fmt.Fprintf(os.Stderr, "colony: %v\n", err)
			os.Exit(1)
		}
		return
	}

	logger := logging.New(cfg.Settings.Log.Level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if cfg.Duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Duration)
		defer cancel()
	}

	sim, err := newSimulation(cfg.Settings, logger)
	if err != nil {
		logger.Fatalf("Failed to start simulation: %v", err)
	}

	switch cfg.Settings.Display.Mode {
	case config.DisplayTerminal:
		err = runTerminal(ctx, sim, cfg)
	default:
		err = sim.runText(ctx, os.Stdout)
	}
	if err != nil {
		logger.Errorf("Display failed: %v", err)
	}

	if err := sim.shutdown(); err != nil {
		logger.Errorf("Shutdown: %v", err)
		os.Exit(1)
	}
}

func runTerminal(ctx context.Context, sim *simulation, cfg commandConfig) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("creating screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("initializing screen: %w", err)
	}
	defer screen.Fini()

	term := render.NewTerminal(screen, sim.world.Traits())
	term.SetInvert(cfg.Invert)
	return term.Run(ctx, cfg.Settings.Display.Interval, sim.tick)
}
