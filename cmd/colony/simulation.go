package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/daniacca/colony/internal/census"
	"github.com/daniacca/colony/internal/colony"
	"github.com/daniacca/colony/internal/config"
	"github.com/daniacca/colony/internal/logging"
	"github.com/daniacca/colony/internal/render"
)

// historyLimit bounds the in-memory census used for the shutdown summary.
const historyLimit = 100000

// simulation ties one world to its display ticks and census.
type simulation struct {
	world    *colony.World
	settings *config.Config
	logger   *logging.Logger
	recorder *census.Recorder
	history  *census.History
	ids      []colony.SpeciesID
	started  time.Time
	ticks    int
}

func newSimulation(settings *config.Config, logger *logging.Logger) (*simulation, error) {
	topology, err := settings.Topology()
	if err != nil {
		return nil, err
	}
	traits, err := settings.TraitTable()
	if err != nil {
		return nil, err
	}

	recorder, err := census.NewRecorder(settings.Census.Path, settings.Census.Compress)
	if err != nil {
		return nil, err
	}

	world, err := colony.NewWorld(colony.Options{
		Name:     "colony",
		Topology: topology,
		Traits:   traits,
		Logger:   logger,
	})
	if err != nil {
		_ = recorder.Close()
		return nil, err
	}

	ids := make([]colony.SpeciesID, 0, traits.Len())
	for _, sp := range traits.Species() {
		ids = append(ids, sp.ID)
	}

	return &simulation{
		world:    world,
		settings: settings,
		logger:   logger,
		recorder: recorder,
		history:  census.NewHistory(historyLimit),
		ids:      ids,
		started:  time.Now(),
	}, nil
}

// tick takes the snapshot for one display frame and samples the census.
func (s *simulation) tick() colony.Snapshot {
	snap := s.world.Snapshot()
	if s.ticks%s.settings.Census.Every == 0 {
		rec := census.FromSnapshot(s.ticks, time.Since(s.started), snap, s.ids)
		s.history.Add(rec)
		if err := s.recorder.Write(rec); err != nil {
			s.logger.Warnf("Census write failed: %v", err)
		}
	}
	s.ticks++
	return snap
}

// runText prints a frame every display interval until ctx ends.
func (s *simulation) runText(ctx context.Context, out io.Writer) error {
	ticker := time.NewTicker(s.settings.Display.Interval)
	defer ticker.Stop()

	for {
		if err := render.Text(out, s.tick()); err != nil {
			return fmt.Errorf("writing grid: %w", err)
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// shutdown stops the world, waits for every lifecycle and closes the census.
func (s *simulation) shutdown() error {
	s.world.Stop()

	done := make(chan struct{})
	go func() {
		s.world.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		s.logger.Warnf("Timed out waiting for entities to finish")
	}

	stats := s.world.Stats()
	s.logger.Infof("Simulation finished: ticks=%d births=%d deaths=%d murders=%d cancellations=%d",
		s.ticks, stats.Births, stats.Deaths, stats.Murders, stats.Cancellations)
	s.logger.Infof("Census summary: %s", s.history.Summary())

	path := s.recorder.Path()
	if err := s.recorder.Close(); err != nil {
		return fmt.Errorf("closing census: %w", err)
	}
	if path != "" {
		s.logger.Infof("Census written: path=%s records=%d", path, s.recorder.Written())
	}
	return nil
}
