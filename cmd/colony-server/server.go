package main

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/daniacca/colony/internal/census"
	"github.com/daniacca/colony/internal/colony"
	"github.com/daniacca/colony/internal/colony/notifiers"
	"github.com/daniacca/colony/internal/logging"
)

const (
	// eventsNotifierID names the built-in notifier behind GET /events.
	eventsNotifierID = "events"

	censusHistoryLimit = 10000
)

// Server observes the worlds it hosts over HTTP. Worlds run on their own;
// clients only read snapshots, census data and lifecycle events.
type Server struct {
	manager        *colony.WorldManager
	notifierMgr    *colony.NotificationManager
	events         *notifiers.WebSocketNotifier
	streamInterval time.Duration
	upgrader       websocket.Upgrader
	logger         *logging.Logger

	mu        sync.RWMutex
	histories map[colony.WorldID]*census.History

	ctx      context.Context
	cancel   context.CancelFunc
	samplers sync.WaitGroup
}

// NewServer creates a server whose worlds publish lifecycle events to every
// registered notifier, including the built-in /events stream.
func NewServer(logger *logging.Logger, traits *colony.TraitTable, streamInterval time.Duration) *Server {
	notifierMgr := colony.NewNotificationManagerWithLogger(logger)

	events := notifiers.NewWebSocketNotifier(eventsNotifierID)
	if err := notifierMgr.RegisterNotifier(events); err != nil {
		logger.Errorf("Failed to register events notifier: %v", err)
	}

	manager := colony.NewWorldManagerWithLogger(logger)
	manager.SetEventSink(notifierMgr)
	if traits != nil {
		manager.SetTraits(traits)
	}

	if streamInterval <= 0 {
		streamInterval = 500 * time.Millisecond
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		manager:        manager,
		notifierMgr:    notifierMgr,
		events:         events,
		streamInterval: streamInterval,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		logger:    logger,
		histories: make(map[colony.WorldID]*census.History),
		ctx:       ctx,
		cancel:    cancel,
	}
}

// CreateWorld seeds a new world and starts sampling its census.
func (s *Server) CreateWorld(id colony.WorldID, topology colony.Topology) (*colony.World, error) {
	w, err := s.manager.CreateWorld(id, topology)
	if err != nil {
		return nil, err
	}

	hist := census.NewHistory(censusHistoryLimit)
	s.mu.Lock()
	s.histories[id] = hist
	s.mu.Unlock()

	s.samplers.Add(1)
	go s.sample(w, hist)

	s.logger.Infof("World created: world_id=%s topology=%s", id, topology.Name())
	return w, nil
}

// DeleteWorld stops a world and forgets its census.
func (s *Server) DeleteWorld(id colony.WorldID) error {
	if err := s.manager.DeleteWorld(id); err != nil {
		return err
	}
	s.mu.Lock()
	delete(s.histories, id)
	s.mu.Unlock()
	s.logger.Infof("World deleted: world_id=%s", id)
	return nil
}

func (s *Server) history(id colony.WorldID) (*census.History, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	h, ok := s.histories[id]
	return h, ok
}

// sample records the census of w every stream interval until w stops.
func (s *Server) sample(w *colony.World, hist *census.History) {
	defer s.samplers.Done()

	ids := w.Traits().IDs()
	started := time.Now()
	ticker := time.NewTicker(s.streamInterval)
	defer ticker.Stop()

	for tick := 0; ; tick++ {
		hist.Add(census.FromSnapshot(tick, time.Since(started), w.Snapshot(), ids))
		select {
		case <-w.Done():
			return
		case <-s.ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// Close stops every world, the samplers and the notifiers.
func (s *Server) Close() error {
	s.cancel()
	s.manager.Close()
	s.samplers.Wait()
	return s.notifierMgr.Close()
}
