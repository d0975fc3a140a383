package colony

import (
	"fmt"
	"sort"
	"sync"
)

// WorldID is a unique identifier for a world
type WorldID string

// WorldManager manages multiple named worlds, each isolated from the others
type WorldManager struct {
	mu     sync.RWMutex
	worlds map[WorldID]*World
	logger Logger
	events EventSink
	traits *TraitTable
}

// NewWorldManager creates a new world manager
func NewWorldManager() *WorldManager {
	return NewWorldManagerWithLogger(NewNoOpLogger())
}

// NewWorldManagerWithLogger creates a world manager whose worlds log through logger
func NewWorldManagerWithLogger(logger Logger) *WorldManager {
	return &WorldManager{
		worlds: make(map[WorldID]*World),
		logger: logger,
	}
}

// SetEventSink sets the sink handed to worlds created afterwards
func (wm *WorldManager) SetEventSink(sink EventSink) {
	wm.mu.Lock()
	defer wm.mu.Unlock()
	wm.events = sink
}

// SetTraits sets the trait table handed to worlds created afterwards
func (wm *WorldManager) SetTraits(traits *TraitTable) {
	wm.mu.Lock()
	defer wm.mu.Unlock()
	wm.traits = traits
}

// CreateWorld creates and seeds a new world with the given ID and topology.
// Returns an error if a world with that ID already exists
func (wm *WorldManager) CreateWorld(id WorldID, topology Topology) (*World, error) {
	wm.mu.Lock()
	defer wm.mu.Unlock()

	if _, exists := wm.worlds[id]; exists {
		return nil, fmt.Errorf("world with id %s already exists", id)
	}

	w, err := NewWorld(Options{
		Name:     string(id),
		Topology: topology,
		Traits:   wm.traits,
		Logger:   wm.logger,
		Events:   wm.events,
	})
	if err != nil {
		return nil, fmt.Errorf("cannot create world %s: %w", id, err)
	}
	wm.worlds[id] = w
	return w, nil
}

// GetWorld retrieves a world by ID
func (wm *WorldManager) GetWorld(id WorldID) (*World, bool) {
	wm.mu.RLock()
	defer wm.mu.RUnlock()

	w, exists := wm.worlds[id]
	return w, exists
}

// DeleteWorld stops and removes a world by ID
func (wm *WorldManager) DeleteWorld(id WorldID) error {
	wm.mu.Lock()
	w, exists := wm.worlds[id]
	if exists {
		delete(wm.worlds, id)
	}
	wm.mu.Unlock()

	if !exists {
		return fmt.Errorf("world with id %s does not exist", id)
	}

	w.Stop()
	return nil
}

// ListWorlds returns all world IDs, sorted
func (wm *WorldManager) ListWorlds() []WorldID {
	wm.mu.RLock()
	defer wm.mu.RUnlock()

	ids := make([]WorldID, 0, len(wm.worlds))
	for id := range wm.worlds {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Close stops every world and waits for all lifecycles to end
func (wm *WorldManager) Close() {
	wm.mu.Lock()
	worlds := make([]*World, 0, len(wm.worlds))
	for id, w := range wm.worlds {
		worlds = append(worlds, w)
		delete(wm.worlds, id)
	}
	wm.mu.Unlock()

	for _, w := range worlds {
		w.Stop()
	}
	for _, w := range worlds {
		w.Wait()
	}
}
