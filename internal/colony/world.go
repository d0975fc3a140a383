package colony

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"
)

// ErrWorldStopped is returned by Spawn after Stop.
var ErrWorldStopped = errors.New("world is stopped")

// Options configures a World. Zero values pick the defaults.
type Options struct {
	// Name labels events emitted by the world.
	Name string

	// Topology defaults to Torus.
	Topology Topology

	// Traits defaults to DefaultTraitTable.
	Traits *TraitTable

	Logger Logger
	Events EventSink

	// Random replaces the uniform [0,1) source. It is only ever called with
	// the world lock held.
	Random func() float64
}

// World owns the grid and serializes every mutation behind one lock.
type World struct {
	mu       sync.Mutex
	name     string
	grid     grid
	topology Topology
	traits   *TraitTable
	random   func() float64
	logger   Logger
	events   EventSink

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	// testHookWoke, when set, runs after an entity's timer fires and before
	// it asks for the lock.
	testHookWoke func(*Entity)

	births        atomic.Uint64
	deaths        atomic.Uint64
	murders       atomic.Uint64
	cancellations atomic.Uint64
}

// NewEmptyWorld creates a world with no entities.
func NewEmptyWorld(opts Options) *World {
	if opts.Topology == nil {
		opts.Topology = Torus{}
	}
	if opts.Traits == nil {
		opts.Traits = DefaultTraitTable()
	}
	if opts.Logger == nil {
		opts.Logger = NewNoOpLogger()
	}
	if opts.Random == nil {
		opts.Random = rand.New(rand.NewSource(time.Now().UnixNano())).Float64
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &World{
		name:     opts.Name,
		topology: opts.Topology,
		traits:   opts.Traits,
		random:   opts.Random,
		logger:   opts.Logger,
		events:   opts.Events,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// NewWorld creates a world seeded with one entity of each species: species 1
// somewhere in the top half of the rows, species 2 in the bottom half. Both
// lifecycles are started before it returns.
func NewWorld(opts Options) (*World, error) {
	w := NewEmptyWorld(opts)
	first, second, err := seedSpecies(w.traits)
	if err != nil {
		return nil, err
	}
	w.seed(first, second)
	return w, nil
}

// seedSpecies resolves the two seeded species by ID, whatever order the
// table lists them in.
func seedSpecies(traits *TraitTable) (Species, Species, error) {
	if traits.Len() != 2 {
		return Species{}, Species{}, fmt.Errorf("seeding needs exactly two species, trait table has %d", traits.Len())
	}
	first, ok1 := traits.Lookup(Species1)
	second, ok2 := traits.Lookup(Species2)
	if !ok1 || !ok2 {
		return Species{}, Species{}, fmt.Errorf("seeding needs species %d and %d, trait table has %v", Species1, Species2, traits.IDs())
	}
	return first, second, nil
}

func (w *World) seed(first, second Species) {
	w.mu.Lock()
	defer w.mu.Unlock()

	half := NumRows / 2

	top := Position{Row: w.intn(half), Col: w.intn(NumCols)}
	bottom := Position{Row: w.intn(half) + half, Col: w.intn(NumCols)}

	w.spawnLocked(first, top)
	w.spawnLocked(second, bottom)

	w.logger.Infof("World seeded: topology=%s %s=%s %s=%s", w.topology.Name(), first, top, second, bottom)
}

// intn draws an int in [0, n). Called with w.mu held.
func (w *World) intn(n int) int {
	i := int(w.random() * float64(n))
	if i >= n {
		i = n - 1
	}
	if i < 0 {
		i = 0
	}
	return i
}

// Spawn places a new entity of the given species at pos and starts it.
// Unlike Place it refuses occupied cells.
func (w *World) Spawn(id SpeciesID, pos Position) (*Entity, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.ctx.Err() != nil {
		return nil, ErrWorldStopped
	}
	sp, ok := w.traits.Lookup(id)
	if !ok {
		return nil, fmt.Errorf("unknown species %d", id)
	}
	if !pos.InBounds() {
		return nil, fmt.Errorf("position %s is outside the %dx%d grid", pos, NumRows, NumCols)
	}
	if w.grid.at(pos) != nil {
		return nil, fmt.Errorf("position %s is already occupied", pos)
	}
	return w.spawnLocked(sp, pos), nil
}

// Place puts e at (row, col), overwriting whatever was there.
func (w *World) Place(e *Entity, row, col int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.grid.set(Position{Row: row, Col: col}, e)
}

// Clear empties (row, col).
func (w *World) Clear(row, col int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.grid.set(Position{Row: row, Col: col}, nil)
}

// ClearIfOccupiedBy empties (row, col) only if e is still there.
func (w *World) ClearIfOccupiedBy(e *Entity, row, col int) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	p := Position{Row: row, Col: col}
	if e == nil || w.grid.at(p) != e {
		return false
	}
	w.grid.set(p, nil)
	return true
}

// Read returns the occupant of (row, col), or nil.
func (w *World) Read(row, col int) *Entity {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.grid.at(Position{Row: row, Col: col})
}

// Snapshot copies the grid as display tags under the world lock.
func (w *World) Snapshot() Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()

	cells := make([][]string, NumRows)
	for i := range w.grid {
		cells[i] = make([]string, NumCols)
		for j, e := range w.grid[i] {
			if e != nil {
				cells[i][j] = e.species.Tag
			}
		}
	}

	return Snapshot{
		World:      w.name,
		Topology:   w.topology.Name(),
		Rows:       NumRows,
		Cols:       NumCols,
		Cells:      cells,
		Population: w.grid.population(),
		Stats:      w.Stats(),
		TakenAt:    time.Now(),
	}
}

// Stats returns the lifecycle counters.
func (w *World) Stats() Stats {
	return Stats{
		Births:        w.births.Load(),
		Deaths:        w.deaths.Load(),
		Murders:       w.murders.Load(),
		Cancellations: w.cancellations.Load(),
	}
}

func (w *World) Name() string          { return w.name }
func (w *World) Topology() Topology    { return w.topology }
func (w *World) Traits() *TraitTable   { return w.traits }
func (w *World) Done() <-chan struct{} { return w.ctx.Done() }

// Stop cancels every lifecycle. Sleeping entities end as cancelled; entities
// already reproducing finish their scan, and their offspring are born
// cancelled.
func (w *World) Stop() {
	if w.ctx.Err() != nil {
		return
	}
	w.cancel()
	w.logger.Infof("World stopped: name=%s", w.name)
}

// Wait blocks until every started lifecycle has returned.
func (w *World) Wait() {
	w.wg.Wait()
}

func (w *World) emit(e *Entity, kind EventKind, by SpeciesID) {
	if w.events == nil {
		return
	}
	w.events.Enqueue(Event{
		World:    w.name,
		Kind:     kind,
		EntityID: e.id,
		Species:  e.species.ID,
		Position: e.pos,
		By:       by,
		At:       time.Now(),
	})
}
