package colony

import (
	"context"
	"sync/atomic"
	"time"
)

// State is the lifecycle stage of an entity.
type State int32

const (
	StateCreated State = iota
	StateSleeping
	StateReproducing
	StateDead
	StateCancelled
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateSleeping:
		return "sleeping"
	case StateReproducing:
		return "reproducing"
	case StateDead:
		return "dead"
	case StateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Entity is one living individual. Its position and species never change;
// a move is a death plus a birth elsewhere.
type Entity struct {
	id       string
	pos      Position
	species  Species
	lifespan time.Duration
	world    *World

	ctx    context.Context
	cancel context.CancelFunc
	state  atomic.Int32
	done   chan struct{}
}

// newEntity must be called with w.mu held: it draws from the world's random source.
func (w *World) newEntity(sp Species, pos Position) *Entity {
	ctx, cancel := context.WithCancel(w.ctx)
	return &Entity{
		id:       NewRandomID(),
		pos:      pos,
		species:  sp,
		lifespan: time.Duration(w.random() * float64(sp.MaxLifespan)),
		world:    w,
		ctx:      ctx,
		cancel:   cancel,
		done:     make(chan struct{}),
	}
}

func (e *Entity) ID() string              { return e.id }
func (e *Entity) Position() Position      { return e.pos }
func (e *Entity) Species() Species        { return e.species }
func (e *Entity) Lifespan() time.Duration { return e.lifespan }
func (e *Entity) State() State            { return State(e.state.Load()) }

// Done is closed when the lifecycle goroutine has returned.
func (e *Entity) Done() <-chan struct{} { return e.done }

// Murder requests cancellation. It only takes effect while the entity is
// sleeping or waiting for the world lock after waking; once reproduction has
// started the request is ignored.
func (e *Entity) Murder() {
	e.cancel()
}

// cancellable reports whether Murder would still end the entity. Called with
// w.mu held, which keeps Sleeping from turning into Reproducing meanwhile.
func (e *Entity) cancellable() bool {
	return e.ctx.Err() == nil && e.State() != StateReproducing
}

func (e *Entity) setState(s State) {
	e.state.Store(int32(s))
}

// live starts the lifecycle goroutine. Called with w.mu held.
func (e *Entity) live() {
	w := e.world
	w.wg.Add(1)
	e.setState(StateSleeping)
	w.births.Add(1)
	w.emit(e, EventBorn, 0)
	w.logger.Debugf("Entity born: species=%s row=%d col=%d lifespan=%v", e.species, e.pos.Row, e.pos.Col, e.lifespan)
	go e.run()
}

func (e *Entity) run() {
	w := e.world
	defer w.wg.Done()
	defer close(e.done)
	defer e.cancel()

	timer := time.NewTimer(e.lifespan)
	defer timer.Stop()

	select {
	case <-e.ctx.Done():
		w.abandon(e)
		return
	case <-timer.C:
	}
	if w.testHookWoke != nil {
		w.testHookWoke(e)
	}

	if !w.reproduce(e) {
		w.abandon(e)
		return
	}
	w.die(e)
}
