package colony

// colonizes decides a spawn into an empty or self-occupied cell.
func colonizes(r, fitness float64) bool {
	return r <= fitness
}

// overpowers decides a takeover of a cell held by another entity. A
// non-positive fitness advantage never wins.
func overpowers(r, attacker, defender float64) bool {
	advantage := attacker - defender
	if advantage <= 0 {
		return false
	}
	return r <= advantage
}

// reproduce runs the neighborhood scan for a woken entity. It reports false,
// touching nothing, if the entity was cancelled before it got the lock.
func (w *World) reproduce(e *Entity) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if e.ctx.Err() != nil {
		return false
	}
	e.setState(StateReproducing)

	for _, p := range w.topology.Neighborhood(e.pos, NumRows, NumCols) {
		occupant := w.grid.at(p)

		if occupant == nil || occupant == e {
			if colonizes(w.random(), e.species.Fitness) {
				w.spawnLocked(e.species, p)
			}
			continue
		}

		if overpowers(w.random(), e.species.Fitness, occupant.species.Fitness) {
			// an occupant past its own reproduction only loses the cell; it
			// still ends through die
			if occupant.cancellable() {
				occupant.Murder()
				w.murders.Add(1)
				w.emit(occupant, EventMurdered, e.species.ID)
				w.logger.Debugf("Entity murdered: species=%s row=%d col=%d by=%s", occupant.species, p.Row, p.Col, e.species)
			} else {
				w.logger.Debugf("Entity displaced: species=%s row=%d col=%d by=%s", occupant.species, p.Row, p.Col, e.species)
			}
			w.spawnLocked(e.species, p)
		}
	}
	return true
}

// spawnLocked places and starts a new entity at p. Called with w.mu held.
func (w *World) spawnLocked(sp Species, p Position) *Entity {
	child := w.newEntity(sp, p)
	w.grid.set(p, child)
	child.live()
	return child
}

// die clears the entity's own cell unless a successor already took it.
func (w *World) die(e *Entity) {
	w.ClearIfOccupiedBy(e, e.pos.Row, e.pos.Col)
	e.setState(StateDead)
	w.deaths.Add(1)
	w.emit(e, EventDied, 0)
	w.logger.Debugf("Entity died: species=%s row=%d col=%d", e.species, e.pos.Row, e.pos.Col)
}

// abandon ends a cancelled lifecycle without touching the grid.
func (w *World) abandon(e *Entity) {
	e.setState(StateCancelled)
	w.cancellations.Add(1)
	w.emit(e, EventCancelled, 0)
}
