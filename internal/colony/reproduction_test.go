package colony

import (
	"math"
	"math/rand"
	"sync"
	"testing"
	"time"
)

func TestColonizes(t *testing.T) {
	tests := []struct {
		r, f float64
		want bool
	}{
		{0, 0.8, true},
		{0.8, 0.8, true},
		{0.81, 0.8, false},
		{0.4, 0.4, true},
		{0.41, 0.4, false},
		{0, 0, true},
		{0.5, 0, false},
	}

	for _, tt := range tests {
		if got := colonizes(tt.r, tt.f); got != tt.want {
			t.Errorf("colonizes(%v, %v) = %v, want %v", tt.r, tt.f, got, tt.want)
		}
	}
}

func TestColonizationRate(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	const trials = 100000

	for _, f := range []float64{0.8, 0.4} {
		hits := 0
		for i := 0; i < trials; i++ {
			if colonizes(rng.Float64(), f) {
				hits++
			}
		}
		rate := float64(hits) / trials
		if math.Abs(rate-f) > 0.01 {
			t.Errorf("fitness %v: colonization rate %v, want about %v", f, rate, f)
		}
	}
}

func TestOverpowers(t *testing.T) {
	tests := []struct {
		name               string
		r                  float64
		attacker, defender float64
		want               bool
	}{
		{"strong at threshold", 0.4, 0.8, 0.4, true},
		{"strong below threshold", 0.1, 0.8, 0.4, true},
		{"strong above threshold", 0.41, 0.8, 0.4, false},
		{"weak never wins at zero draw", 0, 0.4, 0.8, false},
		{"weak never wins", 0.2, 0.4, 0.8, false},
		{"equal fitness never wins", 0, 0.8, 0.8, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := overpowers(tt.r, tt.attacker, tt.defender); got != tt.want {
				t.Errorf("overpowers(%v, %v, %v) = %v, want %v", tt.r, tt.attacker, tt.defender, got, tt.want)
			}
		})
	}
}

func TestTakeoverAsymmetry(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	const trials = 100000

	strong, weak := 0, 0
	for i := 0; i < trials; i++ {
		if overpowers(rng.Float64(), 0.8, 0.4) {
			strong++
		}
		if overpowers(rng.Float64(), 0.4, 0.8) {
			weak++
		}
	}

	if rate := float64(strong) / trials; math.Abs(rate-0.4) > 0.01 {
		t.Errorf("0.8 vs 0.4 takeover rate %v, want about 0.4", rate)
	}
	if weak != 0 {
		t.Errorf("0.4 vs 0.8 takeover succeeded %d times, want 0", weak)
	}
}

// placeIdle puts an entity on the grid without starting its lifecycle, so
// tests can drive reproduce directly.
func placeIdle(w *World, id SpeciesID, p Position) *Entity {
	w.mu.Lock()
	defer w.mu.Unlock()
	sp, _ := w.traits.Lookup(id)
	e := w.newEntity(sp, p)
	w.grid.set(p, e)
	return e
}

func TestReproduce_FlatCornerColonizes(t *testing.T) {
	w := NewEmptyWorld(Options{
		Topology: Flat{},
		Traits:   testTraits(t, time.Hour, time.Hour),
		Random:   constRandom(0.5),
	})
	defer stopAndWait(t, w)

	parent := placeIdle(w, Species1, Position{0, 0})
	if !w.reproduce(parent) {
		t.Fatal("Expected reproduce to run")
	}

	snap := w.Snapshot()
	if snap.Count(Species1) != 4 {
		t.Errorf("Expected 4 species 1 cells, got %d", snap.Count(Species1))
	}
	if snap.Stats.Births != 4 {
		t.Errorf("Expected 4 births, got %d", snap.Stats.Births)
	}
	if w.Read(0, 0) == parent {
		t.Error("Expected parent to be replaced by a child at its own cell")
	}
	if parent.State() != StateReproducing {
		t.Errorf("Expected parent state reproducing, got %s", parent.State())
	}

	w.die(parent)
	if w.Read(0, 0) == nil {
		t.Error("die must not clear a cell taken by a successor")
	}
	if parent.State() != StateDead {
		t.Errorf("Expected parent state dead, got %s", parent.State())
	}
}

func TestReproduce_TorusWraps(t *testing.T) {
	w := NewEmptyWorld(Options{
		Topology: Torus{},
		Traits:   testTraits(t, time.Hour, time.Hour),
		Random:   constRandom(0.5),
	})
	defer stopAndWait(t, w)

	parent := placeIdle(w, Species1, Position{0, 0})
	w.reproduce(parent)

	if got := w.Snapshot().Count(Species1); got != 9 {
		t.Errorf("Expected 9 species 1 cells, got %d", got)
	}
	for _, p := range []Position{{19, 29}, {19, 0}, {0, 29}, {1, 1}} {
		if e := w.Read(p.Row, p.Col); e == nil || e.Species().ID != Species1 {
			t.Errorf("Expected a species 1 child at %s", p)
		}
	}
}

func TestReproduce_NoSpawnAboveFitness(t *testing.T) {
	w := NewEmptyWorld(Options{
		Topology: Torus{},
		Traits:   testTraits(t, time.Hour, time.Hour),
		Random:   constRandom(0.9),
	})
	defer stopAndWait(t, w)

	parent := placeIdle(w, Species1, Position{10, 10})
	w.reproduce(parent)

	snap := w.Snapshot()
	if snap.Stats.Births != 0 {
		t.Errorf("Expected no births with draw above fitness, got %d", snap.Stats.Births)
	}
	if w.Read(10, 10) != parent {
		t.Error("Expected parent to still hold its cell")
	}
	w.die(parent)
	if w.Read(10, 10) != nil {
		t.Error("Expected die to clear the parent's own cell")
	}
}

func TestReproduce_StrongTakesOverWeak(t *testing.T) {
	w := NewEmptyWorld(Options{
		Topology: Flat{},
		Traits:   testTraits(t, time.Hour, time.Hour),
		Random:   constRandom(0.3),
	})
	defer stopAndWait(t, w)

	victim, err := w.Spawn(Species2, Position{5, 5})
	if err != nil {
		t.Fatalf("Spawn failed: %v", err)
	}
	attacker := placeIdle(w, Species1, Position{5, 6})
	w.reproduce(attacker)

	waitDone(t, victim, 2*time.Second)
	if victim.State() != StateCancelled {
		t.Errorf("Expected victim cancelled, got %s", victim.State())
	}

	snap := w.Snapshot()
	if snap.Count(Species2) != 0 {
		t.Errorf("Expected no species 2 left, got %d", snap.Count(Species2))
	}
	if snap.Stats.Murders != 1 {
		t.Errorf("Expected 1 murder, got %d", snap.Stats.Murders)
	}
	if e := w.Read(5, 5); e == nil || e == victim || e.Species().ID != Species1 {
		t.Error("Expected a species 1 child in the victim's cell")
	}
}

func TestReproduce_TakeoverOfReproducedOccupant(t *testing.T) {
	var mu sync.Mutex
	var victimEvents []EventKind
	var victim *Entity
	sink := EventSinkFunc(func(e Event) {
		mu.Lock()
		defer mu.Unlock()
		if victim != nil && e.EntityID == victim.ID() {
			victimEvents = append(victimEvents, e.Kind)
		}
	})

	w := NewEmptyWorld(Options{
		Topology: Flat{},
		Traits:   testTraits(t, time.Hour, time.Hour),
		Events:   sink,
		Random:   constRandom(0.3),
	})
	defer stopAndWait(t, w)

	// the victim has finished its scan and waits for the lock to die
	victim = placeIdle(w, Species2, Position{5, 5})
	victim.setState(StateReproducing)

	attacker := placeIdle(w, Species1, Position{5, 6})
	w.reproduce(attacker)

	if e := w.Read(5, 5); e == nil || e == victim || e.Species().ID != Species1 {
		t.Error("Expected a species 1 child in the victim's cell")
	}
	if victim.ctx.Err() != nil {
		t.Error("Expected the reproduced victim not to be cancelled")
	}
	if got := w.Stats().Murders; got != 0 {
		t.Errorf("Expected no murders, got %d", got)
	}

	w.die(victim)
	if e := w.Read(5, 5); e == nil || e == victim {
		t.Error("die must not clear the attacker's child")
	}

	stats := w.Stats()
	if stats.Murders != 0 || stats.Deaths != 1 {
		t.Errorf("Expected 0 murders and 1 death, got %+v", stats)
	}
	mu.Lock()
	defer mu.Unlock()
	if len(victimEvents) != 1 || victimEvents[0] != EventDied {
		t.Errorf("Expected the victim to end with a single died event, got %v", victimEvents)
	}
}

func TestReproduce_WeakNeverTakesOverStrong(t *testing.T) {
	w := NewEmptyWorld(Options{
		Topology: Flat{},
		Traits:   testTraits(t, time.Hour, time.Hour),
		Random:   constRandom(0.1),
	})
	defer stopAndWait(t, w)

	defender, err := w.Spawn(Species1, Position{5, 5})
	if err != nil {
		t.Fatalf("Spawn failed: %v", err)
	}
	attacker := placeIdle(w, Species2, Position{5, 6})
	w.reproduce(attacker)

	if w.Read(5, 5) != defender {
		t.Error("Expected the fitter defender to keep its cell")
	}
	snap := w.Snapshot()
	if snap.Stats.Murders != 0 {
		t.Errorf("Expected no murders, got %d", snap.Stats.Murders)
	}
	// every other candidate, the attacker's own cell included, is colonized
	if snap.Count(Species2) != 8 {
		t.Errorf("Expected 8 species 2 cells, got %d", snap.Count(Species2))
	}
}

func TestReproduce_CancelledBeforeLock(t *testing.T) {
	w := NewEmptyWorld(Options{
		Topology: Torus{},
		Traits:   testTraits(t, time.Hour, time.Hour),
		Random:   constRandom(0),
	})
	defer stopAndWait(t, w)

	e := placeIdle(w, Species1, Position{3, 3})
	e.Murder()

	if w.reproduce(e) {
		t.Fatal("Expected reproduce to refuse a cancelled entity")
	}
	if w.Snapshot().Stats.Births != 0 {
		t.Error("Expected no offspring from a cancelled entity")
	}
	if w.Read(3, 3) != e {
		t.Error("Expected the cell to be left untouched")
	}
}
