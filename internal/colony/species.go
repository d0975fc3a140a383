package colony

import (
	"fmt"
	"sort"
	"time"
)

// SpeciesID identifies a species in the trait table.
type SpeciesID int

const (
	Species1 SpeciesID = 1
	Species2 SpeciesID = 2
)

// Species holds the immutable traits shared by every individual of a species.
// Fitness is both the chance of colonizing a free cell and, as a difference
// against the defender's fitness, the chance of winning a takeover.
type Species struct {
	ID          SpeciesID     `json:"id"`
	Name        string        `json:"name"`
	Fitness     float64       `json:"fitness"`
	MaxLifespan time.Duration `json:"max_lifespan"`
	Tag         string        `json:"tag"`
}

func (s Species) String() string {
	return s.Name
}

// TraitTable is a read-only lookup of species by ID.
type TraitTable struct {
	species []Species
	byID    map[SpeciesID]Species
}

// NewTraitTable builds a table from the given rows, in order. Every row is
// validated and all issues are reported together.
func NewTraitTable(species ...Species) (*TraitTable, error) {
	verr := &ValidationError{}
	if len(species) == 0 {
		verr.Add("trait table needs at least one species")
	}

	t := &TraitTable{
		species: make([]Species, 0, len(species)),
		byID:    make(map[SpeciesID]Species, len(species)),
	}
	for i, sp := range species {
		prefix := fmt.Sprintf("species at index %d", i)
		if sp.Name != "" {
			prefix = fmt.Sprintf("species '%s'", sp.Name)
		}

		if sp.ID <= 0 {
			verr.Add(prefix + ": id must be positive")
		} else if _, dup := t.byID[sp.ID]; dup {
			verr.Add(fmt.Sprintf("duplicate species id: %d", sp.ID))
		}
		if sp.Name == "" {
			verr.Add(prefix + ": name is required")
		}
		if sp.Tag == "" {
			verr.Add(prefix + ": display tag is required")
		}
		if sp.Fitness < 0 || sp.Fitness > 1 {
			verr.Add(fmt.Sprintf("%s: fitness %v is outside [0,1]", prefix, sp.Fitness))
		}
		if sp.MaxLifespan <= 0 {
			verr.Add(prefix + ": max lifespan must be positive")
		}

		t.species = append(t.species, sp)
		t.byID[sp.ID] = sp
	}

	if verr.HasIssues() {
		return nil, verr
	}
	return t, nil
}

// DefaultTraitTable returns the two built-in species: a fit, long-lived
// species 1 and a weaker, short-lived species 2.
func DefaultTraitTable() *TraitTable {
	t, err := NewTraitTable(
		Species{ID: Species1, Name: "species-1", Fitness: 0.8, MaxLifespan: 10 * time.Second, Tag: "[1]"},
		Species{ID: Species2, Name: "species-2", Fitness: 0.4, MaxLifespan: 5 * time.Second, Tag: "[2]"},
	)
	if err != nil {
		panic(fmt.Sprintf("colony: invalid default trait table: %v", err))
	}
	return t
}

// Lookup returns the species with the given ID.
func (t *TraitTable) Lookup(id SpeciesID) (Species, bool) {
	sp, ok := t.byID[id]
	return sp, ok
}

// Species returns the table rows in insertion order.
func (t *TraitTable) Species() []Species {
	out := make([]Species, len(t.species))
	copy(out, t.species)
	return out
}

// IDs returns the species IDs sorted ascending.
func (t *TraitTable) IDs() []SpeciesID {
	ids := make([]SpeciesID, 0, len(t.byID))
	for id := range t.byID {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Len returns the number of species in the table.
func (t *TraitTable) Len() int {
	return len(t.species)
}

// LongestLifespan returns the largest MaxLifespan in the table.
func (t *TraitTable) LongestLifespan() time.Duration {
	var longest time.Duration
	for _, sp := range t.species {
		if sp.MaxLifespan > longest {
			longest = sp.MaxLifespan
		}
	}
	return longest
}
