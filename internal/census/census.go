// Package census records the population of a world over time and summarizes
// it.
package census

import (
	"fmt"
	"sync"
	"time"

	"github.com/daniacca/colony/internal/colony"
)

// Record is one population sample. First and Second count the cells held by
// the first and second species of the trait table.
type Record struct {
	Tick          int     `csv:"tick" json:"tick"`
	Elapsed       float64 `csv:"elapsed_s" json:"elapsed_s"`
	World         string  `csv:"world" json:"world"`
	Topology      string  `csv:"topology" json:"topology"`
	First         int     `csv:"pop_first" json:"pop_first"`
	Second        int     `csv:"pop_second" json:"pop_second"`
	Empty         int     `csv:"empty" json:"empty"`
	Births        uint64  `csv:"births" json:"births"`
	Deaths        uint64  `csv:"deaths" json:"deaths"`
	Murders       uint64  `csv:"murders" json:"murders"`
	Cancellations uint64  `csv:"cancellations" json:"cancellations"`
}

// FromSnapshot builds a record. ids names the species counted as First and
// Second; missing entries count as zero.
func FromSnapshot(tick int, elapsed time.Duration, snap colony.Snapshot, ids []colony.SpeciesID) Record {
	r := Record{
		Tick:          tick,
		Elapsed:       elapsed.Seconds(),
		World:         snap.World,
		Topology:      snap.Topology,
		Empty:         snap.Empty(),
		Births:        snap.Stats.Births,
		Deaths:        snap.Stats.Deaths,
		Murders:       snap.Stats.Murders,
		Cancellations: snap.Stats.Cancellations,
	}
	if len(ids) > 0 {
		r.First = snap.Count(ids[0])
	}
	if len(ids) > 1 {
		r.Second = snap.Count(ids[1])
	}
	return r
}

func (r Record) String() string {
	return fmt.Sprintf("tick=%d first=%d second=%d empty=%d murders=%d", r.Tick, r.First, r.Second, r.Empty, r.Murders)
}

// History keeps the most recent records in memory, oldest first.
type History struct {
	mu      sync.RWMutex
	limit   int
	records []Record
}

// NewHistory creates a history holding at most limit records. A limit of zero
// or less keeps everything.
func NewHistory(limit int) *History {
	return &History{limit: limit}
}

// Add appends a record, evicting the oldest one when full.
func (h *History) Add(r Record) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.records = append(h.records, r)
	if h.limit > 0 && len(h.records) > h.limit {
		h.records = append(h.records[:0], h.records[len(h.records)-h.limit:]...)
	}
}

// Records returns a copy of the held records.
func (h *History) Records() []Record {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]Record, len(h.records))
	copy(out, h.records)
	return out
}

// Len returns the number of held records.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.records)
}

// Summary summarizes the held records.
func (h *History) Summary() Summary {
	return Summarize(h.Records())
}
