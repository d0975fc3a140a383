package colony

import (
	"encoding/json"
	"fmt"
	"time"
)

// Stats are cumulative lifecycle counters of a world. Murders counts only
// takeovers that cancelled the occupant.
type Stats struct {
	Births        uint64 `json:"births"`
	Deaths        uint64 `json:"deaths"`
	Murders       uint64 `json:"murders"`
	Cancellations uint64 `json:"cancellations"`
}

// Snapshot is a read-only copy of the grid. Cells hold the occupant's display
// tag, or "" for an empty cell.
type Snapshot struct {
	World      string            `json:"world,omitempty"`
	Topology   string            `json:"topology"`
	Rows       int               `json:"rows"`
	Cols       int               `json:"cols"`
	Cells      [][]string        `json:"cells"`
	Population map[SpeciesID]int `json:"population"`
	Stats      Stats             `json:"stats"`
	TakenAt    time.Time         `json:"taken_at"`
}

// Count returns the number of cells held by a species.
func (s Snapshot) Count(id SpeciesID) int {
	return s.Population[id]
}

// Occupied returns the number of non-empty cells.
func (s Snapshot) Occupied() int {
	n := 0
	for _, c := range s.Population {
		n += c
	}
	return n
}

// Empty returns the number of empty cells.
func (s Snapshot) Empty() int {
	return s.Rows*s.Cols - s.Occupied()
}

// EncodeSnapshotJSON encodes a snapshot to JSON format.
func EncodeSnapshotJSON(snapshot Snapshot) ([]byte, error) {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return data, nil
}

// DecodeSnapshotJSON decodes a snapshot from JSON format.
func DecodeSnapshotJSON(data []byte) (Snapshot, error) {
	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return Snapshot{}, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return snapshot, nil
}
