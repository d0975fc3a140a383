package colony

import (
	"fmt"
	"strings"
)

// Topology resolves the 3x3 reproduction neighborhood of a position.
type Topology interface {
	Name() string

	// Neighborhood returns the valid cells of the 3x3 block centered on p,
	// center included, in row-major order.
	Neighborhood(p Position, rows, cols int) []Position
}

const (
	TopologyFlat  = "flat"
	TopologyTorus = "torus"
)

// Flat is a bounded grid: candidates outside the grid are dropped.
type Flat struct{}

func (Flat) Name() string { return TopologyFlat }

func (Flat) Neighborhood(p Position, rows, cols int) []Position {
	out := make([]Position, 0, 9)
	for i := p.Row - 1; i <= p.Row+1; i++ {
		for j := p.Col - 1; j <= p.Col+1; j++ {
			if i >= 0 && i < rows && j >= 0 && j < cols {
				out = append(out, Position{Row: i, Col: j})
			}
		}
	}
	return out
}

// Torus wraps candidates around the opposite edge, so all nine are valid.
type Torus struct{}

func (Torus) Name() string { return TopologyTorus }

func (Torus) Neighborhood(p Position, rows, cols int) []Position {
	out := make([]Position, 0, 9)
	for i := p.Row - 1; i <= p.Row+1; i++ {
		for j := p.Col - 1; j <= p.Col+1; j++ {
			out = append(out, Position{Row: Wrap(i, rows), Col: Wrap(j, cols)})
		}
	}
	return out
}

// Wrap maps an index one step outside [0, n) to the opposite edge.
// Only single-step overflow is handled; that is all a 3x3 scan produces.
func Wrap(i, n int) int {
	if i < 0 {
		return n - 1
	}
	if i >= n {
		return 0
	}
	return i
}

// ParseTopology returns the strategy for a topology name (case-insensitive).
func ParseTopology(name string) (Topology, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case TopologyFlat:
		return Flat{}, nil
	case TopologyTorus:
		return Torus{}, nil
	default:
		return nil, fmt.Errorf("unknown topology %q (want %q or %q)", name, TopologyFlat, TopologyTorus)
	}
}
