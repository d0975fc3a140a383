package colony

import "fmt"

// Grid dimensions are fixed for the lifetime of the process.
const (
	NumRows = 20
	NumCols = 30
)

// Position is a cell coordinate on the grid.
type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.Row, p.Col)
}

// InBounds reports whether p lies on the grid.
func (p Position) InBounds() bool {
	return p.Row >= 0 && p.Row < NumRows && p.Col >= 0 && p.Col < NumCols
}

// grid is the cell array. It carries no lock of its own; World guards it.
type grid [NumRows][NumCols]*Entity

func (g *grid) at(p Position) *Entity {
	if !p.InBounds() {
		return nil
	}
	return g[p.Row][p.Col]
}

func (g *grid) set(p Position, e *Entity) {
	if !p.InBounds() {
		return
	}
	g[p.Row][p.Col] = e
}

func (g *grid) population() map[SpeciesID]int {
	counts := make(map[SpeciesID]int)
	for i := range g {
		for j := range g[i] {
			if e := g[i][j]; e != nil {
				counts[e.species.ID]++
			}
		}
	}
	return counts
}
