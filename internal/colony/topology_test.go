package colony

import "testing"

func TestWrap(t *testing.T) {
	tests := []struct {
		i, n, want int
	}{
		{-1, 20, 19},
		{20, 20, 0},
		{5, 20, 5},
		{0, 20, 0},
		{19, 20, 19},
		{-1, 30, 29},
		{30, 30, 0},
	}

	for _, tt := range tests {
		if got := Wrap(tt.i, tt.n); got != tt.want {
			t.Errorf("Wrap(%d, %d) = %d, want %d", tt.i, tt.n, got, tt.want)
		}
	}
}

func containsPos(ps []Position, p Position) bool {
	for _, q := range ps {
		if q == p {
			return true
		}
	}
	return false
}

func TestFlat_Neighborhood(t *testing.T) {
	tests := []struct {
		name   string
		center Position
		want   int
	}{
		{"interior", Position{10, 10}, 9},
		{"top-left corner", Position{0, 0}, 4},
		{"bottom-right corner", Position{NumRows - 1, NumCols - 1}, 4},
		{"top edge", Position{0, 5}, 6},
		{"left edge", Position{7, 0}, 6},
		{"bottom edge", Position{NumRows - 1, 12}, 6},
		{"right edge", Position{3, NumCols - 1}, 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Flat{}.Neighborhood(tt.center, NumRows, NumCols)
			if len(got) != tt.want {
				t.Fatalf("Expected %d candidates, got %d: %v", tt.want, len(got), got)
			}
			if !containsPos(got, tt.center) {
				t.Error("Expected the center cell to be a candidate")
			}
			for _, p := range got {
				if p.Row < 0 || p.Row >= NumRows || p.Col < 0 || p.Col >= NumCols {
					t.Errorf("Out-of-range candidate %s", p)
				}
			}
		})
	}
}

func TestFlat_NeverVisitsOutOfRange(t *testing.T) {
	for row := 0; row < NumRows; row++ {
		for col := 0; col < NumCols; col++ {
			for _, p := range (Flat{}).Neighborhood(Position{row, col}, NumRows, NumCols) {
				if p.Row == -1 || p.Row == NumRows || p.Col == -1 || p.Col == NumCols {
					t.Fatalf("Candidate %s visited from (%d,%d)", p, row, col)
				}
			}
		}
	}
}

func TestFlat_RowMajorOrder(t *testing.T) {
	got := Flat{}.Neighborhood(Position{5, 5}, NumRows, NumCols)
	want := []Position{{4, 4}, {4, 5}, {4, 6}, {5, 4}, {5, 5}, {5, 6}, {6, 4}, {6, 5}, {6, 6}}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Expected %v, got %v", want, got)
		}
	}
}

func TestTorus_Neighborhood(t *testing.T) {
	got := Torus{}.Neighborhood(Position{0, 0}, NumRows, NumCols)
	if len(got) != 9 {
		t.Fatalf("Expected 9 candidates, got %d", len(got))
	}

	for _, want := range []Position{{19, 29}, {19, 0}, {19, 1}, {0, 29}, {0, 0}, {0, 1}, {1, 29}, {1, 0}, {1, 1}} {
		if !containsPos(got, want) {
			t.Errorf("Expected wrapped candidate %s in %v", want, got)
		}
	}
}

func TestTorus_AlwaysNineInBounds(t *testing.T) {
	for row := 0; row < NumRows; row++ {
		for col := 0; col < NumCols; col++ {
			got := Torus{}.Neighborhood(Position{row, col}, NumRows, NumCols)
			if len(got) != 9 {
				t.Fatalf("Expected 9 candidates at (%d,%d), got %d", row, col, len(got))
			}
			seen := make(map[Position]bool)
			for _, p := range got {
				if !p.InBounds() {
					t.Fatalf("Out-of-range candidate %s at (%d,%d)", p, row, col)
				}
				if seen[p] {
					t.Fatalf("Duplicate candidate %s at (%d,%d)", p, row, col)
				}
				seen[p] = true
			}
		}
	}
}

func TestParseTopology(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"flat", TopologyFlat, false},
		{"torus", TopologyTorus, false},
		{" Torus ", TopologyTorus, false},
		{"FLAT", TopologyFlat, false},
		{"sphere", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		topo, err := ParseTopology(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseTopology(%q): expected error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseTopology(%q): unexpected error %v", tt.in, err)
			continue
		}
		if topo.Name() != tt.want {
			t.Errorf("ParseTopology(%q) = %s, want %s", tt.in, topo.Name(), tt.want)
		}
	}
}
