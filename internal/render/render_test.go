package render

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/daniacca/colony/internal/colony"
)

func blankSnapshot() colony.Snapshot {
	cells := make([][]string, colony.NumRows)
	for i := range cells {
		cells[i] = make([]string, colony.NumCols)
	}
	return colony.Snapshot{
		World:      "demo",
		Topology:   colony.TopologyFlat,
		Rows:       colony.NumRows,
		Cols:       colony.NumCols,
		Cells:      cells,
		Population: map[colony.SpeciesID]int{},
	}
}

func TestText_Layout(t *testing.T) {
	snap := blankSnapshot()
	snap.Cells[0][0] = "[1]"
	snap.Cells[0][1] = "[2]"
	snap.Cells[19][29] = "[2]"

	out := FormatText(snap)

	if !strings.HasSuffix(out, "\n\n\n\n\n") {
		t.Errorf("Expected the last row's blank line plus two more, got tail %q", out[len(out)-8:])
	}

	rows := strings.Split(strings.TrimRight(out, "\n"), "\n\n")
	if len(rows) != colony.NumRows {
		t.Fatalf("Expected %d rows, got %d", colony.NumRows, len(rows))
	}
	for i, row := range rows {
		if len(row) != colony.NumCols*3 {
			t.Errorf("Row %d has %d chars, want %d", i, len(row), colony.NumCols*3)
		}
	}
	if !strings.HasPrefix(rows[0], "[1][2][ ][ ]") {
		t.Errorf("Unexpected first row %q", rows[0])
	}
	if !strings.HasSuffix(rows[19], "[ ][2]") {
		t.Errorf("Unexpected last row %q", rows[19])
	}
	if strings.Count(out, "[ ]") != colony.NumRows*colony.NumCols-3 {
		t.Errorf("Expected %d empty cells", colony.NumRows*colony.NumCols-3)
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestText_WriteError(t *testing.T) {
	if err := Text(failingWriter{}, blankSnapshot()); err == nil {
		t.Error("Expected write error to be reported")
	}
}

func newSimScreen(t *testing.T) tcell.SimulationScreen {
	t.Helper()
	screen := tcell.NewSimulationScreen("")
	if err := screen.Init(); err != nil {
		t.Fatalf("Failed to init screen: %v", err)
	}
	screen.SetSize(120, 30)
	t.Cleanup(screen.Fini)
	return screen
}

func readRow(screen tcell.SimulationScreen, y, from, n int) string {
	var sb strings.Builder
	for x := from; x < from+n; x++ {
		r, _, _, _ := screen.GetContent(x, y)
		sb.WriteRune(r)
	}
	return sb.String()
}

func TestTerminal_Draw(t *testing.T) {
	screen := newSimScreen(t)
	term := NewTerminal(screen, colony.DefaultTraitTable())

	snap := blankSnapshot()
	snap.Cells[0][0] = "[1]"
	snap.Cells[2][5] = "[2]"
	snap.Population[colony.Species1] = 1
	snap.Population[colony.Species2] = 1
	snap.Stats.Births = 7

	term.Draw(snap)

	if got := readRow(screen, 0, 0, 6); got != "[1][ ]" {
		t.Errorf("Expected first cells '[1][ ]', got %q", got)
	}
	if got := readRow(screen, 2, 15, 3); got != "[2]" {
		t.Errorf("Expected [2] at row 2 col 5, got %q", got)
	}

	_, _, style1, _ := screen.GetContent(0, 0)
	_, _, style2, _ := screen.GetContent(15, 2)
	_, _, styleEmpty, _ := screen.GetContent(3, 0)
	if style1 == style2 || style1 == styleEmpty {
		t.Error("Expected distinct styles per species and for empty cells")
	}

	status := readRow(screen, colony.NumRows+1, 0, 60)
	if !strings.HasPrefix(status, "demo/flat") || !strings.Contains(status, "births 7") {
		t.Errorf("Unexpected status line %q", status)
	}
}

func TestStatusLine(t *testing.T) {
	snap := blankSnapshot()
	snap.Population[colony.Species2] = 4
	snap.Population[colony.Species1] = 9
	snap.Stats.Murders = 3

	line := StatusLine(snap)
	if strings.Index(line, "species 1: 9") > strings.Index(line, "species 2: 4") {
		t.Errorf("Expected species in id order: %s", line)
	}
	if !strings.Contains(line, "murders 3") {
		t.Errorf("Missing murders: %s", line)
	}
}

func TestTerminal_RunQuitsOnKey(t *testing.T) {
	screen := newSimScreen(t)
	term := NewTerminal(screen, colony.DefaultTraitTable())

	draws := 0
	next := func() colony.Snapshot {
		draws++
		return blankSnapshot()
	}

	done := make(chan error, 1)
	go func() {
		done <- term.Run(context.Background(), 10*time.Millisecond, next)
	}()

	time.Sleep(50 * time.Millisecond)
	screen.InjectKey(tcell.KeyRune, 'q', tcell.ModNone)

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Expected nil error, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after q")
	}
	if draws == 0 {
		t.Error("Expected at least one draw")
	}
}

func TestTerminal_RunStopsOnContext(t *testing.T) {
	screen := newSimScreen(t)
	term := NewTerminal(screen, colony.DefaultTraitTable())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	if err := term.Run(ctx, 5*time.Millisecond, blankSnapshot); err != nil {
		t.Errorf("Expected nil error, got %v", err)
	}
	if err := term.Run(ctx, 0, blankSnapshot); err == nil {
		t.Error("Expected error for zero interval")
	}
}
