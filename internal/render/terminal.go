package render

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gdamore/tcell/v2"

	"github.com/daniacca/colony/internal/colony"
)

var speciesColors = []tcell.Color{tcell.ColorGreen, tcell.ColorRed, tcell.ColorBlue, tcell.ColorYellow}

// Terminal draws snapshots on a tcell screen. The screen must already be
// initialized; the caller owns Fini.
type Terminal struct {
	screen    tcell.Screen
	styles    map[string]tcell.Style
	empty     tcell.Style
	status    tcell.Style
	cellWidth int
	invert    bool
}

// NewTerminal creates a terminal renderer coloring each species of traits in
// table order.
func NewTerminal(screen tcell.Screen, traits *colony.TraitTable) *Terminal {
	t := &Terminal{
		screen:    screen,
		styles:    make(map[string]tcell.Style),
		empty:     tcell.StyleDefault.Foreground(tcell.ColorDarkGray).Background(tcell.ColorBlack),
		status:    tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorBlack),
		cellWidth: utf8.RuneCountInString(EmptyTag),
	}
	for i, sp := range traits.Species() {
		fg := speciesColors[i%len(speciesColors)]
		t.styles[sp.Tag] = tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(fg)
		if n := utf8.RuneCountInString(sp.Tag); n > t.cellWidth {
			t.cellWidth = n
		}
	}
	return t
}

// SetInvert swaps foreground and background colors.
func (t *Terminal) SetInvert(invert bool) {
	t.invert = invert
}

func (t *Terminal) style(tag string) tcell.Style {
	st, ok := t.styles[tag]
	if !ok {
		st = t.empty
	}
	if t.invert {
		fg, bg, _ := st.Decompose()
		st = st.Foreground(bg).Background(fg)
	}
	return st
}

// Draw paints one snapshot and a status line below the grid.
func (t *Terminal) Draw(snap colony.Snapshot) {
	t.screen.Clear()

	for i, row := range snap.Cells {
		for j, tag := range row {
			text := tag
			if text == "" {
				text = EmptyTag
			}
			t.put(j*t.cellWidth, i, text, t.style(tag))
		}
	}

	t.put(0, len(snap.Cells)+1, StatusLine(snap), t.status)
	t.screen.Show()
}

func (t *Terminal) put(x, y int, text string, style tcell.Style) {
	for _, r := range text {
		t.screen.SetContent(x, y, r, nil, style)
		x++
	}
}

// Run redraws next() every interval until ctx ends or the user presses q,
// Esc or Ctrl-C.
func (t *Terminal) Run(ctx context.Context, interval time.Duration, next func() colony.Snapshot) error {
	if interval <= 0 {
		return fmt.Errorf("render interval must be positive, got %v", interval)
	}

	quit := make(chan struct{})
	go func() {
		defer close(quit)
		for {
			ev := t.screen.PollEvent()
			switch ev := ev.(type) {
			case nil:
				// screen finalized
				return
			case *tcell.EventKey:
				if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC || ev.Rune() == 'q' {
					return
				}
			case *tcell.EventResize:
				t.screen.Sync()
			}
		}
	}()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	t.Draw(next())
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-quit:
			return nil
		case <-ticker.C:
			t.Draw(next())
		}
	}
}

// StatusLine summarizes a snapshot on one line.
func StatusLine(snap colony.Snapshot) string {
	ids := make([]colony.SpeciesID, 0, len(snap.Population))
	for id := range snap.Population {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	parts := []string{fmt.Sprintf("%s/%s", snap.World, snap.Topology)}
	for _, id := range ids {
		parts = append(parts, fmt.Sprintf("species %d: %d", id, snap.Population[id]))
	}
	parts = append(parts,
		fmt.Sprintf("births %d", snap.Stats.Births),
		fmt.Sprintf("murders %d", snap.Stats.Murders),
		"q to quit",
	)
	return strings.Join(parts, "  ")
}
