// Package render draws world snapshots, either as plain text or on a
// full-screen terminal.
package render

import (
	"bufio"
	"io"
	"strings"

	"github.com/daniacca/colony/internal/colony"
)

// EmptyTag is drawn for an unoccupied cell.
const EmptyTag = "[ ]"

// Text writes the grid row by row: one tag per cell, each row followed by a
// blank line, and two more blank lines after the last row.
func Text(w io.Writer, snap colony.Snapshot) error {
	bw := bufio.NewWriter(w)
	for _, row := range snap.Cells {
		for _, tag := range row {
			if tag == "" {
				tag = EmptyTag
			}
			if _, err := bw.WriteString(tag); err != nil {
				return err
			}
		}
		if _, err := bw.WriteString("\n\n"); err != nil {
			return err
		}
	}
	if _, err := bw.WriteString("\n\n\n"); err != nil {
		return err
	}
	return bw.Flush()
}

// FormatText returns what Text would write.
func FormatText(snap colony.Snapshot) string {
	var sb strings.Builder
	_ = Text(&sb, snap)
	return sb.String()
}
