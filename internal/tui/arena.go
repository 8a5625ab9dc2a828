package tui

import (
	"math"
	"strings"

	"github.com/verte-zerg/aimtui/internal/trainer"
)

// A terminal cell stands for an 8x16 px patch of the arena.
const (
	cellWidthPx  = 8
	cellHeightPx = 16
	hudRows      = 3
	footerRows   = 1
)

type cell struct {
	col int
	row int
}

type cellKind uint8

const (
	cellEmpty cellKind = iota
	cellDisc
	cellCenter
)

// arenaFor maps a terminal size to the pixel arena. The footer row is not
// part of the arena; the HUD rows are, as its top inset.
func arenaFor(width, height int) trainer.Arena {
	rows := height - footerRows
	if width <= 0 || rows <= hudRows {
		return trainer.Arena{}
	}
	return trainer.Arena{
		Width:    float64(width * cellWidthPx),
		Height:   float64(rows * cellHeightPx),
		TopInset: float64(hudRows * cellHeightPx),
	}
}

func cellMidpoint(c cell) (float64, float64) {
	return float64(c.col*cellWidthPx) + cellWidthPx/2, float64(c.row*cellHeightPx) + cellHeightPx/2
}

func cellAt(x, y float64) cell {
	return cell{
		col: int(math.Floor(x / cellWidthPx)),
		row: int(math.Floor(y / cellHeightPx)),
	}
}

func centerCell(t trainer.Target, size float64) cell {
	return cellAt(t.Center(size))
}

// covers reports whether the target is drawn on c: either c's center lies
// inside the circle or c holds the circle's center.
func covers(t trainer.Target, size float64, c cell) bool {
	if centerCell(t, size) == c {
		return true
	}
	x, y := cellMidpoint(c)
	return t.Contains(x, y, size)
}

func discCells(t trainer.Target, size float64) []cell {
	first := cellAt(t.X, t.Y)
	last := cellAt(t.X+size, t.Y+size)
	var cells []cell
	for row := first.row; row <= last.row; row++ {
		for col := first.col; col <= last.col; col++ {
			c := cell{col: col, row: row}
			if covers(t, size, c) {
				cells = append(cells, c)
			}
		}
	}
	return cells
}

// targetAt returns the topmost target drawn on c.
func targetAt(targets []trainer.Target, size float64, c cell) (trainer.Target, bool) {
	for i := len(targets) - 1; i >= 0; i-- {
		if covers(targets[i], size, c) {
			return targets[i], true
		}
	}
	return trainer.Target{}, false
}

// renderArena draws rows [firstRow, firstRow+rows) of the arena.
func renderArena(st styles, targets []trainer.Target, size float64, width, firstRow, rows int) []string {
	grid := make(map[cell]cellKind)
	for _, t := range targets {
		for _, c := range discCells(t, size) {
			if grid[c] == cellEmpty {
				grid[c] = cellDisc
			}
		}
		grid[centerCell(t, size)] = cellCenter
	}
	lines := make([]string, 0, rows)
	for row := firstRow; row < firstRow+rows; row++ {
		lines = append(lines, renderArenaRow(st, grid, row, width))
	}
	return lines
}

func renderArenaRow(st styles, grid map[cell]cellKind, row, width int) string {
	var b strings.Builder
	run := 0
	flush := func() {
		if run > 0 {
			b.WriteString(st.disc.Render(strings.Repeat(st.discFill, run)))
			run = 0
		}
	}
	for col := 0; col < width; col++ {
		switch grid[cell{col: col, row: row}] {
		case cellDisc:
			run++
		case cellCenter:
			flush()
			b.WriteString(st.center.Render("+"))
		default:
			flush()
			b.WriteByte(' ')
		}
	}
	flush()
	return b.String()
}
