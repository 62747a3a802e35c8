package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

type styleID int

const (
	stPlain styleID = iota
	stBird
	stStreak
	stCaption
	stBorder
	stDigits
	stLabel
	stControl
	stBadge
)

type cell struct {
	r     rune
	style styleID
	// cont marks the trailing cells of a wide rune.
	cont bool
}

// canvas is a fixed grid of cells. Rows are rendered by grouping runs of the
// same style so lipgloss only wraps what changes.
type canvas struct {
	w, h  int
	cells []cell
}

func newCanvas(w, h int) *canvas {
	c := &canvas{w: w, h: h, cells: make([]cell, w*h)}
	for i := range c.cells {
		c.cells[i].r = ' '
	}
	return c
}

// put writes s starting at (x, y). Anything outside the grid is clipped.
func (c *canvas) put(x, y int, s string, st styleID) {
	if y < 0 || y >= c.h {
		return
	}
	for _, r := range s {
		rw := runewidth.RuneWidth(r)
		if rw == 0 {
			continue
		}
		if x >= 0 && x+rw <= c.w {
			c.cells[y*c.w+x] = cell{r: r, style: st}
			for k := 1; k < rw; k++ {
				c.cells[y*c.w+x+k] = cell{style: st, cont: true}
			}
		}
		x += rw
	}
}

func (c *canvas) render(styles map[styleID]lipgloss.Style) string {
	var b strings.Builder
	var run strings.Builder
	for y := 0; y < c.h; y++ {
		if y > 0 {
			b.WriteByte('\n')
		}
		row := c.cells[y*c.w : (y+1)*c.w]
		cur := stPlain
		flush := func() {
			if run.Len() == 0 {
				return
			}
			text := run.String()
			if st, ok := styles[cur]; ok {
				text = st.Render(text)
			}
			b.WriteString(text)
			run.Reset()
		}
		for _, cl := range row {
			if cl.cont {
				continue
			}
			if cl.style != cur {
				flush()
				cur = cl.style
			}
			run.WriteRune(cl.r)
		}
		flush()
	}
	return b.String()
}
