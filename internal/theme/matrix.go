package theme

import (
	"math/rand"

	"github.com/gdamore/tcell/v2"
)

var matrixGlyphs = []rune("abcdefghijklmnopqrstuvwxyz0123456789$+-*/=%#&@!?<>")

var (
	matrixHead = tcell.StyleDefault.Foreground(tcell.ColorWhite).Bold(true)
	matrixMid  = tcell.StyleDefault.Foreground(tcell.ColorGreen).Bold(true)
	matrixTail = tcell.StyleDefault.Foreground(tcell.ColorGreen).Dim(true)
)

// matrixDrop is one falling streak. Position is the head's row; the tail
// of length cells trails above it.
type matrixDrop struct {
	pos    float64
	speed  float64
	length int
}

// matrixTheme runs one retriggering drop per column. A drop that falls
// past the bottom respawns above the top of the screen with fresh speed
// and length, so columns desynchronize over time.
type matrixTheme struct {
	width  int
	height int
	drops  []matrixDrop
	rng    *rand.Rand
}

func (t *matrixTheme) Name() string { return "matrix" }

func (t *matrixTheme) BannerStyle() tcell.Style {
	return tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorGreen).Bold(true)
}

func (t *matrixTheme) Resize(width, height int) {
	t.width = width
	t.height = height
	if t.rng == nil {
		t.rng = newRNG()
	}
	t.drops = make([]matrixDrop, width)
	for i := range t.drops {
		t.drops[i] = t.newDrop()
		// Stagger the initial fall so the first frames are not a wall.
		t.drops[i].pos = -float64(t.rng.Intn(height + 1))
	}
}

func (t *matrixTheme) newDrop() matrixDrop {
	return matrixDrop{
		pos:    -float64(1 + t.rng.Intn(t.height)),
		speed:  0.2 + t.rng.Float64()*0.8,
		length: 5 + t.rng.Intn(16),
	}
}

func (t *matrixTheme) Advance(f *Frame) {
	f.Clear()
	rows := f.drawRows()
	for col := range t.drops {
		d := &t.drops[col]
		d.pos += d.speed
		if d.pos >= float64(t.height+d.length) {
			*d = t.newDrop()
		}

		head := int(d.pos)
		for k := 0; k < d.length; k++ {
			row := head - k
			if row < 0 || row >= rows {
				continue
			}
			style := matrixTail
			switch {
			case k == 0:
				style = matrixHead
			case k <= 2:
				style = matrixMid
			}
			f.Set(col, row, matrixGlyphs[t.rng.Intn(len(matrixGlyphs))], style)
		}
	}
}
