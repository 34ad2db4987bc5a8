package theme

import (
	"math/rand"

	"github.com/gdamore/tcell/v2"
)

const rainDensity = 30 // one drop per this many cells

var rainGlyphs = []rune{'|', ':', '\'', '.'}

var (
	rainBright = tcell.StyleDefault.Foreground(tcell.ColorBlue).Bold(true)
	rainDim    = tcell.StyleDefault.Foreground(tcell.ColorNavy).Dim(true)
)

type rainDrop struct {
	x     float64
	y     float64
	speed float64
	glyph rune
}

// rainTheme keeps a fixed population of drops; one that passes the bottom
// respawns at the top in a fresh column with a fresh speed.
type rainTheme struct {
	width  int
	height int
	drops  []rainDrop
	rng    *rand.Rand
}

func (t *rainTheme) Name() string { return "rain" }

func (t *rainTheme) BannerStyle() tcell.Style {
	return tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorNavy).Bold(true)
}

func (t *rainTheme) Resize(width, height int) {
	t.width = width
	t.height = height
	if t.rng == nil {
		t.rng = newRNG()
	}
	count := width * height / rainDensity
	if count < 1 {
		count = 1
	}
	t.drops = make([]rainDrop, count)
	for i := range t.drops {
		t.drops[i] = t.newDrop()
		t.drops[i].y = t.rng.Float64() * float64(height)
	}
}

func (t *rainTheme) newDrop() rainDrop {
	return rainDrop{
		x:     float64(t.rng.Intn(t.width)),
		y:     0,
		speed: 0.4 + t.rng.Float64()*1.2,
		glyph: rainGlyphs[t.rng.Intn(len(rainGlyphs))],
	}
}

func (t *rainTheme) Advance(f *Frame) {
	f.Clear()
	rows := f.drawRows()
	for i := range t.drops {
		d := &t.drops[i]
		d.y += d.speed
		if d.y >= float64(t.height) {
			*d = t.newDrop()
		}

		col := int(d.x)
		row := int(d.y)
		if row < rows {
			f.Set(col, row, d.glyph, rainBright)
		}
		if row-1 >= 0 && row-1 < rows {
			f.Set(col, row-1, d.glyph, rainDim)
		}
	}
}
