package theme

import (
	"math/rand"

	"github.com/gdamore/tcell/v2"
)

var staticChars = []rune{' ', '.', ':', '-', '=', '+', '*', '#', '%', '@'}

var staticStyles = []tcell.Style{
	tcell.StyleDefault.Foreground(tcell.ColorBlack),
	tcell.StyleDefault.Foreground(tcell.ColorGray).Dim(true),
	tcell.StyleDefault.Foreground(tcell.ColorGray).Dim(true),
	tcell.StyleDefault.Foreground(tcell.ColorGray),
	tcell.StyleDefault.Foreground(tcell.ColorGray),
	tcell.StyleDefault.Foreground(tcell.ColorSilver),
	tcell.StyleDefault.Foreground(tcell.ColorSilver),
	tcell.StyleDefault.Foreground(tcell.ColorWhite),
	tcell.StyleDefault.Foreground(tcell.ColorWhite),
	tcell.StyleDefault.Foreground(tcell.ColorWhite).Bold(true),
}

// staticTheme is analog TV snow: every cell is an independent uniform
// draw each frame, no state survives between frames.
type staticTheme struct {
	width  int
	height int
	rng    *rand.Rand
}

func (t *staticTheme) Name() string { return "static" }

func (t *staticTheme) BannerStyle() tcell.Style {
	return tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorWhite)
}

func (t *staticTheme) Resize(width, height int) {
	t.width = width
	t.height = height
	if t.rng == nil {
		t.rng = newRNG()
	}
}

func (t *staticTheme) Advance(f *Frame) {
	rows := f.drawRows()
	for y := 0; y < rows; y++ {
		for x := 0; x < t.width; x++ {
			i := t.rng.Intn(len(staticChars))
			f.Set(x, y, staticChars[i], staticStyles[i])
		}
	}
}
