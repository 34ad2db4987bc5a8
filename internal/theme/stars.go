package theme

import (
	"math"
	"math/rand"

	"github.com/gdamore/tcell/v2"
)

const starDensity = 20 // one star per this many cells

var (
	starGlyphs = []rune{'.', '·', '+', '*', '✦'}
	starStyles = []tcell.Style{
		tcell.StyleDefault.Foreground(tcell.ColorGray).Dim(true),
		tcell.StyleDefault.Foreground(tcell.ColorGray),
		tcell.StyleDefault.Foreground(tcell.ColorSilver),
		tcell.StyleDefault.Foreground(tcell.ColorWhite).Bold(true),
	}
)

type star struct {
	x, y         int
	twinkleSpeed float64
	phase        float64
}

// starsTheme scatters a fixed set of stars at init; animation is pure
// phase advance, positions never move.
type starsTheme struct {
	width  int
	height int
	stars  []star
	rng    *rand.Rand
}

func (t *starsTheme) Name() string { return "stars" }

func (t *starsTheme) BannerStyle() tcell.Style {
	return tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorSilver)
}

func (t *starsTheme) Resize(width, height int) {
	t.width = width
	t.height = height
	if t.rng == nil {
		t.rng = newRNG()
	}
	count := width * height / starDensity
	if count < 1 {
		count = 1
	}
	t.stars = make([]star, count)
	for i := range t.stars {
		t.stars[i] = star{
			x:            t.rng.Intn(width),
			y:            t.rng.Intn(height),
			twinkleSpeed: 0.02 + t.rng.Float64()*0.1,
			phase:        t.rng.Float64() * 2 * math.Pi,
		}
	}
}

func (t *starsTheme) Advance(f *Frame) {
	f.Clear()
	rows := f.drawRows()
	for i := range t.stars {
		s := &t.stars[i]
		s.phase += s.twinkleSpeed
		if s.y >= rows {
			continue
		}
		brightness := (math.Sin(s.phase) + 1) / 2
		glyph := int(brightness * float64(len(starGlyphs)))
		if glyph >= len(starGlyphs) {
			glyph = len(starGlyphs) - 1
		}
		tier := int(brightness * float64(len(starStyles)))
		if tier >= len(starStyles) {
			tier = len(starStyles) - 1
		}
		f.Set(s.x, s.y, starGlyphs[glyph], starStyles[tier])
	}
}
