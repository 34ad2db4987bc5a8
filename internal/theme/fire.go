package theme

import (
	"math/rand"

	"github.com/gdamore/tcell/v2"
)

// Heat feedback parameters. Typing stokes the fire; the burst decays a
// few frames after the last keypress.
const (
	baseHeatPower     = 75
	burstHeat         = 12
	maxBurstHeat      = 150
	cooldownRate      = 2
	cooldownDelay     = 5
	heatSourceDivisor = 9
)

var (
	fireChars  = []rune{' ', '.', ':', '^', '*', 'x', 's', 'S', '#', '$'}
	fireStyles = []tcell.Style{
		tcell.StyleDefault.Foreground(tcell.ColorBlack),
		tcell.StyleDefault.Foreground(tcell.ColorMaroon),
		tcell.StyleDefault.Foreground(tcell.ColorRed),
		tcell.StyleDefault.Foreground(tcell.ColorDarkOrange),
		tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true),
	}
)

// fireTheme is the classic stack fire: heat is seeded along the bottom row
// and each cell diffuses toward the average of itself and its right, down,
// and down-right neighbors from the previous frame.
type fireTheme struct {
	width  int
	height int
	buffer []int
	sparks int
	rng    *rand.Rand

	burst            int
	framesSinceInput int
}

func (t *fireTheme) Name() string { return "fire" }

func (t *fireTheme) BannerStyle() tcell.Style {
	return tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorDarkOrange).Bold(true)
}

func (t *fireTheme) Resize(width, height int) {
	t.width = width
	t.height = height
	// The extra row and cell feed the down and down-right reads of the
	// last buffered row.
	t.buffer = make([]int, width*height+width+1)
	t.sparks = width / heatSourceDivisor
	if t.sparks < 1 {
		t.sparks = 1
	}
	if t.rng == nil {
		t.rng = newRNG()
	}
	t.burst = 0
	t.framesSinceInput = 0
}

// OnKeyPress stokes the fire and restarts the cooldown clock.
func (t *fireTheme) OnKeyPress() {
	t.burst += burstHeat
	if t.burst > maxBurstHeat {
		t.burst = maxBurstHeat
	}
	t.framesSinceInput = 0
}

func (t *fireTheme) Advance(f *Frame) {
	t.framesSinceInput++
	if t.framesSinceInput > cooldownDelay {
		t.burst -= cooldownRate
		if t.burst < 0 {
			t.burst = 0
		}
	}

	heat := baseHeatPower + t.burst
	for i := 0; i < t.sparks; i++ {
		idx := t.rng.Intn(t.width) + t.width*(t.height-1)
		if idx >= 0 && idx < len(t.buffer) {
			t.buffer[idx] = heat
		}
	}

	size := t.width * t.height
	rows := f.drawRows()
	for i := 0; i < size; i++ {
		v := (t.buffer[i] + t.buffer[i+1] + t.buffer[i+t.width] + t.buffer[i+t.width+1]) / 4
		t.buffer[i] = v
		row := i / t.width
		col := i % t.width
		if row >= rows {
			continue
		}
		var style tcell.Style
		switch {
		case v > 15:
			style = fireStyles[4]
		case v > 9:
			style = fireStyles[3]
		case v > 4:
			style = fireStyles[2]
		default:
			style = fireStyles[1]
		}
		chIdx := v
		if chIdx > len(fireChars)-1 {
			chIdx = len(fireChars) - 1
		}
		if chIdx < 0 {
			chIdx = 0
		}
		f.Set(col, row, fireChars[chIdx], style)
	}
}
