// Package theme holds the five full-screen animations the lock can run.
// Each theme advances its own state once per frame and draws into a Frame,
// which the caller blits to the terminal. Themes never touch the bottom
// row; it is reserved for the cursor parking spot.
package theme

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/gdamore/tcell/v2"
)

// Names lists the available themes in display order.
var Names = []string{"fire", "matrix", "stars", "static", "rain"}

// Theme is one animation. Resize reinitializes all per-cell state from the
// new dimensions; Advance steps the animation one frame and draws it.
type Theme interface {
	Name() string
	Resize(width, height int)
	Advance(f *Frame)
	BannerStyle() tcell.Style
}

// KeyAware is implemented by themes that react to keystrokes.
type KeyAware interface {
	OnKeyPress()
}

// New constructs the named theme sized to the given grid. The choice is
// fixed for the lifetime of the returned Theme.
func New(name string, width, height int) (Theme, error) {
	var t Theme
	switch name {
	case "fire":
		t = &fireTheme{}
	case "matrix":
		t = &matrixTheme{}
	case "stars":
		t = &starsTheme{}
	case "static":
		t = &staticTheme{}
	case "rain":
		t = &rainTheme{}
	default:
		return nil, fmt.Errorf("unknown theme %q (available: %v)", name, Names)
	}
	t.Resize(width, height)
	return t, nil
}

func newRNG() *rand.Rand {
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}

// Cell is one styled character in a frame.
type Cell struct {
	Rune  rune
	Style tcell.Style
}

// Frame is the grid a theme renders into. It is reallocated only on
// resize, never by a theme.
type Frame struct {
	Width  int
	Height int
	cells  []Cell
}

func NewFrame(width, height int) *Frame {
	f := &Frame{Width: width, Height: height, cells: make([]Cell, width*height)}
	f.Clear()
	return f
}

// Clear resets every cell to a blank with default styling.
func (f *Frame) Clear() {
	for i := range f.cells {
		f.cells[i] = Cell{Rune: ' ', Style: tcell.StyleDefault}
	}
}

func (f *Frame) Set(x, y int, r rune, style tcell.Style) {
	if x < 0 || x >= f.Width || y < 0 || y >= f.Height {
		return
	}
	f.cells[y*f.Width+x] = Cell{Rune: r, Style: style}
}

func (f *Frame) At(x, y int) Cell {
	if x < 0 || x >= f.Width || y < 0 || y >= f.Height {
		return Cell{Rune: ' ', Style: tcell.StyleDefault}
	}
	return f.cells[y*f.Width+x]
}

// drawRows is the number of rows a theme may draw into.
func (f *Frame) drawRows() int {
	if f.Height < 1 {
		return 0
	}
	return f.Height - 1
}
