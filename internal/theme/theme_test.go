package theme

import (
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("all registered themes construct", func(t *testing.T) {
		for _, name := range Names {
			th, err := New(name, 40, 12)
			require.NoError(t, err, "theme %q", name)
			assert.Equal(t, name, th.Name())
		}
	})

	t.Run("unknown theme", func(t *testing.T) {
		_, err := New("lava", 40, 12)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "lava")
	})
}

func TestFrameBounds(t *testing.T) {
	f := NewFrame(10, 5)

	// Out-of-range writes are dropped, not panics.
	f.Set(-1, 0, 'x', tcell.StyleDefault)
	f.Set(10, 0, 'x', tcell.StyleDefault)
	f.Set(0, 5, 'x', tcell.StyleDefault)

	assert.Equal(t, ' ', f.At(-1, 0).Rune)
	assert.Equal(t, ' ', f.At(3, 99).Rune)

	f.Set(3, 2, 'x', tcell.StyleDefault)
	assert.Equal(t, 'x', f.At(3, 2).Rune)
}

func TestBottomRowReserved(t *testing.T) {
	for _, name := range Names {
		t.Run(name, func(t *testing.T) {
			th, err := New(name, 30, 10)
			require.NoError(t, err)
			f := NewFrame(30, 10)
			for i := 0; i < 20; i++ {
				th.Advance(f)
			}
			for x := 0; x < 30; x++ {
				assert.Equal(t, ' ', f.At(x, 9).Rune, "theme %q wrote to reserved row at col %d", name, x)
			}
		})
	}
}

func TestMatrixDropWraps(t *testing.T) {
	th, err := New("matrix", 6, 10)
	require.NoError(t, err)
	m := th.(*matrixTheme)

	m.drops[0] = matrixDrop{pos: float64(10 + 5), speed: 0.5, length: 5}
	m.Advance(NewFrame(6, 10))

	assert.Less(t, m.drops[0].pos, 0.0, "wrapped drop must restart above the screen")
	assert.GreaterOrEqual(t, m.drops[0].length, 5)
	assert.LessOrEqual(t, m.drops[0].length, 20)
}

func TestMatrixDropStyling(t *testing.T) {
	th, err := New("matrix", 3, 20)
	require.NoError(t, err)
	m := th.(*matrixTheme)

	// Park a drop mid-screen and freeze the others off-screen.
	m.drops[0] = matrixDrop{pos: 10, speed: 0, length: 6}
	m.drops[1] = matrixDrop{pos: -100, speed: 0, length: 5}
	m.drops[2] = matrixDrop{pos: -100, speed: 0, length: 5}

	f := NewFrame(3, 20)
	m.Advance(f)

	assert.Equal(t, matrixHead, f.At(0, 10).Style, "head cell")
	assert.Equal(t, matrixMid, f.At(0, 9).Style, "first trail cell")
	assert.Equal(t, matrixMid, f.At(0, 8).Style, "second trail cell")
	assert.Equal(t, matrixTail, f.At(0, 7).Style, "tail cell")
	assert.Equal(t, ' ', f.At(0, 4).Rune, "beyond the streak")
}

func TestRainDropWraps(t *testing.T) {
	th, err := New("rain", 8, 10)
	require.NoError(t, err)
	r := th.(*rainTheme)

	r.drops[0] = rainDrop{x: 3, y: 9.5, speed: 1.0, glyph: '|'}
	r.Advance(NewFrame(8, 10))

	assert.Equal(t, 0.0, r.drops[0].y, "wrapped drop respawns at the top")
	assert.GreaterOrEqual(t, r.drops[0].speed, 0.4)
}

func TestRainDrawsTrail(t *testing.T) {
	th, err := New("rain", 8, 12)
	require.NoError(t, err)
	r := th.(*rainTheme)

	for i := range r.drops {
		r.drops[i] = rainDrop{x: 0, y: -100, speed: 0, glyph: '|'}
	}
	r.drops[0] = rainDrop{x: 4, y: 4, speed: 1, glyph: '|'}

	f := NewFrame(8, 12)
	r.Advance(f)

	// After the advance the drop sits at row 5 with its trail at row 4.
	assert.Equal(t, '|', f.At(4, 5).Rune)
	assert.Equal(t, rainBright, f.At(4, 5).Style)
	assert.Equal(t, '|', f.At(4, 4).Rune)
	assert.Equal(t, rainDim, f.At(4, 4).Style)
}

func TestStaticFramesAreIndependent(t *testing.T) {
	th, err := New("static", 40, 15)
	require.NoError(t, err)

	a := NewFrame(40, 15)
	b := NewFrame(40, 15)
	th.Advance(a)
	th.Advance(b)

	differ := 0
	for y := 0; y < 14; y++ {
		for x := 0; x < 40; x++ {
			if a.At(x, y) != b.At(x, y) {
				differ++
			}
		}
	}
	assert.Greater(t, differ, 0, "consecutive static frames should be distinct draws")
}

func TestStarsTwinkleInPlace(t *testing.T) {
	th, err := New("stars", 40, 15)
	require.NoError(t, err)
	s := th.(*starsTheme)

	type pos struct{ x, y int }
	before := make([]pos, len(s.stars))
	phases := make([]float64, len(s.stars))
	for i, st := range s.stars {
		before[i] = pos{st.x, st.y}
		phases[i] = st.phase
	}

	f := NewFrame(40, 15)
	for i := 0; i < 10; i++ {
		s.Advance(f)
	}

	for i, st := range s.stars {
		assert.Equal(t, before[i], pos{st.x, st.y}, "star %d moved", i)
		assert.Greater(t, st.phase, phases[i], "star %d phase did not advance", i)
	}
}

func TestResizeReallocatesState(t *testing.T) {
	th, err := New("matrix", 10, 10)
	require.NoError(t, err)
	m := th.(*matrixTheme)
	require.Len(t, m.drops, 10)

	m.Resize(25, 8)
	assert.Len(t, m.drops, 25, "one drop per column after resize")

	f := NewFrame(25, 8)
	m.Advance(f) // must not index out of range
}
