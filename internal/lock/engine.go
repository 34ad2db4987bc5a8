package lock

import (
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"

	"penance/internal/theme"
)

// State is the engine lifecycle. Transitions are one-way: a lock that has
// left StateLocked never accepts input or renders frames again.
type State int

const (
	StateLocked State = iota
	StateUnlocking
	StateExited
)

const (
	bellPulses       = 3
	bellPulseSpacing = 150 * time.Millisecond
)

// Config is frozen before Run; the engine never re-reads flags or env.
type Config struct {
	Theme        string
	FrameDelay   time.Duration
	Words        []string
	Hash         []byte // bcrypt hash; enables exact-line mode
	Banner       string
	Hint         string
	Timeout      time.Duration // zero means no timeout
	Messages     []string
	MessageDelay time.Duration
	Sound        bool
	BlockSignals bool
}

// Engine owns all mutable lock state: grid dimensions, the active theme,
// the input tracker, and the lifecycle. Everything is touched only from
// the Run goroutine's select loop.
type Engine struct {
	cfg     Config
	screen  tcell.Screen
	theme   theme.Theme
	frame   *theme.Frame
	tracker *Tracker
	state   State
	frames  uint64

	frameTimer   *time.Timer
	timeoutTimer *time.Timer
}

// New validates cfg and builds an engine. The theme choice is fixed here;
// real dimensions are picked up when Run initializes the screen.
func New(cfg Config) (*Engine, error) {
	if cfg.FrameDelay <= 0 {
		cfg.FrameDelay = 30 * time.Millisecond
	}
	if cfg.MessageDelay <= 0 {
		cfg.MessageDelay = time.Second
	}
	if len(cfg.Words) == 0 && cfg.Hash == nil {
		return nil, fmt.Errorf("passphrase words must not be empty")
	}
	return &Engine{cfg: cfg, state: StateLocked}, nil
}

// State returns the current lifecycle state.
func (e *Engine) State() State { return e.state }

// Frames returns how many frames have been rendered.
func (e *Engine) Frames() uint64 { return e.frames }

// Run takes over the screen and blocks until the lock releases. It
// returns true if the passphrase was matched and false if the timeout
// forced an exit. The terminal is restored on every path out, including
// panics.
func (e *Engine) Run(s tcell.Screen) (unlocked bool, err error) {
	if err := s.Init(); err != nil {
		return false, fmt.Errorf("initializing screen: %w", err)
	}
	e.screen = s
	e.tracker = NewTracker(e.cfg.Words, e.cfg.Hash)
	defer func() {
		s.Fini()
		e.tracker.Destroy()
		e.state = StateExited
	}()

	s.Clear()
	s.HideCursor()

	width, height := s.Size()
	if width <= 0 || height <= 0 {
		return false, fmt.Errorf("unusable terminal size %dx%d", width, height)
	}
	e.frame = theme.NewFrame(width, height)
	e.theme, err = theme.New(e.cfg.Theme, width, height)
	if err != nil {
		return false, err
	}

	var guard *signalGuard
	if e.cfg.BlockSignals {
		guard = newSignalGuard(s)
		defer guard.Stop()
	}

	events := make(chan tcell.Event, 16)
	go func() {
		for {
			ev := s.PollEvent()
			if ev == nil {
				return
			}
			events <- ev
		}
	}()

	e.frameTimer = time.NewTimer(0)
	defer e.frameTimer.Stop()

	var timeoutC <-chan time.Time
	if e.cfg.Timeout > 0 {
		e.timeoutTimer = time.NewTimer(e.cfg.Timeout)
		defer e.timeoutTimer.Stop()
		timeoutC = e.timeoutTimer.C
	}

	for e.state == StateLocked {
		select {
		case ev := <-events:
			if err := e.handleEvent(ev); err != nil {
				return false, err
			}
		case <-e.frameTimer.C:
			e.renderFrame()
			e.frameTimer.Reset(e.cfg.FrameDelay)
		case <-timeoutC:
			e.state = StateExited
			e.frameTimer.Stop()
		}
	}

	if e.state != StateUnlocking {
		return false, nil
	}

	e.playUnlockCue()
	e.showExitMessages()
	return true, nil
}

func (e *Engine) handleEvent(ev tcell.Event) error {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		return e.handleKey(ev)
	case *tcell.EventResize:
		width, height := e.screen.Size()
		if width <= 0 || height <= 0 {
			return nil
		}
		e.frame = theme.NewFrame(width, height)
		e.theme.Resize(width, height)
		e.screen.Sync()
	case *tcell.EventInterrupt:
		// Posted by the signal guard; the only effect is the beep.
		e.beep()
	}
	return nil
}

func (e *Engine) handleKey(ev *tcell.EventKey) error {
	switch ev.Key() {
	case tcell.KeyCtrlC, tcell.KeyCtrlZ, tcell.KeyCtrlBackslash:
		return e.handleBreakKey(ev.Key())
	case tcell.KeyRune:
		if e.tracker.Key(ev.Rune()) {
			e.unlock()
			return nil
		}
		e.notifyKeyPress()
	case tcell.KeyEnter:
		if e.tracker.Enter() {
			e.unlock()
			return nil
		}
		e.notifyKeyPress()
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		if e.tracker.Backspace() {
			e.unlock()
			return nil
		}
		e.notifyKeyPress()
	}
	return nil
}

// handleBreakKey deals with Ctrl-C, Ctrl-Z and Ctrl-\. In raw mode these
// arrive as keys rather than signals; with blocking on they just beep,
// with blocking off they get their usual host behavior back.
func (e *Engine) handleBreakKey(key tcell.Key) error {
	if e.cfg.BlockSignals {
		e.beep()
		return nil
	}
	if key == tcell.KeyCtrlZ {
		if err := e.screen.Suspend(); err != nil {
			return err
		}
		raiseSuspend()
		return e.screen.Resume()
	}
	e.state = StateExited
	e.frameTimer.Stop()
	return ErrInterrupted
}

// unlock performs the Locked to Unlocking transition. The frame timer is
// stopped here, synchronously, so no frame scheduled before the matching
// keystroke can render after it.
func (e *Engine) unlock() {
	e.state = StateUnlocking
	e.frameTimer.Stop()
	if e.timeoutTimer != nil {
		e.timeoutTimer.Stop()
	}
}

func (e *Engine) notifyKeyPress() {
	if ka, ok := e.theme.(theme.KeyAware); ok {
		ka.OnKeyPress()
	}
}

func (e *Engine) beep() {
	if e.cfg.Sound {
		e.screen.Beep()
	}
}

func (e *Engine) renderFrame() {
	e.theme.Advance(e.frame)
	for y := 0; y < e.frame.Height; y++ {
		for x := 0; x < e.frame.Width; x++ {
			c := e.frame.At(x, y)
			e.screen.SetContent(x, y, c.Rune, nil, c.Style)
		}
	}
	e.overlay()
	e.screen.Show()
	e.frames++
}

// overlay draws the banner and hint on top of the blitted frame. It
// writes to the screen only; theme buffers are never touched.
func (e *Engine) overlay() {
	width, height := e.frame.Width, e.frame.Height
	mid := height / 2
	if e.cfg.Banner != "" {
		drawCentered(e.screen, width, mid, "  "+e.cfg.Banner+"  ", e.theme.BannerStyle())
	}
	if e.cfg.Hint != "" {
		hintStyle := tcell.StyleDefault.Foreground(tcell.ColorGray).Italic(true)
		drawCentered(e.screen, width, mid+2, e.cfg.Hint, hintStyle)
	}
}

// playUnlockCue rings the terminal bell in a short burst.
func (e *Engine) playUnlockCue() {
	if !e.cfg.Sound {
		return
	}
	for i := 0; i < bellPulses; i++ {
		if i > 0 {
			time.Sleep(bellPulseSpacing)
		}
		e.screen.Beep()
		e.screen.Show()
	}
}

// showExitMessages stacks the goodbye messages around mid-screen, one per
// delay interval, holding the final frame one more interval before the
// deferred restore runs.
func (e *Engine) showExitMessages() {
	if len(e.cfg.Messages) == 0 {
		return
	}
	e.screen.Clear()
	width, height := e.screen.Size()
	start := height/2 - len(e.cfg.Messages)/2
	style := tcell.StyleDefault.Foreground(tcell.ColorWhite).Bold(true)
	for i, msg := range e.cfg.Messages {
		drawCentered(e.screen, width, start+i, msg, style)
		e.screen.Show()
		time.Sleep(e.cfg.MessageDelay)
	}
}

func drawCentered(s tcell.Screen, width, row int, text string, style tcell.Style) {
	runes := []rune(text)
	col := (width - len(runes)) / 2
	if col < 0 {
		col = 0
	}
	for i, r := range runes {
		if col+i >= width {
			break
		}
		s.SetContent(col+i, row, r, nil, style)
	}
}
