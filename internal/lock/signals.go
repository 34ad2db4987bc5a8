package lock

import (
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/gdamore/tcell/v2"
)

// ErrInterrupted is returned by Run when signal blocking is disabled and
// the user hit an interrupt or quit key.
var ErrInterrupted = errors.New("interrupted")

// signalGuard swallows interrupt, suspend and quit signals sent from
// outside the terminal (kill -INT and friends; the in-terminal control
// keys arrive as key events under raw mode). Each swallowed signal is
// posted back into the event loop so the beep happens on the render
// goroutine, which is the only writer to the terminal.
type signalGuard struct {
	ch   chan os.Signal
	done chan struct{}
}

func newSignalGuard(s tcell.Screen) *signalGuard {
	g := &signalGuard{
		ch:   make(chan os.Signal, 4),
		done: make(chan struct{}),
	}
	signal.Notify(g.ch, syscall.SIGINT, syscall.SIGTSTP, syscall.SIGQUIT)
	go func() {
		for {
			select {
			case <-g.ch:
				s.PostEvent(tcell.NewEventInterrupt(nil))
			case <-g.done:
				return
			}
		}
	}()
	return g
}

// Stop unregisters the guard and restores default signal disposition.
func (g *signalGuard) Stop() {
	signal.Stop(g.ch)
	close(g.done)
}

// raiseSuspend sends SIGTSTP to our own process group, the default
// disposition Ctrl-Z would have had outside raw mode.
func raiseSuspend() {
	_ = syscall.Kill(0, syscall.SIGTSTP)
}
