package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/peterbourgon/ff/v3"
	"github.com/peterbourgon/ff/v3/ffcli"

	"penance/internal/lock"
	"penance/internal/schedule"
	"penance/internal/theme"
)

const (
	defaultFrameDelayMs   = 30
	defaultMessageDelayMs = 1000
	defaultWords          = "please,sorry"
	defaultBanner         = "This terminal is locked"
	defaultMessages       = "Apology accepted.|Don't let it happen again.|Unlocking..."
)

var errTimedOut = errors.New("lock timed out")

func main() {
	rootFlagSet := flag.NewFlagSet("penance", flag.ExitOnError)
	rootTheme := rootFlagSet.String("theme", "fire", "Animation theme (fire|matrix|stars|static|rain)")
	rootDelay := rootFlagSet.Int("delay", defaultFrameDelayMs, "Frame delay in milliseconds")
	rootWords := rootFlagSet.String("words", defaultWords, "Comma-separated passphrase words (all must be typed, any order)")
	rootHash := rootFlagSet.String("passphrase-hash", "", "bcrypt hash; unlock when a typed line matches it exactly")
	rootBanner := rootFlagSet.String("banner", defaultBanner, "Banner text shown over the animation")
	rootHint := rootFlagSet.String("hint", "", "Optional hint shown below the banner")
	rootTimeout := rootFlagSet.Int("timeout", 0, "Give up and exit after this many seconds (0 disables)")
	rootMessages := rootFlagSet.String("messages", defaultMessages, "Pipe-separated goodbye messages shown on unlock")
	rootMsgDelay := rootFlagSet.Int("message-delay", defaultMessageDelayMs, "Delay between goodbye messages in milliseconds")
	rootNoSound := rootFlagSet.Bool("no-sound", false, "Disable the terminal bell")
	rootAllowSignals := rootFlagSet.Bool("allow-signals", false, "Let Ctrl-C/Ctrl-Z/Ctrl-\\ behave normally instead of beeping")
	rootDays := rootFlagSet.String("days", "", "Only lock on these days (comma list, e.g. mon,tue,fri)")
	rootFrom := rootFlagSet.String("from", "", "Only lock from this time of day (HH:MM)")
	rootUntil := rootFlagSet.String("until", "", "Only lock until this time of day (HH:MM; before -from wraps overnight)")

	// Preview command flags
	previewFlagSet := flag.NewFlagSet("penance preview", flag.ExitOnError)
	previewTheme := previewFlagSet.String("theme", "fire", "Animation theme to preview")
	previewDelay := previewFlagSet.Int("delay", defaultFrameDelayMs, "Frame delay in milliseconds")

	// Idle command flags
	idleFlagSet := flag.NewFlagSet("penance idle", flag.ExitOnError)
	idleTimeout := idleFlagSet.Int("timeout", defaultIdleTimeout, "Idle timeout in seconds before locking")
	idleOnce := idleFlagSet.Bool("once", false, "Lock immediately and exit")
	idleTheme := idleFlagSet.String("theme", "fire", "Animation theme for the triggered lock")

	themesCmd := &ffcli.Command{
		Name:       "themes",
		ShortUsage: "penance themes",
		ShortHelp:  "List available animation themes",
		Exec: func(ctx context.Context, args []string) error {
			for _, name := range theme.Names {
				fmt.Println(name)
			}
			return nil
		},
	}

	previewCmd := &ffcli.Command{
		Name:       "preview",
		ShortUsage: "penance preview [flags]",
		ShortHelp:  "Run a theme full-screen without locking; any key exits",
		FlagSet:    previewFlagSet,
		Options:    []ff.Option{ff.WithEnvVarPrefix("PENANCE")},
		Exec: func(ctx context.Context, args []string) error {
			return execPreview(*previewTheme, *previewDelay)
		},
	}

	idleCmd := &ffcli.Command{
		Name:       "idle",
		ShortUsage: "penance idle [flags]",
		ShortHelp:  "Watch tmux activity and lock after an idle period",
		FlagSet:    idleFlagSet,
		Options:    []ff.Option{ff.WithEnvVarPrefix("PENANCE")},
		Exec: func(ctx context.Context, args []string) error {
			return execIdle(*idleTimeout, *idleOnce, *idleTheme)
		},
	}

	rootCmd := &ffcli.Command{
		ShortUsage:  "penance [flags] <subcommand>",
		ShortHelp:   "Lock the terminal behind an animated passphrase prompt",
		LongHelp:    "Type the passphrase words anywhere in your input to unlock.\nDefault passphrase: please sorry",
		FlagSet:     rootFlagSet,
		Options:     []ff.Option{ff.WithEnvVarPrefix("PENANCE")},
		Subcommands: []*ffcli.Command{themesCmd, previewCmd, idleCmd},
		Exec: func(ctx context.Context, args []string) error {
			window, err := schedule.Parse(*rootDays, *rootFrom, *rootUntil)
			if err != nil {
				return err
			}
			if !window.Active(time.Now()) {
				return fmt.Errorf("outside the active lock window")
			}
			cfg := lock.Config{
				Theme:        *rootTheme,
				FrameDelay:   time.Duration(*rootDelay) * time.Millisecond,
				Words:        splitWords(*rootWords),
				Banner:       *rootBanner,
				Hint:         *rootHint,
				Timeout:      time.Duration(*rootTimeout) * time.Second,
				Messages:     splitMessages(*rootMessages),
				MessageDelay: time.Duration(*rootMsgDelay) * time.Millisecond,
				Sound:        !*rootNoSound,
				BlockSignals: !*rootAllowSignals,
			}
			if *rootHash != "" {
				cfg.Hash = []byte(*rootHash)
			}
			return execLock(cfg)
		},
	}

	if err := rootCmd.ParseAndRun(context.Background(), os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func splitWords(s string) []string {
	var words []string
	for _, w := range strings.Split(s, ",") {
		w = strings.ToLower(strings.TrimSpace(w))
		if w != "" {
			words = append(words, w)
		}
	}
	return words
}

func splitMessages(s string) []string {
	var msgs []string
	for _, m := range strings.Split(s, "|") {
		if m = strings.TrimSpace(m); m != "" {
			msgs = append(msgs, m)
		}
	}
	return msgs
}

// ============================================================================
// Lock (root) command
// ============================================================================

func execLock(cfg lock.Config) error {
	engine, err := lock.New(cfg)
	if err != nil {
		return err
	}
	s, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("creating screen: %w", err)
	}
	unlocked, err := engine.Run(s)
	if err != nil {
		return err
	}
	if !unlocked {
		return errTimedOut
	}
	return nil
}

// ============================================================================
// Preview command
// ============================================================================

func execPreview(name string, delayMs int) error {
	s, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("creating screen: %w", err)
	}
	if err := s.Init(); err != nil {
		return fmt.Errorf("initializing screen: %w", err)
	}
	defer s.Fini()

	s.Clear()
	s.HideCursor()

	width, height := s.Size()
	if width <= 0 || height <= 0 {
		return nil
	}
	frame := theme.NewFrame(width, height)
	th, err := theme.New(name, width, height)
	if err != nil {
		return err
	}

	events := make(chan tcell.Event, 10)
	go func() {
		for {
			ev := s.PollEvent()
			if ev == nil {
				return
			}
			events <- ev
		}
	}()

	frameDelay := time.Duration(delayMs) * time.Millisecond
	for {
		select {
		case ev := <-events:
			switch ev.(type) {
			case *tcell.EventKey:
				return nil
			case *tcell.EventResize:
				width, height = s.Size()
				if width <= 0 || height <= 0 {
					return nil
				}
				frame = theme.NewFrame(width, height)
				th.Resize(width, height)
				s.Sync()
			}
		default:
		}

		th.Advance(frame)
		for y := 0; y < frame.Height; y++ {
			for x := 0; x < frame.Width; x++ {
				c := frame.At(x, y)
				s.SetContent(x, y, c.Rune, nil, c.Style)
			}
		}
		s.Show()
		time.Sleep(frameDelay)
	}
}

// ============================================================================
// Idle watcher command
// ============================================================================

const (
	defaultIdleTimeout = 300
	pollInterval       = 5
)

func execIdle(timeout int, once bool, themeName string) error {
	exePath, err := os.Executable()
	if err != nil {
		return fmt.Errorf("finding executable path: %w", err)
	}

	if once {
		triggerLock(context.Background(), exePath, themeName)
		return nil
	}

	if os.Getenv("TMUX") == "" {
		return fmt.Errorf("not running inside tmux")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	fmt.Printf("penance idle watcher started (timeout: %ds, poll: %ds)\n", timeout, pollInterval)

	ticker := time.NewTicker(time.Duration(pollInterval) * time.Second)
	defer ticker.Stop()

	// After a lock ends, wait for the user to become active again before
	// re-arming, since tmux popup interactions don't update
	// #{client_activity}.
	waitingForActivity := false

	for {
		select {
		case <-ctx.Done():
			fmt.Println("penance idle watcher stopped")
			return nil
		case <-ticker.C:
			idleSeconds, err := getClientIdleTime(ctx)
			if err != nil {
				continue
			}

			if waitingForActivity {
				if idleSeconds < timeout {
					waitingForActivity = false
				}
			} else if idleSeconds >= timeout {
				triggerLock(ctx, exePath, themeName)
				waitingForActivity = true
			}
		}
	}
}

func getClientIdleTime(ctx context.Context) (int, error) {
	cmd := exec.CommandContext(ctx, "tmux", "display-message", "-p", "#{client_activity}")
	out, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("get client activity: %w", err)
	}

	activityStr := strings.TrimSpace(string(out))
	if activityStr == "" {
		return 0, fmt.Errorf("empty activity timestamp")
	}

	activityTime, err := strconv.ParseInt(activityStr, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse activity timestamp: %w", err)
	}

	now := time.Now().Unix()
	idle := max(int(now-activityTime), 0)
	return idle, nil
}

func triggerLock(ctx context.Context, exePath, themeName string) {
	cmdStr := strings.Join([]string{exePath, "-theme", themeName}, " ")

	popupArgs := []string{
		"display-popup",
		"-E",
		"-w", "100%",
		"-h", "100%",
		cmdStr,
	}

	// Not CommandContext: the popup is interactive and must outlive a
	// watcher shutdown signal so the user can still unlock it.
	cmd := exec.Command("tmux", popupArgs...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Stdin = os.Stdin
	cmd.Run()
}
