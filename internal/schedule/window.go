// Package schedule decides whether the lock is allowed to start at a
// given moment. The window is evaluated exactly once at startup; the
// engine itself never consults the clock.
package schedule

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

var dayNames = map[string]time.Weekday{
	"sun": time.Sunday,
	"mon": time.Monday,
	"tue": time.Tuesday,
	"wed": time.Wednesday,
	"thu": time.Thursday,
	"fri": time.Friday,
	"sat": time.Saturday,
}

// Window restricts activation to a set of weekdays and a daily time
// range. A zero Window is always active. When Start > End the range
// wraps past midnight; the day filter then applies to the day the
// window opened, so a fri 22:00-06:00 window covers Saturday's early
// morning hours.
type Window struct {
	Days     map[time.Weekday]bool
	Start    int // minutes of day, inclusive
	End      int // minutes of day, exclusive
	HasRange bool
}

// Parse builds a Window from flag values. days is a comma list of
// three-letter day names; from and until are "HH:MM". All three may be
// empty, but from and until must be given together.
func Parse(days, from, until string) (Window, error) {
	var w Window
	if days != "" {
		w.Days = make(map[time.Weekday]bool)
		for _, d := range strings.Split(days, ",") {
			d = strings.ToLower(strings.TrimSpace(d))
			if d == "" {
				continue
			}
			wd, ok := dayNames[d]
			if !ok {
				return Window{}, fmt.Errorf("unknown day %q (use mon..sun)", d)
			}
			w.Days[wd] = true
		}
	}
	if (from == "") != (until == "") {
		return Window{}, fmt.Errorf("-from and -until must be given together")
	}
	if from != "" {
		start, err := parseClock(from)
		if err != nil {
			return Window{}, fmt.Errorf("parsing -from: %w", err)
		}
		end, err := parseClock(until)
		if err != nil {
			return Window{}, fmt.Errorf("parsing -until: %w", err)
		}
		w.Start, w.End, w.HasRange = start, end, true
	}
	return w, nil
}

func parseClock(s string) (int, error) {
	hh, mm, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return 0, fmt.Errorf("want HH:MM, got %q", s)
	}
	h, err := strconv.Atoi(hh)
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("bad hour in %q", s)
	}
	m, err := strconv.Atoi(mm)
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("bad minute in %q", s)
	}
	return h*60 + m, nil
}

// Active reports whether t falls inside the window.
func (w Window) Active(t time.Time) bool {
	if !w.HasRange {
		return w.dayOK(t.Weekday())
	}
	minute := t.Hour()*60 + t.Minute()
	if w.Start <= w.End {
		return w.dayOK(t.Weekday()) && minute >= w.Start && minute < w.End
	}
	// Wrapped range spanning midnight.
	if minute >= w.Start {
		return w.dayOK(t.Weekday())
	}
	if minute < w.End {
		// Early-morning tail belongs to the day the window opened.
		return w.dayOK(t.AddDate(0, 0, -1).Weekday())
	}
	return false
}

func (w Window) dayOK(d time.Weekday) bool {
	if len(w.Days) == 0 {
		return true
	}
	return w.Days[d]
}
