package utils

import (
	"fmt"
	"sync"
	"time"

	"github.com/julianstephens/habitlit/internal/constants"
)

// Clock is the single authoritative source of "now" for the engine.
type Clock interface {
	Now() time.Time
}

type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

// FakeClock is deterministic and test-friendly.
type FakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func NewFakeClock(start time.Time) *FakeClock {
	return &FakeClock{t: start}
}

// NewFakeClockOn returns a FakeClock pinned to noon UTC of the given day.
func NewFakeClockOn(day string) *FakeClock {
	t, err := ParseDate(day)
	if err != nil {
		panic(err)
	}
	return NewFakeClock(t.Add(12 * time.Hour))
}

func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *FakeClock) Set(t time.Time) {
	c.mu.Lock()
	c.t = t
	c.mu.Unlock()
}

func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

// AdvanceDays moves the clock forward by n calendar days.
func (c *FakeClock) AdvanceDays(n int) {
	c.Advance(time.Duration(n) * 24 * time.Hour)
}

// Today returns the calendar date of clock's now in the given timezone.
// This ensures that "today" is determined by the configured timezone, not the
// timezone of whichever device sent the request.
func Today(clock Clock, timezone string) (string, error) {
	loc, err := LoadLocation(timezone)
	if err != nil {
		return "", fmt.Errorf("invalid timezone %q: %w", timezone, err)
	}
	return clock.Now().In(loc).Format(constants.DateFormat), nil
}
