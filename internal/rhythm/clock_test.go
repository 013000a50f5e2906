package rhythm

import (
	"testing"
	"time"
)

func TestClockNotReadyBeforeStart(t *testing.T) {
	c := NewClock(120, 4, 4, 0, 1.0)
	if err := c.Tick(time.Now()); err == nil {
		t.Fatalf("expected ClockNotReady before Start")
	}
}

func TestClockBasicProgression(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewClock(120, 4, 4, 0, 1.0) // 0.5s/beat, 2s/bar, 8s loop
	c.Start(start)

	if err := c.Tick(start.Add(0)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Measure() != 1 || c.Beat() != 1 {
		t.Errorf("at t=0 expected measure 1 beat 1, got measure %d beat %d", c.Measure(), c.Beat())
	}

	// 2.5s in: bar 2 (0-indexed bar 1), beat 2 (0.5s into bar).
	if err := c.Tick(start.Add(2500 * time.Millisecond)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Measure() != 2 || c.Beat() != 2 {
		t.Errorf("at t=2.5s expected measure 2 beat 2, got measure %d beat %d", c.Measure(), c.Beat())
	}
}

func TestClockLoopCycleIncrementsAtBoundary(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewClock(120, 4, 4, 0, 1.0) // 8s loop

	c.Start(start)
	if err := c.Tick(start.Add(7900 * time.Millisecond)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.LoopCycle() != 0 {
		t.Errorf("expected loop cycle 0 just before boundary, got %d", c.LoopCycle())
	}

	if err := c.Tick(start.Add(8100 * time.Millisecond)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.LoopCycle() != 1 {
		t.Errorf("expected loop cycle 1 just after boundary, got %d", c.LoopCycle())
	}
	if c.Measure() != 1 {
		t.Errorf("expected loop to reset bar counter to 1, got %d", c.Measure())
	}
}

func TestClockCountInProducesNegativeMusicTimeAndNoCycle(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewClock(120, 4, 4, 1, 1.0) // one bar count-in = 2s
	c.Start(start)

	if err := c.Tick(start.Add(1 * time.Second)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !c.IsCountIn() {
		t.Fatalf("expected IsCountIn true during count-in")
	}
	if c.NowMusic() >= 0 {
		t.Errorf("expected negative NowMusic during count-in, got %v", c.NowMusic())
	}
	if c.LoopCycle() != 0 {
		t.Errorf("expected loop cycle 0 during count-in, got %d", c.LoopCycle())
	}
}

func TestClockCheckHealthToleratesLoopBoundaryJump(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewClock(120, 4, 4, 0, 1.0) // 8s loop
	c.Start(start)

	now := start.Add(8 * time.Second)
	if err := c.Tick(now); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Transport wrapped back to 0 right at the loop boundary: within tolerance.
	if !c.CheckHealth(0.05, now) {
		t.Errorf("expected CheckHealth to tolerate a position reset at the loop boundary")
	}
}

func TestClockCheckHealthFlagsLargeDivergence(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewClock(120, 4, 4, 0, 1.0)
	c.Start(start)

	now := start.Add(1 * time.Second)
	if err := c.Tick(now); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.CheckHealth(500, now) {
		t.Errorf("expected CheckHealth to flag a 500s divergence as unhealthy")
	}
}
