package rhythm

import (
	"math"
	"time"
)

// clockSnapshot is the per-tick frozen reading a Clock hands out. Clock.Tick
// produces exactly one of these per RhythmCore.Tick call; NowMusic and its
// siblings read from it rather than recomputing, so every reading within one
// tick stays stable even across suspension points.
type clockSnapshot struct {
	musicTime    float64
	loopCycle    int
	measure      int
	beat         int
	beatPosition float64
	isCountIn    bool
}

// Clock derives musical time from a Transport's confirmed start instant and
// the wall clock. It does not poll Transport.PositionSeconds() for the
// primary timeline — the core detects loops from its own computation rather
// than trusting a backend that may not emit loop events — but
// PositionSeconds is consulted by CheckHealth to flag TransportLost.
type Clock struct {
	bpm             float64
	timeSignature   int
	measureCount    int
	countInMeasures int
	rate            float64

	started      bool
	startInstant time.Time

	last clockSnapshot
}

// NewClock builds a Clock for the given stage timing. rate defaults to 1.0
// (no pitch/tempo scaling) if zero is passed.
func NewClock(bpm float64, timeSignature, measureCount, countInMeasures int, rate float64) *Clock {
	if rate <= 0 {
		rate = 1.0
	}
	return &Clock{
		bpm:             bpm,
		timeSignature:   timeSignature,
		measureCount:    measureCount,
		countInMeasures: countInMeasures,
		rate:            rate,
	}
}

func (c *Clock) secPerBeat() float64 { return 60.0 / c.bpm }
func (c *Clock) secPerBar() float64  { return float64(c.timeSignature) * c.secPerBeat() }

// LoopDuration is measureCount × timeSignature × 60 / bpm.
func (c *Clock) LoopDuration() float64 {
	return float64(c.measureCount) * c.secPerBar()
}

func (c *Clock) countInDuration() float64 {
	return float64(c.countInMeasures) * c.secPerBar()
}

// Start marks the Clock ready, recording the wall-clock instant Transport
// confirmed playback began. Before Start is called, Tick reports
// ClockNotReady.
func (c *Clock) Start(startInstant time.Time) {
	c.started = true
	c.startInstant = startInstant
}

// Ready reports whether Transport has confirmed a start instant.
func (c *Clock) Ready() bool {
	return c.started
}

// Tick takes a wall-clock snapshot and freezes it for the remainder of the
// RhythmCore tick. Returns ClockNotReady if Start has not yet been called.
func (c *Clock) Tick(now time.Time) error {
	if !c.started {
		return newError(ClockNotReady, "clock has no confirmed start instant")
	}

	elapsedWall := now.Sub(c.startInstant).Seconds() * c.rate
	rawMusicTime := elapsedWall - c.countInDuration()

	loopCycle := 0
	musicTime := rawMusicTime
	if rawMusicTime >= 0 {
		loopDur := c.LoopDuration()
		loopCycle = int(math.Floor(rawMusicTime / loopDur))
		musicTime = rawMusicTime - float64(loopCycle)*loopDur
	}

	barIndex := int(math.Floor(musicTime / c.secPerBar()))
	beatPos := (musicTime - float64(barIndex)*c.secPerBar()) / c.secPerBeat()

	c.last = clockSnapshot{
		musicTime:    musicTime,
		loopCycle:    loopCycle,
		measure:      barIndex + 1,
		beat:         int(math.Floor(beatPos)) + 1,
		beatPosition: beatPos,
		isCountIn:    rawMusicTime < 0,
	}
	return nil
}

// NowMusic returns seconds since the start of bar 1 of the current loop,
// from the last Tick snapshot.
func (c *Clock) NowMusic() float64 { return c.last.musicTime }

// LoopCycle returns the number of times the loop boundary has been crossed.
func (c *Clock) LoopCycle() int { return c.last.loopCycle }

// Measure returns the 1-based bar number.
func (c *Clock) Measure() int { return c.last.measure }

// Beat returns the 1-based beat number within the bar.
func (c *Clock) Beat() int { return c.last.beat }

// BeatPosition returns a rational in [0, timeSignature).
func (c *Clock) BeatPosition() float64 { return c.last.beatPosition }

// IsCountIn reports whether the last snapshot fell before bar 1.
func (c *Clock) IsCountIn() bool { return c.last.isCountIn }

// SetRate updates the wall-clock-to-music-time scaling (Transport's
// set_pitch_shift/rate knobs feed this).
func (c *Clock) SetRate(rate float64) {
	if rate <= 0 {
		rate = 1.0
	}
	c.rate = rate
}

// transportLossGraceMs is the TransportLost tolerance: loopDuration + 200ms
// outside of a legitimate loop boundary.
const transportLossGraceMs = 200 * time.Millisecond

// CheckHealth compares a Transport-reported position against the Clock's own
// timeline and reports whether the divergence stays within the TransportLost
// tolerance (true means healthy). reportedPosition is Transport.PositionSeconds()'s return value,
// expressed on Transport's own absolute (non-wrapped) timeline.
func (c *Clock) CheckHealth(reportedPosition float64, now time.Time) bool {
	if math.IsNaN(reportedPosition) || math.IsInf(reportedPosition, 0) {
		return false
	}
	expected := now.Sub(c.startInstant).Seconds() * c.rate
	diff := math.Abs(reportedPosition - expected)
	return diff <= c.LoopDuration()+transportLossGraceMs.Seconds()
}
