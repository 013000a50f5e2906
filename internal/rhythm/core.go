package rhythm

import (
	"context"
	"math"
	"time"
)

// dueWindow reports whether nowMusic falls within a note's judgement window:
// [hitTime-windowPre, hitTime+windowPost].
func dueWindow(stage *StageConfig, note TimedNote, nowMusic float64) bool {
	preWindow := stage.windowPre() / 1000.0
	post := stage.windowPost() / 1000.0
	return nowMusic >= note.HitTime-preWindow && nowMusic <= note.HitTime+post
}

// preHitEligible reports whether nowMusic falls within the short pre-hit
// window, the last preHitWindow milliseconds before a note's hitTime. With
// the default windows (80ms pre-hit, 180ms before hitTime for the due
// window) this span lies inside the due window; it reaches earlier than the
// due window only when a stage sets a pre-hit window wider than windowPre.
func preHitEligible(stage *StageConfig, note TimedNote, nowMusic float64) bool {
	preHit := stage.preHitWindow() / 1000.0
	return nowMusic < note.HitTime && note.HitTime-nowMusic <= preHit
}

func noteExpired(stage *StageConfig, note TimedNote, nowMusic float64) bool {
	return nowMusic > note.HitTime+stage.windowPost()/1000.0
}

// RhythmCore is the single per-run orchestrator driving one rhythm run. Every
// external interaction goes through Start/Tick/Stop/Resume/HandleInput; it
// owns RunState exclusively and is not safe for concurrent use from more
// than one goroutine at a time (the host serializes calls per run, typically
// from one websocket read/tick loop).
type RhythmCore struct {
	ctx       context.Context
	stage     *StageConfig
	lib       *ChordLibrary
	transport Transport
	sink      EventSink

	clock     *Clock
	judge     *JudgeEngine
	scheduler *MonsterScheduler
	bus       *InputBus
	rng       *RNG

	state *RunState

	enragedSeen map[string]bool
	dueSoonSeen map[string]bool

	lastTickAt time.Time

	paused       bool
	pausedAt     time.Time
	pauseTimeout time.Duration

	// combined-mode only bookkeeping; unused otherwise.
	sectionElapsed float64
}

// pauseTimeoutDefault is how long RhythmCore waits in RunPaused before
// ending the run as Aborted.
const pauseTimeoutDefault = 5 * time.Second

// NewRhythmCore constructs a core for one run. seed drives the RNG; callers
// that want reproducible test runs pass a fixed seed.
func NewRhythmCore(ctx context.Context, stage *StageConfig, lib *ChordLibrary, transport Transport, sink EventSink, seed int64) *RhythmCore {
	return &RhythmCore{
		ctx:          ctx,
		stage:        stage,
		lib:          lib,
		transport:    transport,
		sink:         sink,
		rng:          NewRNG(seed),
		judge:        NewJudgeEngine(),
		bus:          NewInputBus(),
		enragedSeen:  make(map[string]bool),
		dueSoonSeen:  make(map[string]bool),
		pauseTimeout: pauseTimeoutDefault,
	}
}

// Start validates the stage, primes Transport with the run's backing track
// and becomes ready to Tick. Fatal EngineErrors (ConfigInvalid, ChordUnknown)
// are returned here and the run never begins.
func (c *RhythmCore) Start(startInstant time.Time) error {
	if err := c.stage.Validate(c.lib); err != nil {
		return err
	}

	c.state = &RunState{
		Stage:     c.stage,
		Player:    PlayerState{HP: c.stage.MaxHP, SP: 0},
		StartedAt: startInstant,
	}

	var audioSource *StageConfig
	if c.stage.Mode == ModeTimingCombined {
		c.scheduler = NewMonsterScheduler(&c.stage.CombinedSections[0], c.lib, c.rng)
		c.sectionElapsed = 0
		c.state.CurrentSectionIndex = 0
		audioSource = &c.stage.CombinedSections[0]
	} else {
		c.clock = NewClock(c.stage.BPM, c.stage.TimeSignature, c.stage.MeasureCount, c.stage.CountInMeasures, 1.0)
		c.clock.Start(startInstant)
		c.scheduler = NewMonsterScheduler(c.stage, c.lib, c.rng)
		// -1 so the clock's initial loop cycle (0) is seen as a boundary
		// crossing on the very first Tick, generating notesForCurrentLoop.
		c.state.CurrentLoopCycle = -1
		audioSource = c.stage
	}

	noLoopMode := c.stage.Mode == ModeTimingCombined || c.stage.Transpose == nil || c.stage.Transpose.RepeatRule == RepeatOff
	if err := c.transport.Load(c.ctx, audioSource.AudioURL, audioSource.BPM, audioSource.TimeSignature,
		audioSource.MeasureCount, audioSource.CountInMeasures, 1.0, 1.0, 0, noLoopMode); err != nil {
		return err
	}
	if err := c.transport.Play(c.ctx); err != nil {
		return err
	}

	c.state.Active = true
	c.lastTickAt = startInstant
	return nil
}

// HandleInput enqueues a press/release for the next Tick to drain. Hosts
// call this from their websocket/MIDI read loop as events arrive; it never
// blocks.
func (c *RhythmCore) HandleInput(e InputEvent) {
	c.bus.Push(e)
}

// Resume clears a TransportLost pause, the counterpart to RunPaused.
func (c *RhythmCore) Resume(now time.Time) {
	if !c.paused {
		return
	}
	c.paused = false
	if c.clock != nil {
		c.clock.Start(now.Add(-time.Duration(c.clock.NowMusic() * float64(time.Second))))
	}
	c.lastTickAt = now
}

// Stop idempotently ends the run, emitting RunEnded with OutcomeAborted if
// it was still active.
func (c *RhythmCore) Stop(ctx context.Context) error {
	if c.state == nil || !c.state.Active {
		return nil
	}
	c.state.Active = false
	outcome := OutcomeAborted
	c.state.Finished = &outcome
	c.sink.Emit(RunEnded{Outcome: outcome})
	return c.transport.Stop(ctx)
}

// Tick advances the run by one frame in a fixed seven-step order: clock
// snapshot, loop-boundary regeneration, monster attack-gauge advance, input
// drain, missed-note sweep, monster state-machine advance, and frame-state
// emission. now is the host's wall-clock reading for this frame.
func (c *RhythmCore) Tick(now time.Time) error {
	if c.state == nil || !c.state.Active {
		return nil
	}

	if c.paused {
		if now.Sub(c.pausedAt) > c.pauseTimeout {
			return c.Stop(c.ctx)
		}
		return nil
	}

	if ok, err := c.checkTransportHealth(now); err != nil {
		if ee, isEngine := err.(*EngineError); isEngine && ee.Kind == ClockNotReady {
			return nil // ClockNotReady: tick is a no-op while waiting.
		}
		return err
	} else if !ok {
		c.enterPause(now, "transport position diverged beyond tolerance")
		return nil
	}

	dt := now.Sub(c.lastTickAt).Seconds()
	if dt < 0 {
		dt = 0
	}
	c.lastTickAt = now
	c.state.ElapsedSeconds += dt

	if c.stage.TimeLimitSeconds != nil && c.state.ElapsedSeconds > *c.stage.TimeLimitSeconds {
		return c.endRun(OutcomeAborted)
	}

	var nowMusic float64
	var measure, beat int
	var beatPos float64

	if c.stage.Mode == ModeTimingCombined {
		nowMusic = c.tickCombined(dt)
		measure, beat, beatPos = 0, 0, 0
	} else {
		// Step 1: clock snapshot.
		if err := c.clock.Tick(now); err != nil {
			return nil // ClockNotReady: tick is a no-op while waiting.
		}
		nowMusic = c.clock.NowMusic()
		measure, beat, beatPos = c.clock.Measure(), c.clock.Beat(), c.clock.BeatPosition()

		// Step 2: loop-boundary detection/regeneration.
		if c.clock.LoopCycle() != c.state.CurrentLoopCycle {
			if err := c.onLoopBoundary(c.clock.LoopCycle()); err != nil {
				return err
			}
		}
	}

	// Step 3: monster attack-gauge advance.
	for _, m := range c.scheduler.AdvanceGauges(c.state, dt) {
		c.state.Player.HP--
		c.sink.Emit(MonsterAttacked{ID: m.ID, Damage: 1})
		c.sink.Emit(PlayerHpChanged{HP: c.state.Player.HP})
		if c.state.Player.HP <= 0 {
			return c.endRun(OutcomeGameOver)
		}
	}

	if c.stage.Mode.isProgression() {
		c.emitDueSoon(nowMusic)
	}

	// Step 4: drain InputBus through JudgeEngine. While AwaitingLoopStart is
	// set (the tick that just crossed a loop boundary), the bus still drains
	// so overflow counting stays correct, but no note from the new loop is
	// eligible to be judged yet.
	if !c.state.AwaitingLoopStart {
		if err := c.drainInput(nowMusic); err != nil {
			return err
		}
	} else {
		c.bus.Drain()
	}
	if dropped := c.bus.DroppedCount(); dropped > 0 {
		c.sink.Emit(InputOverflowEvent{DroppedCount: dropped})
		c.bus.ResetDroppedCount()
	}

	// Step 5: sweep due notes for misses.
	if !c.state.AwaitingLoopStart {
		c.sweepMissedNotes(nowMusic)
	}
	c.state.AwaitingLoopStart = false

	// Step 6: update monster state machines, reap, respawn.
	defeated := c.scheduler.AdvanceTimers(c.state, dt)
	for _, m := range defeated {
		c.judge.Clear(m.ID)
		c.sink.Emit(MonsterDefeated{ID: m.ID})
		c.advanceResolvedNoteCursor(m.ID)
	}
	c.scheduler.Reap(c.state)

	for _, id := range c.scheduler.CheckEnraged(c.state, nowMusic, c.enragedSeen) {
		c.enragedSeen[id] = true
		c.sink.Emit(MonsterEnraged{ID: id})
	}

	if err := c.spawnForMode(nowMusic); err != nil {
		return err
	}

	if outcome, done := c.checkRunEnd(); done {
		return c.endRun(outcome)
	}

	// Step 7: consolidated frame state.
	c.sink.Emit(c.buildFrameState(measure, beat, beatPos))
	return nil
}

func (c *RhythmCore) checkTransportHealth(now time.Time) (bool, error) {
	if c.clock == nil || !c.clock.Ready() {
		return true, nil
	}
	pos, err := c.transport.PositionSeconds()
	if err != nil {
		return true, nil // transient adapter error: treated as not-yet-confirmed, not a loss.
	}
	if math.IsNaN(pos) || math.IsInf(pos, 0) {
		return false, newError(ClockNotReady, "transport reported a non-finite position")
	}
	return c.clock.CheckHealth(pos, now), nil
}

func (c *RhythmCore) enterPause(now time.Time, reason string) {
	c.paused = true
	c.pausedAt = now
	c.sink.Emit(RunPaused{Reason: reason})
}

// tickCombined advances the TimingCombined bookkeeping and returns the
// seconds elapsed in the current section (not a combined-timeline time),
// since these sections may each run at a different bpm and therefore
// cannot share one Clock instance.
func (c *RhythmCore) tickCombined(dt float64) float64 {
	c.sectionElapsed += dt

	section := &c.stage.CombinedSections[c.state.CurrentSectionIndex]
	secPerBeat := 60.0 / section.BPM
	secPerBar := float64(section.TimeSignature) * secPerBeat
	loopDuration := float64(section.MeasureCount) * secPerBar

	if c.sectionElapsed >= loopDuration {
		c.advanceSection()
		c.sectionElapsed -= loopDuration
	}

	return c.sectionElapsed
}

// advanceSection implements the Open Question decision recorded in
// SPEC_FULL.md: TimingCombined restarts from section 0 with the next
// transpose step once the last section finishes.
func (c *RhythmCore) advanceSection() {
	next := c.state.CurrentSectionIndex + 1
	if next >= len(c.stage.CombinedSections) {
		next = 0
		c.state.CurrentLoopCycle++
		c.state.AwaitingLoopStart = true
		for id := range c.dueSoonSeen {
			delete(c.dueSoonSeen, id)
		}
		if c.stage.Transpose != nil {
			offset, outOfRange := NormalizedTransposeOffset(c.state.CurrentLoopCycle, *c.stage.Transpose)
			if outOfRange {
				c.sink.Emit(TransposeOutOfRangeEvent{RawOffset: TransposeOffset(c.state.CurrentLoopCycle, *c.stage.Transpose), NormalizedOffset: offset})
			}
			c.state.CurrentTransposeOffset = offset
			c.transport.SetPitchShift(float64(offset))
		}
	}
	c.state.CurrentSectionIndex = next
	c.scheduler = NewMonsterScheduler(&c.stage.CombinedSections[next], c.lib, c.rng)
	_ = c.transport.SwapToNext(c.ctx)
	c.sink.Emit(LoopBoundaryCrossed{NewCycle: c.state.CurrentLoopCycle, NewTransposeOffset: c.state.CurrentTransposeOffset})
}

func (c *RhythmCore) onLoopBoundary(newCycle int) error {
	c.state.CurrentLoopCycle = newCycle
	c.state.AwaitingLoopStart = true
	for id := range c.dueSoonSeen {
		delete(c.dueSoonSeen, id)
	}

	offset := 0
	if c.stage.Transpose != nil {
		normalized, outOfRange := NormalizedTransposeOffset(newCycle, *c.stage.Transpose)
		if outOfRange {
			c.sink.Emit(TransposeOutOfRangeEvent{RawOffset: TransposeOffset(newCycle, *c.stage.Transpose), NormalizedOffset: normalized})
		}
		offset = normalized
	}
	c.state.CurrentTransposeOffset = offset
	c.transport.SetPitchShift(float64(offset))

	notes, err := GenerateNotes(c.stage, c.lib, newCycle, offset, c.rng)
	if err != nil {
		return err
	}
	c.state.NotesForCurrentLoop = notes
	c.state.CurrentNoteIndex = 0
	c.state.BoundNoteCount = 0

	c.sink.Emit(LoopBoundaryCrossed{NewCycle: newCycle, NewTransposeOffset: offset})
	return nil
}

func (c *RhythmCore) drainInput(nowMusic float64) error {
	for _, evt := range c.bus.Drain() {
		if evt.Type != PitchDown {
			continue
		}
		monsterID, ok := c.judge.RouteMonster(evt.Pitch)
		if !ok {
			continue
		}
		m := c.state.monsterByID(monsterID)
		if m == nil || m.State != MonsterIdle {
			continue
		}

		due, preHit := c.noteTimingState(monsterID, nowMusic)
		if c.stage.Mode.isTiming() && !due && !preHit {
			continue
		}
		result := c.judge.Input(evt.Pitch, monsterID, InputContext{
			TimingMode: c.stage.Mode.isTiming(),
			NoteDue:    due,
			Player:     &c.state.Player,
			Stage:      c.stage,
			RNG:        c.rng,
		})

		switch result.Kind {
		case ResultPartial:
			m.CorrectPitchClassesSoFar = result.AcceptedClasses
		case ResultComplete:
			c.state.Player.Score += result.Damage
			c.state.Player.CorrectAnswers++
			c.state.Player.TotalAnswered++
			c.sink.Emit(SpChanged{SP: c.state.Player.SP})
			defeated := c.scheduler.MarkHit(m, result.Damage)
			c.sink.Emit(NoteHit{ID: monsterID, MonsterID: monsterID, Damage: result.Damage, IsSpecial: result.IsSpecial})
			if defeated {
				c.sink.Emit(MonsterHitEvent{ID: m.ID, HPAfter: 0})
			} else {
				c.sink.Emit(MonsterHitEvent{ID: m.ID, HPAfter: m.HP})
			}
		case ResultIncorrect:
			c.state.Player.TotalAnswered++
		}
	}
	return nil
}

// noteTimingState reports whether monsterID's bound note is currently due
// (inside its judgement window) and/or pre-hit eligible (inside the shorter
// window just before its hitTime; see preHitEligible).
func (c *RhythmCore) noteTimingState(monsterID string, nowMusic float64) (due, preHit bool) {
	for _, n := range c.state.NotesForCurrentLoop {
		if n.ID == monsterID {
			return dueWindow(c.stage, n, nowMusic), preHitEligible(c.stage, n, nowMusic)
		}
	}
	return false, false
}

// emitDueSoon announces each upcoming note the first tick it enters the
// pre-hit window, so the host can tell the player a completion will count
// early. Seen-state is keyed by note ID and cleared on every loop boundary,
// since note IDs repeat across loop cycles.
func (c *RhythmCore) emitDueSoon(nowMusic float64) {
	for _, n := range c.state.NotesForCurrentLoop {
		if c.dueSoonSeen[n.ID] || !preHitEligible(c.stage, n, nowMusic) {
			continue
		}
		c.dueSoonSeen[n.ID] = true
		c.sink.Emit(NoteDueSoon{ID: n.ID, Chord: n.Chord, SecondsAhead: n.HitTime - nowMusic})
	}
}

func (c *RhythmCore) sweepMissedNotes(nowMusic float64) {
	if !c.stage.Mode.isProgression() {
		return
	}
	for c.state.CurrentNoteIndex < len(c.state.NotesForCurrentLoop) {
		note := c.state.NotesForCurrentLoop[c.state.CurrentNoteIndex]
		if !noteExpired(c.stage, note, nowMusic) {
			break
		}

		m := c.state.monsterByID(note.ID)
		if m != nil && m.State != MonsterIdle {
			// Already resolved by a hit; its monster is mid Hit/FadingOut
			// animation, not missed. Leave the cursor for
			// advanceResolvedNoteCursor to move once that animation ends.
			break
		}

		c.judge.Clear(note.ID)
		if m != nil {
			m.State = MonsterGone
		}
		c.sink.Emit(NoteMissed{ID: note.ID})
		c.state.Player.TotalAnswered++
		c.state.CurrentNoteIndex++
	}
}

// advanceResolvedNoteCursor moves CurrentNoteIndex past a note once its
// bound monster resolves (defeated). Notes normally resolve in hitTime
// order, so this is simply "advance while the front note matches"; an
// out-of-order resolution (rare: a later due-soon note hit before an
// earlier one expires) leaves the cursor where it is until the earlier note
// itself resolves, which is what keeps the miss-sweep in sweepMissedNotes
// correct.
func (c *RhythmCore) advanceResolvedNoteCursor(resolvedNoteID string) {
	if !c.stage.Mode.isProgression() {
		return
	}
	if c.state.CurrentNoteIndex < len(c.state.NotesForCurrentLoop) &&
		c.state.NotesForCurrentLoop[c.state.CurrentNoteIndex].ID == resolvedNoteID {
		c.state.CurrentNoteIndex++
	}
}

func (c *RhythmCore) spawnForMode(nowMusic float64) error {
	if c.stage.Mode.isProgression() {
		c.scheduler.BindProgressionMonsters(c.state, c.judge, nowMusic)
		return nil
	}
	return c.scheduler.SpawnSingleFamily(c.state, c.judge, nowMusic)
}

// checkRunEnd evaluates the clear/game-over conditions: GameOver is already
// handled inline where HP drops; Clear fires once a progression run has
// exhausted its final loop's notes with every monster resolved.
func (c *RhythmCore) checkRunEnd() (Outcome, bool) {
	if c.state.Player.HP <= 0 {
		return OutcomeGameOver, true
	}
	if c.stage.Mode.isProgression() && c.stage.Mode != ModeTimingCombined {
		exhausted := c.state.CurrentNoteIndex >= len(c.state.NotesForCurrentLoop)
		noLoop := c.stage.Transpose == nil || c.stage.Transpose.RepeatRule == RepeatOff
		if exhausted && noLoop && len(c.state.Monsters) == 0 {
			return OutcomeClear, true
		}
	}
	return "", false
}

func (c *RhythmCore) endRun(outcome Outcome) error {
	c.state.Active = false
	c.state.Finished = &outcome
	c.sink.Emit(RunEnded{Outcome: outcome})
	return c.transport.Stop(c.ctx)
}

func (c *RhythmCore) buildFrameState(measure, beat int, beatPos float64) FrameState {
	views := make([]MonsterView, 0, len(c.state.Monsters))
	for _, m := range c.state.Monsters {
		views = append(views, MonsterView{
			ID:              m.ID,
			Slot:            m.Slot,
			HP:              m.HP,
			MaxHP:           m.MaxHP,
			Gauge:           m.Gauge,
			Target:          m.ChordTarget,
			AcceptedClasses: m.CorrectPitchClassesSoFar,
			State:           m.State,
		})
	}

	upcoming := c.state.NotesForCurrentLoop
	if c.state.CurrentNoteIndex < len(upcoming) {
		upcoming = upcoming[c.state.CurrentNoteIndex:]
	} else {
		upcoming = nil
	}

	return FrameState{
		Measure:                measure,
		Beat:                   beat,
		BeatPosition:           beatPos,
		Monsters:               views,
		UpcomingNotes:          upcoming,
		CurrentTransposeOffset: c.state.CurrentTransposeOffset,
	}
}

// State exposes the live RunState for host-side read-only projections (e.g.
// the HTTP handler answering a status poll). Callers must not mutate it.
func (c *RhythmCore) State() *RunState {
	return c.state
}
