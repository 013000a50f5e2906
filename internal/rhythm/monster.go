package rhythm

// Monster lifecycle timing constants. hitTint is how long a monster shows
// the "just hit" tint before returning to Idle; fadeOut is how long a
// defeated monster takes to go from FadingOut to Gone before its slot
// becomes eligible for a fresh spawn.
const (
	hitTintSeconds = 0.3
	fadeOutSeconds = 0.8

	// enragedLifetimeFactor is an informational threshold: a monster that
	// has occupied its slot for longer than this multiple of its expected
	// lifetime (EnemyGaugeSeconds, the time a full gauge takes to fill)
	// gets a one-shot MonsterEnraged event. It never changes damage, gauge
	// rate, or any other rule.
	enragedLifetimeFactor = 1.5
)

// MonsterScheduler owns monster spawning and the per-monster state machine.
// Its spawn methods register each new monster's target through
// JudgeEngine.SetExpectation; RhythmCore calls JudgeEngine.Clear when a
// monster retires.
type MonsterScheduler struct {
	stage *StageConfig
	lib   *ChordLibrary
	rng   *RNG

	nextSlotCursor int
	nextChordIndex int
	lastChordID    string
	idCounter      int
}

// NewMonsterScheduler builds a scheduler bound to a stage and chord library.
func NewMonsterScheduler(stage *StageConfig, lib *ChordLibrary, rng *RNG) *MonsterScheduler {
	return &MonsterScheduler{stage: stage, lib: lib, rng: rng}
}

func (s *MonsterScheduler) newID() string {
	s.idCounter++
	return idFromCounter("m", s.idCounter)
}

func idFromCounter(prefix string, n int) string {
	const digits = "0123456789"
	if n == 0 {
		return prefix + "0"
	}
	buf := make([]byte, 0, 8)
	for n > 0 {
		buf = append([]byte{digits[n%10]}, buf...)
		n /= 10
	}
	return prefix + string(buf)
}

// chooseChord picks the next monster's target chord according to stage
// mode: SingleOrdered cycles stage.AllowedChords in order; Single draws
// uniformly from stage.AllowedChords without immediate repeats when more
// than one chord is allowed. Progression modes bind a monster to the next
// unconsumed TimedNote instead, so chooseChord is not used for them.
func (s *MonsterScheduler) chooseChord(mode Mode) (ChordDefinition, error) {
	if len(s.stage.AllowedChords) == 0 {
		return ChordDefinition{}, newError(ConfigInvalid, "no allowed_chords configured for mode %q", mode)
	}
	var id string
	switch mode {
	case ModeSingleOrdered:
		id = s.stage.AllowedChords[s.nextChordIndex%len(s.stage.AllowedChords)]
		s.nextChordIndex++
	default: // ModeSingle: random choice, no immediate repeat
		n := len(s.stage.AllowedChords)
		id = s.stage.AllowedChords[s.rng.Intn(n)]
		for n > 1 && id == s.lastChordID {
			id = s.stage.AllowedChords[s.rng.Intn(n)]
		}
		s.lastChordID = id
	}
	return s.lib.Lookup(id)
}

// SpawnSingleFamily fills every open slot up to stage.SimultaneousMonsterCount
// for Single/SingleOrdered modes, assigning slots in ascending order
// so two monsters never share a slot.
func (s *MonsterScheduler) SpawnSingleFamily(rs *RunState, judge *JudgeEngine, nowMusic float64) error {
	for slot := 0; slot < rs.Stage.SimultaneousMonsterCount; slot++ {
		if rs.monsterBySlot(slot) != nil {
			continue
		}
		chord, err := s.chooseChord(rs.Stage.Mode)
		if err != nil {
			return err
		}
		m := &Monster{
			ID:          s.newID(),
			Slot:        slot,
			ChordTarget: chord,
			HP:          rs.Stage.EnemyHP,
			MaxHP:       rs.Stage.EnemyHP,
			State:       MonsterIdle,
			SpawnedAt:   nowMusic,
		}
		rs.Monsters = append(rs.Monsters, m)
		judge.SetExpectation(m.ID, m.Slot, chord.TargetSet, chord.DisplayName)
	}
	return nil
}

// BindProgressionMonsters ensures the next up-to-SimultaneousMonsterCount
// unconsumed TimedNotes each have a monster bound to them, used by the
// progression family of modes where the note stream — not a random/ordered
// allowed-chords draw — determines each monster's target.
func (s *MonsterScheduler) BindProgressionMonsters(rs *RunState, judge *JudgeEngine, nowMusic float64) {
	want := rs.Stage.SimultaneousMonsterCount
	live := 0
	for _, m := range rs.Monsters {
		if m.State != MonsterGone {
			live++
		}
	}
	for live < want && rs.BoundNoteCount < len(rs.NotesForCurrentLoop) {
		note := rs.NotesForCurrentLoop[rs.BoundNoteCount]
		rs.BoundNoteCount++

		slot := s.firstOpenSlot(rs)
		if slot < 0 {
			break
		}
		m := &Monster{
			ID:          note.ID,
			Slot:        slot,
			ChordTarget: note.Chord,
			HP:          rs.Stage.EnemyHP,
			MaxHP:       rs.Stage.EnemyHP,
			State:       MonsterIdle,
			SpawnedAt:   nowMusic,
		}
		rs.Monsters = append(rs.Monsters, m)
		judge.SetExpectation(m.ID, m.Slot, note.Chord.TargetSet, note.Chord.DisplayName)
		live++
	}
}

func (s *MonsterScheduler) firstOpenSlot(rs *RunState) int {
	for slot := 0; slot < rs.Stage.SimultaneousMonsterCount; slot++ {
		if rs.monsterBySlot(slot) == nil {
			return slot
		}
	}
	return -1
}

// AdvanceGauges accumulates each Idle monster's attack gauge by
// 100/EnemyGaugeSeconds per second, the Single-mode attack mechanic, and
// returns the monsters whose gauge reached 100 this tick, already reset to
// zero. Progression/timing modes never arm a gauge (the due-note window is
// their pressure mechanic instead), so this is a no-op unless
// EnemyGaugeSeconds is positive.
func (s *MonsterScheduler) AdvanceGauges(rs *RunState, dt float64) []*Monster {
	if rs.Stage.Mode.isProgression() || rs.Stage.EnemyGaugeSeconds <= 0 {
		return nil
	}
	rate := 100.0 / rs.Stage.EnemyGaugeSeconds
	var attacking []*Monster
	for _, m := range rs.Monsters {
		if m.State != MonsterIdle {
			continue
		}
		m.Gauge += rate * dt
		if m.Gauge >= 100 {
			m.Gauge = 0
			attacking = append(attacking, m)
		}
	}
	return attacking
}

// CheckEnraged reports, for each still-live monster, whether it just crossed
// the enragedLifetimeFactor threshold this tick (so RhythmCore can emit the
// event exactly once per monster).
func (s *MonsterScheduler) CheckEnraged(rs *RunState, nowMusic float64, alreadyEnraged map[string]bool) []string {
	var newlyEnraged []string
	for _, m := range rs.Monsters {
		if m.State == MonsterGone || alreadyEnraged[m.ID] {
			continue
		}
		if rs.Stage.EnemyGaugeSeconds <= 0 {
			continue
		}
		if nowMusic-m.SpawnedAt >= rs.Stage.EnemyGaugeSeconds*enragedLifetimeFactor {
			newlyEnraged = append(newlyEnraged, m.ID)
		}
	}
	return newlyEnraged
}

// MarkHit applies damage after JudgeEngine reports ResultComplete against a
// monster. A surviving monster enters the Hit tint state and MarkHit returns
// false; at zero HP it enters FadingOut and MarkHit returns true.
func (s *MonsterScheduler) MarkHit(m *Monster, damage int) bool {
	m.HP -= damage
	m.CorrectPitchClassesSoFar = 0
	if m.HP <= 0 {
		m.HP = 0
		m.State = MonsterFadingOut
		m.fadeTimer = fadeOutSeconds
		return true
	}
	m.State = MonsterHit
	m.hitTimer = hitTintSeconds
	return false
}

// AdvanceTimers ticks the Hit/FadingOut timers and performs the
// Hit→Idle and FadingOut→Gone transitions. Gone monsters are removed
// from rs.Monsters by the caller once a respawn has been decided.
func (s *MonsterScheduler) AdvanceTimers(rs *RunState, dt float64) (defeated []*Monster) {
	for _, m := range rs.Monsters {
		switch m.State {
		case MonsterHit:
			m.hitTimer -= dt
			if m.hitTimer <= 0 {
				m.State = MonsterIdle
			}
		case MonsterFadingOut:
			m.fadeTimer -= dt
			if m.fadeTimer <= 0 {
				m.State = MonsterGone
				defeated = append(defeated, m)
			}
		}
	}
	return defeated
}

// Reap removes Gone monsters from rs.Monsters, freeing their slots for the
// next spawn pass.
func (s *MonsterScheduler) Reap(rs *RunState) {
	live := rs.Monsters[:0]
	for _, m := range rs.Monsters {
		if m.State != MonsterGone {
			live = append(live, m)
		}
	}
	rs.Monsters = live
}
