package rhythm

import "time"

// Outcome is how a run finished.
type Outcome string

const (
	OutcomeClear    Outcome = "clear"
	OutcomeGameOver Outcome = "game_over"
	OutcomeAborted  Outcome = "aborted"
)

// PlayerState tracks the player's HP, SP and running score for one run.
type PlayerState struct {
	HP             int
	SP             int // 0..5
	Score          int
	CorrectAnswers int
	TotalAnswered  int
}

// MonsterLifecycle is a Monster's state machine position.
type MonsterLifecycle string

const (
	MonsterIdle      MonsterLifecycle = "idle"
	MonsterHit       MonsterLifecycle = "hit"
	MonsterFadingOut MonsterLifecycle = "fading_out"
	MonsterGone      MonsterLifecycle = "gone"
)

// Monster is the lifecycle entity RhythmCore spawns, judges and retires.
type Monster struct {
	ID                      string
	Slot                    int
	ChordTarget             ChordDefinition
	HP                      int
	MaxHP                   int
	Gauge                   float64 // 0..100
	CorrectPitchClassesSoFar PitchClassSet
	NextChord               *ChordDefinition
	State                   MonsterLifecycle
	SpawnedAt               float64 // Clock.NowMusic() at spawn

	hitTimer  float64 // seconds remaining in the Hit tint state
	fadeTimer float64 // seconds remaining in FadingOut
}

// RunState is RhythmCore's exclusively owned aggregate. Monsters and
// TimedNotes are exposed to the event sink by value/identifier, never by
// reference.
type RunState struct {
	Stage  *StageConfig
	Player PlayerState
	Monsters []*Monster

	NotesForCurrentLoop []TimedNote
	CurrentNoteIndex     int // oldest note whose fate (hit or miss) is not yet decided
	BoundNoteCount       int // count of notes from the front already bound to a monster

	CurrentLoopCycle      int
	CurrentTransposeOffset int
	CurrentSectionIndex   int

	// AwaitingLoopStart is true for the single tick in which a loop boundary
	// was just crossed: no note from the new loop is eligible to be judged
	// and no note can be swept as missed until the following tick.
	AwaitingLoopStart bool
	Active            bool
	Finished          *Outcome

	StartedAt time.Time
	ElapsedSeconds float64
}

// monsterBySlot returns the monster occupying slot, or nil.
func (rs *RunState) monsterBySlot(slot int) *Monster {
	for _, m := range rs.Monsters {
		if m.Slot == slot {
			return m
		}
	}
	return nil
}

// monsterByID returns the monster with the given id, or nil.
func (rs *RunState) monsterByID(id string) *Monster {
	for _, m := range rs.Monsters {
		if m.ID == id {
			return m
		}
	}
	return nil
}
