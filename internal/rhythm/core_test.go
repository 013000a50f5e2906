package rhythm

import (
	"context"
	"errors"
	"testing"
	"time"
)

// fakeTransport is a no-op Transport stub for RhythmCore tests. PositionSeconds
// returns an error so checkTransportHealth treats the run as not-yet-confirmed
// rather than lost, which keeps these tests focused on judging/scheduling
// rather than transport-health edge cases (covered separately in clock_test.go).
type fakeTransport struct{}

func (fakeTransport) Load(context.Context, string, float64, int, int, int, float64, float64, float64, bool) error {
	return nil
}
func (fakeTransport) Play(context.Context) error { return nil }
func (fakeTransport) Stop(context.Context) error { return nil }
func (fakeTransport) SetVolume(float64)          {}
func (fakeTransport) SetPitchShift(float64)      {}
func (fakeTransport) SeekToBar1Start(context.Context) error { return nil }
func (fakeTransport) PositionSeconds() (float64, error) {
	return 0, errors.New("fakeTransport: position not wired")
}
func (fakeTransport) PrepareNext(context.Context, string, float64, int, int) error { return nil }
func (fakeTransport) SwapToNext(context.Context) error                            { return nil }

// press is a convenience for feeding HandleInput one PitchDown per pitch
// class in a single call, all stamped with the same instant at.
func press(core *RhythmCore, at time.Time, classes ...PitchClass) {
	for _, pc := range classes {
		core.HandleInput(InputEvent{Type: PitchDown, Source: SourceMIDI, Pitch: pc, Timestamp: at})
	}
}

// TestCoreSingleModeDefeatsMonsterAndRespawns is grounded on scenario S1:
// Single mode, one allowed chord, a full triad press defeats the monster and
// a replacement spawns in the freed slot once it fades out.
func TestCoreSingleModeDefeatsMonsterAndRespawns(t *testing.T) {
	lib, err := NewChordLibrary([]string{"C"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	stage := &StageConfig{
		Mode: ModeSingle, BPM: 120, TimeSignature: 4, MeasureCount: 4,
		AllowedChords: []string{"C"}, EnemyHP: 1, EnemyGaugeSeconds: 5,
		MaxHP: 3, DamageRange: DamageRange{Min: 1, Max: 1}, SimultaneousMonsterCount: 1,
	}
	sink := &RecordingSink{}
	core := NewRhythmCore(context.Background(), stage, lib, fakeTransport{}, sink, 1)

	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	if err := core.Start(start); err != nil {
		t.Fatalf("unexpected Start error: %v", err)
	}
	if err := core.Tick(start); err != nil {
		t.Fatalf("unexpected Tick error: %v", err)
	}
	if len(core.State().Monsters) != 1 {
		t.Fatalf("expected one monster spawned at start, got %d", len(core.State().Monsters))
	}
	firstID := core.State().Monsters[0].ID

	press(core, start.Add(300*time.Millisecond), 0, 4, 7) // C, E, G
	if err := core.Tick(start.Add(300 * time.Millisecond)); err != nil {
		t.Fatalf("unexpected Tick error: %v", err)
	}
	if core.State().Player.Score != 1 {
		t.Errorf("expected score 1 after a single-damage hit, got %d", core.State().Player.Score)
	}

	// Advance past the fade-out window so the defeated monster is reaped and
	// a replacement spawns into the freed slot.
	later := start.Add(1200 * time.Millisecond)
	if err := core.Tick(later); err != nil {
		t.Fatalf("unexpected Tick error: %v", err)
	}
	if len(core.State().Monsters) != 1 {
		t.Fatalf("expected a replacement monster in the freed slot, got %d", len(core.State().Monsters))
	}
	if core.State().Monsters[0].ID == firstID {
		t.Errorf("expected a fresh monster id after respawn, got the same id")
	}
}

// TestCoreAttackGaugeDamagesPlayerAndEndsGame is grounded on scenario S2: an
// idle monster's attack gauge fills without player input and chips away at
// player HP until the run ends in GameOver.
func TestCoreAttackGaugeDamagesPlayerAndEndsGame(t *testing.T) {
	lib, err := NewChordLibrary([]string{"C"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	stage := &StageConfig{
		Mode: ModeSingle, BPM: 120, TimeSignature: 4, MeasureCount: 4,
		AllowedChords: []string{"C"}, EnemyHP: 1, EnemyGaugeSeconds: 5,
		MaxHP: 3, DamageRange: DamageRange{Min: 1, Max: 1}, SimultaneousMonsterCount: 1,
	}
	sink := &RecordingSink{}
	core := NewRhythmCore(context.Background(), stage, lib, fakeTransport{}, sink, 1)

	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	core.Start(start)
	core.Tick(start)

	if err := core.Tick(start.Add(5 * time.Second)); err != nil {
		t.Fatalf("unexpected Tick error: %v", err)
	}
	if core.State().Player.HP != 2 {
		t.Fatalf("expected player hp 2 after one gauge-fill attack, got %d", core.State().Player.HP)
	}

	if err := core.Tick(start.Add(10 * time.Second)); err != nil {
		t.Fatalf("unexpected Tick error: %v", err)
	}
	if core.State().Player.HP != 1 {
		t.Fatalf("expected player hp 1 after two gauge-fill attacks, got %d", core.State().Player.HP)
	}

	if err := core.Tick(start.Add(15 * time.Second)); err != nil {
		t.Fatalf("unexpected Tick error: %v", err)
	}
	if core.State().Active {
		t.Fatalf("expected run to have ended after the third attack")
	}
	if core.State().Finished == nil || *core.State().Finished != OutcomeGameOver {
		t.Fatalf("expected OutcomeGameOver, got %v", core.State().Finished)
	}
}

// TestCoreProgressionTimingLoopBoundaryRegeneratesNotes is grounded on
// scenario S3: progression-timing notes are judged in their due window, and
// crossing the loop boundary emits LoopBoundaryCrossed and regenerates notes
// with the same hit times relative to the new loop.
func TestCoreProgressionTimingLoopBoundaryRegeneratesNotes(t *testing.T) {
	lib, err := NewChordLibrary([]string{"C", "G"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	stage := &StageConfig{
		Mode: ModeProgressionTiming, BPM: 120, TimeSignature: 4, MeasureCount: 2, CountInMeasures: 1,
		ChordProgression: []ProgressionStep{
			{Bar: 1, Beat: 1, ChordID: "C"},
			{Bar: 2, Beat: 1, ChordID: "G"},
		},
		EnemyHP: 1, EnemyGaugeSeconds: 0, MaxHP: 3,
		DamageRange: DamageRange{Min: 1, Max: 1}, SimultaneousMonsterCount: 2,
	}
	sink := &RecordingSink{}
	core := NewRhythmCore(context.Background(), stage, lib, fakeTransport{}, sink, 1)

	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	core.Start(start)

	// loopDuration = 2 bars * 4 beats * 0.5s = 4s; count-in = 1 bar = 2s.
	// note 0 due at t=2s (loop-local 0s), note 1 due at t=4s (loop-local 2s).
	core.Tick(start.Add(2050 * time.Millisecond))
	press(core, start.Add(2050*time.Millisecond), 0, 4, 7) // C major
	core.Tick(start.Add(2060 * time.Millisecond))

	core.Tick(start.Add(4050 * time.Millisecond))
	press(core, start.Add(4050*time.Millisecond), 7, 11, 2) // G major
	core.Tick(start.Add(4060 * time.Millisecond))

	if core.State().Player.Score != 2 {
		t.Fatalf("expected both due notes hit for score 2, got %d", core.State().Player.Score)
	}

	// raw music time wraps past loopDuration (4s) + countIn (2s) = 6s.
	core.Tick(start.Add(6050 * time.Millisecond))

	sawBoundary := false
	for _, e := range sink.Events {
		if lb, ok := e.(LoopBoundaryCrossed); ok && lb.NewCycle == 1 {
			sawBoundary = true
		}
	}
	if !sawBoundary {
		t.Fatalf("expected a LoopBoundaryCrossed{NewCycle:1} event once the loop wrapped")
	}
}

// TestCoreMultiMonsterPressRoutesToLowestSlot is grounded on scenario S5: a
// shared pitch class is attributed to the lowest-slot monster whose target
// set contains it, and other monsters only accept the classes unique to them.
func TestCoreMultiMonsterPressRoutesToLowestSlot(t *testing.T) {
	lib, err := NewChordLibrary([]string{"C", "F", "G"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	stage := &StageConfig{
		Mode: ModeSingleOrdered, BPM: 120, TimeSignature: 4, MeasureCount: 4,
		AllowedChords: []string{"C", "F", "G"}, EnemyHP: 100, EnemyGaugeSeconds: 0,
		MaxHP: 3, DamageRange: DamageRange{Min: 1, Max: 1}, SimultaneousMonsterCount: 3,
	}
	sink := &RecordingSink{}
	core := NewRhythmCore(context.Background(), stage, lib, fakeTransport{}, sink, 1)

	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	core.Start(start)
	core.Tick(start)
	if len(core.State().Monsters) != 3 {
		t.Fatalf("expected 3 monsters spawned, got %d", len(core.State().Monsters))
	}

	// C(0) is shared by C major {0,4,7} and F major {5,9,0}; the lower slot
	// of the two wins it.
	// A(9) only belongs to F major.
	press(core, start.Add(500*time.Millisecond), 0, 9)
	core.Tick(start.Add(500 * time.Millisecond))

	var cMonster, fMonster *Monster
	for _, m := range core.State().Monsters {
		switch m.ChordTarget.Root.Name() {
		case "C":
			cMonster = m
		case "F":
			fMonster = m
		}
	}
	if cMonster == nil || fMonster == nil {
		t.Fatalf("expected both a C-rooted and F-rooted monster among the spawns")
	}

	// F major {F,A,C} and C major {C,E,G} both contain pitch class C; the
	// shared press routes to whichever of the two occupies the lower slot,
	// and only that monster accepts pitch class C.
	lower, higher := cMonster, fMonster
	if fMonster.Slot < cMonster.Slot {
		lower, higher = fMonster, cMonster
	}
	if !lower.CorrectPitchClassesSoFar.Contains(0) {
		t.Errorf("expected the lower-slot monster to accept the shared pitch class C")
	}
	if higher.CorrectPitchClassesSoFar.Contains(0) {
		t.Errorf("expected the higher-slot monster NOT to accept the shared pitch class C")
	}
}
