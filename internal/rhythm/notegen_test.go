package rhythm

import "testing"

func TestGenerateNotesSingleModeIsEmpty(t *testing.T) {
	lib, _ := NewChordLibrary([]string{"C"})
	stage := baseStage()
	notes, err := GenerateNotes(&stage, lib, 0, 0, NewRNG(1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(notes) != 0 {
		t.Errorf("expected no derived notes for ModeSingle, got %d", len(notes))
	}
}

func TestGenerateNotesProgressionOrdered(t *testing.T) {
	lib, _ := NewChordLibrary([]string{"C", "G", "Am", "F"})
	stage := baseStage()
	stage.Mode = ModeProgressionOrdered
	stage.ChordProgression = []ProgressionStep{
		{Bar: 1, Beat: 1, ChordID: "C"},
		{Bar: 2, Beat: 1, ChordID: "G"},
		{Bar: 3, Beat: 1, ChordID: "Am"},
		{Bar: 4, Beat: 1, ChordID: "F"},
	}

	notes, err := GenerateNotes(&stage, lib, 0, 0, NewRNG(1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(notes) != 4 {
		t.Fatalf("expected 4 notes, got %d", len(notes))
	}
	secPerBar := 2.0 // 4/4 at 120bpm
	for i, n := range notes {
		want := float64(i) * secPerBar
		if n.HitTime != want {
			t.Errorf("note %d HitTime = %v, want %v", i, n.HitTime, want)
		}
		if n.Chord.ID == "" {
			t.Errorf("note %d missing chord", i)
		}
	}
}

func TestGenerateNotesProgressionOrderedAppliesTranspose(t *testing.T) {
	lib, _ := NewChordLibrary([]string{"C"})
	stage := baseStage()
	stage.Mode = ModeProgressionOrdered
	stage.ChordProgression = []ProgressionStep{{Bar: 1, Beat: 1, ChordID: "C"}}

	notes, err := GenerateNotes(&stage, lib, 0, 2, NewRNG(1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := NewPitchClassSet(2, 6, 9) // C major transposed +2 = D major
	if notes[0].Chord.TargetSet != want {
		t.Errorf("transposed target set = %v, want %v", notes[0].Chord.TargetSet.Classes(), want.Classes())
	}
}

func TestGenerateNotesProgressionRandomAvoidsImmediateRepeats(t *testing.T) {
	lib, _ := NewChordLibrary([]string{"C", "G"})
	stage := baseStage()
	stage.Mode = ModeProgressionRandom
	stage.AllowedChords = []string{"C", "G"}
	stage.EnemyCount = 16

	notes, err := GenerateNotes(&stage, lib, 0, 0, NewRNG(42))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 1; i < len(notes); i++ {
		if notes[i].Chord.ID == notes[i-1].Chord.ID {
			t.Fatalf("found immediate repeat at index %d: %s", i, notes[i].Chord.ID)
		}
	}
}

func TestGenerateNotesDeterministicForSameSeed(t *testing.T) {
	lib, _ := NewChordLibrary([]string{"C", "G", "Am"})
	stage := baseStage()
	stage.Mode = ModeProgressionRandom
	stage.AllowedChords = []string{"C", "G", "Am"}
	stage.EnemyCount = 10

	notesA, err := GenerateNotes(&stage, lib, 0, 0, NewRNG(7))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	notesB, err := GenerateNotes(&stage, lib, 0, 0, NewRNG(7))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(notesA) != len(notesB) {
		t.Fatalf("length mismatch: %d vs %d", len(notesA), len(notesB))
	}
	for i := range notesA {
		if notesA[i].Chord.ID != notesB[i].Chord.ID {
			t.Fatalf("note %d differs between same-seed runs: %s vs %s", i, notesA[i].Chord.ID, notesB[i].Chord.ID)
		}
	}
}

func TestGenerateNotesTimingCombinedOffsetsSections(t *testing.T) {
	lib, _ := NewChordLibrary([]string{"C", "G"})
	sectionA := baseStage()
	sectionA.Mode = ModeProgressionOrdered
	sectionA.MeasureCount = 1
	sectionA.ChordProgression = []ProgressionStep{{Bar: 1, Beat: 1, ChordID: "C"}}

	sectionB := baseStage()
	sectionB.Mode = ModeProgressionOrdered
	sectionB.MeasureCount = 1
	sectionB.ChordProgression = []ProgressionStep{{Bar: 1, Beat: 1, ChordID: "G"}}

	stage := StageConfig{Mode: ModeTimingCombined, CombinedSections: []StageConfig{sectionA, sectionB}}

	notes, err := GenerateNotes(&stage, lib, 0, 0, NewRNG(1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(notes) != 2 {
		t.Fatalf("expected 2 notes across 2 sections, got %d", len(notes))
	}
	if notes[0].HitTime != 0 {
		t.Errorf("first section note HitTime = %v, want 0", notes[0].HitTime)
	}
	if notes[1].HitTime <= notes[0].HitTime {
		t.Errorf("second section note should start after the first section's duration, got %v", notes[1].HitTime)
	}
}
