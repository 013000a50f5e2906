package rhythm

import "testing"

func TestParseChordName(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		wantRoot    PitchClass
		wantQuality string
		wantBass    *PitchClass
		expectError bool
	}{
		{name: "C major", input: "C", wantRoot: 0, wantQuality: ""},
		{name: "C major 7", input: "Cmaj7", wantRoot: 0, wantQuality: "maj7"},
		{name: "F sharp half diminished", input: "F#m7b5", wantRoot: 6, wantQuality: "m7b5"},
		{name: "slash chord natural bass", input: "G/B", wantRoot: 7, wantQuality: "", wantBass: pc(11)},
		{name: "flat root", input: "Dbmaj7", wantRoot: 1, wantQuality: "maj7"},
		{name: "unknown quality", input: "Cxyz", expectError: true},
		{name: "malformed", input: "H7", expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root, quality, bass, err := ParseChordName(tt.input)
			if tt.expectError {
				if err == nil {
					t.Fatalf("expected error for %q, got none", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if root != tt.wantRoot {
				t.Errorf("root = %v, want %v", root, tt.wantRoot)
			}
			if quality != tt.wantQuality {
				t.Errorf("quality = %q, want %q", quality, tt.wantQuality)
			}
			if (bass == nil) != (tt.wantBass == nil) {
				t.Fatalf("bass presence mismatch: got %v, want %v", bass, tt.wantBass)
			}
			if bass != nil && *bass != *tt.wantBass {
				t.Errorf("bass = %v, want %v", *bass, *tt.wantBass)
			}
		})
	}
}

func pc(v int) *PitchClass {
	p := PitchClass(v)
	return &p
}

func TestNewChordFromNameTargetSet(t *testing.T) {
	chord, err := NewChordFromName("Cmaj7")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := NewPitchClassSet(0, 4, 7, 11)
	if chord.TargetSet != want {
		t.Errorf("Cmaj7 target set = %v, want %v", chord.TargetSet.Classes(), want.Classes())
	}
	if chord.DisplayName != "Cmaj7" {
		t.Errorf("DisplayName = %q, want Cmaj7", chord.DisplayName)
	}
}

func TestNewChordFromNameSlashChord(t *testing.T) {
	chord, err := NewChordFromName("G/B")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !chord.HasBass() {
		t.Fatalf("expected HasBass true")
	}
	if !chord.TargetSet.Contains(11) {
		t.Errorf("expected target set to contain the bass pitch class B")
	}
}

func TestChordLibraryLookup(t *testing.T) {
	lib, err := NewChordLibrary([]string{"C", "G", "Am", "F"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if lib.Len() != 4 {
		t.Errorf("Len() = %d, want 4", lib.Len())
	}
	if _, err := lib.Lookup("C"); err != nil {
		t.Errorf("unexpected lookup error: %v", err)
	}
	if _, err := lib.Lookup("Bb13sus"); err == nil {
		t.Errorf("expected ChordUnknown for unregistered id")
	}
}

func TestChordLibraryRejectsUnknownQuality(t *testing.T) {
	if _, err := NewChordLibrary([]string{"Cqqq"}); err == nil {
		t.Fatalf("expected error building library from malformed id")
	}
}
