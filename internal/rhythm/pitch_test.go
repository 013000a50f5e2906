package rhythm

import "testing"

func TestPitchClassSetAddContains(t *testing.T) {
	s := NewPitchClassSet(0, 4, 7) // C major

	for _, pc := range []PitchClass{0, 4, 7} {
		if !s.Contains(pc) {
			t.Errorf("expected set to contain %v", pc)
		}
	}
	if s.Contains(1) {
		t.Errorf("did not expect set to contain 1")
	}
	if s.Len() != 3 {
		t.Errorf("expected Len 3, got %d", s.Len())
	}
}

func TestPitchClassSetTranspose(t *testing.T) {
	cMajor := NewPitchClassSet(0, 4, 7)
	dMajor := cMajor.Transpose(2)
	want := NewPitchClassSet(2, 6, 9)
	if dMajor != want {
		t.Errorf("C major transposed +2 = %v, want %v", dMajor.Classes(), want.Classes())
	}
}

func TestPitchClassSetTransposeWraps(t *testing.T) {
	bMajor := NewPitchClassSet(11, 3, 6)
	got := bMajor.Transpose(2)
	want := NewPitchClassSet(1, 5, 8)
	if got != want {
		t.Errorf("B major transposed +2 = %v, want %v", got.Classes(), want.Classes())
	}
}

func TestMidiNoteClass(t *testing.T) {
	tests := []struct {
		note MidiNote
		want PitchClass
	}{
		{60, 0},  // middle C
		{61, 1},
		{72, 0},
		{-1, 11}, // negative wraps
	}
	for _, tt := range tests {
		if got := tt.note.Class(); got != tt.want {
			t.Errorf("MidiNote(%d).Class() = %v, want %v", tt.note, got, tt.want)
		}
	}
}

func TestPitchClassName(t *testing.T) {
	if got := PitchClass(1).Name(); got != "C#" {
		t.Errorf("PitchClass(1).Name() = %q, want C#", got)
	}
	if got := PitchClass(13).Normalize().Name(); got != "C#" {
		t.Errorf("PitchClass(13).Normalize().Name() = %q, want C#", got)
	}
}
