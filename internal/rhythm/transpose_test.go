package rhythm

import "testing"

func TestTransposeOffsetRules(t *testing.T) {
	tests := []struct {
		name      string
		loopCycle int
		settings  TransposeSettings
		want      int
	}{
		{name: "off stays constant", loopCycle: 3, settings: TransposeSettings{InitialKeyOffset: 2, RepeatRule: RepeatOff}, want: 2},
		{name: "plus one semitone per cycle", loopCycle: 3, settings: TransposeSettings{InitialKeyOffset: 0, RepeatRule: RepeatPlusOneSemitone}, want: 3},
		{name: "plus perfect fourth per cycle", loopCycle: 2, settings: TransposeSettings{InitialKeyOffset: 0, RepeatRule: RepeatPlusFourthPerfect}, want: 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TransposeOffset(tt.loopCycle, tt.settings); got != tt.want {
				t.Errorf("TransposeOffset() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestNormalizedTransposeOffsetFlagsOutOfRange(t *testing.T) {
	settings := TransposeSettings{InitialKeyOffset: 0, RepeatRule: RepeatPlusFourthPerfect}
	_, outOfRange := NormalizedTransposeOffset(1, settings) // raw = 5, within range
	if outOfRange {
		t.Errorf("expected in-range at loopCycle 1")
	}
	_, outOfRange = NormalizedTransposeOffset(3, settings) // raw = 15, out of range
	if !outOfRange {
		t.Errorf("expected out-of-range at loopCycle 3")
	}
}

// TestApplyTransposeComposition checks property 7 from the engine's testable
// properties: transposing by a then b equals transposing by a+b, modulo 12.
func TestApplyTransposeComposition(t *testing.T) {
	chord, err := NewChordFromName("Cmaj7")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for a := -6; a <= 6; a++ {
		for b := -6; b <= 6; b++ {
			sequential := ApplyTranspose(ApplyTranspose(chord, a), b)
			combined := ApplyTransposeComposition(chord, a, b)
			if sequential.TargetSet != combined.TargetSet {
				t.Fatalf("composition law violated for a=%d b=%d: sequential=%v combined=%v",
					a, b, sequential.TargetSet.Classes(), combined.TargetSet.Classes())
			}
			if sequential.Root.Normalize() != combined.Root.Normalize() {
				t.Fatalf("root mismatch for a=%d b=%d: sequential=%v combined=%v", a, b, sequential.Root, combined.Root)
			}
		}
	}
}

func TestApplyTransposeRenamesSlashChord(t *testing.T) {
	chord, err := NewChordFromName("G/B")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	transposed := ApplyTranspose(chord, 2)
	if transposed.DisplayName != "A/C#" {
		t.Errorf("DisplayName = %q, want A/C#", transposed.DisplayName)
	}
}
