package rhythm

// RepeatRule selects how the initial key offset changes across loop cycles.
type RepeatRule string

const (
	RepeatOff              RepeatRule = "off"
	RepeatPlusOneSemitone  RepeatRule = "+1"
	RepeatPlusFourthPerfect RepeatRule = "+5"
)

// TransposeSettings configures how a stage's key shifts across loop cycles.
type TransposeSettings struct {
	InitialKeyOffset int // semitones, in [-6..+6]
	RepeatRule       RepeatRule
}

// wrapSigned wraps v into [-6, 6] by taking the enharmonic equivalent:
// values are reduced mod 12 and then folded into the signed range centered
// on zero.
func wrapSigned(v int) int {
	v = v % 12
	if v < 0 {
		v += 12
	}
	if v > 6 {
		v -= 12
	}
	return v
}

// TransposeOffset computes the semitone offset for loopCycle under
// settings. The result is the raw, unwrapped composition used by Apply;
// callers that need the enharmonic-equivalent display value should call
// wrapSigned.
func TransposeOffset(loopCycle int, settings TransposeSettings) int {
	switch settings.RepeatRule {
	case RepeatPlusOneSemitone:
		return settings.InitialKeyOffset + loopCycle
	case RepeatPlusFourthPerfect:
		return settings.InitialKeyOffset + 5*loopCycle
	default: // RepeatOff and unknown values behave as Off
		return settings.InitialKeyOffset
	}
}

// NormalizedTransposeOffset applies TransposeOffset and then folds the
// result into [-6..+6] and reports whether normalisation was needed, so the
// caller can raise the recoverable TransposeOutOfRange event when the raw
// composed offset fell outside [-12..+12] before folding.
func NormalizedTransposeOffset(loopCycle int, settings TransposeSettings) (offset int, outOfRange bool) {
	raw := TransposeOffset(loopCycle, settings)
	outOfRange = raw < -12 || raw > 12
	return wrapSigned(raw), outOfRange
}

// ApplyTranspose transposes root, bass, target set and preferred voicing by
// semitones (reduced mod 12) and regenerates DisplayName via the naming rule
// rule: root name + quality suffix, with "/" + bass name appended when a
// bass override is set.
func ApplyTranspose(chord ChordDefinition, semitones int) ChordDefinition {
	shift := semitones % 12
	if shift < 0 {
		shift += 12
	}

	out := chord
	out.Root = PitchClass(int(chord.Root) + shift).Normalize()
	out.TargetSet = chord.TargetSet.Transpose(shift)

	if chord.BassOverride != nil {
		b := PitchClass(int(*chord.BassOverride) + shift).Normalize()
		out.BassOverride = &b
	}

	voicing := make([]MidiNote, len(chord.PreferredVoicing))
	for i, n := range chord.PreferredVoicing {
		voicing[i] = n + MidiNote(shift)
	}
	out.PreferredVoicing = voicing

	out.DisplayName = renderChordName(out.Root, chord.quality, out.BassOverride)
	return out
}

// ApplyTransposeComposition returns ApplyTranspose(c, a+b), the left-hand
// side of the composition law
// ApplyTranspose(c, a+b) == ApplyTranspose(ApplyTranspose(c,a),b) mod 12; it
// does not compare the two sides itself. It is provided as a named helper (rather than inlined at call sites) so tests
// can exercise the law directly against the same code path production uses.
func ApplyTransposeComposition(chord ChordDefinition, a, b int) ChordDefinition {
	return ApplyTranspose(chord, a+b)
}
