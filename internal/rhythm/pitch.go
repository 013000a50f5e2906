package rhythm

// PitchClass is an integer 0..11 (C=0).
type PitchClass int

// MidiNote is an integer 0..127; MidiNote mod 12 = PitchClass.
type MidiNote int

// Class returns the pitch class (mod 12) of a MIDI note.
func (n MidiNote) Class() PitchClass {
	c := int(n) % 12
	if c < 0 {
		c += 12
	}
	return PitchClass(c)
}

// Normalize wraps a pitch class into 0..11.
func (p PitchClass) Normalize() PitchClass {
	v := int(p) % 12
	if v < 0 {
		v += 12
	}
	return PitchClass(v)
}

var pitchClassNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// Name renders the sharp spelling of a pitch class, e.g. "C#".
func (p PitchClass) Name() string {
	return pitchClassNames[p.Normalize()]
}

// PitchClassSet is a bitmask over the 12 pitch classes: bit i set means
// pitch class i is a member. It backs ChordDefinition.TargetSet and the
// JudgeEngine's per-monster accepted-classes accumulator, which is why "the
// set equals targetSet" reduces to integer equality.
type PitchClassSet uint16

// NewPitchClassSet builds a set from a list of pitch classes, ignoring
// duplicates (the data model requires targetSet uniqueness, so duplicate
// construction inputs are collapsed rather than rejected).
func NewPitchClassSet(classes ...PitchClass) PitchClassSet {
	var s PitchClassSet
	for _, c := range classes {
		s = s.Add(c)
	}
	return s
}

// Add returns the set with pitch class c included.
func (s PitchClassSet) Add(c PitchClass) PitchClassSet {
	return s | (1 << uint(c.Normalize()))
}

// Contains reports whether c is a member of the set.
func (s PitchClassSet) Contains(c PitchClass) bool {
	return s&(1<<uint(c.Normalize())) != 0
}

// Len returns the number of member pitch classes.
func (s PitchClassSet) Len() int {
	n := 0
	for v := uint16(s); v != 0; v >>= 1 {
		n += int(v & 1)
	}
	return n
}

// Classes returns the member pitch classes in ascending order.
func (s PitchClassSet) Classes() []PitchClass {
	var out []PitchClass
	for i := 0; i < 12; i++ {
		if s.Contains(PitchClass(i)) {
			out = append(out, PitchClass(i))
		}
	}
	return out
}

// Transpose shifts every member of the set by semitones, wrapping mod 12.
func (s PitchClassSet) Transpose(semitones int) PitchClassSet {
	var out PitchClassSet
	for _, c := range s.Classes() {
		out = out.Add(PitchClass(int(c) + semitones).Normalize())
	}
	return out
}
