package rhythm

import "fmt"

// ChordDefinition is immutable once constructed. TargetSet is the set of
// pitch classes that together satisfy the chord; PreferredVoicing is
// guide-only and never affects judgement.
type ChordDefinition struct {
	ID               string
	DisplayName      string
	Root             PitchClass
	BassOverride     *PitchClass
	TargetSet        PitchClassSet
	PreferredVoicing []MidiNote

	// quality is the suffix used to rebuild DisplayName after a transpose
	// (e.g. "m7b5" in "C#m7b5").
	quality string
}

// HasBass reports whether this is a slash chord.
func (c ChordDefinition) HasBass() bool {
	return c.BassOverride != nil
}

// qualityIntervals maps a chord-name suffix to semitone offsets from the
// root: maj7, m7b5, sus2/4, dim, aug, 6, 9, alongside plain major/minor.
var qualityIntervals = map[string][]int{
	"":     {0, 4, 7},         // major
	"m":    {0, 3, 7},         // minor
	"7":    {0, 4, 7, 10},     // dominant 7th
	"maj7": {0, 4, 7, 11},     // major 7th
	"m7":   {0, 3, 7, 10},     // minor 7th
	"m7b5": {0, 3, 6, 10},     // half-diminished
	"dim":  {0, 3, 6},         // diminished triad
	"dim7": {0, 3, 6, 9},      // fully diminished 7th
	"aug":  {0, 4, 8},         // augmented
	"sus2": {0, 2, 7},         // suspended 2nd
	"sus4": {0, 5, 7},         // suspended 4th
	"6":    {0, 4, 7, 9},      // major 6th
	"m6":   {0, 3, 7, 9},      // minor 6th
	"9":    {0, 4, 7, 10, 14}, // dominant 9th
	"add9": {0, 4, 7, 14},     // add9
}

// rootTable maps every accepted root spelling (sharp or flat) to a pitch
// class, so that both "F#" and "Gb" parse as the same PitchClass.
var rootTable = map[string]PitchClass{
	"C": 0, "B#": 0,
	"C#": 1, "Db": 1,
	"D": 2,
	"D#": 3, "Eb": 3,
	"E": 4, "Fb": 4,
	"F": 5, "E#": 5,
	"F#": 6, "Gb": 6,
	"G": 7,
	"G#": 8, "Ab": 8,
	"A": 9,
	"A#": 10, "Bb": 10,
	"B": 11, "Cb": 11,
}

// NewChordDefinition builds a chord from a root, quality suffix and optional
// bass override, deriving TargetSet and PreferredVoicing the way
// mattdees-guitartutor's chordToMidi derives a note list from qualityIntervals.
func NewChordDefinition(id string, root PitchClass, quality string, bass *PitchClass) (ChordDefinition, error) {
	intervals, ok := qualityIntervals[quality]
	if !ok {
		return ChordDefinition{}, newError(ChordUnknown, "unknown chord quality %q in id %q", quality, id)
	}

	set := PitchClassSet(0)
	voicing := make([]MidiNote, 0, len(intervals))
	baseOctave := 4
	baseMidi := MidiNote(12*(baseOctave+1)) + MidiNote(root)
	for _, iv := range intervals {
		set = set.Add(PitchClass(int(root) + iv).Normalize())
		voicing = append(voicing, baseMidi+MidiNote(iv))
	}
	if bass != nil {
		set = set.Add(*bass)
	}

	return ChordDefinition{
		ID:               id,
		DisplayName:      renderChordName(root, quality, bass),
		Root:             root,
		BassOverride:     bass,
		TargetSet:        set,
		PreferredVoicing: voicing,
		quality:          quality,
	}, nil
}

func renderChordName(root PitchClass, quality string, bass *PitchClass) string {
	name := root.Name() + quality
	if bass != nil {
		name += "/" + bass.Name()
	}
	return name
}

// String implements fmt.Stringer for debug/log output.
func (c ChordDefinition) String() string {
	return fmt.Sprintf("%s(%s)", c.ID, c.DisplayName)
}
