package rhythm

import "fmt"

// TimedNote is a derived, ordered-by-hitTime entity. Chord is already
// transposed for the loop cycle it was generated for.
type TimedNote struct {
	ID           string
	HitTime      float64
	Chord        ChordDefinition
	SectionIndex int
}

// GenerateNotes is the pure function from (stage, loopCycle, transposeOffset)
// to an ordered TimedNote sequence. It never mutates stage and, for the
// non-random modes, is fully deterministic in its inputs; the
// ProgressionRandom branch additionally consumes rng, which RhythmCore seeds
// once per run so that regenerating notes for the same loopCycle during
// tests/replays reproduces the same sequence only when rng state is also
// replayed identically.
func GenerateNotes(stage *StageConfig, lib *ChordLibrary, loopCycle, transposeOffset int, rng *RNG) ([]TimedNote, error) {
	switch stage.Mode {
	case ModeSingle, ModeSingleOrdered:
		return nil, nil

	case ModeProgressionOrdered, ModeProgressionTiming:
		return expandProgression(stage, lib, stage.ChordProgression, 0, transposeOffset)

	case ModeProgressionRandom:
		steps := stage.ChordProgression
		if len(steps) == 0 {
			steps = syntheticSteps(stage)
		}
		randomized, err := randomizeSteps(steps, stage.AllowedChords, rng)
		if err != nil {
			return nil, err
		}
		return expandProgression(stage, lib, randomized, 0, transposeOffset)

	case ModeTimingCombined:
		var out []TimedNote
		offset := 0.0
		for i := range stage.CombinedSections {
			section := &stage.CombinedSections[i]
			notes, err := expandProgression(section, lib, section.ChordProgression, i, transposeOffset)
			if err != nil {
				return nil, err
			}
			for j := range notes {
				notes[j].HitTime += offset
			}
			out = append(out, notes...)

			sc := NewClock(section.BPM, section.TimeSignature, section.MeasureCount, 0, 1.0)
			offset += sc.LoopDuration()
		}
		return out, nil

	default:
		return nil, newError(ConfigInvalid, "unknown mode %q", stage.Mode)
	}
}

func syntheticSteps(stage *StageConfig) []ProgressionStep {
	count := stage.EnemyCount
	if count <= 0 {
		count = stage.MeasureCount
	}
	steps := make([]ProgressionStep, 0, count)
	for i := 0; i < count; i++ {
		steps = append(steps, ProgressionStep{Bar: i + 1, Beat: 1})
	}
	return steps
}

// randomizeSteps replaces each step's ChordID with a uniform draw from
// allowed, forbidding the same id on two consecutive steps.
func randomizeSteps(steps []ProgressionStep, allowed []string, rng *RNG) ([]ProgressionStep, error) {
	if len(allowed) == 0 {
		return nil, newError(ConfigInvalid, "progression_random requires allowed_chords")
	}
	out := make([]ProgressionStep, len(steps))
	copy(out, steps)
	prev := ""
	for i := range out {
		choice := allowed[rng.Intn(len(allowed))]
		if len(allowed) > 1 {
			for choice == prev {
				choice = allowed[rng.Intn(len(allowed))]
			}
		}
		out[i].ChordID = choice
		prev = choice
	}
	return out, nil
}

func expandProgression(stage *StageConfig, lib *ChordLibrary, steps []ProgressionStep, sectionIndex int, transposeOffset int) ([]TimedNote, error) {
	secPerBeat := 60.0 / stage.BPM
	secPerBar := float64(stage.TimeSignature) * secPerBeat

	out := make([]TimedNote, 0, len(steps))
	for i, step := range steps {
		chord, err := lib.Lookup(step.ChordID)
		if err != nil {
			return nil, err
		}
		if transposeOffset != 0 {
			chord = ApplyTranspose(chord, transposeOffset)
		}
		hitTime := float64(step.Bar-1)*secPerBar + (step.Beat-1)*secPerBeat
		out = append(out, TimedNote{
			ID:           fmt.Sprintf("s%d-n%d", sectionIndex, i),
			HitTime:      hitTime,
			Chord:        chord,
			SectionIndex: sectionIndex,
		})
	}
	return out, nil
}
