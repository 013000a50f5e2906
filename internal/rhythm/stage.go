package rhythm

// Mode enumerates the stage modes a stage config can declare.
type Mode string

const (
	ModeSingle             Mode = "single"
	ModeSingleOrdered      Mode = "single_ordered"
	ModeProgressionRandom  Mode = "progression_random"
	ModeProgressionOrdered Mode = "progression_ordered"
	ModeProgressionTiming  Mode = "progression_timing"
	ModeTimingCombined     Mode = "timing_combined"
)

func (m Mode) isProgression() bool {
	switch m {
	case ModeProgressionRandom, ModeProgressionOrdered, ModeProgressionTiming, ModeTimingCombined:
		return true
	}
	return false
}

func (m Mode) isTiming() bool {
	return m == ModeProgressionTiming || m == ModeTimingCombined
}

// ProgressionStep is one entry in a progression's chord sequence.
type ProgressionStep struct {
	Bar        int     // 1-based
	Beat       float64 // 1-based rational
	ChordID    string
	LyricLabel string
}

// DamageRange is stage.damageRange (min,max), inclusive.
type DamageRange struct {
	Min int
	Max int
}

// StageConfig is the immutable-per-run descriptor for a stage. Field names
// here are the Go-idiomatic counterparts of the persisted JSON field names
// (mode, bpm, time_signature, …); the JSON tags on the wire-format twin live
// in internal/models.
type StageConfig struct {
	Mode                     Mode
	BPM                      float64
	TimeSignature            int
	MeasureCount             int
	CountInMeasures          int
	AllowedChords            []string
	ChordProgression         []ProgressionStep
	MaxHP                    int
	EnemyHP                  int
	EnemyGaugeSeconds        float64
	SimultaneousMonsterCount int
	EnemyCount               int
	DamageRange              DamageRange
	PlayRootOnCorrect        bool
	Transpose                *TransposeSettings
	CombinedSections         []StageConfig // non-recursive: inner sections must be empty here

	// AudioURL is the backing track the host's Transport loads at run start.
	AudioURL string

	// Window overrides: default ±180ms, overridable per stage.
	WindowPostMs float64
	WindowPreMs  float64
	PreHitMs     float64

	// SpecialThreshold is the sp level at which a completion becomes a
	// special (doubled damage, sp -= 3). Defaults to 3 when zero.
	SpecialThreshold int

	// TimeLimitSeconds implements a daily-challenge cancellation clause.
	// Nil means unlimited.
	TimeLimitSeconds *float64
}

const (
	defaultWindowPostMs = 180.0
	defaultWindowPreMs  = 180.0
	defaultPreHitMs     = 80.0
	defaultSpecialLevel = 3
)

func (s *StageConfig) windowPost() float64 {
	if s.WindowPostMs > 0 {
		return s.WindowPostMs
	}
	return defaultWindowPostMs
}

func (s *StageConfig) windowPre() float64 {
	if s.WindowPreMs > 0 {
		return s.WindowPreMs
	}
	return defaultWindowPreMs
}

func (s *StageConfig) preHitWindow() float64 {
	if s.PreHitMs > 0 {
		return s.PreHitMs
	}
	return defaultPreHitMs
}

func (s *StageConfig) specialThreshold() int {
	if s.SpecialThreshold > 0 {
		return s.SpecialThreshold
	}
	return defaultSpecialLevel
}

var validTimeSignatures = map[int]bool{2: true, 3: true, 4: true, 6: true, 8: true}

// Validate checks the stage invariants and returns an EngineError describing
// the first violation found: ConfigInvalid, or ChordUnknown for a chord id
// missing from lib.
func (s *StageConfig) Validate(lib *ChordLibrary) error {
	switch s.Mode {
	case ModeSingle, ModeSingleOrdered, ModeProgressionRandom, ModeProgressionOrdered, ModeProgressionTiming, ModeTimingCombined:
	default:
		return newError(ConfigInvalid, "unknown mode %q", s.Mode)
	}
	if s.Mode != ModeTimingCombined {
		if s.BPM <= 0 {
			return newError(ConfigInvalid, "bpm must be positive, got %v", s.BPM)
		}
		if !validTimeSignatures[s.TimeSignature] {
			return newError(ConfigInvalid, "time_signature %d not in {2,3,4,6,8}", s.TimeSignature)
		}
		if s.MeasureCount <= 0 {
			return newError(ConfigInvalid, "measure_count must be positive, got %d", s.MeasureCount)
		}
	}
	if s.CountInMeasures < 0 {
		return newError(ConfigInvalid, "count_in_measures must be non-negative, got %d", s.CountInMeasures)
	}
	if s.SimultaneousMonsterCount < 1 || s.SimultaneousMonsterCount > 8 {
		return newError(ConfigInvalid, "simultaneous_monster_count must be 1..8, got %d", s.SimultaneousMonsterCount)
	}
	if s.DamageRange.Min <= 0 || s.DamageRange.Max < s.DamageRange.Min {
		return newError(ConfigInvalid, "invalid damage range %+v", s.DamageRange)
	}
	if s.MaxHP <= 0 {
		return newError(ConfigInvalid, "max_hp must be positive, got %d", s.MaxHP)
	}
	if s.EnemyHP <= 0 {
		return newError(ConfigInvalid, "enemy_hp must be positive, got %d", s.EnemyHP)
	}

	if lib != nil {
		for _, id := range s.AllowedChords {
			if _, err := lib.Lookup(id); err != nil {
				return err
			}
		}
		for _, step := range s.ChordProgression {
			if _, err := lib.Lookup(step.ChordID); err != nil {
				return err
			}
		}
	}

	if s.Mode.isProgression() && s.Mode != ModeTimingCombined && len(s.ChordProgression) == 0 && s.Mode != ModeProgressionRandom {
		return newError(ConfigInvalid, "progression mode %q requires a non-empty chord_progression", s.Mode)
	}
	if s.Mode == ModeProgressionRandom && len(s.AllowedChords) == 0 {
		return newError(ConfigInvalid, "progression_random requires a non-empty allowed_chords")
	}

	if s.Mode == ModeTimingCombined {
		if len(s.CombinedSections) == 0 {
			return newError(ConfigInvalid, "timing_combined requires a non-empty combined_sections")
		}
		for i := range s.CombinedSections {
			section := &s.CombinedSections[i]
			if len(section.CombinedSections) != 0 {
				return newError(ConfigInvalid, "combined_sections must not nest (section %d)", i)
			}
			if err := section.Validate(lib); err != nil {
				return err
			}
		}
	}

	return nil
}
