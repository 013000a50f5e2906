package models

import (
	"time"

	"gorm.io/gorm"
)

// StageRecord persists a stage definition as an opaque wire-format JSON
// document. internal/store decodes it into rhythm.StageConfig when a run is
// started and RhythmCore.Start validates the result; nothing here parses
// it, and internal/rhythm stays free of persistence concerns.
type StageRecord struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Slug       string `gorm:"uniqueIndex;not null" json:"slug"`
	Title      string `gorm:"not null" json:"title"`
	Definition string `gorm:"type:jsonb;not null" json:"definition"` // stage JSON document
}

// StageDefinition is the wire-format document a StageRecord.Definition
// column holds, and what clients POST/PUT through the stage API. Unknown
// fields are ignored on decode, which is just encoding/json's default
// behavior for a named struct.
type StageDefinition struct {
	Mode                     string                  `json:"mode"`
	BPM                      float64                 `json:"bpm"`
	TimeSignature            int                     `json:"time_signature"`
	MeasureCount             int                     `json:"measure_count"`
	CountInMeasures          int                     `json:"count_in_measures"`
	AllowedChords            []string                `json:"allowed_chords,omitempty"`
	ChordProgression         []ProgressionStepWire    `json:"chord_progression,omitempty"`
	MaxHP                    int                     `json:"max_hp"`
	EnemyHP                  int                     `json:"enemy_hp"`
	EnemyGaugeSeconds        float64                 `json:"enemy_gauge_seconds"`
	SimultaneousMonsterCount int                     `json:"simultaneous_monster_count"`
	DamageMin                int                     `json:"min_damage"`
	DamageMax                int                     `json:"max_damage"`
	PlayRootOnCorrect        bool                    `json:"play_root_on_correct"`
	Transpose                *TransposeSettingsWire  `json:"transpose,omitempty"`
	CombinedSections         []StageDefinition       `json:"combined_sections,omitempty"`
	AudioURL                 string                  `json:"audio_url"`
	WindowPostMs             float64                 `json:"window_post_ms,omitempty"`
	WindowPreMs              float64                 `json:"window_pre_ms,omitempty"`
	PreHitMs                 float64                 `json:"pre_hit_ms,omitempty"`
	SpecialThreshold         int                     `json:"special_threshold,omitempty"`
	TimeLimitSeconds         *float64                `json:"time_limit_seconds,omitempty"`
}

// ProgressionStepWire is the wire twin of rhythm.ProgressionStep.
type ProgressionStepWire struct {
	Bar        int     `json:"bar"`
	Beat       float64 `json:"beat"`
	ChordID    string  `json:"chord_id"`
	LyricLabel string  `json:"lyric_label,omitempty"`
}

// TransposeSettingsWire is the wire twin of rhythm.TransposeSettings.
type TransposeSettingsWire struct {
	InitialKeyOffset int    `json:"key_offset"`
	RepeatRule       string `json:"repeat_key_change"`
}
