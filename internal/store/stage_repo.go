package store

import (
	"encoding/json"

	"github.com/chordquest/chordquest-api/internal/models"
	"github.com/chordquest/chordquest-api/internal/rhythm"
)

// StageRepo persists StageRecord rows (the stage document, stored unparsed)
// and converts them to rhythm.StageConfig on demand.
type StageRepo struct {
	store *Store
}

func NewStageRepo(s *Store) *StageRepo {
	return &StageRepo{store: s}
}

func (r *StageRepo) List() ([]models.StageRecord, error) {
	var records []models.StageRecord
	err := r.store.DB.Order("slug").Find(&records).Error
	return records, err
}

func (r *StageRepo) Get(slug string) (*models.StageRecord, error) {
	var rec models.StageRecord
	if err := r.store.DB.Where("slug = ?", slug).First(&rec).Error; err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *StageRepo) Create(title, slug string, def models.StageDefinition) (*models.StageRecord, error) {
	body, err := json.Marshal(def)
	if err != nil {
		return nil, err
	}
	rec := &models.StageRecord{Slug: slug, Title: title, Definition: string(body)}
	if err := r.store.DB.Create(rec).Error; err != nil {
		return nil, err
	}
	return rec, nil
}

func (r *StageRepo) Delete(slug string) error {
	return r.store.DB.Where("slug = ?", slug).Delete(&models.StageRecord{}).Error
}

// ToStageConfig decodes a stored stage document and converts it into the
// rhythm engine's StageConfig, the one conversion point between the wire
// format and the engine's Go-idiomatic field names.
func ToStageConfig(rec *models.StageRecord) (*rhythm.StageConfig, error) {
	var def models.StageDefinition
	if err := json.Unmarshal([]byte(rec.Definition), &def); err != nil {
		return nil, err
	}
	return stageConfigFromWire(def), nil
}

func stageConfigFromWire(def models.StageDefinition) *rhythm.StageConfig {
	cfg := &rhythm.StageConfig{
		Mode:                     rhythm.Mode(def.Mode),
		BPM:                      def.BPM,
		TimeSignature:            def.TimeSignature,
		MeasureCount:             def.MeasureCount,
		CountInMeasures:          def.CountInMeasures,
		AllowedChords:            def.AllowedChords,
		MaxHP:                    def.MaxHP,
		EnemyHP:                  def.EnemyHP,
		EnemyGaugeSeconds:        def.EnemyGaugeSeconds,
		SimultaneousMonsterCount: def.SimultaneousMonsterCount,
		DamageRange:              rhythm.DamageRange{Min: def.DamageMin, Max: def.DamageMax},
		PlayRootOnCorrect:        def.PlayRootOnCorrect,
		AudioURL:                 def.AudioURL,
		WindowPostMs:             def.WindowPostMs,
		WindowPreMs:              def.WindowPreMs,
		PreHitMs:                 def.PreHitMs,
		SpecialThreshold:         def.SpecialThreshold,
		TimeLimitSeconds:         def.TimeLimitSeconds,
	}
	for _, step := range def.ChordProgression {
		cfg.ChordProgression = append(cfg.ChordProgression, rhythm.ProgressionStep{
			Bar: step.Bar, Beat: step.Beat, ChordID: step.ChordID, LyricLabel: step.LyricLabel,
		})
	}
	if def.Transpose != nil {
		cfg.Transpose = &rhythm.TransposeSettings{
			InitialKeyOffset: def.Transpose.InitialKeyOffset,
			RepeatRule:       rhythm.RepeatRule(def.Transpose.RepeatRule),
		}
	}
	for _, section := range def.CombinedSections {
		cfg.CombinedSections = append(cfg.CombinedSections, *stageConfigFromWire(section))
	}
	return cfg
}
