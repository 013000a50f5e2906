package store

import "github.com/chordquest/chordquest-api/internal/models"

// ChordRepo persists ChordRecord rows — the raw chord-id/display-name pairs
// an operator curates; parsing them into rhythm.ChordDefinition happens in
// internal/rhythm.NewChordLibrary, which this repo feeds but never imports.
type ChordRepo struct {
	store *Store
}

func NewChordRepo(s *Store) *ChordRepo {
	return &ChordRepo{store: s}
}

func (r *ChordRepo) List() ([]models.ChordRecord, error) {
	var records []models.ChordRecord
	err := r.store.DB.Order("chord_id").Find(&records).Error
	return records, err
}

func (r *ChordRepo) Create(rec *models.ChordRecord) error {
	return r.store.DB.Create(rec).Error
}

func (r *ChordRepo) Delete(chordID string) error {
	return r.store.DB.Where("chord_id = ?", chordID).Delete(&models.ChordRecord{}).Error
}

// IDs returns every chord_id in the library, the shape rhythm.NewChordLibrary
// wants for its allowed-chords argument.
func (r *ChordRepo) IDs() ([]string, error) {
	records, err := r.List()
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(records))
	for _, rec := range records {
		ids = append(ids, rec.ChordID)
	}
	return ids, nil
}
