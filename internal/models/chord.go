package models

import (
	"time"

	"gorm.io/gorm"
)

// ChordRecord is the persisted form of a library chord entry. It mirrors
// rhythm.ChordDefinition's source fields (the parser lives in
// internal/rhythm/chordlib.go; this table is just its storage backend) —
// internal/rhythm never imports gorm or this package.
type ChordRecord struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	ChordID     string `gorm:"uniqueIndex;not null" json:"chord_id"` // "<Root><Quality>[/Bass]"
	DisplayName string `gorm:"not null" json:"display_name"`
	Notes       string `gorm:"type:text" json:"notes,omitempty"`
}
