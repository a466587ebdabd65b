package models

import "time"

// GameType is one entry of the static game catalog. Slot bounds are copied
// onto matches at creation time, so rows are treated as immutable once any
// live match or agent references them.
type GameType struct {
	ID          string    `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"uniqueIndex;not null" json:"name"` // machine name, e.g. "leduc-holdem"
	DisplayName string    `gorm:"not null" json:"display_name"`
	Sponsor     string    `gorm:"not null" json:"sponsor"` // game engine that hosts play, e.g. "rlcard"
	Description string    `json:"description,omitempty"`
	MinSlots    int       `gorm:"not null" json:"min_slots"`
	MaxSlots    int       `gorm:"not null" json:"max_slots"`
	CreatedAt   time.Time `json:"created_at" gorm:"autoCreateTime"`
}
