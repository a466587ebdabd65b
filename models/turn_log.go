package models

import (
	"encoding/json"
	"time"
)

// TurnLog is one append-only scored turn of a running match. ITurn is 0-based
// and strictly gapless per match (enforced at append time). Log and
// ScoreDeltas are stored as raw JSON strings, the way the pairing tables in
// the publish system store their pair sets.
type TurnLog struct {
	ID          string    `gorm:"primaryKey" json:"id"`
	MatchID     string    `gorm:"uniqueIndex:idx_turn_logs_match_iturn;index;not null" json:"match_id"`
	ITurn       int       `gorm:"uniqueIndex:idx_turn_logs_match_iturn;not null" json:"i_turn"`
	Log         string    `gorm:"type:text" json:"log"`          // opaque game trace
	ScoreDeltas string    `gorm:"type:text" json:"score_deltas"` // JSON: agent id -> signed delta
	CreatedAt   time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// Deltas decodes the score_deltas column.
func (t *TurnLog) Deltas() (map[string]int64, error) {
	deltas := map[string]int64{}
	if t.ScoreDeltas == "" {
		return deltas, nil
	}
	if err := json.Unmarshal([]byte(t.ScoreDeltas), &deltas); err != nil {
		return nil, err
	}
	return deltas, nil
}
