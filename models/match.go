package models

import "time"

// MatchStatus lifecycle. Completed and Cancelled are terminal.
type MatchStatus string

const (
	MatchPending   MatchStatus = "Pending"
	MatchRunning   MatchStatus = "Running"
	MatchCompleted MatchStatus = "Completed"
	MatchCancelled MatchStatus = "Cancelled"
)

// matchTransitions is the exhaustive transition table; anything not listed
// here is rejected with InvalidState.
var matchTransitions = map[MatchStatus][]MatchStatus{
	MatchPending: {MatchRunning, MatchCancelled},
	MatchRunning: {MatchCompleted, MatchCancelled},
}

// CanTransition reports whether from -> to is a listed transition.
func (s MatchStatus) CanTransition(to MatchStatus) bool {
	for _, next := range matchTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// Terminal reports whether the status admits no further transitions.
func (s MatchStatus) Terminal() bool {
	return s == MatchCompleted || s == MatchCancelled
}

// Match is one room of bounded agent slots playing total_games games of one
// game type. Slot bounds are copied from the game type at creation (create may
// narrow them within the game type's bounds). current_slots is always derived
// from the participations table, never stored.
type Match struct {
	ID           string      `gorm:"primaryKey" json:"id"`
	Name         string      `gorm:"uniqueIndex;not null" json:"name"`
	Slug         string      `gorm:"index" json:"slug"`
	CreatorID    string      `gorm:"index;not null" json:"creator_id"`
	GameTypeID   string      `gorm:"index;not null" json:"game_type_id"`
	TotalGames   int         `gorm:"not null" json:"total_games"`
	PasswordHash *string     `json:"-"` // bcrypt; nil = open match
	MinSlots     int         `gorm:"not null" json:"min_slots"`
	MaxSlots     int         `gorm:"not null" json:"max_slots"`
	Status       MatchStatus `gorm:"type:varchar(16);default:'Pending';index" json:"status"`
	WinnerID     *string     `json:"winner_id,omitempty"` // set only on Completed, nil on tie
	StartTime    time.Time   `json:"start_time" gorm:"autoCreateTime"`
	EndTime      *time.Time  `json:"end_time,omitempty"`
	ArchivedAt   *time.Time  `json:"archived_at,omitempty"` // turn log uploaded to R2
	CreatedAt    time.Time   `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt    time.Time   `json:"updated_at" gorm:"autoUpdateTime"`
}

// Participation binds one agent to one slot of one match. At most one row per
// (match, agent) — the unique index backs the at-most-once occupancy invariant.
type Participation struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	MatchID   string    `gorm:"uniqueIndex:idx_participations_match_agent;index;not null" json:"match_id"`
	AgentID   string    `gorm:"uniqueIndex:idx_participations_match_agent;index;not null" json:"agent_id"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// AgentCommitment pins an agent to the one non-terminal match it occupies.
// The unique index on agent_id is what enforces mutual exclusion across
// matches: two concurrent admissions of the same agent into different
// matches cannot both insert, whatever their transactions interleave as.
// Rows are written with the Participation and removed when the agent leaves
// or the match reaches a terminal state.
type AgentCommitment struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	AgentID   string    `gorm:"uniqueIndex;not null" json:"agent_id"`
	MatchID   string    `gorm:"index;not null" json:"match_id"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// OpenMatch is the list-open-for-joining projection: slot counts and a
// password flag, never the password hash itself.
type OpenMatch struct {
	ID           string      `json:"id"`
	Name         string      `json:"name"`
	Slug         string      `json:"slug"`
	CreatorID    string      `json:"creator_id"`
	CreatorName  string      `json:"creator_name"`
	GameTypeID   string      `json:"game_type_id"`
	GameTypeName string      `json:"game_type_name"`
	TotalGames   int         `json:"total_games"`
	WithPassword bool        `json:"with_password"`
	MinSlots     int         `json:"min_slots"`
	MaxSlots     int         `json:"max_slots"`
	CurrentSlots int64       `json:"current_slots"`
	Status       MatchStatus `json:"status"`
	StartTime    time.Time   `json:"start_time"`
}
