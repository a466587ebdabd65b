package models

import "time"

// AgentStatus is engine-managed and never client-settable. Ready/Idle flip to
// Running only when a match actually starts, and back when it terminates.
type AgentStatus string

const (
	AgentIdle           AgentStatus = "Idle"
	AgentReady          AgentStatus = "Ready"
	AgentRunning        AgentStatus = "Running"
	AgentDecommissioned AgentStatus = "Decommissioned" // soft-deleted, hidden from listings
)

// AgentPolicy is the owner's declared matchmaking preference. It is stored and
// exposed for an external matchmaker; the engine itself never acts on it.
type AgentPolicy string

const (
	PolicyIdle           AgentPolicy = "Idle"
	PolicyAutoJoin       AgentPolicy = "AutoJoin"
	PolicyAutoNewAndJoin AgentPolicy = "AutoNewAndJoin"
)

// ValidPolicy reports whether p is one of the declared policies.
func ValidPolicy(p AgentPolicy) bool {
	switch p {
	case PolicyIdle, PolicyAutoJoin, PolicyAutoNewAndJoin:
		return true
	}
	return false
}

// Agent is a competitive bot registered against exactly one game type.
// Name is unique per owner among live agents; the partial index leaves
// decommissioned rows out so a freed name can be registered again.
// PlayedGames/WonGames are written only by the stats aggregator on match
// completion.
type Agent struct {
	ID          string      `gorm:"primaryKey" json:"id"`
	OwnerID     string      `gorm:"uniqueIndex:idx_agents_owner_name,where:status <> 'Decommissioned';not null" json:"owner_id"`
	Name        string      `gorm:"uniqueIndex:idx_agents_owner_name;not null" json:"name"`
	Slug        string      `gorm:"index" json:"slug"`
	GameTypeID  string      `gorm:"index;not null" json:"game_type_id"`
	Version     string      `json:"version"`
	Description string      `json:"description,omitempty"`
	Status      AgentStatus `gorm:"type:varchar(16);default:'Idle'" json:"status"`
	Policy      AgentPolicy `gorm:"type:varchar(16);default:'Idle'" json:"policy"`
	PlayedGames int         `gorm:"default:0" json:"played_games"`
	WonGames    int         `gorm:"default:0" json:"won_games"`
	CreatedAt   time.Time   `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time   `json:"updated_at" gorm:"autoUpdateTime"`
}
