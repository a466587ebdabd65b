package models

import "time"

// StatsEntry is the derived ranking of one agent within one game type.
// Written only by the stats aggregator and fully rebuildable from the agents
// table, so dropping the table loses nothing.
type StatsEntry struct {
	ID          string    `gorm:"primaryKey" json:"id"`
	GameTypeID  string    `gorm:"uniqueIndex:idx_stats_game_type_agent;index;not null" json:"game_type_id"`
	AgentID     string    `gorm:"uniqueIndex:idx_stats_game_type_agent;not null" json:"agent_id"`
	Rank        int       `gorm:"not null" json:"rank"`
	UpdatedTime time.Time `gorm:"not null" json:"updated_time"`
}

// RankedAgent is the stats read projection joined with agent metadata.
type RankedAgent struct {
	GameTypeID  string    `json:"game_type_id"`
	AgentID     string    `json:"agent_id"`
	AgentName   string    `json:"agent_name"`
	Rank        int       `json:"rank"`
	PlayedGames int       `json:"played_games"`
	WonGames    int       `json:"won_games"`
	UpdatedTime time.Time `json:"updated_time"`
}
