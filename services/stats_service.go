package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"agent-arena/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// StatsService is the only writer of the ranking table. It reacts to match
// completion events and never to intermediate turns, and the whole table can
// be rebuilt from the agents' counters at any time.
type StatsService struct {
	DB    *gorm.DB
	Redis *redis.Client // optional leaderboard mirror; nil disables caching
}

func NewStatsService(db *gorm.DB, rdb *redis.Client) *StatsService {
	return &StatsService{DB: db, Redis: rdb}
}

// ApplyMatchResult bumps played_games for every participant and won_games
// for the winner. It runs inside the caller's completion transaction: a
// Completed match row and its participants' counters commit together or not
// at all. Rank recompute and the Redis mirror stay outside, they are derived
// data the hourly rebuild can repair.
func (s *StatsService) ApplyMatchResult(tx *gorm.DB, participantIDs []string, winnerID *string) error {
	if len(participantIDs) == 0 {
		return nil
	}
	if err := tx.Model(&models.Agent{}).Where("id IN ?", participantIDs).
		Update("played_games", gorm.Expr("played_games + 1")).Error; err != nil {
		return err
	}
	if winnerID != nil {
		if err := tx.Model(&models.Agent{}).Where("id = ?", *winnerID).
			Update("won_games", gorm.Expr("won_games + 1")).Error; err != nil {
			return err
		}
	}
	return nil
}

// rankable is the slice the ordering runs over.
type rankable struct {
	AgentID     string
	PlayedGames int
	WonGames    int
}

// RecomputeGameType rewrites the ranking of one game type: win rate
// descending, then total wins, then agent id for determinism. Agents without
// a played game and decommissioned agents stay unranked.
func (s *StatsService) RecomputeGameType(gameTypeID string) error {
	var agents []rankable
	err := s.DB.Model(&models.Agent{}).
		Select("id AS agent_id, played_games, won_games").
		Where("game_type_id = ? AND status != ? AND played_games > 0",
			gameTypeID, models.AgentDecommissioned).
		Scan(&agents).Error
	if err != nil {
		return err
	}

	sort.Slice(agents, func(i, j int) bool {
		wrI := float64(agents[i].WonGames) / float64(agents[i].PlayedGames)
		wrJ := float64(agents[j].WonGames) / float64(agents[j].PlayedGames)
		if wrI != wrJ {
			return wrI > wrJ
		}
		if agents[i].WonGames != agents[j].WonGames {
			return agents[i].WonGames > agents[j].WonGames
		}
		return agents[i].AgentID < agents[j].AgentID
	})

	now := time.Now()
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		for i, agent := range agents {
			rank := i + 1
			var entry models.StatsEntry
			err := tx.Where("game_type_id = ? AND agent_id = ?", gameTypeID, agent.AgentID).
				First(&entry).Error
			switch {
			case errors.Is(err, gorm.ErrRecordNotFound):
				entry = models.StatsEntry{
					ID:          uuid.NewString(),
					GameTypeID:  gameTypeID,
					AgentID:     agent.AgentID,
					Rank:        rank,
					UpdatedTime: now,
				}
				if err := tx.Create(&entry).Error; err != nil {
					return err
				}
			case err != nil:
				return err
			default:
				if err := tx.Model(&entry).
					Updates(map[string]interface{}{"rank": rank, "updated_time": now}).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.mirrorToRedis(gameTypeID, agents)
	return nil
}

// mirrorToRedis keeps a win-rate sorted set per game type for cheap
// leaderboard reads. Postgres stays the source of truth; cache failures are
// logged and ignored.
func (s *StatsService) mirrorToRedis(gameTypeID string, agents []rankable) {
	if s.Redis == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	key := fmt.Sprintf("ranks:%s", gameTypeID)
	pipe := s.Redis.TxPipeline()
	pipe.Del(ctx, key)
	for _, agent := range agents {
		pipe.ZAdd(ctx, key, redis.Z{
			Score:  float64(agent.WonGames) / float64(agent.PlayedGames),
			Member: agent.AgentID,
		})
	}
	if _, err := pipe.Exec(ctx); err != nil {
		log.Printf("[STATS] failed to mirror ranks for %s to redis: %v", gameTypeID, err)
	}
}

// RebuildAll recomputes every game type that has ranked agents. Safe to run
// at any time — the table is fully derived.
func (s *StatsService) RebuildAll() error {
	var gameTypeIDs []string
	err := s.DB.Model(&models.Agent{}).
		Where("status != ? AND played_games > 0", models.AgentDecommissioned).
		Distinct().Pluck("game_type_id", &gameTypeIDs).Error
	if err != nil {
		return err
	}
	for _, id := range gameTypeIDs {
		if err := s.RecomputeGameType(id); err != nil {
			return err
		}
	}
	return nil
}

// ListRanked returns the game type's leaderboard joined with agent metadata.
func (s *StatsService) ListRanked(gameTypeID string) ([]models.RankedAgent, error) {
	var ranked []models.RankedAgent
	err := s.DB.Table("stats_entries").
		Select(`stats_entries.game_type_id AS game_type_id,
			stats_entries.agent_id AS agent_id, agents.name AS agent_name,
			stats_entries.rank AS rank, agents.played_games AS played_games,
			agents.won_games AS won_games, stats_entries.updated_time AS updated_time`).
		Joins("JOIN agents ON agents.id = stats_entries.agent_id").
		Where("stats_entries.game_type_id = ? AND agents.status != ?",
			gameTypeID, models.AgentDecommissioned).
		Order("stats_entries.rank asc").
		Scan(&ranked).Error
	if err != nil {
		return nil, err
	}
	return ranked, nil
}

// --- Fiber endpoints ---

func (s *StatsService) GetGameTypeStats(c *fiber.Ctx) error {
	ranked, err := s.ListRanked(c.Params("game_type_id"))
	if err != nil {
		return models.RenderError(c, err)
	}
	return c.JSON(ranked)
}
