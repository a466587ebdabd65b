package services

import (
	"errors"
	"log"
	"time"

	"agent-arena/models"
	"agent-arena/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// MatchService owns match creation, slot capacity, password gating and the
// Pending -> Running -> Completed/Cancelled lifecycle. Every mutation on one
// match runs inside that match's critical section (see locks.go) plus a DB
// transaction, so capacity checks and agent exclusivity cannot race.
type MatchService struct {
	DB    *gorm.DB
	Stats *StatsService
	locks *matchLocks

	// ArchiveQueue receives completed match ids for turn-log archival.
	// nil when no archive store is configured.
	ArchiveQueue chan<- string
}

func NewMatchService(db *gorm.DB, stats *StatsService, lockWait time.Duration) *MatchService {
	return &MatchService{
		DB:    db,
		Stats: stats,
		locks: newMatchLocks(lockWait),
	}
}

// NewMatchInput carries the create payload. MinSlots/MaxSlots of 0 mean
// "use the game type's bounds"; non-zero overrides must stay within them.
type NewMatchInput struct {
	Name       string   `json:"name"`
	GameTypeID string   `json:"game_type_id"`
	TotalGames int      `json:"total_games"`
	AgentIDs   []string `json:"agent_ids"`
	Password   string   `json:"password,omitempty"`
	MinSlots   int      `json:"min_slots,omitempty"`
	MaxSlots   int      `json:"max_slots,omitempty"`
}

// Create opens a match in Pending and admits the initial agents atomically.
// Partial admission is not allowed: one ineligible initial agent fails the
// whole create, so no surprising half-filled rooms appear.
func (s *MatchService) Create(creatorID string, in NewMatchInput) (*models.Match, error) {
	if in.Name == "" {
		return nil, models.Conflictf("match name is required")
	}
	if in.TotalGames < 1 {
		return nil, models.InvalidStatef("total_games must be at least 1")
	}

	var gt models.GameType
	if err := s.DB.First(&gt, "id = ?", in.GameTypeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NotFoundf("game type %s not found", in.GameTypeID)
		}
		return nil, err
	}

	minSlots, maxSlots := gt.MinSlots, gt.MaxSlots
	if in.MinSlots != 0 {
		minSlots = in.MinSlots
	}
	if in.MaxSlots != 0 {
		maxSlots = in.MaxSlots
	}
	if minSlots < gt.MinSlots || maxSlots > gt.MaxSlots || minSlots > maxSlots {
		return nil, models.InvalidStatef("slot bounds %d-%d outside game type bounds %d-%d",
			minSlots, maxSlots, gt.MinSlots, gt.MaxSlots)
	}

	var existing models.Match
	if err := s.DB.Where("name = ?", in.Name).First(&existing).Error; err == nil {
		return nil, models.Conflictf("match name %q is taken", in.Name)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	var passwordHash *string
	if in.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		h := string(hash)
		passwordHash = &h
	}

	match := models.Match{
		ID:           uuid.NewString(),
		Name:         in.Name,
		Slug:         utils.Slugify(in.Name),
		CreatorID:    creatorID,
		GameTypeID:   in.GameTypeID,
		TotalGames:   in.TotalGames,
		PasswordHash: passwordHash,
		MinSlots:     minSlots,
		MaxSlots:     maxSlots,
		Status:       models.MatchPending,
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&match).Error; err != nil {
			return err
		}
		return s.admitAgents(tx, &match, in.AgentIDs)
	})
	if err != nil {
		return nil, err
	}

	log.Printf("[MATCH] created %s (%s) with %d initial agents", match.Name, match.ID, len(in.AgentIDs))
	return &match, nil
}

// Join admits the requested agents all-or-nothing and returns the updated
// slot count. Agent statuses are NOT flipped here — agents stay available
// until the match actually starts. A room that fills to max_slots starts
// automatically.
func (s *MatchService) Join(matchID string, agentIDs []string, password string) (int64, error) {
	if len(agentIDs) == 0 {
		return 0, models.Ineligiblef("at least one agent id is required")
	}
	if err := s.locks.Acquire(matchID); err != nil {
		return 0, err
	}

	var slots int64
	var full bool
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		match, err := s.getForUpdate(tx, matchID)
		if err != nil {
			return err
		}
		if match.Status != models.MatchPending {
			return models.InvalidStatef("match %s is %s, joining is only possible while Pending", matchID, match.Status)
		}
		if match.PasswordHash != nil {
			if err := bcrypt.CompareHashAndPassword([]byte(*match.PasswordHash), []byte(password)); err != nil {
				return models.AuthFailedf("wrong match password")
			}
		}
		if err := s.admitAgents(tx, match, agentIDs); err != nil {
			return err
		}
		slots, err = s.currentSlots(tx, matchID)
		if err != nil {
			return err
		}
		full = slots >= int64(match.MaxSlots)
		return nil
	})
	s.locks.Release(matchID)
	if err != nil {
		return 0, err
	}

	if full {
		if err := s.Start(matchID); err != nil {
			// The room is intact; the creator can still start explicitly.
			log.Printf("[MATCH] auto-start of full match %s failed: %v", matchID, err)
		}
	}
	return slots, nil
}

// admitAgents validates every candidate and creates one Participation each.
// Runs inside the caller's transaction so the whole batch commits or nothing
// does.
func (s *MatchService) admitAgents(tx *gorm.DB, match *models.Match, agentIDs []string) error {
	if len(agentIDs) == 0 {
		return nil
	}

	current, err := s.currentSlots(tx, match.ID)
	if err != nil {
		return err
	}
	if current+int64(len(agentIDs)) > int64(match.MaxSlots) {
		return models.Capacityf("admitting %d agents would exceed %d slots (%d occupied)",
			len(agentIDs), match.MaxSlots, current)
	}

	for _, agentID := range agentIDs {
		var agent models.Agent
		err := tx.Where("id = ? AND status != ?", agentID, models.AgentDecommissioned).First(&agent).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NotFoundf("agent %s not found", agentID)
			}
			return err
		}
		if agent.GameTypeID != match.GameTypeID {
			return models.Ineligiblef("agent %s plays a different game type than match %s", agentID, match.ID)
		}

		// One non-terminal commitment per agent, across all matches. This
		// also rejects a duplicate join into the same match. The friendly
		// check comes first; the unique index on agent_commitments.agent_id
		// is the actual guard when two admissions race on different matches.
		var existing models.AgentCommitment
		err = tx.Where("agent_id = ?", agentID).First(&existing).Error
		if err == nil {
			return models.Ineligiblef("agent %s is already committed to an active match", agentID)
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		commitment := models.AgentCommitment{
			ID:      uuid.NewString(),
			AgentID: agentID,
			MatchID: match.ID,
		}
		if err := tx.Create(&commitment).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return models.Ineligiblef("agent %s is already committed to an active match", agentID)
			}
			return err
		}

		p := models.Participation{
			ID:      uuid.NewString(),
			MatchID: match.ID,
			AgentID: agentID,
		}
		if err := tx.Create(&p).Error; err != nil {
			return err
		}
	}
	return nil
}

// Start moves Pending -> Running once the room holds at least min_slots, and
// flips every participating agent to Running in the same transaction.
func (s *MatchService) Start(matchID string) error {
	if err := s.locks.Acquire(matchID); err != nil {
		return err
	}
	defer s.locks.Release(matchID)

	return s.DB.Transaction(func(tx *gorm.DB) error {
		match, err := s.getForUpdate(tx, matchID)
		if err != nil {
			return err
		}
		if !match.Status.CanTransition(models.MatchRunning) {
			return models.InvalidStatef("match %s is %s and cannot start", matchID, match.Status)
		}
		slots, err := s.currentSlots(tx, matchID)
		if err != nil {
			return err
		}
		if slots < int64(match.MinSlots) {
			return models.InvalidStatef("match %s has %d of %d required slots filled", matchID, slots, match.MinSlots)
		}

		agentIDs, err := s.participantIDs(tx, matchID)
		if err != nil {
			return err
		}
		if err := tx.Model(&models.Agent{}).Where("id IN ?", agentIDs).
			Update("status", models.AgentRunning).Error; err != nil {
			return err
		}
		now := time.Now()
		return tx.Model(&models.Match{}).Where("id = ?", matchID).
			Updates(map[string]interface{}{"status": models.MatchRunning, "start_time": now}).Error
	})
}

// Leave removes one agent's Participation. Only legal while the match is
// still Pending — abandoning a Running match would corrupt scoring.
func (s *MatchService) Leave(matchID, agentID string) error {
	if err := s.locks.Acquire(matchID); err != nil {
		return err
	}
	defer s.locks.Release(matchID)

	return s.DB.Transaction(func(tx *gorm.DB) error {
		match, err := s.getForUpdate(tx, matchID)
		if err != nil {
			return err
		}
		if match.Status != models.MatchPending {
			return models.InvalidStatef("cannot leave a %s match", match.Status)
		}
		res := tx.Where("match_id = ? AND agent_id = ?", matchID, agentID).
			Delete(&models.Participation{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return models.NotFoundf("agent %s holds no slot in match %s", agentID, matchID)
		}
		return tx.Where("match_id = ? AND agent_id = ?", matchID, agentID).
			Delete(&models.AgentCommitment{}).Error
	})
}

// Complete finishes a Running match. When winnerID is nil the winner is the
// agent with the highest cumulative turn score; a tie leaves the winner
// unset. Every participating agent goes back to Ready, then the completion
// event feeds the stats aggregator and the archive queue.
func (s *MatchService) Complete(matchID string, winnerID *string) error {
	if err := s.locks.Acquire(matchID); err != nil {
		return err
	}

	var gameTypeID string
	var participants []string
	var finalWinner *string

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		match, err := s.getForUpdate(tx, matchID)
		if err != nil {
			return err
		}
		if !match.Status.CanTransition(models.MatchCompleted) {
			return models.InvalidStatef("match %s is %s and cannot complete", matchID, match.Status)
		}
		gameTypeID = match.GameTypeID

		participants, err = s.participantIDs(tx, matchID)
		if err != nil {
			return err
		}

		if winnerID != nil {
			if !contains(participants, *winnerID) {
				return models.Ineligiblef("winner %s holds no slot in match %s", *winnerID, matchID)
			}
			finalWinner = winnerID
		} else {
			finalWinner, err = s.resolveWinner(tx, matchID, participants)
			if err != nil {
				return err
			}
		}

		if err := tx.Model(&models.Agent{}).Where("id IN ?", participants).
			Update("status", models.AgentReady).Error; err != nil {
			return err
		}
		if err := tx.Where("match_id = ?", matchID).
			Delete(&models.AgentCommitment{}).Error; err != nil {
			return err
		}

		// Played/won counters commit with the match itself, so a Completed
		// row can never exist without its participants' credit.
		if s.Stats != nil {
			if err := s.Stats.ApplyMatchResult(tx, participants, finalWinner); err != nil {
				return err
			}
		}

		now := time.Now()
		return tx.Model(&models.Match{}).Where("id = ?", matchID).
			Updates(map[string]interface{}{
				"status":    models.MatchCompleted,
				"winner_id": finalWinner,
				"end_time":  now,
			}).Error
	})
	s.locks.Release(matchID)
	if err != nil {
		return err
	}
	s.locks.forget(matchID)

	if s.Stats != nil {
		// The rank table and Redis mirror are derived data; recompute
		// failures are repaired by the hourly rebuild.
		if err := s.Stats.RecomputeGameType(gameTypeID); err != nil {
			log.Printf("[MATCH] rank recompute for %s failed: %v", matchID, err)
		}
	}
	if s.ArchiveQueue != nil {
		select {
		case s.ArchiveQueue <- matchID:
		default:
			// Queue is full; the scheduler sweep re-enqueues unarchived matches.
			log.Printf("[MATCH] archive queue full, deferring %s", matchID)
		}
	}
	return nil
}

// Cancel aborts a Pending or Running match. Participations stay as history,
// but the terminal status releases every agent's commitment and any Running
// agents return to Ready. No winner is recorded.
func (s *MatchService) Cancel(matchID string) error {
	if err := s.locks.Acquire(matchID); err != nil {
		return err
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		match, err := s.getForUpdate(tx, matchID)
		if err != nil {
			return err
		}
		if !match.Status.CanTransition(models.MatchCancelled) {
			return models.InvalidStatef("match %s is %s and cannot be cancelled", matchID, match.Status)
		}

		agentIDs, err := s.participantIDs(tx, matchID)
		if err != nil {
			return err
		}
		if len(agentIDs) > 0 {
			if err := tx.Model(&models.Agent{}).
				Where("id IN ? AND status = ?", agentIDs, models.AgentRunning).
				Update("status", models.AgentReady).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("match_id = ?", matchID).
			Delete(&models.AgentCommitment{}).Error; err != nil {
			return err
		}
		now := time.Now()
		return tx.Model(&models.Match{}).Where("id = ?", matchID).
			Updates(map[string]interface{}{"status": models.MatchCancelled, "end_time": now}).Error
	})
	s.locks.Release(matchID)
	if err != nil {
		return err
	}
	s.locks.forget(matchID)
	return nil
}

// resolveWinner sums score deltas across the match's turns. The highest
// cumulative score wins; a shared maximum means no winner.
func (s *MatchService) resolveWinner(tx *gorm.DB, matchID string, participants []string) (*string, error) {
	var turns []models.TurnLog
	if err := tx.Where("match_id = ?", matchID).Find(&turns).Error; err != nil {
		return nil, err
	}
	if len(turns) == 0 {
		return nil, nil
	}

	totals := make(map[string]int64, len(participants))
	for _, id := range participants {
		totals[id] = 0
	}
	for _, turn := range turns {
		deltas, err := turn.Deltas()
		if err != nil {
			return nil, err
		}
		for agentID, delta := range deltas {
			totals[agentID] += delta
		}
	}

	var best *string
	var bestScore int64
	tied := false
	for _, id := range participants {
		score := totals[id]
		switch {
		case best == nil || score > bestScore:
			idCopy := id
			best, bestScore, tied = &idCopy, score, false
		case score == bestScore:
			tied = true
		}
	}
	if tied {
		return nil, nil
	}
	return best, nil
}

// GetMatch resolves a match by id.
func (s *MatchService) GetMatch(matchID string) (*models.Match, error) {
	var match models.Match
	if err := s.DB.First(&match, "id = ?", matchID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NotFoundf("match %s not found", matchID)
		}
		return nil, err
	}
	return &match, nil
}

// CurrentSlots exposes the derived slot count.
func (s *MatchService) CurrentSlots(matchID string) (int64, error) {
	return s.currentSlots(s.DB, matchID)
}

// ListOpen returns Pending matches with derived slot counts and a password
// flag. Password hashes never leave the service.
func (s *MatchService) ListOpen() ([]models.OpenMatch, error) {
	var open []models.OpenMatch
	err := s.DB.Table("matches").
		Select(`matches.id AS id, matches.name AS name, matches.slug AS slug,
			matches.creator_id AS creator_id, users.username AS creator_name,
			matches.game_type_id AS game_type_id, game_types.name AS game_type_name,
			matches.total_games AS total_games,
			matches.password_hash IS NOT NULL AS with_password,
			matches.min_slots AS min_slots, matches.max_slots AS max_slots,
			(SELECT COUNT(*) FROM participations WHERE participations.match_id = matches.id) AS current_slots,
			matches.status AS status, matches.start_time AS start_time`).
		Joins("JOIN users ON users.id = matches.creator_id").
		Joins("JOIN game_types ON game_types.id = matches.game_type_id").
		Where("matches.status = ?", models.MatchPending).
		Order("matches.created_at desc").
		Scan(&open).Error
	if err != nil {
		return nil, err
	}
	return open, nil
}

// ListCreatedBy returns matches a user created.
func (s *MatchService) ListCreatedBy(userID string) ([]models.Match, error) {
	var matches []models.Match
	err := s.DB.Where("creator_id = ?", userID).Order("created_at desc").Find(&matches).Error
	if err != nil {
		return nil, err
	}
	return matches, nil
}

// ListJoinedBy returns matches where any of the user's agents holds or held
// a slot.
func (s *MatchService) ListJoinedBy(userID string) ([]models.Match, error) {
	var matches []models.Match
	err := s.DB.
		Joins("JOIN participations ON participations.match_id = matches.id").
		Joins("JOIN agents ON agents.id = participations.agent_id").
		Where("agents.owner_id = ?", userID).
		Group("matches.id").
		Order("matches.start_time desc").
		Find(&matches).Error
	if err != nil {
		return nil, err
	}
	return matches, nil
}

// Participants lists the agents occupying a match's slots.
func (s *MatchService) Participants(matchID string) ([]models.Agent, error) {
	if _, err := s.GetMatch(matchID); err != nil {
		return nil, err
	}
	var agents []models.Agent
	err := s.DB.
		Joins("JOIN participations ON participations.agent_id = agents.id").
		Where("participations.match_id = ?", matchID).
		Order("participations.created_at asc").
		Find(&agents).Error
	if err != nil {
		return nil, err
	}
	return agents, nil
}

func (s *MatchService) getForUpdate(tx *gorm.DB, matchID string) (*models.Match, error) {
	var match models.Match
	if err := tx.First(&match, "id = ?", matchID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NotFoundf("match %s not found", matchID)
		}
		return nil, err
	}
	return &match, nil
}

func (s *MatchService) currentSlots(tx *gorm.DB, matchID string) (int64, error) {
	var count int64
	err := tx.Model(&models.Participation{}).Where("match_id = ?", matchID).Count(&count).Error
	return count, err
}

func (s *MatchService) participantIDs(tx *gorm.DB, matchID string) ([]string, error) {
	var ids []string
	err := tx.Model(&models.Participation{}).Where("match_id = ?", matchID).
		Order("created_at asc").Pluck("agent_id", &ids).Error
	return ids, err
}

func contains(ids []string, id string) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}

// requireCreator guards the lifecycle endpoints: only the match creator may
// start, complete or cancel through the API.
func (s *MatchService) requireCreator(matchID, userID string) error {
	match, err := s.GetMatch(matchID)
	if err != nil {
		return err
	}
	if match.CreatorID != userID {
		return models.Ineligiblef("only the match creator may do this")
	}
	return nil
}

// --- Fiber endpoints ---

func (s *MatchService) CreateMatch(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	var in NewMatchInput
	if err := c.BodyParser(&in); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON", "details": err.Error()})
	}
	if in.Name == "" || in.GameTypeID == "" {
		return c.Status(400).JSON(fiber.Map{"error": "name and game_type_id are required"})
	}

	if err := s.requireOwnedAgents(userID, in.AgentIDs); err != nil {
		return models.RenderError(c, err)
	}
	match, err := s.Create(userID, in)
	if err != nil {
		return models.RenderError(c, err)
	}
	return c.Status(201).JSON(match)
}

func (s *MatchService) JoinMatch(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	type Req struct {
		AgentIDs []string `json:"agent_ids"`
		Password string   `json:"password,omitempty"`
	}
	var req Req
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON", "details": err.Error()})
	}

	if err := s.requireOwnedAgents(userID, req.AgentIDs); err != nil {
		return models.RenderError(c, err)
	}
	slots, err := s.Join(c.Params("id"), req.AgentIDs, req.Password)
	if err != nil {
		return models.RenderError(c, err)
	}
	return c.JSON(fiber.Map{"current_slots": slots})
}

func (s *MatchService) LeaveMatch(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	type Req struct {
		AgentID string `json:"agent_id"`
	}
	var req Req
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON", "details": err.Error()})
	}
	if req.AgentID == "" {
		return c.Status(400).JSON(fiber.Map{"error": "agent_id is required"})
	}

	if err := s.requireOwnedAgents(userID, []string{req.AgentID}); err != nil {
		return models.RenderError(c, err)
	}
	if err := s.Leave(c.Params("id"), req.AgentID); err != nil {
		return models.RenderError(c, err)
	}
	return c.JSON(fiber.Map{"status": "left"})
}

func (s *MatchService) StartMatch(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	matchID := c.Params("id")
	if err := s.requireCreator(matchID, userID); err != nil {
		return models.RenderError(c, err)
	}
	if err := s.Start(matchID); err != nil {
		return models.RenderError(c, err)
	}
	return c.JSON(fiber.Map{"status": string(models.MatchRunning)})
}

func (s *MatchService) CompleteMatch(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	matchID := c.Params("id")
	type Req struct {
		WinnerID *string `json:"winner_id,omitempty"`
	}
	var req Req
	if err := c.BodyParser(&req); err != nil && len(c.Body()) > 0 {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON", "details": err.Error()})
	}

	if err := s.requireCreator(matchID, userID); err != nil {
		return models.RenderError(c, err)
	}
	if err := s.Complete(matchID, req.WinnerID); err != nil {
		return models.RenderError(c, err)
	}
	match, err := s.GetMatch(matchID)
	if err != nil {
		return models.RenderError(c, err)
	}
	return c.JSON(match)
}

func (s *MatchService) CancelMatch(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	matchID := c.Params("id")
	if err := s.requireCreator(matchID, userID); err != nil {
		return models.RenderError(c, err)
	}
	if err := s.Cancel(matchID); err != nil {
		return models.RenderError(c, err)
	}
	return c.JSON(fiber.Map{"status": string(models.MatchCancelled)})
}

func (s *MatchService) GetMatchByID(c *fiber.Ctx) error {
	match, err := s.GetMatch(c.Params("id"))
	if err != nil {
		return models.RenderError(c, err)
	}
	return c.JSON(match)
}

func (s *MatchService) GetOpenMatches(c *fiber.Ctx) error {
	open, err := s.ListOpen()
	if err != nil {
		return models.RenderError(c, err)
	}
	return c.JSON(open)
}

func (s *MatchService) GetMyMatches(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	matches, err := s.ListCreatedBy(userID)
	if err != nil {
		return models.RenderError(c, err)
	}
	return c.JSON(matches)
}

func (s *MatchService) GetJoinedMatches(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	matches, err := s.ListJoinedBy(userID)
	if err != nil {
		return models.RenderError(c, err)
	}
	return c.JSON(matches)
}

func (s *MatchService) GetParticipants(c *fiber.Ctx) error {
	agents, err := s.Participants(c.Params("id"))
	if err != nil {
		return models.RenderError(c, err)
	}
	return c.JSON(agents)
}

// requireOwnedAgents rejects agent ids that do not belong to the caller.
func (s *MatchService) requireOwnedAgents(userID string, agentIDs []string) error {
	for _, agentID := range agentIDs {
		var agent models.Agent
		err := s.DB.Where("id = ? AND status != ?", agentID, models.AgentDecommissioned).First(&agent).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NotFoundf("agent %s not found", agentID)
			}
			return err
		}
		if agent.OwnerID != userID {
			return models.Ineligiblef("agent %s does not belong to you", agentID)
		}
	}
	return nil
}
