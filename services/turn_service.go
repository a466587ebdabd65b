package services

import (
	"encoding/json"
	"errors"

	"agent-arena/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TurnService is the only writer of turn logs. Appends are validated against
// the match lifecycle and a strict gapless turn order, so a lost or
// duplicated submission is caught at the door instead of corrupting scores.
type TurnService struct {
	DB      *gorm.DB
	Matches *MatchService
}

func NewTurnService(db *gorm.DB, matches *MatchService) *TurnService {
	return &TurnService{DB: db, Matches: matches}
}

// AppendTurn records turn i_turn of a running match. i_turn must be exactly
// one past the last recorded turn (starting at 0) and every score delta must
// reference a participant.
func (s *TurnService) AppendTurn(matchID string, iTurn int, payload string, scoreDeltas map[string]int64) (*models.TurnLog, error) {
	if err := s.Matches.locks.Acquire(matchID); err != nil {
		return nil, err
	}
	defer s.Matches.locks.Release(matchID)

	var turn models.TurnLog
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		match, err := s.Matches.getForUpdate(tx, matchID)
		if err != nil {
			return err
		}
		if match.Status != models.MatchRunning {
			return models.InvalidStatef("match %s is %s, turns are only recorded while Running", matchID, match.Status)
		}

		last := -1
		var lastTurn models.TurnLog
		err = tx.Where("match_id = ?", matchID).Order("i_turn desc").First(&lastTurn).Error
		if err == nil {
			last = lastTurn.ITurn
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if iTurn != last+1 {
			return models.InvalidOrderf("turn %d out of order, expected %d", iTurn, last+1)
		}

		participants, err := s.Matches.participantIDs(tx, matchID)
		if err != nil {
			return err
		}
		for agentID := range scoreDeltas {
			if !contains(participants, agentID) {
				return models.Ineligiblef("score delta references agent %s, which holds no slot in match %s", agentID, matchID)
			}
		}

		deltasJSON, err := json.Marshal(scoreDeltas)
		if err != nil {
			return err
		}
		turn = models.TurnLog{
			ID:          uuid.NewString(),
			MatchID:     matchID,
			ITurn:       iTurn,
			Log:         payload,
			ScoreDeltas: string(deltasJSON),
		}
		return tx.Create(&turn).Error
	})
	if err != nil {
		return nil, err
	}
	return &turn, nil
}

// ListTurns returns a match's turn log ordered by turn index.
func (s *TurnService) ListTurns(matchID string) ([]models.TurnLog, error) {
	if _, err := s.Matches.GetMatch(matchID); err != nil {
		return nil, err
	}
	var turns []models.TurnLog
	if err := s.DB.Where("match_id = ?", matchID).Order("i_turn asc").Find(&turns).Error; err != nil {
		return nil, err
	}
	return turns, nil
}

// GetTurn returns a single turn by index.
func (s *TurnService) GetTurn(matchID string, iTurn int) (*models.TurnLog, error) {
	var turn models.TurnLog
	err := s.DB.Where("match_id = ? AND i_turn = ?", matchID, iTurn).First(&turn).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NotFoundf("turn %d of match %s not found", iTurn, matchID)
		}
		return nil, err
	}
	return &turn, nil
}

// CumulativeScores sums every recorded delta per agent.
func (s *TurnService) CumulativeScores(matchID string) (map[string]int64, error) {
	turns, err := s.ListTurns(matchID)
	if err != nil {
		return nil, err
	}
	totals := map[string]int64{}
	for _, turn := range turns {
		deltas, err := turn.Deltas()
		if err != nil {
			return nil, err
		}
		for agentID, delta := range deltas {
			totals[agentID] += delta
		}
	}
	return totals, nil
}

// --- Fiber endpoints ---

func (s *TurnService) AppendTurnEndpoint(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	matchID := c.Params("id")
	type Req struct {
		ITurn       int              `json:"i_turn"`
		Log         json.RawMessage  `json:"log"`
		ScoreDeltas map[string]int64 `json:"score_deltas"`
	}
	var req Req
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON", "details": err.Error()})
	}

	if err := s.Matches.requireCreator(matchID, userID); err != nil {
		return models.RenderError(c, err)
	}
	turn, err := s.AppendTurn(matchID, req.ITurn, string(req.Log), req.ScoreDeltas)
	if err != nil {
		return models.RenderError(c, err)
	}
	return c.Status(201).JSON(turn)
}

func (s *TurnService) GetMatchTurns(c *fiber.Ctx) error {
	turns, err := s.ListTurns(c.Params("id"))
	if err != nil {
		return models.RenderError(c, err)
	}
	return c.JSON(turns)
}

func (s *TurnService) GetMatchTurnByIndex(c *fiber.Ctx) error {
	iTurn, err := c.ParamsInt("i")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "turn index must be an integer"})
	}
	turn, err := s.GetTurn(c.Params("id"), iTurn)
	if err != nil {
		return models.RenderError(c, err)
	}
	return c.JSON(turn)
}
