package services

import (
	"errors"

	"agent-arena/models"
	"agent-arena/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AgentService struct {
	DB *gorm.DB
}

func NewAgentService(db *gorm.DB) *AgentService {
	return &AgentService{DB: db}
}

// NewAgentInput carries the client-settable fields of an agent. Status is
// engine-managed and deliberately absent.
type NewAgentInput struct {
	Name        string             `json:"name"`
	GameTypeID  string             `json:"game_type_id"`
	Version     string             `json:"version"`
	Description string             `json:"description"`
	Policy      models.AgentPolicy `json:"policy"`
}

// RegisterAgent creates an agent for owner. Duplicate (owner, name) is a
// Conflict; an unknown game type is NotFound.
func (s *AgentService) RegisterAgent(ownerID string, in NewAgentInput) (*models.Agent, error) {
	if in.Name == "" {
		return nil, models.NewEngineError(models.ErrConflict, "agent name is required")
	}
	if in.Policy == "" {
		in.Policy = models.PolicyIdle
	}
	if !models.ValidPolicy(in.Policy) {
		return nil, models.Ineligiblef("unknown agent policy %q", in.Policy)
	}

	var gt models.GameType
	if err := s.DB.First(&gt, "id = ?", in.GameTypeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NotFoundf("game type %s not found", in.GameTypeID)
		}
		return nil, err
	}

	var existing models.Agent
	err := s.DB.Where("owner_id = ? AND name = ? AND status != ?", ownerID, in.Name, models.AgentDecommissioned).
		First(&existing).Error
	if err == nil {
		return nil, models.Conflictf("agent %q already exists for this owner", in.Name)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	agent := models.Agent{
		ID:          uuid.NewString(),
		OwnerID:     ownerID,
		Name:        in.Name,
		Slug:        utils.Slugify(in.Name),
		GameTypeID:  in.GameTypeID,
		Version:     in.Version,
		Description: in.Description,
		Status:      models.AgentIdle,
		Policy:      in.Policy,
	}
	if err := s.DB.Create(&agent).Error; err != nil {
		return nil, err
	}
	return &agent, nil
}

// UpdateAgent replaces the mutable fields. Mutation while the agent occupies
// a slot in a non-terminal match is forbidden.
func (s *AgentService) UpdateAgent(ownerID, agentID string, in NewAgentInput) (*models.Agent, error) {
	agent, err := s.getOwnedAgent(ownerID, agentID)
	if err != nil {
		return nil, err
	}

	committed, err := s.agentCommitted(s.DB, agentID)
	if err != nil {
		return nil, err
	}
	if committed {
		return nil, models.Ineligiblef("agent %s is committed to an active match and cannot be modified", agentID)
	}

	if in.Policy != "" && !models.ValidPolicy(in.Policy) {
		return nil, models.Ineligiblef("unknown agent policy %q", in.Policy)
	}
	if in.GameTypeID != "" && in.GameTypeID != agent.GameTypeID {
		var gt models.GameType
		if err := s.DB.First(&gt, "id = ?", in.GameTypeID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, models.NotFoundf("game type %s not found", in.GameTypeID)
			}
			return nil, err
		}
		agent.GameTypeID = in.GameTypeID
	}
	if in.Name != "" && in.Name != agent.Name {
		var dup models.Agent
		err := s.DB.Where("owner_id = ? AND name = ? AND id != ? AND status != ?",
			ownerID, in.Name, agentID, models.AgentDecommissioned).First(&dup).Error
		if err == nil {
			return nil, models.Conflictf("agent %q already exists for this owner", in.Name)
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		agent.Name = in.Name
		agent.Slug = utils.Slugify(in.Name)
	}
	if in.Version != "" {
		agent.Version = in.Version
	}
	if in.Description != "" {
		agent.Description = in.Description
	}
	if in.Policy != "" {
		agent.Policy = in.Policy
	}

	if err := s.DB.Save(agent).Error; err != nil {
		return nil, err
	}
	return agent, nil
}

// DeleteAgent soft-deletes: the row flips to Decommissioned so historical
// stats and turn logs keep resolving. Rejected while the agent still holds a
// slot in a Pending or Running match — leave first.
func (s *AgentService) DeleteAgent(ownerID, agentID string) error {
	agent, err := s.getOwnedAgent(ownerID, agentID)
	if err != nil {
		return err
	}

	committed, err := s.agentCommitted(s.DB, agentID)
	if err != nil {
		return err
	}
	if committed {
		return models.Ineligiblef("agent %s still occupies a match slot, leave the match first", agentID)
	}

	return s.DB.Model(agent).Update("status", models.AgentDecommissioned).Error
}

// SetReady marks an Idle agent as eligible to join matches. Running agents
// are refused; Ready is idempotent.
func (s *AgentService) SetReady(ownerID, agentID string) (*models.Agent, error) {
	agent, err := s.getOwnedAgent(ownerID, agentID)
	if err != nil {
		return nil, err
	}
	switch agent.Status {
	case models.AgentReady:
		return agent, nil
	case models.AgentIdle:
		if err := s.DB.Model(agent).Update("status", models.AgentReady).Error; err != nil {
			return nil, err
		}
		agent.Status = models.AgentReady
		return agent, nil
	default:
		return nil, models.InvalidStatef("agent %s is %s and cannot be marked ready", agentID, agent.Status)
	}
}

// GetAgent resolves a live agent by id.
func (s *AgentService) GetAgent(agentID string) (*models.Agent, error) {
	var agent models.Agent
	err := s.DB.Where("id = ? AND status != ?", agentID, models.AgentDecommissioned).First(&agent).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NotFoundf("agent %s not found", agentID)
		}
		return nil, err
	}
	return &agent, nil
}

// ListAgentsByOwner lists a user's live agents.
func (s *AgentService) ListAgentsByOwner(ownerID string) ([]models.Agent, error) {
	var agents []models.Agent
	err := s.DB.Where("owner_id = ? AND status != ?", ownerID, models.AgentDecommissioned).
		Order("created_at asc").Find(&agents).Error
	if err != nil {
		return nil, err
	}
	return agents, nil
}

func (s *AgentService) getOwnedAgent(ownerID, agentID string) (*models.Agent, error) {
	var agent models.Agent
	err := s.DB.Where("id = ? AND owner_id = ? AND status != ?", agentID, ownerID, models.AgentDecommissioned).
		First(&agent).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NotFoundf("agent %s not found", agentID)
		}
		return nil, err
	}
	return &agent, nil
}

// agentCommitted reports whether the agent holds a slot in any non-terminal
// match, read from the commitment table the match service maintains.
func (s *AgentService) agentCommitted(tx *gorm.DB, agentID string) (bool, error) {
	var count int64
	err := tx.Model(&models.AgentCommitment{}).
		Where("agent_id = ?", agentID).Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// --- Fiber endpoints ---

func (s *AgentService) CreateAgent(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	var in NewAgentInput
	if err := c.BodyParser(&in); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON", "details": err.Error()})
	}
	if in.Name == "" || in.GameTypeID == "" {
		return c.Status(400).JSON(fiber.Map{"error": "name and game_type_id are required"})
	}

	agent, err := s.RegisterAgent(userID, in)
	if err != nil {
		return models.RenderError(c, err)
	}
	return c.Status(201).JSON(agent)
}

func (s *AgentService) GetMyAgents(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	agents, err := s.ListAgentsByOwner(userID)
	if err != nil {
		return models.RenderError(c, err)
	}
	return c.JSON(agents)
}

func (s *AgentService) GetAgentByID(c *fiber.Ctx) error {
	agent, err := s.GetAgent(c.Params("id"))
	if err != nil {
		return models.RenderError(c, err)
	}
	return c.JSON(agent)
}

func (s *AgentService) UpdateAgentEndpoint(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	var in NewAgentInput
	if err := c.BodyParser(&in); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON", "details": err.Error()})
	}

	agent, err := s.UpdateAgent(userID, c.Params("id"), in)
	if err != nil {
		return models.RenderError(c, err)
	}
	return c.JSON(agent)
}

func (s *AgentService) DeleteAgentEndpoint(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	if err := s.DeleteAgent(userID, c.Params("id")); err != nil {
		return models.RenderError(c, err)
	}
	return c.JSON(fiber.Map{"status": "decommissioned"})
}

func (s *AgentService) SetReadyEndpoint(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	agent, err := s.SetReady(userID, c.Params("id"))
	if err != nil {
		return models.RenderError(c, err)
	}
	return c.JSON(agent)
}
