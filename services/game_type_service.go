package services

import (
	"errors"
	"log"

	"agent-arena/models"
	"agent-arena/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type GameTypeService struct {
	DB *gorm.DB
}

func NewGameTypeService(db *gorm.DB) *GameTypeService {
	return &GameTypeService{DB: db}
}

// defaultCatalog mirrors the rlcard-hosted environments the platform plays.
// Slot bounds are the environments' fixed seat counts.
var defaultCatalog = []models.GameType{
	{Name: "leduc-holdem", Sponsor: "rlcard", Description: "Two-player simplified poker with a 6-card deck", MinSlots: 2, MaxSlots: 2},
	{Name: "limit-holdem", Sponsor: "rlcard", Description: "Limit Texas Hold'em", MinSlots: 2, MaxSlots: 2},
	{Name: "no-limit-holdem", Sponsor: "rlcard", Description: "No-limit Texas Hold'em", MinSlots: 2, MaxSlots: 2},
	{Name: "doudizhu", Sponsor: "rlcard", Description: "Three-player climbing card game", MinSlots: 3, MaxSlots: 3},
	{Name: "uno", Sponsor: "rlcard", Description: "Shedding card game", MinSlots: 2, MaxSlots: 4},
	{Name: "gin-rummy", Sponsor: "rlcard", Description: "Two-player draw-and-discard game", MinSlots: 2, MaxSlots: 2},
	{Name: "mahjong", Sponsor: "rlcard", Description: "Four-player tile game", MinSlots: 4, MaxSlots: 4},
}

// SeedDefaults inserts any catalog entries that are not in the database yet.
// Existing rows are left untouched: game types are immutable once referenced.
func (s *GameTypeService) SeedDefaults() error {
	for _, gt := range defaultCatalog {
		var existing models.GameType
		err := s.DB.Where("name = ?", gt.Name).First(&existing).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		gt.ID = uuid.NewString()
		gt.DisplayName = utils.DisplayName(gt.Name)
		if err := s.DB.Create(&gt).Error; err != nil {
			return err
		}
		log.Printf("[CATALOG] seeded game type %s (%d-%d slots)", gt.Name, gt.MinSlots, gt.MaxSlots)
	}
	return nil
}

// GetGameType resolves a game type by id.
func (s *GameTypeService) GetGameType(id string) (*models.GameType, error) {
	var gt models.GameType
	if err := s.DB.First(&gt, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NotFoundf("game type %s not found", id)
		}
		return nil, err
	}
	return &gt, nil
}

// ListGameTypes returns the whole catalog.
func (s *GameTypeService) ListGameTypes() ([]models.GameType, error) {
	var types []models.GameType
	if err := s.DB.Order("name asc").Find(&types).Error; err != nil {
		return nil, err
	}
	return types, nil
}

// --- Fiber endpoints ---

func (s *GameTypeService) GetAllGameTypes(c *fiber.Ctx) error {
	types, err := s.ListGameTypes()
	if err != nil {
		return models.RenderError(c, err)
	}
	return c.JSON(types)
}

func (s *GameTypeService) GetGameTypeByID(c *fiber.Ctx) error {
	gt, err := s.GetGameType(c.Params("id"))
	if err != nil {
		return models.RenderError(c, err)
	}
	return c.JSON(gt)
}
