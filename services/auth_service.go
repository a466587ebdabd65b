package services

import (
	"errors"
	"time"

	"agent-arena/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthService struct {
	DB        *gorm.DB
	JWTSecret string
	TokenTTL  time.Duration
}

func NewAuthService(db *gorm.DB, jwtSecret string, tokenTTL time.Duration) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &AuthService{DB: db, JWTSecret: jwtSecret, TokenTTL: tokenTTL}
}

// RegisterUser creates a user with a bcrypt password hash. Duplicate
// usernames are a Conflict.
func (s *AuthService) RegisterUser(username, password string) (*models.User, error) {
	var existing models.User
	if err := s.DB.Where("username = ?", username).First(&existing).Error; err == nil {
		return nil, models.Conflictf("username %q is already registered", username)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := models.User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: string(hash),
	}
	if err := s.DB.Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// Login verifies credentials and mints a bearer token. Wrong username and
// wrong password are indistinguishable to the caller.
func (s *AuthService) Login(username, password string) (string, *models.User, error) {
	var user models.User
	if err := s.DB.Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, models.AuthFailedf("invalid username or password")
		}
		return "", nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, models.AuthFailedf("invalid username or password")
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": user.ID,
		"iat": now.Unix(),
		"exp": now.Add(s.TokenTTL).Unix(),
	})
	signed, err := token.SignedString([]byte(s.JWTSecret))
	if err != nil {
		return "", nil, err
	}
	return signed, &user, nil
}

// Me returns the profile behind a user id.
func (s *AuthService) Me(userID string) (*models.User, error) {
	var user models.User
	if err := s.DB.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NotFoundf("user %s not found", userID)
		}
		return nil, err
	}
	return &user, nil
}

// --- Fiber endpoints ---

func (s *AuthService) Register(c *fiber.Ctx) error {
	type Req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	var req Req
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON", "details": err.Error()})
	}
	if req.Username == "" || req.Password == "" {
		return c.Status(400).JSON(fiber.Map{"error": "username and password are required"})
	}

	user, err := s.RegisterUser(req.Username, req.Password)
	if err != nil {
		return models.RenderError(c, err)
	}
	return c.Status(201).JSON(user)
}

func (s *AuthService) LoginEndpoint(c *fiber.Ctx) error {
	type Req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	var req Req
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON", "details": err.Error()})
	}

	token, user, err := s.Login(req.Username, req.Password)
	if err != nil {
		return models.RenderError(c, err)
	}
	return c.JSON(fiber.Map{"token": token, "user": user})
}

func (s *AuthService) MeEndpoint(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	user, err := s.Me(userID)
	if err != nil {
		return models.RenderError(c, err)
	}
	return c.JSON(user)
}
