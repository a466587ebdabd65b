package services

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"agent-arena/models"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// testDB opens a per-test in-memory database. The shared-cache name keeps
// the schema alive across the pool, the single connection keeps SQLite from
// tripping over itself under the transaction-heavy services.
func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrap sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := db.AutoMigrate(
		&models.User{},
		&models.GameType{},
		&models.Agent{},
		&models.Match{},
		&models.Participation{},
		&models.AgentCommitment{},
		&models.TurnLog{},
		&models.StatsEntry{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// testArena wires the full service graph over one database, seeds the game
// type catalog and holds the ids the tests keep reaching for.
type testArena struct {
	DB      *gorm.DB
	Auth    *AuthService
	Types   *GameTypeService
	Agents  *AgentService
	Stats   *StatsService
	Matches *MatchService
	Turns   *TurnService
}

func newTestArena(t *testing.T) *testArena {
	t.Helper()
	db := testDB(t)
	types := NewGameTypeService(db)
	if err := types.SeedDefaults(); err != nil {
		t.Fatalf("seed catalog: %v", err)
	}
	stats := NewStatsService(db, nil)
	matches := NewMatchService(db, stats, 2*time.Second)
	return &testArena{
		DB:      db,
		Auth:    NewAuthService(db, "test-secret", time.Hour),
		Types:   types,
		Agents:  NewAgentService(db),
		Stats:   stats,
		Matches: matches,
		Turns:   NewTurnService(db, matches),
	}
}

// gameType looks a seeded catalog entry up by name.
func (a *testArena) gameType(t *testing.T, name string) *models.GameType {
	t.Helper()
	var gt models.GameType
	if err := a.DB.Where("name = ?", name).First(&gt).Error; err != nil {
		t.Fatalf("game type %s: %v", name, err)
	}
	return &gt
}

// user inserts a directory row so joins against users resolve.
func (a *testArena) user(t *testing.T, username string) *models.User {
	t.Helper()
	u := models.User{ID: uuid.NewString(), Username: username, PasswordHash: "x"}
	if err := a.DB.Create(&u).Error; err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return &u
}

// readyAgent registers an agent and marks it Ready so it can enter matches.
func (a *testArena) readyAgent(t *testing.T, ownerID, name, gameTypeID string) *models.Agent {
	t.Helper()
	agent, err := a.Agents.RegisterAgent(ownerID, NewAgentInput{
		Name:       name,
		GameTypeID: gameTypeID,
		Version:    "1.0.0",
	})
	if err != nil {
		t.Fatalf("register agent %s: %v", name, err)
	}
	agent, err = a.Agents.SetReady(ownerID, agent.ID)
	if err != nil {
		t.Fatalf("ready agent %s: %v", name, err)
	}
	return agent
}

// agentStatus re-reads one agent's status straight from the database.
func (a *testArena) agentStatus(t *testing.T, agentID string) models.AgentStatus {
	t.Helper()
	var agent models.Agent
	if err := a.DB.First(&agent, "id = ?", agentID).Error; err != nil {
		t.Fatalf("reload agent %s: %v", agentID, err)
	}
	return agent.Status
}

// wantKind fails unless err carries the expected engine error kind.
func wantKind(t *testing.T, err error, kind models.ErrorKind) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", kind)
	}
	if !models.IsKind(err, kind) {
		t.Fatalf("expected %s error, got %v", kind, err)
	}
}
