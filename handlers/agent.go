package handlers

import (
	"agent-arena/middleware"
	"agent-arena/services"

	"github.com/gofiber/fiber/v2"
)

func SetupAgentRoutes(app *fiber.App, agentService *services.AgentService, gameTypeService *services.GameTypeService, jwtSecret string) {
	// 🔓 Public catalog
	app.Get("/game-types", gameTypeService.GetAllGameTypes)
	app.Get("/game-types/:id", gameTypeService.GetGameTypeByID)

	// 🔐 Agent CRUD (owner only)
	secured := app.Group("/", middleware.UserContextMiddleware(jwtSecret))
	secured.Post("/agents", agentService.CreateAgent)
	secured.Get("/agents", agentService.GetMyAgents)
	secured.Get("/agents/:id", agentService.GetAgentByID)
	secured.Put("/agents/:id", agentService.UpdateAgentEndpoint)
	secured.Delete("/agents/:id", agentService.DeleteAgentEndpoint)
	secured.Post("/agents/:id/ready", agentService.SetReadyEndpoint)
}
