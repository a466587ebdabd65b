package handlers

import (
	"agent-arena/services"

	"github.com/gofiber/fiber/v2"
)

func SetupStatsRoutes(app *fiber.App, statsService *services.StatsService) {
	// 🔓 Rankings are public
	app.Get("/stats/:game_type_id", statsService.GetGameTypeStats)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
}
