package handlers

import (
	"agent-arena/middleware"
	"agent-arena/services"

	"github.com/gofiber/fiber/v2"
)

func SetupAuthRoutes(app *fiber.App, authService *services.AuthService, jwtSecret string) {
	// 🔓 Public
	app.Post("/auth/register", authService.Register)
	app.Post("/auth/login", authService.LoginEndpoint)

	// 🔐 Authenticated
	secured := app.Group("/", middleware.UserContextMiddleware(jwtSecret))
	secured.Get("/auth/me", authService.MeEndpoint)
}
