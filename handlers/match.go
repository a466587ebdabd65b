package handlers

import (
	"agent-arena/middleware"
	"agent-arena/services"

	"github.com/gofiber/fiber/v2"
)

func SetupMatchRoutes(app *fiber.App, matchService *services.MatchService, turnService *services.TurnService, jwtSecret string) {
	// 🔓 Public lobby view (Pending matches only, never password contents)
	app.Get("/matches/open", matchService.GetOpenMatches)

	// 🔐 Authenticated match operations
	secured := app.Group("/", middleware.UserContextMiddleware(jwtSecret))

	secured.Post("/matches", matchService.CreateMatch)
	secured.Get("/matches/mine", matchService.GetMyMatches)
	secured.Get("/matches/joined", matchService.GetJoinedMatches)
	secured.Get("/matches/:id", matchService.GetMatchByID)
	secured.Get("/matches/:id/participants", matchService.GetParticipants)

	// Lifecycle
	secured.Post("/matches/:id/join", matchService.JoinMatch)
	secured.Post("/matches/:id/leave", matchService.LeaveMatch)
	secured.Post("/matches/:id/start", matchService.StartMatch)
	secured.Post("/matches/:id/complete", matchService.CompleteMatch)
	secured.Post("/matches/:id/cancel", matchService.CancelMatch)

	// Turn log
	secured.Post("/matches/:id/turns", turnService.AppendTurnEndpoint)
	secured.Get("/matches/:id/turns", turnService.GetMatchTurns)
	secured.Get("/matches/:id/turns/:i", turnService.GetMatchTurnByIndex)
}
