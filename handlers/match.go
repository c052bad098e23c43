package handlers

import (
	"volley-predict-system/middleware"
	"volley-predict-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupMatchRoutes(app *fiber.App, matchService *services.MatchService) {
	// 🔐 Authenticated routes
	secured := app.Group("/", middleware.UserContextMiddleware())

	secured.Get("/groups/:id/matches", matchService.ListGroupMatches)
	secured.Get("/matches/:match_id", matchService.GetMatch)

	// Match administration (Admin only)
	admin := secured.Group("/", middleware.RequireRole("admin"))
	admin.Post("/groups/:id/matches", matchService.CreateMatch)
	admin.Post("/matches/:match_id/result", matchService.EnterResult)
	admin.Post("/matches/:match_id/rescore", matchService.RescoreMatch)
	admin.Delete("/matches/:match_id", matchService.DeleteMatch)
}
