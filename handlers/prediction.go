package handlers

import (
	"volley-predict-system/middleware"
	"volley-predict-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupPredictionRoutes(app *fiber.App, predictionService *services.PredictionService) {
	// 🔐 Authenticated routes
	secured := app.Group("/", middleware.UserContextMiddleware())

	secured.Put("/groups/:id/matches/:match_id/prediction", predictionService.SubmitPrediction)
	secured.Get("/matches/:match_id/prediction", predictionService.GetMyPrediction)
	secured.Delete("/matches/:match_id/prediction", predictionService.DeletePrediction)

	// Everyone's predictions become visible only once the match locks
	secured.Get("/groups/:id/matches/:match_id/predictions", predictionService.ListMatchPredictions)
}
