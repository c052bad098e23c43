package handlers

import (
	"volley-predict-system/middleware"
	"volley-predict-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupGroupRoutes(app *fiber.App, groupService *services.GroupService) {
	// 🔓 Public: resolving a join slug does not require auth
	app.Get("/groups/by-slug/:slug", groupService.GetGroupBySlug)

	// 🔐 Authenticated routes
	secured := app.Group("/", middleware.UserContextMiddleware())

	secured.Post("/groups", groupService.CreateGroup)
	secured.Get("/groups", groupService.ListMyGroups)
	secured.Get("/groups/:id", groupService.GetGroup)
	secured.Post("/groups/join/:slug", groupService.JoinGroup)
	secured.Get("/groups/:id/members", groupService.ListMembers)
	secured.Get("/groups/:id/standings", groupService.GetStandings)

	// Source configuration and on-demand sync (owner/admin)
	secured.Patch("/groups/:id/source", groupService.UpdateSource)
	secured.Post("/groups/:id/sync", groupService.SyncNow)
}
