package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func RegisterRoutes(app *fiber.App, handler *Handler) {
	app.Get("/healthz", handler.Health)
	if handler.gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(handler.gatherer, promhttp.HandlerOpts{})))
	}
	registerAPIRoutes(app, handler)
}

func registerAPIRoutes(app *fiber.App, handler *Handler) {
	api := app.Group("/api")

	auth := api.Group("/auth")
	auth.Post("/register", handler.Register)
	auth.Post("/login", handler.Login)
	auth.Post("/logout", handler.AuthRequired, handler.Logout)

	goals := api.Group("/goals", handler.AuthRequired)
	goals.Get("", handler.ListGoals)
	goals.Post("", handler.CreateGoal)
	goals.Put("/:id", handler.UpdateGoal)
	goals.Post("/:id/toggle", handler.ToggleGoal)
	goals.Delete("/:id", handler.DeleteGoal)

	notes := api.Group("/notes", handler.AuthRequired)
	notes.Get("", handler.ListNotes)
	notes.Post("", handler.CreateNote)
	notes.Put("/:id", handler.UpdateNote)
	notes.Delete("/:id", handler.DeleteNote)

	api.Get("/calendar", handler.AuthRequired, handler.GetCalendar)

	settings := api.Group("/settings", handler.AuthRequired)
	settings.Get("/profile", handler.GetProfile)
	settings.Put("/profile", handler.UpdateProfile)
	settings.Post("/change-password", handler.ChangePassword)

	// delete-direct authenticates by signature, not by session.
	api.Get("/user/delete-direct", handler.DeleteAccountDirect)
	api.Delete("/user", handler.AuthRequired, handler.DeleteAccount)

	api.Post("/admin/notifications/run", handler.OperatorRequired, handler.RunNotifications)
}
