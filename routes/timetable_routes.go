package routes

import (
	"github.com/anjiri1684/timetable/handlers"
	"github.com/anjiri1684/timetable/middleware"
	"github.com/gofiber/fiber/v2"
)

// TimetableRoutes serves reads to everyone and writes to admin tokens
// signed with secret.
func TimetableRoutes(app *fiber.App, h *handlers.TimetableHandler, secret string) {
	api := app.Group("/api/v1")
	protected, admin := middleware.Protected(secret), middleware.AdminRequired()

	timetable := api.Group("/timetable")
	timetable.Get("", h.ListEntries)
	timetable.Get("/grid", h.Grid)
	timetable.Get("/export", h.ExportCSV)
	timetable.Post("/validate", h.ValidateEntry)
	timetable.Get("/:id", h.GetEntry)

	timetable.Post("", protected, admin, h.CreateEntry)
	timetable.Put("/:id", protected, admin, h.UpdateEntry)
	timetable.Delete("/:id", protected, admin, h.DeleteEntry)
}
