package routes

import (
	"github.com/anjiri1684/timetable/handlers"
	"github.com/anjiri1684/timetable/middleware"
	"github.com/gofiber/fiber/v2"
)

func CatalogRoutes(app *fiber.App, h *handlers.CatalogHandler, secret string) {
	api := app.Group("/api/v1")
	protected, admin := middleware.Protected(secret), middleware.AdminRequired()

	resources := map[string]handlers.CatalogResource{
		"/instructors": h.Instructors(),
		"/rooms":       h.Rooms(),
		"/courses":     h.Courses(),
		"/groups":      h.Groups(),
		"/hour-slots":  h.HourSlots(),
	}

	catalog := api.Group("/catalog")
	for path, r := range resources {
		group := catalog.Group(path)
		group.Get("", r.List)
		group.Get("/:id", r.Get)
		group.Post("", protected, admin, r.Create)
		group.Put("/:id", protected, admin, r.Update)
		group.Delete("/:id", protected, admin, r.Delete)
	}
}
