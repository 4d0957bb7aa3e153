package handlers

import (
	"context"
	"errors"

	"github.com/anjiri1684/timetable/catalog"
	"github.com/anjiri1684/timetable/models"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Invalidator drops cached catalog records. *catalog.Cached implements it.
type Invalidator interface {
	Invalidate(ctx context.Context, kind catalog.Kind, id uuid.UUID)
}

type noCache struct{}

func (noCache) Invalidate(context.Context, catalog.Kind, uuid.UUID) {}

// CatalogHandler manages the reference data entries point at. Deleting a
// record removes the entries referencing it through the ON DELETE CASCADE
// foreign keys.
type CatalogHandler struct {
	db    *gorm.DB
	cache Invalidator
}

func NewCatalogHandler(db *gorm.DB, cache Invalidator) *CatalogHandler {
	if cache == nil {
		cache = noCache{}
	}
	return &CatalogHandler{db: db, cache: cache}
}

type validatable interface {
	Validate() error
}

// CatalogResource bundles the handlers of one record type.
type CatalogResource struct {
	List   fiber.Handler
	Get    fiber.Handler
	Create fiber.Handler
	Update fiber.Handler
	Delete fiber.Handler
}

func (h *CatalogHandler) Instructors() CatalogResource {
	return resource[models.Instructor](h, catalog.KindInstructor, "name")
}

func (h *CatalogHandler) Rooms() CatalogResource {
	return resource[models.Room](h, catalog.KindRoom, "name")
}

func (h *CatalogHandler) Courses() CatalogResource {
	return resource[models.Course](h, catalog.KindCourse, "year, name")
}

func (h *CatalogHandler) Groups() CatalogResource {
	return resource[models.Group](h, catalog.KindGroup, "assigned_year, name")
}

func (h *CatalogHandler) HourSlots() CatalogResource {
	return resource[models.HourSlot](h, catalog.KindHourSlot, "start_time")
}

func resource[T any](h *CatalogHandler, kind catalog.Kind, order string) CatalogResource {
	return CatalogResource{
		List:   listRecords[T](h, order),
		Get:    getRecord[T](h),
		Create: createRecord[T](h),
		Update: updateRecord[T](h, kind),
		Delete: deleteRecord[T](h, kind),
	}
}

func listRecords[T any](h *CatalogHandler, order string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		records := []T{}
		if err := h.db.WithContext(c.UserContext()).Order(order).Find(&records).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
		}
		return c.JSON(records)
	}
}

func getRecord[T any](h *CatalogHandler) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := parseID(c)
		if !ok {
			return badRequest(c, "Invalid ID")
		}
		var record T
		if err := h.db.WithContext(c.UserContext()).First(&record, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Record not found"})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
		}
		return c.JSON(record)
	}
}

// checkRecord runs the struct tags and, for hour slots, the start < end rule.
func checkRecord(record any) error {
	if err := validate.Struct(record); err != nil {
		return err
	}
	if v, ok := record.(validatable); ok {
		return v.Validate()
	}
	return nil
}

func createRecord[T any](h *CatalogHandler) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var record T
		if err := c.BodyParser(&record); err != nil {
			return badRequest(c, "Cannot parse JSON")
		}
		if err := checkRecord(record); err != nil {
			return badRequest(c, err.Error())
		}
		if err := h.db.WithContext(c.UserContext()).Create(&record).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create record"})
		}
		return c.Status(fiber.StatusCreated).JSON(record)
	}
}

func updateRecord[T any](h *CatalogHandler, kind catalog.Kind) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := parseID(c)
		if !ok {
			return badRequest(c, "Invalid ID")
		}
		var record T
		if err := c.BodyParser(&record); err != nil {
			return badRequest(c, "Cannot parse JSON")
		}
		if err := checkRecord(record); err != nil {
			return badRequest(c, err.Error())
		}

		ctx := c.UserContext()
		res := h.db.WithContext(ctx).Model(new(T)).Where("id = ?", id).
			Select("*").Omit("id", "created_at").Updates(&record)
		if res.Error != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update record"})
		}
		if res.RowsAffected == 0 {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Record not found"})
		}
		h.cache.Invalidate(ctx, kind, id)

		var updated T
		if err := h.db.WithContext(ctx).First(&updated, "id = ?", id).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
		}
		return c.JSON(updated)
	}
}

func deleteRecord[T any](h *CatalogHandler, kind catalog.Kind) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := parseID(c)
		if !ok {
			return badRequest(c, "Invalid ID")
		}
		ctx := c.UserContext()
		res := h.db.WithContext(ctx).Delete(new(T), "id = ?", id)
		if res.Error != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete record"})
		}
		if res.RowsAffected == 0 {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Record not found"})
		}
		h.cache.Invalidate(ctx, kind, id)
		return c.SendStatus(fiber.StatusNoContent)
	}
}
