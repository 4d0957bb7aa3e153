package handlers

import (
	"github.com/anjiri1684/timetable/catalog"
	"github.com/anjiri1684/timetable/models"
	"github.com/anjiri1684/timetable/timetable"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// EntryRequest is the body of create, update and validate calls. Enum
// labels are checked by the store so they come back as violations.
type EntryRequest struct {
	ClassType  models.ClassType `json:"class_type"`
	GroupID    string           `json:"group_id" validate:"omitempty,uuid"`
	Day        models.Day       `json:"day"`
	HourSlotID string           `json:"hour_slot_id" validate:"omitempty,uuid"`

	CourseID     string            `json:"course_id" validate:"omitempty,uuid"`
	CourseType   models.CourseType `json:"course_type"`
	InstructorID string            `json:"instructor_id" validate:"omitempty,uuid"`
	RoomID       string            `json:"room_id" validate:"omitempty,uuid"`
	WeekType     models.WeekType   `json:"week_type"`

	SecondCourseID     string            `json:"second_course_id" validate:"omitempty,uuid"`
	SecondCourseType   models.CourseType `json:"second_course_type"`
	SecondInstructorID string            `json:"second_instructor_id" validate:"omitempty,uuid"`
	SecondRoomID       string            `json:"second_room_id" validate:"omitempty,uuid"`
	SecondWeekType     models.WeekType   `json:"second_week_type"`
}

func (r EntryRequest) entry() models.ScheduleEntry {
	classType := r.ClassType
	if classType == "" {
		classType = models.ClassSingle
	}
	return models.ScheduleEntry{
		ClassType:          classType,
		GroupID:            requiredID(r.GroupID),
		Day:                r.Day,
		HourSlotID:         requiredID(r.HourSlotID),
		CourseID:           optionalID(r.CourseID),
		CourseType:         r.CourseType,
		InstructorID:       optionalID(r.InstructorID),
		RoomID:             optionalID(r.RoomID),
		WeekType:           r.WeekType,
		SecondCourseID:     optionalID(r.SecondCourseID),
		SecondCourseType:   r.SecondCourseType,
		SecondInstructorID: optionalID(r.SecondInstructorID),
		SecondRoomID:       optionalID(r.SecondRoomID),
		SecondWeekType:     r.SecondWeekType,
	}
}

// ListQuery holds the list filters. Instructor, room, week type and course
// type match either class of an entry; year matches either course.
type ListQuery struct {
	Day          string `query:"day" validate:"omitempty,day"`
	HourSlotID   string `query:"hour_slot_id" validate:"omitempty,uuid"`
	Year         int    `query:"year" validate:"omitempty,gte=1"`
	InstructorID string `query:"instructor_id" validate:"omitempty,uuid"`
	RoomID       string `query:"room_id" validate:"omitempty,uuid"`
	WeekType     string `query:"week_type" validate:"omitempty,week_type"`
	CourseType   string `query:"course_type" validate:"omitempty,course_type"`
}

func (q ListQuery) filter() timetable.Filter {
	f := timetable.Filter{
		HourSlotID:   optionalID(q.HourSlotID),
		InstructorID: optionalID(q.InstructorID),
		RoomID:       optionalID(q.RoomID),
	}
	if q.Day != "" {
		d := models.Day(q.Day)
		f.Day = &d
	}
	if q.Year > 0 {
		y := q.Year
		f.Year = &y
	}
	if q.WeekType != "" {
		w := models.WeekType(q.WeekType)
		f.WeekType = &w
	}
	if q.CourseType != "" {
		ct := models.CourseType(q.CourseType)
		f.CourseType = &ct
	}
	return f
}

type TimetableHandler struct {
	store   *timetable.Store
	catalog catalog.Catalog
	db      *gorm.DB
}

func NewTimetableHandler(store *timetable.Store, cat catalog.Catalog, db *gorm.DB) *TimetableHandler {
	return &TimetableHandler{store: store, catalog: cat, db: db}
}

func (h *TimetableHandler) CreateEntry(c *fiber.Ctx) error {
	var req EntryRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Cannot parse JSON")
	}
	if err := validate.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	e := req.entry()
	if _, err := h.store.Insert(c.UserContext(), &e); err != nil {
		return storeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(e)
}

func (h *TimetableHandler) UpdateEntry(c *fiber.Ctx) error {
	id, ok := parseID(c)
	if !ok {
		return badRequest(c, "Invalid entry ID")
	}
	var req EntryRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Cannot parse JSON")
	}
	if err := validate.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	e := req.entry()
	if err := h.store.Update(c.UserContext(), id, &e); err != nil {
		return storeError(c, err)
	}
	return c.JSON(e)
}

func (h *TimetableHandler) DeleteEntry(c *fiber.Ctx) error {
	id, ok := parseID(c)
	if !ok {
		return badRequest(c, "Invalid entry ID")
	}
	if err := h.store.Delete(c.UserContext(), id); err != nil {
		return storeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *TimetableHandler) GetEntry(c *fiber.Ctx) error {
	id, ok := parseID(c)
	if !ok {
		return badRequest(c, "Invalid entry ID")
	}
	e, err := h.store.Get(c.UserContext(), id)
	if err != nil {
		return storeError(c, err)
	}
	return c.JSON(e)
}

func (h *TimetableHandler) ListEntries(c *fiber.Ctx) error {
	var q ListQuery
	if err := c.QueryParser(&q); err != nil {
		return badRequest(c, "Invalid query parameters")
	}
	if err := validate.Struct(q); err != nil {
		return badRequest(c, err.Error())
	}

	entries, err := h.store.Query(c.UserContext(), q.filter())
	if err != nil {
		return storeError(c, err)
	}
	if entries == nil {
		entries = []models.ScheduleEntry{}
	}
	return c.JSON(entries)
}

// ValidateEntry checks a candidate without storing it. ?exclude=<id> treats
// the candidate as an edit of that entry and ?all=true reports every
// violation instead of the first.
func (h *TimetableHandler) ValidateEntry(c *fiber.Ctx) error {
	var req EntryRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Cannot parse JSON")
	}
	if err := validate.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}
	exclude := uuid.Nil
	if raw := c.Query("exclude"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return badRequest(c, "Invalid exclude ID")
		}
		exclude = id
	}

	e := req.entry()
	if !c.QueryBool("all") {
		if err := h.store.Validate(c.UserContext(), &e, exclude); err != nil {
			return storeError(c, err)
		}
		return c.JSON(fiber.Map{"valid": true})
	}

	errs, err := h.store.ValidateAll(c.UserContext(), &e, exclude)
	if err != nil {
		return storeError(c, err)
	}
	violations := make([]Violation, 0, len(errs))
	for _, ve := range errs {
		violations = append(violations, violationOf(ve))
	}
	status := fiber.StatusOK
	if len(violations) > 0 {
		status = fiber.StatusUnprocessableEntity
	}
	return c.Status(status).JSON(fiber.Map{"valid": len(violations) == 0, "violations": violations})
}
