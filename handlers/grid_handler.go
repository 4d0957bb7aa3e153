package handlers

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"slices"
	"sort"

	"github.com/anjiri1684/timetable/models"
	"github.com/anjiri1684/timetable/timetable"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// EntryView is an entry rendered for reading. Paired classes show both
// halves joined with " + ".
type EntryView struct {
	ID          uuid.UUID        `json:"id"`
	ClassType   models.ClassType `json:"class_type"`
	Day         models.Day       `json:"day"`
	HourSlotID  uuid.UUID        `json:"hour_slot_id"`
	HourSlot    string           `json:"hour_slot"`
	Group       string           `json:"group"`
	Courses     string           `json:"courses"`
	CourseTypes string           `json:"course_types"`
	Instructors string           `json:"instructors"`
	Rooms       string           `json:"rooms"`
	WeekTypes   string           `json:"week_types"`

	start datatypes.Time
}

func viewOf(e *timetable.Entry, hourSlotID uuid.UUID) EntryView {
	paired := e.ClassType.Paired()
	pair := func(a, b string) string {
		switch {
		case !paired || b == "":
			return a
		case a == "":
			return b
		}
		return a + " + " + b
	}

	v := EntryView{
		ID:          e.ID,
		ClassType:   e.ClassType,
		Day:         e.Day,
		HourSlotID:  hourSlotID,
		HourSlot:    label(e.HourSlot),
		Group:       label(e.Group),
		Courses:     pair(label(e.Primary.Course), label(e.Secondary.Course)),
		CourseTypes: pair(string(e.Primary.CourseType), string(e.Secondary.CourseType)),
		Instructors: pair(label(e.Primary.Instructor), label(e.Secondary.Instructor)),
		Rooms:       pair(label(e.Primary.Room), label(e.Secondary.Room)),
		WeekTypes:   pair(string(e.Primary.WeekType), string(e.Secondary.WeekType)),
	}
	if e.HourSlot != nil {
		v.start = e.HourSlot.StartTime
	}
	return v
}

func label[T fmt.Stringer](v *T) string {
	if v == nil {
		return ""
	}
	return (*v).String()
}

// views renders the entries of year in day then start time order.
func (h *TimetableHandler) views(ctx context.Context, year int) ([]EntryView, error) {
	entries, err := h.store.Query(ctx, timetable.Filter{Year: &year})
	if err != nil {
		return nil, err
	}

	views := make([]EntryView, 0, len(entries))
	for i := range entries {
		resolved, err := timetable.ResolveStored(ctx, h.catalog, &entries[i])
		if err != nil {
			return nil, err
		}
		views = append(views, viewOf(&resolved, entries[i].HourSlotID))
	}

	days := models.Days()
	sort.SliceStable(views, func(i, j int) bool {
		di, dj := slices.Index(days, views[i].Day), slices.Index(days, views[j].Day)
		if di != dj {
			return di < dj
		}
		return views[i].start < views[j].start
	})
	return views, nil
}

type GridCell struct {
	Day     models.Day  `json:"day"`
	Entries []EntryView `json:"entries"`
}

type GridRow struct {
	HourSlot models.HourSlot `json:"hour_slot"`
	Label    string          `json:"label"`
	Cells    []GridCell      `json:"cells"`
}

// Grid lays out one year's timetable as hour slot rows by weekday columns.
func (h *TimetableHandler) Grid(c *fiber.Ctx) error {
	year := c.QueryInt("year", 1)
	if year < 1 {
		return badRequest(c, "Invalid year")
	}
	ctx := c.UserContext()

	var slots []models.HourSlot
	if err := h.db.WithContext(ctx).Order("start_time").Find(&slots).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
	}
	views, err := h.views(ctx, year)
	if err != nil {
		return storeError(c, err)
	}

	type cellKey struct {
		day  models.Day
		slot uuid.UUID
	}
	cells := map[cellKey][]EntryView{}
	for _, v := range views {
		k := cellKey{v.Day, v.HourSlotID}
		cells[k] = append(cells[k], v)
	}

	days := models.Days()
	rows := make([]GridRow, 0, len(slots))
	for _, s := range slots {
		row := GridRow{HourSlot: s, Label: s.String(), Cells: make([]GridCell, 0, len(days))}
		for _, d := range days {
			entries := cells[cellKey{d, s.ID}]
			if entries == nil {
				entries = []EntryView{}
			}
			row.Cells = append(row.Cells, GridCell{Day: d, Entries: entries})
		}
		rows = append(rows, row)
	}

	return c.JSON(fiber.Map{"year": year, "days": days, "rows": rows})
}

// ExportCSV streams one year's timetable as a CSV attachment.
func (h *TimetableHandler) ExportCSV(c *fiber.Ctx) error {
	year := c.QueryInt("year", 1)
	if year < 1 {
		return badRequest(c, "Invalid year")
	}
	views, err := h.views(c.UserContext(), year)
	if err != nil {
		return storeError(c, err)
	}

	b := new(bytes.Buffer)
	w := csv.NewWriter(b)

	headers := []string{"Day", "Hour Slot", "Group", "Class Type", "Courses", "Course Types", "Instructors", "Rooms", "Week Types"}
	if err := w.Write(headers); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to write CSV header"})
	}
	for _, v := range views {
		row := []string{
			string(v.Day),
			v.HourSlot,
			v.Group,
			string(v.ClassType),
			v.Courses,
			v.CourseTypes,
			v.Instructors,
			v.Rooms,
			v.WeekTypes,
		}
		if err := w.Write(row); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to write CSV row"})
		}
	}
	w.Flush()

	c.Set("Content-Type", "text/csv")
	c.Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"timetable_year_%d.csv\"", year))
	return c.Send(b.Bytes())
}
