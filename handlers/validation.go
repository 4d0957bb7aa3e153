package handlers

import (
	"github.com/anjiri1684/timetable/models"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var validate = newValidator()

// newValidator knows the timetable enums used in list queries as tags:
// day, week_type and course_type.
func newValidator() *validator.Validate {
	v := validator.New()
	tags := map[string]func(string) bool{
		"day":         func(s string) bool { return models.Day(s).Valid() },
		"week_type":   func(s string) bool { return models.WeekType(s).Valid() },
		"course_type": func(s string) bool { return models.CourseType(s).Valid() },
	}
	for tag, valid := range tags {
		valid := valid
		if err := v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
			return valid(fl.Field().String())
		}); err != nil {
			panic(err)
		}
	}
	return v
}

// optionalID parses an already validated uuid field. Empty means unset.
func optionalID(s string) *uuid.UUID {
	if s == "" {
		return nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return nil
	}
	return &id
}

func requiredID(s string) uuid.UUID {
	if id := optionalID(s); id != nil {
		return *id
	}
	return uuid.Nil
}
