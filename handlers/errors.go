package handlers

import (
	"errors"

	"github.com/anjiri1684/timetable/timetable"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type Violation struct {
	Kind    timetable.Kind `json:"kind"`
	Field   string         `json:"field,omitempty"`
	Message string         `json:"message"`
	PeerID  *uuid.UUID     `json:"peer_id,omitempty"`
}

func violationOf(ve *timetable.ValidationError) Violation {
	v := Violation{Kind: ve.Kind, Field: ve.Field, Message: ve.Message}
	if ve.PeerID != uuid.Nil {
		id := ve.PeerID
		v.PeerID = &id
	}
	return v
}

// storeError maps core errors to responses. Anything unknown goes to the
// app's ErrorHandler as a 500.
func storeError(c *fiber.Ctx, err error) error {
	var ve *timetable.ValidationError
	switch {
	case errors.As(err, &ve):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error":     ve.Message,
			"violation": violationOf(ve),
		})
	case errors.Is(err, timetable.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, timetable.ErrStaleReference):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	}
	return err
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
}

func parseID(c *fiber.Ctx) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Params("id"))
	return id, err == nil
}
