package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/mobilefit/companion/internal/domain"
	"github.com/mobilefit/companion/internal/state"
)

// StateHandler exposes the session state container's transitions. State
// transitions are total, so these endpoints never fail beyond body parsing.
type StateHandler struct {
	container *state.Container
}

func NewStateHandler(container *state.Container) *StateHandler {
	return &StateHandler{container: container}
}

// GetState GET /v1/state
func (h *StateHandler) GetState(c *fiber.Ctx) error {
	return c.JSON(h.container.Snapshot())
}

// SelectWorkout PUT /v1/state/selected-workout
// A null body clears the selection.
func (h *StateHandler) SelectWorkout(c *fiber.Ctx) error {
	var req *domain.Workout
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid body"})
	}
	h.container.SelectWorkout(req)
	return c.JSON(h.container.Snapshot())
}

// SetSelectedDate PUT /v1/state/selected-date
func (h *StateHandler) SetSelectedDate(c *fiber.Ctx) error {
	var req struct {
		Date string `json:"date"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid body"})
	}
	h.container.SetSelectedDate(req.Date)
	return c.JSON(h.container.Snapshot())
}

// MarkCompleted POST /v1/state/completed/:id
func (h *StateHandler) MarkCompleted(c *fiber.Ctx) error {
	h.container.MarkCompleted(c.Params("id"))
	return c.JSON(h.container.Snapshot())
}

// MarkNotCompleted DELETE /v1/state/completed/:id
func (h *StateHandler) MarkNotCompleted(c *fiber.Ctx) error {
	h.container.MarkNotCompleted(c.Params("id"))
	return c.JSON(h.container.Snapshot())
}

// SetFilterType PUT /v1/state/filter
func (h *StateHandler) SetFilterType(c *fiber.Ctx) error {
	var req struct {
		FilterType state.FilterType `json:"filterType"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid body"})
	}
	switch req.FilterType {
	case state.FilterAll, state.FilterCompleted, state.FilterPending:
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid filter type"})
	}
	h.container.SetFilterType(req.FilterType)
	return c.JSON(h.container.Snapshot())
}
