package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/mobilefit/companion/internal/domain"
	"github.com/mobilefit/companion/internal/service"
	"github.com/mobilefit/companion/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

type WorkoutHandler struct {
	workoutService *service.WorkoutService
}

func NewWorkoutHandler(workoutService *service.WorkoutService) *WorkoutHandler {
	return &WorkoutHandler{workoutService: workoutService}
}

// ListWorkouts GET /v1/workouts?date=YYYY-MM-DD
func (h *WorkoutHandler) ListWorkouts(c *fiber.Ctx) error {
	if date := c.Query("date"); date != "" {
		workouts, err := h.workoutService.GetWorkoutsForDate(c.Context(), date)
		if err != nil {
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(workouts)
	}

	workouts, err := h.workoutService.GetAllWorkouts(c.Context())
	if err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(workouts)
}

// GetWorkout GET /v1/workouts/:id
func (h *WorkoutHandler) GetWorkout(c *fiber.Ctx) error {
	id := c.Params("id")
	workout, err := h.workoutService.GetWorkoutByID(c.Context(), id)
	if err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": err.Error()})
	}
	if workout == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": domain.ErrWorkoutNotFound.Error()})
	}
	return c.JSON(workout)
}

// SaveWorkout POST /v1/workouts
// Insert when the body has no id, full update when it does.
func (h *WorkoutHandler) SaveWorkout(c *fiber.Ctx) error {
	var req domain.Workout
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid body"})
	}

	if err := h.workoutService.SaveWorkout(c.Context(), &req); err != nil {
		var fieldErrs domain.ValidationErrors
		if errors.As(err, &fieldErrs) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": fieldErrs})
		}
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": err.Error()})
	}
	telemetry.AddSpanEvent(c, "workout.saved", attribute.String("workout.name", req.Name))
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "saved"})
}

// DeleteWorkout DELETE /v1/workouts/:id
func (h *WorkoutHandler) DeleteWorkout(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.workoutService.DeleteWorkout(c.Context(), id); err != nil {
		if errors.Is(err, domain.ErrWorkoutNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"message": "deleted"})
}

// CompleteWorkout PATCH /v1/workouts/:id/complete
func (h *WorkoutHandler) CompleteWorkout(c *fiber.Ctx) error {
	id := c.Params("id")
	telemetry.SetSpanAttribute(c, "workout.id", id)
	var req struct {
		CompletedDate string `json:"completedDate"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid body"})
	}

	workout, err := h.workoutService.CompleteWorkout(c.Context(), id, req.CompletedDate)
	if err != nil {
		if errors.Is(err, domain.ErrWorkoutNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(workout)
}

// WeeklySummary GET /v1/summary/weekly?start=YYYY-MM-DD
func (h *WorkoutHandler) WeeklySummary(c *fiber.Ctx) error {
	summary, err := h.workoutService.WeeklySummary(c.Context(), c.Query("start"))
	if err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(summary)
}
