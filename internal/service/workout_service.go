package service

import (
	"context"
	"crypto/rand"
	"time"

	"github.com/mobilefit/companion/internal/domain"
	"github.com/oklog/ulid/v2"
)

// WorkoutService is the narrow contract presentation code talks to. Every
// operation delegates to the repository and surfaces its outcome unchanged;
// rendering and retry decisions stay with the caller.
type WorkoutService struct {
	repo domain.WorkoutRepository
}

func NewWorkoutService(repo domain.WorkoutRepository) *WorkoutService {
	return &WorkoutService{repo: repo}
}

// generateULID creates a new ULID string
func generateULID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), rand.Reader).String()
}

func (s *WorkoutService) GetAllWorkouts(ctx context.Context) ([]*domain.Workout, error) {
	return s.repo.GetWorkouts(ctx)
}

// GetWorkoutByID returns (nil, nil) when no workout exists for the id
func (s *WorkoutService) GetWorkoutByID(ctx context.Context, id string) (*domain.Workout, error) {
	return s.repo.GetWorkoutByID(ctx, id)
}

// SaveWorkout validates then inserts (empty id) or fully updates (id set).
// Exercises added without an id get a client-side ULID before submission.
func (s *WorkoutService) SaveWorkout(ctx context.Context, workout *domain.Workout) error {
	for i := range workout.Exercises {
		if workout.Exercises[i].ID == "" {
			workout.Exercises[i].ID = generateULID()
		}
	}

	if errs := workout.Validate(); errs != nil {
		return errs
	}

	if workout.ID == "" {
		return s.repo.AddWorkout(ctx, workout)
	}
	return s.repo.UpdateWorkout(ctx, workout)
}

func (s *WorkoutService) DeleteWorkout(ctx context.Context, id string) error {
	return s.repo.DeleteWorkout(ctx, id)
}

func (s *WorkoutService) CompleteWorkout(ctx context.Context, id string, completedDate string) (*domain.Workout, error) {
	return s.repo.CompleteWorkout(ctx, id, completedDate)
}

func (s *WorkoutService) GetWorkoutsForDate(ctx context.Context, date string) ([]*domain.Workout, error) {
	return s.repo.GetWorkoutsForDate(ctx, date)
}

// WeeklySummary aggregates the Sunday-to-Saturday week starting at
// startDate. An empty startDate means the current week.
func (s *WorkoutService) WeeklySummary(ctx context.Context, startDate string) (*domain.WeeklySummary, error) {
	if startDate == "" {
		startDate = domain.WeekStart(time.Now())
	}

	workouts, err := s.repo.GetWorkouts(ctx)
	if err != nil {
		return nil, err
	}
	return domain.BuildWeeklySummary(startDate, workouts)
}
