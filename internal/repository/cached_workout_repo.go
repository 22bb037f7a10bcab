package repository

import (
	"context"

	"github.com/mobilefit/companion/internal/cache"
	"github.com/mobilefit/companion/internal/domain"
)

const (
	kindWorkoutList    = "workout-list"
	kindWorkoutByID    = "workout-by-id"
	kindWorkoutsByDate = "workouts-for-date"
)

// WorkoutAPI is the transport the cached repository decorates
type WorkoutAPI interface {
	GetWorkouts(ctx context.Context) ([]*domain.Workout, error)
	GetWorkoutByID(ctx context.Context, id string) (*domain.Workout, error)
	AddWorkout(ctx context.Context, workout *domain.Workout) (*domain.Workout, error)
	UpdateWorkout(ctx context.Context, workout *domain.Workout) (*domain.Workout, error)
	DeleteWorkout(ctx context.Context, id string) error
	CompleteWorkout(ctx context.Context, id string, completedDate string) (*domain.Workout, error)
	GetWorkoutsForDate(ctx context.Context, date string) ([]*domain.Workout, error)
}

// CachedWorkoutRepository implements domain.WorkoutRepository by routing
// queries through the resource cache and applying the mutation invalidation
// table on successful writes. Callers never see the cache vocabulary.
type CachedWorkoutRepository struct {
	api   WorkoutAPI
	cache *cache.ResourceCache
}

func NewCachedWorkoutRepository(api WorkoutAPI, resourceCache *cache.ResourceCache) *CachedWorkoutRepository {
	return &CachedWorkoutRepository{
		api:   api,
		cache: resourceCache,
	}
}

// GetWorkouts returns the full list in backend order. The cached entry
// carries the LIST tag plus one per-item tag per returned workout.
func (r *CachedWorkoutRepository) GetWorkouts(ctx context.Context) ([]*domain.Workout, error) {
	value, err := r.cache.Query(ctx, kindWorkoutList, "", 0, func(ctx context.Context) (interface{}, []cache.Tag, error) {
		workouts, err := r.api.GetWorkouts(ctx)
		if err != nil {
			return nil, nil, err
		}
		tags := []cache.Tag{cache.TagWorkoutList}
		for _, w := range workouts {
			tags = append(tags, cache.WorkoutTag(w.ID))
		}
		return workouts, tags, nil
	})
	if err != nil {
		return nil, err
	}
	return value.([]*domain.Workout), nil
}

// GetWorkoutByID returns (nil, nil) for a missing id. Misses are not cached;
// only found workouts are memoized under their per-item tag.
func (r *CachedWorkoutRepository) GetWorkoutByID(ctx context.Context, id string) (*domain.Workout, error) {
	value, err := r.cache.Query(ctx, kindWorkoutByID, id, 0, func(ctx context.Context) (interface{}, []cache.Tag, error) {
		workout, err := r.api.GetWorkoutByID(ctx, id)
		if err != nil {
			return nil, nil, err
		}
		if workout == nil {
			return nil, nil, domain.ErrWorkoutNotFound
		}
		return workout, []cache.Tag{cache.WorkoutTag(id)}, nil
	})
	if err == domain.ErrWorkoutNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return value.(*domain.Workout), nil
}

func (r *CachedWorkoutRepository) AddWorkout(ctx context.Context, workout *domain.Workout) error {
	return r.cache.Mutate(ctx, cache.MutationTags(cache.MutationAdd, ""), func(ctx context.Context) error {
		_, err := r.api.AddWorkout(ctx, workout)
		return err
	})
}

func (r *CachedWorkoutRepository) UpdateWorkout(ctx context.Context, workout *domain.Workout) error {
	return r.cache.Mutate(ctx, cache.MutationTags(cache.MutationUpdate, workout.ID), func(ctx context.Context) error {
		_, err := r.api.UpdateWorkout(ctx, workout)
		return err
	})
}

func (r *CachedWorkoutRepository) DeleteWorkout(ctx context.Context, id string) error {
	return r.cache.Mutate(ctx, cache.MutationTags(cache.MutationDelete, id), func(ctx context.Context) error {
		return r.api.DeleteWorkout(ctx, id)
	})
}

func (r *CachedWorkoutRepository) CompleteWorkout(ctx context.Context, id string, completedDate string) (*domain.Workout, error) {
	var completed *domain.Workout
	err := r.cache.Mutate(ctx, cache.MutationTags(cache.MutationComplete, id), func(ctx context.Context) error {
		workout, err := r.api.CompleteWorkout(ctx, id, completedDate)
		if err != nil {
			return err
		}
		completed = workout
		return nil
	})
	if err != nil {
		return nil, err
	}
	return completed, nil
}

func (r *CachedWorkoutRepository) GetWorkoutsForDate(ctx context.Context, date string) ([]*domain.Workout, error) {
	value, err := r.cache.Query(ctx, kindWorkoutsByDate, date, 0, func(ctx context.Context) (interface{}, []cache.Tag, error) {
		workouts, err := r.api.GetWorkoutsForDate(ctx, date)
		if err != nil {
			return nil, nil, err
		}
		return workouts, []cache.Tag{cache.TagWorkoutDate}, nil
	})
	if err != nil {
		return nil, err
	}
	return value.([]*domain.Workout), nil
}
