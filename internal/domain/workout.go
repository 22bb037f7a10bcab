package domain

import (
	"context"
	"errors"
)

var (
	ErrWorkoutNotFound = errors.New("workout not found")
)

// WorkoutType categorizes a workout
type WorkoutType string

const (
	TypeStrength    WorkoutType = "STRENGTH"
	TypeCardio      WorkoutType = "CARDIO"
	TypeFlexibility WorkoutType = "FLEXIBILITY"
	TypeHIIT        WorkoutType = "HIIT"
	TypeCustom      WorkoutType = "CUSTOM"
)

// WorkoutLocation is where the workout takes place
type WorkoutLocation string

const (
	LocationHome    WorkoutLocation = "HOME"
	LocationGym     WorkoutLocation = "GYM"
	LocationOutdoor WorkoutLocation = "OUTDOOR"
	LocationOther   WorkoutLocation = "OTHER"
)

// WorkoutTypes lists every valid workout type
var WorkoutTypes = []WorkoutType{TypeStrength, TypeCardio, TypeFlexibility, TypeHIIT, TypeCustom}

// WorkoutLocations lists every valid workout location
var WorkoutLocations = []WorkoutLocation{LocationHome, LocationGym, LocationOutdoor, LocationOther}

type Exercise struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Sets     int    `json:"sets"`
	Reps     int    `json:"reps"`
	Weight   int    `json:"weight,omitempty"`
	RestTime int    `json:"restTime,omitempty"` // Rest time in seconds
	Notes    string `json:"notes,omitempty"`
}

type Workout struct {
	ID            string          `json:"id,omitempty"` // Assigned by the backend; empty means not yet persisted
	Name          string          `json:"name"`
	Date          string          `json:"date"`           // YYYY-MM-DD
	Time          string          `json:"time,omitempty"` // HH:MM
	Exercises     []Exercise      `json:"exercises"`
	Notes         string          `json:"notes,omitempty"`
	Completed     bool            `json:"completed"`
	CompletedDate string          `json:"completedDate,omitempty"` // Set only when Completed is true
	Duration      int             `json:"duration,omitempty"`      // Duration in minutes
	Calories      int             `json:"calories,omitempty"`
	Type          WorkoutType     `json:"type"`
	Location      WorkoutLocation `json:"location"`
}

// WorkoutRepository is the storage-agnostic contract for workout access.
// GetByID returns (nil, nil) when no workout exists for the id.
type WorkoutRepository interface {
	GetWorkouts(ctx context.Context) ([]*Workout, error)
	GetWorkoutByID(ctx context.Context, id string) (*Workout, error)
	AddWorkout(ctx context.Context, workout *Workout) error
	UpdateWorkout(ctx context.Context, workout *Workout) error
	DeleteWorkout(ctx context.Context, id string) error
	CompleteWorkout(ctx context.Context, id string, completedDate string) (*Workout, error)
	GetWorkoutsForDate(ctx context.Context, date string) ([]*Workout, error)
}
