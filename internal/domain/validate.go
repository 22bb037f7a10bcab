package domain

import (
	"regexp"
	"strconv"
)

var (
	dateRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	timeRe = regexp.MustCompile(`^([01]\d|2[0-3]):([0-5]\d)$`)
)

// ValidationErrors maps a field path to a human-readable message.
// It is returned before any network call when a workout fails validation.
type ValidationErrors map[string]string

func (v ValidationErrors) Error() string {
	for field, msg := range v {
		return field + ": " + msg
	}
	return "validation failed"
}

func validType(t WorkoutType) bool {
	for _, wt := range WorkoutTypes {
		if t == wt {
			return true
		}
	}
	return false
}

func validLocation(l WorkoutLocation) bool {
	for _, wl := range WorkoutLocations {
		if l == wl {
			return true
		}
	}
	return false
}

// Validate checks the workout shape field by field. A nil return means the
// workout is safe to submit to the backend.
func (w *Workout) Validate() ValidationErrors {
	errs := ValidationErrors{}

	if w.Name == "" {
		errs["name"] = "Workout name is required"
	}
	if !dateRe.MatchString(w.Date) {
		errs["date"] = "Date must be in YYYY-MM-DD format"
	}
	if w.Time != "" && !timeRe.MatchString(w.Time) {
		errs["time"] = "Time must be in HH:MM format"
	}
	if !validType(w.Type) {
		errs["type"] = "Invalid workout type"
	}
	if !validLocation(w.Location) {
		errs["location"] = "Invalid workout location"
	}
	if w.Duration < 0 {
		errs["duration"] = "Duration must be at least 1 minute"
	}
	if w.Calories < 0 {
		errs["calories"] = "Calories cannot be negative"
	}
	if w.CompletedDate != "" && !w.Completed {
		errs["completedDate"] = "Completed date requires a completed workout"
	}
	if len(w.Exercises) == 0 {
		errs["exercises"] = "At least one exercise is required"
	}
	for i, ex := range w.Exercises {
		for field, msg := range ex.Validate() {
			errs["exercises."+strconv.Itoa(i)+"."+field] = msg
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

// Validate checks a single exercise
func (e *Exercise) Validate() ValidationErrors {
	errs := ValidationErrors{}

	if e.Name == "" {
		errs["name"] = "Exercise name is required"
	}
	if e.Sets < 1 {
		errs["sets"] = "At least 1 set is required"
	}
	if e.Reps < 1 {
		errs["reps"] = "At least 1 rep is required"
	}
	if e.Weight < 0 {
		errs["weight"] = "Weight cannot be negative"
	}
	if e.RestTime < 0 {
		errs["restTime"] = "Rest time cannot be negative"
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}
