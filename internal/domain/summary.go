package domain

import "time"

type DailySummary struct {
	Date      string `json:"date"`
	Workouts  int    `json:"workouts"`
	Completed int    `json:"completed"`
	Duration  int    `json:"duration"`
	Calories  int    `json:"calories"`
}

type WeeklySummary struct {
	StartDate         string              `json:"startDate"`
	EndDate           string              `json:"endDate"`
	TotalWorkouts     int                 `json:"totalWorkouts"`
	CompletedWorkouts int                 `json:"completedWorkouts"`
	TotalDuration     int                 `json:"totalDuration"`
	TotalCalories     int                 `json:"totalCalories"`
	WorkoutsByType    map[WorkoutType]int `json:"workoutsByType"`
	DailySummary      []DailySummary      `json:"dailySummary"`
}

// WeekStart returns the Sunday of the week containing t, as YYYY-MM-DD.
func WeekStart(t time.Time) string {
	sunday := t.AddDate(0, 0, -int(t.Weekday()))
	return sunday.Format("2006-01-02")
}

// BuildWeeklySummary aggregates workouts into the Sunday-to-Saturday week
// beginning at startDate (YYYY-MM-DD). Workouts outside the range are ignored.
func BuildWeeklySummary(startDate string, workouts []*Workout) (*WeeklySummary, error) {
	start, err := time.Parse("2006-01-02", startDate)
	if err != nil {
		return nil, err
	}
	endDate := start.AddDate(0, 0, 6).Format("2006-01-02")

	summary := &WeeklySummary{
		StartDate:      startDate,
		EndDate:        endDate,
		WorkoutsByType: make(map[WorkoutType]int),
		DailySummary:   make([]DailySummary, 7),
	}

	byDate := make(map[string][]*Workout)
	for _, w := range workouts {
		if w.Date < startDate || w.Date > endDate {
			continue
		}
		byDate[w.Date] = append(byDate[w.Date], w)
	}

	for i := 0; i < 7; i++ {
		dateStr := start.AddDate(0, 0, i).Format("2006-01-02")
		day := DailySummary{Date: dateStr}

		for _, w := range byDate[dateStr] {
			day.Workouts++
			day.Duration += w.Duration
			day.Calories += w.Calories
			if w.Completed {
				day.Completed++
			}
			summary.WorkoutsByType[w.Type]++
		}

		summary.TotalWorkouts += day.Workouts
		summary.CompletedWorkouts += day.Completed
		summary.TotalDuration += day.Duration
		summary.TotalCalories += day.Calories
		summary.DailySummary[i] = day
	}

	return summary, nil
}
