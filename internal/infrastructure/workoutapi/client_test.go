package workoutapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mobilefit/companion/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetWorkoutByIDNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
	}))
	defer srv.Close()

	client := NewClient(Config{BaseURL: srv.URL})
	got, err := client.GetWorkoutByID(context.Background(), "999")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestDeleteWorkoutNotFoundPropagates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := NewClient(Config{BaseURL: srv.URL})
	err := client.DeleteWorkout(context.Background(), "999")
	assert.ErrorIs(t, err, domain.ErrWorkoutNotFound)
}

func TestCompleteWorkoutSendsPatch(t *testing.T) {
	var gotMethod, gotPath string
	var gotBody map[string]interface{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		json.NewEncoder(w).Encode(domain.Workout{
			ID:            "3",
			Name:          "Push Day",
			Completed:     true,
			CompletedDate: "2023-10-15",
		})
	}))
	defer srv.Close()

	client := NewClient(Config{BaseURL: srv.URL})
	updated, err := client.CompleteWorkout(context.Background(), "3", "2023-10-15")
	require.NoError(t, err)

	assert.Equal(t, http.MethodPatch, gotMethod)
	assert.Equal(t, "/workouts/3", gotPath)
	assert.Equal(t, map[string]interface{}{"completed": true, "completedDate": "2023-10-15"}, gotBody)
	assert.True(t, updated.Completed)
}

func TestGetWorkoutsForDateQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "2023-10-15", r.URL.Query().Get("date"))
		json.NewEncoder(w).Encode([]*domain.Workout{
			{ID: "1", Name: "Push Day", Date: "2023-10-15"},
		})
	}))
	defer srv.Close()

	client := NewClient(Config{BaseURL: srv.URL})
	workouts, err := client.GetWorkoutsForDate(context.Background(), "2023-10-15")
	require.NoError(t, err)
	require.Len(t, workouts, 1)
	assert.Equal(t, "Push Day", workouts[0].Name)
}

func TestServerErrorSurfacesStatusAndBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "database on fire", http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewClient(Config{BaseURL: srv.URL})
	_, err := client.GetWorkouts(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
	assert.Contains(t, err.Error(), "database on fire")
}

func TestAddWorkoutReturnsCreated(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)

		var incoming domain.Workout
		require.NoError(t, json.NewDecoder(r.Body).Decode(&incoming))
		incoming.ID = "41"

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(incoming)
	}))
	defer srv.Close()

	client := NewClient(Config{BaseURL: srv.URL})
	created, err := client.AddWorkout(context.Background(), &domain.Workout{Name: "Morning Swim"})
	require.NoError(t, err)
	assert.Equal(t, "41", created.ID)
	assert.Equal(t, "Morning Swim", created.Name)
}
