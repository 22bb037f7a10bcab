package tests

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/mobilefit/companion/internal/config"
	"github.com/mobilefit/companion/internal/domain"
	"github.com/mobilefit/companion/internal/server"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

// FakeBackend is an in-memory workouts REST backend. It serves the same
// endpoints the real backend does and counts list fetches so tests can
// observe cache behavior through the public API.
type FakeBackend struct {
	mu       sync.Mutex
	workouts map[string]*domain.Workout
	order    []string
	nextID   int

	ListCalls int

	Server *httptest.Server
}

func NewFakeBackend() *FakeBackend {
	b := &FakeBackend{
		workouts: map[string]*domain.Workout{},
		nextID:   1,
	}
	b.Server = httptest.NewServer(http.HandlerFunc(b.handle))
	return b
}

func (b *FakeBackend) Close() {
	b.Server.Close()
}

// Seed inserts a workout directly, bypassing the HTTP surface
func (b *FakeBackend) Seed(w *domain.Workout) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if w.ID == "" {
		w.ID = strconv.Itoa(b.nextID)
		b.nextID++
	}
	b.workouts[w.ID] = w
	b.order = append(b.order, w.ID)
}

func (b *FakeBackend) handle(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := strings.TrimPrefix(r.URL.Path, "/workouts")
	id = strings.TrimPrefix(id, "/")

	switch {
	case r.Method == http.MethodGet && id == "":
		b.ListCalls++
		date := r.URL.Query().Get("date")
		out := []*domain.Workout{}
		for _, wid := range b.order {
			if date == "" || b.workouts[wid].Date == date {
				out = append(out, b.workouts[wid])
			}
		}
		json.NewEncoder(w).Encode(out)

	case r.Method == http.MethodGet:
		workout, ok := b.workouts[id]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		json.NewEncoder(w).Encode(workout)

	case r.Method == http.MethodPost:
		var workout domain.Workout
		if err := json.NewDecoder(r.Body).Decode(&workout); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		workout.ID = strconv.Itoa(b.nextID)
		b.nextID++
		b.workouts[workout.ID] = &workout
		b.order = append(b.order, workout.ID)
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(&workout)

	case r.Method == http.MethodPut:
		if _, ok := b.workouts[id]; !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		var workout domain.Workout
		if err := json.NewDecoder(r.Body).Decode(&workout); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		workout.ID = id
		b.workouts[id] = &workout
		json.NewEncoder(w).Encode(&workout)

	case r.Method == http.MethodPatch:
		workout, ok := b.workouts[id]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		var patch struct {
			Completed     bool   `json:"completed"`
			CompletedDate string `json:"completedDate"`
		}
		if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		workout.Completed = patch.Completed
		workout.CompletedDate = patch.CompletedDate
		json.NewEncoder(w).Encode(workout)

	case r.Method == http.MethodDelete:
		if _, ok := b.workouts[id]; !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		delete(b.workouts, id)
		for i, wid := range b.order {
			if wid == id {
				b.order = append(b.order[:i], b.order[i+1:]...)
				break
			}
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// SetupApp wires a full application against a fake backend and miniredis
func SetupApp(t *testing.T) (*fiber.App, *FakeBackend, *miniredis.Miniredis) {
	backend := NewFakeBackend()
	t.Cleanup(backend.Close)

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { redisClient.Close() })

	cfg := &config.Config{}
	cfg.WorkoutAPI.BaseURL = backend.Server.URL
	cfg.Storage.EncryptionKey = "test-encryption-key"

	app := server.NewApp(server.AppDependencies{
		Config:      cfg,
		RedisClient: redisClient,
	})
	return app, backend, mr
}
