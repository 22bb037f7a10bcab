package state

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/mobilefit/companion/internal/domain"
	"github.com/mobilefit/companion/internal/repository"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupKV(t *testing.T) (*repository.RedisKV, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	kv, err := repository.NewRedisKV(client, "")
	require.NoError(t, err)
	return kv, mr
}

func TestGatewayRoundTrip(t *testing.T) {
	kv, _ := setupKV(t)
	ctx := context.Background()

	first := NewContainer()
	NewGateway(kv).Rehydrate(ctx, first)

	first.SelectWorkout(&domain.Workout{ID: "7", Name: "Leg Day"})
	first.SetSelectedDate("2023-10-15")
	first.MarkCompleted("7")
	first.MarkCompleted("9")
	first.SetFilterType(FilterCompleted)

	// Simulate a process restart: fresh container, same store
	second := NewContainer()
	NewGateway(kv).Rehydrate(ctx, second)

	snap := second.Snapshot()
	assert.Equal(t, "Leg Day", snap.SelectedWorkout.Name)
	assert.Equal(t, "2023-10-15", snap.SelectedDate)
	assert.Equal(t, []string{"7", "9"}, snap.CompletedWorkouts)
	assert.Equal(t, FilterCompleted, snap.FilterType)
}

func TestGatewayCorruptBlobFallsBackToDefaults(t *testing.T) {
	kv, mr := setupKV(t)
	ctx := context.Background()

	require.NoError(t, mr.Set("companion:kv:session:root", "{not valid json"))

	c := NewContainer()
	NewGateway(kv).Rehydrate(ctx, c)

	snap := c.Snapshot()
	assert.Nil(t, snap.SelectedWorkout)
	assert.Equal(t, time.Now().Format("2006-01-02"), snap.SelectedDate)
	assert.Empty(t, snap.CompletedWorkouts)
	assert.Equal(t, FilterAll, snap.FilterType)

	// The unreadable blob is discarded, not left to fail again
	assert.False(t, mr.Exists("companion:kv:session:root"))
}

func TestGatewayWrongSchemaVersionFallsBackToDefaults(t *testing.T) {
	kv, mr := setupKV(t)
	ctx := context.Background()

	blob := `{"schemaVersion":99,"state":{"selectedDate":"1999-01-01","filterType":"pending"}}`
	require.NoError(t, mr.Set("companion:kv:session:root", blob))

	c := NewContainer()
	NewGateway(kv).Rehydrate(ctx, c)

	snap := c.Snapshot()
	assert.Equal(t, time.Now().Format("2006-01-02"), snap.SelectedDate)
	assert.Equal(t, FilterAll, snap.FilterType)
}

func TestGatewayWriteFailureDoesNotPropagate(t *testing.T) {
	kv, mr := setupKV(t)
	ctx := context.Background()

	c := NewContainer()
	NewGateway(kv).Rehydrate(ctx, c)

	mr.Close()

	// Transitions stay total even when persistence is down
	c.MarkCompleted("1")
	c.SetFilterType(FilterPending)

	snap := c.Snapshot()
	assert.Equal(t, []string{"1"}, snap.CompletedWorkouts)
	assert.Equal(t, FilterPending, snap.FilterType)
}

func TestGatewayPersistsEveryTransition(t *testing.T) {
	kv, _ := setupKV(t)
	ctx := context.Background()

	c := NewContainer()
	NewGateway(kv).Rehydrate(ctx, c)

	c.SetSelectedDate("2023-10-15")

	var blob struct {
		SchemaVersion int      `json:"schemaVersion"`
		State         Snapshot `json:"state"`
	}
	found, err := kv.Get(ctx, "session:root", &blob)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, 1, blob.SchemaVersion)
	assert.Equal(t, "2023-10-15", blob.State.SelectedDate)
}
