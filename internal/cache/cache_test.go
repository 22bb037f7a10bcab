package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fetchValue(value string, tags []Tag, calls *int32) FetchFunc {
	return func(ctx context.Context) (interface{}, []Tag, error) {
		atomic.AddInt32(calls, 1)
		return value, tags, nil
	}
}

func TestQueryMemoizesPerKey(t *testing.T) {
	c := NewResourceCache()
	ctx := context.Background()
	var calls int32

	fetch := fetchValue("v1", []Tag{TagWorkoutList}, &calls)

	got, err := c.Query(ctx, "workout-list", "", 0, fetch)
	require.NoError(t, err)
	assert.Equal(t, "v1", got)

	got, err = c.Query(ctx, "workout-list", "", 0, fetch)
	require.NoError(t, err)
	assert.Equal(t, "v1", got)

	assert.EqualValues(t, 1, calls)
}

func TestQueryDistinctParamsAreDistinctEntries(t *testing.T) {
	c := NewResourceCache()
	ctx := context.Background()
	var calls int32

	_, err := c.Query(ctx, "workout-by-id", "3", 0, fetchValue("three", []Tag{WorkoutTag("3")}, &calls))
	require.NoError(t, err)
	_, err = c.Query(ctx, "workout-by-id", "9", 0, fetchValue("nine", []Tag{WorkoutTag("9")}, &calls))
	require.NoError(t, err)

	assert.EqualValues(t, 2, calls)
}

func TestMutateInvalidatesDeclaredTagsOnly(t *testing.T) {
	c := NewResourceCache()
	ctx := context.Background()
	var listCalls, threeCalls, nineCalls int32

	_, err := c.Query(ctx, "workout-list", "", 0, fetchValue("list", []Tag{TagWorkoutList, WorkoutTag("3"), WorkoutTag("9")}, &listCalls))
	require.NoError(t, err)
	_, err = c.Query(ctx, "workout-by-id", "3", 0, fetchValue("three", []Tag{WorkoutTag("3")}, &threeCalls))
	require.NoError(t, err)
	_, err = c.Query(ctx, "workout-by-id", "9", 0, fetchValue("nine", []Tag{WorkoutTag("9")}, &nineCalls))
	require.NoError(t, err)

	// Successful update on workout 3
	err = c.Mutate(ctx, MutationTags(MutationUpdate, "3"), func(ctx context.Context) error {
		return nil
	})
	require.NoError(t, err)

	// List and workout 3 must refetch; workout 9 is untouched
	_, err = c.Query(ctx, "workout-list", "", 0, fetchValue("list", []Tag{TagWorkoutList}, &listCalls))
	require.NoError(t, err)
	_, err = c.Query(ctx, "workout-by-id", "3", 0, fetchValue("three", []Tag{WorkoutTag("3")}, &threeCalls))
	require.NoError(t, err)
	_, err = c.Query(ctx, "workout-by-id", "9", 0, fetchValue("nine", []Tag{WorkoutTag("9")}, &nineCalls))
	require.NoError(t, err)

	assert.EqualValues(t, 2, listCalls)
	assert.EqualValues(t, 2, threeCalls)
	assert.EqualValues(t, 1, nineCalls)
}

func TestFailedMutationInvalidatesNothing(t *testing.T) {
	c := NewResourceCache()
	ctx := context.Background()
	var calls int32

	_, err := c.Query(ctx, "workout-list", "", 0, fetchValue("list", []Tag{TagWorkoutList}, &calls))
	require.NoError(t, err)

	mutationErr := errors.New("backend rejected")
	err = c.Mutate(ctx, MutationTags(MutationDelete, "3"), func(ctx context.Context) error {
		return mutationErr
	})
	assert.ErrorIs(t, err, mutationErr)

	_, err = c.Query(ctx, "workout-list", "", 0, fetchValue("list", []Tag{TagWorkoutList}, &calls))
	require.NoError(t, err)
	assert.EqualValues(t, 1, calls)
}

func TestEntriesExpireAfterTTL(t *testing.T) {
	c := NewResourceCache()
	ctx := context.Background()

	now := time.Now()
	c.now = func() time.Time { return now }

	var calls int32
	fetch := fetchValue("sunny", []Tag{WeatherTag("Berlin")}, &calls)

	_, err := c.Query(ctx, "weather-current", "Berlin", 5*time.Minute, fetch)
	require.NoError(t, err)
	_, err = c.Query(ctx, "weather-current", "Berlin", 5*time.Minute, fetch)
	require.NoError(t, err)
	assert.EqualValues(t, 1, calls)

	now = now.Add(6 * time.Minute)

	_, err = c.Query(ctx, "weather-current", "Berlin", 5*time.Minute, fetch)
	require.NoError(t, err)
	assert.EqualValues(t, 2, calls)
}

func TestConcurrentIdenticalQueriesShareOneFetch(t *testing.T) {
	c := NewResourceCache()
	ctx := context.Background()

	var calls int32
	release := make(chan struct{})

	fetch := func(ctx context.Context) (interface{}, []Tag, error) {
		atomic.AddInt32(&calls, 1)
		<-release
		return "shared", []Tag{TagWorkoutList}, nil
	}

	const n = 8
	var wg sync.WaitGroup
	results := make([]interface{}, n)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got, err := c.Query(ctx, "workout-list", "", 0, fetch)
			assert.NoError(t, err)
			results[i] = got
		}(i)
	}

	// Give every goroutine time to join the flight before releasing it
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.EqualValues(t, 1, calls)
	for _, r := range results {
		assert.Equal(t, "shared", r)
	}
}

func TestInFlightFetchDoesNotShadowInvalidation(t *testing.T) {
	c := NewResourceCache()
	ctx := context.Background()

	started := make(chan struct{})
	release := make(chan struct{})

	fetch := func(ctx context.Context) (interface{}, []Tag, error) {
		close(started)
		<-release
		return "stale", []Tag{TagWorkoutList}, nil
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, err := c.Query(ctx, "workout-list", "", 0, fetch)
		assert.NoError(t, err)
	}()

	<-started
	// A mutation reports success while the fetch is still in flight
	c.Invalidate(TagWorkoutList)
	close(release)
	<-done

	// The stale result was returned to its caller but never cached
	var calls int32
	_, err := c.Query(ctx, "workout-list", "", 0, fetchValue("fresh", []Tag{TagWorkoutList}, &calls))
	require.NoError(t, err)
	assert.EqualValues(t, 1, calls)
}

func TestUnrelatedInvalidationKeepsInFlightFetch(t *testing.T) {
	c := NewResourceCache()
	ctx := context.Background()

	started := make(chan struct{})
	release := make(chan struct{})
	var calls int32

	fetch := func(ctx context.Context) (interface{}, []Tag, error) {
		atomic.AddInt32(&calls, 1)
		close(started)
		<-release
		return "sunny", []Tag{WeatherTag("Berlin")}, nil
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, err := c.Query(ctx, "weather-current", "Berlin", 0, fetch)
		assert.NoError(t, err)
	}()

	<-started
	// A workout mutation lands while the weather fetch is in flight
	c.Invalidate(TagWorkoutList)
	close(release)
	<-done

	// The weather result was cached anyway; its tags were untouched
	_, err := c.Query(ctx, "weather-current", "Berlin", 0, fetchValue("sunny", []Tag{WeatherTag("Berlin")}, &calls))
	require.NoError(t, err)
	assert.EqualValues(t, 1, calls)
}

func TestQueryErrorIsNotCached(t *testing.T) {
	c := NewResourceCache()
	ctx := context.Background()
	var calls int32

	failing := func(ctx context.Context) (interface{}, []Tag, error) {
		atomic.AddInt32(&calls, 1)
		return nil, nil, errors.New("network unreachable")
	}

	_, err := c.Query(ctx, "workout-list", "", 0, failing)
	assert.Error(t, err)

	_, err = c.Query(ctx, "workout-list", "", 0, fetchValue("ok", []Tag{TagWorkoutList}, &calls))
	require.NoError(t, err)
	assert.EqualValues(t, 2, calls)
}

func TestMutationTagsTable(t *testing.T) {
	assert.Equal(t,
		[]Tag{TagWorkoutList, TagWorkoutDate, TagWorkoutRange},
		MutationTags(MutationAdd, ""),
	)
	for _, op := range []Mutation{MutationUpdate, MutationDelete, MutationComplete} {
		assert.Equal(t,
			[]Tag{WorkoutTag("7"), TagWorkoutList, TagWorkoutDate, TagWorkoutRange},
			MutationTags(op, "7"),
		)
	}
}
