package persistence_test

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"example.com/workoutsync/internal/domain"
	"example.com/workoutsync/internal/persistence"
	"example.com/workoutsync/internal/persistence/memorystore"
	"example.com/workoutsync/internal/persistence/sqlitestore"
)

// openBackends returns both storage implementations so every case runs
// against identical semantics.
func openBackends(t *testing.T) map[string]persistence.Backend {
	t.Helper()

	sqlite, err := sqlitestore.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlite.Close() })

	return map[string]persistence.Backend{
		"sqlite": sqlite,
		"memory": memorystore.New(),
	}
}

func TestCreateWorkoutAssignsIdentity(t *testing.T) {
	for name, store := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			workout, err := store.CreateWorkout(ctx, "Leg Day")
			require.NoError(t, err)
			require.Positive(t, workout.ID)
			require.NotEmpty(t, workout.ClientID)
			require.Nil(t, workout.ServerID)
			require.Equal(t, domain.StatusDraft, workout.Status)
			require.Positive(t, workout.CreatedAt)
			require.Equal(t, workout.CreatedAt, workout.UpdatedAt)

			second, err := store.CreateWorkout(ctx, "Push Day")
			require.NoError(t, err)
			require.Greater(t, second.ID, workout.ID)
			require.NotEqual(t, workout.ClientID, second.ClientID)

			blank, err := store.CreateWorkout(ctx, "  ")
			require.NoError(t, err)
			require.Equal(t, domain.FallbackWorkoutTitle, blank.Title)
		})
	}
}

func TestFetchAllOrdersNewestWorkoutFirst(t *testing.T) {
	for name, store := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			first, err := store.CreateWorkout(ctx, "first")
			require.NoError(t, err)
			second, err := store.CreateWorkout(ctx, "second")
			require.NoError(t, err)

			snapshot, err := store.FetchAll(ctx)
			require.NoError(t, err)
			require.Len(t, snapshot, 2)
			require.Equal(t, second.ID, snapshot[0].Workout.ID)
			require.Equal(t, first.ID, snapshot[1].Workout.ID)
		})
	}
}

func TestExercisesOrderedByOrderIndex(t *testing.T) {
	for name, store := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			workout, err := store.CreateWorkout(ctx, "Leg Day")
			require.NoError(t, err)

			_, err = store.AddExercise(ctx, workout.ID, "squat", 0, nil)
			require.NoError(t, err)
			_, err = store.AddExercise(ctx, workout.ID, "deadlift", -1, nil)
			require.NoError(t, err)
			_, err = store.AddExercise(ctx, workout.ID, "lunge", -2, nil)
			require.NoError(t, err)

			min, ok, err := store.MinExerciseOrder(ctx, workout.ID)
			require.NoError(t, err)
			require.True(t, ok)
			require.Equal(t, -2, min)

			snapshot, err := store.FetchAll(ctx)
			require.NoError(t, err)
			require.Len(t, snapshot[0].Exercises, 3)
			require.Equal(t, "lunge", snapshot[0].Exercises[0].ExerciseCode)
			require.Equal(t, "deadlift", snapshot[0].Exercises[1].ExerciseCode)
			require.Equal(t, "squat", snapshot[0].Exercises[2].ExerciseCode)
		})
	}
}

func TestMinExerciseOrderEmptyWorkout(t *testing.T) {
	for name, store := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			workout, err := store.CreateWorkout(ctx, "empty")
			require.NoError(t, err)

			_, ok, err := store.MinExerciseOrder(ctx, workout.ID)
			require.NoError(t, err)
			require.False(t, ok)
		})
	}
}

func TestStatusTransitionEnforcement(t *testing.T) {
	for name, store := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			workout, err := store.CreateWorkout(ctx, "Leg Day")
			require.NoError(t, err)

			require.NoError(t, store.UpdateWorkoutStatus(ctx, workout.ID, domain.StatusCompleted))

			err = store.UpdateWorkoutStatus(ctx, workout.ID, domain.StatusInProgress)
			require.ErrorIs(t, err, domain.ErrInvalidStatusTransition)

			// Same-state writes stay no-ops.
			require.NoError(t, store.UpdateWorkoutStatus(ctx, workout.ID, domain.StatusCompleted))

			// Missing ids are no-ops, not errors.
			require.NoError(t, store.UpdateWorkoutStatus(ctx, 9999, domain.StatusCompleted))
		})
	}
}

func TestMissingIDOperationsAreNoOps(t *testing.T) {
	for name, store := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			require.NoError(t, store.UpdateWorkoutTitle(ctx, 42, "ghost"))
			require.NoError(t, store.DeleteWorkout(ctx, 42))
			require.NoError(t, store.UpdateExercisePlan(ctx, 42, nil))
			require.NoError(t, store.RemoveExercise(ctx, 42))
			reps := 5
			require.NoError(t, store.UpdateSet(ctx, 42, domain.SetChanges{Reps: &reps}))
			require.NoError(t, store.RemoveSet(ctx, 42))
		})
	}
}

func TestCascadeDelete(t *testing.T) {
	for name, store := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			workout, err := store.CreateWorkout(ctx, "Leg Day")
			require.NoError(t, err)
			exercise, err := store.AddExercise(ctx, workout.ID, "squat", 0, nil)
			require.NoError(t, err)
			_, err = store.AddSet(ctx, exercise.ID, 5, nil, nil)
			require.NoError(t, err)

			require.NoError(t, store.DeleteWorkout(ctx, workout.ID))

			snapshot, err := store.FetchAll(ctx)
			require.NoError(t, err)
			require.Empty(t, snapshot)
		})
	}
}

func TestRemoveExerciseCascadesToSets(t *testing.T) {
	for name, store := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			workout, err := store.CreateWorkout(ctx, "Leg Day")
			require.NoError(t, err)
			exercise, err := store.AddExercise(ctx, workout.ID, "squat", 0, nil)
			require.NoError(t, err)
			set, err := store.AddSet(ctx, exercise.ID, 5, nil, nil)
			require.NoError(t, err)

			require.NoError(t, store.RemoveExercise(ctx, exercise.ID))

			snapshot, err := store.FetchAll(ctx)
			require.NoError(t, err)
			require.Len(t, snapshot, 1)
			require.Empty(t, snapshot[0].Exercises)
			require.Empty(t, snapshot[0].Sets)

			// The soft-deleted set no longer resolves.
			_, ok, err := store.LookupLocalID(ctx, domain.KindSet, set.ClientID)
			require.NoError(t, err)
			require.False(t, ok)
		})
	}
}

func TestSetUpdateSemantics(t *testing.T) {
	for name, store := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			workout, err := store.CreateWorkout(ctx, "Leg Day")
			require.NoError(t, err)
			exercise, err := store.AddExercise(ctx, workout.ID, "squat", 0, nil)
			require.NoError(t, err)

			weight := 100.0
			rpe := 7.5
			set, err := store.AddSet(ctx, exercise.ID, 5, &weight, &rpe)
			require.NoError(t, err)

			_, err = store.AddSet(ctx, exercise.ID, -1, nil, nil)
			require.ErrorIs(t, err, domain.ErrInvalidReps)

			// Partial update: bump reps, clear weight, leave rpe alone.
			reps := 8
			var clearedWeight *float64
			require.NoError(t, store.UpdateSet(ctx, set.ID, domain.SetChanges{
				Reps:   &reps,
				Weight: &clearedWeight,
			}))

			snapshot, err := store.FetchAll(ctx)
			require.NoError(t, err)
			require.Len(t, snapshot[0].Sets, 1)
			got := snapshot[0].Sets[0]
			require.Equal(t, 8, got.Reps)
			require.Nil(t, got.Weight)
			require.NotNil(t, got.RPE)
			require.Equal(t, 7.5, *got.RPE)
			require.Nil(t, got.DoneAt)

			// Empty updates touch nothing.
			require.NoError(t, store.UpdateSet(ctx, set.ID, domain.SetChanges{}))
		})
	}
}

func TestServerIDMapping(t *testing.T) {
	for name, store := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			workout, err := store.CreateWorkout(ctx, "Leg Day")
			require.NoError(t, err)

			require.NoError(t, store.SetServerID(ctx, domain.KindWorkout, workout.ClientID, 501))
			// Rewriting the same mapping is a no-op.
			require.NoError(t, store.SetServerID(ctx, domain.KindWorkout, workout.ClientID, 501))

			snapshot, err := store.FetchAll(ctx)
			require.NoError(t, err)
			require.NotNil(t, snapshot[0].Workout.ServerID)
			require.EqualValues(t, 501, *snapshot[0].Workout.ServerID)
			require.Equal(t, workout.ClientID, snapshot[0].Workout.ClientID)

			// Conflicting mappings favor the latest call.
			require.NoError(t, store.SetServerID(ctx, domain.KindWorkout, workout.ClientID, 502))
			snapshot, err = store.FetchAll(ctx)
			require.NoError(t, err)
			require.EqualValues(t, 502, *snapshot[0].Workout.ServerID)

			// Unknown client ids are ignored.
			require.NoError(t, store.SetServerID(ctx, domain.KindWorkout, "missing", 900))
		})
	}
}

func TestIdentityLookups(t *testing.T) {
	for name, store := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			workout, err := store.CreateWorkout(ctx, "Leg Day")
			require.NoError(t, err)

			has, err := store.HasClientID(ctx, domain.KindWorkout, workout.ClientID)
			require.NoError(t, err)
			require.True(t, has)

			id, ok, err := store.LookupLocalID(ctx, domain.KindWorkout, workout.ClientID)
			require.NoError(t, err)
			require.True(t, ok)
			require.Equal(t, workout.ID, id)

			clientID, ok, err := store.ClientIDOf(ctx, domain.KindWorkout, workout.ID)
			require.NoError(t, err)
			require.True(t, ok)
			require.Equal(t, workout.ClientID, clientID)

			require.NoError(t, store.AdoptClientID(ctx, domain.KindWorkout, workout.ID, "adopted"))
			id, ok, err = store.LookupLocalID(ctx, domain.KindWorkout, "adopted")
			require.NoError(t, err)
			require.True(t, ok)
			require.Equal(t, workout.ID, id)

			require.NoError(t, store.SetServerID(ctx, domain.KindWorkout, "adopted", 77))
			found, err := store.FindWorkoutByIdentity(ctx, 77, "")
			require.NoError(t, err)
			require.NotNil(t, found)
			require.Equal(t, workout.ID, found.ID)

			found, err = store.FindWorkoutByIdentity(ctx, 0, "adopted")
			require.NoError(t, err)
			require.NotNil(t, found)
			require.Equal(t, workout.ID, found.ID)

			found, err = store.FindWorkoutByIdentity(ctx, 9999, "nope")
			require.NoError(t, err)
			require.Nil(t, found)
		})
	}
}

func TestOutboxFIFOAndRetention(t *testing.T) {
	for name, store := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			payload := json.RawMessage(`{"workout_id":1}`)
			first, err := store.Enqueue(ctx, domain.ActionUpdateTitle, payload, 100)
			require.NoError(t, err)
			second, err := store.Enqueue(ctx, domain.ActionDeleteWorkout, payload, 200)
			require.NoError(t, err)
			third, err := store.Enqueue(ctx, domain.ActionRemoveSet, payload, 300)
			require.NoError(t, err)
			require.Less(t, first, second)
			require.Less(t, second, third)

			count, err := store.Count(ctx)
			require.NoError(t, err)
			require.Equal(t, 3, count)

			batch, err := store.PeekBatch(ctx, 2)
			require.NoError(t, err)
			require.Len(t, batch, 2)
			require.Equal(t, first, batch[0].QueueID)
			require.Equal(t, second, batch[1].QueueID)

			// Failed entries stay eligible for the next flush.
			require.NoError(t, store.MarkFailed(ctx, first, "timeout"))
			batch, err = store.PeekBatch(ctx, 10)
			require.NoError(t, err)
			require.Len(t, batch, 3)
			require.Equal(t, first, batch[0].QueueID)
			require.Equal(t, domain.MutationFailed, batch[0].Status)
			require.Equal(t, "timeout", batch[0].LastError)

			// Completion plus removal is terminal.
			require.NoError(t, store.MarkCompleted(ctx, first))
			require.NoError(t, store.Remove(ctx, first))

			count, err = store.Count(ctx)
			require.NoError(t, err)
			require.Equal(t, 2, count)

			batch, err = store.PeekBatch(ctx, 10)
			require.NoError(t, err)
			require.Equal(t, second, batch[0].QueueID)
			require.Equal(t, third, batch[1].QueueID)
		})
	}
}

func TestWatermarkMonotonicity(t *testing.T) {
	for name, store := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			ts, err := store.LastPulledAt(ctx)
			require.NoError(t, err)
			require.Zero(t, ts)

			require.NoError(t, store.AdvanceWatermark(ctx, 1000))
			require.NoError(t, store.AdvanceWatermark(ctx, 500))

			ts, err = store.LastPulledAt(ctx)
			require.NoError(t, err)
			require.EqualValues(t, 1000, ts)

			require.NoError(t, store.AdvanceWatermark(ctx, 2000))
			ts, err = store.LastPulledAt(ctx)
			require.NoError(t, err)
			require.EqualValues(t, 2000, ts)
		})
	}
}

func TestOpenFallsBackToMemory(t *testing.T) {
	backend := persistence.Open("/nonexistent/dir/sync.db",
		func(string) (persistence.Backend, error) {
			return nil, context.DeadlineExceeded
		},
		func() persistence.Backend { return memorystore.New() })
	require.NotNil(t, backend)

	workout, err := backend.CreateWorkout(context.Background(), "offline")
	require.NoError(t, err)
	require.Positive(t, workout.ID)
}
