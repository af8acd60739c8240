package reconcile

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"testing"

	"github.com/stretchr/testify/require"

	"example.com/workoutsync/internal/domain"
	"example.com/workoutsync/internal/persistence/memorystore"
	"example.com/workoutsync/internal/remote"
)

func quietLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func mustEncode(t *testing.T, payload domain.Payload) json.RawMessage {
	t.Helper()
	raw, err := domain.EncodePayload(payload)
	require.NoError(t, err)
	return raw
}

func TestApplyAcksBindsServerIDs(t *testing.T) {
	ctx := context.Background()
	store := memorystore.New()
	rec := New(store, WithLogger(quietLogger()))

	workout, err := store.CreateWorkout(ctx, "Leg Day")
	require.NoError(t, err)
	exercise, err := store.AddExercise(ctx, workout.ID, "squat", 0, nil)
	require.NoError(t, err)

	batch := []domain.Mutation{
		{
			QueueID: 1,
			Act:     domain.ActionCreateWorkout,
			Payload: mustEncode(t, &domain.CreateWorkoutPayload{ClientID: workout.ClientID, Title: "Leg Day"}),
		},
		{
			QueueID: 2,
			Act:     domain.ActionAddExercise,
			Payload: mustEncode(t, &domain.AddExercisePayload{ClientID: exercise.ClientID, ExerciseCode: "squat"}),
		},
		{
			QueueID: 3,
			Act:     domain.ActionUpdateTitle,
			Payload: mustEncode(t, &domain.UpdateTitlePayload{WorkoutClientID: workout.ClientID, Title: "x"}),
		},
	}
	acks := []remote.PushAck{
		{QueueID: 1, ServerID: 501},
		{QueueID: 2, ServerID: 601},
		{QueueID: 3, ServerID: 0},
	}

	require.NoError(t, rec.ApplyAcks(ctx, batch, acks))
	// Replaying the same acks is harmless.
	require.NoError(t, rec.ApplyAcks(ctx, batch, acks))

	snapshot, err := store.FetchAll(ctx)
	require.NoError(t, err)
	require.NotNil(t, snapshot[0].Workout.ServerID)
	require.EqualValues(t, 501, *snapshot[0].Workout.ServerID)
	require.Equal(t, workout.ClientID, snapshot[0].Workout.ClientID)
	require.NotNil(t, snapshot[0].Exercises[0].ServerID)
	require.EqualValues(t, 601, *snapshot[0].Exercises[0].ServerID)
}

func TestApplyEventsTargetsByClientID(t *testing.T) {
	ctx := context.Background()
	store := memorystore.New()
	rec := New(store, WithLogger(quietLogger()))

	workout, err := store.CreateWorkout(ctx, "Leg Day")
	require.NoError(t, err)

	events := []remote.Event{{
		ID:      1,
		Action:  domain.ActionUpdateTitle,
		Payload: mustEncode(t, &domain.UpdateTitlePayload{WorkoutClientID: workout.ClientID, Title: "Renamed"}),
	}, {
		ID:      2,
		Action:  domain.ActionCompleteWorkout,
		Payload: mustEncode(t, &domain.CompleteWorkoutPayload{WorkoutClientID: workout.ClientID}),
	}}

	require.Equal(t, 2, rec.ApplyEvents(ctx, events))

	snapshot, err := store.FetchAll(ctx)
	require.NoError(t, err)
	require.Equal(t, "Renamed", snapshot[0].Workout.Title)
	require.Equal(t, domain.StatusCompleted, snapshot[0].Workout.Status)

	// Second delivery leaves the store unchanged.
	rec.ApplyEvents(ctx, events)
	again, err := store.FetchAll(ctx)
	require.NoError(t, err)
	require.Equal(t, snapshot[0].Workout.Title, again[0].Workout.Title)
	require.Equal(t, snapshot[0].Workout.Status, again[0].Workout.Status)
}

func TestApplyEventsCreateIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := memorystore.New()
	rec := New(store, WithLogger(quietLogger()))

	event := remote.Event{
		ID:     1,
		Action: domain.ActionCreateWorkout,
		Payload: mustEncode(t, &domain.CreateWorkoutPayload{
			ClientID: "other-device-workout",
			Title:    "Imported",
		}),
	}

	require.Equal(t, 1, rec.ApplyEvents(ctx, []remote.Event{event}))
	require.Equal(t, 0, rec.ApplyEvents(ctx, []remote.Event{event}))

	snapshot, err := store.FetchAll(ctx)
	require.NoError(t, err)
	require.Len(t, snapshot, 1)
	require.Equal(t, "Imported", snapshot[0].Workout.Title)
	require.Equal(t, "other-device-workout", snapshot[0].Workout.ClientID)
}

func TestApplyEventsAddExerciseAndSet(t *testing.T) {
	ctx := context.Background()
	store := memorystore.New()
	rec := New(store, WithLogger(quietLogger()))

	workout, err := store.CreateWorkout(ctx, "Leg Day")
	require.NoError(t, err)

	events := []remote.Event{{
		ID:     1,
		Action: domain.ActionAddExercise,
		Payload: mustEncode(t, &domain.AddExercisePayload{
			WorkoutClientID: workout.ClientID,
			ClientID:        "remote-exercise",
			ExerciseCode:    "squat",
			OrderIndex:      -1,
		}),
	}, {
		ID:     2,
		Action: domain.ActionAddSet,
		Payload: mustEncode(t, &domain.AddSetPayload{
			ExerciseClientID: "remote-exercise",
			ClientID:         "remote-set",
			Reps:             5,
		}),
	}}

	require.Equal(t, 2, rec.ApplyEvents(ctx, events))
	// Re-delivery after a crash before the watermark advanced.
	require.Equal(t, 0, rec.ApplyEvents(ctx, events))

	snapshot, err := store.FetchAll(ctx)
	require.NoError(t, err)
	require.Len(t, snapshot[0].Exercises, 1)
	require.Len(t, snapshot[0].Sets, 1)
	require.Equal(t, "remote-exercise", snapshot[0].Exercises[0].ClientID)
	require.Equal(t, "remote-set", snapshot[0].Sets[0].ClientID)
}

func TestApplyEventsUnknownActionSkipped(t *testing.T) {
	ctx := context.Background()
	store := memorystore.New()
	rec := New(store, WithLogger(quietLogger()))

	events := []remote.Event{
		{ID: 1, Action: domain.Action("workout-promoted"), Payload: json.RawMessage(`{}`)},
		{ID: 2, Action: domain.ActionCreateWorkout, Payload: mustEncode(t, &domain.CreateWorkoutPayload{ClientID: "c", Title: "kept"})},
	}

	// The unknown event must not block the one after it.
	require.Equal(t, 1, rec.ApplyEvents(ctx, events))

	snapshot, err := store.FetchAll(ctx)
	require.NoError(t, err)
	require.Len(t, snapshot, 1)
}

func TestApplyEventsMalformedPayloadSkipped(t *testing.T) {
	ctx := context.Background()
	store := memorystore.New()
	rec := New(store, WithLogger(quietLogger()))

	events := []remote.Event{
		{ID: 1, Action: domain.ActionUpdateTitle, Payload: json.RawMessage(`{"workout_id":"not-a-number"}`)},
	}
	require.Equal(t, 0, rec.ApplyEvents(ctx, events))
}

func TestWorkoutUpsertCreatesAndConverges(t *testing.T) {
	ctx := context.Background()
	store := memorystore.New()
	rec := New(store, WithLogger(quietLogger()))

	event := remote.Event{
		ID:     1,
		Action: domain.ActionWorkoutUpsert,
		Payload: json.RawMessage(`{
			"server_id": 501,
			"client_id": "remote-client",
			"title": "Server Workout",
			"status": "completed",
			"created_at": "2026-09-01T10:00:00Z",
			"updated_at": "2026-09-01T10:00:00Z",
			"deleted_at": null
		}`),
	}

	require.Equal(t, 1, rec.ApplyEvents(ctx, []remote.Event{event}))

	snapshot, err := store.FetchAll(ctx)
	require.NoError(t, err)
	require.Len(t, snapshot, 1)
	require.Equal(t, "Server Workout", snapshot[0].Workout.Title)
	require.Equal(t, domain.StatusCompleted, snapshot[0].Workout.Status)
	require.NotNil(t, snapshot[0].Workout.ServerID)
	require.EqualValues(t, 501, *snapshot[0].Workout.ServerID)
	require.Equal(t, "remote-client", snapshot[0].Workout.ClientID)

	// Re-delivery resolves by server_id and changes nothing.
	require.Equal(t, 0, rec.ApplyEvents(ctx, []remote.Event{event}))
	again, err := store.FetchAll(ctx)
	require.NoError(t, err)
	require.Len(t, again, 1)
}

func TestWorkoutUpsertUpdatesExistingByClientID(t *testing.T) {
	ctx := context.Background()
	store := memorystore.New()
	rec := New(store, WithLogger(quietLogger()))

	workout, err := store.CreateWorkout(ctx, "Local Title")
	require.NoError(t, err)

	payload := mustEncode(t, &domain.WorkoutSnapshotPayload{
		ServerID: 42,
		ClientID: workout.ClientID,
		Title:    "Server Title",
		Status:   string(domain.StatusDraft),
	})
	require.Equal(t, 1, rec.ApplyEvents(ctx, []remote.Event{{ID: 1, Action: domain.ActionWorkoutUpsert, Payload: payload}}))

	snapshot, err := store.FetchAll(ctx)
	require.NoError(t, err)
	require.Equal(t, "Server Title", snapshot[0].Workout.Title)
	require.EqualValues(t, 42, *snapshot[0].Workout.ServerID)
	// No duplicate was created.
	require.Len(t, snapshot, 1)
}

func TestWorkoutDeleteEvent(t *testing.T) {
	ctx := context.Background()
	store := memorystore.New()
	rec := New(store, WithLogger(quietLogger()))

	workout, err := store.CreateWorkout(ctx, "Doomed")
	require.NoError(t, err)
	require.NoError(t, store.SetServerID(ctx, domain.KindWorkout, workout.ClientID, 77))

	event := remote.Event{
		ID:      1,
		Action:  domain.ActionWorkoutDelete,
		Payload: json.RawMessage(`{"server_id":77,"client_id":"` + workout.ClientID + `"}`),
	}
	require.Equal(t, 1, rec.ApplyEvents(ctx, []remote.Event{event}))

	snapshot, err := store.FetchAll(ctx)
	require.NoError(t, err)
	require.Empty(t, snapshot)

	// Deleting an already-deleted workout is a no-op, and the snapshot never
	// resurrects it.
	require.Equal(t, 0, rec.ApplyEvents(ctx, []remote.Event{event}))
}

func TestCompletedWorkoutIsNeverRevived(t *testing.T) {
	ctx := context.Background()
	store := memorystore.New()
	rec := New(store, WithLogger(quietLogger()))

	workout, err := store.CreateWorkout(ctx, "Done")
	require.NoError(t, err)
	require.NoError(t, store.UpdateWorkoutStatus(ctx, workout.ID, domain.StatusCompleted))

	payload := mustEncode(t, &domain.WorkoutSnapshotPayload{
		ServerID: 5,
		ClientID: workout.ClientID,
		Title:    "Done",
		Status:   string(domain.StatusDraft),
	})
	rec.ApplyEvents(ctx, []remote.Event{{ID: 1, Action: domain.ActionWorkoutUpsert, Payload: payload}})

	snapshot, err := store.FetchAll(ctx)
	require.NoError(t, err)
	require.Equal(t, domain.StatusCompleted, snapshot[0].Workout.Status)
}
