package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecodePayloadRoundTrip(t *testing.T) {
	planned := 3
	original := &AddExercisePayload{
		WorkoutID:       7,
		WorkoutClientID: "w-client",
		ClientID:        "e-client",
		ExerciseCode:    "squat",
		OrderIndex:      -2,
		PlannedSets:     &planned,
	}

	raw, err := EncodePayload(original)
	require.NoError(t, err)

	decoded, err := DecodePayload(ActionAddExercise, raw)
	require.NoError(t, err)
	require.Equal(t, original, decoded)
}

func TestDecodePayloadUnknownAction(t *testing.T) {
	_, err := DecodePayload(Action("promote-workout"), json.RawMessage(`{}`))
	require.Error(t, err)
	require.False(t, KnownAction(Action("promote-workout")))
}

func TestSnapshotPayloadActionFollowsDeleteFlag(t *testing.T) {
	upsert, err := DecodePayload(ActionWorkoutUpsert, json.RawMessage(`{"server_id":5,"client_id":"c"}`))
	require.NoError(t, err)
	require.Equal(t, ActionWorkoutUpsert, upsert.PayloadAction())

	deleted, err := DecodePayload(ActionWorkoutDelete, json.RawMessage(`{"server_id":5,"client_id":"c"}`))
	require.NoError(t, err)
	require.Equal(t, ActionWorkoutDelete, deleted.PayloadAction())
}

func TestCreatesEntityVocabulary(t *testing.T) {
	creating := []Action{ActionCreateWorkout, ActionAddExercise, ActionAddSet}
	for _, action := range creating {
		require.True(t, CreatesEntity(action), action)
		kind, ok := EntityKindFor(action)
		require.True(t, ok, action)
		require.NotEmpty(t, kind)
	}

	require.False(t, CreatesEntity(ActionUpdateTitle))
	_, ok := EntityKindFor(ActionUpdateTitle)
	require.False(t, ok)
}

func TestUpdateSetPayloadDistinguishesAbsentFromNull(t *testing.T) {
	decoded, err := DecodePayload(ActionUpdateSet, json.RawMessage(`{"set_id":4,"updates":{"reps":8,"weight":null}}`))
	require.NoError(t, err)

	payload := decoded.(*UpdateSetPayload)
	changes := payload.Updates.Changes()
	require.NotNil(t, changes.Reps)
	require.Equal(t, 8, *changes.Reps)
	require.NotNil(t, changes.Weight)
	require.Nil(t, *changes.Weight)
	require.Nil(t, changes.RPE)
	require.Nil(t, changes.DoneAt)
}

func TestStatusTransitions(t *testing.T) {
	require.True(t, StatusDraft.CanTransitionTo(StatusInProgress))
	require.True(t, StatusDraft.CanTransitionTo(StatusCompleted))
	require.True(t, StatusInProgress.CanTransitionTo(StatusCompleted))
	require.True(t, StatusCompleted.CanTransitionTo(StatusCompleted))

	require.False(t, StatusCompleted.CanTransitionTo(StatusDraft))
	require.False(t, StatusCompleted.CanTransitionTo(StatusInProgress))
	require.False(t, StatusInProgress.CanTransitionTo(StatusDraft))
}
