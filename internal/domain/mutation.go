package domain

import (
	"encoding/json"
	"fmt"
)

// Action tags a mutation or remote event. The client-originated vocabulary is
// mirrored by the server; WorkoutUpsert and WorkoutDelete are only ever
// server-originated.
type Action string

const (
	ActionCreateWorkout      Action = "create-workout"
	ActionUpdateTitle        Action = "update-title"
	ActionCompleteWorkout    Action = "complete-workout"
	ActionDeleteWorkout      Action = "delete-workout"
	ActionAddExercise        Action = "add-exercise"
	ActionUpdateExercisePlan Action = "update-exercise-plan"
	ActionRemoveExercise     Action = "remove-exercise"
	ActionAddSet             Action = "add-set"
	ActionUpdateSet          Action = "update-set"
	ActionRemoveSet          Action = "remove-set"
	ActionShareWorkout       Action = "share-workout"
	ActionWorkoutUpsert      Action = "workout-upsert"
	ActionWorkoutDelete      Action = "workout-delete"
)

// MutationStatus is the outbox lifecycle of a pending mutation. Removal is the
// terminal state; failed entries stay eligible for the next flush.
type MutationStatus string

const (
	MutationPending MutationStatus = "pending"
	MutationFailed  MutationStatus = "failed"
)

// Payload is implemented by every per-action payload struct.
type Payload interface {
	PayloadAction() Action
}

// Mutation is one outbox entry: the durable record of a local write awaiting
// server acknowledgement.
type Mutation struct {
	QueueID   int64
	Act       Action
	Payload   json.RawMessage
	CreatedAt int64
	Status    MutationStatus
	LastError string
}

// DecodePayload unmarshals m.Payload into its typed struct.
func (m Mutation) DecodePayload() (Payload, error) {
	return DecodePayload(m.Act, m.Payload)
}

// CreateWorkoutPayload carries everything the server needs to materialise the
// workout, plus the client_id used to map the acknowledged server_id back.
type CreateWorkoutPayload struct {
	WorkoutID int64  `json:"workout_id"`
	ClientID  string `json:"client_id"`
	Title     string `json:"title"`
	Status    string `json:"status"`
	CreatedAt int64  `json:"created_at"`
	UpdatedAt int64  `json:"updated_at"`
}

func (CreateWorkoutPayload) PayloadAction() Action { return ActionCreateWorkout }

// UpdateTitlePayload renames a workout. The client_id is the cross-device key;
// the local id only resolves same-device replays.
type UpdateTitlePayload struct {
	WorkoutID       int64  `json:"workout_id"`
	WorkoutClientID string `json:"workout_client_id"`
	Title           string `json:"title"`
	UpdatedAt       int64  `json:"updated_at"`
}

func (UpdateTitlePayload) PayloadAction() Action { return ActionUpdateTitle }

// CompleteWorkoutPayload marks a workout completed.
type CompleteWorkoutPayload struct {
	WorkoutID       int64  `json:"workout_id"`
	WorkoutClientID string `json:"workout_client_id"`
}

func (CompleteWorkoutPayload) PayloadAction() Action { return ActionCompleteWorkout }

// DeleteWorkoutPayload soft-deletes a workout and, by cascade, its children.
type DeleteWorkoutPayload struct {
	WorkoutID       int64  `json:"workout_id"`
	WorkoutClientID string `json:"workout_client_id"`
}

func (DeleteWorkoutPayload) PayloadAction() Action { return ActionDeleteWorkout }

// AddExercisePayload inserts an exercise into a workout.
type AddExercisePayload struct {
	WorkoutID       int64  `json:"workout_id"`
	WorkoutClientID string `json:"workout_client_id"`
	ClientID        string `json:"client_id"`
	ExerciseCode    string `json:"exercise_code"`
	OrderIndex      int    `json:"order_index"`
	PlannedSets     *int   `json:"planned_sets"`
}

func (AddExercisePayload) PayloadAction() Action { return ActionAddExercise }

// UpdateExercisePlanPayload changes the planned set count of an exercise.
type UpdateExercisePlanPayload struct {
	ExerciseID       int64  `json:"exercise_id"`
	ExerciseClientID string `json:"exercise_client_id"`
	PlannedSets      *int   `json:"planned_sets"`
}

func (UpdateExercisePlanPayload) PayloadAction() Action { return ActionUpdateExercisePlan }

// RemoveExercisePayload removes an exercise and cascades to its sets.
type RemoveExercisePayload struct {
	ExerciseID       int64  `json:"exercise_id"`
	ExerciseClientID string `json:"exercise_client_id"`
}

func (RemoveExercisePayload) PayloadAction() Action { return ActionRemoveExercise }

// AddSetPayload inserts a set under an exercise.
type AddSetPayload struct {
	ExerciseID       int64    `json:"exercise_id"`
	ExerciseClientID string   `json:"exercise_client_id"`
	ClientID         string   `json:"client_id"`
	Reps             int      `json:"reps"`
	Weight           *float64 `json:"weight"`
	RPE              *float64 `json:"rpe"`
}

func (AddSetPayload) PayloadAction() Action { return ActionAddSet }

// SetUpdateFields is the wire form of a partial set update. Absent keys leave
// the field untouched; explicit nulls clear nullable columns.
type SetUpdateFields struct {
	Reps   *int      `json:"reps,omitempty"`
	Weight **float64 `json:"weight,omitempty"`
	RPE    **float64 `json:"rpe,omitempty"`
	DoneAt **int64   `json:"done_at,omitempty"`
}

// Changes converts the wire form into the store's partial-update type.
func (f SetUpdateFields) Changes() SetChanges {
	return SetChanges{Reps: f.Reps, Weight: f.Weight, RPE: f.RPE, DoneAt: f.DoneAt}
}

// UpdateSetPayload applies a partial update to a set.
type UpdateSetPayload struct {
	SetID       int64           `json:"set_id"`
	SetClientID string          `json:"set_client_id"`
	Updates     SetUpdateFields `json:"updates"`
}

func (UpdateSetPayload) PayloadAction() Action { return ActionUpdateSet }

// RemoveSetPayload removes a set.
type RemoveSetPayload struct {
	SetID       int64  `json:"set_id"`
	SetClientID string `json:"set_client_id"`
}

func (RemoveSetPayload) PayloadAction() Action { return ActionRemoveSet }

// ShareWorkoutPayload publishes a workout to the community feed. Shares go
// through a dedicated endpoint with their own idempotency key, so the workout
// is addressed by client_id rather than queue position.
type ShareWorkoutPayload struct {
	WorkoutClientID string `json:"workout_id"`
	UserID          string `json:"user_id"`
}

func (ShareWorkoutPayload) PayloadAction() Action { return ActionShareWorkout }

// WorkoutSnapshotPayload is the server-authoritative workout state carried by
// workout-upsert and workout-delete events. Timestamps are ISO-8601 strings on
// the wire, matching the server's serialisation.
type WorkoutSnapshotPayload struct {
	ServerID  int64   `json:"server_id"`
	ClientID  string  `json:"client_id"`
	Title     string  `json:"title"`
	Status    string  `json:"status"`
	CreatedAt string  `json:"created_at"`
	UpdatedAt string  `json:"updated_at"`
	DeletedAt *string `json:"deleted_at"`
	deleted   bool
}

func (p WorkoutSnapshotPayload) PayloadAction() Action {
	if p.deleted {
		return ActionWorkoutDelete
	}
	return ActionWorkoutUpsert
}

// payloadFactories maps each action tag to its payload constructor. Decoding
// dispatches here instead of string-switching at every call site.
var payloadFactories = map[Action]func() Payload{
	ActionCreateWorkout:      func() Payload { return &CreateWorkoutPayload{} },
	ActionUpdateTitle:        func() Payload { return &UpdateTitlePayload{} },
	ActionCompleteWorkout:    func() Payload { return &CompleteWorkoutPayload{} },
	ActionDeleteWorkout:      func() Payload { return &DeleteWorkoutPayload{} },
	ActionAddExercise:        func() Payload { return &AddExercisePayload{} },
	ActionUpdateExercisePlan: func() Payload { return &UpdateExercisePlanPayload{} },
	ActionRemoveExercise:     func() Payload { return &RemoveExercisePayload{} },
	ActionAddSet:             func() Payload { return &AddSetPayload{} },
	ActionUpdateSet:          func() Payload { return &UpdateSetPayload{} },
	ActionRemoveSet:          func() Payload { return &RemoveSetPayload{} },
	ActionShareWorkout:       func() Payload { return &ShareWorkoutPayload{} },
	ActionWorkoutUpsert:      func() Payload { return &WorkoutSnapshotPayload{} },
	ActionWorkoutDelete:      func() Payload { return &WorkoutSnapshotPayload{deleted: true} },
}

// KnownAction reports whether the tag has a registered payload shape.
func KnownAction(action Action) bool {
	_, ok := payloadFactories[action]
	return ok
}

// CreatesEntity reports whether a push acknowledgement for this action carries
// a server_id that must be mapped back onto a local entity.
func CreatesEntity(action Action) bool {
	switch action {
	case ActionCreateWorkout, ActionAddExercise, ActionAddSet:
		return true
	default:
		return false
	}
}

// EntityKindFor returns the entity table targeted by an entity-creating action.
func EntityKindFor(action Action) (EntityKind, bool) {
	switch action {
	case ActionCreateWorkout:
		return KindWorkout, true
	case ActionAddExercise:
		return KindExercise, true
	case ActionAddSet:
		return KindSet, true
	default:
		return "", false
	}
}

// DecodePayload unmarshals raw into the typed payload for the given action.
func DecodePayload(action Action, raw json.RawMessage) (Payload, error) {
	factory, ok := payloadFactories[action]
	if !ok {
		return nil, fmt.Errorf("unknown action: %s", action)
	}
	payload := factory()
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, payload); err != nil {
			return nil, fmt.Errorf("decode %s payload: %w", action, err)
		}
	}
	return payload, nil
}

// EncodePayload marshals a typed payload for storage or transmission.
func EncodePayload(payload Payload) (json.RawMessage, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", payload.PayloadAction(), err)
	}
	return raw, nil
}
