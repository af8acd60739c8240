// Package domain defines the entities and mutation vocabulary shared by the
// local store, the outbox, and the sync machinery.
package domain

import "errors"

var (
	// ErrInvalidStatusTransition is returned when a workout status would move
	// backwards (completed workouts are never revived).
	ErrInvalidStatusTransition = errors.New("invalid workout status transition")
	// ErrWorkoutNotFound is returned by read paths that require an existing workout.
	ErrWorkoutNotFound = errors.New("workout not found")
	// ErrInvalidReps rejects negative rep counts before they reach the store.
	ErrInvalidReps = errors.New("reps must be >= 0")
)

// FallbackWorkoutTitle replaces blank titles so the server never sees an
// empty one.
const FallbackWorkoutTitle = "New workout"

// WorkoutStatus is the lifecycle state of a workout. Transitions only move
// forward: draft -> in_progress -> completed.
type WorkoutStatus string

const (
	StatusDraft      WorkoutStatus = "draft"
	StatusInProgress WorkoutStatus = "in_progress"
	StatusCompleted  WorkoutStatus = "completed"
)

// CanTransitionTo reports whether s may move to next.
func (s WorkoutStatus) CanTransitionTo(next WorkoutStatus) bool {
	if s == next {
		return true
	}
	switch s {
	case StatusDraft:
		return next == StatusInProgress || next == StatusCompleted
	case StatusInProgress:
		return next == StatusCompleted
	default:
		return false
	}
}

// EntityKind discriminates the three synced entity tables.
type EntityKind string

const (
	KindWorkout  EntityKind = "workout"
	KindExercise EntityKind = "exercise"
	KindSet      EntityKind = "set"
)

// Workout is a training session. The identity triple is shared by all synced
// entities: ID is process-local, ClientID is the stable cross-device token,
// ServerID is assigned once the server accepts the entity.
type Workout struct {
	ID        int64
	ClientID  string
	ServerID  *int64
	Title     string
	Status    WorkoutStatus
	CreatedAt int64
	UpdatedAt int64
	DeletedAt *int64
}

// WorkoutExercise references a catalog exercise by its opaque code. Lower
// order_index sorts first; new exercises are inserted below the current minimum.
type WorkoutExercise struct {
	ID           int64
	ClientID     string
	ServerID     *int64
	WorkoutID    int64
	ExerciseCode string
	OrderIndex   int
	PlannedSets  *int
	DeletedAt    *int64
}

// WorkoutSet is one performed or planned set. DoneAt nil means planned.
type WorkoutSet struct {
	ID         int64
	ClientID   string
	ServerID   *int64
	ExerciseID int64
	Reps       int
	Weight     *float64
	RPE        *float64
	DoneAt     *int64
	DeletedAt  *int64
}

// WorkoutWithRelations is the snapshot shape returned by FetchAll. Callers
// must treat it as immutable and re-fetch after mutations.
type WorkoutWithRelations struct {
	Workout   Workout
	Exercises []WorkoutExercise
	Sets      []WorkoutSet
}

// SetChanges is a partial update for a workout set. Nil fields are untouched;
// the inner pointer clears or sets the nullable column.
type SetChanges struct {
	Reps   *int
	Weight **float64
	RPE    **float64
	DoneAt **int64
}

// Empty reports whether the update would touch nothing.
func (c SetChanges) Empty() bool {
	return c.Reps == nil && c.Weight == nil && c.RPE == nil && c.DoneAt == nil
}
