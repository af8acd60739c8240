// Package persistence defines the storage contracts for the entity store, the
// mutation outbox, and the pull watermark, plus the backend selector that
// falls back to the in-memory implementation when the durable store cannot be
// opened.
package persistence

import (
	"context"
	"encoding/json"
	"log"

	"example.com/workoutsync/internal/domain"
)

// EntityStore is the relational store of workouts, exercises, and sets. All
// operations are local and synchronous; operations addressing a missing id
// are no-ops so that outbox replays tolerate races with concurrent deletion.
type EntityStore interface {
	CreateWorkout(ctx context.Context, title string) (domain.Workout, error)
	CreateWorkoutWithServerID(ctx context.Context, title string, serverID int64) (domain.Workout, error)
	UpdateWorkoutTitle(ctx context.Context, id int64, title string) error
	UpdateWorkoutStatus(ctx context.Context, id int64, status domain.WorkoutStatus) error
	DeleteWorkout(ctx context.Context, id int64) error

	AddExercise(ctx context.Context, workoutID int64, exerciseCode string, orderIndex int, plannedSets *int) (domain.WorkoutExercise, error)
	UpdateExercisePlan(ctx context.Context, id int64, plannedSets *int) error
	RemoveExercise(ctx context.Context, id int64) error
	MinExerciseOrder(ctx context.Context, workoutID int64) (min int, ok bool, err error)

	AddSet(ctx context.Context, exerciseID int64, reps int, weight, rpe *float64) (domain.WorkoutSet, error)
	UpdateSet(ctx context.Context, id int64, changes domain.SetChanges) error
	RemoveSet(ctx context.Context, id int64) error

	FetchAll(ctx context.Context) ([]domain.WorkoutWithRelations, error)

	SetServerID(ctx context.Context, kind domain.EntityKind, clientID string, serverID int64) error
	HasClientID(ctx context.Context, kind domain.EntityKind, clientID string) (bool, error)
	LookupLocalID(ctx context.Context, kind domain.EntityKind, clientID string) (int64, bool, error)
	ClientIDOf(ctx context.Context, kind domain.EntityKind, localID int64) (string, bool, error)
	AdoptClientID(ctx context.Context, kind domain.EntityKind, localID int64, clientID string) error
	FindWorkoutByIdentity(ctx context.Context, serverID int64, clientID string) (*domain.Workout, error)
}

// Queue is the durable mutation outbox, consumed in FIFO order. Entries are
// removed only after the server acknowledged them; MarkFailed keeps the entry
// eligible for the next flush.
type Queue interface {
	Enqueue(ctx context.Context, action domain.Action, payload json.RawMessage, createdAt int64) (int64, error)
	PeekBatch(ctx context.Context, limit int) ([]domain.Mutation, error)
	MarkCompleted(ctx context.Context, queueID int64) error
	MarkFailed(ctx context.Context, queueID int64, cause string) error
	Remove(ctx context.Context, queueID int64) error
	Count(ctx context.Context) (int, error)
}

// Watermark stores the epoch-millis cursor of the last successfully applied
// pull. Advance never moves it backwards.
type Watermark interface {
	LastPulledAt(ctx context.Context) (int64, error)
	AdvanceWatermark(ctx context.Context, ts int64) error
}

// Backend bundles the three storage contracts behind one handle.
type Backend interface {
	EntityStore
	Queue
	Watermark
	Close() error
}

// Opener opens a durable backend at a path. Wired to the SQLite constructor
// by the caller; indirected so this package stays driver-free.
type Opener func(path string) (Backend, error)

// Open returns a durable backend at path, or the in-memory fallback when path
// is empty or the durable store cannot be opened. Callers see identical
// semantics either way, minus durability across restarts.
func Open(path string, durable Opener, fallback func() Backend) Backend {
	if path == "" {
		return fallback()
	}
	backend, err := durable(path)
	if err != nil {
		log.Printf("[persistence] durable store unavailable (%v), using in-memory fallback", err)
		return fallback()
	}
	return backend
}
