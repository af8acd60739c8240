// Package reconcile applies server state back onto the local store: push
// acknowledgements that bind client_ids to server_ids, and pulled events that
// replay changes made by other devices.
package reconcile

import (
	"context"
	"errors"
	"log"

	"example.com/workoutsync/internal/domain"
	"example.com/workoutsync/internal/observability"
	"example.com/workoutsync/internal/persistence"
	"example.com/workoutsync/internal/remote"
)

// Option configures optional behaviour for the Reconciler.
type Option func(*Reconciler)

// WithLogger overrides the logger used to report skipped events.
func WithLogger(logger *log.Logger) Option {
	return func(r *Reconciler) {
		r.logger = logger
	}
}

// Reconciler folds server responses into the entity store. Every apply path
// is idempotent: replaying an event or an acknowledgement leaves the store
// unchanged.
type Reconciler struct {
	store  persistence.EntityStore
	logger *log.Logger
}

// New constructs a Reconciler over the given entity store.
func New(store persistence.EntityStore, opts ...Option) *Reconciler {
	r := &Reconciler{
		store:  store,
		logger: log.New(log.Writer(), "[reconcile] ", log.LstdFlags),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ApplyAcks binds the server identities from a push response to the local
// entities that created them. Acks for non-creating actions carry no
// server_id and are ignored.
func (r *Reconciler) ApplyAcks(ctx context.Context, batch []domain.Mutation, acks []remote.PushAck) error {
	byQueueID := make(map[int64]domain.Mutation, len(batch))
	for _, m := range batch {
		byQueueID[m.QueueID] = m
	}

	for _, ack := range acks {
		if ack.ServerID <= 0 {
			continue
		}
		mutation, ok := byQueueID[ack.QueueID]
		if !ok || !domain.CreatesEntity(mutation.Act) {
			continue
		}
		kind, _ := domain.EntityKindFor(mutation.Act)
		clientID, err := creatingClientID(mutation)
		if err != nil {
			r.logger.Printf("ack for queue_id=%d: %v", ack.QueueID, err)
			continue
		}
		if clientID == "" {
			continue
		}
		if err := r.store.SetServerID(ctx, kind, clientID, ack.ServerID); err != nil {
			return err
		}
	}
	return nil
}

// creatingClientID extracts the client_id from an entity-creating mutation.
func creatingClientID(m domain.Mutation) (string, error) {
	payload, err := m.DecodePayload()
	if err != nil {
		return "", err
	}
	switch p := payload.(type) {
	case *domain.CreateWorkoutPayload:
		return p.ClientID, nil
	case *domain.AddExercisePayload:
		return p.ClientID, nil
	case *domain.AddSetPayload:
		return p.ClientID, nil
	default:
		return "", nil
	}
}

// ApplyEvents replays pulled server events against the local store in order.
// Events that cannot be applied (unknown action, malformed payload, missing
// target) are logged and skipped so one bad event never blocks the
// watermark. Returns the number of events that changed local state.
func (r *Reconciler) ApplyEvents(ctx context.Context, events []remote.Event) int {
	applied := 0
	for _, event := range events {
		changed, err := r.applyEvent(ctx, event)
		if err != nil {
			r.logger.Printf("skipping event id=%d action=%s: %v", event.ID, event.Action, err)
			observability.RecordEventSkipped(string(event.Action))
			continue
		}
		if changed {
			applied++
			observability.RecordEventApplied(string(event.Action))
		}
	}
	return applied
}

func (r *Reconciler) applyEvent(ctx context.Context, event remote.Event) (bool, error) {
	if !domain.KnownAction(event.Action) {
		r.logger.Printf("unhandled event action %q (id=%d)", event.Action, event.ID)
		observability.RecordEventSkipped(string(event.Action))
		return false, nil
	}
	payload, err := domain.DecodePayload(event.Action, event.Payload)
	if err != nil {
		return false, err
	}

	switch p := payload.(type) {
	case *domain.CreateWorkoutPayload:
		return r.applyCreateWorkout(ctx, p)
	case *domain.UpdateTitlePayload:
		id, ok, err := r.resolve(ctx, domain.KindWorkout, p.WorkoutClientID, p.WorkoutID)
		if err != nil || !ok {
			return false, err
		}
		return true, r.store.UpdateWorkoutTitle(ctx, id, p.Title)
	case *domain.CompleteWorkoutPayload:
		id, ok, err := r.resolve(ctx, domain.KindWorkout, p.WorkoutClientID, p.WorkoutID)
		if err != nil || !ok {
			return false, err
		}
		return true, ignoreTransition(r.store.UpdateWorkoutStatus(ctx, id, domain.StatusCompleted))
	case *domain.DeleteWorkoutPayload:
		id, ok, err := r.resolve(ctx, domain.KindWorkout, p.WorkoutClientID, p.WorkoutID)
		if err != nil || !ok {
			return false, err
		}
		return true, r.store.DeleteWorkout(ctx, id)
	case *domain.AddExercisePayload:
		return r.applyAddExercise(ctx, p)
	case *domain.UpdateExercisePlanPayload:
		id, ok, err := r.resolve(ctx, domain.KindExercise, p.ExerciseClientID, p.ExerciseID)
		if err != nil || !ok {
			return false, err
		}
		return true, r.store.UpdateExercisePlan(ctx, id, p.PlannedSets)
	case *domain.RemoveExercisePayload:
		id, ok, err := r.resolve(ctx, domain.KindExercise, p.ExerciseClientID, p.ExerciseID)
		if err != nil || !ok {
			return false, err
		}
		return true, r.store.RemoveExercise(ctx, id)
	case *domain.AddSetPayload:
		return r.applyAddSet(ctx, p)
	case *domain.UpdateSetPayload:
		id, ok, err := r.resolve(ctx, domain.KindSet, p.SetClientID, p.SetID)
		if err != nil || !ok {
			return false, err
		}
		return true, r.store.UpdateSet(ctx, id, p.Updates.Changes())
	case *domain.RemoveSetPayload:
		id, ok, err := r.resolve(ctx, domain.KindSet, p.SetClientID, p.SetID)
		if err != nil || !ok {
			return false, err
		}
		return true, r.store.RemoveSet(ctx, id)
	case *domain.WorkoutSnapshotPayload:
		return r.applySnapshot(ctx, p)
	default:
		// share-workout never comes back as an event.
		return false, nil
	}
}

// resolve maps an event target to a local row id. The client_id is
// authoritative: when present it must match a live local entity, and the
// numeric id is only consulted for events produced before client ids were
// attached. ok is false when no live target exists, which is the normal
// outcome for events about entities deleted locally.
func (r *Reconciler) resolve(ctx context.Context, kind domain.EntityKind, clientID string, localID int64) (int64, bool, error) {
	if clientID != "" {
		return r.store.LookupLocalID(ctx, kind, clientID)
	}
	if localID > 0 {
		return localID, true, nil
	}
	return 0, false, nil
}

func (r *Reconciler) applyCreateWorkout(ctx context.Context, p *domain.CreateWorkoutPayload) (bool, error) {
	exists, err := r.store.HasClientID(ctx, domain.KindWorkout, p.ClientID)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}
	created, err := r.store.CreateWorkout(ctx, p.Title)
	if err != nil {
		return false, err
	}
	return true, r.store.AdoptClientID(ctx, domain.KindWorkout, created.ID, p.ClientID)
}

func (r *Reconciler) applyAddExercise(ctx context.Context, p *domain.AddExercisePayload) (bool, error) {
	exists, err := r.store.HasClientID(ctx, domain.KindExercise, p.ClientID)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}
	workoutID, ok, err := r.resolve(ctx, domain.KindWorkout, p.WorkoutClientID, p.WorkoutID)
	if err != nil || !ok {
		return false, err
	}
	created, err := r.store.AddExercise(ctx, workoutID, p.ExerciseCode, p.OrderIndex, p.PlannedSets)
	if err != nil {
		return false, err
	}
	return true, r.store.AdoptClientID(ctx, domain.KindExercise, created.ID, p.ClientID)
}

func (r *Reconciler) applyAddSet(ctx context.Context, p *domain.AddSetPayload) (bool, error) {
	exists, err := r.store.HasClientID(ctx, domain.KindSet, p.ClientID)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}
	exerciseID, ok, err := r.resolve(ctx, domain.KindExercise, p.ExerciseClientID, p.ExerciseID)
	if err != nil || !ok {
		return false, err
	}
	created, err := r.store.AddSet(ctx, exerciseID, p.Reps, p.Weight, p.RPE)
	if err != nil {
		return false, err
	}
	return true, r.store.AdoptClientID(ctx, domain.KindSet, created.ID, p.ClientID)
}

// applySnapshot folds a server-authoritative workout snapshot into the local
// store. The snapshot wins on title and status; deletion in either direction
// is final.
func (r *Reconciler) applySnapshot(ctx context.Context, p *domain.WorkoutSnapshotPayload) (bool, error) {
	if p.ServerID <= 0 {
		return false, nil
	}
	deleted := p.PayloadAction() == domain.ActionWorkoutDelete || p.DeletedAt != nil

	if p.ClientID != "" {
		if err := r.store.SetServerID(ctx, domain.KindWorkout, p.ClientID, p.ServerID); err != nil {
			return false, err
		}
	}

	workout, err := r.store.FindWorkoutByIdentity(ctx, p.ServerID, p.ClientID)
	if err != nil {
		return false, err
	}

	if workout == nil {
		if deleted {
			return false, nil
		}
		created, err := r.store.CreateWorkoutWithServerID(ctx, p.Title, p.ServerID)
		if err != nil {
			return false, err
		}
		if err := r.store.AdoptClientID(ctx, domain.KindWorkout, created.ID, p.ClientID); err != nil {
			return false, err
		}
		if status := domain.WorkoutStatus(p.Status); status != "" && status != created.Status {
			if err := ignoreTransition(r.store.UpdateWorkoutStatus(ctx, created.ID, status)); err != nil {
				return false, err
			}
		}
		return true, nil
	}

	if deleted {
		return true, r.store.DeleteWorkout(ctx, workout.ID)
	}

	changed := false
	if p.Title != "" && p.Title != workout.Title {
		if err := r.store.UpdateWorkoutTitle(ctx, workout.ID, p.Title); err != nil {
			return changed, err
		}
		changed = true
	}
	if status := domain.WorkoutStatus(p.Status); status != "" && status != workout.Status {
		if err := ignoreTransition(r.store.UpdateWorkoutStatus(ctx, workout.ID, status)); err != nil {
			return changed, err
		}
		changed = true
	}
	return changed, nil
}

// ignoreTransition drops invalid status transitions: a completed workout
// stays completed no matter what an older event says.
func ignoreTransition(err error) error {
	if errors.Is(err, domain.ErrInvalidStatusTransition) {
		return nil
	}
	return err
}
