// Package engine is the sync orchestrator: it owns the optimistic write path
// (apply locally, record the intent in the outbox), drains the outbox toward
// the server in bounded rounds, and folds server state back through the
// reconciler. Callers get local ids immediately; transport failures are
// retried on the next trigger and never surface through the write path.
package engine

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"example.com/workoutsync/internal/domain"
	"example.com/workoutsync/internal/observability"
	"example.com/workoutsync/internal/persistence"
	"example.com/workoutsync/internal/reconcile"
	"example.com/workoutsync/internal/remote"
)

// State is the orchestrator's current activity, surfaced for status
// reporting only.
type State string

const (
	StateIdle     State = "idle"
	StatePulling  State = "pulling"
	StateFlushing State = "flushing"
)

const (
	// DefaultBatchSize is the number of outbox entries pushed per round.
	DefaultBatchSize = 20
	// DefaultMaxRounds caps outbox drain rounds per flush invocation.
	DefaultMaxRounds = 5
)

// Pusher submits a mutation batch.
type Pusher interface {
	Push(ctx context.Context, batch []remote.PushMutation) (*remote.PushResponse, error)
}

// Puller fetches server events past a watermark.
type Puller interface {
	Pull(ctx context.Context, since int64) (*remote.PullResponse, error)
}

// Sharer publishes a single workout through the dedicated endpoint.
type Sharer interface {
	ShareWorkout(ctx context.Context, workoutClientID, userID string) (*remote.ShareResponse, error)
}

// API is the remote surface the engine drives. *remote.Client satisfies it.
type API interface {
	Pusher
	Puller
	Sharer
}

// Option configures optional behaviour for the Engine.
type Option func(*Engine)

// WithLogger overrides the logger used for sync progress and failures.
func WithLogger(logger *log.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithBatchSize overrides the outbox batch size.
func WithBatchSize(size int) Option {
	return func(e *Engine) {
		if size > 0 {
			e.batchSize = size
		}
	}
}

// WithMaxRounds overrides the flush round cap.
func WithMaxRounds(rounds int) Option {
	return func(e *Engine) {
		if rounds > 0 {
			e.maxRounds = rounds
		}
	}
}

// ShareOutcome reports how a share request was handled: directly, or queued
// for a later flush.
type ShareOutcome struct {
	Queued  bool
	ShareID string
}

// Engine wires the entity store, the outbox, the watermark, and the remote
// API into one control loop.
type Engine struct {
	store  persistence.EntityStore
	queue  persistence.Queue
	marks  persistence.Watermark
	api    API
	rec    *reconcile.Reconciler
	logger *log.Logger
	userID string

	batchSize int
	maxRounds int

	// writeMu serializes local mutations so outbox order reflects
	// application order. flushMu serializes drain rounds; the two are never
	// held together, so flushes run concurrently with new writes.
	writeMu sync.Mutex
	flushMu sync.Mutex
	flushWG sync.WaitGroup

	online atomic.Bool

	stateMu sync.Mutex
	state   State
}

// New constructs an Engine. userID identifies the local user on the share
// endpoint.
func New(store persistence.EntityStore, queue persistence.Queue, marks persistence.Watermark, api API, userID string, opts ...Option) *Engine {
	e := &Engine{
		store:     store,
		queue:     queue,
		marks:     marks,
		api:       api,
		rec:       reconcile.New(store),
		logger:    log.New(log.Writer(), "[engine] ", log.LstdFlags),
		userID:    userID,
		batchSize: DefaultBatchSize,
		maxRounds: DefaultMaxRounds,
		state:     StateIdle,
	}
	e.online.Store(true)
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// State returns the orchestrator's current activity.
func (e *Engine) State() State {
	e.stateMu.Lock()
	defer e.stateMu.Unlock()
	return e.state
}

func (e *Engine) setState(s State) {
	e.stateMu.Lock()
	e.state = s
	e.stateMu.Unlock()
}

// Start runs the bootstrap sequence: fold in remote changes, then drain
// whatever the outbox accumulated while the process was down. Errors are
// logged, not returned; an unreachable server at startup is the normal
// offline case.
func (e *Engine) Start(ctx context.Context) {
	e.refreshPendingCount(ctx)
	if err := e.pull(ctx); err != nil {
		e.logger.Printf("bootstrap pull failed: %v", err)
	}
	e.Flush(ctx)
}

// SetOnline records a connectivity transition. Going online triggers an
// asynchronous pull-then-flush.
func (e *Engine) SetOnline(online bool) {
	was := e.online.Swap(online)
	if online && !was {
		go func() {
			if err := e.Refresh(context.Background()); err != nil {
				e.logger.Printf("reconnect sync failed: %v", err)
			}
		}()
	}
}

// Refresh forces an immediate pull-then-flush cycle, the pull-to-refresh
// path.
func (e *Engine) Refresh(ctx context.Context) error {
	if err := e.pull(ctx); err != nil {
		return err
	}
	e.Flush(ctx)
	return nil
}

// Workouts returns the current local snapshot.
// Wait blocks until the background flushes kicked by local writes have
// finished. Callers shut the store down only after this returns.
func (e *Engine) Wait() {
	e.flushWG.Wait()
}

func (e *Engine) Workouts(ctx context.Context) ([]domain.WorkoutWithRelations, error) {
	return e.store.FetchAll(ctx)
}

// PendingCount returns the number of mutations awaiting acknowledgement.
func (e *Engine) PendingCount(ctx context.Context) (int, error) {
	count, err := e.queue.Count(ctx)
	if err != nil {
		return 0, err
	}
	observability.RecordPendingMutations(count)
	return count, nil
}

func (e *Engine) refreshPendingCount(ctx context.Context) {
	if _, err := e.PendingCount(ctx); err != nil {
		e.logger.Printf("pending count: %v", err)
	}
}

func nowMillis() int64 {
	return time.Now().UnixMilli()
}

// perform is the single control path for every local write: record the
// intent, apply optimistically, drop the record if the local apply fails,
// then kick a best-effort flush in the background. The caller gets its local
// identifiers back without waiting on the network; transport problems never
// reach it. Local-store failures do, synchronously.
func (e *Engine) perform(ctx context.Context, payload domain.Payload, apply func(context.Context) error) error {
	raw, err := domain.EncodePayload(payload)
	if err != nil {
		return err
	}

	queueID, err := e.queue.Enqueue(ctx, payload.PayloadAction(), raw, nowMillis())
	if err != nil {
		return err
	}
	e.refreshPendingCount(ctx)

	if err := apply(ctx); err != nil {
		if removeErr := e.queue.Remove(ctx, queueID); removeErr != nil {
			e.logger.Printf("remove queue_id=%d after failed apply: %v", queueID, removeErr)
		}
		e.refreshPendingCount(ctx)
		return err
	}

	e.refreshPendingCount(ctx)
	e.flushWG.Add(1)
	go func() {
		defer e.flushWG.Done()
		e.Flush(context.Background())
	}()
	return nil
}

// CreateWorkout creates a draft workout. Blank titles get a fallback so the
// server never sees an empty one.
func (e *Engine) CreateWorkout(ctx context.Context, title string) (domain.Workout, error) {
	e.writeMu.Lock()
	defer e.writeMu.Unlock()

	title = strings.TrimSpace(title)
	if title == "" {
		title = domain.FallbackWorkoutTitle
	}

	clientID := uuid.NewString()
	now := nowMillis()
	payload := &domain.CreateWorkoutPayload{
		ClientID:  clientID,
		Title:     title,
		Status:    string(domain.StatusDraft),
		CreatedAt: now,
		UpdatedAt: now,
	}

	var created domain.Workout
	err := e.perform(ctx, payload, func(ctx context.Context) error {
		workout, err := e.store.CreateWorkout(ctx, title)
		if err != nil {
			return err
		}
		// The payload's client_id was minted before the enqueue; stamp it
		// onto the row so acknowledgements resolve.
		if err := e.store.AdoptClientID(ctx, domain.KindWorkout, workout.ID, clientID); err != nil {
			return err
		}
		workout.ClientID = clientID
		created = workout
		return nil
	})
	return created, err
}

// UpdateTitle renames a workout.
func (e *Engine) UpdateTitle(ctx context.Context, workoutID int64, title string) error {
	e.writeMu.Lock()
	defer e.writeMu.Unlock()

	title = strings.TrimSpace(title)
	if title == "" {
		title = domain.FallbackWorkoutTitle
	}
	payload := &domain.UpdateTitlePayload{
		WorkoutID:       workoutID,
		WorkoutClientID: e.clientIDOf(ctx, domain.KindWorkout, workoutID),
		Title:           title,
		UpdatedAt:       nowMillis(),
	}
	return e.perform(ctx, payload, func(ctx context.Context) error {
		return e.store.UpdateWorkoutTitle(ctx, workoutID, title)
	})
}

// CompleteWorkout marks a workout completed. Invalid transitions surface
// synchronously and nothing is queued.
func (e *Engine) CompleteWorkout(ctx context.Context, workoutID int64) error {
	e.writeMu.Lock()
	defer e.writeMu.Unlock()

	payload := &domain.CompleteWorkoutPayload{
		WorkoutID:       workoutID,
		WorkoutClientID: e.clientIDOf(ctx, domain.KindWorkout, workoutID),
	}
	return e.perform(ctx, payload, func(ctx context.Context) error {
		return e.store.UpdateWorkoutStatus(ctx, workoutID, domain.StatusCompleted)
	})
}

// DeleteWorkout soft-deletes a workout and its children.
func (e *Engine) DeleteWorkout(ctx context.Context, workoutID int64) error {
	e.writeMu.Lock()
	defer e.writeMu.Unlock()

	payload := &domain.DeleteWorkoutPayload{
		WorkoutID:       workoutID,
		WorkoutClientID: e.clientIDOf(ctx, domain.KindWorkout, workoutID),
	}
	return e.perform(ctx, payload, func(ctx context.Context) error {
		return e.store.DeleteWorkout(ctx, workoutID)
	})
}

// AddExercise inserts an exercise at the top of the workout's display order.
func (e *Engine) AddExercise(ctx context.Context, workoutID int64, exerciseCode string, plannedSets *int) (domain.WorkoutExercise, error) {
	e.writeMu.Lock()
	defer e.writeMu.Unlock()

	orderIndex := 0
	if min, ok, err := e.store.MinExerciseOrder(ctx, workoutID); err != nil {
		return domain.WorkoutExercise{}, err
	} else if ok {
		orderIndex = min - 1
	}

	clientID := uuid.NewString()
	payload := &domain.AddExercisePayload{
		WorkoutID:       workoutID,
		WorkoutClientID: e.clientIDOf(ctx, domain.KindWorkout, workoutID),
		ClientID:        clientID,
		ExerciseCode:    exerciseCode,
		OrderIndex:      orderIndex,
		PlannedSets:     plannedSets,
	}

	var created domain.WorkoutExercise
	err := e.perform(ctx, payload, func(ctx context.Context) error {
		exercise, err := e.store.AddExercise(ctx, workoutID, exerciseCode, orderIndex, plannedSets)
		if err != nil {
			return err
		}
		if err := e.store.AdoptClientID(ctx, domain.KindExercise, exercise.ID, clientID); err != nil {
			return err
		}
		exercise.ClientID = clientID
		created = exercise
		return nil
	})
	return created, err
}

// UpdateExercisePlan changes an exercise's planned set count.
func (e *Engine) UpdateExercisePlan(ctx context.Context, exerciseID int64, plannedSets *int) error {
	e.writeMu.Lock()
	defer e.writeMu.Unlock()

	payload := &domain.UpdateExercisePlanPayload{
		ExerciseID:       exerciseID,
		ExerciseClientID: e.clientIDOf(ctx, domain.KindExercise, exerciseID),
		PlannedSets:      plannedSets,
	}
	return e.perform(ctx, payload, func(ctx context.Context) error {
		return e.store.UpdateExercisePlan(ctx, exerciseID, plannedSets)
	})
}

// RemoveExercise removes an exercise and its sets.
func (e *Engine) RemoveExercise(ctx context.Context, exerciseID int64) error {
	e.writeMu.Lock()
	defer e.writeMu.Unlock()

	payload := &domain.RemoveExercisePayload{
		ExerciseID:       exerciseID,
		ExerciseClientID: e.clientIDOf(ctx, domain.KindExercise, exerciseID),
	}
	return e.perform(ctx, payload, func(ctx context.Context) error {
		return e.store.RemoveExercise(ctx, exerciseID)
	})
}

// AddSet inserts a planned set under an exercise.
func (e *Engine) AddSet(ctx context.Context, exerciseID int64, reps int, weight, rpe *float64) (domain.WorkoutSet, error) {
	e.writeMu.Lock()
	defer e.writeMu.Unlock()

	if reps < 0 {
		return domain.WorkoutSet{}, domain.ErrInvalidReps
	}

	clientID := uuid.NewString()
	payload := &domain.AddSetPayload{
		ExerciseID:       exerciseID,
		ExerciseClientID: e.clientIDOf(ctx, domain.KindExercise, exerciseID),
		ClientID:         clientID,
		Reps:             reps,
		Weight:           weight,
		RPE:              rpe,
	}

	var created domain.WorkoutSet
	err := e.perform(ctx, payload, func(ctx context.Context) error {
		set, err := e.store.AddSet(ctx, exerciseID, reps, weight, rpe)
		if err != nil {
			return err
		}
		if err := e.store.AdoptClientID(ctx, domain.KindSet, set.ID, clientID); err != nil {
			return err
		}
		set.ClientID = clientID
		created = set
		return nil
	})
	return created, err
}

// UpdateSet applies a partial update to a set.
func (e *Engine) UpdateSet(ctx context.Context, setID int64, changes domain.SetChanges) error {
	e.writeMu.Lock()
	defer e.writeMu.Unlock()

	payload := &domain.UpdateSetPayload{
		SetID:       setID,
		SetClientID: e.clientIDOf(ctx, domain.KindSet, setID),
		Updates: domain.SetUpdateFields{
			Reps:   changes.Reps,
			Weight: changes.Weight,
			RPE:    changes.RPE,
			DoneAt: changes.DoneAt,
		},
	}
	return e.perform(ctx, payload, func(ctx context.Context) error {
		return e.store.UpdateSet(ctx, setID, changes)
	})
}

// RemoveSet removes a set.
func (e *Engine) RemoveSet(ctx context.Context, setID int64) error {
	e.writeMu.Lock()
	defer e.writeMu.Unlock()

	payload := &domain.RemoveSetPayload{
		SetID:       setID,
		SetClientID: e.clientIDOf(ctx, domain.KindSet, setID),
	}
	return e.perform(ctx, payload, func(ctx context.Context) error {
		return e.store.RemoveSet(ctx, setID)
	})
}

// DuplicateWorkout copies a workout's title, exercises, and sets into a new
// draft through the normal mutation path, so every copied row syncs like a
// fresh local write. Completion state is not copied.
func (e *Engine) DuplicateWorkout(ctx context.Context, workoutID int64) (domain.Workout, error) {
	snapshot, err := e.store.FetchAll(ctx)
	if err != nil {
		return domain.Workout{}, err
	}

	var source *domain.WorkoutWithRelations
	titles := make(map[string]bool, len(snapshot))
	for i := range snapshot {
		titles[snapshot[i].Workout.Title] = true
		if snapshot[i].Workout.ID == workoutID {
			source = &snapshot[i]
		}
	}
	if source == nil {
		return domain.Workout{}, domain.ErrWorkoutNotFound
	}

	base := strings.TrimSpace(source.Workout.Title)
	if base == "" {
		base = domain.FallbackWorkoutTitle
	}
	candidate := base + " (copy)"
	for suffix := 2; titles[candidate]; suffix++ {
		candidate = fmt.Sprintf("%s (copy %d)", base, suffix)
	}

	created, err := e.CreateWorkout(ctx, candidate)
	if err != nil {
		return domain.Workout{}, err
	}

	setsByExercise := make(map[int64][]domain.WorkoutSet)
	for _, set := range source.Sets {
		setsByExercise[set.ExerciseID] = append(setsByExercise[set.ExerciseID], set)
	}

	// Exercises arrive ordered by order_index; adding each at the top of the
	// new workout reverses them, so walk the source backwards.
	for i := len(source.Exercises) - 1; i >= 0; i-- {
		exercise := source.Exercises[i]
		copied, err := e.AddExercise(ctx, created.ID, exercise.ExerciseCode, exercise.PlannedSets)
		if err != nil {
			return created, err
		}
		for _, set := range setsByExercise[exercise.ID] {
			if _, err := e.AddSet(ctx, copied.ID, set.Reps, set.Weight, set.RPE); err != nil {
				return created, err
			}
		}
	}
	return created, nil
}

// ShareWorkout publishes a workout to the community feed. Online, the call
// goes straight to the share endpoint; protocol rejections surface to the
// caller and are never queued. Offline or on transport failure the share is
// queued for the next flush.
func (e *Engine) ShareWorkout(ctx context.Context, workoutID int64) (ShareOutcome, error) {
	clientID, ok, err := e.store.ClientIDOf(ctx, domain.KindWorkout, workoutID)
	if err != nil {
		return ShareOutcome{}, err
	}
	if !ok {
		return ShareOutcome{}, domain.ErrWorkoutNotFound
	}

	payload := &domain.ShareWorkoutPayload{WorkoutClientID: clientID, UserID: e.userID}

	if !e.online.Load() {
		return e.queueShare(ctx, payload)
	}

	resp, err := e.api.ShareWorkout(ctx, clientID, e.userID)
	if err == nil {
		return ShareOutcome{ShareID: resp.ShareID}, nil
	}
	if pe, isProtocol := remote.AsProtocolError(err); isProtocol {
		observability.RecordProtocolReject(string(domain.ActionShareWorkout))
		return ShareOutcome{}, pe
	}

	e.logger.Printf("share transport failure, queueing: %v", err)
	return e.queueShare(ctx, payload)
}

func (e *Engine) queueShare(ctx context.Context, payload *domain.ShareWorkoutPayload) (ShareOutcome, error) {
	raw, err := domain.EncodePayload(payload)
	if err != nil {
		return ShareOutcome{}, err
	}
	if _, err := e.queue.Enqueue(ctx, domain.ActionShareWorkout, raw, nowMillis()); err != nil {
		return ShareOutcome{}, err
	}
	e.refreshPendingCount(ctx)
	return ShareOutcome{Queued: true}, nil
}

// clientIDOf is the best-effort payload enrichment: a missing target yields
// an empty client_id and the numeric id carries the mutation.
func (e *Engine) clientIDOf(ctx context.Context, kind domain.EntityKind, localID int64) string {
	clientID, ok, err := e.store.ClientIDOf(ctx, kind, localID)
	if err != nil || !ok {
		return ""
	}
	return clientID
}

// Flush drains the outbox in bounded rounds and ends with a pull, folding
// the server-side effects of the pushed batch back into the store. Transport
// failures halt the drain and are logged; the entries stay queued. Server
// rejections evict their entries so the outbox never wedges on them.
func (e *Engine) Flush(ctx context.Context) {
	if !e.online.Load() {
		return
	}

	e.flushMu.Lock()
	e.setState(StateFlushing)
	start := time.Now()

	for round := 0; round < e.maxRounds; round++ {
		observability.RecordFlushRound()
		proceed, err := e.flushRound(ctx)
		if err != nil {
			e.logger.Printf("flush round %d: %v", round+1, err)
			break
		}
		if !proceed {
			break
		}
	}

	observability.ObserveFlushDuration(time.Since(start).Seconds())
	e.setState(StateIdle)
	e.flushMu.Unlock()

	e.refreshPendingCount(ctx)
	if err := e.pull(ctx); err != nil {
		e.logger.Printf("post-flush pull failed: %v", err)
	}
}

// flushRound pushes one outbox batch. Returns false when the queue is
// drained or the drain must halt to preserve order.
func (e *Engine) flushRound(ctx context.Context) (bool, error) {
	batch, err := e.queue.PeekBatch(ctx, e.batchSize)
	if err != nil {
		return false, err
	}
	if len(batch) == 0 {
		return false, nil
	}

	var shares []domain.Mutation
	others := make([]domain.Mutation, 0, len(batch))
	for _, m := range batch {
		if m.Act == domain.ActionShareWorkout {
			shares = append(shares, m)
		} else {
			others = append(others, m)
		}
	}

	for _, share := range shares {
		halt, err := e.flushShare(ctx, share)
		if err != nil {
			return false, err
		}
		if halt {
			return false, nil
		}
	}

	if len(others) == 0 {
		return true, nil
	}

	wire := make([]remote.PushMutation, 0, len(others))
	for _, m := range others {
		wire = append(wire, remote.PushMutation{
			QueueID:   m.QueueID,
			Action:    m.Act,
			Payload:   m.Payload,
			CreatedAt: m.CreatedAt,
		})
	}

	resp, err := e.api.Push(ctx, wire)
	if err != nil {
		if _, isProtocol := remote.AsProtocolError(err); isProtocol {
			for _, m := range others {
				observability.RecordProtocolReject(string(m.Act))
				if removeErr := e.queue.Remove(ctx, m.QueueID); removeErr != nil {
					e.logger.Printf("remove rejected queue_id=%d: %v", m.QueueID, removeErr)
				}
			}
			e.logger.Printf("push of %d mutations rejected by server, evicting: %v", len(others), err)
			return true, nil
		}
		observability.RecordPushFailure()
		for _, m := range others {
			if markErr := e.queue.MarkFailed(ctx, m.QueueID, err.Error()); markErr != nil {
				e.logger.Printf("mark failed queue_id=%d: %v", m.QueueID, markErr)
			}
		}
		e.logger.Printf("push of %d mutations failed: %v", len(others), err)
		return false, nil
	}

	if ts, ok := remote.ParseServerTime(resp.ServerTime); ok {
		if err := e.marks.AdvanceWatermark(ctx, ts); err != nil {
			return false, err
		}
		observability.RecordWatermark(ts)
	}

	// Acks bind server identities before any entry is removed, so a crash
	// in between re-delivers the ack application, which is idempotent.
	if err := e.rec.ApplyAcks(ctx, others, resp.Results); err != nil {
		return false, err
	}
	for _, m := range others {
		if err := e.queue.MarkCompleted(ctx, m.QueueID); err != nil {
			return false, err
		}
		if err := e.queue.Remove(ctx, m.QueueID); err != nil {
			return false, err
		}
	}
	return true, nil
}

// flushShare replays one queued share. Protocol rejections evict the entry;
// transport failures keep it and halt the drain.
func (e *Engine) flushShare(ctx context.Context, share domain.Mutation) (halt bool, err error) {
	payload, err := share.DecodePayload()
	if err != nil {
		e.logger.Printf("dropping undecodable share queue_id=%d: %v", share.QueueID, err)
		return false, e.queue.Remove(ctx, share.QueueID)
	}
	p, ok := payload.(*domain.ShareWorkoutPayload)
	if !ok || p.WorkoutClientID == "" {
		return false, e.queue.Remove(ctx, share.QueueID)
	}

	if _, shareErr := e.api.ShareWorkout(ctx, p.WorkoutClientID, p.UserID); shareErr != nil {
		if _, isProtocol := remote.AsProtocolError(shareErr); isProtocol {
			observability.RecordProtocolReject(string(domain.ActionShareWorkout))
			e.logger.Printf("share queue_id=%d rejected by server, evicting: %v", share.QueueID, shareErr)
			return false, e.queue.Remove(ctx, share.QueueID)
		}
		if markErr := e.queue.MarkFailed(ctx, share.QueueID, shareErr.Error()); markErr != nil {
			return false, markErr
		}
		return true, nil
	}

	if err := e.queue.MarkCompleted(ctx, share.QueueID); err != nil {
		return false, err
	}
	return false, e.queue.Remove(ctx, share.QueueID)
}

// pull fetches and applies server events past the stored watermark. The
// watermark only advances after the whole event batch has been walked, so a
// crash mid-batch re-delivers events into idempotent handlers.
func (e *Engine) pull(ctx context.Context) error {
	if !e.online.Load() {
		return nil
	}

	e.setState(StatePulling)
	defer e.setState(StateIdle)

	since, err := e.marks.LastPulledAt(ctx)
	if err != nil {
		return err
	}
	resp, err := e.api.Pull(ctx, since)
	if err != nil {
		return err
	}

	applied := e.rec.ApplyEvents(ctx, resp.Events)
	if applied > 0 {
		e.logger.Printf("applied %d remote events", applied)
	}

	if ts, ok := remote.ParseServerTime(resp.ServerTime); ok {
		if err := e.marks.AdvanceWatermark(ctx, ts); err != nil {
			return err
		}
		observability.RecordWatermark(ts)
	}
	return nil
}
