// Package sqlitestore is the durable persistence backend: a single SQLite
// database holding the entity tables, the mutation outbox, and the sync
// watermark.
package sqlitestore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"example.com/workoutsync/internal/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS workouts (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    client_id TEXT NOT NULL UNIQUE,
    server_id INTEGER,
    title TEXT NOT NULL,
    status TEXT NOT NULL CHECK (status IN ('draft','in_progress','completed')),
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL,
    deleted_at INTEGER
);
CREATE INDEX IF NOT EXISTS idx_workouts_updated_at ON workouts(updated_at);

CREATE TABLE IF NOT EXISTS workout_exercises (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    client_id TEXT NOT NULL UNIQUE,
    server_id INTEGER,
    workout_id INTEGER NOT NULL,
    exercise_code TEXT NOT NULL,
    order_index INTEGER NOT NULL,
    planned_sets INTEGER,
    deleted_at INTEGER
);
CREATE INDEX IF NOT EXISTS idx_workout_exercises_workout ON workout_exercises(workout_id);

CREATE TABLE IF NOT EXISTS workout_sets (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    client_id TEXT NOT NULL UNIQUE,
    server_id INTEGER,
    workout_exercise_id INTEGER NOT NULL,
    reps INTEGER NOT NULL,
    weight REAL,
    rpe REAL,
    done_at INTEGER,
    deleted_at INTEGER
);
CREATE INDEX IF NOT EXISTS idx_workout_sets_exercise ON workout_sets(workout_exercise_id);

CREATE TABLE IF NOT EXISTS mutation_queue (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    action TEXT NOT NULL,
    payload TEXT NOT NULL,
    created_at INTEGER NOT NULL,
    status TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending','failed','completed')),
    last_error TEXT
);

CREATE TABLE IF NOT EXISTS sync_state (
    key TEXT PRIMARY KEY,
    value INTEGER NOT NULL
);
`

const watermarkKey = "last_pulled_at"

// Store implements persistence.Backend on SQLite.
type Store struct {
	db *sql.DB
}

// Open creates or opens the database at path and initialises the schema.
// SQLite supports a single writer, so the pool is capped at one connection.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.Exec(`PRAGMA journal_mode=WAL;`); err != nil {
		db.Close()
		return nil, err
	}
	if _, err := db.Exec(`PRAGMA busy_timeout=5000;`); err != nil {
		db.Close()
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func nowMillis() int64 {
	return time.Now().UnixMilli()
}

// CreateWorkout inserts a draft workout with a fresh client_id.
func (s *Store) CreateWorkout(ctx context.Context, title string) (domain.Workout, error) {
	return s.createWorkout(ctx, title, nil)
}

// CreateWorkoutWithServerID inserts a workout already known to the server,
// used when a pull delivers an entity this client never created.
func (s *Store) CreateWorkoutWithServerID(ctx context.Context, title string, serverID int64) (domain.Workout, error) {
	return s.createWorkout(ctx, title, &serverID)
}

func (s *Store) createWorkout(ctx context.Context, title string, serverID *int64) (domain.Workout, error) {
	if strings.TrimSpace(title) == "" {
		title = domain.FallbackWorkoutTitle
	}
	now := nowMillis()
	workout := domain.Workout{
		ClientID:  uuid.NewString(),
		ServerID:  serverID,
		Title:     title,
		Status:    domain.StatusDraft,
		CreatedAt: now,
		UpdatedAt: now,
	}
	result, err := s.db.ExecContext(ctx,
		`INSERT INTO workouts (client_id, server_id, title, status, created_at, updated_at) VALUES (?,?,?,?,?,?)`,
		workout.ClientID, nullableInt(serverID), workout.Title, workout.Status, now, now)
	if err != nil {
		return domain.Workout{}, err
	}
	workout.ID, err = result.LastInsertId()
	if err != nil {
		return domain.Workout{}, err
	}
	return workout, nil
}

// UpdateWorkoutTitle renames a workout and bumps updated_at. Missing ids are
// no-ops.
func (s *Store) UpdateWorkoutTitle(ctx context.Context, id int64, title string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE workouts SET title = ?, updated_at = ? WHERE id = ? AND deleted_at IS NULL`,
		title, nowMillis(), id)
	return err
}

// UpdateWorkoutStatus moves a workout along its lifecycle. Backward
// transitions return ErrInvalidStatusTransition; missing ids are no-ops.
func (s *Store) UpdateWorkoutStatus(ctx context.Context, id int64, status domain.WorkoutStatus) error {
	var current domain.WorkoutStatus
	err := s.db.QueryRowContext(ctx,
		`SELECT status FROM workouts WHERE id = ? AND deleted_at IS NULL`, id).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return err
	}
	if !current.CanTransitionTo(status) {
		return fmt.Errorf("%w: %s -> %s", domain.ErrInvalidStatusTransition, current, status)
	}
	_, err = s.db.ExecContext(ctx,
		`UPDATE workouts SET status = ?, updated_at = ? WHERE id = ? AND deleted_at IS NULL`,
		status, nowMillis(), id)
	return err
}

// DeleteWorkout soft-deletes a workout and cascades to its exercises and
// their sets.
func (s *Store) DeleteWorkout(ctx context.Context, id int64) error {
	now := nowMillis()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`UPDATE workout_sets SET deleted_at = ?
         WHERE deleted_at IS NULL AND workout_exercise_id IN
           (SELECT id FROM workout_exercises WHERE workout_id = ?)`, now, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE workout_exercises SET deleted_at = ? WHERE workout_id = ? AND deleted_at IS NULL`, now, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE workouts SET deleted_at = ?, updated_at = ? WHERE id = ? AND deleted_at IS NULL`, now, now, id); err != nil {
		return err
	}
	return tx.Commit()
}

// AddExercise inserts an exercise row for a workout.
func (s *Store) AddExercise(ctx context.Context, workoutID int64, exerciseCode string, orderIndex int, plannedSets *int) (domain.WorkoutExercise, error) {
	exercise := domain.WorkoutExercise{
		ClientID:     uuid.NewString(),
		WorkoutID:    workoutID,
		ExerciseCode: exerciseCode,
		OrderIndex:   orderIndex,
		PlannedSets:  plannedSets,
	}
	result, err := s.db.ExecContext(ctx,
		`INSERT INTO workout_exercises (client_id, server_id, workout_id, exercise_code, order_index, planned_sets)
         VALUES (?, NULL, ?, ?, ?, ?)`,
		exercise.ClientID, workoutID, exerciseCode, orderIndex, nullableIntPtr(plannedSets))
	if err != nil {
		return domain.WorkoutExercise{}, err
	}
	exercise.ID, err = result.LastInsertId()
	if err != nil {
		return domain.WorkoutExercise{}, err
	}
	return exercise, nil
}

// UpdateExercisePlan changes the planned set count. Missing ids are no-ops.
func (s *Store) UpdateExercisePlan(ctx context.Context, id int64, plannedSets *int) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE workout_exercises SET planned_sets = ? WHERE id = ? AND deleted_at IS NULL`,
		nullableIntPtr(plannedSets), id)
	return err
}

// RemoveExercise soft-deletes an exercise and its sets.
func (s *Store) RemoveExercise(ctx context.Context, id int64) error {
	now := nowMillis()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`UPDATE workout_sets SET deleted_at = ? WHERE workout_exercise_id = ? AND deleted_at IS NULL`, now, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE workout_exercises SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL`, now, id); err != nil {
		return err
	}
	return tx.Commit()
}

// MinExerciseOrder returns the lowest order_index among a workout's live
// exercises. ok is false when the workout has none.
func (s *Store) MinExerciseOrder(ctx context.Context, workoutID int64) (int, bool, error) {
	var min sql.NullInt64
	err := s.db.QueryRowContext(ctx,
		`SELECT MIN(order_index) FROM workout_exercises WHERE workout_id = ? AND deleted_at IS NULL`,
		workoutID).Scan(&min)
	if err != nil {
		return 0, false, err
	}
	if !min.Valid {
		return 0, false, nil
	}
	return int(min.Int64), true, nil
}

// AddSet inserts a planned set under an exercise.
func (s *Store) AddSet(ctx context.Context, exerciseID int64, reps int, weight, rpe *float64) (domain.WorkoutSet, error) {
	if reps < 0 {
		return domain.WorkoutSet{}, domain.ErrInvalidReps
	}
	set := domain.WorkoutSet{
		ClientID:   uuid.NewString(),
		ExerciseID: exerciseID,
		Reps:       reps,
		Weight:     weight,
		RPE:        rpe,
	}
	result, err := s.db.ExecContext(ctx,
		`INSERT INTO workout_sets (client_id, server_id, workout_exercise_id, reps, weight, rpe, done_at)
         VALUES (?, NULL, ?, ?, ?, ?, NULL)`,
		set.ClientID, exerciseID, reps, nullableFloatPtr(weight), nullableFloatPtr(rpe))
	if err != nil {
		return domain.WorkoutSet{}, err
	}
	set.ID, err = result.LastInsertId()
	if err != nil {
		return domain.WorkoutSet{}, err
	}
	return set, nil
}

// UpdateSet applies a partial update. Missing ids and empty updates are
// no-ops.
func (s *Store) UpdateSet(ctx context.Context, id int64, changes domain.SetChanges) error {
	if changes.Empty() {
		return nil
	}
	fields := make([]string, 0, 4)
	args := make([]any, 0, 5)
	if changes.Reps != nil {
		if *changes.Reps < 0 {
			return domain.ErrInvalidReps
		}
		fields = append(fields, "reps = ?")
		args = append(args, *changes.Reps)
	}
	if changes.Weight != nil {
		fields = append(fields, "weight = ?")
		args = append(args, nullableFloatPtr(*changes.Weight))
	}
	if changes.RPE != nil {
		fields = append(fields, "rpe = ?")
		args = append(args, nullableFloatPtr(*changes.RPE))
	}
	if changes.DoneAt != nil {
		fields = append(fields, "done_at = ?")
		args = append(args, nullableInt(*changes.DoneAt))
	}
	args = append(args, id)
	query := fmt.Sprintf(`UPDATE workout_sets SET %s WHERE id = ? AND deleted_at IS NULL`, strings.Join(fields, ", "))
	_, err := s.db.ExecContext(ctx, query, args...)
	return err
}

// RemoveSet soft-deletes a set. Missing ids are no-ops.
func (s *Store) RemoveSet(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE workout_sets SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL`, nowMillis(), id)
	return err
}

// FetchAll returns the live snapshot: workouts newest-first, exercises by
// order_index, sets in insertion order. Soft-deleted rows are excluded.
func (s *Store) FetchAll(ctx context.Context) ([]domain.WorkoutWithRelations, error) {
	workouts, err := s.fetchWorkouts(ctx)
	if err != nil {
		return nil, err
	}
	exercises, err := s.fetchExercises(ctx)
	if err != nil {
		return nil, err
	}
	sets, err := s.fetchSets(ctx)
	if err != nil {
		return nil, err
	}

	setsByExercise := make(map[int64][]domain.WorkoutSet)
	for _, set := range sets {
		setsByExercise[set.ExerciseID] = append(setsByExercise[set.ExerciseID], set)
	}

	out := make([]domain.WorkoutWithRelations, 0, len(workouts))
	for _, workout := range workouts {
		entry := domain.WorkoutWithRelations{Workout: workout}
		for _, exercise := range exercises {
			if exercise.WorkoutID != workout.ID {
				continue
			}
			entry.Exercises = append(entry.Exercises, exercise)
			entry.Sets = append(entry.Sets, setsByExercise[exercise.ID]...)
		}
		out = append(out, entry)
	}
	return out, nil
}

func (s *Store) fetchWorkouts(ctx context.Context) ([]domain.Workout, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, client_id, server_id, title, status, created_at, updated_at
         FROM workouts WHERE deleted_at IS NULL ORDER BY updated_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Workout
	for rows.Next() {
		var w domain.Workout
		var serverID sql.NullInt64
		if err := rows.Scan(&w.ID, &w.ClientID, &serverID, &w.Title, &w.Status, &w.CreatedAt, &w.UpdatedAt); err != nil {
			return nil, err
		}
		if serverID.Valid {
			w.ServerID = &serverID.Int64
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

func (s *Store) fetchExercises(ctx context.Context) ([]domain.WorkoutExercise, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, client_id, server_id, workout_id, exercise_code, order_index, planned_sets
         FROM workout_exercises WHERE deleted_at IS NULL ORDER BY order_index ASC, id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.WorkoutExercise
	for rows.Next() {
		var e domain.WorkoutExercise
		var serverID, plannedSets sql.NullInt64
		if err := rows.Scan(&e.ID, &e.ClientID, &serverID, &e.WorkoutID, &e.ExerciseCode, &e.OrderIndex, &plannedSets); err != nil {
			return nil, err
		}
		if serverID.Valid {
			e.ServerID = &serverID.Int64
		}
		if plannedSets.Valid {
			planned := int(plannedSets.Int64)
			e.PlannedSets = &planned
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *Store) fetchSets(ctx context.Context) ([]domain.WorkoutSet, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, client_id, server_id, workout_exercise_id, reps, weight, rpe, done_at
         FROM workout_sets WHERE deleted_at IS NULL ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.WorkoutSet
	for rows.Next() {
		var set domain.WorkoutSet
		var serverID, doneAt sql.NullInt64
		var weight, rpe sql.NullFloat64
		if err := rows.Scan(&set.ID, &set.ClientID, &serverID, &set.ExerciseID, &set.Reps, &weight, &rpe, &doneAt); err != nil {
			return nil, err
		}
		if serverID.Valid {
			set.ServerID = &serverID.Int64
		}
		if weight.Valid {
			set.Weight = &weight.Float64
		}
		if rpe.Valid {
			set.RPE = &rpe.Float64
		}
		if doneAt.Valid {
			set.DoneAt = &doneAt.Int64
		}
		out = append(out, set)
	}
	return out, rows.Err()
}

func tableFor(kind domain.EntityKind) (string, error) {
	switch kind {
	case domain.KindWorkout:
		return "workouts", nil
	case domain.KindExercise:
		return "workout_exercises", nil
	case domain.KindSet:
		return "workout_sets", nil
	default:
		return "", fmt.Errorf("unknown entity kind: %s", kind)
	}
}

// SetServerID records the server identity for the entity with the given
// client_id. Rewriting the same mapping is a no-op; a conflicting mapping
// favors the latest call.
func (s *Store) SetServerID(ctx context.Context, kind domain.EntityKind, clientID string, serverID int64) error {
	if clientID == "" {
		return nil
	}
	table, err := tableFor(kind)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		fmt.Sprintf(`UPDATE %s SET server_id = ? WHERE client_id = ?`, table), serverID, clientID)
	return err
}

// HasClientID reports whether a live entity with this client_id exists.
func (s *Store) HasClientID(ctx context.Context, kind domain.EntityKind, clientID string) (bool, error) {
	if clientID == "" {
		return false, nil
	}
	table, err := tableFor(kind)
	if err != nil {
		return false, err
	}
	var one int
	err = s.db.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT 1 FROM %s WHERE client_id = ? AND deleted_at IS NULL`, table), clientID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// LookupLocalID resolves a client_id to the local row id. ok is false when no
// live entity carries the client_id.
func (s *Store) LookupLocalID(ctx context.Context, kind domain.EntityKind, clientID string) (int64, bool, error) {
	if clientID == "" {
		return 0, false, nil
	}
	table, err := tableFor(kind)
	if err != nil {
		return 0, false, err
	}
	var id int64
	err = s.db.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT id FROM %s WHERE client_id = ? AND deleted_at IS NULL`, table), clientID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return id, true, nil
}

// ClientIDOf returns the client_id of a live local row. ok is false when the
// row is missing or soft-deleted.
func (s *Store) ClientIDOf(ctx context.Context, kind domain.EntityKind, localID int64) (string, bool, error) {
	table, err := tableFor(kind)
	if err != nil {
		return "", false, err
	}
	var clientID string
	err = s.db.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT client_id FROM %s WHERE id = ? AND deleted_at IS NULL`, table), localID).Scan(&clientID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return clientID, true, nil
}

// AdoptClientID rewrites the client_id of a local row, used when a remote
// event materialises an entity that must keep the originating device's
// client_id.
func (s *Store) AdoptClientID(ctx context.Context, kind domain.EntityKind, localID int64, clientID string) error {
	if clientID == "" {
		return nil
	}
	table, err := tableFor(kind)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		fmt.Sprintf(`UPDATE %s SET client_id = ? WHERE id = ?`, table), clientID, localID)
	return err
}

// FindWorkoutByIdentity resolves a live workout by server_id first, then
// client_id. Returns nil when neither matches.
func (s *Store) FindWorkoutByIdentity(ctx context.Context, serverID int64, clientID string) (*domain.Workout, error) {
	const query = `SELECT id, client_id, server_id, title, status, created_at, updated_at
        FROM workouts WHERE deleted_at IS NULL AND (%s) LIMIT 1`

	scan := func(clause string, arg any) (*domain.Workout, error) {
		var w domain.Workout
		var sid sql.NullInt64
		err := s.db.QueryRowContext(ctx, fmt.Sprintf(query, clause), arg).
			Scan(&w.ID, &w.ClientID, &sid, &w.Title, &w.Status, &w.CreatedAt, &w.UpdatedAt)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		if sid.Valid {
			w.ServerID = &sid.Int64
		}
		return &w, nil
	}

	if serverID != 0 {
		if w, err := scan("server_id = ?", serverID); err != nil || w != nil {
			return w, err
		}
	}
	if clientID != "" {
		return scan("client_id = ?", clientID)
	}
	return nil, nil
}

// Enqueue appends a mutation to the outbox and returns its queue id.
func (s *Store) Enqueue(ctx context.Context, action domain.Action, payload json.RawMessage, createdAt int64) (int64, error) {
	result, err := s.db.ExecContext(ctx,
		`INSERT INTO mutation_queue (action, payload, created_at, status) VALUES (?,?,?,'pending')`,
		action, string(payload), createdAt)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// PeekBatch returns up to limit not-yet-acknowledged mutations in creation
// order without mutating queue state.
func (s *Store) PeekBatch(ctx context.Context, limit int) ([]domain.Mutation, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, action, payload, created_at, status, COALESCE(last_error, '')
         FROM mutation_queue WHERE status != 'completed' ORDER BY id ASC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Mutation
	for rows.Next() {
		var m domain.Mutation
		var payload string
		if err := rows.Scan(&m.QueueID, &m.Act, &payload, &m.CreatedAt, &m.Status, &m.LastError); err != nil {
			return nil, err
		}
		m.Payload = json.RawMessage(payload)
		out = append(out, m)
	}
	return out, rows.Err()
}

// MarkCompleted flags an acknowledged mutation; Remove is the terminal state
// and is always called right after.
func (s *Store) MarkCompleted(ctx context.Context, queueID int64) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE mutation_queue SET status = 'completed' WHERE id = ?`, queueID)
	return err
}

// MarkFailed records the advisory error and keeps the entry for the next
// flush attempt.
func (s *Store) MarkFailed(ctx context.Context, queueID int64, cause string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE mutation_queue SET status = 'failed', last_error = ? WHERE id = ?`, cause, queueID)
	return err
}

// Remove deletes the entry from the outbox.
func (s *Store) Remove(ctx context.Context, queueID int64) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM mutation_queue WHERE id = ?`, queueID)
	return err
}

// Count returns the number of mutations awaiting acknowledgement.
func (s *Store) Count(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM mutation_queue WHERE status != 'completed'`).Scan(&count)
	return count, err
}

// LastPulledAt returns the stored watermark, zero when no pull has succeeded.
func (s *Store) LastPulledAt(ctx context.Context) (int64, error) {
	var value int64
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM sync_state WHERE key = ?`, watermarkKey).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	return value, err
}

// AdvanceWatermark moves the watermark forward; older timestamps are ignored.
func (s *Store) AdvanceWatermark(ctx context.Context, ts int64) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sync_state (key, value) VALUES (?, ?)
         ON CONFLICT(key) DO UPDATE SET value = MAX(value, excluded.value)`, watermarkKey, ts)
	return err
}

func nullableInt(v *int64) any {
	if v == nil {
		return nil
	}
	return *v
}

func nullableIntPtr(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}

func nullableFloatPtr(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}
