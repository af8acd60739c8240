// Package memorystore is the non-durable persistence backend, substituted
// when the SQLite store cannot be opened. Operation semantics are identical
// to the durable backend; only durability across restarts differs.
package memorystore

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"example.com/workoutsync/internal/domain"
)

// Store implements persistence.Backend on in-process slices.
type Store struct {
	mu sync.Mutex

	workouts  []domain.Workout
	exercises []domain.WorkoutExercise
	sets      []domain.WorkoutSet
	queue     []domain.Mutation
	completed map[int64]bool
	watermark int64

	workoutSeq  int64
	exerciseSeq int64
	setSeq      int64
	queueSeq    int64
}

// New returns an empty in-memory backend.
func New() *Store {
	return &Store{completed: make(map[int64]bool)}
}

// Close is a no-op; the backend has no resources to release.
func (s *Store) Close() error { return nil }

func nowMillis() int64 {
	return time.Now().UnixMilli()
}

func (s *Store) CreateWorkout(_ context.Context, title string) (domain.Workout, error) {
	return s.createWorkout(title, nil), nil
}

func (s *Store) CreateWorkoutWithServerID(_ context.Context, title string, serverID int64) (domain.Workout, error) {
	return s.createWorkout(title, &serverID), nil
}

func (s *Store) createWorkout(title string, serverID *int64) domain.Workout {
	if strings.TrimSpace(title) == "" {
		title = domain.FallbackWorkoutTitle
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.workoutSeq++
	now := nowMillis()
	workout := domain.Workout{
		ID:        s.workoutSeq,
		ClientID:  uuid.NewString(),
		ServerID:  serverID,
		Title:     title,
		Status:    domain.StatusDraft,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.workouts = append(s.workouts, workout)
	return workout
}

func (s *Store) findWorkout(id int64) *domain.Workout {
	for i := range s.workouts {
		if s.workouts[i].ID == id && s.workouts[i].DeletedAt == nil {
			return &s.workouts[i]
		}
	}
	return nil
}

func (s *Store) UpdateWorkoutTitle(_ context.Context, id int64, title string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if workout := s.findWorkout(id); workout != nil {
		workout.Title = title
		workout.UpdatedAt = nowMillis()
	}
	return nil
}

func (s *Store) UpdateWorkoutStatus(_ context.Context, id int64, status domain.WorkoutStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	workout := s.findWorkout(id)
	if workout == nil {
		return nil
	}
	if !workout.Status.CanTransitionTo(status) {
		return fmt.Errorf("%w: %s -> %s", domain.ErrInvalidStatusTransition, workout.Status, status)
	}
	workout.Status = status
	workout.UpdatedAt = nowMillis()
	return nil
}

func (s *Store) DeleteWorkout(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := nowMillis()
	workout := s.findWorkout(id)
	if workout == nil {
		return nil
	}
	workout.DeletedAt = &now
	workout.UpdatedAt = now

	exerciseIDs := make(map[int64]bool)
	for i := range s.exercises {
		if s.exercises[i].WorkoutID == id && s.exercises[i].DeletedAt == nil {
			ts := now
			s.exercises[i].DeletedAt = &ts
			exerciseIDs[s.exercises[i].ID] = true
		}
	}
	for i := range s.sets {
		if exerciseIDs[s.sets[i].ExerciseID] && s.sets[i].DeletedAt == nil {
			ts := now
			s.sets[i].DeletedAt = &ts
		}
	}
	return nil
}

func (s *Store) AddExercise(_ context.Context, workoutID int64, exerciseCode string, orderIndex int, plannedSets *int) (domain.WorkoutExercise, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.exerciseSeq++
	exercise := domain.WorkoutExercise{
		ID:           s.exerciseSeq,
		ClientID:     uuid.NewString(),
		WorkoutID:    workoutID,
		ExerciseCode: exerciseCode,
		OrderIndex:   orderIndex,
		PlannedSets:  plannedSets,
	}
	s.exercises = append(s.exercises, exercise)
	return exercise, nil
}

func (s *Store) UpdateExercisePlan(_ context.Context, id int64, plannedSets *int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.exercises {
		if s.exercises[i].ID == id && s.exercises[i].DeletedAt == nil {
			s.exercises[i].PlannedSets = plannedSets
			break
		}
	}
	return nil
}

func (s *Store) RemoveExercise(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := nowMillis()
	for i := range s.exercises {
		if s.exercises[i].ID == id && s.exercises[i].DeletedAt == nil {
			ts := now
			s.exercises[i].DeletedAt = &ts
		}
	}
	for i := range s.sets {
		if s.sets[i].ExerciseID == id && s.sets[i].DeletedAt == nil {
			ts := now
			s.sets[i].DeletedAt = &ts
		}
	}
	return nil
}

func (s *Store) MinExerciseOrder(_ context.Context, workoutID int64) (int, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	min, found := 0, false
	for i := range s.exercises {
		if s.exercises[i].WorkoutID != workoutID || s.exercises[i].DeletedAt != nil {
			continue
		}
		if !found || s.exercises[i].OrderIndex < min {
			min = s.exercises[i].OrderIndex
			found = true
		}
	}
	return min, found, nil
}

func (s *Store) AddSet(_ context.Context, exerciseID int64, reps int, weight, rpe *float64) (domain.WorkoutSet, error) {
	if reps < 0 {
		return domain.WorkoutSet{}, domain.ErrInvalidReps
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.setSeq++
	set := domain.WorkoutSet{
		ID:         s.setSeq,
		ClientID:   uuid.NewString(),
		ExerciseID: exerciseID,
		Reps:       reps,
		Weight:     weight,
		RPE:        rpe,
	}
	s.sets = append(s.sets, set)
	return set, nil
}

func (s *Store) UpdateSet(_ context.Context, id int64, changes domain.SetChanges) error {
	if changes.Empty() {
		return nil
	}
	if changes.Reps != nil && *changes.Reps < 0 {
		return domain.ErrInvalidReps
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.sets {
		if s.sets[i].ID != id || s.sets[i].DeletedAt != nil {
			continue
		}
		if changes.Reps != nil {
			s.sets[i].Reps = *changes.Reps
		}
		if changes.Weight != nil {
			s.sets[i].Weight = *changes.Weight
		}
		if changes.RPE != nil {
			s.sets[i].RPE = *changes.RPE
		}
		if changes.DoneAt != nil {
			s.sets[i].DoneAt = *changes.DoneAt
		}
		break
	}
	return nil
}

func (s *Store) RemoveSet(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := nowMillis()
	for i := range s.sets {
		if s.sets[i].ID == id && s.sets[i].DeletedAt == nil {
			s.sets[i].DeletedAt = &now
			break
		}
	}
	return nil
}

func (s *Store) FetchAll(_ context.Context) ([]domain.WorkoutWithRelations, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	workouts := make([]domain.Workout, 0, len(s.workouts))
	for _, workout := range s.workouts {
		if workout.DeletedAt == nil {
			workouts = append(workouts, workout)
		}
	}
	sort.SliceStable(workouts, func(i, j int) bool {
		if workouts[i].UpdatedAt != workouts[j].UpdatedAt {
			return workouts[i].UpdatedAt > workouts[j].UpdatedAt
		}
		return workouts[i].ID > workouts[j].ID
	})

	exercises := make([]domain.WorkoutExercise, 0, len(s.exercises))
	for _, exercise := range s.exercises {
		if exercise.DeletedAt == nil {
			exercises = append(exercises, exercise)
		}
	}
	sort.SliceStable(exercises, func(i, j int) bool {
		if exercises[i].OrderIndex != exercises[j].OrderIndex {
			return exercises[i].OrderIndex < exercises[j].OrderIndex
		}
		return exercises[i].ID < exercises[j].ID
	})

	setsByExercise := make(map[int64][]domain.WorkoutSet)
	for _, set := range s.sets {
		if set.DeletedAt == nil {
			setsByExercise[set.ExerciseID] = append(setsByExercise[set.ExerciseID], set)
		}
	}
	for _, group := range setsByExercise {
		sort.SliceStable(group, func(i, j int) bool { return group[i].ID < group[j].ID })
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

func (s *Store) SetServerID(_ context.Context, kind domain.EntityKind, clientID string, serverID int64) error {
	if clientID == "" {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	switch kind {
	case domain.KindWorkout:
		for i := range s.workouts {
			if s.workouts[i].ClientID == clientID {
				sid := serverID
				s.workouts[i].ServerID = &sid
			}
		}
	case domain.KindExercise:
		for i := range s.exercises {
			if s.exercises[i].ClientID == clientID {
				sid := serverID
				s.exercises[i].ServerID = &sid
			}
		}
	case domain.KindSet:
		for i := range s.sets {
			if s.sets[i].ClientID == clientID {
				sid := serverID
				s.sets[i].ServerID = &sid
			}
		}
	default:
		return fmt.Errorf("unknown entity kind: %s", kind)
	}
	return nil
}

func (s *Store) HasClientID(_ context.Context, kind domain.EntityKind, clientID string) (bool, error) {
	if clientID == "" {
		return false, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	switch kind {
	case domain.KindWorkout:
		for i := range s.workouts {
			if s.workouts[i].ClientID == clientID && s.workouts[i].DeletedAt == nil {
				return true, nil
			}
		}
	case domain.KindExercise:
		for i := range s.exercises {
			if s.exercises[i].ClientID == clientID && s.exercises[i].DeletedAt == nil {
				return true, nil
			}
		}
	case domain.KindSet:
		for i := range s.sets {
			if s.sets[i].ClientID == clientID && s.sets[i].DeletedAt == nil {
				return true, nil
			}
		}
	default:
		return false, fmt.Errorf("unknown entity kind: %s", kind)
	}
	return false, nil
}

func (s *Store) LookupLocalID(_ context.Context, kind domain.EntityKind, clientID string) (int64, bool, error) {
	if clientID == "" {
		return 0, false, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	switch kind {
	case domain.KindWorkout:
		for i := range s.workouts {
			if s.workouts[i].ClientID == clientID && s.workouts[i].DeletedAt == nil {
				return s.workouts[i].ID, true, nil
			}
		}
	case domain.KindExercise:
		for i := range s.exercises {
			if s.exercises[i].ClientID == clientID && s.exercises[i].DeletedAt == nil {
				return s.exercises[i].ID, true, nil
			}
		}
	case domain.KindSet:
		for i := range s.sets {
			if s.sets[i].ClientID == clientID && s.sets[i].DeletedAt == nil {
				return s.sets[i].ID, true, nil
			}
		}
	default:
		return 0, false, fmt.Errorf("unknown entity kind: %s", kind)
	}
	return 0, false, nil
}

func (s *Store) ClientIDOf(_ context.Context, kind domain.EntityKind, localID int64) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch kind {
	case domain.KindWorkout:
		for i := range s.workouts {
			if s.workouts[i].ID == localID && s.workouts[i].DeletedAt == nil {
				return s.workouts[i].ClientID, true, nil
			}
		}
	case domain.KindExercise:
		for i := range s.exercises {
			if s.exercises[i].ID == localID && s.exercises[i].DeletedAt == nil {
				return s.exercises[i].ClientID, true, nil
			}
		}
	case domain.KindSet:
		for i := range s.sets {
			if s.sets[i].ID == localID && s.sets[i].DeletedAt == nil {
				return s.sets[i].ClientID, true, nil
			}
		}
	default:
		return "", false, fmt.Errorf("unknown entity kind: %s", kind)
	}
	return "", false, nil
}

func (s *Store) AdoptClientID(_ context.Context, kind domain.EntityKind, localID int64, clientID string) error {
	if clientID == "" {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	switch kind {
	case domain.KindWorkout:
		for i := range s.workouts {
			if s.workouts[i].ID == localID {
				s.workouts[i].ClientID = clientID
			}
		}
	case domain.KindExercise:
		for i := range s.exercises {
			if s.exercises[i].ID == localID {
				s.exercises[i].ClientID = clientID
			}
		}
	case domain.KindSet:
		for i := range s.sets {
			if s.sets[i].ID == localID {
				s.sets[i].ClientID = clientID
			}
		}
	default:
		return fmt.Errorf("unknown entity kind: %s", kind)
	}
	return nil
}

func (s *Store) FindWorkoutByIdentity(_ context.Context, serverID int64, clientID string) (*domain.Workout, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if serverID != 0 {
		for i := range s.workouts {
			w := s.workouts[i]
			if w.DeletedAt == nil && w.ServerID != nil && *w.ServerID == serverID {
				return &w, nil
			}
		}
	}
	if clientID != "" {
		for i := range s.workouts {
			w := s.workouts[i]
			if w.DeletedAt == nil && w.ClientID == clientID {
				return &w, nil
			}
		}
	}
	return nil, nil
}

func (s *Store) Enqueue(_ context.Context, action domain.Action, payload json.RawMessage, createdAt int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.queueSeq++
	s.queue = append(s.queue, domain.Mutation{
		QueueID:   s.queueSeq,
		Act:       action,
		Payload:   append(json.RawMessage(nil), payload...),
		CreatedAt: createdAt,
		Status:    domain.MutationPending,
	})
	return s.queueSeq, nil
}

func (s *Store) PeekBatch(_ context.Context, limit int) ([]domain.Mutation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.Mutation, 0, limit)
	for _, m := range s.queue {
		if s.completed[m.QueueID] {
			continue
		}
		out = append(out, m)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (s *Store) MarkCompleted(_ context.Context, queueID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.completed[queueID] = true
	return nil
}

func (s *Store) MarkFailed(_ context.Context, queueID int64, cause string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.queue {
		if s.queue[i].QueueID == queueID {
			s.queue[i].Status = domain.MutationFailed
			s.queue[i].LastError = cause
			break
		}
	}
	return nil
}

func (s *Store) Remove(_ context.Context, queueID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.queue {
		if s.queue[i].QueueID == queueID {
			s.queue = append(s.queue[:i], s.queue[i+1:]...)
			break
		}
	}
	delete(s.completed, queueID)
	return nil
}

func (s *Store) Count(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, m := range s.queue {
		if !s.completed[m.QueueID] {
			count++
		}
	}
	return count, nil
}

func (s *Store) LastPulledAt(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.watermark, nil
}

func (s *Store) AdvanceWatermark(_ context.Context, ts int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ts > s.watermark {
		s.watermark = ts
	}
	return nil
}
