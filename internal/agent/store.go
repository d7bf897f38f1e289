package agent

import (
	"fmt"
	"sync"
	"time"
)

// Store holds every task created during a run, keyed by id. Tasks are never
// evicted; memory is bounded by process lifetime.
type Store struct {
	mu    sync.RWMutex
	tasks map[string]*Task
	order []string
}

func NewStore() *Store {
	return &Store{tasks: make(map[string]*Task)}
}

// Create registers a new pending task and returns its id.
func (s *Store) Create(role RoleName, taskType string, input map[string]any) *Task {
	task := newTask(role, taskType, input)

	s.mu.Lock()
	s.tasks[task.ID] = task
	s.order = append(s.order, task.ID)
	s.mu.Unlock()

	return task.clone()
}

// Get returns a copy of the task, so callers cannot mutate store state.
func (s *Store) Get(id string) (*Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	task, ok := s.tasks[id]
	if !ok {
		return nil, false
	}
	return task.clone(), true
}

// MarkInProgress moves a pending task to in_progress. Later states are left
// untouched: status never regresses.
func (s *Store) MarkInProgress(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, ok := s.tasks[id]
	if !ok || task.Status != StatusPending {
		return
	}
	task.Status = StatusInProgress
}

// Complete finishes a task successfully with its result payload.
func (s *Store) Complete(id string, result map[string]any) error {
	return s.finish(id, StatusCompleted, result)
}

// Fail finishes a task with an error payload.
func (s *Store) Fail(id string, err error) error {
	return s.finish(id, StatusFailed, map[string]any{"error": err.Error()})
}

func (s *Store) finish(id string, status TaskStatus, result map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, ok := s.tasks[id]
	if !ok {
		return fmt.Errorf("task %s not found", id)
	}
	if task.Status.terminal() {
		return fmt.Errorf("task %s already %s", id, task.Status)
	}

	if result == nil {
		result = map[string]any{}
	}

	task.Status = status
	task.Result = result
	task.CompletedAt = time.Now().UTC()
	return nil
}

// Active counts tasks that have not reached a terminal status.
func (s *Store) Active() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, task := range s.tasks {
		if !task.Status.terminal() {
			count++
		}
	}
	return count
}

// List returns copies of all tasks in creation order.
func (s *Store) List() []*Task {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tasks := make([]*Task, 0, len(s.order))
	for _, id := range s.order {
		tasks = append(tasks, s.tasks[id].clone())
	}
	return tasks
}

func (t *Task) clone() *Task {
	copied := *t
	copied.Input = copyMap(t.Input)
	copied.Result = copyMap(t.Result)
	return &copied
}

func copyMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
