package agent

import (
	"fmt"
	"testing"
)

func TestStoreLifecycle(t *testing.T) {
	store := NewStore()

	task := store.Create(RoleCVAnalyzer, TaskAnalyzeCV, map[string]any{"candidate_email": "jane@example.com"})
	if task.Status != StatusPending {
		t.Fatalf("new task status = %s, want %s", task.Status, StatusPending)
	}
	if task.Result != nil {
		t.Fatalf("new task has result %v, want none before terminal state", task.Result)
	}

	store.MarkInProgress(task.ID)
	got, ok := store.Get(task.ID)
	if !ok {
		t.Fatal("task not found after create")
	}
	if got.Status != StatusInProgress {
		t.Fatalf("status = %s, want %s", got.Status, StatusInProgress)
	}

	if err := store.Complete(task.ID, map[string]any{"match_score": 75}); err != nil {
		t.Fatalf("Complete: %v", err)
	}

	got, _ = store.Get(task.ID)
	if got.Status != StatusCompleted {
		t.Fatalf("status = %s, want %s", got.Status, StatusCompleted)
	}
	if got.Result == nil {
		t.Fatal("completed task has no result")
	}
	if got.CompletedAt.IsZero() {
		t.Fatal("completed task has zero CompletedAt")
	}
}

func TestStoreStatusNeverRegresses(t *testing.T) {
	store := NewStore()
	task := store.Create(RoleRecruiter, TaskSendAvailabilityRequest, nil)

	if err := store.Complete(task.ID, nil); err != nil {
		t.Fatalf("Complete: %v", err)
	}

	// A terminal task cannot be finished again or moved back.
	if err := store.Fail(task.ID, fmt.Errorf("late failure")); err == nil {
		t.Fatal("Fail on completed task succeeded, want error")
	}
	store.MarkInProgress(task.ID)

	got, _ := store.Get(task.ID)
	if got.Status != StatusCompleted {
		t.Fatalf("status = %s, want %s to stick", got.Status, StatusCompleted)
	}
}

func TestStoreFailRecordsError(t *testing.T) {
	store := NewStore()
	task := store.Create(RoleInterviewAnalyzer, TaskAnalyzeInterview, nil)

	if err := store.Fail(task.ID, fmt.Errorf("transcript is required")); err != nil {
		t.Fatalf("Fail: %v", err)
	}

	got, _ := store.Get(task.ID)
	if got.Status != StatusFailed {
		t.Fatalf("status = %s, want %s", got.Status, StatusFailed)
	}
	if got.Result["error"] != "transcript is required" {
		t.Fatalf("result error = %v", got.Result["error"])
	}
}

func TestStoreActiveCount(t *testing.T) {
	store := NewStore()

	first := store.Create(RoleRecruiter, TaskSendAvailabilityRequest, nil)
	store.Create(RoleRecruiter, TaskSendAvailabilityRequest, nil)

	if got := store.Active(); got != 2 {
		t.Fatalf("Active = %d, want 2", got)
	}

	if err := store.Complete(first.ID, nil); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if got := store.Active(); got != 1 {
		t.Fatalf("Active after completion = %d, want 1", got)
	}
}

func TestStoreGetReturnsCopy(t *testing.T) {
	store := NewStore()
	task := store.Create(RoleRecruiter, TaskSendAvailabilityRequest, nil)

	got, _ := store.Get(task.ID)
	got.Status = StatusFailed

	again, _ := store.Get(task.ID)
	if again.Status != StatusPending {
		t.Fatalf("mutating a returned task changed store state: %s", again.Status)
	}
}

func TestStoreGetCopiesPayloadMaps(t *testing.T) {
	store := NewStore()
	task := store.Create(RoleCVAnalyzer, TaskAnalyzeCV, map[string]any{"candidate_email": "jane@example.com"})

	if err := store.Complete(task.ID, map[string]any{"match_score": 75}); err != nil {
		t.Fatalf("Complete: %v", err)
	}

	got, _ := store.Get(task.ID)
	got.Input["candidate_email"] = "mallory@example.com"
	got.Result["match_score"] = 0

	again, _ := store.Get(task.ID)
	if again.Input["candidate_email"] != "jane@example.com" {
		t.Fatalf("input mutated through a returned copy: %v", again.Input)
	}
	if again.Result["match_score"] != 75 {
		t.Fatalf("result mutated through a returned copy: %v", again.Result)
	}
}
