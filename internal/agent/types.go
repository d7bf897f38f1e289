// Package agent implements the coordination layer: the task and message
// model, the router and per-role queues, and the six role handlers that move
// candidates through the screening pipeline.
package agent

import (
	"time"

	"github.com/google/uuid"
)

// RoleName identifies one of the fixed logical roles. Roles are instantiated
// once at coordinator construction and never created at runtime.
type RoleName string

const (
	RoleRecruiter         RoleName = "recruiter"
	RoleScheduler         RoleName = "scheduler"
	RoleInterviewer       RoleName = "interviewer"
	RoleEmailMonitor      RoleName = "email_monitor"
	RoleCVAnalyzer        RoleName = "cv_analyzer"
	RoleInterviewAnalyzer RoleName = "interview_analyzer"
)

// Roles lists every registered role in a stable order.
var Roles = []RoleName{
	RoleRecruiter,
	RoleScheduler,
	RoleInterviewer,
	RoleEmailMonitor,
	RoleCVAnalyzer,
	RoleInterviewAnalyzer,
}

// MessageKind classifies inter-role messages.
type MessageKind string

const (
	KindRequest        MessageKind = "request"
	KindResponse       MessageKind = "response"
	KindNotification   MessageKind = "notification"
	KindTaskAssignment MessageKind = "task_assignment"
	KindStatusUpdate   MessageKind = "status_update"
)

// Message is an addressed, typed unit of communication between roles. It is
// immutable once created; receivers treat the payload as read-only.
type Message struct {
	ID               string         `json:"id"`
	From             RoleName       `json:"from"`
	To               RoleName       `json:"to"`
	Kind             MessageKind    `json:"kind"`
	Payload          map[string]any `json:"payload"`
	Timestamp        time.Time      `json:"timestamp"`
	Priority         int            `json:"priority"`
	RequiresResponse bool           `json:"requires_response"`
}

// NewMessage builds a message with a fresh id and default (lowest) priority.
// Priority is advisory metadata; the router does not preempt on it.
func NewMessage(from, to RoleName, kind MessageKind, payload map[string]any) *Message {
	if payload == nil {
		payload = map[string]any{}
	}

	return &Message{
		ID:        uuid.NewString(),
		From:      from,
		To:        to,
		Kind:      kind,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
		Priority:  1,
	}
}

// TaskStatus is the task lifecycle state. Transitions are monotonic:
// pending, in_progress, then exactly one of completed or failed.
type TaskStatus string

const (
	StatusPending    TaskStatus = "pending"
	StatusInProgress TaskStatus = "in_progress"
	StatusCompleted  TaskStatus = "completed"
	StatusFailed     TaskStatus = "failed"
)

func (s TaskStatus) terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Task is a tracked unit of work assigned to a role. Result is populated
// exactly when the status is terminal.
type Task struct {
	ID          string         `json:"id"`
	Role        RoleName       `json:"role"`
	TaskType    string         `json:"task_type"`
	Input       map[string]any `json:"input"`
	Status      TaskStatus     `json:"status"`
	CreatedAt   time.Time      `json:"created_at"`
	CompletedAt time.Time      `json:"completed_at,omitempty"`
	Result      map[string]any `json:"result,omitempty"`
}

func newTask(role RoleName, taskType string, input map[string]any) *Task {
	if input == nil {
		input = map[string]any{}
	}

	return &Task{
		ID:        uuid.NewString(),
		Role:      role,
		TaskType:  taskType,
		Input:     input,
		Status:    StatusPending,
		CreatedAt: time.Now().UTC(),
	}
}
