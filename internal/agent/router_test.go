package agent

import (
	"testing"

	"go.uber.org/zap"
)

func TestRouterDeliversInOrder(t *testing.T) {
	router := NewRouter(zap.NewNop())
	queue := make(chan *Message, queueCapacity)
	router.Register(RoleRecruiter, queue)

	first := NewMessage(RoleScheduler, RoleRecruiter, KindTaskAssignment, map[string]any{"n": 1})
	second := NewMessage(RoleScheduler, RoleRecruiter, KindTaskAssignment, map[string]any{"n": 2})
	router.Dispatch(first)
	router.Dispatch(second)

	if got := <-queue; got.ID != first.ID {
		t.Fatalf("first delivered message = %s, want %s", got.ID, first.ID)
	}
	if got := <-queue; got.ID != second.ID {
		t.Fatalf("second delivered message = %s, want %s", got.ID, second.ID)
	}
}

func TestRouterUnknownRoleIsNotFatal(t *testing.T) {
	router := NewRouter(zap.NewNop())

	msg := NewMessage(RoleScheduler, RoleName("nobody"), KindNotification, nil)
	router.Dispatch(msg)

	// The message still lands in history even though nothing received it.
	if got := router.HistorySize(); got != 1 {
		t.Fatalf("history size = %d, want 1", got)
	}
}

func TestRouterHistoryAppendOnly(t *testing.T) {
	router := NewRouter(zap.NewNop())
	queue := make(chan *Message, queueCapacity)
	router.Register(RoleRecruiter, queue)

	var ids []string
	for i := 0; i < 5; i++ {
		msg := NewMessage(RoleScheduler, RoleRecruiter, KindStatusUpdate, nil)
		ids = append(ids, msg.ID)
		router.Dispatch(msg)
	}

	history := router.History(0)
	if len(history) != 5 {
		t.Fatalf("history length = %d, want 5", len(history))
	}
	for i, msg := range history {
		if msg.ID != ids[i] {
			t.Fatalf("history[%d] = %s, want %s (oldest first)", i, msg.ID, ids[i])
		}
	}

	limited := router.History(2)
	if len(limited) != 2 {
		t.Fatalf("limited history length = %d, want 2", len(limited))
	}
	if limited[0].ID != ids[3] || limited[1].ID != ids[4] {
		t.Fatal("limited history did not return the most recent messages")
	}
}

func TestRouterDropsOnFullQueue(t *testing.T) {
	router := NewRouter(zap.NewNop())
	queue := make(chan *Message, 1)
	router.Register(RoleRecruiter, queue)

	router.Dispatch(NewMessage(RoleScheduler, RoleRecruiter, KindNotification, nil))
	router.Dispatch(NewMessage(RoleScheduler, RoleRecruiter, KindNotification, nil))

	if got := len(queue); got != 1 {
		t.Fatalf("queue length = %d, want 1 (overflow dropped)", got)
	}
	// Both attempts are part of the record regardless of delivery.
	if got := router.HistorySize(); got != 2 {
		t.Fatalf("history size = %d, want 2", got)
	}
}
