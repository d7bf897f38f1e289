package agent

import (
	"context"
	"sync/atomic"

	"go.uber.org/zap"
)

// Handler is the role-specific message processing logic.
type Handler interface {
	Role() RoleName
	HandleMessage(ctx context.Context, msg *Message) error
}

// role wraps a handler with its queue and processing goroutine. One message
// is handled at a time, in queue order; a failure or panic while handling
// one message never stops the loop.
type role struct {
	handler Handler
	queue   chan *Message
	store   *Store
	logger  *zap.Logger
	active  atomic.Bool
	done    chan struct{}
}

func newRole(handler Handler, store *Store, lg *zap.Logger) *role {
	return &role{
		handler: handler,
		queue:   make(chan *Message, queueCapacity),
		store:   store,
		logger:  lg.With(zap.String("role", string(handler.Role()))),
	}
}

func (r *role) start(ctx context.Context) {
	r.active.Store(true)
	r.done = make(chan struct{})
	r.logger.Info("role started")

	go r.loop(ctx)
}

func (r *role) loop(ctx context.Context) {
	defer close(r.done)
	defer r.active.Store(false)

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("role stopped", zap.Int("abandoned", len(r.queue)))
			return
		case msg := <-r.queue:
			r.process(ctx, msg)
		}
	}
}

func (r *role) process(ctx context.Context, msg *Message) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("panic while handling message",
				zap.String("message_id", msg.ID),
				zap.Any("panic", rec),
			)
		}
	}()

	r.logger.Debug("received message",
		zap.String("kind", string(msg.Kind)),
		zap.String("from", string(msg.From)),
	)

	// Task pickup: an assignment that names a task moves it out of pending
	// before the handler runs.
	if msg.Kind == KindTaskAssignment {
		if taskID, ok := msg.Payload["task_id"].(string); ok && taskID != "" {
			r.store.MarkInProgress(taskID)
		}
	}

	if err := r.handler.HandleMessage(ctx, msg); err != nil {
		r.logger.Error("message handling failed",
			zap.String("message_id", msg.ID),
			zap.Error(err),
		)
	}
}

// wait blocks until the loop goroutine has exited.
func (r *role) wait() {
	if r.done != nil {
		<-r.done
	}
}

func (r *role) isActive() bool {
	return r.active.Load()
}

func (r *role) queueSize() int {
	return len(r.queue)
}
