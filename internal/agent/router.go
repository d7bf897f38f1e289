package agent

import (
	"sync"

	"go.uber.org/zap"
)

// Each role gets a buffered queue of this size. Overflow is dropped with an
// error log rather than blocking the producer.
const queueCapacity = 256

// Dispatcher is the sending surface handlers use. Delivery is
// fire-and-forget: senders never learn whether the receiver processed the
// message.
type Dispatcher interface {
	Dispatch(msg *Message)
}

// Router delivers messages into role queues and keeps the append-only
// message history.
type Router struct {
	mu      sync.Mutex
	queues  map[RoleName]chan *Message
	history []*Message
	logger  *zap.Logger
}

func NewRouter(lg *zap.Logger) *Router {
	if lg == nil {
		lg = zap.NewNop()
	}
	return &Router{
		queues: make(map[RoleName]chan *Message),
		logger: lg,
	}
}

// Register attaches a role's queue. Called once per role at construction.
func (r *Router) Register(name RoleName, queue chan *Message) {
	r.mu.Lock()
	r.queues[name] = queue
	r.mu.Unlock()
}

// Dispatch appends the message to history and enqueues it for the target
// role. An unknown target or a full queue is reported, never raised.
func (r *Router) Dispatch(msg *Message) {
	r.mu.Lock()
	r.history = append(r.history, msg)
	queue, ok := r.queues[msg.To]
	r.mu.Unlock()

	if !ok {
		r.logger.Error("target role not found",
			zap.String("to", string(msg.To)),
			zap.String("from", string(msg.From)),
			zap.String("kind", string(msg.Kind)),
		)
		return
	}

	select {
	case queue <- msg:
		r.logger.Debug("routed message",
			zap.String("from", string(msg.From)),
			zap.String("to", string(msg.To)),
			zap.String("kind", string(msg.Kind)),
		)
	default:
		r.logger.Error("role queue full, dropping message",
			zap.String("to", string(msg.To)),
			zap.String("message_id", msg.ID),
		)
	}
}

// History returns the most recent messages, oldest first. A non-positive
// limit returns everything.
func (r *Router) History(limit int) []*Message {
	r.mu.Lock()
	defer r.mu.Unlock()

	start := 0
	if limit > 0 && len(r.history) > limit {
		start = len(r.history) - limit
	}

	out := make([]*Message, len(r.history)-start)
	copy(out, r.history[start:])
	return out
}

// HistorySize reports how many messages have been routed so far.
func (r *Router) HistorySize() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.history)
}
