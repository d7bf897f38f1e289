package agent

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/odellis/hireflow/internal/ai"
	"github.com/odellis/hireflow/internal/mailbox"
	"go.uber.org/zap"
)

// Deps carries everything the coordinator's roles need. Zero-value optional
// fields get sensible defaults at construction.
type Deps struct {
	Mailbox           mailbox.Mailbox
	Classifier        ai.ReplyClassifier
	CVModel           ai.CVAnalyzer
	CVFallback        ai.CVAnalyzer
	InterviewAnalyzer ai.InterviewAnalyzer
	HREmail           string
	WatchInterval     time.Duration
	Logger            *zap.Logger
}

// RoleStatus is the observable state of one role loop.
type RoleStatus struct {
	Active    bool `json:"active"`
	QueueSize int  `json:"queue_size"`
}

// Status is a point-in-time snapshot of the coordination layer.
type Status struct {
	Running       bool                    `json:"running"`
	Roles         map[RoleName]RoleStatus `json:"roles"`
	TotalMessages int                     `json:"total_messages"`
	ActiveTasks   int                     `json:"active_tasks"`
	WatchingInbox bool                    `json:"watching_inbox"`
}

// Coordinator owns the task store, the router, and one loop per role. It is
// the single entry point callers use to create tasks and inject messages.
type Coordinator struct {
	store        *Store
	router       *Router
	roles        map[RoleName]*role
	emailMonitor *EmailMonitor
	logger       *zap.Logger

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
}

func NewCoordinator(deps Deps) *Coordinator {
	lg := deps.Logger
	if lg == nil {
		lg = zap.NewNop()
	}

	store := NewStore()
	router := NewRouter(lg)

	monitor := NewEmailMonitor(router, deps.Mailbox, deps.Classifier, deps.WatchInterval, lg)

	handlers := []Handler{
		NewRecruiter(router, deps.Mailbox, lg),
		NewScheduler(router, deps.Classifier, lg),
		NewInterviewer(router, lg),
		monitor,
		NewCVAnalyzer(router, deps.Mailbox, store, deps.CVModel, deps.CVFallback, deps.HREmail, lg),
		NewInterviewAnalyzer(store, deps.InterviewAnalyzer, lg),
	}

	roles := make(map[RoleName]*role, len(handlers))
	for _, handler := range handlers {
		r := newRole(handler, store, lg)
		roles[handler.Role()] = r
		router.Register(handler.Role(), r.queue)
	}

	return &Coordinator{
		store:        store,
		router:       router,
		roles:        roles,
		emailMonitor: monitor,
		logger:       lg,
	}
}

// Start launches every role loop and the reply watcher. Starting a running
// coordinator is a no-op.
func (c *Coordinator) Start(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running {
		c.logger.Info("coordinator already running")
		return
	}

	runCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel

	for _, name := range Roles {
		c.roles[name].start(runCtx)
	}
	c.emailMonitor.StartWatching(runCtx)

	c.running = true
	c.logger.Info("coordinator started", zap.Int("roles", len(c.roles)))
}

// Stop cancels all role loops and waits for each to drain its current
// message. Stopping a stopped coordinator is a no-op.
func (c *Coordinator) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running {
		return
	}

	c.emailMonitor.StopWatching()
	c.cancel()
	for _, name := range Roles {
		c.roles[name].wait()
	}

	c.running = false
	c.logger.Info("coordinator stopped")
}

// Running reports whether the role loops are live.
func (c *Coordinator) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

// AssignTask creates a tracked task and dispatches it to the owning role.
// The task id rides in the assignment payload so the role can terminate it.
func (c *Coordinator) AssignTask(role RoleName, taskType string, input map[string]any) (*Task, error) {
	if _, ok := c.roles[role]; !ok {
		return nil, fmt.Errorf("unknown role %q", role)
	}

	task := c.store.Create(role, taskType, input)

	payload := make(map[string]any, len(input)+2)
	for k, v := range input {
		payload[k] = v
	}
	payload["task_type"] = taskType
	payload["task_id"] = task.ID

	c.logger.Info("task assigned",
		zap.String("task_id", task.ID),
		zap.String("task_type", taskType),
		zap.String("role", string(role)),
	)

	c.router.Dispatch(NewMessage("", role, KindTaskAssignment, payload))
	return task, nil
}

// Send injects an arbitrary message into the routing layer.
func (c *Coordinator) Send(from, to RoleName, kind MessageKind, payload map[string]any) *Message {
	msg := NewMessage(from, to, kind, payload)
	c.router.Dispatch(msg)
	return msg
}

// Task looks up a task by id.
func (c *Coordinator) Task(id string) (*Task, bool) {
	return c.store.Get(id)
}

// Tasks returns all tasks in creation order.
func (c *Coordinator) Tasks() []*Task {
	return c.store.List()
}

// History returns recent routed messages, oldest first.
func (c *Coordinator) History(limit int) []*Message {
	return c.router.History(limit)
}

// EmailMonitor exposes the reply watcher for the simulation path.
func (c *Coordinator) EmailMonitor() *EmailMonitor {
	return c.emailMonitor
}

// Status snapshots every role's liveness and queue depth.
func (c *Coordinator) Status() Status {
	c.mu.Lock()
	running := c.running
	c.mu.Unlock()

	roles := make(map[RoleName]RoleStatus, len(c.roles))
	for name, r := range c.roles {
		roles[name] = RoleStatus{Active: r.isActive(), QueueSize: r.queueSize()}
	}

	return Status{
		Running:       running,
		Roles:         roles,
		TotalMessages: c.router.HistorySize(),
		ActiveTasks:   c.store.Active(),
		WatchingInbox: c.emailMonitor.Watching(),
	}
}
