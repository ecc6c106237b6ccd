package app

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"rewin/internal/types"
)

type TaskKind string

const (
	TaskRestore  TaskKind = "restore"
	TaskResolve  TaskKind = "resolve"
	TaskDownload TaskKind = "download"
)

type TaskStatus string

const (
	TaskRunning   TaskStatus = "running"
	TaskCompleted TaskStatus = "completed"
	TaskFailed    TaskStatus = "failed"
	TaskCanceled  TaskStatus = "canceled"
)

type TaskEventType string

const (
	TaskEventState TaskEventType = "state"
	TaskEventDone  TaskEventType = "done"
)

// TaskEvent reports a restore state change or the end of a task.
type TaskEvent struct {
	Type   TaskEventType      `json:"type"`
	State  types.RestoreState `json:"state,omitempty"`
	Status TaskStatus         `json:"status,omitempty"`
}

const taskEventBuffer = 32

// Task is one long-running restore, resolve or download operation.
type Task struct {
	ID         string
	Kind       TaskKind
	PackageDir string

	mu         sync.Mutex
	status     TaskStatus
	state      types.RestoreState
	startedAt  time.Time
	finishedAt *time.Time
	errMsg     string
	err        error
	output     []string
	result     any
	cancel     context.CancelFunc
	done       chan struct{}
	events     chan TaskEvent
}

// TaskSnapshot is a consistent, serializable copy of a task.
type TaskSnapshot struct {
	ID         string             `json:"id"`
	Kind       TaskKind           `json:"kind"`
	PackageDir string             `json:"package_dir"`
	Status     TaskStatus         `json:"status"`
	State      types.RestoreState `json:"state,omitempty"`
	StartedAt  time.Time          `json:"started_at"`
	FinishedAt *time.Time         `json:"finished_at,omitempty"`
	Error      string             `json:"error,omitempty"`
	Output     []string           `json:"output"`
	Result     any                `json:"result,omitempty"`
}

// Append adds an output line. It makes a task usable as a log sink.
func (t *Task) Append(line string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.output = append(t.output, line)
}

// LogsSince returns output lines starting from the given index.
func (t *Task) LogsSince(offset int) []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	if offset >= len(t.output) {
		return nil
	}
	lines := make([]string, len(t.output)-offset)
	copy(lines, t.output[offset:])
	return lines
}

func (t *Task) SetState(state types.RestoreState) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.finishedAt != nil {
		return
	}
	t.state = state
	t.emit(TaskEvent{Type: TaskEventState, State: state})
}

func (t *Task) Status() TaskStatus {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status
}

// Err is the error the task finished with, if any.
func (t *Task) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.err
}

func (t *Task) Result() any {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.result
}

func (t *Task) Snapshot() TaskSnapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	output := make([]string, len(t.output))
	copy(output, t.output)
	return TaskSnapshot{
		ID:         t.ID,
		Kind:       t.Kind,
		PackageDir: t.PackageDir,
		Status:     t.status,
		State:      t.state,
		StartedAt:  t.startedAt,
		FinishedAt: t.finishedAt,
		Error:      t.errMsg,
		Output:     output,
		Result:     t.result,
	}
}

// Done is closed when the task has finished.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Events delivers state changes and a final done event, then closes.
// Events are dropped while the buffer is full.
func (t *Task) Events() <-chan TaskEvent {
	return t.events
}

// Wait blocks until the task finishes or ctx ends and returns the task's
// error.
func (t *Task) Wait(ctx context.Context) error {
	select {
	case <-t.done:
		return t.Err()
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Cancel asks the task to stop. Running processes are killed.
func (t *Task) Cancel() {
	t.cancel()
}

func (t *Task) finish(status TaskStatus, result any, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.finishedAt != nil {
		return
	}
	now := time.Now()
	t.status = status
	t.result = result
	t.err = err
	if err != nil {
		t.errMsg = err.Error()
	}
	t.finishedAt = &now
	t.emit(TaskEvent{Type: TaskEventDone, Status: status})
	close(t.events)
	close(t.done)
}

// emit must be called with t.mu held.
func (t *Task) emit(event TaskEvent) {
	select {
	case t.events <- event:
	default:
	}
}

// TaskFunc is the body of a task. The returned result is kept on the task
// even when err is non-nil.
type TaskFunc func(ctx context.Context, task *Task) (any, error)

// TaskStore is an in-memory thread-safe store for tasks.
type TaskStore struct {
	mu    sync.RWMutex
	tasks map[string]*Task
}

func NewTaskStore() *TaskStore {
	return &TaskStore{tasks: make(map[string]*Task)}
}

// Start registers a task and runs fn on its own goroutine. The task's
// context derives from ctx without its cancellation, so a task outlives
// the request that started it until Cancel is called.
func (s *TaskStore) Start(ctx context.Context, kind TaskKind, packageDir string, fn TaskFunc) *Task {
	taskCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	task := &Task{
		ID:         uuid.New().String(),
		Kind:       kind,
		PackageDir: packageDir,
		status:     TaskRunning,
		startedAt:  time.Now(),
		output:     []string{},
		cancel:     cancel,
		done:       make(chan struct{}),
		events:     make(chan TaskEvent, taskEventBuffer),
	}
	s.mu.Lock()
	s.tasks[task.ID] = task
	s.mu.Unlock()

	go func() {
		defer cancel()
		result, err := runTask(taskCtx, task, fn)
		status := TaskCompleted
		switch {
		case taskCtx.Err() != nil:
			status = TaskCanceled
			if err == nil {
				err = taskCtx.Err()
			}
		case err != nil:
			status = TaskFailed
		}
		log.Ctx(taskCtx).Debug().Str("task", task.ID).Str("kind", string(kind)).Str("status", string(status)).Msg("task finished")
		task.finish(status, result, err)
	}()
	return task
}

func runTask(ctx context.Context, task *Task, fn TaskFunc) (result any, err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			err = fmt.Errorf("task panicked: %v", recovered)
		}
	}()
	return fn(ctx, task)
}

func (s *TaskStore) Get(id string) *Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tasks[id]
}

// List returns all tasks, most recent first.
func (s *TaskStore) List() []*Task {
	s.mu.RLock()
	result := make([]*Task, 0, len(s.tasks))
	for _, task := range s.tasks {
		result = append(result, task)
	}
	s.mu.RUnlock()
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].startedAt.After(result[j].startedAt)
	})
	return result
}
