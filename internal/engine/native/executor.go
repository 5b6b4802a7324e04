package native

import (
	"context"

	"golang.org/x/sync/semaphore"

	"github.com/dep2p/go-asyncrt/internal/core/metrics"
	"github.com/dep2p/go-asyncrt/internal/core/suspend"
	"github.com/dep2p/go-asyncrt/internal/core/task"
	"github.com/dep2p/go-asyncrt/pkg/interfaces"
	"github.com/dep2p/go-asyncrt/pkg/types"
)

// Executor 多线程执行器
type Executor struct {
	group *task.Group

	// limit 同时运行的任务上限，nil 表示不限制
	limit *semaphore.Weighted
}

var _ interfaces.Executor = (*Executor)(nil)

// NewExecutor 创建执行器，workers 为 0 时不限制并发
func NewExecutor(workers int, r metrics.Reporter) *Executor {
	e := &Executor{
		group: task.NewGroup(Name, types.WrapOutcome, suspend.Inline{}, r),
	}
	if workers > 0 {
		e.limit = semaphore.NewWeighted(int64(workers))
	}
	return e
}

// Spawn 实现 interfaces.Executor
func (e *Executor) Spawn(fn interfaces.TaskFunc) interfaces.Task {
	t := e.group.New(e.enter)
	go e.run(t, fn)
	return t
}

func (e *Executor) run(t *task.Task, fn interfaces.TaskFunc) {
	if e.limit != nil {
		if err := e.limit.Acquire(t.Context(), 1); err != nil {
			t.Abandon()
			return
		}
		defer e.limit.Release(1)
	}
	t.Run(fn)
}

func (e *Executor) enter(ctx context.Context) context.Context {
	return task.Enter(ctx, e)
}

// BlockOn 实现 interfaces.Executor
func (e *Executor) BlockOn(ctx context.Context, fn interfaces.TaskFunc) any {
	if task.Inside(ctx, e) {
		panic(types.ErrReentrantBlockOn)
	}
	return fn(e.enter(ctx))
}

// Wrap 实现 interfaces.Executor
func (e *Executor) Wrap() types.WrapMode {
	return types.WrapOutcome
}

// Running 运行中与等待工作槽的任务数
func (e *Executor) Running() int {
	return e.group.Len()
}

// Close 实现 interfaces.Executor
func (e *Executor) Close() error {
	e.group.Close()
	return nil
}

// Shutdown 实现 interfaces.Executor
func (e *Executor) Shutdown(ctx context.Context) error {
	return e.group.Shutdown(ctx)
}
