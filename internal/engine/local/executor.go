package local

import (
	"context"

	"github.com/dep2p/go-asyncrt/internal/core/metrics"
	"github.com/dep2p/go-asyncrt/internal/core/suspend"
	"github.com/dep2p/go-asyncrt/internal/core/task"
	"github.com/dep2p/go-asyncrt/pkg/interfaces"
	"github.com/dep2p/go-asyncrt/pkg/types"
)

// Executor 单线程执行器
type Executor struct {
	baton *baton
	group *task.Group
}

var _ interfaces.Executor = (*Executor)(nil)

// NewExecutor 创建执行器
func NewExecutor(r metrics.Reporter) *Executor {
	e := &Executor{baton: newBaton()}
	e.group = task.NewGroup(Name, types.WrapNone, e.Suspender(), r)
	return e
}

// Suspender 返回与本执行器令牌绑定的挂起策略
func (e *Executor) Suspender() suspend.Suspender {
	return suspender{e: e}
}

// Spawn 实现 interfaces.Executor
//
// 任务在获得令牌后开始运行，可以在任何 goroutine 上调用。
func (e *Executor) Spawn(fn interfaces.TaskFunc) interfaces.Task {
	t := e.group.New(e.enter)
	go e.run(t, fn)
	return t
}

func (e *Executor) run(t *task.Task, fn interfaces.TaskFunc) {
	if err := e.baton.acquire(t.Context()); err != nil {
		t.Abandon()
		return
	}
	defer e.baton.release()
	t.Run(fn)
}

func (e *Executor) enter(ctx context.Context) context.Context {
	return task.Enter(ctx, e)
}

// BlockOn 实现 interfaces.Executor
//
// 在调用方 goroutine 上持有令牌运行 fn，期间已派生的任务在 fn 挂起时运行。
func (e *Executor) BlockOn(ctx context.Context, fn interfaces.TaskFunc) any {
	if task.Inside(ctx, e) {
		panic(types.ErrReentrantBlockOn)
	}
	e.baton.acquireBlocking()
	defer e.baton.release()
	return fn(e.enter(ctx))
}

// Yield 交还令牌让其它就绪任务运行，然后继续
//
// ctx 不持有令牌时立即返回。
func (e *Executor) Yield(ctx context.Context) {
	_ = e.Suspender().Suspend(ctx, func() error { return nil })
}

// Wrap 实现 interfaces.Executor
func (e *Executor) Wrap() types.WrapMode {
	return types.WrapNone
}

// Running 运行中与等待令牌的任务数
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
