package pool

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/dep2p/go-asyncrt/internal/core/metrics"
	"github.com/dep2p/go-asyncrt/internal/core/queue"
	"github.com/dep2p/go-asyncrt/internal/core/suspend"
	"github.com/dep2p/go-asyncrt/internal/core/task"
	"github.com/dep2p/go-asyncrt/pkg/interfaces"
	"github.com/dep2p/go-asyncrt/pkg/types"
)

// job 排队中的任务
type job struct {
	t  *task.Task
	fn interfaces.TaskFunc
}

// workerMark 标记 ctx 属于本池工作协程上运行的任务
type workerMark struct {
	e *Executor
}

// Executor 工作协程池执行器
type Executor struct {
	group *task.Group
	size  int

	// mu 保证 Close 之后不再有任务入队
	mu     sync.RWMutex
	jobs   *queue.Sender
	queue  *queue.Receiver
	closed bool

	work       chan job
	dispatched chan struct{}

	workers atomic.Int64
	surplus atomic.Int64
}

var _ interfaces.Executor = (*Executor)(nil)

// NewExecutor 创建执行器，workers 为 0 时使用 CPU 数
func NewExecutor(workers int, r metrics.Reporter) *Executor {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	tx, rx := queue.New(0, suspend.Inline{})
	e := &Executor{
		size:       workers,
		jobs:       tx,
		queue:      rx,
		work:       make(chan job),
		dispatched: make(chan struct{}),
	}
	e.group = task.NewGroup(Name, types.WrapNone, e.Suspender(), r)

	go e.dispatch()
	for i := 0; i < workers; i++ {
		e.startWorker()
	}
	return e
}

// Suspender 返回挂起策略
//
// 池中任务挂起时补充一个工作协程，恢复后由多出的工作协程退出。
func (e *Executor) Suspender() suspend.Suspender {
	return suspend.Func(func(ctx context.Context, wait func() error) error {
		if !task.Inside(ctx, workerMark{e}) {
			return wait()
		}
		e.startWorker()
		defer e.surplus.Add(1)
		return wait()
	})
}

func (e *Executor) dispatch() {
	defer close(e.dispatched)
	defer close(e.work)
	for {
		v, err := e.queue.Recv(context.Background())
		if err != nil {
			return
		}
		e.work <- v.(job)
	}
}

func (e *Executor) startWorker() {
	e.workers.Add(1)
	go e.worker()
}

func (e *Executor) worker() {
	defer e.workers.Add(-1)
	for j := range e.work {
		if j.t.Context().Err() != nil {
			j.t.Abandon()
		} else {
			j.t.Run(j.fn)
		}
		if e.retire() {
			return
		}
	}
}

// retire 有多余的工作协程时退出当前这个
func (e *Executor) retire() bool {
	for {
		n := e.surplus.Load()
		if n <= 0 {
			return false
		}
		if e.surplus.CompareAndSwap(n, n-1) {
			return true
		}
	}
}

func (e *Executor) enter(ctx context.Context) context.Context {
	return task.Enter(task.Enter(ctx, e), workerMark{e})
}

// Spawn 实现 interfaces.Executor
func (e *Executor) Spawn(fn interfaces.TaskFunc) interfaces.Task {
	t := e.group.New(e.enter)
	select {
	case <-t.Done():
		return t
	default:
	}

	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.closed {
		t.Abandon()
		return t
	}
	if err := e.jobs.Send(context.Background(), job{t: t, fn: fn}); err != nil {
		t.Abandon()
	}
	return t
}

// BlockOn 实现 interfaces.Executor
//
// 在调用方 goroutine 上运行 fn，不占用工作协程。
func (e *Executor) BlockOn(ctx context.Context, fn interfaces.TaskFunc) any {
	if task.Inside(ctx, e) {
		panic(types.ErrReentrantBlockOn)
	}
	return fn(task.Enter(ctx, e))
}

// Wrap 实现 interfaces.Executor
func (e *Executor) Wrap() types.WrapMode {
	return types.WrapNone
}

// Size 配置的工作协程数
func (e *Executor) Size() int {
	return e.size
}

// Workers 当前存活的工作协程数，包括补充的
func (e *Executor) Workers() int {
	return int(e.workers.Load())
}

// Running 运行中与排队的任务数
func (e *Executor) Running() int {
	return e.group.Len()
}

// Close 实现 interfaces.Executor
//
// 取消所有任务并关闭队列，排队中的任务不再运行。
func (e *Executor) Close() error {
	e.group.Close()
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.closed {
		e.closed = true
		e.jobs.Close()
	}
	return nil
}

// Shutdown 实现 interfaces.Executor
func (e *Executor) Shutdown(ctx context.Context) error {
	_ = e.Close()
	if err := e.group.Shutdown(ctx); err != nil {
		return err
	}
	select {
	case <-e.dispatched:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
