// Package task 提供各引擎共用的任务与任务组
//
// Task 记录一次派生的完整生命周期：运行、panic 捕获、取消、分离。
// 引擎决定任务在哪个 goroutine 上运行（独立 goroutine、单线程令牌、
// 固定工作池），以及结果如何交给等待方（WrapMode）。
//
// Group 把任务登记到执行器上，配合 lifecycle.Coordinator 实现
// Close（取消全部并拒绝新任务）与 Shutdown（等待全部退出）。
package task

import (
	"context"
	"runtime/debug"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/dep2p/go-asyncrt/internal/core/suspend"
	"github.com/dep2p/go-asyncrt/pkg/interfaces"
	"github.com/dep2p/go-asyncrt/pkg/types"
)

// Task 任务
type Task struct {
	id     types.TaskID
	wrap   types.WrapMode
	susp   suspend.Suspender
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}

	started   atomic.Bool
	detached  atomic.Bool
	cancelled atomic.Bool

	// 以下字段在 done 关闭前写入，之后只读
	value    any
	panicked bool
	aborted  bool
	panicVal any
	stack    []byte
	err      error

	onFinish func(*Task)
}

var _ interfaces.Task = (*Task)(nil)

// NewID 生成任务标识
func NewID() types.TaskID {
	return types.TaskID(uuid.NewString())
}

func newTask(ctx context.Context, wrap types.WrapMode, s suspend.Suspender) *Task {
	ctx, cancel := context.WithCancel(ctx)
	return &Task{
		id:     NewID(),
		wrap:   wrap,
		susp:   suspend.OrInline(s),
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}
}

// Rejected 返回已结束的任务，Await 得到 err
func Rejected(wrap types.WrapMode, s suspend.Suspender, err error) *Task {
	t := newTask(context.Background(), wrap, s)
	t.started.Store(true)
	t.err = err
	t.cancel()
	close(t.done)
	return t
}

// ID 实现 interfaces.Task
func (t *Task) ID() types.TaskID {
	return t.id
}

// Context 任务的上下文，取消或执行器关闭时结束
func (t *Task) Context() context.Context {
	return t.ctx
}

// Run 在当前 goroutine 上运行任务体
//
// 只有第一次调用生效。任务在开始前已被取消时不运行 fn。
func (t *Task) Run(fn interfaces.TaskFunc) {
	if !t.started.CompareAndSwap(false, true) {
		return
	}
	defer t.finish()
	if t.ctx.Err() != nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			t.panicked = true
			t.panicVal = r
			t.stack = debug.Stack()
		}
	}()
	t.value = fn(t.ctx)
}

// Abandon 放弃尚未开始的任务，视为取消
func (t *Task) Abandon() {
	if !t.started.CompareAndSwap(false, true) {
		return
	}
	t.cancelled.Store(true)
	t.finish()
}

func (t *Task) finish() {
	if t.cancelled.Load() && !t.panicked {
		t.aborted = true
		t.value = nil
	}
	t.cancel()
	// 先记账再唤醒等待者，Await 返回时计数已更新
	if t.onFinish != nil {
		t.onFinish(t)
	}
	close(t.done)
}

// Done 实现 interfaces.Task
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Panicked 任务体是否 panic，结束前为 false
func (t *Task) Panicked() bool {
	select {
	case <-t.done:
		return t.panicked
	default:
		return false
	}
}

// Cancelled 任务是否以取消结束，结束前为 false
func (t *Task) Cancelled() bool {
	select {
	case <-t.done:
		return t.aborted
	default:
		return false
	}
}

// Await 实现 interfaces.Task
func (t *Task) Await(ctx context.Context) (any, error) {
	if err := suspend.Wait(ctx, t.susp, t.done); err != nil {
		return nil, err
	}
	return t.result()
}

func (t *Task) result() (any, error) {
	switch {
	case t.err != nil:
		return nil, t.err
	case t.panicked:
		if t.wrap == types.WrapNone {
			panic(t.panicVal)
		}
		return nil, &types.JoinError{TaskID: t.id, Panic: t.panicVal, Stack: t.stack}
	case t.aborted:
		if t.wrap == types.WrapNone {
			return nil, types.ErrCancelled
		}
		return nil, &types.JoinError{TaskID: t.id, Cancelled: true}
	default:
		return t.value, nil
	}
}

// Cancel 实现 interfaces.Task
//
// 任务已结束或已分离时无效。已提交的副作用不会回滚，
// 之后结束的任务体返回值被丢弃，结果按取消报告。
func (t *Task) Cancel() {
	if t.detached.Load() {
		return
	}
	t.forceCancel()
}

// forceCancel 忽略分离状态，执行器关闭时使用
func (t *Task) forceCancel() {
	select {
	case <-t.done:
		return
	default:
	}
	t.cancelled.Store(true)
	t.cancel()
}

// Detach 实现 interfaces.Task
func (t *Task) Detach() {
	t.detached.Store(true)
}

// Detached 是否已分离
func (t *Task) Detached() bool {
	return t.detached.Load()
}
