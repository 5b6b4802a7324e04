package asyncrt

import (
	"context"

	"github.com/dep2p/go-asyncrt/pkg/interfaces"
	"github.com/dep2p/go-asyncrt/pkg/types"
)

// Handle 类型化的任务句柄
type Handle[T any] struct {
	t interfaces.Task
}

var _ interfaces.Handle[int] = (*Handle[int])(nil)

// Spawn 提交任务并立即返回句柄
//
// fn 收到的 ctx 在任务被取消或执行器关闭时结束。
func Spawn[T any](ex interfaces.Executor, fn func(ctx context.Context) T) *Handle[T] {
	return &Handle[T]{t: ex.Spawn(func(ctx context.Context) any { return fn(ctx) })}
}

// BlockOn 在当前 goroutine 上运行 fn 直到完成
//
// 在同一执行器的任务或 BlockOn 内部调用会 panic ErrReentrantBlockOn。
func BlockOn[T any](ctx context.Context, ex interfaces.Executor, fn func(ctx context.Context) T) T {
	return cast[T](ex.BlockOn(ctx, func(ctx context.Context) any { return fn(ctx) }))
}

// ID 任务标识
func (h *Handle[T]) ID() types.TaskID {
	return h.t.ID()
}

// Await 挂起直到任务结束
//
// 结果包装由引擎决定，见 Executor.Wrap。ctx 结束只影响等待方。
func (h *Handle[T]) Await(ctx context.Context) (T, error) {
	v, err := h.t.Await(ctx)
	if err != nil {
		var zero T
		return zero, err
	}
	return cast[T](v), nil
}

// Done 任务结束时关闭
func (h *Handle[T]) Done() <-chan struct{} {
	return h.t.Done()
}

// Cancel 取消任务，已提交的副作用不会回滚
//
// 之后 Await 总是报告取消，任务体即使运行完毕其返回值也被丢弃。
func (h *Handle[T]) Cancel() {
	h.t.Cancel()
}

// Detach 放弃句柄，任务继续运行；之后的 Cancel 无效
func (h *Handle[T]) Detach() {
	h.t.Detach()
}

// Task 返回底层任务
func (h *Handle[T]) Task() interfaces.Task {
	return h.t
}
