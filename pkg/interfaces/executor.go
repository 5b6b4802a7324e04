// Package interfaces 定义 go-asyncrt 能力契约
//
// 本文件定义执行器能力。
package interfaces

import (
	"context"

	"github.com/dep2p/go-asyncrt/pkg/types"
)

// TaskFunc 任务函数
//
// ctx 在任务被取消或执行器关闭时结束，任务应在挂起点检查它。
type TaskFunc func(ctx context.Context) any

// Task 引擎产生的任务句柄
type Task interface {
	// ID 任务标识
	ID() types.TaskID

	// Await 挂起直到任务结束
	//
	// WrapOutcome 引擎：panic 或取消时返回 *types.JoinError。
	// WrapNone 引擎：panic 在调用方重新抛出，取消返回 types.ErrCancelled。
	// ctx 结束只影响等待方，不影响任务。
	Await(ctx context.Context) (any, error)

	// Done 任务结束时关闭
	Done() <-chan struct{}

	// Cancel 取消任务（分离后无效）
	//
	// 任务在下一个挂起点停止。Cancel 之后结束的任务一律按取消报告，
	// 即使任务体未经过挂起点而运行完毕，其返回值也被丢弃，已提交的副作用保留。
	Cancel()

	// Detach 放弃句柄，任务继续运行至结束
	Detach()
}

// Executor 任务执行器
type Executor interface {
	// Spawn 提交任务并立即返回
	Spawn(fn TaskFunc) Task

	// BlockOn 在当前 goroutine 上运行 fn 直到完成
	//
	// 在执行器内部（任务或另一个 BlockOn 中）调用会 panic
	// types.ErrReentrantBlockOn。
	BlockOn(ctx context.Context, fn TaskFunc) any

	// Wrap 结果包装方式
	Wrap() types.WrapMode

	// Close 取消所有任务并拒绝新任务，不等待
	Close() error

	// Shutdown 取消所有任务并等待它们退出
	Shutdown(ctx context.Context) error
}

// Handle 类型化的任务句柄
type Handle[T any] interface {
	ID() types.TaskID
	Await(ctx context.Context) (T, error)
	Done() <-chan struct{}
	Cancel()
	Detach()
}
