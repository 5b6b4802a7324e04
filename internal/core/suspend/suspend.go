// Package suspend 定义挂起点的抽象
//
// 所有会挂起的原语（锁、通道、定时器、文件系统卸载）在慢路径上
// 都通过 Suspender 等待，由引擎决定等待期间如何处置执行权：
//   - native、pool：直接阻塞 goroutine，Go 调度器负责让出
//   - local：等待前交还单线程令牌，等待后重新获取
package suspend

import (
	"context"
)

// Suspender 挂起策略
type Suspender interface {
	// Suspend 在释放执行权的状态下运行 wait，返回其错误
	//
	// wait 必须自行监听 ctx。
	Suspend(ctx context.Context, wait func() error) error
}

// Inline 直接在当前 goroutine 上等待
type Inline struct{}

// Suspend 实现 Suspender
func (Inline) Suspend(_ context.Context, wait func() error) error {
	return wait()
}

var _ Suspender = Inline{}

// Func 函数适配器
type Func func(ctx context.Context, wait func() error) error

// Suspend 实现 Suspender
func (f Func) Suspend(ctx context.Context, wait func() error) error {
	return f(ctx, wait)
}

// OrInline 为 nil 时返回 Inline
func OrInline(s Suspender) Suspender {
	if s == nil {
		return Inline{}
	}
	return s
}

// Wait 挂起直到 ch 关闭或 ctx 结束
func Wait(ctx context.Context, s Suspender, ch <-chan struct{}) error {
	select {
	case <-ch:
		return nil
	default:
	}
	return s.Suspend(ctx, func() error {
		select {
		case <-ch:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	})
}

// Offload 在释放执行权的状态下运行阻塞调用 fn
//
// 用于文件系统等没有挂起点的系统调用。ctx 结束时立即返回 ctx.Err()，
// fn 在后台继续运行至完成，其结果被丢弃。
func Offload[T any](ctx context.Context, s Suspender, fn func() (T, error)) (T, error) {
	if _, ok := s.(Inline); ok {
		if err := ctx.Err(); err != nil {
			var zero T
			return zero, err
		}
		return fn()
	}

	type result struct {
		v   T
		err error
	}
	done := make(chan result, 1)
	var out result
	err := s.Suspend(ctx, func() error {
		go func() {
			v, err := fn()
			done <- result{v: v, err: err}
		}()
		select {
		case out = <-done:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return out.v, out.err
}
