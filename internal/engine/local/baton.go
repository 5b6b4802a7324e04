package local

import (
	"context"

	"github.com/dep2p/go-asyncrt/internal/core/suspend"
	"github.com/dep2p/go-asyncrt/internal/core/task"
)

// ============================================================================
//                              执行令牌
// ============================================================================

// baton 单线程执行令牌，空闲时令牌在通道中
type baton struct {
	ch chan struct{}
}

func newBaton() *baton {
	b := &baton{ch: make(chan struct{}, 1)}
	b.ch <- struct{}{}
	return b
}

// acquire 获取令牌，ctx 结束时放弃
func (b *baton) acquire(ctx context.Context) error {
	select {
	case <-b.ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// acquireBlocking 获取令牌，不可取消
func (b *baton) acquireBlocking() {
	<-b.ch
}

// release 交还令牌，未持有时 panic
func (b *baton) release() {
	select {
	case b.ch <- struct{}{}:
	default:
		panic(errBatonNotHeld)
	}
}

// ============================================================================
//                              挂起策略
// ============================================================================

// suspender ctx 持有令牌时，等待期间交还令牌
type suspender struct {
	e *Executor
}

var _ suspend.Suspender = suspender{}

// Suspend 实现 suspend.Suspender
func (s suspender) Suspend(ctx context.Context, wait func() error) error {
	if !task.Inside(ctx, s.e) {
		return wait()
	}
	s.e.baton.release()
	defer s.e.baton.acquireBlocking()
	return wait()
}
