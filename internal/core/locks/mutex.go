package locks

import (
	"context"

	"github.com/dep2p/go-asyncrt/internal/core/suspend"
	"github.com/dep2p/go-asyncrt/pkg/interfaces"
)

// Mutex 异步互斥锁内核
type Mutex struct {
	w *weighted
}

var _ interfaces.RawBlockingMutex = (*Mutex)(nil)

// NewMutex 创建互斥锁
func NewMutex(s suspend.Suspender) *Mutex {
	return &Mutex{w: newWeighted(1, s)}
}

// Lock 实现 interfaces.RawMutex
func (m *Mutex) Lock(ctx context.Context) error {
	return m.w.acquire(ctx, 1, m.w.susp)
}

// TryLock 实现 interfaces.RawMutex
func (m *Mutex) TryLock() bool {
	return m.w.tryAcquire(1)
}

// Unlock 实现 interfaces.RawMutex，未加锁时 panic
func (m *Mutex) Unlock() {
	m.w.release(1)
}

// LockBlocking 实现 interfaces.RawBlockingMutex
func (m *Mutex) LockBlocking() {
	// Background 永不结束，信号量不会被关闭
	_ = m.w.acquire(context.Background(), 1, suspend.Inline{})
}
