package pool

import (
	"context"

	"golang.org/x/sync/semaphore"

	"github.com/dep2p/go-asyncrt/internal/core/suspend"
	"github.com/dep2p/go-asyncrt/pkg/interfaces"
)

// Mutex 基于单许可加权信号量的互斥锁
type Mutex struct {
	w    *semaphore.Weighted
	susp suspend.Suspender
}

var _ interfaces.RawMutex = (*Mutex)(nil)

func newMutex(s suspend.Suspender) *Mutex {
	return &Mutex{w: semaphore.NewWeighted(1), susp: suspend.OrInline(s)}
}

// Lock 实现 interfaces.RawMutex
func (m *Mutex) Lock(ctx context.Context) error {
	if m.w.TryAcquire(1) {
		return nil
	}
	return m.susp.Suspend(ctx, func() error {
		return m.w.Acquire(ctx, 1)
	})
}

// TryLock 实现 interfaces.RawMutex
func (m *Mutex) TryLock() bool {
	return m.w.TryAcquire(1)
}

// Unlock 实现 interfaces.RawMutex，未加锁时 panic
func (m *Mutex) Unlock() {
	m.w.Release(1)
}
