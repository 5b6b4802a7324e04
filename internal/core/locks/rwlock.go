package locks

import (
	"context"

	"github.com/dep2p/go-asyncrt/internal/core/suspend"
	"github.com/dep2p/go-asyncrt/pkg/interfaces"
)

// MaxReaders 同时持有读锁的最大数量
const MaxReaders = 1 << 29

// RwLock 公平异步读写锁内核
//
// 读者获取 1 个许可，写者获取全部 MaxReaders 个许可。
type RwLock struct {
	w *weighted
}

var _ interfaces.RawBlockingRwLock = (*RwLock)(nil)

// NewRwLock 创建读写锁
func NewRwLock(s suspend.Suspender) *RwLock {
	return &RwLock{w: newWeighted(MaxReaders, s)}
}

// RLock 实现 interfaces.RawRwLock
func (l *RwLock) RLock(ctx context.Context) error {
	return l.w.acquire(ctx, 1, l.w.susp)
}

// TryRLock 实现 interfaces.RawRwLock
func (l *RwLock) TryRLock() bool {
	return l.w.tryAcquire(1)
}

// RUnlock 实现 interfaces.RawRwLock
func (l *RwLock) RUnlock() {
	l.w.release(1)
}

// Lock 实现 interfaces.RawRwLock
func (l *RwLock) Lock(ctx context.Context) error {
	return l.w.acquire(ctx, MaxReaders, l.w.susp)
}

// TryLock 实现 interfaces.RawRwLock
func (l *RwLock) TryLock() bool {
	return l.w.tryAcquire(MaxReaders)
}

// Unlock 实现 interfaces.RawRwLock
func (l *RwLock) Unlock() {
	l.w.release(MaxReaders)
}

// Downgrade 实现 interfaces.RawRwLock
//
// 保留 1 个许可作为读锁，归还其余许可，排队中的读者随即被唤醒。
func (l *RwLock) Downgrade() {
	l.w.release(MaxReaders - 1)
}

// RLockBlocking 实现 interfaces.RawBlockingRwLock
func (l *RwLock) RLockBlocking() {
	_ = l.w.acquire(context.Background(), 1, suspend.Inline{})
}

// LockBlocking 实现 interfaces.RawBlockingRwLock
func (l *RwLock) LockBlocking() {
	_ = l.w.acquire(context.Background(), MaxReaders, suspend.Inline{})
}
