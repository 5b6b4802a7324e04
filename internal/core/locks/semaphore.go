package locks

import (
	"container/list"
	"context"
	"sync"
	"sync/atomic"

	"github.com/dep2p/go-asyncrt/internal/core/suspend"
	"github.com/dep2p/go-asyncrt/pkg/interfaces"
	"github.com/dep2p/go-asyncrt/pkg/types"
)

// ============================================================================
//                              weighted - FIFO 加权信号量
// ============================================================================

type waiter struct {
	n     int64
	ready chan struct{}
	err   error
}

// weighted FIFO 加权信号量
//
// 队列非空时快路径不可用，新到达者必须排队，保证公平。
type weighted struct {
	mu      sync.Mutex
	size    int64
	cur     int64
	waiters list.List
	closed  bool
	susp    suspend.Suspender
}

func newWeighted(n int64, s suspend.Suspender) *weighted {
	if n < 0 {
		panic(ErrNegativePermits)
	}
	return &weighted{size: n, cur: n, susp: suspend.OrInline(s)}
}

// acquire 挂起直到获得 n 个许可
func (w *weighted) acquire(ctx context.Context, n int64, s suspend.Suspender) error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return types.ErrSemaphoreClosed
	}
	if w.cur >= n && w.waiters.Len() == 0 {
		w.cur -= n
		w.mu.Unlock()
		return nil
	}
	if err := ctx.Err(); err != nil {
		w.mu.Unlock()
		return err
	}

	wt := &waiter{n: n, ready: make(chan struct{})}
	elem := w.waiters.PushBack(wt)
	w.mu.Unlock()

	err := s.Suspend(ctx, func() error {
		select {
		case <-wt.ready:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	})
	if err == nil {
		return wt.err
	}

	w.mu.Lock()
	select {
	case <-wt.ready:
		// 取消与授予竞争：已授予则归还许可
		if wt.err == nil {
			w.cur += n
			w.notifyLocked()
		}
	default:
		front := w.waiters.Front() == elem
		w.waiters.Remove(elem)
		if front && w.cur > 0 {
			w.notifyLocked()
		}
	}
	w.mu.Unlock()
	return err
}

// tryAcquire 立即尝试获得 n 个许可
func (w *weighted) tryAcquire(n int64) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed || w.cur < n || w.waiters.Len() != 0 {
		return false
	}
	w.cur -= n
	return true
}

// release 归还 n 个许可
func (w *weighted) release(n int64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.cur += n
	if w.cur > w.size {
		w.cur -= n
		panic(ErrUnlockOfUnlocked)
	}
	w.notifyLocked()
}

// grow 增加 n 个许可
func (w *weighted) grow(n int64) {
	if n < 0 {
		panic(ErrNegativePermits)
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.size += n
	w.cur += n
	w.notifyLocked()
}

// forget 永久消耗 n 个已持有的许可
func (w *weighted) forget(n int64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.size -= n
}

// close 关闭并唤醒所有等待者
func (w *weighted) close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	w.closed = true
	for e := w.waiters.Front(); e != nil; e = e.Next() {
		wt := e.Value.(*waiter)
		wt.err = types.ErrSemaphoreClosed
		close(wt.ready)
	}
	w.waiters.Init()
}

func (w *weighted) isClosed() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.closed
}

func (w *weighted) available() int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.cur
}

// notifyLocked 按 FIFO 唤醒能满足的等待者，遇到不能满足的队首即停止
func (w *weighted) notifyLocked() {
	for {
		front := w.waiters.Front()
		if front == nil {
			return
		}
		wt := front.Value.(*waiter)
		if w.cur < wt.n {
			return
		}
		w.cur -= wt.n
		w.waiters.Remove(front)
		close(wt.ready)
	}
}

// ============================================================================
//                              Semaphore - 计数信号量
// ============================================================================

// Semaphore 计数信号量
type Semaphore struct {
	w *weighted
}

var _ interfaces.SemaphoreCloser = (*Semaphore)(nil)

// NewSemaphore 创建信号量
func NewSemaphore(permits int, s suspend.Suspender) *Semaphore {
	return &Semaphore{w: newWeighted(int64(permits), s)}
}

// Acquire 实现 interfaces.Semaphore
func (s *Semaphore) Acquire(ctx context.Context) (interfaces.SemaphorePermit, error) {
	if err := s.w.acquire(ctx, 1, s.w.susp); err != nil {
		return nil, err
	}
	return &Permit{w: s.w, n: 1}, nil
}

// AcquireBlocking 阻塞当前 goroutine 直到获得许可
func (s *Semaphore) AcquireBlocking() (interfaces.SemaphorePermit, error) {
	if err := s.w.acquire(context.Background(), 1, suspend.Inline{}); err != nil {
		return nil, err
	}
	return &Permit{w: s.w, n: 1}, nil
}

// TryAcquire 实现 interfaces.Semaphore
func (s *Semaphore) TryAcquire() (interfaces.SemaphorePermit, bool) {
	if !s.w.tryAcquire(1) {
		return nil, false
	}
	return &Permit{w: s.w, n: 1}, true
}

// AddPermits 实现 interfaces.Semaphore
func (s *Semaphore) AddPermits(n int) {
	s.w.grow(int64(n))
}

// Available 实现 interfaces.Semaphore
func (s *Semaphore) Available() int {
	return int(s.w.available())
}

// Close 实现 interfaces.SemaphoreCloser
func (s *Semaphore) Close() {
	s.w.close()
}

// IsClosed 实现 interfaces.SemaphoreCloser
func (s *Semaphore) IsClosed() bool {
	return s.w.isClosed()
}

// Permit 信号量许可
type Permit struct {
	w    *weighted
	n    int64
	done atomic.Bool
}

var _ interfaces.SemaphorePermit = (*Permit)(nil)

// Release 归还许可（幂等）
func (p *Permit) Release() {
	if p.done.CompareAndSwap(false, true) {
		p.w.release(p.n)
	}
}

// Forget 永久消耗许可
func (p *Permit) Forget() {
	if p.done.CompareAndSwap(false, true) {
		p.w.forget(p.n)
	}
}
