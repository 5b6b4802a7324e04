package queue

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/dep2p/go-asyncrt/internal/core/locks"
	"github.com/dep2p/go-asyncrt/internal/core/suspend"
	"github.com/dep2p/go-asyncrt/pkg/interfaces"
	"github.com/dep2p/go-asyncrt/pkg/types"
)

// Chan 共享队列状态
type Chan struct {
	mu       sync.Mutex
	items    []any
	head     int
	capacity int
	senders  int
	rxClosed bool

	// slots 有界队列的空位，无界时为 nil
	slots *locks.Semaphore

	// signal 通知唯一的接收者有新状态
	signal chan struct{}

	// rxDone 接收端关闭时关闭
	rxDone chan struct{}

	susp suspend.Suspender
}

// New 创建通道，capacity 为 0 表示无界
//
// capacity 为负时 panic。
func New(capacity int, s suspend.Suspender) (*Sender, *Receiver) {
	if capacity < 0 {
		panic("queue: negative capacity")
	}
	s = suspend.OrInline(s)
	c := &Chan{
		capacity: capacity,
		senders:  1,
		signal:   make(chan struct{}, 1),
		rxDone:   make(chan struct{}),
		susp:     s,
	}
	if capacity > 0 {
		c.slots = locks.NewSemaphore(capacity, s)
	}
	return &Sender{c: c}, &Receiver{c: c}
}

// Len 当前缓冲的值数量
func (c *Chan) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items) - c.head
}

// Capacity 容量，0 表示无界
func (c *Chan) Capacity() int {
	return c.capacity
}

func (c *Chan) notifyLocked() {
	select {
	case c.signal <- struct{}{}:
	default:
	}
}

func (c *Chan) pushLocked(v any) {
	c.items = append(c.items, v)
	c.notifyLocked()
}

func (c *Chan) popLocked() (any, bool) {
	if c.head == len(c.items) {
		return nil, false
	}
	v := c.items[c.head]
	c.items[c.head] = nil
	c.head++
	if c.head == len(c.items) {
		c.items = c.items[:0]
		c.head = 0
	}
	return v, true
}

// ============================================================================
//                              Sender
// ============================================================================

// Sender 发送端句柄
type Sender struct {
	c      *Chan
	closed atomic.Bool
}

var (
	_ interfaces.RawSender    = (*Sender)(nil)
	_ interfaces.RawSenderExt = (*Sender)(nil)
)

// Send 实现 interfaces.RawSender
func (s *Sender) Send(ctx context.Context, v any) error {
	if s.closed.Load() {
		return types.ErrClosed
	}
	c := s.c
	if c.slots == nil {
		return s.TrySend(v)
	}

	c.mu.Lock()
	closed := c.rxClosed
	c.mu.Unlock()
	if closed {
		return types.ErrClosed
	}

	permit, err := c.slots.Acquire(ctx)
	if err != nil {
		if errors.Is(err, types.ErrSemaphoreClosed) {
			return types.ErrClosed
		}
		return err
	}
	// 空位由接收端出队时归还
	permit.Forget()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.rxClosed {
		c.slots.AddPermits(1)
		return types.ErrClosed
	}
	c.pushLocked(v)
	return nil
}

// TrySend 实现 interfaces.RawSender
func (s *Sender) TrySend(v any) error {
	if s.closed.Load() {
		return types.ErrClosed
	}
	c := s.c
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.rxClosed {
		return types.ErrClosed
	}
	if c.slots != nil {
		permit, ok := c.slots.TryAcquire()
		if !ok {
			return types.ErrFull
		}
		permit.Forget()
	}
	c.pushLocked(v)
	return nil
}

// IsClosed 实现 interfaces.RawSender
func (s *Sender) IsClosed() bool {
	s.c.mu.Lock()
	defer s.c.mu.Unlock()
	return s.c.rxClosed
}

// Clone 实现 interfaces.RawSender
func (s *Sender) Clone() interfaces.RawSender {
	return s.CloneSender()
}

// CloneSender 返回具体类型的克隆
//
// 克隆已关闭的发送端得到同样已关闭的发送端，不计入发送端数量。
func (s *Sender) CloneSender() *Sender {
	s.c.mu.Lock()
	defer s.c.mu.Unlock()
	clone := &Sender{c: s.c}
	if s.closed.Load() {
		clone.closed.Store(true)
		return clone
	}
	s.c.senders++
	return clone
}

// Close 实现 interfaces.RawSender
func (s *Sender) Close() {
	if !s.closed.CompareAndSwap(false, true) {
		return
	}
	c := s.c
	c.mu.Lock()
	defer c.mu.Unlock()
	c.senders--
	if c.senders == 0 {
		c.notifyLocked()
	}
}

// Closed 实现 interfaces.RawSenderExt
func (s *Sender) Closed(ctx context.Context) error {
	return suspend.Wait(ctx, s.c.susp, s.c.rxDone)
}

// SameChannel 实现 interfaces.RawSenderExt
func (s *Sender) SameChannel(other interfaces.RawSender) bool {
	o, ok := other.(interface{ Chan() *Chan })
	return ok && o.Chan() == s.c
}

// Chan 返回共享状态
func (s *Sender) Chan() *Chan {
	return s.c
}

// ============================================================================
//                              Receiver
// ============================================================================

// Receiver 接收端
//
// 只允许一个 goroutine 调用 Recv。
type Receiver struct {
	c *Chan
}

var _ interfaces.RawReceiver = (*Receiver)(nil)

// Recv 实现 interfaces.RawReceiver
func (r *Receiver) Recv(ctx context.Context) (any, error) {
	c := r.c
	for {
		v, ok, err := r.TryRecv()
		if ok || err != nil {
			return v, err
		}
		err = c.susp.Suspend(ctx, func() error {
			select {
			case <-c.signal:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		})
		if err != nil {
			return nil, err
		}
	}
}

// TryRecv 实现 interfaces.RawReceiver
func (r *Receiver) TryRecv() (any, bool, error) {
	c := r.c
	c.mu.Lock()
	defer c.mu.Unlock()
	if v, ok := c.popLocked(); ok {
		if c.slots != nil {
			c.slots.AddPermits(1)
		}
		return v, true, nil
	}
	if c.senders == 0 || c.rxClosed {
		return nil, false, types.ErrClosed
	}
	return nil, false, nil
}

// Close 实现 interfaces.RawReceiver
func (r *Receiver) Close() {
	c := r.c
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.rxClosed {
		return
	}
	c.rxClosed = true
	close(c.rxDone)
	if c.slots != nil {
		c.slots.Close()
	}
	c.notifyLocked()
}

// Chan 返回共享状态
func (r *Receiver) Chan() *Chan {
	return r.c
}
