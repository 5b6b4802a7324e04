package queue

import (
	"context"
	"sync"

	"github.com/dep2p/go-asyncrt/internal/core/suspend"
	"github.com/dep2p/go-asyncrt/pkg/interfaces"
	"github.com/dep2p/go-asyncrt/pkg/types"
)

// oneshot 一次性通道共享状态
type oneshot struct {
	mu       sync.Mutex
	value    any
	sent     bool
	taken    bool
	txClosed bool
	rxClosed bool

	// ready 发送或发送端释放时关闭
	ready chan struct{}

	// rxDone 接收端关闭时关闭
	rxDone chan struct{}

	susp suspend.Suspender
}

// NewOneshot 创建一次性通道
func NewOneshot(s suspend.Suspender) (*OneshotSender, *OneshotReceiver) {
	o := &oneshot{
		ready:  make(chan struct{}),
		rxDone: make(chan struct{}),
		susp:   suspend.OrInline(s),
	}
	return &OneshotSender{o: o}, &OneshotReceiver{o: o}
}

// OneshotSender 一次性发送端
type OneshotSender struct {
	o *oneshot
}

var _ interfaces.RawOneshotSender = (*OneshotSender)(nil)

// Send 实现 interfaces.RawOneshotSender
//
// 接收端已关闭时返回 types.ErrClosed，值未被交付。
func (s *OneshotSender) Send(v any) error {
	o := s.o
	o.mu.Lock()
	defer o.mu.Unlock()
	switch {
	case o.sent:
		return types.ErrAlreadySent
	case o.txClosed, o.rxClosed:
		return types.ErrClosed
	}
	o.value = v
	o.sent = true
	close(o.ready)
	return nil
}

// IsClosed 实现 interfaces.RawOneshotSender
func (s *OneshotSender) IsClosed() bool {
	s.o.mu.Lock()
	defer s.o.mu.Unlock()
	return s.o.rxClosed
}

// Closed 实现 interfaces.RawOneshotSender
func (s *OneshotSender) Closed(ctx context.Context) error {
	return suspend.Wait(ctx, s.o.susp, s.o.rxDone)
}

// Close 实现 interfaces.RawOneshotSender
func (s *OneshotSender) Close() {
	o := s.o
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.sent || o.txClosed {
		return
	}
	o.txClosed = true
	close(o.ready)
}

// OneshotReceiver 一次性接收端
type OneshotReceiver struct {
	o *oneshot
}

var _ interfaces.RawOneshotReceiver = (*OneshotReceiver)(nil)

// Recv 实现 interfaces.RawOneshotReceiver
func (r *OneshotReceiver) Recv(ctx context.Context) (any, error) {
	if v, ok, err := r.TryRecv(); ok || err != nil {
		return v, err
	}
	o := r.o
	err := o.susp.Suspend(ctx, func() error {
		select {
		case <-o.ready:
			return nil
		case <-o.rxDone:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	})
	if err != nil {
		return nil, err
	}
	v, _, err := r.TryRecv()
	return v, err
}

// TryRecv 实现 interfaces.RawOneshotReceiver
func (r *OneshotReceiver) TryRecv() (any, bool, error) {
	o := r.o
	o.mu.Lock()
	defer o.mu.Unlock()
	switch {
	case o.sent && !o.taken:
		v := o.value
		o.value = nil
		o.taken = true
		return v, true, nil
	case o.taken, o.txClosed:
		return nil, false, types.ErrClosed
	case o.rxClosed:
		return nil, false, types.ErrClosed
	default:
		return nil, false, nil
	}
}

// Close 实现 interfaces.RawOneshotReceiver
//
// 关闭前已发送的值仍可通过 TryRecv 取得。
func (r *OneshotReceiver) Close() {
	o := r.o
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.rxClosed {
		return
	}
	o.rxClosed = true
	close(o.rxDone)
}
