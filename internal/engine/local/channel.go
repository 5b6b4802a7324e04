package local

import (
	"context"

	"github.com/dep2p/go-asyncrt/internal/core/locks"
	"github.com/dep2p/go-asyncrt/internal/core/queue"
	"github.com/dep2p/go-asyncrt/internal/core/suspend"
	"github.com/dep2p/go-asyncrt/pkg/interfaces"
)

// ============================================================================
//                              mpsc
// ============================================================================

// Sender 发送端，不支持 interfaces.RawSenderExt
type Sender struct {
	s *queue.Sender
}

var _ interfaces.RawSender = Sender{}

// Send 实现 interfaces.RawSender
func (s Sender) Send(ctx context.Context, v any) error {
	return wrapErr("send", s.s.Send(ctx, v))
}

// TrySend 实现 interfaces.RawSender
func (s Sender) TrySend(v any) error {
	return wrapErr("try_send", s.s.TrySend(v))
}

// IsClosed 实现 interfaces.RawSender
func (s Sender) IsClosed() bool {
	return s.s.IsClosed()
}

// Clone 实现 interfaces.RawSender
func (s Sender) Clone() interfaces.RawSender {
	return Sender{s.s.CloneSender()}
}

// Close 实现 interfaces.RawSender
func (s Sender) Close() {
	s.s.Close()
}

// Receiver 接收端
type Receiver struct {
	r *queue.Receiver
}

var _ interfaces.RawReceiver = Receiver{}

// Recv 实现 interfaces.RawReceiver
func (r Receiver) Recv(ctx context.Context) (any, error) {
	v, err := r.r.Recv(ctx)
	return v, wrapErr("recv", err)
}

// TryRecv 实现 interfaces.RawReceiver
func (r Receiver) TryRecv() (any, bool, error) {
	v, ok, err := r.r.TryRecv()
	return v, ok, wrapErr("try_recv", err)
}

// Close 实现 interfaces.RawReceiver
func (r Receiver) Close() {
	r.r.Close()
}

func newChannel(capacity int, s suspend.Suspender) (interfaces.RawSender, interfaces.RawReceiver) {
	tx, rx := queue.New(capacity, s)
	return Sender{tx}, Receiver{rx}
}

// ============================================================================
//                              信号量
// ============================================================================

// Semaphore 不可关闭的信号量
type Semaphore struct {
	s *locks.Semaphore
}

var _ interfaces.Semaphore = Semaphore{}

// Acquire 实现 interfaces.Semaphore
func (s Semaphore) Acquire(ctx context.Context) (interfaces.SemaphorePermit, error) {
	p, err := s.s.Acquire(ctx)
	if err != nil {
		return nil, wrapErr("acquire", err)
	}
	return p, nil
}

// TryAcquire 实现 interfaces.Semaphore
func (s Semaphore) TryAcquire() (interfaces.SemaphorePermit, bool) {
	return s.s.TryAcquire()
}

// AddPermits 实现 interfaces.Semaphore
func (s Semaphore) AddPermits(n int) {
	s.s.AddPermits(n)
}

// Available 实现 interfaces.Semaphore
func (s Semaphore) Available() int {
	return s.s.Available()
}
