package native

import (
	"context"

	"github.com/dep2p/go-asyncrt/internal/core/queue"
	"github.com/dep2p/go-asyncrt/internal/core/suspend"
	"github.com/dep2p/go-asyncrt/pkg/interfaces"
)

// ============================================================================
//                              mpsc
// ============================================================================

// Sender 发送端
type Sender struct {
	*queue.Sender
}

var (
	_ interfaces.RawSender    = Sender{}
	_ interfaces.RawSenderExt = Sender{}
)

// Send 实现 interfaces.RawSender
func (s Sender) Send(ctx context.Context, v any) error {
	return chanErr("send", s.Sender.Send(ctx, v))
}

// TrySend 实现 interfaces.RawSender
func (s Sender) TrySend(v any) error {
	return chanErr("try_send", s.Sender.TrySend(v))
}

// Clone 实现 interfaces.RawSender
func (s Sender) Clone() interfaces.RawSender {
	return Sender{s.Sender.CloneSender()}
}

// Receiver 接收端
type Receiver struct {
	*queue.Receiver
}

var _ interfaces.RawReceiver = Receiver{}

// Recv 实现 interfaces.RawReceiver
func (r Receiver) Recv(ctx context.Context) (any, error) {
	v, err := r.Receiver.Recv(ctx)
	return v, chanErr("recv", err)
}

// TryRecv 实现 interfaces.RawReceiver
func (r Receiver) TryRecv() (any, bool, error) {
	v, ok, err := r.Receiver.TryRecv()
	return v, ok, chanErr("try_recv", err)
}

func newChannel(capacity int) (interfaces.RawSender, interfaces.RawReceiver) {
	tx, rx := queue.New(capacity, suspend.Inline{})
	return Sender{tx}, Receiver{rx}
}

// ============================================================================
//                              oneshot
// ============================================================================

// OneshotSender 一次性发送端
type OneshotSender struct {
	*queue.OneshotSender
}

var _ interfaces.RawOneshotSender = OneshotSender{}

// Send 实现 interfaces.RawOneshotSender
func (s OneshotSender) Send(v any) error {
	return chanErr("send", s.OneshotSender.Send(v))
}

// OneshotReceiver 一次性接收端
type OneshotReceiver struct {
	*queue.OneshotReceiver
}

var _ interfaces.RawOneshotReceiver = OneshotReceiver{}

// Recv 实现 interfaces.RawOneshotReceiver
func (r OneshotReceiver) Recv(ctx context.Context) (any, error) {
	v, err := r.OneshotReceiver.Recv(ctx)
	return v, chanErr("recv", err)
}

// TryRecv 实现 interfaces.RawOneshotReceiver
func (r OneshotReceiver) TryRecv() (any, bool, error) {
	v, ok, err := r.OneshotReceiver.TryRecv()
	return v, ok, chanErr("try_recv", err)
}
