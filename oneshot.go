package asyncrt

import (
	"context"

	"github.com/dep2p/go-asyncrt/pkg/interfaces"
)

// Oneshot 创建一次性通道
func Oneshot[T any](rt interfaces.RuntimeChannelsExt) (*OneshotSender[T], *OneshotReceiver[T]) {
	tx, rx := rt.NewOneshot()
	return &OneshotSender[T]{raw: tx}, &OneshotReceiver[T]{raw: rx}
}

// OneshotSender 一次性发送端
type OneshotSender[T any] struct {
	raw interfaces.RawOneshotSender
}

var _ interfaces.OneshotSender[int] = (*OneshotSender[int])(nil)

// Send 发送唯一的值
//
// 接收端已关闭时返回带回值的 *SendError[T]，再次发送返回 ErrAlreadySent。
func (s *OneshotSender[T]) Send(v T) error {
	if err := s.raw.Send(v); err != nil {
		return &SendError[T]{Value: v, Err: err}
	}
	return nil
}

// IsClosed 接收端是否已关闭
func (s *OneshotSender[T]) IsClosed() bool {
	return s.raw.IsClosed()
}

// Closed 挂起直到接收端关闭
func (s *OneshotSender[T]) Closed(ctx context.Context) error {
	return s.raw.Closed(ctx)
}

// Close 未发送即释放，接收端将看到 ErrClosed
func (s *OneshotSender[T]) Close() {
	s.raw.Close()
}

// OneshotReceiver 一次性接收端
type OneshotReceiver[T any] struct {
	raw interfaces.RawOneshotReceiver
}

var _ interfaces.OneshotReceiver[int] = (*OneshotReceiver[int])(nil)

// Recv 挂起直到收到值或发送端释放
func (r *OneshotReceiver[T]) Recv(ctx context.Context) (T, error) {
	v, err := r.raw.Recv(ctx)
	if err != nil {
		var zero T
		return zero, err
	}
	return cast[T](v), nil
}

// TryRecv 立即尝试接收
func (r *OneshotReceiver[T]) TryRecv() (T, bool, error) {
	v, ok, err := r.raw.TryRecv()
	if !ok || err != nil {
		var zero T
		return zero, false, err
	}
	return cast[T](v), true, nil
}

// Close 关闭接收端，发送端的 Closed 随之返回
func (r *OneshotReceiver[T]) Close() {
	r.raw.Close()
}
