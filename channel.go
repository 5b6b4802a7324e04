package asyncrt

import (
	"context"

	"github.com/dep2p/go-asyncrt/pkg/interfaces"
)

// ============================================================================
//                              构造
// ============================================================================

// Bounded 创建容量为 capacity 的 mpsc 通道，capacity 必须 >= 1
func Bounded[T any](rt interfaces.RuntimeChannels, capacity int) (*BoundedSender[T], *Receiver[T]) {
	tx, rx := rt.NewBounded(capacity)
	return &BoundedSender[T]{sender[T]{raw: tx}}, &Receiver[T]{raw: rx}
}

// Unbounded 创建无界 mpsc 通道
func Unbounded[T any](rt interfaces.RuntimeChannels) (*UnboundedSender[T], *Receiver[T]) {
	tx, rx := rt.NewUnbounded()
	return &UnboundedSender[T]{sender[T]{raw: tx}}, &Receiver[T]{raw: rx}
}

// ============================================================================
//                              发送端
// ============================================================================

// rawSender 能取得引擎发送端内核的句柄
type rawSender interface {
	rawSender() interfaces.RawSender
}

// sender 有界与无界发送端共有的部分
type sender[T any] struct {
	raw interfaces.RawSender
}

func (s sender[T]) rawSender() interfaces.RawSender {
	return s.raw
}

// IsClosed 接收端是否已关闭
func (s sender[T]) IsClosed() bool {
	return s.raw.IsClosed()
}

// Close 释放本句柄，全部发送端释放后接收端取空即看到关闭
func (s sender[T]) Close() {
	s.raw.Close()
}

// Ext 升级为扩展发送端，引擎不支持时返回 false
func (s sender[T]) Ext() (interfaces.SenderExt[T], bool) {
	ext, ok := s.raw.(interfaces.RawSenderExt)
	if !ok {
		return nil, false
	}
	return senderExt[T]{ext: ext}, true
}

type senderExt[T any] struct {
	ext interfaces.RawSenderExt
}

// Closed 挂起直到接收端关闭
func (e senderExt[T]) Closed(ctx context.Context) error {
	return e.ext.Closed(ctx)
}

// SameChannel 两个发送端是否属于同一通道
func (e senderExt[T]) SameChannel(other interfaces.Sender[T]) bool {
	o, ok := other.(rawSender)
	return ok && e.ext.SameChannel(o.rawSender())
}

// BoundedSender 有界通道发送端
type BoundedSender[T any] struct {
	sender[T]
}

var _ interfaces.BoundedSender[int] = (*BoundedSender[int])(nil)

// Send 缓冲区满时挂起，失败时返回带回值的 *SendError[T]
func (s *BoundedSender[T]) Send(ctx context.Context, v T) error {
	if err := s.raw.Send(ctx, v); err != nil {
		return &SendError[T]{Value: v, Err: err}
	}
	return nil
}

// TrySend 立即尝试发送，失败时返回带回值的 *TrySendError[T]
func (s *BoundedSender[T]) TrySend(v T) error {
	if err := s.raw.TrySend(v); err != nil {
		return &TrySendError[T]{Value: v, Err: err}
	}
	return nil
}

// Clone 复制发送端
func (s *BoundedSender[T]) Clone() interfaces.BoundedSender[T] {
	return &BoundedSender[T]{sender[T]{raw: s.raw.Clone()}}
}

// UnboundedSender 无界通道发送端
type UnboundedSender[T any] struct {
	sender[T]
}

var _ interfaces.UnboundedSender[int] = (*UnboundedSender[int])(nil)

// Send 同步发送，接收端已关闭时返回 *SendError[T]
func (s *UnboundedSender[T]) Send(v T) error {
	if err := s.raw.TrySend(v); err != nil {
		return &SendError[T]{Value: v, Err: err}
	}
	return nil
}

// Clone 复制发送端
func (s *UnboundedSender[T]) Clone() interfaces.UnboundedSender[T] {
	return &UnboundedSender[T]{sender[T]{raw: s.raw.Clone()}}
}

// ============================================================================
//                              接收端
// ============================================================================

// Receiver 通道接收端，只允许一个 goroutine 接收
type Receiver[T any] struct {
	raw interfaces.RawReceiver
}

var _ interfaces.Receiver[int] = (*Receiver[int])(nil)

// Recv 挂起直到收到值，通道关闭且取空后返回 ErrClosed
func (r *Receiver[T]) Recv(ctx context.Context) (T, error) {
	v, err := r.raw.Recv(ctx)
	if err != nil {
		var zero T
		return zero, err
	}
	return cast[T](v), nil
}

// TryRecv 立即尝试接收
//
// 返回 (值, true, nil)、(零值, false, nil) 表示暂时为空、
// (零值, false, ErrClosed) 表示已关闭且取空。
func (r *Receiver[T]) TryRecv() (T, bool, error) {
	v, ok, err := r.raw.TryRecv()
	if !ok || err != nil {
		var zero T
		return zero, false, err
	}
	return cast[T](v), true, nil
}

// Close 拒绝之后的发送，已缓冲的值仍可取出
func (r *Receiver[T]) Close() {
	r.raw.Close()
}
