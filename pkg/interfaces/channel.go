// Package interfaces 定义 go-asyncrt 能力契约
//
// 本文件定义通道能力：多生产者单消费者通道与一次性通道。
package interfaces

import "context"

// ============================================================================
//                              引擎契约
// ============================================================================

// RawSender 通道发送端内核
//
// 所有克隆共享同一队列；全部 Close 后接收端在排空后看到关闭。
type RawSender interface {
	// Send 挂起直到入队（无界通道从不挂起）
	//
	// 接收端关闭时返回可 errors.Is 为 types.ErrClosed 的错误。
	Send(ctx context.Context, v any) error

	// TrySend 立即尝试入队，区分 types.ErrFull 与 types.ErrClosed
	TrySend(v any) error

	// IsClosed 接收端是否已关闭
	IsClosed() bool

	// Clone 产生新的发送端句柄
	Clone() RawSender

	// Close 释放本句柄（幂等）
	Close()
}

// RawSenderExt 发送端扩展能力
//
// 引擎可选实现，门面层通过类型断言升级。
type RawSenderExt interface {
	// Closed 挂起直到接收端关闭
	Closed(ctx context.Context) error

	// SameChannel 两个发送端是否属于同一通道
	SameChannel(other RawSender) bool
}

// RawReceiver 通道接收端内核
type RawReceiver interface {
	// Recv 挂起直到得到值，关闭且排空后返回 types.ErrClosed
	Recv(ctx context.Context) (any, error)

	// TryRecv 立即尝试接收
	//
	// 返回 (v, true, nil) 得到值；(nil, false, nil) 暂时为空；
	// (nil, false, ErrClosed) 关闭且排空。
	TryRecv() (any, bool, error)

	// Close 关闭接收端，拒绝新的发送，已缓冲的值仍可接收
	Close()
}

// RawOneshotSender 一次性通道发送端内核
type RawOneshotSender interface {
	// Send 发送唯一的值，第二次调用返回 types.ErrAlreadySent
	Send(v any) error

	IsClosed() bool

	// Closed 挂起直到接收端关闭
	Closed(ctx context.Context) error

	// Close 未发送即释放，接收端将看到关闭
	Close()
}

// RawOneshotReceiver 一次性通道接收端内核
type RawOneshotReceiver interface {
	Recv(ctx context.Context) (any, error)
	TryRecv() (any, bool, error)
	Close()
}

// ============================================================================
//                              调用方契约
// ============================================================================

// Sender 所有发送端共有的能力
type Sender[T any] interface {
	// IsClosed 接收端是否已关闭
	IsClosed() bool

	// Close 释放本句柄
	Close()

	// Ext 升级为扩展发送端，引擎不支持时返回 false
	Ext() (SenderExt[T], bool)
}

// SenderExt 发送端扩展能力
type SenderExt[T any] interface {
	Closed(ctx context.Context) error
	SameChannel(other Sender[T]) bool
}

// BoundedSender 有界通道发送端
type BoundedSender[T any] interface {
	Sender[T]

	// Send 缓冲区满时挂起
	Send(ctx context.Context, v T) error

	// TrySend 立即尝试发送
	TrySend(v T) error

	Clone() BoundedSender[T]
}

// UnboundedSender 无界通道发送端
type UnboundedSender[T any] interface {
	Sender[T]

	// Send 同步发送，从不挂起
	Send(v T) error

	Clone() UnboundedSender[T]
}

// Receiver 通道接收端
type Receiver[T any] interface {
	Recv(ctx context.Context) (T, error)
	TryRecv() (T, bool, error)
	Close()
}

// OneshotSender 一次性通道发送端
type OneshotSender[T any] interface {
	Send(v T) error
	IsClosed() bool
	Closed(ctx context.Context) error
	Close()
}

// OneshotReceiver 一次性通道接收端
type OneshotReceiver[T any] interface {
	Recv(ctx context.Context) (T, error)
	TryRecv() (T, bool, error)
	Close()
}
