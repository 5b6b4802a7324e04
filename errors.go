package asyncrt

import (
	"fmt"

	"github.com/dep2p/go-asyncrt/pkg/types"
)

// 公共错误定义，与 pkg/types 中的哨兵错误相同
var (
	ErrClosed           = types.ErrClosed
	ErrFull             = types.ErrFull
	ErrAlreadySent      = types.ErrAlreadySent
	ErrSemaphoreClosed  = types.ErrSemaphoreClosed
	ErrLockHeld         = types.ErrLockHeld
	ErrCancelled        = types.ErrCancelled
	ErrPanicked         = types.ErrPanicked
	ErrReentrantBlockOn = types.ErrReentrantBlockOn
	ErrExecutorClosed   = types.ErrExecutorClosed
)

// SendError 发送失败，带回未送达的值
//
// Err 为引擎的原始错误，可用 errors.Is 匹配 ErrClosed 或 ctx 错误。
type SendError[T any] struct {
	Value T
	Err   error
}

func (e *SendError[T]) Error() string {
	return fmt.Sprintf("send failed: %v", e.Err)
}

func (e *SendError[T]) Unwrap() error {
	return e.Err
}

// TrySendError 非阻塞发送失败，带回未送达的值
type TrySendError[T any] struct {
	Value T
	Err   error
}

func (e *TrySendError[T]) Error() string {
	return fmt.Sprintf("try_send failed: %v", e.Err)
}

func (e *TrySendError[T]) Unwrap() error {
	return e.Err
}

// cast 把引擎返回的 any 转回 T，nil 对应零值
func cast[T any](v any) T {
	if v == nil {
		var zero T
		return zero
	}
	return v.(T)
}
