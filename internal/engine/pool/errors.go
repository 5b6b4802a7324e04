package pool

import (
	"errors"
	"fmt"

	"github.com/dep2p/go-asyncrt/pkg/types"
)

// SendError 发送失败
type SendError struct {
	// Err 原因，types.ErrFull、types.ErrClosed 或 ctx 错误
	Err error
}

func (e *SendError) Error() string {
	return fmt.Sprintf("pool send failed: %v", e.Err)
}

func (e *SendError) Unwrap() error {
	return e.Err
}

// IsFull 通道已满
func (e *SendError) IsFull() bool {
	return errors.Is(e.Err, types.ErrFull)
}

// IsDisconnected 接收端已关闭
func (e *SendError) IsDisconnected() bool {
	return errors.Is(e.Err, types.ErrClosed)
}

// RecvError 接收失败
type RecvError struct {
	// Err 原因，types.ErrClosed 或 ctx 错误
	Err error
}

func (e *RecvError) Error() string {
	return fmt.Sprintf("pool recv failed: %v", e.Err)
}

func (e *RecvError) Unwrap() error {
	return e.Err
}

// TryRecvError 非阻塞接收失败，只在通道已关闭且取空时返回
type TryRecvError struct {
	Err error
}

func (e *TryRecvError) Error() string {
	return fmt.Sprintf("pool try_recv failed: %v", e.Err)
}

func (e *TryRecvError) Unwrap() error {
	return e.Err
}

// Canceled oneshot 的另一端在交付前关闭
type Canceled struct {
	Err error
}

func (e *Canceled) Error() string {
	return fmt.Sprintf("pool oneshot canceled: %v", e.Err)
}

func (e *Canceled) Unwrap() error {
	return e.Err
}

func sendErr(err error) error {
	if err == nil {
		return nil
	}
	return &SendError{Err: err}
}

func recvErr(err error) error {
	if err == nil {
		return nil
	}
	return &RecvError{Err: err}
}

func tryRecvErr(err error) error {
	if err == nil {
		return nil
	}
	return &TryRecvError{Err: err}
}

func canceled(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, types.ErrClosed) {
		return &Canceled{Err: err}
	}
	return err
}
