package native

import "fmt"

// ChannelError 通道操作失败
type ChannelError struct {
	// Op 操作名：send、try_send、recv、try_recv
	Op string

	// Err 原因，types.ErrClosed、types.ErrFull 或 ctx 错误
	Err error
}

func (e *ChannelError) Error() string {
	return fmt.Sprintf("native channel %s: %v", e.Op, e.Err)
}

func (e *ChannelError) Unwrap() error {
	return e.Err
}

func chanErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return &ChannelError{Op: op, Err: err}
}
