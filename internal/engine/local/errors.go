package local

import (
	"errors"
	"fmt"
)

// errBatonNotHeld 交还了未持有的令牌
var errBatonNotHeld = errors.New("local: baton released while not held")

// Error 本引擎的操作错误
type Error struct {
	// Op 操作名
	Op string

	// Err 原因
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("local %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func wrapErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Err: err}
}
