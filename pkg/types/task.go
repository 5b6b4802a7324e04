package types

import (
	"fmt"
)

// ============================================================================
//                              TaskID - 任务标识
// ============================================================================

// TaskID 任务唯一标识
type TaskID string

// String 返回字符串表示
func (id TaskID) String() string {
	return string(id)
}

// ShortString 返回前 8 个字符，用于日志
func (id TaskID) ShortString() string {
	if len(id) <= 8 {
		return string(id)
	}
	return string(id[:8])
}

// ============================================================================
//                              WrapMode - 结果包装方式
// ============================================================================

// WrapMode 描述执行器句柄如何包装任务结果
//
// 不同引擎的包装方式不同，调用方通过 Executor.Wrap() 查询。
type WrapMode int

const (
	// WrapNone 原样返回任务结果，任务 panic 时在等待方重新抛出
	WrapNone WrapMode = iota
	// WrapOutcome 结果包装为成功或 *JoinError（取消、panic）
	WrapOutcome
)

// String 返回包装方式的字符串表示
func (m WrapMode) String() string {
	switch m {
	case WrapNone:
		return "none"
	case WrapOutcome:
		return "outcome"
	default:
		return "unknown"
	}
}

// ============================================================================
//                              JoinError - 任务失败结果
// ============================================================================

// JoinError 任务未能正常完成
//
// 只有 WrapOutcome 引擎会返回该错误。
type JoinError struct {
	// TaskID 任务标识
	TaskID TaskID

	// Cancelled 任务被取消
	Cancelled bool

	// Panic panic 时的值
	Panic any

	// Stack panic 时的调用栈
	Stack []byte
}

// Error 实现 error 接口
func (e *JoinError) Error() string {
	if e.Cancelled {
		return fmt.Sprintf("task %s cancelled", e.TaskID.ShortString())
	}
	return fmt.Sprintf("task %s panicked: %v", e.TaskID.ShortString(), e.Panic)
}

// Unwrap 返回对应的哨兵错误
func (e *JoinError) Unwrap() error {
	if e.Cancelled {
		return ErrCancelled
	}
	return ErrPanicked
}

// IsCancelled 是否为取消
func (e *JoinError) IsCancelled() bool {
	return e.Cancelled
}

// IsPanic 是否为 panic
func (e *JoinError) IsPanic() bool {
	return !e.Cancelled
}

// ============================================================================
//                              BarrierWaitResult - 屏障结果
// ============================================================================

// BarrierWaitResult 屏障等待结果
type BarrierWaitResult struct {
	leader bool
}

// NewBarrierWaitResult 创建屏障等待结果
func NewBarrierWaitResult(leader bool) BarrierWaitResult {
	return BarrierWaitResult{leader: leader}
}

// IsLeader 本次等待是否为该代的领导者
//
// 每一代恰好有一个等待者得到 true。
func (r BarrierWaitResult) IsLeader() bool {
	return r.leader
}
