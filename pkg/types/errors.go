// Package types 定义 go-asyncrt 的基础类型
//
// 本文件定义所有公共错误类型。
package types

import "errors"

// ============================================================================
//                              通道相关错误
// ============================================================================

var (
	// ErrClosed 通道另一端已关闭（或已全部释放）
	ErrClosed = errors.New("channel closed")

	// ErrFull 有界通道缓冲区已满
	ErrFull = errors.New("channel full")

	// ErrAlreadySent 一次性通道的值已经发送过
	ErrAlreadySent = errors.New("oneshot value already sent")
)

// ============================================================================
//                              锁相关错误
// ============================================================================

var (
	// ErrSemaphoreClosed 信号量已关闭
	ErrSemaphoreClosed = errors.New("semaphore closed")

	// ErrLockHeld 需要独占所有权的操作发现仍有守卫存活
	ErrLockHeld = errors.New("lock is held by a live guard")
)

// ============================================================================
//                              执行器相关错误
// ============================================================================

var (
	// ErrCancelled 任务在完成前被取消
	ErrCancelled = errors.New("task cancelled")

	// ErrPanicked 任务执行时发生 panic
	ErrPanicked = errors.New("task panicked")

	// ErrReentrantBlockOn 在执行器内部再次调用 BlockOn
	ErrReentrantBlockOn = errors.New("block_on called from within the executor")

	// ErrExecutorClosed 执行器已关闭
	ErrExecutorClosed = errors.New("executor closed")
)

// ============================================================================
//                              文件系统相关错误
// ============================================================================

var (
	// ErrInvalidOpenOptions 打开选项组合无效
	ErrInvalidOpenOptions = errors.New("invalid open options")
)

// ============================================================================
//                              网络相关错误
// ============================================================================

var (
	// ErrNoAddresses 地址规格未解析出任何地址
	ErrNoAddresses = errors.New("could not resolve to any addresses")

	// ErrInvalidAddr 地址格式无效
	ErrInvalidAddr = errors.New("invalid socket address")

	// ErrNotConnected 套接字未连接
	ErrNotConnected = errors.New("socket not connected")
)

// ============================================================================
//                              通用错误
// ============================================================================

var (
	// ErrUnsupported 当前引擎不支持该能力
	ErrUnsupported = errors.New("capability not supported by runtime")

	// ErrIntervalStopped 定时器已停止
	ErrIntervalStopped = errors.New("interval stopped")
)
