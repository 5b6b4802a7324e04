// Package interfaces 定义 go-asyncrt 能力契约
//
// 本文件定义锁能力：互斥锁、读写锁、信号量、屏障。
package interfaces

import (
	"context"

	"github.com/dep2p/go-asyncrt/pkg/types"
)

// ============================================================================
//                              引擎契约
// ============================================================================

// RawMutex 引擎提供的互斥锁内核
type RawMutex interface {
	// Lock 挂起直到获得锁，ctx 结束时返回 ctx.Err()
	Lock(ctx context.Context) error

	// TryLock 立即尝试获得锁，从不挂起
	TryLock() bool

	// Unlock 释放锁
	Unlock()
}

// RawBlockingMutex 支持在执行器之外阻塞获取的互斥锁
type RawBlockingMutex interface {
	RawMutex

	// LockBlocking 阻塞当前 goroutine 直到获得锁
	LockBlocking()
}

// RawRwLock 引擎提供的读写锁内核
//
// 公平：排队中的写者会阻止之后到达的读者。
type RawRwLock interface {
	RLock(ctx context.Context) error
	TryRLock() bool
	RUnlock()

	Lock(ctx context.Context) error
	TryLock() bool
	Unlock()

	// Downgrade 原子地把写锁降级为读锁，期间不存在无锁窗口
	Downgrade()
}

// RawBlockingRwLock 支持阻塞获取的读写锁
type RawBlockingRwLock interface {
	RawRwLock

	RLockBlocking()
	LockBlocking()
}

// Semaphore 计数信号量
type Semaphore interface {
	// Acquire 挂起直到获得一个许可
	//
	// 信号量关闭后返回 types.ErrSemaphoreClosed。
	Acquire(ctx context.Context) (SemaphorePermit, error)

	// TryAcquire 立即尝试获得许可
	TryAcquire() (SemaphorePermit, bool)

	// AddPermits 增加 n 个许可，n 不能为负
	AddPermits(n int)

	// Available 当前可用许可数
	Available() int
}

// SemaphoreCloser 可关闭的信号量
type SemaphoreCloser interface {
	Semaphore

	// Close 关闭信号量，唤醒所有等待者
	Close()

	// IsClosed 是否已关闭
	IsClosed() bool
}

// SemaphorePermit 信号量许可
type SemaphorePermit interface {
	// Release 归还许可（幂等）
	Release()

	// Forget 永久消耗许可，不再归还
	Forget()
}

// Barrier n 方屏障
type Barrier interface {
	// Wait 挂起直到第 n 个等待者到达，每一代恰好一个领导者
	//
	// ctx 在本代完成前结束时，该等待者从计数中撤回。
	Wait(ctx context.Context) (types.BarrierWaitResult, error)
}

// ============================================================================
//                              调用方契约
// ============================================================================

// Mutex 拥有值 T 的异步互斥锁
type Mutex[T any] interface {
	// Lock 挂起直到获得守卫
	Lock(ctx context.Context) (MutexGuard[T], error)

	// TryLock 立即尝试获得守卫
	TryLock() (MutexGuard[T], bool)

	// GetMut 在独占所有权下直接访问值，有守卫存活时 panic
	GetMut() *T

	// IntoInner 取出值，有守卫存活时 panic
	IntoInner() T
}

// MutexGuard 互斥锁守卫
//
// 调用方使用 defer g.Unlock() 保证所有退出路径都释放。
type MutexGuard[T any] interface {
	// Value 返回受保护值的指针，仅在守卫存活期间有效
	Value() *T

	Get() T
	Set(v T)

	// Unlock 释放（幂等）
	Unlock()

	// Source 返回产生该守卫的锁
	Source() Mutex[T]
}

// BlockingMutex 支持阻塞获取的互斥锁
type BlockingMutex[T any] interface {
	Mutex[T]

	// BlockingLock 阻塞当前 goroutine 直到获得守卫
	//
	// 不得在执行器任务内调用。
	BlockingLock() MutexGuard[T]
}

// RwLock 拥有值 T 的异步读写锁
type RwLock[T any] interface {
	Read(ctx context.Context) (RwLockReadGuard[T], error)
	TryRead() (RwLockReadGuard[T], bool)
	Write(ctx context.Context) (RwLockWriteGuard[T], error)
	TryWrite() (RwLockWriteGuard[T], bool)
	GetMut() *T
	IntoInner() T
}

// RwLockReadGuard 读守卫
type RwLockReadGuard[T any] interface {
	Get() T
	Unlock()
}

// RwLockWriteGuard 写守卫
type RwLockWriteGuard[T any] interface {
	Value() *T
	Get() T
	Set(v T)
	Unlock()

	// Downgrade 消耗写守卫并返回读守卫
	Downgrade() RwLockReadGuard[T]
}

// BlockingRwLock 支持阻塞获取的读写锁
type BlockingRwLock[T any] interface {
	RwLock[T]

	BlockingRead() RwLockReadGuard[T]
	BlockingWrite() RwLockWriteGuard[T]
}
