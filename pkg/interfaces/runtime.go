// Package interfaces 定义 go-asyncrt 能力契约
//
// 本文件定义运行时描述符：一组细粒度的能力接口。
package interfaces

// Runtime 所有引擎共有的描述符
type Runtime interface {
	// Name 引擎名称
	Name() string

	// Close 关闭引擎持有的资源（执行器、解析器等）
	Close() error
}

// RuntimeLock 互斥锁能力
type RuntimeLock interface {
	NewRawMutex() RawMutex
}

// RuntimeLockExt 扩展锁能力：读写锁、信号量、屏障
type RuntimeLockExt interface {
	RuntimeLock

	NewRawRwLock() RawRwLock

	// NewSemaphore permits 不能为负
	NewSemaphore(permits int) Semaphore

	// NewBarrier n 至少为 1
	NewBarrier(n int) Barrier
}

// RuntimeBlockingLock 阻塞锁能力
//
// 执行器线程不允许阻塞的引擎不实现该接口。
type RuntimeBlockingLock interface {
	RuntimeLockExt

	NewRawBlockingMutex() RawBlockingMutex
	NewRawBlockingRwLock() RawBlockingRwLock
}

// RuntimeChannels 多生产者单消费者通道能力
type RuntimeChannels interface {
	// NewBounded capacity 至少为 1
	NewBounded(capacity int) (RawSender, RawReceiver)

	NewUnbounded() (RawSender, RawReceiver)
}

// RuntimeChannelsExt 一次性通道能力
type RuntimeChannelsExt interface {
	RuntimeChannels

	NewOneshot() (RawOneshotSender, RawOneshotReceiver)
}

// RuntimeExecutor 执行器能力
type RuntimeExecutor interface {
	Executor() Executor
}

// RuntimeFs 文件系统能力
type RuntimeFs interface {
	Fs() Fs
}

// RuntimeNet 网络能力
type RuntimeNet interface {
	Net() Net
}

// RuntimeTime 计时能力
type RuntimeTime interface {
	Time() Time
}
