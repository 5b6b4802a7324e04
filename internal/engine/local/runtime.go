package local

import (
	"context"
	"fmt"

	"github.com/benbjohnson/clock"

	"github.com/dep2p/go-asyncrt/internal/core/locks"
	"github.com/dep2p/go-asyncrt/internal/core/metrics"
	"github.com/dep2p/go-asyncrt/internal/core/osfs"
	"github.com/dep2p/go-asyncrt/internal/core/suspend"
	"github.com/dep2p/go-asyncrt/internal/core/timer"
	"github.com/dep2p/go-asyncrt/internal/util/logger"
	"github.com/dep2p/go-asyncrt/pkg/interfaces"
	"github.com/dep2p/go-asyncrt/pkg/types"
)

var log = logger.Logger("engine/local")

// Name 引擎名称
const Name = "local"

// Config 引擎配置
type Config struct {
	// Reporter 任务指标，nil 时不记录
	Reporter metrics.Reporter

	// Clock 定时器时钟，nil 时使用真实时钟
	Clock clock.Clock
}

// Runtime 单线程协作式引擎
type Runtime struct {
	exec *Executor
	susp suspend.Suspender
	fs   *osfs.FS
	time *timer.Time
}

var (
	_ interfaces.Runtime         = (*Runtime)(nil)
	_ interfaces.RuntimeLockExt  = (*Runtime)(nil)
	_ interfaces.RuntimeChannels = (*Runtime)(nil)
	_ interfaces.RuntimeExecutor = (*Runtime)(nil)
	_ interfaces.RuntimeFs       = (*Runtime)(nil)
	_ interfaces.RuntimeTime     = (*Runtime)(nil)
)

// New 创建引擎
func New(cfg Config) *Runtime {
	exec := NewExecutor(cfg.Reporter)
	susp := exec.Suspender()
	r := &Runtime{
		exec: exec,
		susp: susp,
		fs:   osfs.New(susp),
		time: timer.New(cfg.Clock,
			timer.WithPolicy(types.MissedTickBurst),
			timer.WithImmediateFirstTick(false),
			timer.WithSuspender(susp),
		),
	}
	log.Debug("runtime started")
	return r
}

// Name 实现 interfaces.Runtime
func (r *Runtime) Name() string {
	return Name
}

// Close 实现 interfaces.Runtime
func (r *Runtime) Close() error {
	err := r.exec.Close()
	log.Debug("runtime closed")
	return err
}

// Shutdown 取消所有任务并等待它们退出
func (r *Runtime) Shutdown(ctx context.Context) error {
	return r.exec.Shutdown(ctx)
}

// ============================================================================
//                              锁
// ============================================================================

// NewRawMutex 实现 interfaces.RuntimeLock
func (r *Runtime) NewRawMutex() interfaces.RawMutex {
	return locks.NewMutex(r.susp)
}

// NewRawRwLock 实现 interfaces.RuntimeLockExt
func (r *Runtime) NewRawRwLock() interfaces.RawRwLock {
	return locks.NewRwLock(r.susp)
}

// NewSemaphore 实现 interfaces.RuntimeLockExt
func (r *Runtime) NewSemaphore(permits int) interfaces.Semaphore {
	return Semaphore{locks.NewSemaphore(permits, r.susp)}
}

// NewBarrier 实现 interfaces.RuntimeLockExt
func (r *Runtime) NewBarrier(n int) interfaces.Barrier {
	return locks.NewBarrier(n, r.susp)
}

// ============================================================================
//                              通道
// ============================================================================

// NewBounded 实现 interfaces.RuntimeChannels
func (r *Runtime) NewBounded(capacity int) (interfaces.RawSender, interfaces.RawReceiver) {
	if capacity < 1 {
		panic(fmt.Sprintf("local: bounded channel capacity must be >= 1, got %d", capacity))
	}
	return newChannel(capacity, r.susp)
}

// NewUnbounded 实现 interfaces.RuntimeChannels
func (r *Runtime) NewUnbounded() (interfaces.RawSender, interfaces.RawReceiver) {
	return newChannel(0, r.susp)
}

// ============================================================================
//                              执行器、文件系统、定时器
// ============================================================================

// Executor 实现 interfaces.RuntimeExecutor
func (r *Runtime) Executor() interfaces.Executor {
	return r.exec
}

// LocalExecutor 返回具体类型的执行器
func (r *Runtime) LocalExecutor() *Executor {
	return r.exec
}

// Fs 实现 interfaces.RuntimeFs
func (r *Runtime) Fs() interfaces.Fs {
	return r.fs
}

// Time 实现 interfaces.RuntimeTime
func (r *Runtime) Time() interfaces.Time {
	return r.time
}
