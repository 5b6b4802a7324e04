package native

import (
	"context"
	"fmt"

	"github.com/benbjohnson/clock"

	"github.com/dep2p/go-asyncrt/config"
	"github.com/dep2p/go-asyncrt/internal/core/locks"
	"github.com/dep2p/go-asyncrt/internal/core/metrics"
	"github.com/dep2p/go-asyncrt/internal/core/netio"
	"github.com/dep2p/go-asyncrt/internal/core/osfs"
	"github.com/dep2p/go-asyncrt/internal/core/queue"
	"github.com/dep2p/go-asyncrt/internal/core/resolver"
	"github.com/dep2p/go-asyncrt/internal/core/suspend"
	"github.com/dep2p/go-asyncrt/internal/core/timer"
	"github.com/dep2p/go-asyncrt/internal/util/logger"
	"github.com/dep2p/go-asyncrt/pkg/interfaces"
	"github.com/dep2p/go-asyncrt/pkg/types"
)

var log = logger.Logger("engine/native")

// Name 引擎名称
const Name = "native"

// Config 引擎配置
type Config struct {
	// Workers 同时运行的任务上限，0 表示不限制
	Workers int

	// Reporter 任务指标，nil 时不记录
	Reporter metrics.Reporter

	// Resolver 地址解析配置
	Resolver resolver.Config

	// Clock 定时器时钟，nil 时使用真实时钟
	Clock clock.Clock
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{Resolver: resolver.DefaultConfig()}
}

// ConfigFromUnified 从统一配置创建引擎配置
func ConfigFromUnified(cfg *config.Config) Config {
	out := DefaultConfig()
	if cfg == nil {
		return out
	}
	out.Workers = cfg.Executor.Workers
	out.Resolver = resolver.ConfigFromUnified(cfg)
	return out
}

// Runtime 多线程引擎
type Runtime struct {
	exec     *Executor
	fs       *osfs.FS
	net      *netio.Net
	time     *timer.Time
	resolver *resolver.Resolver
}

var (
	_ interfaces.Runtime             = (*Runtime)(nil)
	_ interfaces.RuntimeBlockingLock = (*Runtime)(nil)
	_ interfaces.RuntimeChannelsExt  = (*Runtime)(nil)
	_ interfaces.RuntimeExecutor     = (*Runtime)(nil)
	_ interfaces.RuntimeFs           = (*Runtime)(nil)
	_ interfaces.RuntimeNet          = (*Runtime)(nil)
	_ interfaces.RuntimeTime         = (*Runtime)(nil)
)

// New 创建引擎
func New(cfg Config) (*Runtime, error) {
	if cfg.Workers < 0 {
		return nil, fmt.Errorf("native: workers must be >= 0, got %d", cfg.Workers)
	}
	res, err := resolver.New(cfg.Resolver)
	if err != nil {
		return nil, fmt.Errorf("native: %w", err)
	}
	r := &Runtime{
		exec:     NewExecutor(cfg.Workers, cfg.Reporter),
		fs:       osfs.New(suspend.Inline{}),
		net:      netio.New(res),
		resolver: res,
		time: timer.New(cfg.Clock,
			timer.WithPolicy(types.MissedTickSkip),
			timer.WithImmediateFirstTick(true),
		),
	}
	log.Debug("runtime started", "workers", cfg.Workers, "resolver", res.Mode())
	return r, nil
}

// Name 实现 interfaces.Runtime
func (r *Runtime) Name() string {
	return Name
}

// Close 实现 interfaces.Runtime
//
// 取消所有任务，不等待。
func (r *Runtime) Close() error {
	err := r.exec.Close()
	r.resolver.Purge()
	log.Debug("runtime closed")
	return err
}

// Shutdown 取消所有任务并等待它们退出
func (r *Runtime) Shutdown(ctx context.Context) error {
	err := r.exec.Shutdown(ctx)
	r.resolver.Purge()
	return err
}

// ============================================================================
//                              锁
// ============================================================================

// NewRawMutex 实现 interfaces.RuntimeLock
func (r *Runtime) NewRawMutex() interfaces.RawMutex {
	return locks.NewMutex(suspend.Inline{})
}

// NewRawRwLock 实现 interfaces.RuntimeLockExt
func (r *Runtime) NewRawRwLock() interfaces.RawRwLock {
	return locks.NewRwLock(suspend.Inline{})
}

// NewSemaphore 实现 interfaces.RuntimeLockExt，返回值同时实现 interfaces.SemaphoreCloser
func (r *Runtime) NewSemaphore(permits int) interfaces.Semaphore {
	return locks.NewSemaphore(permits, suspend.Inline{})
}

// NewBarrier 实现 interfaces.RuntimeLockExt
func (r *Runtime) NewBarrier(n int) interfaces.Barrier {
	return locks.NewBarrier(n, suspend.Inline{})
}

// NewRawBlockingMutex 实现 interfaces.RuntimeBlockingLock
func (r *Runtime) NewRawBlockingMutex() interfaces.RawBlockingMutex {
	return locks.NewMutex(suspend.Inline{})
}

// NewRawBlockingRwLock 实现 interfaces.RuntimeBlockingLock
func (r *Runtime) NewRawBlockingRwLock() interfaces.RawBlockingRwLock {
	return locks.NewRwLock(suspend.Inline{})
}

// ============================================================================
//                              通道
// ============================================================================

// NewBounded 实现 interfaces.RuntimeChannels
func (r *Runtime) NewBounded(capacity int) (interfaces.RawSender, interfaces.RawReceiver) {
	if capacity < 1 {
		panic(fmt.Sprintf("native: bounded channel capacity must be >= 1, got %d", capacity))
	}
	return newChannel(capacity)
}

// NewUnbounded 实现 interfaces.RuntimeChannels
func (r *Runtime) NewUnbounded() (interfaces.RawSender, interfaces.RawReceiver) {
	return newChannel(0)
}

// NewOneshot 实现 interfaces.RuntimeChannelsExt
func (r *Runtime) NewOneshot() (interfaces.RawOneshotSender, interfaces.RawOneshotReceiver) {
	tx, rx := queue.NewOneshot(suspend.Inline{})
	return OneshotSender{tx}, OneshotReceiver{rx}
}

// ============================================================================
//                              执行器、文件系统、网络、定时器
// ============================================================================

// Executor 实现 interfaces.RuntimeExecutor
func (r *Runtime) Executor() interfaces.Executor {
	return r.exec
}

// NativeExecutor 返回具体类型的执行器
func (r *Runtime) NativeExecutor() *Executor {
	return r.exec
}

// Fs 实现 interfaces.RuntimeFs
func (r *Runtime) Fs() interfaces.Fs {
	return r.fs
}

// Net 实现 interfaces.RuntimeNet
func (r *Runtime) Net() interfaces.Net {
	return r.net
}

// Time 实现 interfaces.RuntimeTime
func (r *Runtime) Time() interfaces.Time {
	return r.time
}

// Resolver 返回地址解析器
func (r *Runtime) Resolver() *resolver.Resolver {
	return r.resolver
}
