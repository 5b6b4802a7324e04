package pool

import (
	"context"
	"fmt"

	"github.com/dep2p/go-asyncrt/config"
	"github.com/dep2p/go-asyncrt/internal/core/metrics"
	"github.com/dep2p/go-asyncrt/internal/core/queue"
	"github.com/dep2p/go-asyncrt/internal/util/logger"
	"github.com/dep2p/go-asyncrt/pkg/interfaces"
)

var log = logger.Logger("engine/pool")

// Name 引擎名称
const Name = "pool"

// Config 引擎配置
type Config struct {
	// Workers 工作协程数，0 表示 CPU 数
	Workers int

	// Reporter 任务指标，nil 时不记录
	Reporter metrics.Reporter
}

// ConfigFromUnified 从统一配置创建引擎配置
func ConfigFromUnified(cfg *config.Config) Config {
	if cfg == nil {
		return Config{}
	}
	return Config{Workers: cfg.Executor.Workers}
}

// Runtime 工作协程池引擎
type Runtime struct {
	exec *Executor
}

var (
	_ interfaces.Runtime            = (*Runtime)(nil)
	_ interfaces.RuntimeLock        = (*Runtime)(nil)
	_ interfaces.RuntimeChannelsExt = (*Runtime)(nil)
	_ interfaces.RuntimeExecutor    = (*Runtime)(nil)
)

// New 创建引擎
func New(cfg Config) (*Runtime, error) {
	if cfg.Workers < 0 {
		return nil, fmt.Errorf("pool: workers must be >= 0, got %d", cfg.Workers)
	}
	r := &Runtime{exec: NewExecutor(cfg.Workers, cfg.Reporter)}
	log.Debug("runtime started", "workers", r.exec.Size())
	return r, nil
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

// NewRawMutex 实现 interfaces.RuntimeLock
func (r *Runtime) NewRawMutex() interfaces.RawMutex {
	return newMutex(r.exec.Suspender())
}

// NewBounded 实现 interfaces.RuntimeChannels
func (r *Runtime) NewBounded(capacity int) (interfaces.RawSender, interfaces.RawReceiver) {
	if capacity < 1 {
		panic(fmt.Sprintf("pool: bounded channel capacity must be >= 1, got %d", capacity))
	}
	return newChannel(capacity, r.exec.Suspender())
}

// NewUnbounded 实现 interfaces.RuntimeChannels
func (r *Runtime) NewUnbounded() (interfaces.RawSender, interfaces.RawReceiver) {
	return newChannel(0, r.exec.Suspender())
}

// NewOneshot 实现 interfaces.RuntimeChannelsExt
func (r *Runtime) NewOneshot() (interfaces.RawOneshotSender, interfaces.RawOneshotReceiver) {
	tx, rx := queue.NewOneshot(r.exec.Suspender())
	return OneshotSender{tx}, OneshotReceiver{rx}
}

// Executor 实现 interfaces.RuntimeExecutor
func (r *Runtime) Executor() interfaces.Executor {
	return r.exec
}

// PoolExecutor 返回具体类型的执行器
func (r *Runtime) PoolExecutor() *Executor {
	return r.exec
}
