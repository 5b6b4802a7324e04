package asyncrt

import (
	"github.com/dep2p/go-asyncrt/internal/engine/local"
	"github.com/dep2p/go-asyncrt/internal/engine/native"
	"github.com/dep2p/go-asyncrt/internal/engine/pool"
)

// ============================================================================
//                              显式构造
// ============================================================================

// 各引擎的具体类型，与构建标签无关
type (
	NativeRuntime = native.Runtime
	LocalRuntime  = local.Runtime
	PoolRuntime   = pool.Runtime
)

// NewNative 创建多线程引擎
func NewNative(opts ...Option) (*NativeRuntime, error) {
	o, err := newOptions(opts)
	if err != nil {
		return nil, err
	}
	cfg, err := o.toConfig()
	if err != nil {
		return nil, err
	}
	applyLogConfig(cfg)

	ncfg := native.ConfigFromUnified(cfg)
	ncfg.Clock = o.clock
	if ncfg.Reporter, err = o.reporter(cfg); err != nil {
		return nil, err
	}
	return native.New(ncfg)
}

// NewLocal 创建单线程协作式引擎
func NewLocal(opts ...Option) (*LocalRuntime, error) {
	o, err := newOptions(opts)
	if err != nil {
		return nil, err
	}
	cfg, err := o.toConfig()
	if err != nil {
		return nil, err
	}
	applyLogConfig(cfg)

	reporter, err := o.reporter(cfg)
	if err != nil {
		return nil, err
	}
	return local.New(local.Config{Reporter: reporter, Clock: o.clock}), nil
}

// NewPool 创建工作协程池引擎
func NewPool(opts ...Option) (*PoolRuntime, error) {
	o, err := newOptions(opts)
	if err != nil {
		return nil, err
	}
	cfg, err := o.toConfig()
	if err != nil {
		return nil, err
	}
	applyLogConfig(cfg)

	pcfg := pool.ConfigFromUnified(cfg)
	if pcfg.Reporter, err = o.reporter(cfg); err != nil {
		return nil, err
	}
	return pool.New(pcfg)
}
