package pool

import (
	"go.uber.org/fx"

	"github.com/dep2p/go-asyncrt/config"
	"github.com/dep2p/go-asyncrt/internal/core/lifecycle"
	"github.com/dep2p/go-asyncrt/internal/core/metrics"
	"github.com/dep2p/go-asyncrt/pkg/interfaces"
)

// Params 引擎依赖参数
type Params struct {
	fx.In

	UnifiedCfg *config.Config   `optional:"true"`
	Reporter   metrics.Reporter `optional:"true"`
}

// NewFromParams 从参数创建引擎
func NewFromParams(p Params) (*Runtime, error) {
	cfg := ConfigFromUnified(p.UnifiedCfg)
	cfg.Reporter = p.Reporter
	return New(cfg)
}

// Module 返回 Fx 模块
func Module() fx.Option {
	return fx.Module("engine/pool",
		fx.Provide(
			NewFromParams,
			func(r *Runtime) interfaces.Runtime { return r },
			func(r *Runtime) interfaces.RuntimeLock { return r },
			func(r *Runtime) interfaces.RuntimeChannels { return r },
			func(r *Runtime) interfaces.RuntimeChannelsExt { return r },
			func(r *Runtime) interfaces.RuntimeExecutor { return r },
		),
		fx.Invoke(registerLifecycleHooks),
	)
}

type lifecycleHooksParams struct {
	fx.In

	Lifecycle  fx.Lifecycle
	Runtime    *Runtime
	UnifiedCfg *config.Config `optional:"true"`
}

// registerLifecycleHooks 停止时关闭执行器并等待任务退出
func registerLifecycleHooks(p lifecycleHooksParams) {
	lifecycle.AppendShutdown(p.Lifecycle, p.UnifiedCfg, p.Runtime.Shutdown)
}
