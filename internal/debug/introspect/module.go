package introspect

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"

	"github.com/dep2p/go-asyncrt/config"
	"github.com/dep2p/go-asyncrt/internal/core/metrics"
	"github.com/dep2p/go-asyncrt/pkg/interfaces"
)

// Module 返回自省服务 Fx 模块
//
// 配置未启用时不创建服务。
func Module() fx.Option {
	return fx.Module("introspect",
		fx.Provide(NewFromParams),
		fx.Invoke(registerLifecycle),
	)
}

// Params 自省服务依赖参数
type Params struct {
	fx.In

	UnifiedCfg *config.Config        `optional:"true"`
	Runtime    interfaces.Runtime    `optional:"true"`
	Reporter   metrics.Reporter      `optional:"true"`
	Registerer prometheus.Registerer `optional:"true"`
}

// Output 自省服务输出
type Output struct {
	fx.Out

	Server *Server `optional:"true"`
}

// ConfigFromUnified 从统一配置创建服务配置，未启用时返回 nil
func ConfigFromUnified(cfg *config.Config) *Config {
	if cfg == nil || !cfg.Diagnostics.EnableIntrospect {
		return nil
	}
	addr := cfg.Diagnostics.IntrospectAddr
	if addr == "" {
		addr = DefaultAddr
	}
	return &Config{Addr: addr}
}

// NewFromParams 从参数创建自省服务
func NewFromParams(p Params) Output {
	cfg := ConfigFromUnified(p.UnifiedCfg)
	if cfg == nil {
		return Output{}
	}

	cfg.Runtime = p.Runtime
	cfg.Reporter = p.Reporter
	if g, ok := p.Registerer.(prometheus.Gatherer); ok {
		cfg.Gatherer = g
	}
	return Output{Server: New(*cfg)}
}

type lifecycleParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Server    *Server `optional:"true"`
}

func registerLifecycle(p lifecycleParams) {
	if p.Server == nil {
		return
	}
	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return p.Server.Start(ctx)
		},
		OnStop: func(_ context.Context) error {
			return p.Server.Stop()
		},
	})
}
