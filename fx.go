package asyncrt

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"github.com/dep2p/go-asyncrt/config"
	"github.com/dep2p/go-asyncrt/internal/core/metrics"
	"github.com/dep2p/go-asyncrt/internal/debug/introspect"
	"github.com/dep2p/go-asyncrt/internal/util/logger"
)

var fxLogger = logger.Logger("asyncrt/fx")

// Module 返回默认引擎的 Fx 模块
//
// 提供 *config.Config、metrics.Reporter、引擎 *Runtime 及其实现的全部能力接口，
// 以及可选的 *introspect.Server。
// 选项无效时返回 fx.Error。
func Module(opts ...Option) fx.Option {
	o, err := newOptions(opts)
	if err != nil {
		return fx.Error(err)
	}
	cfg, err := o.toConfig()
	if err != nil {
		return fx.Error(err)
	}
	return buildModule(o, cfg)
}

// buildModule 组装模块
//
// 加载顺序（按依赖）：配置 → 指标 → 引擎 → 自省服务。
func buildModule(o *options, cfg *config.Config) fx.Option {
	applyLogConfig(cfg)

	// ════════════════════════════════════════════════════════════════════════
	// 1. 配置注入
	// ════════════════════════════════════════════════════════════════════════
	modules := []fx.Option{fx.Supply(cfg)}
	if o.registerer != nil {
		reg := o.registerer
		modules = append(modules, fx.Provide(func() prometheus.Registerer { return reg }))
	}

	// ════════════════════════════════════════════════════════════════════════
	// 2. 任务指标（关闭时为 Nop）
	// ════════════════════════════════════════════════════════════════════════
	modules = append(modules, metrics.Module)

	// ════════════════════════════════════════════════════════════════════════
	// 3. 引擎（构建标签选定）
	// ════════════════════════════════════════════════════════════════════════
	modules = append(modules, engineModule())

	// ════════════════════════════════════════════════════════════════════════
	// 4. 自省服务（Diagnostics.EnableIntrospect 启用时）
	// ════════════════════════════════════════════════════════════════════════
	modules = append(modules, introspect.Module())

	fxLogger.Debug("module assembled", "engine", DefaultEngine, "metrics", cfg.Executor.Metrics)
	return fx.Module("asyncrt", modules...)
}

// NewApp 构建包含默认引擎的 Fx 应用
//
// WithFxOptions 追加的选项在引擎模块之后加载，可直接注入能力接口。
func NewApp(opts ...Option) (*fx.App, error) {
	o, err := newOptions(opts)
	if err != nil {
		return nil, err
	}
	cfg, err := o.toConfig()
	if err != nil {
		return nil, err
	}

	modules := []fx.Option{buildModule(o, cfg)}
	modules = append(modules, o.fxOptions...)
	modules = append(modules,
		// 禁用 Fx 日志输出（避免干扰用户日志）
		fx.WithLogger(func() fxevent.Logger {
			return &fxevent.ZapLogger{Logger: zap.NewNop()}
		}),
	)

	app := fx.New(modules...)
	if err := app.Err(); err != nil {
		return nil, err
	}
	return app, nil
}
