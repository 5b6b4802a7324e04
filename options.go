package asyncrt

import (
	"fmt"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"

	"github.com/dep2p/go-asyncrt/config"
	"github.com/dep2p/go-asyncrt/internal/core/metrics"
	"github.com/dep2p/go-asyncrt/internal/util/logger"
)

// Option 用户配置选项函数
type Option func(*options) error

// options 内部选项结构
type options struct {
	// 基础配置，nil 时使用默认配置
	config *config.Config

	// 预设名称
	preset string

	// 执行器覆盖
	workers         *int
	metrics         *bool
	shutdownTimeout *time.Duration

	// 自省服务监听地址，非 nil 时启用
	introspectAddr *string

	// 指标注册表，nil 时使用私有注册表
	registerer prometheus.Registerer

	// 定时器时钟（native、local）
	clock clock.Clock

	// 用户自定义 Fx 选项
	fxOptions []fx.Option
}

func newOptions(opts []Option) (*options, error) {
	o := &options{}
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// toConfig 转换为统一配置
//
// 顺序：基础配置 → 预设 → 单项覆盖 → 验证。
func (o *options) toConfig() (*config.Config, error) {
	cfg := config.NewConfig()
	if o.config != nil {
		cfg = config.CloneConfig(o.config)
	}

	if err := config.ApplyPreset(cfg, o.preset); err != nil {
		return nil, err
	}

	if o.workers != nil {
		cfg.Executor.Workers = *o.workers
	}
	if o.metrics != nil {
		cfg.Executor.Metrics = *o.metrics
	}
	if o.shutdownTimeout != nil {
		cfg.Executor.ShutdownTimeout = config.Duration(*o.shutdownTimeout)
	}
	if o.introspectAddr != nil {
		cfg.Diagnostics.EnableIntrospect = true
		cfg.Diagnostics.IntrospectAddr = *o.introspectAddr
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// reporter 按配置创建任务指标
func (o *options) reporter(cfg *config.Config) (metrics.Reporter, error) {
	mcfg := metrics.ConfigFromUnified(cfg)
	if !mcfg.Enabled {
		return metrics.Nop{}, nil
	}
	mcfg.Registerer = o.registerer
	return metrics.NewTaskCounter(mcfg, o.clock)
}

// applyLogConfig 应用日志配置
func applyLogConfig(cfg *config.Config) {
	if cfg.Log.Level != "" || cfg.Log.Format != "" {
		logger.Configure(cfg.Log.Level, cfg.Log.Format)
	}
}

// ============================================================================
//                              配置选项
// ============================================================================

// WithConfig 使用完整配置作为基础，之后的单项选项覆盖其中的值
func WithConfig(cfg *config.Config) Option {
	return func(o *options) error {
		if cfg == nil {
			return fmt.Errorf("config is nil")
		}
		o.config = cfg
		return nil
	}
}

// WithConfigFile 从 JSON 文件加载基础配置
func WithConfigFile(path string) Option {
	return func(o *options) error {
		cfg, err := config.LoadFile(path)
		if err != nil {
			return err
		}
		o.config = cfg
		return nil
	}
}

// WithPreset 应用预设："default"、"server"、"minimal"
func WithPreset(name string) Option {
	return func(o *options) error {
		switch name {
		case "default", "server", "minimal":
			o.preset = name
			return nil
		default:
			return fmt.Errorf("unknown preset: %s", name)
		}
	}
}

// WithWorkers 设置工作协程数
//
// native 为同时运行的任务上限（0 不限制），pool 为池大小（0 为 CPU 数），local 忽略。
func WithWorkers(n int) Option {
	return func(o *options) error {
		if n < 0 {
			return fmt.Errorf("workers must be >= 0, got %d", n)
		}
		o.workers = &n
		return nil
	}
}

// WithMetrics 开关任务指标
func WithMetrics(enabled bool) Option {
	return func(o *options) error {
		o.metrics = &enabled
		return nil
	}
}

// WithMetricsRegisterer 把任务指标注册到 reg
func WithMetricsRegisterer(reg prometheus.Registerer) Option {
	return func(o *options) error {
		o.registerer = reg
		return nil
	}
}

// WithShutdownTimeout 设置 Fx 停止时等待任务退出的时间
func WithShutdownTimeout(d time.Duration) Option {
	return func(o *options) error {
		if d < 0 {
			return fmt.Errorf("shutdown timeout must be >= 0, got %s", d)
		}
		o.shutdownTimeout = &d
		return nil
	}
}

// WithIntrospect 在 addr 上启动本地自省 HTTP 服务，只对 Fx 模块生效
func WithIntrospect(addr string) Option {
	return func(o *options) error {
		o.introspectAddr = &addr
		return nil
	}
}

// WithClock 注入定时器时钟，测试中配合 clock.NewMock 使用
//
// 只对直接构造（NewNative、NewLocal、NewDefault）生效，Fx 模块使用真实时钟。
func WithClock(clk clock.Clock) Option {
	return func(o *options) error {
		o.clock = clk
		return nil
	}
}

// WithFxOptions 追加自定义 Fx 选项，只对 NewApp 生效
func WithFxOptions(opts ...fx.Option) Option {
	return func(o *options) error {
		o.fxOptions = append(o.fxOptions, opts...)
		return nil
	}
}
