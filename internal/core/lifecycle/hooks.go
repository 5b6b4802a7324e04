package lifecycle

import (
	"context"

	"go.uber.org/fx"

	"github.com/dep2p/go-asyncrt/config"
)

// AppendShutdown 注册停止钩子，在执行器关闭超时内调用 shutdown
//
// cfg 为 nil 时使用默认超时；超时为 0 时只受 fx 停止 ctx 约束。
func AppendShutdown(lc fx.Lifecycle, cfg *config.Config, shutdown func(context.Context) error) {
	timeout := config.DefaultExecutorConfig().ShutdownTimeout.Duration()
	if cfg != nil {
		timeout = cfg.Executor.ShutdownTimeout.Duration()
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			if timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}
			return shutdown(ctx)
		},
	})
}
