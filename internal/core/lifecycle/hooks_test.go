package lifecycle

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"

	"github.com/dep2p/go-asyncrt/config"
)

func TestAppendShutdown(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Executor.ShutdownTimeout = config.Duration(50 * time.Millisecond)

	var deadline time.Duration
	app := fxtest.New(t,
		fx.Invoke(func(lc fx.Lifecycle) {
			AppendShutdown(lc, cfg, func(ctx context.Context) error {
				d, ok := ctx.Deadline()
				require.True(t, ok)
				deadline = time.Until(d)
				return nil
			})
		}),
	)
	app.RequireStart()
	app.RequireStop()

	assert.LessOrEqual(t, deadline, 50*time.Millisecond)
	assert.Greater(t, deadline, time.Duration(0))
}
