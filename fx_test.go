package asyncrt_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"

	"github.com/dep2p/go-asyncrt"
	"github.com/dep2p/go-asyncrt/config"
	"github.com/dep2p/go-asyncrt/internal/debug/introspect"
	"github.com/dep2p/go-asyncrt/pkg/interfaces"
)

// TestModule 模块提供配置与默认引擎的能力
func TestModule(t *testing.T) {
	var (
		cfg *config.Config
		rt  interfaces.Runtime
		ex  interfaces.RuntimeExecutor
		ch  interfaces.RuntimeChannels
	)
	app := fxtest.New(t,
		asyncrt.Module(asyncrt.WithWorkers(2), asyncrt.WithMetricsRegisterer(prometheus.NewRegistry())),
		fx.Populate(&cfg, &rt, &ex, &ch),
	)
	app.RequireStart()

	assert.Equal(t, 2, cfg.Executor.Workers)
	assert.Equal(t, asyncrt.DefaultEngine, rt.Name())

	tx, rx := asyncrt.Unbounded[int](ch)
	h := asyncrt.Spawn(ex.Executor(), func(ctx context.Context) int {
		v, err := rx.Recv(ctx)
		if err != nil {
			return -1
		}
		return v * 2
	})
	require.NoError(t, tx.Send(21))
	v, err := h.Await(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 42, v)

	app.RequireStop()
	_, err = asyncrt.Spawn(ex.Executor(), func(context.Context) int { return 0 }).Await(context.Background())
	assert.ErrorIs(t, err, asyncrt.ErrExecutorClosed)
}

// TestModule_InvalidOptions 非法选项使应用构建失败
func TestModule_InvalidOptions(t *testing.T) {
	app := fx.New(asyncrt.Module(asyncrt.WithWorkers(-1)), fx.NopLogger)
	assert.Error(t, app.Err())
}

// TestNewApp 追加的 Fx 选项可以注入能力接口
func TestNewApp(t *testing.T) {
	var names []string
	app, err := asyncrt.NewApp(
		asyncrt.WithMetrics(false),
		asyncrt.WithFxOptions(
			fx.Invoke(func(rt interfaces.Runtime) {
				names = append(names, rt.Name())
			}),
		),
	)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, app.Start(ctx))
	require.NoError(t, app.Stop(ctx))
	assert.Equal(t, []string{asyncrt.DefaultEngine}, names)

	_, err = asyncrt.NewApp(asyncrt.WithPreset("nope"))
	assert.Error(t, err)
}

// TestModule_Introspect 启用自省服务后可查询引擎信息
func TestModule_Introspect(t *testing.T) {
	var server *introspect.Server
	app := fxtest.New(t,
		asyncrt.Module(asyncrt.WithIntrospect("127.0.0.1:0"), asyncrt.WithMetrics(false)),
		fx.Populate(&server),
	)
	app.RequireStart()
	defer app.RequireStop()
	require.NotNil(t, server)

	resp, err := http.Get("http://" + server.Addr() + "/debug/introspect/engine")
	require.NoError(t, err)
	defer resp.Body.Close()

	var info introspect.EngineInfo
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&info))
	assert.Equal(t, asyncrt.DefaultEngine, info.Name)
	assert.Contains(t, info.Capabilities, "executor")
}
