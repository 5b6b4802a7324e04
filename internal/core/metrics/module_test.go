package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"

	"github.com/dep2p/go-asyncrt/config"
)

// ============================================================================
// Fx 模块测试
// ============================================================================

// TestModule_Default 未提供配置时启用计数器
func TestModule_Default(t *testing.T) {
	var reporter Reporter
	app := fxtest.New(t,
		Module,
		fx.Populate(&reporter),
	)
	defer app.RequireStart().RequireStop()

	require.IsType(t, &TaskCounter{}, reporter)
	reporter.TaskSpawned("native")
	assert.Equal(t, int64(1), reporter.Snapshot("native").Spawned)
}

// TestModule_Disabled 配置关闭指标时提供 Nop
func TestModule_Disabled(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Executor.Metrics = false

	var reporter Reporter
	app := fxtest.New(t,
		fx.Supply(cfg),
		Module,
		fx.Populate(&reporter),
	)
	defer app.RequireStart().RequireStop()

	assert.Equal(t, Nop{}, reporter)
}

// TestModule_Registerer 使用外部注册表
func TestModule_Registerer(t *testing.T) {
	reg := prometheus.NewRegistry()

	var reporter Reporter
	app := fxtest.New(t,
		fx.Provide(func() prometheus.Registerer { return reg }),
		Module,
		fx.Populate(&reporter),
	)
	defer app.RequireStart().RequireStop()

	reporter.TaskSpawned("pool")
	families, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}
