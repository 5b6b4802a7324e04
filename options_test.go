package asyncrt_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-asyncrt"
	"github.com/dep2p/go-asyncrt/config"
)

// TestOptions_Invalid 非法选项在构造时报错
func TestOptions_Invalid(t *testing.T) {
	tests := []struct {
		name string
		opt  asyncrt.Option
	}{
		{"negative workers", asyncrt.WithWorkers(-1)},
		{"negative shutdown timeout", asyncrt.WithShutdownTimeout(-time.Second)},
		{"unknown preset", asyncrt.WithPreset("turbo")},
		{"nil config", asyncrt.WithConfig(nil)},
		{"missing file", asyncrt.WithConfigFile(filepath.Join(t.TempDir(), "none.json"))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := asyncrt.NewNative(tt.opt)
			assert.Error(t, err)
			_, err = asyncrt.NewPool(tt.opt)
			assert.Error(t, err)
			_, err = asyncrt.NewLocal(tt.opt)
			assert.Error(t, err)
		})
	}
}

// TestOptions_ConfigNotMutated 单项覆盖不修改调用方的配置
func TestOptions_ConfigNotMutated(t *testing.T) {
	cfg := config.NewConfig()
	rt, err := asyncrt.NewPool(asyncrt.WithConfig(cfg), asyncrt.WithWorkers(3), asyncrt.WithMetrics(false))
	require.NoError(t, err)
	defer rt.Close()

	assert.Equal(t, 3, rt.PoolExecutor().Size())
	assert.Equal(t, 0, cfg.Executor.Workers)
	assert.True(t, cfg.Executor.Metrics)
}

// TestOptions_ConfigFile 从文件加载后再应用覆盖
func TestOptions_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "asyncrt.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"executor": {"workers": 5, "metrics": false}}`), 0o600))

	rt, err := asyncrt.NewPool(asyncrt.WithConfigFile(path))
	require.NoError(t, err)
	assert.Equal(t, 5, rt.PoolExecutor().Size())
	require.NoError(t, rt.Close())

	rt, err = asyncrt.NewPool(asyncrt.WithConfigFile(path), asyncrt.WithWorkers(2))
	require.NoError(t, err)
	assert.Equal(t, 2, rt.PoolExecutor().Size())
	require.NoError(t, rt.Close())
}

// TestOptions_MinimalPreset minimal 预设使用单个工作协程
func TestOptions_MinimalPreset(t *testing.T) {
	rt, err := asyncrt.NewPool(asyncrt.WithPreset("minimal"))
	require.NoError(t, err)
	defer rt.Close()
	assert.Equal(t, 1, rt.PoolExecutor().Size())
}

// TestOptions_MetricsRegisterer 任务指标注册到调用方的注册表
func TestOptions_MetricsRegisterer(t *testing.T) {
	reg := prometheus.NewRegistry()
	rt, err := asyncrt.NewNative(asyncrt.WithMetricsRegisterer(reg))
	require.NoError(t, err)
	defer rt.Close()

	h := asyncrt.Spawn(rt.Executor(), func(context.Context) int { return 1 })
	_, err = h.Await(context.Background())
	require.NoError(t, err)

	n, err := testutil.GatherAndCount(reg, "asyncrt_tasks_spawned_total", "asyncrt_tasks_finished_total")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	expected := `
# HELP asyncrt_tasks_spawned_total Number of tasks spawned.
# TYPE asyncrt_tasks_spawned_total counter
asyncrt_tasks_spawned_total{engine="native"} 1
`
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "asyncrt_tasks_spawned_total"))
}

// TestOptions_Clock 注入的时钟驱动计时能力
func TestOptions_Clock(t *testing.T) {
	mock := clock.NewMock()
	rt, err := asyncrt.NewNative(asyncrt.WithClock(mock), asyncrt.WithMetrics(false))
	require.NoError(t, err)
	defer rt.Close()

	assert.Equal(t, mock.Now(), rt.Time().Now())
	mock.Add(time.Hour)
	assert.Equal(t, mock.Now(), rt.Time().Now())
}

// TestVersionInfo 版本串包含版本号与默认引擎
func TestVersionInfo(t *testing.T) {
	info := asyncrt.VersionInfo()
	assert.Contains(t, info, asyncrt.Version)
	assert.Contains(t, info, asyncrt.DefaultEngine)

	asyncrt.GitCommit = "0123456789abcdef"
	defer func() { asyncrt.GitCommit = "" }()
	assert.Contains(t, asyncrt.VersionInfo(), " 01234567")
	assert.NotContains(t, asyncrt.VersionInfo(), "89abcdef")
}
