package introspect

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"

	"github.com/dep2p/go-asyncrt/config"
	"github.com/dep2p/go-asyncrt/internal/core/metrics"
	"github.com/dep2p/go-asyncrt/internal/engine/pool"
	"github.com/dep2p/go-asyncrt/pkg/interfaces"
)

func newPool(t *testing.T) (*pool.Runtime, *metrics.TaskCounter) {
	t.Helper()
	counter, err := metrics.NewTaskCounter(metrics.DefaultConfig(), nil)
	require.NoError(t, err)
	rt, err := pool.New(pool.Config{Workers: 1, Reporter: counter})
	require.NoError(t, err)
	t.Cleanup(func() { _ = rt.Close() })
	return rt, counter
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestNew(t *testing.T) {
	server := New(Config{})
	assert.Equal(t, DefaultAddr, server.config.Addr)
	assert.Nil(t, server.config.Gatherer)

	_, counter := newPool(t)
	server = New(Config{Addr: "127.0.0.1:8080", Reporter: counter})
	assert.Equal(t, "127.0.0.1:8080", server.config.Addr)
	assert.NotNil(t, server.config.Gatherer, "gatherer taken from the task counter")
}

func TestServer_StartStop(t *testing.T) {
	server := New(Config{Addr: "127.0.0.1:0"})

	ctx := context.Background()
	require.NoError(t, server.Start(ctx))
	assert.True(t, server.running)
	assert.NotEqual(t, "127.0.0.1:0", server.Addr())

	require.NoError(t, server.Start(ctx))

	resp, err := http.Get("http://" + server.Addr() + "/health")
	require.NoError(t, err)
	var health HealthResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	resp.Body.Close()
	assert.Equal(t, "degraded", health.Status, "no runtime attached")
	assert.NotEmpty(t, health.Uptime)

	require.NoError(t, server.Stop())
	assert.False(t, server.running)
	require.NoError(t, server.Stop())
}

func TestServer_EngineAndTasks(t *testing.T) {
	rt, counter := newPool(t)
	server := New(Config{Runtime: rt, Reporter: counter})
	h := server.Handler()

	task := rt.Executor().Spawn(func(context.Context) any { return nil })
	_, err := task.Await(context.Background())
	require.NoError(t, err)

	rec := get(t, h, "/debug/introspect/engine")
	require.Equal(t, http.StatusOK, rec.Code)
	var engine EngineInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &engine))
	assert.Equal(t, pool.Name, engine.Name)
	assert.Equal(t, []string{"lock", "channels", "channels_ext", "executor"}, engine.Capabilities)
	assert.Equal(t, rt.Executor().Wrap().String(), engine.Wrap)

	rec = get(t, h, "/debug/introspect/tasks")
	require.Equal(t, http.StatusOK, rec.Code)
	var tasks map[string]metrics.Stats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tasks))
	assert.EqualValues(t, 1, tasks[pool.Name].Spawned)
	assert.EqualValues(t, 1, tasks[pool.Name].Completed)

	rec = get(t, h, "/debug/introspect")
	require.Equal(t, http.StatusOK, rec.Code)
	var full IntrospectResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &full))
	require.NotNil(t, full.Engine)
	require.NotNil(t, full.Runtime)
	assert.Positive(t, full.Runtime.NumCPU)

	rec = get(t, h, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	body, _ := io.ReadAll(rec.Body)
	assert.Contains(t, string(body), `asyncrt_tasks_spawned_total{engine="pool"} 1`)
}

func TestServer_NoRuntime(t *testing.T) {
	h := New(Config{}).Handler()

	assert.Equal(t, http.StatusServiceUnavailable, get(t, h, "/debug/introspect/engine").Code)
	assert.Equal(t, http.StatusNotFound, get(t, h, "/metrics").Code)

	rec := get(t, h, "/debug/introspect/tasks")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{}`, rec.Body.String())

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/debug/introspect", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestServer_CustomHandlers(t *testing.T) {
	h := New(Config{CustomHandlers: map[string]http.HandlerFunc{
		"/debug/custom": func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("custom"))
		},
	}}).Handler()

	rec := get(t, h, "/debug/custom")
	assert.Equal(t, "custom", rec.Body.String())
}

func TestModule(t *testing.T) {
	t.Run("Disabled", func(t *testing.T) {
		var server *Server
		app := fxtest.New(t,
			fx.Supply(config.NewConfig()),
			Module(),
			fx.Populate(&server),
		)
		app.RequireStart()
		app.RequireStop()
		assert.Nil(t, server)
	})

	t.Run("Enabled", func(t *testing.T) {
		cfg := config.NewConfig()
		cfg.Diagnostics.EnableIntrospect = true
		cfg.Diagnostics.IntrospectAddr = "127.0.0.1:0"

		rt, counter := newPool(t)
		var server *Server
		app := fxtest.New(t,
			fx.Supply(cfg),
			fx.Provide(
				func() interfaces.Runtime { return rt },
				func() metrics.Reporter { return counter },
			),
			Module(),
			fx.Populate(&server),
		)
		app.RequireStart()
		require.NotNil(t, server)

		resp, err := http.Get("http://" + server.Addr() + "/health")
		require.NoError(t, err)
		var health HealthResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
		resp.Body.Close()
		assert.Equal(t, "ok", health.Status)

		app.RequireStop()
		assert.False(t, server.running)
	})
}
