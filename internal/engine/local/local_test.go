package local

import (
	"context"
	"path/filepath"
	"runtime"
	"sync/atomic"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"

	"github.com/dep2p/go-asyncrt/internal/core/metrics"
	"github.com/dep2p/go-asyncrt/pkg/interfaces"
	"github.com/dep2p/go-asyncrt/pkg/types"
)

func newRuntime(t *testing.T, cfg Config) *Runtime {
	t.Helper()
	r := New(cfg)
	t.Cleanup(func() { _ = r.Close() })
	return r
}

func TestRuntime_Capabilities(t *testing.T) {
	r := newRuntime(t, Config{})
	assert.Equal(t, "local", r.Name())
	assert.Equal(t, types.WrapNone, r.Executor().Wrap())

	var rt any = r
	_, ok := rt.(interfaces.RuntimeBlockingLock)
	assert.False(t, ok)
	_, ok = rt.(interfaces.RuntimeChannelsExt)
	assert.False(t, ok)
	_, ok = rt.(interfaces.RuntimeNet)
	assert.False(t, ok)

	tx, _ := r.NewUnbounded()
	_, ok = tx.(interfaces.RawSenderExt)
	assert.False(t, ok)

	_, ok = r.NewSemaphore(1).(interfaces.SemaphoreCloser)
	assert.False(t, ok)
}

func TestBaton_Misuse(t *testing.T) {
	b := newBaton()
	assert.PanicsWithValue(t, errBatonNotHeld, b.release)

	b.acquireBlocking()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, b.acquire(ctx), context.DeadlineExceeded)
	b.release()
}

func TestExecutor_Serialised(t *testing.T) {
	r := newRuntime(t, Config{})
	ex := r.LocalExecutor()

	var active, peak atomic.Int32
	var tasks []interfaces.Task
	for i := 0; i < 4; i++ {
		tasks = append(tasks, ex.Spawn(func(ctx context.Context) any {
			for j := 0; j < 20; j++ {
				n := active.Add(1)
				if n > peak.Load() {
					peak.Store(n)
				}
				runtime.Gosched()
				active.Add(-1)
				ex.Yield(ctx)
			}
			return nil
		}))
	}
	for _, tk := range tasks {
		_, err := tk.Await(context.Background())
		require.NoError(t, err)
	}
	assert.Equal(t, int32(1), peak.Load())
}

func TestExecutor_CooperativeChannel(t *testing.T) {
	r := newRuntime(t, Config{})
	ex := r.Executor()

	got := ex.BlockOn(context.Background(), func(ctx context.Context) any {
		tx, rx := r.NewBounded(1)
		producer := ex.Spawn(func(ctx context.Context) any {
			for i := 1; i <= 3; i++ {
				if err := tx.Send(ctx, i); err != nil {
					return err
				}
			}
			tx.Close()
			return nil
		})

		sum := 0
		for {
			v, err := rx.Recv(ctx)
			if err != nil {
				assert.ErrorIs(t, err, types.ErrClosed)
				break
			}
			sum += v.(int)
		}
		out, err := producer.Await(ctx)
		require.NoError(t, err)
		assert.Nil(t, out)
		return sum
	})
	assert.Equal(t, 6, got)
}

func TestExecutor_PanicRaisedAtAwait(t *testing.T) {
	r := newRuntime(t, Config{})
	tk := r.Executor().Spawn(func(context.Context) any { panic("boom") })
	<-tk.Done()
	assert.PanicsWithValue(t, "boom", func() {
		_, _ = tk.Await(context.Background())
	})
}

func TestExecutor_Cancel(t *testing.T) {
	r := newRuntime(t, Config{})
	ex := r.Executor()

	tk := ex.Spawn(func(ctx context.Context) any {
		_, err := r.Time().Sleep(ctx, time.Hour)
		return err
	})
	tk.Cancel()
	_, err := tk.Await(context.Background())
	assert.ErrorIs(t, err, types.ErrCancelled)

	assert.PanicsWithValue(t, types.ErrReentrantBlockOn, func() {
		ex.BlockOn(context.Background(), func(ctx context.Context) any {
			return ex.BlockOn(ctx, func(context.Context) any { return nil })
		})
	})
}

func TestExecutor_ShutdownCancelsWaiting(t *testing.T) {
	counter, err := metrics.NewTaskCounter(metrics.DefaultConfig(), nil)
	require.NoError(t, err)
	r := newRuntime(t, Config{Reporter: counter})
	ex := r.Executor()

	started := make(chan struct{})
	release := make(chan struct{})
	// 持有令牌不挂起，后面的任务只能等待令牌
	blocker := ex.Spawn(func(context.Context) any {
		close(started)
		<-release
		return nil
	})
	<-started
	waiting := ex.Spawn(func(context.Context) any { return "ran" })

	require.Eventually(t, func() bool { return r.LocalExecutor().Running() == 2 }, time.Second, time.Millisecond)
	require.NoError(t, r.Close())
	close(release)

	require.NoError(t, r.Shutdown(context.Background()))
	_, err = waiting.Await(context.Background())
	assert.ErrorIs(t, err, types.ErrCancelled)
	_, err = blocker.Await(context.Background())
	assert.ErrorIs(t, err, types.ErrCancelled)

	stats := counter.Snapshot(Name)
	assert.Equal(t, int64(2), stats.Spawned)
	assert.Equal(t, int64(2), stats.Cancelled)
}

func TestChannel_Errors(t *testing.T) {
	r := newRuntime(t, Config{})
	tx, rx := r.NewBounded(1)
	require.NoError(t, tx.TrySend(1))

	err := tx.TrySend(2)
	var le *Error
	require.ErrorAs(t, err, &le)
	assert.Equal(t, "try_send", le.Op)
	assert.ErrorIs(t, err, types.ErrFull)

	rx.Close()
	assert.True(t, tx.IsClosed())
	assert.ErrorIs(t, tx.TrySend(3), types.ErrClosed)

	assert.Panics(t, func() { r.NewBounded(0) })
}

func TestTime_Burst(t *testing.T) {
	clk := clock.NewMock()
	r := newRuntime(t, Config{Clock: clk})

	start := clk.Now()
	iv := r.Time().Interval(time.Second)
	defer iv.Stop()
	assert.Equal(t, types.MissedTickBurst, iv.Policy())

	// 错过的 tick 逐个补发
	clk.Add(3500 * time.Millisecond)
	for i := 1; i <= 3; i++ {
		tick, err := iv.Next(context.Background())
		require.NoError(t, err)
		assert.Equal(t, start.Add(time.Duration(i)*time.Second), tick)
	}
}

func TestFs_Offloaded(t *testing.T) {
	r := newRuntime(t, Config{})
	ex := r.Executor()
	path := filepath.Join(t.TempDir(), "data.txt")

	got := ex.BlockOn(context.Background(), func(ctx context.Context) any {
		var ticks atomic.Int32
		bg := ex.Spawn(func(ctx context.Context) any {
			ticks.Add(1)
			return nil
		})

		require.NoError(t, r.Fs().Write(ctx, path, []byte("hello")))
		s, err := r.Fs().ReadToString(ctx, path)
		require.NoError(t, err)

		_, err = bg.Await(ctx)
		require.NoError(t, err)
		assert.Equal(t, int32(1), ticks.Load())
		return s
	})
	assert.Equal(t, "hello", got)
}

func TestModule(t *testing.T) {
	var (
		rt  *Runtime
		ext interfaces.RuntimeLockExt
	)
	app := fxtest.New(t,
		metrics.Module,
		Module(),
		fx.Populate(&rt, &ext),
	)
	app.RequireStart()

	tk := rt.Executor().Spawn(func(ctx context.Context) any {
		_, err := rt.Time().Sleep(ctx, time.Hour)
		return err
	})
	app.RequireStop()

	_, err := tk.Await(context.Background())
	assert.ErrorIs(t, err, types.ErrCancelled)
	assert.NotNil(t, ext.NewBarrier(1))
}
