package pool

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"

	"github.com/dep2p/go-asyncrt/config"
	"github.com/dep2p/go-asyncrt/internal/core/metrics"
	"github.com/dep2p/go-asyncrt/pkg/interfaces"
	"github.com/dep2p/go-asyncrt/pkg/types"
)

func newRuntime(t *testing.T, workers int) *Runtime {
	t.Helper()
	r, err := New(Config{Workers: workers})
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })
	return r
}

func TestRuntime_Capabilities(t *testing.T) {
	r := newRuntime(t, 0)
	assert.Equal(t, "pool", r.Name())
	assert.Equal(t, types.WrapNone, r.Executor().Wrap())
	assert.Positive(t, r.PoolExecutor().Size())

	var rt any = r
	for name, ok := range map[string]bool{
		"lock_ext":      is[interfaces.RuntimeLockExt](rt),
		"blocking_lock": is[interfaces.RuntimeBlockingLock](rt),
		"fs":            is[interfaces.RuntimeFs](rt),
		"net":           is[interfaces.RuntimeNet](rt),
		"time":          is[interfaces.RuntimeTime](rt),
	} {
		assert.False(t, ok, name)
	}

	_, err := New(Config{Workers: -1})
	assert.Error(t, err)
}

func is[T any](v any) bool {
	_, ok := v.(T)
	return ok
}

func TestMutex(t *testing.T) {
	r := newRuntime(t, 2)
	m := r.NewRawMutex()

	require.NoError(t, m.Lock(context.Background()))
	assert.False(t, m.TryLock())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, m.Lock(ctx), context.DeadlineExceeded)

	m.Unlock()
	assert.True(t, m.TryLock())
	m.Unlock()
	assert.Panics(t, m.Unlock)
}

func TestChannel_Errors(t *testing.T) {
	r := newRuntime(t, 1)
	tx, rx := r.NewBounded(1)
	require.NoError(t, tx.TrySend(1))

	err := tx.TrySend(2)
	var se *SendError
	require.ErrorAs(t, err, &se)
	assert.True(t, se.IsFull())
	assert.ErrorIs(t, err, types.ErrFull)

	rx.Close()
	err = tx.Send(context.Background(), 3)
	require.ErrorAs(t, err, &se)
	assert.True(t, se.IsDisconnected())

	v, ok, err := rx.TryRecv()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1, v)

	_, _, err = rx.TryRecv()
	var tre *TryRecvError
	require.ErrorAs(t, err, &tre)
	assert.ErrorIs(t, err, types.ErrClosed)

	_, err = rx.Recv(context.Background())
	var re *RecvError
	require.ErrorAs(t, err, &re)

	_, ok = tx.(interfaces.RawSenderExt)
	assert.True(t, ok)
}

func TestOneshot_Canceled(t *testing.T) {
	r := newRuntime(t, 1)

	tx, rx := r.NewOneshot()
	tx.Close()
	_, err := rx.Recv(context.Background())
	var c *Canceled
	require.ErrorAs(t, err, &c)
	assert.ErrorIs(t, err, types.ErrClosed)

	tx, rx = r.NewOneshot()
	require.NoError(t, tx.Send("v"))
	assert.ErrorIs(t, tx.Send("again"), types.ErrAlreadySent)
	v, err := rx.Recv(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "v", v)
}

func TestExecutor_FixedWorkers(t *testing.T) {
	r := newRuntime(t, 2)
	ex := r.PoolExecutor()
	assert.Equal(t, 2, ex.Workers())

	var active, peak atomic.Int32
	release := make(chan struct{})
	var tasks []interfaces.Task
	for i := 0; i < 5; i++ {
		tasks = append(tasks, ex.Spawn(func(context.Context) any {
			n := active.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			<-release
			active.Add(-1)
			return nil
		}))
	}
	require.Eventually(t, func() bool { return active.Load() == 2 }, time.Second, time.Millisecond)
	close(release)
	for _, tk := range tasks {
		_, err := tk.Await(context.Background())
		require.NoError(t, err)
	}
	assert.Equal(t, int32(2), peak.Load())
}

func TestExecutor_SuspendedTaskFreesWorker(t *testing.T) {
	r := newRuntime(t, 1)
	ex := r.PoolExecutor()

	outer := ex.Spawn(func(ctx context.Context) any {
		inner := ex.Spawn(func(context.Context) any { return 21 })
		v, err := inner.Await(ctx)
		if err != nil {
			return err
		}
		return v.(int) * 2
	})
	v, err := outer.Await(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 42, v)

	// 补充的工作协程在空闲后退出
	require.Eventually(t, func() bool {
		probe := ex.Spawn(func(context.Context) any { return nil })
		_, _ = probe.Await(context.Background())
		return ex.Workers() == 1
	}, time.Second, time.Millisecond)
}

func TestExecutor_PanicAndCancel(t *testing.T) {
	r := newRuntime(t, 1)
	ex := r.Executor()

	bad := ex.Spawn(func(context.Context) any { panic("boom") })
	<-bad.Done()
	assert.PanicsWithValue(t, "boom", func() { _, _ = bad.Await(context.Background()) })

	block := ex.Spawn(func(ctx context.Context) any { <-ctx.Done(); return nil })
	block.Cancel()
	_, err := block.Await(context.Background())
	assert.ErrorIs(t, err, types.ErrCancelled)

	assert.PanicsWithValue(t, types.ErrReentrantBlockOn, func() {
		ex.BlockOn(context.Background(), func(ctx context.Context) any {
			return ex.BlockOn(ctx, func(context.Context) any { return nil })
		})
	})
}

func TestExecutor_ShutdownDropsQueued(t *testing.T) {
	counter, err := metrics.NewTaskCounter(metrics.DefaultConfig(), nil)
	require.NoError(t, err)
	r, err := New(Config{Workers: 1, Reporter: counter})
	require.NoError(t, err)
	ex := r.Executor()

	started := make(chan struct{})
	busy := ex.Spawn(func(ctx context.Context) any {
		close(started)
		<-ctx.Done()
		return nil
	})
	<-started

	var ran atomic.Bool
	queued := ex.Spawn(func(context.Context) any { ran.Store(true); return nil })

	require.NoError(t, r.Shutdown(context.Background()))
	assert.False(t, ran.Load())
	_, err = queued.Await(context.Background())
	assert.ErrorIs(t, err, types.ErrCancelled)
	_, err = busy.Await(context.Background())
	assert.ErrorIs(t, err, types.ErrCancelled)

	late := ex.Spawn(func(context.Context) any { return nil })
	_, err = late.Await(context.Background())
	assert.ErrorIs(t, err, types.ErrExecutorClosed)

	assert.Equal(t, int64(2), counter.Snapshot(Name).Cancelled)
}

func TestModule(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Executor.Workers = 3

	var r *Runtime
	var ext interfaces.RuntimeChannelsExt
	app := fxtest.New(t,
		fx.Supply(cfg),
		metrics.Module,
		Module(),
		fx.Populate(&r, &ext),
	)
	app.RequireStart()
	assert.Equal(t, 3, r.PoolExecutor().Size())

	tx, rx := ext.NewOneshot()
	r.Executor().Spawn(func(context.Context) any { return tx.Send(1) })
	v, err := rx.Recv(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	app.RequireStop()
}
