package conformance

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-asyncrt"
	"github.com/dep2p/go-asyncrt/pkg/interfaces"
	"github.com/dep2p/go-asyncrt/pkg/types"
)

func lockCases() []Case {
	return []Case{
		{
			Name:     "mutex/single_guard",
			Supports: all(has[interfaces.RuntimeLock], has[interfaces.RuntimeExecutor]),
			Run:      mutexSingleGuard,
		},
		{
			Name:     "mutex/get_mut_while_locked",
			Supports: has[interfaces.RuntimeLock],
			Run:      mutexGetMutWhileLocked,
		},
		{
			Name:     "rwlock/readers_writer_downgrade",
			Supports: has[interfaces.RuntimeLockExt],
			Run:      rwlockReadersWriterDowngrade,
		},
		{
			Name: "semaphore/two_permits_three_acquirers",
			Supports: all(has[interfaces.RuntimeLockExt], has[interfaces.RuntimeExecutor],
				has[interfaces.RuntimeChannels]),
			Run: semaphoreTwoPermits,
		},
		{
			Name:     "barrier/one_leader",
			Supports: all(has[interfaces.RuntimeLockExt], has[interfaces.RuntimeExecutor]),
			Run:      barrierOneLeader,
		},
	}
}

func mutexSingleGuard(ctx context.Context, t require.TestingT, rt interfaces.Runtime) {
	m := asyncrt.NewMutex(rt.(interfaces.RuntimeLock), 0)

	g, err := m.Lock(ctx)
	require.NoError(t, err)
	_, ok := m.TryLock()
	assert.False(t, ok, "second guard while the first is live")

	h := asyncrt.Spawn(executor(rt), func(ctx context.Context) int {
		g, err := m.Lock(ctx)
		if err != nil {
			return -1
		}
		defer g.Unlock()
		g.Set(g.Get() + 1)
		return g.Get()
	})

	g.Set(41)
	g.Unlock()
	g.Unlock()

	v, err := h.Await(ctx)
	require.NoError(t, err)
	assert.Equal(t, 42, v)
	assert.Equal(t, 42, m.IntoInner())
}

func mutexGetMutWhileLocked(ctx context.Context, t require.TestingT, rt interfaces.Runtime) {
	m := asyncrt.NewMutex(rt.(interfaces.RuntimeLock), "a")
	g, ok := m.TryLock()
	require.True(t, ok)
	assert.Same(t, m, g.Source())

	assert.PanicsWithValue(t, types.ErrLockHeld, func() { m.GetMut() })
	g.Unlock()

	*m.GetMut() = "b"
	assert.Equal(t, "b", m.IntoInner())
}

func rwlockReadersWriterDowngrade(ctx context.Context, t require.TestingT, rt interfaces.Runtime) {
	l := asyncrt.NewRwLock(rt.(interfaces.RuntimeLockExt), 1)

	r1, err := l.Read(ctx)
	require.NoError(t, err)
	r2, ok := l.TryRead()
	require.True(t, ok, "readers share the lock")
	_, ok = l.TryWrite()
	assert.False(t, ok, "writer excluded by readers")
	r1.Unlock()
	r2.Unlock()

	w, err := l.Write(ctx)
	require.NoError(t, err)
	_, ok = l.TryRead()
	assert.False(t, ok, "readers excluded by writer")
	w.Set(2)

	r := w.Downgrade()
	_, ok = l.TryWrite()
	assert.False(t, ok, "downgrade leaves no unlocked window")
	r3, ok := l.TryRead()
	require.True(t, ok, "downgraded guard admits readers")
	assert.Equal(t, 2, r.Get())
	r3.Unlock()
	r.Unlock()
	w.Unlock()

	_, ok = l.TryWrite()
	assert.True(t, ok)
}

func semaphoreTwoPermits(ctx context.Context, t require.TestingT, rt interfaces.Runtime) {
	sem := rt.(interfaces.RuntimeLockExt).NewSemaphore(2)

	var active, peak, entered atomic.Int32
	var gates []*asyncrt.UnboundedSender[struct{}]
	var handles []*asyncrt.Handle[error]
	for i := 0; i < 3; i++ {
		gateTx, gateRx := asyncrt.Unbounded[struct{}](rt.(interfaces.RuntimeChannels))
		gates = append(gates, gateTx)
		handles = append(handles, asyncrt.Spawn(executor(rt), func(ctx context.Context) error {
			entered.Add(1)
			p, err := sem.Acquire(ctx)
			if err != nil {
				return err
			}
			defer p.Release()

			raise(&peak, active.Add(1))
			// 持有许可挂起，直到门被关闭
			_, _ = gateRx.Recv(ctx)
			active.Add(-1)
			return nil
		}))
	}

	require.Eventually(t, func() bool {
		return entered.Load() == 3 && sem.Available() == 0 && active.Load() == 2
	}, 5*time.Second, time.Millisecond)
	for _, g := range gates {
		g.Close()
	}

	for _, h := range handles {
		err, aerr := h.Await(ctx)
		require.NoError(t, aerr)
		require.NoError(t, err)
	}
	assert.Equal(t, int32(2), peak.Load())
	assert.Equal(t, 2, sem.Available())
}

func barrierOneLeader(ctx context.Context, t require.TestingT, rt interfaces.Runtime) {
	b := rt.(interfaces.RuntimeLockExt).NewBarrier(3)

	var handles []*asyncrt.Handle[bool]
	for i := 0; i < 3; i++ {
		handles = append(handles, asyncrt.Spawn(executor(rt), func(ctx context.Context) bool {
			res, err := b.Wait(ctx)
			return err == nil && res.IsLeader()
		}))
	}

	leaders := 0
	for _, h := range handles {
		leader, err := h.Await(ctx)
		require.NoError(t, err)
		if leader {
			leaders++
		}
	}
	assert.Equal(t, 1, leaders)
}
