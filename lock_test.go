package asyncrt_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-asyncrt"
)

func newNative(t *testing.T) *asyncrt.NativeRuntime {
	t.Helper()
	rt, err := asyncrt.NewNative(asyncrt.WithMetrics(false))
	require.NoError(t, err)
	t.Cleanup(func() { _ = rt.Close() })
	return rt
}

// TestMutex_Guard 守卫读写与幂等释放
func TestMutex_Guard(t *testing.T) {
	rt := newNative(t)
	m := asyncrt.NewMutex(rt, 1)

	g, err := m.Lock(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, g.Get())
	g.Set(2)
	*g.Value() += 3
	assert.Same(t, m, g.Source())

	_, ok := m.TryLock()
	assert.False(t, ok, "lock is held")
	assert.PanicsWithValue(t, asyncrt.ErrLockHeld, func() { m.GetMut() })

	g.Unlock()
	g.Unlock()

	*m.GetMut() *= 10
	assert.Equal(t, 50, m.IntoInner())
}

// TestMutex_LockCancelled 等待被 ctx 取消时返回 ctx 错误
func TestMutex_LockCancelled(t *testing.T) {
	rt := newNative(t)
	m := asyncrt.NewMutex(rt, "")

	g, ok := m.TryLock()
	require.True(t, ok)
	defer g.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := m.Lock(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

// TestRwLock_Downgrade 降级后读者可进入，写者被阻止
func TestRwLock_Downgrade(t *testing.T) {
	rt := newNative(t)
	l := asyncrt.NewRwLock(rt, []int{1})

	w, err := l.Write(context.Background())
	require.NoError(t, err)
	w.Set(append(w.Get(), 2))

	_, ok := l.TryRead()
	assert.False(t, ok)

	r := w.Downgrade()
	assert.Panics(t, func() { w.Downgrade() }, "guard already released")
	w.Unlock()

	r2, ok := l.TryRead()
	require.True(t, ok)
	assert.Equal(t, []int{1, 2}, r2.Get())
	_, ok = l.TryWrite()
	assert.False(t, ok)

	r.Unlock()
	r2.Unlock()
	r2.Unlock()

	w, ok = l.TryWrite()
	require.True(t, ok)
	w.Unlock()
	assert.Equal(t, []int{1, 2}, l.IntoInner())
}

// TestBlockingLocks 阻塞锁与异步锁互斥
func TestBlockingLocks(t *testing.T) {
	rt := newNative(t)

	m := asyncrt.NewBlockingMutex(rt, 0)
	g := m.BlockingLock()
	_, ok := m.TryLock()
	assert.False(t, ok)
	g.Set(7)
	g.Unlock()
	assert.Equal(t, 7, m.IntoInner())

	l := asyncrt.NewBlockingRwLock(rt, "a")
	r1 := l.BlockingRead()
	r2 := l.BlockingRead()
	_, ok = l.TryWrite()
	assert.False(t, ok)
	r1.Unlock()
	r2.Unlock()

	w := l.BlockingWrite()
	w.Set("b")
	w.Unlock()
	assert.Equal(t, "b", l.IntoInner())
}
