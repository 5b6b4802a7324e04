package locks

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-asyncrt/pkg/types"
)

// ============================================================================
//                              Mutex 测试
// ============================================================================

func TestMutex_Exclusive(t *testing.T) {
	m := NewMutex(nil)
	ctx := context.Background()

	require.NoError(t, m.Lock(ctx))
	assert.False(t, m.TryLock(), "持有期间 TryLock 应失败")
	m.Unlock()
	assert.True(t, m.TryLock())
	m.Unlock()
}

func TestMutex_Counter(t *testing.T) {
	m := NewMutex(nil)
	ctx := context.Background()

	var wg sync.WaitGroup
	counter := 0
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				require.NoError(t, m.Lock(ctx))
				counter++
				m.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 5000, counter)
}

func TestMutex_LockCancelled(t *testing.T) {
	m := NewMutex(nil)
	require.True(t, m.TryLock())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := m.Lock(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	// 取消的等待者不应占用许可
	m.Unlock()
	assert.True(t, m.TryLock())
	m.Unlock()
}

func TestMutex_UnlockOfUnlocked(t *testing.T) {
	m := NewMutex(nil)
	assert.PanicsWithValue(t, ErrUnlockOfUnlocked, func() { m.Unlock() })
}

func TestMutex_LockBlocking(t *testing.T) {
	m := NewMutex(nil)
	require.True(t, m.TryLock())

	done := make(chan struct{})
	go func() {
		m.LockBlocking()
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("LockBlocking 不应在锁被持有时返回")
	case <-time.After(20 * time.Millisecond):
	}
	m.Unlock()
	<-done
	m.Unlock()
}

// ============================================================================
//                              RwLock 测试
// ============================================================================

func TestRwLock_MultipleReaders(t *testing.T) {
	l := NewRwLock(nil)
	ctx := context.Background()

	require.NoError(t, l.RLock(ctx))
	require.NoError(t, l.RLock(ctx))
	assert.False(t, l.TryLock(), "有读者时写锁应失败")
	l.RUnlock()
	l.RUnlock()
	assert.True(t, l.TryLock())
	assert.False(t, l.TryRLock(), "有写者时读锁应失败")
	l.Unlock()
}

func TestRwLock_WriterBlocksLaterReaders(t *testing.T) {
	l := NewRwLock(nil)
	ctx := context.Background()

	require.NoError(t, l.RLock(ctx))

	writerDone := make(chan struct{})
	go func() {
		require.NoError(t, l.Lock(ctx))
		close(writerDone)
	}()

	// 等待写者进入队列
	require.Eventually(t, func() bool {
		l.w.mu.Lock()
		defer l.w.mu.Unlock()
		return l.w.waiters.Len() == 1
	}, time.Second, time.Millisecond)

	assert.False(t, l.TryRLock(), "排队中的写者应阻止新读者")

	l.RUnlock()
	<-writerDone
	l.Unlock()
}

func TestRwLock_Downgrade(t *testing.T) {
	l := NewRwLock(nil)
	ctx := context.Background()

	require.NoError(t, l.Lock(ctx))

	readerIn := make(chan struct{})
	go func() {
		require.NoError(t, l.RLock(ctx))
		close(readerIn)
	}()

	select {
	case <-readerIn:
		t.Fatal("写锁持有期间读者不应进入")
	case <-time.After(20 * time.Millisecond):
	}

	l.Downgrade()
	<-readerIn

	assert.False(t, l.TryLock(), "降级后仍持有读锁，写锁应失败")
	l.RUnlock()
	l.RUnlock()
	assert.True(t, l.TryLock())
	l.Unlock()
}

// ============================================================================
//                              Semaphore 测试
// ============================================================================

func TestSemaphore_TwoPermitsThreeAcquirers(t *testing.T) {
	s := NewSemaphore(2, nil)
	ctx := context.Background()

	p1, err := s.Acquire(ctx)
	require.NoError(t, err)
	p2, err := s.Acquire(ctx)
	require.NoError(t, err)

	third := make(chan struct{})
	go func() {
		p3, err := s.Acquire(ctx)
		require.NoError(t, err)
		p3.Release()
		close(third)
	}()

	select {
	case <-third:
		t.Fatal("第三个获取者不应在许可耗尽时成功")
	case <-time.After(20 * time.Millisecond):
	}

	p1.Release()
	<-third
	p2.Release()
	assert.Equal(t, 2, s.Available())
}

func TestSemaphore_ReleaseIdempotent(t *testing.T) {
	s := NewSemaphore(1, nil)
	p, ok := s.TryAcquire()
	require.True(t, ok)
	p.Release()
	p.Release()
	assert.Equal(t, 1, s.Available())
}

func TestSemaphore_Forget(t *testing.T) {
	s := NewSemaphore(2, nil)
	p, ok := s.TryAcquire()
	require.True(t, ok)
	p.Forget()
	assert.Equal(t, 1, s.Available())

	p.Release()
	assert.Equal(t, 1, s.Available(), "Forget 之后 Release 无效")
}

func TestSemaphore_AddPermits(t *testing.T) {
	s := NewSemaphore(0, nil)
	_, ok := s.TryAcquire()
	require.False(t, ok)

	got := make(chan struct{})
	go func() {
		p, err := s.Acquire(context.Background())
		require.NoError(t, err)
		p.Release()
		close(got)
	}()

	s.AddPermits(1)
	<-got
	assert.Equal(t, 1, s.Available())
	assert.Panics(t, func() { s.AddPermits(-1) })
}

func TestSemaphore_Close(t *testing.T) {
	s := NewSemaphore(0, nil)

	errs := make(chan error, 1)
	go func() {
		_, err := s.Acquire(context.Background())
		errs <- err
	}()

	require.Eventually(t, func() bool {
		s.w.mu.Lock()
		defer s.w.mu.Unlock()
		return s.w.waiters.Len() == 1
	}, time.Second, time.Millisecond)

	s.Close()
	assert.ErrorIs(t, <-errs, types.ErrSemaphoreClosed)
	assert.True(t, s.IsClosed())

	_, err := s.Acquire(context.Background())
	assert.ErrorIs(t, err, types.ErrSemaphoreClosed)
	_, ok := s.TryAcquire()
	assert.False(t, ok)
}

func TestSemaphore_CancelledFrontWakesNext(t *testing.T) {
	s := NewSemaphore(1, nil)
	hold, ok := s.TryAcquire()
	require.True(t, ok)

	// 大权重的队首等待者取消后，后续等待者应被唤醒
	ctx, cancel := context.WithCancel(context.Background())
	big := make(chan error, 1)
	go func() { big <- s.w.acquire(ctx, 2, s.w.susp) }()
	require.Eventually(t, func() bool {
		s.w.mu.Lock()
		defer s.w.mu.Unlock()
		return s.w.waiters.Len() == 1
	}, time.Second, time.Millisecond)

	small := make(chan struct{})
	go func() {
		p, err := s.Acquire(context.Background())
		require.NoError(t, err)
		p.Release()
		close(small)
	}()
	require.Eventually(t, func() bool {
		s.w.mu.Lock()
		defer s.w.mu.Unlock()
		return s.w.waiters.Len() == 2
	}, time.Second, time.Millisecond)

	hold.Release()
	cancel()
	assert.ErrorIs(t, <-big, context.Canceled)
	<-small
}

// ============================================================================
//                              Barrier 测试
// ============================================================================

func TestBarrier_ThreeParties(t *testing.T) {
	b := NewBarrier(3, nil)
	ctx := context.Background()

	var leaders atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := b.Wait(ctx)
			require.NoError(t, err)
			if res.IsLeader() {
				leaders.Add(1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), leaders.Load())
	assert.Equal(t, uint64(1), b.Generation())
}

func TestBarrier_Reusable(t *testing.T) {
	b := NewBarrier(2, nil)
	ctx := context.Background()

	for gen := 0; gen < 3; gen++ {
		var wg sync.WaitGroup
		var leaders atomic.Int32
		for i := 0; i < 2; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				res, err := b.Wait(ctx)
				require.NoError(t, err)
				if res.IsLeader() {
					leaders.Add(1)
				}
			}()
		}
		wg.Wait()
		assert.Equal(t, int32(1), leaders.Load())
	}
	assert.Equal(t, uint64(3), b.Generation())
}

func TestBarrier_CancelledWaiterWithdrawn(t *testing.T) {
	b := NewBarrier(2, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := b.Wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	// 撤回后仍需要两个等待者
	done := make(chan struct{})
	go func() {
		_, err := b.Wait(context.Background())
		require.NoError(t, err)
		close(done)
	}()
	select {
	case <-done:
		t.Fatal("撤回的等待者不应计入")
	case <-time.After(20 * time.Millisecond):
	}
	res, err := b.Wait(context.Background())
	require.NoError(t, err)
	assert.True(t, res.IsLeader())
	<-done
}

func TestBarrier_One(t *testing.T) {
	for _, n := range []int{0, 1} {
		b := NewBarrier(n, nil)
		res, err := b.Wait(context.Background())
		require.NoError(t, err)
		assert.True(t, res.IsLeader())
	}
}
