package suspend

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWait_Closed(t *testing.T) {
	ch := make(chan struct{})
	close(ch)
	require.NoError(t, Wait(context.Background(), Inline{}, ch))
}

func TestWait_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Wait(ctx, Inline{}, make(chan struct{}))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWait_UsesSuspender(t *testing.T) {
	var calls atomic.Int32
	s := Func(func(ctx context.Context, wait func() error) error {
		calls.Add(1)
		return wait()
	})

	ch := make(chan struct{})
	go func() {
		time.Sleep(10 * time.Millisecond)
		close(ch)
	}()
	require.NoError(t, Wait(context.Background(), s, ch))
	assert.Equal(t, int32(1), calls.Load())

	// 已就绪时不进入慢路径
	require.NoError(t, Wait(context.Background(), s, ch))
	assert.Equal(t, int32(1), calls.Load())
}

func TestOffload(t *testing.T) {
	errBoom := errors.New("boom")
	s := Func(func(ctx context.Context, wait func() error) error { return wait() })

	v, err := Offload(context.Background(), s, func() (int, error) { return 42, nil })
	require.NoError(t, err)
	assert.Equal(t, 42, v)

	_, err = Offload(context.Background(), s, func() (int, error) { return 0, errBoom })
	assert.ErrorIs(t, err, errBoom)

	v, err = Offload(context.Background(), Inline{}, func() (int, error) { return 7, nil })
	require.NoError(t, err)
	assert.Equal(t, 7, v)
}

func TestOffload_Cancelled(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	block := make(chan struct{})
	defer close(block)

	s := Func(func(ctx context.Context, wait func() error) error { return wait() })
	_, err := Offload(ctx, s, func() (int, error) {
		<-block
		return 1, nil
	})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestOrInline(t *testing.T) {
	assert.Equal(t, Inline{}, OrInline(nil))
	s := Func(func(ctx context.Context, wait func() error) error { return wait() })
	assert.NotNil(t, OrInline(s))
}
