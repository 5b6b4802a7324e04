package asyncrt_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-asyncrt"
	"github.com/dep2p/go-asyncrt/pkg/types"
)

// TestHandle_TypedResult 句柄返回任务体的类型化结果
func TestHandle_TypedResult(t *testing.T) {
	rt := newNative(t)

	h := asyncrt.Spawn(rt.Executor(), func(ctx context.Context) []string {
		return []string{"a", "b"}
	})
	v, err := h.Await(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, v)
	assert.Equal(t, h.ID(), h.Task().ID())

	// 返回 nil 接口时得到零值
	he := asyncrt.Spawn(rt.Executor(), func(ctx context.Context) error { return nil })
	e, err := he.Await(context.Background())
	require.NoError(t, err)
	assert.Nil(t, e)
}

// TestHandle_Panic native 的 Await 把 panic 包装为 JoinError
func TestHandle_Panic(t *testing.T) {
	rt := newNative(t)

	h := asyncrt.Spawn(rt.Executor(), func(ctx context.Context) int { panic("boom") })
	_, err := h.Await(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, asyncrt.ErrPanicked)

	var je *types.JoinError
	require.True(t, errors.As(err, &je))
	assert.True(t, je.IsPanic())
}

// TestHandle_Cancel 取消后 Await 返回 ErrCancelled
func TestHandle_Cancel(t *testing.T) {
	rt := newNative(t)

	started := make(chan struct{})
	h := asyncrt.Spawn(rt.Executor(), func(ctx context.Context) int {
		close(started)
		<-ctx.Done()
		return 1
	})
	<-started
	h.Cancel()
	_, err := h.Await(context.Background())
	assert.ErrorIs(t, err, asyncrt.ErrCancelled)
}

// TestBlockOn_Typed BlockOn 在调用方 goroutine 上驱动任务体
func TestBlockOn_Typed(t *testing.T) {
	rt, err := asyncrt.NewLocal(asyncrt.WithMetrics(false))
	require.NoError(t, err)
	defer rt.Close()

	got := asyncrt.BlockOn(context.Background(), rt.Executor(), func(ctx context.Context) int {
		h := asyncrt.Spawn(rt.Executor(), func(context.Context) int { return 20 })
		v, err := h.Await(ctx)
		if err != nil {
			return -1
		}
		return v + 1
	})
	assert.Equal(t, 21, got)
}

// TestNewDefault 默认引擎与构建标签一致
func TestNewDefault(t *testing.T) {
	rt, err := asyncrt.NewDefault(asyncrt.WithMetrics(false))
	require.NoError(t, err)
	defer rt.Close()
	assert.Equal(t, asyncrt.DefaultEngine, rt.Name())
}
