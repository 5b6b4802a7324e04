package conformance

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-asyncrt"
	"github.com/dep2p/go-asyncrt/pkg/interfaces"
	"github.com/dep2p/go-asyncrt/pkg/types"
)

func executorCases() []Case {
	return []Case{
		{
			Name:     "executor/spawn_await",
			Supports: has[interfaces.RuntimeExecutor],
			Run:      executorSpawnAwait,
		},
		{
			Name:     "executor/cancel_prevents_effects",
			Supports: all(has[interfaces.RuntimeExecutor], has[interfaces.RuntimeChannels]),
			Run:      executorCancelPreventsEffects,
		},
		{
			Name:     "executor/detach_survives",
			Supports: all(has[interfaces.RuntimeExecutor], has[interfaces.RuntimeChannels]),
			Run:      executorDetachSurvives,
		},
		{
			Name:     "executor/panic_per_wrap",
			Supports: has[interfaces.RuntimeExecutor],
			Run:      executorPanicPerWrap,
		},
		{
			Name:     "executor/block_on",
			Supports: has[interfaces.RuntimeExecutor],
			Run:      executorBlockOn,
		},
	}
}

func executorSpawnAwait(ctx context.Context, t require.TestingT, rt interfaces.Runtime) {
	ex := executor(rt)
	a := asyncrt.Spawn(ex, func(context.Context) string { return "a" })
	b := asyncrt.Spawn(ex, func(context.Context) string { return "b" })
	assert.NotEqual(t, a.ID(), b.ID())

	v, err := b.Await(ctx)
	require.NoError(t, err)
	assert.Equal(t, "b", v)
	v, err = a.Await(ctx)
	require.NoError(t, err)
	assert.Equal(t, "a", v)

	<-a.Done()
}

func executorCancelPreventsEffects(ctx context.Context, t require.TestingT, rt interfaces.Runtime) {
	tx, rx := asyncrt.Unbounded[int](rt.(interfaces.RuntimeChannels))
	defer tx.Close()

	var effect atomic.Bool
	h := asyncrt.Spawn(executor(rt), func(ctx context.Context) int {
		v, err := rx.Recv(ctx)
		if err != nil {
			return 0
		}
		effect.Store(true)
		return v
	})
	h.Cancel()

	_, err := h.Await(ctx)
	assert.ErrorIs(t, err, types.ErrCancelled)
	if executor(rt).Wrap() == types.WrapOutcome {
		var je *types.JoinError
		require.ErrorAs(t, err, &je)
		assert.True(t, je.IsCancelled())
	}

	_ = tx.Send(1)
	assert.False(t, effect.Load())
}

func executorDetachSurvives(ctx context.Context, t require.TestingT, rt interfaces.Runtime) {
	chans := rt.(interfaces.RuntimeChannels)
	trigger, triggered := asyncrt.Unbounded[int](chans)
	result, results := asyncrt.Unbounded[int](chans)

	h := asyncrt.Spawn(executor(rt), func(ctx context.Context) error {
		v, err := triggered.Recv(ctx)
		if err != nil {
			return err
		}
		return result.Send(v * 2)
	})
	h.Detach()
	h.Cancel()

	require.NoError(t, trigger.Send(21))
	v, err := results.Recv(ctx)
	require.NoError(t, err)
	assert.Equal(t, 42, v)
}

func executorPanicPerWrap(ctx context.Context, t require.TestingT, rt interfaces.Runtime) {
	ex := executor(rt)
	h := asyncrt.Spawn(ex, func(context.Context) int { panic("boom") })
	<-h.Done()

	switch ex.Wrap() {
	case types.WrapOutcome:
		_, err := h.Await(ctx)
		assert.ErrorIs(t, err, types.ErrPanicked)
		var je *types.JoinError
		require.True(t, errors.As(err, &je))
		assert.Equal(t, "boom", je.Panic)
		assert.NotEmpty(t, je.Stack)
	case types.WrapNone:
		assert.PanicsWithValue(t, "boom", func() { _, _ = h.Await(ctx) })
	}

	// 其它任务不受影响
	ok := asyncrt.Spawn(ex, func(context.Context) int { return 1 })
	v, err := ok.Await(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, v)
}

func executorBlockOn(ctx context.Context, t require.TestingT, rt interfaces.Runtime) {
	ex := executor(rt)

	v := asyncrt.BlockOn(ctx, ex, func(ctx context.Context) int {
		h := asyncrt.Spawn(ex, func(context.Context) int { return 20 })
		n, err := h.Await(ctx)
		if err != nil {
			return -1
		}
		return n + 1
	})
	assert.Equal(t, 21, v)

	assert.PanicsWithValue(t, types.ErrReentrantBlockOn, func() {
		asyncrt.BlockOn(ctx, ex, func(ctx context.Context) int {
			return asyncrt.BlockOn(ctx, ex, func(context.Context) int { return 0 })
		})
	})

	h := asyncrt.Spawn(ex, func(ctx context.Context) (reentrant bool) {
		defer func() {
			reentrant = recover() == types.ErrReentrantBlockOn
		}()
		asyncrt.BlockOn(ctx, ex, func(context.Context) int { return 0 })
		return false
	})
	reentrant, err := h.Await(ctx)
	require.NoError(t, err)
	assert.True(t, reentrant, "block_on inside a task")
}
