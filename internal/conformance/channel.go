package conformance

import (
	"context"
	"errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-asyncrt"
	"github.com/dep2p/go-asyncrt/pkg/interfaces"
	"github.com/dep2p/go-asyncrt/pkg/types"
)

func channelCases() []Case {
	return []Case{
		{
			Name:     "bounded/capacity_then_full",
			Supports: has[interfaces.RuntimeChannels],
			Run:      boundedCapacityThenFull,
		},
		{
			Name:     "mpsc/drain_then_closed",
			Supports: has[interfaces.RuntimeChannels],
			Run:      mpscDrainThenClosed,
		},
		{
			Name:     "mpsc/clone_after_close",
			Supports: has[interfaces.RuntimeChannels],
			Run:      mpscCloneAfterClose,
		},
		{
			Name:     "mpsc/receiver_close",
			Supports: has[interfaces.RuntimeChannels],
			Run:      mpscReceiverClose,
		},
		{
			Name:     "bounded/capacity_one_in_order",
			Supports: all(has[interfaces.RuntimeChannels], has[interfaces.RuntimeExecutor]),
			Run:      boundedCapacityOneInOrder,
		},
		{
			Name:     "mpsc/sender_ext",
			Supports: has[interfaces.RuntimeChannels],
			Run:      mpscSenderExt,
		},
		{
			Name:     "oneshot/send_once",
			Supports: has[interfaces.RuntimeChannelsExt],
			Run:      oneshotSendOnce,
		},
		{
			Name:     "oneshot/dropped_ends",
			Supports: has[interfaces.RuntimeChannelsExt],
			Run:      oneshotDroppedEnds,
		},
	}
}

func boundedCapacityThenFull(ctx context.Context, t require.TestingT, rt interfaces.Runtime) {
	tx, rx := asyncrt.Bounded[int](rt.(interfaces.RuntimeChannels), 2)

	require.NoError(t, tx.TrySend(1))
	require.NoError(t, tx.TrySend(2))

	err := tx.TrySend(3)
	assert.ErrorIs(t, err, types.ErrFull)
	var tse *asyncrt.TrySendError[int]
	require.ErrorAs(t, err, &tse)
	assert.Equal(t, 3, tse.Value)

	v, ok, err := rx.TryRecv()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 1, v)

	require.NoError(t, tx.TrySend(3), "recv frees a slot")
}

func mpscDrainThenClosed(ctx context.Context, t require.TestingT, rt interfaces.Runtime) {
	tx, rx := asyncrt.Unbounded[string](rt.(interfaces.RuntimeChannels))
	tx2 := tx.Clone()

	require.NoError(t, tx.Send("a"))
	require.NoError(t, tx2.Send("b"))
	tx.Close()

	for _, want := range []string{"a", "b"} {
		v, err := rx.Recv(ctx)
		require.NoError(t, err)
		assert.Equal(t, want, v)
	}
	_, ok, err := rx.TryRecv()
	assert.False(t, ok)
	assert.NoError(t, err, "one sender is still live")

	tx2.Close()
	_, ok, err = rx.TryRecv()
	assert.False(t, ok)
	assert.ErrorIs(t, err, types.ErrClosed)
	_, err = rx.Recv(ctx)
	assert.ErrorIs(t, err, types.ErrClosed)
}

// 已关闭的发送端克隆后仍是关闭的，不会重新打开通道
func mpscCloneAfterClose(ctx context.Context, t require.TestingT, rt interfaces.Runtime) {
	tx, rx := asyncrt.Bounded[int](rt.(interfaces.RuntimeChannels), 1)
	tx.Close()

	_, ok, err := rx.TryRecv()
	require.False(t, ok)
	require.ErrorIs(t, err, types.ErrClosed)

	clone := tx.Clone()
	assert.ErrorIs(t, clone.TrySend(7), types.ErrClosed)
	clone.Close()

	_, ok, err = rx.TryRecv()
	assert.False(t, ok)
	assert.ErrorIs(t, err, types.ErrClosed)
}

func mpscReceiverClose(ctx context.Context, t require.TestingT, rt interfaces.Runtime) {
	tx, rx := asyncrt.Bounded[int](rt.(interfaces.RuntimeChannels), 4)
	require.NoError(t, tx.Send(ctx, 1))

	rx.Close()
	assert.True(t, tx.IsClosed())

	err := tx.Send(ctx, 2)
	assert.ErrorIs(t, err, types.ErrClosed)
	var se *asyncrt.SendError[int]
	require.True(t, errors.As(err, &se))
	assert.Equal(t, 2, se.Value)

	v, ok, err := rx.TryRecv()
	require.NoError(t, err)
	assert.True(t, ok, "buffered values remain drainable")
	assert.Equal(t, 1, v)
}

func boundedCapacityOneInOrder(ctx context.Context, t require.TestingT, rt interfaces.Runtime) {
	tx, rx := asyncrt.Bounded[int](rt.(interfaces.RuntimeChannels), 1)

	producer := asyncrt.Spawn(executor(rt), func(ctx context.Context) error {
		defer tx.Close()
		for i := 1; i <= 5; i++ {
			if err := tx.Send(ctx, i); err != nil {
				return err
			}
		}
		return nil
	})

	var got []int
	for {
		v, err := rx.Recv(ctx)
		if err != nil {
			assert.ErrorIs(t, err, types.ErrClosed)
			break
		}
		got = append(got, v)
	}
	assert.Equal(t, []int{1, 2, 3, 4, 5}, got)

	err, aerr := producer.Await(ctx)
	require.NoError(t, aerr)
	assert.NoError(t, err)
}

func mpscSenderExt(ctx context.Context, t require.TestingT, rt interfaces.Runtime) {
	chans := rt.(interfaces.RuntimeChannels)
	tx, rx := asyncrt.Unbounded[int](chans)
	other, _ := asyncrt.Unbounded[int](chans)

	ext, ok := tx.Ext()
	if !ok {
		// 引擎不支持扩展时两个方向都不可用
		_, ok = other.Ext()
		assert.False(t, ok)
		return
	}
	assert.True(t, ext.SameChannel(tx.Clone()))
	assert.False(t, ext.SameChannel(other))

	rx.Close()
	assert.NoError(t, ext.Closed(ctx))
}

func oneshotSendOnce(ctx context.Context, t require.TestingT, rt interfaces.Runtime) {
	tx, rx := asyncrt.Oneshot[int](rt.(interfaces.RuntimeChannelsExt))

	_, ok, err := rx.TryRecv()
	assert.False(t, ok)
	assert.NoError(t, err)

	require.NoError(t, tx.Send(7))
	assert.ErrorIs(t, tx.Send(8), types.ErrAlreadySent)

	v, err := rx.Recv(ctx)
	require.NoError(t, err)
	assert.Equal(t, 7, v)
}

func oneshotDroppedEnds(ctx context.Context, t require.TestingT, rt interfaces.Runtime) {
	chans := rt.(interfaces.RuntimeChannelsExt)

	tx, rx := asyncrt.Oneshot[int](chans)
	tx.Close()
	_, err := rx.Recv(ctx)
	assert.ErrorIs(t, err, types.ErrClosed, "sender dropped without sending")

	tx, rx = asyncrt.Oneshot[int](chans)
	rx.Close()
	assert.True(t, tx.IsClosed())
	assert.NoError(t, tx.Closed(ctx))

	err = tx.Send(1)
	assert.ErrorIs(t, err, types.ErrClosed)
	var se *asyncrt.SendError[int]
	require.ErrorAs(t, err, &se)
	assert.Equal(t, 1, se.Value)
}
