package asyncrt_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-asyncrt"
)

type job struct {
	id   int
	name string
}

// TestBounded_SendErrorCarriesValue 发送失败时带回原值
func TestBounded_SendErrorCarriesValue(t *testing.T) {
	rt := newNative(t)
	tx, rx := asyncrt.Bounded[job](rt, 1)

	require.NoError(t, tx.TrySend(job{1, "a"}))

	err := tx.TrySend(job{2, "b"})
	var tryErr *asyncrt.TrySendError[job]
	require.True(t, errors.As(err, &tryErr))
	assert.Equal(t, job{2, "b"}, tryErr.Value)
	assert.ErrorIs(t, err, asyncrt.ErrFull)

	rx.Close()
	err = tx.Send(context.Background(), job{3, "c"})
	var sendErr *asyncrt.SendError[job]
	require.True(t, errors.As(err, &sendErr))
	assert.Equal(t, 3, sendErr.Value.id)
	assert.ErrorIs(t, err, asyncrt.ErrClosed)
	assert.True(t, tx.IsClosed())

	v, err := rx.Recv(context.Background())
	require.NoError(t, err)
	assert.Equal(t, job{1, "a"}, v)
	_, err = rx.Recv(context.Background())
	assert.ErrorIs(t, err, asyncrt.ErrClosed)
}

// TestUnbounded_Clone 克隆的发送端全部关闭后接收端取空即结束
func TestUnbounded_Clone(t *testing.T) {
	rt := newNative(t)
	tx, rx := asyncrt.Unbounded[*job](rt)
	tx2 := tx.Clone()

	require.NoError(t, tx.Send(&job{id: 1}))
	require.NoError(t, tx2.Send(nil))
	tx.Close()
	require.NoError(t, tx2.Send(&job{id: 2}))
	tx2.Close()

	got, ok, err := rx.TryRecv()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 1, got.id)

	got, ok, err = rx.TryRecv()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Nil(t, got)

	got, err = rx.Recv(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, got.id)

	_, ok, err = rx.TryRecv()
	assert.False(t, ok)
	assert.ErrorIs(t, err, asyncrt.ErrClosed)
}

// TestSender_Ext 仅具备扩展能力的引擎返回 SenderExt
func TestSender_Ext(t *testing.T) {
	native := newNative(t)
	tx, _ := asyncrt.Unbounded[int](native)
	ext, ok := tx.Ext()
	require.True(t, ok)
	assert.True(t, ext.SameChannel(tx.Clone()))

	other, _ := asyncrt.Unbounded[int](native)
	assert.False(t, ext.SameChannel(other))

	local, err := asyncrt.NewLocal(asyncrt.WithMetrics(false))
	require.NoError(t, err)
	defer local.Close()
	ltx, _ := asyncrt.Unbounded[int](local)
	_, ok = ltx.Ext()
	assert.False(t, ok)
}

// TestOneshot 一次性通道只能发送一次
func TestOneshot(t *testing.T) {
	rt := newNative(t)
	tx, rx := asyncrt.Oneshot[string](rt)

	require.NoError(t, tx.Send("done"))
	assert.ErrorIs(t, tx.Send("again"), asyncrt.ErrAlreadySent)

	v, err := rx.Recv(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "done", v)

	tx2, rx2 := asyncrt.Oneshot[string](rt)
	rx2.Close()
	assert.True(t, tx2.IsClosed())
	require.NoError(t, tx2.Closed(context.Background()))
}
