package netio

import (
	"context"
	"io"
	"net/netip"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-asyncrt/internal/core/resolver"
	"github.com/dep2p/go-asyncrt/pkg/interfaces"
	"github.com/dep2p/go-asyncrt/pkg/types"
)

var loopback = types.ParseAddr("127.0.0.1:0")

func newNet(t *testing.T) *Net {
	t.Helper()
	r, err := resolver.New(resolver.DefaultConfig())
	require.NoError(t, err)
	return New(r)
}

func tcpPair(t *testing.T, n *Net) (client, server interfaces.TcpStream) {
	t.Helper()
	ctx := context.Background()
	ln, err := n.BindTCP(ctx, loopback)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })

	addr, err := ln.LocalAddr()
	require.NoError(t, err)

	type accepted struct {
		s    interfaces.TcpStream
		peer netip.AddrPort
		err  error
	}
	ch := make(chan accepted, 1)
	go func() {
		s, peer, err := ln.Accept(ctx)
		ch <- accepted{s, peer, err}
	}()

	client, err = n.ConnectTCP(ctx, types.AddrPort(addr))
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	a := <-ch
	require.NoError(t, a.err)
	t.Cleanup(func() { _ = a.s.Close() })

	local, err := client.LocalAddr()
	require.NoError(t, err)
	assert.Equal(t, local, a.peer)
	return client, a.s
}

func TestTCP_RoundTripAndPeek(t *testing.T) {
	n := newNet(t)
	client, server := tcpPair(t, n)
	ctx := context.Background()

	_, err := client.Write([]byte("hello"))
	require.NoError(t, err)

	buf := make([]byte, 5)
	var got int
	require.Eventually(t, func() bool {
		got, err = server.Peek(ctx, buf)
		return err == nil && got == 5
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, "hello", string(buf))

	// 连续窥视返回相同数据
	n2, err := server.Peek(ctx, buf)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(buf[:n2]))

	out := make([]byte, 5)
	_, err = io.ReadFull(server, out)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(out))

	require.NoError(t, client.CloseWrite())
	_, err = server.Read(out)
	assert.ErrorIs(t, err, io.EOF)
}

func TestTCP_Options(t *testing.T) {
	n := newNet(t)
	client, _ := tcpPair(t, n)

	require.NoError(t, client.SetNoDelay(false))
	on, err := client.NoDelay()
	require.NoError(t, err)
	assert.False(t, on)

	require.NoError(t, client.SetTTL(42))
	ttl, err := client.TTL()
	require.NoError(t, err)
	assert.Equal(t, uint32(42), ttl)

	peer, err := client.PeerAddr()
	require.NoError(t, err)
	assert.True(t, peer.Addr().IsLoopback())
}

func TestTCP_PeekCancelled(t *testing.T) {
	n := newNet(t)
	_, server := tcpPair(t, n)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := server.Peek(ctx, make([]byte, 4))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestTCP_AcceptCancelled(t *testing.T) {
	n := newNet(t)
	ln, err := n.BindTCP(context.Background(), loopback)
	require.NoError(t, err)
	defer ln.Close()

	require.NoError(t, ln.SetTTL(17))
	ttl, err := ln.TTL()
	require.NoError(t, err)
	assert.Equal(t, uint32(17), ttl)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()
	_, _, err = ln.Accept(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestConnect_NoAddresses(t *testing.T) {
	n := newNet(t)
	_, err := n.ConnectTCP(context.Background(), types.AddrPorts())
	assert.ErrorIs(t, err, types.ErrNoAddresses)
}

func TestConnect_TriesEachAddress(t *testing.T) {
	n := newNet(t)
	ln, err := n.BindTCP(context.Background(), loopback)
	require.NoError(t, err)
	defer ln.Close()
	good, err := ln.LocalAddr()
	require.NoError(t, err)

	// 端口 1 通常无人监听
	bad := netip.MustParseAddrPort("127.0.0.1:1")
	go func() {
		s, _, err := ln.Accept(context.Background())
		if err == nil {
			_ = s.Close()
		}
	}()
	s, err := n.ConnectTCP(context.Background(), types.AddrPorts(bad, good))
	require.NoError(t, err)
	defer s.Close()

	peer, err := s.PeerAddr()
	require.NoError(t, err)
	assert.Equal(t, good, peer)
}

func TestUDP_ConnectedSendRecv(t *testing.T) {
	n := newNet(t)
	ctx := context.Background()
	a, err := n.BindUDP(ctx, loopback)
	require.NoError(t, err)
	defer a.Close()
	b, err := n.BindUDP(ctx, loopback)
	require.NoError(t, err)
	defer b.Close()

	_, err = a.PeerAddr()
	assert.ErrorIs(t, err, types.ErrNotConnected)
	_, err = a.Send(ctx, []byte("x"))
	assert.ErrorIs(t, err, types.ErrNotConnected)

	aAddr, err := a.LocalAddr()
	require.NoError(t, err)
	bAddr, err := b.LocalAddr()
	require.NoError(t, err)

	require.NoError(t, a.Connect(ctx, types.AddrPort(bAddr)))
	require.NoError(t, b.Connect(ctx, types.AddrPort(aAddr)))
	peer, err := a.PeerAddr()
	require.NoError(t, err)
	assert.Equal(t, bAddr, peer)

	_, err = a.Send(ctx, []byte("ping"))
	require.NoError(t, err)

	buf := make([]byte, 16)
	got, err := b.Peek(ctx, buf)
	require.NoError(t, err)
	assert.Equal(t, "ping", string(buf[:got]))

	got, err = b.Recv(ctx, buf)
	require.NoError(t, err)
	assert.Equal(t, "ping", string(buf[:got]))
}

func TestUDP_SendToRecvFrom(t *testing.T) {
	n := newNet(t)
	ctx := context.Background()
	a, err := n.BindUDP(ctx, loopback)
	require.NoError(t, err)
	defer a.Close()
	b, err := n.BindUDP(ctx, loopback)
	require.NoError(t, err)
	defer b.Close()

	aAddr, _ := a.LocalAddr()
	bAddr, _ := b.LocalAddr()

	sent, err := a.SendTo(ctx, []byte("dgram"), types.IPPort(bAddr.Addr(), bAddr.Port()))
	require.NoError(t, err)
	assert.Equal(t, 5, sent)

	buf := make([]byte, 16)
	got, from, err := b.PeekFrom(ctx, buf)
	require.NoError(t, err)
	assert.Equal(t, "dgram", string(buf[:got]))
	assert.Equal(t, aAddr, from)

	got, from, err = b.RecvFrom(ctx, buf)
	require.NoError(t, err)
	assert.Equal(t, "dgram", string(buf[:got]))
	assert.Equal(t, aAddr, from)
}

func TestUDP_RecvFromCancelled(t *testing.T) {
	n := newNet(t)
	u, err := n.BindUDP(context.Background(), loopback)
	require.NoError(t, err)
	defer u.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, _, err = u.RecvFrom(ctx, make([]byte, 8))
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	// 截止时间已恢复，后续操作不受影响
	require.NoError(t, u.SetTTL(9))
	ttl, err := u.TTL()
	require.NoError(t, err)
	assert.Equal(t, uint32(9), ttl)
}

func TestUDP_Options(t *testing.T) {
	n := newNet(t)
	u, err := n.BindUDP(context.Background(), types.ParseAddr("0.0.0.0:0"))
	require.NoError(t, err)
	defer u.Close()

	require.NoError(t, u.SetBroadcast(true))
	on, err := u.Broadcast()
	require.NoError(t, err)
	assert.True(t, on)

	require.NoError(t, u.SetMulticastLoopV4(false))
	on, err = u.MulticastLoopV4()
	require.NoError(t, err)
	assert.False(t, on)

	require.NoError(t, u.SetMulticastTTLV4(4))
	ttl, err := u.MulticastTTLV4()
	require.NoError(t, err)
	assert.Equal(t, uint32(4), ttl)
}

func TestInterfaceByAddr(t *testing.T) {
	ifi, err := interfaceByAddr(netip.IPv4Unspecified())
	require.NoError(t, err)
	assert.Nil(t, ifi)

	_, err = interfaceByAddr(netip.MustParseAddr("203.0.113.254"))
	assert.ErrorIs(t, err, types.ErrInvalidAddr)

	ifi, err = interfaceByIndex(0)
	require.NoError(t, err)
	assert.Nil(t, ifi)
}
