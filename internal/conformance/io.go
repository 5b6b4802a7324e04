package conformance

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/netip"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/dep2p/go-asyncrt/pkg/interfaces"
	"github.com/dep2p/go-asyncrt/pkg/types"
)

func ioCases() []Case {
	return []Case{
		{
			Name:     "time/sleep",
			Supports: has[interfaces.RuntimeTime],
			Run:      timeSleep,
		},
		{
			Name:     "time/interval_stop",
			Supports: has[interfaces.RuntimeTime],
			Run:      timeIntervalStop,
		},
		{
			Name:     "fs/round_trip",
			Supports: has[interfaces.RuntimeFs],
			Run:      fsRoundTrip,
		},
		{
			Name:     "fs/open_options",
			Supports: has[interfaces.RuntimeFs],
			Run:      fsOpenOptions,
		},
		{
			Name:     "net/tcp_echo",
			Supports: has[interfaces.RuntimeNet],
			Run:      netTCPEcho,
		},
		{
			Name:     "net/udp_round_trip",
			Supports: has[interfaces.RuntimeNet],
			Run:      netUDPRoundTrip,
		},
		{
			Name:     "net/resolve_literal",
			Supports: has[interfaces.RuntimeNet],
			Run:      netResolveLiteral,
		},
	}
}

// ============================================================================
//                              计时
// ============================================================================

func timeSleep(ctx context.Context, t require.TestingT, rt interfaces.Runtime) {
	clock := rt.(interfaces.RuntimeTime).Time()

	start := clock.Now()
	woke, err := clock.Sleep(ctx, 20*time.Millisecond)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, woke.Sub(start), 20*time.Millisecond)

	canceled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = clock.Sleep(canceled, time.Hour)
	assert.ErrorIs(t, err, context.Canceled)
}

func timeIntervalStop(ctx context.Context, t require.TestingT, rt interfaces.Runtime) {
	clock := rt.(interfaces.RuntimeTime).Time()

	iv := clock.Interval(5 * time.Millisecond)
	assert.Equal(t, 5*time.Millisecond, iv.Period())

	first, err := iv.Next(ctx)
	require.NoError(t, err)
	second, err := iv.Next(ctx)
	require.NoError(t, err)
	assert.True(t, second.After(first), "ticks advance")

	iv.Stop()
	_, err = iv.Next(ctx)
	assert.ErrorIs(t, err, types.ErrIntervalStopped)
}

// ============================================================================
//                              文件系统
// ============================================================================

func fsRoundTrip(ctx context.Context, t require.TestingT, rt interfaces.Runtime) {
	fsys := rt.(interfaces.RuntimeFs).Fs()

	dir, err := os.MkdirTemp("", "asyncrt-conformance-")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	nested := filepath.Join(dir, "a", "b")
	require.NoError(t, fsys.CreateDirAll(ctx, nested))

	src := filepath.Join(nested, "src.txt")
	require.NoError(t, fsys.Write(ctx, src, []byte("hello")))

	data, err := fsys.Read(ctx, src)
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), data)

	dst := filepath.Join(nested, "dst.txt")
	n, err := fsys.Copy(ctx, src, dst)
	require.NoError(t, err)
	assert.EqualValues(t, 5, n)

	moved := filepath.Join(nested, "moved.txt")
	require.NoError(t, fsys.Rename(ctx, dst, moved))
	s, err := fsys.ReadToString(ctx, moved)
	require.NoError(t, err)
	assert.Equal(t, "hello", s)

	info, err := fsys.Metadata(ctx, moved)
	require.NoError(t, err)
	assert.EqualValues(t, 5, info.Size())

	stream, err := fsys.ReadDir(ctx, nested)
	require.NoError(t, err)
	var names []string
	for {
		entry, err := stream.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
		names = append(names, entry.FileName())
		assert.Equal(t, filepath.Join(nested, entry.FileName()), entry.Path())
	}
	require.NoError(t, stream.Close())
	sort.Strings(names)
	assert.Equal(t, []string{"moved.txt", "src.txt"}, names)

	require.NoError(t, fsys.RemoveFile(ctx, src))
	_, err = fsys.Metadata(ctx, src)
	assert.ErrorIs(t, err, os.ErrNotExist)

	assert.Error(t, fsys.RemoveDir(ctx, nested), "directory still holds moved.txt")
	require.NoError(t, fsys.RemoveDirAll(ctx, filepath.Join(dir, "a")))
	_, err = fsys.Metadata(ctx, nested)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func fsOpenOptions(ctx context.Context, t require.TestingT, rt interfaces.Runtime) {
	fsys := rt.(interfaces.RuntimeFs).Fs()

	dir, err := os.MkdirTemp("", "asyncrt-conformance-")
	require.NoError(t, err)
	defer os.RemoveAll(dir)
	path := filepath.Join(dir, "log.txt")

	_, err = fsys.OpenWith(ctx, path, types.NewOpenOptions().Create(true))
	assert.ErrorIs(t, err, types.ErrInvalidOpenOptions, "create without write access")
	_, err = fsys.OpenWith(ctx, path, types.NewOpenOptions().Append(true).Truncate(true))
	assert.ErrorIs(t, err, types.ErrInvalidOpenOptions)

	f, err := fsys.CreateNew(ctx, path)
	require.NoError(t, err)
	_, err = f.Write([]byte("one\n"))
	require.NoError(t, err)
	require.NoError(t, f.Close())

	_, err = fsys.CreateNew(ctx, path)
	assert.ErrorIs(t, err, os.ErrExist)

	f, err = fsys.OpenWith(ctx, path, types.NewOpenOptions().Append(true))
	require.NoError(t, err)
	_, err = f.Write([]byte("two\n"))
	require.NoError(t, err)
	require.NoError(t, f.SyncAll(ctx))
	require.NoError(t, f.Close())

	s, err := fsys.ReadToString(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, "one\ntwo\n", s)

	f, err = fsys.Create(ctx, path)
	require.NoError(t, err)
	require.NoError(t, f.Close())
	info, err := fsys.Metadata(ctx, path)
	require.NoError(t, err)
	assert.Zero(t, info.Size(), "Create truncates")
}

// ============================================================================
//                              网络
// ============================================================================

var loopback = types.IPv4Port([4]byte{127, 0, 0, 1}, 0)

func netTCPEcho(ctx context.Context, t require.TestingT, rt interfaces.Runtime) {
	network := rt.(interfaces.RuntimeNet).Net()

	ln, err := network.BindTCP(ctx, loopback)
	require.NoError(t, err)
	defer ln.Close()
	addr, err := ln.LocalAddr()
	require.NoError(t, err)
	require.NotZero(t, addr.Port())

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		conn, _, err := ln.Accept(gctx)
		if err != nil {
			return err
		}
		defer conn.Close()
		_, err = io.Copy(conn, conn)
		return err
	})

	conn, err := network.ConnectTCP(ctx, types.AddrPorts(addr))
	require.NoError(t, err)
	peer, err := conn.PeerAddr()
	require.NoError(t, err)
	assert.Equal(t, addr, peer)

	payload := []byte("ping over tcp")
	_, err = conn.Write(payload)
	require.NoError(t, err)
	require.NoError(t, conn.CloseWrite())

	got, err := io.ReadAll(conn)
	require.NoError(t, err)
	assert.True(t, bytes.Equal(payload, got))
	require.NoError(t, conn.Close())
	require.NoError(t, g.Wait())
}

func netUDPRoundTrip(ctx context.Context, t require.TestingT, rt interfaces.Runtime) {
	network := rt.(interfaces.RuntimeNet).Net()

	a, err := network.BindUDP(ctx, loopback)
	require.NoError(t, err)
	defer a.Close()
	b, err := network.BindUDP(ctx, loopback)
	require.NoError(t, err)
	defer b.Close()

	bAddr, err := b.LocalAddr()
	require.NoError(t, err)
	aAddr, err := a.LocalAddr()
	require.NoError(t, err)

	_, err = a.SendTo(ctx, []byte("ping"), types.AddrPort(bAddr))
	require.NoError(t, err)

	buf := make([]byte, 64)
	n, from, err := b.RecvFrom(ctx, buf)
	require.NoError(t, err)
	assert.Equal(t, "ping", string(buf[:n]))
	assert.Equal(t, aAddr, from)

	require.NoError(t, b.Connect(ctx, types.AddrPort(aAddr)))
	_, err = b.Send(ctx, []byte("pong"))
	require.NoError(t, err)
	n, from, err = a.RecvFrom(ctx, buf)
	require.NoError(t, err)
	assert.Equal(t, "pong", string(buf[:n]))
	assert.Equal(t, bAddr, from)
}

func netResolveLiteral(ctx context.Context, t require.TestingT, rt interfaces.Runtime) {
	network := rt.(interfaces.RuntimeNet).Net()

	want := netip.MustParseAddrPort("10.1.2.3:8080")
	got, err := network.Resolve(ctx, types.ParseAddr("10.1.2.3:8080"))
	require.NoError(t, err)
	assert.Equal(t, []netip.AddrPort{want}, got)

	got, err = network.Resolve(ctx, types.IPPort(want.Addr(), 8080))
	require.NoError(t, err)
	assert.Equal(t, []netip.AddrPort{want}, got)

	_, err = network.Resolve(ctx, types.AddrPorts())
	assert.ErrorIs(t, err, types.ErrNoAddresses)
}
