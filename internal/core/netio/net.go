// Package netio 基于标准库网络栈实现网络能力
//
// 标准库未覆盖的部分：
//   - 套接字选项、MSG_PEEK、UDP connect 使用 internal/core/sockopt（x/sys/unix）
//   - 多播成员与选项使用 golang.org/x/net/ipv4、ipv6
//   - Accept 的临时错误由 github.com/jbenet/go-temp-err-catcher 退避重试
//
// ctx 通过 context.AfterFunc 转换为连接截止时间。
package netio

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/netip"
	"os"
	"time"

	"github.com/dep2p/go-asyncrt/internal/util/logger"
	"github.com/dep2p/go-asyncrt/pkg/interfaces"
	"github.com/dep2p/go-asyncrt/pkg/types"
)

var log = logger.Logger("netio")

// Resolver 地址解析
type Resolver interface {
	Resolve(ctx context.Context, spec types.AddrSpec) ([]netip.AddrPort, error)
}

// Net 网络能力
type Net struct {
	resolver Resolver
	dialer   net.Dialer
	lc       net.ListenConfig
}

var _ interfaces.Net = (*Net)(nil)

// New 创建网络能力
func New(r Resolver) *Net {
	return &Net{resolver: r}
}

// Resolve 实现 interfaces.Net
func (n *Net) Resolve(ctx context.Context, spec types.AddrSpec) ([]netip.AddrPort, error) {
	addrs, err := n.resolver.Resolve(ctx, spec)
	if err != nil {
		return nil, err
	}
	if len(addrs) == 0 {
		return nil, types.ErrNoAddresses
	}
	return addrs, nil
}

// ConnectTCP 实现 interfaces.Net
func (n *Net) ConnectTCP(ctx context.Context, spec types.AddrSpec) (interfaces.TcpStream, error) {
	return eachAddr(ctx, n, spec, func(ap netip.AddrPort) (interfaces.TcpStream, error) {
		c, err := n.dialer.DialContext(ctx, network("tcp", ap), ap.String())
		if err != nil {
			return nil, err
		}
		return NewTcpStream(c.(*net.TCPConn)), nil
	})
}

// BindTCP 实现 interfaces.Net
func (n *Net) BindTCP(ctx context.Context, spec types.AddrSpec) (interfaces.TcpListener, error) {
	return eachAddr(ctx, n, spec, func(ap netip.AddrPort) (interfaces.TcpListener, error) {
		l, err := n.lc.Listen(ctx, network("tcp", ap), ap.String())
		if err != nil {
			return nil, err
		}
		return newTcpListener(l.(*net.TCPListener)), nil
	})
}

// BindUDP 实现 interfaces.Net
func (n *Net) BindUDP(ctx context.Context, spec types.AddrSpec) (interfaces.UdpSocket, error) {
	return eachAddr(ctx, n, spec, func(ap netip.AddrPort) (interfaces.UdpSocket, error) {
		pc, err := n.lc.ListenPacket(ctx, network("udp", ap), ap.String())
		if err != nil {
			return nil, err
		}
		return newUdpSocket(pc.(*net.UDPConn), n), nil
	})
}

// eachAddr 依次尝试每个地址，返回第一个成功的结果或最后一个错误
func eachAddr[T any](ctx context.Context, n *Net, spec types.AddrSpec, fn func(netip.AddrPort) (T, error)) (T, error) {
	var zero T
	addrs, err := n.Resolve(ctx, spec)
	if err != nil {
		return zero, err
	}
	var lastErr error
	for _, ap := range addrs {
		v, err := fn(ap)
		if err == nil {
			return v, nil
		}
		log.Debug("address attempt failed", "addr", ap, "err", err)
		lastErr = err
		if ctx.Err() != nil {
			break
		}
	}
	return zero, lastErr
}

// network 按地址族选择网络名
func network(proto string, ap netip.AddrPort) string {
	if ap.Addr().Unmap().Is4() {
		return proto + "4"
	}
	return proto + "6"
}

func addrPortOf(a net.Addr) (netip.AddrPort, error) {
	switch v := a.(type) {
	case *net.TCPAddr:
		return unmap(v.AddrPort()), nil
	case *net.UDPAddr:
		return unmap(v.AddrPort()), nil
	case nil:
		return netip.AddrPort{}, types.ErrNotConnected
	default:
		return netip.AddrPort{}, fmt.Errorf("%w: %s", types.ErrInvalidAddr, a)
	}
}

func unmap(ap netip.AddrPort) netip.AddrPort {
	return netip.AddrPortFrom(ap.Addr().Unmap(), ap.Port())
}

// ============================================================================
//                              ctx 与截止时间
// ============================================================================

var aLongTimeAgo = time.Unix(1, 0)

// withDeadline 在 fn 执行期间把 ctx 结束转换为截止时间
func withDeadline(ctx context.Context, set func(time.Time) error, fn func() error) error {
	if ctx.Done() == nil {
		return fn()
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	stop := context.AfterFunc(ctx, func() { _ = set(aLongTimeAgo) })
	err := fn()
	if !stop() {
		// AfterFunc 已触发，恢复截止时间
		_ = set(time.Time{})
		if err != nil && errors.Is(err, os.ErrDeadlineExceeded) {
			return ctx.Err()
		}
	}
	return err
}
