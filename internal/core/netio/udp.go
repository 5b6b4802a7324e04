package netio

import (
	"context"
	"fmt"
	"net"
	"net/netip"

	"golang.org/x/net/ipv4"
	"golang.org/x/net/ipv6"

	"github.com/dep2p/go-asyncrt/internal/core/sockopt"
	"github.com/dep2p/go-asyncrt/pkg/interfaces"
	"github.com/dep2p/go-asyncrt/pkg/types"
)

// UdpSocket UDP 套接字
type UdpSocket struct {
	c   *net.UDPConn
	net *Net
	p4  *ipv4.PacketConn
	p6  *ipv6.PacketConn
}

var _ interfaces.UdpSocket = (*UdpSocket)(nil)

func newUdpSocket(c *net.UDPConn, n *Net) *UdpSocket {
	return &UdpSocket{
		c:   c,
		net: n,
		p4:  ipv4.NewPacketConn(c),
		p6:  ipv6.NewPacketConn(c),
	}
}

// Conn 返回底层连接
func (u *UdpSocket) Conn() *net.UDPConn {
	return u.c
}

// LocalAddr 实现 interfaces.UdpSocket
func (u *UdpSocket) LocalAddr() (netip.AddrPort, error) {
	return addrPortOf(u.c.LocalAddr())
}

// PeerAddr 实现 interfaces.UdpSocket
func (u *UdpSocket) PeerAddr() (netip.AddrPort, error) {
	return sockopt.Peer(u.c)
}

// Connect 实现 interfaces.UdpSocket
func (u *UdpSocket) Connect(ctx context.Context, spec types.AddrSpec) error {
	_, err := eachAddr(ctx, u.net, spec, func(ap netip.AddrPort) (struct{}, error) {
		return struct{}{}, sockopt.Connect(u.c, ap)
	})
	return err
}

// Send 实现 interfaces.UdpSocket
func (u *UdpSocket) Send(ctx context.Context, buf []byte) (int, error) {
	if _, err := u.PeerAddr(); err != nil {
		return 0, err
	}
	var n int
	err := withDeadline(ctx, u.c.SetWriteDeadline, func() error {
		var err error
		n, err = u.c.Write(buf)
		return err
	})
	return n, err
}

// Recv 实现 interfaces.UdpSocket
func (u *UdpSocket) Recv(ctx context.Context, buf []byte) (int, error) {
	if _, err := u.PeerAddr(); err != nil {
		return 0, err
	}
	var n int
	err := withDeadline(ctx, u.c.SetReadDeadline, func() error {
		var err error
		n, err = u.c.Read(buf)
		return err
	})
	return n, err
}

// Peek 实现 interfaces.UdpSocket
func (u *UdpSocket) Peek(ctx context.Context, buf []byte) (int, error) {
	if _, err := u.PeerAddr(); err != nil {
		return 0, err
	}
	n, _, err := u.PeekFrom(ctx, buf)
	return n, err
}

// SendTo 实现 interfaces.UdpSocket
func (u *UdpSocket) SendTo(ctx context.Context, buf []byte, spec types.AddrSpec) (int, error) {
	addrs, err := u.net.Resolve(ctx, spec)
	if err != nil {
		return 0, err
	}
	dst := addrs[0]
	if local, err := u.LocalAddr(); err == nil && local.Addr().Is6() && dst.Addr().Is4() {
		dst = netip.AddrPortFrom(netip.AddrFrom16(dst.Addr().As16()), dst.Port())
	}
	var n int
	err = withDeadline(ctx, u.c.SetWriteDeadline, func() error {
		var err error
		n, err = u.c.WriteToUDPAddrPort(buf, dst)
		return err
	})
	return n, err
}

// RecvFrom 实现 interfaces.UdpSocket
func (u *UdpSocket) RecvFrom(ctx context.Context, buf []byte) (int, netip.AddrPort, error) {
	var (
		n    int
		from netip.AddrPort
	)
	err := withDeadline(ctx, u.c.SetReadDeadline, func() error {
		var err error
		n, from, err = u.c.ReadFromUDPAddrPort(buf)
		return err
	})
	return n, unmap(from), err
}

// PeekFrom 实现 interfaces.UdpSocket
func (u *UdpSocket) PeekFrom(ctx context.Context, buf []byte) (int, netip.AddrPort, error) {
	var (
		n    int
		from netip.AddrPort
	)
	err := withDeadline(ctx, u.c.SetReadDeadline, func() error {
		var err error
		n, from, err = sockopt.Peek(u.c, buf)
		return err
	})
	return n, from, err
}

// Broadcast 实现 interfaces.UdpSocket
func (u *UdpSocket) Broadcast() (bool, error) {
	return sockopt.Broadcast(u.c)
}

// SetBroadcast 实现 interfaces.UdpSocket
func (u *UdpSocket) SetBroadcast(on bool) error {
	return sockopt.SetBroadcast(u.c, on)
}

// ============================================================================
//                              多播
// ============================================================================

// JoinMulticastV4 实现 interfaces.UdpSocket
func (u *UdpSocket) JoinMulticastV4(group, iface netip.Addr) error {
	ifi, err := interfaceByAddr(iface)
	if err != nil {
		return err
	}
	return u.p4.JoinGroup(ifi, &net.UDPAddr{IP: group.AsSlice()})
}

// LeaveMulticastV4 实现 interfaces.UdpSocket
func (u *UdpSocket) LeaveMulticastV4(group, iface netip.Addr) error {
	ifi, err := interfaceByAddr(iface)
	if err != nil {
		return err
	}
	return u.p4.LeaveGroup(ifi, &net.UDPAddr{IP: group.AsSlice()})
}

// JoinMulticastV6 实现 interfaces.UdpSocket
func (u *UdpSocket) JoinMulticastV6(group netip.Addr, ifindex uint32) error {
	ifi, err := interfaceByIndex(ifindex)
	if err != nil {
		return err
	}
	return u.p6.JoinGroup(ifi, &net.UDPAddr{IP: group.AsSlice()})
}

// LeaveMulticastV6 实现 interfaces.UdpSocket
func (u *UdpSocket) LeaveMulticastV6(group netip.Addr, ifindex uint32) error {
	ifi, err := interfaceByIndex(ifindex)
	if err != nil {
		return err
	}
	return u.p6.LeaveGroup(ifi, &net.UDPAddr{IP: group.AsSlice()})
}

// MulticastLoopV4 实现 interfaces.UdpSocket
func (u *UdpSocket) MulticastLoopV4() (bool, error) {
	return u.p4.MulticastLoopback()
}

// SetMulticastLoopV4 实现 interfaces.UdpSocket
func (u *UdpSocket) SetMulticastLoopV4(on bool) error {
	return u.p4.SetMulticastLoopback(on)
}

// MulticastLoopV6 实现 interfaces.UdpSocket
func (u *UdpSocket) MulticastLoopV6() (bool, error) {
	return u.p6.MulticastLoopback()
}

// SetMulticastLoopV6 实现 interfaces.UdpSocket
func (u *UdpSocket) SetMulticastLoopV6(on bool) error {
	return u.p6.SetMulticastLoopback(on)
}

// MulticastTTLV4 实现 interfaces.UdpSocket
func (u *UdpSocket) MulticastTTLV4() (uint32, error) {
	v, err := u.p4.MulticastTTL()
	return uint32(v), err
}

// SetMulticastTTLV4 实现 interfaces.UdpSocket
func (u *UdpSocket) SetMulticastTTLV4(ttl uint32) error {
	return u.p4.SetMulticastTTL(int(ttl))
}

// TTL 实现 interfaces.UdpSocket
func (u *UdpSocket) TTL() (uint32, error) {
	return connTTL(u.c)
}

// SetTTL 实现 interfaces.UdpSocket
func (u *UdpSocket) SetTTL(ttl uint32) error {
	return setConnTTL(u.c, ttl)
}

// Close 实现 interfaces.UdpSocket
func (u *UdpSocket) Close() error {
	return u.c.Close()
}

// interfaceByAddr 按 IPv4 地址查找网卡，未指定地址返回 nil（由内核选择）
func interfaceByAddr(addr netip.Addr) (*net.Interface, error) {
	if !addr.IsValid() || addr.IsUnspecified() {
		return nil, nil
	}
	ifs, err := net.Interfaces()
	if err != nil {
		return nil, err
	}
	for i := range ifs {
		addrs, err := ifs[i].Addrs()
		if err != nil {
			continue
		}
		for _, a := range addrs {
			if ipn, ok := a.(*net.IPNet); ok {
				if ip, ok := netip.AddrFromSlice(ipn.IP); ok && ip.Unmap() == addr.Unmap() {
					return &ifs[i], nil
				}
			}
		}
	}
	return nil, fmt.Errorf("%w: no interface with address %s", types.ErrInvalidAddr, addr)
}

// interfaceByIndex 0 表示由内核选择
func interfaceByIndex(index uint32) (*net.Interface, error) {
	if index == 0 {
		return nil, nil
	}
	return net.InterfaceByIndex(int(index))
}
