//go:build unix

package sockopt

import (
	"errors"
	"fmt"
	"net/netip"

	"golang.org/x/sys/unix"

	"github.com/dep2p/go-asyncrt/pkg/types"
)

// NoDelay 读取 TCP_NODELAY
func NoDelay(c Conn) (bool, error) {
	return getBool(c, unix.IPPROTO_TCP, unix.TCP_NODELAY)
}

// Broadcast 读取 SO_BROADCAST
func Broadcast(c Conn) (bool, error) {
	return getBool(c, unix.SOL_SOCKET, unix.SO_BROADCAST)
}

// SetBroadcast 设置 SO_BROADCAST
func SetBroadcast(c Conn, on bool) error {
	v := 0
	if on {
		v = 1
	}
	return control(c, func(fd uintptr) error {
		return unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_BROADCAST, v)
	})
}

func getBool(c Conn, level, opt int) (bool, error) {
	var out bool
	err := control(c, func(fd uintptr) error {
		v, err := unix.GetsockoptInt(int(fd), level, opt)
		out = v != 0
		return err
	})
	return out, err
}

// Peek 以 MSG_PEEK 读取，不消费数据
//
// 在描述符可读前挂起，遵守连接上设置的读截止时间。
func Peek(c Conn, buf []byte) (int, netip.AddrPort, error) {
	rc, err := c.SyscallConn()
	if err != nil {
		return 0, netip.AddrPort{}, err
	}
	var (
		n     int
		from  unix.Sockaddr
		opErr error
	)
	err = rc.Read(func(fd uintptr) bool {
		n, from, opErr = unix.Recvfrom(int(fd), buf, unix.MSG_PEEK)
		return !errors.Is(opErr, unix.EAGAIN) && !errors.Is(opErr, unix.EWOULDBLOCK)
	})
	if err != nil {
		return 0, netip.AddrPort{}, err
	}
	if opErr != nil {
		return 0, netip.AddrPort{}, opErr
	}
	return n, fromSockaddr(from), nil
}

// Connect 对已绑定的套接字执行 connect(2)
func Connect(c Conn, ap netip.AddrPort) error {
	return control(c, func(fd uintptr) error {
		local, err := unix.Getsockname(int(fd))
		if err != nil {
			return err
		}
		sa, err := toSockaddr(ap, local)
		if err != nil {
			return err
		}
		return unix.Connect(int(fd), sa)
	})
}

// Peer 查询已连接套接字的对端
func Peer(c Conn) (netip.AddrPort, error) {
	var out netip.AddrPort
	err := control(c, func(fd uintptr) error {
		sa, err := unix.Getpeername(int(fd))
		if errors.Is(err, unix.ENOTCONN) {
			return types.ErrNotConnected
		}
		if err != nil {
			return err
		}
		out = fromSockaddr(sa)
		return nil
	})
	return out, err
}

// toSockaddr 按本地套接字的地址族构造目标地址
func toSockaddr(ap netip.AddrPort, local unix.Sockaddr) (unix.Sockaddr, error) {
	switch local.(type) {
	case *unix.SockaddrInet4:
		addr := ap.Addr().Unmap()
		if !addr.Is4() {
			return nil, fmt.Errorf("%w: %s on an IPv4 socket", types.ErrInvalidAddr, ap)
		}
		return &unix.SockaddrInet4{Port: int(ap.Port()), Addr: addr.As4()}, nil
	case *unix.SockaddrInet6:
		sa := &unix.SockaddrInet6{Port: int(ap.Port()), Addr: ap.Addr().As16()}
		return sa, nil
	default:
		return nil, fmt.Errorf("%w: unsupported socket family", types.ErrInvalidAddr)
	}
}

func fromSockaddr(sa unix.Sockaddr) netip.AddrPort {
	switch v := sa.(type) {
	case *unix.SockaddrInet4:
		return netip.AddrPortFrom(netip.AddrFrom4(v.Addr), uint16(v.Port))
	case *unix.SockaddrInet6:
		return unmap(netip.AddrPortFrom(netip.AddrFrom16(v.Addr), uint16(v.Port)))
	default:
		return netip.AddrPort{}
	}
}

// TTL 读取单播 TTL，IPv6 套接字读取 IPV6_UNICAST_HOPS
func TTL(c Conn) (uint32, error) {
	var out uint32
	err := control(c, func(fd uintptr) error {
		level, opt, err := ttlOpt(int(fd))
		if err != nil {
			return err
		}
		v, err := unix.GetsockoptInt(int(fd), level, opt)
		out = uint32(v)
		return err
	})
	return out, err
}

// SetTTL 设置单播 TTL
func SetTTL(c Conn, ttl uint32) error {
	return control(c, func(fd uintptr) error {
		level, opt, err := ttlOpt(int(fd))
		if err != nil {
			return err
		}
		return unix.SetsockoptInt(int(fd), level, opt, int(ttl))
	})
}

func ttlOpt(fd int) (level, opt int, err error) {
	local, err := unix.Getsockname(fd)
	if err != nil {
		return 0, 0, err
	}
	if _, ok := local.(*unix.SockaddrInet6); ok {
		return unix.IPPROTO_IPV6, unix.IPV6_UNICAST_HOPS, nil
	}
	return unix.IPPROTO_IP, unix.IP_TTL, nil
}
