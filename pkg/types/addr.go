package types

import (
	"fmt"
	"net"
	"net/netip"
	"strconv"
)

// ============================================================================
//                              AddrKind - 地址规格种类
// ============================================================================

// AddrKind 地址规格的种类
type AddrKind int

const (
	// AddrKindList 套接字地址列表
	AddrKindList AddrKind = iota
	// AddrKindHostPort 主机名 + 端口
	AddrKindHostPort
	// AddrKindIPPort IP + 端口
	AddrKindIPPort
	// AddrKindString "host:port" 字符串
	AddrKindString
	// AddrKindSocket 单个套接字地址
	AddrKindSocket
)

// String 返回种类的字符串表示
func (k AddrKind) String() string {
	switch k {
	case AddrKindList:
		return "list"
	case AddrKindHostPort:
		return "host-port"
	case AddrKindIPPort:
		return "ip-port"
	case AddrKindString:
		return "string"
	case AddrKindSocket:
		return "socket"
	default:
		return "unknown"
	}
}

// ============================================================================
//                              AddrSpec - 地址规格
// ============================================================================

// AddrSpec 可转换为一个或多个套接字地址的规格
//
// 运行时的 Net.Resolve 负责把规格变成 []netip.AddrPort；
// 字面量地址不产生任何 I/O，主机名才会触发解析。
type AddrSpec struct {
	kind  AddrKind
	addrs []netip.AddrPort
	host  string
	ip    netip.Addr
	port  uint16
	str   string
}

// AddrPorts 由套接字地址列表构造规格
func AddrPorts(addrs ...netip.AddrPort) AddrSpec {
	cp := make([]netip.AddrPort, len(addrs))
	copy(cp, addrs)
	return AddrSpec{kind: AddrKindList, addrs: cp}
}

// HostPort 由主机名和端口构造规格
func HostPort(host string, port uint16) AddrSpec {
	return AddrSpec{kind: AddrKindHostPort, host: host, port: port}
}

// IPPort 由 IP 和端口构造规格
func IPPort(ip netip.Addr, port uint16) AddrSpec {
	return AddrSpec{kind: AddrKindIPPort, ip: ip, port: port}
}

// IPv4Port 由 IPv4 地址和端口构造规格
func IPv4Port(ip [4]byte, port uint16) AddrSpec {
	return IPPort(netip.AddrFrom4(ip), port)
}

// IPv6Port 由 IPv6 地址和端口构造规格
func IPv6Port(ip [16]byte, port uint16) AddrSpec {
	return IPPort(netip.AddrFrom16(ip), port)
}

// ParseAddr 由 "host:port" 字符串构造规格
//
// 字符串在解析时才校验。
func ParseAddr(s string) AddrSpec {
	return AddrSpec{kind: AddrKindString, str: s}
}

// AddrPort 由单个套接字地址构造规格
func AddrPort(ap netip.AddrPort) AddrSpec {
	return AddrSpec{kind: AddrKindSocket, addrs: []netip.AddrPort{ap}}
}

// Kind 返回规格种类
func (s AddrSpec) Kind() AddrKind {
	return s.kind
}

// Literal 尝试不经解析直接得到地址
//
// 返回 ok=false 表示需要主机名解析（见 Host）。
// 字符串格式非法时返回 ErrInvalidAddr。
func (s AddrSpec) Literal() (addrs []netip.AddrPort, ok bool, err error) {
	switch s.kind {
	case AddrKindList, AddrKindSocket:
		cp := make([]netip.AddrPort, len(s.addrs))
		copy(cp, s.addrs)
		return cp, true, nil
	case AddrKindIPPort:
		return []netip.AddrPort{netip.AddrPortFrom(s.ip, s.port)}, true, nil
	case AddrKindHostPort:
		if ip, perr := netip.ParseAddr(s.host); perr == nil {
			return []netip.AddrPort{netip.AddrPortFrom(ip, s.port)}, true, nil
		}
		return nil, false, nil
	case AddrKindString:
		if ap, perr := netip.ParseAddrPort(s.str); perr == nil {
			return []netip.AddrPort{ap}, true, nil
		}
		host, port, herr := s.Host()
		if herr != nil {
			return nil, false, herr
		}
		if ip, perr := netip.ParseAddr(host); perr == nil {
			return []netip.AddrPort{netip.AddrPortFrom(ip, port)}, true, nil
		}
		return nil, false, nil
	default:
		return nil, false, fmt.Errorf("%w: unknown kind %d", ErrInvalidAddr, s.kind)
	}
}

// Host 返回需要解析的主机名和端口
func (s AddrSpec) Host() (host string, port uint16, err error) {
	switch s.kind {
	case AddrKindHostPort:
		return s.host, s.port, nil
	case AddrKindString:
		h, p, serr := net.SplitHostPort(s.str)
		if serr != nil {
			return "", 0, fmt.Errorf("%w: %q: %v", ErrInvalidAddr, s.str, serr)
		}
		n, perr := strconv.ParseUint(p, 10, 16)
		if perr != nil {
			return "", 0, fmt.Errorf("%w: %q: invalid port value", ErrInvalidAddr, s.str)
		}
		return h, uint16(n), nil
	default:
		return "", 0, fmt.Errorf("%w: %s spec has no host", ErrInvalidAddr, s.kind)
	}
}

// String 返回可读表示
func (s AddrSpec) String() string {
	switch s.kind {
	case AddrKindList:
		return fmt.Sprintf("%v", s.addrs)
	case AddrKindSocket:
		if len(s.addrs) == 1 {
			return s.addrs[0].String()
		}
		return "<invalid>"
	case AddrKindIPPort:
		return netip.AddrPortFrom(s.ip, s.port).String()
	case AddrKindHostPort:
		return net.JoinHostPort(s.host, strconv.Itoa(int(s.port)))
	case AddrKindString:
		return s.str
	default:
		return "<invalid>"
	}
}
