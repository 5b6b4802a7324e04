// Package sockopt 提供标准库未暴露的套接字操作
//
// 在 unix 平台上基于 golang.org/x/sys/unix 实现：
//   - 读取 TCP_NODELAY、SO_BROADCAST 与单播 TTL
//   - MSG_PEEK 窥视
//   - 对已绑定的 UDP 套接字执行 connect(2) 并查询对端
//
// 其余平台返回 types.ErrUnsupported。
package sockopt

import (
	"net/netip"
	"syscall"
)

// Conn 可访问原始描述符的连接
type Conn interface {
	SyscallConn() (syscall.RawConn, error)
}

// control 在描述符上执行 fn
func control(c Conn, fn func(fd uintptr) error) error {
	rc, err := c.SyscallConn()
	if err != nil {
		return err
	}
	var opErr error
	if err := rc.Control(func(fd uintptr) { opErr = fn(fd) }); err != nil {
		return err
	}
	return opErr
}

// unmap 把 IPv4 映射的 IPv6 地址还原为 IPv4
func unmap(ap netip.AddrPort) netip.AddrPort {
	return netip.AddrPortFrom(ap.Addr().Unmap(), ap.Port())
}
