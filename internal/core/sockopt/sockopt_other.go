//go:build !unix

package sockopt

import (
	"net/netip"

	"github.com/dep2p/go-asyncrt/pkg/types"
)

// NoDelay 读取 TCP_NODELAY
func NoDelay(Conn) (bool, error) { return false, types.ErrUnsupported }

// Broadcast 读取 SO_BROADCAST
func Broadcast(Conn) (bool, error) { return false, types.ErrUnsupported }

// SetBroadcast 设置 SO_BROADCAST
func SetBroadcast(Conn, bool) error { return types.ErrUnsupported }

// Peek 以 MSG_PEEK 读取
func Peek(Conn, []byte) (int, netip.AddrPort, error) {
	return 0, netip.AddrPort{}, types.ErrUnsupported
}

// Connect 对已绑定的套接字执行 connect(2)
func Connect(Conn, netip.AddrPort) error { return types.ErrUnsupported }

// Peer 查询已连接套接字的对端
func Peer(Conn) (netip.AddrPort, error) { return netip.AddrPort{}, types.ErrUnsupported }

// TTL 读取单播 TTL
func TTL(Conn) (uint32, error) { return 0, types.ErrUnsupported }

// SetTTL 设置单播 TTL
func SetTTL(Conn, uint32) error { return types.ErrUnsupported }
