// Package interfaces 定义 go-asyncrt 能力契约
//
// 本文件定义网络能力：TCP 流、TCP 监听器、UDP 套接字。
package interfaces

import (
	"context"
	"io"
	"net/netip"
	"syscall"
	"time"

	"github.com/dep2p/go-asyncrt/pkg/types"
)

// Net 网络能力
type Net interface {
	// Resolve 把地址规格解析为套接字地址
	//
	// 字面量不产生 I/O；未解析出地址时返回 types.ErrNoAddresses。
	Resolve(ctx context.Context, spec types.AddrSpec) ([]netip.AddrPort, error)

	// ConnectTCP 依次尝试解析出的地址，返回第一个成功的连接或最后一个错误
	ConnectTCP(ctx context.Context, spec types.AddrSpec) (TcpStream, error)

	// BindTCP 依次尝试解析出的地址
	BindTCP(ctx context.Context, spec types.AddrSpec) (TcpListener, error)

	// BindUDP 依次尝试解析出的地址
	BindUDP(ctx context.Context, spec types.AddrSpec) (UdpSocket, error)
}

// TcpStream TCP 连接
type TcpStream interface {
	io.ReadWriteCloser

	// CloseWrite 关闭写方向
	CloseWrite() error

	LocalAddr() (netip.AddrPort, error)
	PeerAddr() (netip.AddrPort, error)

	// NoDelay TCP_NODELAY
	NoDelay() (bool, error)
	SetNoDelay(on bool) error

	// TTL IP_TTL
	TTL() (uint32, error)
	SetTTL(ttl uint32) error

	// Peek 读取但不消费，连续调用返回相同数据
	Peek(ctx context.Context, buf []byte) (int, error)

	SetDeadline(t time.Time) error

	SyscallConn() (syscall.RawConn, error)
}

// TcpListener TCP 监听器
type TcpListener interface {
	// Accept 挂起直到有新连接，临时错误会自动重试
	Accept(ctx context.Context) (TcpStream, netip.AddrPort, error)

	LocalAddr() (netip.AddrPort, error)

	TTL() (uint32, error)
	SetTTL(ttl uint32) error

	Close() error
}

// UdpSocket UDP 套接字
type UdpSocket interface {
	LocalAddr() (netip.AddrPort, error)

	// PeerAddr 未连接时返回 types.ErrNotConnected
	PeerAddr() (netip.AddrPort, error)

	// Connect 设置默认对端，只接收该对端的数据报
	Connect(ctx context.Context, spec types.AddrSpec) error

	// Send/Recv/Peek 只用于已连接的套接字
	Send(ctx context.Context, buf []byte) (int, error)
	Recv(ctx context.Context, buf []byte) (int, error)
	Peek(ctx context.Context, buf []byte) (int, error)

	// SendTo 发送到规格解析出的第一个地址
	SendTo(ctx context.Context, buf []byte, spec types.AddrSpec) (int, error)
	RecvFrom(ctx context.Context, buf []byte) (int, netip.AddrPort, error)
	PeekFrom(ctx context.Context, buf []byte) (int, netip.AddrPort, error)

	// Broadcast SO_BROADCAST
	Broadcast() (bool, error)
	SetBroadcast(on bool) error

	JoinMulticastV4(group, iface netip.Addr) error
	LeaveMulticastV4(group, iface netip.Addr) error
	JoinMulticastV6(group netip.Addr, ifindex uint32) error
	LeaveMulticastV6(group netip.Addr, ifindex uint32) error

	MulticastLoopV4() (bool, error)
	SetMulticastLoopV4(on bool) error
	MulticastLoopV6() (bool, error)
	SetMulticastLoopV6(on bool) error

	MulticastTTLV4() (uint32, error)
	SetMulticastTTLV4(ttl uint32) error

	TTL() (uint32, error)
	SetTTL(ttl uint32) error

	Close() error
}
