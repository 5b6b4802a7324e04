package netio

import (
	"context"
	"net"
	"net/netip"
	"syscall"
	"time"

	tec "github.com/jbenet/go-temp-err-catcher"
	"golang.org/x/net/ipv4"
	"golang.org/x/net/ipv6"

	"github.com/dep2p/go-asyncrt/internal/core/sockopt"
	"github.com/dep2p/go-asyncrt/pkg/interfaces"
)

// ============================================================================
//                              TcpStream
// ============================================================================

// TcpStream TCP 连接
type TcpStream struct {
	c *net.TCPConn
}

var _ interfaces.TcpStream = (*TcpStream)(nil)

// NewTcpStream 包装已建立的连接
func NewTcpStream(c *net.TCPConn) *TcpStream {
	return &TcpStream{c: c}
}

// Conn 返回底层连接
func (s *TcpStream) Conn() *net.TCPConn {
	return s.c
}

func (s *TcpStream) Read(p []byte) (int, error)  { return s.c.Read(p) }
func (s *TcpStream) Write(p []byte) (int, error) { return s.c.Write(p) }
func (s *TcpStream) Close() error                { return s.c.Close() }

// CloseWrite 实现 interfaces.TcpStream
func (s *TcpStream) CloseWrite() error {
	return s.c.CloseWrite()
}

// LocalAddr 实现 interfaces.TcpStream
func (s *TcpStream) LocalAddr() (netip.AddrPort, error) {
	return addrPortOf(s.c.LocalAddr())
}

// PeerAddr 实现 interfaces.TcpStream
func (s *TcpStream) PeerAddr() (netip.AddrPort, error) {
	return addrPortOf(s.c.RemoteAddr())
}

// NoDelay 实现 interfaces.TcpStream
func (s *TcpStream) NoDelay() (bool, error) {
	return sockopt.NoDelay(s.c)
}

// SetNoDelay 实现 interfaces.TcpStream
func (s *TcpStream) SetNoDelay(on bool) error {
	return s.c.SetNoDelay(on)
}

// TTL 实现 interfaces.TcpStream
func (s *TcpStream) TTL() (uint32, error) {
	return connTTL(s.c)
}

// SetTTL 实现 interfaces.TcpStream
func (s *TcpStream) SetTTL(ttl uint32) error {
	return setConnTTL(s.c, ttl)
}

// Peek 实现 interfaces.TcpStream
func (s *TcpStream) Peek(ctx context.Context, buf []byte) (int, error) {
	var n int
	err := withDeadline(ctx, s.c.SetReadDeadline, func() error {
		var err error
		n, _, err = sockopt.Peek(s.c, buf)
		return err
	})
	return n, err
}

// SetDeadline 实现 interfaces.TcpStream
func (s *TcpStream) SetDeadline(t time.Time) error {
	return s.c.SetDeadline(t)
}

// SyscallConn 实现 interfaces.TcpStream
func (s *TcpStream) SyscallConn() (syscall.RawConn, error) {
	return s.c.SyscallConn()
}

// ============================================================================
//                              TcpListener
// ============================================================================

// TcpListener TCP 监听器
type TcpListener struct {
	l       *net.TCPListener
	catcher tec.TempErrCatcher
}

var _ interfaces.TcpListener = (*TcpListener)(nil)

func newTcpListener(l *net.TCPListener) *TcpListener {
	return &TcpListener{l: l}
}

// Accept 实现 interfaces.TcpListener
func (l *TcpListener) Accept(ctx context.Context) (interfaces.TcpStream, netip.AddrPort, error) {
	for {
		var c *net.TCPConn
		err := withDeadline(ctx, l.l.SetDeadline, func() error {
			var err error
			c, err = l.l.AcceptTCP()
			return err
		})
		if err != nil {
			if ctx.Err() == nil && l.catcher.IsTemporary(err) {
				log.Debug("temporary accept error, retrying", "err", err)
				continue
			}
			return nil, netip.AddrPort{}, err
		}
		peer, err := addrPortOf(c.RemoteAddr())
		if err != nil {
			_ = c.Close()
			return nil, netip.AddrPort{}, err
		}
		return NewTcpStream(c), peer, nil
	}
}

// LocalAddr 实现 interfaces.TcpListener
func (l *TcpListener) LocalAddr() (netip.AddrPort, error) {
	return addrPortOf(l.l.Addr())
}

// TTL 实现 interfaces.TcpListener
func (l *TcpListener) TTL() (uint32, error) {
	return sockopt.TTL(l.l)
}

// SetTTL 实现 interfaces.TcpListener
func (l *TcpListener) SetTTL(ttl uint32) error {
	return sockopt.SetTTL(l.l, ttl)
}

// Close 实现 interfaces.TcpListener
func (l *TcpListener) Close() error {
	return l.l.Close()
}

// ============================================================================
//                              TTL
// ============================================================================

func isV4(c net.Conn) bool {
	ap, err := addrPortOf(c.LocalAddr())
	return err == nil && ap.Addr().Is4()
}

// connTTL IPv4 读取 IP_TTL，IPv6 读取单播跳数
func connTTL(c net.Conn) (uint32, error) {
	if isV4(c) {
		v, err := ipv4.NewConn(c).TTL()
		return uint32(v), err
	}
	v, err := ipv6.NewConn(c).HopLimit()
	return uint32(v), err
}

func setConnTTL(c net.Conn, ttl uint32) error {
	if isV4(c) {
		return ipv4.NewConn(c).SetTTL(int(ttl))
	}
	return ipv6.NewConn(c).SetHopLimit(int(ttl))
}
