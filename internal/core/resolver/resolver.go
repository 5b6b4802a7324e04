// Package resolver 把地址规格解析为套接字地址
//
// 两种模式：
//   - system：使用 net.DefaultResolver（遵循操作系统配置）
//   - dns：使用 github.com/miekg/dns 直接查询配置的名字服务器
//
// 主机名查询结果缓存在带过期时间的 LRU 中（hashicorp/golang-lru/v2/expirable）。
// 字面量地址不产生任何 I/O。
package resolver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/netip"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/miekg/dns"

	"github.com/dep2p/go-asyncrt/config"
	"github.com/dep2p/go-asyncrt/internal/util/logger"
	"github.com/dep2p/go-asyncrt/pkg/types"
)

var log = logger.Logger("resolver")

// Mode 解析模式
type Mode string

const (
	// ModeSystem 使用操作系统解析器
	ModeSystem Mode = "system"
	// ModeDNS 直接查询名字服务器
	ModeDNS Mode = "dns"
)

// DefaultResolvConf 默认的 resolv.conf 路径
const DefaultResolvConf = "/etc/resolv.conf"

var (
	// ErrUnknownMode 未知的解析模式
	ErrUnknownMode = errors.New("resolver: unknown mode")

	// ErrNoNameservers dns 模式下没有可用的名字服务器
	ErrNoNameservers = errors.New("resolver: no nameservers configured")
)

// Config 解析器配置
type Config struct {
	Mode Mode

	// Nameservers dns 模式使用的服务器，"host:port"；为空时读取 resolv.conf
	Nameservers []string

	// Timeout 单次查询超时
	Timeout time.Duration

	// CacheSize 缓存条目数，0 表示不缓存
	CacheSize int

	// CacheTTL 缓存有效期
	CacheTTL time.Duration
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{
		Mode:      ModeSystem,
		Timeout:   5 * time.Second,
		CacheSize: 256,
		CacheTTL:  time.Minute,
	}
}

// ConfigFromUnified 从统一配置创建解析器配置
func ConfigFromUnified(cfg *config.Config) Config {
	if cfg == nil {
		return DefaultConfig()
	}
	rc := cfg.Resolver
	return Config{
		Mode:        Mode(rc.Mode),
		Nameservers: append([]string(nil), rc.Nameservers...),
		Timeout:     rc.Timeout.Duration(),
		CacheSize:   rc.CacheSize,
		CacheTTL:    rc.CacheTTL.Duration(),
	}
}

// Resolver 地址解析器
type Resolver struct {
	cfg     Config
	cache   *expirable.LRU[string, []netip.Addr]
	client  *dns.Client
	servers []string
	lookup  func(ctx context.Context, host string) ([]netip.Addr, error)
}

// New 创建解析器
func New(cfg Config) (*Resolver, error) {
	if cfg.Mode == "" {
		cfg.Mode = ModeSystem
	}
	r := &Resolver{cfg: cfg}
	if cfg.CacheSize > 0 {
		r.cache = expirable.NewLRU[string, []netip.Addr](cfg.CacheSize, nil, cfg.CacheTTL)
	}

	switch cfg.Mode {
	case ModeSystem:
		r.lookup = r.lookupSystem
	case ModeDNS:
		servers := cfg.Nameservers
		if len(servers) == 0 {
			cc, err := dns.ClientConfigFromFile(DefaultResolvConf)
			if err != nil {
				return nil, fmt.Errorf("read %s: %w", DefaultResolvConf, err)
			}
			for _, s := range cc.Servers {
				servers = append(servers, net.JoinHostPort(s, cc.Port))
			}
		}
		if len(servers) == 0 {
			return nil, ErrNoNameservers
		}
		r.servers = servers
		r.client = &dns.Client{Net: "udp", Timeout: cfg.Timeout}
		r.lookup = r.lookupDNS
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMode, cfg.Mode)
	}
	return r, nil
}

// Mode 当前模式
func (r *Resolver) Mode() Mode {
	return r.cfg.Mode
}

// Resolve 把地址规格解析为套接字地址
func (r *Resolver) Resolve(ctx context.Context, spec types.AddrSpec) ([]netip.AddrPort, error) {
	addrs, ok, err := spec.Literal()
	if err != nil {
		return nil, err
	}
	if ok {
		if len(addrs) == 0 {
			return nil, types.ErrNoAddresses
		}
		return addrs, nil
	}

	host, port, err := spec.Host()
	if err != nil {
		return nil, err
	}
	ips, err := r.LookupHost(ctx, host)
	if err != nil {
		return nil, err
	}
	out := make([]netip.AddrPort, 0, len(ips))
	for _, ip := range ips {
		out = append(out, netip.AddrPortFrom(ip, port))
	}
	return out, nil
}

// LookupHost 查询主机名的全部地址
func (r *Resolver) LookupHost(ctx context.Context, host string) ([]netip.Addr, error) {
	key := strings.ToLower(host)
	if r.cache != nil {
		if ips, ok := r.cache.Get(key); ok {
			log.Debug("resolver cache hit", "host", host, "count", len(ips))
			return ips, nil
		}
	}

	if r.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.cfg.Timeout)
		defer cancel()
	}

	ips, err := r.lookup(ctx, host)
	if err != nil {
		return nil, err
	}
	if len(ips) == 0 {
		return nil, fmt.Errorf("%w: %s", types.ErrNoAddresses, host)
	}
	if r.cache != nil {
		r.cache.Add(key, ips)
	}
	log.Debug("resolved host", "host", host, "count", len(ips), "mode", r.cfg.Mode)
	return ips, nil
}

// Purge 清空缓存
func (r *Resolver) Purge() {
	if r.cache != nil {
		r.cache.Purge()
	}
}

func (r *Resolver) lookupSystem(ctx context.Context, host string) ([]netip.Addr, error) {
	ips, err := net.DefaultResolver.LookupNetIP(ctx, "ip", host)
	if err != nil {
		var dnsErr *net.DNSError
		if errors.As(err, &dnsErr) && dnsErr.IsNotFound {
			return nil, fmt.Errorf("%w: %s", types.ErrNoAddresses, host)
		}
		return nil, err
	}
	for i := range ips {
		ips[i] = ips[i].Unmap()
	}
	return ips, nil
}

// lookupDNS 依次查询 A 与 AAAA，名字服务器逐个尝试
func (r *Resolver) lookupDNS(ctx context.Context, host string) ([]netip.Addr, error) {
	var out []netip.Addr
	var lastErr error
	for _, qtype := range []uint16{dns.TypeA, dns.TypeAAAA} {
		ips, err := r.query(ctx, host, qtype)
		if err != nil {
			lastErr = err
			continue
		}
		out = append(out, ips...)
	}
	if len(out) == 0 && lastErr != nil {
		return nil, lastErr
	}
	return out, nil
}

func (r *Resolver) query(ctx context.Context, host string, qtype uint16) ([]netip.Addr, error) {
	m := new(dns.Msg)
	m.SetQuestion(dns.Fqdn(host), qtype)
	m.RecursionDesired = true

	var lastErr error
	for _, server := range r.servers {
		in, _, err := r.client.ExchangeContext(ctx, m, server)
		if err != nil {
			lastErr = err
			log.Debug("dns exchange failed", "server", server, "host", host, "err", err)
			continue
		}
		if in.Rcode == dns.RcodeNameError {
			return nil, fmt.Errorf("%w: %s", types.ErrNoAddresses, host)
		}
		if in.Rcode != dns.RcodeSuccess {
			lastErr = fmt.Errorf("dns %s for %s from %s", dns.RcodeToString[in.Rcode], host, server)
			continue
		}
		var ips []netip.Addr
		for _, rr := range in.Answer {
			switch v := rr.(type) {
			case *dns.A:
				if ip, ok := netip.AddrFromSlice(v.A); ok {
					ips = append(ips, ip.Unmap())
				}
			case *dns.AAAA:
				if ip, ok := netip.AddrFromSlice(v.AAAA); ok {
					ips = append(ips, ip)
				}
			}
		}
		return ips, nil
	}
	return nil, lastErr
}
