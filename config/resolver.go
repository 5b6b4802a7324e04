package config

import (
	"errors"
	"fmt"
	"net"
	"time"
)

// 解析模式
const (
	ResolverModeSystem = "system"
	ResolverModeDNS    = "dns"
)

// ResolverConfig 地址解析配置
type ResolverConfig struct {
	// Mode 解析模式："system" 或 "dns"
	// 默认值: "system"
	Mode string `json:"mode"`

	// Nameservers dns 模式使用的服务器（host:port）
	// 为空时读取 /etc/resolv.conf
	Nameservers []string `json:"nameservers,omitempty"`

	// Timeout 单次查询超时
	// 默认值: 5s
	Timeout Duration `json:"timeout"`

	// CacheSize 缓存条目数，0 表示不缓存
	// 默认值: 256
	CacheSize int `json:"cache_size"`

	// CacheTTL 缓存有效期
	// 默认值: 1m
	CacheTTL Duration `json:"cache_ttl"`
}

// DefaultResolverConfig 返回默认的解析配置
func DefaultResolverConfig() ResolverConfig {
	return ResolverConfig{
		Mode:      ResolverModeSystem,
		Timeout:   Duration(5 * time.Second),
		CacheSize: 256,
		CacheTTL:  Duration(time.Minute),
	}
}

// Validate 验证解析配置
func (c *ResolverConfig) Validate() error {
	switch c.Mode {
	case ResolverModeSystem, ResolverModeDNS:
	default:
		return fmt.Errorf("resolver: unknown mode %q", c.Mode)
	}
	for _, ns := range c.Nameservers {
		if _, _, err := net.SplitHostPort(ns); err != nil {
			return fmt.Errorf("resolver: invalid nameserver %q: %w", ns, err)
		}
	}
	if c.Timeout < 0 {
		return errors.New("resolver: timeout must be >= 0")
	}
	if c.CacheSize < 0 {
		return errors.New("resolver: cache_size must be >= 0")
	}
	if c.CacheSize > 0 && c.CacheTTL <= 0 {
		return errors.New("resolver: cache_ttl must be > 0 when caching is enabled")
	}
	return nil
}
