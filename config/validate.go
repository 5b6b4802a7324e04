package config

import (
	"errors"
	"fmt"
	"time"
)

// ValidateAll 验证整个配置的有效性
//
// 这是 Config.Validate() 的别名，额外处理 nil。
func ValidateAll(c *Config) error {
	if c == nil {
		return errors.New("config is nil")
	}
	return c.Validate()
}

// ValidateAndFix 验证配置并尝试自动修复常见问题
//
// 可修复的问题：
//   - 负的工作协程数 -> 0
//   - 负的超时 -> 默认值
//   - 空的解析模式 -> system
//   - 启用缓存但 TTL 非正 -> 默认 TTL
//   - 启用指标但命名空间为空 -> 默认命名空间
func ValidateAndFix(c *Config) (*Config, error) {
	if c == nil {
		return NewConfig(), nil
	}

	defExec := DefaultExecutorConfig()
	if c.Executor.Workers < 0 {
		c.Executor.Workers = 0
	}
	if c.Executor.ShutdownTimeout < 0 {
		c.Executor.ShutdownTimeout = defExec.ShutdownTimeout
	}
	if c.Executor.Metrics && c.Executor.MetricsNamespace == "" {
		c.Executor.MetricsNamespace = defExec.MetricsNamespace
	}

	defRes := DefaultResolverConfig()
	if c.Resolver.Mode == "" {
		c.Resolver.Mode = ResolverModeSystem
	}
	if c.Resolver.Timeout < 0 {
		c.Resolver.Timeout = defRes.Timeout
	}
	if c.Resolver.CacheSize < 0 {
		c.Resolver.CacheSize = 0
	}
	if c.Resolver.CacheSize > 0 && c.Resolver.CacheTTL <= 0 {
		c.Resolver.CacheTTL = defRes.CacheTTL
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed after fixes: %w", err)
	}
	return c, nil
}

// ValidateSubConfig 可单独验证的子配置
type ValidateSubConfig interface {
	Validate() error
}

// MustValidate 验证配置，如果失败则 panic
//
// 仅用于初始化阶段或测试代码。
func MustValidate(c *Config) {
	if err := c.Validate(); err != nil {
		panic(fmt.Sprintf("config validation failed: %v", err))
	}
}

// ValidateCompatibility 检查子配置之间的组合
//
// dns 模式的单次查询超时不应超过关闭等待时间，否则关闭时可能仍有查询挂起。
func ValidateCompatibility(c *Config) error {
	if c == nil {
		return errors.New("config is nil")
	}
	if c.Resolver.Mode == ResolverModeDNS && c.Executor.ShutdownTimeout > 0 &&
		c.Resolver.Timeout.Duration() > c.Executor.ShutdownTimeout.Duration() {
		return fmt.Errorf("resolver timeout (%s) exceeds executor shutdown timeout (%s)",
			c.Resolver.Timeout, c.Executor.ShutdownTimeout)
	}
	if c.Resolver.CacheSize > 0 && c.Resolver.CacheTTL.Duration() < time.Second {
		return fmt.Errorf("resolver cache_ttl (%s) is below one second", c.Resolver.CacheTTL)
	}
	return nil
}
