package config

import (
	"fmt"
	"net"
)

// DiagnosticsConfig 诊断配置
type DiagnosticsConfig struct {
	// EnableIntrospect 是否启动本地自省 HTTP 服务
	// 默认值: false
	EnableIntrospect bool `json:"enable_introspect"`

	// IntrospectAddr 自省服务监听地址
	// 默认值: "127.0.0.1:6060"
	IntrospectAddr string `json:"introspect_addr,omitempty"`
}

// DefaultDiagnosticsConfig 返回默认的诊断配置
func DefaultDiagnosticsConfig() DiagnosticsConfig {
	return DiagnosticsConfig{
		EnableIntrospect: false,
		IntrospectAddr:   "127.0.0.1:6060",
	}
}

// Validate 验证诊断配置
func (c *DiagnosticsConfig) Validate() error {
	if !c.EnableIntrospect || c.IntrospectAddr == "" {
		return nil
	}
	if _, _, err := net.SplitHostPort(c.IntrospectAddr); err != nil {
		return fmt.Errorf("diagnostics: invalid introspect_addr %q: %w", c.IntrospectAddr, err)
	}
	return nil
}
