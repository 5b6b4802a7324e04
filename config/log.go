package config

import (
	"fmt"
	"strings"
)

// LogConfig 日志配置
//
// 为空的字段不覆盖 ASYNCRT_LOG_* 环境变量。
type LogConfig struct {
	// Level 级别规格，例如 "info" 或 "engine/native=debug,warn"
	Level string `json:"level,omitempty"`

	// Format 输出格式："text" 或 "json"
	Format string `json:"format,omitempty"`
}

// DefaultLogConfig 返回默认的日志配置
func DefaultLogConfig() LogConfig {
	return LogConfig{}
}

// Validate 验证日志配置
func (c *LogConfig) Validate() error {
	switch strings.ToLower(strings.TrimSpace(c.Format)) {
	case "", "text", "json":
		return nil
	default:
		return fmt.Errorf("log: unknown format %q", c.Format)
	}
}
