package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"
)

// FromJSON 从 JSON 数据创建配置
//
// 未出现的字段保留默认值。
//
// 示例 JSON:
//
//	{
//	  "executor": {"workers": 4, "shutdown_timeout": "5s"},
//	  "resolver": {"mode": "dns", "nameservers": ["10.0.0.53:53"]},
//	  "log": {"level": "engine/native=debug,info"}
//	}
func FromJSON(data []byte) (*Config, error) {
	cfg := NewConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return cfg, nil
}

// LoadFile 从 JSON 文件加载并验证配置
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	cfg, err := FromJSON(data)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// ToJSON 把配置编码为缩进的 JSON
func ToJSON(cfg *Config) ([]byte, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	return json.MarshalIndent(cfg, "", "  ")
}

// ApplyPreset 应用预设配置
//
// 支持的预设：
//   - "default": 恢复默认值
//   - "server": 长时间运行的服务进程
//   - "minimal": 最小开销
func ApplyPreset(cfg *Config, presetName string) error {
	if cfg == nil {
		return errors.New("config is nil")
	}

	switch presetName {
	case "default":
		*cfg = *NewConfig()
		return nil
	case "server":
		return applyServerPreset(cfg)
	case "minimal":
		return applyMinimalPreset(cfg)
	case "":
		// 空预设，不做任何操作
		return nil
	default:
		return fmt.Errorf("unknown preset: %s", presetName)
	}
}

// applyServerPreset 服务进程：更大的解析缓存，更长的关闭等待
func applyServerPreset(cfg *Config) error {
	cfg.Executor.Metrics = true
	cfg.Executor.ShutdownTimeout = Duration(30 * time.Second)

	cfg.Resolver.CacheSize = 4096
	cfg.Resolver.CacheTTL = Duration(5 * time.Minute)

	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	return nil
}

// applyMinimalPreset 最小开销：不采集指标，不缓存解析结果
func applyMinimalPreset(cfg *Config) error {
	cfg.Executor.Metrics = false
	cfg.Executor.Workers = 1
	cfg.Executor.ShutdownTimeout = Duration(time.Second)

	cfg.Resolver.CacheSize = 0
	return nil
}

// CloneConfig 克隆配置
//
// 创建配置的深拷贝，修改副本不影响原始配置。
func CloneConfig(cfg *Config) *Config {
	if cfg == nil {
		return nil
	}
	cloned := *cfg
	if cfg.Resolver.Nameservers != nil {
		cloned.Resolver.Nameservers = append([]string(nil), cfg.Resolver.Nameservers...)
	}
	return &cloned
}
