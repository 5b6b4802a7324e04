package config

import (
	"errors"
	"time"
)

// ExecutorConfig 执行器配置
type ExecutorConfig struct {
	// Workers 同时运行的任务上限
	// native 引擎中 0 表示不限制；pool 引擎中 0 表示 runtime.NumCPU()
	// 默认值: 0
	Workers int `json:"workers"`

	// Metrics 是否采集任务指标
	// 默认值: true
	Metrics bool `json:"metrics"`

	// MetricsNamespace Prometheus 指标命名空间
	// 默认值: "asyncrt"
	MetricsNamespace string `json:"metrics_namespace"`

	// ShutdownTimeout 生命周期停止时等待任务退出的最长时间
	// 默认值: 10s
	ShutdownTimeout Duration `json:"shutdown_timeout"`
}

// DefaultExecutorConfig 返回默认的执行器配置
func DefaultExecutorConfig() ExecutorConfig {
	return ExecutorConfig{
		Workers:          0,
		Metrics:          true,
		MetricsNamespace: "asyncrt",
		ShutdownTimeout:  Duration(10 * time.Second),
	}
}

// Validate 验证执行器配置
func (c *ExecutorConfig) Validate() error {
	if c.Workers < 0 {
		return errors.New("executor: workers must be >= 0")
	}
	if c.ShutdownTimeout < 0 {
		return errors.New("executor: shutdown_timeout must be >= 0")
	}
	if c.Metrics && c.MetricsNamespace == "" {
		return errors.New("executor: metrics_namespace is required when metrics are enabled")
	}
	return nil
}
