// Package config 提供统一的配置管理
//
// 本包采用与组件一一对应的分段配置：
//   - 主 Config 结构体嵌入所有子配置
//   - 每个子配置在独立文件中定义，自带默认值与 Validate
//   - 支持从 JSON 字节或文件加载
//   - 支持预设配置（default/server/minimal）
//
// 使用示例：
//
//	// 创建默认配置
//	cfg := config.NewConfig()
//	cfg.Executor.Workers = 8
//	cfg.Resolver.Mode = "dns"
//
//	// 应用预设到现有配置
//	config.ApplyPreset(cfg, "server")
//
//	// 从文件加载
//	cfg, err := config.LoadFile("asyncrt.json")
package config

// Config 是运行时的完整配置结构
//
// 配置按照功能模块组织：
//   - Executor: 任务执行器（工作协程、指标、关闭超时）
//   - Resolver: 地址解析（system/dns、缓存）
//   - Log: 日志级别与格式
//   - Diagnostics: 本地自省服务
type Config struct {
	// Executor 执行器配置
	Executor ExecutorConfig `json:"executor"`

	// Resolver 地址解析配置
	Resolver ResolverConfig `json:"resolver"`

	// Log 日志配置
	Log LogConfig `json:"log"`

	// Diagnostics 诊断配置
	Diagnostics DiagnosticsConfig `json:"diagnostics"`
}

// NewConfig 创建默认配置
//
// 返回的配置使用所有组件的默认值，适用于大多数场景。
func NewConfig() *Config {
	return &Config{
		Executor:    DefaultExecutorConfig(),
		Resolver:    DefaultResolverConfig(),
		Log:         DefaultLogConfig(),
		Diagnostics: DefaultDiagnosticsConfig(),
	}
}

// Validate 验证配置的有效性
//
// 检查所有子配置，返回第一个错误。
func (c *Config) Validate() error {
	if err := c.Executor.Validate(); err != nil {
		return err
	}
	if err := c.Resolver.Validate(); err != nil {
		return err
	}
	if err := c.Log.Validate(); err != nil {
		return err
	}
	if err := c.Diagnostics.Validate(); err != nil {
		return err
	}
	return nil
}
