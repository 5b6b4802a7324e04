// Package logger 提供 go-asyncrt 的统一日志系统
//
// 基于标准库 log/slog，支持：
//   - 按子系统配置日志级别
//   - 环境变量配置（ASYNCRT_LOG_LEVEL, ASYNCRT_LOG_FORMAT）
//   - 运行时通过 Configure 应用配置文件中的设置
//
// 使用示例:
//
//	package native
//
//	import "github.com/dep2p/go-asyncrt/internal/util/logger"
//
//	var log = logger.Logger("engine/native")
//
//	func foo() {
//	    log.Debug("task spawned", "task", id)
//	}
package logger

import (
	"io"
	"log/slog"
	"sync"
)

var (
	// loggers 缓存各子系统的 Logger
	loggers sync.Map // map[string]*slog.Logger

	// handlers 缓存各子系统的 Handler（用于动态调整级别）
	handlers sync.Map // map[string]*subsystemHandler
)

// Logger 获取指定子系统的 Logger
//
// 同一子系统多次调用返回相同的实例。
func Logger(subsystem string) *slog.Logger {
	if l, ok := loggers.Load(subsystem); ok {
		return l.(*slog.Logger)
	}

	cfg := ConfigFromEnv()
	h := newHandler(subsystem, cfg.LevelForSubsystem(subsystem), cfg)

	actual, loaded := loggers.LoadOrStore(subsystem, slog.New(h))
	if !loaded {
		handlers.Store(subsystem, h)
	}
	return actual.(*slog.Logger)
}

// SetLevel 动态设置子系统的日志级别
func SetLevel(subsystem string, level slog.Level) {
	if h, ok := handlers.Load(subsystem); ok {
		h.(*subsystemHandler).SetLevel(level)
	}
}

// SetGlobalLevel 设置所有已创建子系统的日志级别
func SetGlobalLevel(level slog.Level) {
	handlers.Range(func(_, value any) bool {
		value.(*subsystemHandler).SetLevel(level)
		return true
	})
}

// Configure 应用级别配置字符串
//
// 与 ASYNCRT_LOG_LEVEL 格式相同，已创建和之后创建的 Logger 都生效。
// 格式只影响之后创建的 Logger。
func Configure(levelSpec string, format string) {
	configMu.Lock()
	if configCache == nil {
		configCache = parseEnv()
	}
	cfg := configCache
	if levelSpec != "" {
		ParseLevelSpec(cfg, levelSpec)
	}
	if format != "" {
		cfg.Format = ParseFormat(format)
	}
	configMu.Unlock()

	handlers.Range(func(key, value any) bool {
		value.(*subsystemHandler).SetLevel(cfg.LevelForSubsystem(key.(string)))
		return true
	})
}

// Discard 返回一个丢弃所有日志的 Logger
func Discard() *slog.Logger {
	return slog.New(DiscardHandler())
}

// SetOutput 设置全局日志输出目标
//
// 已创建的 Logger 同样重定向。
func SetOutput(w io.Writer) {
	globalOutputMu.Lock()
	globalOutput = w
	globalOutputMu.Unlock()
}
