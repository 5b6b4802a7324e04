package introspect

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/pprof"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dep2p/go-asyncrt/internal/core/metrics"
	"github.com/dep2p/go-asyncrt/internal/util/logger"
	"github.com/dep2p/go-asyncrt/pkg/interfaces"
)

var log = logger.Logger("debug/introspect")

// DefaultAddr 默认监听地址
const DefaultAddr = "127.0.0.1:6060"

// ============================================================================
//                              配置
// ============================================================================

// Config 服务配置
type Config struct {
	// Addr 监听地址，默认 "127.0.0.1:6060"
	Addr string

	// Runtime 可选，报告引擎名称与能力
	Runtime interfaces.Runtime

	// Reporter 可选，报告任务统计
	Reporter metrics.Reporter

	// Gatherer 可选，为空时尝试从 Reporter 取得
	Gatherer prometheus.Gatherer

	// CustomHandlers 自定义处理器
	CustomHandlers map[string]http.HandlerFunc
}

// ============================================================================
//                              Server
// ============================================================================

// Server 本地自省 HTTP 服务
type Server struct {
	config Config

	server   *http.Server
	listener net.Listener

	running   bool
	startTime time.Time

	mu sync.Mutex
}

// New 创建自省服务
func New(cfg Config) *Server {
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if cfg.Gatherer == nil {
		if g, ok := cfg.Reporter.(interface{ Gatherer() prometheus.Gatherer }); ok {
			cfg.Gatherer = g.Gatherer()
		}
	}
	return &Server{config: cfg}
}

// Handler 返回服务的路由，不监听端口
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/debug/introspect", s.handleIntrospect)
	mux.HandleFunc("/debug/introspect/engine", s.handleEngine)
	mux.HandleFunc("/debug/introspect/tasks", s.handleTasks)
	mux.HandleFunc("/debug/introspect/runtime", s.handleRuntime)

	if s.config.Gatherer != nil {
		mux.Handle("/metrics", promhttp.HandlerFor(s.config.Gatherer, promhttp.HandlerOpts{}))
	}

	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)

	mux.HandleFunc("/health", s.handleHealth)

	for path, handler := range s.config.CustomHandlers {
		mux.HandleFunc(path, handler)
	}
	return mux
}

// Start 启动服务，重复调用无效
func (s *Server) Start(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}

	listener, err := net.Listen("tcp", s.config.Addr)
	if err != nil {
		return err
	}
	s.listener = listener
	s.startTime = time.Now()
	s.server = &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("introspect server exited", "err", err)
		}
	}()

	s.running = true
	log.Info("introspect server started", "addr", listener.Addr().String())
	return nil
}

// Stop 停止服务，重复调用无效
func (s *Server) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.server.Shutdown(ctx); err != nil {
		log.Error("introspect server shutdown failed", "err", err)
		return err
	}

	s.running = false
	log.Info("introspect server stopped")
	return nil
}

// Addr 返回实际监听地址
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.config.Addr
}

// ============================================================================
//                              响应结构
// ============================================================================

// IntrospectResponse 完整诊断响应
type IntrospectResponse struct {
	Timestamp time.Time                `json:"timestamp"`
	Uptime    string                   `json:"uptime"`
	Engine    *EngineInfo              `json:"engine,omitempty"`
	Tasks     map[string]metrics.Stats `json:"tasks,omitempty"`
	Runtime   *RuntimeInfo             `json:"runtime"`
}

// EngineInfo 引擎信息
type EngineInfo struct {
	Name         string   `json:"name"`
	Capabilities []string `json:"capabilities"`
	Wrap         string   `json:"wrap,omitempty"`
}

// RuntimeInfo Go 运行时信息
type RuntimeInfo struct {
	GoVersion    string `json:"go_version"`
	NumGoroutine int    `json:"num_goroutine"`
	NumCPU       int    `json:"num_cpu"`
	MemAlloc     uint64 `json:"mem_alloc"`
	MemSys       uint64 `json:"mem_sys"`
	NumGC        uint32 `json:"num_gc"`
}

// HealthResponse 健康检查响应
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Uptime    string    `json:"uptime,omitempty"`
}

// ============================================================================
//                              HTTP 处理器
// ============================================================================

func (s *Server) handleIntrospect(w http.ResponseWriter, r *http.Request) {
	if !allowGet(w, r) {
		return
	}
	s.writeJSON(w, IntrospectResponse{
		Timestamp: time.Now(),
		Uptime:    s.uptime(),
		Engine:    s.collectEngineInfo(),
		Tasks:     s.collectTaskStats(),
		Runtime:   collectRuntimeInfo(),
	})
}

func (s *Server) handleEngine(w http.ResponseWriter, r *http.Request) {
	if !allowGet(w, r) {
		return
	}
	info := s.collectEngineInfo()
	if info == nil {
		http.Error(w, "Engine info not available", http.StatusServiceUnavailable)
		return
	}
	s.writeJSON(w, info)
}

func (s *Server) handleTasks(w http.ResponseWriter, r *http.Request) {
	if !allowGet(w, r) {
		return
	}
	stats := s.collectTaskStats()
	if stats == nil {
		stats = map[string]metrics.Stats{}
	}
	s.writeJSON(w, stats)
}

func (s *Server) handleRuntime(w http.ResponseWriter, r *http.Request) {
	if !allowGet(w, r) {
		return
	}
	s.writeJSON(w, collectRuntimeInfo())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !allowGet(w, r) {
		return
	}
	health := HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
		Uptime:    s.uptime(),
	}
	if s.config.Runtime == nil {
		health.Status = "degraded"
	}
	s.writeJSON(w, health)
}

// ============================================================================
//                              数据收集
// ============================================================================

func (s *Server) collectEngineInfo() *EngineInfo {
	rt := s.config.Runtime
	if rt == nil {
		return nil
	}
	info := &EngineInfo{Name: rt.Name(), Capabilities: Capabilities(rt)}
	if ex, ok := rt.(interfaces.RuntimeExecutor); ok {
		info.Wrap = ex.Executor().Wrap().String()
	}
	return info
}

// Capabilities 列出引擎实现的能力接口
func Capabilities(rt interfaces.Runtime) []string {
	var caps []string
	add := func(ok bool, name string) {
		if ok {
			caps = append(caps, name)
		}
	}
	_, ok := rt.(interfaces.RuntimeLock)
	add(ok, "lock")
	_, ok = rt.(interfaces.RuntimeLockExt)
	add(ok, "lock_ext")
	_, ok = rt.(interfaces.RuntimeBlockingLock)
	add(ok, "blocking_lock")
	_, ok = rt.(interfaces.RuntimeChannels)
	add(ok, "channels")
	_, ok = rt.(interfaces.RuntimeChannelsExt)
	add(ok, "channels_ext")
	_, ok = rt.(interfaces.RuntimeExecutor)
	add(ok, "executor")
	_, ok = rt.(interfaces.RuntimeFs)
	add(ok, "fs")
	_, ok = rt.(interfaces.RuntimeNet)
	add(ok, "net")
	_, ok = rt.(interfaces.RuntimeTime)
	add(ok, "time")
	return caps
}

func (s *Server) collectTaskStats() map[string]metrics.Stats {
	if s.config.Reporter == nil {
		return nil
	}
	var engines []string
	if e, ok := s.config.Reporter.(interface{ Engines() []string }); ok {
		engines = e.Engines()
	}
	if s.config.Runtime != nil {
		engines = append(engines, s.config.Runtime.Name())
	}
	sort.Strings(engines)

	out := make(map[string]metrics.Stats, len(engines))
	for _, name := range engines {
		out[name] = s.config.Reporter.Snapshot(name)
	}
	return out
}

func collectRuntimeInfo() *RuntimeInfo {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	return &RuntimeInfo{
		GoVersion:    runtime.Version(),
		NumGoroutine: runtime.NumGoroutine(),
		NumCPU:       runtime.NumCPU(),
		MemAlloc:     memStats.Alloc,
		MemSys:       memStats.Sys,
		NumGC:        memStats.NumGC,
	}
}

// ============================================================================
//                              辅助方法
// ============================================================================

func (s *Server) uptime() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.startTime.IsZero() {
		return ""
	}
	return time.Since(s.startTime).Round(time.Millisecond).String()
}

func allowGet(w http.ResponseWriter, r *http.Request) bool {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return false
	}
	return true
}

func (s *Server) writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		log.Error("json encode failed", "err", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}
