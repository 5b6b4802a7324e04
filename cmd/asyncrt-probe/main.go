// Package main 提供 asyncrt-probe 命令行入口
//
// 在选定的引擎上运行一致性用例，输出每个用例的结果。
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/dep2p/go-asyncrt"
	"github.com/dep2p/go-asyncrt/internal/conformance"
	"github.com/dep2p/go-asyncrt/internal/util/logger"
	"github.com/dep2p/go-asyncrt/pkg/interfaces"
)

var log = logger.Logger("asyncrt/probe")

// ═══════════════════════════════════════════════════════════════════════════
// 命令行参数
// ═══════════════════════════════════════════════════════════════════════════
var (
	engine     = flag.String("engine", "all", "引擎 (native/local/pool/all)")
	configFile = flag.String("config", "", "配置文件路径")
	preset     = flag.String("preset", "", "预设配置 (default/server/minimal)")
	workers    = flag.Int("workers", -1, "工作协程数（-1 = 使用配置）")
	runFilter  = flag.String("run", "", "只运行名称包含该子串的用例")
	timeout    = flag.Duration("timeout", conformance.DefaultTimeout, "单个用例超时")
	logLevel   = flag.String("log-level", "", "日志级别，如 debug 或 engine/pool=debug,info")
	verbose    = flag.Bool("v", false, "输出失败详情之外的跳过原因")

	showVersion = flag.Bool("version", false, "显示版本信息")
	showHelp    = flag.Bool("help", false, "显示帮助信息")
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	flag.Parse()

	if *showVersion {
		printVersion()
		return nil
	}
	if *showHelp {
		printHelp()
		return nil
	}
	if *logLevel != "" {
		logger.Configure(*logLevel, "")
	}

	engines, err := selectEngines(*engine)
	if err != nil {
		return err
	}
	opts, err := buildOptions()
	if err != nil {
		return fmt.Errorf("配置错误: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	failed := 0
	for _, name := range engines {
		sum, err := probe(ctx, name, opts)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		failed += sum.failed
		fmt.Printf("%-7s 通过 %d  失败 %d  跳过 %d\n\n", name, sum.passed, sum.failed, sum.skipped)
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d 个用例失败", failed)
	}
	return nil
}

func selectEngines(name string) ([]string, error) {
	switch name {
	case "all":
		return []string{"native", "local", "pool"}, nil
	case "native", "local", "pool":
		return []string{name}, nil
	default:
		return nil, fmt.Errorf("未知引擎: %s", name)
	}
}

func buildOptions() ([]asyncrt.Option, error) {
	var opts []asyncrt.Option
	if *configFile != "" {
		opts = append(opts, asyncrt.WithConfigFile(*configFile))
	}
	if *preset != "" {
		opts = append(opts, asyncrt.WithPreset(*preset))
	}
	if *workers >= 0 {
		opts = append(opts, asyncrt.WithWorkers(*workers))
	}
	if *timeout <= 0 {
		return nil, fmt.Errorf("timeout 必须为正: %s", *timeout)
	}
	return opts, nil
}

// newRuntime 按名称创建引擎
func newRuntime(name string, opts []asyncrt.Option) (interfaces.Runtime, error) {
	switch name {
	case "native":
		return asyncrt.NewNative(opts...)
	case "local":
		return asyncrt.NewLocal(opts...)
	default:
		return asyncrt.NewPool(opts...)
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// 用例执行
// ═══════════════════════════════════════════════════════════════════════════

type summary struct {
	passed, failed, skipped int
}

func probe(ctx context.Context, name string, opts []asyncrt.Option) (summary, error) {
	var sum summary
	for _, c := range conformance.Cases() {
		if *runFilter != "" && !strings.Contains(c.Name, *runFilter) {
			continue
		}
		if ctx.Err() != nil {
			break
		}

		rt, err := newRuntime(name, opts)
		if err != nil {
			return sum, err
		}
		if !c.Supports(rt) {
			sum.skipped++
			if *verbose {
				fmt.Printf("  SKIP  %-40s 缺少所需能力\n", c.Name)
			}
			_ = rt.Close()
			continue
		}

		rec := runCase(ctx, c, rt)
		if err := rt.Close(); err != nil {
			log.Warn("关闭引擎失败", "engine", name, "err", err)
		}

		if rec.failed() {
			sum.failed++
			fmt.Printf("  FAIL  %-40s %s\n", c.Name, rec.elapsed.Round(time.Millisecond))
			for _, msg := range rec.messages() {
				fmt.Printf("        %s\n", strings.ReplaceAll(strings.TrimSpace(msg), "\n", "\n        "))
			}
			continue
		}
		sum.passed++
		fmt.Printf("  ok    %-40s %s\n", c.Name, rec.elapsed.Round(time.Millisecond))
	}
	return sum, nil
}

// runCase 在独立 goroutine 上运行用例，FailNow 通过 Goexit 结束该 goroutine
func runCase(ctx context.Context, c conformance.Case, rt interfaces.Runtime) *recorder {
	rec := &recorder{}
	cctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()

	start := time.Now()
	done := make(chan struct{})
	go func() {
		defer close(done)
		defer func() {
			if r := recover(); r != nil {
				rec.Errorf("panic: %v", r)
			}
		}()
		c.Run(cctx, rec, rt)
	}()

	select {
	case <-done:
	case <-cctx.Done():
		// 用例未响应 ctx 时再给一点时间
		select {
		case <-done:
		case <-time.After(time.Second):
			rec.Errorf("用例超时: %v", cctx.Err())
		}
	}
	rec.elapsed = time.Since(start)
	return rec
}

// recorder 实现 require.TestingT，记录失败信息
type recorder struct {
	mu      sync.Mutex
	msgs    []string
	elapsed time.Duration
}

func (r *recorder) Errorf(format string, args ...interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, fmt.Sprintf(format, args...))
}

func (r *recorder) FailNow() {
	r.Errorf("FailNow")
	runtime.Goexit()
}

func (r *recorder) failed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.msgs) > 0
}

func (r *recorder) messages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.msgs...)
}

// ═══════════════════════════════════════════════════════════════════════════
// 信息显示
// ═══════════════════════════════════════════════════════════════════════════

func printVersion() {
	fmt.Println(asyncrt.VersionInfo())
}

func printHelp() {
	fmt.Println("asyncrt-probe - 在各引擎上运行一致性用例")
	fmt.Println()
	fmt.Println("用法:")
	fmt.Println("  asyncrt-probe [选项]")
	fmt.Println()
	fmt.Println("选项:")
	flag.PrintDefaults()
	fmt.Println()
	fmt.Println("引擎:")
	fmt.Println("  native  - 多线程，全部能力")
	fmt.Println("  local   - 单线程协作式，无网络与阻塞锁")
	fmt.Println("  pool    - 固定工作协程池，仅锁、通道与执行器")
	fmt.Println()
	fmt.Println("使用示例:")
	fmt.Println("  asyncrt-probe -engine pool -workers 2")
	fmt.Println("  asyncrt-probe -run mpsc/ -v")
}
