// Package asyncrt 提供与执行引擎无关的并发能力层
//
// 上层代码只依赖能力契约（pkg/interfaces），运行在哪个引擎上由构建标签决定，
// 更换引擎不改变符合契约的调用方可观察到的行为。
//
// # 能力
//
//   - Lock: NewMutex、NewRwLock、NewBlockingMutex、NewBlockingRwLock，以及引擎的 Semaphore、Barrier
//   - Channel: Bounded、Unbounded、Oneshot
//   - Executor: Spawn、BlockOn、Handle
//   - Fs、Net、Time: 通过 RuntimeFs.Fs()、RuntimeNet.Net()、RuntimeTime.Time() 取得
//
// 调用方只声明需要的能力：
//
//	func Serve(rt interface {
//	    interfaces.RuntimeLock
//	    interfaces.RuntimeExecutor
//	}) { ... }
//
// # 快速开始
//
//	rt, err := asyncrt.NewDefault()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer rt.Close()
//
//	m := asyncrt.NewMutex(rt, 0)
//	h := asyncrt.Spawn(rt.Executor(), func(ctx context.Context) int {
//	    g, err := m.Lock(ctx)
//	    if err != nil {
//	        return 0
//	    }
//	    defer g.Unlock()
//	    g.Set(g.Get() + 1)
//	    return g.Get()
//	})
//	n, err := h.Await(ctx)
//
// # 引擎
//
//	┌──────────┬──────────────────────┬──────────────────────┬──────────────────────┐
//	│          │ native（默认）       │ local                │ pool                 │
//	├──────────┼──────────────────────┼──────────────────────┼──────────────────────┤
//	│ 构建标签 │ 无                   │ asyncrt_local        │ asyncrt_pool         │
//	│ 调度     │ 每任务一个 goroutine │ 单令牌协作式         │ 固定工作协程池       │
//	│ 锁       │ 全部 + 阻塞版本      │ 全部，信号量不可关闭 │ 只有 Mutex           │
//	│ 通道     │ mpsc + ext + oneshot │ mpsc                 │ mpsc + ext + oneshot │
//	│ 结果包装 │ *types.JoinError     │ 无                   │ 无                   │
//	│ Fs/Net   │ Fs + Net             │ Fs                   │ 无                   │
//	│ Time     │ 跳过错过的 tick      │ 补发错过的 tick      │ 无                   │
//	└──────────┴──────────────────────┴──────────────────────┴──────────────────────┘
//
// 缺少的能力在编译期体现：把 local 引擎传给 NewBlockingMutex 无法通过编译。
//
// # 依赖注入
//
// Module 返回 fx 模块，提供默认引擎及其实现的全部能力接口，
// 应用停止时关闭执行器并等待任务退出。
package asyncrt
