// Package metrics 提供执行器任务指标
//
// 每个引擎的执行器在任务生命周期的关键点上报：
//   - 派生（spawned）
//   - 结束（completed / panicked / cancelled）
//
// TaskCounter 同时维护：
//   - Prometheus 计数器与运行中任务数（按引擎打标签）
//   - 原子累计值，供 Snapshot 无锁读取
//   - 派生速率（60 个 1 秒桶的滑动窗口，时钟可注入）
//
// # 快速开始
//
//	counter := metrics.NewTaskCounter(metrics.DefaultConfig(), nil)
//	counter.TaskSpawned("native")
//	counter.TaskFinished("native", metrics.OutcomeCompleted)
//
//	stats := counter.Snapshot("native")
//	fmt.Printf("running=%d spawned=%d rate=%.2f/s\n", stats.Running, stats.Spawned, stats.SpawnRate)
//
// # Prometheus
//
// 指标注册到 Config.Registerer；为空时使用包内私有的注册表，
// 可通过 TaskCounter.Gatherer 取出：
//
//	asyncrt_tasks_spawned_total{engine="native"}
//	asyncrt_tasks_finished_total{engine="native",outcome="panicked"}
//	asyncrt_tasks_running{engine="native"}
//
// # Fx 模块
//
//	app := fx.New(
//	    metrics.Module,
//	    fx.Invoke(func(r metrics.Reporter) { ... }),
//	)
//
// 配置中关闭指标时 Module 提供 Nop。
package metrics
