// Package native 多线程引擎
//
// 每个任务运行在独立的 goroutine 上，由 Go 调度器在所有 P 之间分配。
// 挂起点直接阻塞 goroutine。
//
// 能力：
//   - 锁：Mutex、RwLock、Semaphore（可关闭）、Barrier，以及阻塞版本
//   - 通道：有界/无界 mpsc（支持 SenderExt）、oneshot
//   - 执行器：结果包装为 *types.JoinError（取消、panic）
//   - 文件系统：在调用方 goroutine 上直接执行系统调用
//   - 网络：TCP、UDP、地址解析
//   - 定时器：错过的 tick 跳过并对齐到原网格，第一个 tick 立即触发
//
// 错误：通道错误为 *ChannelError，可用 errors.Is 匹配 types 中的哨兵错误。
package native
