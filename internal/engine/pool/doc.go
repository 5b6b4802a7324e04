// Package pool 固定工作协程池引擎
//
// 任务进入无界队列，由固定数量的工作协程依次取出运行。
// 任务在挂起点等待时，池会临时补充一个工作协程，等待结束后多出的工作协程
// 在完成手头任务后退出，使未阻塞的工作协程数保持在配置值附近。
//
// 能力：
//   - 锁：只有 Mutex（基于 x/sync 的加权信号量）
//   - 通道：有界/无界 mpsc（支持 SenderExt）、oneshot
//   - 执行器：结果不包装，panic 在 Await 时重新抛出
//
// 没有文件系统、网络和定时器能力。
//
// 错误：通道错误为 *SendError、*RecvError、*TryRecvError 和 *Canceled，
// 可用 errors.Is 匹配 types 中的哨兵错误。
package pool
