// Package local 单线程协作式引擎
//
// 所有任务共享一个执行令牌（baton），同一时刻只有持有令牌的任务在运行。
// 任务只在挂起点让出：挂起前交还令牌，等待结束后重新获取。
// 因此任务之间不需要额外的同步，但长时间不挂起的任务会阻塞其它任务。
//
// 令牌归属由 ctx 判定：任务体和 BlockOn 收到的 ctx 带有本执行器的标记，
// 挂起点只有在 ctx 带标记时才交还令牌。任务内部的挂起调用必须传入任务自己的 ctx
// （或其派生 ctx），否则会持有令牌等待，其它任务无法运行。
//
// 能力：
//   - 锁：Mutex、RwLock、Semaphore（不可关闭）、Barrier，没有阻塞版本
//   - 通道：有界/无界 mpsc，不支持 SenderExt 和 oneshot
//   - 执行器：结果不包装，panic 在 Await 时重新抛出
//   - 文件系统：系统调用卸载到后台 goroutine，等待期间交还令牌
//   - 定时器：错过的 tick 逐个补发，第一个 tick 在一个周期之后
//
// 错误：通道错误为 *Error，可用 errors.Is 匹配 types 中的哨兵错误。
package local
