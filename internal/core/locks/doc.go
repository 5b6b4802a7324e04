// Package locks 实现与引擎无关的异步锁内核
//
// 所有锁都建立在同一个 FIFO 加权信号量上：
//
//	Mutex     = 1 个许可
//	RwLock    = MaxReaders 个许可，读取 1 个，写入全部
//	Semaphore = n 个许可，可关闭
//	Barrier   = 分代计数
//
// FIFO 等待队列保证公平：队首的写者会阻止之后到达的读者，
// 同时保证 Downgrade 期间不存在无锁窗口（先持有全部许可，再归还其余）。
//
// 挂起策略由 suspend.Suspender 注入，同一内核同时服务多线程引擎
// 与单线程协作式引擎。
package locks
