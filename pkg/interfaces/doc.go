// Package interfaces 定义 go-asyncrt 的能力契约
//
// 契约分为两层：
//
// # 调用方契约（泛型）
//
// 面向业务代码，与引擎无关：
//   - lock.go      - Mutex[T], RwLock[T] 及其守卫，阻塞扩展
//   - channel.go   - BoundedSender[T], UnboundedSender[T], Receiver[T], Oneshot
//   - executor.go  - Handle[T]
//
// # 引擎契约（非泛型）
//
// 由各引擎实现，门面层在其上绑定值类型：
//   - lock.go      - RawMutex, RawRwLock, Semaphore, Barrier
//   - channel.go   - RawSender, RawReceiver, RawOneshotSender, RawOneshotReceiver
//   - executor.go  - Executor, Task
//   - fs.go        - Fs, File, DirEntry, DirStream
//   - net.go       - Net, TcpStream, TcpListener, UdpSocket
//   - time.go      - Time, Interval
//
// # 运行时描述符
//
// runtime.go 把上述能力组合成细粒度的运行时接口，调用方只声明需要的能力：
//
//	func Serve(rt interface {
//	    interfaces.RuntimeLock
//	    interfaces.RuntimeExecutor
//	}) { ... }
//
// 不支持某能力的引擎不实现对应接口，误用在编译期即被拒绝。
package interfaces
