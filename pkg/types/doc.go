// Package types 定义 go-asyncrt 的公共数据结构
//
// 这是整个系统的最底层包，不依赖任何其他 asyncrt 内部包。
// 所有类型都是纯值类型，用于在契约层、引擎层与调用方之间传递数据。
//
// # 文件组织
//
//   - errors.go      - 契约层公共错误（所有引擎的错误都可 errors.Is 到这里）
//   - task.go        - TaskID, WrapMode, JoinError
//   - addr.go        - AddrSpec 套接字地址规格
//   - openoptions.go - OpenOptions 文件打开选项
//
// # 错误约定
//
// 引擎保留各自的错误类型（例如 native 的 *ChannelError），
// 但都实现 Unwrap 指向本包的哨兵错误，调用方只需：
//
//	if errors.Is(err, types.ErrClosed) { ... }
package types
