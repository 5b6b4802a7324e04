// Package interfaces 定义 go-asyncrt 能力契约
//
// 本文件定义文件系统能力。
package interfaces

import (
	"context"
	"io"
	"io/fs"

	"github.com/dep2p/go-asyncrt/pkg/types"
)

// Fs 文件系统能力
//
// 所有操作都是挂起点。多步操作（CreateDirAll、RemoveDirAll）不是原子的。
type Fs interface {
	// Canonicalize 返回解析所有符号链接后的绝对路径
	Canonicalize(ctx context.Context, path string) (string, error)

	// Copy 复制文件内容与权限位，覆盖目标，返回写入字节数
	Copy(ctx context.Context, from, to string) (int64, error)

	CreateDir(ctx context.Context, path string) error
	CreateDirAll(ctx context.Context, path string) error

	// HardLink 为 src 创建硬链接 dst
	HardLink(ctx context.Context, src, dst string) error

	// Metadata 跟随符号链接
	Metadata(ctx context.Context, path string) (fs.FileInfo, error)

	Read(ctx context.Context, path string) ([]byte, error)

	// ReadDir 返回惰性目录流
	ReadDir(ctx context.Context, path string) (DirStream, error)

	ReadLink(ctx context.Context, path string) (string, error)
	ReadToString(ctx context.Context, path string) (string, error)

	// RemoveDir 只删除空目录
	RemoveDir(ctx context.Context, path string) error
	RemoveDirAll(ctx context.Context, path string) error
	RemoveFile(ctx context.Context, path string) error

	// Rename 跨设备时返回操作系统错误
	Rename(ctx context.Context, from, to string) error

	SetPermissions(ctx context.Context, path string, perm fs.FileMode) error

	// SymlinkMetadata 不跟随符号链接
	SymlinkMetadata(ctx context.Context, path string) (fs.FileInfo, error)

	// Write 创建或截断后写入全部内容
	Write(ctx context.Context, path string, data []byte) error

	// Open 只读打开
	Open(ctx context.Context, path string) (File, error)

	// Create 只写打开，不存在则创建，存在则截断
	Create(ctx context.Context, path string) (File, error)

	// CreateNew 读写打开，必须新建
	CreateNew(ctx context.Context, path string) (File, error)

	// OpenWith 按选项打开
	OpenWith(ctx context.Context, path string, opts types.OpenOptions) (File, error)
}

// File 已打开的文件，不带缓冲
type File interface {
	io.Reader
	io.Writer
	io.Seeker
	io.Closer

	Name() string

	// Fd 原始文件描述符
	Fd() uintptr

	Metadata(ctx context.Context) (fs.FileInfo, error)

	// SetLen 截断或扩展文件
	SetLen(ctx context.Context, size int64) error

	SetPermissions(ctx context.Context, perm fs.FileMode) error

	// SyncAll 刷新数据与元数据
	SyncAll(ctx context.Context) error

	// SyncData 只刷新数据
	SyncData(ctx context.Context) error
}

// DirEntry 目录项
type DirEntry interface {
	// FileName 不含目录部分的文件名
	FileName() string

	// Path 完整路径
	Path() string

	// FileType 文件类型位（不跟随符号链接）
	FileType(ctx context.Context) (fs.FileMode, error)

	// Metadata 不跟随符号链接
	Metadata(ctx context.Context) (fs.FileInfo, error)
}

// DirStream 惰性目录流
type DirStream interface {
	// Next 返回下一项，结束时返回 io.EOF
	Next(ctx context.Context) (DirEntry, error)

	Close() error
}
