// Package osfs 基于操作系统文件接口实现文件系统能力
//
// 每个操作都经由 suspend.Offload 执行：多线程引擎直接在当前 goroutine
// 上调用系统调用，单线程引擎在调用期间交还执行权。
package osfs

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/dep2p/go-asyncrt/internal/core/suspend"
	"github.com/dep2p/go-asyncrt/pkg/interfaces"
	"github.com/dep2p/go-asyncrt/pkg/types"
)

// FS 操作系统文件系统
type FS struct {
	susp suspend.Suspender
}

var _ interfaces.Fs = (*FS)(nil)

// New 创建文件系统能力
func New(s suspend.Suspender) *FS {
	return &FS{susp: suspend.OrInline(s)}
}

func (f *FS) do(ctx context.Context, fn func() error) error {
	_, err := suspend.Offload(ctx, f.susp, func() (struct{}, error) {
		return struct{}{}, fn()
	})
	return err
}

// Canonicalize 实现 interfaces.Fs
func (f *FS) Canonicalize(ctx context.Context, path string) (string, error) {
	return suspend.Offload(ctx, f.susp, func() (string, error) {
		abs, err := filepath.Abs(path)
		if err != nil {
			return "", err
		}
		return filepath.EvalSymlinks(abs)
	})
}

// Copy 实现 interfaces.Fs
func (f *FS) Copy(ctx context.Context, from, to string) (int64, error) {
	return suspend.Offload(ctx, f.susp, func() (int64, error) {
		return copyFile(from, to)
	})
}

func copyFile(from, to string) (n int64, err error) {
	src, err := os.Open(from)
	if err != nil {
		return 0, err
	}
	defer src.Close()

	info, err := src.Stat()
	if err != nil {
		return 0, err
	}
	if !info.Mode().IsRegular() {
		return 0, &fs.PathError{Op: "copy", Path: from, Err: fmt.Errorf("not a regular file")}
	}

	dst, err := os.OpenFile(to, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return 0, err
	}
	defer func() {
		if cerr := dst.Close(); err == nil {
			err = cerr
		}
	}()

	if n, err = io.Copy(dst, src); err != nil {
		return n, err
	}
	// 目标已存在时 OpenFile 不会修改权限
	return n, dst.Chmod(info.Mode().Perm())
}

// CreateDir 实现 interfaces.Fs
func (f *FS) CreateDir(ctx context.Context, path string) error {
	return f.do(ctx, func() error { return os.Mkdir(path, 0o777) })
}

// CreateDirAll 实现 interfaces.Fs
func (f *FS) CreateDirAll(ctx context.Context, path string) error {
	return f.do(ctx, func() error { return os.MkdirAll(path, 0o777) })
}

// HardLink 实现 interfaces.Fs
func (f *FS) HardLink(ctx context.Context, src, dst string) error {
	return f.do(ctx, func() error { return os.Link(src, dst) })
}

// Metadata 实现 interfaces.Fs
func (f *FS) Metadata(ctx context.Context, path string) (fs.FileInfo, error) {
	return suspend.Offload(ctx, f.susp, func() (fs.FileInfo, error) { return os.Stat(path) })
}

// Read 实现 interfaces.Fs
func (f *FS) Read(ctx context.Context, path string) ([]byte, error) {
	return suspend.Offload(ctx, f.susp, func() ([]byte, error) { return os.ReadFile(path) })
}

// ReadDir 实现 interfaces.Fs
func (f *FS) ReadDir(ctx context.Context, path string) (interfaces.DirStream, error) {
	return suspend.Offload(ctx, f.susp, func() (interfaces.DirStream, error) {
		d, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		return &dirStream{fs: f, dir: d, path: path}, nil
	})
}

// ReadLink 实现 interfaces.Fs
func (f *FS) ReadLink(ctx context.Context, path string) (string, error) {
	return suspend.Offload(ctx, f.susp, func() (string, error) { return os.Readlink(path) })
}

// ReadToString 实现 interfaces.Fs
func (f *FS) ReadToString(ctx context.Context, path string) (string, error) {
	b, err := f.Read(ctx, path)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// RemoveDir 实现 interfaces.Fs
func (f *FS) RemoveDir(ctx context.Context, path string) error {
	return f.do(ctx, func() error {
		info, err := os.Lstat(path)
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return &fs.PathError{Op: "rmdir", Path: path, Err: fmt.Errorf("not a directory")}
		}
		return os.Remove(path)
	})
}

// RemoveDirAll 实现 interfaces.Fs
func (f *FS) RemoveDirAll(ctx context.Context, path string) error {
	return f.do(ctx, func() error {
		if _, err := os.Lstat(path); err != nil {
			return err
		}
		return os.RemoveAll(path)
	})
}

// RemoveFile 实现 interfaces.Fs
func (f *FS) RemoveFile(ctx context.Context, path string) error {
	return f.do(ctx, func() error {
		info, err := os.Lstat(path)
		if err != nil {
			return err
		}
		if info.IsDir() {
			return &fs.PathError{Op: "unlink", Path: path, Err: fmt.Errorf("is a directory")}
		}
		return os.Remove(path)
	})
}

// Rename 实现 interfaces.Fs
func (f *FS) Rename(ctx context.Context, from, to string) error {
	return f.do(ctx, func() error { return os.Rename(from, to) })
}

// SetPermissions 实现 interfaces.Fs
func (f *FS) SetPermissions(ctx context.Context, path string, perm fs.FileMode) error {
	return f.do(ctx, func() error { return os.Chmod(path, perm) })
}

// SymlinkMetadata 实现 interfaces.Fs
func (f *FS) SymlinkMetadata(ctx context.Context, path string) (fs.FileInfo, error) {
	return suspend.Offload(ctx, f.susp, func() (fs.FileInfo, error) { return os.Lstat(path) })
}

// Write 实现 interfaces.Fs
func (f *FS) Write(ctx context.Context, path string, data []byte) error {
	return f.do(ctx, func() error { return os.WriteFile(path, data, types.DefaultFileMode) })
}

// Open 实现 interfaces.Fs
func (f *FS) Open(ctx context.Context, path string) (interfaces.File, error) {
	return f.OpenWith(ctx, path, types.NewOpenOptions().Read(true))
}

// Create 实现 interfaces.Fs
func (f *FS) Create(ctx context.Context, path string) (interfaces.File, error) {
	return f.OpenWith(ctx, path, types.NewOpenOptions().Write(true).Create(true).Truncate(true))
}

// CreateNew 实现 interfaces.Fs
func (f *FS) CreateNew(ctx context.Context, path string) (interfaces.File, error) {
	return f.OpenWith(ctx, path, types.NewOpenOptions().Read(true).Write(true).CreateNew(true))
}

// OpenWith 实现 interfaces.Fs
func (f *FS) OpenWith(ctx context.Context, path string, opts types.OpenOptions) (interfaces.File, error) {
	flags, err := opts.Flags()
	if err != nil {
		return nil, &fs.PathError{Op: "open", Path: path, Err: err}
	}
	return suspend.Offload(ctx, f.susp, func() (interfaces.File, error) {
		fd, err := os.OpenFile(path, flags, opts.FileMode())
		if err != nil {
			return nil, err
		}
		return &File{f: fd, fs: f}, nil
	})
}
