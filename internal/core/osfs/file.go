package osfs

import (
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/dep2p/go-asyncrt/internal/core/suspend"
	"github.com/dep2p/go-asyncrt/pkg/interfaces"
)

// ============================================================================
//                              File
// ============================================================================

// File 已打开的文件
//
// Read/Write/Seek 没有 ctx 参数，调用期间同样交还执行权。
type File struct {
	f  *os.File
	fs *FS
}

var _ interfaces.File = (*File)(nil)

// OS 返回底层 *os.File
func (f *File) OS() *os.File {
	return f.f
}

// Read 实现 io.Reader
func (f *File) Read(p []byte) (int, error) {
	return suspend.Offload(context.Background(), f.fs.susp, func() (int, error) { return f.f.Read(p) })
}

// Write 实现 io.Writer
func (f *File) Write(p []byte) (int, error) {
	return suspend.Offload(context.Background(), f.fs.susp, func() (int, error) { return f.f.Write(p) })
}

// Seek 实现 io.Seeker
func (f *File) Seek(offset int64, whence int) (int64, error) {
	return f.f.Seek(offset, whence)
}

// Close 实现 io.Closer
func (f *File) Close() error {
	return f.f.Close()
}

// Name 实现 interfaces.File
func (f *File) Name() string {
	return f.f.Name()
}

// Fd 实现 interfaces.File
func (f *File) Fd() uintptr {
	return f.f.Fd()
}

// Metadata 实现 interfaces.File
func (f *File) Metadata(ctx context.Context) (fs.FileInfo, error) {
	return suspend.Offload(ctx, f.fs.susp, f.f.Stat)
}

// SetLen 实现 interfaces.File
func (f *File) SetLen(ctx context.Context, size int64) error {
	return f.fs.do(ctx, func() error { return f.f.Truncate(size) })
}

// SetPermissions 实现 interfaces.File
func (f *File) SetPermissions(ctx context.Context, perm fs.FileMode) error {
	return f.fs.do(ctx, func() error { return f.f.Chmod(perm) })
}

// SyncAll 实现 interfaces.File
func (f *File) SyncAll(ctx context.Context) error {
	return f.fs.do(ctx, f.f.Sync)
}

// SyncData 实现 interfaces.File
func (f *File) SyncData(ctx context.Context) error {
	return f.fs.do(ctx, func() error { return syncData(f.f) })
}

// ============================================================================
//                              目录流
// ============================================================================

const dirBatch = 64

type dirStream struct {
	fs   *FS
	dir  *os.File
	path string
	buf  []fs.DirEntry
	eof  bool
}

var _ interfaces.DirStream = (*dirStream)(nil)

// Next 实现 interfaces.DirStream
func (d *dirStream) Next(ctx context.Context) (interfaces.DirEntry, error) {
	if len(d.buf) == 0 {
		if d.eof {
			return nil, io.EOF
		}
		entries, err := suspend.Offload(ctx, d.fs.susp, func() ([]fs.DirEntry, error) {
			return d.dir.ReadDir(dirBatch)
		})
		if err == io.EOF || (err == nil && len(entries) < dirBatch) {
			d.eof = true
			err = nil
		}
		if err != nil {
			return nil, err
		}
		if len(entries) == 0 {
			return nil, io.EOF
		}
		d.buf = entries
	}
	e := d.buf[0]
	d.buf = d.buf[1:]
	return &dirEntry{fs: d.fs, entry: e, path: filepath.Join(d.path, e.Name())}, nil
}

// Close 实现 interfaces.DirStream
func (d *dirStream) Close() error {
	return d.dir.Close()
}

type dirEntry struct {
	fs    *FS
	entry fs.DirEntry
	path  string
}

var _ interfaces.DirEntry = (*dirEntry)(nil)

func (e *dirEntry) FileName() string {
	return e.entry.Name()
}

func (e *dirEntry) Path() string {
	return e.path
}

func (e *dirEntry) FileType(_ context.Context) (fs.FileMode, error) {
	return e.entry.Type(), nil
}

func (e *dirEntry) Metadata(ctx context.Context) (fs.FileInfo, error) {
	return suspend.Offload(ctx, e.fs.susp, func() (fs.FileInfo, error) { return os.Lstat(e.path) })
}
