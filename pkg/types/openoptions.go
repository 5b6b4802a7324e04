package types

import (
	"fmt"
	"io/fs"
	"os"
)

// DefaultFileMode 新建文件的默认权限（受 umask 影响）
const DefaultFileMode fs.FileMode = 0o666

// OpenOptions 文件打开选项
//
// 值类型构建器，链式调用返回修改后的副本：
//
//	opts := types.NewOpenOptions().Write(true).CreateNew(true)
//	f, err := rt.Fs().OpenWith(ctx, path, opts)
type OpenOptions struct {
	read      bool
	write     bool
	append    bool
	truncate  bool
	create    bool
	createNew bool
	mode      fs.FileMode
}

// NewOpenOptions 创建空的打开选项（所有开关关闭）
func NewOpenOptions() OpenOptions {
	return OpenOptions{mode: DefaultFileMode}
}

// Read 设置读权限
func (o OpenOptions) Read(v bool) OpenOptions { o.read = v; return o }

// Write 设置写权限
func (o OpenOptions) Write(v bool) OpenOptions { o.write = v; return o }

// Append 设置追加模式（隐含写权限）
func (o OpenOptions) Append(v bool) OpenOptions { o.append = v; return o }

// Truncate 打开时截断为 0
func (o OpenOptions) Truncate(v bool) OpenOptions { o.truncate = v; return o }

// Create 不存在时创建
func (o OpenOptions) Create(v bool) OpenOptions { o.create = v; return o }

// CreateNew 必须新建，已存在则失败
//
// 设置后 Create 与 Truncate 被忽略。
func (o OpenOptions) CreateNew(v bool) OpenOptions { o.createNew = v; return o }

// Mode 设置新建文件的权限位
func (o OpenOptions) Mode(m fs.FileMode) OpenOptions { o.mode = m; return o }

// FileMode 返回新建文件的权限位
func (o OpenOptions) FileMode() fs.FileMode {
	if o.mode == 0 {
		return DefaultFileMode
	}
	return o.mode
}

// Flags 计算 os.OpenFile 所需的标志位
//
// 非法组合返回 ErrInvalidOpenOptions：
//   - 既不可读也不可写
//   - 只读但要求 truncate / create / create_new
//   - append 与 truncate 同时设置且未设置 create_new
func (o OpenOptions) Flags() (int, error) {
	var flags int
	switch {
	case o.append && o.read:
		flags = os.O_RDWR | os.O_APPEND
	case o.append:
		flags = os.O_WRONLY | os.O_APPEND
	case o.read && o.write:
		flags = os.O_RDWR
	case o.write:
		flags = os.O_WRONLY
	case o.read:
		flags = os.O_RDONLY
	default:
		return 0, fmt.Errorf("%w: no access mode", ErrInvalidOpenOptions)
	}

	if !o.write && !o.append {
		if o.truncate || o.create || o.createNew {
			return 0, fmt.Errorf("%w: creating or truncating requires write access", ErrInvalidOpenOptions)
		}
	}
	if o.append && o.truncate && !o.createNew {
		return 0, fmt.Errorf("%w: append with truncate", ErrInvalidOpenOptions)
	}

	switch {
	case o.createNew:
		flags |= os.O_CREATE | os.O_EXCL
	case o.create && o.truncate:
		flags |= os.O_CREATE | os.O_TRUNC
	case o.create:
		flags |= os.O_CREATE
	case o.truncate:
		flags |= os.O_TRUNC
	}
	return flags, nil
}
