//go:build linux

package osfs

import (
	"os"

	"golang.org/x/sys/unix"
)

// syncData 只刷新数据（fdatasync）
func syncData(f *os.File) error {
	return unix.Fdatasync(int(f.Fd()))
}
