//go:build !linux

package osfs

import "os"

// syncData 非 Linux 平台退化为完整 Sync
func syncData(f *os.File) error {
	return f.Sync()
}
